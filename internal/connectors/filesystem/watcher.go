// Package filesystem watches a local directory and turns new or changed
// files into uploads.
package filesystem

import (
	"context"
	"errors"
	"fmt"
	"mime"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"

	"github.com/custodia-labs/docchat/internal/core/domain"
	"github.com/custodia-labs/docchat/internal/logger"
)

// ErrClosed is returned by Watch after Close.
var ErrClosed = errors.New("watcher is closed")

// ChangeType describes what happened to a file.
type ChangeType string

// Change types.
const (
	ChangeCreated ChangeType = "created"
	ChangeUpdated ChangeType = "updated"
	ChangeDeleted ChangeType = "deleted"
)

// Change is one file event. Document is nil for deletions.
type Change struct {
	Type     ChangeType
	Path     string
	Document *domain.RawDocument
}

// fallbackMIMETypes covers extensions missing from some system MIME tables.
var fallbackMIMETypes = map[string]string{
	".txt":  "text/plain",
	".pdf":  "application/pdf",
	".doc":  "application/msword",
	".docx": "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
	".md":   "text/markdown",
}

// Watcher reports file changes under a root directory for one owner.
type Watcher struct {
	ownerID  string
	rootPath string

	mu      sync.Mutex
	closed  bool
	watcher *fsnotify.Watcher
}

// New creates a watcher for rootPath. Documents are attributed to ownerID.
func New(ownerID, rootPath string) *Watcher {
	return &Watcher{ownerID: ownerID, rootPath: rootPath}
}

// Scan reads every visible regular file directly under the root.
func (w *Watcher) Scan(ctx context.Context) ([]domain.RawDocument, error) {
	entries, err := os.ReadDir(w.rootPath)
	if err != nil {
		return nil, fmt.Errorf("root path error: %w", err)
	}

	var docs []domain.RawDocument
	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if entry.IsDir() || isHidden(entry.Name()) {
			continue
		}
		doc, err := w.readFile(filepath.Join(w.rootPath, entry.Name()))
		if err != nil {
			logger.Warn("watch: skip %s: %v", entry.Name(), err)
			continue
		}
		docs = append(docs, *doc)
	}
	return docs, nil
}

// Watch streams changes until ctx is cancelled or Close is called.
// The returned channel is closed when watching stops.
func (w *Watcher) Watch(ctx context.Context) (<-chan Change, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return nil, ErrClosed
	}

	info, err := os.Stat(w.rootPath)
	if err != nil {
		return nil, fmt.Errorf("root path error: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("root path error: %s is not a directory", w.rootPath)
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	if err := fsw.Add(w.rootPath); err != nil {
		fsw.Close()
		return nil, fmt.Errorf("watch %s: %w", w.rootPath, err)
	}
	w.watcher = fsw

	changes := make(chan Change)
	go w.loop(ctx, fsw, changes)
	return changes, nil
}

func (w *Watcher) loop(ctx context.Context, fsw *fsnotify.Watcher, changes chan<- Change) {
	defer close(changes)
	defer fsw.Close()

	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-fsw.Events:
			if !ok {
				return
			}
			change := w.handleFsEvent(event)
			if change == nil {
				continue
			}
			select {
			case changes <- *change:
			case <-ctx.Done():
				return
			}
		case err, ok := <-fsw.Errors:
			if !ok {
				return
			}
			logger.Warn("watch: %v", err)
		}
	}
}

// handleFsEvent converts an fsnotify event, or returns nil when the event
// is ignored.
func (w *Watcher) handleFsEvent(event fsnotify.Event) *Change {
	if isHidden(w.relative(event.Name)) {
		return nil
	}

	switch {
	case event.Has(fsnotify.Remove), event.Has(fsnotify.Rename):
		return &Change{Type: ChangeDeleted, Path: event.Name}

	case event.Has(fsnotify.Create), event.Has(fsnotify.Write):
		info, err := os.Stat(event.Name)
		if err != nil || info.IsDir() {
			return nil
		}
		doc, err := w.readFile(event.Name)
		if err != nil {
			logger.Warn("watch: read %s: %v", event.Name, err)
			return nil
		}
		changeType := ChangeUpdated
		if event.Has(fsnotify.Create) {
			changeType = ChangeCreated
		}
		return &Change{Type: changeType, Path: event.Name, Document: doc}
	}
	return nil
}

// relative returns path relative to the root so hidden parents of the
// root itself are ignored.
func (w *Watcher) relative(path string) string {
	rel, err := filepath.Rel(w.rootPath, path)
	if err != nil {
		return path
	}
	return rel
}

func (w *Watcher) readFile(path string) (*domain.RawDocument, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	name := filepath.Base(path)
	return &domain.RawDocument{
		OwnerID:  w.ownerID,
		Filename: name,
		MIMEType: detectMIMEType(name),
		Content:  content,
	}, nil
}

// Close stops any running watch. It is safe to call more than once.
func (w *Watcher) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return nil
	}
	w.closed = true
	if w.watcher != nil {
		return w.watcher.Close()
	}
	return nil
}

// detectMIMEType guesses a MIME type from the file extension without
// parameters such as charset.
func detectMIMEType(name string) string {
	ext := strings.ToLower(filepath.Ext(name))
	if ext == "" {
		return "text/plain"
	}
	if t, ok := fallbackMIMETypes[ext]; ok {
		return t
	}
	if t := mime.TypeByExtension(ext); t != "" {
		mediaType, _, _ := strings.Cut(t, ";")
		return strings.TrimSpace(mediaType)
	}
	return "application/octet-stream"
}

// isHidden reports whether any path element starts with a dot.
// "." and ".." are not hidden.
func isHidden(path string) bool {
	for _, part := range strings.Split(filepath.ToSlash(path), "/") {
		if part != "." && part != ".." && strings.HasPrefix(part, ".") {
			return true
		}
	}
	return false
}
