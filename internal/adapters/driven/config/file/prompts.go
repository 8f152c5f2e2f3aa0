package file

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/custodia-labs/docchat/internal/core/ports/driven"
	"github.com/custodia-labs/docchat/internal/logger"
)

var _ driven.PromptStore = (*PromptStore)(nil)

// builtinPrompts are written to the prompt directory on first use and
// served whenever a file is missing or unusable.
var builtinPrompts = map[string]string{
	driven.PromptRAGContext: driven.DefaultRAGContextPrompt,
}

const promptsReadme = `# docchat prompts

Templates docchat sends to the language model. Edit them freely; the server
picks up changes on restart and the CLI on the next command.

rag_context.txt
    Wraps a question with passages retrieved from the attached document.
    Takes two %s placeholders: the passages first, then the question.
    A file with any other placeholders is ignored in favour of the default.
`

// DefaultPrompt returns the built-in template for name.
func DefaultPrompt(name string) (string, bool) {
	tmpl, ok := builtinPrompts[name]
	return tmpl, ok
}

// PromptStore serves prompt templates from <dir>/<name>.txt.
// Nothing touches the disk until the first Load.
type PromptStore struct {
	dir string

	mu      sync.Mutex
	seeded  bool
	seedErr error
	loaded  map[string]string
}

// NewPromptStore returns a store rooted at dir, or ~/.docchat/prompts when
// dir is empty.
func NewPromptStore(dir string) (*PromptStore, error) {
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("get home directory: %w", err)
		}
		dir = filepath.Join(home, ".docchat", "prompts")
	}
	return &PromptStore{dir: dir, loaded: make(map[string]string)}, nil
}

// Dir returns the prompt directory.
func (s *PromptStore) Dir() string {
	return s.dir
}

// Reload drops cached templates so the next Load reads the files again.
func (s *PromptStore) Reload() {
	s.mu.Lock()
	defer s.mu.Unlock()
	clear(s.loaded)
}

// Load returns the template called name.
func (s *PromptStore) Load(name string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if tmpl, ok := s.loaded[name]; ok {
		return tmpl, nil
	}

	if !s.seeded {
		s.seedErr = s.seed()
		s.seeded = true
		if s.seedErr != nil {
			logger.Warn("prompts: %v; using built-in templates", s.seedErr)
		}
	}

	builtin, known := builtinPrompts[name]
	if s.seedErr != nil {
		if known {
			return builtin, nil
		}
		return "", fmt.Errorf("prompt %q: %w", name, s.seedErr)
	}

	tmpl, err := s.read(name)
	switch {
	case err != nil && known:
		logger.Debug("prompts: %s: %v; using built-in template", name, err)
		tmpl = builtin
	case err != nil:
		return "", fmt.Errorf("prompt %q: %w", name, err)
	case known && placeholders(tmpl) != placeholders(builtin):
		logger.Warn("prompts: %s.txt in %s has the wrong placeholders; using built-in template", name, s.dir)
		tmpl = builtin
	}

	s.loaded[name] = tmpl
	return tmpl, nil
}

func (s *PromptStore) read(name string) (string, error) {
	data, err := os.ReadFile(filepath.Join(s.dir, name+".txt"))
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(data)), nil
}

// seed creates the directory and writes any missing built-in files.
// Existing files are left alone.
func (s *PromptStore) seed() error {
	if err := os.MkdirAll(s.dir, 0700); err != nil {
		return fmt.Errorf("create %s: %w", s.dir, err)
	}

	files := map[string]string{"README.md": promptsReadme}
	for name, tmpl := range builtinPrompts {
		files[name+".txt"] = tmpl
	}
	for name, content := range files {
		if err := writeIfMissing(filepath.Join(s.dir, name), content); err != nil {
			return err
		}
	}
	return nil
}

func writeIfMissing(path, content string) error {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0600)
	if errors.Is(err, fs.ErrExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	if _, err := f.WriteString(content); err != nil {
		_ = f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	return f.Close()
}

// placeholders returns the verb letters of tmpl in order. "%%" is skipped.
func placeholders(tmpl string) string {
	var verbs []byte
	for i := 0; i+1 < len(tmpl); i++ {
		if tmpl[i] == '%' {
			if tmpl[i+1] != '%' {
				verbs = append(verbs, tmpl[i+1])
			}
			i++
		}
	}
	return string(verbs)
}
