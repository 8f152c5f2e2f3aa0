package services

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"strings"
	"sync"

	"github.com/custodia-labs/docchat/internal/core/domain"
	"github.com/custodia-labs/docchat/internal/core/ports/driven"
	"github.com/custodia-labs/docchat/internal/core/ports/driving"
	"github.com/custodia-labs/docchat/internal/logger"
	"github.com/custodia-labs/docchat/internal/ranker"
	"github.com/custodia-labs/docchat/internal/termvec"
)

// Ensure RetrievalService implements the interface.
var _ driving.RetrievalService = (*RetrievalService)(nil)

// contextSeparator joins selected chunk texts.
const contextSeparator = "\n\n"

// Causes recorded when RetrieveContext degrades to an empty context.
const (
	CauseNotFound      = "not_found"
	CauseEmptyDocument = "empty_document"
	CauseError         = "error"
)

// RetrievalService selects document chunks relevant to a question.
type RetrievalService struct {
	docStore driven.DocumentStore
	settings domain.RetrievalSettings

	mu        sync.Mutex
	served    int64
	fallbacks int64
	degraded  map[string]int64
}

// NewRetrievalService creates a retrieval service with the given policy.
func NewRetrievalService(docStore driven.DocumentStore, settings domain.RetrievalSettings) *RetrievalService {
	if settings.VocabularySize <= 0 {
		settings.VocabularySize = domain.DefaultVocabularySize
	}
	return &RetrievalService{
		docStore: docStore,
		settings: settings,
		degraded: make(map[string]int64),
	}
}

// Retrieve scores the document's chunks against query and returns the selection.
func (s *RetrievalService) Retrieve(ctx context.Context, documentID, ownerID, query string) (*domain.RetrievalResult, error) {
	doc, err := s.docStore.FindDocument(ctx, documentID, ownerID)
	if err != nil {
		return nil, err
	}

	vocab := doc.Vocabulary
	if len(vocab) == 0 {
		// Documents stored before vocabularies were persisted.
		vocab = termvec.BuildVocabulary(chunkTexts(doc.Chunks), s.settings.VocabularySize)
	}

	queries := [][]float64{termvec.Embed(query, vocab)}
	if len(s.settings.HintKeywords) > 0 {
		queries = append(queries, termvec.Embed(strings.Join(s.settings.HintKeywords, " "), vocab))
	}

	ranked := ranker.Rank(queries, doc.Chunks)
	selected, fallback := ranker.Select(ranked, doc.Chunks, ranker.PolicyFromSettings(s.settings))

	texts := make([]string, len(selected))
	for i, sc := range selected {
		texts[i] = sc.Chunk.Text
	}

	return &domain.RetrievalResult{
		DocumentID: doc.ID,
		Query:      query,
		Vocabulary: vocab,
		Selected:   selected,
		Fallback:   fallback,
		Context:    strings.Join(texts, contextSeparator),
	}, nil
}

// RetrieveContext returns the selected chunk text. Every failure yields an
// empty string and is logged and counted by cause.
func (s *RetrievalService) RetrieveContext(ctx context.Context, documentID, ownerID, query string) (out string) {
	defer func() {
		if r := recover(); r != nil {
			s.degrade(documentID, ownerID, CauseError, fmt.Errorf("panic: %v", r))
			out = ""
		}
	}()

	result, err := s.Retrieve(ctx, documentID, ownerID, query)
	switch {
	case errors.Is(err, domain.ErrNotFound):
		s.degrade(documentID, ownerID, CauseNotFound, err)
		return ""
	case err != nil:
		s.degrade(documentID, ownerID, CauseError, err)
		return ""
	case result.Context == "":
		s.degrade(documentID, ownerID, CauseEmptyDocument, errors.New("document has no chunks"))
		return ""
	}

	s.mu.Lock()
	s.served++
	if result.Fallback {
		s.fallbacks++
	}
	s.mu.Unlock()

	logger.Debug("retrieval %s: %d chunks selected (fallback=%t)", documentID, len(result.Selected), result.Fallback)
	return result.Context
}

// Stats reports retrieval outcomes since the service was created.
func (s *RetrievalService) Stats() driving.RetrievalStats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return driving.RetrievalStats{
		Served:    s.served,
		Fallbacks: s.fallbacks,
		Degraded:  maps.Clone(s.degraded),
	}
}

func (s *RetrievalService) degrade(documentID, ownerID, cause string, err error) {
	s.mu.Lock()
	s.degraded[cause]++
	s.mu.Unlock()
	logger.Warn("retrieval degraded to empty context: document=%s user=%s cause=%s: %v",
		documentID, ownerID, cause, err)
}

func chunkTexts(chunks []domain.Chunk) []string {
	texts := make([]string, len(chunks))
	for i, c := range chunks {
		texts[i] = c.Text
	}
	return texts
}
