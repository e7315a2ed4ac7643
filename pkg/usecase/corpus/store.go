package corpus

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/dridi71/sarah/pkg/model"
	"github.com/dridi71/sarah/pkg/repository"
	"github.com/dridi71/sarah/pkg/utils/logging"
)

// Store owns the user-curated collection of reference documents. Insertion
// order is preserved; persistence follows the same write-through best-effort
// policy as the conversation store.
type Store struct {
	mu        sync.Mutex
	repo      repository.Repository
	documents []*model.CorpusDocument
	persistOK bool
}

// New loads the persisted corpus. A load failure starts with an empty
// collection; the error is logged, not surfaced.
func New(ctx context.Context, repo repository.Repository) *Store {
	s := &Store{
		repo:      repo,
		persistOK: true,
	}

	documents, err := repo.LoadDocuments(ctx)
	if err != nil {
		logging.From(ctx).Warn("failed to load corpus, starting empty", "error", err)
		documents = nil
	}
	s.documents = documents

	return s
}

// Add appends a document and returns its ID. Empty name or content is the
// caller's responsibility to reject; the store does not enforce it.
func (s *Store) Add(ctx context.Context, name, content string) model.DocumentID {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc := &model.CorpusDocument{
		ID:      model.NewDocumentID(),
		Name:    name,
		Content: content,
	}
	s.documents = append(s.documents, doc)
	s.persistLocked(ctx)
	return doc.ID
}

// Delete removes the document with the given ID. No-op if absent.
func (s *Store) Delete(ctx context.Context, id model.DocumentID) {
	s.mu.Lock()
	defer s.mu.Unlock()

	kept := s.documents[:0]
	for _, d := range s.documents {
		if d.ID != id {
			kept = append(kept, d)
		}
	}
	s.documents = kept
	s.persistLocked(ctx)
}

// Documents returns a snapshot of the collection in insertion order
func (s *Store) Documents() []*model.CorpusDocument {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]*model.CorpusDocument, len(s.documents))
	for i, d := range s.documents {
		copied := *d
		out[i] = &copied
	}
	return out
}

// GroundingContext concatenates all documents with per-document delimiters
// for injection into an outbound prompt. The second return value is false
// when the corpus is empty: callers must treat that as "no context", which is
// distinct from an empty string.
func (s *Store) GroundingContext() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.documents) == 0 {
		return "", false
	}

	blocks := make([]string, 0, len(s.documents))
	for _, d := range s.documents {
		blocks = append(blocks, fmt.Sprintf("--- Document : %s ---\n%s", d.Name, d.Content))
	}
	return strings.Join(blocks, "\n\n"), true
}

// Healthy reports whether the most recent persistence attempt succeeded
func (s *Store) Healthy() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.persistOK
}

func (s *Store) persistLocked(ctx context.Context) {
	if err := s.repo.SaveDocuments(ctx, s.documents); err != nil {
		logging.From(ctx).Warn("failed to persist corpus", "error", err)
		s.persistOK = false
		return
	}
	s.persistOK = true
}
