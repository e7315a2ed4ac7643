package repository

import (
	"context"
	"sync"

	"github.com/dridi71/sarah/pkg/model"
)

// memoryRepo implements Repository in process memory. Used for tests and for
// ephemeral sessions that should not touch the disk.
type memoryRepo struct {
	mu            sync.Mutex
	conversations []*model.Conversation
	documents     []*model.CorpusDocument
}

// NewMemory creates an in-memory repository
func NewMemory() Repository {
	return &memoryRepo{}
}

func (r *memoryRepo) LoadConversations(ctx context.Context) ([]*model.Conversation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]*model.Conversation, len(r.conversations))
	for i, c := range r.conversations {
		out[i] = c.Clone()
	}
	return out, nil
}

func (r *memoryRepo) SaveConversations(ctx context.Context, conversations []*model.Conversation) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.conversations = make([]*model.Conversation, len(conversations))
	for i, c := range conversations {
		r.conversations[i] = c.Clone()
	}
	return nil
}

func (r *memoryRepo) LoadDocuments(ctx context.Context) ([]*model.CorpusDocument, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]*model.CorpusDocument, len(r.documents))
	for i, d := range r.documents {
		copied := *d
		out[i] = &copied
	}
	return out, nil
}

func (r *memoryRepo) SaveDocuments(ctx context.Context, documents []*model.CorpusDocument) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.documents = make([]*model.CorpusDocument, len(documents))
	for i, d := range documents {
		copied := *d
		r.documents[i] = &copied
	}
	return nil
}
