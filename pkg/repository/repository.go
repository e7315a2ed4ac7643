package repository

import (
	"context"

	"github.com/dridi71/sarah/pkg/model"
)

// Repository persists the two independent collections of the application:
// conversations and corpus documents. Each collection is written in full on
// every save (whole-blob semantics); there is no partial update.
type Repository interface {
	// LoadConversations returns all persisted conversations, newest first.
	// A missing blob yields an empty slice, not an error.
	LoadConversations(ctx context.Context) ([]*model.Conversation, error)

	// SaveConversations replaces the persisted conversation collection
	SaveConversations(ctx context.Context, conversations []*model.Conversation) error

	// LoadDocuments returns all persisted corpus documents in insertion order.
	// A missing blob yields an empty slice, not an error.
	LoadDocuments(ctx context.Context) ([]*model.CorpusDocument, error)

	// SaveDocuments replaces the persisted corpus collection
	SaveDocuments(ctx context.Context, documents []*model.CorpusDocument) error
}
