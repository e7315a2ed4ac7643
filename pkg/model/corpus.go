package model

import "github.com/google/uuid"

type DocumentID string

// NewDocumentID generates a new unique DocumentID
func NewDocumentID() DocumentID {
	return DocumentID(uuid.New().String())
}

// CorpusDocument is a named reference text injected as grounding context into
// outgoing prompts. Never mutated in place; its lifecycle is independent of
// conversations.
type CorpusDocument struct {
	ID      DocumentID `json:"id"`
	Name    string     `json:"name"`
	Content string     `json:"content"`
}
