package model

import (
	"time"

	"github.com/google/uuid"
)

type ConversationID string

// NewConversationID generates a new unique ConversationID
func NewConversationID() ConversationID {
	return ConversationID(uuid.New().String())
}

type MessageID string

// NewMessageID generates a new unique MessageID
func NewMessageID() MessageID {
	return MessageID(uuid.New().String())
}

// Role identifies the author of a message
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Feedback is the user's reaction to an assistant message
type Feedback string

const (
	FeedbackNone     Feedback = ""
	FeedbackLiked    Feedback = "liked"
	FeedbackDisliked Feedback = "disliked"
)

// AttachmentKind distinguishes image uploads from text-bearing documents
type AttachmentKind string

const (
	AttachmentImage    AttachmentKind = "image"
	AttachmentDocument AttachmentKind = "document"
)

// Attachment is a normalized uploaded file. Content holds base64 image data
// for images and extracted plain text for documents. Immutable once created.
type Attachment struct {
	Name       string         `json:"name"`
	Kind       AttachmentKind `json:"kind"`
	PreviewURL string         `json:"previewUrl,omitempty"`
	MIMEType   string         `json:"mimeType,omitempty"`
	Content    string         `json:"content"`
}

// Message is one turn of a conversation. Content of the last assistant
// message grows by append while a response stream is in progress.
type Message struct {
	ID         MessageID   `json:"id"`
	Role       Role        `json:"role"`
	Content    string      `json:"content"`
	Attachment *Attachment `json:"attachment,omitempty"`
	Quiz       *QuizData   `json:"quiz,omitempty"`
	Feedback   Feedback    `json:"feedback,omitempty"`
}

// Conversation is an ordered list of messages with a display title
type Conversation struct {
	ID        ConversationID `json:"id"`
	Title     string         `json:"title"`
	Messages  []*Message     `json:"messages"`
	CreatedAt time.Time      `json:"createdAt"`
}

// LastMessage returns the most recently appended message, or nil if the
// conversation is empty
func (c *Conversation) LastMessage() *Message {
	if len(c.Messages) == 0 {
		return nil
	}
	return c.Messages[len(c.Messages)-1]
}

// Clone returns a deep copy so callers can read a snapshot without racing
// with store mutations
func (c *Conversation) Clone() *Conversation {
	copied := &Conversation{
		ID:        c.ID,
		Title:     c.Title,
		CreatedAt: c.CreatedAt,
		Messages:  make([]*Message, 0, len(c.Messages)),
	}
	for _, msg := range c.Messages {
		m := *msg
		copied.Messages = append(copied.Messages, &m)
	}
	return copied
}
