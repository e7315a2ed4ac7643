package history

import (
	"context"
	"sync"
	"time"

	"github.com/dridi71/sarah/pkg/locale"
	"github.com/dridi71/sarah/pkg/model"
	"github.com/dridi71/sarah/pkg/repository"
	"github.com/dridi71/sarah/pkg/utils/logging"
)

// Store owns the ordered collection of conversations and their messages. All
// mutations are atomic per call and written through to the repository on a
// best-effort basis: a failed save is logged, never surfaced, and the store
// keeps operating in memory for the rest of the session.
type Store struct {
	mu            sync.Mutex
	repo          repository.Repository
	lang          locale.Language
	conversations []*model.Conversation
	persistOK     bool
}

// New loads the persisted collection. A load failure or an empty collection
// both start the store with one fresh conversation, so there is never a
// "no conversation" state.
func New(ctx context.Context, repo repository.Repository, lang locale.Language) *Store {
	s := &Store{
		repo:      repo,
		lang:      lang,
		persistOK: true,
	}

	conversations, err := repo.LoadConversations(ctx)
	if err != nil {
		logging.From(ctx).Warn("failed to load conversations, starting fresh", "error", err)
		conversations = nil
	}
	s.conversations = conversations

	if len(s.conversations) == 0 {
		s.mu.Lock()
		s.createLocked(ctx)
		s.mu.Unlock()
	}

	return s
}

// Create inserts a new empty conversation at the front and returns its ID
func (s *Store) Create(ctx context.Context) model.ConversationID {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.createLocked(ctx)
}

func (s *Store) createLocked(ctx context.Context) model.ConversationID {
	conv := &model.Conversation{
		ID:        model.NewConversationID(),
		Title:     locale.T(s.lang, "defaultConversationTitle"),
		Messages:  []*model.Message{},
		CreatedAt: time.Now(),
	}
	s.conversations = append([]*model.Conversation{conv}, s.conversations...)
	s.persistLocked(ctx)
	return conv.ID
}

// Delete removes the conversation with the given ID. No-op if absent.
func (s *Store) Delete(ctx context.Context, id model.ConversationID) {
	s.mu.Lock()
	defer s.mu.Unlock()

	kept := s.conversations[:0]
	for _, c := range s.conversations {
		if c.ID != id {
			kept = append(kept, c)
		}
	}
	s.conversations = kept
	s.persistLocked(ctx)
}

// Rename replaces the conversation title. No-op if the ID is absent.
func (s *Store) Rename(ctx context.Context, id model.ConversationID, title string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if conv := s.findLocked(id); conv != nil {
		conv.Title = title
		s.persistLocked(ctx)
	}
}

// AddMessage appends a message with a fresh unique ID to the conversation.
// No-op if the conversation is absent.
func (s *Store) AddMessage(ctx context.Context, id model.ConversationID, role model.Role, content string, attachment *model.Attachment) {
	s.mu.Lock()
	defer s.mu.Unlock()

	conv := s.findLocked(id)
	if conv == nil {
		return
	}

	conv.Messages = append(conv.Messages, &model.Message{
		ID:         model.NewMessageID(),
		Role:       role,
		Content:    content,
		Attachment: attachment,
	})
	s.persistLocked(ctx)
}

// AppendFragment grows the content of the last message by one streamed
// fragment. Applies only while the last message is an assistant message;
// otherwise no-op.
func (s *Store) AppendFragment(ctx context.Context, id model.ConversationID, fragment string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	conv := s.findLocked(id)
	if conv == nil {
		return
	}

	last := conv.LastMessage()
	if last == nil || last.Role != model.RoleAssistant {
		return
	}

	last.Content += fragment
	s.persistLocked(ctx)
}

// ApplyToLast applies a tagged update to the last message of the
// conversation. No-op if the conversation is absent or has no messages.
func (s *Store) ApplyToLast(ctx context.Context, id model.ConversationID, update model.MessageUpdate) {
	s.mu.Lock()
	defer s.mu.Unlock()

	conv := s.findLocked(id)
	if conv == nil {
		return
	}

	last := conv.LastMessage()
	if last == nil {
		return
	}

	update.Apply(last)
	s.persistLocked(ctx)
}

// SetFeedback records the user's reaction on the message with the given ID.
// Reapplying the same value clears it back to none; a differing value
// overwrites.
func (s *Store) SetFeedback(ctx context.Context, id model.ConversationID, messageID model.MessageID, feedback model.Feedback) {
	s.mu.Lock()
	defer s.mu.Unlock()

	conv := s.findLocked(id)
	if conv == nil {
		return
	}

	for _, msg := range conv.Messages {
		if msg.ID == messageID {
			if msg.Feedback == feedback {
				msg.Feedback = model.FeedbackNone
			} else {
				msg.Feedback = feedback
			}
			s.persistLocked(ctx)
			return
		}
	}
}

// Get returns a snapshot of the conversation with the given ID
func (s *Store) Get(id model.ConversationID) (*model.Conversation, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if conv := s.findLocked(id); conv != nil {
		return conv.Clone(), true
	}
	return nil, false
}

// Conversations returns a snapshot of the whole collection, newest first
func (s *Store) Conversations() []*model.Conversation {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]*model.Conversation, len(s.conversations))
	for i, c := range s.conversations {
		out[i] = c.Clone()
	}
	return out
}

// Healthy reports whether the most recent persistence attempt succeeded
func (s *Store) Healthy() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.persistOK
}

func (s *Store) findLocked(id model.ConversationID) *model.Conversation {
	for _, c := range s.conversations {
		if c.ID == id {
			return c
		}
	}
	return nil
}

func (s *Store) persistLocked(ctx context.Context) {
	if err := s.repo.SaveConversations(ctx, s.conversations); err != nil {
		logging.From(ctx).Warn("failed to persist conversations", "error", err)
		s.persistOK = false
		return
	}
	s.persistOK = true
}
