package chat

import (
	"context"
	"fmt"
	"iter"

	"github.com/dridi71/sarah/pkg/adapter"
	"github.com/dridi71/sarah/pkg/locale"
	"github.com/dridi71/sarah/pkg/model"
	"github.com/dridi71/sarah/pkg/usecase/corpus"
	"github.com/dridi71/sarah/pkg/usecase/history"
	"github.com/m-mizutani/goerr/v2"
)

const maxTitleRunes = 40

// Session drives one conversation: it appends the user's turn, dispatches the
// request through the gateway with grounding context, and assembles the
// streamed answer into the store. Submissions are serialized by the session's
// Guard.
type Session struct {
	store     *history.Store
	corpus    *corpus.Store
	gateway   adapter.Gateway
	assembler *Assembler
	guard     Guard

	id   model.ConversationID
	lang locale.Language
}

// NewInput contains parameters for creating a chat session
type NewInput struct {
	History        *history.Store
	Corpus         *corpus.Store
	Gateway        adapter.Gateway
	ConversationID model.ConversationID
	Language       locale.Language
}

func New(input NewInput) (*Session, error) {
	if input.History == nil {
		return nil, goerr.New("history store is required")
	}
	if input.Corpus == nil {
		return nil, goerr.New("corpus store is required")
	}
	if input.Gateway == nil {
		return nil, goerr.New("gateway is required")
	}
	if _, ok := input.History.Get(input.ConversationID); !ok {
		return nil, goerr.New("conversation not found", goerr.V("conversation_id", input.ConversationID))
	}

	lang := input.Language
	if !lang.Valid() {
		lang = locale.Default
	}

	return &Session{
		store:     input.History,
		corpus:    input.Corpus,
		gateway:   input.Gateway,
		assembler: NewAssembler(input.History, lang),
		id:        input.ConversationID,
		lang:      lang,
	}, nil
}

// Streaming reports whether a response is currently being generated
func (s *Session) Streaming() bool {
	return s.guard.Active()
}

// Send submits one user turn. If the attachment is an image the request is
// dispatched as explainImage, otherwise as solve; document attachments travel
// as file content. The observe callback sees each answer fragment as it is
// applied. After the first successful exchange the conversation is titled
// from the message or the attachment name.
func (s *Session) Send(ctx context.Context, message string, attachment *model.Attachment, observe func(fragment string)) error {
	release, err := s.guard.Acquire()
	if err != nil {
		return err
	}
	defer release()

	conv, ok := s.store.Get(s.id)
	if !ok {
		return goerr.New("conversation not found", goerr.V("conversation_id", s.id))
	}
	priorMessages := len(conv.Messages)

	req := &model.ChatRequest{
		Language: s.lang,
		Prompt:   message,
	}
	if ground, ok := s.corpus.GroundingContext(); ok {
		req.CorpusContent = &ground
	}
	if attachment != nil && attachment.Kind == model.AttachmentDocument {
		req.FileContent = &attachment.Content
	}

	s.store.AddMessage(ctx, s.id, model.RoleUser, message, attachment)
	s.store.AddMessage(ctx, s.id, model.RoleAssistant, "", nil)

	var fragments iter.Seq2[string, error]
	if attachment != nil && attachment.Kind == model.AttachmentImage {
		req.ImageBase64 = attachment.Content
		req.MIMEType = attachment.MIMEType
		fragments = s.gateway.ExplainImage(ctx, req)
	} else {
		fragments = s.gateway.Solve(ctx, req)
	}

	if err := s.assembler.Consume(ctx, s.id, fragments, observe); err != nil {
		return err
	}

	if priorMessages <= 1 {
		s.autoTitle(ctx, message, attachment)
	}
	return nil
}

// GenerateQuiz is the non-streaming variant: the gateway resolves to one
// structured quiz, attached wholesale to the pending assistant message
func (s *Session) GenerateQuiz(ctx context.Context, topic, level string, numQuestions int) error {
	release, err := s.guard.Acquire()
	if err != nil {
		return err
	}
	defer release()

	req := &model.ChatRequest{
		Language:     s.lang,
		Prompt:       topic,
		Level:        level,
		NumQuestions: numQuestions,
	}
	if ground, ok := s.corpus.GroundingContext(); ok {
		req.CorpusContent = &ground
	}

	request := fmt.Sprintf("%s : %s", locale.T(s.lang, "quizRequestTitle"), topic)
	s.store.AddMessage(ctx, s.id, model.RoleUser, request, nil)
	s.store.AddMessage(ctx, s.id, model.RoleAssistant, "", nil)

	quiz, err := s.gateway.GenerateQuiz(ctx, req)
	if err != nil {
		s.store.ApplyToLast(ctx, s.id, model.ContentUpdate(ErrorNotice(s.lang, err)))
		return goerr.Wrap(err, "quiz generation failed")
	}

	s.store.ApplyToLast(ctx, s.id, model.QuizAttach{Quiz: quiz})

	title := fmt.Sprintf("Quiz sur %s", topic)
	if s.lang == locale.Arabic {
		title = fmt.Sprintf("اختبار عن %s", topic)
	}
	s.store.Rename(ctx, s.id, truncateTitle(title))
	return nil
}

func (s *Session) autoTitle(ctx context.Context, message string, attachment *model.Attachment) {
	title := message
	if title == "" && attachment != nil {
		title = attachment.Name
	}
	if title == "" {
		return
	}
	s.store.Rename(ctx, s.id, truncateTitle(title))
}

// truncateTitle shortens a title to 40 characters with an ellipsis suffix,
// counting runes so multi-byte text is never split
func truncateTitle(title string) string {
	runes := []rune(title)
	if len(runes) <= maxTitleRunes {
		return title
	}
	return string(runes[:maxTitleRunes]) + "..."
}
