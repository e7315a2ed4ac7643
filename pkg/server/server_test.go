package server_test

import (
	"bytes"
	"context"
	"encoding/json"
	"iter"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/dridi71/sarah/pkg/locale"
	"github.com/dridi71/sarah/pkg/model"
	"github.com/dridi71/sarah/pkg/server"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gt"
	"google.golang.org/genai"
)

// mockGemini scripts the model responses and records what was asked
type mockGemini struct {
	fragments []string
	streamErr error
	response  string
	err       error

	lastContents []*genai.Content
	lastConfig   *genai.GenerateContentConfig
}

func textResponse(text string) *genai.GenerateContentResponse {
	return &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{
			{Content: genai.NewContentFromText(text, genai.RoleModel)},
		},
	}
}

func (m *mockGemini) GenerateContent(ctx context.Context, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	m.lastContents = contents
	m.lastConfig = config
	if m.err != nil {
		return nil, m.err
	}
	return textResponse(m.response), nil
}

func (m *mockGemini) GenerateContentStream(ctx context.Context, contents []*genai.Content, config *genai.GenerateContentConfig) iter.Seq2[*genai.GenerateContentResponse, error] {
	m.lastContents = contents
	m.lastConfig = config
	return func(yield func(*genai.GenerateContentResponse, error) bool) {
		for _, f := range m.fragments {
			if !yield(textResponse(f), nil) {
				return
			}
		}
		if m.streamErr != nil {
			yield(nil, m.streamErr)
		}
	}
}

func postChat(t *testing.T, handler http.Handler, req *model.ChatRequest) *httptest.ResponseRecorder {
	t.Helper()
	body, err := json.Marshal(req)
	gt.NoError(t, err)

	httpReq := httptest.NewRequest(http.MethodPost, "/api/chat", bytes.NewReader(body))
	httpReq.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httpReq)
	return rec
}

func promptText(t *testing.T, contents []*genai.Content) string {
	t.Helper()
	gt.A(t, contents).Length(1)
	var text string
	for _, part := range contents[0].Parts {
		text += part.Text
	}
	return text
}

func TestSolveRelaysStream(t *testing.T) {
	gemini := &mockGemini{fragments: []string{"La réponse ", "est ", "42."}}
	srv := server.New(gemini)

	rec := postChat(t, srv.Handler(), &model.ChatRequest{
		Action:   model.ActionSolve,
		Language: locale.French,
		Prompt:   "Quelle est la réponse ?",
	})

	gt.Equal(t, rec.Code, http.StatusOK)
	gt.S(t, rec.Header().Get("Content-Type")).Contains("text/plain")
	gt.Equal(t, rec.Body.String(), "La réponse est 42.")

	prompt := promptText(t, gemini.lastContents)
	gt.S(t, prompt).Contains(`Question de l'utilisateur: "Quelle est la réponse ?"`)
	gt.S(t, prompt).Contains("Tu es Sarah")
}

func TestSolveGroundsPromptOnCorpus(t *testing.T) {
	gemini := &mockGemini{fragments: []string{"ok"}}
	srv := server.New(gemini)

	corpusText := "--- Document : Programme P6 ---\nLes fractions"
	rec := postChat(t, srv.Handler(), &model.ChatRequest{
		Action:        model.ActionSolve,
		Language:      locale.French,
		Prompt:        "question",
		CorpusContent: &corpusText,
	})
	gt.Equal(t, rec.Code, http.StatusOK)

	prompt := promptText(t, gemini.lastContents)
	gt.S(t, prompt).Contains("CONTEXTE STRICT")
	gt.S(t, prompt).Contains("Les fractions")

	// Without corpus content the strict-context block is absent entirely
	rec = postChat(t, srv.Handler(), &model.ChatRequest{
		Action:   model.ActionSolve,
		Language: locale.French,
		Prompt:   "question",
	})
	gt.Equal(t, rec.Code, http.StatusOK)
	gt.S(t, promptText(t, gemini.lastContents)).NotContains("CONTEXTE STRICT")
}

func TestSolveArabicPersona(t *testing.T) {
	gemini := &mockGemini{fragments: []string{"ok"}}
	srv := server.New(gemini)

	rec := postChat(t, srv.Handler(), &model.ChatRequest{
		Action:   model.ActionSolve,
		Language: locale.Arabic,
		Prompt:   "سؤال",
	})
	gt.Equal(t, rec.Code, http.StatusOK)
	gt.S(t, promptText(t, gemini.lastContents)).Contains("أنتِ سارة")
}

func TestSolveStreamErrorBeforeFirstFragment(t *testing.T) {
	gemini := &mockGemini{streamErr: goerr.New("model unavailable")}
	srv := server.New(gemini)

	rec := postChat(t, srv.Handler(), &model.ChatRequest{
		Action: model.ActionSolve,
		Prompt: "question",
	})

	gt.Equal(t, rec.Code, http.StatusBadGateway)
	var chatErr model.ChatError
	gt.NoError(t, json.Unmarshal(rec.Body.Bytes(), &chatErr))
	gt.S(t, chatErr.Error).Contains("model unavailable")
}

func TestSolveStreamErrorMidResponse(t *testing.T) {
	gemini := &mockGemini{
		fragments: []string{"partial "},
		streamErr: goerr.New("connection reset"),
	}
	srv := server.New(gemini)

	rec := postChat(t, srv.Handler(), &model.ChatRequest{
		Action: model.ActionSolve,
		Prompt: "question",
	})

	// Headers were already sent; the relay stops after what it delivered
	gt.Equal(t, rec.Code, http.StatusOK)
	gt.Equal(t, rec.Body.String(), "partial ")
}

func TestExplainImage(t *testing.T) {
	gemini := &mockGemini{fragments: []string{"une figure géométrique"}}
	srv := server.New(gemini)

	rec := postChat(t, srv.Handler(), &model.ChatRequest{
		Action:      model.ActionExplainImage,
		Language:    locale.French,
		Prompt:      "explique",
		ImageBase64: "aGVsbG8=",
		MIMEType:    "image/png",
	})

	gt.Equal(t, rec.Code, http.StatusOK)
	gt.Equal(t, rec.Body.String(), "une figure géométrique")

	gt.A(t, gemini.lastContents).Length(1)
	parts := gemini.lastContents[0].Parts
	gt.A(t, parts).Length(2)
	gt.V(t, parts[0].InlineData).NotNil()
	gt.Equal(t, parts[0].InlineData.MIMEType, "image/png")
	gt.Equal(t, parts[0].InlineData.Data, []byte("hello"))
	gt.S(t, parts[1].Text).Contains("Analyse l'image")
}

func TestExplainImageMissingImage(t *testing.T) {
	srv := server.New(&mockGemini{})

	rec := postChat(t, srv.Handler(), &model.ChatRequest{
		Action: model.ActionExplainImage,
		Prompt: "explique",
	})
	gt.Equal(t, rec.Code, http.StatusBadRequest)
}

func TestExplainImageInvalidBase64(t *testing.T) {
	srv := server.New(&mockGemini{})

	rec := postChat(t, srv.Handler(), &model.ChatRequest{
		Action:      model.ActionExplainImage,
		Prompt:      "explique",
		ImageBase64: "%%%not base64%%%",
		MIMEType:    "image/png",
	})
	gt.Equal(t, rec.Code, http.StatusBadRequest)
}

func TestGenerateQuizRelaysDocument(t *testing.T) {
	quizJSON := `{"title":"Quiz sur les fractions","questions":[{"question":"1/2 + 1/4 = ?","options":["3/4","2/6"],"correctAnswer":"3/4","explanation":"Même dénominateur."}]}`
	gemini := &mockGemini{response: quizJSON}
	srv := server.New(gemini)

	rec := postChat(t, srv.Handler(), &model.ChatRequest{
		Action:       model.ActionGenerateQuiz,
		Language:     locale.French,
		Prompt:       "les fractions",
		Level:        "P6",
		NumQuestions: 2,
	})

	gt.Equal(t, rec.Code, http.StatusOK)
	gt.S(t, rec.Header().Get("Content-Type")).Contains("application/json")

	var quiz model.QuizData
	gt.NoError(t, json.Unmarshal(rec.Body.Bytes(), &quiz))
	gt.Equal(t, quiz.Title, "Quiz sur les fractions")
	gt.A(t, quiz.Questions).Length(1)

	// Structured output is enforced at the provider
	gt.V(t, gemini.lastConfig).NotNil()
	gt.Equal(t, gemini.lastConfig.ResponseMIMEType, "application/json")
	gt.V(t, gemini.lastConfig.ResponseSchema).NotNil()

	prompt := promptText(t, gemini.lastContents)
	gt.S(t, prompt).Contains("Sujet : les fractions")
	gt.S(t, prompt).Contains("Niveau : P6")
	gt.S(t, prompt).Contains("Nombre de questions : 2")
}

func TestGenerateQuizModelError(t *testing.T) {
	gemini := &mockGemini{err: goerr.New("quota exceeded")}
	srv := server.New(gemini)

	rec := postChat(t, srv.Handler(), &model.ChatRequest{
		Action: model.ActionGenerateQuiz,
		Prompt: "topic",
	})

	gt.Equal(t, rec.Code, http.StatusBadGateway)
	var chatErr model.ChatError
	gt.NoError(t, json.Unmarshal(rec.Body.Bytes(), &chatErr))
	gt.S(t, chatErr.Error).Contains("quota exceeded")
}

func TestInvalidAction(t *testing.T) {
	srv := server.New(&mockGemini{})

	rec := postChat(t, srv.Handler(), &model.ChatRequest{Action: "translate"})
	gt.Equal(t, rec.Code, http.StatusBadRequest)

	var chatErr model.ChatError
	gt.NoError(t, json.Unmarshal(rec.Body.Bytes(), &chatErr))
	gt.Equal(t, chatErr.Error, "invalid action specified")
}

func TestInvalidBody(t *testing.T) {
	srv := server.New(&mockGemini{})

	httpReq := httptest.NewRequest(http.MethodPost, "/api/chat", bytes.NewReader([]byte("{not json")))
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httpReq)
	gt.Equal(t, rec.Code, http.StatusBadRequest)
}
