package adapter_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/dridi71/sarah/pkg/adapter"
	"github.com/dridi71/sarah/pkg/locale"
	"github.com/dridi71/sarah/pkg/model"
	"github.com/m-mizutani/gt"
)

func TestGatewaySolveStreamsFragments(t *testing.T) {
	var received model.ChatRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gt.Equal(t, r.URL.Path, "/api/chat")
		gt.NoError(t, json.NewDecoder(r.Body).Decode(&received))

		flusher := w.(http.Flusher)
		for _, part := range []string{"La réponse ", "est ", "42."} {
			_, err := w.Write([]byte(part))
			gt.NoError(t, err)
			flusher.Flush()
		}
	}))
	defer server.Close()

	gateway, err := adapter.NewGateway(server.URL)
	gt.NoError(t, err)

	req := &model.ChatRequest{Language: locale.French, Prompt: "Quelle est la réponse ?"}
	var fragments []string
	for fragment, err := range gateway.Solve(context.Background(), req) {
		gt.NoError(t, err)
		fragments = append(fragments, fragment)
	}

	gt.Equal(t, strings.Join(fragments, ""), "La réponse est 42.")
	gt.Equal(t, received.Action, model.ActionSolve)
	gt.Equal(t, received.Prompt, "Quelle est la réponse ?")
}

// The transport may split a multi-byte character across reads; every yielded
// fragment must still be a valid string.
func TestGatewayStreamRealignsRuneBoundaries(t *testing.T) {
	full := "الكسور équivalentes"
	raw := []byte(full)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		flusher := w.(http.Flusher)
		// Flush byte by byte so multi-byte runes are guaranteed to split
		for i := range raw {
			_, err := w.Write(raw[i : i+1])
			gt.NoError(t, err)
			flusher.Flush()
		}
	}))
	defer server.Close()

	gateway, err := adapter.NewGateway(server.URL)
	gt.NoError(t, err)

	var assembled strings.Builder
	for fragment, err := range gateway.Solve(context.Background(), &model.ChatRequest{}) {
		gt.NoError(t, err)
		gt.True(t, utf8.ValidString(fragment))
		assembled.WriteString(fragment)
	}
	gt.Equal(t, assembled.String(), full)
}

func TestGatewayStreamSurfacesErrorBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadGateway)
		_ = json.NewEncoder(w).Encode(model.ChatError{Error: "quota exceeded"})
	}))
	defer server.Close()

	gateway, err := adapter.NewGateway(server.URL)
	gt.NoError(t, err)

	var streamErr error
	var fragments int
	for _, err := range gateway.Solve(context.Background(), &model.ChatRequest{}) {
		if err != nil {
			streamErr = err
			break
		}
		fragments++
	}

	gt.Equal(t, fragments, 0)
	gt.V(t, streamErr).NotNil()
	gt.S(t, streamErr.Error()).Contains("quota exceeded")
}

func TestGatewayExplainImageAction(t *testing.T) {
	var received model.ChatRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gt.NoError(t, json.NewDecoder(r.Body).Decode(&received))
		_, _ = w.Write([]byte("une figure"))
	}))
	defer server.Close()

	gateway, err := adapter.NewGateway(server.URL)
	gt.NoError(t, err)

	req := &model.ChatRequest{ImageBase64: "aGVsbG8=", MIMEType: "image/png"}
	for _, err := range gateway.ExplainImage(context.Background(), req) {
		gt.NoError(t, err)
	}

	gt.Equal(t, received.Action, model.ActionExplainImage)
	gt.Equal(t, received.ImageBase64, "aGVsbG8=")
}

func TestGatewayGenerateQuiz(t *testing.T) {
	quiz := model.QuizData{
		Title: "Quiz sur les fractions",
		Questions: []model.QuizQuestion{
			{
				Question:      "1/2 + 1/4 = ?",
				Options:       []string{"3/4", "2/6", "1/8"},
				CorrectAnswer: "3/4",
				Explanation:   "On réduit au même dénominateur.",
			},
		},
	}

	var received model.ChatRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gt.NoError(t, json.NewDecoder(r.Body).Decode(&received))
		w.Header().Set("Content-Type", "application/json")
		gt.NoError(t, json.NewEncoder(w).Encode(quiz))
	}))
	defer server.Close()

	gateway, err := adapter.NewGateway(server.URL)
	gt.NoError(t, err)

	req := &model.ChatRequest{Prompt: "les fractions", Level: "P6", NumQuestions: 3}
	got, err := gateway.GenerateQuiz(context.Background(), req)
	gt.NoError(t, err)
	gt.Equal(t, *got, quiz)
	gt.Equal(t, received.Action, model.ActionGenerateQuiz)
	gt.Equal(t, received.NumQuestions, 3)
}

func TestGatewayGenerateQuizError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_ = json.NewEncoder(w).Encode(model.ChatError{Error: "model unavailable"})
	}))
	defer server.Close()

	gateway, err := adapter.NewGateway(server.URL)
	gt.NoError(t, err)

	_, err = gateway.GenerateQuiz(context.Background(), &model.ChatRequest{Prompt: "topic"})
	gt.Error(t, err)
	gt.S(t, err.Error()).Contains("model unavailable")
}

func TestNewGatewayRequiresURL(t *testing.T) {
	_, err := adapter.NewGateway("")
	gt.Error(t, err)
}
