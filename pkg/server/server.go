package server

import (
	"encoding/base64"
	"net/http"

	"github.com/dridi71/sarah/pkg/adapter"
	"github.com/dridi71/sarah/pkg/locale"
	"github.com/dridi71/sarah/pkg/model"
	"github.com/dridi71/sarah/pkg/utils/logging"
	"github.com/gin-gonic/gin"
	"github.com/m-mizutani/goerr/v2"
	"google.golang.org/genai"
)

// Server is the stateless inference gateway. It accepts an action descriptor,
// builds a grounded prompt and either relays the model's text stream or
// returns one structured quiz document. It holds no conversation state.
type Server struct {
	engine *gin.Engine
	gemini adapter.Gemini
}

// New creates the gateway around a Gemini adapter
func New(gemini adapter.Gemini) *Server {
	gin.SetMode(gin.ReleaseMode)

	s := &Server{
		engine: gin.New(),
		gemini: gemini,
	}
	s.engine.Use(gin.Recovery())
	s.engine.POST("/api/chat", s.handleChat)

	return s
}

// Handler exposes the gateway as an http.Handler
func (s *Server) Handler() http.Handler {
	return s.engine
}

func (s *Server) handleChat(c *gin.Context) {
	var req model.ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, model.ChatError{Error: "invalid request body"})
		return
	}
	if !req.Language.Valid() {
		req.Language = locale.Default
	}

	switch req.Action {
	case model.ActionSolve:
		contents := []*genai.Content{genai.NewContentFromText(solvePrompt(&req), genai.RoleUser)}
		s.relayStream(c, contents)

	case model.ActionExplainImage:
		contents, err := imageContents(&req)
		if err != nil {
			c.JSON(http.StatusBadRequest, model.ChatError{Error: err.Error()})
			return
		}
		s.relayStream(c, contents)

	case model.ActionGenerateQuiz:
		s.generateQuiz(c, &req)

	default:
		c.JSON(http.StatusBadRequest, model.ChatError{Error: "invalid action specified"})
	}
}

// imageContents builds the multimodal request: inline image part followed by
// the text prompt
func imageContents(req *model.ChatRequest) ([]*genai.Content, error) {
	if req.ImageBase64 == "" || req.MIMEType == "" {
		return nil, goerr.New("image data is missing for explainImage action")
	}

	imageData, err := base64.StdEncoding.DecodeString(req.ImageBase64)
	if err != nil {
		return nil, goerr.New("image data is not valid base64")
	}

	parts := []*genai.Part{
		genai.NewPartFromBytes(imageData, req.MIMEType),
		genai.NewPartFromText(explainImagePrompt(req)),
	}
	return []*genai.Content{genai.NewContentFromParts(parts, genai.RoleUser)}, nil
}

// relayStream pipes the model's fragments to the client as chunked
// text/plain. Stream closure is the only completion signal; there is no
// end-of-message sentinel.
func (s *Server) relayStream(c *gin.Context, contents []*genai.Content) {
	ctx := c.Request.Context()
	started := false

	for resp, err := range s.gemini.GenerateContentStream(ctx, contents, nil) {
		if err != nil {
			if !started {
				c.JSON(http.StatusBadGateway, model.ChatError{Error: err.Error()})
				return
			}
			// Headers are already out; all we can do is drop the connection
			logging.From(ctx).Error("stream relay failed mid-response", "error", err)
			return
		}

		text := responseText(resp)
		if text == "" {
			continue
		}

		if !started {
			c.Header("Content-Type", "text/plain; charset=utf-8")
			c.Status(http.StatusOK)
			started = true
		}
		if _, err := c.Writer.WriteString(text); err != nil {
			logging.From(ctx).Warn("client went away during stream", "error", err)
			return
		}
		c.Writer.Flush()
	}

	if !started {
		c.Header("Content-Type", "text/plain; charset=utf-8")
		c.Status(http.StatusOK)
	}
}

func (s *Server) generateQuiz(c *gin.Context, req *model.ChatRequest) {
	ctx := c.Request.Context()

	config := &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
		ResponseSchema:   quizSchema,
	}
	contents := []*genai.Content{genai.NewContentFromText(quizPrompt(req), genai.RoleUser)}

	resp, err := s.gemini.GenerateContent(ctx, contents, config)
	if err != nil {
		c.JSON(http.StatusBadGateway, model.ChatError{Error: err.Error()})
		return
	}

	text := responseText(resp)
	if text == "" {
		c.JSON(http.StatusBadGateway, model.ChatError{Error: "empty response from model"})
		return
	}

	c.Data(http.StatusOK, "application/json", []byte(text))
}

// responseText concatenates the text parts of the first candidate
func responseText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return ""
	}

	var text string
	for _, part := range resp.Candidates[0].Content.Parts {
		text += part.Text
	}
	return text
}
