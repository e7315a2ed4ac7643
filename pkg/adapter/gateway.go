package adapter

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"iter"
	"net/http"
	"unicode/utf8"

	"github.com/dridi71/sarah/pkg/model"
	"github.com/m-mizutani/goerr/v2"
)

// Gateway is the client side of the inference gateway. Solve and ExplainImage
// yield text fragments in arrival order; the sequence is lazy, finite and
// non-restartable, and stream close is the only completion signal.
// GenerateQuiz resolves to one structured quiz instead of a stream.
type Gateway interface {
	Solve(ctx context.Context, req *model.ChatRequest) iter.Seq2[string, error]
	ExplainImage(ctx context.Context, req *model.ChatRequest) iter.Seq2[string, error]
	GenerateQuiz(ctx context.Context, req *model.ChatRequest) (*model.QuizData, error)
}

type gatewayClient struct {
	endpoint string
	client   *http.Client
}

// NewGateway creates an HTTP gateway client for the given base URL
// (e.g. "http://localhost:8080")
func NewGateway(baseURL string) (Gateway, error) {
	if baseURL == "" {
		return nil, goerr.New("gateway base URL is required")
	}
	return &gatewayClient{
		endpoint: baseURL + "/api/chat",
		client:   &http.Client{},
	}, nil
}

func (g *gatewayClient) Solve(ctx context.Context, req *model.ChatRequest) iter.Seq2[string, error] {
	req.Action = model.ActionSolve
	return g.stream(ctx, req)
}

func (g *gatewayClient) ExplainImage(ctx context.Context, req *model.ChatRequest) iter.Seq2[string, error] {
	req.Action = model.ActionExplainImage
	return g.stream(ctx, req)
}

func (g *gatewayClient) GenerateQuiz(ctx context.Context, req *model.ChatRequest) (*model.QuizData, error) {
	req.Action = model.ActionGenerateQuiz

	resp, err := g.post(ctx, req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, responseError(resp)
	}

	var quiz model.QuizData
	if err := json.NewDecoder(resp.Body).Decode(&quiz); err != nil {
		return nil, goerr.Wrap(err, "failed to decode quiz response")
	}
	return &quiz, nil
}

func (g *gatewayClient) post(ctx context.Context, body *model.ChatRequest) (*http.Response, error) {
	data, err := json.Marshal(body)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to marshal gateway request")
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, g.endpoint, bytes.NewReader(data))
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create gateway request")
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := g.client.Do(httpReq)
	if err != nil {
		return nil, goerr.Wrap(err, "gateway request failed")
	}
	return resp, nil
}

// stream performs the request on first iteration and yields body chunks as
// they arrive. Chunks are re-aligned to rune boundaries so each fragment is a
// valid string even when the transport splits multi-byte characters.
func (g *gatewayClient) stream(ctx context.Context, body *model.ChatRequest) iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		resp, err := g.post(ctx, body)
		if err != nil {
			yield("", err)
			return
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			yield("", responseError(resp))
			return
		}

		buf := make([]byte, 4096)
		var carry []byte
		for {
			n, err := resp.Body.Read(buf)
			if n > 0 {
				chunk := append(carry, buf[:n]...)
				cut := runeBoundary(chunk)
				carry = append([]byte(nil), chunk[cut:]...)
				if cut > 0 && !yield(string(chunk[:cut]), nil) {
					return
				}
			}

			if err == io.EOF {
				if len(carry) > 0 {
					yield(string(carry), nil)
				}
				return
			}
			if err != nil {
				yield("", goerr.Wrap(err, "failed to read response stream"))
				return
			}
		}
	}
}

// runeBoundary returns the length of the longest prefix of b that ends on a
// complete UTF-8 rune
func runeBoundary(b []byte) int {
	end := len(b)
	for i := 0; i < utf8.UTFMax && end-i > 0; i++ {
		c := b[end-i-1]
		if c < utf8.RuneSelf {
			return end
		}
		if utf8.RuneStart(c) {
			if r, _ := utf8.DecodeRune(b[end-i-1:]); r == utf8.RuneError {
				return end - i - 1
			}
			return end
		}
	}
	return end
}

// responseError decodes the JSON error body of a non-2xx response. The
// message field is surfaced to the UI as-is.
func responseError(resp *http.Response) error {
	data, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<16))

	var chatErr model.ChatError
	if err := json.Unmarshal(data, &chatErr); err == nil && chatErr.Error != "" {
		return goerr.New(chatErr.Error, goerr.V("status", resp.StatusCode))
	}
	return goerr.New("gateway request failed", goerr.V("status", resp.StatusCode))
}
