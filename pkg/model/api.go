package model

import "github.com/dridi71/sarah/pkg/locale"

// Action selects the gateway behavior for one chat request
type Action string

const (
	ActionSolve        Action = "solve"
	ActionExplainImage Action = "explainImage"
	ActionGenerateQuiz Action = "generateQuiz"
)

// ChatRequest is the JSON body of the gateway endpoint. CorpusContent and
// FileContent are pointers so that an absent context is distinguishable from
// an empty string on the wire.
type ChatRequest struct {
	Action   Action          `json:"action"`
	Language locale.Language `json:"language"`
	Prompt   string          `json:"prompt"`

	CorpusContent *string `json:"corpusContent,omitempty"`
	FileContent   *string `json:"fileContent,omitempty"`

	// explainImage only
	ImageBase64 string `json:"imageBase64,omitempty"`
	MIMEType    string `json:"mimeType,omitempty"`

	// generateQuiz only
	Level        string `json:"level,omitempty"`
	NumQuestions int    `json:"numQuestions,omitempty"`
}

// ChatError is the JSON error body returned with any non-2xx status
type ChatError struct {
	Error string `json:"error"`
}
