package model

// QuizQuestion is a single multiple-choice question. CorrectAnswer must equal
// one of the Options values; the gateway enforces that via response schema at
// generation time.
type QuizQuestion struct {
	Question      string   `json:"question"`
	Options       []string `json:"options"`
	CorrectAnswer string   `json:"correctAnswer"`
	Explanation   string   `json:"explanation"`
}

// QuizData is a generated quiz attached wholesale to a message. The
// conversation layer treats it as an opaque leaf.
type QuizData struct {
	Title     string         `json:"title"`
	Questions []QuizQuestion `json:"questions"`
}
