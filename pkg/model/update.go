package model

// MessageUpdate is a mutation applied to the last message of a conversation.
// Each variant carries exactly the fields it replaces, so mutation intent
// stays explicit instead of an open-ended partial merge.
type MessageUpdate interface {
	Apply(msg *Message)
}

// ContentUpdate replaces the message content outright. Used to finalize an
// answer or to overwrite partial fragments with an error notice.
type ContentUpdate string

func (u ContentUpdate) Apply(msg *Message) {
	msg.Content = string(u)
}

// QuizAttach attaches a generated quiz to the message
type QuizAttach struct {
	Quiz *QuizData
}

func (u QuizAttach) Apply(msg *Message) {
	msg.Quiz = u.Quiz
}
