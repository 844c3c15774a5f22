package login

import "strings"

type AnswerKind int

const (
	Visible AnswerKind = iota
	Secret
)

func (k AnswerKind) String() string {
	if k == Secret {
		return "secret"
	}
	return "visible"
}

// Answer is one submitted prompt/answer pair.
type Answer struct {
	Prompt string
	Value  string
	Kind   AnswerKind
}

// Display renders the answer for re-display; secrets are masked.
func (a Answer) Display() string {
	if a.Kind == Secret {
		return strings.Repeat("*", len([]rune(a.Value)))
	}
	return a.Value
}

// QuestionLog is append-only between clears.
type QuestionLog struct {
	entries []Answer
}

func (l *QuestionLog) Append(a Answer) {
	l.entries = append(l.entries, a)
}

func (l *QuestionLog) Clear() {
	l.entries = nil
}

func (l *QuestionLog) Len() int {
	return len(l.entries)
}

func (l *QuestionLog) Entries() []Answer {
	out := make([]Answer, len(l.entries))
	copy(out, l.entries)
	return out
}
