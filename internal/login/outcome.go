package login

type OutcomeKind int

const (
	AwaitingInput OutcomeKind = iota
	NeedsSessionSelection
	HandedOff
	Failed
)

func (k OutcomeKind) String() string {
	switch k {
	case AwaitingInput:
		return "awaiting_input"
	case NeedsSessionSelection:
		return "needs_session_selection"
	case HandedOff:
		return "handed_off"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}

// Outcome is the result of one Submit. Message is set for Failed.
type Outcome struct {
	Kind    OutcomeKind
	Message string
}

// Prompt is the next question to ask the user.
type Prompt struct {
	Label  string
	Secret bool
}
