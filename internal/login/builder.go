package login

import (
	"context"
	"errors"

	"github.com/danmuck/greetctl/internal/greetd"
	"github.com/danmuck/greetctl/internal/observability"
	"github.com/danmuck/greetctl/internal/protocol"
	"github.com/danmuck/greetctl/internal/sessions"
	"github.com/danmuck/greetctl/internal/transport"
	"github.com/rs/zerolog/log"
)

// UsernamePrompt labels the first question of every attempt.
const UsernamePrompt = "Username"

var ErrMissingAnswer = errors.New("login: prompt requires an answer")

type Option func(*Builder)

// WithAutoStart controls whether a selected session is started as soon
// as authentication completes. Enabled by default.
func WithAutoStart(enabled bool) Option {
	return func(b *Builder) {
		b.autoStart = enabled
	}
}

// WithSession preselects a launchable session.
func WithSession(s sessions.Session) Option {
	return func(b *Builder) {
		b.SelectSession(s)
	}
}

type Builder struct {
	open      transport.Opener
	state     greetd.State
	questions QuestionLog
	selected  *sessions.Session
	autoStart bool
	notice    string
}

// NewBuilder returns a builder that dials open at the start of each
// login attempt that has no live connection.
func NewBuilder(open transport.Opener, opts ...Option) *Builder {
	b := &Builder{open: open, autoStart: true}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// State returns the current lifecycle state, or nil before the first
// attempt and after a transport failure.
func (b *Builder) State() greetd.State {
	return b.state
}

func (b *Builder) SelectSession(s sessions.Session) {
	b.selected = &s
}

func (b *Builder) Selected() (sessions.Session, bool) {
	if b.selected == nil {
		return sessions.Session{}, false
	}
	return *b.selected, true
}

func (b *Builder) Answers() []Answer {
	return b.questions.Entries()
}

func (b *Builder) CurrentPrompt() (Prompt, bool) {
	switch st := b.state.(type) {
	case nil, *greetd.Empty:
		return Prompt{Label: UsernamePrompt}, true
	case *greetd.NeedAuthResponse:
		if st.MessageType.Answerable() {
			return Prompt{Label: st.Message, Secret: st.MessageType == protocol.AuthSecret}, true
		}
	}
	return Prompt{}, false
}

// DisplayMessage returns a pending info/error message from greetd, or
// the description of the last failure until the next Submit.
func (b *Builder) DisplayMessage() (string, bool) {
	if st, ok := b.state.(*greetd.NeedAuthResponse); ok && !st.MessageType.Answerable() {
		return st.Message, true
	}
	if b.notice != "" {
		return b.notice, true
	}
	return "", false
}

// Submit feeds one answer into the lifecycle. A non-nil error is a
// configuration or transport failure; the connection has been dropped
// and the next Submit starts a new attempt on a fresh one.
func (b *Builder) Submit(ctx context.Context, answer *string) (Outcome, error) {
	b.notice = ""
	out, err := b.submit(ctx, answer)
	observability.RecordOutcome(out.Kind.String())
	return out, err
}

func (b *Builder) submit(ctx context.Context, answer *string) (Outcome, error) {
	switch st := b.state.(type) {
	case nil:
		return b.begin(ctx, nil, answer)
	case *greetd.Empty:
		return b.begin(ctx, st, answer)
	case *greetd.NeedAuthResponse:
		return b.answer(ctx, st, answer)
	case *greetd.SessionCreated:
		return b.start(ctx, st)
	case *greetd.ErrorEncountered:
		return b.cancelAfterError(ctx, st)
	case *greetd.SessionStarted:
		return Outcome{Kind: HandedOff}, nil
	default:
		return Outcome{}, errors.New("login: unknown state")
	}
}

func (b *Builder) begin(ctx context.Context, empty *greetd.Empty, answer *string) (Outcome, error) {
	if answer == nil {
		return Outcome{Kind: AwaitingInput}, ErrMissingAnswer
	}
	b.questions.Clear()
	if empty == nil {
		var err error
		empty, err = greetd.Open(ctx, b.open)
		if err != nil {
			return Outcome{Kind: Failed, Message: err.Error()}, err
		}
		b.state = empty
	}
	b.questions.Append(Answer{Prompt: UsernamePrompt, Value: *answer, Kind: Visible})
	log.Info().Str("user", *answer).Str("conn", empty.Transport().ID()).Msg("create session")
	next, err := empty.CreateSession(ctx, *answer)
	return b.advance(ctx, next, err)
}

func (b *Builder) answer(ctx context.Context, st *greetd.NeedAuthResponse, answer *string) (Outcome, error) {
	if !st.MessageType.Answerable() {
		next, err := st.PostAuthMessageResponse(ctx, nil)
		return b.advance(ctx, next, err)
	}
	if answer == nil {
		return Outcome{Kind: AwaitingInput}, ErrMissingAnswer
	}
	kind := Visible
	if st.MessageType == protocol.AuthSecret {
		kind = Secret
	}
	b.questions.Append(Answer{Prompt: st.Message, Value: *answer, Kind: kind})
	next, err := st.PostAuthMessageResponse(ctx, answer)
	return b.advance(ctx, next, err)
}

func (b *Builder) start(ctx context.Context, st *greetd.SessionCreated) (Outcome, error) {
	if b.selected == nil {
		return Outcome{Kind: NeedsSessionSelection}, nil
	}
	sel := *b.selected
	log.Info().Str("session", sel.Slug).Msg("start session")
	next, err := st.StartSession(ctx, sel.Exec, sel.Environment())
	return b.advance(ctx, next, err)
}

// cancelAfterError cancels the daemon-side session and surfaces the carried
// description verbatim.
func (b *Builder) cancelAfterError(ctx context.Context, st *greetd.ErrorEncountered) (Outcome, error) {
	msg := st.Description
	empty, err := st.CancelSession(ctx)
	if err != nil {
		return b.fail(err)
	}
	b.state = empty
	b.questions.Clear()
	b.notice = msg
	return Outcome{Kind: Failed, Message: msg}, nil
}

func (b *Builder) advance(ctx context.Context, next greetd.State, err error) (Outcome, error) {
	if err != nil {
		return b.fail(err)
	}
	b.state = next
	switch st := next.(type) {
	case *greetd.NeedAuthResponse:
		return Outcome{Kind: AwaitingInput}, nil
	case *greetd.SessionCreated:
		if b.selected == nil {
			return Outcome{Kind: NeedsSessionSelection}, nil
		}
		if b.autoStart {
			return b.start(ctx, st)
		}
		return Outcome{Kind: AwaitingInput}, nil
	case *greetd.ErrorEncountered:
		return b.cancelAfterError(ctx, st)
	case *greetd.SessionStarted:
		return Outcome{Kind: HandedOff}, nil
	default:
		return Outcome{Kind: AwaitingInput}, nil
	}
}

// fail drops the connection after a transport failure.
func (b *Builder) fail(err error) (Outcome, error) {
	if b.state != nil {
		b.state.Close()
	}
	b.state = nil
	b.questions.Clear()
	log.Error().Err(err).Msg("greetd connection lost")
	return Outcome{Kind: Failed, Message: err.Error()}, err
}

// Close releases the connection. It does not cancel a started session.
func (b *Builder) Close() error {
	if b.state == nil {
		return nil
	}
	err := b.state.Close()
	b.state = nil
	return err
}
