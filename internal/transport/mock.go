package transport

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/danmuck/greetctl/internal/observability"
	"github.com/danmuck/greetctl/internal/protocol"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// Username markers understood by the mock daemon.
const (
	MockNoPassMarker = "nopass"
	MockOTPMarker    = "otp"
	MockInfoMarker   = "info"
	MockFailMarker   = "fail"
)

const (
	MockPasswordPrompt = "Password: "
	MockOTPPrompt      = "OTP: "
	MockInfoMessage    = "This is a test info message!"
	MockAuthFailure    = "authentication failed"
	MockMissingAnswer  = "missing response to prompt"
)

type mockPrompt struct {
	msg    protocol.AuthMessage
	reject bool
}

// Mock simulates greetd in memory. It derives the prompts for a
// login from markers in the username.
type Mock struct {
	id      string
	queue   []mockPrompt
	pending *mockPrompt
	active  bool
	closed  bool
	sent    []protocol.Request
}

func NewMock() *Mock {
	return &Mock{id: "mock-" + uuid.NewString()}
}

func (m *Mock) ID() string {
	return m.id
}

// Sent returns every request received, in order.
func (m *Mock) Sent() []protocol.Request {
	out := make([]protocol.Request, len(m.sent))
	copy(out, m.sent)
	return out
}

// Count returns how many requests of typ were received.
func (m *Mock) Count(typ protocol.MessageType) int {
	n := 0
	for _, req := range m.sent {
		if req.Type() == typ {
			n++
		}
	}
	return n
}

func (m *Mock) Exchange(ctx context.Context, req protocol.Request) (protocol.Response, error) {
	if m.closed {
		return nil, ErrClosed
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	start := time.Now()
	resp, err := m.handle(req)
	observability.RecordExchange("mock", string(req.Type()), resultLabel(resp, err), time.Since(start))
	if err != nil {
		return nil, err
	}
	log.Debug().Str("conn", m.id).Str("request", string(req.Type())).Str("response", string(resp.Type())).Msg("mock exchange")
	return resp, nil
}

func (m *Mock) handle(req protocol.Request) (protocol.Response, error) {
	m.sent = append(m.sent, req)

	switch r := req.(type) {
	case protocol.CreateSession:
		if m.active {
			return protocol.Error{ErrorType: protocol.ErrorGeneric, Description: "a session is already being configured"}, nil
		}
		m.reset()
		m.active = true
		m.queue = promptsFor(r.Username)
		return m.next(), nil

	case protocol.PostAuthMessageResponse:
		if m.pending == nil {
			return nil, fmt.Errorf("%w: no auth message pending", ErrOutOfOrder)
		}
		current := *m.pending
		if current.msg.MessageType.Answerable() && r.Response == nil {
			m.reset()
			return protocol.Error{ErrorType: protocol.ErrorAuth, Description: MockMissingAnswer}, nil
		}
		if current.reject {
			m.reset()
			return protocol.Error{ErrorType: protocol.ErrorAuth, Description: MockAuthFailure}, nil
		}
		return m.next(), nil

	case protocol.StartSession:
		if !m.active || m.pending != nil || len(m.queue) > 0 {
			return nil, fmt.Errorf("%w: start_session before authentication completed", ErrOutOfOrder)
		}
		log.Info().Str("conn", m.id).Strs("cmd", r.Cmd).Strs("env", r.Env).Msg("mock session started")
		m.reset()
		return protocol.Success{}, nil

	case protocol.CancelSession:
		m.reset()
		return protocol.Success{}, nil

	default:
		return nil, fmt.Errorf("%w: %T", protocol.ErrUnknownMessageType, req)
	}
}

func (m *Mock) next() protocol.Response {
	if len(m.queue) == 0 {
		m.pending = nil
		return protocol.Success{}
	}
	p := m.queue[0]
	m.queue = m.queue[1:]
	m.pending = &p
	return p.msg
}

func (m *Mock) reset() {
	m.queue = nil
	m.pending = nil
	m.active = false
}

func promptsFor(username string) []mockPrompt {
	var out []mockPrompt
	if !strings.Contains(username, MockNoPassMarker) {
		out = append(out, mockPrompt{
			msg:    protocol.AuthMessage{MessageType: protocol.AuthSecret, Message: MockPasswordPrompt},
			reject: strings.Contains(username, MockFailMarker),
		})
	}
	if strings.Contains(username, MockOTPMarker) {
		out = append(out, mockPrompt{
			msg: protocol.AuthMessage{MessageType: protocol.AuthVisible, Message: MockOTPPrompt},
		})
	}
	if strings.Contains(username, MockInfoMarker) {
		out = append(out, mockPrompt{
			msg: protocol.AuthMessage{MessageType: protocol.AuthInfo, Message: MockInfoMessage},
		})
	}
	return out
}

func (m *Mock) Close() error {
	m.closed = true
	return nil
}
