package greetd

import (
	"errors"
	"fmt"

	"github.com/danmuck/greetctl/internal/protocol"
	"github.com/danmuck/greetctl/internal/transport"
)

var (
	ErrStateConsumed      = errors.New("greetd: state already consumed by a transition")
	ErrUnexpectedResponse = errors.New("greetd: unexpected response")
)

// Name identifies a lifecycle state.
type Name string

const (
	StateEmpty            Name = "empty"
	StateNeedAuthResponse Name = "need_auth_response"
	StateSessionCreated   Name = "session_created"
	StateSessionStarted   Name = "session_started"
	StateErrorEncountered Name = "error_encountered"
)

// State is implemented only by the lifecycle types in this package.
type State interface {
	Name() Name
	// Transport returns the owned connection, or nil once consumed.
	Transport() transport.Transport
	// Close releases the connection without a transition.
	Close() error
	sealed()
}

// ProtocolError is a well-formed error response from greetd.
type ProtocolError struct {
	Type        protocol.ErrorType
	Description string
}

func (e *ProtocolError) Error() string {
	return fmt.Sprintf("greetd: %s: %s", e.Type, e.Description)
}

// conn is the move-only connection slot embedded by every state.
type conn struct {
	t transport.Transport
}

func (c *conn) Transport() transport.Transport {
	return c.t
}

func (c *conn) take() (transport.Transport, error) {
	if c.t == nil {
		return nil, ErrStateConsumed
	}
	t := c.t
	c.t = nil
	return t, nil
}

func (c *conn) Close() error {
	t, err := c.take()
	if err != nil {
		return nil
	}
	return t.Close()
}

func (*conn) sealed() {}

type Empty struct{ conn }

type NeedAuthResponse struct {
	conn
	MessageType protocol.AuthMessageType
	Message     string
}

type SessionCreated struct{ conn }

type SessionStarted struct{ conn }

type ErrorEncountered struct {
	conn
	ErrorType   protocol.ErrorType
	Description string
}

func (*Empty) Name() Name            { return StateEmpty }
func (*NeedAuthResponse) Name() Name { return StateNeedAuthResponse }
func (*SessionCreated) Name() Name   { return StateSessionCreated }
func (*SessionStarted) Name() Name   { return StateSessionStarted }
func (*ErrorEncountered) Name() Name { return StateErrorEncountered }

// Err returns the carried error response.
func (s *ErrorEncountered) Err() *ProtocolError {
	return &ProtocolError{Type: s.ErrorType, Description: s.Description}
}
