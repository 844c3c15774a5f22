package greetd

import (
	"context"
	"fmt"

	"github.com/danmuck/greetctl/internal/protocol"
	"github.com/danmuck/greetctl/internal/transport"
	"github.com/rs/zerolog/log"
)

// New wraps a freshly opened transport in the Empty state.
func New(t transport.Transport) *Empty {
	return &Empty{conn{t: t}}
}

// Open dials a new connection and returns it in the Empty state.
func Open(ctx context.Context, open transport.Opener) (*Empty, error) {
	t, err := open(ctx)
	if err != nil {
		return nil, err
	}
	return New(t), nil
}

// send performs one exchange on behalf of a consumed state. On failure
// the connection is closed; it must not be reused.
func send(ctx context.Context, t transport.Transport, req protocol.Request) (protocol.Response, error) {
	resp, err := t.Exchange(ctx, req)
	if err != nil {
		if cerr := t.Close(); cerr != nil {
			log.Debug().Err(cerr).Str("conn", t.ID()).Msg("close after transport failure")
		}
		return nil, err
	}
	return resp, nil
}

// authTransition maps the reply to CreateSession or
// PostAuthMessageResponse onto the next state.
func authTransition(t transport.Transport, resp protocol.Response) (State, error) {
	switch r := resp.(type) {
	case protocol.Success:
		return &SessionCreated{conn{t: t}}, nil
	case protocol.AuthMessage:
		return &NeedAuthResponse{conn: conn{t: t}, MessageType: r.MessageType, Message: r.Message}, nil
	case protocol.Error:
		return errorState(t, r), nil
	}
	t.Close()
	return nil, fmt.Errorf("%w: %T", ErrUnexpectedResponse, resp)
}

func errorState(t transport.Transport, r protocol.Error) *ErrorEncountered {
	log.Warn().Str("conn", t.ID()).Str("error_type", string(r.ErrorType)).Str("description", r.Description).Msg("greetd error response")
	return &ErrorEncountered{conn: conn{t: t}, ErrorType: r.ErrorType, Description: r.Description}
}

func (s *Empty) CreateSession(ctx context.Context, username string) (State, error) {
	t, err := s.take()
	if err != nil {
		return nil, err
	}
	resp, err := send(ctx, t, protocol.CreateSession{Username: username})
	if err != nil {
		return nil, err
	}
	return authTransition(t, resp)
}

// PostAuthMessageResponse answers the pending message. Pass nil to
// acknowledge info and error messages.
func (s *NeedAuthResponse) PostAuthMessageResponse(ctx context.Context, response *string) (State, error) {
	t, err := s.take()
	if err != nil {
		return nil, err
	}
	resp, err := send(ctx, t, protocol.PostAuthMessageResponse{Response: response})
	if err != nil {
		return nil, err
	}
	return authTransition(t, resp)
}

func (s *SessionCreated) StartSession(ctx context.Context, cmd, env []string) (State, error) {
	t, err := s.take()
	if err != nil {
		return nil, err
	}
	resp, err := send(ctx, t, protocol.StartSession{Cmd: cmd, Env: env})
	if err != nil {
		return nil, err
	}
	switch r := resp.(type) {
	case protocol.Success:
		log.Info().Str("conn", t.ID()).Strs("cmd", cmd).Msg("session start accepted")
		return &SessionStarted{conn{t: t}}, nil
	case protocol.Error:
		return errorState(t, r), nil
	default:
		t.Close()
		return nil, fmt.Errorf("%w: %s after start_session", ErrUnexpectedResponse, resp.Type())
	}
}

func (s *SessionCreated) CancelSession(ctx context.Context) (*Empty, error) {
	return cancel(ctx, &s.conn)
}

func (s *ErrorEncountered) CancelSession(ctx context.Context) (*Empty, error) {
	return cancel(ctx, &s.conn)
}

func cancel(ctx context.Context, c *conn) (*Empty, error) {
	t, err := c.take()
	if err != nil {
		return nil, err
	}
	resp, err := send(ctx, t, protocol.CancelSession{})
	if err != nil {
		return nil, err
	}
	// greetd drops its session state regardless of the reply.
	if e, ok := resp.(protocol.Error); ok {
		log.Warn().Str("conn", t.ID()).Str("description", e.Description).Msg("cancel_session returned error")
	}
	return New(t), nil
}
