package protocol

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/danmuck/greetctl/internal/protocol/frame"
)

type createSessionWire struct {
	Type     MessageType `json:"type"`
	Username string      `json:"username"`
}

type postAuthMessageResponseWire struct {
	Type     MessageType `json:"type"`
	Response *string     `json:"response"`
}

type startSessionWire struct {
	Type MessageType `json:"type"`
	Cmd  []string    `json:"cmd"`
	Env  []string    `json:"env"`
}

type bareWire struct {
	Type MessageType `json:"type"`
}

type authMessageWire struct {
	Type            MessageType     `json:"type"`
	AuthMessageType AuthMessageType `json:"auth_message_type"`
	AuthMessage     string          `json:"auth_message"`
}

type errorWire struct {
	Type        MessageType `json:"type"`
	ErrorType   ErrorType   `json:"error_type"`
	Description string      `json:"description"`
}

// MarshalRequest encodes a request as its JSON payload.
func MarshalRequest(req Request) ([]byte, error) {
	switch r := req.(type) {
	case CreateSession:
		return json.Marshal(createSessionWire{Type: TypeCreateSession, Username: r.Username})
	case PostAuthMessageResponse:
		return json.Marshal(postAuthMessageResponseWire{Type: TypePostAuthMessageResponse, Response: r.Response})
	case StartSession:
		// greetd rejects null lists.
		return json.Marshal(startSessionWire{
			Type: TypeStartSession,
			Cmd:  nonNil(r.Cmd),
			Env:  nonNil(r.Env),
		})
	case CancelSession:
		return json.Marshal(bareWire{Type: TypeCancelSession})
	case nil:
		return nil, ErrNilMessage
	default:
		return nil, fmt.Errorf("%w: %T", ErrUnknownMessageType, req)
	}
}

// MarshalResponse encodes a response as its JSON payload.
func MarshalResponse(resp Response) ([]byte, error) {
	switch r := resp.(type) {
	case Success:
		return json.Marshal(bareWire{Type: TypeSuccess})
	case AuthMessage:
		if !r.MessageType.Valid() {
			return nil, fmt.Errorf("%w: %q", ErrInvalidAuthMessageType, r.MessageType)
		}
		return json.Marshal(authMessageWire{
			Type:            TypeAuthMessage,
			AuthMessageType: r.MessageType,
			AuthMessage:     r.Message,
		})
	case Error:
		if !r.ErrorType.Valid() {
			return nil, fmt.Errorf("%w: %q", ErrInvalidErrorType, r.ErrorType)
		}
		return json.Marshal(errorWire{Type: TypeError, ErrorType: r.ErrorType, Description: r.Description})
	case nil:
		return nil, ErrNilMessage
	default:
		return nil, fmt.Errorf("%w: %T", ErrUnknownMessageType, resp)
	}
}

// WriteRequest frames and writes one request.
func WriteRequest(w io.Writer, req Request, limits frame.Limits) error {
	payload, err := MarshalRequest(req)
	if err != nil {
		return err
	}
	return frame.WriteFrame(w, payload, limits)
}

// WriteResponse frames and writes one response.
func WriteResponse(w io.Writer, resp Response, limits frame.Limits) error {
	payload, err := MarshalResponse(resp)
	if err != nil {
		return err
	}
	return frame.WriteFrame(w, payload, limits)
}

func nonNil(in []string) []string {
	if in == nil {
		return []string{}
	}
	return in
}
