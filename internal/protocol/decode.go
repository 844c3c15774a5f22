package protocol

import (
	"encoding/json"
	"fmt"
	"io"
	"unicode/utf8"

	"github.com/danmuck/greetctl/internal/protocol/frame"
)

func peekType(payload []byte) (MessageType, error) {
	if !utf8.Valid(payload) {
		return "", fmt.Errorf("%w: invalid utf-8", ErrMalformedPayload)
	}
	var head bareWire
	if err := json.Unmarshal(payload, &head); err != nil {
		return "", fmt.Errorf("%w: %v", ErrMalformedPayload, err)
	}
	return head.Type, nil
}

// UnmarshalRequest decodes a JSON request payload.
func UnmarshalRequest(payload []byte) (Request, error) {
	typ, err := peekType(payload)
	if err != nil {
		return nil, err
	}
	switch typ {
	case TypeCreateSession:
		var w createSessionWire
		if err := unmarshal(payload, &w); err != nil {
			return nil, err
		}
		return CreateSession{Username: w.Username}, nil
	case TypePostAuthMessageResponse:
		var w postAuthMessageResponseWire
		if err := unmarshal(payload, &w); err != nil {
			return nil, err
		}
		return PostAuthMessageResponse{Response: w.Response}, nil
	case TypeStartSession:
		var w startSessionWire
		if err := unmarshal(payload, &w); err != nil {
			return nil, err
		}
		return StartSession{Cmd: w.Cmd, Env: w.Env}, nil
	case TypeCancelSession:
		return CancelSession{}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownMessageType, typ)
	}
}

// UnmarshalResponse decodes a JSON response payload.
func UnmarshalResponse(payload []byte) (Response, error) {
	typ, err := peekType(payload)
	if err != nil {
		return nil, err
	}
	switch typ {
	case TypeSuccess:
		return Success{}, nil
	case TypeAuthMessage:
		var w authMessageWire
		if err := unmarshal(payload, &w); err != nil {
			return nil, err
		}
		if !w.AuthMessageType.Valid() {
			return nil, fmt.Errorf("%w: %q", ErrInvalidAuthMessageType, w.AuthMessageType)
		}
		return AuthMessage{MessageType: w.AuthMessageType, Message: w.AuthMessage}, nil
	case TypeError:
		var w errorWire
		if err := unmarshal(payload, &w); err != nil {
			return nil, err
		}
		if !w.ErrorType.Valid() {
			return nil, fmt.Errorf("%w: %q", ErrInvalidErrorType, w.ErrorType)
		}
		return Error{ErrorType: w.ErrorType, Description: w.Description}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownMessageType, typ)
	}
}

// ReadRequest reads and decodes one framed request.
func ReadRequest(r io.Reader, limits frame.Limits) (Request, error) {
	payload, err := frame.ReadFrame(r, limits)
	if err != nil {
		return nil, err
	}
	return UnmarshalRequest(payload)
}

// ReadResponse reads and decodes one framed response.
func ReadResponse(r io.Reader, limits frame.Limits) (Response, error) {
	payload, err := frame.ReadFrame(r, limits)
	if err != nil {
		return nil, err
	}
	return UnmarshalResponse(payload)
}

func unmarshal(payload []byte, out any) error {
	if err := json.Unmarshal(payload, out); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedPayload, err)
	}
	return nil
}
