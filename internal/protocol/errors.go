package protocol

import "errors"

var (
	ErrUnknownMessageType     = errors.New("protocol: unknown message type")
	ErrInvalidAuthMessageType = errors.New("protocol: invalid auth_message_type")
	ErrInvalidErrorType       = errors.New("protocol: invalid error_type")
	ErrMalformedPayload       = errors.New("protocol: malformed payload")
	ErrNilMessage             = errors.New("protocol: nil message")
)
