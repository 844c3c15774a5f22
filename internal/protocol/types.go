package protocol

import "fmt"

// MessageType is the "type" discriminator carried by every payload.
type MessageType string

const (
	TypeCreateSession           MessageType = "create_session"
	TypePostAuthMessageResponse MessageType = "post_auth_message_response"
	TypeStartSession            MessageType = "start_session"
	TypeCancelSession           MessageType = "cancel_session"

	TypeSuccess     MessageType = "success"
	TypeAuthMessage MessageType = "auth_message"
	TypeError       MessageType = "error"
)

// AuthMessageType classifies an auth message sent by greetd.
type AuthMessageType string

const (
	AuthVisible AuthMessageType = "visible"
	AuthSecret  AuthMessageType = "secret"
	AuthInfo    AuthMessageType = "info"
	AuthError   AuthMessageType = "error"
)

func (t AuthMessageType) Valid() bool {
	switch t {
	case AuthVisible, AuthSecret, AuthInfo, AuthError:
		return true
	}
	return false
}

// Answerable reports whether greetd expects a user-supplied response.
// Info and error messages are acknowledged with an empty response.
func (t AuthMessageType) Answerable() bool {
	return t == AuthVisible || t == AuthSecret
}

// ErrorType classifies an error response.
type ErrorType string

const (
	ErrorAuth    ErrorType = "auth_error"
	ErrorGeneric ErrorType = "error"
)

func (t ErrorType) Valid() bool {
	return t == ErrorAuth || t == ErrorGeneric
}

// Request is one of CreateSession, PostAuthMessageResponse, StartSession
// or CancelSession.
type Request interface {
	Type() MessageType
	isRequest()
}

type CreateSession struct {
	Username string
}

// PostAuthMessageResponse answers the pending auth message. A nil
// Response acknowledges an info or error message.
type PostAuthMessageResponse struct {
	Response *string
}

type StartSession struct {
	Cmd []string
	Env []string
}

type CancelSession struct{}

func (CreateSession) Type() MessageType           { return TypeCreateSession }
func (PostAuthMessageResponse) Type() MessageType { return TypePostAuthMessageResponse }
func (StartSession) Type() MessageType            { return TypeStartSession }
func (CancelSession) Type() MessageType           { return TypeCancelSession }

func (CreateSession) isRequest()           {}
func (PostAuthMessageResponse) isRequest() {}
func (StartSession) isRequest()            {}
func (CancelSession) isRequest()           {}

// Response is one of Success, AuthMessage or Error.
type Response interface {
	Type() MessageType
	isResponse()
}

type Success struct{}

type AuthMessage struct {
	MessageType AuthMessageType
	Message     string
}

type Error struct {
	ErrorType   ErrorType
	Description string
}

func (Success) Type() MessageType     { return TypeSuccess }
func (AuthMessage) Type() MessageType { return TypeAuthMessage }
func (Error) Type() MessageType       { return TypeError }

func (Success) isResponse()     {}
func (AuthMessage) isResponse() {}
func (Error) isResponse()       {}

func (e Error) String() string {
	return fmt.Sprintf("%s: %s", e.ErrorType, e.Description)
}

// StringPtr is a convenience for building PostAuthMessageResponse values.
func StringPtr(s string) *string {
	return &s
}
