package protocol

import (
	"bytes"
	"errors"
	"reflect"
	"testing"

	"github.com/danmuck/greetctl/internal/protocol/frame"
)

func TestRequestRoundTripThroughFrame(t *testing.T) {
	requests := []Request{
		CreateSession{Username: "alice"},
		CreateSession{Username: ""},
		PostAuthMessageResponse{Response: StringPtr("hunter2")},
		PostAuthMessageResponse{Response: StringPtr("")},
		PostAuthMessageResponse{},
		StartSession{Cmd: []string{"sway", "--unsupported-gpu"}, Env: []string{"XDG_SESSION_TYPE=wayland"}},
		StartSession{Cmd: []string{}, Env: []string{}},
		CancelSession{},
	}
	for _, req := range requests {
		var buf bytes.Buffer
		if err := WriteRequest(&buf, req, frame.DefaultLimits()); err != nil {
			t.Fatalf("write %T: %v", req, err)
		}
		got, err := ReadRequest(&buf, frame.DefaultLimits())
		if err != nil {
			t.Fatalf("read %T: %v", req, err)
		}
		if !reflect.DeepEqual(got, req) {
			t.Fatalf("round-trip mismatch: got=%#v want=%#v", got, req)
		}
	}
}

func TestResponseRoundTripThroughFrame(t *testing.T) {
	responses := []Response{
		Success{},
		AuthMessage{MessageType: AuthVisible, Message: "Username:"},
		AuthMessage{MessageType: AuthSecret, Message: "Password: "},
		AuthMessage{MessageType: AuthInfo, Message: "Welcome back"},
		AuthMessage{MessageType: AuthError, Message: "Account expires soon"},
		Error{ErrorType: ErrorAuth, Description: "pam_authenticate: AUTH_ERR"},
		Error{ErrorType: ErrorGeneric, Description: "a session is already being configured"},
	}
	for _, resp := range responses {
		var buf bytes.Buffer
		if err := WriteResponse(&buf, resp, frame.DefaultLimits()); err != nil {
			t.Fatalf("write %T: %v", resp, err)
		}
		got, err := ReadResponse(&buf, frame.DefaultLimits())
		if err != nil {
			t.Fatalf("read %T: %v", resp, err)
		}
		if !reflect.DeepEqual(got, resp) {
			t.Fatalf("round-trip mismatch: got=%#v want=%#v", got, resp)
		}
	}
}

func TestMarshalRequestWireShape(t *testing.T) {
	cases := []struct {
		req  Request
		want string
	}{
		{CreateSession{Username: "alice"}, `{"type":"create_session","username":"alice"}`},
		{PostAuthMessageResponse{Response: StringPtr("pw")}, `{"type":"post_auth_message_response","response":"pw"}`},
		{PostAuthMessageResponse{}, `{"type":"post_auth_message_response","response":null}`},
		{StartSession{Cmd: []string{"sway"}}, `{"type":"start_session","cmd":["sway"],"env":[]}`},
		{CancelSession{}, `{"type":"cancel_session"}`},
	}
	for _, tc := range cases {
		got, err := MarshalRequest(tc.req)
		if err != nil {
			t.Fatalf("marshal %T: %v", tc.req, err)
		}
		if string(got) != tc.want {
			t.Fatalf("wire mismatch: got=%s want=%s", got, tc.want)
		}
	}
}

func TestUnmarshalResponseFromDaemonPayloads(t *testing.T) {
	got, err := UnmarshalResponse([]byte(`{"type":"auth_message","auth_message_type":"secret","auth_message":"Password: "}`))
	if err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	msg, ok := got.(AuthMessage)
	if !ok || msg.MessageType != AuthSecret || msg.Message != "Password: " {
		t.Fatalf("unexpected response: %#v", got)
	}

	got, err = UnmarshalResponse([]byte(`{"type":"error","error_type":"auth_error","description":"nope"}`))
	if err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if e, ok := got.(Error); !ok || e.ErrorType != ErrorAuth || e.Description != "nope" {
		t.Fatalf("unexpected response: %#v", got)
	}
}

func TestUnmarshalResponseUnknownType(t *testing.T) {
	_, err := UnmarshalResponse([]byte(`{"type":"mystery"}`))
	if !errors.Is(err, ErrUnknownMessageType) {
		t.Fatalf("expected ErrUnknownMessageType, got %v", err)
	}
}

func TestUnmarshalResponseInvalidAuthMessageType(t *testing.T) {
	_, err := UnmarshalResponse([]byte(`{"type":"auth_message","auth_message_type":"shout","auth_message":"x"}`))
	if !errors.Is(err, ErrInvalidAuthMessageType) {
		t.Fatalf("expected ErrInvalidAuthMessageType, got %v", err)
	}
}

func TestUnmarshalMalformedPayload(t *testing.T) {
	if _, err := UnmarshalResponse([]byte(`{"type":`)); !errors.Is(err, ErrMalformedPayload) {
		t.Fatalf("expected ErrMalformedPayload, got %v", err)
	}
	if _, err := UnmarshalRequest([]byte{0xff, 0xfe}); !errors.Is(err, ErrMalformedPayload) {
		t.Fatalf("expected ErrMalformedPayload for invalid utf-8, got %v", err)
	}
}

func TestReadResponseTruncatedFrame(t *testing.T) {
	payload := []byte(`{"type":"success"}`)
	buf := append(frame.EncodeHeader(uint32(len(payload))), payload[:5]...)
	_, err := ReadResponse(bytes.NewReader(buf), frame.DefaultLimits())
	if !errors.Is(err, frame.ErrTruncatedPayload) {
		t.Fatalf("expected ErrTruncatedPayload, got %v", err)
	}
}

func TestMarshalRejectsNilMessages(t *testing.T) {
	if _, err := MarshalRequest(nil); !errors.Is(err, ErrNilMessage) {
		t.Fatalf("expected ErrNilMessage, got %v", err)
	}
	if _, err := MarshalResponse(nil); !errors.Is(err, ErrNilMessage) {
		t.Fatalf("expected ErrNilMessage, got %v", err)
	}
}

func TestAuthMessageTypeAnswerable(t *testing.T) {
	if !AuthVisible.Answerable() || !AuthSecret.Answerable() {
		t.Fatalf("visible and secret prompts must be answerable")
	}
	if AuthInfo.Answerable() || AuthError.Answerable() {
		t.Fatalf("info and error messages are display-only")
	}
}
