package frame

import (
	"bytes"
	"errors"
	"testing"
)

func TestReadWriteFrameRoundTrip(t *testing.T) {
	payload := []byte(`{"type":"create_session","username":"alice"}`)
	var buf bytes.Buffer
	if err := WriteFrame(&buf, payload, DefaultLimits()); err != nil {
		t.Fatalf("write frame: %v", err)
	}
	if buf.Len() != HeaderLen+len(payload) {
		t.Fatalf("unexpected frame size: %d", buf.Len())
	}
	out, err := ReadFrame(&buf, DefaultLimits())
	if err != nil {
		t.Fatalf("read frame: %v", err)
	}
	if !bytes.Equal(out, payload) {
		t.Fatalf("payload mismatch: %q", out)
	}
}

func TestHeaderIsLittleEndian(t *testing.T) {
	got := EncodeHeader(0x01020304)
	want := []byte{0x04, 0x03, 0x02, 0x01}
	if !bytes.Equal(got, want) {
		t.Fatalf("header bytes got=%v want=%v", got, want)
	}
	if DecodeHeader(want) != 0x01020304 {
		t.Fatalf("decode mismatch")
	}
}

func TestReadFrameShortHeader(t *testing.T) {
	_, err := ReadFrame(bytes.NewReader([]byte{1, 2}), DefaultLimits())
	if !errors.Is(err, ErrShortHeader) {
		t.Fatalf("expected ErrShortHeader, got %v", err)
	}
}

func TestReadFrameTruncatedPayload(t *testing.T) {
	buf := append(EncodeHeader(10), []byte("abc")...)
	_, err := ReadFrame(bytes.NewReader(buf), DefaultLimits())
	if !errors.Is(err, ErrTruncatedPayload) {
		t.Fatalf("expected ErrTruncatedPayload, got %v", err)
	}
}

func TestReadFrameTooLarge(t *testing.T) {
	buf := EncodeHeader(64)
	_, err := ReadFrame(bytes.NewReader(buf), Limits{MaxPayloadBytes: 16})
	if !errors.Is(err, ErrPayloadTooLarge) {
		t.Fatalf("expected ErrPayloadTooLarge, got %v", err)
	}
}

func TestReadFrameEmptyPayload(t *testing.T) {
	_, err := ReadFrame(bytes.NewReader(EncodeHeader(0)), DefaultLimits())
	if !errors.Is(err, ErrEmptyPayload) {
		t.Fatalf("expected ErrEmptyPayload, got %v", err)
	}
}

func TestWriteFrameRejectsOversizedPayload(t *testing.T) {
	var buf bytes.Buffer
	err := WriteFrame(&buf, make([]byte, 32), Limits{MaxPayloadBytes: 16})
	if !errors.Is(err, ErrPayloadTooLarge) {
		t.Fatalf("expected ErrPayloadTooLarge, got %v", err)
	}
	if buf.Len() != 0 {
		t.Fatalf("nothing should be written on rejection")
	}
}
