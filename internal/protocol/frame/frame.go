package frame

import (
	"encoding/binary"
	"errors"
	"io"
	"math"
)

// HeaderLen is the size of the length prefix in front of every message.
const HeaderLen = 4

var (
	ErrShortHeader      = errors.New("frame: short length header")
	ErrEmptyPayload     = errors.New("frame: zero-length payload")
	ErrPayloadTooLarge  = errors.New("frame: payload too large")
	ErrTruncatedPayload = errors.New("frame: truncated payload")
)

// Limits constrains frame decode/encode memory use.
type Limits struct {
	MaxPayloadBytes uint32
}

func DefaultLimits() Limits {
	return Limits{
		MaxPayloadBytes: 1024 * 1024,
	}
}

// ReadFrame reads one length-prefixed message and returns its payload.
func ReadFrame(r io.Reader, limits Limits) ([]byte, error) {
	var head [HeaderLen]byte
	if _, err := io.ReadFull(r, head[:]); err != nil {
		if errors.Is(err, io.ErrUnexpectedEOF) || errors.Is(err, io.EOF) {
			return nil, ErrShortHeader
		}
		return nil, err
	}

	n := DecodeHeader(head[:])
	if n == 0 {
		return nil, ErrEmptyPayload
	}
	if n > limits.MaxPayloadBytes {
		return nil, ErrPayloadTooLarge
	}

	payload := make([]byte, n)
	if _, err := io.ReadFull(r, payload); err != nil {
		if errors.Is(err, io.ErrUnexpectedEOF) || errors.Is(err, io.EOF) {
			return nil, ErrTruncatedPayload
		}
		return nil, err
	}
	return payload, nil
}

// WriteFrame writes the header and payload in a single Write so a
// partially written message never interleaves with another.
func WriteFrame(w io.Writer, payload []byte, limits Limits) error {
	if len(payload) == 0 {
		return ErrEmptyPayload
	}
	if uint64(len(payload)) > uint64(limits.MaxPayloadBytes) || uint64(len(payload)) > math.MaxUint32 {
		return ErrPayloadTooLarge
	}

	buf := make([]byte, HeaderLen+len(payload))
	copy(buf, EncodeHeader(uint32(len(payload))))
	copy(buf[HeaderLen:], payload)
	_, err := w.Write(buf)
	return err
}

func EncodeHeader(n uint32) []byte {
	buf := make([]byte, HeaderLen)
	binary.LittleEndian.PutUint32(buf, n)
	return buf
}

func DecodeHeader(b []byte) uint32 {
	return binary.LittleEndian.Uint32(b[:HeaderLen])
}
