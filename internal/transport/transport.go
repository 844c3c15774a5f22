package transport

import (
	"context"
	"errors"
	"os"
	"strings"
	"time"

	"github.com/danmuck/greetctl/internal/protocol"
	"github.com/danmuck/greetctl/internal/protocol/frame"
)

// EnvSocket names the greetd socket path.
const EnvSocket = "GREETD_SOCK"

var (
	ErrMissingSocket = errors.New("transport: missing " + EnvSocket + " in environment")
	ErrBroken        = errors.New("transport: connection broken by earlier failure")
	ErrClosed        = errors.New("transport: connection closed")
	ErrOutOfOrder    = errors.New("transport: request out of order")
)

// Transport sends one request and blocks for its response.
type Transport interface {
	// ID identifies the underlying connection for its whole lifetime.
	ID() string
	Exchange(ctx context.Context, req protocol.Request) (protocol.Response, error)
	Close() error
}

// Opener establishes a fresh transport for one login attempt.
type Opener func(ctx context.Context) (Transport, error)

// Config holds socket transport parameters.
type Config struct {
	SocketPath      string
	ConnectTimeout  time.Duration
	ExchangeTimeout time.Duration
	Limits          frame.Limits
}

func DefaultConfig() Config {
	return Config{
		ConnectTimeout: 5 * time.Second,
		Limits:         frame.DefaultLimits(),
	}
}

// ConfigFromEnv resolves the socket path from GREETD_SOCK.
func ConfigFromEnv() (Config, error) {
	cfg := DefaultConfig()
	path := strings.TrimSpace(os.Getenv(EnvSocket))
	if path == "" {
		return Config{}, ErrMissingSocket
	}
	cfg.SocketPath = path
	return cfg, nil
}

// SocketOpener dials cfg on every call.
func SocketOpener(cfg Config) Opener {
	return func(ctx context.Context) (Transport, error) {
		return Dial(ctx, cfg)
	}
}

// MockOpener returns a new mock daemon on every call.
func MockOpener() Opener {
	return func(context.Context) (Transport, error) {
		return NewMock(), nil
	}
}

func resultLabel(resp protocol.Response, err error) string {
	if err != nil {
		return "transport_error"
	}
	return string(resp.Type())
}
