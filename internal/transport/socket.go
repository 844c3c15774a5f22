package transport

import (
	"context"
	"errors"
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/danmuck/greetctl/internal/observability"
	"github.com/danmuck/greetctl/internal/protocol"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// Socket is a greetd connection over a unix stream socket.
type Socket struct {
	cfg  Config
	id   string
	conn net.Conn

	mu     sync.Mutex
	broken error
	closed bool
}

// Dial connects to the greetd socket named by cfg.SocketPath.
func Dial(ctx context.Context, cfg Config) (*Socket, error) {
	if cfg.SocketPath == "" {
		return nil, ErrMissingSocket
	}
	if cfg.Limits.MaxPayloadBytes == 0 {
		cfg.Limits = DefaultConfig().Limits
	}
	dialer := net.Dialer{Timeout: cfg.ConnectTimeout}
	conn, err := dialer.DialContext(ctx, "unix", cfg.SocketPath)
	if err != nil {
		return nil, fmt.Errorf("transport: connect %s: %w", cfg.SocketPath, err)
	}
	s := &Socket{cfg: cfg, id: uuid.NewString(), conn: conn}
	log.Debug().Str("conn", s.id).Str("socket", cfg.SocketPath).Msg("greetd connected")
	return s, nil
}

func (s *Socket) ID() string {
	return s.id
}

// Exchange writes one framed request and reads exactly one framed
// response. Any failure breaks the connection permanently.
func (s *Socket) Exchange(ctx context.Context, req protocol.Request) (protocol.Response, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, ErrClosed
	}
	if s.broken != nil {
		return nil, fmt.Errorf("%w: %v", ErrBroken, s.broken)
	}

	start := time.Now()
	resp, err := s.exchange(ctx, req)
	observability.RecordExchange("socket", string(req.Type()), resultLabel(resp, err), time.Since(start))
	if err != nil {
		s.broken = err
		log.Warn().Err(err).Str("conn", s.id).Str("request", string(req.Type())).Msg("greetd exchange failed")
		return nil, err
	}
	log.Debug().Str("conn", s.id).Str("request", string(req.Type())).Str("response", string(resp.Type())).Msg("greetd exchange")
	return resp, nil
}

func (s *Socket) exchange(ctx context.Context, req protocol.Request) (protocol.Response, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	deadline, ok := ctx.Deadline()
	if s.cfg.ExchangeTimeout > 0 {
		limit := time.Now().Add(s.cfg.ExchangeTimeout)
		if !ok || limit.Before(deadline) {
			deadline, ok = limit, true
		}
	}
	if ok {
		if err := s.conn.SetDeadline(deadline); err != nil {
			return nil, fmt.Errorf("transport: set deadline: %w", err)
		}
		defer s.conn.SetDeadline(time.Time{})
	}

	// A cancelled ctx without a deadline unblocks the read by expiring it.
	stop := context.AfterFunc(ctx, func() {
		s.conn.SetDeadline(time.Unix(1, 0))
	})
	defer stop()

	if err := protocol.WriteRequest(s.conn, req, s.cfg.Limits); err != nil {
		return nil, fmt.Errorf("transport: write %s: %w", req.Type(), s.wrapCtx(ctx, err))
	}
	resp, err := protocol.ReadResponse(s.conn, s.cfg.Limits)
	if err != nil {
		return nil, fmt.Errorf("transport: read response to %s: %w", req.Type(), s.wrapCtx(ctx, err))
	}
	return resp, nil
}

func (s *Socket) wrapCtx(ctx context.Context, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		var netErr net.Error
		if errors.As(err, &netErr) && netErr.Timeout() {
			return ctxErr
		}
	}
	return err
}

func (s *Socket) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	log.Debug().Str("conn", s.id).Msg("greetd connection closed")
	return s.conn.Close()
}
