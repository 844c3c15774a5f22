package transport

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/danmuck/greetctl/internal/testutil/testlog"
)

func TestNextBackoffDelayGrowsAndCaps(t *testing.T) {
	testlog.Start(t)
	cfg := DefaultBackoff()
	if got := NextBackoffDelay(cfg, 1, nil); got != 250*time.Millisecond {
		t.Fatalf("attempt1 got=%v", got)
	}
	if got := NextBackoffDelay(cfg, 3, nil); got != time.Second {
		t.Fatalf("attempt3 got=%v", got)
	}
	if got := NextBackoffDelay(cfg, 9, nil); got != 5*time.Second {
		t.Fatalf("attempt9 got=%v", got)
	}
}

func TestRetryOpenerSucceedsAfterFailures(t *testing.T) {
	testlog.Start(t)
	calls := 0
	open := func(context.Context) (Transport, error) {
		calls++
		if calls < 3 {
			return nil, errors.New("connection refused")
		}
		return NewMock(), nil
	}
	cfg := BackoffConfig{Attempts: 3, InitialDelay: time.Millisecond, Multiplier: 1}
	tr, err := RetryOpener(open, cfg)(context.Background())
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer tr.Close()
	if calls != 3 {
		t.Fatalf("expected 3 calls, got %d", calls)
	}
}

func TestRetryOpenerReturnsLastError(t *testing.T) {
	testlog.Start(t)
	calls := 0
	refused := errors.New("connection refused")
	open := func(context.Context) (Transport, error) {
		calls++
		return nil, refused
	}
	cfg := BackoffConfig{Attempts: 2, InitialDelay: time.Millisecond}
	if _, err := RetryOpener(open, cfg)(context.Background()); !errors.Is(err, refused) {
		t.Fatalf("expected refused, got %v", err)
	}
	if calls != 2 {
		t.Fatalf("expected 2 calls, got %d", calls)
	}
}

func TestRetryOpenerStopsOnCancel(t *testing.T) {
	testlog.Start(t)
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	open := func(context.Context) (Transport, error) {
		calls++
		cancel()
		return nil, errors.New("connection refused")
	}
	cfg := BackoffConfig{Attempts: 5, InitialDelay: time.Hour}
	if _, err := RetryOpener(open, cfg)(ctx); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if calls != 1 {
		t.Fatalf("expected 1 call, got %d", calls)
	}
}

func TestRetryOpenerSingleAttemptIsPassthrough(t *testing.T) {
	testlog.Start(t)
	calls := 0
	open := func(context.Context) (Transport, error) {
		calls++
		return nil, errors.New("connection refused")
	}
	if _, err := RetryOpener(open, BackoffConfig{Attempts: 1})(context.Background()); err == nil {
		t.Fatalf("expected error")
	}
	if calls != 1 {
		t.Fatalf("expected 1 call, got %d", calls)
	}
}
