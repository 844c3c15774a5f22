package main

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/danmuck/greetctl/internal/config"
	"github.com/danmuck/greetctl/internal/login"
	"github.com/danmuck/greetctl/internal/protocol"
	"github.com/danmuck/greetctl/internal/sessions"
	"github.com/danmuck/greetctl/internal/testutil/testlog"
	"github.com/danmuck/greetctl/internal/transport"
)

func mockSetup(t *testing.T, opts ...login.Option) (*transport.Mock, *login.Builder) {
	t.Helper()
	mock := transport.NewMock()
	open := func(context.Context) (transport.Transport, error) { return mock, nil }
	return mock, login.NewBuilder(open, opts...)
}

func TestConsolePasswordLoginWithSelection(t *testing.T) {
	testlog.Start(t)
	mock, b := mockSetup(t)
	var out bytes.Buffer
	c := newConsole(strings.NewReader("alice\nhunter2\n2\n"), &out, b, sessions.MockCatalog())

	if err := c.run(context.Background()); err != nil {
		t.Fatalf("run: %v", err)
	}
	if mock.Count(protocol.TypeStartSession) != 1 {
		t.Fatalf("expected one start_session, got %d", mock.Count(protocol.TypeStartSession))
	}
	text := out.String()
	for _, want := range []string{"Username:", "Password:", "1) ", "2) ", "Session:", "Starting "} {
		if !strings.Contains(text, want) {
			t.Fatalf("output missing %q:\n%s", want, text)
		}
	}
	sel, _ := b.Selected()
	if sel.Slug != "test-xorg" {
		t.Fatalf("unexpected selection: %+v", sel)
	}
}

func TestConsoleSelectsBySlug(t *testing.T) {
	testlog.Start(t)
	_, b := mockSetup(t)
	var out bytes.Buffer
	c := newConsole(strings.NewReader("nopass\nbogus\ntest-wayland\n"), &out, b, sessions.MockCatalog())

	if err := c.run(context.Background()); err != nil {
		t.Fatalf("run: %v", err)
	}
	if !strings.Contains(out.String(), `unknown session "bogus"`) {
		t.Fatalf("expected unknown session notice:\n%s", out.String())
	}
	sel, _ := b.Selected()
	if sel.Slug != "test-wayland" {
		t.Fatalf("unexpected selection: %+v", sel)
	}
}

func TestConsoleShowsInfoAndRetriesAfterFailure(t *testing.T) {
	testlog.Start(t)
	catalog := sessions.MockCatalog()
	sel, _ := catalog.Find("test-wayland")
	mock, b := mockSetup(t, login.WithSession(sel))
	var out bytes.Buffer
	c := newConsole(strings.NewReader("fail\nwrong\ninfo\nsecret\n"), &out, b, catalog)

	if err := c.run(context.Background()); err != nil {
		t.Fatalf("run: %v", err)
	}
	text := out.String()
	if !strings.Contains(text, transport.MockAuthFailure) {
		t.Fatalf("expected failure description:\n%s", text)
	}
	if !strings.Contains(text, transport.MockInfoMessage) {
		t.Fatalf("expected info message:\n%s", text)
	}
	if mock.Count(protocol.TypeCancelSession) != 1 {
		t.Fatalf("expected one cancel_session, got %d", mock.Count(protocol.TypeCancelSession))
	}
}

func TestConsoleConfirmBeforeStart(t *testing.T) {
	testlog.Start(t)
	catalog := sessions.MockCatalog()
	sel, _ := catalog.Find("test-wayland")
	mock, b := mockSetup(t, login.WithSession(sel), login.WithAutoStart(false))
	var out bytes.Buffer
	c := newConsole(strings.NewReader("nopass\nn\n2\n\n"), &out, b, catalog)

	if err := c.run(context.Background()); err != nil {
		t.Fatalf("run: %v", err)
	}
	if !strings.Contains(out.String(), "Start ") {
		t.Fatalf("expected confirmation prompt:\n%s", out.String())
	}
	got, _ := b.Selected()
	if got.Slug != "test-xorg" {
		t.Fatalf("unexpected selection: %+v", got)
	}
	if mock.Count(protocol.TypeStartSession) != 1 {
		t.Fatalf("expected one start_session, got %d", mock.Count(protocol.TypeStartSession))
	}
}

func TestConsoleEOF(t *testing.T) {
	testlog.Start(t)
	_, b := mockSetup(t)
	c := newConsole(strings.NewReader(""), io.Discard, b, sessions.MockCatalog())
	if err := c.run(context.Background()); !errors.Is(err, io.EOF) {
		t.Fatalf("expected EOF, got %v", err)
	}
}

func TestConsoleEmptyCatalog(t *testing.T) {
	testlog.Start(t)
	_, b := mockSetup(t)
	empty, err := sessions.NewCatalog(nil)
	if err != nil {
		t.Fatalf("catalog: %v", err)
	}
	c := newConsole(strings.NewReader("nopass\n"), io.Discard, b, empty)
	if err := c.run(context.Background()); !errors.Is(err, errNoSessions) {
		t.Fatalf("expected errNoSessions, got %v", err)
	}
}

func TestApplyFlags(t *testing.T) {
	testlog.Start(t)
	opts, fs, err := parseFlags([]string{"--demo", "-s", "test-xorg", "--no-auto-start", "--log-level", "debug"})
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	c := config.Default()
	applyFlags(&c, opts, fs)
	if !c.Mock || c.DefaultSession != "test-xorg" || c.AutoStart || c.LogLevel != "debug" {
		t.Fatalf("unexpected config: %+v", c)
	}
	if c.MetricsFile != "" {
		t.Fatalf("unset flag must not override: %q", c.MetricsFile)
	}
}
