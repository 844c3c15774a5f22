package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/danmuck/greetctl/internal/greetd"
	"github.com/danmuck/greetctl/internal/login"
	"github.com/danmuck/greetctl/internal/sessions"
	"golang.org/x/term"
)

var errNoSessions = errors.New("no sessions configured")

// console drives a login.Builder from line-oriented input.
type console struct {
	in         *bufio.Reader
	out        io.Writer
	readSecret func() (string, error)
	builder    *login.Builder
	catalog    *sessions.Catalog
}

func newConsole(in io.Reader, out io.Writer, b *login.Builder, catalog *sessions.Catalog) *console {
	c := &console{
		in:      bufio.NewReader(in),
		out:     out,
		builder: b,
		catalog: catalog,
	}
	c.readSecret = c.readLine
	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		fd := int(f.Fd())
		c.readSecret = func() (string, error) {
			raw, err := term.ReadPassword(fd)
			fmt.Fprintln(c.out)
			return string(raw), err
		}
	}
	return c
}

// run loops until the session is handed off, input ends or a
// transport failure drops the connection.
func (c *console) run(ctx context.Context) error {
	chosen := false
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		if msg, ok := c.builder.DisplayMessage(); ok {
			fmt.Fprintln(c.out, msg)
		}

		var answer *string
		if prompt, ok := c.builder.CurrentPrompt(); ok {
			v, err := c.ask(prompt)
			if err != nil {
				return err
			}
			answer = &v
		} else if _, created := c.builder.State().(*greetd.SessionCreated); created && !chosen {
			if err := c.confirm(); err != nil {
				return err
			}
		}
		chosen = false

		out, err := c.builder.Submit(ctx, answer)
		if err != nil {
			return err
		}
		switch out.Kind {
		case login.HandedOff:
			sel, _ := c.builder.Selected()
			fmt.Fprintf(c.out, "Starting %s\n", sel.Name)
			return nil
		case login.NeedsSessionSelection:
			sel, err := c.choose()
			if err != nil {
				return err
			}
			c.builder.SelectSession(sel)
			chosen = true
		}
	}
}

func (c *console) ask(p login.Prompt) (string, error) {
	label := strings.TrimSpace(p.Label)
	if !strings.HasSuffix(label, ":") {
		label += ":"
	}
	fmt.Fprintf(c.out, "%s ", label)
	if p.Secret {
		return c.readSecret()
	}
	return c.readLine()
}

// confirm asks before starting the selected session and lets the user
// pick another one first.
func (c *console) confirm() error {
	for {
		sel, ok := c.builder.Selected()
		if !ok {
			return nil
		}
		fmt.Fprintf(c.out, "Start %s? [Y/n] ", sel.Name)
		raw, err := c.readLine()
		if err != nil {
			return err
		}
		switch strings.ToLower(strings.TrimSpace(raw)) {
		case "", "y", "yes":
			return nil
		}
		next, err := c.choose()
		if err != nil {
			return err
		}
		c.builder.SelectSession(next)
	}
}

func (c *console) choose() (sessions.Session, error) {
	list := c.catalog.List()
	if len(list) == 0 {
		return sessions.Session{}, errNoSessions
	}
	for {
		for i, s := range list {
			fmt.Fprintf(c.out, "%d) %s [%s]\n", i+1, s.Name, s.Type)
		}
		fmt.Fprint(c.out, "Session: ")
		raw, err := c.readLine()
		if err != nil {
			return sessions.Session{}, err
		}
		if n, err := strconv.Atoi(raw); err == nil && n >= 1 && n <= len(list) {
			return list[n-1], nil
		}
		if s, ok := c.catalog.Find(raw); ok {
			return s, nil
		}
		fmt.Fprintf(c.out, "unknown session %q\n", raw)
	}
}

func (c *console) readLine() (string, error) {
	line, err := c.in.ReadString('\n')
	if err != nil && (err != io.EOF || line == "") {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}
