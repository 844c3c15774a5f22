package sessions

import (
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"
)

var ErrInvalidSession = errors.New("sessions: invalid session")

type Type string

const (
	Wayland Type = "wayland"
	X11     Type = "x11"
)

func (t Type) Valid() bool {
	return t == Wayland || t == X11
}

// Session is one launchable desktop session.
type Session struct {
	Slug         string
	Name         string
	Exec         []string
	Type         Type
	DesktopNames []string
	Env          []string
}

func (s Session) String() string {
	return s.Name
}

func (s Session) Validate() error {
	if strings.TrimSpace(s.Slug) == "" {
		return fmt.Errorf("%w: missing slug", ErrInvalidSession)
	}
	if strings.TrimSpace(s.Name) == "" {
		return fmt.Errorf("%w: %s: missing name", ErrInvalidSession, s.Slug)
	}
	if len(s.Exec) == 0 || strings.TrimSpace(s.Exec[0]) == "" {
		return fmt.Errorf("%w: %s: missing exec", ErrInvalidSession, s.Slug)
	}
	if !s.Type.Valid() {
		return fmt.Errorf("%w: %s: unknown type %q", ErrInvalidSession, s.Slug, s.Type)
	}
	for i, kv := range s.Env {
		if !strings.Contains(kv, "=") || strings.HasPrefix(kv, "=") {
			return fmt.Errorf("%w: %s: env[%d] is not KEY=VALUE", ErrInvalidSession, s.Slug, i)
		}
	}
	return nil
}

// Environment returns the KEY=VALUE list sent with start_session.
func (s Session) Environment() []string {
	out := []string{
		"XDG_SESSION_TYPE=" + string(s.Type),
		"XDG_SESSION_DESKTOP=" + s.Slug,
		"XDG_CURRENT_DESKTOP=" + strings.Join(s.DesktopNames, ":"),
	}
	return append(out, s.Env...)
}

// Catalog is an ordered, slug-unique list of sessions.
type Catalog struct {
	items []Session
}

// NewCatalog validates in and drops later duplicates of a slug.
func NewCatalog(in []Session) (*Catalog, error) {
	seen := make(map[string]bool, len(in))
	out := make([]Session, 0, len(in))
	for i, s := range in {
		if err := s.Validate(); err != nil {
			return nil, fmt.Errorf("sessions[%d]: %w", i, err)
		}
		if seen[s.Slug] {
			log.Debug().Str("slug", s.Slug).Msg("duplicate session slug ignored")
			continue
		}
		seen[s.Slug] = true
		out = append(out, s)
	}
	return &Catalog{items: out}, nil
}

func (c *Catalog) List() []Session {
	out := make([]Session, len(c.items))
	copy(out, c.items)
	return out
}

func (c *Catalog) Len() int {
	return len(c.items)
}

func (c *Catalog) Find(slug string) (Session, bool) {
	slug = strings.TrimSpace(slug)
	for _, s := range c.items {
		if s.Slug == slug {
			return s, true
		}
	}
	return Session{}, false
}

// MockCatalog is used in demo mode.
func MockCatalog() *Catalog {
	return &Catalog{items: []Session{
		{Slug: "test-wayland", Name: "Test (Wayland)", Exec: []string{"true"}, Type: Wayland},
		{Slug: "test-xorg", Name: "Test (Xorg)", Exec: []string{"true"}, Type: X11},
	}}
}
