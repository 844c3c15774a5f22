package config

import (
	"strings"

	"github.com/danmuck/greetctl/internal/sessions"
)

func fileSessions(entries []fileSession) []sessions.Session {
	out := make([]sessions.Session, 0, len(entries))
	for _, entry := range entries {
		out = append(out, sessions.Session{
			Slug:         strings.TrimSpace(entry.Slug),
			Name:         strings.TrimSpace(entry.Name),
			Exec:         entry.Exec,
			Type:         sessions.Type(strings.ToLower(strings.TrimSpace(entry.Type))),
			DesktopNames: normalizeList(entry.DesktopNames),
			Env:          normalizeList(entry.Env),
		})
	}
	return out
}

func normalizeList(in []string) []string {
	if len(in) == 0 {
		return nil
	}
	out := make([]string, 0, len(in))
	for _, v := range in {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		out = append(out, v)
	}
	return out
}
