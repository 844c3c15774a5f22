package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/danmuck/greetctl/internal/sessions"
	"github.com/danmuck/greetctl/internal/transport"
)

// EnvMock selects the in-memory greetd mock.
const EnvMock = "GREETCTL_MOCK"

var ErrInvalidConfig = errors.New("config: invalid")

// Config is parsed once at startup and passed to the components that
// need it.
type Config struct {
	SocketPath      string
	Mock            bool
	DefaultSession  string
	AutoStart       bool
	ConnectTimeout  time.Duration
	ExchangeTimeout time.Duration
	ConnectAttempts int
	MetricsFile     string
	LogLevel        string
	Sessions        []sessions.Session
}

type fileConfig struct {
	Socket          string        `toml:"socket"`
	Mock            bool          `toml:"mock"`
	DefaultSession  string        `toml:"default_session"`
	AutoStart       bool          `toml:"auto_start"`
	ConnectTimeout  string        `toml:"connect_timeout"`
	ExchangeTimeout string        `toml:"exchange_timeout"`
	ConnectAttempts int           `toml:"connect_attempts"`
	MetricsFile     string        `toml:"metrics_file"`
	LogLevel        string        `toml:"log_level"`
	Sessions        []fileSession `toml:"sessions"`
}

type fileSession struct {
	Slug         string   `toml:"slug"`
	Name         string   `toml:"name"`
	Exec         []string `toml:"exec"`
	Type         string   `toml:"type"`
	DesktopNames []string `toml:"desktop_names"`
	Env          []string `toml:"env"`
}

func Default() Config {
	return Config{
		AutoStart:       true,
		ConnectTimeout:  transport.DefaultConfig().ConnectTimeout,
		ConnectAttempts: transport.DefaultBackoff().Attempts,
	}
}

// Load builds a Config from defaults, the optional TOML file at path
// and the environment, in that order.
func Load(path string) (Config, error) {
	cfg := Default()
	if strings.TrimSpace(path) != "" {
		if err := LoadFile(&cfg, path); err != nil {
			return Config{}, err
		}
	}
	ApplyEnv(&cfg)
	return cfg, nil
}

// LoadFile overlays the keys defined in the TOML file onto cfg.
func LoadFile(cfg *Config, path string) error {
	var raw fileConfig
	meta, err := toml.DecodeFile(path, &raw)
	if err != nil {
		return fmt.Errorf("config load failed (%s): %w", path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return fmt.Errorf("%w: unknown key %q in %s", ErrInvalidConfig, undecoded[0].String(), path)
	}

	if meta.IsDefined("socket") {
		cfg.SocketPath = strings.TrimSpace(raw.Socket)
	}
	if meta.IsDefined("mock") {
		cfg.Mock = raw.Mock
	}
	if meta.IsDefined("default_session") {
		cfg.DefaultSession = strings.TrimSpace(raw.DefaultSession)
	}
	if meta.IsDefined("auto_start") {
		cfg.AutoStart = raw.AutoStart
	}
	if meta.IsDefined("connect_timeout") {
		d, err := time.ParseDuration(strings.TrimSpace(raw.ConnectTimeout))
		if err != nil {
			return fmt.Errorf("parse connect_timeout: %w", err)
		}
		cfg.ConnectTimeout = d
	}
	if meta.IsDefined("exchange_timeout") {
		d, err := time.ParseDuration(strings.TrimSpace(raw.ExchangeTimeout))
		if err != nil {
			return fmt.Errorf("parse exchange_timeout: %w", err)
		}
		cfg.ExchangeTimeout = d
	}
	if meta.IsDefined("connect_attempts") {
		cfg.ConnectAttempts = raw.ConnectAttempts
	}
	if meta.IsDefined("metrics_file") {
		cfg.MetricsFile = strings.TrimSpace(raw.MetricsFile)
	}
	if meta.IsDefined("log_level") {
		cfg.LogLevel = strings.TrimSpace(raw.LogLevel)
	}
	if meta.IsDefined("sessions") {
		cfg.Sessions = fileSessions(raw.Sessions)
	}
	return nil
}

// ApplyEnv overrides cfg from GREETD_SOCK and GREETCTL_MOCK.
func ApplyEnv(cfg *Config) {
	if v := strings.TrimSpace(os.Getenv(transport.EnvSocket)); v != "" {
		cfg.SocketPath = v
	}
	if raw, ok := os.LookupEnv(EnvMock); ok {
		// Presence alone enables the mock unless it parses as false.
		v, err := strconv.ParseBool(strings.TrimSpace(raw))
		cfg.Mock = err != nil || v
	}
}

func (c Config) Validate() error {
	if !c.Mock && strings.TrimSpace(c.SocketPath) == "" {
		return transport.ErrMissingSocket
	}
	if c.ConnectTimeout < 0 {
		return fmt.Errorf("%w: negative connect_timeout", ErrInvalidConfig)
	}
	if c.ConnectAttempts < 1 {
		return fmt.Errorf("%w: connect_attempts must be at least 1", ErrInvalidConfig)
	}
	if c.ExchangeTimeout < 0 {
		return fmt.Errorf("%w: negative exchange_timeout", ErrInvalidConfig)
	}
	return nil
}

func (c Config) Transport() transport.Config {
	out := transport.DefaultConfig()
	out.SocketPath = c.SocketPath
	out.ConnectTimeout = c.ConnectTimeout
	out.ExchangeTimeout = c.ExchangeTimeout
	return out
}

// Opener selects the mock or socket transport. Socket dials are
// retried with backoff up to ConnectAttempts.
func (c Config) Opener() transport.Opener {
	if c.Mock {
		return transport.MockOpener()
	}
	backoff := transport.DefaultBackoff()
	backoff.Attempts = c.ConnectAttempts
	return transport.RetryOpener(transport.SocketOpener(c.Transport()), backoff)
}

// Catalog builds the launchable session catalog. Demo mode without
// configured sessions falls back to the mock catalog.
func (c Config) Catalog() (*sessions.Catalog, error) {
	if c.Mock && len(c.Sessions) == 0 {
		return sessions.MockCatalog(), nil
	}
	return sessions.NewCatalog(c.Sessions)
}

// DefaultSelection resolves DefaultSession against the catalog.
func (c Config) DefaultSelection(catalog *sessions.Catalog) (sessions.Session, bool, error) {
	if c.DefaultSession == "" {
		return sessions.Session{}, false, nil
	}
	s, ok := catalog.Find(c.DefaultSession)
	if !ok {
		return sessions.Session{}, false, fmt.Errorf("%w: default_session %q not in catalog", ErrInvalidConfig, c.DefaultSession)
	}
	return s, true, nil
}
