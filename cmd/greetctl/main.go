package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/danmuck/greetctl/internal/config"
	"github.com/danmuck/greetctl/internal/logging"
	"github.com/danmuck/greetctl/internal/login"
	"github.com/danmuck/greetctl/internal/observability"
	"github.com/rs/zerolog/log"
	"github.com/spf13/pflag"
)

type options struct {
	configPath     string
	writeConfig    string
	demo           bool
	defaultSession string
	metricsFile    string
	logLevel       string
	noAutoStart    bool
}

func parseFlags(args []string) (options, *pflag.FlagSet, error) {
	var opts options
	fs := pflag.NewFlagSet("greetctl", pflag.ContinueOnError)
	fs.StringVarP(&opts.configPath, "config", "c", "", "path to greetctl.toml")
	fs.StringVar(&opts.writeConfig, "write-config", "", "write a starter config to this path and exit")
	fs.BoolVar(&opts.demo, "demo", false, "talk to the in-memory greetd mock instead of GREETD_SOCK")
	fs.StringVarP(&opts.defaultSession, "default-session", "s", "", "session slug to preselect")
	fs.StringVar(&opts.metricsFile, "metrics-file", "", "write prometheus textfile metrics here on exit")
	fs.StringVar(&opts.logLevel, "log-level", "", "log level: trace|debug|info|warn|error|off")
	fs.BoolVar(&opts.noAutoStart, "no-auto-start", false, "wait for confirmation before starting the selected session")
	err := fs.Parse(args)
	return opts, fs, err
}

// applyFlags layers explicitly set flags over cfg.
func applyFlags(cfg *config.Config, opts options, fs *pflag.FlagSet) {
	if fs.Changed("demo") {
		cfg.Mock = opts.demo
	}
	if fs.Changed("default-session") {
		cfg.DefaultSession = opts.defaultSession
	}
	if fs.Changed("metrics-file") {
		cfg.MetricsFile = opts.metricsFile
	}
	if fs.Changed("log-level") {
		cfg.LogLevel = opts.logLevel
	}
	if fs.Changed("no-auto-start") {
		cfg.AutoStart = !opts.noAutoStart
	}
}

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	logging.ConfigureRuntime()

	opts, fs, err := parseFlags(args)
	if err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return 0
		}
		fmt.Fprintf(os.Stderr, "greetctl: %v\n", err)
		return 2
	}
	if opts.writeConfig != "" {
		if err := config.WriteTemplate(opts.writeConfig, false); err != nil {
			fmt.Fprintf(os.Stderr, "greetctl: %v\n", err)
			return 1
		}
		return 0
	}

	cfg, err := config.Load(opts.configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "greetctl: %v\n", err)
		return 1
	}
	applyFlags(&cfg, opts, fs)
	if lvl, ok := logging.ParseLevel(cfg.LogLevel); ok {
		logging.SetLevel(lvl)
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "greetctl: %v\n", err)
		return 1
	}
	catalog, err := cfg.Catalog()
	if err != nil {
		fmt.Fprintf(os.Stderr, "greetctl: %v\n", err)
		return 1
	}

	observability.RegisterMetrics()
	if cfg.MetricsFile != "" {
		defer func() {
			if err := observability.WriteTextfile(cfg.MetricsFile); err != nil {
				log.Warn().Err(err).Str("path", cfg.MetricsFile).Msg("metrics textfile write failed")
			}
		}()
	}

	builderOpts := []login.Option{login.WithAutoStart(cfg.AutoStart)}
	sel, ok, err := cfg.DefaultSelection(catalog)
	if err != nil {
		fmt.Fprintf(os.Stderr, "greetctl: %v\n", err)
		return 1
	}
	if ok {
		builderOpts = append(builderOpts, login.WithSession(sel))
	}
	builder := login.NewBuilder(cfg.Opener(), builderOpts...)
	defer builder.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.Info().Bool("mock", cfg.Mock).Int("sessions", catalog.Len()).Msg("greetctl starting")
	c := newConsole(os.Stdin, os.Stdout, builder, catalog)
	if err := c.run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "greetctl: %v\n", err)
		return 1
	}
	return 0
}
