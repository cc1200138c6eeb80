package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/google/subcommands"
	_ "github.com/kotone-fm/kotone/blob/fs" // filesystem blob storage
	"github.com/kotone-fm/kotone/config"
	_ "github.com/kotone-fm/kotone/metadata/registry/musicbrainz" // musicbrainz metadata lookup
	_ "github.com/kotone-fm/kotone/storage/mariadb"               // mariadb storage interface
	_ "github.com/kotone-fm/kotone/storage/mongodb"               // mongodb storage interface
	"github.com/kotone-fm/kotone/telemetry"
	"github.com/kotone-fm/kotone/telemetry/otelzerolog"
	"github.com/kotone-fm/kotone/util/buildinfo"
	"github.com/kotone-fm/kotone/website"
	"github.com/rs/zerolog"
)

// configEnvFile is the environment variable checked for a configuration file
const configEnvFile = "KOTONE_CONFIG"

// top-level flags
var (
	configFile    string
	logLevel      string
	useTelemetry  bool
	disableStdout bool
)

type executeFn func(context.Context, config.Loader) error

type executeConfigFn func(context.Context, config.Config) error

// cmd is a subcommands.Command that runs execute with a config.Loader, the
// result is sent on the error channel passed to subcommands.Execute
type cmd struct {
	name     string
	synopsis string
	usage    string
	setFlags func(*flag.FlagSet)
	execute  executeFn
}

func (c cmd) Name() string     { return c.name }
func (c cmd) Synopsis() string { return c.synopsis }
func (c cmd) Usage() string    { return c.usage }

func (c cmd) SetFlags(f *flag.FlagSet) {
	if c.setFlags != nil {
		c.setFlags(f)
	}
}

func (c cmd) Execute(ctx context.Context, f *flag.FlagSet, args ...any) subcommands.ExitStatus {
	errCh := args[0].(chan error)

	zerolog.Ctx(ctx).UpdateContext(func(zc zerolog.Context) zerolog.Context {
		return zc.Str("service", c.name)
	})

	var tel telemetryState
	defer tel.stop()

	errCh <- c.execute(ctx, tel.loader(ctx, c.name))
	return subcommands.ExitSuccess
}

// telemetryState holds what the loader of a command started
type telemetryState struct {
	mu       sync.Mutex
	shutdown func()
	profiler telemetry.Profiler
}

// loader returns a config.Loader that also starts telemetry and profiling
// the first time a configuration asks for it
func (ts *telemetryState) loader(ctx context.Context, service string) config.Loader {
	return func() (config.Config, error) {
		cfg, err := config.LoadFile(configFile, configEnvFile)
		if err != nil || !(useTelemetry || cfg.Conf().Telemetry.Use) {
			return cfg, err
		}

		ts.mu.Lock()
		defer ts.mu.Unlock()
		if ts.shutdown != nil {
			return cfg, nil
		}

		logger := zerolog.Ctx(ctx)
		ts.shutdown, err = telemetry.Init(ctx, cfg, service)
		if err != nil {
			logger.Error().Ctx(ctx).Err(err).Msg("failed to initialize telemetry")
			return cfg, err
		}
		ts.profiler, err = telemetry.InitPyroscope(ctx, cfg, service)
		if err != nil {
			logger.Error().Ctx(ctx).Err(err).Msg("failed to initialize profiling")
		}
		return cfg, err
	}
}

func (ts *telemetryState) stop() {
	ts.mu.Lock()
	defer ts.mu.Unlock()
	if ts.profiler != nil {
		ts.profiler.Stop()
	}
	if ts.shutdown != nil {
		ts.shutdown()
	}
}

// withConfig turns an executeConfigFn into an executeFn
func withConfig(fn executeConfigFn) executeFn {
	return func(ctx context.Context, l config.Loader) error {
		cfg, err := l()
		if err != nil {
			return err
		}
		return fn(ctx, cfg)
	}
}

var versionCmd = cmd{
	name:     "version",
	synopsis: "print the build and dependency versions",
	usage: `version:
	print the build and dependency versions
`,
	execute: printVersion,
}

func printVersion(context.Context, config.Loader) error {
	modified := ""
	if buildinfo.GitModified {
		modified = "+dirty"
	}
	fmt.Printf("kotone %s%s (built %s)\n", buildinfo.ShortRef, modified, buildinfo.GitTime)
	for _, dep := range buildinfo.Dependencies() {
		fmt.Printf("  %s %s\n", dep[0], dep[1])
	}
	return nil
}

var configCmd = cmd{
	name:     "config",
	synopsis: "print the configuration in effect",
	usage: `config:
	print the configuration in effect, the defaults are printed when no
	configuration file could be loaded
`,
	execute: func(_ context.Context, l config.Loader) error {
		cfg, _ := l()
		return cfg.Save(os.Stdout)
	},
}

var websiteCmd = cmd{
	name:     "website",
	synopsis: "serve the upload api",
	usage: `website:
	serve the upload api until interrupted
`,
	execute: withConfig(website.Execute),
}

func main() {
	os.Exit(run())
}

func run() int {
	flag.StringVar(&configFile, "config", "kotone.toml", "path to the configuration file")
	flag.StringVar(&logLevel, "loglevel", "info", "minimum level of logs")
	flag.BoolVar(&useTelemetry, "telemetry", false, "export telemetry even if the configuration doesn't")
	flag.BoolVar(&disableStdout, "disable-stdout", false, "don't print logs to stdout")
	flag.VisitAll(func(f *flag.Flag) {
		subcommands.ImportantFlag(f.Name)
	})

	subcommands.Register(subcommands.HelpCommand(), "")
	subcommands.Register(subcommands.FlagsCommand(), "")
	subcommands.Register(subcommands.CommandsCommand(), "")
	subcommands.Register(versionCmd, "")
	subcommands.Register(configCmd, "")
	subcommands.Register(websiteCmd, "")
	subcommands.Register(ingestCmd(), "library")
	subcommands.Register(checkToolsCmd, "library")
	subcommands.Register(&migrateCmd{}, "migrate")
	flag.Parse()

	var out io.Writer = zerolog.ConsoleWriter{Out: os.Stdout}
	if disableStdout {
		out = io.Discard
	}
	logger, err := newLogger(out, logLevel)
	if err != nil {
		fmt.Fprintln(os.Stderr, "invalid -loglevel:", err)
		return 1
	}

	ctx := logger.WithContext(context.Background())
	return exitCode(ctx, executeCommand(ctx))
}

// newLogger returns the root logger, every event is also sent to the
// opentelemetry log provider once telemetry is started
func newLogger(out io.Writer, level string) (zerolog.Logger, error) {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		return zerolog.Nop(), err
	}
	return zerolog.New(out).
		Level(lvl).
		With().Timestamp().Logger().
		Hook(otelzerolog.Hook(buildinfo.InstrumentationName, buildinfo.InstrumentationVersion)), nil
}

// executeCommand runs the subcommand asked for. SIGINT and SIGTERM cancel
// the context of the command, after which it is waited on to return
func executeCommand(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	signals := make(chan os.Signal, 2)
	signal.Notify(signals, os.Interrupt, syscall.SIGTERM, syscall.SIGHUP)
	defer signal.Stop(signals)

	// room for both the result of a cmd and the status of subcommands
	errCh := make(chan error, 2)
	go func() {
		status := subcommands.Execute(ctx, errCh)
		errCh <- WithStatusCode(nil, int(status))
	}()

	for {
		select {
		case err := <-errCh:
			return err
		case sig := <-signals:
			logger := zerolog.Ctx(ctx)
			if sig == syscall.SIGHUP {
				logger.Info().Ctx(ctx).Msg("SIGHUP received: configuration reloading is not supported")
				continue
			}
			logger.Info().Ctx(ctx).Str("signal", sig.String()).Msg("shutting down")
			cancel()
			return <-errCh
		}
	}
}

// exitCode logs err and returns the code to exit with
func exitCode(ctx context.Context, err error) int {
	if err == nil {
		return 0
	}

	logger := zerolog.Ctx(ctx)
	if exitErr, ok := err.(ExitError); ok {
		if exitErr.Unwrap() != nil {
			logger.Error().Ctx(ctx).Err(exitErr.Unwrap()).Msg("exit")
		}
		return exitErr.StatusCode()
	}

	logger.Error().Ctx(ctx).Err(err).Msg("exit")
	return 1
}

// WithStatusCode returns an ExitError with the given status code
func WithStatusCode(err error, code int) error {
	return exitError{err, code}
}

// ExitError is an error that carries the code to exit with
type ExitError interface {
	error
	StatusCode() int
	Unwrap() error
}

type exitError struct {
	err  error
	code int
}

func (err exitError) Error() string {
	if err.err == nil {
		return fmt.Sprintf("exit status %d", err.code)
	}
	return err.err.Error()
}

func (err exitError) Unwrap() error {
	return err.err
}

func (err exitError) StatusCode() int {
	return err.code
}
