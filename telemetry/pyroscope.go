package telemetry

import (
	"context"
	"runtime"

	"github.com/grafana/pyroscope-go"
	"github.com/kotone-fm/kotone/config"
	"github.com/kotone-fm/kotone/util/buildinfo"
	"github.com/rs/zerolog"
)

// Profiler is a running continuous profiler
type Profiler interface {
	Stop() error
	Flush(wait bool)
}

func IsPyroscopeEnabled(cfg config.Config) bool {
	return cfg.Conf().Telemetry.Pyroscope.Endpoint != ""
}

// profileTypes are uploaded on top of the cpu and heap profiles, mutex and
// block sampling is only enabled while profiling
var profileTypes = []pyroscope.ProfileType{
	pyroscope.ProfileCPU,
	pyroscope.ProfileAllocSpace,
	pyroscope.ProfileInuseSpace,
	pyroscope.ProfileGoroutines,
	pyroscope.ProfileMutexDuration,
	pyroscope.ProfileBlockDuration,
}

// pyroscopeConfig returns the profiler configuration for service, profiles
// are tagged with the build so they can be compared across releases
func pyroscopeConfig(ctx context.Context, cfg config.Config, service string) pyroscope.Config {
	conf := cfg.Conf().Telemetry.Pyroscope
	return pyroscope.Config{
		ApplicationName: "kotone." + service,
		ServerAddress:   conf.Endpoint.String(),
		UploadRate:      conf.UploadRate.Std(),
		Logger:          pyroscopeLogger{zerolog.Ctx(ctx)},
		Tags: map[string]string{
			"version": buildinfo.ShortRef,
		},
		ProfileTypes: profileTypes,
	}
}

// InitPyroscope starts continuous profiling, it returns a Profiler that does
// nothing if no endpoint is configured
func InitPyroscope(ctx context.Context, cfg config.Config, service string) (Profiler, error) {
	if !IsPyroscopeEnabled(cfg) {
		return noopProfiler{}, nil
	}

	runtime.SetMutexProfileFraction(5)
	runtime.SetBlockProfileRate(5)
	profiler, err := pyroscope.Start(pyroscopeConfig(ctx, cfg, service))
	if err != nil {
		return nil, err
	}
	return profiler, nil
}

type noopProfiler struct{}

func (noopProfiler) Stop() error { return nil }
func (noopProfiler) Flush(bool)  {}

// pyroscopeLogger adapts zerolog to pyroscope.Logger
type pyroscopeLogger struct {
	logger *zerolog.Logger
}

func (l pyroscopeLogger) Infof(format string, args ...any) {
	l.logger.Debug().Str("component", "pyroscope").Msgf(format, args...)
}

func (l pyroscopeLogger) Debugf(format string, args ...any) {
	l.logger.Trace().Str("component", "pyroscope").Msgf(format, args...)
}

func (l pyroscopeLogger) Errorf(format string, args ...any) {
	l.logger.Error().Str("component", "pyroscope").Msgf(format, args...)
}
