package main

import (
	"bytes"
	"context"
	"testing"

	"github.com/kotone-fm/kotone/config"
	"github.com/kotone-fm/kotone/errors"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	logger, err := newLogger(&buf, "warn")
	require.NoError(t, err)

	logger.Info().Msg("hidden")
	logger.Warn().Msg("shown")
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "shown")

	_, err = newLogger(&buf, "loud")
	require.Error(t, err)
}

func TestExitCode(t *testing.T) {
	var buf bytes.Buffer
	ctx := zerolog.New(&buf).WithContext(context.Background())

	assert.Equal(t, 0, exitCode(ctx, nil))
	assert.Empty(t, buf.String())

	assert.Equal(t, 2, exitCode(ctx, WithStatusCode(nil, 2)))
	assert.Empty(t, buf.String(), "status without an error isn't logged")

	assert.Equal(t, 3, exitCode(ctx, WithStatusCode(errors.New("tool missing"), 3)))
	assert.Contains(t, buf.String(), "tool missing")

	assert.Equal(t, 1, exitCode(ctx, errors.New("plain failure")))
	assert.Contains(t, buf.String(), "plain failure")
}

func TestWithConfig(t *testing.T) {
	cfg := config.TestConfig()
	loaded := func() (config.Config, error) { return cfg, nil }

	var got config.Config
	err := withConfig(func(_ context.Context, c config.Config) error {
		got = c
		return nil
	})(context.Background(), loaded)
	require.NoError(t, err)
	assert.Equal(t, cfg.Conf().UserAgent, got.Conf().UserAgent)

	failing := func() (config.Config, error) { return config.Config{}, errors.New("no config") }
	err = withConfig(func(context.Context, config.Config) error {
		t.Fatal("executed without a config")
		return nil
	})(context.Background(), failing)
	require.Error(t, err)
}

func TestTelemetryStateDisabled(t *testing.T) {
	old := configFile
	configFile = ""
	t.Cleanup(func() { configFile = old })
	t.Setenv(configEnvFile, "")

	var ts telemetryState
	_, err := ts.loader(context.Background(), "testing")()
	require.NoError(t, err)
	assert.Nil(t, ts.shutdown)
	assert.Nil(t, ts.profiler)

	// stop without anything started
	ts.stop()
}
