package config

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg, err := LoadFile()
	require.NoError(t, err)

	assert.Equal(t, defaultConfig, cfg.Conf())

	t.Run("Roundtrip", func(t *testing.T) {
		var buf bytes.Buffer

		err := cfg.Save(&buf)
		require.NoError(t, err)

		other, err := Load(&buf)
		require.NoError(t, err)

		assert.Equal(t, defaultConfig, other.Conf())
	})
}

func TestLoadOverrides(t *testing.T) {
	input := `
[Providers]
Storage = "mongodb"

[Ingest]
ScratchDir = "/tmp/scratch"
FingerprintTools = ["/opt/fpcalc"]
FingerprintTimeout = "5s"

[Website]
WebsiteAddr = ":8080"
`
	cfg, err := Load(strings.NewReader(input))
	require.NoError(t, err)

	conf := cfg.Conf()
	assert.Equal(t, "mongodb", conf.Providers.Storage)
	assert.Equal(t, "/tmp/scratch", conf.Ingest.ScratchDir)
	assert.Equal(t, []string{"/opt/fpcalc"}, conf.Ingest.FingerprintTools)
	assert.Equal(t, time.Second*5, conf.Ingest.FingerprintTimeout.Std())
	assert.Equal(t, ":8080", conf.Website.WebsiteAddr.String())
	// untouched fields keep their defaults
	assert.Equal(t, defaultConfig.Blob, conf.Blob)
	assert.Equal(t, defaultConfig.Ingest.LookupTimeout, conf.Ingest.LookupTimeout)
}

func TestLoadInvalid(t *testing.T) {
	_, err := Load(strings.NewReader(`[Ingest]
FingerprintTimeout = "not a duration"`))
	assert.Error(t, err)
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "kotone.toml")
	require.NoError(t, os.WriteFile(path, []byte(`UserAgent = "testing"`), 0o644))

	t.Run("first existing file", func(t *testing.T) {
		cfg, err := LoadFile(filepath.Join(dir, "missing.toml"), path)
		require.NoError(t, err)
		assert.Equal(t, "testing", cfg.Conf().UserAgent)
	})

	t.Run("environment variable", func(t *testing.T) {
		t.Setenv("KOTONE_TEST_CONFIG", path)
		cfg, err := LoadFile("KOTONE_TEST_CONFIG")
		require.NoError(t, err)
		assert.Equal(t, "testing", cfg.Conf().UserAgent)
	})

	t.Run("no files exist", func(t *testing.T) {
		cfg, err := LoadFile(filepath.Join(dir, "missing.toml"))
		assert.Error(t, err)
		// defaults are still usable
		assert.Equal(t, defaultConfig, cfg.Conf())
	})

	t.Run("only empty names", func(t *testing.T) {
		t.Setenv("KOTONE_TEST_CONFIG", "")
		cfg, err := LoadFile("", "KOTONE_TEST_CONFIG")
		require.NoError(t, err)
		assert.Equal(t, defaultConfig, cfg.Conf())
	})
}

func TestValue(t *testing.T) {
	cfg := TestConfig()
	value := Value(cfg, func(c Config) string {
		return c.Conf().Blob.Path
	})

	assert.Equal(t, "/kotone/testing/music", value())

	conf := cfg.Conf()
	conf.Blob.Path = "/somewhere/else"
	cfg.StoreConf(conf)
	assert.Equal(t, "/somewhere/else", value())
}

func BenchmarkConfigAccess(b *testing.B) {
	cfg, err := LoadFile()
	require.NoError(b, err)

	b.ResetTimer()
	for n := 0; n < b.N; n++ {
		_ = cfg.Conf().Ingest.ScratchDir
	}
}
