// Package fingerprint computes the identity of uploaded audio files
package fingerprint

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
	"time"

	library "github.com/kotone-fm/kotone"
	"github.com/kotone-fm/kotone/config"
	"github.com/kotone-fm/kotone/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
	"github.com/spf13/afero"
)

// outputPrefix is the prefix of the line in the tool output that contains the
// fingerprint
const outputPrefix = "FINGERPRINT="

// waitDelay is how long we wait for the output of the tool after it exits
const waitDelay = time.Second

var generatedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "kotone",
	Subsystem: "fingerprint",
	Name:      "generated_total",
	Help:      "Amount of fingerprints generated, by kind",
}, []string{"kind"})

// CommandFunc creates the command to run, exec.CommandContext in production
type CommandFunc func(ctx context.Context, name string, args ...string) *exec.Cmd

// Generator generates fingerprints of audio files with an external tool, and
// falls back to a content hash if the tool is unusable
type Generator struct {
	fs         afero.Fs
	scratchDir string
	timeout    time.Duration
	// tool is the resolved path of the tool, empty if none was found
	tool    string
	command CommandFunc
}

var _ library.FingerprintGenerator = (*Generator)(nil)

// NewGenerator returns a Generator configured by cfg, the tool is resolved
// from the configured candidates once. Scratch files are created on fs, which
// has to be backed by the OS filesystem if a tool is available
func NewGenerator(ctx context.Context, cfg config.Config, fs afero.Fs) *Generator {
	conf := cfg.Conf().Ingest

	g := &Generator{
		fs:         fs,
		scratchDir: conf.ScratchDir,
		timeout:    conf.FingerprintTimeout.Std(),
		command:    exec.CommandContext,
	}

	status := Check(conf.FingerprintTools)
	if status.Available {
		g.tool = status.Path
		zerolog.Ctx(ctx).Info().Str("tool", g.tool).Msg("using acoustic fingerprinting tool")
	} else {
		zerolog.Ctx(ctx).Warn().Strs("candidates", conf.FingerprintTools).
			Msg("no acoustic fingerprinting tool found, falling back to content hashes")
	}
	return g
}

// Tool returns the path of the tool in use, or an empty string if none
func (g *Generator) Tool() string {
	return g.tool
}

// Generate implements library.FingerprintGenerator. It never fails, if the
// acoustic fingerprint can't be generated the content hash is returned
func (g *Generator) Generate(ctx context.Context, data []byte) library.Fingerprint {
	logger := zerolog.Ctx(ctx)

	fp, err := g.acoustic(ctx, data)
	if err == nil {
		logger.Info().Str("fingerprint", fp.Short()).Msg("generated acoustic fingerprint")
		generatedTotal.WithLabelValues(fp.Kind.String()).Inc()
		return fp
	}

	fp = Hash(data)
	logger.Warn().Err(err).Str("fingerprint", fp.Short()).Msg("falling back to content hash fingerprint")
	generatedTotal.WithLabelValues(fp.Kind.String()).Inc()
	return fp
}

// Hash returns the content hash fingerprint of data
func Hash(data []byte) library.Fingerprint {
	return library.NewHashFingerprint(data)
}

func (g *Generator) acoustic(ctx context.Context, data []byte) (fp library.Fingerprint, err error) {
	const op errors.Op = "fingerprint/Generator.acoustic"

	if g.tool == "" {
		return fp, errors.E(op, errors.ToolUnavailable)
	}
	if len(data) == 0 {
		return fp, errors.E(op, errors.InvalidArgument, errors.Info("empty data"))
	}

	f, err := afero.TempFile(g.fs, g.scratchDir, "kotone-fp-*")
	if err != nil {
		return fp, errors.E(op, err)
	}
	// scratch space is shared between uploads, this has to run on every
	// path including panics
	defer func() {
		if rerr := g.fs.Remove(f.Name()); rerr != nil {
			zerolog.Ctx(ctx).Error().Err(rerr).Str("path", f.Name()).Msg("failed to remove scratch file")
		}
	}()
	defer func() {
		if r := recover(); r != nil {
			err = errors.E(op, fmt.Errorf("panic while fingerprinting: %v", r))
		}
	}()

	_, err = f.Write(data)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return fp, errors.E(op, err)
	}

	if g.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}

	var stdout, stderr bytes.Buffer
	cmd := g.command(ctx, g.tool, f.Name())
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	// children of the tool can keep the output pipes open after a kill
	cmd.WaitDelay = waitDelay

	if err = cmd.Run(); err != nil {
		return fp, errors.E(op, err, errors.Info(strings.TrimSpace(stderr.String())))
	}

	value, err := parseOutput(stdout.Bytes())
	if err != nil {
		return fp, errors.E(op, err)
	}
	return library.NewAcousticFingerprint(value), nil
}

// parseOutput returns the value of the FINGERPRINT= line in output
func parseOutput(output []byte) (string, error) {
	s := bufio.NewScanner(bytes.NewReader(output))
	// fingerprints of long files are big
	s.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)

	for s.Scan() {
		line := strings.TrimSpace(s.Text())
		value, ok := strings.CutPrefix(line, outputPrefix)
		if !ok {
			continue
		}
		if value = strings.TrimSpace(value); value == "" {
			return "", errors.New("empty fingerprint in tool output")
		}
		return value, nil
	}
	if err := s.Err(); err != nil {
		return "", err
	}
	return "", errors.New("no fingerprint in tool output")
}
