package otelzerolog

import (
	"encoding/json"
	"io"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"go.opentelemetry.io/otel/log"
)

type captureHook struct {
	fields map[string]any
}

func (h *captureHook) Run(e *zerolog.Event, level zerolog.Level, msg string) {
	h.fields = eventFields(e)
}

func TestEventFields(t *testing.T) {
	var h captureHook
	logger := zerolog.New(io.Discard).Hook(&h)

	logger.Info().
		Str("outcome", "ACCEPT_NEW").
		Uint64("song_id", 5).
		Strs("genres", []string{"rock", "pop"}).
		Msg("ingested upload")

	assert.Equal(t, "ACCEPT_NEW", h.fields["outcome"])
	assert.Equal(t, json.Number("5"), h.fields["song_id"])
	assert.Equal(t, []any{"rock", "pop"}, h.fields["genres"])
	assert.NotContains(t, h.fields, zerolog.MessageFieldName)
}

func TestToValue(t *testing.T) {
	cases := []struct {
		name   string
		value  any
		expect log.Value
	}{
		{"bool", true, log.BoolValue(true)},
		{"integer", json.Number("42"), log.Int64Value(42)},
		{"large integer", json.Number("18446744073709551615"), log.Float64Value(18446744073709551615)},
		{"float", json.Number("1.5"), log.Float64Value(1.5)},
		{"string", "hello", log.StringValue("hello")},
		{"slice", []any{"a", json.Number("1")}, log.SliceValue(log.StringValue("a"), log.Int64Value(1))},
		{"map", map[string]any{"b": "2", "a": true}, log.MapValue(log.Bool("a", true), log.String("b", "2"))},
		{"other", int32(7), log.StringValue("7")},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			assert.True(t, c.expect.Equal(toValue(c.value)), "got %v", toValue(c.value))
		})
	}
}

func TestNewRecord(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	r := newRecord(now, zerolog.WarnLevel, "scratch file left behind", map[string]any{
		zerolog.LevelFieldName:   "warn",
		zerolog.MessageFieldName: "scratch file left behind",
		"path":                   "/tmp/kotone-1",
		"attempt":                json.Number("2"),
	})

	assert.Equal(t, now, r.Timestamp())
	assert.Equal(t, log.SeverityWarn, r.Severity())
	assert.Equal(t, "warn", r.SeverityText())
	assert.Equal(t, "scratch file left behind", r.Body().AsString())

	var keys []string
	r.WalkAttributes(func(kv log.KeyValue) bool {
		keys = append(keys, kv.Key)
		return true
	})
	assert.Equal(t, []string{"attempt", "path"}, keys)
}

func TestSeverities(t *testing.T) {
	assert.Equal(t, log.SeverityDebug, severities[zerolog.DebugLevel])
	assert.Equal(t, log.SeverityInfo, severities[zerolog.InfoLevel])
	assert.Equal(t, log.SeverityError, severities[zerolog.ErrorLevel])
	assert.Equal(t, log.SeverityUndefined, severities[zerolog.NoLevel])
}
