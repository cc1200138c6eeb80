package otelzerolog

import (
	"bytes"
	"encoding/json"
	"fmt"
	"maps"
	"reflect"
	"slices"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/log"
	"go.opentelemetry.io/otel/log/global"
	"go.opentelemetry.io/otel/trace"
)

// Hook returns a zerolog.Hook that emits every log event as a record on the
// global opentelemetry LoggerProvider
func Hook(name, version string) zerolog.Hook {
	return emitter{
		logger: global.GetLoggerProvider().Logger(name, log.WithInstrumentationVersion(version)),
	}
}

var severities = map[zerolog.Level]log.Severity{
	zerolog.TraceLevel: log.SeverityTrace,
	zerolog.DebugLevel: log.SeverityDebug,
	zerolog.InfoLevel:  log.SeverityInfo,
	zerolog.WarnLevel:  log.SeverityWarn,
	zerolog.ErrorLevel: log.SeverityError,
	zerolog.FatalLevel: log.SeverityFatal,
	zerolog.PanicLevel: log.SeverityFatal4,
}

type emitter struct {
	logger log.Logger
}

func (em emitter) Run(e *zerolog.Event, level zerolog.Level, msg string) {
	if !e.Enabled() {
		return
	}

	ctx := e.GetCtx()
	severity := severities[level]
	if !em.logger.Enabled(ctx, log.EnabledParameters{Severity: severity}) {
		return
	}

	r := newRecord(time.Now(), level, msg, eventFields(e))
	if sc := trace.SpanContextFromContext(ctx); sc.IsValid() {
		r.AddAttributes(
			log.String("trace_id", sc.TraceID().String()),
			log.String("span_id", sc.SpanID().String()),
		)
	}
	em.logger.Emit(ctx, r)
}

// newRecord builds the record of a single event, fields are added in key
// order and the ones zerolog writes itself are left out
func newRecord(now time.Time, level zerolog.Level, msg string, fields map[string]any) log.Record {
	var r log.Record
	r.SetTimestamp(now)
	r.SetObservedTimestamp(now)
	r.SetSeverity(severities[level])
	r.SetSeverityText(level.String())
	r.SetBody(log.StringValue(msg))

	for _, key := range slices.Sorted(maps.Keys(fields)) {
		switch key {
		case zerolog.LevelFieldName, zerolog.TimestampFieldName, zerolog.MessageFieldName:
			continue
		}
		r.AddAttributes(log.KeyValue{Key: key, Value: toValue(fields[key])})
	}
	return r
}

// eventFields decodes what has been written to e, the buffer of an event is
// a JSON object that is missing its closing brace
func eventFields(e *zerolog.Event) map[string]any {
	buf := reflect.ValueOf(e).Elem().FieldByName("buf").Bytes()

	dec := json.NewDecoder(bytes.NewReader(append(slices.Clone(buf), '}')))
	dec.UseNumber()

	fields := make(map[string]any)
	if err := dec.Decode(&fields); err != nil {
		return nil
	}
	return fields
}

func toValue(v any) log.Value {
	switch v := v.(type) {
	case nil:
		return log.Value{}
	case bool:
		return log.BoolValue(v)
	case string:
		return log.StringValue(v)
	case json.Number:
		if i, err := v.Int64(); err == nil {
			return log.Int64Value(i)
		}
		if f, err := v.Float64(); err == nil {
			return log.Float64Value(f)
		}
		return log.StringValue(v.String())
	case []any:
		values := make([]log.Value, len(v))
		for i := range v {
			values[i] = toValue(v[i])
		}
		return log.SliceValue(values...)
	case map[string]any:
		kvs := make([]log.KeyValue, 0, len(v))
		for _, key := range slices.Sorted(maps.Keys(v)) {
			kvs = append(kvs, log.KeyValue{Key: key, Value: toValue(v[key])})
		}
		return log.MapValue(kvs...)
	}
	return log.StringValue(fmt.Sprint(v))
}
