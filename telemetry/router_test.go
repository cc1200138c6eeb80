package telemetry

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	semconv "go.opentelemetry.io/otel/semconv/v1.24.0"
)

func TestFilterEndpoints(t *testing.T) {
	ctx := context.Background()

	r := httptest.NewRequestWithContext(ctx, "", "/", nil)
	require.True(t, filterEndpoints(r))

	r = httptest.NewRequestWithContext(ctx, "", "/v1/songs/5/file", nil)
	require.True(t, filterEndpoints(r))

	r = httptest.NewRequestWithContext(ctx, "", "/metrics", nil)
	require.False(t, filterEndpoints(r))

	r = httptest.NewRequestWithContext(ctx, "", "/healthz?check=1", nil)
	require.False(t, filterEndpoints(r))
}

func TestHandlerSpanName(t *testing.T) {
	exporter := tracetest.NewInMemoryExporter()
	tp := trace.NewTracerProvider(trace.WithSyncer(exporter))
	defer tp.Shutdown(context.Background())

	prev := otel.GetTracerProvider()
	otel.SetTracerProvider(tp)
	defer otel.SetTracerProvider(prev)

	r := chi.NewRouter()
	r.Route("/v1/songs", func(r chi.Router) {
		r.Get("/{SongID}", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusTeapot)
		})
	})
	r.Get("/metrics", func(w http.ResponseWriter, r *http.Request) {})
	h := Handler(r)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/songs/5", nil))
	assert.Equal(t, http.StatusTeapot, rec.Code)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	spans := exporter.GetSpans()
	require.Len(t, spans, 1)
	assert.Equal(t, "GET /v1/songs/{SongID}", spans[0].Name)
	assert.Contains(t, spans[0].Attributes, semconv.HTTPRouteKey.String("/v1/songs/{SongID}"))
}

func BenchmarkFilterEndpoints(b *testing.B) {
	ctx := context.Background()
	rTrue := httptest.NewRequestWithContext(ctx, "", "/v1/songs", nil)
	rFalse := httptest.NewRequestWithContext(ctx, "", "/metrics", nil)

	b.Run("noskip", func(b *testing.B) {
		for range b.N {
			filterEndpoints(rTrue)
		}
	})

	b.Run("skip", func(b *testing.B) {
		for range b.N {
			filterEndpoints(rFalse)
		}
	})
}
