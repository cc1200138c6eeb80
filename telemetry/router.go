package telemetry

import (
	"context"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	semconv "go.opentelemetry.io/otel/semconv/v1.24.0"
	"go.opentelemetry.io/otel/trace"
)

// untracedPaths are scraped or polled so often that tracing them is noise
var untracedPaths = []string{
	"/metrics",
	"/healthz",
}

// filterEndpoints returns false for requests that should not be traced
func filterEndpoints(r *http.Request) bool {
	for _, path := range untracedPaths {
		if strings.HasPrefix(r.URL.Path, path) {
			return false
		}
	}
	return true
}

// Handler wraps the root chi router h so that every request records a
// server span, the span is renamed to the route pattern once h has routed it
func Handler(h http.Handler) http.Handler {
	return otelhttp.NewHandler(routeName(h), "http_request",
		otelhttp.WithFilter(filterEndpoints),
		otelhttp.WithSpanNameFormatter(func(_ string, r *http.Request) string {
			return r.Method + " " + r.URL.Path
		}),
	)
}

// routeName hands h a routing context it can fill in, so the matched
// pattern is still readable after h returns
func routeName(h http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rctx := chi.RouteContext(r.Context())
		if rctx == nil {
			rctx = chi.NewRouteContext()
			if routes, ok := h.(chi.Routes); ok {
				rctx.Routes = routes
			}
			r = r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
		}

		h.ServeHTTP(w, r)

		pattern := rctx.RoutePattern()
		if pattern == "" {
			return
		}
		span := trace.SpanFromContext(r.Context())
		span.SetName(r.Method + " " + pattern)
		span.SetAttributes(semconv.HTTPRouteKey.String(pattern))
	})
}
