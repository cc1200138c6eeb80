package website

import (
	"context"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chiware "github.com/go-chi/chi/v5/middleware"
	"github.com/kotone-fm/kotone/config"
	"github.com/kotone-fm/kotone/errors"
	"github.com/kotone-fm/kotone/ingest"
	"github.com/kotone-fm/kotone/migrations"
	v1 "github.com/kotone-fm/kotone/website/api/v1"
	"github.com/kotone-fm/kotone/website/middleware"
	"github.com/kotone-fm/kotone/website/shared"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/hlog"
)

// Instrument wraps the root handler before it is served, it is replaced
// when telemetry is enabled
var Instrument = func(h http.Handler) http.Handler {
	return h
}

// Execute serves the upload api on the configured address until ctx is
// canceled
func Execute(ctx context.Context, cfg config.Config) error {
	const op errors.Op = "website/Execute"

	if err := migrations.CheckVersion(ctx, cfg); err != nil {
		return errors.E(op, err)
	}

	service, err := ingest.Open(ctx, cfg)
	if err != nil {
		return errors.E(op, err)
	}
	defer service.Close()

	api := v1.NewAPI(ctx, cfg, service, service.Songs, service.Blobs)
	srv := newServer(ctx, cfg, Instrument(Router(ctx, cfg, api)))

	ln, err := net.Listen("tcp", srv.Addr)
	if err != nil {
		return errors.E(op, err)
	}
	return serve(ctx, srv, ln)
}

const (
	readHeaderTimeout = time.Second * 10
	shutdownTimeout   = time.Second * 5
)

func newServer(ctx context.Context, cfg config.Config, h http.Handler) *http.Server {
	return &http.Server{
		Addr:              cfg.Conf().Website.WebsiteAddr.String(),
		Handler:           h,
		BaseContext:       func(net.Listener) context.Context { return ctx },
		ReadHeaderTimeout: readHeaderTimeout,
	}
}

// serve runs srv on ln until it fails or ctx is canceled, uploads in flight
// get shutdownTimeout to finish
func serve(ctx context.Context, srv *http.Server, ln net.Listener) error {
	const op errors.Op = "website/serve"
	logger := zerolog.Ctx(ctx)

	done := make(chan error, 1)
	go func() {
		done <- srv.Serve(ln)
	}()
	logger.Info().Ctx(ctx).Str("address", ln.Addr().String()).Msg("website listening")

	select {
	case err := <-done:
		return errors.E(op, err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return errors.E(op, err)
	}
	logger.Info().Ctx(ctx).Msg("website stopped")
	return nil
}

// Router returns the root router with the api mounted under /v1
func Router(ctx context.Context, cfg config.Config, api *v1.API) chi.Router {
	r := chi.NewRouter()
	// uploads are attributed to the client address so the proxy in front has
	// to pass it along
	r.Use(chiware.RealIP, stripRemotePort)
	r.Use(
		hlog.NewHandler(*zerolog.Ctx(ctx)),
		hlog.RemoteAddrHandler("ip"),
		hlog.UserAgentHandler("user_agent"),
		hlog.RequestIDHandler("req_id", "Request-Id"),
		hlog.MethodHandler("method"),
		hlog.AccessHandler(logAccess),
	)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Uploader(config.Value(cfg, func(c config.Config) string {
		return c.Conf().Website.UploaderHeader
	})))

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		shared.ErrorHandler(w, r, shared.ErrNotFound)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		shared.ErrorHandler(w, r, shared.ErrMethodNotAllowed)
	})

	r.Handle("/metrics", promhttp.Handler())
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	r.Mount("/v1", api.Router())
	return r
}

func logAccess(r *http.Request, status, size int, duration time.Duration) {
	event := hlog.FromRequest(r).Info()
	if status >= http.StatusInternalServerError {
		event = hlog.FromRequest(r).Warn()
	}
	event.
		Str("path", r.URL.Path).
		Int("status", status).
		Int("size", size).
		Dur("duration", duration).
		Msg("request")
}

// stripRemotePort removes the port from r.RemoteAddr so that the address
// identifies the client alone. Addresses without a port are left alone
func stripRemotePort(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
			r.RemoteAddr = host
		}
		next.ServeHTTP(w, r)
	})
}
