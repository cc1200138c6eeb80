package telemetry

import (
	"context"

	"github.com/XSAM/otelsql"
	otelpyroscope "github.com/grafana/otel-profiling-go"
	"github.com/jmoiron/sqlx"
	"github.com/kotone-fm/kotone/config"
	"github.com/kotone-fm/kotone/errors"
	"github.com/kotone-fm/kotone/storage/mariadb"
	"github.com/kotone-fm/kotone/util/buildinfo"
	"github.com/kotone-fm/kotone/website"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlplog/otlploggrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/log/global"
	"go.opentelemetry.io/otel/propagation"
	sdklog "go.opentelemetry.io/otel/sdk/log"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.24.0"
	"google.golang.org/grpc"
)

// Init installs global trace, metric and log providers exporting to the
// configured collector, and swaps in the instrumented database connect and
// root handler. The returned function flushes and stops every provider
func Init(ctx context.Context, cfg config.Config, service string) (func(), error) {
	res, err := resource.New(ctx,
		resource.WithFromEnv(),
		resource.WithTelemetrySDK(),
		resource.WithHost(),
		resource.WithAttributes(
			semconv.ServiceName("kotone:"+service),
			semconv.ServiceVersion(buildinfo.ShortRef),
		),
	)
	if err != nil {
		return nil, err
	}
	exp := newExporterConfig(cfg)

	var shutdown []func(context.Context) error
	stop := func() {
		for _, fn := range shutdown {
			fn(context.Background())
		}
	}

	traceExporter, err := otlptracegrpc.New(ctx, exp.trace()...)
	if err != nil {
		return nil, err
	}
	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(traceExporter),
		sdktrace.WithResource(res),
	)
	shutdown = append(shutdown, tp.Shutdown)

	metricExporter, err := otlpmetricgrpc.New(ctx, exp.metric()...)
	if err != nil {
		stop()
		return nil, err
	}
	mp := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(metricExporter)),
		sdkmetric.WithResource(res),
	)
	shutdown = append(shutdown, mp.Shutdown)

	logExporter, err := otlploggrpc.New(ctx, exp.log()...)
	if err != nil {
		stop()
		return nil, err
	}
	lp := sdklog.NewLoggerProvider(
		sdklog.WithProcessor(sdklog.NewBatchProcessor(logExporter)),
		sdklog.WithResource(res),
	)
	shutdown = append(shutdown, lp.Shutdown)

	if IsPyroscopeEnabled(cfg) {
		// attaches profile ids to spans so traces link to their profiles
		otel.SetTracerProvider(otelpyroscope.NewTracerProvider(tp))
	} else {
		otel.SetTracerProvider(tp)
	}
	otel.SetMeterProvider(mp)
	global.SetLoggerProvider(lp)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	mariadb.DatabaseConnectFunc = DatabaseConnect
	website.Instrument = Handler
	return stop, nil
}

// exporterConfig is what the three OTLP exporters have in common
type exporterConfig struct {
	endpoint string
	headers  map[string]string
	dial     grpc.DialOption
}

func newExporterConfig(cfg config.Config) exporterConfig {
	conf := cfg.Conf()

	headers := map[string]string{}
	if conf.Telemetry.Auth != "" {
		headers["Authorization"] = conf.Telemetry.Auth
	}
	return exporterConfig{
		endpoint: conf.Telemetry.Endpoint,
		headers:  headers,
		dial:     grpc.WithUserAgent(conf.UserAgent),
	}
}

func (c exporterConfig) trace() []otlptracegrpc.Option {
	return []otlptracegrpc.Option{
		otlptracegrpc.WithInsecure(),
		otlptracegrpc.WithEndpoint(c.endpoint),
		otlptracegrpc.WithHeaders(c.headers),
		otlptracegrpc.WithDialOption(c.dial),
	}
}

func (c exporterConfig) metric() []otlpmetricgrpc.Option {
	return []otlpmetricgrpc.Option{
		otlpmetricgrpc.WithInsecure(),
		otlpmetricgrpc.WithEndpoint(c.endpoint),
		otlpmetricgrpc.WithHeaders(c.headers),
		otlpmetricgrpc.WithDialOption(c.dial),
	}
}

func (c exporterConfig) log() []otlploggrpc.Option {
	return []otlploggrpc.Option{
		otlploggrpc.WithInsecure(),
		otlploggrpc.WithEndpoint(c.endpoint),
		otlploggrpc.WithHeaders(c.headers),
		otlploggrpc.WithDialOption(c.dial),
	}
}

// DatabaseConnect is a mariadb.DatabaseConnectFunc that traces every query
// and reports connection pool statistics
func DatabaseConnect(ctx context.Context, driverName string, dataSourceName string) (*sqlx.DB, error) {
	db, err := otelsql.Open(driverName, dataSourceName,
		otelsql.WithAttributes(semconv.DBSystemMySQL),
		otelsql.WithSpanOptions(otelsql.SpanOptions{DisableErrSkip: true}),
	)
	if err != nil {
		return nil, err
	}

	err = db.PingContext(ctx)
	if err == nil {
		err = otelsql.RegisterDBStatsMetrics(db, otelsql.WithAttributes(semconv.DBSystemMySQL))
	}
	if err != nil {
		return nil, errors.Join(err, db.Close())
	}
	return sqlx.NewDb(db, driverName), nil
}
