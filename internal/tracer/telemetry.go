package tracer

import (
	"context"
	"log/slog"
	"sync"

	"flatfile-shop/internal/config"
	"flatfile-shop/internal/logger"
	"flatfile-shop/internal/version"

	otelpyroscope "github.com/grafana/otel-profiling-go"
	"github.com/grafana/pyroscope-go"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	"go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.17.0"
	"google.golang.org/grpc"
)

var (
	once         sync.Once
	shutdownFunc = func() {}
	initErr      error
)

var pyroLogrus = func() *logrus.Logger {
	l := logrus.New()
	l.SetLevel(logrus.InfoLevel)
	l.SetFormatter(&logrus.JSONFormatter{})
	return l
}()

// newExporter picks the span exporter for cfg: OTLP over gRPC when an
// endpoint is configured, stdout when asked for, otherwise none.
func newExporter(ctx context.Context, cfg *config.Config) (trace.SpanExporter, string, error) {
	switch {
	case cfg.RemoteTraceRpcURI != "":
		exp, err := otlptracegrpc.New(ctx,
			otlptracegrpc.WithInsecure(),
			otlptracegrpc.WithEndpoint(cfg.RemoteTraceRpcURI),
			otlptracegrpc.WithCompressor("gzip"),
			otlptracegrpc.WithDialOption(grpc.WithUserAgent(cfg.AppName+"/"+version.Version)),
		)
		return exp, "otlp", err
	case cfg.TraceStdout:
		exp, err := stdouttrace.New(stdouttrace.WithPrettyPrint())
		return exp, "stdout", err
	default:
		return nil, "none", nil
	}
}

func newTracerProvider(ctx context.Context, cfg *config.Config) (*trace.TracerProvider, string, error) {
	exp, kind, err := newExporter(ctx, cfg)
	if err != nil {
		return nil, kind, err
	}

	res, err := resource.New(ctx,
		resource.WithAttributes(
			semconv.ServiceNameKey.String(cfg.AppName),
			semconv.ServiceVersionKey.String(version.Version),
			attribute.String("host.name", logger.Hostname()),
		),
	)
	if err != nil {
		return nil, kind, err
	}

	opts := []trace.TracerProviderOption{trace.WithResource(res)}
	if exp != nil {
		opts = append(opts, trace.WithBatcher(exp))
	}
	return trace.NewTracerProvider(opts...), kind, nil
}

// Instance installs the global tracer provider and propagators once and
// starts the Pyroscope agent when a profiling server is configured. The
// returned func flushes spans and stops the profiler.
func Instance(globalCtx context.Context, cfg *config.Config) (func(), error) {
	once.Do(func() {
		tp, kind, err := newTracerProvider(globalCtx, cfg)
		if err != nil {
			logger.Error(globalCtx, "Failed to create tracer provider", slog.String("error", err.Error()))
			initErr = err
			return
		}

		otel.SetTracerProvider(otelpyroscope.NewTracerProvider(tp))
		otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
			propagation.TraceContext{},
			propagation.Baggage{},
		))

		logger.Info(globalCtx, "OpenTelemetry Tracer initialized", slog.String("exporter", kind))

		var profiler *pyroscope.Profiler
		if cfg.RemoteProfilingHttpURI != "" {
			profiler, err = pyroscope.Start(pyroscope.Config{
				ApplicationName: cfg.AppName,
				ServerAddress:   cfg.RemoteProfilingHttpURI,
				Logger:          pyroLogrus,
			})
			if err != nil {
				logger.Error(globalCtx, "Pyroscope failed to start", slog.String("error", err.Error()))
			} else {
				logger.Info(globalCtx, "Pyroscope started successfully")
			}
		}

		shutdownFunc = func() {
			if err := tp.Shutdown(context.Background()); err != nil {
				logger.Error(globalCtx, "Error shutting down tracer provider", slog.String("error", err.Error()))
			}
			if profiler != nil {
				if err := profiler.Stop(); err != nil {
					logger.Error(globalCtx, "Error stopping profiler", slog.String("error", err.Error()))
				}
			}
		}
	})

	return shutdownFunc, initErr
}
