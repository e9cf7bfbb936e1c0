package telemetry

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"ctchen222/tictactoe-engine/internal/config"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlplog/otlploggrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/log/global"
	"go.opentelemetry.io/otel/propagation"
	sdklog "go.opentelemetry.io/otel/sdk/log"
	"go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.37.0"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
)

// ShutdownFunc flushes and stops the providers set up by InitOtel.
type ShutdownFunc func(context.Context) error

type options struct {
	traceWriter io.Writer
}

// Option configures InitOtel.
type Option func(*options)

// WithTraceWriter sends stdout traces to w instead of os.Stdout.
func WithTraceWriter(w io.Writer) Option {
	return func(o *options) { o.traceWriter = w }
}

// InitOtel initializes an OpenTelemetry SDK with configurations for traces, metrics and logs.
// When telemetry is disabled only the propagators are set and the global no-op providers stay.
// An empty collector endpoint keeps everything local: only stdout traces, if asked for.
func InitOtel(ctx context.Context, cfg config.Telemetry, opts ...Option) (ShutdownFunc, error) {
	o := options{traceWriter: os.Stdout}
	for _, opt := range opts {
		opt(&o)
	}

	// --- Set Propagators ---
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(propagation.TraceContext{}, propagation.Baggage{}))

	if !cfg.Enabled {
		return func(context.Context) error { return nil }, nil
	}

	// --- Create shared resource ---
	res, err := resource.Merge(
		resource.Default(),
		resource.NewWithAttributes(
			semconv.SchemaURL,
			semconv.ServiceName(cfg.ServiceName),
			semconv.ServiceVersion(cfg.ServiceVersion),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create resource: %w", err)
	}

	var shutdowns []ShutdownFunc

	// --- Create gRPC connection ---
	var conn *grpc.ClientConn
	if cfg.CollectorEndpoint != "" {
		conn, err = grpc.NewClient(cfg.CollectorEndpoint,
			grpc.WithTransportCredentials(insecure.NewCredentials()),
		)
		if err != nil {
			return nil, fmt.Errorf("failed to create gRPC connection to OTLP collector: %w", err)
		}
	}

	// --- Setup Traces ---
	traceOpts := []sdktrace.TracerProviderOption{sdktrace.WithResource(res)}
	if cfg.StdoutTraces {
		stdoutTraceExporter, err := stdouttrace.New(stdouttrace.WithWriter(o.traceWriter), stdouttrace.WithPrettyPrint())
		if err != nil {
			return nil, fmt.Errorf("failed to create stdout trace exporter: %w", err)
		}
		traceOpts = append(traceOpts, sdktrace.WithBatcher(stdoutTraceExporter))
	}
	if conn != nil {
		otlpTraceExporter, err := otlptracegrpc.New(ctx, otlptracegrpc.WithGRPCConn(conn))
		if err != nil {
			return nil, fmt.Errorf("failed to create OTLP trace exporter: %w", err)
		}
		traceOpts = append(traceOpts, sdktrace.WithBatcher(otlpTraceExporter))
	}
	tp := sdktrace.NewTracerProvider(traceOpts...)
	otel.SetTracerProvider(tp)
	shutdowns = append(shutdowns, wrap("TracerProvider", tp.Shutdown))

	if conn != nil {
		// --- Setup Metrics ---
		otlpMetricExporter, err := otlpmetricgrpc.New(ctx, otlpmetricgrpc.WithGRPCConn(conn))
		if err != nil {
			return nil, fmt.Errorf("failed to create OTLP metric exporter: %w", err)
		}
		mp := metric.NewMeterProvider(
			metric.WithReader(metric.NewPeriodicReader(otlpMetricExporter)),
			metric.WithResource(res),
		)
		otel.SetMeterProvider(mp)
		shutdowns = append(shutdowns, wrap("MeterProvider", mp.Shutdown))

		// --- Setup Logs ---
		otlpLogExporter, err := otlploggrpc.New(ctx, otlploggrpc.WithGRPCConn(conn))
		if err != nil {
			return nil, fmt.Errorf("failed to create OTLP log exporter: %w", err)
		}
		lp := sdklog.NewLoggerProvider(
			sdklog.WithProcessor(sdklog.NewBatchProcessor(otlpLogExporter)),
			sdklog.WithResource(res),
		)
		global.SetLoggerProvider(lp)
		shutdowns = append(shutdowns, wrap("LoggerProvider", lp.Shutdown))

		shutdowns = append(shutdowns, func(context.Context) error {
			if err := conn.Close(); err != nil {
				return fmt.Errorf("failed to close gRPC connection: %w", err)
			}
			return nil
		})
	}

	// --- Shutdown function ---
	shutdown := func(ctx context.Context) error {
		ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()

		var errs []error
		for _, fn := range shutdowns {
			if err := fn(ctx); err != nil {
				errs = append(errs, err)
			}
		}
		return errors.Join(errs...)
	}

	return shutdown, nil
}

func wrap(name string, fn func(context.Context) error) ShutdownFunc {
	return func(ctx context.Context) error {
		if err := fn(ctx); err != nil {
			return fmt.Errorf("failed to shutdown %s: %w", name, err)
		}
		return nil
	}
}
