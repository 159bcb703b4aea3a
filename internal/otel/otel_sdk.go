package otel

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/results-hub/results-hub/internal/config"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/exporters/stdout/stdoutlog"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/log/global"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/log"
	"go.opentelemetry.io/otel/sdk/resource"
	"go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.39.0"
	"google.golang.org/grpc/credentials"
)

const (
	ExporterTypeOTLPGRPC = "otlp-grpc"
	ExporterTypeOTLPHTTP = "otlp-http"
	ExporterTypeStdout   = "stdout"

	ServiceName = "results-hub"
	Compressor  = "gzip"
)

// SetupOTEL bootstraps the tracing and log pipelines. A nil shutdown is
// returned when OTEL is disabled, otherwise the caller must call it.
func SetupOTEL(ctx context.Context, conf *config.OTELConfig, serviceVersion string, logger *slog.Logger) (func(context.Context) error, error) {
	if conf == nil || !conf.Enabled {
		return nil, nil
	}

	if conf.TracerTimeout == 0 {
		conf.TracerTimeout = 30 * time.Second
	}
	if conf.TracerBatchInterval == 0 {
		conf.TracerBatchInterval = 5 * time.Second
	}

	var shutdownFuncs []func(context.Context) error

	// each registered cleanup runs once and the errors are joined
	shutdown := func(ctx context.Context) error {
		var err error
		for _, fn := range shutdownFuncs {
			err = errors.Join(err, fn(ctx))
		}
		shutdownFuncs = nil
		return err
	}

	otel.SetTextMapPropagator(newPropagator())

	if conf.EnableTracing {
		res := createResource(conf, serviceVersion)
		tracerProvider, err := newTracerProvider(ctx, conf, res)
		if err != nil {
			return nil, errors.Join(err, shutdown(ctx))
		}
		shutdownFuncs = append(shutdownFuncs, tracerProvider.Shutdown)
		otel.SetTracerProvider(tracerProvider)
		logger.Info("OTEL tracing enabled", "exporter", conf.ExporterType, "sampling_ratio", conf.GetSamplingRatio())
	}

	if conf.EnableLogs {
		loggerProvider, err := newLoggerProvider()
		if err != nil {
			return nil, errors.Join(err, shutdown(ctx))
		}
		shutdownFuncs = append(shutdownFuncs, loggerProvider.Shutdown)
		global.SetLoggerProvider(loggerProvider)
		logger.Info("OTEL logs enabled")
	}

	return shutdown, nil
}

func newPropagator() propagation.TextMapPropagator {
	return propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	)
}

func newTracerProvider(ctx context.Context, conf *config.OTELConfig, res *resource.Resource) (*trace.TracerProvider, error) {
	var exporter trace.SpanExporter
	switch conf.ExporterType {
	case ExporterTypeOTLPGRPC:
		if conf.ExporterEndpoint == "" {
			return nil, fmt.Errorf("Exporter endpoint is required for OTEL %s exporter", conf.ExporterType)
		}
		opts := []otlptracegrpc.Option{
			otlptracegrpc.WithEndpoint(conf.ExporterEndpoint),
			otlptracegrpc.WithTimeout(conf.TracerTimeout),
			otlptracegrpc.WithCompressor(Compressor),
		}
		if conf.ExporterInsecure {
			opts = append(opts, otlptracegrpc.WithInsecure())
		} else if conf.TLSConfig != nil {
			opts = append(opts, otlptracegrpc.WithTLSCredentials(credentials.NewTLS(conf.TLSConfig)))
		} else {
			return nil, fmt.Errorf("No TLS config provided for secure OTEL %s exporter", conf.ExporterType)
		}
		grpcExporter, err := otlptracegrpc.New(ctx, opts...)
		if err != nil {
			return nil, err
		}
		exporter = grpcExporter
	case ExporterTypeOTLPHTTP:
		if conf.ExporterEndpoint == "" {
			return nil, fmt.Errorf("Exporter endpoint is required for OTEL %s exporter", conf.ExporterType)
		}
		opts := []otlptracehttp.Option{
			otlptracehttp.WithEndpoint(conf.ExporterEndpoint),
			otlptracehttp.WithTimeout(conf.TracerTimeout),
		}
		if conf.ExporterInsecure {
			opts = append(opts, otlptracehttp.WithInsecure())
		} else if conf.TLSConfig != nil {
			opts = append(opts, otlptracehttp.WithTLSClientConfig(conf.TLSConfig))
		} else {
			return nil, fmt.Errorf("No TLS config provided for secure OTEL %s exporter", conf.ExporterType)
		}
		httpExporter, err := otlptracehttp.New(ctx, opts...)
		if err != nil {
			return nil, err
		}
		exporter = httpExporter
	case ExporterTypeStdout:
		stdoutExporter, err := stdouttrace.New(stdouttrace.WithPrettyPrint())
		if err != nil {
			return nil, err
		}
		exporter = stdoutExporter
	default:
		return nil, fmt.Errorf("Invalid OTEL exporter type: %s", conf.ExporterType)
	}

	return trace.NewTracerProvider(
		trace.WithBatcher(exporter, trace.WithBatchTimeout(conf.TracerBatchInterval)),
		trace.WithSampler(newSampler(conf.GetSamplingRatio())),
		trace.WithResource(res),
	), nil
}

func createResource(conf *config.OTELConfig, serviceVersion string) *resource.Resource {
	attrs := []attribute.KeyValue{
		semconv.ServiceName(ServiceName),
	}
	if serviceVersion != "" {
		attrs = append(attrs, semconv.ServiceVersion(serviceVersion))
	}
	for key, value := range conf.AdditionalAttributes {
		attrs = append(attrs, attribute.String(key, value))
	}
	return resource.NewWithAttributes(semconv.SchemaURL, attrs...)
}

func newLoggerProvider() (*log.LoggerProvider, error) {
	// TODO: add an OTLP log exporter once a collector endpoint for logs is configured
	logExporter, err := stdoutlog.New(stdoutlog.WithPrettyPrint())
	if err != nil {
		return nil, err
	}
	return log.NewLoggerProvider(
		log.WithProcessor(log.NewBatchProcessor(logExporter)),
	), nil
}

// newSampler creates a sampler based on the sampling ratio
func newSampler(ratio float64) trace.Sampler {
	if ratio >= 1.0 {
		return trace.AlwaysSample()
	}
	if ratio <= 0.0 {
		return trace.NeverSample()
	}
	return trace.TraceIDRatioBased(ratio)
}

// NewRoundTripper wraps base so outgoing requests carry the trace context.
func NewRoundTripper(base http.RoundTripper) http.RoundTripper {
	if base == nil {
		base = http.DefaultTransport
	}
	return otelhttp.NewTransport(base)
}
