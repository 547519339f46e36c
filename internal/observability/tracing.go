package observability

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.24.0"
	"google.golang.org/grpc/credentials"

	"github.com/kgraph-ai/kgraph/internal/config"
	"github.com/kgraph-ai/kgraph/internal/types"
	"github.com/kgraph-ai/kgraph/pkg/version"
)

const (
	defaultBatchTimeout = 5 * time.Second
	defaultServiceName  = "kgraph"
)

// TracingOption configures tracing initialization.
type TracingOption func(*tracingOptions)

type tracingOptions struct {
	sampler      sdktrace.Sampler
	resource     *resource.Resource
	batchTimeout time.Duration
}

// WithSampler sets a custom sampler for the tracer provider.
func WithSampler(sampler sdktrace.Sampler) TracingOption {
	return func(o *tracingOptions) {
		o.sampler = sampler
	}
}

// WithResource sets a custom resource for the tracer provider.
func WithResource(res *resource.Resource) TracingOption {
	return func(o *tracingOptions) {
		o.resource = res
	}
}

// WithBatchTimeout sets the maximum time between batch exports.
func WithBatchTimeout(timeout time.Duration) TracingOption {
	return func(o *tracingOptions) {
		o.batchTimeout = timeout
	}
}

// InitTracing initialises OTLP trace export over gRPC and installs the
// provider globally. When cfg.Enabled is false it returns a provider that
// records nothing, so callers never branch on whether tracing is on.
func InitTracing(ctx context.Context, cfg config.TracingConfig, opts ...TracingOption) (*sdktrace.TracerProvider, error) {
	if !cfg.Enabled {
		return sdktrace.NewTracerProvider(), nil
	}

	options := &tracingOptions{
		batchTimeout: defaultBatchTimeout,
	}
	for _, opt := range opts {
		opt(options)
	}

	if options.sampler == nil {
		options.sampler = sdktrace.TraceIDRatioBased(cfg.SampleRate)
	}

	if options.resource == nil {
		serviceName := cfg.ServiceName
		if serviceName == "" {
			serviceName = defaultServiceName
		}
		res, err := resource.New(ctx,
			resource.WithAttributes(
				semconv.ServiceName(serviceName),
				semconv.ServiceVersion(version.Version),
			),
			resource.WithFromEnv(),
			resource.WithTelemetrySDK(),
		)
		if err != nil {
			return nil, types.WrapError(types.TRACING_INIT_FAILED,
				"failed to create tracing resource", err)
		}
		options.resource = res
	}

	otlpOpts := []otlptracegrpc.Option{
		otlptracegrpc.WithEndpoint(cfg.Endpoint),
	}
	if cfg.Insecure {
		otlpOpts = append(otlpOpts, otlptracegrpc.WithInsecure())
	} else {
		otlpOpts = append(otlpOpts, otlptracegrpc.WithTLSCredentials(credentials.NewTLS(nil)))
	}

	exporter, err := otlptracegrpc.New(ctx, otlpOpts...)
	if err != nil {
		kgErr := types.WrapError(types.TRACING_INIT_FAILED,
			"failed to connect trace exporter to "+cfg.Endpoint, err)
		kgErr.Retryable = true
		return nil, kgErr
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter,
			sdktrace.WithBatchTimeout(options.batchTimeout),
		),
		sdktrace.WithSampler(options.sampler),
		sdktrace.WithResource(options.resource),
	)

	otel.SetTracerProvider(tp)
	return tp, nil
}

// ShutdownTracing flushes pending spans and shuts the provider down. Call it
// before process exit; the context timeout bounds how long to wait for
// in-flight exports.
func ShutdownTracing(ctx context.Context, provider *sdktrace.TracerProvider) error {
	if provider == nil {
		return nil
	}
	return provider.Shutdown(ctx)
}
