// Package telemetry wires the optional OpenTelemetry trace export. When no
// collector endpoint is configured the no-op global tracer stays in place and
// the scan spans cost nothing.
package telemetry

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"github.com/scandeck/scandeck/pkg/defaults"
	"github.com/scandeck/scandeck/pkg/duration"
)

// Options configures trace export.
type Options struct {
	// Endpoint is the OTLP gRPC endpoint, e.g. "localhost:4317". Empty
	// disables export entirely.
	Endpoint string

	// Insecure skips TLS on the collector connection.
	Insecure bool

	// ServiceName defaults to the tool name.
	ServiceName string
}

// Shutdown flushes and stops the tracer provider. It is a no-op when export
// was never enabled.
type Shutdown func(context.Context) error

// Setup installs a global tracer provider exporting to the configured OTLP
// endpoint. With an empty endpoint it returns a no-op shutdown.
func Setup(ctx context.Context, opts Options) (Shutdown, error) {
	if opts.Endpoint == "" {
		return func(context.Context) error { return nil }, nil
	}
	if opts.ServiceName == "" {
		opts.ServiceName = defaults.ToolName
	}

	exporterOpts := []otlptracegrpc.Option{
		otlptracegrpc.WithEndpoint(opts.Endpoint),
	}
	if opts.Insecure {
		exporterOpts = append(exporterOpts,
			otlptracegrpc.WithInsecure(),
			otlptracegrpc.WithDialOption(grpc.WithTransportCredentials(insecure.NewCredentials())),
		)
	}

	connectCtx, cancel := context.WithTimeout(ctx, duration.OTLPConnect)
	defer cancel()
	exporter, err := otlptracegrpc.New(connectCtx, exporterOpts...)
	if err != nil {
		return nil, fmt.Errorf("telemetry: create OTLP exporter: %w", err)
	}

	res := resource.NewWithAttributes(
		semconv.SchemaURL,
		semconv.ServiceName(opts.ServiceName),
		semconv.ServiceVersion(defaults.Version),
		attribute.String("service.component", "dashboard"),
	)
	provider := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sdktrace.AlwaysSample()),
	)
	otel.SetTracerProvider(provider)

	return func(ctx context.Context) error {
		ctx, cancel := context.WithTimeout(ctx, duration.OTLPShutdown)
		defer cancel()
		return provider.Shutdown(ctx)
	}, nil
}
