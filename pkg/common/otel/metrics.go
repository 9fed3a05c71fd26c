package otel

import (
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	semconv "go.opentelemetry.io/otel/semconv/v1.4.0"
)

// GetMeterProvider returns the globally registered meter provider.
// InitTelemetry installs the exporting provider as the global one.
func GetMeterProvider() metric.MeterProvider { return otel.GetMeterProvider() }

// NewMeterProvider creates a meter provider with no reader attached, so
// instruments record without exporting. Used when telemetry is disabled and
// in tests.
func NewMeterProvider(serviceName string) metric.MeterProvider {
	return sdkmetric.NewMeterProvider(
		sdkmetric.WithResource(serviceResource(serviceName, nil)),
	)
}

// serviceResource builds the resource attached to every exported record:
// the service name plus any extra attributes.
func serviceResource(serviceName string, extra map[string]string) *resource.Resource {
	attrs := make([]attribute.KeyValue, 0, len(extra)+1)
	attrs = append(attrs, semconv.ServiceNameKey.String(serviceName))
	for k, v := range extra {
		attrs = append(attrs, attribute.String(k, v))
	}
	return resource.NewWithAttributes(semconv.SchemaURL, attrs...)
}
