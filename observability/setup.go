package observability

import (
	"context"
	stderrors "errors"

	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

// Telemetry bundles the providers installed by Setup and the run metrics.
type Telemetry struct {
	Metrics *Metrics

	tracerProvider *sdktrace.TracerProvider
	meterProvider  *sdkmetric.MeterProvider
}

// Setup installs OTLP exporters when cfg.Enabled is set and always returns
// usable Metrics, bound to the no-op global meter when export is off.
func Setup(ctx context.Context, serviceName, serviceVersion, environment string, cfg Config) (*Telemetry, error) {
	t := &Telemetry{}
	if cfg.Enabled {
		cfg.ApplyDefaults()
		tp, err := InitTracer(ctx, TracerConfig{
			ServiceName:    serviceName,
			ServiceVersion: serviceVersion,
			Environment:    environment,
			Endpoint:       cfg.Endpoint,
			Insecure:       cfg.Insecure,
			SampleRate:     cfg.SampleRate,
		})
		if err != nil {
			return nil, err
		}
		t.tracerProvider = tp

		mp, err := InitMeter(ctx, MeterConfig{
			ServiceName:    serviceName,
			ServiceVersion: serviceVersion,
			Environment:    environment,
			Endpoint:       cfg.Endpoint,
			Insecure:       cfg.Insecure,
			Interval:       cfg.Interval,
		})
		if err != nil {
			_ = tp.Shutdown(ctx)
			return nil, err
		}
		t.meterProvider = mp
	}

	metrics, err := NewMetrics(Meter(serviceName))
	if err != nil {
		_ = t.Shutdown(ctx)
		return nil, err
	}
	t.Metrics = metrics
	return t, nil
}

// Shutdown flushes and stops any installed providers.
func (t *Telemetry) Shutdown(ctx context.Context) error {
	var errs []error
	if t.tracerProvider != nil {
		errs = append(errs, t.tracerProvider.Shutdown(ctx))
	}
	if t.meterProvider != nil {
		errs = append(errs, t.meterProvider.Shutdown(ctx))
	}
	return stderrors.Join(errs...)
}
