package provider

import "context"

// Provider is implemented by every backend: diarization loaders and
// capabilities, subprocess adapters, notification sinks.
type Provider interface {
	Name() string
	// IsAvailable reports whether the backend can serve a call right now,
	// e.g. the binary is on PATH or the sidecar answers its health check.
	IsAvailable(ctx context.Context) bool
}

// Factory builds a provider from the options section of its config.
type Factory[T Provider] func(cfg map[string]any) (T, error)

// RequestResponse takes one input and returns one output: a sidecar call,
// a subprocess run or in-process inference.
type RequestResponse[I, O any] interface {
	Provider
	Execute(ctx context.Context, input I) (O, error)
}

// Sink accepts input and returns only an error, e.g. a webhook.
type Sink[I any] interface {
	Provider
	Send(ctx context.Context, input I) error
}
