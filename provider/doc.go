// Package provider implements a small generic provider framework for
// swappable backends.
//
// Interaction patterns:
//   - RequestResponse[I, O]: one input, one output (diarization capability, subprocess)
//   - Sink[I]: one input, ack only (webhook)
//
// Providers holding resources implement Closeable; CloseIfCloseable releases
// them without the caller knowing the concrete type.
//
// # Registry
//
// Backends are registered by name and created from a config map:
//
//	reg := provider.NewRegistry[MyProvider]()
//	reg.RegisterFactory("default", myFactory)
//	p, err := reg.Create("default", map[string]any{"base_url": url})
//
// # Middleware
//
// Middleware[I, O] wraps a RequestResponse provider. Use Chain to compose:
//
//	wrapped := provider.Chain(
//	    provider.WithLogging[In, Out](log),
//	    provider.WithMetrics[In, Out]("diarize", metrics),
//	    provider.WithTracing[In, Out]("diarize", "capability.diarize"),
//	)(rawProvider)
package provider
