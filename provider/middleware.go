package provider

// Middleware transforms a RequestResponse provider by wrapping it.
// The returned provider delegates to the original while adding
// cross-cutting behavior such as logging, metrics or tracing.
type Middleware[I, O any] func(RequestResponse[I, O]) RequestResponse[I, O]

// Chain composes multiple middlewares into one. The first middleware is
// outermost: it executes first on the way in and last on the way out.
//
// Chain(a, b, c)(provider) is equivalent to a(b(c(provider))).
func Chain[I, O any](middlewares ...Middleware[I, O]) Middleware[I, O] {
	return func(inner RequestResponse[I, O]) RequestResponse[I, O] {
		for i := len(middlewares) - 1; i >= 0; i-- {
			inner = middlewares[i](inner)
		}
		return inner
	}
}

// SinkMiddleware transforms a Sink provider by wrapping it.
type SinkMiddleware[I any] func(Sink[I]) Sink[I]
