package provider

import "context"

// Closeable is optionally implemented by providers that hold resources
// requiring explicit cleanup (a loaded model session, a daemon process).
type Closeable interface {
	Close(ctx context.Context) error
}

// CloseIfCloseable closes p when it implements Closeable and is a no-op
// otherwise.
func CloseIfCloseable(ctx context.Context, p any) error {
	if c, ok := p.(Closeable); ok {
		return c.Close(ctx)
	}
	return nil
}
