package diarization

import (
	"context"

	"github.com/kbukum/diarkit/provider"
)

// Capability runs diarization over a waveform and returns speaker turns in
// non-decreasing start order. Implementations holding a model session also
// implement provider.Closeable; the runner closes them when the run ends.
type Capability = provider.RequestResponse[Waveform, []Segment]

// Loader constructs capabilities. Construction is expensive (model
// download and initialization) and is attempted once per run.
type Loader interface {
	provider.Provider
	Load(ctx context.Context, spec Spec) (Capability, error)
}

// NewRegistry creates a registry of loader backends.
func NewRegistry() *provider.Registry[Loader] {
	return provider.NewRegistry[Loader]()
}

// LoaderFunc adapts a function to Loader. It is always available.
type LoaderFunc struct {
	ID string
	Fn func(ctx context.Context, spec Spec) (Capability, error)
}

func (l LoaderFunc) Name() string                       { return l.ID }
func (l LoaderFunc) IsAvailable(_ context.Context) bool { return true }

func (l LoaderFunc) Load(ctx context.Context, spec Spec) (Capability, error) {
	return l.Fn(ctx, spec)
}

// CapabilityFunc adapts a function to Capability.
type CapabilityFunc struct {
	ID string
	Fn func(ctx context.Context, w Waveform) ([]Segment, error)
}

func (c CapabilityFunc) Name() string                       { return c.ID }
func (c CapabilityFunc) IsAvailable(_ context.Context) bool { return true }

func (c CapabilityFunc) Execute(ctx context.Context, w Waveform) ([]Segment, error) {
	return c.Fn(ctx, w)
}
