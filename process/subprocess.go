package process

import (
	"context"

	"github.com/kbukum/diarkit/errors"
)

// SubprocessProvider adapts a command-line tool to provider.RequestResponse.
// buildCmd turns the input into a Command and parseOut turns the Result into
// the output type.
type SubprocessProvider[I, O any] struct {
	name      string
	buildCmd  func(I) Command
	parseOut  func(*Result) (O, error)
	available func(context.Context) bool
}

// NewSubprocessProvider creates a RequestResponse provider backed by subprocess execution.
func NewSubprocessProvider[I, O any](
	name string,
	buildCmd func(I) Command,
	parseOut func(*Result) (O, error),
) *SubprocessProvider[I, O] {
	return &SubprocessProvider[I, O]{
		name:     name,
		buildCmd: buildCmd,
		parseOut: parseOut,
	}
}

// WithAvailabilityCheck sets a custom availability check for the provider.
func (p *SubprocessProvider[I, O]) WithAvailabilityCheck(fn func(context.Context) bool) *SubprocessProvider[I, O] {
	p.available = fn
	return p
}

func (p *SubprocessProvider[I, O]) Name() string { return p.name }

func (p *SubprocessProvider[I, O]) IsAvailable(ctx context.Context) bool {
	if p.available != nil {
		return p.available(ctx)
	}
	return true
}

// Execute runs the command. A failed or killed process is reported as an
// EXTERNAL_SERVICE_ERROR naming the provider.
func (p *SubprocessProvider[I, O]) Execute(ctx context.Context, input I) (O, error) {
	result, err := Run(ctx, p.buildCmd(input))
	if err != nil {
		var zero O
		return zero, errors.ExternalServiceError(p.name, err)
	}
	return p.parseOut(result)
}
