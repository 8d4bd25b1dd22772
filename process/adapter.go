package process

import (
	"context"
	"time"

	"github.com/kbukum/diarkit/provider"
)

var _ provider.RequestResponse[Command, *Result] = (*Adapter)(nil)

// Config configures a process adapter.
type Config struct {
	// Name identifies this adapter instance.
	Name string `yaml:"name,omitempty" mapstructure:"name"`
	// Binary is checked by IsAvailable and used when a Command leaves Binary empty.
	Binary string `yaml:"binary,omitempty" mapstructure:"binary"`
	// GracePeriod is the default grace period for SIGTERM then SIGKILL.
	GracePeriod time.Duration `yaml:"grace_period,omitempty" mapstructure:"grace_period"`
	// Timeout is the default execution timeout. Zero means no timeout.
	Timeout time.Duration `yaml:"timeout,omitempty" mapstructure:"timeout"`
}

// Adapter wraps subprocess execution as a provider.RequestResponse.
type Adapter struct {
	config Config
}

// NewAdapter creates a new process adapter.
func NewAdapter(cfg Config) *Adapter {
	if cfg.Name == "" {
		cfg.Name = cfg.Binary
	}
	return &Adapter{config: cfg}
}

// Run executes a command, applying adapter-level defaults.
func (a *Adapter) Run(ctx context.Context, cmd Command) (*Result, error) {
	if cmd.Binary == "" {
		cmd.Binary = a.config.Binary
	}
	if cmd.GracePeriod == 0 && a.config.GracePeriod > 0 {
		cmd.GracePeriod = a.config.GracePeriod
	}
	if a.config.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.config.Timeout)
		defer cancel()
	}
	return Run(ctx, cmd)
}

// Name returns the adapter name.
func (a *Adapter) Name() string {
	return a.config.Name
}

// IsAvailable reports whether the configured binary is on PATH. Adapters
// without a default binary are always available.
func (a *Adapter) IsAvailable(_ context.Context) bool {
	if a.config.Binary == "" {
		return true
	}
	return Available(a.config.Binary)
}

// Execute runs a command.
func (a *Adapter) Execute(ctx context.Context, cmd Command) (*Result, error) {
	return a.Run(ctx, cmd)
}
