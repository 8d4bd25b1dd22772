package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/kbukum/diarkit/bootstrap"
	"github.com/kbukum/diarkit/config"
	"github.com/kbukum/diarkit/diarization"
	"github.com/kbukum/diarkit/diarization/pyannote"
	"github.com/kbukum/diarkit/errors"
	"github.com/kbukum/diarkit/observability"
	"github.com/kbukum/diarkit/provider"
	"github.com/kbukum/diarkit/version"
)

type rootOptions struct {
	configFile string
	envFile    string
	debug      bool
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	cmd := &cobra.Command{
		Use:           serviceName,
		Short:         "Speaker diarization for recorded audio",
		Version:       version.Get().Short(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.PersistentFlags().StringVar(&opts.configFile, "config", "", "config file (default: search ./cmd/diarize, ./config, .)")
	cmd.PersistentFlags().StringVar(&opts.envFile, "env-file", "", ".env file (default: search next to the config)")
	cmd.PersistentFlags().BoolVar(&opts.debug, "debug", false, "debug logging")

	cmd.AddCommand(
		newRunCmd(opts),
		newClipsCmd(opts),
		newVersionCmd(),
	)
	return cmd
}

// loadApp reads configuration, lets override adjust it before defaults
// and validation, and initializes logging and telemetry.
func loadApp(ctx context.Context, opts *rootOptions, override func(*AppConfig)) (*bootstrap.App[*AppConfig], *observability.Telemetry, error) {
	var cfg AppConfig
	err := config.LoadConfig(serviceName, &cfg,
		config.WithConfigFile(opts.configFile),
		config.WithEnvFile(opts.envFile),
		config.WithEnvAlias("diarization.token", diarization.TokenEnv),
	)
	if err != nil {
		return nil, nil, errors.Configuration("", err.Error()).WithCause(err)
	}
	if opts.debug {
		cfg.Debug = true
	}
	if cfg.Version == "" {
		cfg.Version = version.Get().Short()
	}
	if override != nil {
		override(&cfg)
	}

	app, err := bootstrap.NewApp(&cfg)
	if err != nil {
		return nil, nil, err
	}

	tel, err := observability.Setup(ctx, app.Name, app.Version, cfg.Environment, cfg.Observability)
	if err != nil {
		return nil, nil, errors.Configuration("observability", err.Error()).WithCause(err)
	}
	app.OnStop(tel.Shutdown)
	return app, tel, nil
}

// newLoaderRegistry registers every built-in diarization backend.
func newLoaderRegistry() *provider.Registry[diarization.Loader] {
	reg := diarization.NewRegistry()
	reg.RegisterFactory(pyannote.ProviderName, pyannote.Factory())
	return reg
}

// createLoader builds the configured backend. Unknown names are
// configuration errors.
func createLoader(cfg diarization.Config) (diarization.Loader, error) {
	reg := newLoaderRegistry()
	if !reg.Has(cfg.Backend) {
		return nil, errors.Configuration("diarization.backend", "unknown backend "+cfg.Backend)
	}
	loader, err := reg.Create(cfg.Backend, cfg.Options)
	if err != nil {
		if errors.IsAppError(err) {
			return nil, err
		}
		return nil, errors.Configuration("diarization.options", err.Error()).WithCause(err)
	}
	return loader, nil
}
