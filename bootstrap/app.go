package bootstrap

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/kbukum/diarkit/errors"
	"github.com/kbukum/diarkit/logger"
)

// App runs a finite task with uniform startup and shutdown.
// The type parameter C is the config type.
//
//	app, err := bootstrap.NewApp(cfg)
//	app.OnStop(telemetry.Shutdown)
//	err = app.RunTask(ctx, func(ctx context.Context) error {
//	    return process(ctx, app.Cfg)
//	})
type App[C Config] struct {
	Name    string
	Version string
	Cfg     C
	Logger  *logger.Logger

	gracefulTimeout time.Duration
	onStart         []Hook
	onStop          []Hook
}

// NewApp applies defaults to cfg, validates it and initializes the logger.
// Validation failures are CONFIGURATION_ERRORs.
func NewApp[C Config](cfg C, opts ...Option) (*App[C], error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		if errors.IsAppError(err) {
			return nil, err
		}
		return nil, errors.Configuration("", err.Error()).WithCause(err)
	}

	base := cfg.GetServiceConfig()

	app := &App[C]{
		Name:            base.Name,
		Version:         base.Version,
		Cfg:             cfg,
		gracefulTimeout: 15 * time.Second,
	}

	o := resolveOptions(opts)
	if o.gracefulTimeout != nil {
		app.gracefulTimeout = *o.gracefulTimeout
	}
	if o.logger != nil {
		app.Logger = o.logger
	} else {
		logger.Init(base.Logging)
		app.Logger = logger.GetGlobalLogger()
	}

	return app, nil
}

// RunTask runs OnStart hooks, then task, then OnStop hooks. SIGINT and
// SIGTERM cancel the task's context. The task's error wins over a
// shutdown error.
func (a *App[C]) RunTask(ctx context.Context, task func(ctx context.Context) error) error {
	a.Logger.Debug("starting", logger.Fields("name", a.Name, "version", a.Version))

	if err := runHooks(ctx, a.onStart); err != nil {
		return a.finish(err)
	}

	taskCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	go func() {
		select {
		case sig := <-sigCh:
			a.Logger.Warn("received signal, canceling", logger.Fields("signal", sig.String()))
			cancel()
		case <-taskCtx.Done():
		}
	}()

	return a.finish(task(taskCtx))
}

// Shutdown runs OnStop hooks. Use it when not going through RunTask.
func (a *App[C]) Shutdown() error {
	return a.stop()
}

func (a *App[C]) finish(taskErr error) error {
	if stopErr := a.stop(); stopErr != nil {
		if taskErr != nil {
			return taskErr
		}
		return stopErr
	}
	return taskErr
}

func (a *App[C]) stop() error {
	ctx, cancel := context.WithTimeout(context.Background(), a.gracefulTimeout)
	defer cancel()

	if err := runHooks(ctx, a.onStop); err != nil {
		a.Logger.Error("shutdown hook failed", logger.ErrorFields("shutdown", err))
		return err
	}
	return nil
}
