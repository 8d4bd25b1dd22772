package bootstrap

import (
	"context"
	stderrors "errors"
	"testing"
	"time"

	"github.com/kbukum/diarkit/config"
	"github.com/kbukum/diarkit/errors"
	"github.com/kbukum/diarkit/logger"
)

type testConfig struct {
	config.ServiceConfig `yaml:",inline" mapstructure:",squash"`
	Device               string
}

func (c *testConfig) ApplyDefaults() {
	c.ServiceConfig.ApplyDefaults()
	if c.Device == "" {
		c.Device = "cpu"
	}
}

func (c *testConfig) Validate() error {
	if err := c.ServiceConfig.Validate(); err != nil {
		return err
	}
	if c.Device == "tpu" {
		return errors.Configuration("device", "unsupported device")
	}
	return nil
}

func newTestApp(t *testing.T, cfg *testConfig) *App[*testConfig] {
	t.Helper()
	app, err := NewApp(cfg, WithLogger(logger.NewNop()), WithGracefulTimeout(time.Second))
	if err != nil {
		t.Fatalf("NewApp: %v", err)
	}
	return app
}

func TestNewAppAppliesDefaults(t *testing.T) {
	app := newTestApp(t, &testConfig{ServiceConfig: config.ServiceConfig{Name: "diarize", Version: "1.2.3"}})
	if app.Name != "diarize" || app.Version != "1.2.3" {
		t.Errorf("unexpected app identity %q %q", app.Name, app.Version)
	}
	if app.Cfg.Device != "cpu" || app.Cfg.Environment != "development" {
		t.Errorf("expected defaults applied, got %+v", app.Cfg)
	}
}

func TestNewAppValidation(t *testing.T) {
	tests := []struct {
		name string
		cfg  *testConfig
	}{
		{"missing name", &testConfig{}},
		{"bad device", &testConfig{ServiceConfig: config.ServiceConfig{Name: "diarize"}, Device: "tpu"}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewApp(tc.cfg, WithLogger(logger.NewNop()))
			if !errors.HasCode(err, errors.ErrCodeConfiguration) {
				t.Errorf("expected CONFIGURATION_ERROR, got %v", err)
			}
		})
	}
}

func TestRunTaskOrder(t *testing.T) {
	app := newTestApp(t, &testConfig{ServiceConfig: config.ServiceConfig{Name: "diarize"}})

	var order []string
	app.OnStart(func(context.Context) error { order = append(order, "start"); return nil })
	app.OnStop(func(context.Context) error { order = append(order, "stop"); return nil })

	err := app.RunTask(context.Background(), func(context.Context) error {
		order = append(order, "task")
		return nil
	})
	if err != nil {
		t.Fatalf("RunTask: %v", err)
	}
	if len(order) != 3 || order[0] != "start" || order[1] != "task" || order[2] != "stop" {
		t.Errorf("unexpected order %v", order)
	}
}

func TestRunTaskErrorStillStops(t *testing.T) {
	app := newTestApp(t, &testConfig{ServiceConfig: config.ServiceConfig{Name: "diarize"}})

	stopped := false
	app.OnStop(func(context.Context) error { stopped = true; return stderrors.New("flush failed") })

	taskErr := errors.AssetNotFound("x.wav")
	err := app.RunTask(context.Background(), func(context.Context) error { return taskErr })
	if err != taskErr {
		t.Errorf("expected task error to win, got %v", err)
	}
	if !stopped {
		t.Error("expected stop hooks to run")
	}
}

func TestRunTaskStartHookFailure(t *testing.T) {
	app := newTestApp(t, &testConfig{ServiceConfig: config.ServiceConfig{Name: "diarize"}})

	ran := false
	app.OnStart(func(context.Context) error { return stderrors.New("no exporter") })
	err := app.RunTask(context.Background(), func(context.Context) error { ran = true; return nil })
	if err == nil {
		t.Fatal("expected start hook error")
	}
	if ran {
		t.Error("expected task to be skipped")
	}
}

func TestRunTaskContextCanceled(t *testing.T) {
	app := newTestApp(t, &testConfig{ServiceConfig: config.ServiceConfig{Name: "diarize"}})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := app.RunTask(ctx, func(ctx context.Context) error { return ctx.Err() })
	if !stderrors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestShutdownRunsStopHooks(t *testing.T) {
	app := newTestApp(t, &testConfig{ServiceConfig: config.ServiceConfig{Name: "diarize"}})
	calls := 0
	app.OnStop(func(context.Context) error { calls++; return nil })
	if err := app.Shutdown(); err != nil {
		t.Fatalf("Shutdown: %v", err)
	}
	if calls != 1 {
		t.Errorf("expected one stop hook call, got %d", calls)
	}
}
