package diarization

import (
	"context"
	stderrors "errors"
	"math"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/kbukum/diarkit/audio"
	"github.com/kbukum/diarkit/errors"
	"github.com/kbukum/diarkit/logger"
)

type fakeClock struct {
	mu    sync.Mutex
	now   time.Time
	calls int
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls++
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type closingCapability struct {
	CapabilityFunc
	closed int
}

func (c *closingCapability) Close(_ context.Context) error {
	c.closed++
	return nil
}

func testConfig() Config {
	return Config{Token: "hf_test", Device: "cpu"}
}

func newTestRunner(t *testing.T, cfg Config, clock Clock) *Runner {
	t.Helper()
	r, err := NewRunner(cfg, WithClock(clock), WithLogger(logger.NewNop()))
	if err != nil {
		t.Fatalf("NewRunner: %v", err)
	}
	return r
}

func silence(seconds float64) *audio.Asset {
	n := int(seconds * audio.DefaultSampleRate)
	return &audio.Asset{Samples: make([]float32, n), SampleRate: audio.DefaultSampleRate}
}

// twoSpeakerLoader advances clock by load while constructing and returns a
// capability that reports A then B, advancing clock by inference.
func twoSpeakerLoader(clock *fakeClock, load, inference time.Duration, loads *int) LoaderFunc {
	return LoaderFunc{ID: "stub", Fn: func(_ context.Context, _ Spec) (Capability, error) {
		*loads++
		clock.Advance(load)
		return CapabilityFunc{ID: "stub", Fn: func(_ context.Context, w Waveform) ([]Segment, error) {
			clock.Advance(inference)
			half := float64(len(w.Samples)) / float64(w.SampleRate) / 2
			return []Segment{
				{Start: 0, End: half, Speaker: "A"},
				{Start: half, End: 2 * half, Speaker: "B"},
			}, nil
		}}, nil
	}}
}

func TestNewRunnerMissingToken(t *testing.T) {
	for _, token := range []string{"", "   "} {
		cfg := testConfig()
		cfg.Token = token
		clock := newFakeClock()
		_, err := NewRunner(cfg, WithClock(clock))
		if !errors.HasCode(err, errors.ErrCodeConfiguration) {
			t.Fatalf("token %q: expected CONFIGURATION_ERROR, got %v", token, err)
		}
		if clock.calls != 0 {
			t.Errorf("expected no timing before the token check, got %d clock calls", clock.calls)
		}
	}
}

func TestNewRunnerInvalidConfig(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"unknown device", func(c *Config) { c.Device = "tpu" }},
		{"negative min speakers", func(c *Config) { c.MinSpeakers = -1 }},
		{"min above max", func(c *Config) { c.MinSpeakers = 3; c.MaxSpeakers = 2 }},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := testConfig()
			tc.mutate(&cfg)
			_, err := NewRunner(cfg)
			if !errors.HasCode(err, errors.ErrCodeConfiguration) {
				t.Errorf("expected CONFIGURATION_ERROR, got %v", err)
			}
		})
	}
}

func TestNewRunnerDefaults(t *testing.T) {
	r := newTestRunner(t, Config{Token: "hf_test"}, newFakeClock())
	cfg := r.Config()
	if cfg.Backend != DefaultBackend || cfg.Model != DefaultModel || cfg.Device != DefaultDevice {
		t.Errorf("unexpected defaults: %+v", cfg)
	}
	if cfg.SampleRate != audio.DefaultSampleRate {
		t.Errorf("expected sample rate %d, got %d", audio.DefaultSampleRate, cfg.SampleRate)
	}
}

func TestRunWindowedTwoSpeakers(t *testing.T) {
	clock := newFakeClock()
	r := newTestRunner(t, testConfig(), clock)

	asset, notice, err := audio.Truncate(silence(90), audio.Window{Start: 0, End: 60})
	if err != nil {
		t.Fatalf("Truncate: %v", err)
	}
	if notice.Clamped {
		t.Error("expected no clamp for an in-range window")
	}

	loads := 0
	report, err := r.Run(context.Background(), asset, twoSpeakerLoader(clock, 2*time.Second, 6*time.Second, &loads))
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if loads != 1 {
		t.Errorf("expected one load, got %d", loads)
	}
	if report.RunID == "" {
		t.Error("expected a run id")
	}
	if len(report.Segments) != 2 {
		t.Fatalf("expected 2 segments, got %d", len(report.Segments))
	}
	if s := report.Segments[0]; s.Start != 0 || s.End != 30 || s.Speaker != "A" {
		t.Errorf("unexpected first segment %+v", s)
	}
	if s := report.Segments[1]; s.Start != 30 || s.End != 60 || s.Speaker != "B" {
		t.Errorf("unexpected second segment %+v", s)
	}
	if len(report.Speakers) != 2 || report.Speakers[0] != "A" || report.Speakers[1] != "B" {
		t.Errorf("expected speakers [A B], got %v", report.Speakers)
	}
	if report.AudioSeconds != 60 {
		t.Errorf("expected 60s of audio, got %v", report.AudioSeconds)
	}
	if report.InferenceSeconds != 6 {
		t.Errorf("expected 6s inference, got %v", report.InferenceSeconds)
	}
	if math.Abs(report.RealTimeFactor-6.0/60.0) > 1e-12 {
		t.Errorf("expected RTF 0.1, got %v", report.RealTimeFactor)
	}
	if report.LoadSeconds != 2 {
		t.Errorf("expected 2s load time recorded apart from inference, got %v", report.LoadSeconds)
	}
	if len(report.Speakers) > len(report.Segments) {
		t.Error("speakers must not outnumber segments")
	}
}

func TestRunPassesSpecAndSpeakerBounds(t *testing.T) {
	cfg := testConfig()
	cfg.TrustSource = true
	cfg.MinSpeakers = 2
	cfg.MaxSpeakers = 4
	r := newTestRunner(t, cfg, newFakeClock())

	var gotSpec Spec
	var gotWave Waveform
	loader := LoaderFunc{ID: "stub", Fn: func(_ context.Context, spec Spec) (Capability, error) {
		gotSpec = spec
		return CapabilityFunc{ID: "stub", Fn: func(_ context.Context, w Waveform) ([]Segment, error) {
			gotWave = w
			return nil, nil
		}}, nil
	}}

	report, err := r.Run(context.Background(), silence(1), loader)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if gotSpec.Token != "hf_test" || !gotSpec.TrustSource || gotSpec.Model != DefaultModel {
		t.Errorf("unexpected spec %+v", gotSpec)
	}
	if gotWave.MinSpeakers != 2 || gotWave.MaxSpeakers != 4 || gotWave.SampleRate != audio.DefaultSampleRate {
		t.Errorf("unexpected waveform bounds %+v", gotWave)
	}
	if len(report.Segments) != 0 || len(report.Speakers) != 0 {
		t.Errorf("expected an empty report, got %+v", report)
	}
}

func TestRunLoaderFailure(t *testing.T) {
	r := newTestRunner(t, testConfig(), newFakeClock())

	calls := 0
	loader := LoaderFunc{ID: "stub", Fn: func(_ context.Context, _ Spec) (Capability, error) {
		calls++
		return nil, stderrors.New("401 unauthorized")
	}}

	report, err := r.Run(context.Background(), silence(1), loader)
	if report != nil {
		t.Error("expected no report")
	}
	if !errors.HasCode(err, errors.ErrCodeCapabilityUnavailable) {
		t.Fatalf("expected CAPABILITY_UNAVAILABLE, got %v", err)
	}
	if calls != 1 {
		t.Errorf("expected exactly one load attempt, got %d", calls)
	}
}

func TestRunLoaderReturnsNothing(t *testing.T) {
	r := newTestRunner(t, testConfig(), newFakeClock())
	loader := LoaderFunc{ID: "stub", Fn: func(_ context.Context, _ Spec) (Capability, error) {
		return nil, nil
	}}
	_, err := r.Run(context.Background(), silence(1), loader)
	if !errors.HasCode(err, errors.ErrCodeCapabilityUnavailable) {
		t.Errorf("expected CAPABILITY_UNAVAILABLE, got %v", err)
	}
}

func TestRunRejectsBadInput(t *testing.T) {
	r := newTestRunner(t, testConfig(), newFakeClock())
	loads := 0
	loader := twoSpeakerLoader(newFakeClock(), 0, 0, &loads)

	if _, err := r.Run(context.Background(), &audio.Asset{SampleRate: 16000}, loader); !errors.HasCode(err, errors.ErrCodeInvalidInput) {
		t.Errorf("expected INVALID_INPUT for empty asset, got %v", err)
	}
	if _, err := r.Run(context.Background(), silence(1), nil); !errors.HasCode(err, errors.ErrCodeCapabilityUnavailable) {
		t.Errorf("expected CAPABILITY_UNAVAILABLE for nil loader, got %v", err)
	}
	if loads != 0 {
		t.Errorf("expected no load for rejected input, got %d", loads)
	}
}

func TestRunInferenceFailures(t *testing.T) {
	tests := []struct {
		name     string
		segments []Segment
		err      error
		want     errors.ErrorCode
	}{
		{"plain error", nil, stderrors.New("cuda out of memory"), errors.ErrCodeExternalService},
		{"app error kept", nil, errors.Timeout("diarize"), errors.ErrCodeTimeout},
		{"reversed segment", []Segment{{Start: 5, End: 2, Speaker: "A"}}, nil, errors.ErrCodeExternalService},
		{"empty segment", []Segment{{Start: 2, End: 2, Speaker: "A"}}, nil, errors.ErrCodeExternalService},
		{"negative start", []Segment{{Start: -1, End: 2, Speaker: "A"}}, nil, errors.ErrCodeExternalService},
		{"nan start", []Segment{{Start: math.NaN(), End: 2, Speaker: "A"}}, nil, errors.ErrCodeExternalService},
		{"nan end", []Segment{{Start: 0, End: math.NaN(), Speaker: "A"}}, nil, errors.ErrCodeExternalService},
		{"infinite end", []Segment{{Start: 0, End: math.Inf(1), Speaker: "A"}}, nil, errors.ErrCodeExternalService},
		{"negative infinite start", []Segment{{Start: math.Inf(-1), End: 2, Speaker: "A"}}, nil, errors.ErrCodeExternalService},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			r := newTestRunner(t, testConfig(), newFakeClock())
			capability := &closingCapability{CapabilityFunc: CapabilityFunc{ID: "stub", Fn: func(_ context.Context, _ Waveform) ([]Segment, error) {
				return tc.segments, tc.err
			}}}
			loader := LoaderFunc{ID: "stub", Fn: func(_ context.Context, _ Spec) (Capability, error) {
				return capability, nil
			}}

			report, err := r.Run(context.Background(), silence(1), loader)
			if report != nil {
				t.Error("expected no report")
			}
			if !errors.HasCode(err, tc.want) {
				t.Errorf("expected %s, got %v", tc.want, err)
			}
			if capability.closed != 1 {
				t.Errorf("expected pipeline to be released once, got %d", capability.closed)
			}
		})
	}
}

func TestRunClosesCapability(t *testing.T) {
	r := newTestRunner(t, testConfig(), newFakeClock())
	capability := &closingCapability{CapabilityFunc: CapabilityFunc{ID: "stub", Fn: func(_ context.Context, _ Waveform) ([]Segment, error) {
		return []Segment{{Start: 0, End: 1, Speaker: "A"}}, nil
	}}}
	loader := LoaderFunc{ID: "stub", Fn: func(_ context.Context, _ Spec) (Capability, error) {
		return capability, nil
	}}
	if _, err := r.Run(context.Background(), silence(1), loader); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if capability.closed != 1 {
		t.Errorf("expected pipeline to be released once, got %d", capability.closed)
	}
}

func writeSilenceWAV(t *testing.T, seconds float64) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "call.wav")
	if err := audio.WriteWAV(path, silence(seconds)); err != nil {
		t.Fatalf("WriteWAV: %v", err)
	}
	return path
}

func TestProcessWindow(t *testing.T) {
	path := writeSilenceWAV(t, 90)
	clock := newFakeClock()
	r := newTestRunner(t, testConfig(), clock)

	loads := 0
	report, err := r.Process(context.Background(), path, &audio.Window{Start: 0, End: 60}, twoSpeakerLoader(clock, 0, 6*time.Second, &loads))
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	if report.Source != path {
		t.Errorf("expected source %q, got %q", path, report.Source)
	}
	if report.Clamped {
		t.Error("expected no clamp")
	}
	if report.Window == nil || report.Window.End != 60 {
		t.Errorf("expected applied window [0, 60), got %v", report.Window)
	}
	if report.AudioSeconds != 60 {
		t.Errorf("expected 60s, got %v", report.AudioSeconds)
	}
	if math.Abs(report.RealTimeFactor-0.1) > 1e-12 {
		t.Errorf("expected RTF 0.1, got %v", report.RealTimeFactor)
	}
}

func TestProcessClampsWindow(t *testing.T) {
	path := writeSilenceWAV(t, 90)
	clock := newFakeClock()
	r := newTestRunner(t, testConfig(), clock)

	loads := 0
	report, err := r.Process(context.Background(), path, &audio.Window{Start: 30, End: 120}, twoSpeakerLoader(clock, 0, time.Second, &loads))
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	if !report.Clamped {
		t.Error("expected the window to be clamped")
	}
	if report.Window == nil || report.Window.Start != 30 || report.Window.End != 90 {
		t.Errorf("expected applied window [30, 90), got %v", report.Window)
	}
	if report.AudioSeconds != 60 {
		t.Errorf("expected 60s after clamping, got %v", report.AudioSeconds)
	}
}

func TestProcessErrors(t *testing.T) {
	path := writeSilenceWAV(t, 10)
	tests := []struct {
		name   string
		path   string
		window *audio.Window
		want   errors.ErrorCode
	}{
		{"missing file", filepath.Join(t.TempDir(), "nope.wav"), nil, errors.ErrCodeAssetNotFound},
		{"start past end of audio", path, &audio.Window{Start: 20, End: 30}, errors.ErrCodeInvalidInput},
		{"reversed window", path, &audio.Window{Start: 5, End: 1}, errors.ErrCodeInvalidInput},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			clock := newFakeClock()
			r := newTestRunner(t, testConfig(), clock)
			loads := 0
			report, err := r.Process(context.Background(), tc.path, tc.window, twoSpeakerLoader(clock, 0, 0, &loads))
			if report != nil {
				t.Error("expected no report")
			}
			if !errors.HasCode(err, tc.want) {
				t.Errorf("expected %s, got %v", tc.want, err)
			}
			if loads != 0 {
				t.Errorf("expected no pipeline load, got %d", loads)
			}
		})
	}
}

func TestDistinctSpeakers(t *testing.T) {
	got := DistinctSpeakers([]Segment{
		{Speaker: "SPEAKER_01"}, {Speaker: "SPEAKER_00"}, {Speaker: "SPEAKER_01"},
	})
	if len(got) != 2 || got[0] != "SPEAKER_00" || got[1] != "SPEAKER_01" {
		t.Errorf("expected sorted distinct labels, got %v", got)
	}
	if got := DistinctSpeakers(nil); len(got) != 0 {
		t.Errorf("expected none, got %v", got)
	}
}
