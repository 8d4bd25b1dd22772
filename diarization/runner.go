package diarization

import (
	"context"
	"fmt"
	"math"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/kbukum/diarkit/audio"
	"github.com/kbukum/diarkit/errors"
	"github.com/kbukum/diarkit/logger"
	"github.com/kbukum/diarkit/observability"
	"github.com/kbukum/diarkit/provider"
)

// Clock supplies wall-clock time for the load and inference timers.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// Runner executes diarization runs. Each run owns its asset and report;
// a Runner holds only configuration.
type Runner struct {
	cfg     Config
	service string
	clock   Clock
	log     *logger.Logger
	metrics *observability.Metrics
}

// RunnerOption configures a Runner.
type RunnerOption func(*Runner)

// WithClock replaces the system clock.
func WithClock(c Clock) RunnerOption {
	return func(r *Runner) { r.clock = c }
}

// WithLogger sets the logger used for run events.
func WithLogger(l *logger.Logger) RunnerOption {
	return func(r *Runner) { r.log = l }
}

// WithMetrics records run and inference metrics.
func WithMetrics(m *observability.Metrics) RunnerOption {
	return func(r *Runner) { r.metrics = m }
}

// WithServiceName sets the service name used on spans and metrics.
func WithServiceName(name string) RunnerOption {
	return func(r *Runner) { r.service = name }
}

// NewRunner validates cfg and returns a Runner. A missing token fails with
// CONFIGURATION_ERROR here, before any audio is read or model loaded.
func NewRunner(cfg Config, opts ...RunnerOption) (*Runner, error) {
	cfg.ApplyDefaults()
	if strings.TrimSpace(cfg.Token) == "" {
		return nil, errors.MissingCredential(TokenEnv)
	}
	if err := cfg.Validate(); err != nil {
		return nil, errors.Configuration("diarization", err.Error()).WithCause(err)
	}

	r := &Runner{
		cfg:     cfg,
		service: "diarize",
		clock:   systemClock{},
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.log == nil {
		r.log = logger.Get("runner")
	}
	return r, nil
}

// Config returns the runner's effective configuration.
func (r *Runner) Config() Config { return r.cfg }

// Process loads the audio at path, applies window when non-nil, and runs
// diarization. Stages run strictly in order and no report is returned if
// any of them fails.
func (r *Runner) Process(ctx context.Context, path string, window *audio.Window, loader Loader) (*Report, error) {
	ctx, span := observability.StartSpan(ctx, observability.SpanLoadAudio)
	observability.SetSpanAttribute(ctx, observability.AttrAudioPath, path)
	asset, err := audio.Load(ctx, path, audio.WithSampleRate(r.cfg.SampleRate), audio.WithFFmpeg(r.cfg.FFmpeg))
	if err != nil {
		observability.SetSpanError(ctx, err)
	}
	span.End()
	if err != nil {
		r.recordError(ctx, err, "audio")
		return nil, err
	}
	r.log.WithContext(ctx).Info("audio loaded", logger.Fields(
		logger.FieldPath, path,
		"seconds", asset.Duration(),
		"sample_rate", asset.SampleRate,
	))

	var applied *audio.Window
	var notice audio.Notice
	if window != nil {
		asset, notice, err = audio.Truncate(asset, *window)
		if err != nil {
			r.recordError(ctx, err, "audio")
			return nil, err
		}
		w := *window
		if notice.Clamped {
			w.End = notice.AppliedEnd
			r.log.WithContext(ctx).Warn(notice.String(), logger.Fields(logger.FieldPath, path))
		}
		applied = &w
		r.log.WithContext(ctx).Info("audio truncated", logger.Fields("window", w.String(), "seconds", asset.Duration()))
	}

	report, err := r.Run(ctx, asset, loader)
	if err != nil {
		return nil, err
	}
	report.Source = path
	report.Window = applied
	report.Clamped = notice.Clamped
	return report, nil
}

// Run constructs a capability through loader and diarizes asset.
// Construction and inference are timed separately. A construction failure
// is reported as CAPABILITY_UNAVAILABLE and never retried.
func (r *Runner) Run(ctx context.Context, asset *audio.Asset, loader Loader) (report *Report, err error) {
	if asset == nil || asset.Duration() <= 0 {
		return nil, errors.InvalidInput("asset", "audio asset is empty")
	}
	if loader == nil {
		return nil, errors.CapabilityUnavailable(r.cfg.Backend, fmt.Errorf("no loader configured"))
	}

	runID := uuid.NewString()
	ctx = logger.ContextWithRunID(ctx, runID)
	rc := observability.NewRunContext(r.service, runID, r.metrics)
	ctx, runSpan := rc.StartRun(ctx)
	defer func() { rc.EndRun(ctx, runSpan, err) }()

	log := r.log.WithContext(ctx)
	duration := asset.Duration()
	spec := r.cfg.Spec()

	log.Info("loading diarization pipeline", logger.Fields(
		logger.FieldModel, spec.Model,
		logger.FieldDevice, spec.Device,
		"backend", loader.Name(),
		"trust_source", spec.TrustSource,
	))

	capability, loadTime, err := r.load(ctx, loader, spec)
	if err != nil {
		r.recordError(ctx, err, loader.Name())
		log.Error("pipeline unavailable", logger.ErrorFields("load", err))
		return nil, err
	}
	defer func() {
		if cerr := provider.CloseIfCloseable(context.WithoutCancel(ctx), capability); cerr != nil {
			log.Warn("failed to release pipeline", logger.ErrorFields("close", cerr))
		}
	}()
	log.Info("pipeline loaded", logger.DurationFields("load", loadTime))

	wrapped := provider.Chain(
		provider.WithLogging[Waveform, []Segment](log),
		provider.WithMetrics[Waveform, []Segment](r.service, r.metrics),
		provider.WithTracing[Waveform, []Segment](r.service, observability.SpanInference),
	)(capability)

	waveform := Waveform{
		Samples:     asset.Samples,
		SampleRate:  asset.SampleRate,
		MinSpeakers: r.cfg.MinSpeakers,
		MaxSpeakers: r.cfg.MaxSpeakers,
	}

	start := r.clock.Now()
	segments, err := wrapped.Execute(ctx, waveform)
	inferenceTime := r.clock.Now().Sub(start)
	if err != nil {
		if !errors.IsAppError(err) {
			err = errors.ExternalServiceError(capability.Name(), err)
		}
		r.recordError(ctx, err, capability.Name())
		return nil, err
	}
	if err := checkSegments(segments); err != nil {
		err = errors.ExternalServiceError(capability.Name(), err)
		r.recordError(ctx, err, capability.Name())
		return nil, err
	}

	report = &Report{
		RunID:            runID,
		Backend:          loader.Name(),
		Model:            spec.Model,
		Device:           spec.Device,
		Segments:         segments,
		Speakers:         DistinctSpeakers(segments),
		AudioSeconds:     duration,
		LoadSeconds:      loadTime.Seconds(),
		InferenceSeconds: inferenceTime.Seconds(),
	}
	report.RealTimeFactor = report.InferenceSeconds / report.AudioSeconds

	if r.metrics != nil {
		r.metrics.RecordInference(ctx, spec.Model, duration, report.RealTimeFactor)
	}
	observability.SetSpanAttribute(ctx, observability.AttrSegments, len(segments))
	observability.SetSpanAttribute(ctx, observability.AttrSpeakers, report.Speakers)
	log.Info("diarization completed", logger.Fields(
		logger.FieldSegments, len(segments),
		logger.FieldSpeakers, len(report.Speakers),
		"inference_seconds", report.InferenceSeconds,
		"real_time_factor", report.RealTimeFactor,
	))
	return report, nil
}

func (r *Runner) load(ctx context.Context, loader Loader, spec Spec) (Capability, time.Duration, error) {
	ctx, span := observability.StartSpan(ctx, observability.SpanLoadCapability)
	defer span.End()
	observability.SetSpanAttribute(ctx, observability.AttrModel, spec.Model)
	observability.SetSpanAttribute(ctx, observability.AttrDevice, spec.Device)

	start := r.clock.Now()
	capability, err := loader.Load(ctx, spec)
	elapsed := r.clock.Now().Sub(start)
	if err == nil && capability == nil {
		err = fmt.Errorf("loader returned no pipeline")
	}
	if err != nil {
		observability.SetSpanError(ctx, err)
		if !errors.HasCode(err, errors.ErrCodeConfiguration) && !errors.HasCode(err, errors.ErrCodeCapabilityUnavailable) {
			err = errors.CapabilityUnavailable(loader.Name(), err)
		}
		return nil, elapsed, err
	}
	return capability, elapsed, nil
}

func (r *Runner) recordError(ctx context.Context, err error, component string) {
	if r.metrics != nil {
		r.metrics.RecordError(ctx, string(errors.Wrap(err).Code), component)
	}
}

// checkSegments rejects turns that are empty or reversed.
func checkSegments(segments []Segment) error {
	for i, s := range segments {
		if math.IsNaN(s.Start) || math.IsInf(s.End, 0) || math.IsNaN(s.End) || s.Start < 0 || s.Start >= s.End {
			return fmt.Errorf("segment %d has invalid bounds [%.3f, %.3f)", i, s.Start, s.End)
		}
	}
	return nil
}

// DistinctSpeakers returns the sorted set of labels in segments.
func DistinctSpeakers(segments []Segment) []string {
	speakers := make([]string, 0, len(segments))
	for _, s := range segments {
		speakers = append(speakers, s.Speaker)
	}
	slices.Sort(speakers)
	return slices.Compact(speakers)
}
