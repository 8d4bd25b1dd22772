package audio

import (
	"fmt"
	"math"

	"github.com/kbukum/diarkit/errors"
)

// DefaultSampleRate is the rate diarization pipelines expect.
const DefaultSampleRate = 16000

// Asset is a mono waveform. Samples are normalized to [-1, 1] and must not
// be modified once the asset is built; Truncate copies.
type Asset struct {
	Samples    []float32
	SampleRate int
}

// Duration returns the length of the asset in seconds.
func (a *Asset) Duration() float64 {
	if a == nil || a.SampleRate <= 0 {
		return 0
	}
	return float64(len(a.Samples)) / float64(a.SampleRate)
}

// Window selects [Start, End) seconds of an asset.
type Window struct {
	Start float64 `json:"start" yaml:"start"`
	End   float64 `json:"end" yaml:"end"`
}

// Validate checks 0 <= Start < End and Start < duration. An End past the
// duration is allowed; Truncate clamps it.
func (w Window) Validate(duration float64) error {
	switch {
	case !w.Bounded():
		return errors.InvalidInput("window", fmt.Sprintf("window %s must have finite bounds", w))
	case w.Start < 0:
		return errors.InvalidInput("start", fmt.Sprintf("window start %.2fs must not be negative", w.Start))
	case w.Start >= w.End:
		return errors.InvalidInput("start", fmt.Sprintf("window start %.2fs must be before end %.2fs", w.Start, w.End))
	case w.Start >= duration:
		return errors.InvalidInput("start", fmt.Sprintf("window start %.2fs is beyond the audio duration %.2fs", w.Start, duration))
	}
	return nil
}

// Bounded reports whether Start is finite and End is a number above -Inf.
// An End of +Inf is allowed and clamps to the audio end.
func (w Window) Bounded() bool {
	return !math.IsNaN(w.Start) && !math.IsInf(w.Start, 0) && !math.IsNaN(w.End) && !math.IsInf(w.End, -1)
}

func (w Window) String() string {
	return fmt.Sprintf("[%.2fs, %.2fs)", w.Start, w.End)
}

// Notice reports that Truncate adjusted the requested window. It is
// informational and never an error.
type Notice struct {
	Clamped      bool
	RequestedEnd float64
	AppliedEnd   float64
}

func (n Notice) String() string {
	if !n.Clamped {
		return ""
	}
	return fmt.Sprintf("window end %.2fs clamped to audio end %.2fs", n.RequestedEnd, n.AppliedEnd)
}

// Truncate returns a new asset holding the samples of window. An end beyond
// the asset is clamped to the asset's end and reported in the Notice.
func Truncate(asset *Asset, window Window) (*Asset, Notice, error) {
	var notice Notice
	if asset == nil || asset.SampleRate <= 0 {
		return nil, notice, errors.InvalidInput("asset", "asset has no sample rate")
	}
	duration := asset.Duration()
	if err := window.Validate(duration); err != nil {
		return nil, notice, err
	}

	end := window.End
	if end > duration {
		notice = Notice{Clamped: true, RequestedEnd: window.End, AppliedEnd: duration}
		end = duration
	}

	sr := float64(asset.SampleRate)
	from := int(math.Round(window.Start * sr))
	to := min(int(math.Round(end*sr)), len(asset.Samples))
	if from >= to {
		return nil, notice, errors.InvalidInput("end", fmt.Sprintf("window %s is shorter than one sample", window))
	}

	samples := make([]float32, to-from)
	copy(samples, asset.Samples[from:to])
	return &Asset{Samples: samples, SampleRate: asset.SampleRate}, notice, nil
}
