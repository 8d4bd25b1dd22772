package audio

import (
	"math"
	"testing"

	"github.com/kbukum/diarkit/errors"
)

func synthetic(seconds float64, rate int) *Asset {
	n := int(seconds * float64(rate))
	samples := make([]float32, n)
	for i := range samples {
		samples[i] = float32(math.Sin(2 * math.Pi * 220 * float64(i) / float64(rate)))
	}
	return &Asset{Samples: samples, SampleRate: rate}
}

func TestDuration(t *testing.T) {
	a := synthetic(90, DefaultSampleRate)
	if a.Duration() != 90 {
		t.Errorf("expected 90s, got %v", a.Duration())
	}
	if (&Asset{}).Duration() != 0 {
		t.Error("expected zero duration without a sample rate")
	}
}

func TestTruncateWithinAsset(t *testing.T) {
	a := synthetic(90, DefaultSampleRate)
	period := 1.0 / DefaultSampleRate

	for _, w := range []float64{0.5, 1, 12.345, 60, 89.99} {
		got, notice, err := Truncate(a, Window{Start: 0, End: w})
		if err != nil {
			t.Fatalf("window [0,%v]: unexpected error %v", w, err)
		}
		if notice.Clamped {
			t.Errorf("window [0,%v]: unexpected clamp notice", w)
		}
		if math.Abs(got.Duration()-w) > period {
			t.Errorf("window [0,%v]: duration %v not within one sample period", w, got.Duration())
		}
	}
}

func TestTruncateOffsetWindowCopiesSamples(t *testing.T) {
	a := synthetic(10, 100)
	got, _, err := Truncate(a, Window{Start: 2, End: 3})
	if err != nil {
		t.Fatal(err)
	}
	if len(got.Samples) != 100 {
		t.Fatalf("expected 100 samples, got %d", len(got.Samples))
	}
	if got.Samples[0] != a.Samples[200] {
		t.Error("expected slice to start at sample 200")
	}
	got.Samples[0] = 42
	if a.Samples[200] == 42 {
		t.Error("truncate must not share the source buffer")
	}
}

func TestTruncateClampsOverlongWindow(t *testing.T) {
	a := synthetic(30, DefaultSampleRate)
	got, notice, err := Truncate(a, Window{Start: 0, End: 60})
	if err != nil {
		t.Fatalf("expected clamp, got error %v", err)
	}
	if got.Duration() != a.Duration() {
		t.Errorf("expected clamped duration %v, got %v", a.Duration(), got.Duration())
	}
	if !notice.Clamped || notice.RequestedEnd != 60 || notice.AppliedEnd != 30 {
		t.Errorf("unexpected notice %+v", notice)
	}
	if notice.String() == "" {
		t.Error("expected a human-readable notice")
	}
}

func TestTruncateInvalidWindows(t *testing.T) {
	a := synthetic(30, DefaultSampleRate)
	tests := []struct {
		name   string
		window Window
	}{
		{"negative start", Window{Start: -1, End: 10}},
		{"start equals end", Window{Start: 5, End: 5}},
		{"start after end", Window{Start: 10, End: 5}},
		{"start beyond duration", Window{Start: 30, End: 40}},
		{"shorter than a sample", Window{Start: 1, End: 1 + 1e-9}},
		{"nan start", Window{Start: math.NaN(), End: 3}},
		{"nan end", Window{Start: 0, End: math.NaN()}},
		{"infinite start", Window{Start: math.Inf(1), End: math.Inf(1)}},
		{"negative infinite start", Window{Start: math.Inf(-1), End: 3}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, _, err := Truncate(a, tc.window)
			if !errors.HasCode(err, errors.ErrCodeInvalidInput) {
				t.Errorf("expected INVALID_INPUT, got %v", err)
			}
		})
	}
}

func TestTruncateInfiniteEndClamps(t *testing.T) {
	a := synthetic(30, DefaultSampleRate)
	out, notice, err := Truncate(a, Window{Start: 10, End: math.Inf(1)})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !notice.Clamped || notice.AppliedEnd != 30 {
		t.Errorf("expected clamp to 30s, got %+v", notice)
	}
	if got := out.Duration(); got != 20 {
		t.Errorf("expected 20s, got %v", got)
	}
}

func TestTruncateNilAsset(t *testing.T) {
	if _, _, err := Truncate(nil, Window{End: 1}); err == nil {
		t.Error("expected error for nil asset")
	}
}

func TestResample(t *testing.T) {
	in := []float32{0, 1, 2, 3}
	if got := Resample(in, 8000, 8000); &got[0] != &in[0] {
		t.Error("expected identical rates to return the input")
	}

	up := Resample(in, 8000, 16000)
	if len(up) != 8 {
		t.Fatalf("expected 8 samples, got %d", len(up))
	}
	if up[1] != 0.5 || up[2] != 1 {
		t.Errorf("expected linear interpolation, got %v", up)
	}
	if up[7] != 3 {
		t.Errorf("expected tail to hold the last sample, got %v", up[7])
	}

	down := Resample(synthetic(2, 44100).Samples, 44100, 16000)
	if len(down) != 32000 {
		t.Errorf("expected 32000 samples, got %d", len(down))
	}
}

func TestDownmix(t *testing.T) {
	got := Downmix([]float32{1, 0, 0.5, 0.5, -1, 1}, 2)
	want := []float32{0.5, 0.5, 0}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, got)
		}
	}
	mono := []float32{1, 2}
	if out := Downmix(mono, 1); len(out) != 2 {
		t.Error("mono input should pass through")
	}
}

func TestParseF32LE(t *testing.T) {
	raw := []byte{0, 0, 0x80, 0x3f, 0, 0, 0, 0xbf} // 1.0, -0.5
	got, err := parseF32LE(raw)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 || got[0] != 1 || got[1] != -0.5 {
		t.Errorf("unexpected samples %v", got)
	}
	if _, err := parseF32LE(raw[:5]); err == nil {
		t.Error("expected error for a truncated stream")
	}
}
