package diarization

import (
	"github.com/kbukum/diarkit/audio"
)

// Segment is one speaker turn. Start < End always holds for segments in a
// Report.
type Segment struct {
	Start   float64 `json:"start" yaml:"start"`
	End     float64 `json:"end" yaml:"end"`
	Speaker string  `json:"speaker" yaml:"speaker"`
	// Text is filled by AssignTranscript.
	Text string `json:"text,omitempty" yaml:"text,omitempty"`
}

// Duration returns End - Start in seconds.
func (s Segment) Duration() float64 { return s.End - s.Start }

// Waveform is the input handed to a capability.
type Waveform struct {
	Samples    []float32
	SampleRate int
	// MinSpeakers and MaxSpeakers constrain clustering; zero means unset.
	MinSpeakers int
	MaxSpeakers int
}

// Spec describes the pipeline a Loader should construct.
type Spec struct {
	Model  string
	Token  string
	Device string
	// TrustSource allows the backend to skip integrity checks when loading
	// this model's weights. It applies to this pipeline instance only.
	TrustSource bool
}

// Report is the result of one run. It is only produced when every stage
// succeeded.
type Report struct {
	RunID    string    `json:"run_id" yaml:"run_id"`
	Source   string    `json:"source,omitempty" yaml:"source,omitempty"`
	Backend  string    `json:"backend" yaml:"backend"`
	Model    string    `json:"model" yaml:"model"`
	Device   string    `json:"device" yaml:"device"`
	Segments []Segment `json:"segments" yaml:"segments"`
	// Speakers is the sorted set of distinct segment labels.
	Speakers []string `json:"speakers" yaml:"speakers"`

	// Window is the applied window when the asset was truncated.
	Window  *audio.Window `json:"window,omitempty" yaml:"window,omitempty"`
	Clamped bool          `json:"clamped,omitempty" yaml:"clamped,omitempty"`

	AudioSeconds     float64 `json:"audio_seconds" yaml:"audio_seconds"`
	LoadSeconds      float64 `json:"load_seconds" yaml:"load_seconds"`
	InferenceSeconds float64 `json:"inference_seconds" yaml:"inference_seconds"`
	// RealTimeFactor is InferenceSeconds / AudioSeconds.
	RealTimeFactor float64 `json:"real_time_factor" yaml:"real_time_factor"`
}
