package diarization

import (
	"github.com/kbukum/diarkit/audio"
	"github.com/kbukum/diarkit/validation"
)

const (
	// TokenEnv is the environment variable holding the model hub token.
	TokenEnv = "HF_TOKEN"

	DefaultBackend = "pyannote"
	DefaultModel   = "pyannote/speaker-diarization-3.1"
	DefaultDevice  = "cpu"
)

// Devices lists the accepted compute devices.
var Devices = []string{"cpu", "cuda", "mps"}

// Config is the explicit configuration a Runner is built from.
type Config struct {
	Backend     string `yaml:"backend" mapstructure:"backend"`
	Model       string `yaml:"model" mapstructure:"model"`
	Token       string `yaml:"token" mapstructure:"token"`
	Device      string `yaml:"device" mapstructure:"device"`
	TrustSource bool   `yaml:"trust_source" mapstructure:"trust_source"`
	MinSpeakers int    `yaml:"min_speakers" mapstructure:"min_speakers"`
	MaxSpeakers int    `yaml:"max_speakers" mapstructure:"max_speakers"`
	// SampleRate is the rate audio is loaded at before inference.
	SampleRate int `yaml:"sample_rate" mapstructure:"sample_rate"`
	// FFmpeg is the binary used for non-WAV inputs; empty disables it.
	FFmpeg string `yaml:"ffmpeg" mapstructure:"ffmpeg"`
	// Options is passed to the backend factory (e.g. base_url, timeout).
	Options map[string]any `yaml:"options" mapstructure:"options"`
}

// ApplyDefaults fills unset fields.
func (c *Config) ApplyDefaults() {
	if c.Backend == "" {
		c.Backend = DefaultBackend
	}
	if c.Model == "" {
		c.Model = DefaultModel
	}
	if c.Device == "" {
		c.Device = DefaultDevice
	}
	if c.SampleRate == 0 {
		c.SampleRate = audio.DefaultSampleRate
	}
}

// Validate checks everything except the token, which NewRunner reports as
// a configuration error of its own.
func (c *Config) Validate() error {
	v := validation.New().
		Required("diarization.backend", c.Backend).
		Required("diarization.model", c.Model).
		OneOf("diarization.device", c.Device, Devices).
		Min("diarization.sample_rate", c.SampleRate, 1).
		Min("diarization.min_speakers", c.MinSpeakers, 0).
		Min("diarization.max_speakers", c.MaxSpeakers, 0)
	if c.MinSpeakers > 0 && c.MaxSpeakers > 0 {
		v.Custom(c.MinSpeakers <= c.MaxSpeakers, "diarization.min_speakers", "must not exceed max_speakers")
	}
	return v.Validate()
}

// Spec returns the capability spec for this configuration.
func (c *Config) Spec() Spec {
	return Spec{
		Model:       c.Model,
		Token:       c.Token,
		Device:      c.Device,
		TrustSource: c.TrustSource,
	}
}
