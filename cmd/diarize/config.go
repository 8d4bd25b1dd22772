package main

import (
	"github.com/kbukum/diarkit/clips"
	"github.com/kbukum/diarkit/config"
	"github.com/kbukum/diarkit/diarization"
	"github.com/kbukum/diarkit/errors"
	"github.com/kbukum/diarkit/observability"
	"github.com/kbukum/diarkit/validation"
	"github.com/kbukum/diarkit/webhook"
)

const serviceName = "diarize"

// AppConfig is the diarize binary's configuration.
type AppConfig struct {
	config.ServiceConfig `yaml:",inline" mapstructure:",squash"`

	Diarization   diarization.Config   `yaml:"diarization" mapstructure:"diarization"`
	Clips         clips.Config         `yaml:"clips" mapstructure:"clips"`
	Webhook       webhook.Config       `yaml:"webhook" mapstructure:"webhook"`
	Observability observability.Config `yaml:"observability" mapstructure:"observability"`
}

// ApplyDefaults fills unset fields in every section.
func (c *AppConfig) ApplyDefaults() {
	if c.Name == "" {
		c.Name = serviceName
	}
	c.ServiceConfig.ApplyDefaults()
	c.Diarization.ApplyDefaults()
	if c.Diarization.FFmpeg == "" {
		c.Diarization.FFmpeg = "ffmpeg"
	}
	if c.Clips.SampleRate == 0 {
		c.Clips.SampleRate = c.Diarization.SampleRate
	}
	if c.Clips.FFmpeg == "" {
		c.Clips.FFmpeg = c.Diarization.FFmpeg
	}
	c.Clips.ApplyDefaults()
	c.Webhook.ApplyDefaults()
	if c.Observability.Enabled {
		c.Observability.ApplyDefaults()
	}
}

// Validate checks the service section, struct tags and the diarization
// section. The token is checked later, by the runner, so commands that
// never diarize work without one.
func (c *AppConfig) Validate() error {
	if err := c.ServiceConfig.Validate(); err != nil {
		return errors.Configuration("", err.Error()).WithCause(err)
	}
	if err := validation.Validate(c); err != nil {
		return errors.Configuration("", err.Error()).WithCause(err)
	}
	if err := c.Diarization.Validate(); err != nil {
		return errors.Configuration("diarization", err.Error()).WithCause(err)
	}
	return nil
}
