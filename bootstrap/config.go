package bootstrap

import (
	"github.com/kbukum/diarkit/config"
)

// Config is the interface constraint for application configuration types.
// Any struct that embeds config.ServiceConfig and adds its own
// ApplyDefaults/Validate satisfies it.
//
//	type AppConfig struct {
//	    config.ServiceConfig `yaml:",inline" mapstructure:",squash"`
//	    Diarization diarization.Config `yaml:"diarization" mapstructure:"diarization"`
//	}
type Config interface {
	GetServiceConfig() *config.ServiceConfig
	ApplyDefaults()
	Validate() error
}
