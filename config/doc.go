// Package config loads diarkit configuration from a YAML file, a .env file,
// and the process environment using Viper and godotenv.
//
// Precedence, lowest to highest: config.yml, .env, exported environment
// variables. Environment variables address nested keys with underscores
// (DIARIZATION_DEVICE -> diarization.device). Variables whose names do not
// follow that layout, such as HF_TOKEN, are bound with WithEnvAlias.
//
// # Usage
//
//	cfg, err := config.Load[AppConfig]("diarize",
//	    config.WithEnvAlias("diarization.token", "HF_TOKEN"),
//	)
//
// The configuration value is then passed explicitly into constructors;
// nothing below main reads the environment.
package config
