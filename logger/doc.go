// Package logger provides structured logging for diarkit using zerolog.
//
// Logs go to stderr by default so that reports printed on stdout can be piped
// without interleaving. Console and JSON formats are supported.
//
// # Configuration
//
//	logging:
//	  level: "info"
//	  format: "console"
//
// # Usage
//
//	log := logger.Get("runner")
//	log.Info("pipeline loaded", logger.DurationFields("load", d))
package logger
