// Package clips extracts short listening samples from a recording, either
// at fixed intervals or one per speaker from a diarization report, to help
// label speakers by ear.
package clips
