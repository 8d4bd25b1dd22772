// Package diarization runs a speaker-diarization capability over an audio
// asset and reports a speaker timeline.
//
// A Runner is built from an explicit Config. Building it fails with
// CONFIGURATION_ERROR when no token is configured, before any audio is
// read. Backends are Loaders registered by name:
//
//	reg := diarization.NewRegistry()
//	reg.RegisterFactory(pyannote.ProviderName, pyannote.Factory())
//	loader, err := reg.Create(cfg.Backend, cfg.Options)
//
//	runner, err := diarization.NewRunner(cfg)
//	report, err := runner.Process(ctx, "meeting.wav", &audio.Window{End: 60}, loader)
//	fmt.Print(diarization.Summarize(report, 50))
//
// # Backends
//
//   - diarization/pyannote: pyannote pipeline served by an HTTP sidecar
package diarization
