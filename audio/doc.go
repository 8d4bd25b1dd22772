// Package audio loads audio files into mono waveforms and cuts them to time
// windows.
//
//	asset, err := audio.Load(ctx, "meeting.wav")
//	clip, notice, err := audio.Truncate(asset, audio.Window{Start: 0, End: 60})
//
// Load resamples to 16 kHz by default. Truncate clamps a window that runs
// past the end of the asset and reports the adjustment in the returned Notice.
package audio
