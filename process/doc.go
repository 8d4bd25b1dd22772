// Package process runs external tools such as ffmpeg with process-group
// cancellation: SIGTERM on context cancel, SIGKILL after a grace period.
//
//	res, err := process.Run(ctx, process.FFmpeg("ffmpeg", "-i", path, "-f", "f32le", "-"))
//
// Adapter and SubprocessProvider expose commands through the provider
// interfaces.
package process
