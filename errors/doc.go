// Package errors provides the structured error type shared by every diarkit
// package.
//
// An AppError carries a machine-readable code, a human-readable message, an
// optional cause, and the process exit code the CLI should use when the error
// reaches main. Nothing in diarkit retries, so Retryable is informational: it
// tells an operator whether running the same command again could succeed.
//
// # Taxonomy
//
//   - CONFIGURATION_ERROR: missing credential or invalid setting, raised before any work
//   - ASSET_NOT_FOUND: the audio path does not exist
//   - ASSET_DECODE_ERROR: the audio file exists but cannot be decoded
//   - CAPABILITY_UNAVAILABLE: the diarization pipeline could not be constructed
//
// # Usage
//
//	if _, err := os.Stat(path); err != nil {
//	    return nil, errors.AssetNotFound(path).WithCause(err)
//	}
//
//	if errors.HasCode(err, errors.ErrCodeConfiguration) { ... }
package errors
