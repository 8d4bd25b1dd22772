package errors

// ErrorCode represents a machine-readable error code.
type ErrorCode string

// Run preconditions
const (
	// ErrCodeConfiguration indicates a missing credential or invalid setting.
	ErrCodeConfiguration ErrorCode = "CONFIGURATION_ERROR"
	// ErrCodeInvalidInput indicates a caller-supplied value is invalid.
	ErrCodeInvalidInput ErrorCode = "INVALID_INPUT"
	// ErrCodeMissingField indicates a required field is missing.
	ErrCodeMissingField ErrorCode = "MISSING_FIELD"
)

// Audio asset errors
const (
	// ErrCodeAssetNotFound indicates the audio path does not exist.
	ErrCodeAssetNotFound ErrorCode = "ASSET_NOT_FOUND"
	// ErrCodeAssetDecode indicates the audio file could not be decoded.
	ErrCodeAssetDecode ErrorCode = "ASSET_DECODE_ERROR"
)

// Capability errors
const (
	// ErrCodeCapabilityUnavailable indicates the diarization pipeline could not be constructed.
	ErrCodeCapabilityUnavailable ErrorCode = "CAPABILITY_UNAVAILABLE"
	// ErrCodeExternalService indicates a collaborator (sidecar, webhook, ffmpeg) failed.
	ErrCodeExternalService ErrorCode = "EXTERNAL_SERVICE_ERROR"
	// ErrCodeTimeout indicates an operation exceeded its deadline.
	ErrCodeTimeout ErrorCode = "TIMEOUT"
)

// Internal errors
const (
	// ErrCodeInternal indicates an unexpected failure.
	ErrCodeInternal ErrorCode = "INTERNAL_ERROR"
)

// Exit codes returned by the CLI for each error class.
const (
	ExitFailure       = 1
	ExitConfiguration = 2
	ExitAsset         = 3
	ExitCapability    = 4
)

var retryableCodes = map[ErrorCode]bool{
	ErrCodeExternalService: true,
	ErrCodeTimeout:         true,
}

var exitCodes = map[ErrorCode]int{
	ErrCodeConfiguration:         ExitConfiguration,
	ErrCodeInvalidInput:          ExitConfiguration,
	ErrCodeMissingField:          ExitConfiguration,
	ErrCodeAssetNotFound:         ExitAsset,
	ErrCodeAssetDecode:           ExitAsset,
	ErrCodeCapabilityUnavailable: ExitCapability,
}

// IsRetryableCode returns true if re-running the operation could succeed
// without operator intervention.
func IsRetryableCode(code ErrorCode) bool {
	return retryableCodes[code]
}

// ExitCodeFor returns the CLI exit code for an error code.
func ExitCodeFor(code ErrorCode) int {
	if c, ok := exitCodes[code]; ok {
		return c
	}
	return ExitFailure
}
