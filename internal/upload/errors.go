package upload

import (
	"errors"
	"fmt"
	"time"

	"vidyeet/internal/mux"
)

// Severity classifies a failure for the process exit code.
type Severity int

const (
	SeverityUser Severity = iota + 1
	SeverityConfig
	SeveritySystem
)

func (s Severity) ExitCode() int { return int(s) }

func (s Severity) String() string {
	switch s {
	case SeverityUser:
		return "user error"
	case SeverityConfig:
		return "configuration error"
	default:
		return "system error"
	}
}

type ValidationReason string

const (
	ReasonNotFound          ValidationReason = "not_found"
	ReasonNotAFile          ValidationReason = "not_a_file"
	ReasonEmpty             ValidationReason = "empty"
	ReasonTooLarge          ValidationReason = "too_large"
	ReasonUnsupportedFormat ValidationReason = "unsupported_format"
)

// ValidationError rejects a file before any network call is made.
type ValidationError struct {
	Path   string
	Reason ValidationReason
	Detail string
}

func (e *ValidationError) Error() string {
	switch e.Reason {
	case ReasonNotFound:
		return fmt.Sprintf("file not found: %s", e.Path)
	case ReasonNotAFile:
		return fmt.Sprintf("'%s' is a directory, not a file", e.Path)
	case ReasonEmpty:
		return fmt.Sprintf("file is empty: %s", e.Path)
	case ReasonTooLarge:
		return fmt.Sprintf("file too large: %s (%s)", e.Path, e.Detail)
	case ReasonUnsupportedFormat:
		return fmt.Sprintf("unsupported format: %s (%s)", e.Path, e.Detail)
	default:
		return fmt.Sprintf("invalid file %s: %s", e.Path, e.Detail)
	}
}

func (e *ValidationError) Hint() string {
	switch e.Reason {
	case ReasonNotFound:
		return "Check the file path and make sure the file exists."
	case ReasonNotAFile:
		return "Specify a file, not a directory."
	case ReasonEmpty:
		return "The file appears to be empty or corrupted."
	case ReasonTooLarge:
		return "Compress the video or use a smaller file."
	case ReasonUnsupportedFormat:
		return "Supported formats are listed under upload.supported_formats."
	default:
		return ""
	}
}

// TransportError is one failed chunk transmission attempt.
type TransportError struct {
	Index      int
	Attempt    int
	StatusCode int
	Err        error
}

func (e *TransportError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("chunk %d attempt %d: %v", e.Index, e.Attempt, e.Err)
	}
	return fmt.Sprintf("chunk %d attempt %d: unexpected status %d", e.Index, e.Attempt, e.StatusCode)
}

func (e *TransportError) Unwrap() error { return e.Err }

// ChunkUploadError means a chunk exhausted its retries.
type ChunkUploadError struct {
	Index    int
	Attempts int
	Err      error
}

func (e *ChunkUploadError) Error() string {
	return fmt.Sprintf("failed to upload chunk %d after %d attempt(s): %v", e.Index, e.Attempts, e.Err)
}

func (e *ChunkUploadError) Unwrap() error { return e.Err }

// CapacityError is an asset-limit rejection that eviction did not resolve.
type CapacityError struct {
	EvictedAssetID string
	Err            error
}

func (e *CapacityError) Error() string {
	if e.EvictedAssetID == "" {
		return fmt.Sprintf("asset limit reached: %v", e.Err)
	}
	return fmt.Sprintf("asset limit still reached after deleting asset %s: %v", e.EvictedAssetID, e.Err)
}

func (e *CapacityError) Unwrap() error { return e.Err }

// TerminalStatusError is an authoritative failure reported by Mux for the
// upload; it is never retried.
type TerminalStatusError struct {
	UploadID string
	Status   mux.UploadStatus
	Reason   string
}

func (e *TerminalStatusError) Error() string {
	var msg string
	switch e.Status {
	case mux.UploadErrored:
		msg = fmt.Sprintf("upload %s failed on the server", e.UploadID)
	case mux.UploadCancelled:
		msg = fmt.Sprintf("upload %s was cancelled", e.UploadID)
	case mux.UploadTimedOut:
		msg = fmt.Sprintf("upload %s timed out on the server", e.UploadID)
	default:
		msg = fmt.Sprintf("upload %s ended with status %s", e.UploadID, e.Status)
	}
	if e.Reason != "" {
		msg += ": " + e.Reason
	}
	return msg
}

type PollingTimeoutError struct {
	UploadID string
	MaxWait  time.Duration
	Polls    int
}

func (e *PollingTimeoutError) Error() string {
	return fmt.Sprintf("asset for upload %s not ready within %s (%d polls)", e.UploadID, e.MaxWait, e.Polls)
}

// ProtocolError is a response that breaks the API contract.
type ProtocolError struct {
	UploadID string
	Msg      string
}

func (e *ProtocolError) Error() string {
	return fmt.Sprintf("protocol violation for upload %s: %s", e.UploadID, e.Msg)
}

// SeverityOf maps an error chain to the category the caller reports.
func SeverityOf(err error) Severity {
	var validationErr *ValidationError
	if errors.As(err, &validationErr) {
		return SeverityUser
	}

	var apiErr *mux.APIError
	if errors.As(err, &apiErr) && apiErr.Unauthorized() {
		return SeverityConfig
	}

	return SeveritySystem
}
