package img2pdf

import (
	"errors"
	"fmt"
)

// Sentinel errors for library operations.
var (
	// Fetch errors.
	ErrInvalidURL      = errors.New("invalid url")
	ErrNetwork         = errors.New("network request failed")
	ErrTimeout         = errors.New("request timed out")
	ErrHTTPStatus      = errors.New("unexpected http status")
	ErrPayloadTooLarge = errors.New("payload too large")

	// Classification errors.
	ErrUnknownFormat     = errors.New("unknown image format")
	ErrUnsupportedFormat = errors.New("unsupported image format")

	// Conversion errors.
	ErrCorruptImage  = errors.New("image data cannot be decoded")
	ErrEmptyDocument = errors.New("no pages to write")
	ErrWrite         = errors.New("artifact write failed")

	// Run errors.
	ErrCancelled     = errors.New("cancelled before start")
	ErrDestination   = errors.New("output destination not writable")
	ErrDuplicateItem = errors.New("duplicate work item index")

	// Validation errors.
	ErrInvalidConcurrency = errors.New("concurrency must be positive")
	ErrInvalidBatchSize   = errors.New("batch size must be positive")
	ErrInvalidDPI         = errors.New("dpi out of range")
	ErrInvalidRetries     = errors.New("retries cannot be negative")
)

// StatusError reports a response outside the 2xx range. It unwraps to
// ErrHTTPStatus so callers can match the class with errors.Is while still
// reading the exact code.
type StatusError struct {
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected http status %d", e.Code)
}

func (e *StatusError) Unwrap() error { return ErrHTTPStatus }

// Kind buckets an item failure for reports, logs, and metric labels.
type Kind string

const (
	KindNone              Kind = ""
	KindInvalidURL        Kind = "invalid_url"
	KindNetwork           Kind = "network"
	KindTimeout           Kind = "timeout"
	KindHTTPStatus        Kind = "http_status"
	KindPayloadTooLarge   Kind = "payload_too_large"
	KindUnknownFormat     Kind = "unknown_format"
	KindUnsupportedFormat Kind = "unsupported_format"
	KindCorruptImage      Kind = "corrupt_image"
	KindEmptyDocument     Kind = "empty_document"
	KindWrite             Kind = "write"
	KindCancelled         Kind = "cancelled"
	KindInternal          Kind = "internal"
)

// KindOf maps an error to its failure bucket. Unrecognized errors fall back
// to KindInternal; a nil error is KindNone.
func KindOf(err error) Kind {
	switch {
	case err == nil:
		return KindNone
	case errors.Is(err, ErrInvalidURL):
		return KindInvalidURL
	case errors.Is(err, ErrTimeout):
		return KindTimeout
	case errors.Is(err, ErrNetwork):
		return KindNetwork
	case errors.Is(err, ErrHTTPStatus):
		return KindHTTPStatus
	case errors.Is(err, ErrPayloadTooLarge):
		return KindPayloadTooLarge
	case errors.Is(err, ErrUnknownFormat):
		return KindUnknownFormat
	case errors.Is(err, ErrUnsupportedFormat):
		return KindUnsupportedFormat
	case errors.Is(err, ErrCorruptImage):
		return KindCorruptImage
	case errors.Is(err, ErrEmptyDocument):
		return KindEmptyDocument
	case errors.Is(err, ErrWrite):
		return KindWrite
	case errors.Is(err, ErrCancelled):
		return KindCancelled
	default:
		return KindInternal
	}
}
