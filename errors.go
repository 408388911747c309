package formdata

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidHeader is returned when a part's header block cannot be
	// parsed, or contains more than maxHeaders entries.
	ErrInvalidHeader = errors.New("invalid part header")
	// ErrInvalidContentDisposition is returned when a part has no
	// Content-Disposition header, or it is not form-data with a name.
	ErrInvalidContentDisposition = errors.New("invalid content disposition")
	// ErrLocked is returned when two streams try to drive the shared
	// scanner at the same time. That is caller misuse, not bad input.
	ErrLocked = errors.New("scanner is held by another stream")
	// ErrSmallBuffer is returned when the requested buffer size is below
	// MinBufferSize.
	ErrSmallBuffer = errors.New("buffer size is below the minimum")

	ErrPayloadTooLarge  = errors.New("payload is too large")
	ErrFileTooLarge     = errors.New("file is too large")
	ErrFieldTooLarge    = errors.New("field is too large")
	ErrPartsTooMany     = errors.New("too many parts")
	ErrFieldsTooMany    = errors.New("too many fields")
	ErrFilesTooMany     = errors.New("too many files")
	ErrFieldNameTooLong = errors.New("field name is too long")
)

// limitError attaches the configured ceiling to a limit sentinel. The
// result still matches the sentinel with errors.Is.
func limitError(sentinel error, max uint64) error {
	return fmt.Errorf("%w, limit to %d", sentinel, max)
}
