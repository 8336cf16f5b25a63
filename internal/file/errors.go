package file

import (
	"errors"
	"fmt"
)

var (
	// ErrFileNotFound signals that the file could not be located.
	ErrFileNotFound = errors.New("file not found")
	// ErrPermissionDenied is returned when a non-owner mutates owner-gated state.
	ErrPermissionDenied = errors.New("permission denied")
	// ErrAlreadyShared indicates the grantee already holds a share grant.
	ErrAlreadyShared = errors.New("file already shared with this user")
	// ErrSearchUnavailable is returned when the query cannot be embedded.
	ErrSearchUnavailable = errors.New("semantic search unavailable")
)

// QuotaError rejects an upload that would exceed the owner's ceiling. It
// carries the remaining headroom so callers can report it.
type QuotaError struct {
	AvailableBytes int64
}

func (e *QuotaError) Error() string {
	return fmt.Sprintf("storage quota exceeded: %d bytes available", e.AvailableBytes)
}
