package share

import (
	"fmt"

	"audioshare/internal/services"
	"audioshare/internal/store"
)

// ConflictError reports an upload whose content fingerprint is already
// shared. Exactly one of Audio or Project is set, carrying the existing
// record so callers can point the uploader at it.
type ConflictError struct {
	Audio   *store.SharedAudio
	Project *store.Project
}

func (e *ConflictError) Error() string {
	if e.Audio != nil {
		return fmt.Sprintf("content already shared as %s", e.Audio.ShortID)
	}
	if e.Project != nil {
		return fmt.Sprintf("project already uploaded as %d", e.Project.ProjectID)
	}
	return "content already shared"
}

func (e *ConflictError) Unwrap() error { return services.ErrConflict }

// TooLargeError reports a payload over the configured byte cap.
type TooLargeError struct {
	Limit  int64
	Actual int64
}

func (e *TooLargeError) Error() string {
	return fmt.Sprintf("payload of %d bytes exceeds limit of %d", e.Actual, e.Limit)
}

func (e *TooLargeError) Unwrap() error { return services.ErrValidation }
