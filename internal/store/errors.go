package store

import (
	"errors"
	"fmt"
	"strings"
)

// ErrDuplicateKey marks inserts rejected by a UNIQUE constraint. Callers use
// it as the final arbiter for short identifier and project identifier races:
// catch it, re-allocate, retry.
var ErrDuplicateKey = errors.New("duplicate key")

// DuplicateKeyError carries the qualified column ("table.column") that
// triggered the violation.
type DuplicateKeyError struct {
	Field string
}

func (e *DuplicateKeyError) Error() string {
	return fmt.Sprintf("duplicate key: %s", e.Field)
}

func (e *DuplicateKeyError) Unwrap() error { return ErrDuplicateKey }

// classifyInsertError converts the SQLite driver's UNIQUE violation message
// into a DuplicateKeyError. Other errors pass through unchanged.
func classifyInsertError(err error) error {
	if err == nil {
		return nil
	}
	const marker = "UNIQUE constraint failed: "
	msg := err.Error()
	idx := strings.Index(msg, marker)
	if idx < 0 {
		return err
	}
	rest := msg[idx+len(marker):]
	if cut := strings.IndexAny(rest, " ("); cut > 0 {
		rest = rest[:cut]
	}
	return &DuplicateKeyError{Field: strings.TrimSpace(rest)}
}
