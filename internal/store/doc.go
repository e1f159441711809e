// Package store persists shared audio and project records in SQLite.
//
// Uniqueness of content fingerprints, short identifiers, and project
// identifiers is enforced by UNIQUE indexes; inserts that lose a race return
// DuplicateKeyError so callers can re-allocate and retry. Counter updates
// are expressed as single-statement atomic increments.
package store
