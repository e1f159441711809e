package shortid

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
)

// Alphabet is the identifier character set: case-sensitive letters and digits.
const Alphabet = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// DefaultLength is the identifier length used when none is configured.
const DefaultLength = 6

// DefaultMaxAttempts bounds the sample-and-check loop. Allocation fails with
// ErrExhaustedKeyspace once the bound is reached instead of retrying forever.
const DefaultMaxAttempts = 20

// ErrExhaustedKeyspace indicates allocation gave up after the retry bound.
var ErrExhaustedKeyspace = errors.New("short id keyspace exhausted")

// Taken reports whether a candidate identifier is already assigned.
type Taken func(ctx context.Context, id string) (bool, error)

// Allocator produces short public identifiers that are free at allocation
// time. The existence check is advisory only: a concurrent allocation can
// pass the same check, so callers must treat the record store's uniqueness
// constraint as the final arbiter and re-allocate on insert conflict.
type Allocator struct {
	length      int
	maxAttempts int
	taken       Taken
}

// NewAllocator builds an allocator for identifiers of the given length.
// Lengths outside (0, len(Alphabet)] fall back to DefaultLength.
func NewAllocator(length int, taken Taken) *Allocator {
	if length <= 0 || length > len(Alphabet) {
		length = DefaultLength
	}
	return &Allocator{length: length, maxAttempts: DefaultMaxAttempts, taken: taken}
}

// WithMaxAttempts overrides the retry bound. Values below 1 are ignored.
func (a *Allocator) WithMaxAttempts(attempts int) *Allocator {
	if attempts >= 1 {
		a.maxAttempts = attempts
	}
	return a
}

// Allocate samples identifiers until one passes the existence check or the
// attempt bound is exhausted.
func (a *Allocator) Allocate(ctx context.Context) (string, error) {
	if a.taken == nil {
		return "", errors.New("shortid: existence check not configured")
	}
	for attempt := 0; attempt < a.maxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		candidate := a.Sample()
		exists, err := a.taken(ctx, candidate)
		if err != nil {
			return "", fmt.Errorf("shortid existence check: %w", err)
		}
		if !exists {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("%w: gave up after %d attempts", ErrExhaustedKeyspace, a.maxAttempts)
}

// Sample draws one identifier. Characters are sampled from Alphabet without
// replacement, so every character within a single identifier is distinct.
func (a *Allocator) Sample() string {
	letters := []byte(Alphabet)
	rand.Shuffle(len(letters), func(i, j int) {
		letters[i], letters[j] = letters[j], letters[i]
	})
	return string(letters[:a.length])
}
