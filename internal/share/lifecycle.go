package share

import "time"

// computeExpiry derives the expiry instant from the upload instant. Days are
// validated by the caller before this point.
func computeExpiry(now time.Time, days int) time.Time {
	return now.UTC().Add(time.Duration(days) * 24 * time.Hour)
}

// isExpired compares in UTC so records behave the same regardless of the
// zone they were read back in.
func isExpired(now, expireTime time.Time) bool {
	return now.UTC().After(expireTime.UTC())
}
