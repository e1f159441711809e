package contenthash

import (
	"crypto/md5"
	"encoding/hex"
)

// Fingerprint returns the hex-encoded MD5 digest of the payload. The same
// bytes always produce the same fingerprint regardless of declared file name
// or metadata, which makes it usable as both a dedup key and a storage key.
func Fingerprint(payload []byte) string {
	sum := md5.Sum(payload)
	return hex.EncodeToString(sum[:])
}
