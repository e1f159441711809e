package contenthash_test

import (
	"testing"

	"audioshare/internal/contenthash"
)

func TestFingerprintDeterministic(t *testing.T) {
	payload := []byte("RIFF....WAVEfmt ")
	first := contenthash.Fingerprint(payload)
	second := contenthash.Fingerprint(payload)
	if first != second {
		t.Fatalf("fingerprint not deterministic: %s vs %s", first, second)
	}
	if len(first) != 32 {
		t.Fatalf("expected 32 hex chars, got %d (%s)", len(first), first)
	}
}

func TestFingerprintKnownValue(t *testing.T) {
	// md5("") is a fixed vector.
	got := contenthash.Fingerprint(nil)
	if got != "d41d8cd98f00b204e9800998ecf8427e" {
		t.Fatalf("unexpected digest for empty payload: %s", got)
	}
	if contenthash.Fingerprint([]byte("abc")) != "900150983cd24fb0d6963f7d28e17f72" {
		t.Fatalf("unexpected digest for %q", "abc")
	}
}

func TestFingerprintDistinguishesPayloads(t *testing.T) {
	a := contenthash.Fingerprint([]byte("payload-a"))
	b := contenthash.Fingerprint([]byte("payload-b"))
	if a == b {
		t.Fatalf("distinct payloads produced identical fingerprints: %s", a)
	}
}
