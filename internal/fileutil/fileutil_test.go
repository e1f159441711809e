package fileutil_test

import (
	"os"
	"path/filepath"
	"testing"

	"audioshare/internal/fileutil"
)

func TestWriteScratchCreatesDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "scratch")
	path, err := fileutil.WriteScratch(dir, "abc123", []byte("payload"))
	if err != nil {
		t.Fatalf("WriteScratch failed: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	if string(data) != "payload" {
		t.Fatalf("unexpected content: %q", data)
	}
}

func TestRemoveQuietlyIgnoresMissing(t *testing.T) {
	dir := t.TempDir()
	present := filepath.Join(dir, "present")
	if err := os.WriteFile(present, []byte("x"), 0o644); err != nil {
		t.Fatalf("seed file: %v", err)
	}
	missing := filepath.Join(dir, "missing")

	if err := fileutil.RemoveQuietly(present, missing, ""); err != nil {
		t.Fatalf("RemoveQuietly failed: %v", err)
	}
	if _, err := os.Stat(present); !os.IsNotExist(err) {
		t.Fatal("expected present file to be removed")
	}
}
