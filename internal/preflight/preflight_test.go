package preflight_test

import (
	"context"
	"errors"
	"testing"

	"audioshare/internal/preflight"
	"audioshare/internal/services"
	"audioshare/internal/testsupport"
)

func TestRunPassesWithStubbedEnvironment(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithStubbedTools("mp3"))
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories: %v", err)
	}
	st := testsupport.MustOpenStore(t, cfg)

	results := preflight.Run(context.Background(), cfg, st)
	if err := preflight.Err(results); err != nil {
		t.Fatalf("expected all checks to pass: %v", err)
	}
	if len(results) != 6 {
		t.Fatalf("expected 6 checks, got %d", len(results))
	}
}

func TestRunFailsOnMissingTool(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories: %v", err)
	}
	cfg.Transcode.FFmpegBinary = "/nonexistent/ffmpeg"
	cfg.Transcode.FFprobeBinary = "/nonexistent/ffprobe"
	st := testsupport.MustOpenStore(t, cfg)

	results := preflight.Run(context.Background(), cfg, st)
	err := preflight.Err(results)
	if !errors.Is(err, services.ErrConfiguration) {
		t.Fatalf("expected ErrConfiguration, got %v", err)
	}

	failed := 0
	for _, r := range results {
		if !r.Passed {
			failed++
		}
	}
	if failed != 2 {
		t.Fatalf("expected 2 failed checks, got %d", failed)
	}
}

func TestRunFailsOnMissingDirectory(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithStubbedTools("mp3"))
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories: %v", err)
	}
	st := testsupport.MustOpenStore(t, cfg)
	cfg.Paths.ScratchDir = "/nonexistent/scratch"

	results := preflight.Run(context.Background(), cfg, st)
	if preflight.Err(results) == nil {
		t.Fatal("expected a failed directory check")
	}
}

func TestRunFailsWithoutStore(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithStubbedTools("mp3"))
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories: %v", err)
	}

	results := preflight.Run(context.Background(), cfg, nil)
	if preflight.Err(results) == nil {
		t.Fatal("expected the store check to fail")
	}
}
