// Package ffprobe provides a typed wrapper around ffprobe JSON output.
//
// This package has no audioshare-specific dependencies and could be
// extracted as a standalone library.
//
// Primary entry point:
//   - Inspect: executes ffprobe and returns a parsed Result
//
// Helper methods on Result expose the container format tag and the first
// audio stream's sample rate, which is what ingestion validation needs.
package ffprobe
