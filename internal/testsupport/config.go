package testsupport

import (
	"os"
	"path/filepath"
	"testing"

	"audioshare/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with unique temp directories per test.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Paths.DataDir = filepath.Join(base, "data")
	cfgVal.Paths.ScratchDir = filepath.Join(base, "scratch")
	cfgVal.Paths.LogDir = filepath.Join(base, "logs")
	cfgVal.Paths.APIBind = "127.0.0.1:0"
	cfgVal.Blob.Bucket = "test-bucket"
	cfgVal.Blob.Region = "test-region"

	builder := &configBuilder{t: t, baseDir: base, cfg: &cfgVal}
	for _, opt := range opts {
		opt(builder)
	}
	return builder.cfg
}

// WithShortIDLength overrides the short identifier length on the test config.
func WithShortIDLength(length int) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Share.ShortIDLength = length
	}
}

// WithToolTimeout overrides the external tool timeout in seconds.
func WithToolTimeout(seconds int) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Transcode.ToolTimeoutSeconds = seconds
	}
}

// WithStubbedTools writes stub ffprobe/ffmpeg executables and points the
// config at them. The ffprobe stub reports the given container format and a
// 44100 Hz mono audio stream; the ffmpeg stub writes a placeholder output
// file.
func WithStubbedTools(format string) ConfigOption {
	return func(b *configBuilder) {
		binDir := filepath.Join(b.baseDir, "bin")
		if err := os.MkdirAll(binDir, 0o755); err != nil {
			b.t.Fatalf("mkdir bin dir: %v", err)
		}

		probeScript := "#!/bin/sh\n" +
			"cat <<'JSON'\n" +
			`{"streams": [{"index": 0, "codec_type": "audio", "sample_rate": "44100", "channels": 1}],` +
			` "format": {"format_name": "` + format + `"}}` + "\n" +
			"JSON\n"
		ffmpegScript := "#!/bin/sh\n" +
			"for last; do :; done\n" +
			"printf 'encoded' > \"$last\"\n"

		probePath := filepath.Join(binDir, "ffprobe")
		ffmpegPath := filepath.Join(binDir, "ffmpeg")
		if err := os.WriteFile(probePath, []byte(probeScript), 0o755); err != nil {
			b.t.Fatalf("write ffprobe stub: %v", err)
		}
		if err := os.WriteFile(ffmpegPath, []byte(ffmpegScript), 0o755); err != nil {
			b.t.Fatalf("write ffmpeg stub: %v", err)
		}
		b.cfg.Transcode.FFprobeBinary = probePath
		b.cfg.Transcode.FFmpegBinary = ffmpegPath
	}
}

// WithProbeJSON replaces the ffprobe stub with one that prints the given
// JSON verbatim, for probe results WithStubbedTools cannot express.
func WithProbeJSON(probeJSON string) ConfigOption {
	return func(b *configBuilder) {
		binDir := filepath.Join(b.baseDir, "bin")
		if err := os.MkdirAll(binDir, 0o755); err != nil {
			b.t.Fatalf("mkdir bin dir: %v", err)
		}
		script := "#!/bin/sh\ncat <<'JSON'\n" + probeJSON + "\nJSON\n"
		probePath := filepath.Join(binDir, "ffprobe")
		if err := os.WriteFile(probePath, []byte(script), 0o755); err != nil {
			b.t.Fatalf("write ffprobe stub: %v", err)
		}
		b.cfg.Transcode.FFprobeBinary = probePath
	}
}

// WithFailingEncoder replaces the ffmpeg stub with one that exits non-zero.
func WithFailingEncoder() ConfigOption {
	return func(b *configBuilder) {
		binDir := filepath.Join(b.baseDir, "bin")
		if err := os.MkdirAll(binDir, 0o755); err != nil {
			b.t.Fatalf("mkdir bin dir: %v", err)
		}
		script := "#!/bin/sh\necho 'encoder exploded' >&2\nexit 1\n"
		ffmpegPath := filepath.Join(binDir, "ffmpeg")
		if err := os.WriteFile(ffmpegPath, []byte(script), 0o755); err != nil {
			b.t.Fatalf("write failing ffmpeg stub: %v", err)
		}
		b.cfg.Transcode.FFmpegBinary = ffmpegPath
	}
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Paths.DataDir)
}
