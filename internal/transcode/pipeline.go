package transcode

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"sort"
	"strings"
	"time"

	"audioshare/internal/blob"
	"audioshare/internal/config"
	"audioshare/internal/fileutil"
	"audioshare/internal/logging"
	"audioshare/internal/media/ffprobe"
	"audioshare/internal/services"
)

// allowedFormats is the container/codec allow-list for uploaded audio.
var allowedFormats = map[string]struct{}{
	"mp3":  {},
	"wav":  {},
	"ogg":  {},
	"flac": {},
	"m4a":  {},
	"aac":  {},
	"opus": {},
}

// AllowedFormats returns the allow-list in stable order for error messages.
func AllowedFormats() []string {
	formats := make([]string, 0, len(allowedFormats))
	for format := range allowedFormats {
		formats = append(formats, format)
	}
	sort.Strings(formats)
	return formats
}

// FormatAllowed reports whether the probed container tag passes the gate.
func FormatAllowed(format string) bool {
	_, ok := allowedFormats[format]
	return ok
}

// UnsupportedFormatError reports a probed format outside the allow-list.
type UnsupportedFormatError struct {
	Format string
}

func (e *UnsupportedFormatError) Error() string {
	return fmt.Sprintf("unsupported format %q, must be one of %s", e.Format, strings.Join(AllowedFormats(), ", "))
}

func (e *UnsupportedFormatError) Unwrap() error { return services.ErrUnsupported }

// Result describes the artifacts produced by a completed pipeline run.
type Result struct {
	// AudioType is the retained raw artifact's format tag. Uploads probed as
	// wav come out as flac after normalization.
	AudioType string
	// SampleRate is the first audio stream's sample rate from the probe.
	SampleRate int
	// RawKey and StreamKey are the blob store keys written by the run.
	RawKey    string
	StreamKey string
}

// Pipeline turns an uploaded audio payload into a retained raw artifact and
// an opus streaming derivative in the blob store.
//
// Stages: probe, allow-list validation, wav normalization to 16-bit/44.1kHz
// flac, opus encode, upload. Every stage failure is terminal for the upload;
// scratch files are removed on success and failure alike.
type Pipeline struct {
	cfg    *config.Config
	blobs  blob.Store
	logger *slog.Logger
}

// NewPipeline constructs a transcoding pipeline.
func NewPipeline(cfg *config.Config, blobs blob.Store, logger *slog.Logger) *Pipeline {
	return &Pipeline{
		cfg:    cfg,
		blobs:  blobs,
		logger: logging.NewComponentLogger(logger, "transcode"),
	}
}

func (p *Pipeline) toolTimeout() time.Duration {
	return time.Duration(p.cfg.Transcode.ToolTimeoutSeconds) * time.Second
}

// Run executes the pipeline for one payload. The scratch file is keyed by
// the content fingerprint so concurrent uploads never collide.
func (p *Pipeline) Run(ctx context.Context, payload []byte, fingerprint string, voice bool) (*Result, error) {
	if strings.TrimSpace(fingerprint) == "" {
		return nil, services.Wrap(services.ErrValidation, "transcode", "run", "fingerprint is required", nil)
	}

	scratch := make([]string, 0, 3)
	defer func() {
		if err := fileutil.RemoveQuietly(scratch...); err != nil {
			p.logger.Warn("scratch cleanup incomplete", logging.Error(err))
		}
	}()

	rawPath, err := fileutil.WriteScratch(p.cfg.Paths.ScratchDir, fingerprint, payload)
	if err != nil {
		return nil, services.Wrap(services.ErrStorage, "transcode", "scratch", "write payload", err)
	}
	scratch = append(scratch, rawPath)

	probeCtx, cancel := context.WithTimeout(ctx, p.toolTimeout())
	probed, err := ffprobe.Inspect(probeCtx, p.cfg.FFprobeBinary(), rawPath)
	cancel()
	if err != nil {
		return nil, services.Wrap(services.ErrExternalTool, "transcode", "probe", "", err)
	}

	audioType := probed.FormatName()
	if !FormatAllowed(audioType) {
		return nil, &UnsupportedFormatError{Format: audioType}
	}
	if probed.AudioStreamCount() == 0 {
		return nil, services.Wrap(services.ErrUnsupported, "transcode", "probe", "no audio stream in payload", nil)
	}
	sampleRate := probed.SampleRate()
	if sampleRate <= 0 {
		return nil, services.Wrap(services.ErrExternalTool, "transcode", "probe", "no audio stream sample rate", nil)
	}

	p.logger.Info(
		"payload probed",
		logging.String(logging.FieldFingerprint, fingerprint),
		logging.String("audio_type", audioType),
		logging.Int("sample_rate", sampleRate),
	)

	// wav uploads are normalized to 16-bit/44.1kHz flac before streaming
	// encode; the retained raw artifact is the flac.
	if audioType == "wav" {
		flacPath := rawPath + ".flac"
		scratch = append(scratch, flacPath)
		if err := p.convertToFlac(ctx, rawPath, flacPath); err != nil {
			return nil, err
		}
		rawPath = flacPath
		audioType = "flac"
	}

	opusPath := strings.TrimSuffix(rawPath, ".flac") + ".opus"
	scratch = append(scratch, opusPath)
	if err := p.encodeOpus(ctx, rawPath, opusPath, voice); err != nil {
		return nil, err
	}

	result := &Result{
		AudioType:  audioType,
		SampleRate: sampleRate,
		RawKey:     fingerprint + "." + audioType,
		StreamKey:  fingerprint + ".opus",
	}
	if err := p.upload(ctx, rawPath, result.RawKey, audioType); err != nil {
		return nil, err
	}
	if err := p.upload(ctx, opusPath, result.StreamKey, "opus"); err != nil {
		return nil, err
	}

	p.logger.Info(
		"artifacts uploaded",
		logging.String(logging.FieldFingerprint, fingerprint),
		logging.String("raw_key", result.RawKey),
		logging.String("stream_key", result.StreamKey),
		logging.Bool("voice_profile", voice),
	)
	return result, nil
}

func (p *Pipeline) convertToFlac(ctx context.Context, inPath, outPath string) error {
	args := []string{
		"-y", "-i", inPath,
		"-c:a", "flac",
		"-sample_fmt", "s16",
		"-ar", "44100",
		outPath,
	}
	if _, err := runTool(ctx, p.toolTimeout(), p.cfg.FFmpegBinary(), args...); err != nil {
		return services.Wrap(services.ErrExternalTool, "transcode", "normalize", "wav to flac", err)
	}
	return nil
}

func (p *Pipeline) encodeOpus(ctx context.Context, inPath, outPath string, voice bool) error {
	args := []string{"-y", "-i", inPath, "-c:a", "libopus"}
	if voice {
		args = append(args, "-b:a", "128k", "-ac", "1", "-application", "voip")
	} else {
		args = append(args, "-b:a", "320k")
	}
	args = append(args, "-vn", "-f", "opus", outPath)
	if _, err := runTool(ctx, p.toolTimeout(), p.cfg.FFmpegBinary(), args...); err != nil {
		return services.Wrap(services.ErrExternalTool, "transcode", "encode", "opus derivative", err)
	}
	return nil
}

func (p *Pipeline) upload(ctx context.Context, path, key, audioType string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return services.Wrap(services.ErrStorage, "transcode", "upload", "read artifact", err)
	}
	if err := p.blobs.Put(ctx, key, data, contentTypeFor(audioType)); err != nil {
		return services.Wrap(services.ErrStorage, "transcode", "upload", key, err)
	}
	return nil
}

func contentTypeFor(audioType string) string {
	switch audioType {
	case "mp3":
		return "audio/mpeg"
	case "wav":
		return "audio/wav"
	case "ogg":
		return "audio/ogg"
	case "flac":
		return "audio/flac"
	case "m4a":
		return "audio/mp4"
	case "aac":
		return "audio/aac"
	case "opus":
		return "audio/opus"
	default:
		return "application/octet-stream"
	}
}
