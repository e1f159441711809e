package ffprobe

import (
	"encoding/json"
	"testing"
)

func TestResultHelpers(t *testing.T) {
	result := Result{
		Streams: []Stream{
			{CodecType: "video"},
			{CodecType: "audio", SampleRate: "44100", Channels: 2},
			{CodecType: "audio", SampleRate: "48000", Channels: 1},
		},
		Format: Format{FormatName: "wav"},
	}
	if result.AudioStreamCount() != 2 {
		t.Fatalf("expected 2 audio streams, got %d", result.AudioStreamCount())
	}
	stream := result.FirstAudioStream()
	if stream == nil || stream.SampleRate != "44100" {
		t.Fatalf("unexpected first audio stream: %#v", stream)
	}
	if result.SampleRate() != 44100 {
		t.Fatalf("unexpected sample rate: %d", result.SampleRate())
	}
	if result.FormatName() != "wav" {
		t.Fatalf("unexpected format name: %q", result.FormatName())
	}
}

func TestResultHelpersHandleMissingAudio(t *testing.T) {
	result := Result{
		Streams: []Stream{{CodecType: "video"}},
		Format:  Format{FormatName: " mp3 "},
	}
	if result.FirstAudioStream() != nil {
		t.Fatal("expected no audio stream")
	}
	if result.SampleRate() != 0 {
		t.Fatalf("expected sample rate 0, got %d", result.SampleRate())
	}
	if result.FormatName() != "mp3" {
		t.Fatalf("expected trimmed format name, got %q", result.FormatName())
	}
}

func TestResultHelpersHandleInvalidSampleRate(t *testing.T) {
	result := Result{
		Streams: []Stream{{CodecType: "audio", SampleRate: "bad"}},
	}
	if result.SampleRate() != 0 {
		t.Fatalf("expected sample rate 0 for malformed value, got %d", result.SampleRate())
	}
}

func TestResultDecodesProbeJSON(t *testing.T) {
	payload := `{
        "streams": [{"index": 0, "codec_name": "pcm_s16le", "codec_type": "audio", "sample_rate": "44100", "channels": 1}],
        "format": {"filename": "in.wav", "nb_streams": 1, "format_name": "wav"}
    }`
	var result Result
	if err := json.Unmarshal([]byte(payload), &result); err != nil {
		t.Fatalf("decode probe payload: %v", err)
	}
	if result.Format.FormatName != "wav" {
		t.Fatalf("unexpected format: %q", result.Format.FormatName)
	}
	if result.SampleRate() != 44100 {
		t.Fatalf("unexpected sample rate: %d", result.SampleRate())
	}
	if stream := result.FirstAudioStream(); stream == nil || stream.CodecName != "pcm_s16le" {
		t.Fatalf("unexpected stream: %#v", stream)
	}
}
