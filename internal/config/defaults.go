package config

const (
	defaultDataDir           = "~/.local/share/audioshare"
	defaultScratchDir        = "~/.cache/audioshare/scratch"
	defaultLogDir            = "~/.local/share/audioshare/logs"
	defaultAPIBind           = "127.0.0.1:8045"
	defaultShortIDLength     = 6
	defaultMaxAudioBytes     = 100 * 1024 * 1024
	defaultMaxProjectBytes   = 10 * 1024 * 1024
	defaultExpireDays        = 3
	defaultMaxExpireDays     = 7
	defaultPresignTTLSeconds = 30
	defaultBucket            = "audio-share"
	defaultRegion            = "ap-shanghai"
	defaultToolTimeout       = 60
	defaultLogFormat         = "console"
	defaultLogLevel          = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			DataDir:    defaultDataDir,
			ScratchDir: defaultScratchDir,
			LogDir:     defaultLogDir,
			APIBind:    defaultAPIBind,
		},
		Share: Share{
			ShortIDLength:     defaultShortIDLength,
			MaxAudioBytes:     defaultMaxAudioBytes,
			MaxProjectBytes:   defaultMaxProjectBytes,
			DefaultExpireDays: defaultExpireDays,
			MaxExpireDays:     defaultMaxExpireDays,
			PresignTTLSeconds: defaultPresignTTLSeconds,
		},
		Blob: Blob{
			Bucket: defaultBucket,
			Region: defaultRegion,
		},
		Transcode: Transcode{
			FFmpegBinary:       "ffmpeg",
			FFprobeBinary:      "ffprobe",
			ToolTimeoutSeconds: defaultToolTimeout,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
