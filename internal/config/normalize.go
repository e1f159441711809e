package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeBlob()
	c.normalizeShare()
	c.normalizeTranscode()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if c.Paths.DataDir, err = expandPath(c.Paths.DataDir); err != nil {
		return fmt.Errorf("paths.data_dir: %w", err)
	}
	if c.Paths.ScratchDir, err = expandPath(c.Paths.ScratchDir); err != nil {
		return fmt.Errorf("paths.scratch_dir: %w", err)
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	c.Paths.APIBind = strings.TrimSpace(c.Paths.APIBind)
	if c.Paths.APIBind == "" {
		c.Paths.APIBind = defaultAPIBind
	}
	return nil
}

func (c *Config) normalizeBlob() {
	c.Blob.Bucket = strings.TrimSpace(c.Blob.Bucket)
	c.Blob.Region = strings.TrimSpace(c.Blob.Region)
	c.Blob.Endpoint = strings.TrimSpace(c.Blob.Endpoint)
	if c.Blob.AccessKeyID == "" {
		if value, ok := os.LookupEnv("AUDIOSHARE_ACCESS_KEY_ID"); ok {
			c.Blob.AccessKeyID = value
		}
	}
	if c.Blob.SecretAccessKey == "" {
		if value, ok := os.LookupEnv("AUDIOSHARE_SECRET_ACCESS_KEY"); ok {
			c.Blob.SecretAccessKey = value
		}
	}
}

func (c *Config) normalizeShare() {
	if c.Share.ShortIDLength == 0 {
		c.Share.ShortIDLength = defaultShortIDLength
	}
	if c.Share.MaxAudioBytes == 0 {
		c.Share.MaxAudioBytes = defaultMaxAudioBytes
	}
	if c.Share.MaxProjectBytes == 0 {
		c.Share.MaxProjectBytes = defaultMaxProjectBytes
	}
	if c.Share.DefaultExpireDays == 0 {
		c.Share.DefaultExpireDays = defaultExpireDays
	}
	if c.Share.MaxExpireDays == 0 {
		c.Share.MaxExpireDays = defaultMaxExpireDays
	}
	if c.Share.PresignTTLSeconds == 0 {
		c.Share.PresignTTLSeconds = defaultPresignTTLSeconds
	}
}

func (c *Config) normalizeTranscode() {
	c.Transcode.FFmpegBinary = strings.TrimSpace(c.Transcode.FFmpegBinary)
	c.Transcode.FFprobeBinary = strings.TrimSpace(c.Transcode.FFprobeBinary)
	if c.Transcode.ToolTimeoutSeconds == 0 {
		c.Transcode.ToolTimeoutSeconds = defaultToolTimeout
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
