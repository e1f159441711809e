package config

import (
	"errors"
	"fmt"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateShare(); err != nil {
		return err
	}
	if err := c.validateBlob(); err != nil {
		return err
	}
	if err := c.validateTranscode(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateShare() error {
	if c.Share.ShortIDLength < 4 || c.Share.ShortIDLength > 16 {
		return fmt.Errorf("share.short_id_length must be between 4 and 16, got %d", c.Share.ShortIDLength)
	}
	if c.Share.MaxAudioBytes <= 0 {
		return errors.New("share.max_audio_bytes must be positive")
	}
	if c.Share.MaxProjectBytes <= 0 {
		return errors.New("share.max_project_bytes must be positive")
	}
	if c.Share.MaxExpireDays <= 0 {
		return errors.New("share.max_expire_days must be positive")
	}
	if c.Share.DefaultExpireDays <= 0 || c.Share.DefaultExpireDays > c.Share.MaxExpireDays {
		return fmt.Errorf("share.default_expire_days must be within [1,%d], got %d", c.Share.MaxExpireDays, c.Share.DefaultExpireDays)
	}
	if c.Share.PresignTTLSeconds <= 0 {
		return errors.New("share.presign_ttl_seconds must be positive")
	}
	return nil
}

func (c *Config) validateBlob() error {
	if c.Blob.Bucket == "" {
		return errors.New("blob.bucket must be set")
	}
	if c.Blob.Region == "" && c.Blob.Endpoint == "" {
		return errors.New("blob.region or blob.endpoint must be set")
	}
	return nil
}

func (c *Config) validateTranscode() error {
	if c.Transcode.ToolTimeoutSeconds <= 0 {
		return errors.New("transcode.tool_timeout_seconds must be positive")
	}
	return nil
}
