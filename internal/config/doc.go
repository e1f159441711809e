// Package config loads, normalizes, and validates the TOML configuration
// shared by the audioshared daemon and the audioshare CLI.
//
// Configuration resolution order: an explicit path, then
// ~/.config/audioshare/config.toml, then ./audioshare.toml. Missing files
// fall back to Default values; CreateSample writes a starter file.
package config
