package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Config holds the daemon configuration.
type Config struct {
	ListenAddr string `json:"listen_addr"`

	// Playlist source: a URL takes precedence over a local path.
	PlaylistURL  string `json:"playlist_url"`
	PlaylistPath string `json:"playlist_path"`

	// AudioDevice selects the playback backend: "speaker" renders
	// audio on the host, "virtual" keeps transport state without a
	// sound card.
	AudioDevice string `json:"audio_device"`

	Gallery GalleryConfig `json:"gallery"`

	RedisAddr string `json:"redis_addr"`
}

// GalleryConfig wires the image listing to an S3-compatible bucket.
// R2 works through the same client with a custom endpoint.
type GalleryConfig struct {
	Enabled         bool   `json:"enabled"`
	Endpoint        string `json:"endpoint"`
	Region          string `json:"region"`
	Bucket          string `json:"bucket"`
	Prefix          string `json:"prefix"`
	AccessKeyID     string `json:"access_key_id"`
	SecretAccessKey string `json:"secret_access_key"`
	PublicURL       string `json:"public_url"`
	ResizerURL      string `json:"resizer_url"`
}

// GetDefaultConfig returns default configuration
func GetDefaultConfig() *Config {
	return &Config{
		ListenAddr:   ":8080",
		PlaylistPath: "playlist.json",
		AudioDevice:  "virtual",
		Gallery: GalleryConfig{
			Region: "auto",
		},
	}
}

// LoadConfig reads and unmarshals configuration from file
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			cfg := GetDefaultConfig()
			cfg.applyEnv()
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := GetDefaultConfig()
	if err := json.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	config.applyEnv()
	return config, nil
}

// SaveConfig marshals and saves configuration to file
func SaveConfig(config *Config, path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := json.MarshalIndent(config, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// LoadOrCreate loads config from path or creates default if not exists
func LoadOrCreate(path string) (*Config, error) {
	config, err := LoadConfig(path)
	if err != nil {
		return nil, err
	}

	// Save default config if file didn't exist
	if _, err := os.Stat(path); os.IsNotExist(err) {
		if err := SaveConfig(config, path); err != nil {
			return nil, fmt.Errorf("failed to save default config: %w", err)
		}
	}

	return config, nil
}

// GetConfigPath returns the default config file path
func GetConfigPath() string {
	// Check environment variable first
	if path := os.Getenv("WEBDESK_CONFIG"); path != "" {
		return path
	}

	if xdgConfig := os.Getenv("XDG_CONFIG_HOME"); xdgConfig != "" {
		return filepath.Join(xdgConfig, "webdesk", "config.json")
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "./config.json"
	}

	return filepath.Join(home, ".config", "webdesk", "config.json")
}

// applyEnv overlays environment variables on top of the file values.
// Secrets in particular are expected to arrive this way rather than
// sitting in the config file.
func (c *Config) applyEnv() {
	setenv(&c.ListenAddr, "WEBDESK_LISTEN_ADDR")
	setenv(&c.PlaylistURL, "WEBDESK_PLAYLIST_URL")
	setenv(&c.PlaylistPath, "WEBDESK_PLAYLIST_PATH")
	setenv(&c.AudioDevice, "WEBDESK_AUDIO_DEVICE")
	setenv(&c.RedisAddr, "WEBDESK_REDIS_ADDR")

	setenv(&c.Gallery.Endpoint, "WEBDESK_S3_ENDPOINT")
	setenv(&c.Gallery.Region, "WEBDESK_S3_REGION")
	setenv(&c.Gallery.Bucket, "WEBDESK_S3_BUCKET")
	setenv(&c.Gallery.Prefix, "WEBDESK_S3_PREFIX")
	setenv(&c.Gallery.AccessKeyID, "WEBDESK_S3_ACCESS_KEY_ID")
	setenv(&c.Gallery.SecretAccessKey, "WEBDESK_S3_SECRET_ACCESS_KEY")
	setenv(&c.Gallery.PublicURL, "WEBDESK_GALLERY_PUBLIC_URL")
	setenv(&c.Gallery.ResizerURL, "WEBDESK_GALLERY_RESIZER_URL")
	if c.Gallery.Bucket != "" {
		c.Gallery.Enabled = true
	}
}

func setenv(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}
