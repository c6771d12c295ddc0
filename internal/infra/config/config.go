// Package config provides configuration loading from YAML files.
package config

import (
	"os"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Config represents the application configuration.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Feed     FeedConfig     `yaml:"feed"`
	Playback PlaybackConfig `yaml:"playback"`
	Speech   SpeechConfig   `yaml:"speech"`
	Audio    AudioConfig    `yaml:"audio"`
	Storage  StorageConfig  `yaml:"storage"`
}

// ServerConfig represents the control API server configuration.
type ServerConfig struct {
	Addr string `yaml:"addr" default:":8080"`
}

// FeedConfig represents the episode source configuration.
type FeedConfig struct {
	URL            string `yaml:"url" validate:"required,url"`
	FetchTimeoutMs int    `yaml:"fetch_timeout_ms" default:"15000" validate:"gte=1000,lte=120000"`
}

// PlaybackConfig represents playback coordination configuration.
type PlaybackConfig struct {
	HardwareResumeDelayMs int `yaml:"hardware_resume_delay_ms" default:"250" validate:"gte=0,lte=5000"`
	SaveThrottleSec       int `yaml:"save_throttle_sec" default:"5" validate:"gte=1,lte=60"`
}

// SpeechConfig represents announcement configuration.
type SpeechConfig struct {
	PreferredVoice string             `yaml:"preferred_voice"`
	Farewell       string             `yaml:"farewell"`
	Device         SpeechDeviceConfig `yaml:"device"`
}

// SpeechDeviceConfig represents a speech device configuration.
type SpeechDeviceConfig struct {
	Type     string         `yaml:"type" default:"command"`
	Settings map[string]any `yaml:"settings,omitempty"`
}

// AudioConfig represents the audio backend configuration.
type AudioConfig struct {
	MPVPath        string `yaml:"mpv_path" default:"mpv"`
	SocketPath     string `yaml:"socket_path"`
	PollIntervalMs int    `yaml:"poll_interval_ms" default:"500" validate:"gte=100,lte=5000"`
}

// StorageConfig represents progress persistence configuration.
type StorageConfig struct {
	Path string `yaml:"path" default:"podbox.db"`
}

// Load loads configuration from a YAML file.
// Environment variables take precedence over file values.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read config file")
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, errors.Wrap(err, "failed to parse config file")
	}

	// Override with environment variables
	cfg.overrideFromEnv()

	// Set defaults using creasty/defaults
	if err := defaults.Set(&cfg); err != nil {
		return nil, errors.Wrap(err, "failed to set defaults")
	}

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "config validation failed")
	}

	return &cfg, nil
}

// overrideFromEnv overrides config values with environment variables.
func (c *Config) overrideFromEnv() {
	if v := os.Getenv("PODBOX_FEED_URL"); v != "" {
		c.Feed.URL = v
	}
	if v := os.Getenv("PODBOX_STORAGE_PATH"); v != "" {
		c.Storage.Path = v
	}
	if v := os.Getenv("PODBOX_ADDR"); v != "" {
		c.Server.Addr = v
	}
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	validate := validator.New()
	if err := validate.Struct(c); err != nil {
		return errors.Wrap(err, "struct validation failed")
	}
	return nil
}

// HardwareResumeDelay returns the hardware skip resume delay.
func (c *Config) HardwareResumeDelay() time.Duration {
	return time.Duration(c.Playback.HardwareResumeDelayMs) * time.Millisecond
}

// SaveThrottle returns the progress save throttle window.
func (c *Config) SaveThrottle() time.Duration {
	return time.Duration(c.Playback.SaveThrottleSec) * time.Second
}

// FetchTimeout returns the feed fetch timeout.
func (c *Config) FetchTimeout() time.Duration {
	return time.Duration(c.Feed.FetchTimeoutMs) * time.Millisecond
}

// AudioPollInterval returns the audio position poll interval.
func (c *Config) AudioPollInterval() time.Duration {
	return time.Duration(c.Audio.PollIntervalMs) * time.Millisecond
}
