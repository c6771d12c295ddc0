package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoad_ValidConfig(t *testing.T) {
	path := writeConfig(t, `
feed:
  url: https://example.com/feed.xml
speech:
  preferred_voice: english
  device:
    type: command
    settings:
      command: espeak-ng
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "https://example.com/feed.xml", cfg.Feed.URL)
	assert.Equal(t, "english", cfg.Speech.PreferredVoice)
	assert.Equal(t, "command", cfg.Speech.Device.Type)

	// Defaults fill the rest.
	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, "podbox.db", cfg.Storage.Path)
	assert.Equal(t, "mpv", cfg.Audio.MPVPath)
	assert.Equal(t, 250*time.Millisecond, cfg.HardwareResumeDelay())
	assert.Equal(t, 5*time.Second, cfg.SaveThrottle())
	assert.Equal(t, 15*time.Second, cfg.FetchTimeout())
	assert.Equal(t, 500*time.Millisecond, cfg.AudioPollInterval())
}

func TestLoad_MissingFeedURL(t *testing.T) {
	path := writeConfig(t, `
server:
  addr: ":9090"
`)

	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoad_InvalidFeedURL(t *testing.T) {
	path := writeConfig(t, `
feed:
  url: not-a-url
`)

	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestLoad_MalformedYAML(t *testing.T) {
	path := writeConfig(t, "feed: [unclosed")

	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoad_EnvOverrides(t *testing.T) {
	path := writeConfig(t, `
feed:
  url: https://example.com/feed.xml
`)

	t.Setenv("PODBOX_FEED_URL", "https://override.example.com/feed.xml")
	t.Setenv("PODBOX_ADDR", ":7070")
	t.Setenv("PODBOX_STORAGE_PATH", "/tmp/override.db")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "https://override.example.com/feed.xml", cfg.Feed.URL)
	assert.Equal(t, ":7070", cfg.Server.Addr)
	assert.Equal(t, "/tmp/override.db", cfg.Storage.Path)
}

func TestLoad_ValidationBounds(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr bool
	}{
		{
			name: "hardware resume delay too large",
			content: `
feed:
  url: https://example.com/feed.xml
playback:
  hardware_resume_delay_ms: 10000
`,
			wantErr: true,
		},
		{
			name: "poll interval too small",
			content: `
feed:
  url: https://example.com/feed.xml
audio:
  poll_interval_ms: 10
`,
			wantErr: true,
		},
		{
			name: "values at bounds",
			content: `
feed:
  url: https://example.com/feed.xml
playback:
  hardware_resume_delay_ms: 5000
  save_throttle_sec: 60
audio:
  poll_interval_ms: 100
`,
			wantErr: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.content))
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
