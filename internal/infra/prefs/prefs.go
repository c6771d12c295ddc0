// Package prefs handles user preferences persistence.
// Preferences are stored in ~/.config/podbox/prefs.toml.
package prefs

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/cockroachdb/errors"
	toml "github.com/pelletier/go-toml/v2"
)

// Prefs holds user preferences that override config defaults.
type Prefs struct {
	PreferredVoice string  `toml:"preferred_voice"`
	PlaybackRate   float64 `toml:"playback_rate"`
}

const defaultPlaybackRate = 1.0

// DefaultPath returns the default preferences file path.
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", errors.Wrap(err, "failed to resolve user config dir")
	}
	return filepath.Join(dir, "podbox", "prefs.toml"), nil
}

func defaults() Prefs {
	return Prefs{PlaybackRate: defaultPlaybackRate}
}

// Load reads preferences from the given path. A missing or corrupt file
// degrades to defaults; preferences are never load-bearing.
func Load(path string) Prefs {
	p := defaults()

	data, err := os.ReadFile(path)
	if err != nil {
		return p
	}

	if err := toml.Unmarshal(data, &p); err != nil {
		return defaults()
	}

	if p.PlaybackRate <= 0 {
		p.PlaybackRate = defaultPlaybackRate
	}
	p.PreferredVoice = strings.TrimSpace(p.PreferredVoice)

	return p
}

// Save writes preferences to the given path, creating directories as needed.
func Save(path string, p Prefs) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return errors.Wrap(err, "failed to create prefs dir")
	}

	data, err := toml.Marshal(p)
	if err != nil {
		return errors.Wrap(err, "failed to marshal prefs")
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return errors.Wrap(err, "failed to write prefs file")
	}
	return nil
}
