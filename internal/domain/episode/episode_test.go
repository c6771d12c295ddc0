package episode

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFeed_EpisodeIDs(t *testing.T) {
	tests := []struct {
		name     string
		episodes []Episode
		expected []string
	}{
		{
			name:     "empty feed",
			episodes: []Episode{},
			expected: []string{},
		},
		{
			name: "single episode",
			episodes: []Episode{
				{ID: "ep-1"},
			},
			expected: []string{"ep-1"},
		},
		{
			name: "multiple episodes keep feed order",
			episodes: []Episode{
				{ID: "ep-1"},
				{ID: "ep-2"},
				{ID: "ep-3"},
			},
			expected: []string{"ep-1", "ep-2", "ep-3"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := &Feed{
				Title:    "Test Feed",
				Episodes: tt.episodes,
			}

			assert.Equal(t, tt.expected, f.EpisodeIDs())
		})
	}
}

func TestEpisode_ProgressKey(t *testing.T) {
	published := time.Date(2025, 8, 26, 9, 0, 0, 0, time.UTC)
	e := Episode{
		ID:          "ep-42",
		Title:       "Episode 42",
		AudioURL:    "https://example.com/ep42.mp3",
		PublishedAt: &published,
	}

	assert.Equal(t, "https://example.com/ep42.mp3", e.ProgressKey())
}
