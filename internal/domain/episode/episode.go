// Package episode provides the Episode domain entity.
package episode

import "time"

// Episode represents a single podcast episode.
// Contains only information retrieved from the feed.
type Episode struct {
	ID          string     // Feed GUID, stable across fetches
	Title       string     // Episode title
	AudioURL    string     // Enclosure URL; unique, doubles as the progress key
	ArtworkURL  string     // Episode or feed artwork URL (optional)
	PublishedAt *time.Time // Publish timestamp (nil if the feed omits it)
}

// ProgressKey returns the key under which playback progress is saved.
func (e *Episode) ProgressKey() string {
	return e.AudioURL
}

// Feed represents one ordered fetch of episodes.
type Feed struct {
	Title    string    // Feed title
	Episodes []Episode // Episodes in feed order
}

// EpisodeIDs returns all episode IDs in feed order.
func (f *Feed) EpisodeIDs() []string {
	ids := make([]string, len(f.Episodes))
	for i, e := range f.Episodes {
		ids[i] = e.ID
	}
	return ids
}
