package coordinator

import "github.com/DustyBest/podbox/internal/domain/episode"

// EventType represents a coordinator event type.
type EventType int

const (
	EventEpisodeChanged EventType = iota // The active episode changed
	EventStateChanged                    // Playback state changed
	EventPlaylistEnded                   // The last episode finished; no further advance
)

// String returns the string representation of the event type.
func (e EventType) String() string {
	switch e {
	case EventEpisodeChanged:
		return "episode_changed"
	case EventStateChanged:
		return "state_changed"
	case EventPlaylistEnded:
		return "playlist_ended"
	default:
		return "unknown"
	}
}

// Event represents a coordinator event.
type Event struct {
	Type    EventType
	Episode *episode.Episode // Active episode (nil for some events)
	State   State            // Current playback state
}
