// Package audio abstracts the audio output element: one loaded stream
// with seek, pause and lifecycle events.
package audio

// EventType represents an audio element lifecycle event type.
type EventType int

const (
	EventReady    EventType = iota // Loaded stream can start playback
	EventEnded                     // Stream reached its natural end
	EventPosition                  // Periodic position update
)

// String returns the string representation of the event type.
func (e EventType) String() string {
	switch e {
	case EventReady:
		return "ready"
	case EventEnded:
		return "ended"
	case EventPosition:
		return "position"
	default:
		return "unknown"
	}
}

// Event represents an audio element lifecycle event.
type Event struct {
	Type     EventType
	Position float64 // Seconds; set for EventPosition
}

// Element is the interface for audio output backends.
// Load prepares a stream without starting it; EventReady follows once
// playback can begin. Play may fail (device or policy denial) without
// being fatal to the session.
type Element interface {
	Load(url string) error
	Play() error
	Pause() error
	Seek(seconds float64) error
	Position() (float64, error)
	Events() <-chan Event
	Close() error
}
