// Package speech provides speech-synthesis device implementations.
// A device accepts one utterance at a time and reports its lifecycle
// through an event channel; exclusivity and retry policy live above it,
// in the announcement engine.
package speech

// EventType represents a device lifecycle event type.
type EventType int

const (
	EventStart EventType = iota // Utterance started
	EventEnd                    // Utterance reached its natural end
	EventError                  // Synthesis failed
	EventPause                  // Utterance was paused by another actor
	EventAbort                  // Utterance was canceled
)

// String returns the string representation of the event type.
func (e EventType) String() string {
	switch e {
	case EventStart:
		return "start"
	case EventEnd:
		return "end"
	case EventError:
		return "error"
	case EventPause:
		return "pause"
	case EventAbort:
		return "abort"
	default:
		return "unknown"
	}
}

// Event represents a device lifecycle event.
type Event struct {
	Type EventType
	Err  error // Set for EventError
}

// Voice represents an available synthesis voice.
type Voice struct {
	Name     string // Voice identifier, e.g. "en-GB"
	Language string // Language code
}

// Utterance is a request to speak text.
type Utterance struct {
	Text  string
	Voice string // Empty selects the platform default
}

// Device is the interface for speech-synthesis backends.
// Speak starts an utterance without blocking; completion, failure and
// cancellation arrive on Events. Voice enumeration may finish after
// construction, signalled via VoicesChanged.
type Device interface {
	Speak(u Utterance) error
	Cancel()
	Events() <-chan Event
	Voices() []Voice
	VoicesChanged() <-chan struct{}
}
