// Package coordinator drives the announce-then-resume playback sequence
// across episode transitions.
package coordinator

// State represents the playback state of the current episode activation.
type State int

const (
	StateIdle                 State = iota // Nothing playing, nothing pending
	StateAwaitingBuffer                    // Skip requested, waiting for the stream to become playable
	StateAnnouncing                        // Announcement speaking, audio paused
	StateResuming                          // Announcement done, seeking and starting audio
	StatePlaying                           // Audio playing
	StatePaused                            // Paused by user or playback-start rejection
	StatePausedByInterruption              // Announcement interrupted; playback must not auto-resume
)

// String returns the string representation of the state.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateAwaitingBuffer:
		return "awaiting_buffer"
	case StateAnnouncing:
		return "announcing"
	case StateResuming:
		return "resuming"
	case StatePlaying:
		return "playing"
	case StatePaused:
		return "paused"
	case StatePausedByInterruption:
		return "paused_by_interruption"
	default:
		return "unknown"
	}
}
