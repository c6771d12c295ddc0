package announce

import (
	"fmt"
	"time"
)

// ContinuationThresholdSeconds is the saved offset above which a resumed
// episode is announced as a continuation. Smaller offsets are treated as
// starting fresh, so a negligible rewind does not say "Continuing".
const ContinuationThresholdSeconds = 2

// Continuing reports whether a saved offset counts as a continuation.
func Continuing(savedOffsetSeconds float64) bool {
	return savedOffsetSeconds > ContinuationThresholdSeconds
}

// Inputs describes the episode context an announcement speaks.
type Inputs struct {
	Name         string     // Episode title, or the full message when Verbatim
	IsContinuing bool       // Resuming from a non-trivial offset
	PublishedAt  *time.Time // Publish timestamp, nil when the feed omits it
	Verbatim     bool       // Speak Name as-is, with no framing
}

// SpokenText builds the announcement text.
func SpokenText(in Inputs) string {
	if in.Verbatim {
		return in.Name
	}

	if in.PublishedAt != nil {
		weekday := in.PublishedAt.Weekday().String()
		clock := in.PublishedAt.Format("3:04 PM")
		if in.IsContinuing {
			return fmt.Sprintf("Continuing %s, from %s at %s.", in.Name, weekday, clock)
		}
		return fmt.Sprintf("From %s, on %s at %s.", in.Name, weekday, clock)
	}

	return fmt.Sprintf("From %s.", in.Name)
}
