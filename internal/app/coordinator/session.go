package coordinator

import (
	"github.com/google/uuid"

	"github.com/DustyBest/podbox/internal/domain/episode"
)

// session holds the per-activation playback flags. A fresh session is
// created in the same critical section as every episode-identity change,
// which is what resets announced before any other path can observe the
// new episode.
type session struct {
	activationID string
	episodeID    string
	progressKey  string
	savedOffset  float64

	// announced flips false to true exactly once per activation. The
	// claimant must set it under the coordinator lock before any work
	// that can yield.
	announced bool

	// skipPending is set from the moment a skip is requested until the
	// new stream signals it can play; it gates the resume-after-buffer
	// path entirely.
	skipPending bool

	// readyArmed makes the buffer-ready subscription single-shot: it is
	// cleared on first delivery, so a repeated ready signal cannot
	// trigger a duplicate announcement.
	readyArmed bool
}

func newSession(ep episode.Episode) *session {
	return &session{
		activationID: uuid.New().String(),
		episodeID:    ep.ID,
		progressKey:  ep.ProgressKey(),
		readyArmed:   true,
	}
}
