// Package sequencer provides the ordered episode list with a wrapping cursor.
package sequencer

import (
	"sync"

	"github.com/DustyBest/podbox/internal/domain/episode"
)

// Sequencer holds the ordered episode list and the current index.
// Advance and Retreat wrap modulo the list length. Operating on an empty
// list leaves the index unchanged.
type Sequencer struct {
	mu       sync.RWMutex
	episodes []episode.Episode
	index    int
}

// New creates an empty sequencer.
func New() *Sequencer {
	return &Sequencer{
		episodes: make([]episode.Episode, 0),
	}
}

// Replace swaps in a freshly fetched episode list and resets the cursor.
func (s *Sequencer) Replace(eps []episode.Episode) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.episodes = make([]episode.Episode, len(eps))
	copy(s.episodes, eps)
	s.index = 0
}

// Advance moves the cursor forward, wrapping past the last episode,
// and returns the new index.
func (s *Sequencer) Advance() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.episodes) == 0 {
		return s.index
	}
	s.index = (s.index + 1) % len(s.episodes)
	return s.index
}

// Retreat moves the cursor backward, wrapping from index 0 to the last
// episode, and returns the new index.
func (s *Sequencer) Retreat() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.episodes) == 0 {
		return s.index
	}
	s.index = (s.index - 1 + len(s.episodes)) % len(s.episodes)
	return s.index
}

// Current returns the episode under the cursor.
func (s *Sequencer) Current() (episode.Episode, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if len(s.episodes) == 0 {
		return episode.Episode{}, false
	}
	return s.episodes[s.index], true
}

// Index returns the current cursor position.
func (s *Sequencer) Index() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.index
}

// Len returns the number of episodes.
func (s *Sequencer) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.episodes)
}

// IsLast returns true if the cursor is on the final episode.
func (s *Sequencer) IsLast() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if len(s.episodes) == 0 {
		return false
	}
	return s.index == len(s.episodes)-1
}
