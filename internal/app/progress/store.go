// Package progress persists per-episode playback positions.
package progress

import (
	"strconv"
	"sync"
	"time"

	zlog "github.com/rs/zerolog/log"
)

// DefaultThrottleWindow is how long writes are suppressed after a
// successful save. The window is global across all keys, matching the
// single-audio-element usage pattern: only one episode can produce
// position updates at a time.
const DefaultThrottleWindow = 5 * time.Second

// KV is the persistent key-value interface the store writes through.
type KV interface {
	Get(key string) (string, bool, error)
	Set(key, value string) error
	Remove(key string) error
}

// Store maps an episode progress key to a saved playback offset.
// Save is throttled; Load and Clear are immediate.
type Store struct {
	mu       sync.Mutex
	kv       KV
	window   time.Duration
	lastSave time.Time
	now      func() time.Time
}

// Option configures a Store.
type Option func(*Store)

// WithThrottleWindow overrides the global save throttle window.
func WithThrottleWindow(d time.Duration) Option {
	return func(s *Store) { s.window = d }
}

// WithClock overrides the time source. Used in tests.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// NewStore creates a progress store over the given key-value backend.
func NewStore(kv KV, opts ...Option) *Store {
	s := &Store{
		kv:     kv,
		window: DefaultThrottleWindow,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Save persists the playback offset for key. After a successful write,
// further writes for any key are suppressed until the throttle window
// elapses. Write failures are logged and dropped; progress persistence
// is never allowed to disturb playback.
func (s *Store) Save(key string, offsetSeconds float64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	if !s.lastSave.IsZero() && now.Sub(s.lastSave) < s.window {
		return
	}

	value := strconv.FormatFloat(offsetSeconds, 'f', 3, 64)
	if err := s.kv.Set(key, value); err != nil {
		zlog.Warn().Msgf("progress: failed to save offset: key=%s error=%v", key, err)
		return
	}
	s.lastSave = now
}

// Load returns the saved offset for key, or 0 when no entry exists.
// "Never played" and "played from the start" are indistinguishable;
// both load as 0.
func (s *Store) Load(key string) float64 {
	value, ok, err := s.kv.Get(key)
	if err != nil {
		zlog.Warn().Msgf("progress: failed to load offset: key=%s error=%v", key, err)
		return 0
	}
	if !ok {
		return 0
	}

	offset, err := strconv.ParseFloat(value, 64)
	if err != nil {
		zlog.Warn().Msgf("progress: discarding malformed offset: key=%s value=%q", key, value)
		return 0
	}
	return offset
}

// Clear removes the saved offset for key. Called once, when the
// episode's audio signals natural completion.
func (s *Store) Clear(key string) {
	if err := s.kv.Remove(key); err != nil {
		zlog.Warn().Msgf("progress: failed to clear offset: key=%s error=%v", key, err)
	}
}
