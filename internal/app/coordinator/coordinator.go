package coordinator

import (
	"context"
	"sync"
	"time"

	zlog "github.com/rs/zerolog/log"

	"github.com/DustyBest/podbox/internal/app/announce"
	"github.com/DustyBest/podbox/internal/app/progress"
	"github.com/DustyBest/podbox/internal/app/sequencer"
	"github.com/DustyBest/podbox/internal/domain/episode"
	"github.com/DustyBest/podbox/internal/infra/audio"
)

// DefaultFarewellText is spoken verbatim when the last episode ends.
const DefaultFarewellText = "That's all for today. See you next time!"

// DefaultHardwareResumeDelay bounds how soon after a hardware skip a
// playback resume attempt is issued, independent of the announce flow.
const DefaultHardwareResumeDelay = 250 * time.Millisecond

// SkipSource identifies where a skip request came from.
type SkipSource int

const (
	SourceUI       SkipSource = iota // In-app control
	SourceHardware                   // Hardware button or lock-screen control
)

// String returns the string representation of the skip source.
func (s SkipSource) String() string {
	switch s {
	case SourceUI:
		return "ui"
	case SourceHardware:
		return "hardware"
	default:
		return "unknown"
	}
}

// Config holds coordinator configuration.
type Config struct {
	HardwareResumeDelay time.Duration // Delay before the post-hardware-skip resume nudge
	FarewellText        string        // Spoken when the playlist ends
}

// Coordinator reacts to play, skip and track-end triggers and drives a
// single announce-seek-play sequence per episode transition. At most one
// announcement fires per activation regardless of which trigger paths
// race; the winner sets the announced flag under the lock before doing
// anything that can yield.
type Coordinator struct {
	mu sync.Mutex

	seq      *sequencer.Sequencer
	progress *progress.Store
	engine   *announce.Engine
	audio    audio.Element

	config Config
	sess   *session
	state  State

	eventCh chan Event

	ctx    context.Context
	cancel context.CancelFunc
}

// New creates a coordinator over the given collaborators.
func New(seq *sequencer.Sequencer, store *progress.Store, engine *announce.Engine, element audio.Element, config Config) *Coordinator {
	if config.HardwareResumeDelay <= 0 {
		config.HardwareResumeDelay = DefaultHardwareResumeDelay
	}
	if config.FarewellText == "" {
		config.FarewellText = DefaultFarewellText
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &Coordinator{
		seq:      seq,
		progress: store,
		engine:   engine,
		audio:    element,
		config:   config,
		state:    StateIdle,
		eventCh:  make(chan Event, 10),
		ctx:      ctx,
		cancel:   cancel,
	}
}

// Start begins consuming audio element events.
func (c *Coordinator) Start() {
	go c.run()
}

// Events returns the coordinator event channel.
func (c *Coordinator) Events() <-chan Event {
	return c.eventCh
}

// State returns the current playback state.
func (c *Coordinator) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Close stops the coordinator.
func (c *Coordinator) Close() {
	c.cancel()
	c.engine.Cancel()
}

// SetEpisodes replaces the episode list wholesale and loads the first
// episode without starting playback.
func (c *Coordinator) SetEpisodes(eps []episode.Episode) {
	c.mu.Lock()
	c.seq.Replace(eps)
	ep, ok := c.seq.Current()
	if !ok {
		c.sess = nil
		c.setStateLocked(StateIdle)
		c.mu.Unlock()
		return
	}
	c.sess = newSession(ep)
	c.setStateLocked(StateIdle)
	c.mu.Unlock()

	c.send(Event{Type: EventEpisodeChanged, Episode: &ep, State: StateIdle})

	if err := c.audio.Load(ep.AudioURL); err != nil {
		zlog.Warn().Msgf("coordinator: failed to load %s: %v", ep.AudioURL, err)
	}
}

// Play handles the user-initiated play trigger. On the first play of an
// activation it runs the announce-seek-play sequence; afterwards it
// starts playback directly.
func (c *Coordinator) Play() {
	c.mu.Lock()
	sess := c.sess
	if sess == nil {
		c.mu.Unlock()
		return
	}
	if sess.announced {
		c.mu.Unlock()
		c.startPlayback(sess)
		return
	}

	// First to execute wins: claim the announcement slot before any
	// suspension point, so a racing buffer-ready path exits cleanly.
	sess.announced = true
	ep, _ := c.seq.Current()
	c.setStateLocked(StateAnnouncing)
	c.mu.Unlock()

	go c.announceThenResume(sess, ep)
}

// Pause suspends playback and interrupts any announcement in flight.
// An interrupted announcement leaves the activation parked; it does not
// auto-resume.
func (c *Coordinator) Pause() {
	c.engine.Cancel()

	if err := c.audio.Pause(); err != nil {
		zlog.Warn().Msgf("coordinator: pause failed: %v", err)
	}

	c.mu.Lock()
	if c.state == StatePlaying || c.state == StateResuming {
		c.setStateLocked(StatePaused)
	}
	c.mu.Unlock()
}

// SkipForward advances to the next episode.
func (c *Coordinator) SkipForward(src SkipSource) {
	c.skip(src, true)
}

// SkipBackward retreats to the previous episode.
func (c *Coordinator) SkipBackward(src SkipSource) {
	c.skip(src, false)
}

func (c *Coordinator) skip(src SkipSource, forward bool) {
	// Any in-flight announcement belongs to the episode being left.
	c.engine.Cancel()

	c.mu.Lock()
	if forward {
		c.seq.Advance()
	} else {
		c.seq.Retreat()
	}
	ep, ok := c.seq.Current()
	if !ok {
		c.sess = nil
		c.setStateLocked(StateIdle)
		c.mu.Unlock()
		return
	}

	// The session swap resets announced in the same critical section as
	// the index change, so no listener can read a stale flag.
	sess := newSession(ep)
	sess.skipPending = true
	c.sess = sess
	c.setStateLocked(StateAwaitingBuffer)
	c.mu.Unlock()

	zlog.Debug().Msgf("coordinator: skip: source=%s episode=%s activation=%s", src, ep.ID, sess.activationID)
	c.send(Event{Type: EventEpisodeChanged, Episode: &ep, State: StateAwaitingBuffer})

	if err := c.audio.Load(ep.AudioURL); err != nil {
		zlog.Warn().Msgf("coordinator: failed to load %s: %v", ep.AudioURL, err)
	}

	if src == SourceHardware {
		// The OS reads a playback gap as "stopped". Nudge playback on a
		// bounded delay, independent of the announcement flow.
		time.AfterFunc(c.config.HardwareResumeDelay, func() {
			c.mu.Lock()
			current := c.sess == sess
			c.mu.Unlock()
			if !current {
				return
			}
			if err := c.audio.Play(); err != nil {
				zlog.Warn().Msgf("coordinator: hardware resume attempt failed: %v", err)
			}
		})
	}
}

// NowPlaying is the metadata published to the media-session surface.
type NowPlaying struct {
	EpisodeID  string
	Title      string
	ArtworkURL string
	State      State
	Position   float64
}

// NowPlaying returns the active episode's metadata and position.
func (c *Coordinator) NowPlaying() (NowPlaying, bool) {
	c.mu.Lock()
	ep, ok := c.seq.Current()
	state := c.state
	c.mu.Unlock()

	if !ok {
		return NowPlaying{}, false
	}

	pos, err := c.audio.Position()
	if err != nil {
		pos = 0
	}

	return NowPlaying{
		EpisodeID:  ep.ID,
		Title:      ep.Title,
		ArtworkURL: ep.ArtworkURL,
		State:      state,
		Position:   pos,
	}, true
}

// run consumes audio element events until Close.
func (c *Coordinator) run() {
	for {
		select {
		case <-c.ctx.Done():
			return
		case ev, ok := <-c.audio.Events():
			if !ok {
				return
			}
			switch ev.Type {
			case audio.EventReady:
				c.onReady()
			case audio.EventEnded:
				c.onEnded()
			case audio.EventPosition:
				c.onPosition(ev.Position)
			}
		}
	}
}

// onReady handles the buffer-ready signal. The subscription is
// single-shot per activation and only acts when a skip is pending.
func (c *Coordinator) onReady() {
	c.mu.Lock()
	sess := c.sess
	if sess == nil || !sess.readyArmed {
		c.mu.Unlock()
		return
	}
	// Disarm first: a repeated ready signal must not announce twice.
	sess.readyArmed = false

	if !sess.skipPending {
		// Initial load: playback waits for the user.
		c.mu.Unlock()
		return
	}
	sess.skipPending = false

	if sess.announced {
		// User play claimed this activation first; exit without side effects.
		c.mu.Unlock()
		return
	}
	sess.announced = true
	ep, ok := c.seq.Current()
	c.setStateLocked(StateAnnouncing)
	c.mu.Unlock()

	if !ok {
		return
	}
	go c.announceThenResume(sess, ep)
}

// onEnded handles natural end-of-track: clear the saved progress, then
// either speak the farewell (last episode) or advance like a skip.
func (c *Coordinator) onEnded() {
	c.mu.Lock()
	sess := c.sess
	if sess == nil {
		c.mu.Unlock()
		return
	}
	key := sess.progressKey
	last := c.seq.IsLast()
	c.mu.Unlock()

	c.progress.Clear(key)

	if last {
		c.mu.Lock()
		c.setStateLocked(StateIdle)
		c.mu.Unlock()
		c.send(Event{Type: EventPlaylistEnded, State: StateIdle})

		go c.engine.Announce(c.ctx, announce.Inputs{
			Name:     c.config.FarewellText,
			Verbatim: true,
		})
		return
	}

	c.skip(SourceUI, true)
}

// onPosition feeds position ticks into the progress store while playing.
// The store enforces the global save throttle.
func (c *Coordinator) onPosition(pos float64) {
	c.mu.Lock()
	sess := c.sess
	playing := c.state == StatePlaying
	c.mu.Unlock()

	if sess == nil || !playing {
		return
	}
	c.progress.Save(sess.progressKey, pos)
}

// announceThenResume runs the announce-seek-play sequence for one
// activation. The caller has already claimed the announced flag.
func (c *Coordinator) announceThenResume(sess *session, ep episode.Episode) {
	// Speech and playback never overlap: pause before speaking.
	if err := c.audio.Pause(); err != nil {
		zlog.Warn().Msgf("coordinator: pre-announce pause failed: %v", err)
	}

	offset := c.progress.Load(sess.progressKey)

	c.mu.Lock()
	if c.sess != sess {
		c.mu.Unlock()
		return
	}
	sess.savedOffset = offset
	c.mu.Unlock()

	result := c.engine.Announce(c.ctx, announce.Inputs{
		Name:         ep.Title,
		IsContinuing: announce.Continuing(offset),
		PublishedAt:  ep.PublishedAt,
	})

	c.mu.Lock()
	if c.sess != sess {
		// The episode changed while speaking; this activation is over.
		c.mu.Unlock()
		return
	}
	if result == announce.ResultInterrupted {
		c.setStateLocked(StatePausedByInterruption)
		c.mu.Unlock()
		return
	}
	c.setStateLocked(StateResuming)
	c.mu.Unlock()

	if offset > 0 {
		if err := c.audio.Seek(offset); err != nil {
			zlog.Warn().Msgf("coordinator: seek to %.1fs failed: %v", offset, err)
		}
	}
	c.startPlayback(sess)
}

// startPlayback asks the audio element to play. A rejection (device or
// autoplay policy) is logged and leaves the activation paused.
func (c *Coordinator) startPlayback(sess *session) {
	if err := c.audio.Play(); err != nil {
		zlog.Warn().Msgf("coordinator: playback start rejected: %v", err)
		c.mu.Lock()
		if c.sess == sess {
			c.setStateLocked(StatePaused)
		}
		c.mu.Unlock()
		return
	}

	c.mu.Lock()
	if c.sess == sess {
		c.setStateLocked(StatePlaying)
	}
	c.mu.Unlock()
}

// setStateLocked updates the state and emits a state-changed event.
// Must be called with mu held.
func (c *Coordinator) setStateLocked(s State) {
	if c.state == s {
		return
	}
	c.state = s
	c.sendLocked(Event{Type: EventStateChanged, State: s})
}

func (c *Coordinator) send(e Event) {
	c.sendLocked(e)
}

// sendLocked sends an event without blocking.
func (c *Coordinator) sendLocked(e Event) {
	select {
	case c.eventCh <- e:
	case <-c.ctx.Done():
	default:
		// Channel full, drop event
	}
}
