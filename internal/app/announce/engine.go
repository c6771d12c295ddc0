// Package announce provides the announcement engine: exclusive,
// cancelable text-to-speech describing episode context.
//
// The engine owns process-wide speech exclusivity. Callers cannot
// bypass the guard: the only surface is Announce, Cancel and IsBusy.
// There is no timeout on utterance completion; a device that never
// reports a terminal event stalls that announcement until Cancel.
package announce

import (
	"context"
	"sync"

	zlog "github.com/rs/zerolog/log"

	"github.com/DustyBest/podbox/internal/infra/speech"
)

// Result is the outcome of an announcement.
type Result int

const (
	// ResultCompleted means speech reached its natural end, or failed
	// with a synthesis error. Both are safe to proceed to playback.
	ResultCompleted Result = iota
	// ResultInterrupted means speech was canceled or paused by another
	// actor. Playback must not auto-resume.
	ResultInterrupted
)

// String returns the string representation of the result.
func (r Result) String() string {
	switch r {
	case ResultCompleted:
		return "completed"
	case ResultInterrupted:
		return "interrupted"
	default:
		return "unknown"
	}
}

// Engine serializes announcements over a single speech device.
type Engine struct {
	mu             sync.Mutex
	device         speech.Device
	busy           bool
	preferredVoice string
	voice          string // resolved voice name, empty for platform default

	ctx    context.Context
	cancel context.CancelFunc
}

// NewEngine creates an engine over the given device. preferredVoice is
// used when it appears among the device's voices; enumeration may finish
// after startup, in which case the selection is re-applied on the
// device's voices-changed signal.
func NewEngine(device speech.Device, preferredVoice string) *Engine {
	ctx, cancel := context.WithCancel(context.Background())
	e := &Engine{
		device:         device,
		preferredVoice: preferredVoice,
		ctx:            ctx,
		cancel:         cancel,
	}

	e.applyVoice()
	go e.watchVoices()

	return e
}

// IsBusy reports whether an utterance is in flight.
func (e *Engine) IsBusy() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.busy
}

// Cancel forcibly stops the active utterance, if any. The pending
// Announce call resolves as ResultInterrupted via the device's abort
// signal; Cancel itself does not unwind the caller.
func (e *Engine) Cancel() {
	e.mu.Lock()
	busy := e.busy
	e.mu.Unlock()

	if busy {
		e.device.Cancel()
	}
}

// Announce speaks the episode context and blocks until the utterance
// resolves. If an announcement is already active, the call is a no-op
// and resolves immediately as ResultCompleted; it does not queue.
func (e *Engine) Announce(ctx context.Context, in Inputs) Result {
	e.mu.Lock()
	if e.busy {
		e.mu.Unlock()
		return ResultCompleted
	}
	// Claim exclusivity before anything that can yield.
	e.busy = true
	voice := e.voice
	e.mu.Unlock()

	defer func() {
		e.mu.Lock()
		e.busy = false
		e.mu.Unlock()
	}()

	text := SpokenText(in)
	zlog.Debug().Msgf("announce: speaking: text=%q voice=%q", text, voice)

	if err := e.device.Speak(speech.Utterance{Text: text, Voice: voice}); err != nil {
		// A missing or faulty synthesizer must never block playback.
		zlog.Warn().Msgf("announce: synthesis failed, proceeding: %v", err)
		return ResultCompleted
	}

	for {
		select {
		case <-ctx.Done():
			e.device.Cancel()
			return ResultInterrupted
		case <-e.ctx.Done():
			e.device.Cancel()
			return ResultInterrupted
		case ev := <-e.device.Events():
			switch ev.Type {
			case speech.EventEnd:
				return ResultCompleted
			case speech.EventError:
				zlog.Warn().Msgf("announce: synthesis errored, proceeding: %v", ev.Err)
				return ResultCompleted
			case speech.EventAbort, speech.EventPause:
				return ResultInterrupted
			case speech.EventStart:
				// keep waiting for the terminal event
			}
		}
	}
}

// Close stops the voice watcher and interrupts any active utterance.
func (e *Engine) Close() {
	e.cancel()
	e.device.Cancel()
}

func (e *Engine) watchVoices() {
	for {
		select {
		case <-e.ctx.Done():
			return
		case <-e.device.VoicesChanged():
			e.applyVoice()
		}
	}
}

// applyVoice resolves the preferred voice against the device's current
// voice list, falling back to the platform default when absent.
func (e *Engine) applyVoice() {
	if e.preferredVoice == "" {
		return
	}

	resolved := ""
	for _, v := range e.device.Voices() {
		if v.Name == e.preferredVoice {
			resolved = v.Name
			break
		}
	}

	e.mu.Lock()
	changed := e.voice != resolved
	e.voice = resolved
	e.mu.Unlock()

	if changed {
		zlog.Debug().Msgf("announce: voice selection updated: preferred=%q resolved=%q", e.preferredVoice, resolved)
	}
}
