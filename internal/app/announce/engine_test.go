package announce

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DustyBest/podbox/internal/infra/speech"
)

// fakeDevice is a scripted speech device. Tests drive lifecycle events
// through the events channel.
type fakeDevice struct {
	mu       sync.Mutex
	events   chan speech.Event
	voicesCh chan struct{}
	voices   []speech.Voice
	spoken   []speech.Utterance
	speakErr error
	cancels  int
}

func newFakeDevice() *fakeDevice {
	return &fakeDevice{
		events:   make(chan speech.Event, 8),
		voicesCh: make(chan struct{}, 1),
	}
}

func (d *fakeDevice) Speak(u speech.Utterance) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.speakErr != nil {
		return d.speakErr
	}
	d.spoken = append(d.spoken, u)
	return nil
}

func (d *fakeDevice) Cancel() {
	d.mu.Lock()
	d.cancels++
	d.mu.Unlock()
	d.events <- speech.Event{Type: speech.EventAbort}
}

func (d *fakeDevice) Events() <-chan speech.Event { return d.events }

func (d *fakeDevice) Voices() []speech.Voice {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.voices
}

func (d *fakeDevice) VoicesChanged() <-chan struct{} { return d.voicesCh }

func (d *fakeDevice) setVoices(voices []speech.Voice) {
	d.mu.Lock()
	d.voices = voices
	d.mu.Unlock()
	d.voicesCh <- struct{}{}
}

func (d *fakeDevice) spokenTexts() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	texts := make([]string, len(d.spoken))
	for i, u := range d.spoken {
		texts[i] = u.Text
	}
	return texts
}

func TestSpokenText(t *testing.T) {
	published := time.Date(2025, 8, 26, 9, 0, 0, 0, time.UTC) // a Tuesday

	tests := []struct {
		name     string
		inputs   Inputs
		expected string
	}{
		{
			name:     "verbatim passes name through",
			inputs:   Inputs{Name: "That's all for today. See you next time!", Verbatim: true},
			expected: "That's all for today. See you next time!",
		},
		{
			name:     "no publish date",
			inputs:   Inputs{Name: "A"},
			expected: "From A.",
		},
		{
			name:     "publish date, starting fresh",
			inputs:   Inputs{Name: "B", PublishedAt: &published},
			expected: "From B, on Tuesday at 9:00 AM.",
		},
		{
			name:     "publish date, continuing",
			inputs:   Inputs{Name: "A", IsContinuing: true, PublishedAt: &published},
			expected: "Continuing A, from Tuesday at 9:00 AM.",
		},
		{
			name:     "continuation flag ignored without publish date",
			inputs:   Inputs{Name: "C", IsContinuing: true},
			expected: "From C.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, SpokenText(tt.inputs))
		})
	}
}

func TestContinuing(t *testing.T) {
	tests := []struct {
		name     string
		offset   float64
		expected bool
	}{
		{name: "zero offset", offset: 0, expected: false},
		{name: "at threshold", offset: 2, expected: false},
		{name: "just above threshold", offset: 2.1, expected: true},
		{name: "deep into episode", offset: 1912, expected: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Continuing(tt.offset))
		})
	}
}

func TestEngine_AnnounceCompletesOnEnd(t *testing.T) {
	device := newFakeDevice()
	engine := NewEngine(device, "")
	defer engine.Close()

	done := make(chan Result, 1)
	go func() {
		done <- engine.Announce(context.Background(), Inputs{Name: "A"})
	}()

	require.Eventually(t, func() bool { return engine.IsBusy() }, time.Second, 5*time.Millisecond)

	device.events <- speech.Event{Type: speech.EventStart}
	device.events <- speech.Event{Type: speech.EventEnd}

	assert.Equal(t, ResultCompleted, <-done)
	assert.Equal(t, []string{"From A."}, device.spokenTexts())
	assert.False(t, engine.IsBusy())
}

func TestEngine_SynthesisErrorResolvesCompleted(t *testing.T) {
	device := newFakeDevice()
	engine := NewEngine(device, "")
	defer engine.Close()

	done := make(chan Result, 1)
	go func() {
		done <- engine.Announce(context.Background(), Inputs{Name: "A"})
	}()

	require.Eventually(t, func() bool { return engine.IsBusy() }, time.Second, 5*time.Millisecond)
	device.events <- speech.Event{Type: speech.EventError, Err: assert.AnError}

	assert.Equal(t, ResultCompleted, <-done)
}

func TestEngine_CancelResolvesInterrupted(t *testing.T) {
	device := newFakeDevice()
	engine := NewEngine(device, "")
	defer engine.Close()

	done := make(chan Result, 1)
	go func() {
		done <- engine.Announce(context.Background(), Inputs{Name: "A"})
	}()

	require.Eventually(t, func() bool { return engine.IsBusy() }, time.Second, 5*time.Millisecond)
	engine.Cancel()

	assert.Equal(t, ResultInterrupted, <-done)
	assert.False(t, engine.IsBusy())
}

func TestEngine_BusyAnnounceDoesNotQueue(t *testing.T) {
	device := newFakeDevice()
	engine := NewEngine(device, "")
	defer engine.Close()

	first := make(chan Result, 1)
	go func() {
		first <- engine.Announce(context.Background(), Inputs{Name: "A"})
	}()

	require.Eventually(t, func() bool { return engine.IsBusy() }, time.Second, 5*time.Millisecond)

	// Second call resolves immediately without a second utterance.
	assert.Equal(t, ResultCompleted, engine.Announce(context.Background(), Inputs{Name: "B"}))
	assert.Equal(t, []string{"From A."}, device.spokenTexts())

	device.events <- speech.Event{Type: speech.EventEnd}
	assert.Equal(t, ResultCompleted, <-first)
}

func TestEngine_SpeakFailureNeverBlocksPlayback(t *testing.T) {
	device := newFakeDevice()
	device.speakErr = assert.AnError
	engine := NewEngine(device, "")
	defer engine.Close()

	assert.Equal(t, ResultCompleted, engine.Announce(context.Background(), Inputs{Name: "A"}))
	assert.False(t, engine.IsBusy())
}

func TestEngine_PreferredVoiceAppliedWhenVoicesArrive(t *testing.T) {
	device := newFakeDevice()
	engine := NewEngine(device, "english")
	defer engine.Close()

	// Enumeration has not finished yet: platform default is used.
	done := make(chan Result, 1)
	go func() {
		done <- engine.Announce(context.Background(), Inputs{Name: "A"})
	}()
	require.Eventually(t, func() bool { return engine.IsBusy() }, time.Second, 5*time.Millisecond)
	device.events <- speech.Event{Type: speech.EventEnd}
	require.Equal(t, ResultCompleted, <-done)

	device.mu.Lock()
	require.Len(t, device.spoken, 1)
	assert.Empty(t, device.spoken[0].Voice)
	device.mu.Unlock()

	// Voices arrive asynchronously; the preference is re-applied.
	device.setVoices([]speech.Voice{
		{Name: "english-us", Language: "en-US"},
		{Name: "english", Language: "en-GB"},
	})
	require.Eventually(t, func() bool {
		engine.mu.Lock()
		defer engine.mu.Unlock()
		return engine.voice == "english"
	}, time.Second, 5*time.Millisecond)

	go func() {
		done <- engine.Announce(context.Background(), Inputs{Name: "B"})
	}()
	require.Eventually(t, func() bool { return engine.IsBusy() }, time.Second, 5*time.Millisecond)
	device.events <- speech.Event{Type: speech.EventEnd}
	require.Equal(t, ResultCompleted, <-done)

	device.mu.Lock()
	defer device.mu.Unlock()
	require.Len(t, device.spoken, 2)
	assert.Equal(t, "english", device.spoken[1].Voice)
}
