package speech

// Noop is a silent device: every utterance completes immediately.
// Used when no synthesizer is installed, so a missing speech capability
// never blocks playback.
type Noop struct {
	events   chan Event
	voicesCh chan struct{}
}

// NewNoopDevice creates a silent device.
func NewNoopDevice() *Noop {
	return &Noop{
		events:   make(chan Event, 2),
		voicesCh: make(chan struct{}),
	}
}

// Speak reports an immediate start and end.
func (d *Noop) Speak(u Utterance) error {
	d.events <- Event{Type: EventStart}
	d.events <- Event{Type: EventEnd}
	return nil
}

// Cancel does nothing; there is never an utterance in flight.
func (d *Noop) Cancel() {}

// Events returns the lifecycle event channel.
func (d *Noop) Events() <-chan Event {
	return d.events
}

// Voices returns no voices.
func (d *Noop) Voices() []Voice {
	return nil
}

// VoicesChanged never signals.
func (d *Noop) VoicesChanged() <-chan struct{} {
	return d.voicesCh
}
