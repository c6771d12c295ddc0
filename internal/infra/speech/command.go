package speech

import (
	"os/exec"
	"strings"
	"sync"

	"github.com/cockroachdb/errors"
	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"github.com/mitchellh/mapstructure"
	zlog "github.com/rs/zerolog/log"
)

// CommandConfig represents command device settings.
type CommandConfig struct {
	Command        string   `yaml:"command" mapstructure:"command" default:"espeak-ng" validate:"required"`
	Args           []string `yaml:"args" mapstructure:"args"`
	VoiceFlag      string   `yaml:"voice_flag" mapstructure:"voice_flag" default:"-v"`
	ListVoicesArgs []string `yaml:"list_voices_args" mapstructure:"list_voices_args" default:"[\"--voices\"]"`
}

// Command synthesizes speech by running a local synthesizer binary,
// one process per utterance. Killing the process maps to EventAbort,
// a nonzero exit to EventError, a clean exit to EventEnd.
type Command struct {
	mu       sync.Mutex
	config   CommandConfig
	cmd      *exec.Cmd
	canceled bool

	events   chan Event
	voices   []Voice
	voicesCh chan struct{}
}

// NewCommandDevice creates a command device from a settings map.
func NewCommandDevice(settings map[string]any) (*Command, error) {
	var config CommandConfig
	if err := mapstructure.Decode(settings, &config); err != nil {
		return nil, errors.Wrap(err, "failed to decode command device settings")
	}
	if err := defaults.Set(&config); err != nil {
		return nil, errors.Wrap(err, "failed to set command device defaults")
	}
	if err := validator.New().Struct(&config); err != nil {
		return nil, errors.Wrap(err, "invalid command device settings")
	}

	d := &Command{
		config:   config,
		events:   make(chan Event, 8),
		voicesCh: make(chan struct{}, 1),
	}

	// Voice enumeration runs asynchronously; consumers are notified
	// via VoicesChanged once the list is available.
	go d.loadVoices()

	return d, nil
}

// Speak starts synthesizing the utterance.
func (d *Command) Speak(u Utterance) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	args := append([]string{}, d.config.Args...)
	if u.Voice != "" {
		args = append(args, d.config.VoiceFlag, u.Voice)
	}
	args = append(args, u.Text)

	cmd := exec.Command(d.config.Command, args...)
	if err := cmd.Start(); err != nil {
		return errors.Wrapf(err, "failed to start synthesizer %s", d.config.Command)
	}

	d.cmd = cmd
	d.canceled = false
	d.emit(Event{Type: EventStart})

	go d.wait(cmd)
	return nil
}

func (d *Command) wait(cmd *exec.Cmd) {
	err := cmd.Wait()

	d.mu.Lock()
	canceled := d.canceled
	if d.cmd == cmd {
		d.cmd = nil
	}
	d.mu.Unlock()

	switch {
	case canceled:
		d.emit(Event{Type: EventAbort})
	case err != nil:
		d.emit(Event{Type: EventError, Err: err})
	default:
		d.emit(Event{Type: EventEnd})
	}
}

// Cancel kills the active synthesizer process, if any.
func (d *Command) Cancel() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.cmd == nil || d.cmd.Process == nil {
		return
	}
	d.canceled = true
	if err := d.cmd.Process.Kill(); err != nil {
		zlog.Warn().Msgf("speech: failed to kill synthesizer process: %v", err)
	}
}

// Events returns the lifecycle event channel.
func (d *Command) Events() <-chan Event {
	return d.events
}

// Voices returns the enumerated voices. Empty until enumeration finishes.
func (d *Command) Voices() []Voice {
	d.mu.Lock()
	defer d.mu.Unlock()

	voices := make([]Voice, len(d.voices))
	copy(voices, d.voices)
	return voices
}

// VoicesChanged signals that the voice list has been (re)loaded.
func (d *Command) VoicesChanged() <-chan struct{} {
	return d.voicesCh
}

func (d *Command) emit(e Event) {
	select {
	case d.events <- e:
	default:
		zlog.Warn().Msgf("speech: dropping device event: type=%s", e.Type)
	}
}

func (d *Command) loadVoices() {
	if len(d.config.ListVoicesArgs) == 0 {
		return
	}

	out, err := exec.Command(d.config.Command, d.config.ListVoicesArgs...).Output()
	if err != nil {
		zlog.Warn().Msgf("speech: failed to enumerate voices: %v", err)
		return
	}

	voices := parseVoiceList(string(out))

	d.mu.Lock()
	d.voices = voices
	d.mu.Unlock()

	zlog.Debug().Msgf("speech: enumerated voices: count=%d", len(voices))

	select {
	case d.voicesCh <- struct{}{}:
	default:
	}
}

// parseVoiceList parses espeak-style voice listings: a header line
// followed by columns where the second is the language and the fourth
// the voice name.
func parseVoiceList(output string) []Voice {
	lines := strings.Split(output, "\n")
	voices := make([]Voice, 0, len(lines))

	for i, line := range lines {
		if i == 0 {
			continue // header
		}
		fields := strings.Fields(line)
		if len(fields) < 4 {
			continue
		}
		voices = append(voices, Voice{
			Name:     fields[3],
			Language: fields[1],
		})
	}
	return voices
}
