package audio

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"net"
	"os"
	"os/exec"
	"path/filepath"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	zlog "github.com/rs/zerolog/log"
)

// MPVConfig represents mpv element configuration.
type MPVConfig struct {
	Binary       string        // mpv binary path
	SocketPath   string        // IPC socket path (empty for a temp path)
	PollInterval time.Duration // position poll interval
}

// MPV drives an mpv subprocess over its JSON IPC socket. Position and
// end-of-file are polled; mpv pushes its own event lines on the same
// socket, which the response reader skips.
type MPV struct {
	mu        sync.Mutex
	config    MPVConfig
	cmd       *exec.Cmd
	conn      net.Conn
	reader    *bufio.Reader
	requestID int

	events       chan Event
	readyPending bool
	endedEmitted bool

	ctx    context.Context
	cancel context.CancelFunc
}

// NewMPV starts an idle mpv process and connects to its IPC socket.
func NewMPV(cfg MPVConfig) (*MPV, error) {
	if cfg.Binary == "" {
		cfg.Binary = "mpv"
	}
	if cfg.SocketPath == "" {
		cfg.SocketPath = filepath.Join(os.TempDir(), fmt.Sprintf("podbox-mpv-%d.sock", os.Getpid()))
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = 500 * time.Millisecond
	}

	cmd := exec.Command(cfg.Binary,
		"--idle=yes",
		"--no-video",
		"--no-terminal",
		"--input-ipc-server="+cfg.SocketPath)
	if err := cmd.Start(); err != nil {
		return nil, errors.Wrapf(err, "failed to start %s", cfg.Binary)
	}

	conn, err := dialWithRetry(cfg.SocketPath, 5*time.Second)
	if err != nil {
		_ = cmd.Process.Kill()
		return nil, errors.Wrap(err, "failed to connect to mpv socket")
	}

	ctx, cancel := context.WithCancel(context.Background())
	m := &MPV{
		config: cfg,
		cmd:    cmd,
		conn:   conn,
		reader: bufio.NewReader(conn),
		events: make(chan Event, 16),
		ctx:    ctx,
		cancel: cancel,
	}

	go m.poll()

	return m, nil
}

func dialWithRetry(socketPath string, timeout time.Duration) (net.Conn, error) {
	deadline := time.Now().Add(timeout)
	for {
		conn, err := net.Dial("unix", socketPath)
		if err == nil {
			return conn, nil
		}
		if time.Now().After(deadline) {
			return nil, err
		}
		time.Sleep(100 * time.Millisecond)
	}
}

// Load prepares the stream without starting playback.
func (m *MPV) Load(url string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, err := m.commandLocked("set_property", "pause", true); err != nil {
		return err
	}
	if _, err := m.commandLocked("loadfile", url); err != nil {
		return errors.Wrapf(err, "failed to load %s", url)
	}

	m.readyPending = true
	m.endedEmitted = false
	return nil
}

// Play starts or resumes playback.
func (m *MPV) Play() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	_, err := m.commandLocked("set_property", "pause", false)
	return err
}

// Pause suspends playback.
func (m *MPV) Pause() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	_, err := m.commandLocked("set_property", "pause", true)
	return err
}

// Seek moves the playback position.
func (m *MPV) Seek(seconds float64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	_, err := m.commandLocked("set_property", "time-pos", seconds)
	return err
}

// Position returns the current playback position in seconds.
func (m *MPV) Position() (float64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.positionLocked()
}

func (m *MPV) positionLocked() (float64, error) {
	data, err := m.commandLocked("get_property", "time-pos")
	if err != nil {
		return 0, err
	}
	pos, ok := data.(float64)
	if !ok {
		return 0, errors.Newf("unexpected time-pos payload: %T", data)
	}
	return pos, nil
}

// Events returns the lifecycle event channel.
func (m *MPV) Events() <-chan Event {
	return m.events
}

// Close tears down the mpv process and its socket.
func (m *MPV) Close() error {
	m.cancel()

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.conn != nil {
		_ = m.conn.Close()
	}
	if m.cmd != nil && m.cmd.Process != nil {
		_ = m.cmd.Process.Kill()
		_ = m.cmd.Wait()
	}
	_ = os.Remove(m.config.SocketPath)
	return nil
}

// poll reads position and end-of-file state on a fixed interval,
// translating them into element events.
func (m *MPV) poll() {
	ticker := time.NewTicker(m.config.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-m.ctx.Done():
			return
		case <-ticker.C:
			m.pollOnce()
		}
	}
}

func (m *MPV) pollOnce() {
	m.mu.Lock()

	pos, posErr := m.positionLocked()
	ready := false
	if posErr == nil && m.readyPending {
		m.readyPending = false
		ready = true
	}

	ended := false
	if data, err := m.commandLocked("get_property", "eof-reached"); err == nil {
		if reached, ok := data.(bool); ok && reached && !m.endedEmitted {
			m.endedEmitted = true
			ended = true
		}
	}
	m.mu.Unlock()

	if ready {
		m.emit(Event{Type: EventReady})
	}
	if posErr == nil {
		m.emit(Event{Type: EventPosition, Position: pos})
	}
	if ended {
		m.emit(Event{Type: EventEnded})
	}
}

func (m *MPV) emit(e Event) {
	select {
	case m.events <- e:
	case <-m.ctx.Done():
	default:
		// Position ticks are disposable; anything else is worth a log line.
		if e.Type != EventPosition {
			zlog.Warn().Msgf("audio: dropping element event: type=%s", e.Type)
		}
	}
}

type mpvRequest struct {
	Command   []any `json:"command"`
	RequestID int   `json:"request_id"`
}

type mpvResponse struct {
	Error     string          `json:"error"`
	Data      json.RawMessage `json:"data"`
	RequestID int             `json:"request_id"`
	Event     string          `json:"event"`
}

// commandLocked sends one IPC command and waits for its response,
// skipping interleaved mpv event lines. Must be called with mu held.
func (m *MPV) commandLocked(args ...any) (any, error) {
	if m.conn == nil {
		return nil, errors.New("mpv connection closed")
	}

	m.requestID++
	req := mpvRequest{Command: args, RequestID: m.requestID}
	payload, err := json.Marshal(req)
	if err != nil {
		return nil, errors.Wrap(err, "failed to encode mpv command")
	}
	if _, err := m.conn.Write(append(payload, '\n')); err != nil {
		return nil, errors.Wrap(err, "failed to write mpv command")
	}

	for {
		line, err := m.reader.ReadBytes('\n')
		if err != nil {
			return nil, errors.Wrap(err, "failed to read mpv response")
		}

		var resp mpvResponse
		if err := json.Unmarshal(line, &resp); err != nil {
			continue
		}
		if resp.Event != "" || resp.RequestID != m.requestID {
			continue
		}
		if resp.Error != "success" {
			return nil, errors.Newf("mpv command failed: %s", resp.Error)
		}

		if len(resp.Data) == 0 {
			return nil, nil
		}
		var data any
		if err := json.Unmarshal(resp.Data, &data); err != nil {
			return nil, errors.Wrap(err, "failed to decode mpv response data")
		}
		return data, nil
	}
}
