package watch

import (
	"encoding/json"
	"sync"

	"github.com/pkg/errors"

	"github.com/safetube/web-ui/services/gate"
)

const (
	outQueueSize = 64
)

var (
	errClosed    = errors.New("gate connection closed")
	errQueueFull = errors.New("gate connection queue is full")
)

// Command is a player instruction sent to the browser.
type Command struct {
	Type    string   `json:"type"`
	Command string   `json:"command"`
	Seconds *float64 `json:"seconds,omitempty"`
}

type ViewMessage struct {
	Type    string `json:"type"`
	VideoID string `json:"videoId"`
	gate.View
}

type ErrorMessage struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

// wsPlayer drives the browser player over the gate connection. Commands are
// queued to the writer, state is what the browser last reported.
type wsPlayer struct {
	mu     sync.Mutex
	out    chan []byte
	closed bool
	time   float64
	paused bool
}

func newWSPlayer() *wsPlayer {
	return &wsPlayer{
		out: make(chan []byte, outQueueSize),
	}
}

func (s *wsPlayer) send(m any) error {
	b, err := json.Marshal(m)
	if err != nil {
		return errors.Wrap(err, "failed to marshal gate message")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return errClosed
	}
	select {
	case s.out <- b:
		return nil
	default:
		return errQueueFull
	}
}

func (s *wsPlayer) command(name string, seconds *float64) error {
	return s.send(&Command{
		Type:    "command",
		Command: name,
		Seconds: seconds,
	})
}

func (s *wsPlayer) Play() error {
	return s.command("play", nil)
}

func (s *wsPlayer) Pause() error {
	return s.command("pause", nil)
}

func (s *wsPlayer) Stop() error {
	return s.command("stop", nil)
}

func (s *wsPlayer) SeekTo(seconds float64) error {
	s.mu.Lock()
	s.time = seconds
	s.mu.Unlock()
	return s.command("seek", &seconds)
}

func (s *wsPlayer) RequestFullscreen() error {
	return s.command("fullscreen", nil)
}

func (s *wsPlayer) CurrentTime() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.time
}

func (s *wsPlayer) Paused() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.paused
}

// report records a state change of the browser player.
func (s *wsPlayer) report(ev gate.Event, t *float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if t != nil && *t >= 0 {
		s.time = *t
	}
	switch ev {
	case gate.EventPaused:
		s.paused = true
	case gate.EventResumed:
		s.paused = false
	}
}

func (s *wsPlayer) close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	close(s.out)
}

var _ gate.Player = (*wsPlayer)(nil)
