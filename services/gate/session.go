package gate

import (
	"math"
	"sync"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

const (
	// PauseDebounce is how long a handset pause must last before it counts
	// as a break.
	PauseDebounce = 1500 * time.Millisecond
	// SeekBack is how far playback rewinds when resuming from a break.
	SeekBack = 3.0
)

// Player is the embedded player driven by the gate.
type Player interface {
	Play() error
	Pause() error
	Stop() error
	SeekTo(seconds float64) error
	CurrentTime() float64
	Paused() bool
	RequestFullscreen() error
}

type Timer interface {
	Stop() bool
}

// AfterFunc schedules f after d, time.AfterFunc in production.
type AfterFunc func(d time.Duration, f func()) Timer

func realAfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

// Video is what a session plays. ID is the catalog record id.
type Video struct {
	ID           string
	YoutubeID    string
	Title        string
	ThumbnailURL string
}

type Action string

const (
	ActionResume     Action = Action(EventResume)
	ActionDone       Action = Action(EventDone)
	ActionWatchOther Action = Action(EventWatchOther)
)

// View is what the viewing surface may render. Break and done views carry
// only the current video's title and thumbnail. Panel marks the break and
// done screens, which offer Actions in place of the player.
type View struct {
	State        State    `json:"state"`
	Overlay      bool     `json:"overlay"`
	Panel        bool     `json:"panel"`
	ShowPlayer   bool     `json:"showPlayer"`
	Closed       bool     `json:"closed"`
	Title        string   `json:"title"`
	ThumbnailURL string   `json:"thumbnailUrl"`
	Actions      []Action `json:"actions"`
}

// Session is one viewing of one video.
type Session struct {
	mu        sync.Mutex
	id        string
	video     *Video
	player    Player
	handset   bool
	afterFunc AfterFunc
	onChange  func(v View)

	state    State
	started  bool
	ready    bool
	closed   bool
	replaced bool
	pending  Timer
}

func newSession(v *Video, p Player, handset bool, af AfterFunc, onChange func(View)) *Session {
	return &Session{
		id:        uuid.NewString(),
		video:     v,
		player:    p,
		handset:   handset,
		afterFunc: af,
		onChange:  onChange,
		state:     StatePlaying,
	}
}

func (s *Session) ID() string {
	return s.id
}

func (s *Session) Video() *Video {
	return s.video
}

func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *Session) Closed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

// Ready marks the player of this session as loaded. Start is ignored until
// then.
func (s *Session) Ready() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ready = true
}

func (s *Session) View() View {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.view()
}

func (s *Session) overlay() bool {
	return s.state == StateBreak || (s.state == StatePlaying && !s.started)
}

func (s *Session) view() View {
	v := View{
		State:        s.state,
		Overlay:      s.overlay(),
		Panel:        !s.closed && (s.state == StateBreak || s.state == StateDone),
		ShowPlayer:   s.state == StatePlaying && !s.closed,
		Closed:       s.closed,
		Title:        s.video.Title,
		ThumbnailURL: s.video.ThumbnailURL,
		Actions:      []Action{},
	}
	switch s.state {
	case StateBreak:
		v.Actions = []Action{ActionResume, ActionDone, ActionWatchOther}
	case StateDone:
		v.Actions = []Action{ActionWatchOther}
	}
	return v
}

// Handle applies ev. Events without a transition for the current state are
// ignored and reported as false.
func (s *Session) Handle(ev Event) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.handle(ev)
}

func (s *Session) handle(ev Event) bool {
	if s.closed || s.replaced {
		return false
	}
	switch ev {
	case EventPaused:
		if s.handset && s.state == StatePlaying {
			s.schedulePauseCheck()
		}
		return false
	case EventResumed:
		return false
	case EventStart:
		if !s.ready || s.started {
			return false
		}
	}
	t, ok := TransitionFor(s.state, ev)
	if !ok {
		return false
	}
	s.cancelPending()
	for _, e := range t.Effects {
		s.apply(e)
	}
	if t.Close {
		s.closed = true
	} else {
		s.state = t.To
	}
	if hasEffect(t, EffectPlay) {
		s.started = true
	}
	log.WithFields(log.Fields{
		"session": s.id,
		"video":   s.video.ID,
		"event":   ev,
		"state":   s.state,
		"closed":  s.closed,
	}).Debug("gate transition")
	if s.onChange != nil {
		s.onChange(s.view())
	}
	return true
}

func (s *Session) apply(e Effect) {
	var err error
	switch e {
	case EffectPlay:
		err = s.player.Play()
	case EffectPause:
		err = s.player.Pause()
	case EffectStop:
		err = s.player.Stop()
	case EffectSeekBack:
		err = s.player.SeekTo(math.Max(0, s.player.CurrentTime()-SeekBack))
	case EffectFullscreen:
		err = s.player.RequestFullscreen()
	}
	if err != nil {
		log.WithError(err).WithField("session", s.id).Warn("player command failed")
	}
}

func hasEffect(t Transition, e Effect) bool {
	for _, te := range t.Effects {
		if te == e {
			return true
		}
	}
	return false
}

func (s *Session) schedulePauseCheck() {
	s.cancelPending()
	var t Timer
	t = s.afterFunc(PauseDebounce, func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if s.pending != t {
			return
		}
		s.pending = nil
		if s.state != StatePlaying || !s.player.Paused() {
			return
		}
		s.handle(EventPauseSettled)
	})
	s.pending = t
}

func (s *Session) cancelPending() {
	if s.pending != nil {
		s.pending.Stop()
		s.pending = nil
	}
}

// discard detaches the session from its surface. Pending checks are dropped
// and further events ignored.
func (s *Session) discard() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.replaced = true
	s.cancelPending()
}
