package gate

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockPlayer struct {
	mu            sync.Mutex
	commands      []string
	seekedTo      float64
	time          float64
	paused        bool
	fullscreenErr error
}

func (m *mockPlayer) record(c string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.commands = append(m.commands, c)
}

func (m *mockPlayer) Play() error { m.record("play"); m.paused = false; return nil }
func (m *mockPlayer) Pause() error { m.record("pause"); m.paused = true; return nil }
func (m *mockPlayer) Stop() error { m.record("stop"); return nil }
func (m *mockPlayer) SeekTo(s float64) error {
	m.record("seek")
	m.seekedTo = s
	return nil
}
func (m *mockPlayer) CurrentTime() float64 { return m.time }
func (m *mockPlayer) Paused() bool { return m.paused }
func (m *mockPlayer) RequestFullscreen() error {
	m.record("fullscreen")
	return m.fullscreenErr
}

func (m *mockPlayer) Commands() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.commands...)
}

func (m *mockPlayer) reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.commands = nil
}

type fakeTimer struct {
	d       time.Duration
	f       func()
	stopped bool
}

func (t *fakeTimer) Stop() bool {
	was := !t.stopped
	t.stopped = true
	return was
}

type fakeClock struct {
	timers []*fakeTimer
}

func (c *fakeClock) AfterFunc(d time.Duration, f func()) Timer {
	t := &fakeTimer{d: d, f: f}
	c.timers = append(c.timers, t)
	return t
}

// fire runs every timer that was not stopped.
func (c *fakeClock) fire() {
	timers := c.timers
	c.timers = nil
	for _, t := range timers {
		if !t.stopped {
			t.stopped = true
			t.f()
		}
	}
}

type mockCounter struct {
	mu    sync.Mutex
	ids   []string
	err   error
	calls chan string
}

func newMockCounter() *mockCounter {
	return &mockCounter{calls: make(chan string, 16)}
}

func (m *mockCounter) IncrementWatch(_ context.Context, id string) error {
	m.mu.Lock()
	m.ids = append(m.ids, id)
	m.mu.Unlock()
	m.calls <- id
	return m.err
}

func (m *mockCounter) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.ids)
}

type testGate struct {
	player  *mockPlayer
	clock   *fakeClock
	counter *mockCounter
	surface *Surface
	views   []View
}

func newTestGate(t *testing.T, handset bool) *testGate {
	g := &testGate{
		player:  &mockPlayer{},
		clock:   &fakeClock{},
		counter: newMockCounter(),
	}
	g.surface = NewSurface(g.player, g.counter,
		WithHandset(handset),
		WithAfterFunc(g.clock.AfterFunc),
		WithListener(func(v View) { g.views = append(g.views, v) }),
	)
	t.Cleanup(g.surface.Close)
	return g
}

var (
	videoA = &Video{ID: "a", YoutubeID: "yt-a", Title: "Counting Song", ThumbnailURL: "https://img/a"}
	videoB = &Video{ID: "b", YoutubeID: "yt-b", Title: "Animal Sounds", ThumbnailURL: "https://img/b"}
)

func (g *testGate) open(v *Video) *Session {
	s := g.surface.Open(v)
	s.Ready()
	return s
}

func (g *testGate) toBreak(t *testing.T, s *Session) {
	t.Helper()
	require.True(t, s.Handle(EventStart))
	require.True(t, s.Handle(EventEnded))
	require.Equal(t, StateBreak, s.State())
}

func TestPlayerEvent(t *testing.T) {
	ev, ok := PlayerEvent(0)
	assert.True(t, ok)
	assert.Equal(t, EventEnded, ev)
	ev, ok = PlayerEvent(1)
	assert.True(t, ok)
	assert.Equal(t, EventResumed, ev)
	ev, ok = PlayerEvent(2)
	assert.True(t, ok)
	assert.Equal(t, EventPaused, ev)
	for _, c := range []int{-1, 3, 5} {
		_, ok = PlayerEvent(c)
		assert.False(t, ok, c)
	}
}

func TestParseAction(t *testing.T) {
	ev, ok := ParseAction("watch-other")
	assert.True(t, ok)
	assert.Equal(t, EventWatchOther, ev)
	_, ok = ParseAction("pause-settled")
	assert.False(t, ok, "internal events are not actions")
	_, ok = ParseAction("ended")
	assert.False(t, ok)
}

func TestSession_InitialView(t *testing.T) {
	g := newTestGate(t, false)
	s := g.open(videoA)

	v := s.View()
	assert.Equal(t, StatePlaying, v.State)
	assert.True(t, v.Overlay)
	assert.True(t, v.ShowPlayer)
	assert.Empty(t, v.Actions)
	assert.Empty(t, g.player.Commands(), "player not started on open")
}

func TestSession_StartIgnoredUntilReady(t *testing.T) {
	g := newTestGate(t, false)
	s := g.surface.Open(videoA)

	assert.False(t, s.Handle(EventStart))
	assert.True(t, s.View().Overlay)

	s.Ready()
	assert.True(t, s.Handle(EventStart))
	assert.False(t, s.View().Overlay)
	assert.Equal(t, []string{"play", "fullscreen"}, g.player.Commands())

	assert.False(t, s.Handle(EventStart), "start only once")
}

func TestSession_FullscreenFailureIsSwallowed(t *testing.T) {
	g := newTestGate(t, false)
	g.player.fullscreenErr = errors.New("not allowed")
	s := g.open(videoA)

	assert.True(t, s.Handle(EventStart))
	assert.Equal(t, StatePlaying, s.State())
	assert.False(t, s.View().Overlay)
}

func TestSession_BreakTriggers(t *testing.T) {
	t.Run("ended", func(t *testing.T) {
		g := newTestGate(t, false)
		s := g.open(videoA)
		s.Handle(EventStart)
		g.player.reset()

		assert.True(t, s.Handle(EventEnded))
		assert.Equal(t, StateBreak, s.State())
		assert.True(t, s.View().Overlay)
		assert.Empty(t, g.player.Commands())
	})
	t.Run("fullscreen exit pauses", func(t *testing.T) {
		g := newTestGate(t, false)
		s := g.open(videoA)
		s.Handle(EventStart)
		g.player.reset()

		assert.True(t, s.Handle(EventFullscreenExit))
		assert.Equal(t, StateBreak, s.State())
		assert.Equal(t, []string{"pause"}, g.player.Commands())
	})
}

func TestSession_PauseOnDesktopDoesNotBreak(t *testing.T) {
	g := newTestGate(t, false)
	s := g.open(videoA)
	s.Handle(EventStart)
	g.player.paused = true

	assert.False(t, s.Handle(EventPaused))
	assert.Empty(t, g.clock.timers)
	assert.Equal(t, StatePlaying, s.State())
}

func TestSession_HandsetPauseDebounce(t *testing.T) {
	t.Run("still paused", func(t *testing.T) {
		g := newTestGate(t, true)
		s := g.open(videoA)
		s.Handle(EventStart)
		g.player.paused = true

		s.Handle(EventPaused)
		assert.Equal(t, StatePlaying, s.State(), "no break before the debounce")
		require.Len(t, g.clock.timers, 1)
		assert.Equal(t, PauseDebounce, g.clock.timers[0].d)

		g.clock.fire()
		assert.Equal(t, StateBreak, s.State())
		require.NotEmpty(t, g.views)
		assert.Equal(t, StateBreak, g.views[len(g.views)-1].State)
	})
	t.Run("resumed before debounce", func(t *testing.T) {
		g := newTestGate(t, true)
		s := g.open(videoA)
		s.Handle(EventStart)
		g.player.paused = true
		s.Handle(EventPaused)

		g.player.paused = false
		s.Handle(EventResumed)
		g.clock.fire()
		assert.Equal(t, StatePlaying, s.State())
	})
	t.Run("ended before debounce", func(t *testing.T) {
		g := newTestGate(t, true)
		s := g.open(videoA)
		s.Handle(EventStart)
		g.player.paused = true
		s.Handle(EventPaused)
		s.Handle(EventEnded)
		s.Handle(EventResume)
		require.Equal(t, StatePlaying, s.State())

		g.clock.fire()
		assert.Equal(t, StatePlaying, s.State(), "stale check dropped")
	})
	t.Run("session replaced before debounce", func(t *testing.T) {
		g := newTestGate(t, true)
		s := g.open(videoA)
		s.Handle(EventStart)
		g.player.paused = true
		s.Handle(EventPaused)

		next := g.open(videoB)
		g.clock.fire()
		assert.Equal(t, StatePlaying, next.State())
		assert.True(t, next.View().Overlay)
		assert.Equal(t, StatePlaying, s.State())
	})
}

func TestSession_FromBreak(t *testing.T) {
	t.Run("resume", func(t *testing.T) {
		g := newTestGate(t, false)
		s := g.open(videoA)
		g.toBreak(t, s)
		g.player.time = 42
		g.player.reset()

		assert.True(t, s.Handle(EventResume))
		assert.Equal(t, StatePlaying, s.State())
		assert.False(t, s.View().Overlay)
		assert.Equal(t, []string{"seek", "play", "fullscreen"}, g.player.Commands())
		assert.Equal(t, 39.0, g.player.seekedTo)
	})
	t.Run("resume near start clamps to zero", func(t *testing.T) {
		g := newTestGate(t, false)
		s := g.open(videoA)
		g.toBreak(t, s)
		g.player.time = 1.2

		s.Handle(EventResume)
		assert.Equal(t, 0.0, g.player.seekedTo)
	})
	t.Run("done", func(t *testing.T) {
		g := newTestGate(t, false)
		s := g.open(videoA)
		g.toBreak(t, s)
		g.player.reset()

		assert.True(t, s.Handle(EventDone))
		assert.Equal(t, StateDone, s.State())
		assert.Equal(t, []string{"pause"}, g.player.Commands())
		v := s.View()
		assert.False(t, v.Overlay)
		assert.False(t, v.ShowPlayer)
		assert.Equal(t, []Action{ActionWatchOther}, v.Actions)
	})
	for _, ev := range []Event{EventWatchOther, EventEscape} {
		t.Run(string(ev), func(t *testing.T) {
			g := newTestGate(t, false)
			s := g.open(videoA)
			g.toBreak(t, s)
			g.player.reset()

			assert.True(t, s.Handle(ev))
			assert.True(t, s.Closed())
			assert.Equal(t, []string{"stop"}, g.player.Commands())
			assert.True(t, g.views[len(g.views)-1].Closed)
		})
	}
	t.Run("nothing else changes state", func(t *testing.T) {
		g := newTestGate(t, true)
		s := g.open(videoA)
		g.toBreak(t, s)
		g.player.reset()
		g.player.paused = true

		for _, ev := range []Event{EventStart, EventEnded, EventPaused, EventResumed, EventFullscreenExit, EventPauseSettled} {
			assert.False(t, s.Handle(ev), ev)
			assert.Equal(t, StateBreak, s.State(), ev)
		}
		g.clock.fire()
		assert.Equal(t, StateBreak, s.State())
		assert.Empty(t, g.player.Commands())
	})
}

func TestSession_Done(t *testing.T) {
	g := newTestGate(t, false)
	s := g.open(videoA)
	g.toBreak(t, s)
	assert.True(t, s.View().Panel, "break screen")
	s.Handle(EventDone)

	v := s.View()
	assert.True(t, v.Panel, "done screen is rendered even without the overlay")
	assert.False(t, v.Overlay)
	assert.False(t, v.ShowPlayer)
	assert.Equal(t, videoA.Title, v.Title)
	assert.Equal(t, videoA.ThumbnailURL, v.ThumbnailURL)
	assert.Equal(t, []Action{ActionWatchOther}, v.Actions)

	for _, ev := range []Event{EventResume, EventDone, EventEscape, EventStart, EventEnded, EventFullscreenExit} {
		assert.False(t, s.Handle(ev), ev)
		assert.Equal(t, StateDone, s.State(), ev)
	}
	assert.True(t, s.Handle(EventWatchOther))
	assert.True(t, s.Closed())
	assert.False(t, s.View().Panel)
	assert.False(t, s.Handle(EventResume), "closed sessions ignore events")
}

func TestSession_OverlayInvariant(t *testing.T) {
	g := newTestGate(t, true)
	s := g.open(videoA)
	events := []Event{
		EventEnded, EventStart, EventFullscreenExit, EventResume, EventPaused,
		EventEnded, EventDone, EventResume, EventWatchOther,
	}
	check := func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		v := s.view()
		want := (v.State == StatePlaying && !s.started) || v.State == StateBreak
		assert.Equal(t, want, v.Overlay, "state %v started %v", v.State, s.started)
		if v.State != StatePlaying {
			assert.False(t, v.ShowPlayer)
		}
	}
	check()
	for _, ev := range events {
		s.Handle(ev)
		check()
	}
}

func TestSession_BreakViewShowsOnlyCurrentVideo(t *testing.T) {
	g := newTestGate(t, false)
	s := g.open(videoA)
	g.toBreak(t, s)

	v := s.View()
	assert.False(t, v.ShowPlayer)
	assert.Equal(t, videoA.Title, v.Title)
	assert.Equal(t, videoA.ThumbnailURL, v.ThumbnailURL)
	assert.Equal(t, []Action{ActionResume, ActionDone, ActionWatchOther}, v.Actions)
}

func TestSurface_OneWatchIncrementPerOpen(t *testing.T) {
	g := newTestGate(t, false)
	s := g.open(videoA)
	g.toBreak(t, s)
	s.Handle(EventResume)
	s.Handle(EventEnded)
	s.Handle(EventDone)

	select {
	case id := <-g.counter.calls:
		assert.Equal(t, "a", id)
	case <-time.After(time.Second):
		t.Fatal("watch not recorded")
	}
	g.surface.Close()
	assert.Equal(t, 1, g.counter.count())
}

func TestSurface_WatchFailureIsNotSurfaced(t *testing.T) {
	g := newTestGate(t, false)
	g.counter.err = errors.New("db down")
	s := g.open(videoA)
	g.surface.Close()

	assert.Equal(t, 1, g.counter.count())
	assert.Equal(t, StatePlaying, s.State())
}

func TestSurface_ReopenResets(t *testing.T) {
	g := newTestGate(t, false)
	s := g.open(videoA)
	g.toBreak(t, s)
	s.Handle(EventDone)

	next := g.open(videoB)
	assert.NotSame(t, s, next)
	assert.Same(t, next, g.surface.Session())
	v := next.View()
	assert.Equal(t, StatePlaying, v.State)
	assert.True(t, v.Overlay)
	assert.Equal(t, videoB.Title, v.Title)

	assert.False(t, s.Handle(EventWatchOther), "old session detached")
	assert.True(t, g.surface.Handle(EventStart))
	assert.Equal(t, StatePlaying, next.State())

	g.surface.Close()
	assert.Equal(t, 2, g.counter.count())
}

func TestTransitionFor(t *testing.T) {
	tr, ok := TransitionFor(StateBreak, EventResume)
	require.True(t, ok)
	assert.Equal(t, StatePlaying, tr.To)

	tr, ok = TransitionFor(StateDone, EventWatchOther)
	require.True(t, ok)
	assert.True(t, tr.Close)

	_, ok = TransitionFor(StateDone, EventEscape)
	assert.False(t, ok)
	_, ok = TransitionFor(StatePlaying, EventWatchOther)
	assert.False(t, ok)
}
