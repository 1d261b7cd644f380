package gate

import (
	"context"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"
)

// WatchCounter records one viewing of a catalog video.
type WatchCounter interface {
	IncrementWatch(ctx context.Context, id string) error
}

const watchTimeout = 10 * time.Second

type Option func(s *Surface)

// WithHandset enables the pause debounce used on touch handsets, whose
// players leave native fullscreen without a fullscreen change.
func WithHandset(handset bool) Option {
	return func(s *Surface) {
		s.handset = handset
	}
}

func WithAfterFunc(af AfterFunc) Option {
	return func(s *Surface) {
		s.afterFunc = af
	}
}

// WithListener is called with the new view after every transition, under
// the session lock.
func WithListener(fn func(v View)) Option {
	return func(s *Surface) {
		s.onChange = fn
	}
}

// Surface is one viewing connection. It holds at most one live session.
type Surface struct {
	mu        sync.Mutex
	player    Player
	counter   WatchCounter
	handset   bool
	afterFunc AfterFunc
	onChange  func(v View)
	current   *Session
	wg        sync.WaitGroup
}

func NewSurface(p Player, counter WatchCounter, opts ...Option) *Surface {
	s := &Surface{
		player:    p,
		counter:   counter,
		afterFunc: realAfterFunc,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Open starts a fresh session for v, discarding the previous one, and fires
// a single watch count increment.
func (s *Surface) Open(v *Video) *Session {
	s.mu.Lock()
	if s.current != nil {
		s.current.discard()
	}
	sess := newSession(v, s.player, s.handset, s.afterFunc, s.onChange)
	s.current = sess
	s.mu.Unlock()

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), watchTimeout)
		defer cancel()
		if err := s.counter.IncrementWatch(ctx, v.ID); err != nil {
			log.WithError(err).WithField("video", v.ID).Warn("failed to record watch")
		}
	}()
	return sess
}

// Session returns the live session or nil.
func (s *Surface) Session() *Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

// Handle forwards ev to the live session.
func (s *Surface) Handle(ev Event) bool {
	sess := s.Session()
	if sess == nil {
		return false
	}
	return sess.Handle(ev)
}

// Close discards the live session and waits for background work.
func (s *Surface) Close() {
	s.mu.Lock()
	if s.current != nil {
		s.current.discard()
	}
	s.mu.Unlock()
	s.wg.Wait()
}
