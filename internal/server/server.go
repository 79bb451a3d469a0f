// Package server is the single serialization point of the daemon: one
// goroutine owns the notification store and every mutation (incoming
// notify/close calls, expiry sweeps, user gestures) funnels through its
// command channel. There is no finer-grained locking anywhere in the core.
package server

import (
	"context"
	"errors"
	"sync"
	"time"

	"notifyd/internal/notification"
	"notifyd/internal/relay"
	"notifyd/internal/store"
	"notifyd/internal/surface"
	"notifyd/pkg/logx"
)

var ErrStopped = errors.New("server stopped")

type command struct {
	notify *notifyCmd
	close  *closeCmd
	sweep  *sweepCmd
}

type notifyCmd struct {
	n          *notification.Notification
	replacesID uint32
	reply      chan uint32
}

type closeCmd struct {
	id uint32
}

type sweepCmd struct {
	now time.Time
}

type Server struct {
	log   logx.Logger
	relay *relay.Relay
	surf  surface.Surface

	cmds chan command

	mu       sync.Mutex
	runctx   context.Context
	cancel   context.CancelFunc
	stopDone chan struct{}
}

func New(log logx.Logger, r *relay.Relay, surf surface.Surface) *Server {
	return &Server{
		log:   log,
		relay: r,
		surf:  surf,
		cmds:  make(chan command, 32),
	}
}

// Start launches the owner goroutine. It is a no-op when already running.
func (s *Server) Start(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.runctx != nil {
		return
	}
	s.runctx, s.cancel = context.WithCancel(ctx)
	s.stopDone = make(chan struct{})
	go s.run(s.runctx, s.stopDone)
}

// Stop shuts the owner goroutine down. Pending commands are abandoned;
// buffered relay events are not guaranteed delivery.
func (s *Server) Stop(ctx context.Context) {
	s.mu.Lock()
	cancel := s.cancel
	done := s.stopDone
	s.runctx = nil
	s.cancel = nil
	s.stopDone = nil
	s.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	select {
	case <-done:
	case <-ctx.Done():
	}
}

// Notify hands a fully-built candidate to the owner and returns the id it was
// stored under. replacesID zero allocates a fresh id.
func (s *Server) Notify(ctx context.Context, n *notification.Notification, replacesID uint32) (uint32, error) {
	runctx := s.running()
	if runctx == nil {
		return 0, ErrStopped
	}
	cmd := notifyCmd{n: n, replacesID: replacesID, reply: make(chan uint32, 1)}
	select {
	case s.cmds <- command{notify: &cmd}:
	case <-runctx.Done():
		return 0, ErrStopped
	case <-ctx.Done():
		return 0, ctx.Err()
	}
	select {
	case id := <-cmd.reply:
		return id, nil
	case <-runctx.Done():
		return 0, ErrStopped
	case <-ctx.Done():
		return 0, ctx.Err()
	}
}

// Close removes the notification if present and always reports
// Closed(id, ClosedByRequest), matching the protocol's fire-and-forget
// closure semantics.
func (s *Server) Close(ctx context.Context, id uint32) error {
	runctx := s.running()
	if runctx == nil {
		return ErrStopped
	}
	select {
	case s.cmds <- command{close: &closeCmd{id: id}}:
		return nil
	case <-runctx.Done():
		return ErrStopped
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Sweep asks the owner to evict everything expired at now. Non-blocking: a
// tick that cannot be enqueued is skipped, the next one will catch up.
func (s *Server) Sweep(now time.Time) {
	if s.running() == nil {
		return
	}
	select {
	case s.cmds <- command{sweep: &sweepCmd{now: now}}:
	default:
	}
}

func (s *Server) running() context.Context {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.runctx
}

func (s *Server) run(ctx context.Context, done chan struct{}) {
	defer close(done)

	st := store.New()
	events := s.surf.Events()

	for {
		select {
		case <-ctx.Done():
			return
		case cmd := <-s.cmds:
			s.handle(st, cmd)
		case ev, ok := <-events:
			if !ok {
				events = nil
				continue
			}
			s.handleGesture(st, ev)
		}
	}
}

func (s *Server) handle(st *store.Store, cmd command) {
	switch {
	case cmd.notify != nil:
		c := cmd.notify
		id := st.Upsert(c.n, c.replacesID)
		s.log.Debug("notification stored",
			logx.Uint32("id", id),
			logx.Bool("replace", c.replacesID != 0),
			logx.Int("live", st.Len()))
		s.surf.Show(c.n)
		c.reply <- id

	case cmd.close != nil:
		id := cmd.close.id
		if st.Remove(id) != nil {
			s.surf.Hide(id)
		}
		// Emitted even when the id was never live.
		s.relay.Closed(id, notification.ReasonClosedByRequest)
		s.log.Debug("notification closed by request", logx.Uint32("id", id))

	case cmd.sweep != nil:
		for _, id := range st.SweepExpired(cmd.sweep.now) {
			s.surf.Hide(id)
			s.relay.Closed(id, notification.ReasonExpired)
			s.log.Debug("notification expired", logx.Uint32("id", id))
		}
	}
}

func (s *Server) handleGesture(st *store.Store, ev surface.Event) {
	switch ev.Kind {
	case surface.EventDismissed:
		if st.Remove(ev.ID) == nil {
			// Already gone (raced with expiry or an explicit close).
			return
		}
		s.surf.Hide(ev.ID)
		s.relay.Closed(ev.ID, notification.ReasonDismissedByUser)
		s.log.Debug("notification dismissed", logx.Uint32("id", ev.ID))

	case surface.EventAction:
		s.relay.ActionInvoked(ev.ID, ev.Key)
		s.log.Debug("action invoked",
			logx.Uint32("id", ev.ID),
			logx.String("key", ev.Key))
	}
}
