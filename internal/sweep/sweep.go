// Package sweep ticks the expiry sweeps that evict timed-out notifications.
package sweep

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"notifyd/pkg/logx"
)

// Core is the sweep target. Ticks are fire-and-forget; a busy core may skip
// one and catch up on the next.
type Core interface {
	Sweep(now time.Time)
}

type Service struct {
	log  logx.Logger
	core Core

	mu       sync.Mutex
	interval time.Duration
	c        *cron.Cron
}

func New(log logx.Logger, core Core, interval time.Duration) *Service {
	if interval <= 0 {
		interval = time.Second
	}
	return &Service{log: log, core: core, interval: interval}
}

func (s *Service) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.c != nil {
		return nil
	}
	return s.startLocked()
}

func (s *Service) Stop(ctx context.Context) {
	s.mu.Lock()
	c := s.c
	s.c = nil
	s.mu.Unlock()

	if c == nil {
		return
	}
	select {
	case <-c.Stop().Done():
	case <-ctx.Done():
	}
	s.log.Debug("expiry sweeper stopped")
}

// Apply changes the sweep interval, restarting the ticker when it differs
// from the current one.
func (s *Service) Apply(interval time.Duration) error {
	if interval <= 0 {
		interval = time.Second
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if interval == s.interval {
		return nil
	}
	s.interval = interval
	if s.c == nil {
		return nil
	}
	<-s.c.Stop().Done()
	s.c = nil
	return s.startLocked()
}

func (s *Service) startLocked() error {
	c := cron.New(cron.WithParser(cron.NewParser(cron.Descriptor)))
	spec := fmt.Sprintf("@every %s", s.interval)
	if _, err := c.AddFunc(spec, func() { s.core.Sweep(time.Now()) }); err != nil {
		return fmt.Errorf("schedule %q: %w", spec, err)
	}
	c.Start()
	s.c = c
	s.log.Debug("expiry sweeper started", logx.Duration("interval", s.interval))
	return nil
}
