// Package relay carries outbound closure/action events from the server loop
// to the protocol boundary that emits D-Bus signals.
//
// Contract:
//   - Publishing MUST be non-blocking; the server loop never waits on a slow
//     or dead consumer.
//   - Events are delivered in producer order.
//   - The buffer is sized far above human-interaction and timer-tick rates,
//     so drops only happen when the consumer is gone or wedged.
package relay

import (
	"sync"

	"notifyd/internal/notification"
	"notifyd/pkg/logx"
)

// Kind discriminates the two outbound event families.
type Kind int

const (
	// KindClosed reports that a notification's life ended and why.
	KindClosed Kind = iota
	// KindAction reports that the user invoked one of a notification's
	// actions.
	KindAction
)

type Event struct {
	Kind   Kind
	ID     uint32
	Reason notification.CloseReason // set for KindClosed
	Key    string                   // set for KindAction
}

type Relay struct {
	log logx.Logger

	mu     sync.Mutex
	ch     chan Event
	closed bool
}

func New(buffer int, log logx.Logger) *Relay {
	if buffer <= 0 {
		buffer = 64
	}
	return &Relay{log: log, ch: make(chan Event, buffer)}
}

// Closed publishes a Closed(id, reason) event.
func (r *Relay) Closed(id uint32, reason notification.CloseReason) {
	r.publish(Event{Kind: KindClosed, ID: id, Reason: reason})
}

// ActionInvoked publishes an ActionInvoked(id, key) event.
func (r *Relay) ActionInvoked(id uint32, key string) {
	r.publish(Event{Kind: KindAction, ID: id, Key: key})
}

func (r *Relay) publish(e Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return
	}
	// Non-blocking delivery. A full buffer means the consumer is not
	// draining; dropping beats stalling the server loop.
	select {
	case r.ch <- e:
	default:
		r.log.Warn("relay buffer full, dropping event",
			logx.Uint32("id", e.ID),
			logx.Int("kind", int(e.Kind)))
	}
}

// Events is the consumer side. The channel closes when the relay is closed;
// buffered-but-unread events before the close are not guaranteed delivery to
// the transport.
func (r *Relay) Events() <-chan Event { return r.ch }

// Close tears the conduit down. Publishing after Close is a silent no-op.
func (r *Relay) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return
	}
	r.closed = true
	close(r.ch)
}
