// Package surface is the boundary to the rendering side: whatever lays out
// and draws notifications on screen and reports user gestures back.
//
// The core only depends on this interface; the actual windowing toolkit lives
// outside the daemon. The Log surface renders to the log, which keeps the
// daemon fully functional for clients that only care about the protocol.
package surface

import (
	"strings"
	"time"

	"notifyd/internal/markup"
	"notifyd/internal/notification"
	"notifyd/pkg/logx"
)

// EventKind discriminates the gestures a surface reports.
type EventKind int

const (
	// EventDismissed means the user dismissed the notification.
	EventDismissed EventKind = iota
	// EventAction means the user invoked one of the notification's actions.
	EventAction
)

type Event struct {
	Kind EventKind
	ID   uint32
	Key  string // set for EventAction
}

// Surface is informed of every store mutation and reports user gestures.
// Show is called both for new notifications and for in-place replacements.
type Surface interface {
	Show(n *notification.Notification)
	Hide(id uint32)
	// Events delivers user gestures to the server loop. Implementations
	// must use a buffered channel and never block on a slow consumer.
	Events() <-chan Event
	Close() error
}

// Log is a Surface that writes what it would draw to the log. It never
// produces user gestures.
type Log struct {
	log    logx.Logger
	events chan Event
}

func NewLog(log logx.Logger) *Log {
	return &Log{log: log, events: make(chan Event, 16)}
}

func (s *Log) Show(n *notification.Notification) {
	fields := []logx.Field{
		logx.Uint32("id", n.ID),
		logx.String("app", n.DisplayName),
		logx.String("summary", n.Summary),
		logx.String("urgency", n.Urgency.String()),
		logx.String("age", n.Age(time.Now())),
	}
	if n.Icon != "" {
		fields = append(fields, logx.String("icon", n.Icon))
	}
	if len(n.Body) > 0 {
		fields = append(fields, logx.String("body", renderBody(n.Body)))
	}
	if len(n.Actions) > 0 {
		keys := make([]string, len(n.Actions))
		for i, a := range n.Actions {
			keys[i] = a.Key
		}
		fields = append(fields, logx.String("actions", strings.Join(keys, ",")))
	}
	s.log.Info("show notification", fields...)
}

func (s *Log) Hide(id uint32) {
	s.log.Info("hide notification", logx.Uint32("id", id))
}

func (s *Log) Events() <-chan Event { return s.events }

func (s *Log) Close() error {
	close(s.events)
	return nil
}

// renderBody flattens body elements into a single loggable line.
func renderBody(body []markup.BodyElement) string {
	var b strings.Builder
	for i, el := range body {
		if i > 0 {
			b.WriteString(" | ")
		}
		switch e := el.(type) {
		case markup.RichText:
			for _, run := range e {
				b.WriteString(run.Text)
			}
		case markup.Image:
			b.WriteString("[img ")
			b.WriteString(e.Alt)
			b.WriteString("]")
		}
	}
	return b.String()
}
