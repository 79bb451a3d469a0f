// Package notification defines the notification record and the pure policy
// around urgency, expiry and close reasons.
package notification

import (
	"time"

	humanize "github.com/dustin/go-humanize"

	"notifyd/internal/markup"
)

// Urgency is the severity tier supplied by the client. Critical notifications
// are exempt from automatic expiry.
type Urgency int

const (
	UrgencyLow Urgency = iota
	UrgencyNormal
	UrgencyCritical
)

func (u Urgency) String() string {
	switch u {
	case UrgencyLow:
		return "low"
	case UrgencyNormal:
		return "normal"
	case UrgencyCritical:
		return "critical"
	default:
		return "unknown"
	}
}

// UrgencyFromHint maps the wire urgency level (0/1/2) to an Urgency.
// Out-of-range levels fall back to Normal; ok is false so the caller can log
// the unexpected value. A call always yields a usable urgency.
func UrgencyFromHint(level byte) (Urgency, bool) {
	switch level {
	case 0:
		return UrgencyLow, true
	case 1:
		return UrgencyNormal, true
	case 2:
		return UrgencyCritical, true
	default:
		return UrgencyNormal, false
	}
}

// CloseReason classifies why a notification's life ended.
type CloseReason uint32

// Wire codes from the notification spec's NotificationClosed signal.
const (
	ReasonExpired         CloseReason = 1
	ReasonDismissedByUser CloseReason = 2
	ReasonClosedByRequest CloseReason = 3
	ReasonUndefined       CloseReason = 4
)

func (r CloseReason) String() string {
	switch r {
	case ReasonExpired:
		return "expired"
	case ReasonDismissedByUser:
		return "dismissed-by-user"
	case ReasonClosedByRequest:
		return "closed-by-request"
	default:
		return "undefined"
	}
}

// Action is one (key, label) pair a client offers on a notification.
type Action struct {
	Key   string
	Label string
}

// Notification is one user-visible alert. The id is immutable after creation;
// every other field is replaced wholesale when a client re-notifies with the
// same id.
type Notification struct {
	ID        uint32
	CreatedAt time.Time
	// ExpireAt zero means the notification never expires automatically.
	ExpireAt time.Time
	Urgency  Urgency

	// DisplayName is the resolved application name, Icon the resolved icon
	// path. Both are settled at the protocol boundary before the record
	// reaches the store.
	DisplayName string
	Icon        string
	Summary     string

	// Body is nil when the client sent an empty body.
	Body []markup.BodyElement
	// Actions is nil when the client supplied none.
	Actions []Action
}

// Expired reports whether the notification's expiry time has passed at now.
func (n *Notification) Expired(now time.Time) bool {
	return !n.ExpireAt.IsZero() && n.ExpireAt.Before(now)
}

// Age renders the notification's age for the surface, e.g. "2 minutes ago".
func (n *Notification) Age(now time.Time) string {
	return humanize.RelTime(n.CreatedAt, now, "ago", "from now")
}

// ExpireTime applies the expiry policy to a requested timeout:
//
//   - Critical notifications never expire, whatever the client asked for.
//   - A timeout of exactly 0 never expires.
//   - The -1 sentinel means "server default" and expires after def.
//   - Any other timeout expires that many milliseconds after creation.
//
// A zero return means no automatic expiry.
func ExpireTime(created time.Time, timeoutMs int32, urgency Urgency, def time.Duration) time.Time {
	if urgency == UrgencyCritical || timeoutMs == 0 {
		return time.Time{}
	}
	if timeoutMs == -1 {
		return created.Add(def)
	}
	return created.Add(time.Duration(timeoutMs) * time.Millisecond)
}

// PairActions interprets the protocol's flat action list as consecutive
// (key, label) pairs. An odd trailing element is dropped. Returns nil when no
// complete pair exists.
func PairActions(list []string) []Action {
	if len(list) < 2 {
		return nil
	}
	actions := make([]Action, 0, len(list)/2)
	for i := 0; i+1 < len(list); i += 2 {
		actions = append(actions, Action{Key: list[i], Label: list[i+1]})
	}
	return actions
}
