package relay

import (
	"testing"

	"notifyd/internal/notification"
	"notifyd/pkg/logx"
)

func TestOrderPreserved(t *testing.T) {
	t.Parallel()
	r := New(8, logx.Nop())

	r.ActionInvoked(1, "default")
	r.Closed(1, notification.ReasonDismissedByUser)
	r.Closed(2, notification.ReasonExpired)
	r.Close()

	var got []Event
	for e := range r.Events() {
		got = append(got, e)
	}
	if len(got) != 3 {
		t.Fatalf("got %d events, want 3", len(got))
	}
	if got[0].Kind != KindAction || got[0].ID != 1 || got[0].Key != "default" {
		t.Fatalf("event 0 = %+v", got[0])
	}
	if got[1].Kind != KindClosed || got[1].Reason != notification.ReasonDismissedByUser {
		t.Fatalf("event 1 = %+v", got[1])
	}
	if got[2].Kind != KindClosed || got[2].ID != 2 || got[2].Reason != notification.ReasonExpired {
		t.Fatalf("event 2 = %+v", got[2])
	}
}

func TestPublishNeverBlocks(t *testing.T) {
	t.Parallel()
	r := New(2, logx.Nop())

	// No consumer: overfill the buffer. Publish must drop, not block.
	for i := uint32(1); i <= 10; i++ {
		r.Closed(i, notification.ReasonExpired)
	}

	r.Close()
	var n int
	for range r.Events() {
		n++
	}
	if n != 2 {
		t.Fatalf("buffered %d events, want 2", n)
	}
}

func TestPublishAfterClose(t *testing.T) {
	t.Parallel()
	r := New(4, logx.Nop())
	r.Close()

	// Must not panic or deadlock.
	r.Closed(1, notification.ReasonUndefined)
	r.ActionInvoked(1, "k")
	r.Close()

	if _, open := <-r.Events(); open {
		t.Fatal("events channel should be closed")
	}
}
