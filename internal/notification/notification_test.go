package notification

import (
	"reflect"
	"testing"
	"time"
)

func TestUrgencyFromHint(t *testing.T) {
	t.Parallel()
	tests := []struct {
		level byte
		want  Urgency
		ok    bool
	}{
		{level: 0, want: UrgencyLow, ok: true},
		{level: 1, want: UrgencyNormal, ok: true},
		{level: 2, want: UrgencyCritical, ok: true},
		{level: 3, want: UrgencyNormal, ok: false},
		{level: 255, want: UrgencyNormal, ok: false},
	}
	for _, tt := range tests {
		got, ok := UrgencyFromHint(tt.level)
		if got != tt.want || ok != tt.ok {
			t.Fatalf("UrgencyFromHint(%d) = (%v, %v), want (%v, %v)", tt.level, got, ok, tt.want, tt.ok)
		}
	}
}

func TestExpireTime(t *testing.T) {
	t.Parallel()
	created := time.Date(2026, 8, 27, 12, 0, 0, 0, time.UTC)
	def := time.Minute

	tests := []struct {
		name    string
		timeout int32
		urgency Urgency
		want    time.Time
	}{
		{name: "critical never expires", timeout: 5000, urgency: UrgencyCritical},
		{name: "critical with default sentinel", timeout: -1, urgency: UrgencyCritical},
		{name: "zero timeout never expires", timeout: 0, urgency: UrgencyNormal},
		{name: "default sentinel", timeout: -1, urgency: UrgencyNormal, want: created.Add(time.Minute)},
		{name: "explicit timeout", timeout: 2500, urgency: UrgencyLow, want: created.Add(2500 * time.Millisecond)},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := ExpireTime(created, tt.timeout, tt.urgency, def)
			if !got.Equal(tt.want) {
				t.Fatalf("ExpireTime = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestExpired(t *testing.T) {
	t.Parallel()
	now := time.Now()

	n := Notification{ExpireAt: now.Add(-time.Second)}
	if !n.Expired(now) {
		t.Fatal("past expiry should be expired")
	}
	n.ExpireAt = now.Add(time.Second)
	if n.Expired(now) {
		t.Fatal("future expiry should not be expired")
	}
	n.ExpireAt = time.Time{}
	if n.Expired(now) {
		t.Fatal("zero expiry must never expire")
	}
}

func TestPairActions(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		list []string
		want []Action
	}{
		{name: "nil list"},
		{name: "single element dropped", list: []string{"default"}},
		{
			name: "pairs",
			list: []string{"default", "Open", "dismiss", "Dismiss"},
			want: []Action{{Key: "default", Label: "Open"}, {Key: "dismiss", Label: "Dismiss"}},
		},
		{
			name: "odd trailing element dropped",
			list: []string{"default", "Open", "extra"},
			want: []Action{{Key: "default", Label: "Open"}},
		},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := PairActions(tt.list)
			if !reflect.DeepEqual(got, tt.want) {
				t.Fatalf("PairActions(%v) = %v, want %v", tt.list, got, tt.want)
			}
		})
	}
}
