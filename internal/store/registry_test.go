package store

import (
	"math"
	"testing"
)

func TestAllocateSequential(t *testing.T) {
	t.Parallel()
	r := NewRegistry()
	for want := uint32(1); want <= 100; want++ {
		if got := r.Allocate(); got != want {
			t.Fatalf("Allocate = %d, want %d", got, want)
		}
	}
}

func TestAllocateSkipsMarked(t *testing.T) {
	t.Parallel()
	r := NewRegistry()
	r.Mark(1)
	r.Mark(2)
	r.Mark(4)

	if got := r.Allocate(); got != 3 {
		t.Fatalf("Allocate = %d, want 3", got)
	}
	if got := r.Allocate(); got != 5 {
		t.Fatalf("Allocate = %d, want 5", got)
	}
}

func TestAllocateNeverReturnsUsed(t *testing.T) {
	t.Parallel()
	r := NewRegistry()
	seen := map[uint32]bool{}
	for i := 0; i < 1000; i++ {
		id := r.Allocate()
		if id == 0 {
			t.Fatal("Allocate returned the reserved id 0")
		}
		if seen[id] {
			t.Fatalf("Allocate returned %d twice", id)
		}
		seen[id] = true
	}
}

func TestAllocateWrapsPastMax(t *testing.T) {
	t.Parallel()
	r := NewRegistry()
	r.next = math.MaxUint32
	if got := r.Allocate(); got != math.MaxUint32 {
		t.Fatalf("Allocate = %d, want %d", got, uint32(math.MaxUint32))
	}
	// Max is used now, so the scan must wrap back to 1.
	if got := r.Allocate(); got != 1 {
		t.Fatalf("Allocate after wrap = %d, want 1", got)
	}
}

func TestReleaseAllowsReuseWithoutCollisions(t *testing.T) {
	t.Parallel()
	r := NewRegistry()
	for i := 0; i < 4; i++ {
		r.Allocate() // 1..4
	}
	r.Release(2)
	if r.Used(2) {
		t.Fatal("id 2 still used after Release")
	}

	// The candidate keeps scanning upward, so the released id is not handed
	// out immediately, and live ids are still skipped.
	if got := r.Allocate(); got != 5 {
		t.Fatalf("Allocate = %d, want 5", got)
	}

	// Force the scan across the released and the live region.
	r.next = 1
	if got := r.Allocate(); got != 2 {
		t.Fatalf("Allocate = %d, want the released id 2", got)
	}
	if got := r.Allocate(); got != 6 {
		t.Fatalf("Allocate = %d, want 6 (1, 3..5 are live)", got)
	}
}

func TestMarkZeroIgnored(t *testing.T) {
	t.Parallel()
	r := NewRegistry()
	r.Mark(0)
	if r.Used(0) {
		t.Fatal("id 0 must never be marked used")
	}
}
