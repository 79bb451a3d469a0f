// Package store owns the mapping of live notification ids to their data and
// the front-to-back display order, together with id allocation.
//
// The store has exactly one logical owner (the server loop); it does no
// locking of its own.
package store

import (
	"time"

	"notifyd/internal/notification"
)

type Store struct {
	registry *Registry

	// notifications holds every live record; order holds the same ids in
	// display order, each exactly once.
	notifications map[uint32]*notification.Notification
	order         []uint32
}

func New() *Store {
	return &Store{
		registry:      NewRegistry(),
		notifications: map[uint32]*notification.Notification{},
	}
}

// Upsert inserts the candidate under an id and returns the id used.
//
// With replacesID zero a fresh id is allocated and appended to the display
// order. A nonzero replacesID is reused as-is, keeping its position when the
// id is live; replacing an id that is not live is accepted and creates a
// fresh entry at the end of the order, which is what clients expect from the
// protocol's permissive replace semantics.
func (s *Store) Upsert(n *notification.Notification, replacesID uint32) uint32 {
	id := replacesID
	if id == 0 {
		id = s.registry.Allocate()
	} else {
		s.registry.Mark(id)
	}

	if _, live := s.notifications[id]; !live {
		s.order = append(s.order, id)
	}
	n.ID = id
	s.notifications[id] = n
	return id
}

// Remove deletes id from the map and the display order. It returns the
// removed record, or nil when the id was not live. The id stays marked used
// in the registry.
func (s *Store) Remove(id uint32) *notification.Notification {
	n, ok := s.notifications[id]
	if !ok {
		return nil
	}
	delete(s.notifications, id)
	for i, oid := range s.order {
		if oid == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return n
}

// SweepExpired removes every notification whose expiry time has passed at now
// and returns their ids in display order.
func (s *Store) SweepExpired(now time.Time) []uint32 {
	var expired []uint32
	for _, id := range s.order {
		if n := s.notifications[id]; n != nil && n.Expired(now) {
			expired = append(expired, id)
		}
	}
	for _, id := range expired {
		s.Remove(id)
	}
	return expired
}

// Get returns the live record for id, or nil.
func (s *Store) Get(id uint32) *notification.Notification {
	return s.notifications[id]
}

// Order returns the current display order. The slice is shared; callers must
// not mutate it.
func (s *Store) Order() []uint32 { return s.order }

func (s *Store) Len() int      { return len(s.notifications) }
func (s *Store) IsEmpty() bool { return len(s.notifications) == 0 }
