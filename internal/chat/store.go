package chat

import (
	"sync"
	"time"
)

// Store is the process-wide message log. It preserves insertion order across
// all senders (one shared sequence, no per-sender reordering) and stamps
// creation times that are monotonic non-decreasing across the store.
type Store struct {
	mu    sync.RWMutex
	msgs  []*Message
	stamp time.Time // last assigned creation time
}

// NewStore creates an empty message log.
func NewStore() *Store {
	return &Store{}
}

// Append stamps the message's creation time and adds it to the tail of the
// log. If the wall clock reads earlier than the previous stamp, the previous
// stamp is reused so creation times never go backwards.
func (s *Store) Append(m *Message) {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	if now.Before(s.stamp) {
		now = s.stamp
	}
	s.stamp = now
	m.CreatedAt = now
	s.msgs = append(s.msgs, m)
}

// BulkAdd appends several already-stamped messages, preserving their order.
func (s *Store) BulkAdd(msgs []*Message) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, m := range msgs {
		if m.CreatedAt.After(s.stamp) {
			s.stamp = m.CreatedAt
		}
	}
	s.msgs = append(s.msgs, msgs...)
}

// Latest returns the newest n messages, oldest first. A non-positive n
// returns the whole log. The returned slice is a snapshot safe to iterate
// without the lock.
func (s *Store) Latest(n int) []*Message {
	s.mu.RLock()
	defer s.mu.RUnlock()
	start := 0
	if n > 0 && len(s.msgs) > n {
		start = len(s.msgs) - n
	}
	out := make([]*Message, len(s.msgs)-start)
	copy(out, s.msgs[start:])
	return out
}

// Since returns every message created strictly after t, oldest first.
func (s *Store) Since(t time.Time) []*Message {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*Message, 0)
	for _, m := range s.msgs {
		if m.CreatedAt.After(t) {
			out = append(out, m)
		}
	}
	return out
}

// Remove deletes the message from the log by id. Removing an absent message
// is a no-op, so the per-message expiry timer and the periodic sweeper can
// both fire for the same message.
func (s *Store) Remove(m *Message) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, cur := range s.msgs {
		if cur.ID == m.ID {
			s.msgs = append(s.msgs[:i], s.msgs[i+1:]...)
			return
		}
	}
}

// Sweep removes every message created at or before the cutoff and returns
// how many were evicted.
func (s *Store) Sweep(cutoff time.Time) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	kept := s.msgs[:0]
	evicted := 0
	for _, m := range s.msgs {
		if m.CreatedAt.After(cutoff) {
			kept = append(kept, m)
		} else {
			evicted++
		}
	}
	// Release references past the new tail.
	for i := len(kept); i < len(s.msgs); i++ {
		s.msgs[i] = nil
	}
	s.msgs = kept
	return evicted
}

// Len returns the number of stored messages.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.msgs)
}

// Clear empties the log. Called on process shutdown.
func (s *Store) Clear() {
	s.mu.Lock()
	s.msgs = nil
	s.mu.Unlock()
}
