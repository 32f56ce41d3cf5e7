package chat

import (
	"fmt"
	"testing"
	"time"

	"github.com/parley/chat-app/internal/protocol"
	"github.com/parley/chat-app/internal/user"
)

func newTestSender(t *testing.T) *user.User {
	t.Helper()
	return user.New("sender-1", "127.0.0.1", "5001", 20)
}

func appendN(t *testing.T, s *Store, sender *user.User, n int) []*Message {
	t.Helper()
	msgs := make([]*Message, 0, n)
	for i := 0; i < n; i++ {
		m := NewMessage(sender, fmt.Sprintf("message %d", i))
		s.Append(m)
		msgs = append(msgs, m)
	}
	return msgs
}

func TestAppendPreservesOrder(t *testing.T) {
	s := NewStore()
	sender := newTestSender(t)
	appendN(t, s, sender, 5)

	got := s.Latest(0)
	if len(got) != 5 {
		t.Fatalf("Latest(0) returned %d messages, want 5", len(got))
	}
	for i, m := range got {
		want := fmt.Sprintf("message %d", i)
		if m.Content != want {
			t.Errorf("message %d content = %q, want %q", i, m.Content, want)
		}
	}
	for i := 1; i < len(got); i++ {
		if got[i].CreatedAt.Before(got[i-1].CreatedAt) {
			t.Errorf("creation times not monotonic at index %d", i)
		}
	}
}

func TestLatestWindowsTheTail(t *testing.T) {
	s := NewStore()
	sender := newTestSender(t)
	appendN(t, s, sender, 5)

	got := s.Latest(3)
	if len(got) != 3 {
		t.Fatalf("Latest(3) returned %d messages, want 3", len(got))
	}
	// Oldest-first within the windowed tail.
	for i, want := range []string{"message 2", "message 3", "message 4"} {
		if got[i].Content != want {
			t.Errorf("window[%d] = %q, want %q", i, got[i].Content, want)
		}
	}

	if got := s.Latest(100); len(got) != 5 {
		t.Errorf("Latest(100) returned %d messages, want all 5", len(got))
	}
}

func TestSinceIsStrict(t *testing.T) {
	s := NewStore()
	sender := newTestSender(t)

	first := NewMessage(sender, "first")
	s.Append(first)
	cut := first.CreatedAt

	time.Sleep(5 * time.Millisecond)
	second := NewMessage(sender, "second")
	s.Append(second)

	got := s.Since(cut)
	if len(got) != 1 {
		t.Fatalf("Since() returned %d messages, want 1", len(got))
	}
	if got[0].Content != "second" {
		t.Errorf("Since() returned %q, want %q", got[0].Content, "second")
	}
}

func TestRemoveIsIdempotent(t *testing.T) {
	s := NewStore()
	sender := newTestSender(t)
	msgs := appendN(t, s, sender, 3)

	s.Remove(msgs[1])
	if s.Len() != 2 {
		t.Fatalf("Len() after remove = %d, want 2", s.Len())
	}
	s.Remove(msgs[1]) // already gone: no-op
	if s.Len() != 2 {
		t.Errorf("Len() after duplicate remove = %d, want 2", s.Len())
	}
}

func TestSweep(t *testing.T) {
	s := NewStore()
	sender := newTestSender(t)
	appendN(t, s, sender, 3)

	if n := s.Sweep(time.Now().Add(-time.Hour)); n != 0 {
		t.Errorf("Sweep(old cutoff) evicted %d, want 0", n)
	}
	if n := s.Sweep(time.Now()); n != 3 {
		t.Errorf("Sweep(now) evicted %d, want 3", n)
	}
	if s.Len() != 0 {
		t.Errorf("Len() after sweep = %d, want 0", s.Len())
	}
}

func TestRoundTripFormatting(t *testing.T) {
	s := NewStore()
	sender := newTestSender(t)
	m := NewMessage(sender, "hello there")
	s.Append(m)

	got := s.Latest(0)[0]
	if got.Sender.ID != "sender-1" || got.Content != "hello there" {
		t.Fatalf("round trip lost data: sender=%q content=%q", got.Sender.ID, got.Content)
	}

	want := fmt.Sprintf("[%s] sender-1 hello there", got.CreatedAt.Format(protocol.TimeLayout))
	if got.String() != want {
		t.Errorf("String() = %q, want %q", got.String(), want)
	}
}

func TestBulkAddAndClear(t *testing.T) {
	s := NewStore()
	sender := newTestSender(t)

	a := NewMessage(sender, "a")
	a.CreatedAt = time.Now()
	b := NewMessage(sender, "b")
	b.CreatedAt = a.CreatedAt.Add(time.Second)
	s.BulkAdd([]*Message{a, b})

	if s.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", s.Len())
	}
	s.Clear()
	if s.Len() != 0 {
		t.Errorf("Len() after Clear = %d, want 0", s.Len())
	}
}
