package user

import (
	"errors"
	"net"
	"testing"
	"time"
)

func TestAddDuplicate(t *testing.T) {
	s := NewStore()
	u := New("u1", "127.0.0.1", "5001", 1)

	if err := s.Add(u); err != nil {
		t.Fatalf("Add() error: %v", err)
	}
	err := s.Add(New("u1", "127.0.0.1", "5001", 1))
	if !errors.Is(err, ErrDuplicateID) {
		t.Fatalf("Add() duplicate error = %v, want ErrDuplicateID", err)
	}
	if s.Len() != 1 {
		t.Errorf("Len() = %d, want 1", s.Len())
	}
}

func TestResolveReusesRow(t *testing.T) {
	s := NewStore()
	created := 0
	create := func() *User {
		created++
		return New("u1", "127.0.0.1", "5001", 1)
	}

	first := s.Resolve("u1", create)
	second := s.Resolve("u1", create)

	if first != second {
		t.Error("Resolve() created a duplicate row for one identity")
	}
	if created != 1 {
		t.Errorf("create called %d times, want 1", created)
	}
}

func TestGetAndRemove(t *testing.T) {
	s := NewStore()
	s.BulkAdd([]*User{
		New("u1", "127.0.0.1", "5001", 1),
		New("u2", "127.0.0.1", "5002", 1),
	})

	if got := s.Get("u2"); got == nil || got.ID != "u2" {
		t.Fatalf("Get(u2) = %v", got)
	}
	if got := s.Get("missing"); got != nil {
		t.Fatalf("Get(missing) = %v, want nil", got)
	}

	s.Remove("u2")
	if s.Get("u2") != nil {
		t.Error("user still present after Remove")
	}
	if s.Len() != 1 {
		t.Errorf("Len() = %d, want 1", s.Len())
	}
}

func TestAllSnapshot(t *testing.T) {
	s := NewStore()
	s.BulkAdd([]*User{
		New("u1", "127.0.0.1", "5001", 1),
		New("u2", "127.0.0.1", "5002", 1),
	})

	all := s.All()
	if len(all) != 2 {
		t.Fatalf("All() returned %d users, want 2", len(all))
	}
	seen := map[string]bool{}
	for _, u := range all {
		seen[u.ID] = true
	}
	if !seen["u1"] || !seen["u2"] {
		t.Errorf("All() missing a registered user: %v", seen)
	}

	// The snapshot is detached from the registry.
	s.Remove("u1")
	if len(all) != 2 {
		t.Errorf("snapshot shrank to %d after Remove", len(all))
	}
	if s.Len() != 1 {
		t.Errorf("Len() = %d, want 1", s.Len())
	}
}

func TestClearClosesTransports(t *testing.T) {
	s := NewStore()
	u := New("u1", "127.0.0.1", "5001", 1)
	serverEnd, clientEnd := net.Pipe()
	u.AttachConn(serverEnd)
	if err := s.Add(u); err != nil {
		t.Fatalf("Add() error: %v", err)
	}

	s.Clear()

	if s.Len() != 0 {
		t.Errorf("Len() after Clear = %d, want 0", s.Len())
	}
	clientEnd.SetReadDeadline(time.Now().Add(time.Second))
	buf := make([]byte, 1)
	if _, err := clientEnd.Read(buf); err == nil {
		t.Error("expected read error after Clear closed the transport")
	}
}
