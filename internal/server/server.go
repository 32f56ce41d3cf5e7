// Package server accepts TCP connections, resolves each peer to a user row,
// and drives the per-connection read loop that feeds the command router.
package server

import (
	"log"
	"net"
	"sync"

	"github.com/parley/chat-app/internal/chat"
	"github.com/parley/chat-app/internal/command"
	"github.com/parley/chat-app/internal/metrics"
	"github.com/parley/chat-app/internal/moderation"
	"github.com/parley/chat-app/internal/user"
)

// Config holds the server's tunable parameters.
type Config struct {
	Addr          string // address to listen on, e.g. "127.0.0.1:8000"
	ReadChunkSize int    // size of the per-connection read buffer
	CatchUpCount  int    // bounded tail delivered by /status and first catch-up
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Addr:          "127.0.0.1:8000",
		ReadChunkSize: 1024,
		CatchUpCount:  20,
	}
}

// Server owns the stores for the lifetime of the process and serves every
// client connection on its own goroutine.
type Server struct {
	cfg      Config
	users    *user.Store
	messages *chat.Store
	mod      *moderation.Moderator
	router   *command.Router

	mu        sync.Mutex
	ln        net.Listener
	done      chan struct{}
	closeOnce sync.Once
}

// New creates a Server wired to the given stores and moderator. The routing
// table is built once here.
func New(cfg Config, users *user.Store, messages *chat.Store, mod *moderation.Moderator) *Server {
	if cfg.ReadChunkSize <= 0 {
		cfg.ReadChunkSize = DefaultConfig().ReadChunkSize
	}
	s := &Server{
		cfg:      cfg,
		users:    users,
		messages: messages,
		mod:      mod,
		done:     make(chan struct{}),
	}
	s.router = s.buildRouter()
	return s
}

// Start listens on the configured address and blocks in the accept loop
// until Shutdown closes the listener.
func (s *Server) Start() error {
	ln, err := net.Listen("tcp", s.cfg.Addr)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.ln = ln
	s.mu.Unlock()

	log.Printf("server: listening on %s", ln.Addr())

	for {
		conn, err := ln.Accept()
		if err != nil {
			select {
			case <-s.done:
				return nil
			default:
			}
			log.Printf("server: accept error: %v", err)
			continue
		}
		go s.serve(conn)
	}
}

// Addr returns the listener's address, or nil before Start has bound it.
func (s *Server) Addr() net.Addr {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ln == nil {
		return nil
	}
	return s.ln.Addr()
}

// serve runs one connection's read loop. Each fixed-size chunk read from the
// transport is treated as a single request line; an empty read or transport
// error ends only this connection's loop.
func (s *Server) serve(conn net.Conn) {
	metrics.ConnectionsTotal.Inc()
	defer metrics.ConnectionsTotal.Dec()

	u := s.resolveUser(conn)
	log.Printf("server: start serving %s", u)

	buf := make([]byte, s.cfg.ReadChunkSize)
	for {
		n, err := conn.Read(buf)
		if n > 0 {
			s.router.Dispatch(u, string(buf[:n]))
		}
		if err != nil || n == 0 {
			break
		}
	}

	log.Printf("server: stop serving %s, closing connection", u)
	u.SetConnected(false)
	u.CloseConn()
}

// resolveUser derives the peer identity from the remote address and returns
// the existing row or a freshly created one. The fresh transport is attached
// either way, so a returning peer reuses its row.
func (s *Server) resolveUser(conn net.Conn) *user.User {
	addr := conn.RemoteAddr()
	id := user.IDFromAddr(addr)
	host, port, _ := net.SplitHostPort(addr.String())

	u := s.users.Resolve(id, func() *user.User {
		return user.New(id, host, port, s.mod.MessageQuota())
	})
	u.AttachConn(conn)
	return u
}

// Shutdown stops the accept loop, drops every live session, clears both
// stores (closing every held transport), and releases the listener. Safe to
// call more than once.
func (s *Server) Shutdown() {
	s.closeOnce.Do(func() {
		log.Printf("server: shutting down...")
		close(s.done)

		s.mu.Lock()
		ln := s.ln
		s.mu.Unlock()
		if ln != nil {
			ln.Close()
		}

		for _, u := range s.users.All() {
			if u.IsConnected() {
				log.Printf("server: dropping session for %s", u)
				u.SetConnected(false)
			}
		}
		s.messages.Clear()
		s.users.Clear()
		log.Printf("server: stopped, all connections closed")
	})
}
