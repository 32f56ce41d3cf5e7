package server

import (
	"log"
	"time"

	"github.com/parley/chat-app/internal/chat"
	"github.com/parley/chat-app/internal/command"
	"github.com/parley/chat-app/internal/metrics"
	"github.com/parley/chat-app/internal/protocol"
	"github.com/parley/chat-app/internal/user"
)

// buildRouter registers the command handlers. /connect is the only command
// accepted while disconnected; every other route is wrapped so that a
// disconnected user gets the not-connected notice instead.
func (s *Server) buildRouter() *command.Router {
	r := command.NewRouter()
	r.Handle(protocol.CmdConnect, s.handleConnect)
	r.Handle(protocol.CmdDisconnect, s.connected(s.handleDisconnect))
	r.Handle(protocol.CmdSend, s.connected(s.handleSend))
	r.Handle(protocol.CmdStatus, s.connected(s.handleStatus))
	r.Handle(protocol.CmdReport, s.connected(s.handleReport))
	r.Default(s.connected(s.handleInvalid))
	return r
}

// connected gates a handler on session state.
func (s *Server) connected(h command.Handler) command.Handler {
	return func(u *user.User, cmd command.Command) {
		if !u.IsConnected() {
			s.reply(u, protocol.NoticeNotConnected)
			return
		}
		h(u, cmd)
	}
}

func (s *Server) reply(u *user.User, line string) {
	if err := u.WriteLine(line); err != nil {
		log.Printf("server: write to %s failed: %v", u, err)
	}
}

// handleConnect transitions the user into the connected state and delivers
// the catch-up window. A duplicate /connect is rejected explicitly and
// resets nothing.
func (s *Server) handleConnect(u *user.User, _ command.Command) {
	if u.IsConnected() {
		s.reply(u, protocol.NoticeAlreadyConnected)
		return
	}
	u.SetConnected(true)
	log.Printf("server: %s connected", u)
	s.sendCatchUp(u)
}

func (s *Server) handleDisconnect(u *user.User, _ command.Command) {
	log.Printf("server: %s disconnected", u)
	u.SetConnected(false)
	u.CloseConn()
}

// handleSend stores a message. It is the only command gated by the ban and
// throttle flags: a rejected send is dropped, not queued.
func (s *Server) handleSend(u *user.User, cmd command.Command) {
	if banned, until := u.BanStatus(); banned {
		metrics.MessagesTotal.WithLabelValues("rejected").Inc()
		s.reply(u, protocol.NoticeBanned(until))
		return
	}
	if blocked, until := u.ThrottleStatus(); blocked {
		metrics.MessagesTotal.WithLabelValues("rejected").Inc()
		s.reply(u, protocol.NoticeThrottled(until))
		return
	}

	msg := chat.NewMessage(u, cmd.Text())
	s.messages.Append(msg)
	s.mod.TrackMessage(msg)
	s.mod.ConsumeQuota(u)

	metrics.MessagesTotal.WithLabelValues("accepted").Inc()
	metrics.MessagesStored.Set(float64(s.messages.Len()))
	log.Printf("server: created Message[%s] by %s", msg.ID, u)
}

// handleStatus replies with the bounded tail of the message log and records
// the query time for future catch-up windows. Status stays available to
// throttled and banned users; only sending is gated.
func (s *Server) handleStatus(u *user.User, _ command.Command) {
	msgs := s.messages.Latest(s.cfg.CatchUpCount)
	u.TouchStatus(time.Now())
	log.Printf("server: show %s %d messages", u, len(msgs))

	if len(msgs) == 0 {
		s.reply(u, protocol.NoticeNoMessages)
		return
	}
	for _, m := range msgs {
		s.reply(u, m.String())
	}
}

// handleReport files a report against the target id. Self-reports and
// unknown ids get the user-not-found notice and change nothing.
func (s *Server) handleReport(u *user.User, cmd command.Command) {
	targetID := ""
	if len(cmd.Args) > 0 {
		targetID = cmd.Args[0]
	}

	target := s.users.Get(targetID)
	if target == nil || target.ID == u.ID {
		s.reply(u, protocol.NoticeUserNotFound(targetID))
		return
	}

	log.Printf("server: report by %s on %s", u, target)
	s.mod.Report(target)
}

func (s *Server) handleInvalid(u *user.User, _ command.Command) {
	log.Printf("server: invalid request from %s", u)
	s.reply(u, protocol.NoticeInvalidRequest)
}

// sendCatchUp delivers the connect-time message window: everything since the
// user's last /status query when one is recorded, otherwise the newest
// CatchUpCount messages.
func (s *Server) sendCatchUp(u *user.User) {
	var msgs []*chat.Message
	if since, ok := u.LastStatusAt(); ok {
		msgs = s.messages.Since(since)
	} else {
		msgs = s.messages.Latest(s.cfg.CatchUpCount)
	}

	if len(msgs) == 0 {
		s.reply(u, protocol.NoticeNoMessages)
		return
	}
	for _, m := range msgs {
		s.reply(u, m.String())
	}
}
