package moderation

import (
	"log"
	"sync"
	"time"

	"github.com/parley/chat-app/internal/chat"
	"github.com/parley/chat-app/internal/metrics"
	"github.com/parley/chat-app/internal/user"
)

// Config holds the moderation policy knobs.
type Config struct {
	MessageQuota    int           // sends allowed before the throttle arms
	ThrottleFor     time.Duration // how long a throttle lasts
	ReportThreshold int           // reports needed to arm a ban
	BanFor          time.Duration // how long a ban lasts
	MessageTTL      time.Duration // message time-to-live
	SweepInterval   time.Duration // how often the sweeper scans the log
}

// Moderator applies the quota, report, and expiry policies and owns the
// timers that revert them. Scheduled callbacks are independent of any
// connection and fire even if the affected user is offline.
type Moderator struct {
	cfg      Config
	sched    *Scheduler
	messages *chat.Store

	stopOnce sync.Once
	done     chan struct{}
}

// New creates a Moderator using the given scheduler and message store.
func New(cfg Config, sched *Scheduler, messages *chat.Store) *Moderator {
	return &Moderator{
		cfg:      cfg,
		sched:    sched,
		messages: messages,
		done:     make(chan struct{}),
	}
}

// MessageQuota returns the configured per-user send quota. New user rows
// start with this budget.
func (m *Moderator) MessageQuota() int {
	return m.cfg.MessageQuota
}

// ConsumeQuota charges one send against the user's quota. Exhausting the
// quota arms the throttle and schedules its clearance; the clear callback
// restores the full quota. A stale callback (fired after a re-arm) is a
// no-op thanks to the deadline check in ClearThrottleIf.
func (m *Moderator) ConsumeQuota(u *user.User) {
	until, throttled := u.ConsumeQuota(m.cfg.ThrottleFor)
	if !throttled {
		return
	}

	metrics.ThrottlesTotal.Inc()
	log.Printf("moderation: throttled %s until %s", u, until.Format(time.TimeOnly))

	m.sched.After(m.cfg.ThrottleFor, func() {
		if u.ClearThrottleIf(until, m.cfg.MessageQuota) {
			log.Printf("moderation: throttle cleared for %s", u)
		}
	})
}

// Report files one report against the target. Reaching the threshold arms
// the ban and schedules its clearance; the report counter is not reset by
// the ban. Returns whether the target is banned as a result of this report.
func (m *Moderator) Report(target *user.User) bool {
	until, banned := target.AddReport(m.cfg.ReportThreshold, m.cfg.BanFor)
	if !banned {
		return false
	}

	metrics.BansTotal.Inc()
	log.Printf("moderation: %d reports on %s, banned until %s",
		target.Reports(), target, until.Format(time.TimeOnly))

	m.sched.After(m.cfg.BanFor, func() {
		if target.ClearBanIf(until) {
			log.Printf("moderation: ban cleared for %s", target)
		}
	})
	return true
}

// TrackMessage schedules the message's removal after its time-to-live. This
// is a fast path on top of the sweeper; both removal paths are idempotent.
func (m *Moderator) TrackMessage(msg *chat.Message) {
	m.sched.After(m.cfg.MessageTTL, func() {
		m.messages.Remove(msg)
		metrics.MessagesStored.Set(float64(m.messages.Len()))
	})
}

// StartSweeper launches the background goroutine that evicts expired
// messages on a fixed interval. The sweep is the source of truth for message
// expiry; it provides eventual cleanup independent of per-message timers.
func (m *Moderator) StartSweeper() {
	go func() {
		ticker := time.NewTicker(m.cfg.SweepInterval)
		defer ticker.Stop()

		for {
			select {
			case <-m.done:
				return
			case <-ticker.C:
				cutoff := time.Now().Add(-m.cfg.MessageTTL)
				if n := m.messages.Sweep(cutoff); n > 0 {
					metrics.MessagesExpired.Add(float64(n))
					metrics.MessagesStored.Set(float64(m.messages.Len()))
					log.Printf("[sweeper] removed %d expired messages", n)
				}
			}
		}
	}()
}

// Stop terminates the sweeper goroutine. Safe to call more than once.
func (m *Moderator) Stop() {
	m.stopOnce.Do(func() { close(m.done) })
}
