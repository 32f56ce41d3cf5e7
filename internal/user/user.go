// Package user manages the identity-keyed registry of chat users. A user row
// is created on first contact from a peer address and reused for repeated
// connections from the same address; rows are only deleted on process
// shutdown.
package user

import (
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"net"
	"sync"
	"time"
)

// User holds the per-identity connection and moderation state. All flag and
// counter mutation goes through methods holding the per-user mutex so that
// cross-entity sequences (report -> ban, send -> throttle) are atomic
// check-then-set operations.
type User struct {
	ID   string
	Host string
	Port string

	mu           sync.Mutex
	conn         net.Conn // owned by the server for the session's lifetime
	connected    bool
	quota        int
	chatBlocked  bool
	blockedUntil time.Time
	reports      int
	banned       bool
	bannedUntil  time.Time
	lastStatusAt time.Time
}

// IDFromAddr derives the stable user identity from a peer address.
func IDFromAddr(addr net.Addr) string {
	sum := md5.Sum([]byte(addr.String()))
	return hex.EncodeToString(sum[:])
}

// New creates a user row for the given identity with a full message quota.
func New(id, host, port string, quota int) *User {
	return &User{ID: id, Host: host, Port: port, quota: quota}
}

func (u *User) String() string {
	return fmt.Sprintf("User[<%s> (%s:%s)]", u.ID, u.Host, u.Port)
}

// AttachConn hands the transport for the current TCP connection to the user
// row. Called by the server on accept; a reused row gets the fresh conn.
func (u *User) AttachConn(conn net.Conn) {
	u.mu.Lock()
	u.conn = conn
	u.mu.Unlock()
}

// WriteLine writes one newline-terminated line to the user's transport.
// The per-user mutex serializes writes from handlers and catch-up delivery.
func (u *User) WriteLine(line string) error {
	u.mu.Lock()
	defer u.mu.Unlock()
	if u.conn == nil {
		return fmt.Errorf("user: %s has no transport", u.ID)
	}
	_, err := u.conn.Write([]byte(line + "\n"))
	return err
}

// CloseConn closes the user's transport if one is attached.
func (u *User) CloseConn() {
	u.mu.Lock()
	conn := u.conn
	u.conn = nil
	u.mu.Unlock()
	if conn != nil {
		conn.Close()
	}
}

// IsConnected reports whether the user has issued /connect on the current
// session.
func (u *User) IsConnected() bool {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.connected
}

// SetConnected flips the connected flag.
func (u *User) SetConnected(v bool) {
	u.mu.Lock()
	u.connected = v
	u.mu.Unlock()
}

// Quota returns the remaining message quota.
func (u *User) Quota() int {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.quota
}

// Reports returns the accumulated report count.
func (u *User) Reports() int {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.reports
}

// BanStatus returns the ban flag together with its expiry.
func (u *User) BanStatus() (bool, time.Time) {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.banned, u.bannedUntil
}

// ThrottleStatus returns the chat-block flag together with its expiry.
func (u *User) ThrottleStatus() (bool, time.Time) {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.chatBlocked, u.blockedUntil
}

// LastStatusAt returns the timestamp of the user's last /status query. The
// second return value is false if the user never queried status.
func (u *User) LastStatusAt() (time.Time, bool) {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.lastStatusAt, !u.lastStatusAt.IsZero()
}

// TouchStatus records the time of a /status query for future catch-up
// windows.
func (u *User) TouchStatus(t time.Time) {
	u.mu.Lock()
	u.lastStatusAt = t
	u.mu.Unlock()
}

// ConsumeQuota decrements the message quota by one, clamped at zero. When
// the quota reaches zero the user transitions into the throttled state with
// the given expiry window. Returns the throttle deadline and whether the
// throttle was armed by this call.
func (u *User) ConsumeQuota(blockFor time.Duration) (time.Time, bool) {
	u.mu.Lock()
	defer u.mu.Unlock()
	if u.quota == 0 {
		return time.Time{}, false
	}
	u.quota--
	if u.quota > 0 {
		return time.Time{}, false
	}
	u.chatBlocked = true
	u.blockedUntil = time.Now().Add(blockFor)
	return u.blockedUntil, true
}

// ClearThrottleIf clears the throttle and restores the quota, but only if
// the live deadline still matches the one captured when the timer was armed.
// A stale callback firing after a re-arm is a no-op.
func (u *User) ClearThrottleIf(deadline time.Time, resetQuota int) bool {
	u.mu.Lock()
	defer u.mu.Unlock()
	if !u.chatBlocked || !u.blockedUntil.Equal(deadline) {
		return false
	}
	u.chatBlocked = false
	u.blockedUntil = time.Time{}
	u.quota = resetQuota
	return true
}

// AddReport increments the report counter. Once the counter reaches the
// threshold the user transitions into the banned state with the given
// duration; reports past the threshold re-arm the ban to a fresh deadline.
// The counter is never reset by the ban itself. Returns the ban deadline and
// whether a ban was (re)armed by this call.
func (u *User) AddReport(threshold int, banFor time.Duration) (time.Time, bool) {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.reports++
	if u.reports < threshold {
		return time.Time{}, false
	}
	u.banned = true
	u.bannedUntil = time.Now().Add(banFor)
	return u.bannedUntil, true
}

// ClearBanIf clears the ban if the live deadline still matches the captured
// one, mirroring ClearThrottleIf.
func (u *User) ClearBanIf(deadline time.Time) bool {
	u.mu.Lock()
	defer u.mu.Unlock()
	if !u.banned || !u.bannedUntil.Equal(deadline) {
		return false
	}
	u.banned = false
	u.bannedUntil = time.Time{}
	return true
}
