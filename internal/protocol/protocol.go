// Package protocol defines the wire-level command names and the notice
// templates exchanged between the chat server and its clients. The framing is
// plain text: every server write is a single UTF-8 line terminated by one
// newline; clients send whitespace-delimited commands whose first token is
// the command name.
package protocol

import (
	"fmt"
	"time"
)

// Client -> Server command names.
const (
	CmdConnect    = "/connect"
	CmdDisconnect = "/disconnect"
	CmdSend       = "/send"
	CmdStatus     = "/status"
	CmdReport     = "/report"
)

// TimeLayout is the timestamp layout used in notices and rendered messages.
const TimeLayout = "15:04:05 02-01-2006"

// Fixed server notices.
const (
	NoticeAlreadyConnected = "already connected"
	NoticeNotConnected     = "not connected — please request connect"
	NoticeNoMessages       = "no messages yet"
	NoticeInvalidRequest   = "invalid request, try again"
)

// NoticeUserNotFound reports that a /report target id matched no known user.
func NoticeUserNotFound(id string) string {
	return fmt.Sprintf("user with %s does not exist", id)
}

// NoticeBanned reports a rejected send while the user's ban is active.
func NoticeBanned(until time.Time) string {
	return fmt.Sprintf("you are banned until %s", until.Format(TimeLayout))
}

// NoticeThrottled reports a rejected send while the user's message quota is
// exhausted.
func NoticeThrottled(until time.Time) string {
	return fmt.Sprintf("you have no message limit, try again at %s", until.Format(TimeLayout))
}

// FormatMessage renders a stored message for delivery to a client.
func FormatMessage(createdAt time.Time, senderID, content string) string {
	return fmt.Sprintf("[%s] %s %s", createdAt.Format(TimeLayout), senderID, content)
}
