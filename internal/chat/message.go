// Package chat provides the append-ordered in-memory message log backing the
// broadcast chat. Messages carry a reference to their sender row (never a
// copy) and are immutable after creation except for removal by the expiry
// machinery.
package chat

import (
	"time"

	"github.com/google/uuid"

	"github.com/parley/chat-app/internal/protocol"
	"github.com/parley/chat-app/internal/user"
)

// Message is one accepted /send payload.
type Message struct {
	ID        string
	Sender    *user.User
	Content   string
	CreatedAt time.Time // assigned by Store.Append
}

// NewMessage creates a message for the given sender. The creation timestamp
// is assigned at acceptance, when the message is appended to the store.
func NewMessage(sender *user.User, content string) *Message {
	return &Message{
		ID:      uuid.New().String(),
		Sender:  sender,
		Content: content,
	}
}

// String renders the message in the client display format.
func (m *Message) String() string {
	return protocol.FormatMessage(m.CreatedAt, m.Sender.ID, m.Content)
}
