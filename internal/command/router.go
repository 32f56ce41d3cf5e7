package command

import (
	"github.com/parley/chat-app/internal/user"
)

// Handler processes one parsed command on behalf of a user.
type Handler func(u *user.User, cmd Command)

// Router dispatches parsed commands to handlers registered by command name.
// Names with no registered route, and requests that fail to parse, go to the
// fallback handler.
type Router struct {
	handlers map[string]Handler
	fallback Handler
}

// NewRouter creates a Router with an empty routing table.
func NewRouter() *Router {
	return &Router{handlers: make(map[string]Handler)}
}

// Handle associates a handler with a command name. A handler already
// registered for the name is silently replaced.
func (r *Router) Handle(name string, h Handler) {
	r.handlers[name] = h
}

// Default registers the fallback handler for unrecognized commands.
func (r *Router) Default(h Handler) {
	r.fallback = h
}

// Dispatch parses the raw request and invokes the matching handler. Command
// names are matched case-sensitively; anything unregistered falls through to
// the default handler with whatever was parsed.
func (r *Router) Dispatch(u *user.User, raw string) {
	cmd, err := Parse(raw)
	if err != nil {
		if r.fallback != nil {
			r.fallback(u, Command{})
		}
		return
	}

	h, ok := r.handlers[cmd.Name]
	if !ok {
		h = r.fallback
	}
	if h != nil {
		h(u, cmd)
	}
}
