// Package command parses raw request lines into commands and routes them to
// registered handlers. The routing table is static, built once at startup.
package command

import (
	"errors"
	"strings"
)

// ErrEmpty is returned by Parse when the request contains no tokens.
var ErrEmpty = errors.New("command: empty request")

// Command is the transient parse result of one inbound line: the first
// whitespace-delimited token is the name, the rest are arguments.
type Command struct {
	Name string
	Args []string
}

// Parse strips surrounding whitespace and splits the request on runs of
// whitespace. A request with no tokens is invalid.
func Parse(raw string) (Command, error) {
	tokens := strings.Fields(raw)
	if len(tokens) == 0 {
		return Command{}, ErrEmpty
	}
	return Command{Name: tokens[0], Args: tokens[1:]}, nil
}

// Text joins the command arguments back into a single message payload.
func (c Command) Text() string {
	return strings.Join(c.Args, " ")
}
