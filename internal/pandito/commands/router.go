// Package commands parses and routes slash commands.
//
// Menu buttons are rendered as slash commands, so the command names overlap
// with the menu tokens ("/clima" is the weather button). The router only
// parses and dispatches; what a command does lives in the registered
// handlers.
package commands

import (
	"context"
	"errors"
	"strings"

	"maunium.net/go/mautrix/event"

	"github.com/pandito-bot/pandito/internal/pandito/engine"
	"github.com/pandito-bot/pandito/internal/pandito/menu"
)

// Command is a parsed slash command.
type Command struct {
	Name    string
	Args    []string
	RawText string
}

// ArgText joins the arguments back into the free-text tail of the command.
func (c *Command) ArgText() string {
	return strings.Join(c.Args, " ")
}

// ErrNotACommand is returned by Parse when the message does not start with
// the command prefix. Callers use errors.Is to fall through to free-text
// handling.
var ErrNotACommand = errors.New("not a command (missing prefix)")

// Handler handles one command.
type Handler func(ctx context.Context, cmd *Command, evt *event.Event) (engine.Reply, error)

// Router routes parsed commands to handlers.
type Router struct {
	handlers map[string]Handler
	fallback Handler
	prefix   string
}

// NewRouter creates a Router for the given prefix (normally "/").
func NewRouter(prefix string) *Router {
	return &Router{
		handlers: make(map[string]Handler),
		prefix:   prefix,
	}
}

// Register registers a handler for a command name.
func (r *Router) Register(name string, handler Handler) {
	r.handlers[name] = handler
}

// RegisterFallback registers the handler for command names nothing else
// claimed.
func (r *Router) RegisterFallback(handler Handler) {
	r.fallback = handler
}

// Parse splits a message into a Command. A message that is not a command
// returns ErrNotACommand; a bare prefix parses to a Command with an empty
// Name.
func (r *Router) Parse(text string) (*Command, error) {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, r.prefix) {
		return nil, ErrNotACommand
	}

	text = strings.TrimSpace(strings.TrimPrefix(text, r.prefix))
	parts := strings.Fields(text)
	if len(parts) == 0 {
		return &Command{RawText: text}, nil
	}
	return &Command{
		Name:    strings.ToLower(parts[0]),
		Args:    parts[1:],
		RawText: text,
	}, nil
}

// Route parses text and dispatches it. A bare prefix renders the main menu;
// unregistered names go to the fallback handler.
func (r *Router) Route(ctx context.Context, text string, evt *event.Event) (engine.Reply, error) {
	cmd, err := r.Parse(text)
	if err != nil {
		return engine.Reply{}, err
	}
	if cmd.Name == "" {
		return engine.Reply{Menu: menu.TokenMain}, nil
	}

	handler, ok := r.handlers[cmd.Name]
	if !ok {
		handler = r.fallback
	}
	if handler == nil {
		return engine.Reply{}, errors.New("commands: no handler registered for " + cmd.Name)
	}
	return handler(ctx, cmd, evt)
}
