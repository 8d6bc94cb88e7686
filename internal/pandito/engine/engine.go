// Package engine routes inbound chat events to a reply.
//
// The engine is the deterministic core of the bot: place lookup first, then
// keyword classification, then composition. It holds no conversation state;
// the menu shown next travels inside the Reply and comes back as the next
// button press.
package engine

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/pandito-bot/pandito/internal/pandito/compose"
	"github.com/pandito-bot/pandito/internal/pandito/intent"
	"github.com/pandito-bot/pandito/internal/pandito/kb"
	"github.com/pandito-bot/pandito/internal/pandito/matcher"
	"github.com/pandito-bot/pandito/internal/pandito/menu"
)

// msgUnknownOption is the no-op reply for a button payload the menu machine
// does not recognize. No menu transition happens.
const msgUnknownOption = "Opción no reconocida 🙂"

// EventKind tags an inbound event.
type EventKind string

const (
	// KindFreeText is ordinary typed text.
	KindFreeText EventKind = "free_text"
	// KindButtonPress is a menu selection carrying a token payload.
	KindButtonPress EventKind = "button_press"
)

// Event is one inbound chat turn. Exactly one payload field is meaningful,
// selected by Kind; use the constructors.
type Event struct {
	Kind  EventKind
	Text  string     // KindFreeText
	Token menu.Token // KindButtonPress
}

// FreeText wraps typed text as an Event.
func FreeText(text string) Event {
	return Event{Kind: KindFreeText, Text: text}
}

// ButtonPress wraps a menu token as an Event.
func ButtonPress(token menu.Token) Event {
	return Event{Kind: KindButtonPress, Token: token}
}

// Reply is what goes back to the chat: optional text, then an optional menu
// rendered beneath it. Intent records what the turn resolved to, for the
// audit trail.
type Reply struct {
	Text   string
	Menu   menu.Token
	Intent intent.Kind
}

// Engine wires the matcher, classifier, composer and menu machine together.
type Engine struct {
	matcher    *matcher.Matcher
	classifier *intent.Classifier
	composer   *compose.Composer
	machine    *menu.Machine
	log        *slog.Logger
}

// New builds an Engine over a knowledge base and composer.
func New(base *kb.KnowledgeBase, composer *compose.Composer) (*Engine, error) {
	machine, err := menu.NewMachine()
	if err != nil {
		return nil, fmt.Errorf("engine: build menu machine: %w", err)
	}
	return &Engine{
		matcher:    matcher.New(base),
		classifier: intent.NewClassifier(),
		composer:   composer,
		machine:    machine,
		log:        slog.Default().With("component", "engine"),
	}, nil
}

// Machine exposes the menu machine so the transport can render layouts.
func (e *Engine) Machine() *menu.Machine {
	return e.machine
}

// Handle routes one event to a Reply. It is total: every event produces a
// reply, and collaborator failures surface as fixed apology text from the
// composer.
func (e *Engine) Handle(ctx context.Context, ev Event) Reply {
	switch ev.Kind {
	case KindButtonPress:
		return e.handleButton(ctx, ev.Token)
	default:
		return e.handleText(ctx, ev.Text)
	}
}

func (e *Engine) handleText(ctx context.Context, text string) Reply {
	// Empty input gets the main menu back, same as a stale button.
	if strings.TrimSpace(text) == "" {
		return Reply{Menu: menu.TokenMain}
	}

	var in intent.Intent
	if rec := e.matcher.Match(text); rec != nil {
		in = intent.PlaceMatch(rec)
	} else {
		in = e.classifier.Classify(text)
	}
	e.log.Debug("classified free text", "intent", string(in.Kind))

	reply, token := e.composer.Compose(ctx, in)
	return Reply{Text: reply, Menu: token, Intent: in.Kind}
}

func (e *Engine) handleButton(ctx context.Context, token menu.Token) Reply {
	switch token {
	case menu.TokenNone:
		// A stale or malformed press falls back to the top.
		return Reply{Menu: menu.TokenMain, Intent: intent.KindMenu}
	case menu.TokenWeather:
		text, next := e.composer.Compose(ctx, intent.Intent{Kind: intent.KindWeather})
		return Reply{Text: text, Menu: next, Intent: intent.KindWeather}
	case menu.TokenForecast:
		text, next := e.composer.Compose(ctx, intent.Intent{Kind: intent.KindForecast})
		return Reply{Text: text, Menu: next, Intent: intent.KindForecast}
	case menu.TokenHelp:
		return Reply{Text: e.machine.HelpText(), Menu: menu.TokenQuickReturn, Intent: intent.KindHelp}
	}

	if _, ok := e.machine.Render(token); ok {
		return Reply{Menu: token, Intent: intent.KindMenu}
	}
	// Unknown payload: tell the user, change nothing.
	e.log.Debug("unrecognized menu token", "token", string(token))
	return Reply{Text: msgUnknownOption, Intent: intent.KindFallback}
}
