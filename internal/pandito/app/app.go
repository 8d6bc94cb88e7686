// Package app assembles and runs the Pandito bot.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"maunium.net/go/mautrix/event"

	"github.com/pandito-bot/pandito/common/trace"
	"github.com/pandito-bot/pandito/internal/pandito/ai"
	"github.com/pandito-bot/pandito/internal/pandito/commands"
	"github.com/pandito-bot/pandito/internal/pandito/compose"
	"github.com/pandito-bot/pandito/internal/pandito/engine"
	"github.com/pandito-bot/pandito/internal/pandito/intent"
	"github.com/pandito-bot/pandito/internal/pandito/kb"
	"github.com/pandito-bot/pandito/internal/pandito/matrix"
	"github.com/pandito-bot/pandito/internal/pandito/menu"
	"github.com/pandito-bot/pandito/internal/pandito/store"
	"github.com/pandito-bot/pandito/internal/pandito/weather"
)

const (
	startupNotice = "🐼 Pandito está listo. Escribí /menu para empezar."
	askUsage      = "Usá: /preguntar <tu pregunta>"
	msgInternal   = "Algo salió mal 😕 Probá de nuevo en un momento."
)

// Config holds the application configuration. Every field comes from the
// environment; there are no package-level settings.
type Config struct {
	DatabasePath string
	// PlacesFile is the path of the place knowledge base. A missing file
	// starts the bot with an empty knowledge base.
	PlacesFile string

	Matrix matrix.Config

	// WeatherAPIKey enables the OpenWeatherMap collaborator. Empty means
	// weather intents get the fixed "not configured" reply.
	WeatherAPIKey string
	// GeminiAPIKey enables generated answers for open questions. Empty
	// means fallback intents get the fixed "not available" reply.
	GeminiAPIKey string
	// GeminiModel overrides the generation model.
	GeminiModel string
}

// App wires the store, transport, engine and command router together.
type App struct {
	cfg      Config
	store    *store.Store
	matrix   *matrix.Client
	engine   *engine.Engine
	composer *compose.Composer
	router   *commands.Router
	log      *slog.Logger
}

// New builds the application from cfg. Optional collaborators (weather,
// generator) degrade to fixed replies instead of failing startup.
func New(ctx context.Context, cfg Config) (*App, error) {
	st, err := store.New(cfg.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("app: open store: %w", err)
	}

	base, err := kb.Load(cfg.PlacesFile)
	if err != nil {
		st.Close()
		return nil, fmt.Errorf("app: load places: %w", err)
	}

	var weatherSvc compose.WeatherService
	if cfg.WeatherAPIKey != "" {
		weatherSvc = weather.NewClient(weather.Config{APIKey: cfg.WeatherAPIKey})
	} else {
		slog.Warn("no weather API key; weather replies disabled")
	}

	var gen ai.Generator
	if cfg.GeminiAPIKey != "" {
		g, err := ai.NewGemini(ctx, ai.Config{APIKey: cfg.GeminiAPIKey, Model: cfg.GeminiModel})
		if err != nil {
			st.Close()
			return nil, fmt.Errorf("app: create generator: %w", err)
		}
		gen = g
	} else {
		slog.Warn("no Gemini API key; generated answers disabled")
	}

	composer := compose.New(weatherSvc, gen)
	eng, err := engine.New(base, composer)
	if err != nil {
		st.Close()
		return nil, fmt.Errorf("app: build engine: %w", err)
	}

	cfg.Matrix.DB = st.DB()
	mx, err := matrix.New(&cfg.Matrix)
	if err != nil {
		st.Close()
		return nil, fmt.Errorf("app: create Matrix client: %w", err)
	}

	a := &App{
		cfg:      cfg,
		store:    st,
		matrix:   mx,
		engine:   eng,
		composer: composer,
		log:      slog.Default().With("component", "app"),
	}
	a.router = a.buildRouter()
	return a, nil
}

// buildRouter registers the slash commands. Menu buttons carry their token
// as the command name, so the fallback handler feeds unclaimed names to the
// engine as button presses; the engine decides whether the token is real.
func (a *App) buildRouter() *commands.Router {
	r := commands.NewRouter("/")

	r.Register("preguntar", a.handleAsk)
	r.Register("start", func(ctx context.Context, cmd *commands.Command, evt *event.Event) (engine.Reply, error) {
		return engine.Reply{Menu: menu.TokenMain, Intent: intent.KindGreeting}, nil
	})
	r.RegisterFallback(func(ctx context.Context, cmd *commands.Command, evt *event.Event) (engine.Reply, error) {
		return a.engine.Handle(ctx, engine.ButtonPress(menu.Token(cmd.Name))), nil
	})
	return r
}

// handleAsk answers an explicit open question through the generator.
func (a *App) handleAsk(ctx context.Context, cmd *commands.Command, evt *event.Event) (engine.Reply, error) {
	if len(cmd.Args) == 0 {
		return engine.Reply{Text: askUsage, Intent: intent.KindHelp}, nil
	}
	text := a.composer.Answer(ctx, cmd.ArgText())
	return engine.Reply{Text: text, Menu: menu.TokenQuickReturn, Intent: intent.KindFallback}, nil
}

// Run starts the Matrix sync loop, announces startup and blocks until an
// interrupt arrives.
func (a *App) Run(ctx context.Context) error {
	if err := a.matrix.Start(ctx, a.handleMessage); err != nil {
		return fmt.Errorf("app: start Matrix client: %w", err)
	}

	for _, roomID := range a.cfg.Matrix.Rooms {
		if err := a.matrix.SendNotice(ctx, roomID, startupNotice); err != nil {
			a.log.Warn("startup notice failed", "room", roomID, "error", err)
		}
	}

	a.log.Info("Pandito is running; press Ctrl+C to stop")

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	select {
	case <-sigCh:
	case <-ctx.Done():
	}

	a.log.Info("shutting down")
	a.Stop()
	return nil
}

// Stop stops the transport and closes the database.
func (a *App) Stop() {
	a.matrix.Stop()
	if err := a.store.Close(); err != nil {
		a.log.Warn("close store", "error", err)
	}
}

// handleMessage processes one inbound room message end to end: route,
// reply, render the next menu, audit.
func (a *App) handleMessage(ctx context.Context, evt *event.Event) {
	content := evt.Content.AsMessage()
	if content == nil {
		return
	}
	text := content.Body

	traceID := trace.GenerateID()
	ctx = trace.WithTraceID(ctx, traceID)
	log := a.log.With("trace_id", traceID, "sender", evt.Sender.String())

	kind := string(engine.KindButtonPress)
	result := "ok"

	reply, err := a.router.Route(ctx, text, evt)
	switch {
	case errors.Is(err, commands.ErrNotACommand):
		kind = string(engine.KindFreeText)
		reply = a.engine.Handle(ctx, engine.FreeText(text))
	case err != nil:
		log.Error("command routing failed", "error", err)
		reply = engine.Reply{Text: msgInternal}
		result = "error"
	}

	roomID := evt.RoomID.String()
	if reply.Text != "" {
		if err := a.matrix.SendFormatted(ctx, roomID, textToHTML(reply.Text), reply.Text); err != nil {
			log.Error("send reply failed", "error", err)
			result = "send_failed"
		}
	}
	if reply.Menu != menu.TokenNone {
		if layout, ok := a.engine.Machine().Render(reply.Menu); ok {
			html, plain := renderLayout(layout)
			if err := a.matrix.SendFormatted(ctx, roomID, html, plain); err != nil {
				log.Error("send menu failed", "error", err)
				result = "send_failed"
			}
		}
	}

	if err := a.store.WriteInteraction(ctx, traceID, evt.Sender.String(), kind, string(reply.Intent), text, result); err != nil {
		log.Warn("audit write failed", "error", err)
	}
	log.Info("handled message", "kind", kind, "intent", string(reply.Intent), "result", result)
}
