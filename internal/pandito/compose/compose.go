// Package compose turns resolved intents into outbound reply text.
//
// The composer is the only layer that talks to the slow collaborators
// (weather API, text generator). Every collaborator call is bounded by a
// timeout, and every failure maps to a fixed, friendly apology so the
// conversation never surfaces a raw error or stalls.
package compose

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/pandito-bot/pandito/internal/pandito/ai"
	"github.com/pandito-bot/pandito/internal/pandito/intent"
	"github.com/pandito-bot/pandito/internal/pandito/kb"
	"github.com/pandito-bot/pandito/internal/pandito/menu"
	"github.com/pandito-bot/pandito/internal/pandito/weather"
)

// defaultTimeout bounds each collaborator call so a hung upstream turns
// into an apology instead of a silent bot.
const defaultTimeout = 8 * time.Second

// Fixed degradation replies. These are deliberately constants: a collaborator
// failure must always produce the same message.
const (
	msgWeatherFailed        = "No pude obtener el clima actual 😕"
	msgForecastFailed       = "No pude obtener el pronóstico."
	msgWeatherNotConfigured = "Servicio de clima no configurado."
	msgForecastNotAvailable = "Servicio de pronóstico no configurado."
	msgAIFailed             = "No pude generar una respuesta en este momento 😕 Probá de nuevo en un rato."
	msgAINotConfigured      = "El asistente de respuestas no está disponible en este momento."

	// genDisclaimer is appended to every generated place description so the
	// user knows it did not come from the curated knowledge base.
	genDisclaimer = "Nota: esta descripción es orientativa. Para datos exactos consultá fuentes oficiales."
)

// WeatherService is the slice of the weather client the composer needs.
type WeatherService interface {
	Current(ctx context.Context) (weather.Current, error)
	Forecast(ctx context.Context) (weather.Forecast, error)
}

// Composer renders intents into reply text plus the menu to show next.
type Composer struct {
	weather WeatherService
	gen     ai.Generator
	timeout time.Duration
	log     *slog.Logger
}

// Option tweaks a Composer.
type Option func(*Composer)

// WithTimeout overrides the per-collaborator timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Composer) { c.timeout = d }
}

// New returns a Composer. Either collaborator may be nil, in which case the
// corresponding intents get the fixed "not configured" reply.
func New(w WeatherService, gen ai.Generator, opts ...Option) *Composer {
	c := &Composer{
		weather: w,
		gen:     gen,
		timeout: defaultTimeout,
		log:     slog.Default().With("component", "compose"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Compose renders one intent. It always returns usable text (or an empty
// string when the menu caption alone is the reply) and the menu token the
// caller should render afterwards.
func (c *Composer) Compose(ctx context.Context, in intent.Intent) (string, menu.Token) {
	switch in.Kind {
	case intent.KindGreeting, intent.KindMenu:
		// The main-menu caption is the greeting; no separate text bubble.
		return "", menu.TokenMain
	case intent.KindPlace:
		return FormatPlace(in.Place), menu.TokenQuickReturn
	case intent.KindWeather:
		return c.currentWeather(ctx), menu.TokenQuickReturn
	case intent.KindForecast:
		return c.forecast(ctx), menu.TokenQuickReturn
	default:
		return c.describe(ctx, in.Raw), menu.TokenQuickReturn
	}
}

// Answer replies to an explicit open question, degrading to fixed messages
// when the generator is missing or fails.
func (c *Composer) Answer(ctx context.Context, question string) string {
	if c.gen == nil {
		return msgAINotConfigured
	}
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	text, err := c.gen.Answer(ctx, question)
	if err != nil {
		if errors.Is(err, ai.ErrNotConfigured) {
			return msgAINotConfigured
		}
		c.log.Warn("answer generation failed", "error", err)
		return msgAIFailed
	}
	return text
}

func (c *Composer) currentWeather(ctx context.Context) string {
	if c.weather == nil {
		return msgWeatherNotConfigured
	}
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	cur, err := c.weather.Current(ctx)
	if err != nil {
		if errors.Is(err, weather.ErrNotConfigured) {
			return msgWeatherNotConfigured
		}
		c.log.Warn("current weather lookup failed", "error", err)
		return msgWeatherFailed
	}
	return FormatCurrent(cur)
}

func (c *Composer) forecast(ctx context.Context) string {
	if c.weather == nil {
		return msgForecastNotAvailable
	}
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	f, err := c.weather.Forecast(ctx)
	if err != nil {
		if errors.Is(err, weather.ErrNotConfigured) {
			return msgForecastNotAvailable
		}
		c.log.Warn("forecast lookup failed", "error", err)
		return msgForecastFailed
	}
	return FormatForecast(f)
}

func (c *Composer) describe(ctx context.Context, topic string) string {
	if c.gen == nil {
		return msgAINotConfigured
	}
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	text, err := c.gen.Describe(ctx, topic)
	if err != nil {
		if errors.Is(err, ai.ErrNotConfigured) {
			return msgAINotConfigured
		}
		c.log.Warn("description generation failed", "topic", topic, "error", err)
		return msgAIFailed
	}
	return text + "\n\n" + genDisclaimer
}

// FormatPlace renders a knowledge-base record as a chat card. Optional
// fields are skipped, never shown empty.
func FormatPlace(rec *kb.Record) string {
	var b strings.Builder
	fmt.Fprintf(&b, "📍 *%s*\n", rec.Name)
	if rec.Description != "" {
		fmt.Fprintf(&b, "\n%s\n", rec.Description)
	}
	if rec.HowToGet != "" {
		fmt.Fprintf(&b, "\n🚗 *Cómo llegar:* %s\n", rec.HowToGet)
	}
	if rec.Hours != "" {
		fmt.Fprintf(&b, "\n🕘 *Horarios:* %s\n", rec.Hours)
	}
	if len(rec.Activities) > 0 {
		fmt.Fprintf(&b, "\n🎯 *Actividades:* %s\n", strings.Join(rec.Activities, ", "))
	}
	return strings.TrimRight(b.String(), "\n")
}

// FormatCurrent renders current conditions.
func FormatCurrent(cur weather.Current) string {
	return fmt.Sprintf(
		"🌤️ *Clima actual en Mendoza:*\n\n"+
			"🌡️ Temperatura: %.1f°C\n"+
			"☁️ Cielo: %s\n"+
			"💧 Humedad: %d%%\n"+
			"💨 Viento: %.1f m/s",
		cur.Temp, cur.Description, cur.Humidity, cur.WindSpeed)
}

// FormatForecast renders the ~24-hour outlook.
func FormatForecast(f weather.Forecast) string {
	return fmt.Sprintf(
		"📅 *Pronóstico para hoy en Mendoza:*\n\n"+
			"🌡️ Mínima: %.1f°C\n"+
			"🌡️ Máxima: %.1f°C\n"+
			"🌧️ Prob. de lluvia: %.0f%%\n"+
			"☁️ Cielo: %s",
		f.MinTemp, f.MaxTemp, f.RainChance, f.Sky)
}
