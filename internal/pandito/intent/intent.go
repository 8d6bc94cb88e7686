// Package intent classifies free text that did not resolve to a known place.
//
// Classification is deterministic keyword matching — no LLM is involved in
// routing decisions. Each category is a keyword set; a category matches when
// any of its keywords appears as a substring of the lowercased, trimmed
// query. Categories are evaluated in a fixed order and the first match wins:
//
//	greeting → forecast → weather → menu → fallback
//
// Greeting goes first because greeting phrases are short and would otherwise
// be absorbed by a loosely matching bucket ("buenas tardes" contains
// "tarde"). Forecast precedes weather because its keywords are the more
// specific subset and the two co-occur in sentences like "va a llover hoy?".
// Fallback is the catch-all, so Classify is total over input strings.
package intent

import (
	"strings"

	"github.com/pandito-bot/pandito/internal/pandito/kb"
)

// Kind is the category a chat turn resolved to.
type Kind string

const (
	// KindGreeting is a salutation; the reply is the main menu.
	KindGreeting Kind = "greeting"
	// KindForecast asks about upcoming weather.
	KindForecast Kind = "forecast"
	// KindWeather asks about current conditions.
	KindWeather Kind = "weather"
	// KindMenu asks to get back to the main menu.
	KindMenu Kind = "menu"
	// KindPlace is a successful knowledge-base lookup.
	KindPlace Kind = "place"
	// KindHelp is a help request arriving via button or command.
	KindHelp Kind = "help"
	// KindFallback is an open question delegated to the text generator.
	KindFallback Kind = "fallback"
)

// Intent is the tagged result of routing one inbound text.
//
// Place is set only for KindPlace; Raw carries the original query for
// KindFallback so the generator sees what the user actually wrote.
type Intent struct {
	Kind  Kind
	Place *kb.Record
	Raw   string
}

// Keyword sets, carried over from the original guide bot. Accented and
// unaccented spellings are both listed because users type either.
var (
	greetingWords = []string{
		"hola", "buenas", "buen día", "buen dia", "buenas tardes",
		"buenas noches", "qué tal", "que tal", "hey", "hi", "holis",
	}
	forecastWords = []string{
		"pronóstico", "pronostico", "previsión", "prevision", "mañana",
		"tarde", "noche", "va a llover", "lloverá", "llovera", "tormenta",
	}
	weatherWords = []string{
		"tiempo", "frío", "frio", "calor", "lluvia", "nieve", "clima",
		"temperatura", "hoy",
	}
	menuWords = []string{
		"menu", "menú", "inicio", "volver", "empezar", "principal",
	}
)

// Classifier buckets free text into intents. It is stateless: classifying
// the same text twice yields the same result.
type Classifier struct{}

// NewClassifier returns a Classifier.
func NewClassifier() *Classifier {
	return &Classifier{}
}

// Classify maps text to exactly one Intent. It never fails; text that
// matches no keyword set becomes a fallback carrying the raw query.
func (c *Classifier) Classify(text string) Intent {
	q := strings.ToLower(strings.TrimSpace(text))

	switch {
	case containsAny(q, greetingWords):
		return Intent{Kind: KindGreeting, Raw: text}
	case containsAny(q, forecastWords):
		return Intent{Kind: KindForecast, Raw: text}
	case containsAny(q, weatherWords):
		return Intent{Kind: KindWeather, Raw: text}
	case containsAny(q, menuWords):
		return Intent{Kind: KindMenu, Raw: text}
	default:
		return Intent{Kind: KindFallback, Raw: text}
	}
}

// PlaceMatch wraps a resolved knowledge-base record as an Intent.
func PlaceMatch(rec *kb.Record) Intent {
	return Intent{Kind: KindPlace, Place: rec}
}

func containsAny(q string, words []string) bool {
	for _, w := range words {
		if strings.Contains(q, w) {
			return true
		}
	}
	return false
}
