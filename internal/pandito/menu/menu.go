// Package menu implements the button-menu state machine.
//
// There is no stored conversation state: "state" is entirely encoded in
// which Token the caller asks to render next, which in turn is encoded in
// the button the user actually pressed (or the intent the classifier
// produced). Render is a pure function of its input token, so the machine
// is always ready for the next event and can serve concurrent rooms without
// locking.
//
// Captions, button rows, and the static per-category place listings come
// from the embedded catalog.yaml, loaded once by NewMachine.
package menu

import (
	_ "embed"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed catalog.yaml
var catalogYAML []byte

// Token identifies a renderable menu. Tokens double as button payloads: a
// button press delivers the token of the menu (or action) it points at.
type Token string

const (
	// TokenNone means "render nothing after this reply".
	TokenNone Token = ""
	// TokenMain is the top-level menu.
	TokenMain Token = "menu"
	// TokenPlaces is the place-category submenu.
	TokenPlaces Token = "lugares"
	// TokenQuickReturn is the single back-to-main affordance appended after
	// every non-menu reply.
	TokenQuickReturn Token = "volver"

	// Category leaves. Each renders a static listing plus the implicit
	// return-to-main affordance.
	TokenNature    Token = "lug_naturaleza"
	TokenWineries  Token = "lug_bodegas"
	TokenShopping  Token = "lug_compras"
	TokenCulture   Token = "lug_cultura"
	TokenMountain  Token = "lug_montana"
	TokenAdventure Token = "lug_aventura"

	// Action tokens carried by main-menu buttons. They are not menus
	// themselves; the engine resolves them to weather/forecast/help replies.
	TokenWeather  Token = "clima"
	TokenForecast Token = "pronostico"
	TokenHelp     Token = "ayuda"
)

// Button is one pressable option: a human label plus the slash command the
// transport renders as its payload.
type Button struct {
	Label   string `yaml:"label"`
	Command string `yaml:"command"`
}

// Layout is a renderable menu: a caption and rows of buttons.
type Layout struct {
	Caption string
	Rows    [][]Button
}

// catalog mirrors catalog.yaml.
type catalog struct {
	Menus map[string]struct {
		Caption string     `yaml:"caption"`
		Rows    [][]Button `yaml:"rows"`
	} `yaml:"menus"`
	Categories map[string]struct {
		Title  string   `yaml:"title"`
		Places []string `yaml:"places"`
		Hint   string   `yaml:"hint"`
	} `yaml:"categories"`
	Help string `yaml:"help"`
}

// Machine renders menu tokens into concrete button layouts.
type Machine struct {
	cat catalog
}

// NewMachine parses the embedded catalog and returns the menu state machine.
func NewMachine() (*Machine, error) {
	var cat catalog
	if err := yaml.Unmarshal(catalogYAML, &cat); err != nil {
		return nil, fmt.Errorf("menu: parse catalog: %w", err)
	}
	for _, name := range []string{string(TokenMain), string(TokenPlaces), string(TokenQuickReturn)} {
		if _, ok := cat.Menus[name]; !ok {
			return nil, fmt.Errorf("menu: catalog is missing menu %q", name)
		}
	}
	for _, tok := range CategoryTokens() {
		if _, ok := cat.Categories[string(tok)]; !ok {
			return nil, fmt.Errorf("menu: catalog is missing category %q", tok)
		}
	}
	return &Machine{cat: cat}, nil
}

// Render resolves token into a button layout. The second return value is
// false for tokens the machine does not recognize; the caller reports
// "option not recognized" and performs no transition.
func (m *Machine) Render(token Token) (Layout, bool) {
	if def, ok := m.cat.Menus[string(token)]; ok {
		return Layout{Caption: def.Caption, Rows: def.Rows}, true
	}
	if cat, ok := m.cat.Categories[string(token)]; ok {
		// Category leaves fold the quick-return row in as the implicit
		// way back to the main menu.
		quick, _ := m.cat.Menus[string(TokenQuickReturn)]
		var b strings.Builder
		b.WriteString(cat.Title)
		b.WriteString("\n")
		for _, p := range cat.Places {
			b.WriteString("- ")
			b.WriteString(p)
			b.WriteString("\n")
		}
		b.WriteString("\n")
		b.WriteString(cat.Hint)
		return Layout{Caption: b.String(), Rows: quick.Rows}, true
	}
	return Layout{}, false
}

// HelpText returns the canned /ayuda reply.
func (m *Machine) HelpText() string {
	return m.cat.Help
}

// WelcomeCaption returns the main-menu caption, used as the canonical
// greeting reply.
func (m *Machine) WelcomeCaption() string {
	return m.cat.Menus[string(TokenMain)].Caption
}

// CategoryTokens lists the six place-category leaves.
func CategoryTokens() []Token {
	return []Token{
		TokenNature, TokenWineries, TokenShopping,
		TokenCulture, TokenMountain, TokenAdventure,
	}
}

// IsCategory reports whether token is a category leaf.
func IsCategory(token Token) bool {
	for _, t := range CategoryTokens() {
		if t == token {
			return true
		}
	}
	return false
}
