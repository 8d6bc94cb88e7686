package menu_test

import (
	"strings"
	"testing"

	"github.com/pandito-bot/pandito/internal/pandito/menu"
)

func mustMachine(t *testing.T) *menu.Machine {
	t.Helper()
	m, err := menu.NewMachine()
	if err != nil {
		t.Fatalf("NewMachine: %v", err)
	}
	return m
}

func TestRender_Main(t *testing.T) {
	m := mustMachine(t)
	layout, ok := m.Render(menu.TokenMain)
	if !ok {
		t.Fatal("expected main menu to render")
	}
	if !strings.Contains(layout.Caption, "Pandito") {
		t.Errorf("unexpected main caption %q", layout.Caption)
	}

	var commands []string
	for _, row := range layout.Rows {
		for _, b := range row {
			commands = append(commands, b.Command)
		}
	}
	want := []string{"lugares", "clima", "pronostico", "ayuda"}
	if len(commands) != len(want) {
		t.Fatalf("expected %d buttons, got %d (%v)", len(want), len(commands), commands)
	}
	for i := range want {
		if commands[i] != want[i] {
			t.Errorf("button[%d]: expected %q, got %q", i, want[i], commands[i])
		}
	}
}

func TestRender_PlaceCategoriesExposesSixLeaves(t *testing.T) {
	m := mustMachine(t)
	layout, ok := m.Render(menu.TokenPlaces)
	if !ok {
		t.Fatal("expected category menu to render")
	}
	leaves := 0
	for _, row := range layout.Rows {
		for _, b := range row {
			if menu.IsCategory(menu.Token(b.Command)) {
				leaves++
			}
		}
	}
	if leaves != 6 {
		t.Errorf("expected 6 category leaves, got %d", leaves)
	}
}

// The quick-return layout always carries exactly one button, no matter what
// was rendered before: the machine is stateless.
func TestRender_QuickReturnHasExactlyOneButton(t *testing.T) {
	m := mustMachine(t)
	for _, warmup := range []menu.Token{menu.TokenMain, menu.TokenPlaces, menu.TokenNature} {
		m.Render(warmup)

		layout, ok := m.Render(menu.TokenQuickReturn)
		if !ok {
			t.Fatal("expected quick-return to render")
		}
		buttons := 0
		for _, row := range layout.Rows {
			buttons += len(row)
		}
		if buttons != 1 {
			t.Fatalf("expected exactly one button after %q, got %d", warmup, buttons)
		}
		if layout.Rows[0][0].Command != string(menu.TokenMain) {
			t.Errorf("expected back-to-main command, got %q", layout.Rows[0][0].Command)
		}
	}
}

func TestRender_CategoryLeafListsPlaces(t *testing.T) {
	m := mustMachine(t)
	layout, ok := m.Render(menu.TokenWineries)
	if !ok {
		t.Fatal("expected category leaf to render")
	}
	for _, place := range []string{"Catena Zapata", "Zuccardi", "Trapiche"} {
		if !strings.Contains(layout.Caption, place) {
			t.Errorf("expected listing to mention %q", place)
		}
	}
	// The implicit return-to-main affordance.
	if len(layout.Rows) != 1 || len(layout.Rows[0]) != 1 {
		t.Fatalf("expected a single quick-return button, got %v", layout.Rows)
	}
}

func TestRender_UnknownToken(t *testing.T) {
	m := mustMachine(t)
	if _, ok := m.Render(menu.Token("xyz")); ok {
		t.Error("expected unknown token to not render")
	}
	if _, ok := m.Render(menu.TokenNone); ok {
		t.Error("expected empty token to not render")
	}
}

func TestHelpText(t *testing.T) {
	m := mustMachine(t)
	if !strings.Contains(m.HelpText(), "bodegas") {
		t.Errorf("unexpected help text %q", m.HelpText())
	}
}
