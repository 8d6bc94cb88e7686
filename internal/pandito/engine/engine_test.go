package engine

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/pandito-bot/pandito/internal/pandito/compose"
	"github.com/pandito-bot/pandito/internal/pandito/kb"
	"github.com/pandito-bot/pandito/internal/pandito/menu"
	"github.com/pandito-bot/pandito/internal/pandito/weather"
)

type fakeWeather struct {
	current weather.Current
	err     error
}

func (f *fakeWeather) Current(ctx context.Context) (weather.Current, error) {
	return f.current, f.err
}

func (f *fakeWeather) Forecast(ctx context.Context) (weather.Forecast, error) {
	return weather.Forecast{}, f.err
}

const testPlaces = `{
	"parque san martin": {
		"nombre": "Parque General San Martín",
		"descripcion": "El pulmón verde de la ciudad."
	},
	"cerro de la gloria": {
		"nombre": "Cerro de la Gloria"
	}
}`

func newEngine(t *testing.T, w compose.WeatherService) *Engine {
	t.Helper()
	base, err := kb.Parse([]byte(testPlaces))
	if err != nil {
		t.Fatalf("parse places: %v", err)
	}
	e, err := New(base, compose.New(w, nil))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return e
}

func TestHandle_GreetingShowsMainMenu(t *testing.T) {
	e := newEngine(t, nil)
	reply := e.Handle(context.Background(), FreeText("hola pandito"))
	if reply.Text != "" {
		t.Errorf("expected menu caption only, got extra text %q", reply.Text)
	}
	if reply.Menu != menu.TokenMain {
		t.Errorf("expected main menu, got %q", reply.Menu)
	}
}

func TestHandle_PlaceLookupBeatsClassifier(t *testing.T) {
	e := newEngine(t, nil)
	// "hoy" is a weather keyword, but the place match must win.
	reply := e.Handle(context.Background(), FreeText("parque san martin abre hoy?"))
	if !strings.Contains(reply.Text, "Parque General San Martín") {
		t.Errorf("expected place card, got %q", reply.Text)
	}
	if reply.Menu != menu.TokenQuickReturn {
		t.Errorf("expected quick-return menu, got %q", reply.Menu)
	}
}

func TestHandle_WeatherKeyword(t *testing.T) {
	e := newEngine(t, &fakeWeather{current: weather.Current{
		Temp: 25.0, Description: "Cielo claro", Humidity: 20, WindSpeed: 2.0,
	}})
	reply := e.Handle(context.Background(), FreeText("qué temperatura hace"))
	if !strings.Contains(reply.Text, "25.0°C") {
		t.Errorf("expected current conditions, got %q", reply.Text)
	}
}

func TestHandle_WeatherFailureIsApology(t *testing.T) {
	e := newEngine(t, &fakeWeather{err: errors.New("upstream down")})
	reply := e.Handle(context.Background(), FreeText("como esta el clima"))
	if !strings.Contains(reply.Text, "No pude obtener el clima") {
		t.Errorf("expected fixed apology, got %q", reply.Text)
	}
	if reply.Menu != menu.TokenQuickReturn {
		t.Errorf("expected quick-return menu, got %q", reply.Menu)
	}
}

func TestHandle_ButtonNavigation(t *testing.T) {
	e := newEngine(t, nil)
	for _, token := range []menu.Token{menu.TokenMain, menu.TokenPlaces, menu.TokenWineries} {
		reply := e.Handle(context.Background(), ButtonPress(token))
		if reply.Menu != token {
			t.Errorf("pressing %q: expected that menu back, got %q", token, reply.Menu)
		}
		if reply.Text != "" {
			t.Errorf("pressing %q: expected no extra text, got %q", token, reply.Text)
		}
	}
}

func TestHandle_HelpButton(t *testing.T) {
	e := newEngine(t, nil)
	reply := e.Handle(context.Background(), ButtonPress(menu.TokenHelp))
	if reply.Text == "" {
		t.Error("expected help text")
	}
	if reply.Menu != menu.TokenQuickReturn {
		t.Errorf("expected quick-return menu, got %q", reply.Menu)
	}
}

func TestHandle_UnknownButtonIsNoOp(t *testing.T) {
	e := newEngine(t, nil)
	reply := e.Handle(context.Background(), ButtonPress(menu.Token("lug_playa")))
	if reply.Text != msgUnknownOption {
		t.Errorf("expected unknown-option reply, got %q", reply.Text)
	}
	if reply.Menu != menu.TokenNone {
		t.Errorf("expected no menu transition, got %q", reply.Menu)
	}
}

func TestHandle_EmptyInputsFallBackToMain(t *testing.T) {
	e := newEngine(t, nil)
	if reply := e.Handle(context.Background(), FreeText("   ")); reply.Menu != menu.TokenMain {
		t.Errorf("blank text: expected main menu, got %q", reply.Menu)
	}
	if reply := e.Handle(context.Background(), ButtonPress(menu.TokenNone)); reply.Menu != menu.TokenMain {
		t.Errorf("empty token: expected main menu, got %q", reply.Menu)
	}
}
