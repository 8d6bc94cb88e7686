// Package weather fetches current conditions and the short-range forecast
// for Mendoza from the OpenWeatherMap API.
//
// The location is fixed: Pandito only guides Mendoza. Callers get typed
// results and explicit errors; translating a failure into a user-facing
// apology is the composer's job, not this package's.
package weather

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
	"unicode"
	"unicode/utf8"
)

const (
	defaultBaseURL = "https://api.openweathermap.org/data/2.5"
	defaultTimeout = 8 * time.Second

	// Fixed Mendoza location: city query for current conditions,
	// coordinates for the forecast endpoint.
	cityQuery = "Mendoza,AR"
	latitude  = "-32.889"
	longitude = "-68.845"

	// forecastSlots is how many 3-hour forecast entries make up the rolling
	// ~24-hour window.
	forecastSlots = 8
)

// ErrNotConfigured is returned when no API key was provided. Callers show a
// fixed "service not configured" message instead of failing startup.
var ErrNotConfigured = errors.New("weather: API key not configured")

// Config configures the OpenWeatherMap client.
type Config struct {
	// APIKey is the OpenWeatherMap key. Empty disables the service.
	APIKey string

	// BaseURL overrides the API endpoint, used by tests.
	BaseURL string

	// Timeout bounds each HTTP call. Defaults to 8 s.
	Timeout time.Duration
}

// Client talks to the OpenWeatherMap API. Safe for concurrent use.
type Client struct {
	cfg  Config
	http *http.Client
}

// NewClient returns a Client for cfg.
func NewClient(cfg Config) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = defaultTimeout
	}
	return &Client{
		cfg:  cfg,
		http: &http.Client{Timeout: cfg.Timeout},
	}
}

// Current holds the current conditions in Mendoza.
type Current struct {
	Temp        float64
	Description string
	Humidity    int
	WindSpeed   float64
}

// Forecast summarizes the next ~24 hours: temperature extremes, the peak
// rain probability as a percentage, and the sky description of the nearest
// slot.
type Forecast struct {
	MinTemp    float64
	MaxTemp    float64
	RainChance float64
	Sky        string
}

// --- OpenWeatherMap wire types (only the fields we read) ---

type owmWeather struct {
	Description string `json:"description"`
}

type owmCurrentResponse struct {
	Cod  int `json:"cod"`
	Main struct {
		Temp     float64 `json:"temp"`
		Humidity int     `json:"humidity"`
	} `json:"main"`
	Weather []owmWeather `json:"weather"`
	Wind    struct {
		Speed float64 `json:"speed"`
	} `json:"wind"`
}

type owmForecastResponse struct {
	List []struct {
		Main struct {
			Temp float64 `json:"temp"`
		} `json:"main"`
		Weather []owmWeather `json:"weather"`
		Pop     float64      `json:"pop"`
	} `json:"list"`
}

// Current fetches the current conditions.
func (c *Client) Current(ctx context.Context) (Current, error) {
	if c.cfg.APIKey == "" {
		return Current{}, ErrNotConfigured
	}

	q := url.Values{}
	q.Set("q", cityQuery)
	q.Set("appid", c.cfg.APIKey)
	q.Set("units", "metric")
	q.Set("lang", "es")

	var resp owmCurrentResponse
	if err := c.get(ctx, "/weather", q, &resp); err != nil {
		return Current{}, err
	}
	if resp.Cod != http.StatusOK {
		return Current{}, fmt.Errorf("weather: API returned cod %d", resp.Cod)
	}
	if len(resp.Weather) == 0 {
		return Current{}, fmt.Errorf("weather: response has no conditions entry")
	}

	return Current{
		Temp:        resp.Main.Temp,
		Description: capitalize(resp.Weather[0].Description),
		Humidity:    resp.Main.Humidity,
		WindSpeed:   resp.Wind.Speed,
	}, nil
}

// Forecast fetches the rolling ~24-hour forecast (eight 3-hour slots).
func (c *Client) Forecast(ctx context.Context) (Forecast, error) {
	if c.cfg.APIKey == "" {
		return Forecast{}, ErrNotConfigured
	}

	q := url.Values{}
	q.Set("lat", latitude)
	q.Set("lon", longitude)
	q.Set("appid", c.cfg.APIKey)
	q.Set("units", "metric")
	q.Set("lang", "es")

	var resp owmForecastResponse
	if err := c.get(ctx, "/forecast", q, &resp); err != nil {
		return Forecast{}, err
	}

	slots := resp.List
	if len(slots) > forecastSlots {
		slots = slots[:forecastSlots]
	}
	if len(slots) == 0 {
		return Forecast{}, fmt.Errorf("weather: forecast response has no slots")
	}

	f := Forecast{
		MinTemp: slots[0].Main.Temp,
		MaxTemp: slots[0].Main.Temp,
	}
	for _, slot := range slots {
		if slot.Main.Temp < f.MinTemp {
			f.MinTemp = slot.Main.Temp
		}
		if slot.Main.Temp > f.MaxTemp {
			f.MaxTemp = slot.Main.Temp
		}
		if pct := slot.Pop * 100; pct > f.RainChance {
			f.RainChance = pct
		}
	}
	if len(slots[0].Weather) > 0 {
		f.Sky = capitalize(slots[0].Weather[0].Description)
	}
	return f, nil
}

// get performs one GET call and decodes the JSON body into out.
func (c *Client) get(ctx context.Context, path string, q url.Values, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		c.cfg.BaseURL+path+"?"+q.Encode(), nil)
	if err != nil {
		return fmt.Errorf("weather: create request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("weather: http request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("weather: read response body: %w", err)
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("weather: decode response (HTTP %d): %w", resp.StatusCode, err)
	}
	return nil
}

// capitalize upper-cases the first rune, matching how conditions are shown
// to the user ("cielo claro" → "Cielo claro").
func capitalize(s string) string {
	if s == "" {
		return s
	}
	r, size := utf8.DecodeRuneInString(s)
	return string(unicode.ToUpper(r)) + s[size:]
}
