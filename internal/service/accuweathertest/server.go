// Package accuweathertest provides an in-process AccuWeather stand-in for tests.
package accuweathertest

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/vzahanych/weather-bot-app/internal/config"
)

const DefaultAPIKey = "test-api-key"

// Day is one forecast day as served by the fake.
type Day struct {
	Max           float64
	Min           float64
	Precipitation int
	Wind          float64
}

type failure struct {
	status int
	body   string
}

type Server struct {
	*httptest.Server
	APIKey string

	mu        sync.Mutex
	cities    map[string][]string
	forecasts map[string]string
	failures  map[string]failure
	requests  []string
}

func New(t testing.TB) *Server {
	s := &Server{
		APIKey:    DefaultAPIKey,
		cities:    make(map[string][]string),
		forecasts: make(map[string]string),
		failures:  make(map[string]failure),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/locations/v1/cities/search", s.search)
	mux.HandleFunc("/forecasts/v1/daily/5day/", s.forecast)

	s.Server = httptest.NewServer(mux)
	t.Cleanup(s.Close)

	return s
}

// Config points a provider client at the fake.
func (s *Server) Config() config.ProviderConfig {
	return config.ProviderConfig{
		BaseURL: s.URL,
		APIKey:  s.APIKey,
	}
}

// AddCity registers search hits for name, in order. No keys means an empty result.
func (s *Server) AddCity(name string, keys ...string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cities[name] = keys
}

func (s *Server) AddForecast(key string, days ...Day) {
	s.SetForecastBody(key, ForecastJSON(days...))
}

func (s *Server) SetForecastBody(key, body string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.forecasts[key] = body
}

// FailSearch makes the search for city answer with status and body.
func (s *Server) FailSearch(city string, status int, body string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures["search:"+city] = failure{status: status, body: body}
}

func (s *Server) FailForecast(key string, status int, body string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures["forecast:"+key] = failure{status: status, body: body}
}

// Requests lists the calls served so far as "search:<city>" and "forecast:<key>".
func (s *Server) Requests() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.requests))
	copy(out, s.requests)
	return out
}

func (s *Server) search(w http.ResponseWriter, r *http.Request) {
	city := r.URL.Query().Get("q")
	if !s.handleCommon(w, r, "search:"+city) {
		return
	}

	s.mu.Lock()
	keys := s.cities[city]
	s.mu.Unlock()

	locations := make([]map[string]string, 0, len(keys))
	for _, key := range keys {
		locations = append(locations, map[string]string{"Key": key, "LocalizedName": city})
	}
	writeJSON(w, http.StatusOK, locations)
}

func (s *Server) forecast(w http.ResponseWriter, r *http.Request) {
	key := strings.TrimPrefix(r.URL.Path, "/forecasts/v1/daily/5day/")
	if !s.handleCommon(w, r, "forecast:"+key) {
		return
	}

	q := r.URL.Query()
	if q.Get("language") != "ru-RU" || q.Get("details") != "true" || q.Get("metric") != "true" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"Code": "400", "Message": "Unexpected query parameters"})
		return
	}

	s.mu.Lock()
	body, ok := s.forecasts[key]
	s.mu.Unlock()

	if !ok {
		writeJSON(w, http.StatusBadRequest, map[string]string{"Code": "400", "Message": "Invalid location key"})
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(body))
}

// handleCommon records the call, checks the API key and applies configured
// failures. It reports whether the handler should go on.
func (s *Server) handleCommon(w http.ResponseWriter, r *http.Request, id string) bool {
	s.mu.Lock()
	s.requests = append(s.requests, id)
	fail, failing := s.failures[id]
	s.mu.Unlock()

	if r.URL.Query().Get("apikey") != s.APIKey {
		writeJSON(w, http.StatusUnauthorized, map[string]string{
			"Code":    "Unauthorized",
			"Message": "Api Authorization failed",
		})
		return false
	}

	if failing {
		w.WriteHeader(fail.status)
		_, _ = w.Write([]byte(fail.body))
		return false
	}

	return true
}

// ForecastJSON renders days the way the provider's daily endpoint does.
func ForecastJSON(days ...Day) string {
	type value struct {
		Value float64 `json:"Value"`
		Unit  string  `json:"Unit"`
	}
	type daily struct {
		Date        string `json:"Date"`
		Temperature struct {
			Minimum value `json:"Minimum"`
			Maximum value `json:"Maximum"`
		} `json:"Temperature"`
		Day struct {
			PrecipitationProbability int `json:"PrecipitationProbability"`
			Wind                     struct {
				Speed value `json:"Speed"`
			} `json:"Wind"`
		} `json:"Day"`
	}

	out := struct {
		DailyForecasts []daily `json:"DailyForecasts"`
	}{DailyForecasts: make([]daily, 0, len(days))}

	for i, d := range days {
		var entry daily
		entry.Date = fmt.Sprintf("2024-06-%02dT07:00:00+03:00", i+1)
		entry.Temperature.Minimum = value{Value: d.Min, Unit: "C"}
		entry.Temperature.Maximum = value{Value: d.Max, Unit: "C"}
		entry.Day.PrecipitationProbability = d.Precipitation
		entry.Day.Wind.Speed = value{Value: d.Wind, Unit: "km/h"}
		out.DailyForecasts = append(out.DailyForecasts, entry)
	}

	b, _ := json.Marshal(out)
	return string(b)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
