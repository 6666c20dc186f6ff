package service

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/vzahanych/weather-bot-app/internal/config"
	"github.com/vzahanych/weather-bot-app/pkg/telemetry"
)

const (
	locationSearchPath = "/locations/v1/cities/search"
	dailyForecastPath  = "/forecasts/v1/daily/5day/{locationKey}"

	LocationEndpoint = "location search"
	ForecastEndpoint = "daily forecast"

	forecastLanguage = "ru-RU"
)

type AccuWeatherService struct {
	client *resty.Client
	apiKey string
	logger *zap.Logger
	tele   *telemetry.Telemetry
}

var _ ForecastService = (*AccuWeatherService)(nil)

func NewAccuWeatherServiceWithConfig(cfg config.ProviderConfig, logger *zap.Logger, tele *telemetry.Telemetry) *AccuWeatherService {
	client := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetHeader("Accept", "application/json").
		SetLogger(logger.Sugar())

	if cfg.Timeout > 0 {
		client.SetTimeout(time.Duration(cfg.Timeout) * time.Second)
	}

	// The query string carries the API key, so only the path is logged.
	client.OnAfterResponse(func(c *resty.Client, resp *resty.Response) error {
		path := ""
		if raw := resp.Request.RawRequest; raw != nil && raw.URL != nil {
			path = raw.URL.Path
		}
		logger.Debug("Provider response",
			zap.String("method", resp.Request.Method),
			zap.String("path", path),
			zap.Int("status", resp.StatusCode()),
			zap.Duration("latency", resp.Time()),
			zap.Int("body_size", len(resp.Body())))
		return nil
	})

	return &AccuWeatherService{
		client: client,
		apiKey: cfg.APIKey,
		logger: logger,
		tele:   tele,
	}
}

func (s *AccuWeatherService) Name() string {
	return "accuweather"
}

// ResolveLocation returns the key of the first search hit for city.
func (s *AccuWeatherService) ResolveLocation(ctx context.Context, city string) (LocationKey, error) {
	ctx, span := s.tele.StartSpan(ctx, "accuweather.ResolveLocation",
		attribute.String("city", city))
	defer span.End()

	if city == "" {
		return "", ErrEmptyCity
	}

	resp, err := s.client.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"apikey": s.apiKey,
			"q":      city,
		}).
		Get(locationSearchPath)
	if err != nil {
		return "", fmt.Errorf("location search for %q: %w", city, err)
	}

	if !resp.IsSuccess() {
		return "", s.providerError(LocationEndpoint, resp)
	}

	var locations []accuLocation
	if err := json.Unmarshal(resp.Body(), &locations); err != nil {
		return "", &ResponseDecodeError{Endpoint: LocationEndpoint, Err: err}
	}

	if len(locations) == 0 {
		return "", &CityNotFoundError{City: city}
	}

	first := locations[0]
	if first.Key == nil || *first.Key == "" {
		return "", &MalformedLocationError{City: city}
	}

	span.SetAttributes(
		attribute.String("location_key", *first.Key),
		attribute.Int("candidates", len(locations)),
	)

	s.logger.Debug("Resolved location",
		zap.String("city", city),
		zap.String("location_key", *first.Key),
		zap.Int("candidates", len(locations)))

	return LocationKey(*first.Key), nil
}

// FetchForecast always asks for the 5-day forecast and keeps the first days
// entries of it.
func (s *AccuWeatherService) FetchForecast(ctx context.Context, key LocationKey, days int) ([]DailyForecast, error) {
	ctx, span := s.tele.StartSpan(ctx, "accuweather.FetchForecast",
		attribute.String("location_key", string(key)),
		attribute.Int("days", days))
	defer span.End()

	if days < 0 {
		days = 0
	}

	resp, err := s.client.R().
		SetContext(ctx).
		SetPathParam("locationKey", string(key)).
		SetQueryParams(map[string]string{
			"apikey":   s.apiKey,
			"language": forecastLanguage,
			"details":  "true",
			"metric":   "true",
		}).
		Get(dailyForecastPath)
	if err != nil {
		return nil, fmt.Errorf("daily forecast for location %s: %w", key, err)
	}

	if !resp.IsSuccess() {
		return nil, s.providerError(ForecastEndpoint, resp)
	}

	var payload accuForecastResponse
	if err := json.Unmarshal(resp.Body(), &payload); err != nil {
		return nil, &ResponseDecodeError{Endpoint: ForecastEndpoint, Err: err}
	}

	if payload.DailyForecasts == nil {
		return nil, &MalformedForecastError{LocationKey: key, Day: -1, Field: "DailyForecasts"}
	}

	daily := *payload.DailyForecasts
	if days < len(daily) {
		daily = daily[:days]
	}

	forecasts := make([]DailyForecast, 0, len(daily))
	for i, day := range daily {
		forecast, missing := day.project()
		if missing != "" {
			return nil, &MalformedForecastError{LocationKey: key, Day: i, Field: missing}
		}
		forecasts = append(forecasts, forecast)
	}

	span.SetAttributes(attribute.Int("days_returned", len(forecasts)))

	return forecasts, nil
}

func (s *AccuWeatherService) providerError(endpoint string, resp *resty.Response) error {
	perr := &ProviderError{
		Endpoint:   endpoint,
		StatusCode: resp.StatusCode(),
		Message:    http.StatusText(resp.StatusCode()),
	}

	var body accuErrorResponse
	if err := json.Unmarshal(resp.Body(), &body); err == nil && body.Message != "" {
		perr.Message = body.Message
	}

	s.logger.Warn("Provider returned an error",
		zap.String("endpoint", endpoint),
		zap.Int("status", resp.StatusCode()),
		zap.ByteString("payload", resp.Body()))

	return perr
}
