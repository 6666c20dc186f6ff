package service

import "context"

// LocationKey is the provider's identifier for a resolved city. It is only
// meaningful for the exchange that produced it.
type LocationKey string

// DailyForecast is one day of a forecast, index 0 being the first day.
type DailyForecast struct {
	MaxTemperature           float64 `json:"max_temperature"`
	MinTemperature           float64 `json:"min_temperature"`
	PrecipitationProbability int     `json:"precipitation_probability"`
	WindSpeed                float64 `json:"wind_speed"`
}

type ForecastService interface {
	ResolveLocation(ctx context.Context, city string) (LocationKey, error)
	FetchForecast(ctx context.Context, key LocationKey, days int) ([]DailyForecast, error)
	Name() string
}
