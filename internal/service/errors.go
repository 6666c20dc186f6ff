package service

import (
	"errors"
	"fmt"
)

var ErrEmptyCity = errors.New("city name is empty")

// CityNotFoundError is returned when the location search comes back empty.
type CityNotFoundError struct {
	City string
}

func (e *CityNotFoundError) Error() string {
	return fmt.Sprintf("city %q not found", e.City)
}

// ProviderError carries the provider's own message for a non-success status.
type ProviderError struct {
	Endpoint   string
	StatusCode int
	Message    string
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("%s request failed with status %d: %s", e.Endpoint, e.StatusCode, e.Message)
}

// MalformedForecastError reports a retained forecast day that lacks one of the
// extracted fields. Day is -1 when the DailyForecasts list itself is missing.
type MalformedForecastError struct {
	LocationKey LocationKey
	Day         int
	Field       string
}

func (e *MalformedForecastError) Error() string {
	if e.Day < 0 {
		return fmt.Sprintf("forecast for location %s is missing %s", e.LocationKey, e.Field)
	}
	return fmt.Sprintf("forecast for location %s day %d is missing %s", e.LocationKey, e.Day+1, e.Field)
}

type MalformedLocationError struct {
	City string
}

func (e *MalformedLocationError) Error() string {
	return fmt.Sprintf("location search for %q returned an entry without a key", e.City)
}

// ResponseDecodeError wraps a body that is not the JSON we expect.
type ResponseDecodeError struct {
	Endpoint string
	Err      error
}

func (e *ResponseDecodeError) Error() string {
	return fmt.Sprintf("decode %s response: %v", e.Endpoint, e.Err)
}

func (e *ResponseDecodeError) Unwrap() error {
	return e.Err
}
