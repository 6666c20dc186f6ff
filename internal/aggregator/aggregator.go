package aggregator

import (
	"context"
	"errors"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/vzahanych/weather-bot-app/internal/config"
	"github.com/vzahanych/weather-bot-app/internal/service"
	"github.com/vzahanych/weather-bot-app/pkg/logger"
	"github.com/vzahanych/weather-bot-app/pkg/telemetry"
)

type Policy int

const (
	// AbortOnFirstFailure stops at the first failing city and drops whatever
	// was collected before it.
	AbortOnFirstFailure Policy = iota
	// CollectAll attempts every city and keeps per-city failures.
	CollectAll
)

func ParsePolicy(s string) (Policy, error) {
	switch s {
	case "", "abort_on_first_failure":
		return AbortOnFirstFailure, nil
	case "collect_all":
		return CollectAll, nil
	default:
		return 0, fmt.Errorf("unknown aggregator policy %q", s)
	}
}

func (p Policy) String() string {
	switch p {
	case AbortOnFirstFailure:
		return "abort_on_first_failure"
	case CollectAll:
		return "collect_all"
	default:
		return fmt.Sprintf("Policy(%d)", int(p))
	}
}

// CityForecast is the outcome for one city. Err is only ever set under CollectAll.
type CityForecast struct {
	City string
	Days []service.DailyForecast
	Err  error
}

// ForecastResult keeps the cities in the order they were asked for.
type ForecastResult []CityForecast

func (r ForecastResult) Failed() []CityForecast {
	var failed []CityForecast
	for _, cf := range r {
		if cf.Err != nil {
			failed = append(failed, cf)
		}
	}
	return failed
}

// MetricsRecorder interface for recording metrics
type MetricsRecorder interface {
	RecordProviderCall(ctx context.Context, endpoint string, success bool)
}

type Aggregator struct {
	service service.ForecastService
	policy  Policy
	logger  *zap.Logger
	tele    *telemetry.Telemetry
	metrics MetricsRecorder
}

func NewAggregator(cfg config.AggregatorConfig, svc service.ForecastService, logger *zap.Logger, tele *telemetry.Telemetry) (*Aggregator, error) {
	policy, err := ParsePolicy(cfg.Policy)
	if err != nil {
		return nil, err
	}

	logger.Info("Forecast aggregator ready",
		zap.String("service", svc.Name()),
		zap.Stringer("policy", policy))

	return &Aggregator{
		service: svc,
		policy:  policy,
		logger:  logger,
		tele:    tele,
	}, nil
}

// SetMetricsRecorder sets the metrics recorder for the aggregator. It must be
// called before the aggregator is shared between goroutines.
func (a *Aggregator) SetMetricsRecorder(metrics MetricsRecorder) {
	a.metrics = metrics
}

// GetForecasts resolves and fetches every city in turn, one full round trip
// after another. Repeated names are looked up once.
func (a *Aggregator) GetForecasts(ctx context.Context, cities []string, days int) (ForecastResult, error) {
	ctx, span := a.tele.StartSpan(ctx, "aggregator.GetForecasts",
		attribute.Int("cities_count", len(cities)),
		attribute.Int("days", days),
		attribute.String("policy", a.policy.String()))
	defer span.End()

	reqLogger := logger.ForContext(ctx, a.logger)

	reqLogger.Info("Forecast batch requested",
		zap.Strings("cities", cities),
		zap.Int("days", days),
		zap.Stringer("policy", a.policy))

	result := make(ForecastResult, 0, len(cities))
	seen := make(map[string]struct{}, len(cities))
	var failures []error

	for _, city := range cities {
		if _, dup := seen[city]; dup {
			continue
		}
		seen[city] = struct{}{}

		forecasts, err := a.lookupCity(ctx, city, days)
		if err != nil {
			reqLogger.Warn("City lookup failed",
				zap.String("city", city),
				zap.Error(err))

			if a.policy == AbortOnFirstFailure {
				span.SetAttributes(attribute.Bool("success", false))
				a.tele.RecordError(ctx, err, map[string]string{"city": city})
				return nil, err
			}

			failures = append(failures, err)
			result = append(result, CityForecast{City: city, Err: err})
			continue
		}

		result = append(result, CityForecast{City: city, Days: forecasts})
	}

	if len(result) > 0 && len(failures) == len(result) {
		err := errors.Join(failures...)
		span.SetAttributes(attribute.Bool("success", false))
		a.tele.RecordError(ctx, err, nil)
		return result, err
	}

	span.SetAttributes(
		attribute.Bool("success", true),
		attribute.Int("failed_count", len(failures)),
	)

	reqLogger.Info("Forecast batch completed",
		zap.Int("cities_count", len(result)),
		zap.Int("failed_count", len(failures)))

	return result, nil
}

func (a *Aggregator) lookupCity(ctx context.Context, city string, days int) ([]service.DailyForecast, error) {
	ctx, span := a.tele.StartSpan(ctx, "aggregator.lookupCity", attribute.String("city", city))
	defer span.End()

	key, err := a.service.ResolveLocation(ctx, city)
	a.record(ctx, "location_search", err)
	if err != nil {
		return nil, err
	}

	forecasts, err := a.service.FetchForecast(ctx, key, days)
	a.record(ctx, "daily_forecast", err)
	if err != nil {
		return nil, err
	}

	return forecasts, nil
}

func (a *Aggregator) record(ctx context.Context, endpoint string, err error) {
	if a.metrics == nil || errors.Is(err, service.ErrEmptyCity) {
		return
	}
	// an empty search result is still a successful provider call
	var notFound *service.CityNotFoundError
	a.metrics.RecordProviderCall(ctx, endpoint, err == nil || errors.As(err, &notFound))
}
