package render

import (
	"bytes"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vzahanych/weather-bot-app/internal/aggregator"
	"github.com/vzahanych/weather-bot-app/internal/service"
)

func TestFormatText(t *testing.T) {
	text := FormatText("Москва", 3, []service.DailyForecast{
		{MaxTemperature: 20, MinTemperature: 10, PrecipitationProbability: 30, WindSpeed: 15},
	})

	assert.Equal(t, "Погода в городе Москва на 3 дней вперёд:\n\n"+
		"День: 1\n"+
		"Температура от 10.0 °C до 20.0 °C.\n"+
		"Вероятность осадков: 30 %.\n"+
		"Скорость ветра: 15.0.\n\n", text)
}

func TestFormatTextNumbersDays(t *testing.T) {
	text := FormatText("Сочи", 5, []service.DailyForecast{
		{MaxTemperature: 21.5, MinTemperature: -2.3, PrecipitationProbability: 0, WindSpeed: 7.4},
		{MaxTemperature: 22, MinTemperature: 12, PrecipitationProbability: 100, WindSpeed: 0},
	})

	assert.Contains(t, text, "на 5 дней вперёд")
	assert.Contains(t, text, "День: 1\nТемпература от -2.3 °C до 21.5 °C.\nВероятность осадков: 0 %.\nСкорость ветра: 7.4.")
	assert.Contains(t, text, "День: 2\nТемпература от 12.0 °C до 22.0 °C.\nВероятность осадков: 100 %.\nСкорость ветра: 0.0.")
	assert.NotContains(t, text, "День: 3")
}

func TestFormatTextWithoutDays(t *testing.T) {
	assert.Equal(t, "Погода в городе Казань на 3 дней вперёд:\n\n", FormatText("Казань", 3, nil))
}

func TestFormatNumber(t *testing.T) {
	tests := map[float64]string{
		10:     "10.0",
		15.5:   "15.5",
		0:      "0.0",
		-4:     "-4.0",
		0.1:    "0.1",
		13.125: "13.125",
	}
	for in, want := range tests {
		assert.Equal(t, want, FormatNumber(in), "input %v", in)
	}
}

func TestErrorMessage(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"not found", &service.CityNotFoundError{City: "Атлантида"}, "Город 'Атлантида' не найден"},
		{"wrapped not found", fmt.Errorf("lookup: %w", &service.CityNotFoundError{City: "Сочи"}), "Город 'Сочи' не найден"},
		{"location provider", &service.ProviderError{Endpoint: service.LocationEndpoint, StatusCode: 401, Message: "Api Authorization failed"},
			"Ошибка при получении ключа местоположения: Api Authorization failed"},
		{"forecast provider", &service.ProviderError{Endpoint: service.ForecastEndpoint, StatusCode: 400, Message: "Invalid location key"},
			"Ошибка при получении данных о погоде: Invalid location key"},
		{"decode", &service.ResponseDecodeError{Endpoint: service.ForecastEndpoint, Err: errors.New("eof")}, MsgDecodeFailed},
		{"malformed forecast", &service.MalformedForecastError{LocationKey: "1", Field: "Day.Wind.Speed.Value"}, MsgExtractFailed},
		{"malformed location", &service.MalformedLocationError{City: "Сочи"}, MsgExtractFailed},
		{"empty city", service.ErrEmptyCity, MsgEmptyCity},
		{"transport", errors.New("dial tcp: connection refused"), MsgProviderDown},
		{"nil", nil, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ErrorMessage(tt.err))
		})
	}
}

func TestPageErrorMessage(t *testing.T) {
	assert.Equal(t, MsgDecodeFailed,
		PageErrorMessage(&service.ResponseDecodeError{Endpoint: service.LocationEndpoint, Err: errors.New("bad")}))
	assert.Equal(t, "Ошибка: Город 'Атлантида' не найден. Данные недоступны",
		PageErrorMessage(&service.CityNotFoundError{City: "Атлантида"}))
}

func TestRenderCharts(t *testing.T) {
	result := aggregator.ForecastResult{
		{City: "Moscow", Days: []service.DailyForecast{
			{MaxTemperature: 20, MinTemperature: 10, PrecipitationProbability: 30, WindSpeed: 15},
			{MaxTemperature: 22, MinTemperature: 11, PrecipitationProbability: 10, WindSpeed: 9},
		}},
		{City: "Atlantis", Err: &service.CityNotFoundError{City: "Atlantis"}},
	}

	var buf bytes.Buffer
	require.NoError(t, RenderCharts(&buf, result))

	page := buf.String()
	assert.Contains(t, page, "<html")
	assert.Contains(t, page, "Moscow")
	assert.Contains(t, page, "Day 2")
	assert.Contains(t, page, "Precipitation Chance")
	assert.NotContains(t, page, "Atlantis")
}
