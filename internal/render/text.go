// Package render turns forecasts and lookup failures into what users see.
package render

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/vzahanych/weather-bot-app/internal/service"
)

// FormatText builds the chat message for one city. days is the requested
// period, which may exceed the number of forecasts the provider had.
func FormatText(city string, days int, forecasts []service.DailyForecast) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Погода в городе %s на %d дней вперёд:\n\n", city, days)

	for i, f := range forecasts {
		fmt.Fprintf(&b, "День: %d\n", i+1)
		fmt.Fprintf(&b, "Температура от %s °C до %s °C.\n", FormatNumber(f.MinTemperature), FormatNumber(f.MaxTemperature))
		fmt.Fprintf(&b, "Вероятность осадков: %d %%.\n", f.PrecipitationProbability)
		fmt.Fprintf(&b, "Скорость ветра: %s.\n\n", FormatNumber(f.WindSpeed))
	}

	return b.String()
}

// FormatNumber prints the shortest exact form of v and keeps a ".0" on
// whole numbers, so 10 reads "10.0" and 15.5 reads "15.5".
func FormatNumber(v float64) string {
	s := strconv.FormatFloat(v, 'f', -1, 64)
	if !strings.ContainsAny(s, ".eEIN") {
		s += ".0"
	}
	return s
}
