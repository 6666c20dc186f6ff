package service

// Wire shapes of the AccuWeather responses. Every extracted leaf is a pointer
// so that an absent field can be told apart from a zero value. An explicit
// null decodes the same as an absent field.

type accuLocation struct {
	Key           *string `json:"Key"`
	LocalizedName string  `json:"LocalizedName"`
}

type accuErrorResponse struct {
	Code    string `json:"Code"`
	Message string `json:"Message"`
}

type accuForecastResponse struct {
	DailyForecasts *[]accuDailyForecast `json:"DailyForecasts"`
}

type accuDailyForecast struct {
	Date        string           `json:"Date"`
	Temperature *accuTemperature `json:"Temperature"`
	Day         *accuDayPart     `json:"Day"`
}

type accuTemperature struct {
	Maximum *accuValue `json:"Maximum"`
	Minimum *accuValue `json:"Minimum"`
}

type accuDayPart struct {
	PrecipitationProbability *int      `json:"PrecipitationProbability"`
	Wind                     *accuWind `json:"Wind"`
}

type accuWind struct {
	Speed *accuValue `json:"Speed"`
}

type accuValue struct {
	Value *float64 `json:"Value"`
	Unit  string   `json:"Unit"`
}

// project extracts the four fields of a day or names the first one missing.
func (d accuDailyForecast) project() (DailyForecast, string) {
	switch {
	case d.Temperature == nil || d.Temperature.Maximum == nil || d.Temperature.Maximum.Value == nil:
		return DailyForecast{}, "Temperature.Maximum.Value"
	case d.Temperature.Minimum == nil || d.Temperature.Minimum.Value == nil:
		return DailyForecast{}, "Temperature.Minimum.Value"
	case d.Day == nil || d.Day.PrecipitationProbability == nil:
		return DailyForecast{}, "Day.PrecipitationProbability"
	case d.Day.Wind == nil || d.Day.Wind.Speed == nil || d.Day.Wind.Speed.Value == nil:
		return DailyForecast{}, "Day.Wind.Speed.Value"
	}

	return DailyForecast{
		MaxTemperature:           *d.Temperature.Maximum.Value,
		MinTemperature:           *d.Temperature.Minimum.Value,
		PrecipitationProbability: *d.Day.PrecipitationProbability,
		WindSpeed:                *d.Day.Wind.Speed.Value,
	}, ""
}
