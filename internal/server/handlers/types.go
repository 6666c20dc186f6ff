package handlers

import "github.com/vzahanych/weather-bot-app/internal/server/utils"

// ForecastForm is the body of POST /. Points arrive as repeated fields.
type ForecastForm struct {
	Points   []string `form:"points" validate:"min=1,dive,required"`
	Forecast string   `form:"forecast" validate:"required,forecast_period"`
}

// FormPage feeds templates/index.html.
type FormPage struct {
	Points   []string
	Forecast string
	Error    string
	Errors   []utils.ValidationError
	// Failures holds one message per point when every point failed.
	Failures []string
}

type HealthResponse struct {
	Status    string `json:"status"`
	Uptime    string `json:"uptime"`
	Timestamp string `json:"timestamp,omitempty"`
	Error     string `json:"error,omitempty"`
}
