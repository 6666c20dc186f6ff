package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/vzahanych/weather-bot-app/internal/aggregator"
	"github.com/vzahanych/weather-bot-app/internal/render"
	"github.com/vzahanych/weather-bot-app/internal/server/utils"
	"github.com/vzahanych/weather-bot-app/internal/service"
)

const formTemplate = "index.html"

type Forecaster interface {
	GetForecasts(ctx context.Context, cities []string, days int) (aggregator.ForecastResult, error)
}

type ForecastHandler struct {
	forecaster Forecaster
	logger     *zap.Logger
}

func NewForecastHandler(forecaster Forecaster, logger *zap.Logger) *ForecastHandler {
	return &ForecastHandler{
		forecaster: forecaster,
		logger:     logger,
	}
}

func (h *ForecastHandler) ShowForm(c *gin.Context) {
	c.HTML(http.StatusOK, formTemplate, FormPage{Forecast: utils.PeriodThreeDays})
}

func (h *ForecastHandler) SubmitForm(c *gin.Context) {
	ctx := utils.GetContextFromGinContext(c)
	reqLogger := h.logger.With(zap.String("request_id", utils.GetRequestIDFromGinContext(c)))

	var form ForecastForm
	if err := c.ShouldBind(&form); err != nil {
		reqLogger.Warn("Invalid form", zap.Error(err))
		c.HTML(http.StatusBadRequest, formTemplate, FormPage{Error: "Не удалось прочитать форму."})
		return
	}

	if verrs := utils.ValidateStruct(&form); len(verrs) > 0 {
		reqLogger.Warn("Form validation failed", zap.Any("errors", verrs))
		c.HTML(http.StatusBadRequest, formTemplate, FormPage{
			Points:   form.Points,
			Forecast: form.Forecast,
			Errors:   verrs,
		})
		return
	}

	days, _ := utils.PeriodDays(form.Forecast)

	reqLogger.Info("Processing forecast form",
		zap.Strings("points", form.Points),
		zap.Int("days", days))

	result, err := h.forecaster.GetForecasts(ctx, form.Points, days)
	if err != nil {
		reqLogger.Warn("Forecast lookup failed", zap.Error(err))
		_ = c.Error(err)
		page := FormPage{
			Points:   form.Points,
			Forecast: form.Forecast,
		}
		if result == nil {
			page.Error = render.PageErrorMessage(err)
		} else {
			for _, cf := range result.Failed() {
				page.Failures = append(page.Failures, render.PageErrorMessage(cf.Err))
			}
		}
		c.HTML(lookupStatus(err), formTemplate, page)
		return
	}

	if failed := result.Failed(); len(failed) > 0 {
		names := make([]string, len(failed))
		for i, cf := range failed {
			names[i] = cf.City
		}
		reqLogger.Info("Some points left out of the charts", zap.String("points", strings.Join(names, ", ")))
	}

	c.Header("Content-Type", "text/html; charset=utf-8")
	c.Status(http.StatusOK)
	if err := render.RenderCharts(c.Writer, result); err != nil {
		reqLogger.Error("Failed to render charts", zap.Error(err))
		_ = c.Error(err)
	}
}

// lookupStatus separates bad input from upstream trouble.
func lookupStatus(err error) int {
	var notFound *service.CityNotFoundError
	if errors.As(err, &notFound) || errors.Is(err, service.ErrEmptyCity) {
		return http.StatusNotFound
	}
	return http.StatusBadGateway
}
