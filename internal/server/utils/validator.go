package utils

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Form values accepted for the forecast period radio.
const (
	PeriodThreeDays = "3_days"
	PeriodFiveDays  = "5_days"
)

var validate *validator.Validate

func init() {
	validate = validator.New()

	_ = validate.RegisterValidation("forecast_period", validateForecastPeriod)

	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("form"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
}

func validateForecastPeriod(fl validator.FieldLevel) bool {
	_, ok := PeriodDays(fl.Field().String())
	return ok
}

// PeriodDays maps a form period value to a day count.
func PeriodDays(value string) (int, bool) {
	switch value {
	case PeriodThreeDays:
		return 3, true
	case PeriodFiveDays:
		return 5, true
	default:
		return 0, false
	}
}

type ValidationError struct {
	Field   string      `json:"field"`
	Value   interface{} `json:"value"`
	Tag     string      `json:"tag"`
	Message string      `json:"message"`
}

func FormatValidationErrors(err error) []ValidationError {
	var validationErrors []ValidationError

	var validatorErrs validator.ValidationErrors
	if errors.As(err, &validatorErrs) {
		for _, err := range validatorErrs {
			validationErrors = append(validationErrors, ValidationError{
				Field:   err.Field(),
				Value:   err.Value(),
				Tag:     err.Tag(),
				Message: getErrorMessage(err),
			})
		}
	}

	return validationErrors
}

func getErrorMessage(err validator.FieldError) string {
	switch err.Tag() {
	case "required":
		return fmt.Sprintf("Поле %s обязательно", err.Field())
	case "min":
		return fmt.Sprintf("Поле %s должно содержать не менее %s значений", err.Field(), err.Param())
	case "forecast_period":
		return fmt.Sprintf("Поле %s должно быть %s или %s", err.Field(), PeriodThreeDays, PeriodFiveDays)
	default:
		return fmt.Sprintf("Поле %s заполнено неверно", err.Field())
	}
}

func ValidateStruct(s interface{}) []ValidationError {
	err := validate.Struct(s)
	if err != nil {
		return FormatValidationErrors(err)
	}
	return nil
}
