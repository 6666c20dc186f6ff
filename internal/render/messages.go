package render

import (
	"errors"
	"fmt"

	"github.com/vzahanych/weather-bot-app/internal/service"
)

const (
	MsgDecodeFailed     = "Ошибка обработки данных о погоде."
	MsgExtractFailed    = "Ошибка при попытке извлечь данные о погоде."
	MsgEmptyCity        = "Не указано название города."
	MsgProviderDown     = "Не удалось связаться с сервисом погоды."
	MsgPeriodChangeFail = "Ошибка: Не удалось обработать запрос на изменение периода получения данных о погоде."
)

// ErrorMessage maps a lookup failure to the text shown in the chat.
func ErrorMessage(err error) string {
	var (
		notFound    *service.CityNotFoundError
		providerErr *service.ProviderError
		decodeErr   *service.ResponseDecodeError
		badForecast *service.MalformedForecastError
		badLocation *service.MalformedLocationError
	)

	switch {
	case err == nil:
		return ""
	case errors.Is(err, service.ErrEmptyCity):
		return MsgEmptyCity
	case errors.As(err, &notFound):
		return fmt.Sprintf("Город '%s' не найден", notFound.City)
	case errors.As(err, &providerErr):
		if providerErr.Endpoint == service.LocationEndpoint {
			return "Ошибка при получении ключа местоположения: " + providerErr.Message
		}
		return "Ошибка при получении данных о погоде: " + providerErr.Message
	case errors.As(err, &decodeErr):
		return MsgDecodeFailed
	case errors.As(err, &badForecast), errors.As(err, &badLocation):
		return MsgExtractFailed
	default:
		return MsgProviderDown
	}
}

// PageErrorMessage is the variant embedded in the web form. Undecodable
// provider responses get their own wording there.
func PageErrorMessage(err error) string {
	var decodeErr *service.ResponseDecodeError
	if errors.As(err, &decodeErr) {
		return MsgDecodeFailed
	}
	return fmt.Sprintf("Ошибка: %s. Данные недоступны", ErrorMessage(err))
}
