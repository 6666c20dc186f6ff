package bot

import "fmt"

const (
	cmdStart  = "start"
	cmdPeriod = "period"

	callbackThreeDays = "3days"
	callbackFiveDays  = "5days"
)

const (
	greetingText = "Привет, я бот, который предоставляет погоду по вашему списку городов. \n\n" +
		"Чтобы начать, введите команду /period, после чего выберите, на какой период выводить прогноз " +
		"(По умолчанию - это 3 дня). Далее введите список городов, разделённых запятой и пробелом " +
		"(например: Москва, Сочи, Мурманск), после чего пришлёт вам описание погоды по заданным параметрам."

	helpText = "Чтобы начать, введите команду /period, после чего выберите, на какой период выводить прогноз. " +
		"Далее введите список городов, разделённых запятой и пробелом (например: Москва, Сочи, Мурманск), " +
		"после чего пришлёт вам описание погоды по заданным параметрам."

	choosePeriodText = "Выберите, на какой период показывать погоду"
	callbackAckText  = "Успешно"
)

func periodChangedText(days int) string {
	unit := "дня"
	if days >= 5 {
		unit = "дней"
	}
	return fmt.Sprintf("Теперь вы будете получать данные о погоде на %d %s вперёд", days, unit)
}
