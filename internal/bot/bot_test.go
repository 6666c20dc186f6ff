package bot

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/vzahanych/weather-bot-app/internal/aggregator"
	"github.com/vzahanych/weather-bot-app/internal/config"
	"github.com/vzahanych/weather-bot-app/internal/render"
	"github.com/vzahanych/weather-bot-app/internal/service"
	"github.com/vzahanych/weather-bot-app/internal/service/accuweathertest"
	"github.com/vzahanych/weather-bot-app/internal/session"
	"github.com/vzahanych/weather-bot-app/pkg/telemetry"
)

type fakeMessenger struct {
	mu        sync.Mutex
	sent      []tgbotapi.MessageConfig
	callbacks []tgbotapi.CallbackConfig
	sendErr   error
}

func (m *fakeMessenger) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if msg, ok := c.(tgbotapi.MessageConfig); ok {
		m.sent = append(m.sent, msg)
	}
	return tgbotapi.Message{}, m.sendErr
}

func (m *fakeMessenger) Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if cb, ok := c.(tgbotapi.CallbackConfig); ok {
		m.callbacks = append(m.callbacks, cb)
	}
	return &tgbotapi.APIResponse{Ok: true}, nil
}

func (m *fakeMessenger) texts() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.sent))
	for i, msg := range m.sent {
		out[i] = msg.Text
	}
	return out
}

func (m *fakeMessenger) textsFor(chatID int64) []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []string
	for _, msg := range m.sent {
		if msg.ChatID == chatID {
			out = append(out, msg.Text)
		}
	}
	return out
}

func (m *fakeMessenger) reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = nil
	m.callbacks = nil
}

func textUpdate(id int, userID int64, text string) tgbotapi.Update {
	return tgbotapi.Update{
		UpdateID: id,
		Message: &tgbotapi.Message{
			MessageID: id,
			From:      &tgbotapi.User{ID: userID},
			Chat:      &tgbotapi.Chat{ID: userID},
			Text:      text,
		},
	}
}

func commandUpdate(id int, userID int64, command string) tgbotapi.Update {
	update := textUpdate(id, userID, command)
	update.Message.Entities = []tgbotapi.MessageEntity{{Type: "bot_command", Offset: 0, Length: len(command)}}
	return update
}

func callbackUpdate(id int, userID int64, data string) tgbotapi.Update {
	return tgbotapi.Update{
		UpdateID: id,
		CallbackQuery: &tgbotapi.CallbackQuery{
			ID:      fmt.Sprintf("cb-%d", id),
			From:    &tgbotapi.User{ID: userID},
			Message: &tgbotapi.Message{Chat: &tgbotapi.Chat{ID: userID}},
			Data:    data,
		},
	}
}

func fiveDays() []accuweathertest.Day {
	return []accuweathertest.Day{
		{Max: 20, Min: 10, Precipitation: 30, Wind: 15},
		{Max: 21, Min: 11, Precipitation: 20, Wind: 10},
		{Max: 22, Min: 12, Precipitation: 10, Wind: 5},
		{Max: 23, Min: 13, Precipitation: 0, Wind: 4},
		{Max: 24, Min: 14, Precipitation: 0, Wind: 3},
	}
}

type fixture struct {
	handler   *Handler
	messenger *fakeMessenger
	store     *session.MemoryStore
	provider  *accuweathertest.Server
}

func newFixture(t *testing.T, policy string) *fixture {
	t.Helper()

	provider := accuweathertest.New(t)
	provider.AddCity("Казань", "295954")
	provider.AddCity("Москва", "294021")
	provider.AddCity("Сочи", "293687")
	provider.AddForecast("295954", fiveDays()...)
	provider.AddForecast("294021", fiveDays()...)
	provider.AddForecast("293687", fiveDays()...)

	logger := zaptest.NewLogger(t)
	tele := telemetry.NewNoop()
	svc := service.NewAccuWeatherServiceWithConfig(provider.Config(), logger, tele)
	agg, err := aggregator.NewAggregator(config.AggregatorConfig{Policy: policy}, svc, logger, tele)
	require.NoError(t, err)

	messenger := &fakeMessenger{}
	store := session.NewMemoryStore()

	return &fixture{
		handler:   NewHandler(messenger, agg, store, logger, tele),
		messenger: messenger,
		store:     store,
		provider:  provider,
	}
}

func (f *fixture) handle(t *testing.T, update tgbotapi.Update) {
	t.Helper()
	require.NoError(t, f.handler.HandleUpdate(context.Background(), update))
}

func TestNewUserGetsThreeDays(t *testing.T) {
	f := newFixture(t, "")

	f.handle(t, textUpdate(1, 100, "Казань"))

	texts := f.messenger.texts()
	require.Len(t, texts, 1)
	assert.True(t, strings.HasPrefix(texts[0], "Погода в городе Казань на 3 дней вперёд:\n\n"))
	assert.Contains(t, texts[0], "День: 3\n")
	assert.NotContains(t, texts[0], "День: 4\n")
	assert.Contains(t, texts[0], "Температура от 10.0 °C до 20.0 °C.")
}

func TestPeriodSelectionChangesForecastLength(t *testing.T) {
	f := newFixture(t, "")

	f.handle(t, commandUpdate(1, 100, "/period"))
	require.Len(t, f.messenger.sent, 1)
	assert.Equal(t, choosePeriodText, f.messenger.sent[0].Text)
	keyboard, ok := f.messenger.sent[0].ReplyMarkup.(tgbotapi.InlineKeyboardMarkup)
	require.True(t, ok)
	require.Len(t, keyboard.InlineKeyboard, 2)
	assert.Equal(t, callbackThreeDays, *keyboard.InlineKeyboard[0][0].CallbackData)
	assert.Equal(t, callbackFiveDays, *keyboard.InlineKeyboard[1][0].CallbackData)

	f.handle(t, callbackUpdate(2, 100, callbackFiveDays))
	require.Len(t, f.messenger.callbacks, 1)
	assert.Equal(t, callbackAckText, f.messenger.callbacks[0].Text)
	assert.Equal(t, "Теперь вы будете получать данные о погоде на 5 дней вперёд", f.messenger.texts()[1])

	f.handle(t, textUpdate(3, 100, "Москва"))
	last := f.messenger.texts()[2]
	assert.True(t, strings.HasPrefix(last, "Погода в городе Москва на 5 дней вперёд"))
	assert.Contains(t, last, "День: 5\n")

	days, err := f.store.Period(context.Background(), 100)
	require.NoError(t, err)
	assert.Equal(t, 5, days)
}

func TestThreeDaysCallback(t *testing.T) {
	f := newFixture(t, "")
	require.NoError(t, f.store.SetPeriod(context.Background(), 100, 5))

	f.handle(t, callbackUpdate(1, 100, callbackThreeDays))

	assert.Equal(t, []string{"Теперь вы будете получать данные о погоде на 3 дня вперёд"}, f.messenger.texts())
	days, _ := f.store.Period(context.Background(), 100)
	assert.Equal(t, 3, days)
}

func TestUnknownCallbackData(t *testing.T) {
	f := newFixture(t, "")

	f.handle(t, callbackUpdate(1, 100, "7days"))

	assert.Equal(t, []string{render.MsgPeriodChangeFail}, f.messenger.texts())
	days, _ := f.store.Period(context.Background(), 100)
	assert.Equal(t, session.DefaultPeriod, days)
}

func TestStartResetsPeriod(t *testing.T) {
	f := newFixture(t, "")
	require.NoError(t, f.store.SetPeriod(context.Background(), 100, 5))

	f.handle(t, commandUpdate(1, 100, "/start"))

	assert.Equal(t, []string{greetingText}, f.messenger.texts())
	days, _ := f.store.Period(context.Background(), 100)
	assert.Equal(t, 3, days)
}

func TestHelpAndUnknownCommands(t *testing.T) {
	f := newFixture(t, "")

	f.handle(t, commandUpdate(1, 100, "/help"))
	f.handle(t, commandUpdate(2, 100, "/weather"))

	assert.Equal(t, []string{helpText, helpText}, f.messenger.texts())
	assert.Empty(t, f.provider.Requests())
}

func TestCitiesAnsweredInOrder(t *testing.T) {
	f := newFixture(t, "")

	f.handle(t, textUpdate(1, 100, "Сочи, Москва"))

	texts := f.messenger.texts()
	require.Len(t, texts, 2)
	assert.True(t, strings.HasPrefix(texts[0], "Погода в городе Сочи"))
	assert.True(t, strings.HasPrefix(texts[1], "Погода в городе Москва"))
}

func TestFailedBatchSendsSingleError(t *testing.T) {
	f := newFixture(t, "")

	f.handle(t, textUpdate(1, 100, "Москва, Атлантида, Сочи"))

	assert.Equal(t, []string{"Город 'Атлантида' не найден"}, f.messenger.texts())
	assert.NotContains(t, f.provider.Requests(), "search:Сочи")
}

func TestCollectAllReportsFailedCitiesInline(t *testing.T) {
	f := newFixture(t, "collect_all")

	f.handle(t, textUpdate(1, 100, "Москва, Атлантида, Сочи"))

	texts := f.messenger.texts()
	require.Len(t, texts, 3)
	assert.True(t, strings.HasPrefix(texts[0], "Погода в городе Москва"))
	assert.Equal(t, "Город 'Атлантида' не найден", texts[1])
	assert.True(t, strings.HasPrefix(texts[2], "Погода в городе Сочи"))
}

func TestCollectAllReportsEveryCityWhenAllFail(t *testing.T) {
	f := newFixture(t, "collect_all")

	f.handle(t, textUpdate(1, 100, "Атлантида, Лемурия"))

	assert.Equal(t, []string{
		"Город 'Атлантида' не найден",
		"Город 'Лемурия' не найден",
	}, f.messenger.texts())
}

func TestProviderErrorIsReported(t *testing.T) {
	f := newFixture(t, "")
	f.provider.FailForecast("294021", 503, `{"Code":"ServiceUnavailable","Message":"The allowed number of requests has been exceeded."}`)

	f.handle(t, textUpdate(1, 100, "Москва"))

	assert.Equal(t, []string{"Ошибка при получении данных о погоде: The allowed number of requests has been exceeded."}, f.messenger.texts())
}

func TestNonTextMessagesAreIgnored(t *testing.T) {
	f := newFixture(t, "")

	f.handle(t, textUpdate(1, 100, ""))
	f.handle(t, tgbotapi.Update{UpdateID: 2})

	assert.Empty(t, f.messenger.texts())
}

func TestSendFailureIsReturned(t *testing.T) {
	f := newFixture(t, "")
	f.messenger.sendErr = errors.New("Forbidden: bot was blocked by the user")

	err := f.handler.HandleUpdate(context.Background(), commandUpdate(1, 100, "/help"))
	assert.ErrorContains(t, err, "blocked")
}

// orderedForecaster echoes the first city back with no forecast days.
type orderedForecaster struct{}

func (orderedForecaster) GetForecasts(_ context.Context, cities []string, _ int) (aggregator.ForecastResult, error) {
	return aggregator.ForecastResult{{City: cities[0]}}, nil
}

func TestServeKeepsPerUserOrder(t *testing.T) {
	messenger := &fakeMessenger{}
	handler := NewHandler(messenger, orderedForecaster{}, session.NewMemoryStore(), zaptest.NewLogger(t), telemetry.NewNoop())

	updates := make(chan tgbotapi.Update)
	done := make(chan struct{})
	go func() {
		Serve(context.Background(), updates, handler, 3, zaptest.NewLogger(t))
		close(done)
	}()

	users := []int64{1, 2, 3, -1001234567890}
	id := 0
	for i := 1; i <= 10; i++ {
		for _, user := range users {
			id++
			updates <- textUpdate(id, user, fmt.Sprintf("город-%d", i))
		}
	}
	close(updates)
	<-done

	for _, user := range users {
		texts := messenger.textsFor(user)
		require.Len(t, texts, 10)
		for i, text := range texts {
			assert.True(t, strings.HasPrefix(text, fmt.Sprintf("Погода в городе город-%d ", i+1)), text)
		}
	}
}

func TestServeStopsOnCancel(t *testing.T) {
	handler := NewHandler(&fakeMessenger{}, orderedForecaster{}, session.NewMemoryStore(), zaptest.NewLogger(t), telemetry.NewNoop())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		Serve(ctx, make(chan tgbotapi.Update), handler, 2, zaptest.NewLogger(t))
		close(done)
	}()

	cancel()
	<-done
}

func TestWorkerIndex(t *testing.T) {
	assert.Equal(t, 0, workerIndex(9, 3))
	assert.Equal(t, 1, workerIndex(-7, 3))
	assert.Equal(t, 0, workerIndex(12345, 1))
}
