// Package bot serves forecasts over Telegram.
package bot

import (
	"context"
	"errors"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/vzahanych/weather-bot-app/internal/aggregator"
	"github.com/vzahanych/weather-bot-app/internal/render"
	"github.com/vzahanych/weather-bot-app/internal/session"
	"github.com/vzahanych/weather-bot-app/pkg/telemetry"
)

// Messenger is the part of the Telegram client the handler talks to.
type Messenger interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
}

type Forecaster interface {
	GetForecasts(ctx context.Context, cities []string, days int) (aggregator.ForecastResult, error)
}

type Handler struct {
	messenger  Messenger
	forecaster Forecaster
	store      session.Store
	logger     *zap.Logger
	tele       *telemetry.Telemetry
}

func NewHandler(messenger Messenger, forecaster Forecaster, store session.Store, logger *zap.Logger, tele *telemetry.Telemetry) *Handler {
	return &Handler{
		messenger:  messenger,
		forecaster: forecaster,
		store:      store,
		logger:     logger,
		tele:       tele,
	}
}

var periodKeyboard = tgbotapi.NewInlineKeyboardMarkup(
	tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonData("3 дня", callbackThreeDays)),
	tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonData("5 дней", callbackFiveDays)),
)

// HandleUpdate answers a single update. Errors are send failures or store
// failures; lookup failures are reported to the user instead.
func (h *Handler) HandleUpdate(ctx context.Context, update tgbotapi.Update) error {
	ctx, span := h.tele.StartSpan(ctx, "bot.HandleUpdate", attribute.Int("update_id", update.UpdateID))
	defer span.End()

	log := h.logger.With(zap.Int("update_id", update.UpdateID))

	var err error
	switch {
	case update.CallbackQuery != nil:
		err = h.handleCallback(ctx, log, update.CallbackQuery)
	case update.Message == nil:
		return nil
	case update.Message.IsCommand():
		err = h.handleCommand(ctx, log, update.Message)
	case update.Message.Text != "":
		err = h.handleCities(ctx, log, update.Message)
	default:
		log.Debug("Ignoring message without text")
	}

	if err != nil {
		h.tele.RecordError(ctx, err, map[string]string{"component": "bot"})
	}
	return err
}

func (h *Handler) handleCommand(ctx context.Context, log *zap.Logger, msg *tgbotapi.Message) error {
	log.Debug("Command received", zap.String("command", msg.Command()))

	switch msg.Command() {
	case cmdStart:
		if err := h.store.SetPeriod(ctx, senderID(msg), session.DefaultPeriod); err != nil {
			log.Error("Failed to reset period", zap.Error(err))
		}
		return h.reply(msg.Chat.ID, greetingText, nil)
	case cmdPeriod:
		return h.reply(msg.Chat.ID, choosePeriodText, periodKeyboard)
	default:
		// /help and anything unrecognised
		return h.reply(msg.Chat.ID, helpText, nil)
	}
}

func (h *Handler) handleCallback(ctx context.Context, log *zap.Logger, cb *tgbotapi.CallbackQuery) error {
	var days int
	switch cb.Data {
	case callbackThreeDays:
		days = 3
	case callbackFiveDays:
		days = 5
	}

	chatID := callbackChatID(cb)

	if days == 0 {
		log.Warn("Unknown callback data", zap.String("data", cb.Data))
		if _, err := h.messenger.Request(tgbotapi.NewCallback(cb.ID, "")); err != nil {
			log.Warn("Failed to answer callback", zap.Error(err))
		}
		return h.reply(chatID, render.MsgPeriodChangeFail, nil)
	}

	if err := h.store.SetPeriod(ctx, cb.From.ID, days); err != nil {
		log.Error("Failed to store period", zap.Int64("user_id", cb.From.ID), zap.Error(err))
		if replyErr := h.reply(chatID, render.MsgPeriodChangeFail, nil); replyErr != nil {
			return errors.Join(err, replyErr)
		}
		return err
	}

	if _, err := h.messenger.Request(tgbotapi.NewCallback(cb.ID, callbackAckText)); err != nil {
		log.Warn("Failed to answer callback", zap.Error(err))
	}

	log.Info("Period changed", zap.Int64("user_id", cb.From.ID), zap.Int("days", days))
	return h.reply(chatID, periodChangedText(days), nil)
}

func (h *Handler) handleCities(ctx context.Context, log *zap.Logger, msg *tgbotapi.Message) error {
	userID := senderID(msg)

	days, err := h.store.Period(ctx, userID)
	if err != nil {
		log.Error("Failed to read period, using default", zap.Int64("user_id", userID), zap.Error(err))
		days = session.DefaultPeriod
	}

	cities := aggregator.SplitCities(msg.Text)
	result, err := h.forecaster.GetForecasts(ctx, cities, days)
	if err != nil {
		log.Info("Forecast lookup failed", zap.Strings("cities", cities), zap.Error(err))
		if result == nil {
			return h.reply(msg.Chat.ID, render.ErrorMessage(err), nil)
		}
	}

	for _, cf := range result {
		text := render.FormatText(cf.City, days, cf.Days)
		if cf.Err != nil {
			text = render.ErrorMessage(cf.Err)
		}
		if err := h.reply(msg.Chat.ID, text, nil); err != nil {
			return err
		}
	}
	return nil
}

func (h *Handler) reply(chatID int64, text string, markup any) error {
	out := tgbotapi.NewMessage(chatID, text)
	if markup != nil {
		out.ReplyMarkup = markup
	}
	if _, err := h.messenger.Send(out); err != nil {
		return fmt.Errorf("send message to chat %d: %w", chatID, err)
	}
	return nil
}

// senderID falls back to the chat for messages without a sender, such as
// channel posts.
func senderID(msg *tgbotapi.Message) int64 {
	if msg.From != nil {
		return msg.From.ID
	}
	return msg.Chat.ID
}

func callbackChatID(cb *tgbotapi.CallbackQuery) int64 {
	if cb.Message != nil && cb.Message.Chat != nil {
		return cb.Message.Chat.ID
	}
	return cb.From.ID
}

// dispatchKey picks the user whose updates must stay in order.
func dispatchKey(update tgbotapi.Update) int64 {
	switch {
	case update.CallbackQuery != nil && update.CallbackQuery.From != nil:
		return update.CallbackQuery.From.ID
	case update.Message != nil:
		return senderID(update.Message)
	default:
		return int64(update.UpdateID)
	}
}
