package bot

import (
	"context"
	"fmt"
	"sync"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/vzahanych/weather-bot-app/internal/config"
	"github.com/vzahanych/weather-bot-app/internal/session"
	"github.com/vzahanych/weather-bot-app/pkg/telemetry"
)

const workerQueueSize = 16

type Bot struct {
	api     *tgbotapi.BotAPI
	handler *Handler
	cfg     config.BotConfig
	logger  *zap.Logger
}

// New connects to Telegram with the configured token.
func New(cfg config.BotConfig, forecaster Forecaster, store session.Store, logger *zap.Logger, tele *telemetry.Telemetry) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(cfg.Token)
	if err != nil {
		return nil, fmt.Errorf("connect to telegram: %w", err)
	}
	api.Debug = cfg.Debug

	logger.Info("Authorized on Telegram", zap.String("username", api.Self.UserName))

	return &Bot{
		api:     api,
		handler: NewHandler(api, forecaster, store, logger, tele),
		cfg:     cfg,
		logger:  logger,
	}, nil
}

// Run long-polls Telegram until ctx is cancelled.
func (b *Bot) Run(ctx context.Context) error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = b.cfg.PollTimeout

	updates := b.api.GetUpdatesChan(u)

	go func() {
		<-ctx.Done()
		b.api.StopReceivingUpdates()
	}()

	b.logger.Info("Bot polling started",
		zap.Int("poll_timeout", b.cfg.PollTimeout),
		zap.Int("workers", b.cfg.Workers))

	Serve(ctx, updates, b.handler, b.cfg.Workers, b.logger)

	b.logger.Info("Bot polling stopped")
	return nil
}

// Serve fans updates out to a fixed set of workers until updates is closed or
// ctx is done. Updates from one user always land on the same worker so that
// their replies keep the order the messages were sent in.
func Serve(ctx context.Context, updates <-chan tgbotapi.Update, handler *Handler, workers int, logger *zap.Logger) {
	if workers < 1 {
		workers = 1
	}

	var wg sync.WaitGroup
	pool := make([]*UpdateWorker, workers)
	for i := range pool {
		pool[i] = NewUpdateWorker(handler, i+1, workerQueueSize, logger)
		wg.Add(1)
		go pool[i].Start(ctx, &wg)
	}

	defer func() {
		for _, w := range pool {
			close(w.queue)
		}
		wg.Wait()
	}()

	for {
		select {
		case update, ok := <-updates:
			if !ok {
				return
			}
			w := pool[workerIndex(dispatchKey(update), workers)]
			select {
			case w.queue <- update:
			case <-ctx.Done():
				return
			}
		case <-ctx.Done():
			return
		}
	}
}

func workerIndex(key int64, workers int) int {
	idx := key % int64(workers)
	if idx < 0 {
		idx = -idx
	}
	return int(idx)
}
