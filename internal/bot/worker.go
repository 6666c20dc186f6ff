package bot

import (
	"context"
	"sync"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

type UpdateWorker struct {
	handler  *Handler
	workerID int
	queue    chan tgbotapi.Update
	logger   *zap.Logger
}

func NewUpdateWorker(handler *Handler, workerID, queueSize int, logger *zap.Logger) *UpdateWorker {
	return &UpdateWorker{
		handler:  handler,
		workerID: workerID,
		queue:    make(chan tgbotapi.Update, queueSize),
		logger:   logger.With(zap.Int("worker_id", workerID)),
	}
}

// Start drains the queue until it is closed. Updates already queued when the
// context is cancelled are dropped.
func (w *UpdateWorker) Start(ctx context.Context, wg *sync.WaitGroup) {
	defer wg.Done()

	w.logger.Info("Worker started")

	for {
		select {
		case update, ok := <-w.queue:
			if !ok {
				w.logger.Info("Update queue closed, worker stopping")
				return
			}

			w.logger.Debug("Processing update", zap.Int("update_id", update.UpdateID))
			w.process(ctx, update)

		case <-ctx.Done():
			w.logger.Info("Context cancelled, worker stopping")
			return
		}
	}
}

func (w *UpdateWorker) process(ctx context.Context, update tgbotapi.Update) {
	defer func() {
		if r := recover(); r != nil {
			w.logger.Error("Panic while handling update",
				zap.Int("update_id", update.UpdateID),
				zap.Any("panic", r))
		}
	}()

	if err := w.handler.HandleUpdate(ctx, update); err != nil {
		w.logger.Error("Update failed", zap.Int("update_id", update.UpdateID), zap.Error(err))
		return
	}
	w.logger.Debug("Update handled", zap.Int("update_id", update.UpdateID))
}
