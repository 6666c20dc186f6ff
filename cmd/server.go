package cmd

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/vzahanych/weather-bot-app/internal/bot"
	"github.com/vzahanych/weather-bot-app/internal/config"
	"github.com/vzahanych/weather-bot-app/internal/server"
	"github.com/vzahanych/weather-bot-app/internal/server/handlers"
	"github.com/vzahanych/weather-bot-app/internal/session"
)

const shutdownTimeout = 30 * time.Second

func serverCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "server",
		Short: "Start the web form and the Telegram bot",
		Long:  `Start the HTTP server with the forecast form and the Telegram bot poller. Either can be switched off in the configuration.`,
		Args:  cobra.NoArgs,
		RunE:  runServer,
	}
}

func runServer(cmd *cobra.Command, args []string) error {
	cfg := config.GetConfig()
	if err := cfg.Validate(); err != nil {
		return err
	}
	if !cfg.Server.Enabled && !cfg.Bot.Enabled {
		return errors.New("both the web server and the bot are disabled")
	}

	zl := log.Zap()
	zl.Info("Starting weather service",
		zap.String("config_path", configPath),
		zap.Bool("server_enabled", cfg.Server.Enabled),
		zap.Bool("bot_enabled", cfg.Bot.Enabled),
		zap.Bool("telemetry_enabled", cfg.Telemetry.Enabled),
		zap.Int("server_port", cfg.Server.Port))

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	agg, err := newAggregator(cfg)
	if err != nil {
		return err
	}

	store, closeStore, err := session.NewStore(ctx, cfg.Session, zl)
	if err != nil {
		return err
	}
	defer func() {
		if err := closeStore(); err != nil {
			zl.Warn("Failed to close period store", zap.Error(err))
		}
	}()

	var checks []handlers.ReadinessCheck
	if rs, ok := store.(*session.RedisStore); ok {
		checks = append(checks, rs.Ping)
	}

	// the server installs the provider call recorder, so it is built before
	// the bot starts sharing the aggregator
	var srv *server.Server
	if cfg.Server.Enabled {
		srv = server.NewServer(cfg.Server, agg, zl, tele, checks...)
	}

	var tgBot *bot.Bot
	if cfg.Bot.Enabled {
		tgBot, err = bot.New(cfg.Bot, agg, store, zl, tele)
		if err != nil {
			return err
		}
	}

	errChan := make(chan error, 2)
	var wg sync.WaitGroup

	if srv != nil {
		go func() {
			if err := srv.Start(); err != nil {
				errChan <- fmt.Errorf("http server: %w", err)
			}
		}()
	}

	if tgBot != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := tgBot.Run(ctx); err != nil {
				errChan <- fmt.Errorf("bot: %w", err)
			}
		}()
	}

	var runErr error
	select {
	case runErr = <-errChan:
		zl.Error("Service error", zap.Error(runErr))
	case <-ctx.Done():
		zl.Info("Shutting down")
	}

	cancel()

	if srv != nil {
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer shutdownCancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			zl.Error("Error during server shutdown", zap.Error(err))
			runErr = errors.Join(runErr, err)
		}
	}

	wg.Wait()
	zl.Info("Shutdown complete")
	return runErr
}
