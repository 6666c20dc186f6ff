package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/vzahanych/weather-bot-app/internal/aggregator"
	"github.com/vzahanych/weather-bot-app/internal/config"
	"github.com/vzahanych/weather-bot-app/internal/service"
	"github.com/vzahanych/weather-bot-app/pkg/logger"
	"github.com/vzahanych/weather-bot-app/pkg/telemetry"
)

var (
	configPath string
	log        *logger.Logger
	tele       *telemetry.Telemetry
)

func rootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "weather",
		Short: "Weather forecasts over the web and Telegram",
		Long:  `Looks up AccuWeather daily forecasts for a list of cities and serves them as charts on a web form and as text through a Telegram bot.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return initializeServices(cmd.Context())
		},
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to configuration file (default: ./config.yaml)")

	cmd.AddCommand(serverCmd())
	cmd.AddCommand(forecastCmd())

	return cmd
}

func Execute() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	go func() {
		select {
		case sig := <-sigChan:
			if log != nil {
				log.Zap().Info("Received shutdown signal", zap.String("signal", sig.String()))
			}
			cancel()
		case <-ctx.Done():
		}
	}()

	return run(ctx, os.Args[1:], os.Stdout, os.Stderr)
}

// run executes one command and always releases what initializeServices set
// up, including when the command fails.
func run(ctx context.Context, args []string, out, errOut io.Writer) error {
	defer shutdownServices()

	root := rootCmd()
	root.SetArgs(args)
	root.SetOut(out)
	root.SetErr(errOut)

	return root.ExecuteContext(ctx)
}

func initializeServices(ctx context.Context) error {
	// 1. Load config from file, .env and environment
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	// 2. Set config
	config.SetConfig(cfg)

	// 3. Initialize logger
	log, err = logger.New(cfg.Logging)
	if err != nil {
		return fmt.Errorf("initialize logger: %w", err)
	}

	// 4. Telemetry is optional, a broken collector only costs us traces
	tele, err = telemetry.New(ctx, cfg.Telemetry, cfg.Version)
	if err != nil {
		log.Zap().Warn("Failed to initialize telemetry, tracing disabled", zap.Error(err))
		tele = telemetry.NewNoop()
	}

	return nil
}

func shutdownServices() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if tele != nil {
		if err := tele.Shutdown(ctx); err != nil && log != nil {
			log.Zap().Warn("Telemetry shutdown failed", zap.Error(err))
		}
	}
	if log != nil {
		_ = log.Sync()
	}
	tele = nil
	log = nil
}

func newAggregator(cfg *config.Config) (*aggregator.Aggregator, error) {
	svc := service.NewAccuWeatherServiceWithConfig(cfg.Provider, log.Zap(), tele)
	return aggregator.NewAggregator(cfg.Aggregator, svc, log.Zap(), tele)
}
