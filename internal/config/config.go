package config

import (
	"errors"
	"sync/atomic"
)

var configValue atomic.Value

func GetConfig() *Config {
	return configValue.Load().(*Config)
}

func SetConfig(cfg *Config) {
	configValue.Store(cfg)
}

var (
	ErrMissingAPIKey   = errors.New("weather provider API key is not configured")
	ErrMissingBotToken = errors.New("bot token is not configured")
)

type Config struct {
	Version     string           `mapstructure:"version"`
	Environment string           `mapstructure:"environment"`
	Server      ServerConfig     `mapstructure:"server"`
	Provider    ProviderConfig   `mapstructure:"provider"`
	Aggregator  AggregatorConfig `mapstructure:"aggregator"`
	Bot         BotConfig        `mapstructure:"bot"`
	Session     SessionConfig    `mapstructure:"session"`
	Logging     LoggingConfig    `mapstructure:"logging"`
	Telemetry   TelemetryConfig  `mapstructure:"telemetry"`
}

type ServerConfig struct {
	Enabled      bool   `mapstructure:"enabled"`
	Port         int    `mapstructure:"port"`
	Host         string `mapstructure:"host"`
	ReadTimeout  int    `mapstructure:"read_timeout"`
	WriteTimeout int    `mapstructure:"write_timeout"`
	IdleTimeout  int    `mapstructure:"idle_timeout"`
}

// ProviderConfig describes the AccuWeather endpoint. Timeout is in seconds,
// zero leaves the call bounded only by its context.
type ProviderConfig struct {
	BaseURL string `mapstructure:"base_url"`
	APIKey  string `mapstructure:"api_key"`
	Timeout int    `mapstructure:"timeout"`
}

type AggregatorConfig struct {
	// Policy is either "abort_on_first_failure" or "collect_all".
	Policy string `mapstructure:"policy"`
}

type BotConfig struct {
	Enabled     bool   `mapstructure:"enabled"`
	Token       string `mapstructure:"token"`
	PollTimeout int    `mapstructure:"poll_timeout"`
	Workers     int    `mapstructure:"workers"`
	Debug       bool   `mapstructure:"debug"`
}

type SessionConfig struct {
	// Backend is either "memory" or "redis".
	Backend string      `mapstructure:"backend"`
	Redis   RedisConfig `mapstructure:"redis"`
}

type RedisConfig struct {
	Host      string `mapstructure:"host"`
	Port      int    `mapstructure:"port"`
	Password  string `mapstructure:"password"`
	Database  int    `mapstructure:"database"`
	KeyPrefix string `mapstructure:"key_prefix"`
	// TTL in seconds for stored preferences, zero keeps them forever.
	TTL       int    `mapstructure:"ttl"`
}

type LoggingConfig struct {
	Level      string `mapstructure:"level"`
	Format     string `mapstructure:"format"`
	OutputPath string `mapstructure:"output_path"`
}

type TelemetryConfig struct {
	Enabled     bool   `mapstructure:"enabled"`
	Endpoint    string `mapstructure:"endpoint"`
	ServiceName string `mapstructure:"service_name"`
}

func NewDefaultConfig() *Config {
	return &Config{
		Version:     "1.0.0",
		Environment: "development",
		Server: ServerConfig{
			Enabled:      true,
			Port:         8080,
			Host:         "0.0.0.0",
			ReadTimeout:  30,
			WriteTimeout: 30,
			IdleTimeout:  60,
		},
		Provider: ProviderConfig{
			BaseURL: "http://dataservice.accuweather.com",
			APIKey:  "",
			Timeout: 0,
		},
		Aggregator: AggregatorConfig{
			Policy: "abort_on_first_failure",
		},
		Bot: BotConfig{
			Enabled:     true,
			Token:       "",
			PollTimeout: 60,
			Workers:     4,
		},
		Session: SessionConfig{
			Backend: "memory",
			Redis: RedisConfig{
				Host:      "localhost",
				Port:      6379,
				KeyPrefix: "weather-bot",
			},
		},
		Logging: LoggingConfig{
			Level:      "info",
			Format:     "json",
			OutputPath: "",
		},
		Telemetry: TelemetryConfig{
			Enabled:     false,
			Endpoint:    "tempo:4317",
			ServiceName: "weather-bot",
		},
	}
}

// Validate reports missing secrets. Both are startup-fatal.
func (c *Config) Validate() error {
	if c.Provider.APIKey == "" {
		return ErrMissingAPIKey
	}
	if c.Bot.Enabled && c.Bot.Token == "" {
		return ErrMissingBotToken
	}
	return nil
}
