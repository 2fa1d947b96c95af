package config

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config holds process configuration loaded from environment variables.
// Standup settings (times, timezone, template) live in the settings document.
type Config struct {
	BotToken         string        `envconfig:"BOT_TOKEN"`
	ChatID           int64         `envconfig:"CHAT_ID"`
	DataDir          string        `envconfig:"DATA_DIR" default:"./data"`
	StoreDriver      string        `envconfig:"STORE_DRIVER" default:"json"` // json|bolt|sqlite
	LogLevel         string        `envconfig:"LOG_LEVEL" default:"info"`    // debug|info|warn|error
	LogFormat        string        `envconfig:"LOG_FORMAT" default:"json"`   // json|console
	HTTPAddr         string        `envconfig:"HTTP_ADDR" default:":8080"`   // healthz
	TickInterval     time.Duration `envconfig:"TICK_INTERVAL" default:"1m"`
	HistoryRetention time.Duration `envconfig:"HISTORY_RETENTION" default:"336h"` // 0 keeps everything, else >= MinHistoryRetention
}

// MinHistoryRetention keeps a full weekly recap readable.
const MinHistoryRetention = 7 * 24 * time.Hour

// Load reads an optional .env file and then environment variables into Config.
// Variables already set in the environment win over the file.
func Load(envFiles ...string) (Config, error) {
	var cfg Config
	if err := godotenv.Load(envFiles...); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return cfg, fmt.Errorf("load env file: %w", err)
	}
	if err := envconfig.Process("", &cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// ValidateBot checks the settings needed to connect to Telegram.
func (c Config) ValidateBot() error {
	var errs []error
	if c.BotToken == "" {
		errs = append(errs, errors.New("BOT_TOKEN is required"))
	}
	if c.ChatID == 0 {
		errs = append(errs, errors.New("CHAT_ID is required"))
	}
	if c.TickInterval < time.Second {
		errs = append(errs, fmt.Errorf("TICK_INTERVAL %s is too short", c.TickInterval))
	}
	if c.HistoryRetention < 0 || (c.HistoryRetention > 0 && c.HistoryRetention < MinHistoryRetention) {
		errs = append(errs, fmt.Errorf("HISTORY_RETENTION %s must be 0 or at least %s", c.HistoryRetention, MinHistoryRetention))
	}
	return errors.Join(errs...)
}
