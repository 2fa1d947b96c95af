package main

import (
	"os"

	"github.com/ykvlv/standup-bot/internal/config"
	"github.com/ykvlv/standup-bot/internal/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		// No logger yet; exit immediately.
		_, _ = os.Stderr.WriteString("config error: " + err.Error() + "\n")
		os.Exit(2)
	}

	log, err := logger.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		_, _ = os.Stderr.WriteString("logger init error: " + err.Error() + "\n")
		os.Exit(2)
	}

	err = newRootCmd(cfg, log).Execute()
	// Ignore sync error (common on some platforms).
	_ = log.Sync()
	if err != nil {
		os.Exit(1)
	}
}
