package app

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/ykvlv/standup-bot/assets"
	"github.com/ykvlv/standup-bot/internal/config"
	"github.com/ykvlv/standup-bot/internal/domain"
	"github.com/ykvlv/standup-bot/internal/history"
	"github.com/ykvlv/standup-bot/internal/registry"
	"github.com/ykvlv/standup-bot/internal/report"
	"github.com/ykvlv/standup-bot/internal/settings"
	"github.com/ykvlv/standup-bot/internal/store"
	"github.com/ykvlv/standup-bot/internal/tracker"
)

// Core is the platform-independent part of the bot: persisted state and
// the read side built on it. The CLI uses it without connecting to Telegram.
type Core struct {
	Store    store.Store
	Settings *settings.Store
	Registry *registry.Registry
	Journal  *history.Journal
	Tracker  *tracker.Tracker
	Reports  *report.Generator
}

// OpenCore opens the configured store and loads settings and users from it.
func OpenCore(ctx context.Context, cfg config.Config, log *zap.Logger) (*Core, error) {
	kv, err := store.Open(ctx, cfg.StoreDriver, cfg.DataDir)
	if err != nil {
		return nil, fmt.Errorf("open %s store: %w", cfg.StoreDriver, err)
	}
	log.Info("store ready", zap.String("driver", cfg.StoreDriver), zap.String("dir", cfg.DataDir))

	cs, err := settings.Open(ctx, kv, log, domain.DefaultSettings(assets.StandupFormat()))
	if err != nil {
		_ = kv.Close()
		return nil, err
	}
	reg, err := registry.Open(ctx, kv, log)
	if err != nil {
		_ = kv.Close()
		return nil, err
	}
	journal := history.New(kv, log, cfg.HistoryRetention)
	tr := tracker.New(journal)

	return &Core{
		Store:    kv,
		Settings: cs,
		Registry: reg,
		Journal:  journal,
		Tracker:  tr,
		Reports:  report.New(reg, tr),
	}, nil
}

// Close releases the store.
func (c *Core) Close() error {
	return c.Store.Close()
}
