package app

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/ykvlv/standup-bot/internal/commands"
	"github.com/ykvlv/standup-bot/internal/config"
	"github.com/ykvlv/standup-bot/internal/format"
	"github.com/ykvlv/standup-bot/internal/notifier"
	"github.com/ykvlv/standup-bot/internal/scheduler"
	"github.com/ykvlv/standup-bot/internal/telegram"
)

type App struct {
	cfg     config.Config
	log     *zap.Logger
	bot     *tgbotapi.BotAPI
	httpSrv *http.Server
}

func New(cfg config.Config, log *zap.Logger) (*App, error) {
	if err := cfg.ValidateBot(); err != nil {
		return nil, err
	}
	bot, err := tgbotapi.NewBotAPI(cfg.BotToken)
	if err != nil {
		return nil, err
	}
	bot.Debug = false

	srv := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      healthMux(),
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	}

	return &App{cfg: cfg, log: log, bot: bot, httpSrv: srv}, nil
}

func healthMux() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusOK) })
	return mux
}

func (a *App) Run(ctx context.Context) error {
	a.log.Info("starting standup-bot",
		zap.String("bot", a.bot.Self.UserName),
		zap.Int64("chatID", a.cfg.ChatID),
		zap.String("http", a.cfg.HTTPAddr),
	)

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	core, err := OpenCore(ctx, a.cfg, a.log)
	if err != nil {
		a.log.Error("open core failed", zap.Error(err))
		return err
	}
	defer func() {
		if err := core.Close(); err != nil {
			a.log.Warn("store close error", zap.Error(err))
		}
	}()

	if a.cfg.HistoryRetention > 0 {
		// Days that aged out while the bot was down.
		if n, err := core.Journal.Prune(ctx, time.Now().Add(-a.cfg.HistoryRetention)); err != nil {
			a.log.Warn("prune history failed", zap.Error(err))
		} else if n > 0 {
			a.log.Info("pruned history", zap.Int("days", n))
		}
	}

	client := telegram.NewClient(a.bot, a.cfg.ChatID, a.log)
	notify := notifier.New(core.Settings, core.Registry, core.Tracker, client, format.TelegramHTML(), a.log)
	dispatch := commands.New(commands.Deps{
		Settings:      core.Settings,
		Registry:      core.Registry,
		Reports:       core.Reports,
		Notifications: notify,
		Resolver:      client,
		Syncer:        client,
		Formatter:     format.TelegramHTML(),
		Log:           a.log,
	})
	router := telegram.NewRouter(a.cfg.ChatID, a.log, client, client, core.Journal, dispatch)
	sched := scheduler.New(core.Settings, notify, a.log, a.cfg.TickInterval)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		sched.Run(ctx)
	}()

	go func() {
		if err := a.httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.log.Error("http server error", zap.Error(err))
		}
	}()

	u := tgbotapi.NewUpdate(0)
	u.Timeout = 30
	updCh := a.bot.GetUpdatesChan(u)

	for {
		select {
		case <-ctx.Done():
			a.log.Info("shutdown signal received")
			a.bot.StopReceivingUpdates()

			// Create a short-lived shutdown context and cancel it immediately after use.
			shCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			err := a.httpSrv.Shutdown(shCtx)
			cancel()

			if err != nil {
				a.log.Warn("http server shutdown error", zap.Error(err))
			}
			wg.Wait()
			return nil

		case upd := <-updCh:
			router.HandleUpdate(ctx, upd)
		}
	}
}
