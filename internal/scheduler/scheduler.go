package scheduler

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/ykvlv/standup-bot/internal/domain"
)

// Actions are the daily events the scheduler fires.
// notifier.Notifier implements this.
type Actions interface {
	Reminder(ctx context.Context, now time.Time) error
	SecondReminder(ctx context.Context, now time.Time) (bool, error)
	Followup(ctx context.Context, now time.Time) (bool, error)
}

// SettingsSource exposes the current standup configuration.
type SettingsSource interface {
	Current() domain.Settings
}

// State records the local date (YYYY-MM-DD) each trigger last fired on.
// It lives only in memory and is owned by the loop.
type State struct {
	LastReminder       string
	LastSecondReminder string
	LastFollowup       string
}

func (st *State) slot(t domain.Trigger) *string {
	switch t {
	case domain.TriggerReminder:
		return &st.LastReminder
	case domain.TriggerSecondReminder:
		return &st.LastSecondReminder
	default:
		return &st.LastFollowup
	}
}

// Scheduler fires the reminder, second reminder and follow-up once per day.
type Scheduler struct {
	settings SettingsSource
	actions  Actions
	log      *zap.Logger
	interval time.Duration
	now      func() time.Time
}

// New creates a new Scheduler polling every interval.
func New(settings SettingsSource, actions Actions, log *zap.Logger, interval time.Duration) *Scheduler {
	if interval <= 0 {
		interval = time.Minute
	}
	return &Scheduler{
		settings: settings,
		actions:  actions,
		log:      log,
		interval: interval,
		now:      time.Now,
	}
}

// Run starts the loop until ctx is canceled.
func (s *Scheduler) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	st := &State{}
	s.log.Info("scheduler started", zap.Duration("interval", s.interval))
	for {
		select {
		case <-ctx.Done():
			s.log.Info("scheduler stopping")
			return
		case <-ticker.C:
			s.Tick(ctx, s.now(), st)
		}
	}
}

// Tick performs one scheduling cycle and returns the triggers it ran.
// A trigger is marked fired for the day even when its action fails.
func (s *Scheduler) Tick(ctx context.Context, now time.Time, st *State) []domain.Trigger {
	cfg := s.settings.Current()
	loc := cfg.Location()
	if cfg.WeekdaysOnly && domain.IsWeekend(now, loc) {
		return nil
	}

	today := domain.DateKey(now, loc)
	var fired []domain.Trigger
	for _, t := range domain.Triggers {
		at, err := cfg.TriggerMinutes(t)
		if err != nil {
			s.log.Error("bad trigger time", zap.Stringer("trigger", t), zap.Error(err))
			continue
		}
		last := st.slot(t)
		if !domain.Due(now, loc, at, *last) {
			continue
		}
		*last = today
		fired = append(fired, t)
		s.run(ctx, t, now)
	}
	return fired
}

func (s *Scheduler) run(ctx context.Context, t domain.Trigger, now time.Time) {
	var (
		sent = true
		err  error
	)
	switch t {
	case domain.TriggerReminder:
		err = s.actions.Reminder(ctx, now)
	case domain.TriggerSecondReminder:
		sent, err = s.actions.SecondReminder(ctx, now)
	case domain.TriggerFollowup:
		sent, err = s.actions.Followup(ctx, now)
	}
	if err != nil {
		s.log.Error("trigger failed", zap.Stringer("trigger", t), zap.Error(err))
		return
	}
	s.log.Debug("trigger fired", zap.Stringer("trigger", t), zap.Bool("sent", sent))
}
