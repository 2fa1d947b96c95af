// Package settings holds the standup configuration in memory and persists it
// as one document after every change.
package settings

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/ykvlv/standup-bot/internal/domain"
	"github.com/ykvlv/standup-bot/internal/store"
)

// DocumentKey is the store key of the settings document.
const DocumentKey = "config"

// Store is the configuration store. The in-memory copy is authoritative;
// a failed write leaves it applied and is retried implicitly by the next change.
type Store struct {
	kv  store.Store
	log *zap.Logger

	mu  sync.RWMutex
	cur domain.Settings
}

// Open loads the persisted settings or writes defaults when none exist.
// A document that fails validation is replaced by defaults in memory.
func Open(ctx context.Context, kv store.Store, log *zap.Logger, defaults domain.Settings) (*Store, error) {
	s := &Store{kv: kv, log: log, cur: defaults}

	var loaded domain.Settings
	err := kv.Get(ctx, DocumentKey, &loaded)
	switch {
	case errors.Is(err, store.ErrNotFound):
		if err := kv.Put(ctx, DocumentKey, defaults); err != nil {
			log.Warn("write default settings failed", zap.Error(err))
		}
		return s, nil
	case err != nil:
		return nil, fmt.Errorf("load settings: %w", err)
	}

	fillBlank(&loaded, defaults)
	if err := loaded.Validate(); err != nil {
		log.Warn("persisted settings invalid, using defaults", zap.Error(err))
		return s, nil
	}
	s.cur = loaded
	return s, nil
}

// fillBlank copies defaults into fields missing from an older document.
func fillBlank(s *domain.Settings, d domain.Settings) {
	if s.ReminderTime == "" {
		s.ReminderTime = d.ReminderTime
	}
	if s.SecondReminderTime == "" {
		s.SecondReminderTime = d.SecondReminderTime
	}
	if s.DeadlineTime == "" {
		s.DeadlineTime = d.DeadlineTime
	}
	if s.Timezone == "" {
		s.Timezone = d.Timezone
	}
	if s.StandupFormat == "" {
		s.StandupFormat = d.StandupFormat
	}
}

// Current returns a snapshot of the settings.
func (s *Store) Current() domain.Settings {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cur
}

// Location returns the configured timezone.
func (s *Store) Location() *time.Location {
	return s.Current().Location()
}

// update validates the mutated copy, swaps it in and persists it.
// Validation failures leave the current settings untouched.
func (s *Store) update(ctx context.Context, field string, mutate func(*domain.Settings) error) error {
	s.mu.Lock()
	next := s.cur
	if err := mutate(&next); err != nil {
		s.mu.Unlock()
		return err
	}
	s.cur = next
	s.mu.Unlock()

	if err := s.kv.Put(ctx, DocumentKey, next); err != nil {
		s.log.Error("persist settings failed", zap.String("field", field), zap.Error(err))
		return fmt.Errorf("%w: %w", domain.ErrPersist, err)
	}
	s.log.Info("settings updated", zap.String("field", field))
	return nil
}

func (s *Store) setClock(ctx context.Context, field, value string, set func(*domain.Settings, string)) (string, error) {
	norm, err := domain.NormalizeClock(value)
	if err != nil {
		return "", err
	}
	err = s.update(ctx, field, func(cfg *domain.Settings) error {
		set(cfg, norm)
		return nil
	})
	return norm, err
}

// SetReminderTime sets the first reminder time and returns the normalized value.
func (s *Store) SetReminderTime(ctx context.Context, hhmm string) (string, error) {
	return s.setClock(ctx, "reminder_time", hhmm, func(c *domain.Settings, v string) { c.ReminderTime = v })
}

// SetSecondReminderTime sets the second reminder time.
func (s *Store) SetSecondReminderTime(ctx context.Context, hhmm string) (string, error) {
	return s.setClock(ctx, "second_reminder_time", hhmm, func(c *domain.Settings, v string) { c.SecondReminderTime = v })
}

// SetDeadline sets the follow-up (deadline) time.
func (s *Store) SetDeadline(ctx context.Context, hhmm string) (string, error) {
	return s.setClock(ctx, "deadline_time", hhmm, func(c *domain.Settings, v string) { c.DeadlineTime = v })
}

// SetTimezone validates tz and stores its canonical name.
func (s *Store) SetTimezone(ctx context.Context, tz string) (string, error) {
	canon, err := domain.ValidateTZ(tz)
	if err != nil {
		return "", err
	}
	err = s.update(ctx, "timezone", func(c *domain.Settings) error {
		c.Timezone = canon
		return nil
	})
	return canon, err
}

// SetStandupFormat replaces the template posted with the reminder.
func (s *Store) SetStandupFormat(ctx context.Context, text string) error {
	if err := domain.ValidateTemplate(text); err != nil {
		return err
	}
	return s.update(ctx, "standup_format", func(c *domain.Settings) error {
		c.StandupFormat = text
		return nil
	})
}

// SetWeekdaysOnly toggles skipping Saturdays and Sundays.
func (s *Store) SetWeekdaysOnly(ctx context.Context, on bool) error {
	return s.update(ctx, "weekdays_only", func(c *domain.Settings) error {
		c.WeekdaysOnly = on
		return nil
	})
}
