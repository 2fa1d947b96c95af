package domain

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// MaxTemplateLen keeps the reminder (date + template + mentions) under one chat message.
const MaxTemplateLen = 3000

// Settings is the persisted standup configuration.
type Settings struct {
	ReminderTime       string `json:"reminder_time" yaml:"reminder_time"`
	SecondReminderTime string `json:"second_reminder_time" yaml:"second_reminder_time"`
	DeadlineTime       string `json:"deadline_time" yaml:"deadline_time"`
	Timezone           string `json:"timezone" yaml:"timezone"`
	StandupFormat      string `json:"standup_format" yaml:"standup_format"`
	WeekdaysOnly       bool   `json:"weekdays_only" yaml:"weekdays_only"`
}

// DefaultSettings returns the configuration used when nothing is persisted yet.
func DefaultSettings(template string) Settings {
	return Settings{
		ReminderTime:       "09:30",
		SecondReminderTime: "10:15",
		DeadlineTime:       "11:00",
		Timezone:           "America/Los_Angeles",
		StandupFormat:      template,
		WeekdaysOnly:       true,
	}
}

// Validate checks every field; all problems are joined into one error.
func (s Settings) Validate() error {
	var errs []error
	clocks := []struct{ name, v string }{
		{"reminder_time", s.ReminderTime},
		{"second_reminder_time", s.SecondReminderTime},
		{"deadline_time", s.DeadlineTime},
	}
	for _, c := range clocks {
		if _, err := ParseClock(c.v); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", c.name, err))
		}
	}
	if _, err := ValidateTZ(s.Timezone); err != nil {
		errs = append(errs, fmt.Errorf("timezone: %w", err))
	}
	if err := ValidateTemplate(s.StandupFormat); err != nil {
		errs = append(errs, fmt.Errorf("standup_format: %w", err))
	}
	return errors.Join(errs...)
}

// ValidateTemplate rejects empty and oversized standup formats.
func ValidateTemplate(t string) error {
	if strings.TrimSpace(t) == "" {
		return fmt.Errorf("%w: empty", ErrInvalidTemplate)
	}
	if len(t) > MaxTemplateLen {
		return fmt.Errorf("%w: longer than %d characters", ErrInvalidTemplate, MaxTemplateLen)
	}
	return nil
}

// Location loads the configured timezone, falling back to UTC.
// Settings are validated on every mutation, so the fallback only covers hand-edited files.
func (s Settings) Location() *time.Location {
	loc, err := time.LoadLocation(s.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// Trigger identifies one of the three daily events.
type Trigger int

const (
	TriggerReminder Trigger = iota
	TriggerSecondReminder
	TriggerFollowup
)

// Triggers lists the daily events in firing order.
var Triggers = []Trigger{TriggerReminder, TriggerSecondReminder, TriggerFollowup}

func (t Trigger) String() string {
	switch t {
	case TriggerReminder:
		return "reminder"
	case TriggerSecondReminder:
		return "second-reminder"
	case TriggerFollowup:
		return "follow-up"
	}
	return fmt.Sprintf("trigger(%d)", int(t))
}

// TriggerMinutes returns the configured time of day for t in minutes since midnight.
func (s Settings) TriggerMinutes(t Trigger) (int, error) {
	switch t {
	case TriggerReminder:
		return ParseClock(s.ReminderTime)
	case TriggerSecondReminder:
		return ParseClock(s.SecondReminderTime)
	case TriggerFollowup:
		return ParseClock(s.DeadlineTime)
	}
	return 0, fmt.Errorf("unknown trigger %d", int(t))
}
