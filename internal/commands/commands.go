// Package commands implements the operator commands independently of the
// chat platform. Handlers validate input, apply it and return reply text.
package commands

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/ykvlv/standup-bot/internal/domain"
	"github.com/ykvlv/standup-bot/internal/format"
	"github.com/ykvlv/standup-bot/internal/report"
)

// Settings is the configuration store as seen by commands.
type Settings interface {
	Current() domain.Settings
	SetReminderTime(ctx context.Context, hhmm string) (string, error)
	SetSecondReminderTime(ctx context.Context, hhmm string) (string, error)
	SetDeadline(ctx context.Context, hhmm string) (string, error)
	SetTimezone(ctx context.Context, tz string) (string, error)
	SetStandupFormat(ctx context.Context, text string) error
	SetWeekdaysOnly(ctx context.Context, on bool) error
}

// Registry is the tracked user list as seen by commands.
type Registry interface {
	Users() []domain.TrackedUser
	Get(id string) (domain.TrackedUser, bool)
	Add(ctx context.Context, u domain.TrackedUser) error
	Remove(ctx context.Context, id string) (domain.TrackedUser, error)
}

// Reports builds digests.
type Reports interface {
	Daily(ctx context.Context, day time.Time, loc *time.Location) (report.DailyReport, error)
	Weekly(ctx context.Context, end time.Time, loc *time.Location) (report.WeeklyReport, error)
}

// Notifications are the scheduled actions, triggered manually by test commands.
type Notifications interface {
	Reminder(ctx context.Context, now time.Time) error
	SecondReminder(ctx context.Context, now time.Time) (bool, error)
	Followup(ctx context.Context, now time.Time) (bool, error)
}

// Resolver looks up a user's display name on the platform.
type Resolver interface {
	DisplayName(ctx context.Context, id string) (string, error)
}

// Syncer registers the command list with the platform.
type Syncer interface {
	SyncCommands(ctx context.Context, specs []Spec) (int, error)
}

// Caller identifies who sent a command.
type Caller struct {
	ID    string
	Name  string
	Admin bool
}

// Invocation is a parsed command. Target is set when the command replied
// to another user's message.
type Invocation struct {
	Name   string
	Args   string
	Caller Caller
	Target *domain.TrackedUser
}

// Deps bundles the dispatcher's collaborators.
type Deps struct {
	Settings      Settings
	Registry      Registry
	Reports       Reports
	Notifications Notifications
	Resolver      Resolver
	Syncer        Syncer
	Formatter     format.Formatter
	Log           *zap.Logger
	Now           func() time.Time
}

// Dispatcher routes invocations to handlers.
type Dispatcher struct {
	Deps
	handlers map[string]handler
}

type handler func(ctx context.Context, inv Invocation) string

// New creates a dispatcher.
func New(d Deps) *Dispatcher {
	if d.Formatter == nil {
		d.Formatter = format.Plain{}
	}
	if d.Now == nil {
		d.Now = time.Now
	}
	if d.Log == nil {
		d.Log = zap.NewNop()
	}
	disp := &Dispatcher{Deps: d}
	disp.handlers = map[string]handler{
		"add-user":                 disp.addUser,
		"remove-user":              disp.removeUser,
		"list-users":               disp.listUsers,
		"daily-recap":              disp.dailyRecap,
		"weekly-recap":             disp.weeklyRecap,
		"set-reminder-time":        disp.setReminderTime,
		"set-second-reminder-time": disp.setSecondReminderTime,
		"set-deadline":             disp.setDeadline,
		"set-timezone":             disp.setTimezone,
		"set-standup-format":       disp.setStandupFormat,
		"set-weekdays-only":        disp.setWeekdaysOnly,
		"show-config":              disp.showConfig,
		"status":                   disp.status,
		"test-reminder":            disp.testReminder,
		"test-second-reminder":     disp.testSecondReminder,
		"test-followup":            disp.testFollowup,
		"sync-commands":            disp.syncCommands,
		"help":                     disp.help,
	}
	return disp
}

// Normalize maps platform spellings ("/set_deadline@bot") to the canonical
// hyphenated name ("set-deadline").
func Normalize(name string) string {
	name = strings.TrimPrefix(strings.TrimSpace(name), "/")
	if i := strings.IndexByte(name, '@'); i >= 0 {
		name = name[:i]
	}
	return strings.ReplaceAll(strings.ToLower(name), "_", "-")
}

// Known reports whether name is a command this dispatcher handles.
func (d *Dispatcher) Known(name string) bool {
	_, ok := d.handlers[Normalize(name)]
	return ok
}

// Handle runs the command and returns the reply. Unknown commands return "".
func (d *Dispatcher) Handle(ctx context.Context, inv Invocation) string {
	inv.Name = Normalize(inv.Name)
	inv.Args = strings.TrimSpace(inv.Args)
	h, ok := d.handlers[inv.Name]
	if !ok {
		return ""
	}
	if spec, _ := Lookup(inv.Name); spec.Admin && !inv.Caller.Admin {
		d.Log.Warn("command denied", zap.String("command", inv.Name), zap.String("caller", inv.Caller.ID))
		return d.text("You don't have permission to use this command.")
	}
	d.Log.Info("command", zap.String("command", inv.Name), zap.String("caller", inv.Caller.ID))
	return h(ctx, inv)
}

func (d *Dispatcher) text(s string) string { return d.Formatter.Escape(s) }

func (d *Dispatcher) location() *time.Location { return d.Settings.Current().Location() }
