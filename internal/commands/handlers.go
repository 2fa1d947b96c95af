package commands

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/ykvlv/standup-bot/internal/domain"
	"github.com/ykvlv/standup-bot/internal/report"
)

const notSaved = " The change is active but could not be saved and will be lost on restart."

// persistNote appends the not-saved warning when err is a persistence failure.
// Other errors are returned unchanged for the caller to report.
func persistNote(err error) (string, error) {
	if err == nil {
		return "", nil
	}
	if errors.Is(err, domain.ErrPersist) {
		return notSaved, nil
	}
	return "", err
}

// --- Users ---

// target returns the user a command refers to: the author of the replied
// message, or the numeric id given as argument.
func (d *Dispatcher) target(inv Invocation) (domain.TrackedUser, error) {
	if inv.Target != nil {
		return *inv.Target, nil
	}
	id, err := domain.ParseUserID(inv.Args)
	if err != nil {
		return domain.TrackedUser{}, err
	}
	return domain.TrackedUser{ID: id}, nil
}

func (d *Dispatcher) addUser(ctx context.Context, inv Invocation) string {
	u, err := d.target(inv)
	if err != nil {
		return d.text("Usage: add-user <user id>, or reply to the user's message with add-user.")
	}
	if existing, ok := d.Registry.Get(u.ID); ok {
		return d.text(existing.Name() + " is already on the standup list.")
	}
	if inv.Target == nil && d.Resolver != nil {
		// Only chat members can be tracked.
		name, err := d.Resolver.DisplayName(ctx, u.ID)
		if err != nil {
			d.Log.Warn("resolve display name failed", zap.String("id", u.ID), zap.Error(err))
			return d.text(fmt.Sprintf("User %s was not found in this chat. Nobody was added.", u.ID))
		}
		u.DisplayName = name
	}

	note, err := persistNote(d.Registry.Add(ctx, u))
	switch {
	case errors.Is(err, domain.ErrDuplicateUser):
		return d.text(u.Name() + " is already on the standup list.")
	case err != nil:
		return d.text("Could not add user: " + err.Error())
	}
	return "Added " + d.Formatter.Mention(u) + d.text(" to the standup notification list."+note)
}

func (d *Dispatcher) removeUser(ctx context.Context, inv Invocation) string {
	u, err := d.target(inv)
	if err != nil {
		return d.text("Usage: remove-user <user id>, or reply to the user's message with remove-user.")
	}
	removed, err := d.Registry.Remove(ctx, u.ID)
	note, err := persistNote(err)
	switch {
	case errors.Is(err, domain.ErrUnknownUser):
		return d.text(u.Name() + " is not on the standup list.")
	case err != nil:
		return d.text("Could not remove user: " + err.Error())
	}
	return d.text("Removed " + removed.Name() + " from the standup notification list." + note)
}

func (d *Dispatcher) listUsers(_ context.Context, _ Invocation) string {
	users := d.Registry.Users()
	if len(users) == 0 {
		return d.text("No users are currently on the standup notification list.")
	}
	var b strings.Builder
	b.WriteString(d.Formatter.Bold("Standup Notification List:"))
	for _, u := range users {
		b.WriteString("\n" + d.text(fmt.Sprintf("• %s (ID: %s)", u.Name(), u.ID)))
	}
	return b.String()
}

// --- Recaps ---

func (d *Dispatcher) recapDate(inv Invocation, loc *time.Location) (time.Time, error) {
	if inv.Args == "" {
		return d.Now().In(loc), nil
	}
	return domain.ParseDate(inv.Args, loc)
}

func (d *Dispatcher) dailyRecap(ctx context.Context, inv Invocation) string {
	loc := d.location()
	day, err := d.recapDate(inv, loc)
	if err != nil {
		return d.text(err.Error())
	}
	rep, err := d.Reports.Daily(ctx, day, loc)
	if err != nil {
		d.Log.Error("daily recap failed", zap.Error(err))
		return d.text("Error generating recap: " + err.Error())
	}
	return report.RenderDaily(rep, d.Formatter)
}

func (d *Dispatcher) weeklyRecap(ctx context.Context, inv Invocation) string {
	loc := d.location()
	end, err := d.recapDate(inv, loc)
	if err != nil {
		return d.text(err.Error())
	}
	rep, err := d.Reports.Weekly(ctx, end, loc)
	if err != nil {
		d.Log.Error("weekly recap failed", zap.Error(err))
		return d.text("Error generating weekly recap: " + err.Error())
	}
	return report.RenderWeekly(rep, d.Formatter)
}

// --- Settings ---

func (d *Dispatcher) setClock(ctx context.Context, inv Invocation, what string, set func(context.Context, string) (string, error)) string {
	v, err := set(ctx, inv.Args)
	note, err := persistNote(err)
	if err != nil {
		return d.text("Invalid time format. Please use HH:MM (24-hour format).")
	}
	return d.text(fmt.Sprintf("%s set to %s %s.%s", what, v, d.Settings.Current().Timezone, note))
}

func (d *Dispatcher) setReminderTime(ctx context.Context, inv Invocation) string {
	return d.setClock(ctx, inv, "Standup reminder time", d.Settings.SetReminderTime)
}

func (d *Dispatcher) setSecondReminderTime(ctx context.Context, inv Invocation) string {
	return d.setClock(ctx, inv, "Second reminder time", d.Settings.SetSecondReminderTime)
}

func (d *Dispatcher) setDeadline(ctx context.Context, inv Invocation) string {
	return d.setClock(ctx, inv, "Standup deadline and follow-up time", d.Settings.SetDeadline)
}

func (d *Dispatcher) setTimezone(ctx context.Context, inv Invocation) string {
	tz, err := d.Settings.SetTimezone(ctx, inv.Args)
	note, err := persistNote(err)
	if err != nil {
		return d.text("Invalid timezone. Please use a valid timezone identifier (e.g., America/Los_Angeles).")
	}
	return d.text("Timezone set to " + tz + "." + note)
}

func (d *Dispatcher) setStandupFormat(ctx context.Context, inv Invocation) string {
	note, err := persistNote(d.Settings.SetStandupFormat(ctx, inv.Args))
	if err != nil {
		return d.text(fmt.Sprintf("Standup format must be non-empty and at most %d characters.", domain.MaxTemplateLen))
	}
	return d.text("Standup format template updated!" + note)
}

func (d *Dispatcher) setWeekdaysOnly(ctx context.Context, inv Invocation) string {
	on, err := domain.ParseToggle(inv.Args)
	if err != nil {
		return d.text("Usage: set-weekdays-only on|off")
	}
	note, err := persistNote(d.Settings.SetWeekdaysOnly(ctx, on))
	if err != nil {
		return d.text("Could not update weekdays-only: " + err.Error())
	}
	if on {
		return d.text("Reminders will be sent on weekdays only." + note)
	}
	return d.text("Reminders will be sent every day." + note)
}

func (d *Dispatcher) showConfig(_ context.Context, _ Invocation) string {
	cfg := d.Settings.Current()
	weekdays := "No"
	if cfg.WeekdaysOnly {
		weekdays = "Yes"
	}
	lines := []string{
		d.Formatter.Bold("Standup Configuration"),
		d.text("Reminder Time: " + cfg.ReminderTime),
		d.text("Second Reminder Time: " + cfg.SecondReminderTime),
		d.text("Deadline Time: " + cfg.DeadlineTime),
		d.text("Timezone: " + cfg.Timezone),
		d.text("Weekdays Only: " + weekdays),
		d.text(fmt.Sprintf("Tracked Users: %d", len(d.Registry.Users()))),
		"",
		d.Formatter.Bold("Standup Format:"),
		d.text(cfg.StandupFormat),
	}
	return strings.Join(lines, "\n")
}

var triggerLabels = map[domain.Trigger]string{
	domain.TriggerReminder:       "Next Reminder",
	domain.TriggerSecondReminder: "Next Second Reminder",
	domain.TriggerFollowup:       "Next Follow-up",
}

// status reports the local clock, the next time of each trigger and who has
// responded today.
func (d *Dispatcher) status(ctx context.Context, _ Invocation) string {
	cfg := d.Settings.Current()
	loc := cfg.Location()
	now := d.Now().In(loc)
	const layout = "2006-01-02 15:04 MST"

	lines := []string{
		d.Formatter.Bold("Standup Status"),
		d.text(fmt.Sprintf("Current Time: %s (%s)", now.Format(layout), now.Weekday())),
	}
	if cfg.WeekdaysOnly && domain.IsWeekend(now, loc) {
		lines = append(lines, d.text("Today is a weekend, no reminders are sent."))
	}
	for _, t := range domain.Triggers {
		mins, err := cfg.TriggerMinutes(t)
		if err != nil {
			lines = append(lines, d.text(triggerLabels[t]+": invalid time"))
			continue
		}
		next := domain.NextOccurrence(now, loc, mins, cfg.WeekdaysOnly)
		lines = append(lines, d.text(triggerLabels[t]+": "+next.Format(layout)))
	}

	rep, err := d.Reports.Daily(ctx, now, loc)
	if err != nil {
		d.Log.Error("status responses failed", zap.Error(err))
		return strings.Join(append(lines, "", d.text("Could not read today's responses: "+err.Error())), "\n")
	}
	lines = append(lines, "", d.Formatter.Bold(fmt.Sprintf("Today's Responses (%d/%d)", rep.RespondedCount(), len(rep.Rows))))
	if len(rep.Rows) == 0 {
		lines = append(lines, d.text("No users are currently on the standup notification list."))
	}
	for _, row := range rep.Rows {
		mark := "❌ Not submitted"
		if row.Responded {
			mark = "✅ Submitted"
		}
		lines = append(lines, d.text(fmt.Sprintf("%s: %s", row.User.Name(), mark)))
	}
	return strings.Join(lines, "\n")
}

// --- Manual triggers ---

func (d *Dispatcher) testReminder(ctx context.Context, _ Invocation) string {
	if err := d.Notifications.Reminder(ctx, d.Now()); err != nil {
		d.Log.Error("test reminder failed", zap.Error(err))
		return d.text("Error: " + err.Error())
	}
	return d.text("Test standup reminder sent.")
}

func (d *Dispatcher) testSecondReminder(ctx context.Context, _ Invocation) string {
	sent, err := d.Notifications.SecondReminder(ctx, d.Now())
	if err != nil {
		d.Log.Error("test second reminder failed", zap.Error(err))
		return d.text("Error: " + err.Error())
	}
	if !sent {
		return d.text("Everyone has submitted their standup today, no second reminder needed.")
	}
	return d.text("Test second reminder sent.")
}

func (d *Dispatcher) testFollowup(ctx context.Context, _ Invocation) string {
	sent, err := d.Notifications.Followup(ctx, d.Now())
	if err != nil {
		d.Log.Error("test follow-up failed", zap.Error(err))
		return d.text("Error: " + err.Error())
	}
	if !sent {
		return d.text("Great job team! Everyone has submitted their standup for today!")
	}
	return d.text("Test follow-up sent.")
}

// --- Meta ---

func (d *Dispatcher) syncCommands(ctx context.Context, _ Invocation) string {
	if d.Syncer == nil {
		return d.text("Command sync is not supported here.")
	}
	n, err := d.Syncer.SyncCommands(ctx, Specs)
	if err != nil {
		d.Log.Error("sync commands failed", zap.Error(err))
		return d.text("Failed to sync commands: " + err.Error())
	}
	return d.text(fmt.Sprintf("Synced %d command(s) successfully!", n))
}

func (d *Dispatcher) help(_ context.Context, _ Invocation) string {
	var b strings.Builder
	b.WriteString(d.Formatter.Bold("Standup bot commands"))
	for _, s := range Specs {
		line := "/" + strings.ReplaceAll(s.Name, "-", "_")
		if s.Args != "" {
			line += " " + s.Args
		}
		line += " - " + s.Description
		if s.Admin {
			line += " (admin)"
		}
		b.WriteString("\n" + d.text(line))
	}
	return b.String()
}
