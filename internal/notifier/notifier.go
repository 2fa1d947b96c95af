// Package notifier composes and posts the daily standup messages.
package notifier

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/ykvlv/standup-bot/internal/domain"
	"github.com/ykvlv/standup-bot/internal/format"
	"github.com/ykvlv/standup-bot/internal/tracker"
)

// Channel posts one message to the standup channel.
type Channel interface {
	Send(ctx context.Context, text string) error
}

// SettingsSource exposes the current standup configuration.
type SettingsSource interface {
	Current() domain.Settings
}

// Roster lists the tracked users in registry order.
type Roster interface {
	Users() []domain.TrackedUser
}

// ResponseSource computes who already posted on a given day.
type ResponseSource interface {
	Responses(ctx context.Context, day time.Time, loc *time.Location, users []domain.TrackedUser) (tracker.Responses, error)
}

// Notifier sends the reminder, second reminder and follow-up.
type Notifier struct {
	settings SettingsSource
	roster   Roster
	tracker  ResponseSource
	channel  Channel
	fm       format.Formatter
	log      *zap.Logger
}

// New creates a notifier.
func New(settings SettingsSource, roster Roster, tr ResponseSource, ch Channel, f format.Formatter, log *zap.Logger) *Notifier {
	return &Notifier{settings: settings, roster: roster, tracker: tr, channel: ch, fm: f, log: log}
}

// Reminder posts the daily reminder with the template, mentioning every
// tracked user. It is sent regardless of responses.
func (n *Notifier) Reminder(ctx context.Context, now time.Time) error {
	cfg := n.settings.Current()
	loc := cfg.Location()
	users := n.roster.Users()

	who := "everyone"
	if len(users) > 0 {
		who = n.mentions(users)
	}

	var b strings.Builder
	b.WriteString("📝 " + n.fm.Bold("Daily Standup for "+now.In(loc).Format("01/02/2006")) + "\n\n")
	b.WriteString("🔔 " + n.fm.Bold("Good morning") + " " + who + "! ")
	b.WriteString(n.fm.Escape(fmt.Sprintf("Please fill in your standups before %s (%s).", cfg.DeadlineTime, cfg.Timezone)) + "\n\n")
	b.WriteString(n.fm.Bold("Standup Template:") + "\n\n")
	b.WriteString(n.fm.Escape(cfg.StandupFormat) + "\n\n")
	b.WriteString(n.fm.Italic("Reply in this chat with your update."))

	if err := n.send(ctx, b.String()); err != nil {
		return err
	}
	n.log.Info("standup reminder sent", zap.Int("mentioned", len(users)))
	return nil
}

// SecondReminder mentions only the users that have not responded today.
// Nothing is sent when everyone already responded.
func (n *Notifier) SecondReminder(ctx context.Context, now time.Time) (bool, error) {
	cfg := n.settings.Current()
	missing, err := n.missing(ctx, now, cfg)
	if err != nil {
		return false, err
	}
	if len(missing) == 0 {
		n.log.Info("second reminder suppressed, everyone responded")
		return false, nil
	}

	text := "⏰ " + n.fm.Bold("Second Reminder!") + " " +
		n.fm.Escape(fmt.Sprintf("The following team members still need to submit their standups (due by %s): ", cfg.DeadlineTime)) +
		n.mentions(missing)
	if err := n.send(ctx, text); err != nil {
		return false, err
	}
	n.log.Info("second reminder sent", zap.Int("missing", len(missing)))
	return true, nil
}

// Followup is the deadline notice listing the users still missing.
// Nothing is sent when everyone already responded.
func (n *Notifier) Followup(ctx context.Context, now time.Time) (bool, error) {
	cfg := n.settings.Current()
	missing, err := n.missing(ctx, now, cfg)
	if err != nil {
		return false, err
	}
	if len(missing) == 0 {
		n.log.Info("follow-up suppressed, everyone responded")
		return false, nil
	}

	text := "⏰ " + n.fm.Bold("Reminder!") + " " +
		n.fm.Escape(fmt.Sprintf("The %s deadline has passed. The following team members still need to submit their standups: ", cfg.DeadlineTime)) +
		n.mentions(missing)
	if err := n.send(ctx, text); err != nil {
		return false, err
	}
	n.log.Info("follow-up sent", zap.Int("missing", len(missing)))
	return true, nil
}

func (n *Notifier) missing(ctx context.Context, now time.Time, cfg domain.Settings) ([]domain.TrackedUser, error) {
	users := n.roster.Users()
	if len(users) == 0 {
		return nil, nil
	}
	resp, err := n.tracker.Responses(ctx, now, cfg.Location(), users)
	if err != nil {
		return nil, err
	}
	return resp.Missing(users), nil
}

func (n *Notifier) mentions(users []domain.TrackedUser) string {
	parts := make([]string, 0, len(users))
	for _, u := range users {
		parts = append(parts, n.fm.Mention(u))
	}
	return strings.Join(parts, " ")
}

func (n *Notifier) send(ctx context.Context, text string) error {
	if err := n.channel.Send(ctx, text); err != nil {
		return fmt.Errorf("%w: send: %w", domain.ErrChannelAccess, err)
	}
	return nil
}
