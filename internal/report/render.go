package report

import (
	"fmt"
	"strings"

	"github.com/ykvlv/standup-bot/internal/domain"
	"github.com/ykvlv/standup-bot/internal/format"
)

const noUsers = "No users are currently on the standup notification list."

// RenderDaily formats a daily report. Names are not mentions so a recap
// never pings anyone.
func RenderDaily(r DailyReport, f format.Formatter) string {
	var b strings.Builder
	b.WriteString(f.Bold(fmt.Sprintf("Standup Recap for %s (%s)", r.Date.Format(domain.DateLayout), r.Weekday)) + "\n")
	if len(r.Rows) == 0 {
		b.WriteString("\n" + f.Escape(noUsers))
		return b.String()
	}
	b.WriteString(f.Escape(fmt.Sprintf("%d/%d responded", r.RespondedCount(), len(r.Rows))) + "\n")
	for _, row := range r.Rows {
		b.WriteString("\n")
		if !row.Responded {
			b.WriteString("❌ " + f.Bold(row.User.Name()) + "\n" + f.Italic("No update submitted.") + "\n")
			continue
		}
		b.WriteString("✅ " + f.Bold(row.User.Name()) + "\n" + f.Escape(row.Content()) + "\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

// RenderWeekly formats a weekly report: one section per day followed by
// the per-user summary.
func RenderWeekly(w WeeklyReport, f format.Formatter) string {
	var b strings.Builder
	title := "Weekly Standup Recap"
	if len(w.Days) > 0 {
		title = fmt.Sprintf("Weekly Standup Recap %s to %s (%d total updates)",
			w.Days[0].Date.Format(domain.DateLayout),
			w.Days[len(w.Days)-1].Date.Format(domain.DateLayout),
			w.Total())
	}
	b.WriteString(f.Bold(title) + "\n")
	if len(w.Totals) == 0 {
		b.WriteString("\n" + f.Escape(noUsers))
		return b.String()
	}

	for _, d := range w.Days {
		b.WriteString("\n" + f.Bold(fmt.Sprintf("%s (%s)", d.Date.Format(domain.DateLayout), d.Weekday)))
		b.WriteString(f.Escape(fmt.Sprintf(" %d/%d responded", d.RespondedCount(), len(d.Rows))) + "\n")
		if d.RespondedCount() == 0 {
			b.WriteString(f.Italic("No standup updates were submitted.") + "\n")
			continue
		}
		for _, row := range d.Rows {
			if row.Responded {
				b.WriteString("• " + f.Bold(row.User.Name()) + ": " + f.Escape(row.Content()) + "\n")
			}
		}
	}

	b.WriteString("\n" + f.Bold("Summary") + "\n")
	for _, t := range w.Totals {
		b.WriteString(f.Escape(fmt.Sprintf("%s: %d/%d days", t.User.Name(), t.Count, len(w.Days))) + "\n")
	}
	return strings.TrimRight(b.String(), "\n")
}
