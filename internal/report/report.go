// Package report builds daily and weekly standup digests.
// The generator returns values; rendering and sending are left to callers.
package report

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/ykvlv/standup-bot/internal/domain"
	"github.com/ykvlv/standup-bot/internal/tracker"
)

// WeekDays is the length of the weekly window.
const WeekDays = 7

// Roster lists the tracked users in registry order.
type Roster interface {
	Users() []domain.TrackedUser
}

// ResponseSource computes who posted on a given day.
type ResponseSource interface {
	Responses(ctx context.Context, day time.Time, loc *time.Location, users []domain.TrackedUser) (tracker.Responses, error)
}

// UserDay is one tracked user's activity on one day.
type UserDay struct {
	User      domain.TrackedUser
	Responded bool
	Messages  []domain.Message
}

// Content joins the user's messages in posting order.
func (u UserDay) Content() string {
	parts := make([]string, 0, len(u.Messages))
	for _, m := range u.Messages {
		parts = append(parts, m.Content)
	}
	return strings.Join(parts, "\n")
}

// DailyReport lists every tracked user for one date.
type DailyReport struct {
	Date    time.Time
	Weekday time.Weekday
	Rows    []UserDay
}

// RespondedCount returns how many rows responded.
func (d DailyReport) RespondedCount() int {
	n := 0
	for _, r := range d.Rows {
		if r.Responded {
			n++
		}
	}
	return n
}

// UserTotal is the number of days a user responded within the window.
type UserTotal struct {
	User  domain.TrackedUser
	Count int
}

// WeeklyReport covers the seven days ending on the target date, oldest first.
type WeeklyReport struct {
	Days   []DailyReport
	Totals []UserTotal
}

// Total is the number of (user, day) responses in the window.
func (w WeeklyReport) Total() int {
	n := 0
	for _, t := range w.Totals {
		n += t.Count
	}
	return n
}

// Generator builds reports from the registry and the response tracker.
type Generator struct {
	roster  Roster
	tracker ResponseSource
}

// New creates a report generator.
func New(roster Roster, tr ResponseSource) *Generator {
	return &Generator{roster: roster, tracker: tr}
}

// Daily reports the calendar day containing day in loc.
func (g *Generator) Daily(ctx context.Context, day time.Time, loc *time.Location) (DailyReport, error) {
	return g.daily(ctx, domain.StartOfDay(day, loc), loc, g.roster.Users())
}

func (g *Generator) daily(ctx context.Context, start time.Time, loc *time.Location, users []domain.TrackedUser) (DailyReport, error) {
	resp, err := g.tracker.Responses(ctx, start, loc, users)
	if err != nil {
		return DailyReport{}, fmt.Errorf("report %s: %w", start.Format(domain.DateLayout), err)
	}
	rep := DailyReport{Date: start, Weekday: start.Weekday(), Rows: make([]UserDay, 0, len(users))}
	for _, u := range users {
		rep.Rows = append(rep.Rows, UserDay{User: u, Responded: resp.Responded(u.ID), Messages: resp[u.ID]})
	}
	return rep, nil
}

// Weekly reports the seven calendar days ending on end (inclusive) in loc.
// The registry is read once so every day lists the same users.
func (g *Generator) Weekly(ctx context.Context, end time.Time, loc *time.Location) (WeeklyReport, error) {
	users := g.roster.Users()
	first := domain.StartOfDay(end, loc).AddDate(0, 0, -(WeekDays - 1))

	rep := WeeklyReport{Days: make([]DailyReport, 0, WeekDays)}
	counts := make(map[string]int, len(users))
	for i := 0; i < WeekDays; i++ {
		d, err := g.daily(ctx, first.AddDate(0, 0, i), loc, users)
		if err != nil {
			return WeeklyReport{}, err
		}
		for _, r := range d.Rows {
			if r.Responded {
				counts[r.User.ID]++
			}
		}
		rep.Days = append(rep.Days, d)
	}
	for _, u := range users {
		rep.Totals = append(rep.Totals, UserTotal{User: u, Count: counts[u.ID]})
	}
	return rep, nil
}
