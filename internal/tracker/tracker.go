// Package tracker derives who posted in the standup channel on a given day.
package tracker

import (
	"context"
	"fmt"
	"time"

	"github.com/ykvlv/standup-bot/internal/domain"
)

// HistoryReader reads channel messages with from <= time < to, oldest first.
type HistoryReader interface {
	History(ctx context.Context, from, to time.Time) ([]domain.Message, error)
}

// Responses maps a responded user id to all of that user's messages for the day.
type Responses map[string][]domain.Message

// Responded reports whether id posted at least once.
func (r Responses) Responded(id string) bool {
	return len(r[id]) > 0
}

// Missing returns the users in registry order that did not respond.
func (r Responses) Missing(users []domain.TrackedUser) []domain.TrackedUser {
	var out []domain.TrackedUser
	for _, u := range users {
		if !r.Responded(u.ID) {
			out = append(out, u)
		}
	}
	return out
}

// Tracker computes responses from channel history.
// Any message counts as a response; there is no prefix or format filter.
type Tracker struct {
	history HistoryReader
}

// New creates a tracker over history.
func New(history HistoryReader) *Tracker {
	return &Tracker{history: history}
}

// Responses returns, for the calendar day containing day in loc, the messages
// of every user in users who posted that day. Authors not in users are ignored.
func (t *Tracker) Responses(ctx context.Context, day time.Time, loc *time.Location, users []domain.TrackedUser) (Responses, error) {
	from, to := domain.DayBounds(day, loc)
	msgs, err := t.history.History(ctx, from, to)
	if err != nil {
		return nil, fmt.Errorf("%w: read history: %w", domain.ErrChannelAccess, err)
	}

	tracked := make(map[string]bool, len(users))
	for _, u := range users {
		tracked[u.ID] = true
	}
	out := Responses{}
	for _, m := range msgs {
		if tracked[m.AuthorID] {
			out[m.AuthorID] = append(out[m.AuthorID], m)
		}
	}
	return out, nil
}
