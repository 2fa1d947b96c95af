// Package format renders chat markup independently of the platform.
package format

import (
	"html"

	"github.com/ykvlv/standup-bot/internal/domain"
)

// Formatter turns plain pieces of text into platform markup.
// Every method escapes its argument.
type Formatter interface {
	Escape(s string) string
	Bold(s string) string
	Italic(s string) string
	Mention(u domain.TrackedUser) string
}

// Plain renders without markup, for terminals and logs.
type Plain struct{}

func (Plain) Escape(s string) string { return s }
func (Plain) Bold(s string) string { return s }
func (Plain) Italic(s string) string { return s }
func (Plain) Mention(u domain.TrackedUser) string {
	return "@" + u.Name()
}

// HTML renders the subset of HTML accepted by Telegram's HTML parse mode.
type HTML struct {
	// MentionURL builds the link target for a user id. When nil, mentions
	// are rendered as bold names.
	MentionURL func(id string) string
}

// TelegramHTML links mentions with tg://user so the user gets notified.
func TelegramHTML() HTML {
	return HTML{MentionURL: func(id string) string { return "tg://user?id=" + id }}
}

func (HTML) Escape(s string) string { return html.EscapeString(s) }
func (HTML) Bold(s string) string { return "<b>" + html.EscapeString(s) + "</b>" }
func (HTML) Italic(s string) string { return "<i>" + html.EscapeString(s) + "</i>" }

func (h HTML) Mention(u domain.TrackedUser) string {
	if h.MentionURL == nil {
		return "<b>" + html.EscapeString(u.Name()) + "</b>"
	}
	return `<a href="` + html.EscapeString(h.MentionURL(u.ID)) + `">` + html.EscapeString(u.Name()) + "</a>"
}
