package domain

import "errors"

var (
	ErrInvalidClock    = errors.New("invalid time, expected HH:MM (24-hour)")
	ErrInvalidTimezone = errors.New("invalid timezone")
	ErrInvalidTemplate = errors.New("invalid standup format")
	ErrInvalidDate     = errors.New("invalid date, expected YYYY-MM-DD")

	ErrUnknownUser   = errors.New("user is not on the standup list")
	ErrDuplicateUser = errors.New("user is already on the standup list")

	// ErrPersist marks a change that was applied in memory but could not be written.
	ErrPersist = errors.New("could not persist change")
	// ErrChannelAccess marks a failed read from or write to the chat platform.
	ErrChannelAccess = errors.New("channel access failed")
)

// ErrInvalidUserID marks a user id that is not a chat platform user id.
var ErrInvalidUserID = errors.New("invalid user id, expected a numeric Telegram user id")
