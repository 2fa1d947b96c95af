package assets

import (
	_ "embed"
	"strings"
)

//go:embed standup_format.txt
var standupFormat string

// StandupFormat returns the default standup template posted with each reminder.
func StandupFormat() string {
	return strings.TrimRight(standupFormat, "\n")
}
