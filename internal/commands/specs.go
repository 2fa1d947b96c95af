package commands

// Spec describes one command for help output and platform registration.
type Spec struct {
	Name        string
	Args        string
	Description string
	Admin       bool
}

// Specs lists every command in help order.
var Specs = []Spec{
	{Name: "add-user", Args: "<user id>", Description: "Add a user to the standup list (or reply to their message)", Admin: true},
	{Name: "remove-user", Args: "<user id>", Description: "Remove a user from the standup list (or reply to their message)", Admin: true},
	{Name: "list-users", Description: "List users on the standup list"},
	{Name: "daily-recap", Args: "[YYYY-MM-DD]", Description: "Recap of a day's standups"},
	{Name: "weekly-recap", Args: "[YYYY-MM-DD]", Description: "Recap of the 7 days ending on a date"},
	{Name: "set-reminder-time", Args: "<HH:MM>", Description: "Set the daily reminder time", Admin: true},
	{Name: "set-second-reminder-time", Args: "<HH:MM>", Description: "Set the second reminder time", Admin: true},
	{Name: "set-deadline", Args: "<HH:MM>", Description: "Set the deadline and follow-up time", Admin: true},
	{Name: "set-timezone", Args: "<IANA zone>", Description: "Set the timezone, e.g. America/Los_Angeles", Admin: true},
	{Name: "set-standup-format", Args: "<text>", Description: "Set the standup template", Admin: true},
	{Name: "set-weekdays-only", Args: "<on|off>", Description: "Skip Saturdays and Sundays", Admin: true},
	{Name: "show-config", Description: "Show the current configuration"},
	{Name: "status", Description: "Show the local time, next reminders and today's responses"},
	{Name: "test-reminder", Description: "Send the reminder now", Admin: true},
	{Name: "test-second-reminder", Description: "Send the second reminder now", Admin: true},
	{Name: "test-followup", Description: "Send the follow-up now", Admin: true},
	{Name: "sync-commands", Description: "Register the command list with the chat", Admin: true},
	{Name: "help", Description: "Show available commands"},
}

// Lookup returns the Spec registered under a canonical command name.
func Lookup(name string) (Spec, bool) {
	for _, s := range Specs {
		if s.Name == name {
			return s, true
		}
	}
	return Spec{}, false
}
