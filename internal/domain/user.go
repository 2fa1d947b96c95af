package domain

import (
	"encoding/json"
	"strings"
)

// TrackedUser is a registry entry whose standup channel activity is monitored.
type TrackedUser struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
}

// Name returns the display name, falling back to the id.
func (u TrackedUser) Name() string {
	if strings.TrimSpace(u.DisplayName) == "" {
		return u.ID
	}
	return u.DisplayName
}

// UnmarshalJSON accepts both {"id":..,"display_name":..} objects and bare id
// strings, the format older registry files were written in.
func (u *TrackedUser) UnmarshalJSON(b []byte) error {
	var id string
	if err := json.Unmarshal(b, &id); err == nil {
		*u = TrackedUser{ID: id}
		return nil
	}
	type plain TrackedUser
	var p plain
	if err := json.Unmarshal(b, &p); err != nil {
		return err
	}
	*u = TrackedUser(p)
	return nil
}
