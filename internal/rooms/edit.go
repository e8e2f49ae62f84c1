package rooms

import (
	"fmt"
	"math"

	"queueroom/internal/apperr"
	"queueroom/internal/models"
)

// Editable room fields. code, id and user_id are never editable.
var (
	editableFields         = []string{"emoji", "name", "host", "description", "email", "status", "capacity"}
	editableSettingsFields = []string{
		"queue_visible", "current_guest_visible", "activity_log_visible",
		"requires_join_permission", "notify_guests_override",
	}
)

// Edit is a parsed edit payload.
type Edit struct {
	Changes models.RoomChanges
	// Updated maps set field names to their new values; settings fields
	// are reported as "settings.<name>".
	Updated map[string]any
	// Removed lists fields reset to their defaults.
	Removed []string
}

// ParseEdit turns a decoded JSON object into room changes. Unknown fields
// are ignored. A null value resets the field to its default; name and host
// cannot be reset.
func ParseEdit(patch map[string]any) (*Edit, error) {
	edit := &Edit{Updated: map[string]any{}, Removed: []string{}}
	defaults := models.NewQueueRoom("")

	for _, field := range editableFields {
		value, present := patch[field]
		if !present {
			continue
		}
		if value == nil {
			if field == "name" || field == "host" {
				return nil, apperr.New(apperr.InvalidInput, fmt.Sprintf("Field %q cannot be removed.", field))
			}
			edit.Removed = append(edit.Removed, field)
		} else {
			edit.Updated[field] = value
		}
		if err := setField(&edit.Changes, defaults, field, value); err != nil {
			return nil, err
		}
	}

	raw, present := patch["settings"]
	if !present || raw == nil {
		return edit, nil
	}
	settings, ok := raw.(map[string]any)
	if !ok {
		return nil, apperr.New(apperr.InvalidInput, "Invalid settings type.")
	}
	for _, field := range editableSettingsFields {
		value, present := settings[field]
		if !present {
			continue
		}
		path := "settings." + field
		if value == nil {
			edit.Removed = append(edit.Removed, path)
		} else {
			edit.Updated[path] = value
		}
		if err := setSetting(&edit.Changes.Settings, defaults.Settings, field, value); err != nil {
			return nil, err
		}
	}
	return edit, nil
}

func invalidType(field string) error {
	return apperr.New(apperr.InvalidInput, fmt.Sprintf("Field %q has an invalid type.", field))
}

func stringValue(field string, value any, fallback string) (*string, error) {
	if value == nil {
		return &fallback, nil
	}
	s, ok := value.(string)
	if !ok {
		return nil, invalidType(field)
	}
	return &s, nil
}

func intValue(field string, value any, fallback int) (*int, error) {
	if value == nil {
		return &fallback, nil
	}
	var n int
	switch v := value.(type) {
	case float64:
		if v != math.Trunc(v) {
			return nil, invalidType(field)
		}
		n = int(v)
	case int:
		n = v
	default:
		return nil, invalidType(field)
	}
	return &n, nil
}

func boolValue(field string, value any, fallback bool) (*bool, error) {
	if value == nil {
		return &fallback, nil
	}
	b, ok := value.(bool)
	if !ok {
		return nil, invalidType(field)
	}
	return &b, nil
}

func setField(c *models.RoomChanges, defaults *models.QueueRoom, field string, value any) error {
	var err error
	switch field {
	case "emoji":
		c.Emoji, err = stringValue(field, value, defaults.Emoji)
	case "name":
		c.Name, err = stringValue(field, value, defaults.Name)
	case "host":
		c.Host, err = stringValue(field, value, defaults.Host)
	case "description":
		c.Description, err = stringValue(field, value, defaults.Description)
	case "email":
		c.Email, err = stringValue(field, value, defaults.Email)
	case "status":
		var n *int
		n, err = intValue(field, value, int(defaults.Status))
		if err == nil {
			status := models.RoomStatus(*n)
			c.Status = &status
		}
	case "capacity":
		c.Capacity, err = intValue(field, value, defaults.Capacity)
	}
	return err
}

func setSetting(c *models.SettingsChanges, defaults models.QueueRoomSettings, field string, value any) error {
	var err error
	switch field {
	case "queue_visible":
		c.QueueVisible, err = boolValue(field, value, defaults.QueueVisible)
	case "current_guest_visible":
		c.CurrentGuestVisible, err = boolValue(field, value, defaults.CurrentGuestVisible)
	case "activity_log_visible":
		c.ActivityLogVisible, err = boolValue(field, value, defaults.ActivityLogVisible)
	case "requires_join_permission":
		c.RequiresJoinPermission, err = boolValue(field, value, defaults.RequiresJoinPermission)
	case "notify_guests_override":
		c.NotifyGuestsOverride, err = boolValue(field, value, defaults.NotifyGuestsOverride)
	}
	return err
}
