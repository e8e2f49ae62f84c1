package models

// SettingsChanges holds the settings fields being written by an edit.
type SettingsChanges struct {
	QueueVisible           *bool
	CurrentGuestVisible    *bool
	ActivityLogVisible     *bool
	RequiresJoinPermission *bool
	NotifyGuestsOverride   *bool
}

// RoomChanges is a partial update of the editable room fields. A nil field
// is left untouched. Code, ID and owner are never part of it.
type RoomChanges struct {
	Emoji       *string
	Name        *string
	Host        *string
	Description *string
	Email       *string
	Status      *RoomStatus
	Capacity    *int
	Settings    SettingsChanges
}

// Empty reports whether nothing would be written.
func (c RoomChanges) Empty() bool {
	return len(c.Columns()) == 0
}

// Apply writes the changes into r.
func (c RoomChanges) Apply(r *QueueRoom) {
	setString(&r.Emoji, c.Emoji)
	setString(&r.Name, c.Name)
	setString(&r.Host, c.Host)
	setString(&r.Description, c.Description)
	setString(&r.Email, c.Email)
	if c.Status != nil {
		r.Status = *c.Status
	}
	if c.Capacity != nil {
		r.Capacity = *c.Capacity
	}
	s := c.Settings
	setBool(&r.Settings.QueueVisible, s.QueueVisible)
	setBool(&r.Settings.CurrentGuestVisible, s.CurrentGuestVisible)
	setBool(&r.Settings.ActivityLogVisible, s.ActivityLogVisible)
	setBool(&r.Settings.RequiresJoinPermission, s.RequiresJoinPermission)
	setBool(&r.Settings.NotifyGuestsOverride, s.NotifyGuestsOverride)
}

// Columns returns the column assignments for the changes.
func (c RoomChanges) Columns() map[string]any {
	cols := map[string]any{}
	put := func(name string, ok bool, v func() any) {
		if ok {
			cols[name] = v()
		}
	}
	put("emoji", c.Emoji != nil, func() any { return *c.Emoji })
	put("name", c.Name != nil, func() any { return *c.Name })
	put("host", c.Host != nil, func() any { return *c.Host })
	put("description", c.Description != nil, func() any { return *c.Description })
	put("email", c.Email != nil, func() any { return *c.Email })
	put("status", c.Status != nil, func() any { return int(*c.Status) })
	put("capacity", c.Capacity != nil, func() any { return *c.Capacity })
	s := c.Settings
	put("settings_queue_visible", s.QueueVisible != nil, func() any { return *s.QueueVisible })
	put("settings_current_guest_visible", s.CurrentGuestVisible != nil, func() any { return *s.CurrentGuestVisible })
	put("settings_activity_log_visible", s.ActivityLogVisible != nil, func() any { return *s.ActivityLogVisible })
	put("settings_requires_join_permission", s.RequiresJoinPermission != nil, func() any { return *s.RequiresJoinPermission })
	put("settings_notify_guests_override", s.NotifyGuestsOverride != nil, func() any { return *s.NotifyGuestsOverride })
	return cols
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}

func setBool(dst *bool, v *bool) {
	if v != nil {
		*dst = *v
	}
}
