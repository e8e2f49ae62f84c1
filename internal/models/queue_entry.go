package models

import (
	"strings"
	"time"

	"gorm.io/gorm"
)

type EntryStatus int

const (
	EntryUnresolved EntryStatus = 0
	EntryResolved   EntryStatus = 1
	EntryRevisit    EntryStatus = 2
)

type EntryPriority int

const (
	PriorityLow    EntryPriority = 0
	PriorityMedium EntryPriority = 1
	PriorityHigh   EntryPriority = 2
	PriorityUrgent EntryPriority = 3
)

// QueueEntry is one participant's record in a room. Exactly one of
// GuestUserID and GuestEmail is set.
type QueueEntry struct {
	ID          string        `gorm:"primaryKey;size:36" json:"id"`
	RoomID      string        `gorm:"size:36;index;uniqueIndex:idx_entries_room_user,where:guest_user_id IS NOT NULL;uniqueIndex:idx_entries_room_email,where:guest_email IS NOT NULL;not null;<-:create" json:"room_id" validate:"required"`
	GuestUserID *string       `gorm:"size:36;index;uniqueIndex:idx_entries_room_user" json:"guest_user_id,omitempty"`
	GuestName   string        `gorm:"size:64;not null" json:"guest_name" validate:"required,max=64"`
	GuestEmail  *string       `gorm:"size:254;index;uniqueIndex:idx_entries_room_email" json:"guest_email,omitempty" validate:"omitempty,email,max=254"`
	Topic       string        `gorm:"size:128;not null" json:"topic" validate:"required,max=128"`
	Description string        `gorm:"not null" json:"description"`
	Status      EntryStatus   `gorm:"not null" json:"status" validate:"oneof=0 1 2"`
	Priority    EntryPriority `gorm:"not null" json:"priority" validate:"oneof=0 1 2 3"`
	CreatedAt   time.Time     `json:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at"`
	Version     int64         `gorm:"not null;default:1" json:"-"`
}

// NewQueueEntry returns an unsaved entry without room or identity.
func NewQueueEntry(guestName, topic, description string) *QueueEntry {
	return &QueueEntry{
		ID:          NewID(),
		GuestName:   strings.TrimSpace(guestName),
		Topic:       strings.TrimSpace(topic),
		Description: description,
		Status:      EntryUnresolved,
		Priority:    PriorityMedium,
		Version:     1,
	}
}

func (e *QueueEntry) BeforeCreate(tx *gorm.DB) error {
	if e.ID == "" {
		e.ID = NewID()
	}
	return nil
}

// BindUser marks the entry as joined by a registered user.
func (e *QueueEntry) BindUser(userID string) {
	e.GuestUserID = &userID
	e.GuestEmail = nil
}

// BindEmail marks the entry as joined by a guest.
func (e *QueueEntry) BindEmail(email string) {
	email = NormalizeEmail(email)
	e.GuestEmail = &email
	e.GuestUserID = nil
}

// BelongsTo reports whether the entry was made by the participant. A
// non-empty userID is matched against GuestUserID, otherwise email is.
func (e *QueueEntry) BelongsTo(userID, email string) bool {
	if userID != "" {
		return e.GuestUserID != nil && *e.GuestUserID == userID
	}
	email = NormalizeEmail(email)
	return email != "" && e.GuestEmail != nil && *e.GuestEmail == email
}

// Participant returns the identity pair BelongsTo matches on.
func (e *QueueEntry) Participant() (userID, email string) {
	if e.GuestUserID != nil {
		return *e.GuestUserID, ""
	}
	if e.GuestEmail != nil {
		return "", *e.GuestEmail
	}
	return "", ""
}

// IsGuest reports whether the entry was created without an account.
func (e *QueueEntry) IsGuest() bool {
	return e.GuestUserID == nil
}
