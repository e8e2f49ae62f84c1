package models

import (
	"strings"
	"time"

	"github.com/lib/pq"
	"gorm.io/gorm"
)

// RoomStatus - состояние комнаты очереди
type RoomStatus int

const (
	RoomClosed RoomStatus = 0
	RoomPaused RoomStatus = 1
	RoomFull   RoomStatus = 2
	RoomOpen   RoomStatus = 3
)

func (s RoomStatus) Valid() bool {
	return s >= RoomClosed && s <= RoomOpen
}

func (s RoomStatus) String() string {
	switch s {
	case RoomClosed:
		return "CLOSED"
	case RoomPaused:
		return "PAUSED"
	case RoomFull:
		return "FULL"
	case RoomOpen:
		return "OPEN"
	}
	return "UNKNOWN"
}

const (
	// UnboundedCapacity отключает ограничение на размер очереди
	UnboundedCapacity = -1
	MaxCapacity       = 500
)

// QueueRoomSettings are the per-room feature toggles.
type QueueRoomSettings struct {
	QueueVisible           bool `gorm:"not null" json:"queue_visible"`
	CurrentGuestVisible    bool `gorm:"not null" json:"current_guest_visible"`
	ActivityLogVisible     bool `gorm:"not null" json:"activity_log_visible"`
	RequiresJoinPermission bool `gorm:"not null" json:"requires_join_permission"`
	NotifyGuestsOverride   bool `gorm:"not null" json:"notify_guests_override"`
}

// DefaultSettings returns the settings a new room starts with.
func DefaultSettings() QueueRoomSettings {
	return QueueRoomSettings{
		QueueVisible:        true,
		CurrentGuestVisible: true,
		ActivityLogVisible:  true,
	}
}

// QueueRoom is a capacity-bounded waiting queue. Entries is the ordered
// membership list, SkippedEntries holds entries moved aside by the host.
//
// Defaults for Status, Capacity and Settings are applied in NewQueueRoom and
// not through column defaults, because their zero values are meaningful.
type QueueRoom struct {
	ID             string            `gorm:"primaryKey;size:36" json:"id"`
	UserID         string            `gorm:"size:36;index;not null;<-:create" json:"user_id" validate:"required"`
	Emoji          string            `gorm:"size:64;not null" json:"emoji,omitempty" validate:"omitempty,qroom_emoji"`
	Name           string            `gorm:"size:64;not null" json:"name" validate:"required,max=64"`
	Host           string            `gorm:"size:64;not null" json:"host" validate:"required,max=64"`
	Email          string            `gorm:"size:254;not null" json:"email,omitempty" validate:"omitempty,email,max=254"`
	Description    string            `gorm:"size:1024;not null" json:"description" validate:"max=1024"`
	Status         RoomStatus        `gorm:"not null" json:"status" validate:"qroom_status"`
	Capacity       int               `gorm:"not null" json:"capacity" validate:"qroom_capacity"`
	Code           string            `gorm:"size:32;uniqueIndex;not null" json:"code"`
	Entries        pq.StringArray    `gorm:"type:text[];not null;default:'{}'" json:"entries"`
	SkippedEntries pq.StringArray    `gorm:"type:text[];not null;default:'{}'" json:"skipped_entries"`
	Settings       QueueRoomSettings `gorm:"embedded;embeddedPrefix:settings_" json:"settings"`
	CreatedAt      time.Time         `json:"created_at"`
	UpdatedAt      time.Time         `json:"updated_at"`
	Version        int64             `gorm:"not null;default:1" json:"version"`

	members       []QueueEntry
	membersLoaded bool
}

// NewQueueRoom returns a room owned by userID with every default applied.
// The code is assigned by the caller.
func NewQueueRoom(userID string) *QueueRoom {
	return &QueueRoom{
		ID:             NewID(),
		UserID:         userID,
		Status:         RoomOpen,
		Capacity:       UnboundedCapacity,
		Entries:        pq.StringArray{},
		SkippedEntries: pq.StringArray{},
		Settings:       DefaultSettings(),
		Version:        1,
	}
}

func (r *QueueRoom) BeforeCreate(tx *gorm.DB) error {
	if r.ID == "" {
		r.ID = NewID()
	}
	if r.Entries == nil {
		r.Entries = pq.StringArray{}
	}
	if r.SkippedEntries == nil {
		r.SkippedEntries = pq.StringArray{}
	}
	return nil
}

// Normalize trims the free-text fields the way they are stored.
func (r *QueueRoom) Normalize() {
	r.Name = strings.TrimSpace(r.Name)
	r.Host = strings.TrimSpace(r.Host)
	r.Email = NormalizeEmail(r.Email)
	r.Emoji = strings.TrimSpace(r.Emoji)
}

// IsOpen reports whether the room accepts joins.
func (r *QueueRoom) IsOpen() bool {
	return r.Status == RoomOpen
}

// HasCapacity reports whether one more entry fits.
func (r *QueueRoom) HasCapacity() bool {
	return r.Capacity == UnboundedCapacity || len(r.Entries) < r.Capacity
}

// Fits reports whether capacity can hold n entries.
func Fits(capacity, n int) bool {
	return capacity == UnboundedCapacity || n <= capacity
}

// SetMembers attaches the loaded entries of the room. Only ID, GuestUserID
// and GuestEmail need to be populated.
func (r *QueueRoom) SetMembers(members []QueueEntry) {
	r.members = members
	r.membersLoaded = true
}

// Members returns the entries attached with SetMembers.
func (r *QueueRoom) Members() []QueueEntry {
	return r.members
}

// HasAlreadyJoined reports whether a loaded member matches the candidate.
// A non-empty userID is matched against GuestUserID, otherwise email is
// matched against GuestEmail. Members must be loaded first.
func (r *QueueRoom) HasAlreadyJoined(email, userID string) bool {
	if !r.membersLoaded {
		panic("models: HasAlreadyJoined called on a room without loaded members")
	}
	for i := range r.members {
		if r.members[i].BelongsTo(userID, email) {
			return true
		}
	}
	return false
}
