package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"
)

// Ограничения полей, общие для всех документов
const (
	UserNameMaxLength        = 64
	UserEmailMaxLength       = 254
	UserPasswordMinLength    = 8
	RoomNameMaxLength        = 64
	RoomDescriptionMaxLength = 1024
	EntryTopicMaxLength      = 128
)

// User is a registered account. Rooms holds the ids of owned rooms, Queues
// the ids of entries the user is party to.
type User struct {
	ID           string         `gorm:"primaryKey;size:36" json:"id"`
	Name         string         `gorm:"size:64;not null" json:"name" validate:"required,max=64"`
	Email        string         `gorm:"size:254;uniqueIndex;not null" json:"email" validate:"required,email,max=254"`
	PasswordHash string         `gorm:"not null" json:"-"`
	Rooms        pq.StringArray `gorm:"type:text[];not null;default:'{}'" json:"rooms"`
	Queues       pq.StringArray `gorm:"type:text[];not null;default:'{}'" json:"queues"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	Version      int64          `gorm:"not null;default:1" json:"-"`
}

// NewUser returns a user with normalized name and email.
func NewUser(name, email, passwordHash string) *User {
	return &User{
		ID:           NewID(),
		Name:         strings.TrimSpace(name),
		Email:        NormalizeEmail(email),
		PasswordHash: passwordHash,
		Rooms:        pq.StringArray{},
		Queues:       pq.StringArray{},
		Version:      1,
	}
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == "" {
		u.ID = NewID()
	}
	if u.Rooms == nil {
		u.Rooms = pq.StringArray{}
	}
	if u.Queues == nil {
		u.Queues = pq.StringArray{}
	}
	return nil
}

// NewID generates a document id.
func NewID() string {
	return uuid.NewString()
}

// IsID reports whether s looks like a document id.
func IsID(s string) bool {
	return uuid.Validate(s) == nil
}

// NormalizeEmail trims and lowercases an address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Contains reports whether ids holds id.
func Contains(ids []string, id string) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}

// Without returns ids with every element of drop removed. The result is a
// new slice.
func Without(ids []string, drop ...string) pq.StringArray {
	out := make(pq.StringArray, 0, len(ids))
	for _, v := range ids {
		if !Contains(drop, v) {
			out = append(out, v)
		}
	}
	return out
}
