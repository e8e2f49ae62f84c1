// Package rooms implements queue room admission, departure and lifecycle on
// top of a storage.Store. No in-process locks are held between store calls;
// concurrent operations on one room are reconciled by the store's
// conditional updates.
package rooms

import (
	"context"

	"queueroom/internal/auth"
	"queueroom/internal/storage"
)

// Events published to room subscribers.
const (
	EventEntryJoined = "entry_joined"
	EventEntryLeft   = "entry_left"
	EventRoomUpdated = "room_updated"
	EventRoomDeleted = "room_deleted"
)

type Event struct {
	Type   string         `json:"event_type"`
	RoomID string         `json:"room_id"`
	Data   map[string]any `json:"data,omitempty"`
}

// Notifier receives room events after the operation committed.
type Notifier interface {
	Publish(event Event)
}

type nopNotifier struct{}

func (nopNotifier) Publish(Event) {}

// Authenticator is the identity resolver contract.
type Authenticator interface {
	Authenticate(ctx context.Context, credential string) (auth.Identity, error)
	ResolveProof(ctx context.Context, credential string) (auth.Proof, error)
}

// GuestTokens mints the leave token of anonymous participants.
type GuestTokens interface {
	IssueGuest(entryID, email string) (string, error)
}

// CodeSource produces candidate join codes and validates their format.
type CodeSource interface {
	Generate() (string, error)
	Valid(code string) bool
}

type Service struct {
	store       storage.Store
	auth        Authenticator
	tokens      GuestTokens
	codes       CodeSource
	notifier    Notifier
	maxAttempts int
}

type Option func(*Service)

// WithNotifier publishes room events to n.
func WithNotifier(n Notifier) Option {
	return func(s *Service) {
		if n != nil {
			s.notifier = n
		}
	}
}

// WithMaxCodeAttempts caps code regeneration during room creation.
func WithMaxCodeAttempts(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.maxAttempts = n
		}
	}
}

const defaultMaxCodeAttempts = 16

func NewService(store storage.Store, authn Authenticator, tokens GuestTokens, codes CodeSource, opts ...Option) *Service {
	s := &Service{
		store:       store,
		auth:        authn,
		tokens:      tokens,
		codes:       codes,
		notifier:    nopNotifier{},
		maxAttempts: defaultMaxCodeAttempts,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}
