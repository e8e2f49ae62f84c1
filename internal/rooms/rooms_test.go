package rooms

import (
	"context"
	"sync"
	"testing"
	"time"

	"queueroom/internal/auth"
	"queueroom/internal/config"
	"queueroom/internal/models"
	"queueroom/internal/storage"

	"github.com/stretchr/testify/require"
)

type recorder struct {
	mu     sync.Mutex
	events []Event
}

func (r *recorder) Publish(e Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}

func (r *recorder) types() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.events))
	for _, e := range r.events {
		out = append(out, e.Type)
	}
	return out
}

// scriptedCodes hands out predefined codes, repeating the last one.
type scriptedCodes struct {
	*Codes
	mu    sync.Mutex
	codes []string
	calls int
}

func (s *scriptedCodes) Generate() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.calls
	if i >= len(s.codes) {
		i = len(s.codes) - 1
	}
	s.calls++
	return s.codes[i], nil
}

var codeConfig = config.RoomCodeConfig{CodeLength: 5, CodeAlphabet: "0123456789", CodeMaxAttempts: 16}

type fixture struct {
	store  *storage.MemoryStore
	tokens *auth.Tokens
	svc    *Service
	events *recorder
}

func newFixture(t *testing.T, codes CodeSource, opts ...Option) *fixture {
	t.Helper()
	store := storage.NewMemoryStore()
	tokens := auth.NewTokens(config.JWTConfig{
		AccessSecret:  "access",
		RefreshSecret: "refresh",
		AccessTTL:     time.Hour,
		RefreshTTL:    time.Hour,
	})
	if codes == nil {
		codes = NewCodes(codeConfig)
	}
	events := &recorder{}
	opts = append([]Option{WithNotifier(events)}, opts...)
	svc := NewService(store, auth.NewResolver(tokens, store), tokens, codes, opts...)
	return &fixture{store: store, tokens: tokens, svc: svc, events: events}
}

// user registers an account and returns its identity and access token.
func (f *fixture) user(t *testing.T, name, email string) (auth.Identity, string) {
	t.Helper()
	u := models.NewUser(name, email, "hash")
	require.NoError(t, f.store.CreateUser(context.Background(), u))
	token, err := f.tokens.IssueAccess(u.ID, u.Name)
	require.NoError(t, err)
	return auth.Identity{UserID: u.ID, Name: u.Name}, token
}

func (f *fixture) room(t *testing.T, owner auth.Identity, capacity int) *models.QueueRoom {
	t.Helper()
	room, err := f.svc.Create(context.Background(), owner, CreateRequest{
		UserID:   owner.UserID,
		Name:     "Office hours",
		Host:     owner.Name,
		Capacity: &capacity,
	})
	require.NoError(t, err)
	return room
}

func (f *fixture) guestJoin(code, name, email string) (*JoinResult, error) {
	return f.svc.Join(context.Background(), JoinRequest{
		Code:  code,
		Name:  name,
		Email: email,
		Topic: "Homework 3",
	})
}

// orphans removes and returns entries no room references.
func (f *fixture) orphans(t *testing.T) []string {
	t.Helper()
	ids, err := f.store.SweepOrphanEntries(context.Background(), time.Now().Add(time.Hour))
	require.NoError(t, err)
	return ids
}
