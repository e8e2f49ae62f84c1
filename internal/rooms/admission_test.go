package rooms

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"queueroom/internal/apperr"
	"queueroom/internal/auth"
	"queueroom/internal/models"
	"queueroom/internal/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCodes(t *testing.T) {
	codes := NewCodes(codeConfig)
	for i := 0; i < 50; i++ {
		code, err := codes.Generate()
		require.NoError(t, err)
		assert.True(t, codes.Valid(code), code)
	}
	assert.False(t, codes.Valid("1234"))
	assert.False(t, codes.Valid("123456"))
	assert.False(t, codes.Valid("12a45"))
	assert.False(t, codes.Valid(""))
}

func TestJoinAsGuest(t *testing.T) {
	f := newFixture(t, nil)
	owner, _ := f.user(t, "Host", "host@example.com")
	room := f.room(t, owner, models.UnboundedCapacity)

	res, err := f.guestJoin(room.Code, "Ann", "Ann@Example.com")
	require.NoError(t, err)
	assert.Equal(t, room.ID, res.RoomID)
	assert.Equal(t, 1, res.Position)
	assert.True(t, res.Entry.IsGuest())
	assert.Equal(t, "ann@example.com", *res.Entry.GuestEmail)
	require.NotEmpty(t, res.GuestToken)

	claims, err := f.tokens.ParseAccess(res.GuestToken)
	require.NoError(t, err)
	assert.Equal(t, auth.KindGuest, claims.Kind)
	assert.Equal(t, res.Entry.ID, claims.Subject)
	assert.Equal(t, "ann@example.com", claims.Username)

	stored, err := f.store.FindRoomByID(context.Background(), room.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{res.Entry.ID}, []string(stored.Entries))
	assert.Contains(t, f.events.types(), EventEntryJoined)
}

func TestJoinedEventFollowsQueueVisibility(t *testing.T) {
	f := newFixture(t, nil)
	owner, _ := f.user(t, "Host", "host@example.com")
	room := f.room(t, owner, models.UnboundedCapacity)

	_, err := f.guestJoin(room.Code, "Ann", "ann@example.com")
	require.NoError(t, err)

	_, err = f.svc.Edit(context.Background(), owner, room.ID, map[string]any{
		"settings": map[string]any{"queue_visible": false},
	})
	require.NoError(t, err)
	_, err = f.guestJoin(room.Code, "Bob", "bob@example.com")
	require.NoError(t, err)

	var joined []Event
	f.events.mu.Lock()
	for _, e := range f.events.events {
		if e.Type == EventEntryJoined {
			joined = append(joined, e)
		}
	}
	f.events.mu.Unlock()
	require.Len(t, joined, 2)

	assert.Equal(t, "Ann", joined[0].Data["guest_name"])
	assert.Equal(t, "Homework 3", joined[0].Data["topic"])

	assert.NotContains(t, joined[1].Data, "guest_name")
	assert.NotContains(t, joined[1].Data, "topic")
	assert.Equal(t, 2, joined[1].Data["position"])
}

func TestJoinAsUser(t *testing.T) {
	f := newFixture(t, nil)
	owner, _ := f.user(t, "Host", "host@example.com")
	guest, token := f.user(t, "Ann", "ann@example.com")
	room := f.room(t, owner, 5)

	res, err := f.svc.Join(context.Background(), JoinRequest{
		Code: room.Code, Name: "Ann", Topic: "Lab 1", Credential: token,
	})
	require.NoError(t, err)
	assert.False(t, res.Entry.IsGuest())
	assert.Equal(t, guest.UserID, *res.Entry.GuestUserID)
	assert.Nil(t, res.Entry.GuestEmail)
	assert.Empty(t, res.GuestToken)

	user, err := f.store.FindUserByID(context.Background(), guest.UserID)
	require.NoError(t, err)
	assert.Equal(t, []string{res.Entry.ID}, []string(user.Queues))

	_, err = f.svc.Join(context.Background(), JoinRequest{
		Code: room.Code, Name: "Ann", Topic: "Lab 2", Credential: token,
	})
	assert.True(t, apperr.Is(err, apperr.ResourceUnavailable))
	assert.Equal(t, "You have already joined this queue.", apperr.MessageOf(err))
}

func TestJoinRejections(t *testing.T) {
	f := newFixture(t, nil)
	owner, _ := f.user(t, "Host", "host@example.com")
	room := f.room(t, owner, 1)
	ctx := context.Background()

	_, err := f.guestJoin("12ab", "Ann", "ann@example.com")
	assert.True(t, apperr.Is(err, apperr.InvalidInput))

	other := "00000"
	if room.Code == other {
		other = "00001"
	}
	_, err = f.guestJoin(other, "Ann", "ann@example.com")
	assert.True(t, apperr.Is(err, apperr.NotFound))

	_, err = f.guestJoin(room.Code, "Ann", "")
	assert.True(t, apperr.Is(err, apperr.InvalidInput))

	_, err = f.guestJoin(room.Code, "Ann", "not-an-email")
	assert.True(t, apperr.Is(err, apperr.InvalidInput))

	_, err = f.svc.Join(ctx, JoinRequest{Code: room.Code, Name: "Ann", Topic: "x", Credential: "garbage"})
	assert.True(t, apperr.Is(err, apperr.Unauthorized))

	_, err = f.guestJoin(room.Code, "Ann", "ann@example.com")
	require.NoError(t, err)
	_, err = f.guestJoin(room.Code, "Bob", "bob@example.com")
	assert.True(t, apperr.Is(err, apperr.ResourceUnavailable))
	assert.Equal(t, "The requested queue is out of capacity.", apperr.MessageOf(err))

	_, err = f.svc.Edit(ctx, owner, room.ID, map[string]any{"status": float64(models.RoomPaused), "capacity": float64(5)})
	require.NoError(t, err)
	_, err = f.guestJoin(room.Code, "Bob", "bob@example.com")
	assert.True(t, apperr.Is(err, apperr.ResourceUnavailable))
	assert.Equal(t, "The requested queue is not open and cannot be joined.", apperr.MessageOf(err))

	assert.Empty(t, f.orphans(t))
}

func TestJoinDuplicateGuestEmail(t *testing.T) {
	f := newFixture(t, nil)
	owner, _ := f.user(t, "Host", "host@example.com")
	room := f.room(t, owner, models.UnboundedCapacity)

	_, err := f.guestJoin(room.Code, "Ann", "ann@example.com")
	require.NoError(t, err)
	_, err = f.guestJoin(room.Code, "Ann again", " ANN@example.com")
	assert.True(t, apperr.Is(err, apperr.ResourceUnavailable))
}

func TestConcurrentJoinsRespectCapacity(t *testing.T) {
	const capacity, attempts = 3, 24
	f := newFixture(t, nil)
	owner, _ := f.user(t, "Host", "host@example.com")
	room := f.room(t, owner, capacity)

	var (
		wg          sync.WaitGroup
		mu          sync.Mutex
		admitted    []string
		unavailable int
		other       []error
	)
	start := make(chan struct{})
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			<-start
			res, err := f.guestJoin(room.Code, fmt.Sprintf("Guest %d", i), fmt.Sprintf("guest%d@example.com", i))
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				admitted = append(admitted, res.Entry.ID)
			case apperr.Is(err, apperr.ResourceUnavailable):
				unavailable++
			default:
				other = append(other, err)
			}
		}(i)
	}
	close(start)
	wg.Wait()

	require.Empty(t, other)
	assert.Len(t, admitted, capacity)
	assert.Equal(t, attempts-capacity, unavailable)

	stored, err := f.store.FindRoomByID(context.Background(), room.ID)
	require.NoError(t, err)
	assert.ElementsMatch(t, admitted, []string(stored.Entries))
	assert.Empty(t, f.orphans(t))
}

func TestConcurrentJoinsSingleSeat(t *testing.T) {
	f := newFixture(t, nil)
	owner, _ := f.user(t, "Host", "host@example.com")
	room := f.room(t, owner, 1)

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i, email := range []string{"a@x.com", "b@x.com"} {
		wg.Add(1)
		go func(i int, email string) {
			defer wg.Done()
			_, errs[i] = f.guestJoin(room.Code, "Guest", email)
		}(i, email)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
		} else {
			assert.True(t, apperr.Is(err, apperr.ResourceUnavailable), err)
		}
	}
	assert.Equal(t, 1, succeeded)

	stored, err := f.store.FindRoomByID(context.Background(), room.ID)
	require.NoError(t, err)
	assert.Len(t, stored.Entries, 1)
	assert.Empty(t, f.orphans(t))
}

// slowStore stretches the gap between reading a room's members and
// linking the new entry, the way a network round-trip would.
type slowStore struct {
	*storage.MemoryStore
	delay time.Duration
}

func (s slowStore) Transaction(ctx context.Context, fn func(tx storage.Tx) error) error {
	return s.MemoryStore.Transaction(ctx, func(tx storage.Tx) error {
		return fn(slowTx{Tx: tx, delay: s.delay})
	})
}

type slowTx struct {
	storage.Tx
	delay time.Duration
}

func (t slowTx) LoadMembers(ctx context.Context, room *models.QueueRoom) error {
	if err := t.Tx.LoadMembers(ctx, room); err != nil {
		return err
	}
	time.Sleep(t.delay)
	return nil
}

func TestConcurrentJoinsAdmitParticipantOnce(t *testing.T) {
	const attempts = 4
	f := newFixture(t, nil)
	owner, _ := f.user(t, "Host", "host@example.com")
	room := f.room(t, owner, models.UnboundedCapacity)
	_, token := f.user(t, "Ivan", "ivan@example.com")

	svc := NewService(slowStore{MemoryStore: f.store, delay: 20 * time.Millisecond},
		auth.NewResolver(f.tokens, f.store), f.tokens, NewCodes(codeConfig))

	requests := []JoinRequest{}
	for i := 0; i < attempts; i++ {
		requests = append(requests,
			JoinRequest{Code: room.Code, Name: "Dup", Email: "Dup@Example.com", Topic: "Lab"},
			JoinRequest{Code: room.Code, Name: "Ivan", Topic: "Lab", Credential: token},
		)
	}

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		guests   int
		users    int
		rejected []error
	)
	start := make(chan struct{})
	for _, req := range requests {
		wg.Add(1)
		go func(req JoinRequest) {
			defer wg.Done()
			<-start
			_, err := svc.Join(context.Background(), req)
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err != nil:
				rejected = append(rejected, err)
			case req.Credential == "":
				guests++
			default:
				users++
			}
		}(req)
	}
	close(start)
	wg.Wait()

	assert.Equal(t, 1, guests)
	assert.Equal(t, 1, users)
	require.Len(t, rejected, 2*attempts-2)
	for _, err := range rejected {
		assert.True(t, apperr.Is(err, apperr.ResourceUnavailable), err)
	}

	stored, err := f.store.FindRoomByID(context.Background(), room.ID)
	require.NoError(t, err)
	assert.Len(t, stored.Entries, 2)
	assert.Empty(t, f.orphans(t))
}

func TestJoinPlanUndoToleratesSweptEntry(t *testing.T) {
	f := newFixture(t, nil)
	entry := models.NewQueueEntry("Ann", "Lab", "")
	plan := &joinPlan{tx: f.store, entry: entry}

	require.NoError(t, plan.insert(context.Background()))
	require.NoError(t, plan.undo(context.Background()))
	require.NoError(t, plan.undo(context.Background()))
}
