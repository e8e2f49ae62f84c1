package rooms

import (
	"context"
	"testing"

	"queueroom/internal/apperr"
	"queueroom/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGuestLeavesOnce(t *testing.T) {
	f := newFixture(t, nil)
	owner, _ := f.user(t, "Host", "host@example.com")
	room := f.room(t, owner, models.UnboundedCapacity)
	ctx := context.Background()

	res, err := f.guestJoin(room.Code, "Ann", "ann@example.com")
	require.NoError(t, err)

	left, err := f.svc.Leave(ctx, room.ID, res.GuestToken)
	require.NoError(t, err)
	assert.Equal(t, "Office hours", left.RoomName)
	assert.Equal(t, res.Entry.ID, left.EntryID)

	stored, err := f.store.FindRoomByID(ctx, room.ID)
	require.NoError(t, err)
	assert.Empty(t, stored.Entries)

	_, err = f.svc.Leave(ctx, room.ID, res.GuestToken)
	assert.True(t, apperr.Is(err, apperr.NoOperation))
	assert.Equal(t, "You are not in the queue.", apperr.MessageOf(err))
	assert.Contains(t, f.events.types(), EventEntryLeft)
}

func TestUserLeavesOnce(t *testing.T) {
	f := newFixture(t, nil)
	owner, _ := f.user(t, "Host", "host@example.com")
	ann, token := f.user(t, "Ann", "ann@example.com")
	room := f.room(t, owner, models.UnboundedCapacity)
	ctx := context.Background()

	_, err := f.svc.Join(ctx, JoinRequest{Code: room.Code, Name: "Ann", Topic: "Lab", Credential: token})
	require.NoError(t, err)

	_, err = f.svc.Leave(ctx, room.ID, token)
	require.NoError(t, err)

	user, err := f.store.FindUserByID(ctx, ann.UserID)
	require.NoError(t, err)
	assert.Empty(t, user.Queues)

	_, err = f.svc.Leave(ctx, room.ID, token)
	assert.True(t, apperr.Is(err, apperr.NoOperation))
}

func TestLeaveRejections(t *testing.T) {
	f := newFixture(t, nil)
	owner, ownerToken := f.user(t, "Host", "host@example.com")
	room := f.room(t, owner, models.UnboundedCapacity)
	other := f.room(t, owner, models.UnboundedCapacity)
	ctx := context.Background()

	res, err := f.guestJoin(room.Code, "Ann", "ann@example.com")
	require.NoError(t, err)

	_, err = f.svc.Leave(ctx, room.ID, "garbage")
	assert.True(t, apperr.Is(err, apperr.Unauthorized))

	_, err = f.svc.Leave(ctx, "", res.GuestToken)
	assert.True(t, apperr.Is(err, apperr.InvalidInput))

	// the token is bound to its room
	_, err = f.svc.Leave(ctx, other.ID, res.GuestToken)
	assert.True(t, apperr.Is(err, apperr.NoOperation))

	// a token for the same entry id but another email does not match
	forged, err := f.tokens.IssueGuest(res.Entry.ID, "mallory@example.com")
	require.NoError(t, err)
	_, err = f.svc.Leave(ctx, room.ID, forged)
	assert.True(t, apperr.Is(err, apperr.NoOperation))

	// the owner is not a member
	_, err = f.svc.Leave(ctx, room.ID, ownerToken)
	assert.True(t, apperr.Is(err, apperr.NoOperation))

	_, err = f.svc.Leave(ctx, models.NewID(), ownerToken)
	assert.True(t, apperr.Is(err, apperr.NotFound))

	stored, err := f.store.FindRoomByID(ctx, room.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{res.Entry.ID}, []string(stored.Entries))
}
