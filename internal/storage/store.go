package storage

import (
	"context"
	"errors"
	"time"

	"queueroom/internal/models"
)

var (
	ErrNotFound     = errors.New("storage: document not found")
	ErrDuplicateKey = errors.New("storage: duplicate key")
)

// LinkCondition is the predicate a room must still satisfy for an entry to
// be appended to it: same id and code, status OPEN, room for one more
// entry counted against the live document, and no linked entry of the same
// participant. The participant is GuestUserID if set, GuestEmail otherwise.
type LinkCondition struct {
	RoomID      string
	Code        string
	GuestUserID string
	GuestEmail  string
}

// EntryMatch selects the entry a departing participant owns. Either
// GuestUserID is set, or ID and GuestEmail are.
type EntryMatch struct {
	RoomID      string
	GuestUserID string
	ID          string
	GuestEmail  string
}

// Tx is the set of document operations. Every operation is atomic on its own;
// inside Store.Transaction they also commit or abort together.
type Tx interface {
	CreateUser(ctx context.Context, user *models.User) error
	FindUserByID(ctx context.Context, id string) (*models.User, error)
	FindUserByEmail(ctx context.Context, email string) (*models.User, error)
	UserExists(ctx context.Context, id, name string) (bool, error)
	AddUserRoom(ctx context.Context, userID, roomID string) error
	RemoveUserRoom(ctx context.Context, userID, roomID string) error
	AddUserQueue(ctx context.Context, userID, entryID string) error
	// RemoveUserQueues pulls entryIDs from the queues of every user.
	RemoveUserQueues(ctx context.Context, entryIDs []string) (int64, error)

	// InsertRoom returns ErrDuplicateKey on a code collision and leaves an
	// enclosing transaction usable.
	InsertRoom(ctx context.Context, room *models.QueueRoom) error
	FindRoomByID(ctx context.Context, id string) (*models.QueueRoom, error)
	FindRoomByCode(ctx context.Context, code string) (*models.QueueRoom, error)
	FindRoomsByIDs(ctx context.Context, ids []string) ([]models.QueueRoom, error)
	// LoadMembers attaches the id/guest projection of room.Entries.
	LoadMembers(ctx context.Context, room *models.QueueRoom) error
	// LinkEntry appends entryID to the room entries if cond still holds and
	// returns the updated room, or nil when the room no longer matched. It
	// returns ErrDuplicateKey when the participant is already linked.
	LinkEntry(ctx context.Context, cond LinkCondition, entryID string) (*models.QueueRoom, error)
	// UnlinkEntry pulls entryID from entries and skipped entries and
	// returns the updated room.
	UnlinkEntry(ctx context.Context, roomID, entryID string) (*models.QueueRoom, error)
	// UpdateRoom writes changes. A capacity change only applies when the
	// room's current entries fit into it. It reports whether the room matched.
	UpdateRoom(ctx context.Context, roomID string, changes models.RoomChanges) (*models.QueueRoom, bool, error)
	DeleteRoom(ctx context.Context, id string) (*models.QueueRoom, error)

	// InsertEntry returns ErrDuplicateKey when the room already holds an
	// entry of the same participant.
	InsertEntry(ctx context.Context, entry *models.QueueEntry) error
	// FindEntriesByIDs returns the entries in the order of ids, skipping
	// missing ones.
	FindEntriesByIDs(ctx context.Context, ids []string) ([]models.QueueEntry, error)
	DeleteEntry(ctx context.Context, id string) error
	DeleteEntryMatching(ctx context.Context, match EntryMatch) (*models.QueueEntry, error)
	DeleteEntriesByRoom(ctx context.Context, roomID string) ([]string, error)
	// SweepOrphanEntries deletes entries created before the given time that
	// no room references, and returns their ids.
	SweepOrphanEntries(ctx context.Context, before time.Time) ([]string, error)
}

// Store runs operations directly or inside a transaction. fn's error aborts
// the transaction.
type Store interface {
	Tx
	Transaction(ctx context.Context, fn func(tx Tx) error) error
}
