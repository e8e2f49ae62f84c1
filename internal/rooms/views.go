package rooms

import (
	"context"
	"errors"
	"fmt"
	"time"

	"queueroom/internal/apperr"
	"queueroom/internal/auth"
	"queueroom/internal/models"
	"queueroom/internal/storage"
)

// WaitingEntry is the public view of an entry in a room snapshot.
type WaitingEntry struct {
	Position  int                `json:"position"`
	GuestName string             `json:"guest_name"`
	Topic     string             `json:"topic"`
	Status    models.EntryStatus `json:"status"`
}

// RoomView is what anyone holding the join code may see.
type RoomView struct {
	ID          string                   `json:"id"`
	Code        string                   `json:"code"`
	Emoji       string                   `json:"emoji,omitempty"`
	Name        string                   `json:"name"`
	Host        string                   `json:"host"`
	Description string                   `json:"description"`
	Status      string                   `json:"status"`
	Capacity    int                      `json:"capacity"`
	Size        int                      `json:"size"`
	Settings    models.QueueRoomSettings `json:"settings"`
	// Queue is only filled when the room's queue is visible.
	Queue []WaitingEntry `json:"queue,omitempty"`
}

// Snapshot returns the public view of the room with the given code.
func (s *Service) Snapshot(ctx context.Context, code string) (*RoomView, error) {
	if !s.codes.Valid(code) {
		return nil, apperr.New(apperr.InvalidInput, "Invalid join code.")
	}
	room, err := s.store.FindRoomByCode(ctx, code)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, apperr.New(apperr.NotFound, fmt.Sprintf("No queue exists with code %q.", code))
	}
	if err != nil {
		return nil, classify(err, "An unexpected error occurred while loading the queue.")
	}
	view := &RoomView{
		ID:          room.ID,
		Code:        room.Code,
		Emoji:       room.Emoji,
		Name:        room.Name,
		Host:        room.Host,
		Description: room.Description,
		Status:      room.Status.String(),
		Capacity:    room.Capacity,
		Size:        len(room.Entries),
		Settings:    room.Settings,
	}
	if !room.Settings.QueueVisible {
		return view, nil
	}
	entries, err := s.store.FindEntriesByIDs(ctx, room.Entries)
	if err != nil {
		return nil, classify(err, "An unexpected error occurred while loading the queue.")
	}
	view.Queue = make([]WaitingEntry, 0, len(entries))
	for i, e := range entries {
		view.Queue = append(view.Queue, WaitingEntry{
			Position:  i + 1,
			GuestName: e.GuestName,
			Topic:     e.Topic,
			Status:    e.Status,
		})
	}
	return view, nil
}

// HostQueue is the owner's view of a room's entries.
type HostQueue struct {
	Room    *models.QueueRoom   `json:"room"`
	Entries []models.QueueEntry `json:"entries"`
	Skipped []models.QueueEntry `json:"skipped_entries"`
}

// HostEntries returns the full entries of a room to its owner.
func (s *Service) HostEntries(ctx context.Context, caller auth.Identity, roomID string) (*HostQueue, error) {
	room, err := s.ownedRoom(ctx, caller, roomID)
	if err != nil {
		return nil, err
	}
	entries, err := s.store.FindEntriesByIDs(ctx, room.Entries)
	if err != nil {
		return nil, classify(err, "An unexpected error occurred while loading the queue.")
	}
	skipped, err := s.store.FindEntriesByIDs(ctx, room.SkippedEntries)
	if err != nil {
		return nil, classify(err, "An unexpected error occurred while loading the queue.")
	}
	return &HostQueue{Room: room, Entries: entries, Skipped: skipped}, nil
}

// UserRooms returns the rooms the caller owns.
func (s *Service) UserRooms(ctx context.Context, caller auth.Identity) ([]models.QueueRoom, error) {
	user, err := s.store.FindUserByID(ctx, caller.UserID)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, apperr.New(apperr.Unauthorized, "Invalid user credentials.")
	}
	if err != nil {
		return nil, classify(err, "Error fetching user rooms.")
	}
	rooms, err := s.store.FindRoomsByIDs(ctx, user.Rooms)
	if err != nil {
		return nil, classify(err, "Error fetching user rooms.")
	}
	return rooms, nil
}

// UserQueueItem is one queue the caller is waiting in.
type UserQueueItem struct {
	EntryID  string    `json:"entry_id"`
	RoomID   string    `json:"room_id"`
	RoomName string    `json:"room_name"`
	Code     string    `json:"code"`
	Topic    string    `json:"topic"`
	// Position is 1-based, 0 when the entry was skipped.
	Position int       `json:"position"`
	Skipped  bool      `json:"skipped"`
	Status   string    `json:"status"`
	JoinedAt time.Time `json:"joined_at"`
}

// UserQueues resolves the caller's queue back-references.
func (s *Service) UserQueues(ctx context.Context, caller auth.Identity) ([]UserQueueItem, error) {
	user, err := s.store.FindUserByID(ctx, caller.UserID)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, apperr.New(apperr.Unauthorized, "Invalid user credentials.")
	}
	if err != nil {
		return nil, classify(err, "Error fetching user queue entries.")
	}
	entries, err := s.store.FindEntriesByIDs(ctx, user.Queues)
	if err != nil {
		return nil, classify(err, "Error fetching user queue entries.")
	}
	roomIDs := make([]string, 0, len(entries))
	for _, e := range entries {
		if !models.Contains(roomIDs, e.RoomID) {
			roomIDs = append(roomIDs, e.RoomID)
		}
	}
	rooms, err := s.store.FindRoomsByIDs(ctx, roomIDs)
	if err != nil {
		return nil, classify(err, "Error fetching queue details.")
	}
	byID := make(map[string]models.QueueRoom, len(rooms))
	for _, r := range rooms {
		byID[r.ID] = r
	}

	items := []UserQueueItem{}
	for _, e := range entries {
		room, ok := byID[e.RoomID]
		if !ok {
			continue
		}
		position := indexOf(room.Entries, e.ID) + 1
		items = append(items, UserQueueItem{
			EntryID:  e.ID,
			RoomID:   room.ID,
			RoomName: room.Name,
			Code:     room.Code,
			Topic:    e.Topic,
			Position: position,
			Skipped:  position == 0 && models.Contains(room.SkippedEntries, e.ID),
			Status:   room.Status.String(),
			JoinedAt: e.CreatedAt,
		})
	}
	return items, nil
}

func indexOf(ids []string, id string) int {
	for i, v := range ids {
		if v == id {
			return i
		}
	}
	return -1
}
