package rooms

import (
	"context"
	"errors"
	"fmt"

	"queueroom/internal/apperr"
	"queueroom/internal/auth"
	"queueroom/internal/models"
	"queueroom/internal/storage"

	"github.com/rs/zerolog/log"
)

type CreateRequest struct {
	// UserID is the declared owner and must be the caller.
	UserID      string
	Emoji       string
	Name        string
	Host        string
	Email       string
	Description string
	Status      *models.RoomStatus
	Capacity    *int
	Settings    *models.QueueRoomSettings
}

var errCodesExhausted = apperr.New(apperr.Internal, "Unable to allocate a join code for the queue room, please try again later.")

// Create inserts a room with a freshly generated code, regenerating the code
// on collision up to the configured number of attempts. The room id is added
// to the owner's rooms in the same transaction.
func (s *Service) Create(ctx context.Context, caller auth.Identity, req CreateRequest) (*models.QueueRoom, error) {
	if req.UserID != caller.UserID {
		return nil, apperr.New(apperr.Unauthorized, "You can only create queue rooms for yourself.")
	}
	room := models.NewQueueRoom(caller.UserID)
	room.Emoji = req.Emoji
	room.Name = req.Name
	room.Host = req.Host
	room.Email = req.Email
	room.Description = req.Description
	if req.Status != nil {
		room.Status = *req.Status
	}
	if req.Capacity != nil {
		room.Capacity = *req.Capacity
	}
	if req.Settings != nil {
		room.Settings = *req.Settings
	}
	room.Normalize()
	if err := models.ValidateRoom(room); err != nil {
		return nil, apperr.Unprocessable(err, err.Error())
	}

	attempts := 0
	err := s.store.Transaction(ctx, func(tx storage.Tx) error {
		for attempts < s.maxAttempts {
			attempts++
			code, err := s.codes.Generate()
			if err != nil {
				return err
			}
			room.Code = code
			err = tx.InsertRoom(ctx, room)
			if errors.Is(err, storage.ErrDuplicateKey) {
				log.Debug().Str("module", "rooms.lifecycle").Int("attempt", attempts).Msg("join code collision, regenerating")
				continue
			}
			if err != nil {
				return err
			}
			return tx.AddUserRoom(ctx, caller.UserID, room.ID)
		}
		return errCodesExhausted
	})
	if err != nil {
		if errors.Is(err, errCodesExhausted) {
			log.Error().Str("module", "rooms.lifecycle").Int("attempts", attempts).Msg("no free join code found")
		}
		return nil, classify(err, "An unexpected error occurred when creating the queue room.")
	}

	log.Info().Str("module", "rooms.lifecycle").
		Str("room_id", room.ID).
		Str("owner", caller.UserID).
		Int("code_attempts", attempts).
		Msg("queue room created")
	return room, nil
}

type DeleteResult struct {
	RoomID string
	// Entries is the number of queue entries removed with the room.
	Entries int
	// Users is the number of users whose queues referenced those entries.
	Users int64
}

// ownedRoom loads a room and checks that caller owns it.
func (s *Service) ownedRoom(ctx context.Context, caller auth.Identity, roomID string) (*models.QueueRoom, error) {
	if roomID == "" {
		return nil, apperr.New(apperr.InvalidInput, "Missing queue room ID.")
	}
	if !models.IsID(roomID) {
		return nil, apperr.New(apperr.InvalidInput, "Invalid queue room ID.")
	}
	room, err := s.store.FindRoomByID(ctx, roomID)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, apperr.New(apperr.NotFound, "The queue room does not exist.")
	}
	if err != nil {
		return nil, classify(err, "An unexpected error occurred while validating queue room ID.")
	}
	if room.UserID != caller.UserID {
		return nil, apperr.New(apperr.Unauthorized, "You are not the owner of this queue room.")
	}
	return room, nil
}

// Delete removes a room together with its entries and every reference to
// them held by users. A join racing with the delete either fails its link
// or has its entry swept up here.
func (s *Service) Delete(ctx context.Context, caller auth.Identity, roomID string) (*DeleteResult, error) {
	if _, err := s.ownedRoom(ctx, caller, roomID); err != nil {
		return nil, err
	}

	result := DeleteResult{RoomID: roomID}
	err := s.store.Transaction(ctx, func(tx storage.Tx) error {
		room, err := tx.DeleteRoom(ctx, roomID)
		if errors.Is(err, storage.ErrNotFound) {
			return apperr.Wrap(apperr.Internal, err, "Expected queue room deletion but none was found.")
		}
		if err != nil {
			return err
		}
		deleted, err := tx.DeleteEntriesByRoom(ctx, room.ID)
		if err != nil {
			return err
		}
		result.Entries = len(deleted)
		if err := tx.RemoveUserRoom(ctx, room.UserID, room.ID); err != nil {
			return err
		}
		refs := append([]string{}, deleted...)
		for _, id := range append(room.Entries, room.SkippedEntries...) {
			if !models.Contains(refs, id) {
				refs = append(refs, id)
			}
		}
		result.Users, err = tx.RemoveUserQueues(ctx, refs)
		return err
	})
	if err != nil {
		return nil, classify(err, "An unexpected error occurred when deleting the queue room.")
	}

	log.Info().Str("module", "rooms.lifecycle").
		Str("room_id", roomID).
		Int("entries", result.Entries).
		Int64("users", result.Users).
		Msg("queue room deleted")
	s.notifier.Publish(Event{Type: EventRoomDeleted, RoomID: roomID})
	return &result, nil
}

type EditResult struct {
	Room    *models.QueueRoom
	Updated map[string]any
	Removed []string
}

// Edit applies a partial update. Only whitelisted fields are considered;
// a null value resets a field to its default. See ParseEdit.
func (s *Service) Edit(ctx context.Context, caller auth.Identity, roomID string, patch map[string]any) (*EditResult, error) {
	current, err := s.ownedRoom(ctx, caller, roomID)
	if err != nil {
		return nil, err
	}
	edit, err := ParseEdit(patch)
	if err != nil {
		return nil, err
	}
	result := &EditResult{Room: current, Updated: edit.Updated, Removed: edit.Removed}
	if edit.Changes.Empty() {
		return result, nil
	}

	candidate := *current
	edit.Changes.Apply(&candidate)
	candidate.Normalize()
	if err := models.ValidateRoom(&candidate); err != nil {
		return nil, apperr.Unprocessable(err, err.Error())
	}
	normalizeChanges(&edit.Changes, &candidate)

	err = s.store.Transaction(ctx, func(tx storage.Tx) error {
		room, ok, err := tx.UpdateRoom(ctx, roomID, edit.Changes)
		if err != nil {
			return err
		}
		if !ok {
			if edit.Changes.Capacity != nil {
				if _, err := tx.FindRoomByID(ctx, roomID); err == nil {
					return apperr.New(apperr.ResourceUnavailable,
						fmt.Sprintf("The queue holds more entries than the new capacity of %d.", *edit.Changes.Capacity))
				}
			}
			return apperr.New(apperr.NotFound, "The queue room does not exist.")
		}
		result.Room = room
		return nil
	})
	if err != nil {
		return nil, classify(err, "An unexpected error occurred when editing the queue room.")
	}

	log.Info().Str("module", "rooms.lifecycle").
		Str("room_id", roomID).
		Int("updated", len(result.Updated)).
		Int("removed", len(result.Removed)).
		Msg("queue room edited")
	s.notifier.Publish(Event{
		Type:   EventRoomUpdated,
		RoomID: roomID,
		Data: map[string]any{
			"status":   result.Room.Status.String(),
			"capacity": result.Room.Capacity,
			"name":     result.Room.Name,
		},
	})
	return result, nil
}

// normalizeChanges writes the normalized free-text values back into the
// changes so the stored document matches what was validated.
func normalizeChanges(c *models.RoomChanges, normalized *models.QueueRoom) {
	if c.Name != nil {
		c.Name = &normalized.Name
	}
	if c.Host != nil {
		c.Host = &normalized.Host
	}
	if c.Email != nil {
		c.Email = &normalized.Email
	}
	if c.Emoji != nil {
		c.Emoji = &normalized.Emoji
	}
}
