package rooms

import (
	"context"
	"errors"

	"queueroom/internal/apperr"
	"queueroom/internal/auth"
	"queueroom/internal/models"
	"queueroom/internal/storage"

	"github.com/rs/zerolog/log"
)

var errNotInQueue = apperr.New(apperr.NoOperation, "You are not in the queue.")

type LeaveResult struct {
	RoomID   string
	RoomName string
	EntryID  string
}

// Leave removes the caller's entry from the room. credential is either an
// access token of a registered user or the guest token issued at join.
func (s *Service) Leave(ctx context.Context, roomID, credential string) (*LeaveResult, error) {
	if roomID == "" {
		return nil, apperr.New(apperr.InvalidInput, "Missing queue ID.")
	}
	if !models.IsID(roomID) {
		return nil, apperr.New(apperr.InvalidInput, "Invalid queue ID.")
	}
	proof, err := s.auth.ResolveProof(ctx, credential)
	if err != nil {
		return nil, err
	}

	match := storage.EntryMatch{RoomID: roomID}
	switch proof.Kind {
	case auth.ProofUser:
		// Registered users are checked against the room before anything
		// is mutated; the entry filter then scopes the delete to them.
		if _, err := s.store.FindRoomByID(ctx, roomID); err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				return nil, apperr.New(apperr.NotFound, "The queue room does not exist.")
			}
			return nil, classify(err, "An unexpected error occurred while validating queue room ID.")
		}
		match.GuestUserID = proof.UserID
	case auth.ProofGuest:
		match.ID = proof.EntryID
		match.GuestEmail = proof.Email
	default:
		return nil, apperr.New(apperr.Unauthorized, "Invalid user credentials.")
	}

	var result LeaveResult
	err = s.store.Transaction(ctx, func(tx storage.Tx) error {
		entry, err := tx.DeleteEntryMatching(ctx, match)
		if errors.Is(err, storage.ErrNotFound) {
			return errNotInQueue
		}
		if err != nil {
			return err
		}
		room, err := tx.UnlinkEntry(ctx, roomID, entry.ID)
		if errors.Is(err, storage.ErrNotFound) {
			return errNotInQueue
		}
		if err != nil {
			return err
		}
		if entry.GuestUserID != nil {
			if _, err := tx.RemoveUserQueues(ctx, []string{entry.ID}); err != nil {
				return err
			}
		}
		result = LeaveResult{RoomID: room.ID, RoomName: room.Name, EntryID: entry.ID}
		return nil
	})
	if err != nil {
		return nil, classify(err, "An unexpected error occurred when leaving the queue. Please try again later!")
	}

	log.Info().Str("module", "rooms.departure").
		Str("room_id", result.RoomID).
		Str("entry_id", result.EntryID).
		Bool("guest", proof.Kind == auth.ProofGuest).
		Msg("entry left")
	s.notifier.Publish(Event{
		Type:   EventEntryLeft,
		RoomID: result.RoomID,
		Data:   map[string]any{"entry_id": result.EntryID},
	})
	return &result, nil
}
