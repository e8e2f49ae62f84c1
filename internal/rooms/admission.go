package rooms

import (
	"context"
	"errors"
	"fmt"

	"queueroom/internal/apperr"
	"queueroom/internal/models"
	"queueroom/internal/storage"

	"github.com/rs/zerolog/log"
)

type JoinRequest struct {
	Code        string
	Name        string
	Email       string
	Topic       string
	Description string
	// Credential is the bearer token of a logged-in caller, empty for guests.
	Credential string
}

type JoinResult struct {
	Entry    models.QueueEntry
	RoomID   string
	RoomName string
	Code     string
	// Position is 1-based.
	Position int
	// GuestToken is only set for guests. It is the sole way for them to
	// leave the queue again.
	GuestToken string

	queueVisible bool
}

var (
	errNotOpen       = apperr.New(apperr.ResourceUnavailable, "The requested queue is not open and cannot be joined.")
	errOutOfCapacity = apperr.New(apperr.ResourceUnavailable, "The requested queue is out of capacity.")
	errAlreadyJoined = apperr.New(apperr.ResourceUnavailable, "You have already joined this queue.")
	errLostRace      = apperr.New(apperr.ResourceUnavailable, "Unable to join the queue, please try again!")
)

// joinPlan is the two-step write of a join: a tentative insert of the entry
// and a conditional link into the room. undo reverses the insert when the
// link loses against a concurrent writer.
type joinPlan struct {
	tx    storage.Tx
	entry *models.QueueEntry
	cond  storage.LinkCondition
}

func (p *joinPlan) insert(ctx context.Context) error {
	return p.tx.InsertEntry(ctx, p.entry)
}

func (p *joinPlan) link(ctx context.Context) (*models.QueueRoom, error) {
	return p.tx.LinkEntry(ctx, p.cond, p.entry.ID)
}

// undo tolerates an entry that is already gone: a cascading room delete
// may have swept it first.
func (p *joinPlan) undo(ctx context.Context) error {
	err := p.tx.DeleteEntry(ctx, p.entry.ID)
	if errors.Is(err, storage.ErrNotFound) {
		return nil
	}
	return err
}

// Join admits a participant into the room with the given code. The room is
// read optimistically; the final link re-checks status, capacity and the
// participant against the live document, so concurrent joins never exceed
// capacity and never admit one participant twice.
func (s *Service) Join(ctx context.Context, req JoinRequest) (*JoinResult, error) {
	if !s.codes.Valid(req.Code) {
		return nil, apperr.New(apperr.InvalidInput, "Invalid join code.")
	}

	var result JoinResult
	err := s.store.Transaction(ctx, func(tx storage.Tx) error {
		room, err := tx.FindRoomByCode(ctx, req.Code)
		if errors.Is(err, storage.ErrNotFound) {
			return apperr.New(apperr.NotFound, fmt.Sprintf("No queue exists with code %q.", req.Code))
		}
		if err != nil {
			return err
		}
		if err := tx.LoadMembers(ctx, room); err != nil {
			return err
		}

		if !room.IsOpen() {
			return errNotOpen
		}
		if !room.HasCapacity() {
			return errOutOfCapacity
		}

		entry := models.NewQueueEntry(req.Name, req.Topic, req.Description)
		entry.RoomID = room.ID
		var userID string
		if req.Credential == "" {
			if req.Email == "" {
				return apperr.New(apperr.InvalidInput, "An email is required to join the queue while logged out.")
			}
			entry.BindEmail(req.Email)
		} else {
			identity, err := s.auth.Authenticate(ctx, req.Credential)
			if err != nil {
				return err
			}
			userID = identity.UserID
			entry.BindUser(userID)
		}
		if err := models.ValidateEntry(entry); err != nil {
			return apperr.Wrap(apperr.InvalidInput, err, err.Error())
		}

		if room.HasAlreadyJoined(req.Email, userID) {
			return errAlreadyJoined
		}

		guestUserID, guestEmail := entry.Participant()
		plan := &joinPlan{tx: tx, entry: entry, cond: storage.LinkCondition{
			RoomID:      room.ID,
			Code:        req.Code,
			GuestUserID: guestUserID,
			GuestEmail:  guestEmail,
		}}
		if err := plan.insert(ctx); err != nil {
			if errors.Is(err, storage.ErrDuplicateKey) {
				return errAlreadyJoined
			}
			return err
		}
		linked, err := plan.link(ctx)
		if errors.Is(err, storage.ErrDuplicateKey) {
			if err := plan.undo(ctx); err != nil {
				return err
			}
			return errAlreadyJoined
		}
		if err != nil {
			return err
		}
		if linked == nil {
			if err := plan.undo(ctx); err != nil {
				return err
			}
			log.Info().Str("module", "rooms.admission").
				Str("room_id", room.ID).
				Msg("join lost the race for the room, entry withdrawn")
			return errLostRace
		}
		if userID != "" {
			if err := tx.AddUserQueue(ctx, userID, entry.ID); err != nil {
				return err
			}
		}

		result = JoinResult{
			Entry:        *entry,
			RoomID:       linked.ID,
			RoomName:     linked.Name,
			Code:         linked.Code,
			Position:     len(linked.Entries),
			queueVisible: linked.Settings.QueueVisible,
		}
		return nil
	})
	if err != nil {
		return nil, classify(err, "An unexpected error occurred when joining the queue. Please try again later!")
	}

	if result.Entry.IsGuest() {
		token, err := s.tokens.IssueGuest(result.Entry.ID, *result.Entry.GuestEmail)
		if err != nil {
			return nil, apperr.Wrap(apperr.Internal, err, "Joined the queue but failed to issue a guest token.")
		}
		result.GuestToken = token
	}

	log.Info().Str("module", "rooms.admission").
		Str("room_id", result.RoomID).
		Str("entry_id", result.Entry.ID).
		Bool("guest", result.Entry.IsGuest()).
		Int("position", result.Position).
		Msg("entry admitted")
	s.notifier.Publish(joinedEvent(&result))
	return &result, nil
}

// joinedEvent only carries the participant's name and topic when the room
// shows its queue publicly; subscribers are not authenticated.
func joinedEvent(result *JoinResult) Event {
	data := map[string]any{
		"entry_id": result.Entry.ID,
		"position": result.Position,
	}
	if result.queueVisible {
		data["guest_name"] = result.Entry.GuestName
		data["topic"] = result.Entry.Topic
	}
	return Event{Type: EventEntryJoined, RoomID: result.RoomID, Data: data}
}

// classify passes apperr errors through and turns anything else into an
// Internal error with the given message.
func classify(err error, message string) error {
	var e *apperr.Error
	if errors.As(err, &e) {
		return err
	}
	return apperr.Wrap(apperr.Internal, err, message)
}
