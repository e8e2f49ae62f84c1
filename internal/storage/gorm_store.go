package storage

import (
	"context"
	"errors"
	"time"

	"queueroom/internal/models"

	"github.com/lib/pq"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormStore is the Postgres document store.
type GormStore struct {
	*gormTx
	db *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{gormTx: &gormTx{db: db}, db: db}
}

func (s *GormStore) Transaction(ctx context.Context, fn func(tx Tx) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&gormTx{db: tx})
	})
}

type gormTx struct {
	db *gorm.DB
}

func (t *gormTx) conn(ctx context.Context) *gorm.DB {
	return t.db.WithContext(ctx)
}

func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return ErrDuplicateKey
	}
	return err
}

var bumpVersion = gorm.Expr("version + 1")

// create runs an insert in its own savepoint so a constraint violation does
// not abort the enclosing transaction.
func (t *gormTx) create(ctx context.Context, value any) error {
	return translate(t.conn(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Create(value).Error
	}))
}

func (t *gormTx) CreateUser(ctx context.Context, user *models.User) error {
	return t.create(ctx, user)
}

func (t *gormTx) FindUserByID(ctx context.Context, id string) (*models.User, error) {
	var user models.User
	if err := t.conn(ctx).Where("id = ?", id).First(&user).Error; err != nil {
		return nil, translate(err)
	}
	return &user, nil
}

func (t *gormTx) FindUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := t.conn(ctx).Where("email = ?", models.NormalizeEmail(email)).First(&user).Error; err != nil {
		return nil, translate(err)
	}
	return &user, nil
}

func (t *gormTx) UserExists(ctx context.Context, id, name string) (bool, error) {
	var count int64
	err := t.conn(ctx).Model(&models.User{}).Where("id = ? AND name = ?", id, name).Count(&count).Error
	return count > 0, translate(err)
}

func (t *gormTx) AddUserRoom(ctx context.Context, userID, roomID string) error {
	return t.conn(ctx).Model(&models.User{}).
		Where("id = ? AND NOT (?::text = ANY(rooms))", userID, roomID).
		Updates(map[string]any{"rooms": gorm.Expr("array_append(rooms, ?::text)", roomID), "version": bumpVersion}).Error
}

func (t *gormTx) RemoveUserRoom(ctx context.Context, userID, roomID string) error {
	return t.conn(ctx).Model(&models.User{}).
		Where("id = ? AND ?::text = ANY(rooms)", userID, roomID).
		Updates(map[string]any{"rooms": gorm.Expr("array_remove(rooms, ?::text)", roomID), "version": bumpVersion}).Error
}

func (t *gormTx) AddUserQueue(ctx context.Context, userID, entryID string) error {
	return t.conn(ctx).Model(&models.User{}).
		Where("id = ? AND NOT (?::text = ANY(queues))", userID, entryID).
		Updates(map[string]any{"queues": gorm.Expr("array_append(queues, ?::text)", entryID), "version": bumpVersion}).Error
}

func (t *gormTx) RemoveUserQueues(ctx context.Context, entryIDs []string) (int64, error) {
	if len(entryIDs) == 0 {
		return 0, nil
	}
	ids := pq.StringArray(entryIDs)
	res := t.conn(ctx).Model(&models.User{}).
		Where("queues && ?::text[]", ids).
		Updates(map[string]any{
			"queues": gorm.Expr(
				"array(SELECT q FROM unnest(queues) WITH ORDINALITY AS t(q, n) WHERE q <> ALL(?::text[]) ORDER BY n)", ids),
			"version": bumpVersion,
		})
	return res.RowsAffected, res.Error
}

func (t *gormTx) InsertRoom(ctx context.Context, room *models.QueueRoom) error {
	return t.create(ctx, room)
}

func (t *gormTx) FindRoomByID(ctx context.Context, id string) (*models.QueueRoom, error) {
	var room models.QueueRoom
	if err := t.conn(ctx).Where("id = ?", id).First(&room).Error; err != nil {
		return nil, translate(err)
	}
	return &room, nil
}

func (t *gormTx) FindRoomByCode(ctx context.Context, code string) (*models.QueueRoom, error) {
	var room models.QueueRoom
	if err := t.conn(ctx).Where("code = ?", code).First(&room).Error; err != nil {
		return nil, translate(err)
	}
	return &room, nil
}

func (t *gormTx) FindRoomsByIDs(ctx context.Context, ids []string) ([]models.QueueRoom, error) {
	rooms := []models.QueueRoom{}
	if len(ids) == 0 {
		return rooms, nil
	}
	if err := t.conn(ctx).Where("id IN ?", ids).Order("created_at").Find(&rooms).Error; err != nil {
		return nil, err
	}
	return rooms, nil
}

func (t *gormTx) LoadMembers(ctx context.Context, room *models.QueueRoom) error {
	members := []models.QueueEntry{}
	if len(room.Entries) > 0 {
		err := t.conn(ctx).Select("id", "guest_user_id", "guest_email").
			Where("id IN ?", []string(room.Entries)).
			Find(&members).Error
		if err != nil {
			return err
		}
	}
	room.SetMembers(members)
	return nil
}

// LinkEntry relies on Postgres re-evaluating the WHERE clause against the
// latest row version after waiting on a concurrent writer's row lock. The
// participant check is backed by the partial unique indexes on
// queue_entries, which serialize concurrent inserts of the same participant.
func (t *gormTx) LinkEntry(ctx context.Context, cond LinkCondition, entryID string) (*models.QueueRoom, error) {
	var room models.QueueRoom
	res := t.conn(ctx).Model(&room).Clauses(clause.Returning{}).
		Where("id = ? AND code = ? AND status = ?", cond.RoomID, cond.Code, models.RoomOpen).
		Where("(capacity = ? OR cardinality(entries) < capacity)", models.UnboundedCapacity).
		Scopes(notLinked(cond)).
		Updates(map[string]any{
			"entries": gorm.Expr("array_append(entries, ?::text)", entryID),
			"version": bumpVersion,
		})
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected > 0 {
		return &room, nil
	}

	var linked int64
	err := t.conn(ctx).Model(&models.QueueRoom{}).
		Where("id = ?", cond.RoomID).
		Scopes(isLinked(cond)).
		Count(&linked).Error
	if err != nil {
		return nil, err
	}
	if linked > 0 {
		return nil, ErrDuplicateKey
	}
	return nil, nil
}

const linkedParticipant = "EXISTS (SELECT 1 FROM queue_entries e WHERE e.id = ANY(queue_rooms.entries) AND "

func participantClause(cond LinkCondition) (string, any, bool) {
	switch {
	case cond.GuestUserID != "":
		return "e.guest_user_id = ?)", cond.GuestUserID, true
	case cond.GuestEmail != "":
		return "e.guest_email = ?)", models.NormalizeEmail(cond.GuestEmail), true
	}
	return "", nil, false
}

func notLinked(cond LinkCondition) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if column, value, ok := participantClause(cond); ok {
			return db.Where("NOT "+linkedParticipant+column, value)
		}
		return db
	}
}

func isLinked(cond LinkCondition) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if column, value, ok := participantClause(cond); ok {
			return db.Where(linkedParticipant+column, value)
		}
		return db.Where("FALSE")
	}
}

func (t *gormTx) UnlinkEntry(ctx context.Context, roomID, entryID string) (*models.QueueRoom, error) {
	var room models.QueueRoom
	res := t.conn(ctx).Model(&room).Clauses(clause.Returning{}).
		Where("id = ?", roomID).
		Updates(map[string]any{
			"entries":         gorm.Expr("array_remove(entries, ?::text)", entryID),
			"skipped_entries": gorm.Expr("array_remove(skipped_entries, ?::text)", entryID),
			"version":         bumpVersion,
		})
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, ErrNotFound
	}
	return &room, nil
}

func (t *gormTx) UpdateRoom(ctx context.Context, roomID string, changes models.RoomChanges) (*models.QueueRoom, bool, error) {
	cols := changes.Columns()
	cols["version"] = bumpVersion
	var room models.QueueRoom
	q := t.conn(ctx).Model(&room).Clauses(clause.Returning{}).Where("id = ?", roomID)
	if changes.Capacity != nil {
		q = q.Where("(?::int = ? OR cardinality(entries) <= ?::int)", *changes.Capacity, models.UnboundedCapacity, *changes.Capacity)
	}
	res := q.Updates(cols)
	if res.Error != nil {
		return nil, false, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, false, nil
	}
	return &room, true, nil
}

func (t *gormTx) DeleteRoom(ctx context.Context, id string) (*models.QueueRoom, error) {
	var room models.QueueRoom
	res := t.conn(ctx).Clauses(clause.Returning{}).Where("id = ?", id).Delete(&room)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, ErrNotFound
	}
	return &room, nil
}

func (t *gormTx) InsertEntry(ctx context.Context, entry *models.QueueEntry) error {
	return t.create(ctx, entry)
}

func (t *gormTx) FindEntriesByIDs(ctx context.Context, ids []string) ([]models.QueueEntry, error) {
	ordered := []models.QueueEntry{}
	if len(ids) == 0 {
		return ordered, nil
	}
	var found []models.QueueEntry
	if err := t.conn(ctx).Where("id IN ?", ids).Find(&found).Error; err != nil {
		return nil, err
	}
	byID := make(map[string]models.QueueEntry, len(found))
	for _, e := range found {
		byID[e.ID] = e
	}
	for _, id := range ids {
		if e, ok := byID[id]; ok {
			ordered = append(ordered, e)
		}
	}
	return ordered, nil
}

func (t *gormTx) DeleteEntry(ctx context.Context, id string) error {
	res := t.conn(ctx).Where("id = ?", id).Delete(&models.QueueEntry{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (t *gormTx) DeleteEntryMatching(ctx context.Context, match EntryMatch) (*models.QueueEntry, error) {
	var entry models.QueueEntry
	q := t.conn(ctx).Clauses(clause.Returning{}).Where("room_id = ?", match.RoomID)
	if match.GuestUserID != "" {
		q = q.Where("guest_user_id = ?", match.GuestUserID)
	} else {
		q = q.Where("id = ? AND guest_email = ?", match.ID, models.NormalizeEmail(match.GuestEmail))
	}
	res := q.Delete(&entry)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, ErrNotFound
	}
	return &entry, nil
}

func (t *gormTx) DeleteEntriesByRoom(ctx context.Context, roomID string) ([]string, error) {
	var deleted []models.QueueEntry
	err := t.conn(ctx).Clauses(clause.Returning{Columns: []clause.Column{{Name: "id"}}}).
		Where("room_id = ?", roomID).
		Delete(&deleted).Error
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(deleted))
	for _, e := range deleted {
		ids = append(ids, e.ID)
	}
	return ids, nil
}

func (t *gormTx) SweepOrphanEntries(ctx context.Context, before time.Time) ([]string, error) {
	ids := []string{}
	err := t.conn(ctx).Raw(`DELETE FROM queue_entries e
		WHERE e.created_at < ?
		AND NOT EXISTS (
			SELECT 1 FROM queue_rooms r
			WHERE e.id = ANY(r.entries) OR e.id = ANY(r.skipped_entries)
		)
		RETURNING e.id`, before).Scan(&ids).Error
	return ids, err
}
