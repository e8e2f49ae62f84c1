package storage

import (
	"context"
	"sync"
	"time"

	"queueroom/internal/models"

	"github.com/lib/pq"
)

// MemoryStore keeps documents in process memory. Single operations are
// atomic. A transaction records an undo step for every write and replays
// them in reverse when it aborts; writes are visible to other callers
// before commit, so concurrent transactions interleave the same way
// independent requests against a store without multi-document transactions
// would.
type MemoryStore struct {
	*memoryTx
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{memoryTx: &memoryTx{state: &memoryState{
		users:   map[string]*models.User{},
		rooms:   map[string]*models.QueueRoom{},
		entries: map[string]*models.QueueEntry{},
	}}}
}

func (s *MemoryStore) Transaction(ctx context.Context, fn func(tx Tx) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	tx := &memoryTx{state: s.state, journal: &[]func(){}}
	if err := fn(tx); err != nil {
		s.state.mu.Lock()
		undo := *tx.journal
		for i := len(undo) - 1; i >= 0; i-- {
			undo[i]()
		}
		s.state.mu.Unlock()
		return err
	}
	return nil
}

type memoryState struct {
	mu      sync.Mutex
	users   map[string]*models.User
	rooms   map[string]*models.QueueRoom
	entries map[string]*models.QueueEntry
}

type memoryTx struct {
	state   *memoryState
	journal *[]func()
}

// lock must be paired with s.mu.Unlock. Undo steps run with the lock held.
func (t *memoryTx) lock(ctx context.Context) (*memoryState, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	t.state.mu.Lock()
	return t.state, nil
}

func (t *memoryTx) record(undo func()) {
	if t.journal != nil {
		*t.journal = append(*t.journal, undo)
	}
}

func clone(ids pq.StringArray) pq.StringArray {
	out := make(pq.StringArray, len(ids))
	copy(out, ids)
	return out
}

func copyUser(u *models.User) *models.User {
	c := *u
	c.Rooms = clone(u.Rooms)
	c.Queues = clone(u.Queues)
	return &c
}

func copyRoom(r *models.QueueRoom) *models.QueueRoom {
	c := models.QueueRoom{
		ID: r.ID, UserID: r.UserID, Emoji: r.Emoji, Name: r.Name, Host: r.Host,
		Email: r.Email, Description: r.Description, Status: r.Status,
		Capacity: r.Capacity, Code: r.Code, Settings: r.Settings,
		CreatedAt: r.CreatedAt, UpdatedAt: r.UpdatedAt, Version: r.Version,
	}
	c.Entries = clone(r.Entries)
	c.SkippedEntries = clone(r.SkippedEntries)
	return &c
}

func copyEntry(e *models.QueueEntry) *models.QueueEntry {
	c := *e
	if e.GuestUserID != nil {
		v := *e.GuestUserID
		c.GuestUserID = &v
	}
	if e.GuestEmail != nil {
		v := *e.GuestEmail
		c.GuestEmail = &v
	}
	return &c
}

func stamp(created *time.Time, updated *time.Time) {
	now := time.Now()
	if created.IsZero() {
		*created = now
	}
	*updated = now
}

func (t *memoryTx) CreateUser(ctx context.Context, user *models.User) error {
	s, err := t.lock(ctx)
	if err != nil {
		return err
	}
	defer s.mu.Unlock()
	if user.ID == "" {
		user.ID = models.NewID()
	}
	if _, ok := s.users[user.ID]; ok {
		return ErrDuplicateKey
	}
	for _, u := range s.users {
		if u.Email == user.Email {
			return ErrDuplicateKey
		}
	}
	if user.Rooms == nil {
		user.Rooms = pq.StringArray{}
	}
	if user.Queues == nil {
		user.Queues = pq.StringArray{}
	}
	if user.Version == 0 {
		user.Version = 1
	}
	stamp(&user.CreatedAt, &user.UpdatedAt)
	s.users[user.ID] = copyUser(user)
	id := user.ID
	t.record(func() { delete(s.users, id) })
	return nil
}

func (t *memoryTx) FindUserByID(ctx context.Context, id string) (*models.User, error) {
	s, err := t.lock(ctx)
	if err != nil {
		return nil, err
	}
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	return copyUser(u), nil
}

func (t *memoryTx) FindUserByEmail(ctx context.Context, email string) (*models.User, error) {
	s, err := t.lock(ctx)
	if err != nil {
		return nil, err
	}
	defer s.mu.Unlock()
	email = models.NormalizeEmail(email)
	for _, u := range s.users {
		if u.Email == email {
			return copyUser(u), nil
		}
	}
	return nil, ErrNotFound
}

func (t *memoryTx) UserExists(ctx context.Context, id, name string) (bool, error) {
	s, err := t.lock(ctx)
	if err != nil {
		return false, err
	}
	defer s.mu.Unlock()
	u, ok := s.users[id]
	return ok && u.Name == name, nil
}

// updateUserList adds id to or removes it from one of a user's id lists and
// records the inverse edit.
func (t *memoryTx) updateUserList(ctx context.Context, userID string, list func(*models.User) *pq.StringArray, add bool, id string) error {
	s, err := t.lock(ctx)
	if err != nil {
		return err
	}
	defer s.mu.Unlock()
	u, ok := s.users[userID]
	if !ok {
		return nil
	}
	ids := list(u)
	has := models.Contains(*ids, id)
	switch {
	case add && !has:
		*ids = append(clone(*ids), id)
		t.record(func() {
			if u, ok := s.users[userID]; ok {
				l := list(u)
				*l = models.Without(*l, id)
			}
		})
	case !add && has:
		*ids = models.Without(*ids, id)
		t.record(func() {
			if u, ok := s.users[userID]; ok {
				l := list(u)
				if !models.Contains(*l, id) {
					*l = append(clone(*l), id)
				}
			}
		})
	default:
		return nil
	}
	u.Version++
	u.UpdatedAt = time.Now()
	return nil
}

func rooms(u *models.User) *pq.StringArray  { return &u.Rooms }
func queues(u *models.User) *pq.StringArray { return &u.Queues }

func (t *memoryTx) AddUserRoom(ctx context.Context, userID, roomID string) error {
	return t.updateUserList(ctx, userID, rooms, true, roomID)
}

func (t *memoryTx) RemoveUserRoom(ctx context.Context, userID, roomID string) error {
	return t.updateUserList(ctx, userID, rooms, false, roomID)
}

func (t *memoryTx) AddUserQueue(ctx context.Context, userID, entryID string) error {
	return t.updateUserList(ctx, userID, queues, true, entryID)
}

func (t *memoryTx) RemoveUserQueues(ctx context.Context, entryIDs []string) (int64, error) {
	s, err := t.lock(ctx)
	if err != nil {
		return 0, err
	}
	defer s.mu.Unlock()
	var affected int64
	for userID, u := range s.users {
		var removed []string
		for _, id := range u.Queues {
			if models.Contains(entryIDs, id) {
				removed = append(removed, id)
			}
		}
		if len(removed) == 0 {
			continue
		}
		u.Queues = models.Without(u.Queues, removed...)
		u.Version++
		u.UpdatedAt = time.Now()
		affected++
		t.record(func() {
			if u, ok := s.users[userID]; ok {
				for _, id := range removed {
					if !models.Contains(u.Queues, id) {
						u.Queues = append(clone(u.Queues), id)
					}
				}
			}
		})
	}
	return affected, nil
}

func (t *memoryTx) InsertRoom(ctx context.Context, room *models.QueueRoom) error {
	s, err := t.lock(ctx)
	if err != nil {
		return err
	}
	defer s.mu.Unlock()
	if room.ID == "" {
		room.ID = models.NewID()
	}
	if _, ok := s.rooms[room.ID]; ok {
		return ErrDuplicateKey
	}
	for _, r := range s.rooms {
		if r.Code == room.Code {
			return ErrDuplicateKey
		}
	}
	if room.Entries == nil {
		room.Entries = pq.StringArray{}
	}
	if room.SkippedEntries == nil {
		room.SkippedEntries = pq.StringArray{}
	}
	if room.Version == 0 {
		room.Version = 1
	}
	stamp(&room.CreatedAt, &room.UpdatedAt)
	s.rooms[room.ID] = copyRoom(room)
	id := room.ID
	t.record(func() { delete(s.rooms, id) })
	return nil
}

func (t *memoryTx) FindRoomByID(ctx context.Context, id string) (*models.QueueRoom, error) {
	s, err := t.lock(ctx)
	if err != nil {
		return nil, err
	}
	defer s.mu.Unlock()
	r, ok := s.rooms[id]
	if !ok {
		return nil, ErrNotFound
	}
	return copyRoom(r), nil
}

func (t *memoryTx) FindRoomByCode(ctx context.Context, code string) (*models.QueueRoom, error) {
	s, err := t.lock(ctx)
	if err != nil {
		return nil, err
	}
	defer s.mu.Unlock()
	for _, r := range s.rooms {
		if r.Code == code {
			return copyRoom(r), nil
		}
	}
	return nil, ErrNotFound
}

func (t *memoryTx) FindRoomsByIDs(ctx context.Context, ids []string) ([]models.QueueRoom, error) {
	s, err := t.lock(ctx)
	if err != nil {
		return nil, err
	}
	defer s.mu.Unlock()
	out := []models.QueueRoom{}
	for _, id := range ids {
		if r, ok := s.rooms[id]; ok {
			out = append(out, *copyRoom(r))
		}
	}
	return out, nil
}

func (t *memoryTx) LoadMembers(ctx context.Context, room *models.QueueRoom) error {
	s, err := t.lock(ctx)
	if err != nil {
		return err
	}
	defer s.mu.Unlock()
	members := []models.QueueEntry{}
	for _, id := range room.Entries {
		if e, ok := s.entries[id]; ok {
			c := copyEntry(e)
			members = append(members, models.QueueEntry{ID: c.ID, GuestUserID: c.GuestUserID, GuestEmail: c.GuestEmail})
		}
	}
	room.SetMembers(members)
	return nil
}

func (t *memoryTx) LinkEntry(ctx context.Context, cond LinkCondition, entryID string) (*models.QueueRoom, error) {
	s, err := t.lock(ctx)
	if err != nil {
		return nil, err
	}
	defer s.mu.Unlock()
	r, ok := s.rooms[cond.RoomID]
	if !ok || r.Code != cond.Code || !r.IsOpen() || !r.HasCapacity() {
		return nil, nil
	}
	for _, id := range r.Entries {
		if e, ok := s.entries[id]; ok && e.BelongsTo(cond.GuestUserID, cond.GuestEmail) {
			return nil, ErrDuplicateKey
		}
	}
	r.Entries = append(clone(r.Entries), entryID)
	r.Version++
	r.UpdatedAt = time.Now()
	roomID := cond.RoomID
	t.record(func() {
		if r, ok := s.rooms[roomID]; ok {
			r.Entries = models.Without(r.Entries, entryID)
		}
	})
	return copyRoom(r), nil
}

func (t *memoryTx) UnlinkEntry(ctx context.Context, roomID, entryID string) (*models.QueueRoom, error) {
	s, err := t.lock(ctx)
	if err != nil {
		return nil, err
	}
	defer s.mu.Unlock()
	r, ok := s.rooms[roomID]
	if !ok {
		return nil, ErrNotFound
	}
	before := copyRoom(r)
	r.Entries = models.Without(r.Entries, entryID)
	r.SkippedEntries = models.Without(r.SkippedEntries, entryID)
	r.Version++
	r.UpdatedAt = time.Now()
	t.record(func() {
		r, ok := s.rooms[roomID]
		if !ok {
			return
		}
		if models.Contains(before.Entries, entryID) && !models.Contains(r.Entries, entryID) {
			r.Entries = restoreAt(r.Entries, before.Entries, entryID)
		}
		if models.Contains(before.SkippedEntries, entryID) && !models.Contains(r.SkippedEntries, entryID) {
			r.SkippedEntries = restoreAt(r.SkippedEntries, before.SkippedEntries, entryID)
		}
	})
	return copyRoom(r), nil
}

// restoreAt puts id back into current right after its former predecessor.
func restoreAt(current, former pq.StringArray, id string) pq.StringArray {
	pos := 0
	for _, v := range former {
		if v == id {
			break
		}
		if idx := indexOf(current, v); idx >= 0 {
			pos = idx + 1
		}
	}
	out := make(pq.StringArray, 0, len(current)+1)
	out = append(out, current[:pos]...)
	out = append(out, id)
	return append(out, current[pos:]...)
}

func indexOf(ids []string, id string) int {
	for i, v := range ids {
		if v == id {
			return i
		}
	}
	return -1
}

func (t *memoryTx) UpdateRoom(ctx context.Context, roomID string, changes models.RoomChanges) (*models.QueueRoom, bool, error) {
	s, err := t.lock(ctx)
	if err != nil {
		return nil, false, err
	}
	defer s.mu.Unlock()
	r, ok := s.rooms[roomID]
	if !ok {
		return nil, false, nil
	}
	if changes.Capacity != nil && !models.Fits(*changes.Capacity, len(r.Entries)) {
		return nil, false, nil
	}
	inverse := invert(changes, r)
	changes.Apply(r)
	r.Version++
	r.UpdatedAt = time.Now()
	t.record(func() {
		if r, ok := s.rooms[roomID]; ok {
			inverse.Apply(r)
		}
	})
	return copyRoom(r), true, nil
}

// invert captures the current values of the fields changes touches.
func invert(changes models.RoomChanges, r *models.QueueRoom) models.RoomChanges {
	var inv models.RoomChanges
	old := copyRoom(r)
	if changes.Emoji != nil {
		inv.Emoji = &old.Emoji
	}
	if changes.Name != nil {
		inv.Name = &old.Name
	}
	if changes.Host != nil {
		inv.Host = &old.Host
	}
	if changes.Description != nil {
		inv.Description = &old.Description
	}
	if changes.Email != nil {
		inv.Email = &old.Email
	}
	if changes.Status != nil {
		inv.Status = &old.Status
	}
	if changes.Capacity != nil {
		inv.Capacity = &old.Capacity
	}
	s := changes.Settings
	if s.QueueVisible != nil {
		inv.Settings.QueueVisible = &old.Settings.QueueVisible
	}
	if s.CurrentGuestVisible != nil {
		inv.Settings.CurrentGuestVisible = &old.Settings.CurrentGuestVisible
	}
	if s.ActivityLogVisible != nil {
		inv.Settings.ActivityLogVisible = &old.Settings.ActivityLogVisible
	}
	if s.RequiresJoinPermission != nil {
		inv.Settings.RequiresJoinPermission = &old.Settings.RequiresJoinPermission
	}
	if s.NotifyGuestsOverride != nil {
		inv.Settings.NotifyGuestsOverride = &old.Settings.NotifyGuestsOverride
	}
	return inv
}

func (t *memoryTx) DeleteRoom(ctx context.Context, id string) (*models.QueueRoom, error) {
	s, err := t.lock(ctx)
	if err != nil {
		return nil, err
	}
	defer s.mu.Unlock()
	r, ok := s.rooms[id]
	if !ok {
		return nil, ErrNotFound
	}
	delete(s.rooms, id)
	t.record(func() { s.rooms[id] = r })
	return copyRoom(r), nil
}

func (t *memoryTx) InsertEntry(ctx context.Context, entry *models.QueueEntry) error {
	s, err := t.lock(ctx)
	if err != nil {
		return err
	}
	defer s.mu.Unlock()
	if entry.ID == "" {
		entry.ID = models.NewID()
	}
	if _, ok := s.entries[entry.ID]; ok {
		return ErrDuplicateKey
	}
	userID, email := entry.Participant()
	for _, e := range s.entries {
		if e.RoomID == entry.RoomID && e.BelongsTo(userID, email) {
			return ErrDuplicateKey
		}
	}
	if entry.Version == 0 {
		entry.Version = 1
	}
	stamp(&entry.CreatedAt, &entry.UpdatedAt)
	s.entries[entry.ID] = copyEntry(entry)
	id := entry.ID
	t.record(func() { delete(s.entries, id) })
	return nil
}

func (t *memoryTx) FindEntriesByIDs(ctx context.Context, ids []string) ([]models.QueueEntry, error) {
	s, err := t.lock(ctx)
	if err != nil {
		return nil, err
	}
	defer s.mu.Unlock()
	out := []models.QueueEntry{}
	for _, id := range ids {
		if e, ok := s.entries[id]; ok {
			out = append(out, *copyEntry(e))
		}
	}
	return out, nil
}

// removeEntry deletes one entry and records its restoration. Caller holds
// the lock.
func (t *memoryTx) removeEntry(s *memoryState, e *models.QueueEntry) {
	delete(s.entries, e.ID)
	t.record(func() { s.entries[e.ID] = e })
}

func (t *memoryTx) DeleteEntry(ctx context.Context, id string) error {
	s, err := t.lock(ctx)
	if err != nil {
		return err
	}
	defer s.mu.Unlock()
	e, ok := s.entries[id]
	if !ok {
		return ErrNotFound
	}
	t.removeEntry(s, e)
	return nil
}

func (t *memoryTx) DeleteEntryMatching(ctx context.Context, match EntryMatch) (*models.QueueEntry, error) {
	s, err := t.lock(ctx)
	if err != nil {
		return nil, err
	}
	defer s.mu.Unlock()
	email := models.NormalizeEmail(match.GuestEmail)
	for _, e := range s.entries {
		if e.RoomID != match.RoomID {
			continue
		}
		var hit bool
		if match.GuestUserID != "" {
			hit = e.GuestUserID != nil && *e.GuestUserID == match.GuestUserID
		} else {
			hit = e.ID == match.ID && e.GuestEmail != nil && *e.GuestEmail == email
		}
		if hit {
			t.removeEntry(s, e)
			return copyEntry(e), nil
		}
	}
	return nil, ErrNotFound
}

func (t *memoryTx) DeleteEntriesByRoom(ctx context.Context, roomID string) ([]string, error) {
	s, err := t.lock(ctx)
	if err != nil {
		return nil, err
	}
	defer s.mu.Unlock()
	ids := []string{}
	for _, e := range s.entries {
		if e.RoomID == roomID {
			ids = append(ids, e.ID)
			t.removeEntry(s, e)
		}
	}
	return ids, nil
}

func (t *memoryTx) SweepOrphanEntries(ctx context.Context, before time.Time) ([]string, error) {
	s, err := t.lock(ctx)
	if err != nil {
		return nil, err
	}
	defer s.mu.Unlock()
	referenced := map[string]bool{}
	for _, r := range s.rooms {
		for _, id := range r.Entries {
			referenced[id] = true
		}
		for _, id := range r.SkippedEntries {
			referenced[id] = true
		}
	}
	ids := []string{}
	for id, e := range s.entries {
		if !referenced[id] && e.CreatedAt.Before(before) {
			ids = append(ids, id)
			t.removeEntry(s, e)
		}
	}
	return ids, nil
}
