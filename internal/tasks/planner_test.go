package tasks

import (
	"context"
	"testing"
	"time"

	"queueroom/internal/config"
	"queueroom/internal/models"
	"queueroom/internal/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSweepRemovesStaleOrphans(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemoryStore()

	user := models.NewUser("Alice", "alice@example.com", "hash")
	require.NoError(t, store.CreateUser(ctx, user))

	room := models.NewQueueRoom(user.ID)
	room.Name, room.Host, room.Code = "Lab", "Alice", "12345"
	require.NoError(t, store.InsertRoom(ctx, room))

	// привязанная запись
	linked := models.NewQueueEntry("Bob", "Lab 1", "")
	linked.BindEmail("bob@example.com")
	linked.RoomID = room.ID
	linked.CreatedAt = time.Now().Add(-time.Hour)
	require.NoError(t, store.InsertEntry(ctx, linked))
	linkedRoom, err := store.LinkEntry(ctx, storage.LinkCondition{RoomID: room.ID, Code: room.Code}, linked.ID)
	require.NoError(t, err)
	require.NotNil(t, linkedRoom)

	// старая потерянная запись пользователя
	stale := models.NewQueueEntry("Alice", "Lab 2", "")
	stale.BindUser(user.ID)
	stale.RoomID = room.ID
	stale.CreatedAt = time.Now().Add(-time.Hour)
	require.NoError(t, store.InsertEntry(ctx, stale))
	require.NoError(t, store.AddUserQueue(ctx, user.ID, stale.ID))

	// свежая запись может ещё быть в процессе привязки
	fresh := models.NewQueueEntry("Carol", "Lab 3", "")
	fresh.BindEmail("carol@example.com")
	fresh.RoomID = room.ID
	require.NoError(t, store.InsertEntry(ctx, fresh))

	sweeper := NewSweeper(store, 10*time.Minute)
	n, err := sweeper.Sweep(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	left, err := store.FindEntriesByIDs(ctx, []string{linked.ID, stale.ID, fresh.ID})
	require.NoError(t, err)
	ids := make([]string, 0, len(left))
	for _, e := range left {
		ids = append(ids, e.ID)
	}
	assert.ElementsMatch(t, []string{linked.ID, fresh.ID}, ids)

	u, err := store.FindUserByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Empty(t, u.Queues)

	n, err = sweeper.Sweep(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestInitSchedulerRejectsBadSchedule(t *testing.T) {
	sweeper := NewSweeper(storage.NewMemoryStore(), time.Minute)

	_, err := InitScheduler(config.SweeperConfig{Schedule: "not a schedule"}, sweeper)
	assert.Error(t, err)

	c, err := InitScheduler(config.SweeperConfig{Schedule: "0 */10 * * * *"}, sweeper)
	require.NoError(t, err)
	assert.Len(t, c.Entries(), 1)
	<-c.Stop().Done()
}
