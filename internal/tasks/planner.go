package tasks

import (
	"context"
	"fmt"
	"time"

	"queueroom/internal/config"
	"queueroom/internal/storage"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"
)

// Sweeper удаляет записи очереди, на которые не ссылается ни одна комната.
// Такие записи остаются, если процесс упал между вставкой записи и её
// привязкой к комнате.
type Sweeper struct {
	store storage.Store
	grace time.Duration
	now   func() time.Time
}

func NewSweeper(store storage.Store, grace time.Duration) *Sweeper {
	return &Sweeper{store: store, grace: grace, now: time.Now}
}

// Sweep removes orphans older than the grace period together with the
// back-references users still hold to them.
func (s *Sweeper) Sweep(ctx context.Context) (int, error) {
	before := s.now().Add(-s.grace)
	var removed []string
	err := s.store.Transaction(ctx, func(tx storage.Tx) error {
		ids, err := tx.SweepOrphanEntries(ctx, before)
		if err != nil {
			return err
		}
		if len(ids) > 0 {
			if _, err := tx.RemoveUserQueues(ctx, ids); err != nil {
				return err
			}
		}
		removed = ids
		return nil
	})
	if err != nil {
		return 0, err
	}
	return len(removed), nil
}

func (s *Sweeper) run() {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	n, err := s.Sweep(ctx)
	if err != nil {
		log.Error().Err(err).Str("module", "tasks").Msg("Ошибка при очистке потерянных записей очереди")
		return
	}
	if n > 0 {
		log.Info().Str("module", "tasks").Int("removed", n).Msg("Потерянные записи очереди удалены")
	}
}

// InitScheduler инициализирует планировщик cron-задач.
func InitScheduler(cfg config.SweeperConfig, sweeper *Sweeper) (*cron.Cron, error) {
	c := cron.New(cron.WithSeconds())

	if _, err := c.AddFunc(cfg.Schedule, sweeper.run); err != nil {
		return nil, fmt.Errorf("failed to schedule orphan sweep %q: %w", cfg.Schedule, err)
	}

	c.Start()
	log.Info().Str("module", "tasks").Str("schedule", cfg.Schedule).Msg("Cron-планировщик запущен")
	return c, nil
}
