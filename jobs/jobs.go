package jobs

import (
	"context"
	"time"

	"github.com/Madhav-Gupta-28/estatehub-backend-go/metrics"
	"github.com/Madhav-Gupta-28/estatehub-backend-go/store"
	"github.com/pkg/errors"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

const (
	OrphanSweepSpec      = "@every 6h"
	InteractionPurgeSpec = "@daily"

	jobTimeout = 5 * time.Minute
)

var cronParser = cron.NewParser(
	cron.SecondOptional | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor,
)

// Jobs holds the housekeeping tasks that run on a schedule.
type Jobs struct {
	stores        *store.Stores
	retentionDays int
	metrics       *metrics.Metrics
	logger        *zap.Logger
	sched         *cron.Cron
}

func New(stores *store.Stores, retentionDays int, m *metrics.Metrics, logger *zap.Logger) *Jobs {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Jobs{stores: stores, retentionDays: retentionDays, metrics: m, logger: logger}
}

// Start registers and starts the schedule.
func (j *Jobs) Start() error {
	j.sched = cron.New(cron.WithLocation(time.UTC), cron.WithParser(cronParser))

	if _, err := j.sched.AddFunc(OrphanSweepSpec, func() { j.run("orphan_favorites", j.SweepOrphanFavorites) }); err != nil {
		return errors.Wrap(err, "schedule orphan sweep")
	}
	if _, err := j.sched.AddFunc(InteractionPurgeSpec, func() { j.run("interaction_purge", j.PurgeInteractions) }); err != nil {
		return errors.Wrap(err, "schedule interaction purge")
	}
	j.sched.Start()
	return nil
}

// Stop waits for running jobs to finish or ctx to end.
func (j *Jobs) Stop(ctx context.Context) {
	if j.sched == nil {
		return
	}
	select {
	case <-j.sched.Stop().Done():
	case <-ctx.Done():
	}
}

func (j *Jobs) run(name string, fn func(ctx context.Context) (int64, error)) {
	defer func() {
		if r := recover(); r != nil {
			j.record(name, "panic")
			j.logger.Error("job panicked", zap.String("job", name), zap.Any("panic", r))
		}
	}()

	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	n, err := fn(ctx)
	if err != nil {
		j.record(name, "error")
		j.logger.Error("job failed", zap.String("job", name), zap.Error(err))
		return
	}
	j.record(name, "ok")
	j.logger.Info("job finished", zap.String("job", name), zap.Int64("deleted", n))
}

func (j *Jobs) record(name, outcome string) {
	if j.metrics != nil {
		j.metrics.JobRuns.WithLabelValues(name, outcome).Inc()
	}
}

// SweepOrphanFavorites deletes favorites whose property no longer exists.
func (j *Jobs) SweepOrphanFavorites(ctx context.Context) (int64, error) {
	ids, err := j.stores.Favorites.PropertyIDs(ctx)
	if err != nil {
		return 0, err
	}
	missing, err := store.MissingProperties(ctx, j.stores.Properties, ids)
	if err != nil {
		return 0, err
	}
	return j.stores.Favorites.DeleteByProperties(ctx, missing)
}

// PurgeInteractions deletes interactions older than the retention window.
func (j *Jobs) PurgeInteractions(ctx context.Context) (int64, error) {
	cutoff := time.Now().UTC().AddDate(0, 0, -j.retentionDays)
	return j.stores.Interactions.DeleteBefore(ctx, cutoff)
}
