package server

import (
	"context"
	"fmt"
	"time"

	cronlib "github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"github.com/beeper/drawboard/pkg/cachestore"
)

const pruneTimeout = time.Minute

var scheduleParser = cronlib.NewParser(cronlib.Minute | cronlib.Hour | cronlib.Dom | cronlib.Month | cronlib.Dow | cronlib.Descriptor)

// pruneJob drops cache entries older than maxAge.
type pruneJob struct {
	store  cachestore.Pruner
	maxAge time.Duration
	log    zerolog.Logger
}

func (j *pruneJob) Run() {
	ctx, cancel := context.WithTimeout(j.log.WithContext(context.Background()), pruneTimeout)
	defer cancel()
	removed, err := j.store.Prune(ctx, j.maxAge)
	if err != nil {
		j.log.Err(err).Msg("Failed to prune cache")
		return
	}
	if removed > 0 {
		j.log.Info().Int64("removed", removed).Msg("Pruned stale cache entries")
	}
}

func newPruneScheduler(spec string, job cronlib.Job, log zerolog.Logger) (*cronlib.Cron, error) {
	scheduler := cronlib.New(
		cronlib.WithParser(scheduleParser),
		cronlib.WithLocation(time.UTC),
		cronlib.WithLogger(cronLogger{log: log}),
	)
	if _, err := scheduler.AddJob(spec, job); err != nil {
		return nil, fmt.Errorf("invalid prune schedule %q: %w", spec, err)
	}
	return scheduler, nil
}

// cronLogger routes scheduler logs to zerolog.
type cronLogger struct {
	log zerolog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...any) {
	l.log.Trace().Fields(keysAndValues).Msg(msg)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...any) {
	l.log.Err(err).Fields(keysAndValues).Msg(msg)
}
