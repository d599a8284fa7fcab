package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/campus-timetable-api/internal/models"
	"github.com/noah-isme/campus-timetable-api/pkg/jobs"
)

// JobInvalidateOccupancy is the job type that drops cached occupancy weeks.
const JobInvalidateOccupancy = "occupancy.invalidate"

type jobEnqueuer interface {
	TryEnqueue(job jobs.Job) error
}

// OccupancyCacheInvalidator drops cached occupancy results for weeks touched by writes.
type OccupancyCacheInvalidator struct {
	queue   jobEnqueuer
	cache   *CacheService
	logger  *zap.Logger
	timeout time.Duration
}

// NewOccupancyCacheInvalidator builds the invalidator. A nil queue invalidates inline.
func NewOccupancyCacheInvalidator(queue jobEnqueuer, cache *CacheService, logger *zap.Logger) *OccupancyCacheInvalidator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &OccupancyCacheInvalidator{queue: queue, cache: cache, logger: logger, timeout: 5 * time.Second}
}

// InvalidateDates schedules invalidation of every week containing one of dates.
func (i *OccupancyCacheInvalidator) InvalidateDates(dates []models.Date) {
	if !i.cache.Enabled() || len(dates) == 0 {
		return
	}
	weeks := weekStarts(dates)
	if i.queue != nil {
		err := i.queue.TryEnqueue(jobs.Job{Type: JobInvalidateOccupancy, Payload: weeks})
		if err == nil {
			return
		}
		i.logger.Warn("occupancy invalidation not queued, running inline", zap.Error(err))
	}
	ctx, cancel := context.WithTimeout(context.Background(), i.timeout)
	defer cancel()
	if err := i.invalidate(ctx, weeks); err != nil {
		i.logger.Warn("occupancy invalidation failed", zap.Error(err))
	}
}

// Handle processes a queued invalidation job.
func (i *OccupancyCacheInvalidator) Handle(ctx context.Context, job jobs.Job) error {
	weeks, ok := job.Payload.([]models.Date)
	if !ok {
		return fmt.Errorf("unexpected payload %T for %s", job.Payload, job.Type)
	}
	return i.invalidate(ctx, weeks)
}

func (i *OccupancyCacheInvalidator) invalidate(ctx context.Context, weeks []models.Date) error {
	for _, week := range weeks {
		if err := i.cache.Invalidate(ctx, occupancyCachePrefix+week.String()+":*"); err != nil {
			return err
		}
	}
	return nil
}

func weekStarts(dates []models.Date) []models.Date {
	seen := make(map[string]models.Date, len(dates))
	for _, d := range dates {
		start := WeekContaining(d.Time, 0).StartDate
		seen[start.String()] = start
	}
	out := make([]models.Date, 0, len(seen))
	for _, d := range seen {
		out = append(out, d)
	}
	sort.Slice(out, func(a, b int) bool { return out[a].Before(out[b]) })
	return out
}
