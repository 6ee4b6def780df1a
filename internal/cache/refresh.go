package cache

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

var scheduleParser = cron.NewParser(cron.SecondOptional | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)

// ValidateSchedule reports whether spec is a cron expression the Refresher
// accepts (five or six fields, or a descriptor such as @every 10m).
func ValidateSchedule(spec string) error {
	if _, err := scheduleParser.Parse(spec); err != nil {
		return fmt.Errorf("invalid refresh schedule %q: %w", spec, err)
	}
	return nil
}

// Refresher purges the cache on a schedule and warms it again
type Refresher struct {
	mu      sync.Mutex
	cron    *cron.Cron
	target  Purger
	warm    func(ctx context.Context) error
	logger  *zap.Logger
	timeout time.Duration
	running bool
	runs    int
}

// NewRefresher schedules a purge of target followed by warm. warm may be nil.
func NewRefresher(schedule string, target Purger, warm func(ctx context.Context) error, logger *zap.Logger) (*Refresher, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	r := &Refresher{
		cron:    cron.New(cron.WithParser(scheduleParser)),
		target:  target,
		warm:    warm,
		logger:  logger,
		timeout: 5 * time.Minute,
	}
	if _, err := r.cron.AddFunc(schedule, r.Refresh); err != nil {
		return nil, fmt.Errorf("invalid refresh schedule %q: %w", schedule, err)
	}
	return r, nil
}

// Start runs the schedule in the background
func (r *Refresher) Start() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.running {
		return
	}
	r.running = true
	r.cron.Start()
	r.logger.Info("cache refresh scheduled")
}

// Stop halts the schedule and waits for a running refresh to finish
func (r *Refresher) Stop() {
	r.mu.Lock()
	if !r.running {
		r.mu.Unlock()
		return
	}
	r.running = false
	r.mu.Unlock()

	<-r.cron.Stop().Done()
}

// Refresh purges and warms once
func (r *Refresher) Refresh() {
	start := time.Now()
	n := r.target.Purge()

	r.mu.Lock()
	r.runs++
	r.mu.Unlock()

	if r.warm == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
	defer cancel()
	if err := r.warm(ctx); err != nil {
		r.logger.Warn("cache warm failed", zap.Error(err))
		return
	}
	r.logger.Info("cache refreshed",
		zap.Int("purged", n),
		zap.Duration("duration", time.Since(start)))
}

// Runs returns how many refreshes have executed
func (r *Refresher) Runs() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.runs
}
