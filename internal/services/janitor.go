package services

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/thuan-cell/thuan-cell/internal/repository"
)

// Janitor periodically drops evaluation sessions nobody has touched for a while.
type Janitor struct {
	log      *zap.Logger
	store    *repository.SessionStore
	idle     time.Duration
	interval time.Duration
	now      func() time.Time
}

func NewJanitor(log *zap.Logger, store *repository.SessionStore, idle, interval time.Duration) *Janitor {
	return &Janitor{
		log:      log,
		store:    store,
		idle:     idle,
		interval: interval,
		now:      time.Now,
	}
}

// Start runs the sweep loop in a goroutine until ctx is cancelled.
func (j *Janitor) Start(ctx context.Context) {
	j.log.Info("Starting session janitor...", zap.Duration("idle_timeout", j.idle), zap.Duration("interval", j.interval))
	go func() {
		ticker := time.NewTicker(j.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				j.log.Info("Session janitor stopped")
				return
			case <-ticker.C:
				j.runSweep()
			}
		}
	}()
}

func (j *Janitor) runSweep() int {
	removed := j.store.Sweep(j.idle, j.now())
	if removed > 0 {
		j.log.Info("Expired idle sessions", zap.Int("removed", removed), zap.Int("remaining", j.store.Len()))
	} else {
		j.log.Debug("Session sweep found nothing to expire", zap.Int("sessions", j.store.Len()))
	}
	return removed
}
