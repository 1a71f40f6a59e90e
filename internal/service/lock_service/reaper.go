package lock_service

import (
	"context"
	"fmt"
	"time"

	"github.com/hmcts/fact-admin/internal/fact_errors"
	log "github.com/sirupsen/logrus"
)

// ReapExpiredLocks deletes every lock that has expired.
func (l *LockService) ReapExpiredLocks(ctx context.Context) (int64, error) {
	reaper, ok := l.Store.(ExpiredLockReaper)
	if !ok {
		return 0, fmt.Errorf(
			"%w, lock store %T cannot reap expired locks",
			fact_errors.ErrInvalidRequest,
			l.Store,
		)
	}

	cutoff := l.now().Add(-l.timeout())
	deleted, err := reaper.DeleteCourtLocksAcquiredBefore(ctx, cutoff)
	if err != nil {
		return 0, err
	}
	if deleted > 0 {
		log.WithFields(log.Fields{
			"deleted": deleted,
			"cutoff":  cutoff,
		}).Info("reaped expired court locks")
	}
	return deleted, nil
}

// StartLockReaper reaps expired locks every interval until ctx is cancelled.
// It returns false when the store cannot reap.
func (l *LockService) StartLockReaper(ctx context.Context, interval time.Duration) bool {
	if _, ok := l.Store.(ExpiredLockReaper); !ok {
		log.Warnf("lock store %T cannot reap expired locks, relying on its own expiry", l.Store)
		return false
	}

	log.WithField("interval", interval).Info("starting court lock reaper")
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				log.Info("court lock reaper stopped")
				return
			case <-ticker.C:
				if _, err := l.ReapExpiredLocks(ctx); err != nil {
					log.Errorf("cannot reap expired court locks, %v", err)
				}
			}
		}
	}()
	return true
}
