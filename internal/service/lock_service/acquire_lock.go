package lock_service

import (
	"context"
	"errors"
	"fmt"

	"github.com/hmcts/fact-admin/internal/fact_errors"
	"github.com/hmcts/fact-admin/internal/lock_store"
	log "github.com/sirupsen/logrus"
)

// AcquireCourtLock decides whether userEmail may edit courtSlug and records the
// decision in the lock store.
//
// A denial is not an error: it is returned as a LockDecision with outcome
// LockDenied. Store errors are returned as they are.
func (l *LockService) AcquireCourtLock(
	ctx context.Context,
	courtSlug string,
	userEmail string,
) (LockDecision, error) {
	req, err := validateLockRequest(courtSlug, userEmail)
	if err != nil {
		return LockDecision{}, err
	}

	for attempt := 1; attempt <= maxAcquireAttempts; attempt++ {
		decision, err := l.decide(ctx, req)
		if errors.Is(err, fact_errors.ErrEntityAlreadyExist) {
			// someone else inserted a lock between our read and write
			log.WithFields(log.Fields{
				"court_slug": req.CourtSlug,
				"user_email": req.UserEmail,
				"attempt":    attempt,
			}).Debug("lost court lock race, deciding again")
			continue
		}
		if err != nil {
			return LockDecision{}, err
		}

		l.logDecision(req, decision)
		if decision.Outcome == LockTakenOver {
			l.notifyTakeover(ctx, *decision.Previous, decision.Lock)
		}
		return decision, nil
	}

	err = fmt.Errorf(
		"%w, could not settle the lock on court %s after %d attempts",
		fact_errors.ErrConflict,
		req.CourtSlug,
		maxAcquireAttempts,
	)
	log.Error(err)
	return LockDecision{}, err
}

func (l *LockService) decide(ctx context.Context, req lockRequest) (LockDecision, error) {
	locks, err := l.Store.GetCourtLocks(ctx, req.CourtSlug)
	if err != nil {
		return LockDecision{}, err
	}
	now := l.now()

	current, locked := currentLock(locks)
	if !locked {
		lock := lock_store.NewCourtLock(req.CourtSlug, req.UserEmail, now)
		if err = l.Store.AddCourtLock(ctx, lock); err != nil {
			return LockDecision{}, err
		}
		return LockDecision{Outcome: LockGranted, Lock: lock}, nil
	}

	if sameHolder(current, req.UserEmail) {
		return LockDecision{Outcome: LockAlreadyHeld, Lock: current}, nil
	}

	if !l.IsLockExpired(current, now) {
		return LockDecision{Outcome: LockDenied, Lock: current}, nil
	}

	// expired lock of another user, replace it
	if err = l.Store.DeleteCourtLocks(ctx, req.CourtSlug, current.UserEmail); err != nil {
		return LockDecision{}, err
	}
	lock := lock_store.NewCourtLock(req.CourtSlug, req.UserEmail, now)
	if err = l.Store.AddCourtLock(ctx, lock); err != nil {
		return LockDecision{}, err
	}
	previous := current
	return LockDecision{Outcome: LockTakenOver, Lock: lock, Previous: &previous}, nil
}

func (l *LockService) logDecision(req lockRequest, decision LockDecision) {
	entry := log.WithFields(log.Fields{
		"court_slug": req.CourtSlug,
		"user_email": req.UserEmail,
		"outcome":    decision.Outcome,
	})

	switch decision.Outcome {
	case LockTakenOver:
		entry.WithFields(log.Fields{
			"previous_holder":   decision.Previous.UserEmail,
			"previous_acquired": decision.Previous.AcquiredAt,
		}).Warn("expired court lock taken over")
	case LockDenied:
		entry.WithField("holder", decision.Lock.UserEmail).Info("court lock denied")
	default:
		entry.Info("court lock granted")
	}
}

func (l *LockService) notifyTakeover(ctx context.Context, previous, current lock_store.CourtLock) {
	if l.Notifier == nil {
		return
	}
	if err := l.Notifier.NotifyTakeover(ctx, previous, current); err != nil {
		log.WithFields(log.Fields{
			"court_slug":      current.CourtSlug,
			"previous_holder": previous.UserEmail,
		}).Errorf("cannot notify court lock takeover, %v", err)
	}
}
