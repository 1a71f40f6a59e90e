package lock_store

import (
	"context"
	"fmt"
	"time"

	"github.com/hmcts/fact-admin/internal/database"
	"github.com/hmcts/fact-admin/internal/fact_errors"
	log "github.com/sirupsen/logrus"
)

var (
	msgForeignKey = map[string]string{
		"court_locks_court_slug_fkey": "no court exist with that slug",
	}

	errMsgs = map[string]map[string]string{
		fact_errors.CodeForeignKeyConstraint: msgForeignKey,
	}
)

// PostgresStore keeps locks in the court_locks table. The unique constraint on
// court_slug makes a second insert for the same court fail.
type PostgresStore struct {
	DB *database.Queries
}

func NewPostgresStore(db *database.Queries) *PostgresStore {
	return &PostgresStore{DB: db}
}

func (p *PostgresStore) GetCourtLocks(ctx context.Context, courtSlug string) ([]CourtLock, error) {
	dbLocks, err := p.DB.GetCourtLocks(ctx, courtSlug)
	if err != nil {
		return nil, fact_errors.HandleDBErrors(
			err,
			errMsgs,
			fmt.Sprintf("cannot fetch locks of court %s", courtSlug),
		)
	}

	locks := make([]CourtLock, 0, len(dbLocks))
	for _, dbLock := range dbLocks {
		locks = append(locks, dbLockToCourtLock(dbLock))
	}
	return locks, nil
}

func (p *PostgresStore) AddCourtLock(ctx context.Context, lock CourtLock) error {
	_, err := p.DB.CreateCourtLock(ctx, database.CreateCourtLockParams{
		ID:           lock.ID,
		CourtSlug:    lock.CourtSlug,
		UserEmail:    lock.UserEmail,
		LockAcquired: lock.AcquiredAt,
	})
	if err == nil {
		return nil
	}

	if fact_errors.IsUniqueViolation(err) {
		err = fmt.Errorf(
			"%w, court %s already has a lock, %w",
			fact_errors.ErrEntityAlreadyExist,
			lock.CourtSlug,
			err,
		)
		log.WithField("court_slug", lock.CourtSlug).Debug(err)
		return err
	}

	return fact_errors.HandleDBErrors(
		err,
		errMsgs,
		fmt.Sprintf("cannot create lock on court %s", lock.CourtSlug),
	)
}

func (p *PostgresStore) DeleteCourtLocks(ctx context.Context, courtSlug, userEmail string) error {
	_, err := p.DB.DeleteCourtLocks(ctx, database.DeleteCourtLocksParams{
		CourtSlug: courtSlug,
		UserEmail: userEmail,
	})
	if err != nil {
		return fact_errors.HandleDBErrors(
			err,
			errMsgs,
			fmt.Sprintf("cannot delete locks of %s on court %s", userEmail, courtSlug),
		)
	}
	return nil
}

func (p *PostgresStore) DeleteCourtLocksAcquiredBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	deleted, err := p.DB.DeleteCourtLocksAcquiredBefore(ctx, cutoff)
	if err != nil {
		return 0, fact_errors.HandleDBErrors(
			err,
			errMsgs,
			fmt.Sprintf("cannot delete locks acquired before %v", cutoff),
		)
	}
	return deleted, nil
}

func dbLockToCourtLock(dbLock database.CourtLock) CourtLock {
	return CourtLock{
		ID:         dbLock.ID,
		CourtSlug:  dbLock.CourtSlug,
		UserEmail:  dbLock.UserEmail,
		AcquiredAt: dbLock.LockAcquired.UTC(),
	}
}
