package lock_store

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/hmcts/fact-admin/internal/fact_errors"
)

// MemoryStore keeps locks in process memory. Used for local development and tests.
type MemoryStore struct {
	sync.Mutex
	locks map[string]CourtLock
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{locks: make(map[string]CourtLock)}
}

func (m *MemoryStore) GetCourtLocks(_ context.Context, courtSlug string) ([]CourtLock, error) {
	m.Lock()
	defer m.Unlock()
	lock, exists := m.locks[courtSlug]
	if !exists {
		return nil, nil
	}
	return []CourtLock{lock}, nil
}

func (m *MemoryStore) AddCourtLock(_ context.Context, lock CourtLock) error {
	m.Lock()
	defer m.Unlock()
	if existing, exists := m.locks[lock.CourtSlug]; exists {
		return fmt.Errorf(
			"%w, court %s is already locked by %s",
			fact_errors.ErrEntityAlreadyExist,
			lock.CourtSlug,
			existing.UserEmail,
		)
	}
	m.locks[lock.CourtSlug] = lock
	return nil
}

func (m *MemoryStore) DeleteCourtLocks(_ context.Context, courtSlug, userEmail string) error {
	m.Lock()
	defer m.Unlock()
	if existing, exists := m.locks[courtSlug]; exists && strings.EqualFold(existing.UserEmail, userEmail) {
		delete(m.locks, courtSlug)
	}
	return nil
}

func (m *MemoryStore) DeleteCourtLocksAcquiredBefore(_ context.Context, cutoff time.Time) (int64, error) {
	m.Lock()
	defer m.Unlock()
	var deleted int64
	for slug, lock := range m.locks {
		if lock.AcquiredAt.Before(cutoff) {
			delete(m.locks, slug)
			deleted++
		}
	}
	return deleted, nil
}
