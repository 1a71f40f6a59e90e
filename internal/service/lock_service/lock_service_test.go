package lock_service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/hmcts/fact-admin/internal/email"
	"github.com/hmcts/fact-admin/internal/fact_errors"
	"github.com/hmcts/fact-admin/internal/lock_store"
	"github.com/hmcts/fact-admin/internal/service"
	"github.com/hmcts/fact-admin/internal/service/user_service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/gomail.v2"
)

const slug = "leeds-combined-court"

var t0 = time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)

// recordingStore wraps a memory store and records every mutation.
type recordingStore struct {
	*lock_store.MemoryStore

	mu      sync.Mutex
	calls   []string
	getErr  error
	addErrs []error
}

func newRecordingStore(locks ...lock_store.CourtLock) *recordingStore {
	s := &recordingStore{MemoryStore: lock_store.NewMemoryStore()}
	for _, lock := range locks {
		if err := s.MemoryStore.AddCourtLock(context.Background(), lock); err != nil {
			panic(err)
		}
	}
	return s
}

func (s *recordingStore) GetCourtLocks(ctx context.Context, courtSlug string) ([]lock_store.CourtLock, error) {
	if s.getErr != nil {
		return nil, s.getErr
	}
	return s.MemoryStore.GetCourtLocks(ctx, courtSlug)
}

func (s *recordingStore) AddCourtLock(ctx context.Context, lock lock_store.CourtLock) error {
	s.mu.Lock()
	s.calls = append(s.calls, fmt.Sprintf("add %s %s", lock.CourtSlug, lock.UserEmail))
	var injected error
	if len(s.addErrs) > 0 {
		injected, s.addErrs = s.addErrs[0], s.addErrs[1:]
	}
	s.mu.Unlock()
	if injected != nil {
		return injected
	}
	return s.MemoryStore.AddCourtLock(ctx, lock)
}

func (s *recordingStore) DeleteCourtLocks(ctx context.Context, courtSlug, userEmail string) error {
	s.mu.Lock()
	s.calls = append(s.calls, fmt.Sprintf("delete %s %s", courtSlug, userEmail))
	s.mu.Unlock()
	return s.MemoryStore.DeleteCourtLocks(ctx, courtSlug, userEmail)
}

func (s *recordingStore) mutations() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.calls...)
}

type fixedClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fixedClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fixedClock) Set(now time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = now
}

type recordingNotifier struct {
	previous, current []lock_store.CourtLock
	err               error
}

func (n *recordingNotifier) NotifyTakeover(_ context.Context, previous, current lock_store.CourtLock) error {
	n.previous = append(n.previous, previous)
	n.current = append(n.current, current)
	return n.err
}

func newLockService(store LockStore, now time.Time) (*LockService, *fixedClock) {
	clock := &fixedClock{now: now}
	return &LockService{
		Store:             store,
		Timeout:           2 * time.Minute,
		Clock:             clock.Now,
		UserServiceConfig: &user_service.UserService{},
	}, clock
}

func heldLock(email string, acquiredAt time.Time) lock_store.CourtLock {
	return lock_store.NewCourtLock(slug, email, acquiredAt)
}

func TestAcquireWithoutLockGrantsFreshLock(t *testing.T) {
	store := newRecordingStore()
	l, _ := newLockService(store, t0)

	decision, err := l.AcquireCourtLock(context.Background(), slug, "a@x.com")
	require.NoError(t, err)

	assert.Equal(t, LockGranted, decision.Outcome)
	assert.True(t, decision.Granted())
	assert.Empty(t, decision.DenialMessage())
	assert.Equal(t, slug, decision.Lock.CourtSlug)
	assert.Equal(t, "a@x.com", decision.Lock.UserEmail)
	assert.Equal(t, t0, decision.Lock.AcquiredAt)
	assert.Equal(t, []string{"add " + slug + " a@x.com"}, store.mutations())

	locks, err := store.GetCourtLocks(context.Background(), slug)
	require.NoError(t, err)
	assert.Equal(t, []lock_store.CourtLock{decision.Lock}, locks)
}

func TestAcquireBySameHolderIsPassThrough(t *testing.T) {
	existing := heldLock("a@x.com", t0)
	store := newRecordingStore(existing)
	l, _ := newLockService(store, t0.Add(10*time.Minute))

	// case does not make a different user
	for _, email := range []string{"a@x.com", "A@X.com"} {
		decision, err := l.AcquireCourtLock(context.Background(), slug, email)
		require.NoError(t, err)
		assert.Equal(t, LockAlreadyHeld, decision.Outcome)
		assert.True(t, decision.Granted())
		assert.Equal(t, existing, decision.Lock)
	}
	assert.Empty(t, store.mutations())
}

func TestAcquireStoresEmailAsGiven(t *testing.T) {
	store := newRecordingStore()
	l, _ := newLockService(store, t0)

	decision, err := l.AcquireCourtLock(context.Background(), slug, "Alex.Smith@X.com")
	require.NoError(t, err)
	assert.Equal(t, LockGranted, decision.Outcome)
	assert.Equal(t, "Alex.Smith@X.com", decision.Lock.UserEmail)
	assert.Equal(t, []string{"add " + slug + " Alex.Smith@X.com"}, store.mutations())
}

func TestAcquireDeniedWhileOtherHolderIsLive(t *testing.T) {
	store := newRecordingStore(heldLock("a@x.com", t0))
	l, _ := newLockService(store, t0.Add(time.Minute))

	decision, err := l.AcquireCourtLock(context.Background(), slug, "b@x.com")
	require.NoError(t, err)

	assert.Equal(t, LockDenied, decision.Outcome)
	assert.False(t, decision.Granted())
	assert.Equal(t, "a@x.com", decision.Lock.UserEmail)
	assert.Equal(t,
		"leeds-combined-court is currently in use by a@x.com. Please contact them to finish their changes, or try again later.",
		decision.DenialMessage(),
	)
	assert.NotContains(t, decision.DenialMessage(), "b@x.com")
	assert.Empty(t, store.mutations())
}

func TestAcquireTakesOverExpiredLock(t *testing.T) {
	previous := heldLock("a@x.com", t0)
	store := newRecordingStore(previous)
	l, _ := newLockService(store, t0.Add(3*time.Minute))
	notifier := &recordingNotifier{}
	l.Notifier = notifier

	decision, err := l.AcquireCourtLock(context.Background(), slug, "b@x.com")
	require.NoError(t, err)

	assert.Equal(t, LockTakenOver, decision.Outcome)
	assert.True(t, decision.Granted())
	require.NotNil(t, decision.Previous)
	assert.Equal(t, previous, *decision.Previous)
	assert.Equal(t, "b@x.com", decision.Lock.UserEmail)
	assert.Equal(t, t0.Add(3*time.Minute), decision.Lock.AcquiredAt)
	assert.Equal(t, []string{
		"delete " + slug + " a@x.com",
		"add " + slug + " b@x.com",
	}, store.mutations())

	assert.Equal(t, []lock_store.CourtLock{previous}, notifier.previous)
	assert.Equal(t, []lock_store.CourtLock{decision.Lock}, notifier.current)
}

func TestAcquireAtExactTimeoutIsDenied(t *testing.T) {
	store := newRecordingStore(heldLock("a@x.com", t0))
	l, clock := newLockService(store, t0.Add(2*time.Minute))

	decision, err := l.AcquireCourtLock(context.Background(), slug, "b@x.com")
	require.NoError(t, err)
	assert.Equal(t, LockDenied, decision.Outcome)
	assert.Empty(t, store.mutations())

	clock.Set(t0.Add(2*time.Minute + time.Millisecond))
	decision, err = l.AcquireCourtLock(context.Background(), slug, "b@x.com")
	require.NoError(t, err)
	assert.Equal(t, LockTakenOver, decision.Outcome)
}

func TestAcquireUsesConfiguredTimeout(t *testing.T) {
	store := newRecordingStore(heldLock("a@x.com", t0))
	l, _ := newLockService(store, t0.Add(3*time.Minute))
	l.Timeout = 5 * time.Minute

	decision, err := l.AcquireCourtLock(context.Background(), slug, "b@x.com")
	require.NoError(t, err)
	assert.Equal(t, LockDenied, decision.Outcome)
}

func TestAcquireConsultsMostRecentLock(t *testing.T) {
	older := heldLock("a@x.com", t0)
	newer := heldLock("c@x.com", t0.Add(90*time.Second))
	store := &fixedLocksStore{locks: []lock_store.CourtLock{older, newer}}
	l, _ := newLockService(store, t0.Add(3*time.Minute))

	// the older lock alone would be expired
	decision, err := l.AcquireCourtLock(context.Background(), slug, "b@x.com")
	require.NoError(t, err)
	assert.Equal(t, LockDenied, decision.Outcome)
	assert.Equal(t, "c@x.com", decision.Lock.UserEmail)
}

func TestAcquireRejectsInvalidInput(t *testing.T) {
	store := newRecordingStore()
	l, _ := newLockService(store, t0)

	_, err := l.AcquireCourtLock(context.Background(), "", "a@x.com")
	assert.ErrorIs(t, err, fact_errors.ErrInvalidInput)

	_, err = l.AcquireCourtLock(context.Background(), slug, "not-an-email")
	assert.ErrorIs(t, err, fact_errors.ErrInvalidInput)

	assert.Empty(t, store.mutations())
}

func TestAcquirePropagatesStoreErrors(t *testing.T) {
	storeErr := fmt.Errorf("%w, connection refused", fact_errors.ErrInternal)

	t.Run("read", func(t *testing.T) {
		store := newRecordingStore()
		store.getErr = storeErr
		l, _ := newLockService(store, t0)

		_, err := l.AcquireCourtLock(context.Background(), slug, "a@x.com")
		assert.ErrorIs(t, err, storeErr)
		assert.Empty(t, store.mutations())
	})

	t.Run("write", func(t *testing.T) {
		store := newRecordingStore()
		store.addErrs = []error{storeErr}
		l, _ := newLockService(store, t0)

		_, err := l.AcquireCourtLock(context.Background(), slug, "a@x.com")
		assert.ErrorIs(t, err, storeErr)
		// no retry for errors other than a lost race
		assert.Len(t, store.mutations(), 1)
	})
}

func TestAcquireIgnoresNotifierFailure(t *testing.T) {
	store := newRecordingStore(heldLock("a@x.com", t0))
	l, _ := newLockService(store, t0.Add(time.Hour))
	l.Notifier = &recordingNotifier{err: errors.New("smtp down")}

	decision, err := l.AcquireCourtLock(context.Background(), slug, "b@x.com")
	require.NoError(t, err)
	assert.Equal(t, LockTakenOver, decision.Outcome)
}

// stuckSender never finishes a send until release is closed.
type stuckSender struct {
	release chan struct{}
}

func (s *stuckSender) DialAndSend(...*gomail.Message) error {
	<-s.release
	return nil
}

func TestAcquireIsNotHeldUpByFullMailQueue(t *testing.T) {
	sender := &stuckSender{release: make(chan struct{})}
	mail := &email.EmailService{From: "fact@example.com", Sender: sender}
	mail.Start(1)
	defer mail.Stop()
	defer close(sender.release)

	// the worker is stuck on the first mail and the queue behind it is full
	for range 101 {
		require.NoError(t, mail.NewMail(context.Background(), "s", "b", email.KeyEmailBodyPlain, email.PurposeLockTakeover, "z@x.com"))
	}

	store := newRecordingStore(heldLock("a@x.com", t0))
	l, _ := newLockService(store, t0.Add(time.Hour))
	l.Notifier = &email.TakeoverNotifier{Email: mail, QueueWait: 20 * time.Millisecond}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	start := time.Now()
	decision, err := l.AcquireCourtLock(ctx, slug, "b@x.com")
	require.NoError(t, err)
	assert.Equal(t, LockTakenOver, decision.Outcome)
	assert.Less(t, time.Since(start), time.Second)
}

func TestAcquireRetriesLostRace(t *testing.T) {
	alreadyExists := fmt.Errorf("%w, court already has a lock", fact_errors.ErrEntityAlreadyExist)

	t.Run("decides again", func(t *testing.T) {
		store := newRecordingStore()
		store.addErrs = []error{alreadyExists}
		l, _ := newLockService(store, t0)

		decision, err := l.AcquireCourtLock(context.Background(), slug, "a@x.com")
		require.NoError(t, err)
		assert.Equal(t, LockGranted, decision.Outcome)
		assert.Len(t, store.mutations(), 2)
	})

	t.Run("gives up", func(t *testing.T) {
		store := newRecordingStore()
		store.addErrs = []error{alreadyExists, alreadyExists, alreadyExists}
		l, _ := newLockService(store, t0)

		_, err := l.AcquireCourtLock(context.Background(), slug, "a@x.com")
		assert.ErrorIs(t, err, fact_errors.ErrConflict)
		assert.Len(t, store.mutations(), maxAcquireAttempts)
	})
}

// barrierStore holds the first two reads until both have happened, so two
// requests both see an unlocked court.
type barrierStore struct {
	*lock_store.MemoryStore
	reads   atomic.Int32
	arrived sync.WaitGroup
}

func (b *barrierStore) GetCourtLocks(ctx context.Context, courtSlug string) ([]lock_store.CourtLock, error) {
	locks, err := b.MemoryStore.GetCourtLocks(ctx, courtSlug)
	if b.reads.Add(1) <= 2 {
		b.arrived.Done()
		b.arrived.Wait()
	}
	return locks, err
}

func TestConcurrentFirstAcquisitionsGrantOnce(t *testing.T) {
	store := &barrierStore{MemoryStore: lock_store.NewMemoryStore()}
	store.arrived.Add(2)
	l, _ := newLockService(store, t0)

	emails := []string{"a@x.com", "b@x.com"}
	decisions := make([]LockDecision, len(emails))
	errs := make([]error, len(emails))

	var wg sync.WaitGroup
	for i, email := range emails {
		wg.Add(1)
		go func() {
			defer wg.Done()
			decisions[i], errs[i] = l.AcquireCourtLock(context.Background(), slug, email)
		}()
	}
	wg.Wait()

	outcomes := map[LockOutcome]int{}
	for i := range emails {
		require.NoError(t, errs[i])
		outcomes[decisions[i].Outcome]++
	}
	assert.Equal(t, map[LockOutcome]int{LockGranted: 1, LockDenied: 1}, outcomes)

	locks, err := store.MemoryStore.GetCourtLocks(context.Background(), slug)
	require.NoError(t, err)
	assert.Len(t, locks, 1)
}

func TestConcurrentTakeoversOfExpiredLockTakeOverOnce(t *testing.T) {
	store := &barrierStore{MemoryStore: lock_store.NewMemoryStore()}
	require.NoError(t, store.MemoryStore.AddCourtLock(context.Background(), heldLock("a@x.com", t0)))
	store.arrived.Add(2)
	l, _ := newLockService(store, t0.Add(3*time.Minute))

	emails := []string{"b@x.com", "c@x.com"}
	decisions := make([]LockDecision, len(emails))
	errs := make([]error, len(emails))

	var wg sync.WaitGroup
	for i, email := range emails {
		wg.Add(1)
		go func() {
			defer wg.Done()
			decisions[i], errs[i] = l.AcquireCourtLock(context.Background(), slug, email)
		}()
	}
	wg.Wait()

	outcomes := map[LockOutcome]int{}
	var winner, loser LockDecision
	for i := range emails {
		require.NoError(t, errs[i])
		outcomes[decisions[i].Outcome]++
		if decisions[i].Outcome == LockTakenOver {
			winner = decisions[i]
		} else {
			loser = decisions[i]
		}
	}
	assert.Equal(t, map[LockOutcome]int{LockTakenOver: 1, LockDenied: 1}, outcomes)
	require.NotNil(t, winner.Previous)
	assert.Equal(t, "a@x.com", winner.Previous.UserEmail)
	// the loser is told who won, not about the expired holder
	assert.Equal(t, winner.Lock.UserEmail, loser.Lock.UserEmail)

	locks, err := store.MemoryStore.GetCourtLocks(context.Background(), slug)
	require.NoError(t, err)
	require.Len(t, locks, 1)
	assert.Equal(t, winner.Lock, locks[0])
}

// fixedLocksStore always returns the same locks and refuses writes.
type fixedLocksStore struct {
	locks []lock_store.CourtLock
}

func (f *fixedLocksStore) GetCourtLocks(context.Context, string) ([]lock_store.CourtLock, error) {
	return f.locks, nil
}

func (f *fixedLocksStore) AddCourtLock(context.Context, lock_store.CourtLock) error {
	return errors.New("unexpected write")
}

func (f *fixedLocksStore) DeleteCourtLocks(context.Context, string, string) error {
	return errors.New("unexpected write")
}

func superAdminCtx() context.Context {
	return service.WithClaims(context.Background(), service.SessionClaims{
		Email: "boss@x.com",
		Roles: []string{string(user_service.RoleSuperAdmin)},
	})
}

func adminCtx() context.Context {
	return service.WithClaims(context.Background(), service.SessionClaims{
		Email: "a@x.com",
		Roles: []string{string(user_service.RoleAdmin)},
	})
}

func TestGetCourtLocks(t *testing.T) {
	lock := heldLock("a@x.com", t0)
	store := newRecordingStore(lock)
	l, _ := newLockService(store, t0.Add(3*time.Minute))

	views, err := l.GetCourtLocks(superAdminCtx(), slug)
	require.NoError(t, err)
	require.Len(t, views, 1)
	assert.Equal(t, lock, views[0].CourtLock)
	assert.Equal(t, t0.Add(2*time.Minute), views[0].ExpiresAt)
	assert.True(t, views[0].Expired)

	_, err = l.GetCourtLocks(adminCtx(), slug)
	assert.ErrorIs(t, err, fact_errors.ErrUnAuthorized)

	_, err = l.GetCourtLocks(context.Background(), slug)
	assert.ErrorIs(t, err, fact_errors.ErrUnauthenticated)
}

func TestReleaseCourtLocks(t *testing.T) {
	store := newRecordingStore(heldLock("a@x.com", t0))
	l, _ := newLockService(store, t0)

	err := l.ReleaseCourtLocks(adminCtx(), slug, "a@x.com")
	assert.ErrorIs(t, err, fact_errors.ErrUnAuthorized)
	assert.Empty(t, store.mutations())

	require.NoError(t, l.ReleaseCourtLocks(superAdminCtx(), slug, "A@x.com"))
	assert.Equal(t, []string{"delete " + slug + " A@x.com"}, store.mutations())

	locks, err := store.GetCourtLocks(context.Background(), slug)
	require.NoError(t, err)
	assert.Empty(t, locks)
}

func TestEnsureCourtEditable(t *testing.T) {
	tests := []struct {
		name    string
		locks   []lock_store.CourtLock
		now     time.Time
		email   string
		wantErr error
	}{
		{name: "unlocked", now: t0, email: "b@x.com"},
		{name: "own lock", locks: []lock_store.CourtLock{heldLock("b@x.com", t0)}, now: t0, email: "b@x.com"},
		{name: "expired lock", locks: []lock_store.CourtLock{heldLock("a@x.com", t0)}, now: t0.Add(3 * time.Minute), email: "b@x.com"},
		{name: "live lock", locks: []lock_store.CourtLock{heldLock("a@x.com", t0)}, now: t0.Add(time.Minute), email: "b@x.com", wantErr: fact_errors.ErrConflict},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newRecordingStore(tt.locks...)
			l, _ := newLockService(store, tt.now)

			err := l.EnsureCourtEditable(context.Background(), slug, tt.email)
			if tt.wantErr == nil {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Contains(t, err.Error(), "is currently in use by a@x.com")
			}
			assert.Empty(t, store.mutations())
		})
	}
}

func TestReapExpiredLocks(t *testing.T) {
	store := lock_store.NewMemoryStore()
	ctx := context.Background()
	require.NoError(t, store.AddCourtLock(ctx, lock_store.NewCourtLock("leeds", "a@x.com", t0)))
	require.NoError(t, store.AddCourtLock(ctx, lock_store.NewCourtLock("york", "a@x.com", t0.Add(time.Minute))))
	l, _ := newLockService(store, t0.Add(3*time.Minute))

	// cutoff is t0+1m, so only leeds has expired
	deleted, err := l.ReapExpiredLocks(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), deleted)

	locks, err := store.GetCourtLocks(ctx, "york")
	require.NoError(t, err)
	assert.Len(t, locks, 1)
}

func TestReapUnsupportedStore(t *testing.T) {
	l, _ := newLockService(&fixedLocksStore{}, t0)

	_, err := l.ReapExpiredLocks(context.Background())
	assert.ErrorIs(t, err, fact_errors.ErrInvalidRequest)
	assert.False(t, l.StartLockReaper(context.Background(), time.Second))
}

func TestStartLockReaper(t *testing.T) {
	store := lock_store.NewMemoryStore()
	require.NoError(t, store.AddCourtLock(context.Background(), lock_store.NewCourtLock("leeds", "a@x.com", t0)))
	l, _ := newLockService(store, t0.Add(time.Hour))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.True(t, l.StartLockReaper(ctx, 10*time.Millisecond))

	assert.Eventually(t, func() bool {
		locks, err := store.GetCourtLocks(context.Background(), "leeds")
		return err == nil && len(locks) == 0
	}, time.Second, 10*time.Millisecond)
}
