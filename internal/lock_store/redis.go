package lock_store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/hmcts/fact-admin/internal/fact_errors"
	"github.com/redis/go-redis/v9"
)

const redisKeyPrefix = "fact:court_lock:"

// deletes the lock only while it is still held by ARGV[1], ignoring case
const deleteIfHolderScript = `
local current = redis.call("get", KEYS[1])
if not current then
	return 0
end
if string.lower(cjson.decode(current)["user_email"]) == string.lower(ARGV[1]) then
	return redis.call("del", KEYS[1])
end
return 0
`

// RedisStore keeps one key per court. Keys expire after Retention, which
// stands in for a reaper.
type RedisStore struct {
	Client    *redis.Client
	Retention time.Duration
}

func NewRedisStore(client *redis.Client, retention time.Duration) *RedisStore {
	return &RedisStore{Client: client, Retention: retention}
}

func redisKey(courtSlug string) string {
	return redisKeyPrefix + courtSlug
}

func (r *RedisStore) GetCourtLocks(ctx context.Context, courtSlug string) ([]CourtLock, error) {
	raw, err := r.Client.Get(ctx, redisKey(courtSlug)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("cannot fetch lock of court %s, %w", courtSlug, fact_errors.WrapIPCError(err))
	}

	var lock CourtLock
	if err = json.Unmarshal(raw, &lock); err != nil {
		return nil, fmt.Errorf(
			"%w, corrupted lock record for court %s, %w",
			fact_errors.ErrInternal,
			courtSlug,
			err,
		)
	}
	return []CourtLock{lock}, nil
}

func (r *RedisStore) AddCourtLock(ctx context.Context, lock CourtLock) error {
	raw, err := json.Marshal(lock)
	if err != nil {
		return fmt.Errorf("%w, cannot encode lock, %w", fact_errors.ErrInternal, err)
	}

	created, err := r.Client.SetNX(ctx, redisKey(lock.CourtSlug), raw, r.Retention).Result()
	if err != nil {
		return fmt.Errorf("cannot create lock on court %s, %w", lock.CourtSlug, fact_errors.WrapIPCError(err))
	}
	if !created {
		return fmt.Errorf(
			"%w, court %s already has a lock",
			fact_errors.ErrEntityAlreadyExist,
			lock.CourtSlug,
		)
	}
	return nil
}

func (r *RedisStore) DeleteCourtLocks(ctx context.Context, courtSlug, userEmail string) error {
	err := r.Client.Eval(ctx, deleteIfHolderScript, []string{redisKey(courtSlug)}, userEmail).Err()
	if err != nil && !errors.Is(err, redis.Nil) {
		return fmt.Errorf(
			"cannot delete lock of %s on court %s, %w",
			userEmail,
			courtSlug,
			fact_errors.WrapIPCError(err),
		)
	}
	return nil
}
