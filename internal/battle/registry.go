package battle

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/worldbinder/backend/internal/models"
)

var ErrBattleNotFound = errors.New("battle not found")

const (
	battleKeyPrefix  = "battle:"
	resolveLockSlug  = ":done"
	scheduleKey      = "battles:due"
	defaultBattleTTL = 24 * time.Hour
)

// Registry is the shared battle store. Battles live in Redis so status polls
// work from any replica and the resolution schedule survives an API restart.
type Registry struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewRegistry(rdb *redis.Client) *Registry {
	return &Registry{rdb: rdb, ttl: defaultBattleTTL}
}

func battleKey(id string) string {
	return battleKeyPrefix + id
}

// Put stores a new battle and enqueues it for resolution at its deadline.
func (r *Registry) Put(ctx context.Context, b *models.Battle) error {
	data, err := json.Marshal(b)
	if err != nil {
		return err
	}

	pipe := r.rdb.TxPipeline()
	pipe.Set(ctx, battleKey(b.ID), data, r.ttl)
	pipe.ZAdd(ctx, scheduleKey, redis.Z{
		Score:  float64(b.ResolveAt.Unix()),
		Member: b.ID,
	})
	_, err = pipe.Exec(ctx)
	return err
}

func (r *Registry) Get(ctx context.Context, id string) (*models.Battle, error) {
	data, err := r.rdb.Get(ctx, battleKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrBattleNotFound
	}
	if err != nil {
		return nil, err
	}

	var b models.Battle
	if err := json.Unmarshal(data, &b); err != nil {
		return nil, fmt.Errorf("corrupt battle record %s: %w", id, err)
	}
	return &b, nil
}

// Update rewrites the battle record, preserving the remaining TTL.
func (r *Registry) Update(ctx context.Context, b *models.Battle) error {
	data, err := json.Marshal(b)
	if err != nil {
		return err
	}
	return r.rdb.Set(ctx, battleKey(b.ID), data, redis.KeepTTL).Err()
}

// TryAcquireResolve claims the single resolution slot for a battle. Exactly
// one caller ever gets true; everyone else must treat the battle as handled.
func (r *Registry) TryAcquireResolve(ctx context.Context, id string) (bool, error) {
	return r.rdb.SetNX(ctx, battleKey(id)+resolveLockSlug, 1, r.ttl).Result()
}

// ReleaseResolve hands the resolution slot back after a failed attempt so a
// later retry can claim it again.
func (r *Registry) ReleaseResolve(ctx context.Context, id string) error {
	return r.rdb.Del(ctx, battleKey(id)+resolveLockSlug).Err()
}

// SaveOutcome records the settled result inside the lock key. If writing the
// battle record itself fails, a later resolver can read the outcome back and
// finish the status transition without touching the ledger again.
func (r *Registry) SaveOutcome(ctx context.Context, id string, result *models.BattleResult) error {
	data, err := json.Marshal(result)
	if err != nil {
		return err
	}
	return r.rdb.Set(ctx, battleKey(id)+resolveLockSlug, data, redis.KeepTTL).Err()
}

// Outcome returns the settled result stored under the lock key, or nil when
// settlement has not completed (key absent or still the bare lock marker).
func (r *Registry) Outcome(ctx context.Context, id string) (*models.BattleResult, error) {
	data, err := r.rdb.Get(ctx, battleKey(id)+resolveLockSlug).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var result models.BattleResult
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, nil
	}
	return &result, nil
}

// Due returns battle ids whose deadline is at or before now.
func (r *Registry) Due(ctx context.Context, now time.Time, limit int64) ([]string, error) {
	return r.rdb.ZRangeByScore(ctx, scheduleKey, &redis.ZRangeBy{
		Min:   "-inf",
		Max:   strconv.FormatInt(now.Unix(), 10),
		Count: limit,
	}).Result()
}

// Dequeue drops a battle from the due schedule once it has been handled.
func (r *Registry) Dequeue(ctx context.Context, id string) error {
	return r.rdb.ZRem(ctx, scheduleKey, id).Err()
}
