// Package redis provides the Redis-backed pending wager repository. Pending
// wagers are volatile coordination state, not history, so they live in Redis
// the way the bet queue does in the color game this module grew out of.
package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/jiyoung145900-png/daisy-vip/internal/modules/prize_event/domain"
)

const pendingKey = "prize_event:pending_wagers"

// WagerRepository implements domain.WagerRepository using a Redis hash
// keyed by user id.
type WagerRepository struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewWagerRepository creates a new Redis wager repository
func NewWagerRepository(rdb *redis.Client) *WagerRepository {
	return &WagerRepository{
		rdb: rdb,
		ttl: 24 * time.Hour,
	}
}

func storeErr(err error) error {
	return fmt.Errorf("%w: %v", domain.ErrStoreUnavailable, err)
}

func (r *WagerRepository) Save(ctx context.Context, wager *domain.Wager) error {
	data, err := json.Marshal(wager)
	if err != nil {
		return err
	}

	// HSETNX makes the save conditional: the field only lands when no
	// pending wager exists, so concurrent placements cannot overwrite
	// each other.
	pipe := r.rdb.Pipeline()
	set := pipe.HSetNX(ctx, pendingKey, strconv.FormatInt(wager.UserID, 10), data)
	pipe.Expire(ctx, pendingKey, r.ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return storeErr(err)
	}
	if !set.Val() {
		return domain.ErrAlreadyPending
	}
	return nil
}

func (r *WagerRepository) Get(ctx context.Context, userID int64) (*domain.Wager, error) {
	data, err := r.rdb.HGet(ctx, pendingKey, strconv.FormatInt(userID, 10)).Result()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, storeErr(err)
	}

	var wager domain.Wager
	if err := json.Unmarshal([]byte(data), &wager); err != nil {
		return nil, fmt.Errorf("corrupt pending wager for user %d: %w", userID, err)
	}
	return &wager, nil
}

func (r *WagerRepository) Clear(ctx context.Context, userID int64) error {
	if err := r.rdb.HDel(ctx, pendingKey, strconv.FormatInt(userID, 10)).Err(); err != nil {
		return storeErr(err)
	}
	return nil
}

func (r *WagerRepository) PendingForRound(ctx context.Context, roundID int64) ([]*domain.Wager, error) {
	all, err := r.AllPending(ctx)
	if err != nil {
		return nil, err
	}

	matched := make([]*domain.Wager, 0, len(all))
	for _, w := range all {
		if w.RoundID == roundID {
			matched = append(matched, w)
		}
	}
	return matched, nil
}

func (r *WagerRepository) AllPending(ctx context.Context) ([]*domain.Wager, error) {
	dataMap, err := r.rdb.HGetAll(ctx, pendingKey).Result()
	if err != nil {
		return nil, storeErr(err)
	}

	wagers := make([]*domain.Wager, 0, len(dataMap))
	for _, data := range dataMap {
		var wager domain.Wager
		if err := json.Unmarshal([]byte(data), &wager); err != nil {
			continue
		}
		wagers = append(wagers, &wager)
	}
	return wagers, nil
}
