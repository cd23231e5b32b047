package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/jwebster45206/parley/pkg/obligation"
	pstorage "github.com/jwebster45206/parley/pkg/storage"
)

// Obligation queue operations (Redis list, head is highest priority)

// maxWatchRetries bounds how often a queue transaction is retried after a
// concurrent writer touched the key.
const maxWatchRetries = 100

// watchQueue runs fn inside WATCH on key, retrying while another client
// changes the queue under it.
func (r *RedisStorage) watchQueue(ctx context.Context, key string, fn func(tx *redis.Tx) error) error {
	for i := 0; i < maxWatchRetries; i++ {
		err := r.client.Watch(ctx, fn, key)
		if !errors.Is(err, redis.TxFailedErr) {
			return err
		}
	}
	return fmt.Errorf("obligation queue %s kept changing: %w", key, redis.TxFailedErr)
}

// EnqueueObligation appends o with the next priority. Reading the length and
// pushing happen in one transaction so concurrent enqueues never share a
// priority.
func (r *RedisStorage) EnqueueObligation(ctx context.Context, playerID string, o *obligation.Obligation) error {
	if o == nil {
		return errors.New("obligation cannot be nil")
	}
	key := obligationsKey(playerID)

	err := r.watchQueue(ctx, key, func(tx *redis.Tx) error {
		n, err := tx.LLen(ctx, key).Result()
		if err != nil {
			return fmt.Errorf("failed to read obligation queue length: %w", err)
		}
		o.Priority = int(n)

		data, err := json.Marshal(o)
		if err != nil {
			return fmt.Errorf("failed to marshal obligation: %w", err)
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.RPush(ctx, key, data)
			return nil
		})
		return err
	})
	if err != nil {
		r.logger.Error("Failed to enqueue obligation", "player_id", playerID, "obligation_id", o.ID, "error", err)
		return fmt.Errorf("failed to enqueue obligation: %w", err)
	}

	r.logger.Debug("Obligation enqueued", "player_id", playerID, "obligation_id", o.ID, "priority", o.Priority)
	return nil
}

func (r *RedisStorage) ListObligations(ctx context.Context, playerID string) ([]*obligation.Obligation, error) {
	return r.listObligations(ctx, r.client, obligationsKey(playerID))
}

// PrioritizeObligations rewrites the queue inside a WATCH transaction so a
// concurrent enqueue is never lost.
func (r *RedisStorage) PrioritizeObligations(ctx context.Context, playerID, senderID string) error {
	key := obligationsKey(playerID)

	err := r.watchQueue(ctx, key, func(tx *redis.Tx) error {
		queue, err := r.listObligations(ctx, tx, key)
		if err != nil {
			return err
		}
		if len(queue) == 0 {
			return nil
		}
		queue = pstorage.Prioritize(queue, senderID)

		values := make([]interface{}, 0, len(queue))
		for _, o := range queue {
			data, err := json.Marshal(o)
			if err != nil {
				return fmt.Errorf("failed to marshal obligation: %w", err)
			}
			values = append(values, data)
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Del(ctx, key)
			pipe.RPush(ctx, key, values...)
			return nil
		})
		return err
	})
	if err != nil {
		r.logger.Error("Failed to prioritize obligations", "player_id", playerID, "sender_id", senderID, "error", err)
		return fmt.Errorf("failed to prioritize obligations: %w", err)
	}
	return nil
}

func (r *RedisStorage) listObligations(ctx context.Context, c redis.Cmdable, key string) ([]*obligation.Obligation, error) {
	items, err := c.LRange(ctx, key, 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read obligation queue: %w", err)
	}

	out := make([]*obligation.Obligation, 0, len(items))
	for _, item := range items {
		var o obligation.Obligation
		if err := json.Unmarshal([]byte(item), &o); err != nil {
			return nil, fmt.Errorf("failed to unmarshal obligation: %w", err)
		}
		out = append(out, &o)
	}
	return out, nil
}
