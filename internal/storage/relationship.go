package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/jwebster45206/parley/pkg/relationship"
)

// Relationship operations (Redis-backed)

func (r *RedisStorage) SaveRelationship(ctx context.Context, rec *relationship.Record) error {
	if rec == nil {
		return errors.New("relationship cannot be nil")
	}

	data, err := json.Marshal(rec)
	if err != nil {
		r.logger.Error("Failed to marshal relationship", "player_id", rec.PlayerID, "npc_id", rec.NPCID, "error", err)
		return fmt.Errorf("failed to marshal relationship: %w", err)
	}

	// Relationships persist across sessions, so there is no TTL.
	cmd := r.client.Set(ctx, relationshipKey(rec.PlayerID, rec.NPCID), string(data), 0)
	if err := cmd.Err(); err != nil {
		r.logger.Error("Failed to save relationship", "player_id", rec.PlayerID, "npc_id", rec.NPCID, "error", err)
		return fmt.Errorf("failed to save relationship: %w", err)
	}

	return nil
}

func (r *RedisStorage) LoadRelationship(ctx context.Context, playerID, npcID string) (*relationship.Record, error) {
	cmd := r.client.Get(ctx, relationshipKey(playerID, npcID))
	if err := cmd.Err(); err != nil {
		if errors.Is(err, redis.Nil) {
			r.logger.Debug("Relationship not found", "player_id", playerID, "npc_id", npcID)
			return nil, nil // Return nil for not found
		}
		r.logger.Error("Failed to load relationship", "player_id", playerID, "npc_id", npcID, "error", err)
		return nil, fmt.Errorf("failed to load relationship: %w", err)
	}

	var rec relationship.Record
	if err := json.Unmarshal([]byte(cmd.Val()), &rec); err != nil {
		r.logger.Error("Failed to unmarshal relationship", "player_id", playerID, "npc_id", npcID, "error", err)
		return nil, fmt.Errorf("failed to unmarshal relationship: %w", err)
	}
	if rec.Tokens == nil {
		rec.Tokens = relationship.Tokens{}
	}

	return &rec, nil
}
