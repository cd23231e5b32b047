package storage

import (
	"context"
	"fmt"
	"strconv"

	"github.com/jwebster45206/parley/pkg/player"
)

// Experience operations (Redis hash of stat to XP)

func (r *RedisStorage) GrantExperience(ctx context.Context, playerID string, stat player.Stat, amount int) error {
	if !stat.Valid() {
		return fmt.Errorf("unknown stat %q", stat)
	}
	if err := r.client.HIncrBy(ctx, experienceKey(playerID), string(stat), int64(amount)).Err(); err != nil {
		r.logger.Error("Failed to grant experience", "player_id", playerID, "stat", stat, "error", err)
		return fmt.Errorf("failed to grant experience: %w", err)
	}
	return nil
}

func (r *RedisStorage) LoadPlayerStats(ctx context.Context, playerID string) (*player.Stats, error) {
	fields, err := r.client.HGetAll(ctx, experienceKey(playerID)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to load player stats: %w", err)
	}
	if len(fields) == 0 {
		return nil, nil
	}

	stats := player.NewStats(playerID)
	for field, value := range fields {
		xp, err := strconv.Atoi(value)
		if err != nil {
			return nil, fmt.Errorf("failed to parse %s experience: %w", field, err)
		}
		stats.XP[player.Stat(field)] = xp
	}
	return stats, nil
}
