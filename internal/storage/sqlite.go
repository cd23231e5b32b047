package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/jwebster45206/parley/pkg/obligation"
	"github.com/jwebster45206/parley/pkg/player"
	"github.com/jwebster45206/parley/pkg/relationship"
	pstorage "github.com/jwebster45206/parley/pkg/storage"
)

// SQLiteStorage implements the Storage interface on a single SQLite file,
// for single-player and local play. ":memory:" gives a throwaway store.
type SQLiteStorage struct {
	db     *sql.DB
	logger *slog.Logger
}

var _ pstorage.Storage = (*SQLiteStorage)(nil)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS relationships (
	player_id          TEXT NOT NULL,
	npc_id             TEXT NOT NULL,
	state              TEXT NOT NULL,
	flow               INTEGER NOT NULL DEFAULT 0,
	tokens             TEXT NOT NULL DEFAULT '{}',
	last_obligation_id TEXT NOT NULL DEFAULT '',
	conversations      INTEGER NOT NULL DEFAULT 0,
	updated_at         TEXT NOT NULL,
	PRIMARY KEY (player_id, npc_id)
);
CREATE TABLE IF NOT EXISTS obligations (
	id        TEXT PRIMARY KEY,
	player_id TEXT NOT NULL,
	sender_id TEXT NOT NULL,
	priority  INTEGER NOT NULL,
	payload   TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS obligations_player ON obligations (player_id, priority);
CREATE TABLE IF NOT EXISTS experience (
	player_id TEXT NOT NULL,
	stat      TEXT NOT NULL,
	xp        INTEGER NOT NULL DEFAULT 0,
	PRIMARY KEY (player_id, stat)
);`

// NewSQLiteStorage opens (creating if needed) the database at dbPath.
func NewSQLiteStorage(dbPath string, logger *slog.Logger) (*SQLiteStorage, error) {
	dbPath = strings.TrimSpace(dbPath)
	if dbPath == "" {
		return nil, errors.New("empty sqlite database path")
	}
	if dbPath != ":memory:" {
		parent := filepath.Dir(dbPath)
		if parent != "" && parent != "." {
			if err := os.MkdirAll(parent, 0o755); err != nil {
				return nil, fmt.Errorf("failed to create database directory: %w", err)
			}
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}
	// One connection keeps ":memory:" a single database.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	for _, pragma := range []string{
		`PRAGMA busy_timeout = 5000;`,
		`PRAGMA journal_mode = WAL;`,
		`PRAGMA foreign_keys = ON;`,
	} {
		if _, err := db.ExecContext(ctx, pragma); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to apply %q: %w", pragma, err)
		}
	}
	if _, err := db.ExecContext(ctx, sqliteSchema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	logger.Info("SQLite storage ready", "path", dbPath)
	return &SQLiteStorage{db: db, logger: logger}, nil
}

func (s *SQLiteStorage) Ping(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return fmt.Errorf("sqlite ping failed: %w", err)
	}
	return nil
}

func (s *SQLiteStorage) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *SQLiteStorage) SaveRelationship(ctx context.Context, rec *relationship.Record) error {
	if rec == nil {
		return errors.New("relationship cannot be nil")
	}
	tokens, err := json.Marshal(rec.Tokens)
	if err != nil {
		return fmt.Errorf("failed to marshal tokens: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO relationships (player_id, npc_id, state, flow, tokens, last_obligation_id, conversations, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (player_id, npc_id) DO UPDATE SET
			state = excluded.state,
			flow = excluded.flow,
			tokens = excluded.tokens,
			last_obligation_id = excluded.last_obligation_id,
			conversations = excluded.conversations,
			updated_at = excluded.updated_at`,
		rec.PlayerID, rec.NPCID, rec.State.String(), rec.Flow, string(tokens),
		rec.LastObligationID, rec.Conversations, rec.UpdatedAt.UTC().Format(time.RFC3339Nano))
	if err != nil {
		s.logger.Error("Failed to save relationship", "player_id", rec.PlayerID, "npc_id", rec.NPCID, "error", err)
		return fmt.Errorf("failed to save relationship: %w", err)
	}
	return nil
}

func (s *SQLiteStorage) LoadRelationship(ctx context.Context, playerID, npcID string) (*relationship.Record, error) {
	var (
		state, tokens, updated string
		rec                    = relationship.Record{PlayerID: playerID, NPCID: npcID}
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT state, flow, tokens, last_obligation_id, conversations, updated_at
		FROM relationships WHERE player_id = ? AND npc_id = ?`, playerID, npcID).
		Scan(&state, &rec.Flow, &tokens, &rec.LastObligationID, &rec.Conversations, &updated)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load relationship: %w", err)
	}

	if rec.State, err = relationship.ParseState(state); err != nil {
		return nil, fmt.Errorf("failed to parse relationship state: %w", err)
	}
	if err := json.Unmarshal([]byte(tokens), &rec.Tokens); err != nil {
		return nil, fmt.Errorf("failed to unmarshal tokens: %w", err)
	}
	if rec.Tokens == nil {
		rec.Tokens = relationship.Tokens{}
	}
	if rec.UpdatedAt, err = time.Parse(time.RFC3339Nano, updated); err != nil {
		return nil, fmt.Errorf("failed to parse updated_at: %w", err)
	}
	return &rec, nil
}

func (s *SQLiteStorage) EnqueueObligation(ctx context.Context, playerID string, o *obligation.Obligation) error {
	if o == nil {
		return errors.New("obligation cannot be nil")
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := tx.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM obligations WHERE player_id = ?`, playerID).Scan(&o.Priority); err != nil {
		return fmt.Errorf("failed to read obligation queue length: %w", err)
	}
	data, err := json.Marshal(o)
	if err != nil {
		return fmt.Errorf("failed to marshal obligation: %w", err)
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO obligations (id, player_id, sender_id, priority, payload) VALUES (?, ?, ?, ?, ?)`,
		o.ID, playerID, o.SenderID, o.Priority, string(data)); err != nil {
		return fmt.Errorf("failed to enqueue obligation: %w", err)
	}
	return tx.Commit()
}

func (s *SQLiteStorage) ListObligations(ctx context.Context, playerID string) ([]*obligation.Obligation, error) {
	return listObligations(ctx, s.db, playerID)
}

func (s *SQLiteStorage) PrioritizeObligations(ctx context.Context, playerID, senderID string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	queue, err := listObligations(ctx, tx, playerID)
	if err != nil {
		return err
	}
	for _, o := range pstorage.Prioritize(queue, senderID) {
		data, err := json.Marshal(o)
		if err != nil {
			return fmt.Errorf("failed to marshal obligation: %w", err)
		}
		if _, err := tx.ExecContext(ctx,
			`UPDATE obligations SET priority = ?, payload = ? WHERE id = ?`,
			o.Priority, string(data), o.ID); err != nil {
			return fmt.Errorf("failed to reorder obligation: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to prioritize obligations: %w", err)
	}
	return nil
}

type queryer interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

func listObligations(ctx context.Context, q queryer, playerID string) ([]*obligation.Obligation, error) {
	rows, err := q.QueryContext(ctx,
		`SELECT payload FROM obligations WHERE player_id = ? ORDER BY priority, id`, playerID)
	if err != nil {
		return nil, fmt.Errorf("failed to read obligation queue: %w", err)
	}
	defer rows.Close()

	var out []*obligation.Obligation
	for rows.Next() {
		var payload string
		if err := rows.Scan(&payload); err != nil {
			return nil, fmt.Errorf("failed to scan obligation: %w", err)
		}
		var o obligation.Obligation
		if err := json.Unmarshal([]byte(payload), &o); err != nil {
			return nil, fmt.Errorf("failed to unmarshal obligation: %w", err)
		}
		out = append(out, &o)
	}
	return out, rows.Err()
}

func (s *SQLiteStorage) GrantExperience(ctx context.Context, playerID string, stat player.Stat, amount int) error {
	if !stat.Valid() {
		return fmt.Errorf("unknown stat %q", stat)
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO experience (player_id, stat, xp) VALUES (?, ?, ?)
		ON CONFLICT (player_id, stat) DO UPDATE SET xp = xp + excluded.xp`,
		playerID, string(stat), amount)
	if err != nil {
		return fmt.Errorf("failed to grant experience: %w", err)
	}
	return nil
}

func (s *SQLiteStorage) LoadPlayerStats(ctx context.Context, playerID string) (*player.Stats, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT stat, xp FROM experience WHERE player_id = ?`, playerID)
	if err != nil {
		return nil, fmt.Errorf("failed to load player stats: %w", err)
	}
	defer rows.Close()

	var stats *player.Stats
	for rows.Next() {
		var (
			stat string
			xp   int
		)
		if err := rows.Scan(&stat, &xp); err != nil {
			return nil, fmt.Errorf("failed to scan player stats: %w", err)
		}
		if stats == nil {
			stats = player.NewStats(playerID)
		}
		stats.XP[player.Stat(stat)] = xp
	}
	return stats, rows.Err()
}
