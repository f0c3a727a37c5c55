// Package repository provides data access for players and trend snapshots.
package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/fortuna/apollo/internal/store"
)

// ErrNotFound is returned when a lookup matches no row.
var ErrNotFound = errors.New("not found")

// PlayerRepository persists resolved player identities.
type PlayerRepository struct {
	db *store.Database
}

// NewPlayerRepository creates a new player repository.
func NewPlayerRepository(db *store.Database) *PlayerRepository {
	return &PlayerRepository{db: db}
}

// Upsert inserts or refreshes a player identity keyed by the upstream ID.
func (r *PlayerRepository) Upsert(ctx context.Context, playerID int64, name, normalized string) error {
	query := `
		INSERT INTO players (player_id, full_name, normalized_name)
		VALUES ($1, $2, $3)
		ON CONFLICT (player_id) DO UPDATE SET
			full_name = EXCLUDED.full_name,
			normalized_name = EXCLUDED.normalized_name,
			updated_at = NOW()
	`

	if _, err := r.db.DB().ExecContext(ctx, query, playerID, name, normalized); err != nil {
		return fmt.Errorf("upserting player: %w", err)
	}
	return nil
}

// GetIDByNormalizedName finds a player ID by normalized name.
func (r *PlayerRepository) GetIDByNormalizedName(ctx context.Context, normalized string) (int64, error) {
	query := `SELECT player_id FROM players WHERE normalized_name = $1`

	var id int64
	err := r.db.DB().QueryRowContext(ctx, query, normalized).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, fmt.Errorf("player %q: %w", normalized, ErrNotFound)
	}
	if err != nil {
		return 0, fmt.Errorf("querying player: %w", err)
	}
	return id, nil
}
