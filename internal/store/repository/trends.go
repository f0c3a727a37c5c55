package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/fortuna/apollo/internal/model"
	"github.com/fortuna/apollo/internal/store"
)

// TrendRepository persists computed trend reports as JSONB snapshots.
type TrendRepository struct {
	db *store.Database
}

// NewTrendRepository creates a new trend repository.
func NewTrendRepository(db *store.Database) *TrendRepository {
	return &TrendRepository{db: db}
}

// Snapshot is one stored trend report with its capture time.
type Snapshot struct {
	ID        int64             `json:"id"`
	Report    model.TrendReport `json:"report"`
	CreatedAt time.Time         `json:"created_at"`
}

// SaveSnapshot stores a computed report.
func (r *TrendRepository) SaveSnapshot(ctx context.Context, report model.TrendReport) error {
	payload, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("encoding report: %w", err)
	}

	query := `
		INSERT INTO trend_snapshots (player_id, stat, opponent, line, report)
		VALUES ($1, $2, $3, $4, $5)
	`
	if _, err := r.db.DB().ExecContext(ctx, query,
		report.PlayerID, string(report.Stat), report.Opponent, report.Line, payload,
	); err != nil {
		return fmt.Errorf("saving trend snapshot: %w", err)
	}
	return nil
}

// Recent returns the latest snapshots for a player, newest first.
func (r *TrendRepository) Recent(ctx context.Context, playerID int64, limit int) ([]Snapshot, error) {
	query := `
		SELECT id, report, created_at
		FROM trend_snapshots
		WHERE player_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`

	rows, err := r.db.DB().QueryContext(ctx, query, playerID, limit)
	if err != nil {
		return nil, fmt.Errorf("querying trend snapshots: %w", err)
	}
	defer rows.Close()

	var snapshots []Snapshot
	for rows.Next() {
		var s Snapshot
		var payload []byte
		if err := rows.Scan(&s.ID, &payload, &s.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning trend snapshot: %w", err)
		}
		if err := json.Unmarshal(payload, &s.Report); err != nil {
			return nil, fmt.Errorf("decoding trend snapshot %d: %w", s.ID, err)
		}
		snapshots = append(snapshots, s)
	}
	return snapshots, rows.Err()
}
