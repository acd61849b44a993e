package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// SnapshotRepo stores each dataset as a single row keyed by dataset name.
type SnapshotRepo struct {
	db *sql.DB
}

func NewSnapshotRepo(db *sql.DB) *SnapshotRepo {
	return &SnapshotRepo{db: db}
}

func (r *SnapshotRepo) Load(ctx context.Context, dataset string) ([]byte, error) {
	var body string
	err := r.db.QueryRowContext(ctx, `SELECT body FROM snapshots WHERE dataset = ?`, dataset).Scan(&body)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load %s snapshot: %w", dataset, err)
	}
	if body == "" {
		return nil, nil
	}
	return []byte(body), nil
}

func (r *SnapshotRepo) Save(ctx context.Context, dataset string, data []byte) error {
	query := `INSERT INTO snapshots (dataset, body, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(dataset) DO UPDATE SET body = excluded.body, updated_at = excluded.updated_at`
	if _, err := r.db.ExecContext(ctx, query, dataset, string(data)); err != nil {
		return fmt.Errorf("failed to save %s snapshot: %w", dataset, err)
	}
	return nil
}
