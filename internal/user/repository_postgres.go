package user

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"

	"farmlink-be/internal/logger"

	"go.uber.org/zap"
)

type postgresPersister struct {
	db *sql.DB
}

// NewPostgresPersister stores the snapshot as one row of the app_state table.
func NewPostgresPersister(db *sql.DB) Persister {
	return &postgresPersister{db: db}
}

func (p *postgresPersister) Load(ctx context.Context) ([]User, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "repository"),
		zap.String("method", "Load"),
	)

	var raw []byte
	err := p.db.QueryRowContext(ctx,
		`SELECT value FROM app_state WHERE key = $1`, StorageKey,
	).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrSnapshotNotFound
	}
	if err != nil {
		log.Error("failed to read users snapshot", zap.Error(err))
		return nil, err
	}

	return decodeSnapshot(raw)
}

func (p *postgresPersister) Save(ctx context.Context, users []User) error {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "repository"),
		zap.String("method", "Save"),
		zap.Int("users", len(users)),
	)

	raw, err := json.Marshal(users)
	if err != nil {
		return err
	}

	_, err = p.db.ExecContext(ctx, `
		INSERT INTO app_state (key, value, updated_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = NOW()
	`, StorageKey, raw)
	if err != nil {
		log.Error("failed to write users snapshot", zap.Error(err))
		return err
	}
	return nil
}
