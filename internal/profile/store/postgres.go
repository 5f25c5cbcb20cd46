package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// Postgres persists wallet flags in the wallet_flags table.
//
// Schema:
//
//	CREATE TABLE wallet_flags (
//	    user_id      TEXT PRIMARY KEY,
//	    profile_type TEXT NOT NULL,
//	    created_at   TIMESTAMPTZ NOT NULL
//	);
type Postgres struct {
	db *sql.DB
}

var _ Store = (*Postgres)(nil)

func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

func (p *Postgres) Save(ctx context.Context, flag WalletFlag) error {
	_, err := p.db.ExecContext(ctx, `
		INSERT INTO wallet_flags (user_id, profile_type, created_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_id) DO UPDATE
		SET profile_type = EXCLUDED.profile_type, created_at = EXCLUDED.created_at`,
		flag.UserID, flag.ProfileType, flag.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("save wallet flag: %w", err)
	}
	return nil
}

func (p *Postgres) Find(ctx context.Context, userID string) (*WalletFlag, error) {
	var flag WalletFlag
	err := p.db.QueryRowContext(ctx, `
		SELECT user_id, profile_type, created_at
		FROM wallet_flags
		WHERE user_id = $1`,
		userID,
	).Scan(&flag.UserID, &flag.ProfileType, &flag.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find wallet flag: %w", err)
	}
	return &flag, nil
}
