package accounts

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/vedant281104/AgriShield/internal/common"
	"github.com/vedant281104/AgriShield/internal/dbx"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, account *Account) (bool, error) {
	query :=
		`INSERT INTO users (username, password_hash)
		 VALUES ($1, $2)
		 ON CONFLICT (username) DO NOTHING`

	res, err := r.db.ExecContext(ctx, query, account.Username, account.PasswordHash)
	if err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}

	return n == 1, nil
}

func (r *PostgresRepository) GetByUsername(ctx context.Context, username string) (*Account, error) {
	query :=
		`SELECT username, password_hash FROM users
		 WHERE username = $1`

	a := &Account{}
	err := r.db.QueryRowContext(ctx, query, username).Scan(&a.Username, &a.PasswordHash)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return a, nil
}
