package accounts

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/vedant281104/AgriShield/internal/common"
	"github.com/vedant281104/AgriShield/internal/dbx"
)

type SQLiteRepository struct {
	db dbx.DBTX
}

func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func (r *SQLiteRepository) Create(ctx context.Context, account *Account) (bool, error) {
	query :=
		`INSERT INTO users (username, password_hash)
		 VALUES (?, ?)
		 ON CONFLICT(username) DO NOTHING`

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

func (r *SQLiteRepository) GetByUsername(ctx context.Context, username string) (*Account, error) {
	query :=
		`SELECT username, password_hash FROM users
		 WHERE username = ?`

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
