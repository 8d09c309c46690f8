package accounts

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/notekeeper/internal/common"
	"github.com/dmitrijs2005/notekeeper/internal/dbx"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*Account, error) {

	query := `SELECT id, verifier, created_at FROM accounts WHERE id = $1;`

	account := &Account{}

	err := r.db.QueryRowContext(ctx, query, id).Scan(&account.ID, &account.Verifier, &account.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("error performing sql request: %w", err)
	}

	return account, nil
}

func (r *PostgresRepository) Create(ctx context.Context, account *Account) error {

	query := `INSERT INTO accounts (id, verifier) VALUES ($1, $2);`

	_, err := r.db.ExecContext(ctx, query, account.ID, account.Verifier)
	if err != nil {
		return fmt.Errorf("error performing sql request: %w", err)
	}

	return nil
}
