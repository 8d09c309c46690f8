package envelopes

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/notekeeper/internal/dbx"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Upsert(ctx context.Context, env *Envelope) error {

	query :=
		`INSERT INTO envelopes (id, account_id, ciphertext, nonce, modified_at, deleted)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 ON CONFLICT (account_id, id) DO UPDATE SET
		   ciphertext = EXCLUDED.ciphertext,
		   nonce = EXCLUDED.nonce,
		   modified_at = EXCLUDED.modified_at,
		   deleted = EXCLUDED.deleted
		 WHERE envelopes.modified_at <= EXCLUDED.modified_at;`

	_, err := r.db.ExecContext(ctx, query,
		env.ID, env.AccountID, env.Ciphertext, env.Nonce, env.ModifiedAt, env.Deleted)
	if err != nil {
		return fmt.Errorf("error performing sql request: %w", err)
	}

	// zero rows affected means the stored copy is newer; that is not an
	// error under last-writer-wins
	return nil
}

func (r *PostgresRepository) ListSince(ctx context.Context, accountID string, since int64) ([]*Envelope, error) {

	query :=
		`SELECT id, account_id, ciphertext, nonce, modified_at, deleted
		 FROM envelopes
		 WHERE account_id = $1 AND modified_at > $2
		 ORDER BY modified_at, id;`

	rows, err := r.db.QueryContext(ctx, query, accountID, since)
	if err != nil {
		return nil, fmt.Errorf("error performing sql request: %w", err)
	}
	defer rows.Close()

	var result []*Envelope
	for rows.Next() {
		env := &Envelope{}
		if err := rows.Scan(&env.ID, &env.AccountID, &env.Ciphertext, &env.Nonce, &env.ModifiedAt, &env.Deleted); err != nil {
			return nil, fmt.Errorf("error scanning row: %w", err)
		}
		result = append(result, env)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return result, nil
}
