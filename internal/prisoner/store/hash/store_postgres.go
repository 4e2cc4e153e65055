package hash

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/lib/pq"

	"prisonersearch/pkg/platform/tx"
)

// PostgresStore persists content hashes. The upsert is a single statement so
// concurrent synchronisations of one prisoner cannot both observe a change.
// Calls join the transaction carried by ctx, if any.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) UpsertIfChanged(ctx context.Context, prisonerNumber, entity, hash string, at time.Time) (int64, error) {
	query := `
		INSERT INTO prisoner_hash (prisoner_number, entity, hash, updated_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (prisoner_number, entity) DO UPDATE
		SET hash = EXCLUDED.hash, updated_at = EXCLUDED.updated_at
		WHERE prisoner_hash.hash IS DISTINCT FROM EXCLUDED.hash
	`
	res, err := tx.Exec(ctx, s.db).ExecContext(ctx, query, prisonerNumber, entity, hash, at)
	if err != nil {
		return 0, fmt.Errorf("upsert hash: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("upsert hash rows affected: %w", err)
	}
	return rows, nil
}

func (s *PostgresStore) Clear(ctx context.Context, prisonerNumbers ...string) error {
	if len(prisonerNumbers) == 0 {
		return nil
	}
	_, err := tx.Exec(ctx, s.db).ExecContext(ctx, `DELETE FROM prisoner_hash WHERE prisoner_number = ANY($1)`, pq.Array(prisonerNumbers))
	if err != nil {
		return fmt.Errorf("clear hashes: %w", err)
	}
	return nil
}
