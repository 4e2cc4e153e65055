package difference

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"prisonersearch/internal/prisoner/models"
	"prisonersearch/pkg/platform/tx"
)

// PostgresStore persists the audit trail of differences. Save joins the
// transaction carried by ctx, if any.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Save(ctx context.Context, record models.DifferenceRecord) error {
	payload, err := json.Marshal(record.Differences)
	if err != nil {
		return fmt.Errorf("marshal differences: %w", err)
	}
	query := `
		INSERT INTO prisoner_differences (id, prisoner_number, differences, created_at)
		VALUES ($1, $2, $3, $4)
	`
	if _, err := tx.Exec(ctx, s.db).ExecContext(ctx, query, record.ID, record.PrisonerNumber, payload, record.CreatedAt); err != nil {
		return fmt.Errorf("save differences: %w", err)
	}
	return nil
}

func (s *PostgresStore) ListByPrisoner(ctx context.Context, prisonerNumber string) ([]models.DifferenceRecord, error) {
	query := `
		SELECT id, prisoner_number, differences, created_at
		FROM prisoner_differences
		WHERE prisoner_number = $1
		ORDER BY created_at
	`
	rows, err := s.db.QueryContext(ctx, query, prisonerNumber)
	if err != nil {
		return nil, fmt.Errorf("list differences: %w", err)
	}
	defer rows.Close()

	var out []models.DifferenceRecord
	for rows.Next() {
		var (
			record  models.DifferenceRecord
			payload []byte
		)
		if err := rows.Scan(&record.ID, &record.PrisonerNumber, &payload, &record.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan differences: %w", err)
		}
		if err := json.Unmarshal(payload, &record.Differences); err != nil {
			return nil, fmt.Errorf("unmarshal differences: %w", err)
		}
		out = append(out, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate differences: %w", err)
	}
	return out, nil
}

func (s *PostgresStore) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM prisoner_differences WHERE created_at < $1`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("purge differences: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("purge differences rows affected: %w", err)
	}
	return n, nil
}
