package outbox

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"prisonersearch/internal/prisoner/models"
	"prisonersearch/pkg/platform/tx"
)

// PostgresStore keeps recorded domain events in the prisoner_event_outbox
// table until they are published. Calls join the transaction carried by ctx,
// and Pending locks the rows it returns for the rest of that transaction.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Append(ctx context.Context, entries ...models.OutboxEntry) error {
	query := `
		INSERT INTO prisoner_event_outbox (id, prisoner_number, event_type, payload, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`
	exec := tx.Exec(ctx, s.db)
	for _, entry := range entries {
		payload, err := json.Marshal(entry.Event)
		if err != nil {
			return fmt.Errorf("marshal outbox payload: %w", err)
		}
		if _, err := exec.ExecContext(ctx, query,
			entry.ID,
			entry.Event.PrisonerNumber,
			entry.Event.EventType,
			payload,
			entry.CreatedAt,
		); err != nil {
			return fmt.Errorf("insert outbox entry: %w", err)
		}
	}
	return nil
}

// Pending returns up to limit unpublished entries in recording order. An
// empty prisonerNumber matches every prisoner. Rows locked by another
// transaction are skipped.
func (s *PostgresStore) Pending(ctx context.Context, prisonerNumber string, limit int) ([]models.OutboxEntry, error) {
	query := `
		SELECT id, payload, created_at
		FROM prisoner_event_outbox
		WHERE published_at IS NULL AND ($1 = '' OR prisoner_number = $1)
		ORDER BY seq
		LIMIT $2
		FOR UPDATE SKIP LOCKED
	`
	rows, err := tx.Exec(ctx, s.db).QueryContext(ctx, query, prisonerNumber, limit)
	if err != nil {
		return nil, fmt.Errorf("select pending outbox entries: %w", err)
	}
	defer rows.Close()

	var out []models.OutboxEntry
	for rows.Next() {
		var (
			entry   models.OutboxEntry
			payload []byte
		)
		if err := rows.Scan(&entry.ID, &payload, &entry.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan outbox entry: %w", err)
		}
		if err := json.Unmarshal(payload, &entry.Event); err != nil {
			return nil, fmt.Errorf("unmarshal outbox payload %s: %w", entry.ID, err)
		}
		out = append(out, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate outbox entries: %w", err)
	}
	return out, nil
}

func (s *PostgresStore) MarkPublished(ctx context.Context, id uuid.UUID, at time.Time) error {
	_, err := tx.Exec(ctx, s.db).ExecContext(ctx,
		`UPDATE prisoner_event_outbox SET published_at = $2 WHERE id = $1`, id, at)
	if err != nil {
		return fmt.Errorf("mark outbox entry published: %w", err)
	}
	return nil
}

// DeletePublishedBefore removes entries published before cutoff.
func (s *PostgresStore) DeletePublishedBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := tx.Exec(ctx, s.db).ExecContext(ctx,
		`DELETE FROM prisoner_event_outbox WHERE published_at IS NOT NULL AND published_at < $1`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("purge outbox: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("purge outbox rows affected: %w", err)
	}
	return n, nil
}
