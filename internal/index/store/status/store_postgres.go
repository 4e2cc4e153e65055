package status

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"prisonersearch/internal/index/models"
	"prisonersearch/pkg/platform/sentinel"
)

// statusID is the primary key of the singleton row.
const statusID = "STATUS"

// PostgresStore persists the lifecycle row in PostgreSQL. Writers never
// overwrite blindly: every update is conditional on the version they read.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgres constructs a PostgreSQL-backed status store.
func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Get(ctx context.Context) (models.IndexStatus, error) {
	query := `
		SELECT current_slot, current_state, current_start_time, current_end_time,
		       other_state, other_start_time, other_end_time, version
		FROM index_status
		WHERE id = $1
	`
	var (
		status                      models.IndexStatus
		currentSlot, current, other string
		currentStart, currentEnd    sql.NullTime
		otherStart, otherEnd        sql.NullTime
	)
	err := s.db.QueryRowContext(ctx, query, statusID).Scan(
		&currentSlot, &current, &currentStart, &currentEnd,
		&other, &otherStart, &otherEnd, &status.Version,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.IndexStatus{}, sentinel.ErrNotFound
		}
		return models.IndexStatus{}, fmt.Errorf("find index status: %w", err)
	}
	status.CurrentSlot = models.Slot(currentSlot)
	status.CurrentState = models.State(current)
	status.OtherState = models.State(other)
	status.CurrentStartTime = timePtr(currentStart)
	status.CurrentEndTime = timePtr(currentEnd)
	status.OtherStartTime = timePtr(otherStart)
	status.OtherEndTime = timePtr(otherEnd)
	return status, nil
}

// EnsureExists inserts the bootstrap row when missing. Concurrent bootstraps
// are harmless: ON CONFLICT keeps whichever row won.
func (s *PostgresStore) EnsureExists(ctx context.Context) (models.IndexStatus, error) {
	initial := models.NewIndexStatus()
	query := `
		INSERT INTO index_status (id, current_slot, current_state, other_state, version)
		VALUES ($1, $2, $3, $4, 0)
		ON CONFLICT (id) DO NOTHING
	`
	if _, err := s.db.ExecContext(ctx, query, statusID,
		string(initial.CurrentSlot), string(initial.CurrentState), string(initial.OtherState)); err != nil {
		return models.IndexStatus{}, fmt.Errorf("insert index status: %w", err)
	}
	return s.Get(ctx)
}

// CompareAndSwap writes next only if the row still has expectedVersion.
// Returns sentinel.ErrConflict when another writer got there first.
func (s *PostgresStore) CompareAndSwap(ctx context.Context, expectedVersion int64, next models.IndexStatus) (models.IndexStatus, error) {
	query := `
		UPDATE index_status SET
			current_slot = $1,
			current_state = $2,
			current_start_time = $3,
			current_end_time = $4,
			other_state = $5,
			other_start_time = $6,
			other_end_time = $7,
			version = version + 1
		WHERE id = $8 AND version = $9
	`
	res, err := s.db.ExecContext(ctx, query,
		string(next.CurrentSlot),
		string(next.CurrentState),
		next.CurrentStartTime,
		next.CurrentEndTime,
		string(next.OtherState),
		next.OtherStartTime,
		next.OtherEndTime,
		statusID,
		expectedVersion,
	)
	if err != nil {
		return models.IndexStatus{}, fmt.Errorf("update index status: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return models.IndexStatus{}, fmt.Errorf("update index status rows: %w", err)
	}
	if rows == 0 {
		return models.IndexStatus{}, sentinel.ErrConflict
	}
	next.Version = expectedVersion + 1
	return next, nil
}

func timePtr(t sql.NullTime) *time.Time {
	if !t.Valid {
		return nil
	}
	v := t.Time
	return &v
}
