//go:build integration

package outbox

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"prisonersearch/internal/prisoner/models"
	"prisonersearch/internal/prisoner/store/hash"
	"prisonersearch/pkg/platform/tx"
	"prisonersearch/pkg/testutil/containers"
)

type PostgresOutboxSuite struct {
	suite.Suite
	pg     *containers.PostgresContainer
	store  *PostgresStore
	hashes *hash.PostgresStore
	runner *tx.SQL
	now    time.Time
}

func TestPostgresOutboxSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(PostgresOutboxSuite))
}

func (s *PostgresOutboxSuite) SetupSuite() {
	s.pg = containers.GetManager().GetPostgres(s.T())
	s.store = NewPostgres(s.pg.DB)
	s.hashes = hash.NewPostgres(s.pg.DB)
	s.runner = tx.NewSQL(s.pg.DB)
	s.now = time.Date(2026, 5, 1, 8, 0, 0, 0, time.UTC)
}

func (s *PostgresOutboxSuite) SetupTest() {
	s.Require().NoError(s.pg.TruncateTables(context.Background(), "prisoner_event_outbox", "prisoner_hash"))
}

func (s *PostgresOutboxSuite) TestPendingRoundTripsTheEvent() {
	ctx := context.Background()
	updated := entry("A1234AA", models.EventPrisonerUpdated, s.now)
	updated.Event.CategoriesChanged = []models.Category{models.CategoryLocation}
	updated.Event.Differences = []models.Difference{{Property: "prisonId", Category: models.CategoryLocation, OldValue: "MDI", NewValue: "LEI"}}
	s.Require().NoError(s.store.Append(ctx, entry("A1234AA", models.EventPrisonerCreated, s.now), updated))

	pending, err := s.store.Pending(ctx, "A1234AA", 10)
	s.Require().NoError(err)
	s.Require().Len(pending, 2)
	s.Equal(models.EventPrisonerCreated, pending[0].Event.EventType)
	s.Equal(updated.ID, pending[1].ID)
	s.Equal([]models.Category{models.CategoryLocation}, pending[1].Event.CategoriesChanged)
	s.Equal("prisonId", pending[1].Event.Differences[0].Property)

	s.Require().NoError(s.store.MarkPublished(ctx, pending[0].ID, s.now))
	pending, err = s.store.Pending(ctx, "", 10)
	s.Require().NoError(err)
	s.Len(pending, 1)

	removed, err := s.store.DeletePublishedBefore(ctx, s.now.Add(time.Second))
	s.Require().NoError(err)
	s.Equal(int64(1), removed)
}

func (s *PostgresOutboxSuite) TestRollbackDiscardsHashAndEvents() {
	ctx := context.Background()
	boom := errors.New("boom")

	err := s.runner.RunInTx(ctx, func(ctx context.Context) error {
		if _, err := s.hashes.UpsertIfChanged(ctx, "A1234AA", models.EntityPrisoner, "h1", s.now); err != nil {
			return err
		}
		if err := s.store.Append(ctx, entry("A1234AA", models.EventPrisonerCreated, s.now)); err != nil {
			return err
		}
		return boom
	})
	s.Require().ErrorIs(err, boom)

	pending, err := s.store.Pending(ctx, "A1234AA", 10)
	s.Require().NoError(err)
	s.Empty(pending)
	rows, err := s.hashes.UpsertIfChanged(ctx, "A1234AA", models.EntityPrisoner, "h1", s.now)
	s.Require().NoError(err)
	s.Equal(int64(1), rows, "hash was rolled back")
}

func (s *PostgresOutboxSuite) TestLockedEntriesAreSkipped() {
	ctx := context.Background()
	s.Require().NoError(s.store.Append(ctx, entry("A1234AA", models.EventPrisonerCreated, s.now)))

	locked := make(chan struct{})
	release := make(chan struct{})
	done := make(chan error, 1)
	go func() {
		done <- s.runner.RunInTx(ctx, func(ctx context.Context) error {
			pending, err := s.store.Pending(ctx, "", 10)
			if err != nil {
				return err
			}
			if len(pending) != 1 {
				return errors.New("expected the entry to be claimed")
			}
			close(locked)
			<-release
			return nil
		})
	}()
	select {
	case <-locked:
	case err := <-done:
		s.FailNow("claiming transaction ended early", "error: %v", err)
	}

	err := s.runner.RunInTx(ctx, func(ctx context.Context) error {
		pending, err := s.store.Pending(ctx, "", 10)
		s.Empty(pending, "claimed by the other transaction")
		return err
	})
	s.Require().NoError(err)
	close(release)
	s.Require().NoError(<-done)
}
