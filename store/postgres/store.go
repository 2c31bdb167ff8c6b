// Package postgres provides a PostgreSQL implementation of the activity
// store using grove ORM with Go-based migrations.
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/xraph/grove"
	"github.com/xraph/grove/drivers/pgdriver"
	"github.com/xraph/grove/migrate"

	"github.com/xraph/scribe/activity"
	"github.com/xraph/scribe/id"
)

// Compile-time interface check.
var _ activity.Store = (*Store)(nil)

// Store is a PostgreSQL implementation of the activity store.
type Store struct {
	db   *grove.DB
	pgdb *pgdriver.PgDB
}

// New creates a new PostgreSQL store from an opened grove DB.
func New(db *grove.DB) *Store {
	return &Store{
		db:   db,
		pgdb: pgdriver.Unwrap(db),
	}
}

// Initialize verifies connectivity and runs schema migrations. It is
// idempotent; failures are fatal to this store instance.
func (s *Store) Initialize(ctx context.Context) error {
	if err := s.db.Ping(ctx); err != nil {
		return fmt.Errorf("scribe: initialize postgres store: %w", err)
	}
	executor, err := migrate.NewExecutorFor(s.pgdb)
	if err != nil {
		return fmt.Errorf("scribe: initialize postgres store: %w", err)
	}
	orch := migrate.NewOrchestrator(executor, Migrations)
	if _, err := orch.Migrate(ctx); err != nil {
		return fmt.Errorf("scribe: initialize postgres store: %w", err)
	}
	return nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) Store(ctx context.Context, e *activity.Entry) error {
	m := entryToModel(e)
	if _, err := s.pgdb.NewInsert(m).Exec(ctx); err != nil {
		return fmt.Errorf("scribe: store entry: %w", err)
	}
	return nil
}

// StoreBatch writes all entries in a single transaction; any failure rolls
// the whole batch back.
func (s *Store) StoreBatch(ctx context.Context, entries []*activity.Entry) error {
	if len(entries) == 0 {
		return nil
	}
	models := make([]entryModel, len(entries))
	for i, e := range entries {
		models[i] = *entryToModel(e)
	}

	tx, err := s.pgdb.BeginTxQuery(ctx, nil)
	if err != nil {
		return fmt.Errorf("scribe: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // rollback on error is intentional

	if _, err := tx.NewInsert(&models).Exec(ctx); err != nil {
		return fmt.Errorf("scribe: store batch: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("scribe: commit tx: %w", err)
	}
	return nil
}

func (s *Store) FindByID(ctx context.Context, entryID id.EntryID) (*activity.Entry, error) {
	m := new(entryModel)
	err := s.pgdb.NewSelect(m).Where("id = ?", entryID.String()).Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("scribe: find entry by id: %w", err)
	}
	return entryFromModel(m), nil
}

func (s *Store) Find(ctx context.Context, filter *activity.Filter) ([]*activity.Entry, error) {
	var models []entryModel
	q := s.pgdb.NewSelect(&models).OrderExpr("created_at DESC")
	if filter != nil {
		if filter.SubjectType != "" {
			q = q.Where("subject_type = ?", filter.SubjectType)
		}
		if filter.SubjectID != "" {
			q = q.Where("subject_id = ?", filter.SubjectID)
		}
		if filter.CauserType != "" {
			q = q.Where("causer_type = ?", filter.CauserType)
		}
		if filter.CauserID != "" {
			q = q.Where("causer_id = ?", filter.CauserID)
		}
		if filter.Event != "" {
			q = q.Where("event = ?", filter.Event)
		}
		if filter.Level != "" {
			q = q.Where("level = ?", string(filter.Level))
		}
		if filter.BatchID != "" {
			q = q.Where("batch_id = ?", filter.BatchID)
		}
		if filter.FromDate != nil {
			q = q.Where("created_at >= ?", *filter.FromDate)
		}
		if filter.ToDate != nil {
			q = q.Where("created_at <= ?", *filter.ToDate)
		}
		if filter.Limit > 0 {
			q = q.Limit(filter.Limit)
		}
		if filter.Offset > 0 {
			q = q.Offset(filter.Offset)
		}
	}
	if err := q.Scan(ctx); err != nil {
		return nil, fmt.Errorf("scribe: find entries: %w", err)
	}
	result := make([]*activity.Entry, len(models))
	for i := range models {
		result[i] = entryFromModel(&models[i])
	}
	return result, nil
}

func (s *Store) Count(ctx context.Context, filter *activity.Filter) (int64, error) {
	q := s.pgdb.NewSelect((*entryModel)(nil))
	if filter != nil {
		if filter.SubjectType != "" {
			q = q.Where("subject_type = ?", filter.SubjectType)
		}
		if filter.SubjectID != "" {
			q = q.Where("subject_id = ?", filter.SubjectID)
		}
		if filter.CauserType != "" {
			q = q.Where("causer_type = ?", filter.CauserType)
		}
		if filter.CauserID != "" {
			q = q.Where("causer_id = ?", filter.CauserID)
		}
		if filter.Event != "" {
			q = q.Where("event = ?", filter.Event)
		}
		if filter.Level != "" {
			q = q.Where("level = ?", string(filter.Level))
		}
		if filter.BatchID != "" {
			q = q.Where("batch_id = ?", filter.BatchID)
		}
		if filter.FromDate != nil {
			q = q.Where("created_at >= ?", *filter.FromDate)
		}
		if filter.ToDate != nil {
			q = q.Where("created_at <= ?", *filter.ToDate)
		}
	}
	count, err := q.Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("scribe: count entries: %w", err)
	}
	return count, nil
}

func (s *Store) Delete(ctx context.Context, filter *activity.Filter) (int64, error) {
	q := s.pgdb.NewDelete((*entryModel)(nil))
	if filter != nil {
		if filter.SubjectType != "" {
			q = q.Where("subject_type = ?", filter.SubjectType)
		}
		if filter.SubjectID != "" {
			q = q.Where("subject_id = ?", filter.SubjectID)
		}
		if filter.CauserType != "" {
			q = q.Where("causer_type = ?", filter.CauserType)
		}
		if filter.CauserID != "" {
			q = q.Where("causer_id = ?", filter.CauserID)
		}
		if filter.Event != "" {
			q = q.Where("event = ?", filter.Event)
		}
		if filter.Level != "" {
			q = q.Where("level = ?", string(filter.Level))
		}
		if filter.BatchID != "" {
			q = q.Where("batch_id = ?", filter.BatchID)
		}
		if filter.FromDate != nil {
			q = q.Where("created_at >= ?", *filter.FromDate)
		}
		if filter.ToDate != nil {
			q = q.Where("created_at <= ?", *filter.ToDate)
		}
	}
	res, err := q.Exec(ctx)
	if err != nil {
		return 0, fmt.Errorf("scribe: delete entries: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("scribe: delete entries rows: %w", err)
	}
	return n, nil
}

func (s *Store) Clear(ctx context.Context) error {
	if _, err := s.pgdb.NewDelete((*entryModel)(nil)).Exec(ctx); err != nil {
		return fmt.Errorf("scribe: clear entries: %w", err)
	}
	return nil
}

func (s *Store) Stats(ctx context.Context) (*activity.Stats, error) {
	count, err := s.pgdb.NewSelect((*entryModel)(nil)).Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("scribe: stats count: %w", err)
	}
	stats := &activity.Stats{TotalEntries: count}
	if count == 0 {
		return stats, nil
	}

	oldest := new(entryModel)
	err = s.pgdb.NewSelect(oldest).OrderExpr("created_at ASC").Limit(1).Scan(ctx)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("scribe: stats oldest: %w", err)
	}
	if err == nil {
		t := oldest.CreatedAt
		stats.OldestEntry = &t
	}

	newest := new(entryModel)
	err = s.pgdb.NewSelect(newest).OrderExpr("created_at DESC").Limit(1).Scan(ctx)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("scribe: stats newest: %w", err)
	}
	if err == nil {
		t := newest.CreatedAt
		stats.NewestEntry = &t
	}
	return stats, nil
}
