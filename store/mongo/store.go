// Package mongo provides a MongoDB implementation of the activity store
// using grove ORM over the official driver.
package mongo

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/v2/bson"
	mongod "go.mongodb.org/mongo-driver/v2/mongo"

	"github.com/xraph/grove"
	"github.com/xraph/grove/drivers/mongodriver"

	"github.com/xraph/scribe/activity"
	"github.com/xraph/scribe/id"
)

// colEntries is the collection holding activity entries.
const colEntries = "scribe_activity_log"

// Compile-time interface check.
var _ activity.Store = (*Store)(nil)

// Store is a MongoDB implementation of the activity store.
type Store struct {
	db  *grove.DB
	mdb *mongodriver.MongoDB
}

// New creates a new MongoDB store backed by Grove ORM.
func New(db *grove.DB) *Store {
	return &Store{
		db:  db,
		mdb: mongodriver.Unwrap(db),
	}
}

// Initialize verifies connectivity and creates the secondary indexes that
// mirror the filter vocabulary.
func (s *Store) Initialize(ctx context.Context) error {
	if err := s.db.Ping(ctx); err != nil {
		return fmt.Errorf("scribe: initialize mongo store: %w", err)
	}
	indexes := []mongod.IndexModel{
		{Keys: bson.D{{Key: "subject_type", Value: 1}, {Key: "subject_id", Value: 1}}},
		{Keys: bson.D{{Key: "causer_type", Value: 1}, {Key: "causer_id", Value: 1}}},
		{Keys: bson.D{{Key: "event", Value: 1}}},
		{Keys: bson.D{{Key: "level", Value: 1}}},
		{Keys: bson.D{{Key: "batch_id", Value: 1}}},
		{Keys: bson.D{{Key: "created_at", Value: -1}}},
	}
	if _, err := s.mdb.Collection(colEntries).Indexes().CreateMany(ctx, indexes); err != nil {
		return fmt.Errorf("scribe: initialize mongo store: %w", err)
	}
	return nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// isNoDocuments checks if an error wraps mongo.ErrNoDocuments.
func isNoDocuments(err error) bool {
	return errors.Is(err, mongod.ErrNoDocuments)
}

// filterDoc translates each present filter field to a bson predicate.
func filterDoc(filter *activity.Filter) bson.M {
	f := bson.M{}
	if filter == nil {
		return f
	}
	if filter.SubjectType != "" {
		f["subject_type"] = filter.SubjectType
	}
	if filter.SubjectID != "" {
		f["subject_id"] = filter.SubjectID
	}
	if filter.CauserType != "" {
		f["causer_type"] = filter.CauserType
	}
	if filter.CauserID != "" {
		f["causer_id"] = filter.CauserID
	}
	if filter.Event != "" {
		f["event"] = filter.Event
	}
	if filter.Level != "" {
		f["level"] = string(filter.Level)
	}
	if filter.BatchID != "" {
		f["batch_id"] = filter.BatchID
	}
	if filter.FromDate != nil || filter.ToDate != nil {
		dateFilter := bson.M{}
		if filter.FromDate != nil {
			dateFilter["$gte"] = *filter.FromDate
		}
		if filter.ToDate != nil {
			dateFilter["$lte"] = *filter.ToDate
		}
		f["created_at"] = dateFilter
	}
	return f
}

func (s *Store) Store(ctx context.Context, e *activity.Entry) error {
	m := entryToModel(e)
	if _, err := s.mdb.NewInsert(m).Exec(ctx); err != nil {
		return fmt.Errorf("scribe: store entry: %w", err)
	}
	return nil
}

// StoreBatch inserts all entries in one bulk write. Mongo offers no
// multi-document transaction here; a partial failure may leave some entries
// written.
func (s *Store) StoreBatch(ctx context.Context, entries []*activity.Entry) error {
	if len(entries) == 0 {
		return nil
	}
	models := make([]entryModel, len(entries))
	for i, e := range entries {
		models[i] = *entryToModel(e)
	}
	if _, err := s.mdb.NewInsert(&models).Exec(ctx); err != nil {
		return fmt.Errorf("scribe: store batch: %w", err)
	}
	return nil
}

func (s *Store) FindByID(ctx context.Context, entryID id.EntryID) (*activity.Entry, error) {
	var m entryModel
	err := s.mdb.NewFind(&m).
		Filter(bson.M{"_id": entryID.String()}).
		Scan(ctx)
	if err != nil {
		if isNoDocuments(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("scribe: find entry by id: %w", err)
	}
	return entryFromModel(&m), nil
}

func (s *Store) Find(ctx context.Context, filter *activity.Filter) ([]*activity.Entry, error) {
	var models []entryModel
	q := s.mdb.NewFind(&models).
		Filter(filterDoc(filter)).
		Sort(bson.D{{Key: "created_at", Value: -1}})
	if filter != nil {
		if filter.Limit > 0 {
			q = q.Limit(int64(filter.Limit))
		}
		if filter.Offset > 0 {
			q = q.Skip(int64(filter.Offset))
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
	count, err := s.mdb.NewFind((*entryModel)(nil)).
		Filter(filterDoc(filter)).
		Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("scribe: count entries: %w", err)
	}
	return count, nil
}

func (s *Store) Delete(ctx context.Context, filter *activity.Filter) (int64, error) {
	res, err := s.mdb.NewDelete((*entryModel)(nil)).
		Many().
		Filter(filterDoc(filter)).
		Exec(ctx)
	if err != nil {
		return 0, fmt.Errorf("scribe: delete entries: %w", err)
	}
	return res.DeletedCount(), nil
}

func (s *Store) Clear(ctx context.Context) error {
	_, err := s.mdb.NewDelete((*entryModel)(nil)).
		Many().
		Filter(bson.M{}).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("scribe: clear entries: %w", err)
	}
	return nil
}

func (s *Store) Stats(ctx context.Context) (*activity.Stats, error) {
	count, err := s.mdb.NewFind((*entryModel)(nil)).
		Filter(bson.M{}).
		Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("scribe: stats count: %w", err)
	}
	stats := &activity.Stats{TotalEntries: count}
	if count == 0 {
		return stats, nil
	}

	var oldest entryModel
	err = s.mdb.NewFind(&oldest).
		Filter(bson.M{}).
		Sort(bson.D{{Key: "created_at", Value: 1}}).
		Limit(1).
		Scan(ctx)
	if err != nil && !isNoDocuments(err) {
		return nil, fmt.Errorf("scribe: stats oldest: %w", err)
	}
	if err == nil {
		t := oldest.CreatedAt
		stats.OldestEntry = &t
	}

	var newest entryModel
	err = s.mdb.NewFind(&newest).
		Filter(bson.M{}).
		Sort(bson.D{{Key: "created_at", Value: -1}}).
		Limit(1).
		Scan(ctx)
	if err != nil && !isNoDocuments(err) {
		return nil, fmt.Errorf("scribe: stats newest: %w", err)
	}
	if err == nil {
		t := newest.CreatedAt
		stats.NewestEntry = &t
	}
	return stats, nil
}
