// Package redis provides a Redis implementation of the activity store.
//
// Redis has no native secondary indexes, so the store maintains them by
// hand: a sorted-set timeline ordered by creation time plus one set per
// categorical field value. Queries intersect the sets matching the filter
// and fetch the surviving entries by id.
package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/xraph/scribe/activity"
	"github.com/xraph/scribe/id"
)

// clearScanBatch bounds how many keys a single DEL issued by Clear carries.
const clearScanBatch = 500

// Compile-time interface check.
var _ activity.Store = (*Store)(nil)

// Store is a Redis implementation of the activity store.
type Store struct {
	rdb  redis.UniversalClient
	keys keyspace
}

// New creates a new Redis store on top of an established client. An empty
// prefix falls back to DefaultPrefix; the prefix isolates this store's keys
// from other users of the same database.
func New(client redis.UniversalClient, prefix string) *Store {
	return &Store{
		rdb:  client,
		keys: newKeyspace(prefix),
	}
}

// Initialize verifies connectivity. The keyspace needs no setup; index sets
// are created lazily on first write.
func (s *Store) Initialize(ctx context.Context) error {
	if err := s.rdb.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("scribe: initialize redis store: %w", err)
	}
	return nil
}

// Close closes the underlying client.
func (s *Store) Close() error {
	return s.rdb.Close()
}

// writeEntry queues the primary record, the timeline member, and every
// index-set membership for one entry onto the pipeline.
func (s *Store) writeEntry(ctx context.Context, pipe redis.Pipeliner, e *activity.Entry) error {
	data, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("marshal entry: %w", err)
	}
	entryID := e.ID.String()
	pipe.Set(ctx, s.keys.entry(entryID), data, 0)
	pipe.ZAdd(ctx, s.keys.timeline(), redis.Z{
		Score:  float64(e.CreatedAt.UnixMilli()),
		Member: entryID,
	})
	for _, key := range s.keys.entryIndexKeys(e) {
		pipe.SAdd(ctx, key, entryID)
	}
	return nil
}

func (s *Store) Store(ctx context.Context, e *activity.Entry) error {
	pipe := s.rdb.TxPipeline()
	if err := s.writeEntry(ctx, pipe, e); err != nil {
		return fmt.Errorf("scribe: store entry: %w", err)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("scribe: store entry: %w", err)
	}
	return nil
}

// StoreBatch writes all entries in one transactional pipeline, so either
// every entry lands or none do.
func (s *Store) StoreBatch(ctx context.Context, entries []*activity.Entry) error {
	if len(entries) == 0 {
		return nil
	}
	pipe := s.rdb.TxPipeline()
	for _, e := range entries {
		if err := s.writeEntry(ctx, pipe, e); err != nil {
			return fmt.Errorf("scribe: store batch: %w", err)
		}
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("scribe: store batch: %w", err)
	}
	return nil
}

func (s *Store) FindByID(ctx context.Context, entryID id.EntryID) (*activity.Entry, error) {
	data, err := s.rdb.Get(ctx, s.keys.entry(entryID.String())).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, fmt.Errorf("scribe: find entry by id: %w", err)
	}
	var e activity.Entry
	if err := json.Unmarshal(data, &e); err != nil {
		return nil, fmt.Errorf("scribe: find entry by id: unmarshal entry: %w", err)
	}
	return &e, nil
}

// candidateIDs resolves the filter to a set of entry ids using the secondary
// indexes: SINTER over the categorical index sets, the timeline range for
// date bounds, and the full timeline when the filter carries no criteria.
func (s *Store) candidateIDs(ctx context.Context, filter *activity.Filter) ([]string, error) {
	indexKeys := s.keys.filterIndexKeys(filter)
	hasDates := filter != nil && (filter.FromDate != nil || filter.ToDate != nil)

	if len(indexKeys) == 0 && !hasDates {
		return s.rdb.ZRevRange(ctx, s.keys.timeline(), 0, -1).Result()
	}

	var ids []string
	if len(indexKeys) > 0 {
		res, err := s.rdb.SInter(ctx, indexKeys...).Result()
		if err != nil {
			return nil, err
		}
		ids = res
	}

	if hasDates {
		min, max := "-inf", "+inf"
		if filter.FromDate != nil {
			min = strconv.FormatInt(filter.FromDate.UnixMilli(), 10)
		}
		if filter.ToDate != nil {
			max = strconv.FormatInt(filter.ToDate.UnixMilli(), 10)
		}
		ranged, err := s.rdb.ZRangeByScore(ctx, s.keys.timeline(), &redis.ZRangeBy{
			Min: min,
			Max: max,
		}).Result()
		if err != nil {
			return nil, err
		}
		if len(indexKeys) == 0 {
			return ranged, nil
		}
		inRange := make(map[string]struct{}, len(ranged))
		for _, entryID := range ranged {
			inRange[entryID] = struct{}{}
		}
		filtered := ids[:0]
		for _, entryID := range ids {
			if _, ok := inRange[entryID]; ok {
				filtered = append(filtered, entryID)
			}
		}
		ids = filtered
	}
	return ids, nil
}

func (s *Store) Find(ctx context.Context, filter *activity.Filter) ([]*activity.Entry, error) {
	ids, err := s.candidateIDs(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("scribe: find entries: %w", err)
	}
	if len(ids) == 0 {
		return []*activity.Entry{}, nil
	}

	entryKeys := make([]string, len(ids))
	for i, entryID := range ids {
		entryKeys[i] = s.keys.entry(entryID)
	}
	values, err := s.rdb.MGet(ctx, entryKeys...).Result()
	if err != nil {
		return nil, fmt.Errorf("scribe: find entries: %w", err)
	}

	entries := make([]*activity.Entry, 0, len(values))
	for _, v := range values {
		raw, ok := v.(string)
		if !ok {
			// Index member with no primary record, e.g. mid-delete.
			continue
		}
		var e activity.Entry
		if err := json.Unmarshal([]byte(raw), &e); err != nil {
			continue
		}
		entries = append(entries, &e)
	}

	// Sorting precedes pagination so page boundaries are stable regardless
	// of which index path produced the candidates.
	activity.SortNewestFirst(entries)
	if filter != nil {
		entries = activity.Paginate(entries, filter.Limit, filter.Offset)
	}
	return entries, nil
}

func (s *Store) Count(ctx context.Context, filter *activity.Filter) (int64, error) {
	entries, err := s.Find(ctx, filter.WithoutPagination())
	if err != nil {
		return 0, fmt.Errorf("scribe: count entries: %w", err)
	}
	return int64(len(entries)), nil
}

// Delete removes every matching entry together with its timeline member and
// index-set memberships, derived from the entry's own field values.
func (s *Store) Delete(ctx context.Context, filter *activity.Filter) (int64, error) {
	entries, err := s.Find(ctx, filter.WithoutPagination())
	if err != nil {
		return 0, fmt.Errorf("scribe: delete entries: %w", err)
	}
	if len(entries) == 0 {
		return 0, nil
	}
	pipe := s.rdb.TxPipeline()
	for _, e := range entries {
		entryID := e.ID.String()
		pipe.Del(ctx, s.keys.entry(entryID))
		pipe.ZRem(ctx, s.keys.timeline(), entryID)
		for _, key := range s.keys.entryIndexKeys(e) {
			pipe.SRem(ctx, key, entryID)
		}
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, fmt.Errorf("scribe: delete entries: %w", err)
	}
	return int64(len(entries)), nil
}

// Clear scans the whole keyspace under the prefix and deletes it, index
// sets included.
func (s *Store) Clear(ctx context.Context) error {
	iter := s.rdb.Scan(ctx, 0, s.keys.matchAll(), 0).Iterator()
	batch := make([]string, 0, clearScanBatch)
	for iter.Next(ctx) {
		batch = append(batch, iter.Val())
		if len(batch) >= clearScanBatch {
			if err := s.rdb.Del(ctx, batch...).Err(); err != nil {
				return fmt.Errorf("scribe: clear entries: %w", err)
			}
			batch = batch[:0]
		}
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("scribe: clear entries: %w", err)
	}
	if len(batch) > 0 {
		if err := s.rdb.Del(ctx, batch...).Err(); err != nil {
			return fmt.Errorf("scribe: clear entries: %w", err)
		}
	}
	return nil
}

// Stats reads the totals straight off the timeline; the zset scores carry
// the creation times, so no entry payloads are fetched.
func (s *Store) Stats(ctx context.Context) (*activity.Stats, error) {
	total, err := s.rdb.ZCard(ctx, s.keys.timeline()).Result()
	if err != nil {
		return nil, fmt.Errorf("scribe: stats count: %w", err)
	}
	stats := &activity.Stats{TotalEntries: total}
	if total == 0 {
		return stats, nil
	}

	oldest, err := s.rdb.ZRangeWithScores(ctx, s.keys.timeline(), 0, 0).Result()
	if err != nil {
		return nil, fmt.Errorf("scribe: stats oldest: %w", err)
	}
	if len(oldest) > 0 {
		t := time.UnixMilli(int64(oldest[0].Score)).UTC()
		stats.OldestEntry = &t
	}

	newest, err := s.rdb.ZRevRangeWithScores(ctx, s.keys.timeline(), 0, 0).Result()
	if err != nil {
		return nil, fmt.Errorf("scribe: stats newest: %w", err)
	}
	if len(newest) > 0 {
		t := time.UnixMilli(int64(newest[0].Score)).UTC()
		stats.NewestEntry = &t
	}
	return stats, nil
}
