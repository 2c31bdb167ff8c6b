// Package file provides a rotating-file implementation of the activity store.
//
// Entries are appended one per line to a file whose name comes from a date
// pattern re-evaluated on every write. Queries list matching files and scan
// them linearly; only the JSON format round-trips, so CSV and text stores
// report no entries from Find. Selective Delete is a defined no-op.
//
// A single Store instance must not be written to concurrently: the current
// path and byte counter used for rotation are not synchronized.
package file

import (
	"bufio"
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/xraph/scribe/activity"
	"github.com/xraph/scribe/id"
)

// Defaults applied by New when the corresponding Config field is zero.
const (
	DefaultPattern     = "activity-{YYYY}{MM}{DD}.log"
	DefaultMaxFileSize = 10 << 20
	DefaultMaxFiles    = 30
)

// Compile-time interface check.
var _ activity.Store = (*Store)(nil)

// Config configures a file store.
type Config struct {
	// Dir is the directory holding the log files.
	Dir string
	// Pattern is the file name pattern. The placeholders {YYYY} {MM} {DD}
	// {HH} {mm} {ss} expand to the zero-padded write time. Size-based
	// rotation can only take effect when the pattern is fine-grained enough
	// to produce a new name; a daily pattern rotates at most once a day no
	// matter how large the file grows.
	Pattern string
	// Format is the line encoding, FormatJSON by default.
	Format Format
	// MaxFileSize triggers a path recomputation once the current file
	// reaches this many bytes.
	MaxFileSize int64
	// MaxFiles caps how many files queries will scan, newest first.
	MaxFiles int
	// Logger receives rotation diagnostics. Defaults to slog.Default().
	Logger *slog.Logger
}

// Store is a rotating-file implementation of the activity store.
type Store struct {
	cfg Config
	log *slog.Logger
	now func() time.Time

	curPath    string
	curSize    int64
	warnedPath string
}

// New creates a new file store. Missing config fields get defaults; Dir is
// required.
func New(cfg Config) *Store {
	if cfg.Pattern == "" {
		cfg.Pattern = DefaultPattern
	}
	if cfg.Format == "" {
		cfg.Format = FormatJSON
	}
	if cfg.MaxFileSize <= 0 {
		cfg.MaxFileSize = DefaultMaxFileSize
	}
	if cfg.MaxFiles <= 0 {
		cfg.MaxFiles = DefaultMaxFiles
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &Store{
		cfg: cfg,
		log: cfg.Logger,
		now: time.Now,
	}
}

// Initialize creates the storage directory and validates the configuration.
func (s *Store) Initialize(_ context.Context) error {
	if s.cfg.Dir == "" {
		return fmt.Errorf("scribe: initialize file store: directory is required")
	}
	if !s.cfg.Format.Valid() {
		return fmt.Errorf("scribe: initialize file store: unknown format %q", s.cfg.Format)
	}
	if err := os.MkdirAll(s.cfg.Dir, 0o755); err != nil {
		return fmt.Errorf("scribe: initialize file store: %w", err)
	}
	return nil
}

// Close releases nothing; files are opened and closed per write.
func (s *Store) Close() error {
	return nil
}

// expandPattern substitutes the date placeholders for the given time.
func expandPattern(pattern string, t time.Time) string {
	r := strings.NewReplacer(
		"{YYYY}", fmt.Sprintf("%04d", t.Year()),
		"{MM}", fmt.Sprintf("%02d", int(t.Month())),
		"{DD}", fmt.Sprintf("%02d", t.Day()),
		"{HH}", fmt.Sprintf("%02d", t.Hour()),
		"{mm}", fmt.Sprintf("%02d", t.Minute()),
		"{ss}", fmt.Sprintf("%02d", t.Second()),
	)
	return r.Replace(pattern)
}

// globPattern turns the file name pattern into a glob matching every file
// the pattern could have produced.
func globPattern(pattern string) string {
	r := strings.NewReplacer(
		"{YYYY}", "*",
		"{MM}", "*",
		"{DD}", "*",
		"{HH}", "*",
		"{mm}", "*",
		"{ss}", "*",
	)
	return r.Replace(pattern)
}

// targetPath returns the file the next write goes to. The pattern is
// re-evaluated on every write, so the active file changes at the time
// boundaries the pattern encodes. The size threshold forces the same
// recomputation; when the pattern still resolves to the current name the
// threshold cannot rotate, so MaxFileSize only bites with a pattern
// fine-grained enough to produce a new name.
func (s *Store) targetPath() string {
	path := filepath.Join(s.cfg.Dir, expandPattern(s.cfg.Pattern, s.now()))
	if path == s.curPath {
		if s.curSize >= s.cfg.MaxFileSize && s.warnedPath != path {
			s.log.Warn("activity log file exceeds max size but filename pattern has not advanced; appending",
				"path", path, "size", s.curSize, "max_file_size", s.cfg.MaxFileSize)
			s.warnedPath = path
		}
		return path
	}
	s.curPath = path
	s.curSize = 0
	if fi, err := os.Stat(path); err == nil {
		s.curSize = fi.Size()
	}
	return path
}

func (s *Store) writeLine(line []byte) error {
	path := s.targetPath()
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	n, err := f.Write(line)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return err
	}
	s.curSize += int64(n)
	return nil
}

func (s *Store) Store(_ context.Context, e *activity.Entry) error {
	line, err := encodeLine(s.cfg.Format, e)
	if err != nil {
		return fmt.Errorf("scribe: store entry: %w", err)
	}
	if err := s.writeLine(line); err != nil {
		return fmt.Errorf("scribe: store entry: %w", err)
	}
	return nil
}

// StoreBatch appends entries one by one; a failure partway leaves the
// earlier entries written.
func (s *Store) StoreBatch(ctx context.Context, entries []*activity.Entry) error {
	for _, e := range entries {
		if err := s.Store(ctx, e); err != nil {
			return fmt.Errorf("scribe: store batch: %w", err)
		}
	}
	return nil
}

// listFiles returns the files matching the pattern, newest first by name,
// capped at MaxFiles. Zero-padded date placeholders make lexical order agree
// with chronological order.
func (s *Store) listFiles() ([]string, error) {
	files, err := filepath.Glob(filepath.Join(s.cfg.Dir, globPattern(s.cfg.Pattern)))
	if err != nil {
		return nil, err
	}
	sort.Sort(sort.Reverse(sort.StringSlice(files)))
	if len(files) > s.cfg.MaxFiles {
		files = files[:s.cfg.MaxFiles]
	}
	return files, nil
}

// scanEntries reads every parseable entry from the newest MaxFiles files.
// Malformed lines are skipped. Non-JSON formats yield nothing.
func (s *Store) scanEntries() ([]*activity.Entry, error) {
	if s.cfg.Format != FormatJSON {
		return nil, nil
	}
	files, err := s.listFiles()
	if err != nil {
		return nil, err
	}
	var entries []*activity.Entry
	for _, path := range files {
		f, err := os.Open(path)
		if err != nil {
			continue
		}
		scanner := bufio.NewScanner(f)
		scanner.Buffer(make([]byte, 0, 64*1024), 1<<20)
		for scanner.Scan() {
			line := scanner.Bytes()
			if len(line) == 0 {
				continue
			}
			e, err := decodeLine(line)
			if err != nil {
				continue
			}
			entries = append(entries, e)
		}
		f.Close()
	}
	return entries, nil
}

func (s *Store) FindByID(_ context.Context, entryID id.EntryID) (*activity.Entry, error) {
	entries, err := s.scanEntries()
	if err != nil {
		return nil, fmt.Errorf("scribe: find entry by id: %w", err)
	}
	for _, e := range entries {
		if e.ID.String() == entryID.String() {
			return e, nil
		}
	}
	return nil, nil
}

func (s *Store) Find(_ context.Context, filter *activity.Filter) ([]*activity.Entry, error) {
	entries, err := s.scanEntries()
	if err != nil {
		return nil, fmt.Errorf("scribe: find entries: %w", err)
	}
	matched := make([]*activity.Entry, 0, len(entries))
	for _, e := range entries {
		if filter.Matches(e) {
			matched = append(matched, e)
		}
	}
	activity.SortNewestFirst(matched)
	if filter != nil {
		matched = activity.Paginate(matched, filter.Limit, filter.Offset)
	}
	return matched, nil
}

func (s *Store) Count(ctx context.Context, filter *activity.Filter) (int64, error) {
	entries, err := s.Find(ctx, filter.WithoutPagination())
	if err != nil {
		return 0, fmt.Errorf("scribe: count entries: %w", err)
	}
	return int64(len(entries)), nil
}

// Delete cannot remove individual lines without rewriting whole files and
// is defined as a no-op returning 0.
func (s *Store) Delete(_ context.Context, _ *activity.Filter) (int64, error) {
	return 0, nil
}

// Clear removes every file matching the pattern, uncapped.
func (s *Store) Clear(_ context.Context) error {
	files, err := filepath.Glob(filepath.Join(s.cfg.Dir, globPattern(s.cfg.Pattern)))
	if err != nil {
		return fmt.Errorf("scribe: clear entries: %w", err)
	}
	for _, path := range files {
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("scribe: clear entries: %w", err)
		}
	}
	s.curPath = ""
	s.curSize = 0
	return nil
}

// Stats sums the sizes of all matched files and, for the JSON format,
// counts the parseable entries and their time bounds. Write-only formats
// report size only.
func (s *Store) Stats(_ context.Context) (*activity.Stats, error) {
	files, err := s.listFiles()
	if err != nil {
		return nil, fmt.Errorf("scribe: stats: %w", err)
	}
	stats := &activity.Stats{}
	for _, path := range files {
		if fi, err := os.Stat(path); err == nil {
			stats.SizeBytes += fi.Size()
		}
	}
	entries, err := s.scanEntries()
	if err != nil {
		return nil, fmt.Errorf("scribe: stats: %w", err)
	}
	stats.TotalEntries = int64(len(entries))
	for _, e := range entries {
		t := e.CreatedAt
		if stats.OldestEntry == nil || t.Before(*stats.OldestEntry) {
			u := t
			stats.OldestEntry = &u
		}
		if stats.NewestEntry == nil || t.After(*stats.NewestEntry) {
			u := t
			stats.NewestEntry = &u
		}
	}
	return stats, nil
}
