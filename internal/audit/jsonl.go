// Package audit records every extraction attempt a node makes.
package audit

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/tkingovr/pipefilter/api"
)

// DefaultMaxRecords bounds the in-memory window used by Query and Stats.
const DefaultMaxRecords = 10000

const dateLayout = "2006-01-02"

// JSONLStore is an append-only JSONL extraction log, one file per day.
// The most recent records are also kept in memory for Query and Stats.
type JSONLStore struct {
	mu          sync.Mutex
	dir         string
	currentDate string
	file        *os.File
	writer      *bufio.Writer

	records []*api.ExtractionRecord
	maxMem  int

	subMu   sync.RWMutex
	subs    map[int]chan *api.ExtractionRecord
	nextSub int
}

// Option configures a JSONLStore.
type Option func(*JSONLStore)

// WithMaxRecords sets the in-memory window size.
func WithMaxRecords(n int) Option {
	return func(s *JSONLStore) {
		if n > 0 {
			s.maxMem = n
		}
	}
}

// NewJSONLStore opens the log in dir and replays existing day files into
// the in-memory window.
func NewJSONLStore(dir string, opts ...Option) (*JSONLStore, error) {
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("creating audit log directory: %w", err)
	}
	s := &JSONLStore{
		dir:    dir,
		maxMem: DefaultMaxRecords,
		subs:   make(map[int]chan *api.ExtractionRecord),
	}
	for _, opt := range opts {
		opt(s)
	}
	if err := s.replay(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *JSONLStore) Write(_ context.Context, record *api.ExtractionRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if record.ID == "" {
		record.ID = uuid.Must(uuid.NewV7()).String()
	}
	if record.Timestamp.IsZero() {
		record.Timestamp = time.Now()
	}

	if date := record.Timestamp.Format(dateLayout); date != s.currentDate {
		if err := s.rotate(date); err != nil {
			return err
		}
	}

	data, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("marshaling extraction record: %w", err)
	}
	data = append(data, '\n')
	if _, err := s.writer.Write(data); err != nil {
		return fmt.Errorf("writing extraction record: %w", err)
	}
	if err := s.writer.Flush(); err != nil {
		return fmt.Errorf("flushing audit log: %w", err)
	}

	s.remember(record)
	s.publish(record)
	return nil
}

func (s *JSONLStore) Query(_ context.Context, filter api.QueryFilter) ([]*api.ExtractionRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var results []*api.ExtractionRecord
	for _, r := range s.records {
		if matchesFilter(r, filter) {
			results = append(results, r)
		}
	}

	if filter.Offset > 0 {
		if filter.Offset >= len(results) {
			return nil, nil
		}
		results = results[filter.Offset:]
	}
	if filter.Limit > 0 && len(results) > filter.Limit {
		results = results[:filter.Limit]
	}
	return results, nil
}

func (s *JSONLStore) Stats(_ context.Context) (*api.AuditStats, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	stats := &api.AuditStats{
		ByMode: make(map[string]int),
		ByKind: make(map[string]int),
	}
	for _, r := range s.records {
		stats.Attempts++
		if r.Succeeded() {
			stats.Successes++
			stats.Moved += r.Extracted
		}
		stats.ByMode[r.Mode.String()]++
		if r.Kind != "" {
			stats.ByKind[string(r.Kind)]++
		}
	}
	return stats, nil
}

func (s *JSONLStore) Subscribe(_ context.Context) (<-chan *api.ExtractionRecord, func()) {
	s.subMu.Lock()
	defer s.subMu.Unlock()

	ch := make(chan *api.ExtractionRecord, 100)
	id := s.nextSub
	s.nextSub++
	s.subs[id] = ch

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			s.subMu.Lock()
			defer s.subMu.Unlock()
			delete(s.subs, id)
			close(ch)
		})
	}
	return ch, cancel
}

func (s *JSONLStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.writer != nil {
		if err := s.writer.Flush(); err != nil {
			return err
		}
	}
	if s.file != nil {
		return s.file.Close()
	}
	return nil
}

func (s *JSONLStore) rotate(date string) error {
	if s.writer != nil {
		if err := s.writer.Flush(); err != nil {
			return err
		}
	}
	if s.file != nil {
		if err := s.file.Close(); err != nil {
			return err
		}
	}

	f, err := os.OpenFile(s.dayFile(date), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o640)
	if err != nil {
		return fmt.Errorf("opening audit log file: %w", err)
	}
	s.file = f
	s.writer = bufio.NewWriter(f)
	s.currentDate = date
	return nil
}

// replay loads existing day files, oldest first, keeping only the newest
// maxMem records.
func (s *JSONLStore) replay() error {
	paths, err := filepath.Glob(filepath.Join(s.dir, "*.jsonl"))
	if err != nil {
		return err
	}
	sort.Strings(paths)
	for _, path := range paths {
		if err := s.replayFile(path); err != nil {
			return err
		}
	}
	return nil
}

func (s *JSONLStore) replayFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("opening audit log file: %w", err)
	}
	defer f.Close()

	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for sc.Scan() {
		var r api.ExtractionRecord
		if err := json.Unmarshal(sc.Bytes(), &r); err != nil {
			// A torn final line from a crash is skipped.
			continue
		}
		s.remember(&r)
	}
	return sc.Err()
}

func (s *JSONLStore) remember(record *api.ExtractionRecord) {
	if len(s.records) >= s.maxMem {
		s.records = s.records[1:]
	}
	s.records = append(s.records, record)
}

func (s *JSONLStore) publish(record *api.ExtractionRecord) {
	s.subMu.RLock()
	defer s.subMu.RUnlock()

	for _, ch := range s.subs {
		select {
		case ch <- record:
		default:
			// slow subscriber, drop
		}
	}
}

func (s *JSONLStore) dayFile(date string) string {
	return filepath.Join(s.dir, date+".jsonl")
}

func matchesFilter(r *api.ExtractionRecord, f api.QueryFilter) bool {
	if !f.Since.IsZero() && r.Timestamp.Before(f.Since) {
		return false
	}
	if !f.Until.IsZero() && r.Timestamp.After(f.Until) {
		return false
	}
	if f.Node != "" && r.Node != f.Node {
		return false
	}
	if f.Kind != "" && r.Kind != f.Kind {
		return false
	}
	if f.Mode != nil && r.Mode != *f.Mode {
		return false
	}
	return true
}
