package jobstore

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"reelforge/internal/pkg/logger"
	"reelforge/internal/ports"
)

// Store is the in-memory authoritative job table, write-through replicated
// to a KV cache and a blob object store. Secondary writes are fire-and-forget:
// failures are logged and swallowed, never surfaced to the caller, per the
// snapshot-persistence policy this component exists to implement.
type Store struct {
	mu      sync.RWMutex
	records map[string]*JobRecord

	rdb        *redis.Client
	snapshotTTL time.Duration

	sp ports.StorageProvider

	log *logger.Logger
}

// Config configures a Store. RDB and SP are both optional: a nil RDB disables
// the KV tier, a nil SP disables the blob tier, and the in-memory table
// remains authoritative either way.
type Config struct {
	RDB         *redis.Client
	SP          ports.StorageProvider
	SnapshotTTL time.Duration
	Log         *logger.Logger
}

func New(cfg Config) *Store {
	log := cfg.Log
	if log == nil {
		log = logger.NewDefault()
	}
	ttl := cfg.SnapshotTTL
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &Store{
		records:     make(map[string]*JobRecord),
		rdb:         cfg.RDB,
		snapshotTTL: ttl,
		sp:          cfg.SP,
		log:         log.WithComponent("jobstore"),
	}
}

func kvKey(id string) string { return "video-job:" + id }
func blobKey(id string) string { return fmt.Sprintf("job-snapshots/%s.json", id) }

// Create inserts a brand-new job record and replicates its initial snapshot.
func (s *Store) Create(ctx context.Context, rec *JobRecord) {
	s.mu.Lock()
	s.records[rec.ID] = rec
	s.mu.Unlock()

	s.publish(ctx, rec)
}

// Get returns a reader-safe clone of the job, trying memory, then KV, then
// blob, and returning the first hit.
func (s *Store) Get(ctx context.Context, id string) (*JobRecord, bool) {
	s.mu.RLock()
	rec, ok := s.records[id]
	s.mu.RUnlock()
	if ok {
		return rec.Clone(), true
	}

	if rec, ok := s.getFromKV(ctx, id); ok {
		return rec, true
	}
	if rec, ok := s.getFromBlob(ctx, id); ok {
		return rec, true
	}
	return nil, false
}

// Update applies mutate to the in-memory record under lock, bumps UpdatedAt,
// and replicates the resulting snapshot. mutate must not retain rec beyond
// the call.
func (s *Store) Update(ctx context.Context, id string, mutate func(rec *JobRecord)) (*JobRecord, bool) {
	s.mu.Lock()
	rec, ok := s.records[id]
	if !ok {
		s.mu.Unlock()
		return nil, false
	}
	mutate(rec)
	rec.UpdatedAt = time.Now().UTC()
	snapshot := rec.Clone()
	s.mu.Unlock()

	s.publish(ctx, snapshot)
	return snapshot, true
}

// Delete removes a job from the in-memory table. Secondary stores are left
// to expire via TTL; there is no eager delete against KV/blob.
func (s *Store) Delete(id string) {
	s.mu.Lock()
	delete(s.records, id)
	s.mu.Unlock()
}

// CountActive returns how many jobs owned by owner are pending or processing.
func (s *Store) CountActive(owner string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	n := 0
	for _, rec := range s.records {
		if rec.Owner != owner {
			continue
		}
		if rec.Status == StatusPending || rec.Status == StatusProcessing {
			n++
		}
	}
	return n
}

// EvictFinishedBefore removes in-memory records whose FinishedAt predates
// cutoff. It never touches pending or processing jobs.
func (s *Store) EvictFinishedBefore(cutoff time.Time) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := 0
	for id, rec := range s.records {
		if rec.FinishedAt != nil && rec.FinishedAt.Before(cutoff) {
			delete(s.records, id)
			n++
		}
	}
	return n
}

func (s *Store) publish(ctx context.Context, rec *JobRecord) {
	body, err := json.Marshal(rec)
	if err != nil {
		s.log.Warn("failed to marshal job snapshot", "jobId", rec.ID, "error", err.Error())
		return
	}

	if s.rdb != nil {
		if err := s.rdb.Set(ctx, kvKey(rec.ID), body, s.snapshotTTL).Err(); err != nil {
			s.log.Warn("kv snapshot write failed", "jobId", rec.ID, "error", err.Error())
		}
	}

	if s.sp != nil {
		go s.writeBlob(rec.ID, body)
	}
}

func (s *Store) writeBlob(id string, body []byte) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	_, err := s.sp.PutObject(ctx, ports.PutObjectInput{
		ObjectKey:   blobKey(id),
		ContentType: "application/json",
		Reader:      strings.NewReader(string(body)),
		Size:        int64(len(body)),
	})
	if err != nil {
		s.log.Warn("blob snapshot write failed", "jobId", id, "error", err.Error())
	}
}

func (s *Store) getFromKV(ctx context.Context, id string) (*JobRecord, bool) {
	if s.rdb == nil {
		return nil, false
	}
	body, err := s.rdb.Get(ctx, kvKey(id)).Bytes()
	if err != nil {
		return nil, false
	}
	var rec JobRecord
	if err := json.Unmarshal(body, &rec); err != nil {
		s.log.Warn("kv snapshot unmarshal failed", "jobId", id, "error", err.Error())
		return nil, false
	}
	return &rec, true
}

func (s *Store) getFromBlob(ctx context.Context, id string) (*JobRecord, bool) {
	if s.sp == nil {
		return nil, false
	}
	rc, _, _, err := s.sp.GetObject(ctx, blobKey(id))
	if err != nil {
		return nil, false
	}
	defer rc.Close()

	var rec JobRecord
	if err := json.NewDecoder(rc).Decode(&rec); err != nil {
		s.log.Warn("blob snapshot decode failed", "jobId", id, "error", err.Error())
		return nil, false
	}
	return &rec, true
}
