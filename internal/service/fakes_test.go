package service

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/bnema/scribe/internal/domain"
	"github.com/bnema/scribe/internal/port"
)

// memStore is an in-memory JobStore with the same conditional finalize
// semantics as the SQLite repository.
type memStore struct {
	mu         sync.Mutex
	jobs       map[string]domain.TranscriptionJob
	finalizes  int
	createErr  error
	staleErr   error
	listCalls  int
	getCalls   int
	beforeRead func()

	// afterCommit runs once a finalize has been stored.
	afterCommit func()
}

func newMemStore() *memStore {
	return &memStore{jobs: make(map[string]domain.TranscriptionJob)}
}

func (s *memStore) put(job *domain.TranscriptionJob) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.jobs[job.JobID] = *job
}

func (s *memStore) snapshot(jobID string) (domain.TranscriptionJob, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	j, ok := s.jobs[jobID]
	return j, ok
}

func (s *memStore) Create(_ context.Context, job *domain.TranscriptionJob) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.createErr != nil {
		return s.createErr
	}
	if _, ok := s.jobs[job.JobID]; ok {
		return errors.New("duplicate job id")
	}
	s.jobs[job.JobID] = *job
	return nil
}

func (s *memStore) Get(ctx context.Context, jobID string) (*domain.TranscriptionJob, error) {
	if s.beforeRead != nil {
		s.beforeRead()
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.getCalls++
	j, ok := s.jobs[jobID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &j, nil
}

func (s *memStore) list(match func(domain.TranscriptionJob) bool) []*domain.TranscriptionJob {
	s.listCalls++
	out := make([]*domain.TranscriptionJob, 0)
	for _, j := range s.jobs {
		if match(j) {
			out = append(out, &j)
		}
	}
	sort.Slice(out, func(a, b int) bool { return out[a].JobID < out[b].JobID })
	return out
}

func (s *memStore) ListByContent(_ context.Context, contentID string) ([]*domain.TranscriptionJob, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.list(func(j domain.TranscriptionJob) bool { return j.ContentID == contentID }), nil
}

func (s *memStore) ListByOwner(_ context.Context, ownerID string) ([]*domain.TranscriptionJob, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.list(func(j domain.TranscriptionJob) bool { return j.OwnerID == ownerID }), nil
}

func (s *memStore) ListStale(_ context.Context, before time.Time) ([]*domain.TranscriptionJob, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.staleErr != nil {
		return nil, s.staleErr
	}
	return s.list(func(j domain.TranscriptionJob) bool {
		return !j.IsTerminal() && j.UpdatedAt.Before(before)
	}), nil
}

func (s *memStore) Finalize(_ context.Context, job *domain.TranscriptionJob) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cur, ok := s.jobs[job.JobID]
	if !ok {
		return false, domain.ErrNotFound
	}
	if cur.IsTerminal() {
		return false, nil
	}
	s.finalizes++
	s.jobs[job.JobID] = *job
	if s.afterCommit != nil {
		s.afterCommit()
	}
	return true, nil
}

func (s *memStore) DeleteTerminalBefore(_ context.Context, before time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var n int64
	for id, j := range s.jobs {
		if j.IsTerminal() && j.UpdatedAt.Before(before) {
			delete(s.jobs, id)
			n++
		}
	}
	return n, nil
}

// recordingNotifier keeps every notification it receives.
type recordingNotifier struct {
	mu   sync.Mutex
	sent []domain.Notification
	err  error
}

func (n *recordingNotifier) Notify(_ context.Context, msg domain.Notification) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, msg)
	return n.err
}

func (n *recordingNotifier) all() []domain.Notification {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]domain.Notification(nil), n.sent...)
}

func (n *recordingNotifier) bySeverity(s domain.Severity) []domain.Notification {
	var out []domain.Notification
	for _, msg := range n.all() {
		if msg.Severity == s {
			out = append(out, msg)
		}
	}
	return out
}

var errCacheDown = errors.New("cache unreachable")

// brokenCache fails every operation.
type brokenCache struct{}

func (brokenCache) Get(context.Context, string) ([]byte, bool, error) {
	return nil, false, errCacheDown
}

func (brokenCache) Set(context.Context, string, []byte, time.Duration) error {
	return errCacheDown
}

func (brokenCache) Delete(context.Context, ...string) error {
	return errCacheDown
}

// spyCache wraps a real cache and records deleted keys.
type spyCache struct {
	inner   port.Cache
	mu      sync.Mutex
	deleted []string
	sets    []string
}

func (c *spyCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	return c.inner.Get(ctx, key)
}

func (c *spyCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	c.mu.Lock()
	c.sets = append(c.sets, key)
	c.mu.Unlock()
	return c.inner.Set(ctx, key, value, ttl)
}

func (c *spyCache) Delete(ctx context.Context, keys ...string) error {
	c.mu.Lock()
	c.deleted = append(c.deleted, keys...)
	c.mu.Unlock()
	return c.inner.Delete(ctx, keys...)
}

func (c *spyCache) deletedKeys() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.deleted...)
}

func (c *spyCache) setKeys() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.sets...)
}

func strPtr(s string) *string     { return &s }
func floatPtr(f float64) *float64 { return &f }

func completed(jobID, text string) domain.ProviderResult {
	return domain.ProviderResult{
		JobID:                jobID,
		Status:               domain.JobStatusCompleted,
		Text:                 strPtr(text),
		Confidence:           floatPtr(0.95),
		AudioDurationSeconds: floatPtr(3.2),
	}
}
