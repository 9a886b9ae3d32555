package service

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"go.uber.org/multierr"
	"golang.org/x/sync/singleflight"

	"github.com/bnema/scribe/internal/domain"
	"github.com/bnema/scribe/internal/port"
)

func JobKey(jobID string) string             { return "job:" + jobID }
func ContentJobsKey(contentID string) string { return "content-jobs:" + contentID }
func OwnerJobsKey(ownerID string) string     { return "owner-jobs:" + ownerID }
func ProcessingKey(jobID string) string      { return "processing:" + jobID }
func CallbackKey(jobID string) string        { return "callback:" + jobID }

const sharedLoadTimeout = 10 * time.Second

type CacheTTLs struct {
	Read    time.Duration
	Marker  time.Duration
	Payload time.Duration
}

// JobCache owns every cache key this service writes. Concurrent misses on
// one key share a single store load.
//
// epoch is bumped on every invalidation. A load that straddles an
// invalidation is returned to its caller but not written back, so a
// snapshot taken before a job changed never lands in the cache after it.
type JobCache struct {
	cache port.Cache
	ttls  CacheTTLs
	group singleflight.Group
	epoch atomic.Uint64
}

func NewJobCache(cache port.Cache, ttls CacheTTLs) *JobCache {
	return &JobCache{cache: cache, ttls: ttls}
}

func (c *JobCache) Job(ctx context.Context, jobID string, load func(context.Context) (*domain.TranscriptionJob, error)) (*domain.TranscriptionJob, error) {
	return cachedRead(ctx, c, JobKey(jobID), load)
}

func (c *JobCache) Jobs(ctx context.Context, key string, load func(context.Context) ([]*domain.TranscriptionJob, error)) ([]*domain.TranscriptionJob, error) {
	return cachedRead(ctx, c, key, load)
}

func cachedRead[T any](ctx context.Context, c *JobCache, key string, load func(context.Context) (T, error)) (T, error) {
	return readThrough(ctx, c.cache, key, c.ttls.Read, func(ctx context.Context) (T, bool, error) {
		var zero T
		start := c.epoch.Load()
		// The shared load serves every waiter and outlives the first caller.
		ch := c.group.DoChan(key, func() (any, error) {
			loadCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), sharedLoadTimeout)
			defer cancel()
			return load(loadCtx)
		})
		select {
		case <-ctx.Done():
			return zero, false, ctx.Err()
		case res := <-ch:
			if res.Err != nil {
				return zero, false, res.Err
			}
			return res.Val.(T), c.epoch.Load() == start, nil
		}
	})
}

// Invalidate drops every read entry that can contain job, plus its
// processing marker.
func (c *JobCache) Invalidate(ctx context.Context, job *domain.TranscriptionJob) error {
	c.epoch.Add(1)

	var err error
	for _, key := range []string{
		JobKey(job.JobID),
		ContentJobsKey(job.ContentID),
		OwnerJobsKey(job.OwnerID),
	} {
		c.group.Forget(key)
		if e := c.cache.Delete(ctx, key); e != nil {
			err = multierr.Append(err, fmt.Errorf("delete %s: %w", key, e))
		}
	}
	// Bump again so loads that started between the first bump and the
	// deletes cannot write back either.
	c.epoch.Add(1)
	return err
}

// MarkProcessing records which content a freshly submitted job belongs to.
func (c *JobCache) MarkProcessing(ctx context.Context, job *domain.TranscriptionJob) error {
	return c.cache.Set(ctx, ProcessingKey(job.JobID), []byte(job.ContentID), c.ttls.Marker)
}

// ClearProcessing removes the marker once a job is terminal.
func (c *JobCache) ClearProcessing(ctx context.Context, jobID string) error {
	return c.cache.Delete(ctx, ProcessingKey(jobID))
}

// ProcessingContent returns the content id recorded by MarkProcessing.
func (c *JobCache) ProcessingContent(ctx context.Context, jobID string) (string, bool, error) {
	raw, ok, err := c.cache.Get(ctx, ProcessingKey(jobID))
	if err != nil || !ok {
		return "", false, err
	}
	return string(raw), true, nil
}

// StoreCallback keeps the raw callback body for diagnostics.
func (c *JobCache) StoreCallback(ctx context.Context, jobID string, payload []byte) error {
	return c.cache.Set(ctx, CallbackKey(jobID), payload, c.ttls.Payload)
}

func (c *JobCache) Callback(ctx context.Context, jobID string) ([]byte, bool, error) {
	return c.cache.Get(ctx, CallbackKey(jobID))
}
