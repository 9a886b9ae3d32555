package service

import (
	"context"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/bnema/scribe/internal/infrastructure/logger"
	"github.com/bnema/scribe/internal/port"
)

var (
	_ port.RetentionPolicy = NoopRetention{}
	_ port.RetentionPolicy = (*AgeRetention)(nil)
)

// NoopRetention keeps every job. It is the default until a retention
// policy is agreed.
type NoopRetention struct{}

func (NoopRetention) Purge(context.Context, time.Time) (int64, error) { return 0, nil }

// AgeRetention deletes finished jobs last updated more than maxAge ago.
type AgeRetention struct {
	store  port.JobStore
	maxAge time.Duration
}

func NewAgeRetention(store port.JobStore, maxAge time.Duration) *AgeRetention {
	return &AgeRetention{store: store, maxAge: maxAge}
}

func (r *AgeRetention) Purge(ctx context.Context, now time.Time) (int64, error) {
	cutoff := now.Add(-r.maxAge)
	n, err := r.store.DeleteTerminalBefore(ctx, cutoff)
	if err != nil {
		return 0, err
	}
	if n > 0 {
		logger.Info.Printf("retention: purged %s finished job(s) updated more than %s",
			humanize.Comma(n), humanize.RelTime(cutoff, now, "ago", "from now"))
	}
	return n, nil
}

// Cleaner runs the retention policy on a fixed interval.
type Cleaner struct {
	policy   port.RetentionPolicy
	interval time.Duration
	now      func() time.Time
}

func NewCleaner(policy port.RetentionPolicy, interval time.Duration) *Cleaner {
	if policy == nil {
		policy = NoopRetention{}
	}
	return &Cleaner{policy: policy, interval: interval, now: time.Now}
}

// RunOnce applies the policy a single time and logs the outcome.
func (c *Cleaner) RunOnce(ctx context.Context) {
	n, err := c.policy.Purge(ctx, c.now())
	if err != nil {
		logger.Error.Printf("retention cleanup failed: %v", err)
		return
	}
	if n > 0 {
		logger.Info.Printf("retention cleanup removed %s job(s)", humanize.Comma(n))
	}
}

// Run blocks until ctx is done.
func (c *Cleaner) Run(ctx context.Context) {
	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			c.RunOnce(ctx)
		case <-ctx.Done():
			return
		}
	}
}
