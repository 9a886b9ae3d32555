package service

import (
	"context"
	"time"

	"github.com/dustin/go-humanize"
	"golang.org/x/time/rate"

	"github.com/bnema/scribe/internal/infrastructure/logger"
	"github.com/bnema/scribe/internal/port"
)

type ReconcilerConfig struct {
	Interval   time.Duration
	StuckAfter time.Duration
	// PollsPerSecond limits provider queries within a sweep. Zero means
	// unlimited.
	PollsPerSecond float64
}

// SweepReport summarizes one reconciliation pass.
type SweepReport struct {
	Checked   int
	Finalized int
	InFlight  int
	Failed    int
}

// Reconciler polls the provider for jobs whose callback never arrived and
// finalizes them through the same path as the webhook.
type Reconciler struct {
	cfg       ReconcilerConfig
	store     port.JobStore
	provider  port.TranscriptionProvider
	finalizer Finalizer
	limiter   *rate.Limiter
	now       func() time.Time
}

func NewReconciler(cfg ReconcilerConfig, store port.JobStore, provider port.TranscriptionProvider, finalizer Finalizer) *Reconciler {
	limit := rate.Inf
	if cfg.PollsPerSecond > 0 {
		limit = rate.Limit(cfg.PollsPerSecond)
	}
	return &Reconciler{
		cfg:       cfg,
		store:     store,
		provider:  provider,
		finalizer: finalizer,
		limiter:   rate.NewLimiter(limit, 1),
		now:       time.Now,
	}
}

// Sweep checks every non-terminal job untouched for longer than
// StuckAfter. Poll failures and in-flight results leave the job for the
// next sweep; nothing is retried within a pass and no error is returned.
func (r *Reconciler) Sweep(ctx context.Context) SweepReport {
	var report SweepReport

	cutoff := r.now().Add(-r.cfg.StuckAfter)
	jobs, err := r.store.ListStale(ctx, cutoff)
	if err != nil {
		logger.Error.Printf("reconcile: list stale jobs: %v", err)
		return report
	}

	for _, job := range jobs {
		if err := r.limiter.Wait(ctx); err != nil {
			logger.Warn.Printf("reconcile: sweep interrupted after %d job(s): %v", report.Checked, err)
			break
		}
		report.Checked++
		jobID := logger.SanitizeForLog(job.JobID)

		result, err := r.provider.Poll(ctx, job.JobID)
		if err != nil {
			report.Failed++
			logger.Warn.Printf("reconcile: poll job %s (last update %s): %s",
				jobID, humanize.Time(job.UpdatedAt), logger.SanitizeErr(err))
			continue
		}

		if !result.Status.IsTerminal() {
			report.InFlight++
			logger.Info.Printf("reconcile: job %s still %s at provider, last update %s",
				jobID, logger.SanitizeForLog(string(result.Status)), humanize.Time(job.UpdatedAt))
			continue
		}

		applied, err := r.finalizer.FinalizeJob(ctx, job, *result)
		if err != nil {
			report.Failed++
			logger.Error.Printf("reconcile: finalize job %s: %v", jobID, err)
			continue
		}
		if applied {
			report.Finalized++
		}
	}

	if report.Checked > 0 {
		logger.Info.Printf("reconcile: checked %d, finalized %d, in flight %d, failed %d",
			report.Checked, report.Finalized, report.InFlight, report.Failed)
	}
	return report
}

// Run sweeps every Interval until ctx is done.
func (r *Reconciler) Run(ctx context.Context) {
	ticker := time.NewTicker(r.cfg.Interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			r.Sweep(ctx)
		case <-ctx.Done():
			return
		}
	}
}
