package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sethvargo/go-retry"
	"golang.org/x/sync/errgroup"

	"github.com/bnema/scribe/internal/domain"
	"github.com/bnema/scribe/internal/infrastructure/logger"
	"github.com/bnema/scribe/internal/port"
)

// sideEffectTimeout bounds the work that follows a stored transition. That
// work runs detached from the caller, whose request may already be gone.
const sideEffectTimeout = 30 * time.Second

type OrchestratorConfig struct {
	LanguageCode  string
	SpeakerLabels bool
	WebhookURL    string
	// MaxRetries is the number of retries after the first attempt.
	MaxRetries int
	BaseDelay  time.Duration
}

// Finalizer applies a provider result to a job. It is shared by the
// webhook and reconciliation paths.
type Finalizer interface {
	FinalizeJob(ctx context.Context, job *domain.TranscriptionJob, result domain.ProviderResult) (bool, error)
}

type Orchestrator struct {
	cfg      OrchestratorConfig
	store    port.JobStore
	content  port.ContentRevisions
	provider port.TranscriptionProvider
	cache    *JobCache
	notifier port.Notifier

	newBackoff func() retry.Backoff
	now        func() time.Time
}

func NewOrchestrator(
	cfg OrchestratorConfig,
	store port.JobStore,
	content port.ContentRevisions,
	provider port.TranscriptionProvider,
	cache *JobCache,
	notifier port.Notifier,
) *Orchestrator {
	o := &Orchestrator{
		cfg:      cfg,
		store:    store,
		content:  content,
		provider: provider,
		cache:    cache,
		notifier: notifier,
		now:      time.Now,
	}
	o.newBackoff = func() retry.Backoff {
		return retry.WithMaxRetries(uint64(cfg.MaxRetries), retry.NewExponential(cfg.BaseDelay))
	}
	return o
}

// InitiateJob checks that the content lineage exists, submits the audio to
// the provider and records the queued job. Lookup and submission are
// retried together with exponential backoff. Once retries are exhausted
// the owner is told the start failed and no job is stored.
func (o *Orchestrator) InitiateJob(ctx context.Context, contentID, audioURL, ownerID string) (*domain.TranscriptionJob, error) {
	req := domain.SubmitRequest{
		AudioURL:      audioURL,
		LanguageCode:  o.cfg.LanguageCode,
		SpeakerLabels: o.cfg.SpeakerLabels,
		WebhookURL:    o.cfg.WebhookURL,
	}

	attempt := 0
	var jobID string
	err := retry.Do(ctx, o.newBackoff(), func(ctx context.Context) error {
		attempt++

		if _, err := o.content.ListRevisions(ctx, contentID); err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return fmt.Errorf("content %s: %w", contentID, err)
			}
			logger.Warn.Printf("attempt %d: content lookup for %s failed: %v",
				attempt, logger.SanitizeForLog(contentID), err)
			return retry.RetryableError(fmt.Errorf("%w: content lookup: %w", domain.ErrTransient, err))
		}

		id, err := o.provider.Submit(ctx, req)
		if err != nil {
			if errors.Is(err, domain.ErrProvider) || errors.Is(err, domain.ErrTransient) {
				logger.Warn.Printf("attempt %d: submit for content %s failed: %s",
					attempt, logger.SanitizeForLog(contentID), logger.SanitizeErr(err))
				return retry.RetryableError(err)
			}
			return err
		}
		jobID = id
		return nil
	})
	if err != nil {
		logger.Error.Printf("could not start transcription for content %s after %d attempt(s): %s",
			logger.SanitizeForLog(contentID), attempt, logger.SanitizeErr(err))
		notify(ctx, o.notifier, ownerID, "", domain.SeverityError, msgStartFailed)
		return nil, fmt.Errorf("initiate transcription: %w", err)
	}

	job := domain.NewTranscriptionJob(jobID, contentID, ownerID, o.now())
	if err := o.store.Create(ctx, job); err != nil {
		logger.Error.Printf("provider accepted job %s but it could not be stored: %v",
			logger.SanitizeForLog(jobID), err)
		notify(ctx, o.notifier, ownerID, jobID, domain.SeverityError, msgStartFailed)
		return nil, fmt.Errorf("store job %s: %w", jobID, err)
	}

	ctx, cancel := detach(ctx)
	defer cancel()
	if err := o.cache.MarkProcessing(ctx, job); err != nil {
		logger.Warn.Printf("processing marker for job %s: %v", logger.SanitizeForLog(jobID), err)
	}
	if err := o.cache.Invalidate(ctx, job); err != nil {
		logger.Warn.Printf("invalidate caches for job %s: %v", logger.SanitizeForLog(jobID), err)
	}
	notify(ctx, o.notifier, ownerID, jobID, domain.SeverityInfo, msgProcessingStarted)

	logger.Info.Printf("job %s queued for content %s", logger.SanitizeForLog(jobID), logger.SanitizeForLog(contentID))
	return job, nil
}

// FinalizeJob moves job to the terminal state reported by result. It is a
// no-op for jobs that are already terminal and for in-flight results. The
// stored transition is a compare-and-set, so when the webhook and the
// reconciler race only one of them applies side effects. On success job is
// updated in place and true is returned.
func (o *Orchestrator) FinalizeJob(ctx context.Context, job *domain.TranscriptionJob, result domain.ProviderResult) (bool, error) {
	if job.IsTerminal() {
		return false, nil
	}

	next := *job
	if !next.Apply(result, o.now()) {
		logger.Debug.Printf("job %s still %s", logger.SanitizeForLog(job.JobID), logger.SanitizeForLog(string(result.Status)))
		return false, nil
	}

	applied, err := o.store.Finalize(ctx, &next)
	if err != nil {
		return false, fmt.Errorf("finalize job %s: %w", job.JobID, err)
	}
	if !applied {
		logger.Info.Printf("job %s already finalized elsewhere", logger.SanitizeForLog(job.JobID))
		return false, nil
	}
	*job = next

	logger.Info.Printf("job %s finalized as %s", logger.SanitizeForLog(job.JobID), job.Status)
	sideCtx, cancel := detach(ctx)
	defer cancel()
	o.afterFinalize(sideCtx, &next)
	return true, nil
}

// detach keeps ctx values but drops its cancellation. Once a job row is
// written, its cache invalidation and fan-out must still run when the
// webhook request or the sweep that triggered them is cancelled.
func detach(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.WithoutCancel(ctx), sideEffectTimeout)
}

// afterFinalize runs the independent side effects of a transition. Each
// one logs its own failure; none can undo the stored state.
func (o *Orchestrator) afterFinalize(ctx context.Context, job *domain.TranscriptionJob) {
	var g errgroup.Group

	if job.Status == domain.JobStatusCompleted {
		g.Go(func() error {
			o.fanOut(ctx, job)
			return nil
		})
	}

	g.Go(func() error {
		if err := o.cache.Invalidate(ctx, job); err != nil {
			logger.Warn.Printf("invalidate caches for job %s: %v", logger.SanitizeForLog(job.JobID), err)
		}
		if err := o.cache.ClearProcessing(ctx, job.JobID); err != nil {
			logger.Warn.Printf("clear processing marker for job %s: %v", logger.SanitizeForLog(job.JobID), err)
		}
		return nil
	})

	g.Go(func() error {
		switch job.Status {
		case domain.JobStatusCompleted:
			notify(ctx, o.notifier, job.OwnerID, job.JobID, domain.SeveritySuccess, msgCompleted)
		case domain.JobStatusError:
			detail := ""
			if job.ErrorMessage != nil {
				detail = *job.ErrorMessage
			}
			notify(ctx, o.notifier, job.OwnerID, job.JobID, domain.SeverityError, msgFailed(detail))
		}
		return nil
	})

	_ = g.Wait()
}

func (o *Orchestrator) fanOut(ctx context.Context, job *domain.TranscriptionJob) {
	text := ""
	if job.TranscriptText != nil {
		text = *job.TranscriptText
	}

	n, err := o.content.WriteTranscript(ctx, job.ContentID, text)
	if err != nil {
		err = fmt.Errorf("%w: content %s: %w", domain.ErrFanOut, job.ContentID, err)
		logger.Error.Printf("job %s: %v", logger.SanitizeForLog(job.JobID), logger.SanitizeErr(err))
		return
	}
	logger.Info.Printf("job %s transcript written to %d revision(s) of %s",
		logger.SanitizeForLog(job.JobID), n, logger.SanitizeForLog(job.ContentID))
}
