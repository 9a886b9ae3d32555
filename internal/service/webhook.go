package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/bnema/scribe/internal/domain"
	"github.com/bnema/scribe/internal/infrastructure/logger"
	"github.com/bnema/scribe/internal/port"
)

// callbackPayload accepts both the documented jobId field and the
// provider's native transcript_id.
type callbackPayload struct {
	domain.ProviderResult
	TranscriptID string `json:"transcript_id"`
}

type WebhookHandler struct {
	store     port.JobStore
	provider  port.TranscriptionProvider
	finalizer Finalizer
	cache     *JobCache
	verifier  port.SignatureVerifier
}

func NewWebhookHandler(
	store port.JobStore,
	provider port.TranscriptionProvider,
	finalizer Finalizer,
	cache *JobCache,
	verifier port.SignatureVerifier,
) *WebhookHandler {
	if verifier == nil {
		verifier = NoopVerifier{}
	}
	return &WebhookHandler{
		store:     store,
		provider:  provider,
		finalizer: finalizer,
		cache:     cache,
		verifier:  verifier,
	}
}

// HandleCallback processes one provider completion callback. Redelivery of
// the same payload is harmless. Callbacks for unknown jobs fail with
// domain.ErrNotFound and change nothing.
func (h *WebhookHandler) HandleCallback(ctx context.Context, raw []byte, signature string) (*domain.TranscriptionJob, error) {
	var payload callbackPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, fmt.Errorf("decode callback: %w: %w", domain.ErrInvalidInput, err)
	}
	result := payload.ProviderResult
	if result.JobID == "" {
		result.JobID = payload.TranscriptID
	}
	if result.JobID == "" {
		return nil, fmt.Errorf("callback without job id: %w", domain.ErrInvalidInput)
	}

	jobID := logger.SanitizeForLog(result.JobID)
	if signature == "" {
		logger.Warn.Printf("callback for job %s carries no signature, accepting unverified", jobID)
	} else if err := h.verifier.Verify(raw, signature); err != nil {
		logger.Warn.Printf("callback for job %s rejected: %v", jobID, err)
		return nil, fmt.Errorf("%w: %w", domain.ErrSignature, err)
	}

	job, err := h.store.Get(ctx, result.JobID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			logger.Warn.Printf("callback for unknown job %s", jobID)
		}
		return nil, fmt.Errorf("callback job %s: %w", result.JobID, err)
	}

	if err := h.cache.StoreCallback(ctx, result.JobID, raw); err != nil {
		logger.Warn.Printf("cache callback payload for job %s: %v", jobID, err)
	}

	if job.IsTerminal() {
		logger.Info.Printf("duplicate callback for finished job %s ignored", jobID)
		return job, nil
	}

	// The provider may notify with the status alone; fetch the transcript.
	if result.Status == domain.JobStatusCompleted && result.Text == nil && h.provider != nil {
		polled, err := h.provider.Poll(ctx, result.JobID)
		if err != nil {
			return nil, fmt.Errorf("fetch transcript for job %s: %w", result.JobID, err)
		}
		result = *polled
	}

	if _, err := h.finalizer.FinalizeJob(ctx, job, result); err != nil {
		return nil, err
	}
	return job, nil
}

// Callback returns the raw body last received for jobID, if still cached.
func (h *WebhookHandler) Callback(ctx context.Context, jobID string) ([]byte, error) {
	raw, ok, err := h.cache.Callback(ctx, jobID)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrCache, err)
	}
	if !ok {
		return nil, domain.ErrNotFound
	}
	return raw, nil
}
