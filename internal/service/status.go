package service

import (
	"context"

	"github.com/bnema/scribe/internal/domain"
	"github.com/bnema/scribe/internal/port"
)

// StatusService serves job reads cache-aside. A broken cache degrades to
// direct store reads.
type StatusService struct {
	store port.JobStore
	cache *JobCache
}

func NewStatusService(store port.JobStore, cache *JobCache) *StatusService {
	return &StatusService{store: store, cache: cache}
}

func (s *StatusService) GetJob(ctx context.Context, jobID string) (*domain.TranscriptionJob, error) {
	return s.cache.Job(ctx, jobID, func(ctx context.Context) (*domain.TranscriptionJob, error) {
		return s.store.Get(ctx, jobID)
	})
}

func (s *StatusService) GetJobsByContent(ctx context.Context, contentID string) ([]*domain.TranscriptionJob, error) {
	return s.cache.Jobs(ctx, ContentJobsKey(contentID), func(ctx context.Context) ([]*domain.TranscriptionJob, error) {
		return s.store.ListByContent(ctx, contentID)
	})
}

func (s *StatusService) GetJobsByOwner(ctx context.Context, ownerID string) ([]*domain.TranscriptionJob, error) {
	return s.cache.Jobs(ctx, OwnerJobsKey(ownerID), func(ctx context.Context) ([]*domain.TranscriptionJob, error) {
		return s.store.ListByOwner(ctx, ownerID)
	})
}
