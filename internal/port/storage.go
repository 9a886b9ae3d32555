package port

import (
	"context"
	"time"

	"github.com/bnema/scribe/internal/domain"
)

type JobStore interface {
	Create(ctx context.Context, job *domain.TranscriptionJob) error
	Get(ctx context.Context, jobID string) (*domain.TranscriptionJob, error)
	ListByContent(ctx context.Context, contentID string) ([]*domain.TranscriptionJob, error)
	ListByOwner(ctx context.Context, ownerID string) ([]*domain.TranscriptionJob, error)
	// ListStale returns non-terminal jobs last updated before the cutoff.
	ListStale(ctx context.Context, before time.Time) ([]*domain.TranscriptionJob, error)
	// Finalize writes the job's terminal state only if the stored row is
	// still non-terminal. applied is false when another caller got there first.
	Finalize(ctx context.Context, job *domain.TranscriptionJob) (applied bool, err error)
	// DeleteTerminalBefore removes completed and error jobs last updated
	// before the cutoff.
	DeleteTerminalBefore(ctx context.Context, before time.Time) (int64, error)
}

// ContentRevisions is the write side of the content lineage store.
type ContentRevisions interface {
	ListRevisions(ctx context.Context, contentID string) ([]domain.ContentRevision, error)
	WriteTranscript(ctx context.Context, contentID, text string) (int, error)
}
