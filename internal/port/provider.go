package port

import (
	"context"

	"github.com/bnema/scribe/internal/domain"
)

type TranscriptionProvider interface {
	Submit(ctx context.Context, req domain.SubmitRequest) (jobID string, err error)
	Poll(ctx context.Context, jobID string) (*domain.ProviderResult, error)
}
