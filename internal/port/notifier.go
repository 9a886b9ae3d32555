package port

import (
	"context"

	"github.com/bnema/scribe/internal/domain"
)

type Notifier interface {
	Notify(ctx context.Context, n domain.Notification) error
}
