package service

import (
	"context"
	"fmt"

	"github.com/bnema/scribe/internal/domain"
	"github.com/bnema/scribe/internal/infrastructure/logger"
	"github.com/bnema/scribe/internal/port"
)

const (
	msgProcessingStarted = "Transcription started, we will let you know when it is ready."
	msgStartFailed       = "There was an error starting the transcription. Please try again."
	msgCompleted         = "Transcription completed successfully."
)

func msgFailed(detail string) string {
	return fmt.Sprintf("Transcription failed: %s", detail)
}

// notify publishes n and logs a failure instead of returning it.
func notify(ctx context.Context, n port.Notifier, recipientID, jobID string, severity domain.Severity, message string) {
	if n == nil {
		return
	}
	err := n.Notify(ctx, domain.Notification{
		RecipientID: recipientID,
		Severity:    severity,
		Message:     message,
		JobID:       jobID,
	})
	if err != nil {
		logger.Warn.Printf("notify %s (job %s): %v",
			logger.SanitizeForLog(recipientID), logger.SanitizeForLog(jobID), err)
	}
}
