package assemblyai

import (
	"fmt"

	"github.com/bnema/scribe/internal/domain"
)

// APIError is a non-success response from the transcription API.
type APIError struct {
	Status  int    `json:"-"`
	Message string `json:"error"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("assemblyai: status %d: %s", e.Status, e.Message)
}

func (e *APIError) Unwrap() error {
	return domain.ErrProvider
}
