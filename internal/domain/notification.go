package domain

import "time"

type Severity string

const (
	SeverityInfo    Severity = "info"
	SeveritySuccess Severity = "success"
	SeverityError   Severity = "error"
)

type Notification struct {
	ID          string    `json:"id"`
	RecipientID string    `json:"recipientId"`
	Severity    Severity  `json:"severity"`
	Message     string    `json:"message"`
	JobID       string    `json:"jobId,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
}
