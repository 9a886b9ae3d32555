package domain

import "time"

type JobStatus string

const (
	JobStatusQueued     JobStatus = "queued"
	JobStatusProcessing JobStatus = "processing"
	JobStatusCompleted  JobStatus = "completed"
	JobStatusError      JobStatus = "error"
)

// IsTerminal reports whether no further transition is allowed from s.
// Any value other than completed or error counts as in flight.
func (s JobStatus) IsTerminal() bool {
	return s == JobStatusCompleted || s == JobStatusError
}

type TranscriptionJob struct {
	JobID                string    `json:"jobId"`
	ContentID            string    `json:"contentId"`
	Status               JobStatus `json:"status"`
	TranscriptText       *string   `json:"transcriptText,omitempty"`
	Confidence           *float64  `json:"confidence,omitempty"`
	AudioDurationSeconds *float64  `json:"audioDurationSeconds,omitempty"`
	ErrorMessage         *string   `json:"errorMessage,omitempty"`
	OwnerID              string    `json:"ownerId"`
	CreatedAt            time.Time `json:"createdAt"`
	UpdatedAt            time.Time `json:"updatedAt"`
}

func NewTranscriptionJob(jobID, contentID, ownerID string, now time.Time) *TranscriptionJob {
	now = now.UTC()
	return &TranscriptionJob{
		JobID:     jobID,
		ContentID: contentID,
		Status:    JobStatusQueued,
		OwnerID:   ownerID,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// IsTerminal reports whether the job has reached completed or error.
func (j *TranscriptionJob) IsTerminal() bool {
	return j.Status.IsTerminal()
}

// Apply transitions the job according to a provider result and reports
// whether anything changed. Terminal jobs and in-flight results are left
// untouched.
func (j *TranscriptionJob) Apply(result ProviderResult, now time.Time) bool {
	if j.IsTerminal() {
		return false
	}

	switch result.Status {
	case JobStatusCompleted:
		text := ""
		if result.Text != nil {
			text = *result.Text
		}
		j.Status = JobStatusCompleted
		j.TranscriptText = &text
		j.Confidence = result.Confidence
		j.AudioDurationSeconds = result.AudioDurationSeconds
		j.ErrorMessage = nil
	case JobStatusError:
		msg := result.Error
		if msg == "" {
			msg = "transcription failed"
		}
		j.Status = JobStatusError
		j.ErrorMessage = &msg
		j.TranscriptText = nil
		j.Confidence = nil
		j.AudioDurationSeconds = nil
	default:
		return false
	}

	j.UpdatedAt = now.UTC()
	return true
}

// ProviderResult is what the provider reports for a job, either through a
// completion callback or a status poll.
type ProviderResult struct {
	JobID                string    `json:"jobId"`
	Status               JobStatus `json:"status"`
	Text                 *string   `json:"text,omitempty"`
	Confidence           *float64  `json:"confidence,omitempty"`
	AudioDurationSeconds *float64  `json:"audioDurationSeconds,omitempty"`
	Error                string    `json:"error,omitempty"`
}

type SubmitRequest struct {
	AudioURL      string
	LanguageCode  string
	SpeakerLabels bool
	WebhookURL    string
}

// ContentRevision is one version of a content item in a lineage.
type ContentRevision struct {
	ContentID  string
	Revision   int
	Transcript *string
	UpdatedAt  time.Time
}
