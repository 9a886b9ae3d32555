package assemblyai

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/bnema/scribe/internal/domain"
	"github.com/bnema/scribe/internal/port"
)

var _ port.TranscriptionProvider = (*Client)(nil)

type transcriptRequest struct {
	AudioURL               string `json:"audio_url"`
	LanguageCode           string `json:"language_code,omitempty"`
	SpeakerLabels          bool   `json:"speaker_labels"`
	WebhookURL             string `json:"webhook_url,omitempty"`
	WebhookAuthHeaderName  string `json:"webhook_auth_header_name,omitempty"`
	WebhookAuthHeaderValue string `json:"webhook_auth_header_value,omitempty"`
}

type transcript struct {
	ID            string   `json:"id"`
	Status        string   `json:"status"`
	Text          *string  `json:"text"`
	Confidence    *float64 `json:"confidence"`
	AudioDuration *float64 `json:"audio_duration"`
	Error         string   `json:"error"`
}

// WebhookAuth is echoed back by the provider as a header on every callback.
type WebhookAuth struct {
	HeaderName  string
	HeaderValue string
}

type Client struct {
	backend Backend
	auth    WebhookAuth
}

func NewClient(backend Backend, auth WebhookAuth) *Client {
	return &Client{backend: backend, auth: auth}
}

func (c *Client) Submit(ctx context.Context, req domain.SubmitRequest) (string, error) {
	if req.AudioURL == "" {
		return "", fmt.Errorf("audio url: %w", domain.ErrInvalidInput)
	}

	body := transcriptRequest{
		AudioURL:      req.AudioURL,
		LanguageCode:  req.LanguageCode,
		SpeakerLabels: req.SpeakerLabels,
		WebhookURL:    req.WebhookURL,
	}
	if c.auth.HeaderName != "" && c.auth.HeaderValue != "" {
		body.WebhookAuthHeaderName = c.auth.HeaderName
		body.WebhookAuthHeaderValue = c.auth.HeaderValue
	}

	var res transcript
	if err := c.backend.Call(ctx, http.MethodPost, "/v2/transcript", body, &res); err != nil {
		return "", fmt.Errorf("submit transcript: %w", err)
	}
	if res.ID == "" {
		return "", &APIError{Status: http.StatusOK, Message: "response carried no transcript id"}
	}
	return res.ID, nil
}

func (c *Client) Poll(ctx context.Context, jobID string) (*domain.ProviderResult, error) {
	var res transcript
	if err := c.backend.Call(ctx, http.MethodGet, "/v2/transcript/"+url.PathEscape(jobID), nil, &res); err != nil {
		return nil, fmt.Errorf("poll transcript %s: %w", jobID, err)
	}

	id := res.ID
	if id == "" {
		id = jobID
	}
	return &domain.ProviderResult{
		JobID:                id,
		Status:               domain.JobStatus(res.Status),
		Text:                 res.Text,
		Confidence:           res.Confidence,
		AudioDurationSeconds: res.AudioDuration,
		Error:                res.Error,
	}, nil
}
