package assemblyai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/bnema/scribe/internal/domain"
)

const defaultBaseURL = "https://api.assemblyai.com"

// maxResponseBytes caps how much of a response body is read.
const maxResponseBytes = 4 << 20

// Backend makes calls against the transcription API.
// This interface exists to enable mocking during testing.
type Backend interface {
	Call(ctx context.Context, method, path string, body, v any) error
}

// BackendConfiguration is the HTTP implementation of Backend.
type BackendConfiguration struct {
	BaseURL    string
	APIKey     string
	HTTPClient *http.Client
}

func NewBackend(baseURL, apiKey string) *BackendConfiguration {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return &BackendConfiguration{
		BaseURL:    strings.TrimRight(baseURL, "/"),
		APIKey:     apiKey,
		HTTPClient: &http.Client{Timeout: 30 * time.Second},
	}
}

func (b *BackendConfiguration) Call(ctx context.Context, method, path string, body, v any) error {
	req, err := b.NewRequest(ctx, method, path, body)
	if err != nil {
		return err
	}
	return b.Do(req, v)
}

// NewRequest builds an authenticated request, encoding body as JSON when set.
func (b *BackendConfiguration) NewRequest(ctx context.Context, method, path string, body any) (*http.Request, error) {
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}

	var r io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encode request: %w", err)
		}
		r = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, b.BaseURL+path, r)
	if err != nil {
		return nil, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Authorization", b.APIKey)
	return req, nil
}

// Do executes req and unmarshals the response into v. Transport failures
// wrap domain.ErrTransient; non-2xx responses are returned as *APIError.
func (b *BackendConfiguration) Do(req *http.Request, v any) error {
	res, err := b.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %s %s: %w", domain.ErrTransient, req.Method, req.URL.Path, err)
	}
	defer func() { _ = res.Body.Close() }()

	resBody, err := io.ReadAll(io.LimitReader(res.Body, maxResponseBytes))
	if err != nil {
		return fmt.Errorf("%w: read response: %w", domain.ErrTransient, err)
	}

	if res.StatusCode >= 300 {
		apiErr := &APIError{Status: res.StatusCode}
		if err := json.Unmarshal(resBody, apiErr); err != nil || apiErr.Message == "" {
			apiErr.Message = strings.TrimSpace(string(resBody))
		}
		return apiErr
	}

	if v != nil {
		if err := json.Unmarshal(resBody, v); err != nil {
			return &APIError{Status: res.StatusCode, Message: "malformed response body: " + err.Error()}
		}
	}
	return nil
}
