package http

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bnema/scribe/internal/domain"
	"github.com/bnema/scribe/internal/service"
)

type fakeJobs struct {
	jobs map[string]*domain.TranscriptionJob
}

func (f *fakeJobs) GetJob(_ context.Context, jobID string) (*domain.TranscriptionJob, error) {
	if j, ok := f.jobs[jobID]; ok {
		return j, nil
	}
	return nil, domain.ErrNotFound
}

func (f *fakeJobs) filter(match func(*domain.TranscriptionJob) bool) []*domain.TranscriptionJob {
	var out []*domain.TranscriptionJob
	for _, j := range f.jobs {
		if match(j) {
			out = append(out, j)
		}
	}
	return out
}

func (f *fakeJobs) GetJobsByContent(_ context.Context, contentID string) ([]*domain.TranscriptionJob, error) {
	return f.filter(func(j *domain.TranscriptionJob) bool { return j.ContentID == contentID }), nil
}

func (f *fakeJobs) GetJobsByOwner(_ context.Context, ownerID string) ([]*domain.TranscriptionJob, error) {
	return f.filter(func(j *domain.TranscriptionJob) bool { return j.OwnerID == ownerID }), nil
}

type fakeCallbacks struct {
	mu        sync.Mutex
	signature string
	err       error
	job       *domain.TranscriptionJob
	payloads  map[string][]byte
}

func (f *fakeCallbacks) HandleCallback(_ context.Context, raw []byte, signature string) (*domain.TranscriptionJob, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.signature = signature
	if f.err != nil {
		return nil, f.err
	}
	return f.job, nil
}

func (f *fakeCallbacks) Callback(_ context.Context, jobID string) ([]byte, error) {
	if raw, ok := f.payloads[jobID]; ok {
		return raw, nil
	}
	return nil, domain.ErrNotFound
}

type fakeQueue struct {
	mu   sync.Mutex
	reqs []service.InitiateRequest
	err  error
}

func (f *fakeQueue) Enqueue(req service.InitiateRequest) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.reqs = append(f.reqs, req)
	return nil
}

type testDeps struct {
	jobs      *fakeJobs
	callbacks *fakeCallbacks
	queue     *fakeQueue
	bus       *service.EventBus
	server    *Server
}

func newTestServer(t *testing.T, cfg ServerConfig) *testDeps {
	t.Helper()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	d := &testDeps{
		jobs: &fakeJobs{jobs: map[string]*domain.TranscriptionJob{
			"J1": domain.NewTranscriptionJob("J1", "C1", "U1", now),
			"J2": domain.NewTranscriptionJob("J2", "C1", "U2", now),
		}},
		callbacks: &fakeCallbacks{payloads: map[string][]byte{"J1": []byte(`{"jobId":"J1","status":"completed"}`)}},
		queue:     &fakeQueue{},
		bus:       service.NewEventBus("notifications"),
	}
	if cfg.AuthHeader == "" {
		cfg.AuthHeader = "X-Scribe-Webhook-Token"
	}
	d.server = NewServer(cfg, d.jobs, d.callbacks, d.queue, d.bus)
	t.Cleanup(d.server.Close)
	return d
}

func do(t *testing.T, s http.Handler, method, path, body string, headers ...string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	return rec
}

func TestServer_CreateTranscription_Accepted(t *testing.T) {
	d := newTestServer(t, ServerConfig{})

	rec := do(t, d.server, http.MethodPost, "/transcriptions",
		`{"contentId":"C1","audioUrl":"https://cdn.test/a.mp3","ownerId":"U1"}`)

	assert.Equal(t, http.StatusAccepted, rec.Code)
	assert.JSONEq(t, `{"status":"accepted","contentId":"C1"}`, rec.Body.String())
	require.Len(t, d.queue.reqs, 1)
	assert.Equal(t, service.InitiateRequest{ContentID: "C1", AudioURL: "https://cdn.test/a.mp3", OwnerID: "U1"}, d.queue.reqs[0])
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
}

func TestServer_CreateTranscription_Rejected(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{name: "not json", body: "{"},
		{name: "unknown field", body: `{"contentId":"C1","audioUrl":"https://cdn.test/a.mp3","ownerId":"U1","extra":1}`},
		{name: "missing content", body: `{"audioUrl":"https://cdn.test/a.mp3","ownerId":"U1"}`},
		{name: "missing owner", body: `{"contentId":"C1","audioUrl":"https://cdn.test/a.mp3"}`},
		{name: "bad url", body: `{"contentId":"C1","audioUrl":"file:///etc/passwd","ownerId":"U1"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := newTestServer(t, ServerConfig{})
			rec := do(t, d.server, http.MethodPost, "/transcriptions", tt.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Empty(t, d.queue.reqs)
		})
	}
}

func TestServer_CreateTranscription_QueueFull(t *testing.T) {
	d := newTestServer(t, ServerConfig{})
	d.queue.err = fmt.Errorf("enqueue: %w", domain.ErrQueueFull)

	rec := do(t, d.server, http.MethodPost, "/transcriptions",
		`{"contentId":"C1","audioUrl":"https://cdn.test/a.mp3","ownerId":"U1"}`)

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, "5", rec.Header().Get("Retry-After"))
}

func TestServer_Webhook_StatusMapping(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{name: "ok", want: http.StatusOK},
		{name: "unknown job", err: fmt.Errorf("callback job ghost: %w", domain.ErrNotFound), want: http.StatusNotFound},
		{name: "bad payload", err: fmt.Errorf("decode: %w", domain.ErrInvalidInput), want: http.StatusBadRequest},
		{name: "bad signature", err: fmt.Errorf("%w: mismatch", domain.ErrSignature), want: http.StatusUnauthorized},
		{name: "provider down", err: fmt.Errorf("%w: 503", domain.ErrProvider), want: http.StatusBadGateway},
		{name: "store failure", err: fmt.Errorf("database is locked"), want: http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := newTestServer(t, ServerConfig{})
			d.callbacks.err = tt.err
			d.callbacks.job = d.jobs.jobs["J1"]

			rec := do(t, d.server, http.MethodPost, "/webhooks/transcription",
				`{"jobId":"J1","status":"completed","text":"hi"}`, "X-Scribe-Webhook-Token", "tok")

			assert.Equal(t, tt.want, rec.Code)
			assert.Equal(t, "tok", d.callbacks.signature)
		})
	}
}

func TestServer_Webhook_CustomPathAndRateLimit(t *testing.T) {
	d := newTestServer(t, ServerConfig{WebhookPath: "/hooks/asr", WebhookRate: 0.001, WebhookBurst: 1})
	d.callbacks.job = d.jobs.jobs["J1"]

	first := do(t, d.server, http.MethodPost, "/hooks/asr", `{"jobId":"J1"}`)
	second := do(t, d.server, http.MethodPost, "/hooks/asr", `{"jobId":"J1"}`)

	assert.Equal(t, http.StatusOK, first.Code)
	assert.Equal(t, http.StatusTooManyRequests, second.Code)

	rec := do(t, d.server, http.MethodPost, "/webhooks/transcription", `{"jobId":"J1"}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestServer_WebhookPayload(t *testing.T) {
	d := newTestServer(t, ServerConfig{})

	rec := do(t, d.server, http.MethodGet, "/webhooks/transcription/J1", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"jobId":"J1","status":"completed"}`, rec.Body.String())

	rec = do(t, d.server, http.MethodGet, "/webhooks/transcription/J9", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestServer_GetJob(t *testing.T) {
	d := newTestServer(t, ServerConfig{})

	rec := do(t, d.server, http.MethodGet, "/jobs/J1", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var job domain.TranscriptionJob
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &job))
	assert.Equal(t, "J1", job.JobID)
	assert.Equal(t, domain.JobStatusQueued, job.Status)

	assert.Equal(t, http.StatusNotFound, do(t, d.server, http.MethodGet, "/jobs/ghost", "").Code)
	assert.Equal(t, http.StatusBadRequest, do(t, d.server, http.MethodGet, "/jobs/a%3Ab", "").Code)
}

func TestServer_ListJobs(t *testing.T) {
	d := newTestServer(t, ServerConfig{})

	rec := do(t, d.server, http.MethodGet, "/content/C1/jobs", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var byContent []domain.TranscriptionJob
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &byContent))
	assert.Len(t, byContent, 2)

	rec = do(t, d.server, http.MethodGet, "/owners/U2/jobs", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var byOwner []domain.TranscriptionJob
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &byOwner))
	require.Len(t, byOwner, 1)
	assert.Equal(t, "J2", byOwner[0].JobID)

	rec = do(t, d.server, http.MethodGet, "/owners/nobody/jobs", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())
}

func TestServer_Healthz(t *testing.T) {
	d := newTestServer(t, ServerConfig{})
	rec := do(t, d.server, http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestServer_NotificationStream(t *testing.T) {
	d := newTestServer(t, ServerConfig{})
	ts := httptest.NewServer(d.server)
	defer ts.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, ts.URL+"/notifications/U1", nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))
	reader := bufio.NewReader(resp.Body)

	// The initial keep-alive means the subscription is registered.
	line, err := reader.ReadString('\n')
	require.NoError(t, err)
	assert.Equal(t, ": keep-alive\n", line)

	require.NoError(t, d.bus.Notify(context.Background(), domain.Notification{
		RecipientID: "U1",
		Severity:    domain.SeveritySuccess,
		Message:     "Transcription completed successfully.",
		JobID:       "J1",
	}))

	var event, data string
	for event == "" || data == "" {
		line, err := reader.ReadString('\n')
		require.NoError(t, err)
		switch {
		case strings.HasPrefix(line, "event: "):
			event = strings.TrimSpace(strings.TrimPrefix(line, "event: "))
		case strings.HasPrefix(line, "data: "):
			data = strings.TrimSpace(strings.TrimPrefix(line, "data: "))
		}
	}

	assert.Equal(t, "notification", event)
	var n domain.Notification
	require.NoError(t, json.Unmarshal([]byte(data), &n))
	assert.Equal(t, "J1", n.JobID)
	assert.Equal(t, domain.SeveritySuccess, n.Severity)
}

func TestSSEWrite_MultiLineData(t *testing.T) {
	rec := httptest.NewRecorder()
	sseWrite(rec, "notification", "n1", "a\nb")

	assert.Equal(t, "event: notification\nid: n1\ndata: a\ndata: b\n\n", rec.Body.String())
}
