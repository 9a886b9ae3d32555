package http

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/bnema/scribe/internal/adapter/http/validation"
	"github.com/bnema/scribe/internal/domain"
	"github.com/bnema/scribe/internal/infrastructure/logger"
	"github.com/bnema/scribe/internal/service"
)

// maxBodyBytes bounds request and callback bodies.
const maxBodyBytes = 1 << 20

type JobReader interface {
	GetJob(ctx context.Context, jobID string) (*domain.TranscriptionJob, error)
	GetJobsByContent(ctx context.Context, contentID string) ([]*domain.TranscriptionJob, error)
	GetJobsByOwner(ctx context.Context, ownerID string) ([]*domain.TranscriptionJob, error)
}

type CallbackHandler interface {
	HandleCallback(ctx context.Context, raw []byte, signature string) (*domain.TranscriptionJob, error)
	Callback(ctx context.Context, jobID string) ([]byte, error)
}

type Enqueuer interface {
	Enqueue(req service.InitiateRequest) error
}

type Handlers struct {
	jobs       JobReader
	callbacks  CallbackHandler
	dispatch   Enqueuer
	authHeader string
}

func NewHandlers(jobs JobReader, callbacks CallbackHandler, dispatch Enqueuer, authHeader string) *Handlers {
	return &Handlers{
		jobs:       jobs,
		callbacks:  callbacks,
		dispatch:   dispatch,
		authHeader: authHeader,
	}
}

type acceptedResponse struct {
	Status    string `json:"status"`
	ContentID string `json:"contentId"`
}

// CreateTranscription queues a transcription and answers 202 immediately.
// The job id is only known once the provider accepts the submission, so
// callers learn it from the notification stream.
func (h *Handlers) CreateTranscription() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req service.InitiateRequest
		dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid json body")
			return
		}
		if err := validation.ValidateIdentifier("contentId", req.ContentID); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		if err := validation.ValidateIdentifier("ownerId", req.OwnerID); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		if _, err := validation.ValidateAudioURL(req.AudioURL); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}

		if err := h.dispatch.Enqueue(req); err != nil {
			switch {
			case errors.Is(err, domain.ErrQueueFull):
				w.Header().Set("Retry-After", "5")
				writeError(w, http.StatusServiceUnavailable, "queue full, try later")
			case errors.Is(err, service.ErrDispatcherClosed):
				writeError(w, http.StatusServiceUnavailable, "shutting down")
			default:
				logger.Error.Printf("enqueue content %s: %v", logger.SanitizeForLog(req.ContentID), err)
				writeError(w, http.StatusInternalServerError, "internal error")
			}
			return
		}

		writeJSON(w, http.StatusAccepted, acceptedResponse{Status: "accepted", ContentID: req.ContentID})
	}
}

// Webhook receives provider completion callbacks.
func (h *Handlers) Webhook() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		raw, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
		if err != nil {
			writeError(w, http.StatusRequestEntityTooLarge, "body too large")
			return
		}

		job, err := h.callbacks.HandleCallback(r.Context(), raw, r.Header.Get(h.authHeader))
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, job)
	}
}

// WebhookPayload returns the last raw callback body kept for a job.
func (h *Handlers) WebhookPayload() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		jobID := r.PathValue("jobId")
		if err := validation.ValidateIdentifier("jobId", jobID); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}

		raw, err := h.callbacks.Callback(r.Context(), jobID)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(raw)
	}
}

func (h *Handlers) GetJob() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		jobID := r.PathValue("jobId")
		if err := validation.ValidateIdentifier("jobId", jobID); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}

		job, err := h.jobs.GetJob(r.Context(), jobID)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, job)
	}
}

func (h *Handlers) ContentJobs() http.HandlerFunc {
	return h.listJobs("contentId", h.jobs.GetJobsByContent)
}

func (h *Handlers) OwnerJobs() http.HandlerFunc {
	return h.listJobs("ownerId", h.jobs.GetJobsByOwner)
}

func (h *Handlers) listJobs(param string, list func(context.Context, string) ([]*domain.TranscriptionJob, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := r.PathValue(param)
		if err := validation.ValidateIdentifier(param, id); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}

		jobs, err := list(r.Context(), id)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		if jobs == nil {
			jobs = []*domain.TranscriptionJob{}
		}
		writeJSON(w, http.StatusOK, jobs)
	}
}

func (h *Handlers) Healthz() http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Error.Printf("encode response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

// writeServiceError maps service sentinels onto status codes. Anything
// unrecognised is logged and reported as a 500 without detail.
func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		writeError(w, http.StatusNotFound, "not found")
	case errors.Is(err, domain.ErrInvalidInput):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrSignature):
		writeError(w, http.StatusUnauthorized, "invalid callback signature")
	case errors.Is(err, domain.ErrProvider), errors.Is(err, domain.ErrTransient):
		logger.Warn.Printf("upstream failure: %s", logger.SanitizeErr(err))
		writeError(w, http.StatusBadGateway, "upstream failure")
	default:
		logger.Error.Printf("request failed: %v", err)
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}
