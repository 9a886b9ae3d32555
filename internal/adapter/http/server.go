package http

import (
	"net/http"
	"time"

	"github.com/bnema/scribe/internal/adapter/http/middleware"
	"github.com/bnema/scribe/internal/adapter/http/ratelimit"
)

type ServerConfig struct {
	WebhookPath string
	AuthHeader  string
	// WebhookRate is callbacks per second per client. Zero disables the
	// limit.
	WebhookRate  float64
	WebhookBurst int
	BehindProxy  bool
}

type Server struct {
	mux         *http.ServeMux
	handlers    *Handlers
	sseHandler  *SSEHandler
	rateLimiter *ratelimit.ClientLimiter
	cfg         ServerConfig
	handler     http.Handler
}

func NewServer(cfg ServerConfig, jobs JobReader, callbacks CallbackHandler, dispatch Enqueuer, bus Subscriber) *Server {
	if cfg.WebhookPath == "" {
		cfg.WebhookPath = "/webhooks/transcription"
	}

	s := &Server{
		mux:        http.NewServeMux(),
		handlers:   NewHandlers(jobs, callbacks, dispatch, cfg.AuthHeader),
		sseHandler: NewSSEHandler(bus),
		cfg:        cfg,
	}
	if cfg.WebhookRate > 0 {
		s.rateLimiter = ratelimit.NewClientLimiter(cfg.WebhookRate, cfg.WebhookBurst, 10*time.Minute)
	}

	s.registerRoutes()
	s.handler = middleware.RequestID(middleware.SecurityHeaders(s.mux))

	return s
}

func (s *Server) registerRoutes() {
	s.mux.HandleFunc("GET /healthz", s.handlers.Healthz())

	s.mux.HandleFunc("POST /transcriptions", s.handlers.CreateTranscription())

	var webhook http.Handler = s.handlers.Webhook()
	if s.rateLimiter != nil {
		webhook = middleware.RateLimit(s.rateLimiter, s.cfg.BehindProxy, webhook)
	}
	s.mux.Handle("POST "+s.cfg.WebhookPath, webhook)
	s.mux.HandleFunc("GET "+s.cfg.WebhookPath+"/{jobId}", s.handlers.WebhookPayload())

	s.mux.HandleFunc("GET /jobs/{jobId}", s.handlers.GetJob())
	s.mux.HandleFunc("GET /content/{contentId}/jobs", s.handlers.ContentJobs())
	s.mux.HandleFunc("GET /owners/{ownerId}/jobs", s.handlers.OwnerJobs())

	s.mux.HandleFunc("GET /notifications/{recipientId}", s.sseHandler.Notifications())
}

// Close releases the webhook rate limiter.
func (s *Server) Close() {
	if s.rateLimiter != nil {
		s.rateLimiter.Close()
	}
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.handler.ServeHTTP(w, r)
}
