package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/bnema/scribe/config"
	"github.com/bnema/scribe/internal/adapter/cache/memory"
	HTTPAdapter "github.com/bnema/scribe/internal/adapter/http"
	"github.com/bnema/scribe/internal/adapter/provider/assemblyai"
	sqlitestore "github.com/bnema/scribe/internal/adapter/storage/sqlite"
	"github.com/bnema/scribe/internal/infrastructure/logger"
	"github.com/bnema/scribe/internal/port"
	"github.com/bnema/scribe/internal/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.Error.Printf("failed to load config: %v", err)
		os.Exit(1)
	}
	logger.SetDebug(cfg.Debug)

	logger.Info.Printf("starting scribe on port %d, webhook=%s", cfg.Port, cfg.WebhookURL())

	if err := os.MkdirAll(cfg.DataDir, 0755); err != nil {
		logger.Error.Printf("failed to create data directory: %v", err)
		os.Exit(1)
	}

	store, err := sqlitestore.NewStore(cfg.DataDir)
	if err != nil {
		logger.Error.Printf("failed to create store: %v", err)
		os.Exit(1)
	}
	defer func() { _ = store.Close() }()

	jobs := sqlitestore.NewJobRepository(store)
	content := sqlitestore.NewContentRepository(store)

	jobCache := service.NewJobCache(memory.New(cfg.Cache.Size), service.CacheTTLs{
		Read:    cfg.Cache.ReadTTL,
		Marker:  cfg.Cache.MarkerTTL,
		Payload: cfg.Cache.PayloadTTL,
	})
	eventBus := service.NewEventBus(cfg.Topics.Notifications)

	provider := assemblyai.NewClient(
		assemblyai.NewBackend(cfg.Provider.BaseURL, cfg.Provider.APIKey),
		assemblyai.WebhookAuth{HeaderName: cfg.Webhook.AuthHeader, HeaderValue: cfg.Webhook.Secret},
	)

	verifier, err := newVerifier(cfg.Webhook)
	if err != nil {
		logger.Error.Printf("invalid webhook secret: %v", err)
		os.Exit(1)
	}

	orchestrator := service.NewOrchestrator(service.OrchestratorConfig{
		LanguageCode:  cfg.Provider.LanguageCode,
		SpeakerLabels: cfg.Provider.SpeakerLabels,
		WebhookURL:    cfg.WebhookURL(),
		MaxRetries:    cfg.Retry.MaxRetries,
		BaseDelay:     cfg.Retry.BaseDelay,
	}, jobs, content, provider, jobCache, eventBus)
	webhooks := service.NewWebhookHandler(jobs, provider, orchestrator, jobCache, verifier)
	status := service.NewStatusService(jobs, jobCache)

	// Background work: initiation workers, reconciliation and retention.
	workerCtx, workerCancel := context.WithCancel(context.Background())
	defer workerCancel()

	dispatcher := service.NewDispatcher(orchestrator, cfg.Dispatch.Workers, cfg.Dispatch.QueueSize)
	dispatcher.Start(workerCtx)

	reconciler := service.NewReconciler(service.ReconcilerConfig{
		Interval:       cfg.Reconcile.Interval,
		StuckAfter:     cfg.Reconcile.StuckAfter,
		PollsPerSecond: cfg.Reconcile.PollsPerSecond,
	}, jobs, provider, orchestrator)
	go reconciler.Run(workerCtx)

	var retention port.RetentionPolicy = service.NoopRetention{}
	if cfg.Cleanup.MaxAge > 0 {
		retention = service.NewAgeRetention(jobs, cfg.Cleanup.MaxAge)
		logger.Info.Printf("retention: purging finished jobs older than %s", cfg.Cleanup.MaxAge)
	}
	go service.NewCleaner(retention, cfg.Cleanup.Interval).Run(workerCtx)

	server := HTTPAdapter.NewServer(HTTPAdapter.ServerConfig{
		WebhookPath:  cfg.Webhook.Path,
		AuthHeader:   cfg.Webhook.AuthHeader,
		WebhookRate:  cfg.Webhook.RatePerSecond,
		WebhookBurst: cfg.Webhook.Burst,
		BehindProxy:  cfg.BehindProxy,
	}, status, webhooks, dispatcher, eventBus)
	defer server.Close()

	addr := fmt.Sprintf(":%d", cfg.Port)
	httpServer := &http.Server{
		Addr:              addr,
		Handler:           server,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	// Graceful shutdown
	shutdownDone := make(chan struct{})
	go func() {
		defer close(shutdownDone)
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		sig := <-sigChan
		logger.Info.Printf("received %s, shutting down", sig)

		// Stop accepting new requests
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Error.Printf("http shutdown error: %v", err)
		}

		// Let queued initiations finish, then stop the background loops
		dispatcher.Shutdown(20 * time.Second)
		workerCancel()

		logger.Info.Printf("shutdown complete")
	}()

	logger.Info.Printf("server listening on %s", addr)
	if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error.Printf("server failed: %v", err)
		os.Exit(1)
	}
	<-shutdownDone
}

// newVerifier prefers a configured bcrypt hash, then hashes the plain
// secret. With neither, callbacks are accepted unverified.
func newVerifier(cfg config.WebhookConfig) (port.SignatureVerifier, error) {
	var (
		v   *service.SharedSecretVerifier
		err error
	)
	switch {
	case cfg.SecretHash != "":
		v, err = service.NewSharedSecretVerifier(cfg.SecretHash)
	case cfg.Secret != "":
		v, err = service.NewSharedSecretVerifierFromSecret(cfg.Secret)
	default:
		logger.Warn.Printf("no webhook secret configured, callbacks are not authenticated")
		return service.NoopVerifier{}, nil
	}
	if err != nil {
		return nil, err
	}
	return v, nil
}
