package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/bnema/scribe/internal/domain"
	"github.com/bnema/scribe/internal/infrastructure/logger"
)

var ErrDispatcherClosed = errors.New("dispatcher is not accepting work")

type InitiateRequest struct {
	ContentID string `json:"contentId"`
	AudioURL  string `json:"audioUrl"`
	OwnerID   string `json:"ownerId"`
}

type Initiator interface {
	InitiateJob(ctx context.Context, contentID, audioURL, ownerID string) (*domain.TranscriptionJob, error)
}

// Dispatcher runs job initiation on a bounded worker pool so callers never
// wait on the provider or its retries.
type Dispatcher struct {
	initiator Initiator
	queue     chan InitiateRequest
	workers   int

	mu       sync.Mutex
	started  bool
	closed   bool
	cancel   context.CancelFunc
	wg       sync.WaitGroup
	closeOne sync.Once
}

func NewDispatcher(initiator Initiator, workers, queueSize int) *Dispatcher {
	if workers <= 0 {
		workers = 1
	}
	if queueSize <= 0 {
		queueSize = 1
	}
	return &Dispatcher{
		initiator: initiator,
		queue:     make(chan InitiateRequest, queueSize),
		workers:   workers,
	}
}

func (d *Dispatcher) Start(ctx context.Context) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.started {
		return
	}
	ctx, d.cancel = context.WithCancel(ctx)
	for i := range d.workers {
		d.wg.Add(1)
		go d.runWorker(ctx, i)
	}
	d.started = true
	logger.Info.Printf("started %d dispatch workers", d.workers)
}

func (d *Dispatcher) runWorker(ctx context.Context, id int) {
	defer d.wg.Done()
	for {
		select {
		case <-ctx.Done():
			logger.Info.Printf("dispatch worker %d shutting down", id)
			return
		case req, ok := <-d.queue:
			if !ok {
				return
			}
			if _, err := d.initiator.InitiateJob(ctx, req.ContentID, req.AudioURL, req.OwnerID); err != nil {
				logger.Error.Printf("dispatch worker %d: content %s: %v",
					id, logger.SanitizeForLog(req.ContentID), logger.SanitizeErr(err))
			}
		}
	}
}

// Enqueue hands req to the pool without blocking.
func (d *Dispatcher) Enqueue(req InitiateRequest) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.started || d.closed {
		return ErrDispatcherClosed
	}
	select {
	case d.queue <- req:
		return nil
	default:
		return domain.ErrQueueFull
	}
}

// Shutdown stops accepting work and lets queued requests drain until the
// deadline passes, after which in-flight initiations are cancelled.
func (d *Dispatcher) Shutdown(deadline time.Duration) {
	d.closeOne.Do(func() {
		d.mu.Lock()
		d.closed = true
		close(d.queue)
		cancel := d.cancel
		d.mu.Unlock()

		done := make(chan struct{})
		go func() {
			defer close(done)
			d.wg.Wait()
		}()

		timer := time.NewTimer(deadline)
		defer timer.Stop()
		select {
		case <-done:
		case <-timer.C:
			logger.Warn.Printf("dispatcher shutdown deadline reached, cancelling in-flight work")
			if cancel != nil {
				cancel()
			}
			<-done
		}
		if cancel != nil {
			cancel()
		}
	})
}
