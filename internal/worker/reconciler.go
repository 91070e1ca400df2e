package worker

import (
	"context"
	"errors"
	"sync"
	"time"

	applog "spendlog/internal/log"
)

// DefaultReconcileInterval is used when NewReconciler gets a non-positive interval.
const DefaultReconcileInterval = 15 * time.Minute

// Reconciler runs SyncWorker.Reconcile on startup and then periodically,
// as a backstop for lost events.
type Reconciler struct {
	worker   *SyncWorker
	interval time.Duration

	mu      sync.Mutex
	running bool
	stopCh  chan struct{}
	doneCh  chan struct{}
}

func NewReconciler(w *SyncWorker, interval time.Duration) *Reconciler {
	if interval <= 0 {
		interval = DefaultReconcileInterval
	}
	return &Reconciler{worker: w, interval: interval}
}

// Start begins the reconciliation loop. Returns an error if already running.
func (r *Reconciler) Start(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.running {
		return errors.New("reconciler is already running")
	}
	r.running = true
	r.stopCh = make(chan struct{})
	r.doneCh = make(chan struct{})

	go r.runLoop(ctx, r.stopCh, r.doneCh)

	r.worker.logger.InfoContext(ctx, "Reconciler started", "interval", r.interval.String())
	return nil
}

// Stop signals the loop and waits for the current pass to finish.
func (r *Reconciler) Stop(ctx context.Context) error {
	r.mu.Lock()
	if !r.running {
		r.mu.Unlock()
		return nil
	}
	stopCh, doneCh := r.stopCh, r.doneCh
	r.running = false
	r.mu.Unlock()

	close(stopCh)

	select {
	case <-doneCh:
		r.worker.logger.InfoContext(ctx, "Reconciler stopped gracefully")
		return nil
	case <-ctx.Done():
		r.worker.logger.WarnContext(ctx, "Reconciler stop timed out")
		return ctx.Err()
	}
}

func (r *Reconciler) IsRunning() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.running
}

func (r *Reconciler) runLoop(ctx context.Context, stopCh <-chan struct{}, doneCh chan<- struct{}) {
	defer close(doneCh)

	// The pass itself stops when either the caller ctx or Stop fires.
	passCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	go func() {
		select {
		case <-stopCh:
			cancel()
		case <-passCtx.Done():
		}
	}()

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	r.pass(passCtx)
	for {
		select {
		case <-passCtx.Done():
			return
		case <-ticker.C:
			r.pass(passCtx)
		}
	}
}

func (r *Reconciler) pass(ctx context.Context) {
	if _, _, err := r.worker.Reconcile(ctx); err != nil && ctx.Err() == nil {
		r.worker.logger.ErrorContext(ctx, "Reconciliation failed",
			applog.FieldOperation, applog.OpSync, applog.FieldError, err)
	}
}
