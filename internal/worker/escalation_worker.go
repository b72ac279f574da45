package worker

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/civic-kit/grievance-service/internal/observability"
	"github.com/civic-kit/grievance-service/internal/service"
)

// EscalationWorker periodically sweeps for stalled complaints.
type EscalationWorker struct {
	escalations *service.EscalationService
	metrics     *observability.Metrics
	interval    time.Duration
	logger      *zap.Logger
}

// NewEscalationWorker builds the worker. A non-positive interval disables it.
func NewEscalationWorker(escalations *service.EscalationService, metrics *observability.Metrics, interval time.Duration, logger *zap.Logger) *EscalationWorker {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EscalationWorker{
		escalations: escalations,
		metrics:     metrics,
		interval:    interval,
		logger:      logger,
	}
}

// Start launches the sweep loop. It runs one sweep immediately, then on every
// tick until the context is canceled.
func (w *EscalationWorker) Start(ctx context.Context) {
	if w.interval <= 0 {
		w.logger.Info("escalation sweeper disabled")
		return
	}
	go w.run(ctx)
}

func (w *EscalationWorker) run(ctx context.Context) {
	w.logger.Info("escalation sweeper started", zap.Duration("interval", w.interval))
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	w.sweep(ctx)
	for {
		select {
		case <-ctx.Done():
			w.logger.Info("escalation sweeper stopped")
			return
		case <-ticker.C:
			w.sweep(ctx)
		}
	}
}

func (w *EscalationWorker) sweep(ctx context.Context) {
	count, err := w.escalations.Sweep(ctx, time.Now())
	if err != nil {
		w.logger.Error("escalation sweep failed", zap.Error(err))
		return
	}
	w.metrics.RecordEscalations(count)
	if count > 0 {
		w.logger.Info("escalation sweep completed", zap.Int("escalated", count))
	}
}
