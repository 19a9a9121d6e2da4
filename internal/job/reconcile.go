package job

import (
	"context"
	"time"

	"banksantri/internal/service"

	"go.uber.org/zap"
)

// ReconcileJob periodically folds every account's ledger and compares it with
// the cached balance.
type ReconcileJob struct {
	reconciler *service.ReconcileService
	stopCh     chan struct{}
	interval   time.Duration
}

func NewReconcileJob(reconciler *service.ReconcileService, interval time.Duration) *ReconcileJob {
	if interval <= 0 {
		interval = time.Hour
	}
	return &ReconcileJob{
		reconciler: reconciler,
		stopCh:     make(chan struct{}),
		interval:   interval,
	}
}

func (j *ReconcileJob) Start(ctx context.Context) {
	log := zap.L().With(zap.String("component", "reconcile"))
	log.Info("reconcile job started", zap.Duration("interval", j.interval))

	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Info("reconcile job stopped by context")
			return
		case <-j.stopCh:
			log.Info("reconcile job stopped")
			return
		case <-ticker.C:
			j.run(ctx)
		}
	}
}

func (j *ReconcileJob) Stop() {
	close(j.stopCh)
}

func (j *ReconcileJob) run(ctx context.Context) {
	mismatched, err := j.reconciler.ReconcileAll(ctx)
	if err != nil {
		zap.L().Error("reconcile run", zap.String("component", "reconcile"), zap.Error(err))
		return
	}
	for _, r := range mismatched {
		zap.L().Warn("account out of balance",
			zap.String("component", "reconcile"),
			zap.String("account_number", r.AccountNumber),
			zap.String("cached_balance", r.CachedBalance.String()),
			zap.String("ledger_balance", r.LedgerBalance.String()),
		)
	}
}
