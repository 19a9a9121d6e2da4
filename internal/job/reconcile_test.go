package job

import (
	"context"
	"testing"
	"time"

	"banksantri/internal/infrastructure/metrics"
	"banksantri/internal/model"
	"banksantri/internal/service"
	"banksantri/internal/testutil"

	promtest "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReconcileJob_RunsUntilCancelled(t *testing.T) {
	db := testutil.NewDB(t)
	testutil.CreateAccount(t, db, "1001", model.AccountStatusActive)
	// balance without any ledger rows
	require.NoError(t, db.Model(&model.Account{}).Where("account_number = ?", "1001").Update("balance", 50).Error)

	job := NewReconcileJob(service.NewReconcileService(db), 10*time.Millisecond)
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan struct{})
	go func() {
		job.Start(ctx)
		close(done)
	}()

	time.Sleep(100 * time.Millisecond)
	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("reconcile job did not stop")
	}
	assert.Equal(t, float64(1), promtest.ToFloat64(metrics.ReconcileMismatches))
}

func TestNewReconcileJob_DefaultInterval(t *testing.T) {
	job := NewReconcileJob(nil, 0)
	assert.Equal(t, time.Hour, job.interval)
}
