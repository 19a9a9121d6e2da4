package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestCollectorsRegistered(t *testing.T) {
	before := testutil.ToFloat64(MovementsPosted.WithLabelValues("deposit"))
	MovementsPosted.WithLabelValues("deposit").Inc()
	assert.Equal(t, before+1, testutil.ToFloat64(MovementsPosted.WithLabelValues("deposit")))

	ReconcileMismatches.Set(3)
	assert.Equal(t, float64(3), testutil.ToFloat64(ReconcileMismatches))
	ReconcileMismatches.Set(0)
}
