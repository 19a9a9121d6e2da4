package service

import (
	"context"
	"testing"
	"time"

	"banksantri/internal/config"
	"banksantri/internal/model"
	"banksantri/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// seedScenarios runs scenarios A to D on 2025-01-15 and one deposit on
// 2025-02-03 outside the January window.
func seedScenarios(t *testing.T) (*postingEnv, *QueryService) {
	t.Helper()
	env := newPostingEnv(t, nil, nil)
	testutil.CreateAccount(t, env.db, "1001", model.AccountStatusActive)
	testutil.CreateAccount(t, env.db, "1002", model.AccountStatusActive)

	_, err := env.post(t, "1001", env.setoran, "100000", "Setoran awal", "")
	require.NoError(t, err)
	_, err = env.post(t, "1001", env.tarik, "-30000", "Penarikan", "")
	require.NoError(t, err)
	_, err = env.post(t, "1001", env.tarik, "-100000", "Penarikan besar", "")
	require.Error(t, err)
	_, err = env.post(t, "1001", env.transfer, "-50000", "Bayar kitab", "1002")
	require.NoError(t, err)

	env.svc.now = testutil.Clock(time.Date(2025, 2, 3, 8, 0, 0, 0, time.UTC), time.Minute)
	_, err = env.post(t, "1002", env.setoran, "5000", "Setoran Februari", "")
	require.NoError(t, err)

	q := NewQueryService(env.db, &config.BusinessConfig{DefaultPerPage: 15, MaxPerPage: 100})
	q.loc = time.UTC
	return env, q
}

func TestDailySummary_ScenarioE(t *testing.T) {
	_, q := seedScenarios(t)

	rows, err := q.DailySummary(context.Background(), "2025-01-01", "2025-01-31")
	require.NoError(t, err)
	require.Len(t, rows, 1)

	day := rows[0]
	assert.Equal(t, "2025-01-15", day.Date)
	assertDec(t, "150000", day.TotalCredit)
	assertDec(t, "80000", day.TotalDebit)
	assertDec(t, "70000", day.NetAmount)
	assert.EqualValues(t, 4, day.TransactionCount)
}

func TestDailySummary_OrderedByDate(t *testing.T) {
	_, q := seedScenarios(t)

	rows, err := q.DailySummary(context.Background(), "2025-01-01", "2025-02-28")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "2025-01-15", rows[0].Date)
	assert.Equal(t, "2025-02-03", rows[1].Date)
	assertDec(t, "5000", rows[1].NetAmount)

	// a single-day window includes that whole day
	rows, err = q.DailySummary(context.Background(), "2025-02-03", "2025-02-03")
	require.NoError(t, err)
	require.Len(t, rows, 1)
}

func TestDailySummary_BucketsByServiceLocation(t *testing.T) {
	wib := time.FixedZone("WIB", 7*60*60)
	env := newPostingEnv(t, nil, nil)
	testutil.CreateAccount(t, env.db, "1001", model.AccountStatusActive)

	// 02:00 WIB on the 15th is still the 14th in UTC
	env.svc.now = testutil.Clock(time.Date(2025, 1, 15, 2, 0, 0, 0, wib), time.Minute)
	_, err := env.post(t, "1001", env.setoran, "100", "Setoran subuh", "")
	require.NoError(t, err)
	env.svc.now = testutil.Clock(time.Date(2025, 1, 15, 23, 30, 0, 0, wib), time.Minute)
	_, err = env.post(t, "1001", env.tarik, "-40", "Jajan malam", "")
	require.NoError(t, err)
	env.svc.now = testutil.Clock(time.Date(2025, 1, 16, 0, 30, 0, 0, wib), time.Minute)
	_, err = env.post(t, "1001", env.setoran, "5", "Lewat tengah malam", "")
	require.NoError(t, err)

	q := NewQueryService(env.db, &config.BusinessConfig{DefaultPerPage: 15, MaxPerPage: 100})
	q.loc = wib

	rows, err := q.DailySummary(context.Background(), "2025-01-15", "2025-01-15")
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "2025-01-15", rows[0].Date)
	assertDec(t, "100", rows[0].TotalCredit)
	assertDec(t, "40", rows[0].TotalDebit)
	assertDec(t, "60", rows[0].NetAmount)
	assert.EqualValues(t, 2, rows[0].TransactionCount)

	rows, err = q.DailySummary(context.Background(), "2025-01-14", "2025-01-16")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "2025-01-15", rows[0].Date)
	assert.Equal(t, "2025-01-16", rows[1].Date)
	assertDec(t, "5", rows[1].NetAmount)

	// the list filter uses the same day boundaries
	page, err := q.ListMovements(context.Background(), MovementQuery{StartDate: "2025-01-15", EndDate: "2025-01-15"})
	require.NoError(t, err)
	assert.EqualValues(t, 2, page.Total)
}

func TestDailySummary_Validation(t *testing.T) {
	q := NewQueryService(testutil.NewDB(t), &config.BusinessConfig{DefaultPerPage: 15, MaxPerPage: 100})

	tests := []struct {
		name       string
		start, end string
		field      string
	}{
		{"missing start", "", "2025-01-31", "start_date"},
		{"missing end", "2025-01-01", "", "end_date"},
		{"bad format", "01/01/2025", "2025-01-31", "start_date"},
		{"end before start", "2025-01-31", "2025-01-01", "end_date"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := q.DailySummary(context.Background(), tt.start, tt.end)
			assertKind(t, KindValidation, err)

			var se *Error
			require.ErrorAs(t, err, &se)
			assert.Contains(t, se.Fields, tt.field)
		})
	}
}

func TestListMovements(t *testing.T) {
	_, q := seedScenarios(t)
	ctx := context.Background()

	t.Run("newest first with relations", func(t *testing.T) {
		page, err := q.ListMovements(ctx, MovementQuery{})
		require.NoError(t, err)
		assert.EqualValues(t, 5, page.Total)
		assert.Equal(t, 1, page.Page)
		assert.Equal(t, 15, page.PerPage)
		require.Len(t, page.Items, 5)
		assert.Equal(t, "Setoran Februari", page.Items[0].Description)
		assert.Equal(t, "Setoran awal", page.Items[4].Description)
		for i := 1; i < len(page.Items); i++ {
			assert.False(t, page.Items[i].MovementTime.After(page.Items[i-1].MovementTime))
		}
		require.NotNil(t, page.Items[0].Account)
		require.NotNil(t, page.Items[0].Account.Customer)
		require.NotNil(t, page.Items[0].Transaction)
		require.NotNil(t, page.Items[0].Transaction.TransactionType)
	})

	t.Run("by account", func(t *testing.T) {
		page, err := q.ListMovements(ctx, MovementQuery{AccountNumber: "1002"})
		require.NoError(t, err)
		assert.EqualValues(t, 2, page.Total)
	})

	t.Run("by transaction type category", func(t *testing.T) {
		page, err := q.ListMovements(ctx, MovementQuery{TransactionType: model.CategoryTransfer})
		require.NoError(t, err)
		assert.EqualValues(t, 2, page.Total)
		for _, m := range page.Items {
			assert.Equal(t, model.CategoryTransfer, m.Transaction.TransactionType.Category)
		}
	})

	t.Run("by date range", func(t *testing.T) {
		page, err := q.ListMovements(ctx, MovementQuery{StartDate: "2025-02-01", EndDate: "2025-02-03"})
		require.NoError(t, err)
		assert.EqualValues(t, 1, page.Total)
	})

	t.Run("paging", func(t *testing.T) {
		page, err := q.ListMovements(ctx, MovementQuery{Page: 2, PerPage: 2})
		require.NoError(t, err)
		assert.EqualValues(t, 5, page.Total)
		assert.Len(t, page.Items, 2)

		page, err = q.ListMovements(ctx, MovementQuery{Page: 3, PerPage: 2})
		require.NoError(t, err)
		assert.Len(t, page.Items, 1)
	})

	t.Run("per page is capped", func(t *testing.T) {
		page, err := q.ListMovements(ctx, MovementQuery{Page: -1, PerPage: 1000})
		require.NoError(t, err)
		assert.Equal(t, 1, page.Page)
		assert.Equal(t, 100, page.PerPage)
	})

	t.Run("unknown category", func(t *testing.T) {
		_, err := q.ListMovements(ctx, MovementQuery{TransactionType: "lottery"})
		assertKind(t, KindValidation, err)
	})
}

func TestAccountHistory(t *testing.T) {
	_, q := seedScenarios(t)
	ctx := context.Background()

	h, err := q.AccountHistory(ctx, "1001", MovementQuery{PerPage: 1})
	require.NoError(t, err)
	assert.Equal(t, "1001", h.Account.AccountNumber)
	require.NotNil(t, h.Account.Customer)
	assertDec(t, "20000", h.Account.Balance)

	// summary spans the whole filtered set, not the page
	assert.Len(t, h.Movements.Items, 1)
	assert.EqualValues(t, 3, h.Movements.Total)
	assertDec(t, "100000", h.Summary.TotalCredit)
	assertDec(t, "80000", h.Summary.TotalDebit)
	assert.EqualValues(t, 3, h.Summary.TransactionCount)

	h, err = q.AccountHistory(ctx, "1002", MovementQuery{StartDate: "2025-02-01"})
	require.NoError(t, err)
	assert.EqualValues(t, 1, h.Summary.TransactionCount)
	assertDec(t, "5000", h.Summary.TotalCredit)

	_, err = q.AccountHistory(ctx, "9999", MovementQuery{})
	assertKind(t, KindNotFound, err)
}

func TestGetMovement(t *testing.T) {
	env, q := seedScenarios(t)

	var first model.AccountMovement
	require.NoError(t, env.db.Order("id ASC").First(&first).Error)

	m, err := q.GetMovement(context.Background(), first.ID)
	require.NoError(t, err)
	assert.Equal(t, "Setoran awal", m.Description)

	_, err = q.GetMovement(context.Background(), 424242)
	assertKind(t, KindNotFound, err)
}

func TestListTransactionTypes(t *testing.T) {
	q := NewQueryService(testutil.NewDB(t), &config.BusinessConfig{DefaultPerPage: 15})
	types, err := q.ListTransactionTypes(context.Background())
	require.NoError(t, err)
	assert.Len(t, types, len(model.DefaultTransactionTypes()))
}
