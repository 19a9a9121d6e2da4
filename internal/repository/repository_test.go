package repository

import (
	"context"
	"testing"
	"time"

	"banksantri/internal/model"
	"banksantri/internal/testutil"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

var day = time.Date(2025, 1, 15, 9, 0, 0, 0, time.UTC)

// insertLeg writes a transaction and one movement without going through the
// posting service.
func insertLeg(t *testing.T, db *gorm.DB, account, typeCode string, debit, credit, after int64, at time.Time) *model.AccountMovement {
	t.Helper()
	trans := &model.Transaction{
		ID:                uuid.NewString(),
		TransactionTypeID: testutil.TypeID(t, db, typeCode),
		Amount:            decimal.NewFromInt(debit + credit),
		Status:            model.TransactionStatusSuccess,
		Channel:           model.ChannelCash,
		SourceAccount:     account,
	}
	require.NoError(t, NewTransactionRepository(db).Create(context.Background(), nil, trans))

	m := &model.AccountMovement{
		AccountNumber:        account,
		TransactionID:        trans.ID,
		MovementTime:         at,
		DebitAmount:          decimal.NewFromInt(debit),
		CreditAmount:         decimal.NewFromInt(credit),
		BalanceAfterMovement: decimal.NewFromInt(after),
	}
	require.NoError(t, NewMovementRepository(db).Create(context.Background(), nil, m))
	return m
}

func TestAccountRepository_CreateAndStatus(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewAccountRepository(db)
	ctx := context.Background()
	student := testutil.CreateStudent(t, db, "1001", "Ahmad")

	account := &model.Account{AccountNumber: "1001", CustomerID: student.ID, ProductID: 1, Status: model.AccountStatusInactive, OpenDate: day}
	require.NoError(t, repo.Create(ctx, nil, account))
	assert.ErrorIs(t, repo.Create(ctx, nil, account), ErrAccountExists)

	got, err := repo.GetByNumber(ctx, "1001")
	require.NoError(t, err)
	require.NotNil(t, got.Customer)
	assert.Equal(t, "Ahmad", got.Customer.Name)

	require.NoError(t, repo.UpdateStatus(ctx, "1001", model.AccountStatusActive, nil))
	// unchanged row still resolves as found
	require.NoError(t, repo.UpdateStatus(ctx, "1001", model.AccountStatusActive, nil))
	assert.ErrorIs(t, repo.UpdateStatus(ctx, "9999", model.AccountStatusActive, nil), ErrAccountNotFound)

	_, err = repo.GetByNumber(ctx, "9999")
	assert.ErrorIs(t, err, ErrAccountNotFound)

	numbers, err := repo.ListNumbers(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"1001"}, numbers)
}

func TestAccountRepository_ApplyDelta(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewAccountRepository(db)
	testutil.CreateAccount(t, db, "1001", model.AccountStatusActive)

	err := db.Transaction(func(tx *gorm.DB) error {
		locked, err := repo.GetByNumberForUpdate(context.Background(), tx, "1001")
		if err != nil {
			return err
		}
		balance, err := repo.ApplyDelta(context.Background(), tx, locked, decimal.RequireFromString("125.50"))
		if err != nil {
			return err
		}
		assert.True(t, decimal.RequireFromString("125.5").Equal(balance))
		assert.True(t, balance.Equal(locked.Balance))
		return nil
	})
	require.NoError(t, err)
	assert.True(t, decimal.RequireFromString("125.5").Equal(testutil.Balance(t, db, "1001")))

	err = db.Transaction(func(tx *gorm.DB) error {
		_, err := repo.GetByNumberForUpdate(context.Background(), tx, "9999")
		return err
	})
	assert.ErrorIs(t, err, ErrAccountNotFound)
}

func TestMovementRepository_DeleteIfNoop(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewMovementRepository(db)
	ctx := context.Background()
	testutil.CreateAccount(t, db, "1001", model.AccountStatusActive)

	credit := insertLeg(t, db, "1001", "SETORAN", 0, 100, 100, day)
	noop := insertLeg(t, db, "1001", "SETORAN", 0, 0, 100, day.Add(time.Minute))

	assert.ErrorIs(t, repo.DeleteIfNoop(ctx, credit.ID), ErrMovementAffectsBalance)
	require.NoError(t, repo.DeleteIfNoop(ctx, noop.ID))
	assert.ErrorIs(t, repo.DeleteIfNoop(ctx, noop.ID), ErrMovementNotFound)

	_, err := repo.GetByID(ctx, credit.ID)
	require.NoError(t, err)
}

func TestMovementRepository_Queries(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewMovementRepository(db)
	ctx := context.Background()
	testutil.CreateAccount(t, db, "1001", model.AccountStatusActive)
	testutil.CreateAccount(t, db, "1002", model.AccountStatusActive)

	insertLeg(t, db, "1001", "SETORAN", 0, 1000, 1000, day)
	insertLeg(t, db, "1001", "BIAYA_ADMIN", 50, 0, 950, day.Add(time.Hour))
	insertLeg(t, db, "1002", "SETORAN", 0, 300, 300, day.AddDate(0, 0, 1))

	t.Run("fee category", func(t *testing.T) {
		rows, total, err := repo.List(ctx, MovementFilter{Category: model.CategoryFee}, 1, 10)
		require.NoError(t, err)
		assert.EqualValues(t, 1, total)
		require.Len(t, rows, 1)
		assert.True(t, rows[0].DebitAmount.Equal(decimal.NewFromInt(50)))
		require.NotNil(t, rows[0].Transaction)
		assert.Equal(t, "BIAYA_ADMIN", rows[0].Transaction.TransactionType.Code)
	})

	t.Run("half-open date window", func(t *testing.T) {
		from, until := day, day.AddDate(0, 0, 1)
		totals, err := repo.Totals(ctx, MovementFilter{From: &from, Until: &until})
		require.NoError(t, err)
		assert.EqualValues(t, 2, totals.TransactionCount)
		assert.True(t, totals.TotalCredit.Equal(decimal.NewFromInt(1000)))
		assert.True(t, totals.TotalDebit.Equal(decimal.NewFromInt(50)))
	})

	t.Run("empty totals are zero", func(t *testing.T) {
		totals, err := repo.Totals(ctx, MovementFilter{AccountNumber: "nobody"})
		require.NoError(t, err)
		assert.Zero(t, totals.TransactionCount)
		assert.True(t, totals.TotalCredit.IsZero())
	})

	t.Run("daily", func(t *testing.T) {
		rows, err := repo.Daily(ctx, day.Truncate(24*time.Hour), day.AddDate(0, 0, 2), time.UTC)
		require.NoError(t, err)
		require.Len(t, rows, 2)
		assert.Equal(t, "2025-01-15", rows[0].Date)
		assert.True(t, rows[0].NetAmount.Equal(decimal.NewFromInt(950)))
		assert.Equal(t, "2025-01-16", rows[1].Date)
	})

	t.Run("ledger order", func(t *testing.T) {
		var seen []int64
		err := repo.EachForAccount(ctx, nil, "1001", func(m *model.AccountMovement) error {
			seen = append(seen, m.BalanceAfterMovement.IntPart())
			return nil
		})
		require.NoError(t, err)
		assert.Equal(t, []int64{1000, 950}, seen)
	})
}

func TestOutboxRepository(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewOutboxRepository(db)
	ctx := context.Background()

	for _, key := range []string{"a", "b"} {
		require.NoError(t, repo.Create(ctx, nil, &model.OutboxMessage{MessageKey: key, Topic: "t", Payload: "{}", Status: model.OutboxStatusPending}))
	}

	pending, err := repo.GetPendingMessages(ctx, 10)
	require.NoError(t, err)
	require.Len(t, pending, 2)
	assert.Equal(t, "a", pending[0].MessageKey)

	require.NoError(t, repo.UpdateStatus(ctx, pending[0].ID, model.OutboxStatusSent))
	require.NoError(t, repo.IncrementRetryCount(ctx, pending[1].ID))
	require.NoError(t, repo.MarkAsFailed(ctx, pending[1].ID))

	pending, err = repo.GetPendingMessages(ctx, 10)
	require.NoError(t, err)
	assert.Empty(t, pending)

	var failed model.OutboxMessage
	require.NoError(t, db.Where("message_key = ?", "b").First(&failed).Error)
	assert.Equal(t, model.OutboxStatusFailed, failed.Status)
	assert.Equal(t, 1, failed.RetryCount)
}

func TestStudentAndTypeRepositories(t *testing.T) {
	db := testutil.NewDB(t)
	ctx := context.Background()

	_, err := NewStudentRepository(db).GetByID(ctx, 42)
	assert.ErrorIs(t, err, ErrStudentNotFound)

	types := NewTransactionTypeRepository(db)
	_, err = types.GetByID(ctx, nil, 999)
	assert.ErrorIs(t, err, ErrTransactionTypeNotFound)

	all, err := types.List(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, all)
	got, err := types.GetByID(ctx, nil, all[0].ID)
	require.NoError(t, err)
	assert.Equal(t, all[0].Code, got.Code)
}
