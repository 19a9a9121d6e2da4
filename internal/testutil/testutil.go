// Package testutil builds throwaway SQLite ledgers for tests.
package testutil

import (
	"path/filepath"
	"sync"
	"testing"
	"time"

	"banksantri/internal/config"
	"banksantri/internal/infrastructure/database"
	"banksantri/internal/model"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// NewDB opens a migrated and seeded SQLite database under t.TempDir().
func NewDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := database.Open(&config.DatabaseConfig{
		Driver:   "sqlite",
		DSN:      filepath.Join(t.TempDir(), "ledger.db"),
		LogLevel: "silent",
	})
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})

	require.NoError(t, database.Migrate(db))
	_, err = database.SeedTransactionTypes(db)
	require.NoError(t, err)
	return db
}

// TypeID returns the id of a seeded transaction type code.
func TypeID(t *testing.T, db *gorm.DB, code string) int64 {
	t.Helper()
	var tt model.TransactionType
	require.NoError(t, db.Where("code = ?", code).First(&tt).Error)
	return tt.ID
}

func CreateStudent(t *testing.T, db *gorm.DB, nis, name string) *model.Student {
	t.Helper()
	s := &model.Student{NIS: nis, Name: name}
	require.NoError(t, db.Create(s).Error)
	return s
}

// CreateAccount inserts a student and an account with a zero balance.
func CreateAccount(t *testing.T, db *gorm.DB, nis string, status model.AccountStatus) *model.Account {
	t.Helper()
	student := CreateStudent(t, db, nis, "Santri "+nis)
	a := &model.Account{
		AccountNumber: nis,
		CustomerID:    student.ID,
		ProductID:     1,
		Balance:       decimal.Zero,
		Status:        status,
		OpenDate:      time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
	}
	require.NoError(t, db.Create(a).Error)
	return a
}

// Balance reads the cached balance straight from the accounts table.
func Balance(t *testing.T, db *gorm.DB, accountNumber string) decimal.Decimal {
	t.Helper()
	var a model.Account
	require.NoError(t, db.Where("account_number = ?", accountNumber).First(&a).Error)
	return a.Balance
}

// Count returns the number of rows of a model's table.
func Count(t *testing.T, db *gorm.DB, m interface{}) int64 {
	t.Helper()
	var n int64
	require.NoError(t, db.Model(m).Count(&n).Error)
	return n
}

// Dec parses a decimal literal, failing the test on bad input.
func Dec(t *testing.T, s string) decimal.Decimal {
	t.Helper()
	d, err := decimal.NewFromString(s)
	require.NoError(t, err)
	return d
}

// Clock returns a func that yields start, then start+step, start+2*step, ...
// It is safe for concurrent use.
func Clock(start time.Time, step time.Duration) func() time.Time {
	var mu sync.Mutex
	next := start
	return func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		now := next
		next = next.Add(step)
		return now
	}
}
