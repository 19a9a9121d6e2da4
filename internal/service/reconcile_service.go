package service

import (
	"context"
	"errors"
	"fmt"

	"banksantri/internal/infrastructure/metrics"
	"banksantri/internal/model"
	"banksantri/internal/repository"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ReconcileReport compares an account's cached balance with the fold of its
// ledger rows.
type ReconcileReport struct {
	AccountNumber string          `json:"account_number"`
	CachedBalance decimal.Decimal `json:"cached_balance"`
	LedgerBalance decimal.Decimal `json:"ledger_balance"`
	MovementCount int64           `json:"movement_count"`

	// SnapshotMismatches lists movement ids whose balance_after_movement
	// differs from the running sum at that row.
	SnapshotMismatches []int64 `json:"snapshot_mismatches"`
	// InvalidMovements lists movement ids carrying both a debit and a credit.
	InvalidMovements []int64 `json:"invalid_movements"`

	Consistent bool `json:"consistent"`
}

type ReconcileService struct {
	db           *gorm.DB
	accountRepo  *repository.AccountRepository
	movementRepo *repository.MovementRepository
}

func NewReconcileService(db *gorm.DB) *ReconcileService {
	return &ReconcileService{
		db:           db,
		accountRepo:  repository.NewAccountRepository(db),
		movementRepo: repository.NewMovementRepository(db),
	}
}

// ReconcileAccount recomputes the balance of one account from its movements,
// ordered by movement_time then id. The account row is locked for the
// duration so no posting interleaves with the fold.
func (s *ReconcileService) ReconcileAccount(ctx context.Context, accountNumber string) (*ReconcileReport, error) {
	var report *ReconcileReport
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		account, err := s.accountRepo.GetByNumberForUpdate(ctx, tx, accountNumber)
		if err != nil {
			if errors.Is(err, repository.ErrAccountNotFound) {
				return notFound("Account not found", err)
			}
			return err
		}

		r := &ReconcileReport{
			AccountNumber:      account.AccountNumber,
			CachedBalance:      account.Balance,
			LedgerBalance:      decimal.Zero,
			SnapshotMismatches: []int64{},
			InvalidMovements:   []int64{},
		}
		err = s.movementRepo.EachForAccount(ctx, tx, accountNumber, func(m *model.AccountMovement) error {
			r.MovementCount++
			if !m.DebitAmount.IsZero() && !m.CreditAmount.IsZero() {
				r.InvalidMovements = append(r.InvalidMovements, m.ID)
			}
			r.LedgerBalance = r.LedgerBalance.Add(m.SignedAmount())
			if !r.LedgerBalance.Equal(m.BalanceAfterMovement) {
				r.SnapshotMismatches = append(r.SnapshotMismatches, m.ID)
			}
			return nil
		})
		if err != nil {
			return fmt.Errorf("fold movements: %w", err)
		}

		r.Consistent = r.CachedBalance.Equal(r.LedgerBalance) &&
			len(r.SnapshotMismatches) == 0 &&
			len(r.InvalidMovements) == 0
		report = r
		return nil
	})
	if err != nil {
		return nil, asServiceError(err, "Failed to reconcile account")
	}

	if !report.Consistent {
		zap.L().Warn("ledger mismatch",
			zap.String("component", "reconcile"),
			zap.String("account_number", report.AccountNumber),
			zap.String("cached_balance", report.CachedBalance.String()),
			zap.String("ledger_balance", report.LedgerBalance.String()),
			zap.Int("snapshot_mismatches", len(report.SnapshotMismatches)),
			zap.Int("invalid_movements", len(report.InvalidMovements)),
		)
	}
	return report, nil
}

// ReconcileAll reconciles every account and returns the inconsistent ones.
// An account that fails to reconcile is logged and skipped.
func (s *ReconcileService) ReconcileAll(ctx context.Context) ([]*ReconcileReport, error) {
	numbers, err := s.accountRepo.ListNumbers(ctx)
	if err != nil {
		return nil, internal("Failed to list accounts", err)
	}

	mismatched := make([]*ReconcileReport, 0)
	for _, n := range numbers {
		if err := ctx.Err(); err != nil {
			return mismatched, err
		}
		report, err := s.ReconcileAccount(ctx, n)
		if err != nil {
			zap.L().Error("reconcile account", zap.String("component", "reconcile"), zap.String("account_number", n), zap.Error(err))
			continue
		}
		if !report.Consistent {
			mismatched = append(mismatched, report)
		}
	}
	// a cancelled run must not publish a partial count
	if err := ctx.Err(); err != nil {
		return mismatched, err
	}

	metrics.ReconcileMismatches.Set(float64(len(mismatched)))
	zap.L().Info("reconcile finished",
		zap.String("component", "reconcile"),
		zap.Int("accounts", len(numbers)),
		zap.Int("mismatched", len(mismatched)),
	)
	return mismatched, nil
}
