package repository

import (
	"context"
	"errors"
	"time"

	"banksantri/internal/model"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	ErrAccountNotFound = errors.New("account not found")
	ErrAccountExists   = errors.New("account already exists")
)

type AccountRepository struct {
	db *gorm.DB
}

func NewAccountRepository(db *gorm.DB) *AccountRepository {
	return &AccountRepository{db: db}
}

// pick runs on tx when the caller is inside a transaction.
func pick(db, tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return db
}

func (r *AccountRepository) Create(ctx context.Context, tx *gorm.DB, account *model.Account) error {
	var count int64
	err := pick(r.db, tx).WithContext(ctx).
		Model(&model.Account{}).
		Where("account_number = ?", account.AccountNumber).
		Count(&count).Error
	if err != nil {
		return err
	}
	if count > 0 {
		return ErrAccountExists
	}
	return pick(r.db, tx).WithContext(ctx).Create(account).Error
}

func (r *AccountRepository) GetByNumber(ctx context.Context, accountNumber string) (*model.Account, error) {
	var account model.Account
	err := r.db.WithContext(ctx).
		Preload("Customer").
		Where("account_number = ?", accountNumber).
		First(&account).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAccountNotFound
		}
		return nil, err
	}
	return &account, nil
}

// GetByNumberForUpdate reads the account with a row lock held until tx ends.
// Every balance read that feeds a balance write goes through here.
func (r *AccountRepository) GetByNumberForUpdate(ctx context.Context, tx *gorm.DB, accountNumber string) (*model.Account, error) {
	var account model.Account
	err := tx.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("account_number = ?", accountNumber).
		First(&account).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAccountNotFound
		}
		return nil, err
	}
	return &account, nil
}

// ApplyDelta adds signedAmount to a locked account and returns the new
// balance. account must come from GetByNumberForUpdate on the same tx.
func (r *AccountRepository) ApplyDelta(ctx context.Context, tx *gorm.DB, account *model.Account, signedAmount decimal.Decimal) (decimal.Decimal, error) {
	newBalance := account.Balance.Add(signedAmount)

	result := tx.WithContext(ctx).
		Model(&model.Account{}).
		Where("account_number = ?", account.AccountNumber).
		Update("balance", newBalance)
	if result.Error != nil {
		return decimal.Zero, result.Error
	}
	if result.RowsAffected == 0 {
		return decimal.Zero, ErrAccountNotFound
	}

	account.Balance = newBalance
	return newBalance, nil
}

func (r *AccountRepository) UpdateStatus(ctx context.Context, accountNumber string, status model.AccountStatus, closeDate *time.Time) error {
	result := r.db.WithContext(ctx).
		Model(&model.Account{}).
		Where("account_number = ?", accountNumber).
		Updates(map[string]interface{}{
			"status":     status,
			"close_date": closeDate,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		// MySQL reports 0 affected rows when nothing changed
		var count int64
		if err := r.db.WithContext(ctx).Model(&model.Account{}).Where("account_number = ?", accountNumber).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return ErrAccountNotFound
		}
	}
	return nil
}

// ListNumbers returns every account number in ascending order.
func (r *AccountRepository) ListNumbers(ctx context.Context) ([]string, error) {
	var numbers []string
	err := r.db.WithContext(ctx).
		Model(&model.Account{}).
		Order("account_number ASC").
		Pluck("account_number", &numbers).Error
	return numbers, err
}
