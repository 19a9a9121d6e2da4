package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// AccountMovement is one balance-affecting row of the ledger: a single leg of a
// transaction against a single account.
//
// Rows are append-only:
//  1. exactly one of DebitAmount / CreditAmount is non-zero
//  2. BalanceAfterMovement is the running balance of the account including this row
//  3. only Description may change after insert
type AccountMovement struct {
	ID                   int64           `gorm:"primaryKey;autoIncrement" json:"id"`
	AccountNumber        string          `gorm:"type:varchar(32);index:idx_movement_account_time,priority:1;not null" json:"account_number"`
	TransactionID        string          `gorm:"type:char(36);index;not null" json:"transaction_id"`
	MovementTime         time.Time       `gorm:"index:idx_movement_account_time,priority:2;index;not null" json:"movement_time"`
	Description          string          `gorm:"type:varchar(255)" json:"description"`
	DebitAmount          decimal.Decimal `gorm:"type:decimal(20,2);not null;default:0" json:"debit_amount"`
	CreditAmount         decimal.Decimal `gorm:"type:decimal(20,2);not null;default:0" json:"credit_amount"`
	BalanceAfterMovement decimal.Decimal `gorm:"type:decimal(20,2);not null" json:"balance_after_movement"`
	CreatedAt            time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt            time.Time       `gorm:"autoUpdateTime" json:"updated_at"`

	Account     *Account     `gorm:"foreignKey:AccountNumber;references:AccountNumber" json:"account,omitempty"`
	Transaction *Transaction `gorm:"foreignKey:TransactionID" json:"transaction,omitempty"`
}

func (AccountMovement) TableName() string {
	return "account_movements"
}

// AffectsBalance reports whether the row moved money. Such rows can never be
// deleted.
func (m *AccountMovement) AffectsBalance() bool {
	return !m.DebitAmount.IsZero() || !m.CreditAmount.IsZero()
}

// SignedAmount is credit minus debit.
func (m *AccountMovement) SignedAmount() decimal.Decimal {
	return m.CreditAmount.Sub(m.DebitAmount)
}
