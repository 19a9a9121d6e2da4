package model

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// AccountStatus is the lifecycle state of a savings account. Postings are only
// accepted while the account is AKTIF.
type AccountStatus string

const (
	AccountStatusInactive AccountStatus = "INACTIVE"
	AccountStatusActive   AccountStatus = "AKTIF"
	AccountStatusDormant  AccountStatus = "DORMANT"
	AccountStatusClosed   AccountStatus = "CLOSED"
	AccountStatusBlocked  AccountStatus = "BLOCKED"
)

var accountStatuses = []AccountStatus{
	AccountStatusInactive,
	AccountStatusActive,
	AccountStatusDormant,
	AccountStatusClosed,
	AccountStatusBlocked,
}

// ParseAccountStatus normalizes a status token. The English "ACTIVE" used by
// older clients maps to AKTIF.
func ParseAccountStatus(raw string) (AccountStatus, error) {
	s := AccountStatus(strings.ToUpper(strings.TrimSpace(raw)))
	if s == "ACTIVE" {
		return AccountStatusActive, nil
	}
	for _, known := range accountStatuses {
		if s == known {
			return s, nil
		}
	}
	return "", fmt.Errorf("unknown account status %q", raw)
}

// Account is a Bank Santri savings account. AccountNumber equals the owning
// student's NIS.
//
// Balance is a materialized cache of the ledger: it always equals
// sum(credit_amount) - sum(debit_amount) over the account's movements and is
// only changed by the posting service.
type Account struct {
	AccountNumber string          `gorm:"type:varchar(32);primaryKey" json:"account_number"`
	CustomerID    int64           `gorm:"index;not null" json:"customer_id"`
	ProductID     int64           `gorm:"not null" json:"product_id"`
	Balance       decimal.Decimal `gorm:"type:decimal(20,2);not null;default:0" json:"balance"`
	Status        AccountStatus   `gorm:"type:varchar(16);index;not null" json:"status"`
	OpenDate      time.Time       `gorm:"type:date;not null" json:"open_date"`
	CloseDate     *time.Time      `gorm:"type:date" json:"close_date"`
	CreatedAt     time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time       `gorm:"autoUpdateTime" json:"updated_at"`

	Customer *Student `gorm:"foreignKey:CustomerID;references:ID" json:"customer,omitempty"`
}

func (Account) TableName() string {
	return "accounts"
}

func (a *Account) IsActive() bool {
	return a.Status == AccountStatusActive
}
