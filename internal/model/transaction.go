package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type TransactionStatus string

const (
	TransactionStatusSuccess  TransactionStatus = "SUCCESS"
	TransactionStatusPending  TransactionStatus = "PENDING"
	TransactionStatusFailed   TransactionStatus = "FAILED"
	TransactionStatusReversed TransactionStatus = "REVERSED"
)

type Channel string

const (
	ChannelCash     Channel = "CASH"
	ChannelTransfer Channel = "TRANSFER"
	ChannelMobile   Channel = "MOBILE"
)

func (c Channel) Valid() bool {
	switch c {
	case ChannelCash, ChannelTransfer, ChannelMobile:
		return true
	}
	return false
}

// Transaction is one business event (deposit, withdrawal, transfer). It is
// written once together with its movements and never modified by the ledger.
// Amount is always the non-negative magnitude of the posted delta.
type Transaction struct {
	ID                 string            `gorm:"type:char(36);primaryKey" json:"id"`
	TransactionTypeID  int64             `gorm:"index;not null" json:"transaction_type_id"`
	Description        string            `gorm:"type:varchar(255)" json:"description"`
	Amount             decimal.Decimal   `gorm:"type:decimal(20,2);not null" json:"amount"`
	Status             TransactionStatus `gorm:"type:varchar(16);not null" json:"status"`
	ReferenceNumber    string            `gorm:"type:varchar(64);index" json:"reference_number"`
	Channel            Channel           `gorm:"type:varchar(16);not null" json:"channel"`
	SourceAccount      string            `gorm:"type:varchar(32);index;not null" json:"source_account"`
	DestinationAccount *string           `gorm:"type:varchar(32);index" json:"destination_account"`
	CreatedAt          time.Time         `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt          time.Time         `gorm:"autoUpdateTime" json:"updated_at"`

	TransactionType *TransactionType `gorm:"foreignKey:TransactionTypeID" json:"transaction_type,omitempty"`
}

func (Transaction) TableName() string {
	return "transactions"
}
