package model

import (
	"time"
)

const (
	OutboxStatusPending = "PENDING"
	OutboxStatusSent    = "SENT"
	OutboxStatusFailed  = "FAILED"
)

// OutboxMessage is written in the same database transaction as the posting it
// describes and relayed to Kafka afterwards.
type OutboxMessage struct {
	ID         int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	MessageKey string    `gorm:"type:varchar(64);not null" json:"message_key"`
	Topic      string    `gorm:"type:varchar(128);not null" json:"topic"`
	Payload    string    `gorm:"type:text;not null" json:"payload"`
	Status     string    `gorm:"type:varchar(20);index;not null;default:PENDING" json:"status"`
	RetryCount int       `gorm:"not null;default:0" json:"retry_count"`
	CreatedAt  time.Time `gorm:"autoCreateTime;index" json:"created_at"`
	UpdatedAt  time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (OutboxMessage) TableName() string {
	return "outbox_messages"
}

// MovementPostedEvent is the outbox payload for a completed posting.
type MovementPostedEvent struct {
	TransactionID      string  `json:"transaction_id"`
	TransactionTypeID  int64   `json:"transaction_type_id"`
	AccountNumber      string  `json:"account_number"`
	DestinationAccount *string `json:"destination_account,omitempty"`
	Amount             string  `json:"amount"`
	Channel            Channel `json:"channel"`
	ReferenceNumber    string  `json:"reference_number"`
	MovementIDs        []int64 `json:"movement_ids"`
	BalanceAfter       string  `json:"balance_after"`
	PostedAt           string  `json:"posted_at"`
}

// AllModels lists every table managed by AutoMigrate.
func AllModels() []interface{} {
	return []interface{}{
		&Student{},
		&TransactionType{},
		&Account{},
		&Transaction{},
		&AccountMovement{},
		&OutboxMessage{},
	}
}
