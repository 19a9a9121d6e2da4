package service

import (
	"context"
	"fmt"

	"banksantri/internal/model"
	"banksantri/internal/repository"
	"banksantri/pkg/idgen"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// RecordInput describes one financial event. Amount is the magnitude of the
// posted delta.
type RecordInput struct {
	TransactionTypeID  int64
	Description        string
	Amount             decimal.Decimal
	Channel            model.Channel
	SourceAccount      string
	DestinationAccount string
	ReferenceNumber    string
}

// TransactionRecorder writes the immutable transaction row of a posting.
type TransactionRecorder struct {
	transactionRepo *repository.TransactionRepository
}

func NewTransactionRecorder(db *gorm.DB) *TransactionRecorder {
	return &TransactionRecorder{
		transactionRepo: repository.NewTransactionRepository(db),
	}
}

// Record inserts a SUCCESS transaction on tx. There is no pending workflow in
// the ledger, so the status is fixed at creation.
func (r *TransactionRecorder) Record(ctx context.Context, tx *gorm.DB, in RecordInput) (*model.Transaction, error) {
	if !in.Amount.IsPositive() {
		return nil, validationError("amount", "The transaction amount must be greater than zero.")
	}

	channel := in.Channel
	if channel == "" {
		channel = model.ChannelCash
	}
	if !channel.Valid() {
		return nil, validationError("channel", fmt.Sprintf("The selected channel %q is invalid.", channel))
	}

	reference := in.ReferenceNumber
	if reference == "" {
		reference = idgen.GenerateReferenceNo()
	}

	trans := &model.Transaction{
		ID:                uuid.NewString(),
		TransactionTypeID: in.TransactionTypeID,
		Description:       in.Description,
		Amount:            in.Amount.Abs(),
		Status:            model.TransactionStatusSuccess,
		ReferenceNumber:   reference,
		Channel:           channel,
		SourceAccount:     in.SourceAccount,
	}
	if in.DestinationAccount != "" {
		dest := in.DestinationAccount
		trans.DestinationAccount = &dest
	}

	if err := r.transactionRepo.Create(ctx, tx, trans); err != nil {
		return nil, fmt.Errorf("create transaction: %w", err)
	}
	return trans, nil
}
