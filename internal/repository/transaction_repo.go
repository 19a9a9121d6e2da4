package repository

import (
	"context"

	"banksantri/internal/model"

	"gorm.io/gorm"
)

// TransactionRepository only inserts; transactions are never updated or
// deleted by the ledger. Reads go through the movement preloads.
type TransactionRepository struct {
	db *gorm.DB
}

func NewTransactionRepository(db *gorm.DB) *TransactionRepository {
	return &TransactionRepository{db: db}
}

func (r *TransactionRepository) Create(ctx context.Context, tx *gorm.DB, trans *model.Transaction) error {
	return pick(r.db, tx).WithContext(ctx).Create(trans).Error
}
