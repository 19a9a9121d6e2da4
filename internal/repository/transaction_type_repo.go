package repository

import (
	"context"
	"errors"

	"banksantri/internal/model"

	"gorm.io/gorm"
)

var ErrTransactionTypeNotFound = errors.New("transaction type not found")

type TransactionTypeRepository struct {
	db *gorm.DB
}

func NewTransactionTypeRepository(db *gorm.DB) *TransactionTypeRepository {
	return &TransactionTypeRepository{db: db}
}

func (r *TransactionTypeRepository) GetByID(ctx context.Context, tx *gorm.DB, id int64) (*model.TransactionType, error) {
	var tt model.TransactionType
	err := pick(r.db, tx).WithContext(ctx).First(&tt, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTransactionTypeNotFound
		}
		return nil, err
	}
	return &tt, nil
}

func (r *TransactionTypeRepository) List(ctx context.Context) ([]*model.TransactionType, error) {
	var types []*model.TransactionType
	err := r.db.WithContext(ctx).Order("id ASC").Find(&types).Error
	return types, err
}
