package model

import "time"

// Transaction type categories used for movement filtering.
const (
	CategoryTransfer      = "transfer"
	CategoryPayment       = "payment"
	CategoryCashOperation = "cash_operation"
	CategoryFee           = "fee"
)

func IsValidCategory(c string) bool {
	switch c {
	case CategoryTransfer, CategoryPayment, CategoryCashOperation, CategoryFee:
		return true
	}
	return false
}

type TransactionType struct {
	ID          int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	Code        string    `gorm:"type:varchar(32);uniqueIndex;not null" json:"code"`
	Name        string    `gorm:"type:varchar(128);not null" json:"name"`
	Category    string    `gorm:"type:varchar(32);index;not null" json:"category"`
	Description string    `gorm:"type:varchar(255)" json:"description"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (TransactionType) TableName() string {
	return "transaction_types"
}

// DefaultTransactionTypes is the catalog inserted by the seed command.
func DefaultTransactionTypes() []TransactionType {
	return []TransactionType{
		{Code: "SETORAN", Name: "Setoran Tunai", Category: CategoryCashOperation, Description: "Setoran tunai ke rekening santri"},
		{Code: "PENARIKAN", Name: "Penarikan Tunai", Category: CategoryCashOperation, Description: "Penarikan tunai dari rekening santri"},
		{Code: "TRANSFER", Name: "Transfer Antar Rekening", Category: CategoryTransfer, Description: "Pemindahbukuan antar rekening santri"},
		{Code: "PEMBAYARAN", Name: "Pembayaran", Category: CategoryPayment, Description: "Pembayaran kebutuhan pondok"},
		{Code: "BIAYA_ADMIN", Name: "Biaya Administrasi", Category: CategoryFee, Description: "Biaya administrasi rekening"},
	}
}
