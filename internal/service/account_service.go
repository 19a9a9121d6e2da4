package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"banksantri/internal/model"
	"banksantri/internal/repository"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type AccountService struct {
	accountRepo *repository.AccountRepository
	studentRepo *repository.StudentRepository
	now         func() time.Time
}

func NewAccountService(db *gorm.DB) *AccountService {
	return &AccountService{
		accountRepo: repository.NewAccountRepository(db),
		studentRepo: repository.NewStudentRepository(db),
		now:         time.Now,
	}
}

// Open creates the savings account of a student. The account number is the
// student's NIS; new accounts start INACTIVE with a zero balance.
func (s *AccountService) Open(ctx context.Context, customerID, productID int64) (*model.Account, error) {
	if customerID <= 0 {
		return nil, validationError("customer_id", "The customer id field is required.")
	}
	if productID <= 0 {
		return nil, validationError("product_id", "The product id field is required.")
	}

	student, err := s.studentRepo.GetByID(ctx, customerID)
	if err != nil {
		if errors.Is(err, repository.ErrStudentNotFound) {
			return nil, notFound("Customer not found", err)
		}
		return nil, internal("Failed to open account", err)
	}

	account := &model.Account{
		AccountNumber: student.NIS,
		CustomerID:    student.ID,
		ProductID:     productID,
		Balance:       decimal.Zero,
		Status:        model.AccountStatusInactive,
		OpenDate:      s.now(),
	}
	if err := s.accountRepo.Create(ctx, nil, account); err != nil {
		if errors.Is(err, repository.ErrAccountExists) {
			return nil, conflict(fmt.Sprintf("Account %s already exists", student.NIS))
		}
		return nil, internal("Failed to open account", err)
	}

	zap.L().Info("account opened",
		zap.String("component", "account"),
		zap.String("account_number", account.AccountNumber),
		zap.Int64("customer_id", customerID),
	)
	account.Customer = student
	return account, nil
}

func (s *AccountService) Get(ctx context.Context, accountNumber string) (*model.Account, error) {
	account, err := s.accountRepo.GetByNumber(ctx, accountNumber)
	if err != nil {
		if errors.Is(err, repository.ErrAccountNotFound) {
			return nil, notFound("Account not found", err)
		}
		return nil, internal("Failed to load account", err)
	}
	return account, nil
}

// SetStatus moves an account to one of the five known statuses. Closing
// stamps close_date; any other status clears it.
func (s *AccountService) SetStatus(ctx context.Context, accountNumber, rawStatus string) (*model.Account, error) {
	status, err := model.ParseAccountStatus(rawStatus)
	if err != nil {
		return nil, validationError("status", "The selected status is invalid.")
	}

	var closeDate *time.Time
	if status == model.AccountStatusClosed {
		now := s.now()
		closeDate = &now
	}

	if err := s.accountRepo.UpdateStatus(ctx, accountNumber, status, closeDate); err != nil {
		if errors.Is(err, repository.ErrAccountNotFound) {
			return nil, notFound("Account not found", err)
		}
		return nil, internal("Failed to update account status", err)
	}

	zap.L().Info("account status changed",
		zap.String("component", "account"),
		zap.String("account_number", accountNumber),
		zap.String("status", string(status)),
	)
	return s.Get(ctx, accountNumber)
}
