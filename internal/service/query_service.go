package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"banksantri/internal/config"
	"banksantri/internal/model"
	"banksantri/internal/repository"

	"gorm.io/gorm"
)

const dateLayout = "2006-01-02"

// MovementQuery carries raw list parameters as they arrive from the HTTP
// layer. Dates are YYYY-MM-DD; empty means unbounded.
type MovementQuery struct {
	AccountNumber   string
	TransactionType string
	StartDate       string
	EndDate         string
	Page            int
	PerPage         int
}

type MovementPage struct {
	Items   []*model.AccountMovement
	Page    int
	PerPage int
	Total   int64
}

type AccountHistory struct {
	Account   *model.Account
	Movements *MovementPage
	Summary   *repository.MovementTotals
}

// QueryService is read-only; it never writes to the ledger or to accounts.
type QueryService struct {
	accountRepo  *repository.AccountRepository
	movementRepo *repository.MovementRepository
	typeRepo     *repository.TransactionTypeRepository
	defaultPer   int
	maxPer       int
	loc          *time.Location
}

func NewQueryService(db *gorm.DB, cfg *config.BusinessConfig) *QueryService {
	return &QueryService{
		accountRepo:  repository.NewAccountRepository(db),
		movementRepo: repository.NewMovementRepository(db),
		typeRepo:     repository.NewTransactionTypeRepository(db),
		defaultPer:   cfg.DefaultPerPage,
		maxPer:       cfg.MaxPerPage,
		loc:          time.Local,
	}
}

// ListMovements returns movements newest first. TransactionType filters on the
// category of the movement's transaction type.
func (s *QueryService) ListMovements(ctx context.Context, q MovementQuery) (*MovementPage, error) {
	filter, err := s.filter(q)
	if err != nil {
		return nil, err
	}
	return s.page(ctx, filter, q.Page, q.PerPage)
}

func (s *QueryService) GetMovement(ctx context.Context, id int64) (*model.AccountMovement, error) {
	movement, err := s.movementRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrMovementNotFound) {
			return nil, notFound("Movement not found", err)
		}
		return nil, internal("Failed to load movement", err)
	}
	return movement, nil
}

// AccountHistory returns the account with its owner, one page of its
// movements and a summary over every movement matching the date filter.
func (s *QueryService) AccountHistory(ctx context.Context, accountNumber string, q MovementQuery) (*AccountHistory, error) {
	account, err := s.accountRepo.GetByNumber(ctx, accountNumber)
	if err != nil {
		if errors.Is(err, repository.ErrAccountNotFound) {
			return nil, notFound("Account not found", err)
		}
		return nil, internal("Failed to load account", err)
	}

	q.AccountNumber = accountNumber
	q.TransactionType = ""
	filter, err := s.filter(q)
	if err != nil {
		return nil, err
	}

	movements, err := s.page(ctx, filter, q.Page, q.PerPage)
	if err != nil {
		return nil, err
	}
	totals, err := s.movementRepo.Totals(ctx, filter)
	if err != nil {
		return nil, internal("Failed to summarize movements", err)
	}

	return &AccountHistory{Account: account, Movements: movements, Summary: totals}, nil
}

// DailySummary rolls movements up per calendar day between two inclusive
// dates, oldest day first.
func (s *QueryService) DailySummary(ctx context.Context, startDate, endDate string) ([]*repository.DailyTotals, error) {
	if strings.TrimSpace(startDate) == "" {
		return nil, validationError("start_date", "The start date field is required.")
	}
	if strings.TrimSpace(endDate) == "" {
		return nil, validationError("end_date", "The end date field is required.")
	}

	from, err := s.parseDate("start_date", startDate)
	if err != nil {
		return nil, err
	}
	to, err := s.parseDate("end_date", endDate)
	if err != nil {
		return nil, err
	}
	if to.Before(from) {
		return nil, validationError("end_date", "The end date must be a date after or equal to start date.")
	}

	rows, err := s.movementRepo.Daily(ctx, from, to.AddDate(0, 0, 1), s.loc)
	if err != nil {
		return nil, internal("Failed to build daily summary", err)
	}
	return rows, nil
}

func (s *QueryService) ListTransactionTypes(ctx context.Context) ([]*model.TransactionType, error) {
	types, err := s.typeRepo.List(ctx)
	if err != nil {
		return nil, internal("Failed to load transaction types", err)
	}
	return types, nil
}

func (s *QueryService) page(ctx context.Context, f repository.MovementFilter, page, perPage int) (*MovementPage, error) {
	page, perPage = s.normalizePaging(page, perPage)
	items, total, err := s.movementRepo.List(ctx, f, page, perPage)
	if err != nil {
		return nil, internal("Failed to list movements", err)
	}
	return &MovementPage{Items: items, Page: page, PerPage: perPage, Total: total}, nil
}

func (s *QueryService) normalizePaging(page, perPage int) (int, int) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = s.defaultPer
	}
	if s.maxPer > 0 && perPage > s.maxPer {
		perPage = s.maxPer
	}
	return page, perPage
}

func (s *QueryService) filter(q MovementQuery) (repository.MovementFilter, error) {
	f := repository.MovementFilter{
		AccountNumber: strings.TrimSpace(q.AccountNumber),
		Category:      strings.TrimSpace(q.TransactionType),
	}
	if f.Category != "" && !model.IsValidCategory(f.Category) {
		return f, validationError("transaction_type", "The selected transaction type is invalid.")
	}

	if q.StartDate != "" {
		from, err := s.parseDate("start_date", q.StartDate)
		if err != nil {
			return f, err
		}
		f.From = &from
	}
	if q.EndDate != "" {
		to, err := s.parseDate("end_date", q.EndDate)
		if err != nil {
			return f, err
		}
		until := to.AddDate(0, 0, 1)
		f.Until = &until
	}
	if f.From != nil && f.Until != nil && !f.Until.After(*f.From) {
		return f, validationError("end_date", "The end date must be a date after or equal to start date.")
	}
	return f, nil
}

func (s *QueryService) parseDate(field, raw string) (time.Time, error) {
	t, err := time.ParseInLocation(dateLayout, strings.TrimSpace(raw), s.loc)
	if err != nil {
		return time.Time{}, validationError(field, "The "+strings.ReplaceAll(field, "_", " ")+" does not match the format Y-m-d.")
	}
	return t, nil
}
