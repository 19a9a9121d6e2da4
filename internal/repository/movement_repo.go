package repository

import (
	"context"
	"errors"
	"time"

	"banksantri/internal/model"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var (
	ErrMovementNotFound       = errors.New("movement not found")
	ErrMovementAffectsBalance = errors.New("movement affects account balance")
)

// MovementFilter narrows movement queries. From is inclusive, Until exclusive.
type MovementFilter struct {
	AccountNumber string
	Category      string
	From          *time.Time
	Until         *time.Time
}

// MovementTotals aggregates a filtered set of movements.
type MovementTotals struct {
	TotalCredit      decimal.Decimal `json:"total_credit"`
	TotalDebit       decimal.Decimal `json:"total_debit"`
	TransactionCount int64           `json:"transaction_count"`
}

type DailyTotals struct {
	Date             string          `json:"date"`
	TotalCredit      decimal.Decimal `json:"total_credit"`
	TotalDebit       decimal.Decimal `json:"total_debit"`
	NetAmount        decimal.Decimal `json:"net_amount"`
	TransactionCount int64           `json:"transaction_count"`
}

type MovementRepository struct {
	db *gorm.DB
}

func NewMovementRepository(db *gorm.DB) *MovementRepository {
	return &MovementRepository{db: db}
}

// Create appends a ledger row. Only the description is ever updated afterwards.
func (r *MovementRepository) Create(ctx context.Context, tx *gorm.DB, m *model.AccountMovement) error {
	return pick(r.db, tx).WithContext(ctx).Create(m).Error
}

func (r *MovementRepository) GetByID(ctx context.Context, id int64) (*model.AccountMovement, error) {
	var m model.AccountMovement
	err := r.withRelations(r.db.WithContext(ctx)).
		Where("account_movements.id = ?", id).
		First(&m).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrMovementNotFound
		}
		return nil, err
	}
	return &m, nil
}

func (r *MovementRepository) ListByTransactionID(ctx context.Context, transactionID string) ([]*model.AccountMovement, error) {
	var rows []*model.AccountMovement
	err := r.db.WithContext(ctx).
		Where("transaction_id = ?", transactionID).
		Order("id ASC").
		Find(&rows).Error
	return rows, err
}

// UpdateDescription touches only the description column; amounts and balance
// snapshots are write-once. Callers check existence first: MySQL reports zero
// affected rows for an unchanged description.
func (r *MovementRepository) UpdateDescription(ctx context.Context, id int64, description string) error {
	return r.db.WithContext(ctx).
		Model(&model.AccountMovement{}).
		Where("id = ?", id).
		Update("description", description).Error
}

// DeleteIfNoop removes a movement only when it moved no money. The amount
// guard sits in the WHERE clause so a balance-affecting row can never be
// removed, whatever the caller checked before.
func (r *MovementRepository) DeleteIfNoop(ctx context.Context, id int64) error {
	result := r.db.WithContext(ctx).
		Where("id = ? AND debit_amount = 0 AND credit_amount = 0", id).
		Delete(&model.AccountMovement{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		var count int64
		if err := r.db.WithContext(ctx).Model(&model.AccountMovement{}).Where("id = ?", id).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return ErrMovementNotFound
		}
		return ErrMovementAffectsBalance
	}
	return nil
}

// List returns one page of filtered movements, newest first, and the total
// number of rows matching the filter.
func (r *MovementRepository) List(ctx context.Context, f MovementFilter, page, pageSize int) ([]*model.AccountMovement, int64, error) {
	var (
		rows  []*model.AccountMovement
		total int64
	)

	if err := r.filtered(ctx, f).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := r.withRelations(r.filtered(ctx, f)).
		Select("account_movements.*").
		Order("account_movements.movement_time DESC").
		Order("account_movements.id DESC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&rows).Error

	return rows, total, err
}

// Totals aggregates the whole filtered set, independent of paging.
func (r *MovementRepository) Totals(ctx context.Context, f MovementFilter) (*MovementTotals, error) {
	var totals MovementTotals
	err := r.filtered(ctx, f).
		Select("COALESCE(SUM(account_movements.credit_amount), 0) AS total_credit, " +
			"COALESCE(SUM(account_movements.debit_amount), 0) AS total_debit, " +
			"COUNT(*) AS transaction_count").
		Scan(&totals).Error
	if err != nil {
		return nil, err
	}
	return &totals, nil
}

// Daily groups movements in [from, until) by their calendar date in loc,
// oldest day first. Rows are bucketed here rather than with DATE() so the day
// boundary does not depend on the database session time zone.
func (r *MovementRepository) Daily(ctx context.Context, from, until time.Time, loc *time.Location) ([]*DailyTotals, error) {
	rows, err := r.db.WithContext(ctx).
		Model(&model.AccountMovement{}).
		Select("movement_time, debit_amount, credit_amount").
		Where("movement_time >= ? AND movement_time < ?", from.UTC(), until.UTC()).
		Order("movement_time ASC").
		Rows()
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var (
		out []*DailyTotals
		cur *DailyTotals
	)
	for rows.Next() {
		var row struct {
			MovementTime time.Time
			DebitAmount  decimal.Decimal
			CreditAmount decimal.Decimal
		}
		if err := r.db.ScanRows(rows, &row); err != nil {
			return nil, err
		}

		day := row.MovementTime.In(loc).Format("2006-01-02")
		if cur == nil || cur.Date != day {
			cur = &DailyTotals{Date: day, TotalCredit: decimal.Zero, TotalDebit: decimal.Zero}
			out = append(out, cur)
		}
		cur.TotalCredit = cur.TotalCredit.Add(row.CreditAmount)
		cur.TotalDebit = cur.TotalDebit.Add(row.DebitAmount)
		cur.TransactionCount++
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for _, d := range out {
		d.NetAmount = d.TotalCredit.Sub(d.TotalDebit)
	}
	if out == nil {
		out = []*DailyTotals{}
	}
	return out, nil
}

// EachForAccount streams an account's movements in ledger order
// (movement_time, then id) on tx.
func (r *MovementRepository) EachForAccount(ctx context.Context, tx *gorm.DB, accountNumber string, fn func(*model.AccountMovement) error) error {
	conn := pick(r.db, tx)
	rows, err := conn.WithContext(ctx).
		Model(&model.AccountMovement{}).
		Where("account_number = ?", accountNumber).
		Order("movement_time ASC").
		Order("id ASC").
		Rows()
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var m model.AccountMovement
		if err := conn.ScanRows(rows, &m); err != nil {
			return err
		}
		if err := fn(&m); err != nil {
			return err
		}
	}
	return rows.Err()
}

func (r *MovementRepository) filtered(ctx context.Context, f MovementFilter) *gorm.DB {
	q := r.db.WithContext(ctx).Model(&model.AccountMovement{})

	if f.AccountNumber != "" {
		q = q.Where("account_movements.account_number = ?", f.AccountNumber)
	}
	if f.Category != "" {
		q = q.Joins("JOIN transactions ON transactions.id = account_movements.transaction_id").
			Joins("JOIN transaction_types ON transaction_types.id = transactions.transaction_type_id").
			Where("transaction_types.category = ?", f.Category)
	}
	if f.From != nil {
		q = q.Where("account_movements.movement_time >= ?", f.From.UTC())
	}
	if f.Until != nil {
		q = q.Where("account_movements.movement_time < ?", f.Until.UTC())
	}
	return q
}

func (r *MovementRepository) withRelations(q *gorm.DB) *gorm.DB {
	return q.
		Preload("Account.Customer").
		Preload("Transaction.TransactionType")
}
