package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"banksantri/internal/config"
	"banksantri/internal/infrastructure/lock"
	"banksantri/internal/infrastructure/metrics"
	"banksantri/internal/model"
	"banksantri/internal/repository"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// MinimumAmount is the smallest accepted posting magnitude.
var MinimumAmount = decimal.New(1, -2)

// PostMovementRequest is one posting. Amount is signed: positive credits
// (deposit), negative debits (withdrawal or transfer out).
type PostMovementRequest struct {
	AccountNumber      string
	TransactionTypeID  int64
	Amount             decimal.Decimal
	Description        string
	Channel            model.Channel
	ReferenceNumber    string
	DestinationAccount string
}

// IsTransfer reports whether the request produces a destination leg. A credit
// carrying a destination account is a plain deposit.
func (r *PostMovementRequest) IsTransfer() bool {
	return r.DestinationAccount != "" && r.Amount.IsNegative()
}

func (r *PostMovementRequest) kind() string {
	switch {
	case r.IsTransfer():
		return "transfer"
	case r.Amount.IsNegative():
		return "withdrawal"
	default:
		return "deposit"
	}
}

// PostingService owns every write to the movement ledger.
type PostingService struct {
	db           *gorm.DB
	redisClient  *redis.Client
	lockTTL      time.Duration
	eventTopic   string
	accountRepo  *repository.AccountRepository
	movementRepo *repository.MovementRepository
	typeRepo     *repository.TransactionTypeRepository
	outboxRepo   *repository.OutboxRepository
	recorder     *TransactionRecorder
	now          func() time.Time
}

// NewPostingService wires the posting pipeline. redisClient may be nil, in
// which case only database row locks serialize postings. Outbox events are
// written only when Kafka is enabled.
func NewPostingService(db *gorm.DB, redisClient *redis.Client, cfg *config.Config) *PostingService {
	s := &PostingService{
		db:           db,
		redisClient:  redisClient,
		lockTTL:      cfg.Redis.LockTTL,
		accountRepo:  repository.NewAccountRepository(db),
		movementRepo: repository.NewMovementRepository(db),
		typeRepo:     repository.NewTransactionTypeRepository(db),
		outboxRepo:   repository.NewOutboxRepository(db),
		recorder:     NewTransactionRecorder(db),
		now:          time.Now,
	}
	if s.lockTTL <= 0 {
		s.lockTTL = 30 * time.Second
	}
	if cfg.Kafka.Enabled {
		s.eventTopic = cfg.Kafka.Topic.MovementPosted
	}
	return s
}

// PostMovement validates and atomically applies one posting:
//
//	transaction row -> primary movement -> source balance
//	[-> destination movement -> destination balance]  (transfers only)
//	[-> outbox event]
//
// Checks run in this order, first failure wins: account exists, account is
// AKTIF, |amount| >= 0.01 with at most two decimals, sufficient balance for debits, destination exists
// and is AKTIF for transfers, transaction type exists. Any error rolls the
// whole unit back.
func (s *PostingService) PostMovement(ctx context.Context, req *PostMovementRequest) (*model.AccountMovement, error) {
	start := time.Now()
	defer func() { metrics.PostingDuration.Observe(time.Since(start).Seconds()) }()

	log := zap.L().With(
		zap.String("component", "posting"),
		zap.String("account_number", req.AccountNumber),
		zap.String("amount", req.Amount.String()),
		zap.String("kind", req.kind()),
	)

	primaryID, err := s.post(ctx, req)
	if err != nil {
		se := asServiceError(err, "Failed to post movement")
		metrics.PostingRejections.WithLabelValues(se.Kind.String()).Inc()
		if se.Kind == KindInternal {
			log.Error("posting rolled back", zap.Error(err))
		} else {
			log.Info("posting rejected", zap.String("reason", se.Message))
		}
		return nil, se
	}

	metrics.MovementsPosted.WithLabelValues(req.kind()).Inc()
	log.Info("movement posted", zap.Int64("movement_id", primaryID))

	movement, err := s.movementRepo.GetByID(ctx, primaryID)
	if err != nil {
		return nil, internal("Movement posted but could not be loaded", err)
	}
	return movement, nil
}

func (s *PostingService) post(ctx context.Context, req *PostMovementRequest) (int64, error) {
	if req.AccountNumber == "" {
		return 0, validationError("account_number", "The account number field is required.")
	}
	if req.IsTransfer() && req.DestinationAccount == req.AccountNumber {
		return 0, validationError("destination_account", "The destination account must be different from the source account.")
	}

	if s.redisClient != nil {
		held, err := lock.LockAccounts(ctx, s.redisClient, uuid.NewString(), s.lockTTL, s.touched(req)...)
		if err != nil {
			if errors.Is(err, lock.ErrLockFailed) || errors.Is(err, context.DeadlineExceeded) {
				return 0, conflict("Account is busy, please retry")
			}
			return 0, fmt.Errorf("acquire account lock: %w", err)
		}
		defer func() {
			if err := held.Unlock(context.Background()); err != nil {
				zap.L().Warn("release account lock", zap.String("component", "posting"), zap.Error(err))
			}
		}()
	}

	var primaryID int64
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		locked, err := s.lockRows(ctx, tx, s.touched(req))
		if err != nil {
			return err
		}

		source, ok := locked[req.AccountNumber]
		if !ok {
			return notFound("Account not found", repository.ErrAccountNotFound)
		}
		if !source.IsActive() {
			return conflict(fmt.Sprintf("Account is not active. Current status: %s", source.Status))
		}

		magnitude := req.Amount.Abs()
		if magnitude.LessThan(MinimumAmount) {
			return validationError("amount", "The amount must be at least 0.01.")
		}
		if !magnitude.Equal(magnitude.Truncate(2)) {
			return validationError("amount", "The amount may not have more than 2 decimal places.")
		}
		if req.Amount.IsNegative() && magnitude.GreaterThan(source.Balance) {
			return conflict(fmt.Sprintf("Insufficient balance. Current balance: %s", source.Balance.StringFixed(2)))
		}

		var destination *model.Account
		if req.IsTransfer() {
			destination, ok = locked[req.DestinationAccount]
			if !ok {
				return conflict(fmt.Sprintf("Destination account %s not found", req.DestinationAccount))
			}
			if !destination.IsActive() {
				return conflict(fmt.Sprintf("Destination account is not active. Current status: %s", destination.Status))
			}
		}

		if _, err := s.typeRepo.GetByID(ctx, tx, req.TransactionTypeID); err != nil {
			if errors.Is(err, repository.ErrTransactionTypeNotFound) {
				return notFound("Transaction type not found", err)
			}
			return err
		}

		trans, err := s.recorder.Record(ctx, tx, RecordInput{
			TransactionTypeID:  req.TransactionTypeID,
			Description:        req.Description,
			Amount:             magnitude,
			Channel:            req.Channel,
			SourceAccount:      req.AccountNumber,
			DestinationAccount: req.DestinationAccount,
			ReferenceNumber:    req.ReferenceNumber,
		})
		if err != nil {
			return err
		}

		movedAt := s.now().UTC()
		primary := &model.AccountMovement{
			AccountNumber:        source.AccountNumber,
			TransactionID:        trans.ID,
			MovementTime:         movedAt,
			Description:          req.Description,
			DebitAmount:          decimal.Zero,
			CreditAmount:         decimal.Zero,
			BalanceAfterMovement: source.Balance.Add(req.Amount),
		}
		if req.Amount.IsNegative() {
			primary.DebitAmount = magnitude
		} else {
			primary.CreditAmount = magnitude
		}
		if err := s.movementRepo.Create(ctx, tx, primary); err != nil {
			return fmt.Errorf("create movement: %w", err)
		}
		if _, err := s.accountRepo.ApplyDelta(ctx, tx, source, req.Amount); err != nil {
			return fmt.Errorf("update balance %s: %w", source.AccountNumber, err)
		}

		movementIDs := []int64{primary.ID}
		if destination != nil {
			leg := &model.AccountMovement{
				AccountNumber:        destination.AccountNumber,
				TransactionID:        trans.ID,
				MovementTime:         movedAt,
				Description:          fmt.Sprintf("Transfer dari %s - %s", source.AccountNumber, req.Description),
				DebitAmount:          decimal.Zero,
				CreditAmount:         magnitude,
				BalanceAfterMovement: destination.Balance.Add(magnitude),
			}
			if err := s.movementRepo.Create(ctx, tx, leg); err != nil {
				return fmt.Errorf("create destination movement: %w", err)
			}
			if _, err := s.accountRepo.ApplyDelta(ctx, tx, destination, magnitude); err != nil {
				return fmt.Errorf("update balance %s: %w", destination.AccountNumber, err)
			}
			movementIDs = append(movementIDs, leg.ID)
		}

		if s.eventTopic != "" {
			if err := s.writeEvent(ctx, tx, trans, primary, movementIDs); err != nil {
				return err
			}
		}

		primaryID = primary.ID
		return nil
	})
	if err != nil {
		return 0, err
	}
	return primaryID, nil
}

// touched lists the accounts whose rows a posting locks.
func (s *PostingService) touched(req *PostMovementRequest) []string {
	if req.IsTransfer() {
		return []string{req.AccountNumber, req.DestinationAccount}
	}
	return []string{req.AccountNumber}
}

// lockRows takes SELECT ... FOR UPDATE on each account in ascending account
// number order. Missing accounts are left out of the result.
func (s *PostingService) lockRows(ctx context.Context, tx *gorm.DB, numbers []string) (map[string]*model.Account, error) {
	sorted := append([]string(nil), numbers...)
	sort.Strings(sorted)

	locked := make(map[string]*model.Account, len(sorted))
	for _, n := range sorted {
		account, err := s.accountRepo.GetByNumberForUpdate(ctx, tx, n)
		if err != nil {
			if errors.Is(err, repository.ErrAccountNotFound) {
				continue
			}
			return nil, fmt.Errorf("lock account %s: %w", n, err)
		}
		locked[n] = account
	}
	return locked, nil
}

func (s *PostingService) writeEvent(ctx context.Context, tx *gorm.DB, trans *model.Transaction, primary *model.AccountMovement, movementIDs []int64) error {
	event := model.MovementPostedEvent{
		TransactionID:      trans.ID,
		TransactionTypeID:  trans.TransactionTypeID,
		AccountNumber:      primary.AccountNumber,
		DestinationAccount: trans.DestinationAccount,
		Amount:             primary.SignedAmount().StringFixed(2),
		Channel:            trans.Channel,
		ReferenceNumber:    trans.ReferenceNumber,
		MovementIDs:        movementIDs,
		BalanceAfter:       primary.BalanceAfterMovement.StringFixed(2),
		PostedAt:           primary.MovementTime.Format(time.RFC3339),
	}
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("encode movement event: %w", err)
	}

	msg := &model.OutboxMessage{
		MessageKey: primary.AccountNumber,
		Topic:      s.eventTopic,
		Payload:    string(payload),
		Status:     model.OutboxStatusPending,
	}
	if err := s.outboxRepo.Create(ctx, tx, msg); err != nil {
		return fmt.Errorf("write outbox message: %w", err)
	}
	return nil
}

// UpdateMovement changes the description of a movement. Nothing else about a
// movement is mutable.
func (s *PostingService) UpdateMovement(ctx context.Context, id int64, description string) (*model.AccountMovement, error) {
	if _, err := s.getMovement(ctx, id); err != nil {
		return nil, err
	}
	if err := s.movementRepo.UpdateDescription(ctx, id, description); err != nil {
		return nil, internal("Failed to update movement", err)
	}
	return s.getMovement(ctx, id)
}

// DeleteMovement removes a movement that never affected a balance. Any row
// with a debit or credit amount is refused.
func (s *PostingService) DeleteMovement(ctx context.Context, id int64) error {
	movement, err := s.getMovement(ctx, id)
	if err != nil {
		return err
	}
	if movement.AffectsBalance() {
		return conflict("Cannot delete movement that affects account balance")
	}

	if err := s.movementRepo.DeleteIfNoop(ctx, id); err != nil {
		switch {
		case errors.Is(err, repository.ErrMovementNotFound):
			return notFound("Movement not found", err)
		case errors.Is(err, repository.ErrMovementAffectsBalance):
			return conflict("Cannot delete movement that affects account balance")
		}
		return internal("Failed to delete movement", err)
	}

	zap.L().Info("no-op movement deleted", zap.String("component", "posting"), zap.Int64("movement_id", id))
	return nil
}

func (s *PostingService) getMovement(ctx context.Context, id int64) (*model.AccountMovement, error) {
	movement, err := s.movementRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrMovementNotFound) {
			return nil, notFound("Movement not found", err)
		}
		return nil, internal("Failed to load movement", err)
	}
	return movement, nil
}
