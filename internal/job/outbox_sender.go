package job

import (
	"context"
	"time"

	"banksantri/internal/infrastructure/metrics"
	"banksantri/internal/model"
	"banksantri/internal/repository"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Publisher delivers one keyed message to a topic. *mq.Producer implements it.
type Publisher interface {
	SendMessage(topic, key, value string) error
}

// OutboxSender relays pending outbox rows to the broker in insertion order.
// A message that keeps failing is marked FAILED after maxRetry attempts.
type OutboxSender struct {
	outboxRepo *repository.OutboxRepository
	publisher  Publisher
	maxRetry   int
	stopCh     chan struct{}
	interval   time.Duration
	batchSize  int
}

func NewOutboxSender(db *gorm.DB, publisher Publisher, maxRetry int) *OutboxSender {
	if maxRetry <= 0 {
		maxRetry = 5
	}
	return &OutboxSender{
		outboxRepo: repository.NewOutboxRepository(db),
		publisher:  publisher,
		maxRetry:   maxRetry,
		stopCh:     make(chan struct{}),
		interval:   500 * time.Millisecond,
		batchSize:  100,
	}
}

func (s *OutboxSender) Start(ctx context.Context) {
	log := zap.L().With(zap.String("component", "outbox"))
	log.Info("outbox relay started", zap.Duration("interval", s.interval))

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Info("outbox relay stopped by context")
			return
		case <-s.stopCh:
			log.Info("outbox relay stopped")
			return
		case <-ticker.C:
			s.RelayPending(ctx)
		}
	}
}

func (s *OutboxSender) Stop() {
	close(s.stopCh)
}

// RelayPending sends one batch of pending messages and returns how many were
// delivered.
func (s *OutboxSender) RelayPending(ctx context.Context) int {
	messages, err := s.outboxRepo.GetPendingMessages(ctx, s.batchSize)
	if err != nil {
		zap.L().Error("load pending outbox messages", zap.String("component", "outbox"), zap.Error(err))
		return 0
	}

	sent := 0
	for _, msg := range messages {
		if s.send(ctx, msg) {
			sent++
		}
	}
	return sent
}

func (s *OutboxSender) send(ctx context.Context, msg *model.OutboxMessage) bool {
	log := zap.L().With(
		zap.String("component", "outbox"),
		zap.Int64("message_id", msg.ID),
		zap.String("topic", msg.Topic),
		zap.String("key", msg.MessageKey),
	)

	err := s.publisher.SendMessage(msg.Topic, msg.MessageKey, msg.Payload)
	if err == nil {
		if err := s.outboxRepo.UpdateStatus(ctx, msg.ID, model.OutboxStatusSent); err != nil {
			// the message will be sent again on the next tick
			log.Error("mark outbox message sent", zap.Error(err))
			return false
		}
		metrics.OutboxRelayed.WithLabelValues("sent").Inc()
		log.Debug("outbox message sent")
		return true
	}

	metrics.OutboxRelayed.WithLabelValues("error").Inc()
	log.Warn("publish outbox message", zap.Int("retry_count", msg.RetryCount), zap.Error(err))

	if err := s.outboxRepo.IncrementRetryCount(ctx, msg.ID); err != nil {
		log.Error("increment outbox retry count", zap.Error(err))
	}
	if msg.RetryCount+1 >= s.maxRetry {
		if err := s.outboxRepo.MarkAsFailed(ctx, msg.ID); err != nil {
			log.Error("mark outbox message failed", zap.Error(err))
			return false
		}
		metrics.OutboxRelayed.WithLabelValues("failed").Inc()
		log.Error("outbox message exceeded max retries", zap.Int("max_retry", s.maxRetry))
	}
	return false
}
