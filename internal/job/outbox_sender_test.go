package job

import (
	"context"
	"testing"
	"time"

	"banksantri/internal/infrastructure/mq"
	"banksantri/internal/model"
	"banksantri/internal/testutil"

	"github.com/IBM/sarama"
	"github.com/IBM/sarama/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func insertOutbox(t *testing.T, db *gorm.DB, key string, retries int) *model.OutboxMessage {
	t.Helper()
	msg := &model.OutboxMessage{
		MessageKey: key,
		Topic:      "movement_posted",
		Payload:    `{"account_number":"` + key + `"}`,
		Status:     model.OutboxStatusPending,
		RetryCount: retries,
	}
	require.NoError(t, db.Create(msg).Error)
	return msg
}

func reload(t *testing.T, db *gorm.DB, id int64) *model.OutboxMessage {
	t.Helper()
	var msg model.OutboxMessage
	require.NoError(t, db.First(&msg, id).Error)
	return &msg
}

func TestOutboxSender_RelaysInOrder(t *testing.T) {
	db := testutil.NewDB(t)
	first := insertOutbox(t, db, "1001", 0)
	second := insertOutbox(t, db, "1002", 0)

	producer := mocks.NewSyncProducer(t, nil)
	producer.ExpectSendMessageWithMessageCheckerFunctionAndSucceed(func(m *sarama.ProducerMessage) error {
		assert.Equal(t, "movement_posted", m.Topic)
		key, _ := m.Key.Encode()
		assert.Equal(t, "1001", string(key))
		return nil
	})
	producer.ExpectSendMessageAndSucceed()

	sender := NewOutboxSender(db, mq.NewProducer(producer), 3)
	assert.Equal(t, 2, sender.RelayPending(context.Background()))

	assert.Equal(t, model.OutboxStatusSent, reload(t, db, first.ID).Status)
	assert.Equal(t, model.OutboxStatusSent, reload(t, db, second.ID).Status)

	// nothing left to send
	assert.Zero(t, sender.RelayPending(context.Background()))
}

func TestOutboxSender_RetriesThenFails(t *testing.T) {
	db := testutil.NewDB(t)
	fresh := insertOutbox(t, db, "1001", 0)
	exhausted := insertOutbox(t, db, "1002", 2)

	producer := mocks.NewSyncProducer(t, nil)
	producer.ExpectSendMessageAndFail(sarama.ErrOutOfBrokers)
	producer.ExpectSendMessageAndFail(sarama.ErrOutOfBrokers)

	sender := NewOutboxSender(db, mq.NewProducer(producer), 3)
	assert.Zero(t, sender.RelayPending(context.Background()))

	got := reload(t, db, fresh.ID)
	assert.Equal(t, model.OutboxStatusPending, got.Status)
	assert.Equal(t, 1, got.RetryCount)

	got = reload(t, db, exhausted.ID)
	assert.Equal(t, model.OutboxStatusFailed, got.Status)
	assert.Equal(t, 3, got.RetryCount)
}

func TestOutboxSender_StartStop(t *testing.T) {
	db := testutil.NewDB(t)
	msg := insertOutbox(t, db, "1001", 0)

	producer := mocks.NewSyncProducer(t, nil)
	producer.ExpectSendMessageAndSucceed()

	sender := NewOutboxSender(db, mq.NewProducer(producer), 3)
	sender.interval = 10 * time.Millisecond

	done := make(chan struct{})
	go func() {
		sender.Start(context.Background())
		close(done)
	}()

	require.Eventually(t, func() bool {
		return reload(t, db, msg.ID).Status == model.OutboxStatusSent
	}, 2*time.Second, 10*time.Millisecond)

	sender.Stop()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("sender did not stop")
	}
}
