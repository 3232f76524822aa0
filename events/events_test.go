package events

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

func TestNew(t *testing.T) {
	a := New(1, CategoryCreated, map[string]interface{}{"id": 3})
	b := New(1, CategoryCreated, nil)
	assert.Len(t, a.EventID, 36)
	assert.NotEqual(t, a.EventID, b.EventID)
	assert.False(t, a.At.IsZero())
}

func TestMultiAndRecorder(t *testing.T) {
	r1, r2 := &Recorder{}, &Recorder{}
	sink := Multi{r1, Nop{}, r2}
	sink.Emit(context.Background(), New(1, BudgetCreated, nil))
	sink.Emit(context.Background(), New(1, BudgetDeleted, nil))

	assert.Equal(t, []Type{BudgetCreated, BudgetDeleted}, r1.Types())
	assert.Len(t, r2.Facts(), 2)
	r1.Reset()
	assert.Empty(t, r1.Types())
}

func TestLogSink(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	NewLogSink(zap.New(core)).Emit(context.Background(), New(7, AccountArchived, map[string]interface{}{"id": 2}))

	require.Equal(t, 1, logs.Len())
	entry := logs.All()[0]
	assert.Equal(t, "account.archived", entry.ContextMap()["type"])
	assert.EqualValues(t, 7, entry.ContextMap()["workspace"])
}

func TestDBSink(t *testing.T) {
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer sqlDB.Close()
	db, err := gorm.Open(mysql.New(mysql.Config{Conn: sqlDB, SkipInitializeWithVersion: true}), &gorm.Config{})
	require.NoError(t, err)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO `event_logs`").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	NewDBSink(db, zap.NewNop()).Emit(context.Background(), New(1, TransactionCreated, map[string]interface{}{"id": 9}))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDBSink_FailureIsLogged(t *testing.T) {
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer sqlDB.Close()
	db, err := gorm.Open(mysql.New(mysql.Config{Conn: sqlDB, SkipInitializeWithVersion: true}), &gorm.Config{})
	require.NoError(t, err)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO `event_logs`").WillReturnError(errors.New("table is read only"))
	mock.ExpectRollback()

	core, logs := observer.New(zapcore.WarnLevel)
	NewDBSink(db, zap.New(core)).Emit(context.Background(), New(1, TransactionCreated, nil))
	assert.Equal(t, 1, logs.FilterMessage("写入事件日志失败").Len())
}

type fakeChannel struct {
	exchange, key string
	msg           amqp.Publishing
	err           error
}

func (f *fakeChannel) PublishWithContext(_ context.Context, exchange, key string, _, _ bool, msg amqp.Publishing) error {
	f.exchange, f.key, f.msg = exchange, key, msg
	return f.err
}

func TestAMQPSink_Emit(t *testing.T) {
	ch := &fakeChannel{}
	sink := &AMQPSink{ch: ch, exchange: "budget.events", prefix: "budget", log: zap.NewNop()}
	f := New(3, CategoryArchived, map[string]interface{}{"month": "2024-09"})
	sink.Emit(context.Background(), f)

	assert.Equal(t, "budget.events", ch.exchange)
	assert.Equal(t, "budget.category.archived", ch.key)
	assert.Equal(t, amqp.Persistent, ch.msg.DeliveryMode)
	assert.Equal(t, f.EventID, ch.msg.MessageId)

	var decoded Fact
	require.NoError(t, json.Unmarshal(ch.msg.Body, &decoded))
	assert.Equal(t, CategoryArchived, decoded.Type)
	assert.Equal(t, "2024-09", decoded.Details["month"])
	assert.NoError(t, sink.Close())
}

func TestAMQPSink_PublishFailureIsLogged(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	sink := &AMQPSink{ch: &fakeChannel{err: errors.New("channel closed")}, exchange: "x", log: zap.New(core)}
	sink.Emit(context.Background(), New(1, BudgetUpdated, nil))
	assert.Equal(t, 1, logs.FilterMessage("发布事件失败").Len())
	assert.Equal(t, "budget.updated", sink.routingKey(BudgetUpdated))
}
