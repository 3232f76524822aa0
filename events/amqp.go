package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

const publishTimeout = 5 * time.Second

type publisher interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
}

// AMQPSink 以 JSON 发布到 topic exchange，routing key 为 <prefix>.<事件类型>
type AMQPSink struct {
	conn     *amqp.Connection
	ch       publisher
	exchange string
	prefix   string
	log      *zap.Logger
}

// NewAMQPSink 连接 broker 并声明持久化的 topic exchange
func NewAMQPSink(url, exchange, prefix string, log *zap.Logger) (*AMQPSink, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("连接 AMQP 失败: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("打开 AMQP channel 失败: %w", err)
	}
	if err := ch.ExchangeDeclare(exchange, "topic", true, false, false, false, nil); err != nil {
		conn.Close()
		return nil, fmt.Errorf("声明 exchange 失败: %w", err)
	}
	return &AMQPSink{conn: conn, ch: ch, exchange: exchange, prefix: prefix, log: log}, nil
}

func (s *AMQPSink) routingKey(t Type) string {
	if s.prefix == "" {
		return string(t)
	}
	return s.prefix + "." + string(t)
}

func (s *AMQPSink) Emit(ctx context.Context, f Fact) {
	body, err := json.Marshal(f)
	if err != nil {
		s.log.Warn("事件序列化失败", zap.String("type", string(f.Type)), zap.Error(err))
		return
	}
	ctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	err = s.ch.PublishWithContext(ctx, s.exchange, s.routingKey(f.Type), false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    f.EventID,
		Timestamp:    f.At,
		Body:         body,
	})
	if err != nil {
		s.log.Warn("发布事件失败",
			zap.String("event_id", f.EventID),
			zap.String("exchange", s.exchange),
			zap.Error(err))
		return
	}
	s.log.Debug("已发布事件", zap.String("event_id", f.EventID), zap.String("type", string(f.Type)))
}

// Close 关闭连接
func (s *AMQPSink) Close() error {
	if s.conn == nil {
		return nil
	}
	return s.conn.Close()
}
