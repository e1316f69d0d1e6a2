package events

import (
	"context"
	"encoding/json"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"github.com/spec-kit/lead-service/internal/config"
)

// AMQPPublisher forwards dispatcher events to a RabbitMQ topic
// exchange so external systems can consume the activity feed. It is
// optional: when no AMQP URL is configured the service runs without it.
type AMQPPublisher struct {
	conn     *amqp.Connection
	channel  *amqp.Channel
	exchange string
	logger   *zap.Logger
}

// NewAMQPPublisher dials RabbitMQ and declares the exchange.
func NewAMQPPublisher(cfg config.AMQPConfig, logger *zap.Logger) (*AMQPPublisher, error) {
	conn, err := amqp.Dial(cfg.URL)
	if err != nil {
		return nil, err
	}

	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, err
	}

	if err := channel.ExchangeDeclare(cfg.Exchange, "topic", true, false, false, false, nil); err != nil {
		channel.Close()
		conn.Close()
		return nil, err
	}

	logger.Info("connected to rabbitmq", zap.String("exchange", cfg.Exchange))
	return &AMQPPublisher{conn: conn, channel: channel, exchange: cfg.Exchange, logger: logger}, nil
}

// RegisterHandlers subscribes the publisher to every event type.
func (p *AMQPPublisher) RegisterHandlers(dispatcher Dispatcher) {
	if p == nil || dispatcher == nil {
		return
	}
	for _, eventType := range []EventType{
		EventLeadCreated,
		EventLeadStatusChanged,
		EventLeadAssigned,
		EventLeadDeleted,
		EventCommentAdded,
	} {
		dispatcher.Subscribe(eventType, p.publish)
	}
}

func (p *AMQPPublisher) publish(ctx context.Context, event Event) error {
	body, err := json.Marshal(event)
	if err != nil {
		return err
	}

	err = p.channel.PublishWithContext(ctx, p.exchange, string(event.Type), false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    event.ID,
		Timestamp:    event.Timestamp,
		Body:         body,
	})
	if err != nil {
		p.logger.Warn("amqp publish failed",
			zap.String("event_type", string(event.Type)),
			zap.Error(err))
	}
	return err
}

// Close releases the channel and connection.
func (p *AMQPPublisher) Close() {
	if p == nil {
		return
	}
	if p.channel != nil {
		_ = p.channel.Close()
	}
	if p.conn != nil {
		_ = p.conn.Close()
	}
}
