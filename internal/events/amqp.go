package events

import (
	"context"
	"time"

	"github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

// AMQPPublisher publishes domain events to a RabbitMQ topic exchange.
type AMQPPublisher struct {
	conn    *amqp091.Connection
	channel *amqp091.Channel
	logger  *zap.Logger
}

// NewAMQPPublisher dials the broker with a bounded timeout and declares the
// durable transfer_events exchange.
func NewAMQPPublisher(amqpURL string, logger *zap.Logger) (*AMQPPublisher, error) {
	conn, err := amqp091.DialConfig(amqpURL, amqp091.Config{Dial: amqp091.DefaultDial(10 * time.Second)})
	if err != nil {
		return nil, err
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, err
	}

	if err := declareExchange(ch); err != nil {
		ch.Close()
		conn.Close()
		return nil, err
	}

	return &AMQPPublisher{conn: conn, channel: ch, logger: logger}, nil
}

func declareExchange(ch *amqp091.Channel) error {
	return ch.ExchangeDeclare(
		Exchange, // name
		"topic",  // type
		true,     // durable
		false,    // autoDelete
		false,    // internal
		false,    // noWait
		nil,      // args
	)
}

// Publish sends one event payload. On a broken channel it reopens once and
// retries before giving up; the outbox relay retries anything that fails.
func (p *AMQPPublisher) Publish(ctx context.Context, routingKey string, payload []byte) error {
	err := p.publish(ctx, routingKey, payload)
	if err == nil {
		return nil
	}

	p.logger.Warn("event publish failed, reopening channel",
		zap.String("routing_key", routingKey), zap.Error(err))

	ch, chErr := p.conn.Channel()
	if chErr != nil {
		return err
	}
	if exErr := declareExchange(ch); exErr != nil {
		ch.Close()
		return err
	}
	p.channel = ch
	return p.publish(ctx, routingKey, payload)
}

func (p *AMQPPublisher) publish(ctx context.Context, routingKey string, payload []byte) error {
	return p.channel.PublishWithContext(ctx,
		Exchange,
		routingKey,
		false, // mandatory
		false, // immediate
		amqp091.Publishing{
			ContentType: "application/json",
			Timestamp:   time.Now(),
			Body:        payload,
		},
	)
}

// Close gracefully closes the channel and connection.
func (p *AMQPPublisher) Close() {
	if p.channel != nil {
		p.channel.Close()
	}
	if p.conn != nil {
		p.conn.Close()
	}
}
