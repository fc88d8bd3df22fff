package payment

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sirupsen/logrus"
)

type ConsumerConfig struct {
	URL       string
	QueueName string
	Prefetch  int
}

// Consumer feeds payment events from a durable AMQP queue into the reconciler.
type Consumer struct {
	conn       *amqp.Connection
	channel    *amqp.Channel
	queue      amqp.Queue
	reconciler *Reconciler
	log        logrus.FieldLogger
}

func NewConsumer(cfg ConsumerConfig, reconciler *Reconciler, log logrus.FieldLogger) (*Consumer, error) {
	conn, err := amqp.Dial(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}

	q, err := channel.QueueDeclare(
		cfg.QueueName, // name
		true,          // durable
		false,         // delete when unused
		false,         // exclusive
		false,         // no-wait
		nil,
	)
	if err != nil {
		channel.Close()
		conn.Close()
		return nil, fmt.Errorf("failed to declare queue: %w", err)
	}

	prefetch := cfg.Prefetch
	if prefetch < 1 {
		prefetch = 1
	}
	if err := channel.Qos(prefetch, 0, false); err != nil {
		channel.Close()
		conn.Close()
		return nil, fmt.Errorf("failed to set QoS: %w", err)
	}

	return &Consumer{
		conn:       conn,
		channel:    channel,
		queue:      q,
		reconciler: reconciler,
		log:        log.WithField("queue", q.Name),
	}, nil
}

// Run consumes until ctx is done or the channel closes.
func (c *Consumer) Run(ctx context.Context) error {
	msgs, err := c.channel.ConsumeWithContext(
		ctx,
		c.queue.Name, // queue
		"",           // consumer
		false,        // auto-ack
		false,        // exclusive
		false,        // no-local
		false,        // no-wait
		nil,          // args
	)
	if err != nil {
		return fmt.Errorf("failed to consume messages: %w", err)
	}

	c.log.Info("payment event consumer started")
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-msgs:
			if !ok {
				return errors.New("payment event channel closed")
			}
			c.settle(msg, handleDelivery(ctx, c.reconciler, msg.Body, c.log))
		}
	}
}

func (c *Consumer) settle(msg amqp.Delivery, a action) {
	var err error
	switch a {
	case actionAck:
		err = msg.Ack(false)
	case actionRequeue:
		err = msg.Nack(false, true)
	case actionReject:
		err = msg.Reject(false)
	}
	if err != nil {
		c.log.WithError(err).Error("failed to settle payment event delivery")
	}
}

func (c *Consumer) Close() error {
	var errs []error
	if c.channel != nil {
		errs = append(errs, c.channel.Close())
	}
	if c.conn != nil {
		errs = append(errs, c.conn.Close())
	}
	return errors.Join(errs...)
}

type action int

const (
	actionAck action = iota
	actionRequeue
	actionReject
)

// handleDelivery decides how a delivery is settled: malformed messages are
// rejected, infrastructure failures requeued, everything else acknowledged.
func handleDelivery(ctx context.Context, reconciler *Reconciler, body []byte, log logrus.FieldLogger) action {
	var ev Event
	if err := json.Unmarshal(body, &ev); err != nil {
		log.WithError(err).Warn("malformed payment event")
		return actionReject
	}

	if _, err := reconciler.Reconcile(ctx, ev); err != nil {
		if errors.Is(err, ErrInvalidEvent) {
			log.WithError(err).Warn("malformed payment event")
			return actionReject
		}
		log.WithError(err).WithField("event_id", ev.ID).Error("payment event processing failed, requeueing")
		return actionRequeue
	}
	return actionAck
}
