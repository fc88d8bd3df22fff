// Package events publishes reservation status changes for downstream
// consumers such as the notification subsystem.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/sirupsen/logrus"

	"github.com/nekogravitycat/stay-booking-backend/internal/reservation"
)

// StatusChangedEvent is the wire form of reservation.StatusChange.
type StatusChangedEvent struct {
	Type          string    `json:"type"`
	ReservationID string    `json:"reservation_id"`
	PropertyID    string    `json:"property_id"`
	GuestID       string    `json:"guest_id"`
	From          string    `json:"from,omitempty"`
	To            string    `json:"to"`
	Reason        string    `json:"reason,omitempty"`
	At            time.Time `json:"at"`
}

const typeStatusChanged = "reservation.status_changed"

func NewStatusChangedEvent(c reservation.StatusChange) StatusChangedEvent {
	return StatusChangedEvent{
		Type:          typeStatusChanged,
		ReservationID: c.ReservationID,
		PropertyID:    c.PropertyID,
		GuestID:       c.GuestID,
		From:          string(c.From),
		To:            string(c.To),
		Reason:        c.Reason,
		At:            c.At,
	}
}

// messageWriter is the part of *kafka.Writer the publisher uses.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaPublisher writes one message per status change, keyed by reservation id
// so changes of one reservation stay ordered within a partition.
type KafkaPublisher struct {
	writer  messageWriter
	timeout time.Duration
	log     logrus.FieldLogger
}

func NewKafkaPublisher(brokers, topic string, log logrus.FieldLogger) *KafkaPublisher {
	writer := &kafka.Writer{
		Addr:         kafka.TCP(strings.Split(brokers, ",")...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		BatchTimeout: 10 * time.Millisecond,
		RequiredAcks: kafka.RequireOne,
	}
	log.WithFields(logrus.Fields{"brokers": brokers, "topic": topic}).Info("kafka status publisher configured")
	return newKafkaPublisher(writer, log)
}

func newKafkaPublisher(w messageWriter, log logrus.FieldLogger) *KafkaPublisher {
	return &KafkaPublisher{writer: w, timeout: 5 * time.Second, log: log}
}

func (p *KafkaPublisher) StatusChanged(ctx context.Context, c reservation.StatusChange) error {
	value, err := json.Marshal(NewStatusChangedEvent(c))
	if err != nil {
		return fmt.Errorf("marshal status change: %w", err)
	}

	// A slow broker must not hold up the request that caused the change.
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), p.timeout)
	defer cancel()

	err = p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(c.ReservationID),
		Value: value,
		Time:  c.At,
	})
	if err != nil {
		return fmt.Errorf("write status change: %w", err)
	}
	return nil
}

func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}

// LogPublisher only logs changes. It is used when no broker is configured.
type LogPublisher struct {
	log logrus.FieldLogger
}

func NewLogPublisher(log logrus.FieldLogger) *LogPublisher {
	return &LogPublisher{log: log}
}

func (p *LogPublisher) StatusChanged(_ context.Context, c reservation.StatusChange) error {
	p.log.WithFields(logrus.Fields{
		"reservation_id": c.ReservationID,
		"from":           c.From,
		"to":             c.To,
	}).Debug("status change (no broker configured)")
	return nil
}
