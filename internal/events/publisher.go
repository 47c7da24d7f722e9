package events

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/ducduc1118-design/recash/internal/models"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// Publisher delivers ledger events after the ledger write has committed.
type Publisher interface {
	Publish(ctx context.Context, event models.LedgerEvent) error
	Close() error
}

// Writer is the subset of kafka.Writer the publisher needs.
type Writer interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaPublisher writes JSON events keyed by user id, so one user's events stay ordered.
type KafkaPublisher struct {
	writer Writer
	topic  string
}

func NewKafkaPublisher(cfg models.EventsConfig) *KafkaPublisher {
	return NewKafkaPublisherWithWriter(&kafka.Writer{
		Addr:     kafka.TCP(cfg.Brokers...),
		Topic:    cfg.Topic,
		Balancer: &kafka.Hash{},
	}, cfg.Topic)
}

func NewKafkaPublisherWithWriter(w Writer, topic string) *KafkaPublisher {
	return &KafkaPublisher{writer: w, topic: topic}
}

func (p *KafkaPublisher) Publish(ctx context.Context, event models.LedgerEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	msg := kafka.Message{
		Key:   []byte(event.UserId),
		Value: data,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(event.Type)},
		},
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("failed to write event to %s: %w", p.topic, err)
	}

	zap.L().Debug("Event published",
		zap.String("topic", p.topic),
		zap.String("type", event.Type),
		zap.String("user_id", event.UserId))
	return nil
}

func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}

// LogPublisher only logs events. It is used when no brokers are configured.
type LogPublisher struct{}

func (LogPublisher) Publish(_ context.Context, event models.LedgerEvent) error {
	zap.L().Info("Ledger event",
		zap.String("type", event.Type),
		zap.String("user_id", event.UserId),
		zap.String("entry_id", event.EntryId),
		zap.String("amount", event.Amount.String()),
		zap.String("status", event.Status),
		zap.Int("streak", event.Streak))
	return nil
}

func (LogPublisher) Close() error { return nil }

// New returns a Kafka publisher when brokers are configured, otherwise a LogPublisher.
func New(cfg models.EventsConfig) Publisher {
	if len(cfg.Brokers) == 0 {
		zap.L().Info("No Kafka brokers configured, ledger events will only be logged")
		return LogPublisher{}
	}
	zap.L().Info("Publishing ledger events to Kafka",
		zap.Strings("brokers", cfg.Brokers),
		zap.String("topic", cfg.Topic))
	return NewKafkaPublisher(cfg)
}
