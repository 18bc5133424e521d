package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/segmentio/kafka-go"
)

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

type messageReader interface {
	ReadMessage(ctx context.Context) (kafka.Message, error)
	Close() error
}

// KafkaPublisher writes events keyed by user ID so one user's events stay ordered.
type KafkaPublisher struct {
	writer messageWriter
}

func NewKafkaPublisher(brokers []string, topic string) *KafkaPublisher {
	return &KafkaPublisher{
		writer: &kafka.Writer{
			Addr:                   kafka.TCP(brokers...),
			Topic:                  topic,
			Balancer:               &kafka.Hash{},
			BatchTimeout:           50 * time.Millisecond,
			AllowAutoTopicCreation: true,
		},
	}
}

func (p *KafkaPublisher) Publish(ctx context.Context, e Event) error {
	value, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("failed to encode event: %w", err)
	}

	msg := kafka.Message{
		Key:   []byte(e.UserID.String()),
		Value: value,
		Time:  e.At,
	}

	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("failed to write %s event: %w", e.Type, err)
	}
	return nil
}

func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}

type Handler func(ctx context.Context, e Event) error

type Consumer struct {
	reader messageReader
}

func NewConsumer(brokers []string, topic, groupID string) *Consumer {
	return &Consumer{
		reader: kafka.NewReader(kafka.ReaderConfig{
			Brokers: brokers,
			Topic:   topic,
			GroupID: groupID,
		}),
	}
}

// Run reads until ctx is cancelled. Undecodable messages and handler errors
// are logged and skipped.
func (c *Consumer) Run(ctx context.Context, handle Handler) error {
	for {
		m, err := c.reader.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			log.Printf("❌ Error reading event: %v", err)
			continue
		}

		var e Event
		if err := json.Unmarshal(m.Value, &e); err != nil {
			log.Printf("⚠️ Skipping malformed event at offset %d: %v", m.Offset, err)
			continue
		}

		if err := handle(ctx, e); err != nil {
			log.Printf("❌ Event handler failed for %s %s: %v", e.Type, e.TaskID, err)
		}
	}
}

func (c *Consumer) Close() error {
	return c.reader.Close()
}

// LogHandler prints each event on one line.
func LogHandler(logger *log.Logger) Handler {
	return func(_ context.Context, e Event) error {
		logger.Printf("[%s] %s task=%s user=%s", e.At.Format(time.RFC3339), e.Type, e.TaskID, e.UserID)
		return nil
	}
}
