package event

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/segmentio/kafka-go"
)

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaSink forwards every bus event to a Kafka topic, keyed by event type.
type KafkaSink struct {
	writer       messageWriter
	writeTimeout time.Duration
}

func NewKafkaSink(brokers []string, topic string) *KafkaSink {
	return &KafkaSink{
		writer: &kafka.Writer{
			Addr:                   kafka.TCP(brokers...),
			Topic:                  topic,
			Balancer:               &kafka.Hash{},
			RequiredAcks:           kafka.RequireOne,
			AllowAutoTopicCreation: true,
		},
		writeTimeout: 5 * time.Second,
	}
}

// Run consumes the bus until ctx is done. Write failures are logged and the
// event is dropped.
func (s *KafkaSink) Run(ctx context.Context, bus Bus) {
	events, unsubscribe := bus.Subscribe()
	defer unsubscribe()

	for {
		select {
		case <-ctx.Done():
			return
		case e, ok := <-events:
			if !ok {
				return
			}
			s.forward(ctx, e)
		}
	}
}

func (s *KafkaSink) forward(ctx context.Context, e Event) {
	value, err := json.Marshal(e)
	if err != nil {
		slog.Error("encode event for kafka", "type", e.Type, "error", err)
		return
	}

	writeCtx, cancel := context.WithTimeout(ctx, s.writeTimeout)
	defer cancel()

	err = s.writer.WriteMessages(writeCtx, kafka.Message{
		Key:   []byte(e.Type),
		Value: value,
		Time:  time.Now().UTC(),
	})
	if err != nil {
		slog.Error("publish event to kafka", "type", e.Type, "event_id", e.ID, "error", err)
	}
}

func (s *KafkaSink) Close() error {
	return s.writer.Close()
}
