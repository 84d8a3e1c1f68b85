package events

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/segmentio/kafka-go"
)

// KafkaPublisher writes status-change events to a Kafka topic, keyed by
// payment identifier so all events for one payment land on one partition.
type KafkaPublisher struct {
	writer *kafka.Writer
}

func NewKafkaPublisher(brokers []string, topic string) *KafkaPublisher {
	return &KafkaPublisher{
		writer: &kafka.Writer{
			Addr:     kafka.TCP(brokers...),
			Topic:    topic,
			Balancer: &kafka.Hash{},
		},
	}
}

func (p *KafkaPublisher) PublishStatusChange(ctx context.Context, ev StatusChange) error {
	value, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal status change event: %w", err)
	}

	err = p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(ev.PaymentIdentifier),
		Value: value,
	})
	if err != nil {
		return fmt.Errorf("publish status change event: %w", err)
	}
	return nil
}

func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}
