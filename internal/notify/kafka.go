package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
)

const kafkaBatchTimeout = 5 * time.Millisecond

// KafkaPublisher writes booking lifecycle events to a topic for downstream
// consumers such as the mail worker. Writes are synchronous and carry one
// message each, so batches are flushed almost immediately.
type KafkaPublisher struct {
	writer *kafka.Writer
}

func NewKafkaPublisher(brokers []string, topic string) *KafkaPublisher {
	return &KafkaPublisher{
		writer: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Topic:        topic,
			Balancer:     &kafka.LeastBytes{},
			RequiredAcks: kafka.RequireAll,
			BatchTimeout: kafkaBatchTimeout,
			WriteTimeout: 10 * time.Second,
		},
	}
}

func (p *KafkaPublisher) Publish(ctx context.Context, key string, event any) error {
	value, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("encode event: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	return p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(key),
		Value: value,
		Time:  time.Now(),
	})
}

func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}
