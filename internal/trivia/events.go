package trivia

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"github.com/Aidin1998/trivia/pkg/models"
	"github.com/segmentio/kafka-go"
)

// Publisher receives question lifecycle events
type Publisher interface {
	Publish(ctx context.Context, event models.QuestionEvent) error
}

type nopPublisher struct{}

func (nopPublisher) Publish(context.Context, models.QuestionEvent) error { return nil }

// KafkaPublisher writes question events to a Kafka topic, keyed by question id
type KafkaPublisher struct {
	writer *kafka.Writer
}

// NewKafkaPublisher creates a publisher for the given brokers and topic
func NewKafkaPublisher(brokers []string, topic string) *KafkaPublisher {
	return &KafkaPublisher{
		writer: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Topic:        topic,
			Balancer:     &kafka.Hash{},
			RequiredAcks: kafka.RequireOne,
			// events are written one at a time from request handlers
			BatchTimeout: 10 * time.Millisecond,
		},
	}
}

// Publish sends one event
func (p *KafkaPublisher) Publish(ctx context.Context, event models.QuestionEvent) error {
	value, err := json.Marshal(event)
	if err != nil {
		return err
	}
	var key []byte
	if event.Question != nil {
		key = []byte(strconv.FormatUint(uint64(event.Question.ID), 10))
	}
	return p.writer.WriteMessages(ctx, kafka.Message{
		Key:     key,
		Value:   value,
		Headers: []kafka.Header{{Key: "type", Value: []byte(event.Type)}},
	})
}

// Close flushes and closes the writer
func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}
