package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/example/dscommerce/internal/events"
)

// Header names copied from the envelope so consumers can filter without
// decoding the value.
const (
	HeaderEventType    = "event_type"
	HeaderEventVersion = "event_version"
)

// Producer writes JSON events to one topic. Messages with the same key land
// on the same partition, so events of one product stay ordered.
type Producer struct {
	writer *kafka.Writer
}

func NewProducer(brokers []string, topic string) *Producer {
	return &Producer{writer: &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireAll,
		BatchTimeout: 10 * time.Millisecond,
		WriteTimeout: 5 * time.Second,
	}}
}

func (p *Producer) Publish(ctx context.Context, key string, event any) error {
	msg, err := message(key, event)
	if err != nil {
		return err
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("write to %s: %w", p.writer.Topic, err)
	}
	return nil
}

func message(key string, event any) (kafka.Message, error) {
	data, err := json.Marshal(event)
	if err != nil {
		return kafka.Message{}, fmt.Errorf("encode event: %w", err)
	}
	msg := kafka.Message{Key: []byte(key), Value: data, Time: time.Now()}
	if env, ok := event.(events.Envelope); ok {
		msg.Headers = []kafka.Header{
			{Key: HeaderEventType, Value: []byte(env.EventType)},
			{Key: HeaderEventVersion, Value: []byte(strconv.Itoa(env.EventVersion))},
		}
	}
	return msg, nil
}

func (p *Producer) Close() error {
	return p.writer.Close()
}
