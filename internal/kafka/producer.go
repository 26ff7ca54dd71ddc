package kafkax

import (
	"context"
	"encoding/json"
	"time"

	"github.com/segmentio/kafka-go"
)

// Producer writes keyed JSON messages to one topic.
type Producer struct {
	writer *kafka.Writer
}

func NewProducer(brokers []string, topic string) *Producer {
	return &Producer{writer: &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		RequiredAcks:           kafka.RequireAll,
		Balancer:               &kafka.Hash{},
		AllowAutoTopicCreation: true,
	}}
}

// PublishJSON marshals v and tags the message with its envelope type.
func (p *Producer) PublishJSON(ctx context.Context, key string, typ string, v any) error {
	value, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return p.writer.WriteMessages(ctx, kafka.Message{
		Key:     []byte(key),
		Value:   value,
		Time:    time.Now(),
		Headers: []kafka.Header{{Key: TypeHeader, Value: []byte(typ)}},
	})
}

func (p *Producer) Close() error { return p.writer.Close() }
