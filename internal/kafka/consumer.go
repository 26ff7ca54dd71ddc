package kafkax

import (
	"context"

	"github.com/segmentio/kafka-go"
)

// TypeHeader names the message kind so consumers can skip what they do not handle.
const TypeHeader = "type"

const (
	TypeExportRequested = "export.requested"
	TypeExportFailed    = "export.failed"
)

type Consumer struct {
	reader *kafka.Reader
}

func NewConsumer(brokers []string, group, topic string) *Consumer {
	return &Consumer{reader: kafka.NewReader(kafka.ReaderConfig{
		Brokers:  brokers,
		GroupID:  group,
		Topic:    topic,
		MinBytes: 1,
		MaxBytes: 10e6,
	})}
}

func (c *Consumer) Fetch(ctx context.Context) (kafka.Message, error) {
	return c.reader.FetchMessage(ctx)
}

func (c *Consumer) Commit(ctx context.Context, m kafka.Message) error {
	return c.reader.CommitMessages(ctx, m)
}

func (c *Consumer) Close() error { return c.reader.Close() }

// MessageType reads the type header, empty when absent.
func MessageType(m kafka.Message) string {
	for _, h := range m.Headers {
		if h.Key == TypeHeader {
			return string(h.Value)
		}
	}
	return ""
}
