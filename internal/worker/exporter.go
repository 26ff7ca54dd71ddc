package worker

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	kafkax "github.com/samirwankhede/channel-booking-reports/internal/kafka"
	"github.com/samirwankhede/channel-booking-reports/internal/service/exports"
)

type Consumer interface {
	Fetch(ctx context.Context) (kafka.Message, error)
	Commit(ctx context.Context, m kafka.Message) error
}

type Handler interface {
	Handle(ctx context.Context, msg exports.JobMessage) error
}

// DeadLetter carries a failed message with its cause.
type DeadLetter struct {
	JobID string `json:"job_id"`
	Error string `json:"error"`
	Value string `json:"value"`
}

// Exporter consumes export requests with at most maxWorkers renders in flight.
type Exporter struct {
	log        *zap.Logger
	handler    Handler
	c          Consumer
	dlq        exports.Publisher
	maxWorkers int
	// backoff is the pause after a failed fetch.
	backoff time.Duration
}

func NewExporter(log *zap.Logger, handler Handler, c Consumer, dlq exports.Publisher, maxWorkers int) *Exporter {
	if maxWorkers <= 0 {
		maxWorkers = 1
	}
	return &Exporter{
		log:        log,
		handler:    handler,
		c:          c,
		dlq:        dlq,
		maxWorkers: maxWorkers,
		backoff:    time.Second,
	}
}

// Run blocks until ctx is cancelled and in-flight renders have finished.
func (e *Exporter) Run(ctx context.Context) error {
	sem := make(chan struct{}, e.maxWorkers)
	var wg sync.WaitGroup
	defer wg.Wait()

	for {
		m, err := e.c.Fetch(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			e.log.Error("failed to read message", zap.Error(err), zap.Duration("retry_in", e.backoff))
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(e.backoff):
			}
			continue
		}

		sem <- struct{}{}
		wg.Add(1)
		go func(m kafka.Message) {
			defer wg.Done()
			defer func() { <-sem }()

			if err := e.handleMessage(ctx, m); err != nil {
				e.log.Error("failed to handle message", zap.String("key", string(m.Key)), zap.Error(err))
				dl := DeadLetter{JobID: string(m.Key), Error: err.Error(), Value: string(m.Value)}
				if err := e.dlq.PublishJSON(ctx, string(m.Key), kafkax.TypeExportFailed, dl); err != nil {
					e.log.Error("failed to publish dead letter", zap.Error(err))
					return
				}
			}
			if err := e.c.Commit(ctx, m); err != nil {
				e.log.Error("failed to commit message", zap.Error(err))
			}
		}(m)
	}
}

var errMalformed = errors.New("malformed export message")

func (e *Exporter) handleMessage(ctx context.Context, m kafka.Message) error {
	if t := kafkax.MessageType(m); t != "" && t != kafkax.TypeExportRequested {
		e.log.Debug("skipping message", zap.String("type", t))
		return nil
	}
	var msg exports.JobMessage
	if err := json.Unmarshal(m.Value, &msg); err != nil || msg.JobID == "" {
		return errMalformed
	}
	return e.handler.Handle(ctx, msg)
}
