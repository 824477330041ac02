package outbox

import (
	"context"
	"log/slog"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/unifyhq/unify/libs/kafkax"
	otelx "github.com/unifyhq/unify/libs/otel"
)

const (
	defaultBatchSize    = 100
	defaultPollInterval = 2 * time.Second
)

// Publisher drains the outbox table to a Kafka topic. Events are marked
// published in the same transaction that claimed them, after the Kafka write
// succeeds, so a crash re-delivers rather than drops (at-least-once).
type Publisher struct {
	repo   *Repository
	writer *kafka.Writer
	logger *slog.Logger
}

// NewPublisher returns nil when no brokers are configured; callers treat a
// nil publisher as eventing disabled.
func NewPublisher(repo *Repository, brokers, topic string, logger *slog.Logger) *Publisher {
	list := kafkax.SplitBrokers(brokers)
	if len(list) == 0 {
		return nil
	}
	writer := &kafka.Writer{
		Addr:         kafka.TCP(list...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireAll,
		BatchTimeout: 50 * time.Millisecond,
	}
	return &Publisher{repo: repo, writer: writer, logger: logger}
}

// Run polls until ctx is cancelled.
func (p *Publisher) Run(ctx context.Context) {
	ticker := time.NewTicker(defaultPollInterval)
	defer ticker.Stop()
	defer p.writer.Close()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := p.publishBatch(ctx); err != nil && ctx.Err() == nil {
				p.logger.ErrorContext(ctx, "outbox publish batch failed", "error", err)
			}
		}
	}
}

func (p *Publisher) publishBatch(ctx context.Context) error {
	tx, err := p.repo.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	events, err := p.repo.FetchUnpublished(ctx, tx, defaultBatchSize)
	if err != nil {
		return err
	}
	if len(events) == 0 {
		return nil
	}

	messages := make([]kafka.Message, 0, len(events))
	ids := make([]int64, 0, len(events))
	for _, e := range events {
		eventCtx := otelx.ContextWithTraceContext(ctx, e.Traceparent, e.Tracestate)
		headers := []kafka.Header{
			{Key: "event_id", Value: []byte(e.EventID)},
			{Key: "event_type", Value: []byte(e.EventType)},
		}
		headers = kafkax.InjectTraceHeaders(eventCtx, headers)
		messages = append(messages, kafka.Message{
			Key:     []byte(e.AggregateID),
			Value:   e.Payload,
			Headers: headers,
		})
		ids = append(ids, e.ID)
	}

	if err := p.writer.WriteMessages(ctx, messages...); err != nil {
		return err
	}
	if err := p.repo.MarkPublished(ctx, tx, ids); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return err
	}
	p.logger.DebugContext(ctx, "outbox batch published", "count", len(ids))
	return nil
}
