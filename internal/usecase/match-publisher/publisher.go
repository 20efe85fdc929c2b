package matchpublisher

import (
	"context"
	"time"

	matchpublisherv1 "github.com/muhammadchandra19/exchange-simulator/internal/domain/match-publisher/v1"
	"github.com/muhammadchandra19/exchange-simulator/pkg/config"
	"github.com/muhammadchandra19/exchange-simulator/pkg/errors"
	"github.com/muhammadchandra19/exchange-simulator/pkg/logger"
	"github.com/segmentio/kafka-go"
)

const defaultBatchSize = 500

var ErrPublish = errors.New(errors.PublishError, errors.SeverityHigh, errors.CategoryNetwork, "failed to publish match events")

var _ matchpublisherv1.MatchPublisher = (*Publisher)(nil)

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Publisher represents a Kafka Publisher for publishing simulated fills.
type Publisher struct {
	kafkaWriter messageWriter
	logger      *logger.Logger
	batchSize   int
}

// NewPublisher creates a new Kafka publisher. Events of one venue and symbol
// share a partition so consumers see them in fill order.
func NewPublisher(cfg config.KafkaConfig, logger *logger.Logger) *Publisher {
	kafkaWriter := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		Topic:        cfg.Topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireAll,
		Async:        false,
		BatchTimeout: 10 * time.Millisecond,
		WriteTimeout: cfg.WriteTimeout,
	}

	return newPublisher(kafkaWriter, logger)
}

func newPublisher(w messageWriter, logger *logger.Logger) *Publisher {
	return &Publisher{
		kafkaWriter: w,
		logger:      logger,
		batchSize:   defaultBatchSize,
	}
}

// PublishMatchEvents publishes events in order, in batches.
func (p *Publisher) PublishMatchEvents(ctx context.Context, events []*matchpublisherv1.MatchEvent) error {
	if len(events) == 0 {
		return nil
	}

	msgs := make([]kafka.Message, 0, len(events))
	for _, ev := range events {
		value := matchpublisherv1.ToBytes(ev)
		if value == nil {
			return ErrPublish.Errorf("event %s cannot be encoded", ev.EventID)
		}
		msgs = append(msgs, kafka.Message{
			Key:   ev.Key(),
			Value: value,
			Time:  ev.Timestamp,
		})
	}

	for start := 0; start < len(msgs); start += p.batchSize {
		end := start + p.batchSize
		if end > len(msgs) {
			end = len(msgs)
		}

		if err := p.kafkaWriter.WriteMessages(ctx, msgs[start:end]...); err != nil {
			p.logger.ErrorContext(ctx, err,
				logger.NewField("published", start),
				logger.NewField("total", len(msgs)),
			)
			return errors.NewTracer("failed to publish match events").Wrap(ErrPublish.Errorf("%d of %d published: %v", start, len(msgs), err))
		}
	}

	p.logger.InfoContext(ctx, "Match events published", logger.NewField("events", len(msgs)))
	return nil
}

// Close flushes and closes the writer.
func (p *Publisher) Close() error {
	return p.kafkaWriter.Close()
}
