package events

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/twmb/franz-go/pkg/kgo"

	qmodels "canvass/internal/questionnaire/models"
)

// KafkaPublisher produces fact envelopes to one topic, keyed by aggregate id
// so per-aggregate ordering survives partitioning. Publish is best-effort:
// broker failures are logged, never surfaced to the write path.
type KafkaPublisher struct {
	client *kgo.Client
	topic  string
	logger *slog.Logger
}

type KafkaOption func(*KafkaPublisher)

func WithLogger(logger *slog.Logger) KafkaOption {
	return func(p *KafkaPublisher) {
		p.logger = logger
	}
}

func NewKafkaPublisher(client *kgo.Client, topic string, opts ...KafkaOption) *KafkaPublisher {
	p := &KafkaPublisher{
		client: client,
		topic:  topic,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *KafkaPublisher) Publish(ctx context.Context, key string, facts ...qmodels.Fact) {
	for _, envelope := range Envelopes(key, facts...) {
		value, err := json.Marshal(envelope)
		if err != nil {
			p.logger.ErrorContext(ctx, "failed to encode fact envelope",
				"kind", envelope.Kind, "error", err)
			continue
		}
		record := &kgo.Record{
			Topic: p.topic,
			Key:   []byte(key),
			Value: value,
		}
		p.client.Produce(ctx, record, func(_ *kgo.Record, err error) {
			if err != nil {
				p.logger.Error("failed to produce fact envelope",
					"kind", envelope.Kind, "error", err)
			}
		})
	}
}
