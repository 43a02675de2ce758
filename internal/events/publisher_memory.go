package events

import (
	"context"
	"log/slog"
	"sync"

	qmodels "canvass/internal/questionnaire/models"
)

// MemoryPublisher records envelopes in memory. Serves tests and deployments
// without a broker.
type MemoryPublisher struct {
	mu        sync.Mutex
	envelopes []Envelope
}

func NewMemoryPublisher() *MemoryPublisher {
	return &MemoryPublisher{}
}

func (p *MemoryPublisher) Publish(_ context.Context, key string, facts ...qmodels.Fact) {
	envelopes := Envelopes(key, facts...)
	p.mu.Lock()
	defer p.mu.Unlock()
	p.envelopes = append(p.envelopes, envelopes...)
}

// Envelopes returns everything published so far.
func (p *MemoryPublisher) Envelopes() []Envelope {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]Envelope(nil), p.envelopes...)
}

// ChannelPublisher hands envelopes to a Worker through a channel, decoupling
// the write path from the sink's latency. A full inbox drops the envelope.
type ChannelPublisher struct {
	inbox  chan<- Envelope
	logger *slog.Logger
}

func NewChannelPublisher(inbox chan<- Envelope, logger *slog.Logger) *ChannelPublisher {
	if logger == nil {
		logger = slog.Default()
	}
	return &ChannelPublisher{inbox: inbox, logger: logger}
}

func (p *ChannelPublisher) Publish(ctx context.Context, key string, facts ...qmodels.Fact) {
	for _, envelope := range Envelopes(key, facts...) {
		select {
		case p.inbox <- envelope:
		default:
			p.logger.WarnContext(ctx, "fact inbox full, dropping envelope",
				"kind", envelope.Kind, "key", envelope.Key)
		}
	}
}

// Sink consumes envelopes on the worker side of a ChannelPublisher.
type Sink interface {
	Append(ctx context.Context, envelope Envelope) error
}

// Worker drains an envelope channel into a sink.
type Worker struct {
	inbox <-chan Envelope
	sink  Sink
}

func NewWorker(inbox <-chan Envelope, sink Sink) *Worker {
	return &Worker{inbox: inbox, sink: sink}
}

func (w *Worker) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case envelope := <-w.inbox:
			if err := w.sink.Append(ctx, envelope); err != nil {
				return err
			}
		}
	}
}
