package guard

import (
	"fmt"
	"log/slog"
	"time"

	qmodels "canvass/internal/questionnaire/models"
)

// Resolver maps a questionnaire's configured deduplication strategy to its
// guard. Strategies are validated when settings are written, so an unknown
// strategy here means stored data from a version that knew more strategies
// than this binary; the resolver falls back to allowing the submission
// rather than locking the questionnaire.
type Resolver struct {
	responses ResponseLookup
	markers   SessionMarkerStore
	ttl       time.Duration
	logger    *slog.Logger
}

type ResolverOption func(*Resolver)

func WithLogger(logger *slog.Logger) ResolverOption {
	return func(r *Resolver) {
		r.logger = logger
	}
}

// WithMarkerTTL overrides how long session submission markers live.
func WithMarkerTTL(ttl time.Duration) ResolverOption {
	return func(r *Resolver) {
		r.ttl = ttl
	}
}

func NewResolver(responses ResponseLookup, markers SessionMarkerStore, opts ...ResolverOption) (*Resolver, error) {
	if responses == nil {
		return nil, fmt.Errorf("response lookup is required")
	}
	if markers == nil {
		return nil, fmt.Errorf("session marker store is required")
	}

	r := &Resolver{
		responses: responses,
		markers:   markers,
		ttl:       defaultMarkerTTL,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

// Resolve returns the guard for the strategy.
func (r *Resolver) Resolve(strategy qmodels.DedupStrategy) Guard {
	switch strategy {
	case qmodels.DedupAllowMultiple:
		return allowMultiple{}
	case qmodels.DedupOnePerIP:
		return onePerIP{responses: r.responses}
	case qmodels.DedupOnePerUser:
		return onePerUser{responses: r.responses}
	case qmodels.DedupOnePerSession:
		return onePerSession{markers: r.markers, ttl: r.ttl}
	default:
		r.logger.Warn("unknown dedup strategy, allowing submission",
			slog.String("strategy", strategy.String()))
		return allowMultiple{}
	}
}
