// Package marker persists session submission markers: the record that a
// browser session has already submitted to a questionnaire. Markers are
// keyed (questionnaire, session) and expire on a TTL.
package marker

import (
	"context"
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/redis/go-redis/v9"

	id "canvass/pkg/domain"
)

var isMarkedDurationMs = promauto.NewHistogram(prometheus.HistogramOpts{
	Name:    "canvass_session_marker_check_duration_ms",
	Help:    "Latency of session submission marker checks in milliseconds",
	Buckets: []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 25},
})

const markerKeyPrefix = "sub:marker:"

// RedisStore is the Redis-backed marker store. Use it whenever more than one
// instance serves submissions: markers must be shared or the guard only
// protects against duplicates landing on the same instance.
type RedisStore struct {
	client *redis.Client
}

func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func markerKey(questionnaireID id.QuestionnaireID, sessionID string) string {
	return markerKeyPrefix + questionnaireID.String() + ":" + sessionID
}

// Mark records the submission with a TTL. SET with expiry is atomic, so
// concurrent marks collapse into one key.
func (s *RedisStore) Mark(ctx context.Context, questionnaireID id.QuestionnaireID, sessionID string, ttl time.Duration) error {
	if sessionID == "" {
		return nil
	}
	return s.client.Set(ctx, markerKey(questionnaireID, sessionID), "1", ttl).Err()
}

// IsMarked reports whether the session already submitted. A missing key
// means no marker (never submitted, or the marker expired).
func (s *RedisStore) IsMarked(ctx context.Context, questionnaireID id.QuestionnaireID, sessionID string) (bool, error) {
	start := time.Now()
	defer func() {
		isMarkedDurationMs.Observe(float64(time.Since(start).Microseconds()) / 1000.0)
	}()

	if sessionID == "" {
		return false, nil
	}
	_, err := s.client.Get(ctx, markerKey(questionnaireID, sessionID)).Result()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}
