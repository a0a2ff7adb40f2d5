package session

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/chakravarthigit/prompt-frontend/internal/logger"
)

// Store is one backing tier capable of holding serialized session
// entries. Implementations (cookie jar, memory, file, redis) must
// treat values as opaque strings.
type Store interface {
	// Name identifies the tier in logs ("cookie", "session", "local").
	Name() string
	Set(ctx context.Context, name, value string, ttl time.Duration) error
	// Get reports the stored value and whether it was present.
	Get(ctx context.Context, name string) (string, bool, error)
	Remove(ctx context.Context, name string) error
}

// SetJSON serializes v and writes it under name.
func SetJSON(ctx context.Context, s Store, name string, v any, ttl time.Duration) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("session: marshal %s: %w", name, err)
	}
	return s.Set(ctx, name, string(data), ttl)
}

// GetJSON reads and deserializes the entry under name. A missing
// entry, a failed read or malformed JSON all report absence; the
// latter two are logged, never surfaced. Callers fall through to
// the next tier.
func GetJSON(ctx context.Context, s Store, name string, out any) bool {
	raw, ok, err := s.Get(ctx, name)
	if err != nil {
		logger.Warn("session store read failed", map[string]any{
			"store": s.Name(),
			"key":   name,
			"error": err.Error(),
		})
		return false
	}
	if !ok {
		return false
	}
	if err := json.Unmarshal([]byte(raw), out); err != nil {
		logger.Error("malformed json in session store", map[string]any{
			"store": s.Name(),
			"key":   name,
			"error": err.Error(),
		})
		return false
	}
	return true
}
