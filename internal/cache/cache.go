// Package cache memoizes calculator results keyed by their input.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"
)

// Cache stores encoded results. A zero ttl keeps an entry until evicted.
type Cache interface {
	Get(ctx context.Context, key string) (string, bool)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
}

// Key derives a stable key from the calculator kind and its input. Struct
// fields marshal in declaration order, so equal inputs give equal keys.
func Key(kind string, input any) (string, error) {
	b, err := json.Marshal(input)
	if err != nil {
		return "", fmt.Errorf("encoding cache key: %w", err)
	}
	sum := sha256.Sum256(b)
	return "finplan:" + kind + ":" + hex.EncodeToString(sum[:16]), nil
}
