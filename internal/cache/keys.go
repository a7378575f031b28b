package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	ProfileKeyPrefix = "profile:%d"
	BookKeyPrefix    = "book:volume:%s"
)

const (
	ProfileTTL = 5 * time.Minute
	BookTTL    = 10 * time.Minute
)

func ProfileKey(userID uint) string {
	return fmt.Sprintf(ProfileKeyPrefix, userID)
}

func BookKey(googleBooksID string) string {
	return fmt.Sprintf(BookKeyPrefix, googleBooksID)
}

// GetJSON loads and unmarshals a cached value into dest. Returns false on a
// miss, a disabled cache, or a decode failure.
func GetJSON(ctx context.Context, key string, dest interface{}) bool {
	if client == nil {
		return false
	}
	raw, err := client.Get(ctx, key).Result()
	if err != nil {
		return false
	}
	return json.Unmarshal([]byte(raw), dest) == nil
}

// SetJSON marshals and stores a value with a TTL. Failures are swallowed;
// the cache is best-effort.
func SetJSON(ctx context.Context, key string, value interface{}, ttl time.Duration) {
	if client == nil {
		return
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return
	}
	client.Set(ctx, key, raw, ttl)
}

func Invalidate(ctx context.Context, key string) {
	if client != nil {
		client.Del(ctx, key)
	}
}

func InvalidateProfile(ctx context.Context, userID uint) {
	Invalidate(ctx, ProfileKey(userID))
}

// IsNil reports whether the error is a Redis cache miss.
func IsNil(err error) bool {
	return err == redis.Nil
}
