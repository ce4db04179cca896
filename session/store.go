package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrRedisUnavailable wraps every Redis transport or command failure.
var ErrRedisUnavailable = errors.New("redis unavailable")

// DefaultPrefix is the key namespace used when none is configured.
const DefaultPrefix = "refresh_token"

// swapScript replaces the record only when it still holds the expected
// token, keeping the remaining lifetime. Returns 1 on swap, 0 otherwise.
const swapScript = `
local current = redis.call("GET", KEYS[1])
if not current or current ~= ARGV[1] then
  return 0
end
redis.call("SET", KEYS[1], ARGV[2], "PX", ARGV[3])
return 1
`

var swapLua = redis.NewScript(swapScript)

// Store is a Redis-backed refresh session store. Concurrent writers for the
// same subject resolve last-writer-wins.
type Store struct {
	redis  redis.UniversalClient
	prefix string
	ttl    time.Duration
}

// NewStore creates a [Store]. An empty prefix selects [DefaultPrefix]; ttl is
// applied to every record written by [Store.Put].
func NewStore(rdb redis.UniversalClient, prefix string, ttl time.Duration) *Store {
	if prefix == "" {
		prefix = DefaultPrefix
	}
	return &Store{
		redis:  rdb,
		prefix: prefix,
		ttl:    ttl,
	}
}

// Key returns the Redis key for subjectID.
func (s *Store) Key(subjectID string) string {
	return s.prefix + ":" + subjectID
}

// Put stores token for subjectID, unconditionally replacing any prior record.
//
//	Performance: 1 Redis SET.
func (s *Store) Put(ctx context.Context, subjectID, token string) error {
	if err := s.redis.Set(ctx, s.Key(subjectID), token, s.ttl).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	return nil
}

// Get returns the stored token. An absent record yields ("", false, nil).
//
//	Performance: 1 Redis GET.
func (s *Store) Get(ctx context.Context, subjectID string) (string, bool, error) {
	token, err := s.redis.Get(ctx, s.Key(subjectID)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	return token, true, nil
}

// Delete removes the record for subjectID. Deleting an absent record is not
// an error.
func (s *Store) Delete(ctx context.Context, subjectID string) error {
	if err := s.redis.Del(ctx, s.Key(subjectID)).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	return nil
}

// Swap atomically replaces expected with next, resetting the TTL. It reports
// false when the stored value no longer matches expected.
func (s *Store) Swap(ctx context.Context, subjectID, expected, next string) (bool, error) {
	res, err := swapLua.Run(ctx, s.redis, []string{s.Key(subjectID)}, expected, next, s.ttl.Milliseconds()).Int64()
	if err != nil {
		return false, fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	return res == 1, nil
}

// TTL returns the remaining lifetime of the record, or 0 when absent.
func (s *Store) TTL(ctx context.Context, subjectID string) (time.Duration, error) {
	ttl, err := s.redis.PTTL(ctx, s.Key(subjectID)).Result()
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	if ttl < 0 {
		return 0, nil
	}
	return ttl, nil
}

// Ping measures a Redis round trip.
func (s *Store) Ping(ctx context.Context) (time.Duration, error) {
	start := time.Now()
	if err := s.redis.Ping(ctx).Err(); err != nil {
		return time.Since(start), fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	return time.Since(start), nil
}
