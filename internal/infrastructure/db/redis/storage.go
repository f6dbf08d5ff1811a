package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	storagePrefix     = "storage:"
	defaultStorageTTL = 30 * 24 * time.Hour
)

// KEYS[1] hash; ARGV guard, expected, ttl seconds, then field/value pairs.
var setIfEqualsScript = redis.NewScript(`
if redis.call('HGET', KEYS[1], ARGV[1]) ~= ARGV[2] then
	return 0
end
for i = 4, #ARGV, 2 do
	redis.call('HSET', KEYS[1], ARGV[i], ARGV[i + 1])
end
redis.call('EXPIRE', KEYS[1], ARGV[3])
return 1
`)

// KEYS[1] hash; ARGV guard, expected, then fields to remove.
var deleteIfEqualsScript = redis.NewScript(`
if redis.call('HGET', KEYS[1], ARGV[1]) ~= ARGV[2] then
	return 0
end
for i = 3, #ARGV do
	redis.call('HDEL', KEYS[1], ARGV[i])
end
return 1
`)

// ClientStorage is the server-side key-value space of one browser session.
// Every browser gets a single hash, storage:<sid>, whose TTL slides on write.
type ClientStorage struct {
	client *redis.Client
	sid    string
	ttl    time.Duration
}

// NewClientStorage scopes a storage to the browser session sid.
func NewClientStorage(client *redis.Client, sid string, ttl time.Duration) *ClientStorage {
	if ttl <= 0 {
		ttl = defaultStorageTTL
	}
	return &ClientStorage{client: client, sid: sid, ttl: ttl}
}

func (s *ClientStorage) Get(ctx context.Context, key string) (string, bool, error) {
	val, err := s.client.HGet(ctx, s.key(), key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("storage get %s: %w", key, err)
	}
	return val, true, nil
}

// SetMany writes every field with a single HSET inside a MULTI block.
func (s *ClientStorage) SetMany(ctx context.Context, values map[string]string) error {
	if len(values) == 0 {
		return nil
	}
	pipe := s.client.TxPipeline()
	pipe.HSet(ctx, s.key(), pairs(values)...)
	pipe.Expire(ctx, s.key(), s.ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("storage set: %w", err)
	}
	return nil
}

func (s *ClientStorage) SetIfEquals(ctx context.Context, guard, expected string, values map[string]string) (bool, error) {
	if expected == "" || len(values) == 0 {
		return false, nil
	}
	args := append([]interface{}{guard, expected, int64(s.ttl / time.Second)}, pairs(values)...)
	n, err := setIfEqualsScript.Run(ctx, s.client, []string{s.key()}, args...).Int64()
	if err != nil {
		return false, fmt.Errorf("storage set if %s matches: %w", guard, err)
	}
	return n == 1, nil
}

func (s *ClientStorage) DeleteIfEquals(ctx context.Context, guard, expected string, keys ...string) (bool, error) {
	if expected == "" || len(keys) == 0 {
		return false, nil
	}
	args := []interface{}{guard, expected}
	for _, k := range keys {
		args = append(args, k)
	}
	n, err := deleteIfEqualsScript.Run(ctx, s.client, []string{s.key()}, args...).Int64()
	if err != nil {
		return false, fmt.Errorf("storage delete if %s matches: %w", guard, err)
	}
	return n == 1, nil
}

func (s *ClientStorage) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	if err := s.client.HDel(ctx, s.key(), keys...).Err(); err != nil {
		return fmt.Errorf("storage delete: %w", err)
	}
	return nil
}

func (s *ClientStorage) key() string {
	return storagePrefix + s.sid
}

func pairs(values map[string]string) []interface{} {
	out := make([]interface{}, 0, 2*len(values))
	for k, v := range values {
		out = append(out, k, v)
	}
	return out
}
