// Package ratelimit реализует ограничение частоты запросов на Redis.
package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// tokenBucketScript атомарно пополняет и расходует корзину токенов.
// ARGV: емкость, скорость пополнения (токенов в секунду), текущее время в мс, запрошено токенов.
var tokenBucketScript = redis.NewScript(`
	local key = KEYS[1]
	local capacity = tonumber(ARGV[1])
	local rate = tonumber(ARGV[2])
	local now = tonumber(ARGV[3])
	local requested = tonumber(ARGV[4])

	local info = redis.call("HMGET", key, "tokens", "last_refill")
	local tokens = tonumber(info[1])
	local last_refill = tonumber(info[2])

	if tokens == nil then
		tokens = capacity
		last_refill = now
	end

	local delta = math.max(0, now - last_refill)
	local filled_tokens = math.min(capacity, tokens + (delta / 1000 * rate))

	local allowed = 0
	if filled_tokens >= requested then
		filled_tokens = filled_tokens - requested
		allowed = 1
	end
	redis.call("HSET", key, "tokens", filled_tokens, "last_refill", now)
	redis.call("EXPIRE", key, math.ceil(capacity / rate) * 2)

	return allowed
`)

// Policy описывает корзину: Burst запросов сразу и Rate запросов в секунду в среднем.
type Policy struct {
	Name  string
	Rate  float64
	Burst int
}

// RedisLimiter хранит корзины в Redis, поэтому лимит общий для всех реплик сервера.
type RedisLimiter struct {
	client redis.Scripter
	now    func() time.Time
	log    logrus.FieldLogger
}

// NewRedisLimiter создает RedisLimiter поверх клиента Redis.
func NewRedisLimiter(client redis.Scripter, log logrus.FieldLogger) *RedisLimiter {
	return &RedisLimiter{client: client, now: time.Now, log: log.WithField("component", "RateLimiter")}
}

// NewRedisClient создает клиент и проверяет соединение.
func NewRedisClient(ctx context.Context, addr string) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{Addr: addr})

	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("ошибка подключения к Redis %s: %w", addr, err)
	}
	return rdb, nil
}

// Allow расходует один токен из корзины key по правилам policy.
func (l *RedisLimiter) Allow(ctx context.Context, policy Policy, key string) (bool, error) {
	keys := []string{fmt.Sprintf("rate_limit:%s:%s", policy.Name, key)}
	args := []interface{}{policy.Burst, policy.Rate, l.now().UnixMilli(), 1}

	result, err := tokenBucketScript.Run(ctx, l.client, keys, args...).Int64()
	if err != nil {
		return false, fmt.Errorf("ошибка выполнения скрипта ограничения: %w", err)
	}
	return result == 1, nil
}
