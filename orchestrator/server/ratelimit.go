// Copyright 2025 BrainSAIT
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package server

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"

	"brainsait/platform/shared/logger"
)

// RateLimiter applies a sliding-window per-caller limit backed by Redis.
// A nil limiter allows everything; Redis errors fail open so the limiter
// can never take the service down.
type RateLimiter struct {
	client    *redis.Client
	perMinute int
	log       *logger.Logger
}

// NewRateLimiter connects to Redis and returns a limiter. Disabled
// configurations (empty URL or non-positive limit) return (nil, nil).
func NewRateLimiter(redisURL string, perMinute int, log *logger.Logger) (*RateLimiter, error) {
	if redisURL == "" || perMinute <= 0 {
		return nil, nil
	}
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}
	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	return NewRateLimiterWithClient(client, perMinute, log), nil
}

// NewRateLimiterWithClient wraps an existing client.
func NewRateLimiterWithClient(client *redis.Client, perMinute int, log *logger.Logger) *RateLimiter {
	return &RateLimiter{client: client, perMinute: perMinute, log: log}
}

// Allow reports whether the caller identified by key may proceed. The
// window is the trailing minute.
func (rl *RateLimiter) Allow(ctx context.Context, key string) bool {
	if rl == nil {
		return true
	}

	now := time.Now()
	redisKey := "ratelimit:" + key

	pipe := rl.client.Pipeline()
	minScore := now.Add(-time.Minute).Unix()
	pipe.ZRemRangeByScore(ctx, redisKey, "0", fmt.Sprintf("%d", minScore))
	pipe.ZCard(ctx, redisKey)
	pipe.ZAdd(ctx, redisKey, &redis.Z{
		Score:  float64(now.Unix()),
		Member: fmt.Sprintf("%d", now.UnixNano()),
	})
	pipe.Expire(ctx, redisKey, 2*time.Minute)

	cmds, err := pipe.Exec(ctx)
	if err != nil {
		// Fail open on Redis errors.
		if rl.log != nil {
			rl.log.Warn("", "rate limit check failed, failing open", map[string]interface{}{
				"key":   key,
				"error": err.Error(),
			})
		}
		return true
	}

	count := cmds[1].(*redis.IntCmd).Val()
	return count < int64(rl.perMinute)
}

// Close releases the Redis connection.
func (rl *RateLimiter) Close() error {
	if rl == nil {
		return nil
	}
	return rl.client.Close()
}
