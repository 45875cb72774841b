// Package cache keeps recent analysis results in Redis.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"

	"nutrition-engine/models"
)

const keyPrefix = "analysis:"

type RedisClient struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisClient connects to addr and fails if the server does not answer a ping.
// Results expire after ttl.
func NewRedisClient(ctx context.Context, addr string, ttl time.Duration) (*RedisClient, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:         addr,
		DB:           0,
		PoolSize:     50,
		MinIdleConns: 10,
		MaxRetries:   3,
	})

	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("ping redis at %s: %w", addr, err)
	}

	return &RedisClient{client: rdb, ttl: ttl}, nil
}

func (rc *RedisClient) Close() error {
	return rc.client.Close()
}

// Ping reports whether the server is reachable.
func (rc *RedisClient) Ping(ctx context.Context) error {
	return rc.client.Ping(ctx).Err()
}

func analysisKey(userID string, metricType models.MetricType, days int) string {
	return fmt.Sprintf("%s%s:%s:%d", keyPrefix, userID, metricType, days)
}

func (rc *RedisClient) SaveAnalysis(ctx context.Context, result *models.AnalysisResult) error {
	data, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("encode analysis: %w", err)
	}
	key := analysisKey(result.UserID, result.MetricType, result.Days)
	return rc.client.Set(ctx, key, data, rc.ttl).Err()
}

// GetAnalysis returns nil, nil on a miss.
func (rc *RedisClient) GetAnalysis(ctx context.Context, userID string, metricType models.MetricType, days int) (*models.AnalysisResult, error) {
	val, err := rc.client.Get(ctx, analysisKey(userID, metricType, days)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var result models.AnalysisResult
	if err := json.Unmarshal(val, &result); err != nil {
		return nil, fmt.Errorf("decode analysis: %w", err)
	}
	return &result, nil
}

// InvalidateUser drops every cached window for the user's metric.
func (rc *RedisClient) InvalidateUser(ctx context.Context, userID string, metricType models.MetricType) error {
	pattern := fmt.Sprintf("%s%s:%s:*", keyPrefix, userID, metricType)
	var cursor uint64
	for {
		keys, next, err := rc.client.Scan(ctx, cursor, pattern, 100).Result()
		if err != nil {
			return fmt.Errorf("scan %s: %w", pattern, err)
		}
		if len(keys) > 0 {
			if err := rc.client.Del(ctx, keys...).Err(); err != nil {
				return fmt.Errorf("delete cached analyses: %w", err)
			}
		}
		if next == 0 {
			return nil
		}
		cursor = next
	}
}
