// Package redis is an optional second-level cache for trend series.
// Trend lookups are the most expensive calls in the system (one
// provider request per month per provider), and their results stay
// valid across process restarts; mirroring them in redis keeps series
// warm through deploys. The service runs fully without it.
package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/skillcompass/backend/pkg/logger"
)

type Client struct {
	client *redis.Client
}

func NewClient(host string, port int, password string, db int) (*Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", host, port),
		Password: password,
		DB:       db,
	})

	ctx := context.Background()
	if _, err := client.Ping(ctx).Result(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	logger.Info("Redis trend cache initialized", zap.String("addr", fmt.Sprintf("%s:%d", host, port)))

	return &Client{client: client}, nil
}

func (c *Client) Close() error {
	return c.client.Close()
}

func trendKey(skill, track string) string {
	return fmt.Sprintf("trend:%s:%s", strings.ToLower(track), strings.ToLower(skill))
}

func (c *Client) SetTrend(ctx context.Context, skill, track string, trend interface{}, ttl time.Duration) error {
	data, err := json.Marshal(trend)
	if err != nil {
		return fmt.Errorf("failed to marshal trend: %w", err)
	}

	if err := c.client.Set(ctx, trendKey(skill, track), data, ttl).Err(); err != nil {
		return fmt.Errorf("failed to set trend cache: %w", err)
	}

	logger.Debug("Trend cached",
		zap.String("skill", skill),
		zap.String("track", track),
		zap.Duration("ttl", ttl),
	)
	return nil
}

func (c *Client) GetTrend(ctx context.Context, skill, track string, trend interface{}) (bool, error) {
	data, err := c.client.Get(ctx, trendKey(skill, track)).Bytes()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to get trend cache: %w", err)
	}

	if err := json.Unmarshal(data, trend); err != nil {
		return false, fmt.Errorf("failed to unmarshal trend: %w", err)
	}

	logger.Debug("Trend cache hit", zap.String("skill", skill), zap.String("track", track))
	return true, nil
}

func (c *Client) InvalidateTrends(ctx context.Context) error {
	iter := c.client.Scan(ctx, 0, "trend:*", 0).Iterator()
	for iter.Next(ctx) {
		if err := c.client.Del(ctx, iter.Val()).Err(); err != nil {
			logger.Warn("Failed to delete trend cache key", zap.Error(err))
		}
	}

	if err := iter.Err(); err != nil {
		return fmt.Errorf("failed to iterate trend cache keys: %w", err)
	}

	logger.Info("Trend cache invalidated")
	return nil
}
