package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/SergeiKhy/influencer-roi/internal/models"
)

// MetricsCache кэширует рассчитанные метрики кампании по ключу выборки
type MetricsCache interface {
	Get(ctx context.Context, key string) (*models.CampaignMetrics, error)
	Set(ctx context.Context, key string, metrics *models.CampaignMetrics, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

type metricsCache struct {
	redis *RedisDB
}

func NewMetricsCache(redis *RedisDB) MetricsCache {
	return &metricsCache{redis: redis}
}

func (c *metricsCache) Get(ctx context.Context, key string) (*models.CampaignMetrics, error) {
	data, err := c.redis.Client.Get(ctx, c.key(key)).Bytes()
	if err != nil {
		return nil, err
	}

	var metrics models.CampaignMetrics
	if err := json.Unmarshal(data, &metrics); err != nil {
		return nil, fmt.Errorf("failed to unmarshal metrics: %w", err)
	}

	return &metrics, nil
}

func (c *metricsCache) Set(ctx context.Context, key string, metrics *models.CampaignMetrics, ttl time.Duration) error {
	data, err := json.Marshal(metrics)
	if err != nil {
		return fmt.Errorf("failed to marshal metrics: %w", err)
	}

	return c.redis.Client.Set(ctx, c.key(key), data, ttl).Err()
}

func (c *metricsCache) Delete(ctx context.Context, key string) error {
	return c.redis.Client.Del(ctx, c.key(key)).Err()
}

func (c *metricsCache) key(key string) string {
	return "metrics:" + key
}
