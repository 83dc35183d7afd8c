package trivia

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/Aidin1998/trivia/pkg/models"
	"github.com/redis/go-redis/v9"
)

// CategoryCache holds the category list, which does not change after seeding
type CategoryCache interface {
	// Get reports false when nothing is cached
	Get(ctx context.Context) ([]models.Category, bool, error)
	Set(ctx context.Context, categories []models.Category) error
}

const categoriesKey = "trivia:categories"

// RedisCategoryCache stores the category list as JSON in Redis
type RedisCategoryCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisCategoryCache creates a cache whose entries expire after ttl
func NewRedisCategoryCache(client *redis.Client, ttl time.Duration) *RedisCategoryCache {
	return &RedisCategoryCache{client: client, ttl: ttl}
}

func (c *RedisCategoryCache) Get(ctx context.Context) ([]models.Category, bool, error) {
	raw, err := c.client.Get(ctx, categoriesKey).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	var categories []models.Category
	if err := json.Unmarshal(raw, &categories); err != nil {
		return nil, false, err
	}
	return categories, true, nil
}

func (c *RedisCategoryCache) Set(ctx context.Context, categories []models.Category) error {
	raw, err := json.Marshal(categories)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, categoriesKey, raw, c.ttl).Err()
}
