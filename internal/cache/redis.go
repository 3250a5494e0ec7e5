package cache

import (
	"LinkPulse-Backend/internal/config"
	"LinkPulse-Backend/internal/domain"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Cache — lookaside-кэш для горячего пути редиректа (код -> запись).
// Источником истины остается хранилище: ошибки Redis деградируют до
// промаха, отрицательные результаты не кэшируются.
//
// Nil-значение Cache валидно и означает "кэш выключен".
type Cache struct {
	client *redis.Client
	ttl    time.Duration
	log    *zap.Logger
}

// New подключается к Redis. Пустой адрес выключает кэш (возвращается nil).
func New(ctx context.Context, cfg *config.Redis, log *zap.Logger) (*Cache, error) {
	if cfg.Address == "" {
		log.Info("redirect cache disabled (no redis address configured)")
		return nil, nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Address,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	ttl, err := time.ParseDuration(cfg.TTL)
	if err != nil {
		log.Warn("failed to parse redis ttl, using default 5m", zap.Error(err))
		ttl = 5 * time.Minute
	}

	log.Info("connected to redis", zap.String("address", cfg.Address), zap.Duration("ttl", ttl))
	return &Cache{client: client, ttl: ttl, log: log}, nil
}

// GetURL возвращает закэшированную запись или nil при промахе
func (c *Cache) GetURL(ctx context.Context, code string) *domain.URLRecord {
	if c == nil {
		return nil
	}

	data, err := c.client.Get(ctx, urlKey(code)).Bytes()
	if err != nil {
		if err != redis.Nil {
			c.log.Warn("redis get failed", zap.String("short_code", code), zap.Error(err))
		}
		return nil
	}

	var rec domain.URLRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		c.log.Warn("failed to unmarshal cached url", zap.String("short_code", code), zap.Error(err))
		return nil
	}
	return &rec
}

// SetURL кэширует запись на время TTL
func (c *Cache) SetURL(ctx context.Context, rec *domain.URLRecord) {
	if c == nil {
		return
	}

	data, err := json.Marshal(rec)
	if err != nil {
		c.log.Warn("failed to marshal url for cache", zap.String("short_code", rec.ShortCode), zap.Error(err))
		return
	}
	if err := c.client.Set(ctx, urlKey(rec.ShortCode), data, c.ttl).Err(); err != nil {
		c.log.Warn("redis set failed", zap.String("short_code", rec.ShortCode), zap.Error(err))
	}
}

// Invalidate сбрасывает запись после обновления или удаления ссылки
func (c *Cache) Invalidate(ctx context.Context, code string) {
	if c == nil {
		return
	}
	if err := c.client.Del(ctx, urlKey(code)).Err(); err != nil {
		c.log.Warn("redis del failed", zap.String("short_code", code), zap.Error(err))
	}
}

// Close закрывает соединение с Redis
func (c *Cache) Close() error {
	if c == nil {
		return nil
	}
	return c.client.Close()
}

func urlKey(code string) string {
	return "url:code:" + code
}
