// Package cache реализует работу с Redis: универсальный кеш, хранилище
// одноразовых CSRF-токенов и счётчики окна для ограничения попыток входа.
// Состояние разделяется всеми процессами приложения, в отличие от
// внутрипроцессных таблиц.
package cache

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/cookieflix/cookieflix-backend/internal/config"
)

// CSRFTokenTTL время жизни выданного CSRF-токена.
const CSRFTokenTTL = time.Hour

// Cache инкапсулирует клиент Redis.
type Cache struct {
	DB *redis.Client
}

// InitServer создаёт клиент Redis и проверяет соединение.
func InitServer(ctx context.Context, cfg config.RedisConnection) (*Cache, error) {
	const op = "cache.InitServer"
	db := redis.NewClient(&redis.Options{
		Addr:         cfg.AddressRedis,
		Password:     cfg.Password,
		DB:           cfg.DB,
		Username:     cfg.User,
		MaxRetries:   cfg.MaxRetries,
		DialTimeout:  cfg.DialTimeout,
		ReadTimeout:  cfg.TimeoutRedis,
		WriteTimeout: cfg.TimeoutRedis,
	})

	if err := db.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &Cache{DB: db}, nil
}

// Ping проверяет соединение с Redis.
func (c *Cache) Ping(ctx context.Context) error {
	return c.DB.Ping(ctx).Err()
}

// Get пытается получить значение из кеша по ключу.
func (c *Cache) Get(ctx context.Context, key string, result any) (bool, error) {
	const op = "cache.Get"
	val, err := c.DB.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	if err := json.Unmarshal([]byte(val), result); err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	return true, nil
}

// Set сохраняет значение в кеш с временем жизни.
func (c *Cache) Set(ctx context.Context, key string, value any, expiration time.Duration) error {
	jsonData, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return c.DB.Set(ctx, key, jsonData, expiration).Err()
}

// Invalidate удаляет значение из кеша по ключу.
func (c *Cache) Invalidate(ctx context.Context, key string) error {
	return c.DB.Del(ctx, key).Err()
}

// IssueCSRFToken генерирует одноразовый CSRF-токен и сохраняет его с TTL.
func (c *Cache) IssueCSRFToken(ctx context.Context) (string, error) {
	const op = "cache.IssueCSRFToken"
	raw := make([]byte, 32)
	if _, err := rand.Read(raw); err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	token := base64.RawURLEncoding.EncodeToString(raw)
	if err := c.DB.Set(ctx, "csrf:"+token, "1", CSRFTokenTTL).Err(); err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return token, nil
}

// ConsumeCSRFToken проверяет и удаляет CSRF-токен. Токен одноразовый:
// повторная проверка того же токена вернёт false.
func (c *Cache) ConsumeCSRFToken(ctx context.Context, token string) (bool, error) {
	const op = "cache.ConsumeCSRFToken"
	err := c.DB.GetDel(ctx, "csrf:"+token).Err()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	return true, nil
}

// AllowAttempt инкрементирует счётчик фиксированного окна по ключу
// и сообщает, не превышен ли лимит попыток.
func (c *Cache) AllowAttempt(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	const op = "cache.AllowAttempt"
	count, err := c.DB.Incr(ctx, "ratelimit:"+key).Result()
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	if count == 1 {
		if err := c.DB.Expire(ctx, "ratelimit:"+key, window).Err(); err != nil {
			return false, fmt.Errorf("%s: %w", op, err)
		}
	}
	return count <= int64(limit), nil
}
