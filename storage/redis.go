package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"newswizard/internal/config"
	"newswizard/internal/session"

	"github.com/redis/go-redis/v9"
)

const redisKeyPrefix = "newswizard:conversation:"

// RedisStore хранит каждый разговор одним JSON-документом с временем жизни ttl.
// Просроченные разговоры удаляет сам Redis.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
	log    *slog.Logger
}

// NewRedisClient создает клиента Redis по настройкам приложения.
func NewRedisClient(cfg config.RedisConfig) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:         cfg.Address,
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})
}

func NewRedisStore(client *redis.Client, ttl time.Duration, log *slog.Logger) *RedisStore {
	log.Info("Initializing Redis conversation storage", slog.Duration("ttl", ttl))
	return &RedisStore{
		client: client,
		ttl:    ttl,
		log:    log.With(slog.String("component", "redis-store")),
	}
}

// Ping проверяет соединение с Redis.
func (s *RedisStore) Ping(ctx context.Context) error {
	if err := s.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping failed: %w", err)
	}
	return nil
}

func (s *RedisStore) Load(ctx context.Context, conversationID string) (session.Map, error) {
	const op = "storage.redis.Load"
	raw, err := s.client.Get(ctx, redisKeyPrefix+conversationID).Bytes()
	if errors.Is(err, redis.Nil) {
		return session.Map{}, nil
	}
	if err != nil {
		s.log.Error("Failed to read conversation", slog.String("op", op), slog.Any("error", err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	attrs := session.Map{}
	if err := json.Unmarshal(raw, &attrs); err != nil {
		return nil, fmt.Errorf("%s: failed to decode conversation: %w", op, err)
	}
	return attrs, nil
}

func (s *RedisStore) Save(ctx context.Context, conversationID string, attrs session.Map) error {
	const op = "storage.redis.Save"
	raw, err := json.Marshal(attrs)
	if err != nil {
		return fmt.Errorf("%s: failed to encode conversation: %w", op, err)
	}
	if err := s.client.Set(ctx, redisKeyPrefix+conversationID, raw, s.ttl).Err(); err != nil {
		s.log.Error("Failed to write conversation", slog.String("op", op), slog.Any("error", err))
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

func (s *RedisStore) Delete(ctx context.Context, conversationID string) error {
	if err := s.client.Del(ctx, redisKeyPrefix+conversationID).Err(); err != nil {
		return fmt.Errorf("storage.redis.Delete: %w", err)
	}
	return nil
}

func (s *RedisStore) Close() {
	s.log.Info("Closing Redis connection")
	if err := s.client.Close(); err != nil {
		s.log.Error("Failed to close Redis connection", slog.Any("error", err))
	}
}
