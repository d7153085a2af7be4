// Package redis реализует single_slot-вариант токен-хранилища поверх Redis.
// Токен лежит в одном Redis Hash под фиксированным ключом; каждая запись
// целиком заменяет поля хэша, так что «последний выпущенный» — это просто
// текущее содержимое слота. Схема append_only этим бэкендом не поддерживается
// (отклоняется на этапе конфигурации).
package redis

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/pribylovaa/go-shift-scheduler/internal/models"
	"github.com/pribylovaa/go-shift-scheduler/internal/storage"

	"github.com/redis/go-redis/v9"
)

const defaultKey = "qrtoken:current"

// Store — single_slot токен-хранилище в Redis.
type Store struct {
	rdb       *redis.Client
	key       string
	retention time.Duration
}

// New создаёт клиент Redis из URL (например, redis://:pass@host:6379/0).
// Если key пустой — используется "qrtoken:current". retention определяет,
// сколько истёкший токен доживает в слоте (различимый TOKEN_EXPIRED),
// прежде чем ключ вытеснится по TTL.
func New(redisURL, key string, retention time.Duration) (*Store, error) {
	if key == "" {
		key = defaultKey
	}

	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, err
	}

	rdb := redis.NewClient(opt)

	// Fail-fast на старте.
	if err := rdb.Ping(context.Background()).Err(); err != nil {
		return nil, err
	}

	return &Store{rdb: rdb, key: key, retention: retention}, nil
}

// Храним как Redis Hash с полями: value, iat (unix ms), exp (unix ms).
func (s *Store) SaveToken(ctx context.Context, token models.Token) error {
	const op = "storage/redis/SaveToken"

	kv := map[string]string{
		"value": token.Value,
		"iat":   strconv.FormatInt(token.IssuedAt.UTC().UnixMilli(), 10),
		"exp":   strconv.FormatInt(token.ExpiresAt.UTC().UnixMilli(), 10),
	}

	ttl := time.Until(token.ExpiresAt) + s.retention

	pipe := s.rdb.TxPipeline()
	pipe.HSet(ctx, s.key, kv)
	pipe.Expire(ctx, s.key, ttl)

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

// LatestToken читает слот целиком. Пустой/вытесненный ключ — storage.ErrNoToken.
func (s *Store) LatestToken(ctx context.Context) (*models.Token, error) {
	const op = "storage/redis/LatestToken"

	m, err := s.rdb.HGetAll(ctx, s.key).Result()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if len(m) == 0 {
		return nil, fmt.Errorf("%s: %w", op, storage.ErrNoToken)
	}

	if m["value"] == "" {
		return nil, fmt.Errorf("%s: %w", op, storage.ErrMalformedToken)
	}

	iat, err := strconv.ParseInt(m["iat"], 10, 64)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, storage.ErrMalformedToken)
	}

	exp, err := strconv.ParseInt(m["exp"], 10, 64)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, storage.ErrMalformedToken)
	}

	return &models.Token{
		Value:     m["value"],
		IssuedAt:  time.UnixMilli(iat).UTC(),
		ExpiresAt: time.UnixMilli(exp).UTC(),
	}, nil
}

// Close закрывает клиент Redis.
func (s *Store) Close(_ context.Context) error { return s.rdb.Close() }
