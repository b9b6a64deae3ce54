package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"food_store/internal/models"
	"food_store/internal/pkg/logger"
)

// SessionKey is the Redis key holding the session JSON.
const SessionKey = "storefront:session"

// Redis keeps the session as one JSON value in Redis.
type Redis struct {
	client *redis.Client
	key    string
	log    *logger.Logger
}

// NewRedis connects to the Redis server at url (redis://host:port/db) and pings it.
func NewRedis(url string, l *logger.Logger) (*Redis, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("storage: parse redis url: %w", err)
	}

	client := redis.NewClient(opts)

	const defaultTimeout = 5 * time.Second
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		l.Sugar().Errorf("Redis ping failed: %s", err)
		client.Close()
		return nil, err
	}

	return newRedisFromClient(client, SessionKey, l), nil
}

func newRedisFromClient(client *redis.Client, key string, l *logger.Logger) *Redis {
	return &Redis{client: client, key: key, log: l}
}

// Load reads the session value. A missing key is an empty session.
func (r *Redis) Load(ctx context.Context) (models.Session, error) {
	data, err := r.client.Get(ctx, r.key).Bytes()
	if errors.Is(err, redis.Nil) {
		return models.Session{}, nil
	}
	if err != nil {
		r.log.Sugar().Errorf("Failed to get %s: %s", r.key, err)
		return models.Session{}, err
	}

	var session models.Session
	if err := json.Unmarshal(data, &session); err != nil {
		return models.Session{}, fmt.Errorf("storage: decode redis session: %w", err)
	}
	return session, nil
}

// Save replaces the session value. It never expires.
func (r *Redis) Save(ctx context.Context, session models.Session) error {
	data, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("storage: encode session: %w", err)
	}
	if err := r.client.Set(ctx, r.key, data, 0).Err(); err != nil {
		r.log.Sugar().Errorf("Failed to set %s: %s", r.key, err)
		return err
	}
	return nil
}

// Clear deletes the session value.
func (r *Redis) Clear(ctx context.Context) error {
	if err := r.client.Del(ctx, r.key).Err(); err != nil {
		r.log.Sugar().Errorf("Failed to delete %s: %s", r.key, err)
		return err
	}
	return nil
}

// Close closes the Redis client.
func (r *Redis) Close() {
	if err := r.client.Close(); err != nil {
		r.log.Sugar().Errorf("Failed to close redis client: %s", err)
	}
}
