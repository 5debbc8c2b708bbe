package redis

import (
	"context"
	"errors"

	goredis "github.com/redis/go-redis/v9"

	"github.com/spsworld03/sps-bill-brew/internal/slot"
)

// Slot stores each key as a plain redis string under "<namespace>:<key>".
// Values never expire.
type Slot struct {
	client    *goredis.Client
	namespace string
}

func New(addr string, password string, db int, namespace string) *Slot {
	client := goredis.NewClient(&goredis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	return &Slot{client: client, namespace: namespace}
}

func (s *Slot) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

func (s *Slot) Close() error {
	return s.client.Close()
}

func (s *Slot) Get(ctx context.Context, key string) (string, error) {
	val, err := s.client.Get(ctx, s.redisKey(key)).Result()
	if errors.Is(err, goredis.Nil) {
		return "", slot.ErrNotFound
	}
	if err != nil {
		return "", err
	}
	return val, nil
}

func (s *Slot) Set(ctx context.Context, key string, value string) error {
	return s.client.Set(ctx, s.redisKey(key), value, 0).Err()
}

func (s *Slot) Remove(ctx context.Context, key string) error {
	return s.client.Del(ctx, s.redisKey(key)).Err()
}

func (s *Slot) redisKey(key string) string {
	if s.namespace == "" {
		return key
	}
	return s.namespace + ":" + key
}
