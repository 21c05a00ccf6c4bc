package store

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/go-redis/redis/v8"
)

// RedisBackend 将 blob 存放在一个 Redis 键中，revision 存放在相邻的计数键中
type RedisBackend struct {
	client  *redis.Client
	dataKey string
	revKey  string
}

// NewRedisBackend 创建 Redis 后端，键名为 prefix:namespace
func NewRedisBackend(client *redis.Client, prefix, namespace string) *RedisBackend {
	base := namespace
	if prefix != "" {
		base = fmt.Sprintf("%s:%s", prefix, namespace)
	}
	return &RedisBackend{
		client:  client,
		dataKey: base,
		revKey:  base + ":revision",
	}
}

func (b *RedisBackend) Load(ctx context.Context) ([]byte, string, error) {
	values, err := b.client.MGet(ctx, b.dataKey, b.revKey).Result()
	if err != nil {
		return nil, "", err
	}

	data, ok := values[0].(string)
	if !ok {
		return nil, "", nil
	}
	revision, _ := values[1].(string)
	return []byte(data), revision, nil
}

func (b *RedisBackend) Save(ctx context.Context, data []byte, revision string) (string, error) {
	var next int64

	err := b.client.Watch(ctx, func(tx *redis.Tx) error {
		current, err := tx.Get(ctx, b.revKey).Result()
		if err != nil && !errors.Is(err, redis.Nil) {
			return err
		}
		if current != revision {
			return ErrConflict
		}

		var incr *redis.IntCmd
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, b.dataKey, data, 0)
			incr = pipe.Incr(ctx, b.revKey)
			return nil
		})
		if err != nil {
			return err
		}
		next = incr.Val()
		return nil
	}, b.revKey)

	if errors.Is(err, redis.TxFailedErr) {
		return "", ErrConflict
	}
	if err != nil {
		return "", err
	}
	return strconv.FormatInt(next, 10), nil
}

// Close 连接由 database 包统一关闭
func (b *RedisBackend) Close() error {
	return nil
}
