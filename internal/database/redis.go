package database

import (
	"fmt"
	"sync"

	"assetdesk/pkg/config"

	"github.com/go-redis/redis/v8"
)

var (
	redisClient     *redis.Client
	redisClientOnce sync.Once
)

// GetRedisClient 获取Redis客户端的单例实例
func GetRedisClient() *redis.Client {
	redisClientOnce.Do(func() {
		cfg := config.GetConfig()
		redisClient = redis.NewClient(&redis.Options{
			Addr:     fmt.Sprintf("%s:%d", cfg.Redis.Host, cfg.Redis.Port),
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
	})
	return redisClient
}

// CloseRedis 关闭Redis连接
func CloseRedis() error {
	if redisClient != nil {
		return redisClient.Close()
	}
	return nil
}
