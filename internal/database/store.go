package database

import (
	"context"
	"fmt"
	"time"

	"assetdesk/internal/store"
	"assetdesk/pkg/config"
	"assetdesk/pkg/logger"
)

// 存储驱动
const (
	DriverMemory   = "memory"
	DriverFile     = "file"
	DriverRedis    = "redis"
	DriverPostgres = "postgres"
)

// OpenStore 按配置创建记录存储。postgres 驱动需要先调用 Initialize 和 Migrate
func OpenStore(cfg *config.Config) (*store.Store, error) {
	var backend store.Backend

	switch cfg.Store.Driver {
	case DriverMemory:
		backend = store.NewMemoryBackend()
	case DriverFile:
		fb, err := store.NewFileBackend(cfg.Store.FilePath)
		if err != nil {
			return nil, err
		}
		backend = fb
	case DriverRedis:
		client := GetRedisClient()
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := client.Ping(ctx).Err(); err != nil {
			return nil, fmt.Errorf("连接Redis失败: %w", err)
		}
		backend = store.NewRedisBackend(client, cfg.Redis.Prefix, cfg.Store.Namespace)
	case DriverPostgres:
		if cfg.Store.Compress {
			return nil, fmt.Errorf("postgres 存储驱动不支持压缩")
		}
		if DB == nil {
			return nil, fmt.Errorf("数据库未初始化")
		}
		backend = store.NewGormBackend(DB, cfg.Store.Namespace)
	default:
		return nil, fmt.Errorf("未知的存储驱动: %s", cfg.Store.Driver)
	}

	if cfg.Store.Compress {
		cb, err := store.NewCompressedBackend(backend)
		if err != nil {
			return nil, err
		}
		backend = cb
	}

	logger.GetLogger().Infof("Record store opened: driver=%s namespace=%s compress=%t",
		cfg.Store.Driver, cfg.Store.Namespace, cfg.Store.Compress)
	return store.New(backend), nil
}
