package database

import (
	"context"
	"examhub_backend/internal/config"
	"examhub_backend/pkg/logger"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

const redisPingTimeout = 3 * time.Second

func RedisOptions(cfg *config.RedisConfig) *redis.Options {
	return &redis.Options{
		Addr:         fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password:     cfg.Password,
		DB:           cfg.DB,
		PoolSize:     20,
		MinIdleConns: 2,
		DialTimeout:  redisPingTimeout,
	}
}

// InitRedis 连接失败时关闭客户端并返回错误，Redis 只用于同步锁和分配事件
func InitRedis(ctx context.Context, cfg *config.RedisConfig) (*redis.Client, error) {
	opts := RedisOptions(cfg)
	rdb := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, redisPingTimeout)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, errors.Wrapf(err, "pinging redis at %s", opts.Addr)
	}

	logger.Log.Info("Redis connection established", zap.String("addr", opts.Addr), zap.Int("db", opts.DB))
	return rdb, nil
}
