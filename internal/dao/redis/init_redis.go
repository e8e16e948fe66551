package redis

import (
	"context"
	"strconv"
	"time"

	"harmony_server/internal/config"

	"github.com/go-redis/redis/v8"
)

// Init 根据配置创建 Redis 客户端并检查连通性
func Init(ctx context.Context, conf *config.RedisConfig) (*RedisCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         conf.Host + ":" + strconv.Itoa(conf.Port),
		Password:     conf.Password,
		DB:           conf.Db,
		PoolSize:     50,
		MinIdleConns: conf.Workers,
		DialTimeout:  3 * time.Second,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, err
	}

	return NewRedisCache(client, conf.Workers, 3000), nil
}
