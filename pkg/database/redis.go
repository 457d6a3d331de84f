// Package database 管理会话存储 (Redis) 与对话归档 (MySQL) 的全局连接。
package database

import (
	"context"
	"time"

	"mindmirror-go/pkg/log"

	"github.com/go-redis/redis/v8"
)

var RDB *redis.Client

// InitRedis 初始化会话存储使用的 Redis 客户端，连接失败直接退出。
func InitRedis(addr, password string, db int) {
	RDB = redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := RDB.Ping(ctx).Err(); err != nil {
		log.Fatal("failed to connect to redis", err)
	}

	log.Infof("Redis session store connected: %s (db=%d)", addr, db)
}

// CloseRedis 关闭 Redis 客户端。
func CloseRedis() {
	if RDB == nil {
		return
	}
	if err := RDB.Close(); err != nil {
		log.Warnf("关闭 Redis 连接失败: %v", err)
	}
}
