// Package repository 提供了数据访问层的实现。
package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"mindmirror-go/internal/model"
	"time"

	"github.com/go-redis/redis/v8"
)

// SessionRepository 是按会话 ID 保存对话历史的存储抽象。
// 每次 Put 都会刷新过期时间，因此会话按最后活跃时间过期。
type SessionRepository interface {
	Get(ctx context.Context, sessionID string) (model.History, error)
	Put(ctx context.Context, sessionID string, history model.History) error
	Delete(ctx context.Context, sessionID string) error
}

type redisSessionRepository struct {
	redisClient *redis.Client
	ttl         time.Duration
	maxStored   int
}

// NewRedisSessionRepository 创建一个基于 Redis 的 SessionRepository。
// maxStored 为 0 时不限制存储条数。
func NewRedisSessionRepository(redisClient *redis.Client, ttl time.Duration, maxStored int) SessionRepository {
	return &redisSessionRepository{redisClient: redisClient, ttl: ttl, maxStored: maxStored}
}

func historyKey(sessionID string) string {
	return fmt.Sprintf("session:%s:history", sessionID)
}

// Get 从 Redis 获取对话历史，不存在时返回空历史。
func (r *redisSessionRepository) Get(ctx context.Context, sessionID string) (model.History, error) {
	jsonData, err := r.redisClient.Get(ctx, historyKey(sessionID)).Bytes()
	if err == redis.Nil {
		return model.History{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get conversation history: %w", err)
	}
	var history model.History
	if err := json.Unmarshal(jsonData, &history); err != nil {
		return nil, fmt.Errorf("failed to unmarshal conversation history: %w", err)
	}
	return history, nil
}

// Put 在 Redis 中覆盖对话历史并刷新过期时间。
func (r *redisSessionRepository) Put(ctx context.Context, sessionID string, history model.History) error {
	history = capHistory(history, r.maxStored)
	jsonData, err := json.Marshal(history)
	if err != nil {
		return fmt.Errorf("failed to marshal conversation history: %w", err)
	}
	if err := r.redisClient.Set(ctx, historyKey(sessionID), jsonData, r.ttl).Err(); err != nil {
		return fmt.Errorf("failed to set conversation history: %w", err)
	}
	return nil
}

// Delete 删除对话历史，键不存在不视为错误。
func (r *redisSessionRepository) Delete(ctx context.Context, sessionID string) error {
	if err := r.redisClient.Del(ctx, historyKey(sessionID)).Err(); err != nil {
		return fmt.Errorf("failed to delete conversation history: %w", err)
	}
	return nil
}

func capHistory(history model.History, maxStored int) model.History {
	if maxStored > 0 && len(history) > maxStored {
		return history.Last(maxStored)
	}
	return history
}
