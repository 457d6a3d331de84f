package repository

import (
	"context"
	"mindmirror-go/internal/model"
	"sync"
	"time"
)

type memoryEntry struct {
	history   model.History
	expiresAt time.Time
}

// memorySessionRepository 是进程内的 SessionRepository 实现，适用于单实例部署与测试。
type memorySessionRepository struct {
	mu        sync.Mutex
	entries   map[string]memoryEntry
	ttl       time.Duration
	maxStored int
	now       func() time.Time
}

// NewMemorySessionRepository 创建一个进程内的 SessionRepository。
func NewMemorySessionRepository(ttl time.Duration, maxStored int) SessionRepository {
	return &memorySessionRepository{
		entries:   make(map[string]memoryEntry),
		ttl:       ttl,
		maxStored: maxStored,
		now:       time.Now,
	}
}

func (r *memorySessionRepository) Get(_ context.Context, sessionID string) (model.History, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.entries[sessionID]
	if !ok {
		return model.History{}, nil
	}
	if r.now().After(e.expiresAt) {
		delete(r.entries, sessionID)
		return model.History{}, nil
	}
	out := make(model.History, len(e.history))
	copy(out, e.history)
	return out, nil
}

func (r *memorySessionRepository) Put(_ context.Context, sessionID string, history model.History) error {
	history = capHistory(history, r.maxStored)
	stored := make(model.History, len(history))
	copy(stored, history)

	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries[sessionID] = memoryEntry{history: stored, expiresAt: r.now().Add(r.ttl)}
	r.sweepLocked()
	return nil
}

func (r *memorySessionRepository) Delete(_ context.Context, sessionID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.entries, sessionID)
	return nil
}

// sweepLocked 清理已过期的会话，调用方需持有锁。
func (r *memorySessionRepository) sweepLocked() {
	now := r.now()
	for id, e := range r.entries {
		if now.After(e.expiresAt) {
			delete(r.entries, id)
		}
	}
}
