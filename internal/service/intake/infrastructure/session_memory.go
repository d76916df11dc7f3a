// internal/service/intake/infrastructure/session_memory.go
package infrastructure

import (
	"context"
	"sync"
	"time"

	"boost/internal/service/intake/domain"
)

// InMemorySessionStore 是 domain.SessionStore 的进程内实现，
// 用于单测和本地运行。条目按 TTL 过期，由后台 goroutine 清扫。
type InMemorySessionStore struct {
	mu     sync.Mutex
	data   map[string]memoryItem
	defTTL time.Duration
}

type memoryItem struct {
	session *domain.Session
	exp     time.Time
}

func NewInMemorySessionStore(defaultTTL time.Duration) *InMemorySessionStore {
	m := &InMemorySessionStore{
		data:   make(map[string]memoryItem),
		defTTL: defaultTTL,
	}
	go m.gc()
	return m
}

var _ domain.SessionStore = (*InMemorySessionStore)(nil)

func (m *InMemorySessionStore) Get(_ context.Context, userID string) (*domain.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	it, ok := m.data[userID]
	if !ok || time.Now().After(it.exp) {
		return nil, nil
	}
	return it.session, nil
}

func (m *InMemorySessionStore) Put(_ context.Context, s *domain.Session, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if ttl <= 0 {
		ttl = m.defTTL
	}
	m.data[s.UserID] = memoryItem{session: s, exp: time.Now().Add(ttl)}
	return nil
}

func (m *InMemorySessionStore) Del(_ context.Context, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, userID)
	return nil
}

func (m *InMemorySessionStore) gc() {
	t := time.NewTicker(time.Minute)
	for range t.C {
		now := time.Now()
		m.mu.Lock()
		for k, it := range m.data {
			if now.After(it.exp) {
				delete(m.data, k)
			}
		}
		m.mu.Unlock()
	}
}
