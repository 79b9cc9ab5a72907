// Package kvstore 提供核心层依赖的键值持久化协作者。
//
// 核心层只要求 get/set 语义：值为 JSON 文本，键为固定的逻辑名称。
// 具体实现有内存、Redis 与 PostgreSQL（GORM）三种后端。
package kvstore

import (
	"context"
	"errors"
	"sync"
)

// ErrNotFound 键不存在
var ErrNotFound = errors.New("kvstore: key not found")

// Store 键值存储接口
type Store interface {
	// Load 读取键对应的原始 JSON；键不存在时返回 ErrNotFound
	Load(ctx context.Context, key string) ([]byte, error)
	// Save 整体覆盖键对应的值
	Save(ctx context.Context, key string, value []byte) error
}

// ── 内存实现 ──

// MemoryStore 进程内存储，用于开发与测试
type MemoryStore struct {
	mu   sync.RWMutex
	data map[string][]byte
}

// NewMemoryStore 创建内存存储
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: make(map[string][]byte)}
}

func (m *MemoryStore) Load(_ context.Context, key string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	v, ok := m.data[key]
	if !ok {
		return nil, ErrNotFound
	}
	out := make([]byte, len(v))
	copy(out, v)
	return out, nil
}

func (m *MemoryStore) Save(_ context.Context, key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	buf := make([]byte, len(value))
	copy(buf, value)
	m.data[key] = buf
	return nil
}

// ── 前缀包装 ──

type prefixStore struct {
	prefix string
	next   Store
}

// WithPrefix 为所有键加上统一前缀
func WithPrefix(prefix string, next Store) Store {
	if prefix == "" {
		return next
	}
	return &prefixStore{prefix: prefix, next: next}
}

func (p *prefixStore) Load(ctx context.Context, key string) ([]byte, error) {
	return p.next.Load(ctx, p.prefix+key)
}

func (p *prefixStore) Save(ctx context.Context, key string, value []byte) error {
	return p.next.Save(ctx, p.prefix+key, value)
}
