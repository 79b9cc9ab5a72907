package repository

import (
	"context"
	"encoding/json"
	"errors"
	"sync"

	"go.uber.org/zap"

	pkgerrors "github.com/HuzaifaAbdulRehman/fast-timetable-attendance-sub001/pkg/errors"
	"github.com/HuzaifaAbdulRehman/fast-timetable-attendance-sub001/pkg/kvstore"
)

// Collection 整集合读-改-写的版本化集合
//
// Snapshot 返回当前集合副本及其版本号；Replace 仅在版本号与当前一致时
// 整体替换集合，否则返回 ErrOptimisticLock。内存中的集合是当前会话的
// 权威数据：持久化写入失败只记录日志，不回滚内存。
type Collection[T any] interface {
	Snapshot(ctx context.Context) ([]T, int64)
	Replace(ctx context.Context, items []T, version int64) error
}

type collection[T any] struct {
	store  kvstore.Store
	key    string
	logger *zap.Logger

	mu      sync.Mutex
	loaded  bool
	items   []T
	version int64
}

func newCollection[T any](store kvstore.Store, key string, logger *zap.Logger) *collection[T] {
	return &collection[T]{store: store, key: key, logger: logger}
}

func (c *collection[T]) Snapshot(ctx context.Context) ([]T, int64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.loadLocked(ctx)

	out := make([]T, len(c.items))
	copy(out, c.items)
	return out, c.version
}

func (c *collection[T]) Replace(ctx context.Context, items []T, version int64) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.loadLocked(ctx)
	if version != c.version {
		return pkgerrors.ErrOptimisticLock
	}

	next := make([]T, len(items))
	copy(next, items)
	c.items = next
	c.version++

	c.persistLocked(ctx)
	return nil
}

// loadLocked 首次访问时从存储加载；缺失或损坏的数据以空集合代替
func (c *collection[T]) loadLocked(ctx context.Context) {
	if c.loaded {
		return
	}
	c.loaded = true
	c.items = []T{}

	raw, err := c.store.Load(ctx, c.key)
	if err != nil {
		if !errors.Is(err, kvstore.ErrNotFound) {
			c.logger.Warn("读取集合失败，使用默认值", zap.String("key", c.key), zap.Error(err))
		}
		return
	}

	var items []T
	if err := json.Unmarshal(raw, &items); err != nil {
		c.logger.Warn("集合数据损坏，使用默认值", zap.String("key", c.key), zap.Error(err))
		return
	}
	if items != nil {
		c.items = items
	}
}

func (c *collection[T]) persistLocked(ctx context.Context) {
	raw, err := json.Marshal(c.items)
	if err != nil {
		c.logger.Error("序列化集合失败", zap.String("key", c.key), zap.Error(err))
		return
	}
	if err := c.store.Save(ctx, c.key, raw); err != nil {
		c.logger.Error("持久化集合失败", zap.String("key", c.key), zap.Error(err))
	}
}
