package repository

import (
	"context"
	"encoding/json"
	"errors"
	"sync"

	"go.uber.org/zap"

	"github.com/HuzaifaAbdulRehman/fast-timetable-attendance-sub001/internal/model"
	"github.com/HuzaifaAbdulRehman/fast-timetable-attendance-sub001/pkg/kvstore"
)

// SettingsRepository 单值配置：当前学期指针与提醒设置
type SettingsRepository interface {
	// GetActiveSemesterID 读取当前学期指针，未设置时返回空串
	GetActiveSemesterID(ctx context.Context) string
	// SetActiveSemesterID 写入当前学期指针，空串表示清空
	SetActiveSemesterID(ctx context.Context, id string)
	GetNotificationSettings(ctx context.Context) model.NotificationSettings
	SaveNotificationSettings(ctx context.Context, settings model.NotificationSettings)
}

type settingsRepo struct {
	active       *cell[*string]
	notification *cell[*model.NotificationSettings]
}

// NewSettingsRepo 创建 SettingsRepository 实例
func NewSettingsRepo(store kvstore.Store, logger *zap.Logger) SettingsRepository {
	return &settingsRepo{
		active:       &cell[*string]{store: store, key: KeyActiveSemester, logger: logger},
		notification: &cell[*model.NotificationSettings]{store: store, key: KeyNotificationSettings, logger: logger},
	}
}

func (r *settingsRepo) GetActiveSemesterID(ctx context.Context) string {
	if v := r.active.get(ctx); v != nil {
		return *v
	}
	return ""
}

func (r *settingsRepo) SetActiveSemesterID(ctx context.Context, id string) {
	if id == "" {
		r.active.set(ctx, nil)
		return
	}
	r.active.set(ctx, &id)
}

func (r *settingsRepo) GetNotificationSettings(ctx context.Context) model.NotificationSettings {
	if v := r.notification.get(ctx); v != nil {
		return *v
	}
	return model.DefaultNotificationSettings()
}

func (r *settingsRepo) SaveNotificationSettings(ctx context.Context, settings model.NotificationSettings) {
	r.notification.set(ctx, &settings)
}

// cell 单个 JSON 值的缓存与持久化，零值（null）表示未设置
type cell[T any] struct {
	store  kvstore.Store
	key    string
	logger *zap.Logger

	mu     sync.Mutex
	loaded bool
	value  T
}

func (c *cell[T]) get(ctx context.Context) T {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.loaded {
		c.loaded = true
		raw, err := c.store.Load(ctx, c.key)
		switch {
		case errors.Is(err, kvstore.ErrNotFound):
		case err != nil:
			c.logger.Warn("读取配置失败，使用默认值", zap.String("key", c.key), zap.Error(err))
		default:
			var v T
			if err := json.Unmarshal(raw, &v); err != nil {
				c.logger.Warn("配置数据损坏，使用默认值", zap.String("key", c.key), zap.Error(err))
			} else {
				c.value = v
			}
		}
	}
	return c.value
}

func (c *cell[T]) set(ctx context.Context, v T) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.loaded = true
	c.value = v

	raw, err := json.Marshal(v)
	if err != nil {
		c.logger.Error("序列化配置失败", zap.String("key", c.key), zap.Error(err))
		return
	}
	if err := c.store.Save(ctx, c.key, raw); err != nil {
		c.logger.Error("持久化配置失败", zap.String("key", c.key), zap.Error(err))
	}
}
