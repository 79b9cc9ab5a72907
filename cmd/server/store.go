package main

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/HuzaifaAbdulRehman/fast-timetable-attendance-sub001/config"
	"github.com/HuzaifaAbdulRehman/fast-timetable-attendance-sub001/pkg/database"
	"github.com/HuzaifaAbdulRehman/fast-timetable-attendance-sub001/pkg/kvstore"
	"github.com/HuzaifaAbdulRehman/fast-timetable-attendance-sub001/pkg/redis"
)

// backend 已打开的存储后端及其需要在关闭时释放的资源
type backend struct {
	store kvstore.Store
	rdb   *redis.Client // 仅 redis 后端非空，同时用于接口限流
	close func()
}

// openBackend 按 store.backend 选择键值存储
func openBackend(cfg *config.Config, logger *zap.Logger) (*backend, error) {
	switch cfg.Store.Backend {
	case config.StoreBackendRedis:
		rdb, err := redis.NewClient(&cfg.Redis, logger)
		if err != nil {
			return nil, err
		}
		return &backend{
			store: kvstore.NewRedisStore(rdb),
			rdb:   rdb,
			close: func() { rdb.Close() },
		}, nil

	case config.StoreBackendPostgres:
		db, err := database.NewDB(&cfg.Database, cfg.Log.Level, logger)
		if err != nil {
			return nil, fmt.Errorf("数据库连接失败: %w", err)
		}
		sqlDB, err := db.DB()
		if err != nil {
			return nil, fmt.Errorf("获取底层 sql.DB 失败: %w", err)
		}
		if err := database.RunMigrations(sqlDB, logger); err != nil {
			sqlDB.Close()
			return nil, fmt.Errorf("数据库迁移失败: %w", err)
		}
		return &backend{
			store: kvstore.NewGormStore(db),
			close: func() { sqlDB.Close() },
		}, nil

	default:
		logger.Warn("使用内存存储，进程退出后数据将丢失")
		return &backend{
			store: kvstore.NewMemoryStore(),
			close: func() {},
		}, nil
	}
}
