package kvstore

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Entry 键值表，对应 kv_entries（由迁移脚本创建）
type Entry struct {
	Key       string    `gorm:"type:varchar(200);primaryKey"`
	Value     []byte    `gorm:"type:bytea;not null"`
	UpdatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// TableName 指定表名
func (Entry) TableName() string { return "kv_entries" }

// GormStore 基于 PostgreSQL 的键值存储
type GormStore struct {
	db *gorm.DB
}

// NewGormStore 创建 GORM 存储
func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

func (s *GormStore) Load(ctx context.Context, key string) ([]byte, error) {
	var entry Entry
	err := s.db.WithContext(ctx).
		Where("key = ?", key).
		First(&entry).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return entry.Value, nil
}

func (s *GormStore) Save(ctx context.Context, key string, value []byte) error {
	entry := Entry{Key: key, Value: value, UpdatedAt: time.Now()}
	return s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "key"}},
			DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
		}).
		Create(&entry).Error
}
