package repository

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"

	"github.com/HuzaifaAbdulRehman/fast-timetable-attendance-sub001/internal/model"
	pkgerrors "github.com/HuzaifaAbdulRehman/fast-timetable-attendance-sub001/pkg/errors"
	"github.com/HuzaifaAbdulRehman/fast-timetable-attendance-sub001/pkg/kvstore"
)

// failingStore 读写均失败的存储
type failingStore struct{}

func (failingStore) Load(context.Context, string) ([]byte, error) {
	return nil, errors.New("磁盘不可用")
}

func (failingStore) Save(context.Context, string, []byte) error {
	return errors.New("磁盘不可用")
}

func TestCollection_MissingKeyDefaultsToEmpty(t *testing.T) {
	repo := NewCourseRepo(kvstore.NewMemoryStore(), zap.NewNop())

	items, version := repo.Snapshot(context.Background())
	if items == nil || len(items) != 0 {
		t.Fatalf("期望空集合，实际=%v", items)
	}
	if version != 0 {
		t.Errorf("期望版本=0，实际=%d", version)
	}
}

func TestCollection_CorruptValueDefaultsToEmpty(t *testing.T) {
	ctx := context.Background()
	store := kvstore.NewMemoryStore()
	_ = store.Save(ctx, KeyAttendance, []byte("{not json"))

	repo := NewAttendanceRepo(store, zap.NewNop())
	items, _ := repo.Snapshot(ctx)
	if len(items) != 0 {
		t.Fatalf("损坏数据应回退为空集合，实际=%d", len(items))
	}
}

func TestCollection_ReplacePersists(t *testing.T) {
	ctx := context.Background()
	store := kvstore.NewMemoryStore()
	repo := NewSemesterRepo(store, zap.NewNop())

	_, version := repo.Snapshot(ctx)
	if err := repo.Replace(ctx, []model.Semester{{ID: "sem-1", Name: "秋季学期"}}, version); err != nil {
		t.Fatalf("Replace 应成功: %v", err)
	}

	// 新实例从存储读取
	reloaded := NewSemesterRepo(store, zap.NewNop())
	items, _ := reloaded.Snapshot(ctx)
	if len(items) != 1 || items[0].Name != "秋季学期" {
		t.Fatalf("期望读取到持久化的学期，实际=%v", items)
	}
}

func TestCollection_StaleVersionRejected(t *testing.T) {
	ctx := context.Background()
	repo := NewSemesterRepo(kvstore.NewMemoryStore(), zap.NewNop())

	_, v := repo.Snapshot(ctx)
	if err := repo.Replace(ctx, []model.Semester{{ID: "a"}}, v); err != nil {
		t.Fatalf("第一次 Replace 应成功: %v", err)
	}
	err := repo.Replace(ctx, []model.Semester{{ID: "b"}}, v)
	if !errors.Is(err, pkgerrors.ErrOptimisticLock) {
		t.Fatalf("期望 ErrOptimisticLock，实际: %v", err)
	}

	items, _ := repo.Snapshot(ctx)
	if len(items) != 1 || items[0].ID != "a" {
		t.Errorf("过期写入不应生效，实际=%v", items)
	}
}

func TestCollection_SnapshotIsCopy(t *testing.T) {
	ctx := context.Background()
	repo := NewSemesterRepo(kvstore.NewMemoryStore(), zap.NewNop())
	_, v := repo.Snapshot(ctx)
	_ = repo.Replace(ctx, []model.Semester{{ID: "a", Name: "原名"}}, v)

	items, _ := repo.Snapshot(ctx)
	items[0].Name = "被修改"

	again, _ := repo.Snapshot(ctx)
	if again[0].Name != "原名" {
		t.Errorf("修改快照不应影响集合，实际=%s", again[0].Name)
	}
}

func TestCollection_SaveFailureKeepsMemory(t *testing.T) {
	ctx := context.Background()
	repo := NewCourseRepo(failingStore{}, zap.NewNop())

	_, v := repo.Snapshot(ctx)
	if err := repo.Replace(ctx, []model.Course{{ID: "c1"}}, v); err != nil {
		t.Fatalf("持久化失败不应返回错误: %v", err)
	}
	items, _ := repo.Snapshot(ctx)
	if len(items) != 1 {
		t.Errorf("内存数据应保持权威，实际=%d", len(items))
	}
}

func TestSettingsRepo_ActivePointer(t *testing.T) {
	ctx := context.Background()
	store := kvstore.NewMemoryStore()
	repo := NewSettingsRepo(store, zap.NewNop())

	if got := repo.GetActiveSemesterID(ctx); got != "" {
		t.Fatalf("默认应为空，实际=%q", got)
	}

	repo.SetActiveSemesterID(ctx, "sem-1")
	if got := NewSettingsRepo(store, zap.NewNop()).GetActiveSemesterID(ctx); got != "sem-1" {
		t.Errorf("期望持久化 sem-1，实际=%q", got)
	}

	repo.SetActiveSemesterID(ctx, "")
	raw, _ := store.Load(ctx, KeyActiveSemester)
	if string(raw) != "null" {
		t.Errorf("清空指针应写入 null，实际=%s", raw)
	}
}

func TestSettingsRepo_CorruptPointer(t *testing.T) {
	ctx := context.Background()
	store := kvstore.NewMemoryStore()
	_ = store.Save(ctx, KeyActiveSemester, []byte("[1,2"))

	repo := NewSettingsRepo(store, zap.NewNop())
	if got := repo.GetActiveSemesterID(ctx); got != "" {
		t.Errorf("损坏指针应回退为空，实际=%q", got)
	}
}

func TestSettingsRepo_NotificationDefaults(t *testing.T) {
	ctx := context.Background()
	repo := NewSettingsRepo(kvstore.NewMemoryStore(), zap.NewNop())

	got := repo.GetNotificationSettings(ctx)
	if got.Enabled || got.Time != "20:00" || got.LastChecked != nil {
		t.Errorf("默认提醒设置不符，实际=%+v", got)
	}

	repo.SaveNotificationSettings(ctx, model.NotificationSettings{Enabled: true, Time: "08:30"})
	got = repo.GetNotificationSettings(ctx)
	if !got.Enabled || got.Time != "08:30" {
		t.Errorf("期望保存后的设置，实际=%+v", got)
	}
}
