package service

import (
	"context"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/HuzaifaAbdulRehman/fast-timetable-attendance-sub001/config"
	"github.com/HuzaifaAbdulRehman/fast-timetable-attendance-sub001/internal/dto"
	"github.com/HuzaifaAbdulRehman/fast-timetable-attendance-sub001/internal/repository"
	"github.com/HuzaifaAbdulRehman/fast-timetable-attendance-sub001/pkg/kvstore"
)

// ── 测试辅助 ──

// testNow 2024-01-15 为周一
var testNow = time.Date(2024, 1, 15, 10, 0, 0, 0, time.UTC)

func testConfig() *config.Config {
	return &config.Config{
		Attendance: config.AttendanceConfig{
			DefaultAllowedPercentage: 0.2,
			DefaultCreditHours:       3,
		},
	}
}

// setupTestServiceWithStore 基于给定存储创建 Service，时间固定为 testNow
func setupTestServiceWithStore(store kvstore.Store) *Service {
	logger := zap.NewNop()
	repo := repository.NewRepository(store, logger)
	c := newCore(testConfig(), repo, NewSession(), logger, func() time.Time { return testNow })
	return newService(c)
}

func setupTestService() (*Service, *kvstore.MemoryStore) {
	store := kvstore.NewMemoryStore()
	return setupTestServiceWithStore(store), store
}

func intPtr(v int) *int           { return &v }
func floatPtr(v float64) *float64 { return &v }
func strPtr(v string) *string     { return &v }

// januaryCourse 周二、周四上课，2024 年 1 月共 9 节
func januaryCourse(name string) *dto.CreateCourseRequest {
	return &dto.CreateCourseRequest{
		Name:            name,
		Weekdays:        []int{1, 3},
		StartDate:       "2024-01-01",
		EndDate:         "2024-01-31",
		InitialAbsences: intPtr(0),
		AllowedAbsences: intPtr(3),
	}
}

func mustRegister(t *testing.T, svc *Service, req *dto.CreateCourseRequest) *dto.CourseResponse {
	t.Helper()
	c, err := svc.Course.Register(context.Background(), req)
	if err != nil {
		t.Fatalf("Register 应成功: %v", err)
	}
	return c
}
