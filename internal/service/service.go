package service

import (
	"time"

	"go.uber.org/zap"

	"github.com/HuzaifaAbdulRehman/fast-timetable-attendance-sub001/config"
	"github.com/HuzaifaAbdulRehman/fast-timetable-attendance-sub001/internal/repository"
)

// Service 所有 Service 的聚合入口
type Service struct {
	Semester     SemesterService
	Course       CourseService
	Attendance   AttendanceService
	Stats        StatsService
	Notification NotificationService
	Export       ExportService
}

// NewService 创建 Service 聚合
// 所有核心模块共享同一个会话（当前学期指针 + 单级撤销槽）
func NewService(cfg *config.Config, repo *repository.Repository, logger *zap.Logger) *Service {
	return newService(newCore(cfg, repo, NewSession(), logger, time.Now))
}

func newService(c *core) *Service {
	return &Service{
		Semester:     &semesterService{core: c},
		Course:       &courseService{core: c},
		Attendance:   &attendanceService{core: c},
		Stats:        &statsService{core: c},
		Notification: NewNotificationService(c.repo, c.logger),
		Export:       &exportService{core: c},
	}
}

// core 各模块共享的依赖与会话
type core struct {
	repo   *repository.Repository
	sess   *Session
	logger *zap.Logger
	now    func() time.Time

	allowedPercentage  float64
	defaultCreditHours float64
}

func newCore(cfg *config.Config, repo *repository.Repository, sess *Session, logger *zap.Logger, now func() time.Time) *core {
	return &core{
		repo:               repo,
		sess:               sess,
		logger:             logger,
		now:                now,
		allowedPercentage:  cfg.Attendance.DefaultAllowedPercentage,
		defaultCreditHours: cfg.Attendance.DefaultCreditHours,
	}
}
