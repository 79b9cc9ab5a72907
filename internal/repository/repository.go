package repository

import (
	"go.uber.org/zap"

	"github.com/HuzaifaAbdulRehman/fast-timetable-attendance-sub001/pkg/kvstore"
)

// 持久化逻辑键
const (
	KeyCourses              = "courses"
	KeyAttendance           = "attendance"
	KeySemesters            = "semesters"
	KeyActiveSemester       = "active_semester"
	KeyNotificationSettings = "notification_settings"
)

// Repository 所有 Repository 的聚合入口
type Repository struct {
	Semester   SemesterRepository
	Course     CourseRepository
	Attendance AttendanceRepository
	Settings   SettingsRepository
}

// NewRepository 基于键值存储创建 Repository 聚合
func NewRepository(store kvstore.Store, logger *zap.Logger) *Repository {
	return &Repository{
		Semester:   NewSemesterRepo(store, logger),
		Course:     NewCourseRepo(store, logger),
		Attendance: NewAttendanceRepo(store, logger),
		Settings:   NewSettingsRepo(store, logger),
	}
}
