package handler

import "github.com/HuzaifaAbdulRehman/fast-timetable-attendance-sub001/internal/service"

// Handler 所有 Handler 的聚合入口
type Handler struct {
	Semester     *SemesterHandler
	Course       *CourseHandler
	Attendance   *AttendanceHandler
	Stats        *StatsHandler
	Notification *NotificationHandler
	Export       *ExportHandler
}

// NewHandler 创建 Handler 聚合
func NewHandler(svc *service.Service) *Handler {
	return &Handler{
		Semester:     NewSemesterHandler(svc.Semester),
		Course:       NewCourseHandler(svc.Course),
		Attendance:   NewAttendanceHandler(svc.Attendance),
		Stats:        NewStatsHandler(svc.Stats),
		Notification: NewNotificationHandler(svc.Notification),
		Export:       NewExportHandler(svc.Export),
	}
}
