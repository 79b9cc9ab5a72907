package repository

import (
	"go.uber.org/zap"

	"github.com/HuzaifaAbdulRehman/fast-timetable-attendance-sub001/internal/model"
	"github.com/HuzaifaAbdulRehman/fast-timetable-attendance-sub001/pkg/kvstore"
)

// AttendanceRepository 出勤记录集合（跨学期，按 semesterId 区分）
type AttendanceRepository interface {
	Collection[model.AttendanceRecord]
}

// NewAttendanceRepo 创建 AttendanceRepository 实例
func NewAttendanceRepo(store kvstore.Store, logger *zap.Logger) AttendanceRepository {
	return newCollection[model.AttendanceRecord](store, KeyAttendance, logger)
}
