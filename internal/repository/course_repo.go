package repository

import (
	"go.uber.org/zap"

	"github.com/HuzaifaAbdulRehman/fast-timetable-attendance-sub001/internal/model"
	"github.com/HuzaifaAbdulRehman/fast-timetable-attendance-sub001/pkg/kvstore"
)

// CourseRepository 课程集合（跨学期，按 semesterId 区分）
type CourseRepository interface {
	Collection[model.Course]
}

// NewCourseRepo 创建 CourseRepository 实例
func NewCourseRepo(store kvstore.Store, logger *zap.Logger) CourseRepository {
	return newCollection[model.Course](store, KeyCourses, logger)
}
