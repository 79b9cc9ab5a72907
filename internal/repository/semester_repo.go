package repository

import (
	"go.uber.org/zap"

	"github.com/HuzaifaAbdulRehman/fast-timetable-attendance-sub001/internal/model"
	"github.com/HuzaifaAbdulRehman/fast-timetable-attendance-sub001/pkg/kvstore"
)

// SemesterRepository 学期集合
type SemesterRepository interface {
	Collection[model.Semester]
}

// NewSemesterRepo 创建 SemesterRepository 实例
func NewSemesterRepo(store kvstore.Store, logger *zap.Logger) SemesterRepository {
	return newCollection[model.Semester](store, KeySemesters, logger)
}
