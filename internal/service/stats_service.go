package service

import (
	"context"
	"math"

	"github.com/HuzaifaAbdulRehman/fast-timetable-attendance-sub001/internal/dto"
	"github.com/HuzaifaAbdulRehman/fast-timetable-attendance-sub001/internal/model"
)

// StatsService 当前学期的出勤统计查询
type StatsService interface {
	CourseStats(ctx context.Context, courseID string) (*dto.CourseStatsResponse, error)
	// Dashboard 当前学期所有课程的统计及今日聚合状态
	Dashboard(ctx context.Context) (*dto.DashboardResponse, error)
}

type statsService struct {
	*core
}

func (s *statsService) CourseStats(ctx context.Context, courseID string) (*dto.CourseStatsResponse, error) {
	s.sess.mu.Lock()
	defer s.sess.mu.Unlock()

	semesterID := s.activeIDLocked(ctx)
	courses, _ := s.repo.Course.Snapshot(ctx)
	c := findCourse(courses, semesterID, courseID)
	if c == nil {
		return nil, ErrCourseNotFound
	}
	records, _ := s.repo.Attendance.Snapshot(ctx)
	return toCourseStatsResponse(c, recordsOf(records, semesterID)), nil
}

func (s *statsService) Dashboard(ctx context.Context) (*dto.DashboardResponse, error) {
	s.sess.mu.Lock()
	defer s.sess.mu.Unlock()

	semesterID, err := s.ensureActiveLocked(ctx)
	if err != nil {
		return nil, err
	}
	all, _ := s.repo.Course.Snapshot(ctx)
	courses := coursesOf(all, semesterID)
	records, _ := s.repo.Attendance.Snapshot(ctx)
	records = recordsOf(records, semesterID)

	today := model.FormatDate(s.now())
	resp := &dto.DashboardResponse{
		SemesterID:  semesterID,
		Today:       today,
		TodayStatus: string(DayStatus(today, courses, records)),
		Courses:     make([]dto.CourseStatsResponse, 0, len(courses)),
	}
	for i := range courses {
		st := toCourseStatsResponse(&courses[i], records)
		if st.IsAtRisk {
			resp.AtRiskCount++
		}
		resp.Courses = append(resp.Courses, *st)
	}
	return resp, nil
}

func toCourseStatsResponse(c *model.Course, records []model.AttendanceRecord) *dto.CourseStatsResponse {
	st := ComputeStats(c, records)
	total, _ := TotalSessions(c)
	return &dto.CourseStatsResponse{
		CourseID:          c.ID,
		Name:              c.Name,
		Color:             c.Color,
		ColorHex:          c.ColorHex,
		TotalSessions:     total,
		AdjustedTotal:     st.AdjustedTotal,
		Absences:          st.Absences,
		AllowedAbsences:   c.AllowedAbsences,
		RemainingAbsences: st.RemainingAbsences,
		Percentage:        math.Round(st.Percentage*10) / 10,
		Status:            string(st.Status),
		IsAtRisk:          st.IsAtRisk,
	}
}
