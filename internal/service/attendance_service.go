package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/HuzaifaAbdulRehman/fast-timetable-attendance-sub001/internal/dto"
	"github.com/HuzaifaAbdulRehman/fast-timetable-attendance-sub001/internal/model"
	"github.com/HuzaifaAbdulRehman/fast-timetable-attendance-sub001/pkg/idgen"
)

// ── 出勤模块业务错误 ──

var (
	ErrAttendanceDateInvalid   = errors.New("日期格式必须为 YYYY-MM-DD")
	ErrAttendanceStatusInvalid = errors.New("出勤状态必须为 present、absent、cancelled 或 proxy")
	ErrAttendanceNoDates       = errors.New("至少需要一个日期")
	ErrAttendanceNoClass       = errors.New("该课程在此日期没有课")
)

// AttendanceService 出勤记录账本
//
// 记录表示对"默认到课"的偏离。整日切换会把切换前的记录保存到单级撤销槽，
// 新的整日切换直接覆盖撤销槽。
type AttendanceService interface {
	// List 当前学期的出勤记录，courseID 为空时返回全部
	List(ctx context.Context, courseID string) ([]dto.AttendanceRecordResponse, error)
	// ToggleSession 设置单门课程某日的状态；status 为 nil 表示删除记录（恢复默认到课）
	ToggleSession(ctx context.Context, courseID, date string, status *model.AttendanceStatus) ([]dto.AttendanceRecordResponse, error)
	// ToggleDay 整日切换：有缺勤则全部恢复到课，否则全部标记缺勤
	ToggleDay(ctx context.Context, date string) (*dto.ToggleDayResponse, error)
	// Undo 撤销最近一次整日切换，撤销槽为空时返回 Undone=false
	Undo(ctx context.Context) (*dto.UndoResponse, error)
	// MarkDaysAbsent 批量将多个日期标记为缺勤，不产生撤销记录
	MarkDaysAbsent(ctx context.Context, dates []string) (*dto.MarkDaysAbsentResponse, error)
	// Clear 删除当前学期的全部出勤记录
	Clear(ctx context.Context) (int, error)
	DayStatus(ctx context.Context, date string) (*dto.DayStatusResponse, error)
}

type attendanceService struct {
	*core
}

// ────────────────────── List ──────────────────────

func (s *attendanceService) List(ctx context.Context, courseID string) ([]dto.AttendanceRecordResponse, error) {
	s.sess.mu.Lock()
	defer s.sess.mu.Unlock()

	semesterID := s.activeIDLocked(ctx)
	records, _ := s.repo.Attendance.Snapshot(ctx)

	var filtered []model.AttendanceRecord
	for _, r := range recordsOf(records, semesterID) {
		if courseID == "" || r.CourseID == courseID {
			filtered = append(filtered, r)
		}
	}
	sort.SliceStable(filtered, func(i, j int) bool { return filtered[i].Date < filtered[j].Date })
	return toRecordResponses(filtered), nil
}

// ────────────────────── ToggleSession ──────────────────────

func (s *attendanceService) ToggleSession(ctx context.Context, courseID, date string, status *model.AttendanceStatus) ([]dto.AttendanceRecordResponse, error) {
	if !model.IsISODate(date) {
		return nil, ErrAttendanceDateInvalid
	}
	if status != nil && !status.Valid() {
		return nil, ErrAttendanceStatusInvalid
	}

	s.sess.mu.Lock()
	defer s.sess.mu.Unlock()

	semesterID := s.activeIDLocked(ctx)
	courses, _ := s.repo.Course.Snapshot(ctx)
	course := findCourse(courses, semesterID, courseID)
	if course == nil {
		return nil, ErrCourseNotFound
	}

	records, version := s.repo.Attendance.Snapshot(ctx)
	next := make([]model.AttendanceRecord, 0, len(records)+1)
	var touched []model.AttendanceRecord
	found := false

	for _, r := range records {
		if r.CourseID != courseID || r.Date != date {
			next = append(next, r)
			continue
		}
		found = true
		if status == nil {
			continue
		}
		r.Status = *status
		r.IsOverride = true
		next = append(next, r)
		touched = append(touched, r)
	}

	if !found {
		// 默认即到课，标记到课不产生记录
		if status == nil || *status == model.StatusPresent {
			return []dto.AttendanceRecordResponse{}, nil
		}
		// 已有记录总可修改或清除；新记录只能落在排课日
		if !HasClassOnDate(course, date) {
			return nil, ErrAttendanceNoClass
		}
		r := s.newRecord(courseID, semesterID, date, *status)
		next = append(next, r)
		touched = append(touched, r)
	}

	if err := s.repo.Attendance.Replace(ctx, next, version); err != nil {
		s.logger.Error("更新出勤记录失败",
			zap.String("course_id", courseID),
			zap.String("date", date),
			zap.Error(err),
		)
		return nil, err
	}
	return toRecordResponses(touched), nil
}

// ────────────────────── ToggleDay ──────────────────────

func (s *attendanceService) ToggleDay(ctx context.Context, date string) (*dto.ToggleDayResponse, error) {
	if !model.IsISODate(date) {
		return nil, ErrAttendanceDateInvalid
	}

	s.sess.mu.Lock()
	defer s.sess.mu.Unlock()

	semesterID := s.activeIDLocked(ctx)
	allCourses, _ := s.repo.Course.Snapshot(ctx)
	courses := coursesOf(allCourses, semesterID)
	scheduled := scheduledOn(courses, date)
	if len(scheduled) == 0 {
		return &dto.ToggleDayResponse{Date: date, DayStatus: string(model.DayPresent)}, nil
	}

	records, version := s.repo.Attendance.Snapshot(ctx)
	active := recordsOf(records, semesterID)
	before := DayStatus(date, courses, active)

	previous := recordsOnDate(active, date)
	next := withoutDate(records, semesterID, date)

	verb := "present"
	after := model.DayPresent
	if before == model.DayPresent {
		verb = "absent"
		after = model.DayAbsent
		next = append(next, s.absentRecords(scheduled, semesterID, date)...)
	}

	if err := s.repo.Attendance.Replace(ctx, next, version); err != nil {
		s.logger.Error("整日切换失败", zap.String("date", date), zap.Error(err))
		return nil, err
	}

	description := fmt.Sprintf("Marked %d course(s) %s on %s", len(scheduled), verb, date)
	s.setUndoLocked(&UndoEntry{
		Type:          UndoToggleDay,
		SemesterID:    semesterID,
		Date:          date,
		PreviousState: previous,
		Description:   description,
	})

	return &dto.ToggleDayResponse{
		Date:            date,
		Changed:         true,
		DayStatus:       string(after),
		AffectedCourses: len(scheduled),
		Description:     description,
	}, nil
}

// ────────────────────── Undo ──────────────────────

func (s *attendanceService) Undo(ctx context.Context) (*dto.UndoResponse, error) {
	s.sess.mu.Lock()
	defer s.sess.mu.Unlock()

	entry := s.sess.undo
	if entry == nil || entry.Type != UndoToggleDay {
		return &dto.UndoResponse{Undone: false}, nil
	}

	// 课程在切换后被删除时，其旧记录不再恢复
	courses, _ := s.repo.Course.Snapshot(ctx)
	exists := make(map[string]bool, len(courses))
	for _, c := range courses {
		exists[c.ID] = true
	}

	records, version := s.repo.Attendance.Snapshot(ctx)
	next := withoutDate(records, entry.SemesterID, entry.Date)
	for _, r := range entry.PreviousState {
		if exists[r.CourseID] {
			next = append(next, r)
		}
	}

	if err := s.repo.Attendance.Replace(ctx, next, version); err != nil {
		s.logger.Error("撤销失败", zap.String("date", entry.Date), zap.Error(err))
		return nil, err
	}
	s.setUndoLocked(nil)

	s.logger.Info("已撤销整日切换", zap.String("date", entry.Date), zap.String("description", entry.Description))
	return &dto.UndoResponse{Undone: true, Date: entry.Date}, nil
}

// ────────────────────── MarkDaysAbsent ──────────────────────

func (s *attendanceService) MarkDaysAbsent(ctx context.Context, dates []string) (*dto.MarkDaysAbsentResponse, error) {
	if len(dates) == 0 {
		return nil, ErrAttendanceNoDates
	}
	for _, d := range dates {
		if !model.IsISODate(d) {
			return nil, ErrAttendanceDateInvalid
		}
	}

	s.sess.mu.Lock()
	defer s.sess.mu.Unlock()

	semesterID := s.activeIDLocked(ctx)
	allCourses, _ := s.repo.Course.Snapshot(ctx)
	courses := coursesOf(allCourses, semesterID)
	records, version := s.repo.Attendance.Snapshot(ctx)

	result := &dto.MarkDaysAbsentResponse{}
	seen := make(map[string]bool, len(dates))
	for _, date := range dates {
		if seen[date] {
			continue
		}
		seen[date] = true

		scheduled := scheduledOn(courses, date)
		if len(scheduled) == 0 {
			continue
		}
		created := s.absentRecords(scheduled, semesterID, date)
		records = append(withoutDate(records, semesterID, date), created...)
		result.MarkedDays++
		result.CreatedRecords += len(created)
	}

	if result.MarkedDays == 0 {
		return result, nil
	}
	if err := s.repo.Attendance.Replace(ctx, records, version); err != nil {
		s.logger.Error("批量标记缺勤失败", zap.Strings("dates", dates), zap.Error(err))
		return nil, err
	}
	return result, nil
}

// ────────────────────── Clear ──────────────────────

func (s *attendanceService) Clear(ctx context.Context) (int, error) {
	s.sess.mu.Lock()
	defer s.sess.mu.Unlock()

	semesterID := s.activeIDLocked(ctx)
	records, version := s.repo.Attendance.Snapshot(ctx)

	kept := make([]model.AttendanceRecord, 0, len(records))
	for _, r := range records {
		if r.SemesterID != semesterID {
			kept = append(kept, r)
		}
	}
	removed := len(records) - len(kept)

	if err := s.repo.Attendance.Replace(ctx, kept, version); err != nil {
		s.logger.Error("清空出勤记录失败", zap.String("semester_id", semesterID), zap.Error(err))
		return 0, err
	}
	if s.sess.undo != nil && s.sess.undo.SemesterID == semesterID {
		s.setUndoLocked(nil)
	}
	return removed, nil
}

// ────────────────────── DayStatus ──────────────────────

func (s *attendanceService) DayStatus(ctx context.Context, date string) (*dto.DayStatusResponse, error) {
	if !model.IsISODate(date) {
		return nil, ErrAttendanceDateInvalid
	}

	s.sess.mu.Lock()
	defer s.sess.mu.Unlock()

	semesterID := s.activeIDLocked(ctx)
	allCourses, _ := s.repo.Course.Snapshot(ctx)
	courses := coursesOf(allCourses, semesterID)
	records, _ := s.repo.Attendance.Snapshot(ctx)
	onDate := recordsOnDate(recordsOf(records, semesterID), date)

	resp := &dto.DayStatusResponse{
		Date:    date,
		Status:  string(DayStatus(date, courses, onDate)),
		Courses: []dto.DayCourseStatus{},
	}
	for i := range courses {
		n := SessionCountOnDate(&courses[i], date)
		if n == 0 {
			continue
		}
		var own []model.AttendanceRecord
		for _, r := range onDate {
			if r.CourseID == courses[i].ID {
				own = append(own, r)
			}
		}
		resp.Courses = append(resp.Courses, dto.DayCourseStatus{
			CourseID: courses[i].ID,
			Name:     courses[i].Name,
			Sessions: n,
			Records:  toRecordResponses(own),
		})
	}
	return resp, nil
}

// ── 内部辅助方法 ──

func (s *attendanceService) newRecord(courseID, semesterID, date string, status model.AttendanceStatus) model.AttendanceRecord {
	return model.AttendanceRecord{
		ID:         idgen.New(idgen.PrefixAttendance),
		CourseID:   courseID,
		SemesterID: semesterID,
		Date:       date,
		Status:     status,
		CreatedAt:  s.now().UTC(),
	}
}

// absentRecords 为当天每门有课课程的每一节生成缺勤记录
func (s *attendanceService) absentRecords(scheduled []model.Course, semesterID, date string) []model.AttendanceRecord {
	var out []model.AttendanceRecord
	for i := range scheduled {
		n := SessionCountOnDate(&scheduled[i], date)
		for k := 0; k < n; k++ {
			out = append(out, s.newRecord(scheduled[i].ID, semesterID, date, model.StatusAbsent))
		}
	}
	return out
}

// scheduledOn 返回指定日期有课的课程
func scheduledOn(courses []model.Course, date string) []model.Course {
	var out []model.Course
	for i := range courses {
		if HasClassOnDate(&courses[i], date) {
			out = append(out, courses[i])
		}
	}
	return out
}

func recordsOf(records []model.AttendanceRecord, semesterID string) []model.AttendanceRecord {
	out := make([]model.AttendanceRecord, 0, len(records))
	if semesterID == "" {
		return out
	}
	for _, r := range records {
		if r.SemesterID == semesterID {
			out = append(out, r)
		}
	}
	return out
}

func recordsOnDate(records []model.AttendanceRecord, date string) []model.AttendanceRecord {
	out := make([]model.AttendanceRecord, 0)
	for _, r := range records {
		if r.Date == date {
			out = append(out, r)
		}
	}
	return out
}

// withoutDate 移除指定学期某日的全部记录，返回新切片
func withoutDate(records []model.AttendanceRecord, semesterID, date string) []model.AttendanceRecord {
	out := make([]model.AttendanceRecord, 0, len(records))
	for _, r := range records {
		if r.SemesterID == semesterID && r.Date == date {
			continue
		}
		out = append(out, r)
	}
	return out
}

func toRecordResponse(r *model.AttendanceRecord) dto.AttendanceRecordResponse {
	return dto.AttendanceRecordResponse{
		ID:         r.ID,
		CourseID:   r.CourseID,
		SemesterID: r.SemesterID,
		Date:       r.Date,
		Status:     string(r.Status),
		IsOverride: r.IsOverride,
		CreatedAt:  r.CreatedAt.Format(time.RFC3339),
	}
}

func toRecordResponses(records []model.AttendanceRecord) []dto.AttendanceRecordResponse {
	out := make([]dto.AttendanceRecordResponse, 0, len(records))
	for i := range records {
		out = append(out, toRecordResponse(&records[i]))
	}
	return out
}
