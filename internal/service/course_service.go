package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/HuzaifaAbdulRehman/fast-timetable-attendance-sub001/internal/dto"
	"github.com/HuzaifaAbdulRehman/fast-timetable-attendance-sub001/internal/model"
	"github.com/HuzaifaAbdulRehman/fast-timetable-attendance-sub001/pkg/idgen"
)

// ── 课程模块业务错误 ──

var (
	ErrCourseNotFound         = errors.New("课程不存在")
	ErrCourseDirectionInvalid = errors.New("排序方向必须为 left 或 right")
)

// 排序方向
const (
	DirectionLeft  = "left"
	DirectionRight = "right"
)

// CourseService 课程注册表
//
// 所有操作仅作用于当前学期；注册时由排课计算推导默认缺勤额度。
type CourseService interface {
	Register(ctx context.Context, req *dto.CreateCourseRequest) (*dto.CourseResponse, error)
	Get(ctx context.Context, id string) (*dto.CourseResponse, error)
	List(ctx context.Context) ([]dto.CourseResponse, error)
	Update(ctx context.Context, id string, req *dto.UpdateCourseRequest) (*dto.CourseResponse, error)
	// Delete 删除课程并级联删除其出勤记录
	Delete(ctx context.Context, id string) error
	// Reorder 与相邻课程交换位置，到达边界时不做任何修改
	Reorder(ctx context.Context, id, direction string) ([]dto.CourseResponse, error)
	// ImportICS 从 ICS 课表批量注册课程，单门课程失败不影响其他课程
	ImportICS(ctx context.Context, reader io.Reader) (*dto.ImportCoursesResponse, error)
}

type courseService struct {
	*core
}

// ────────────────────── Register ──────────────────────

func (s *courseService) Register(ctx context.Context, req *dto.CreateCourseRequest) (*dto.CourseResponse, error) {
	if err := validateCourseInput(req); err != nil {
		return nil, err
	}

	s.sess.mu.Lock()
	defer s.sess.mu.Unlock()

	course, err := s.registerLocked(ctx, req)
	if err != nil {
		return nil, err
	}
	return toCourseResponse(course), nil
}

// registerLocked 调用方须已校验 req 并持有会话锁
func (s *courseService) registerLocked(ctx context.Context, req *dto.CreateCourseRequest) (*model.Course, error) {
	startDate, endDate := s.normalizeDates(req.StartDate, req.EndDate)
	if startDate > endDate {
		return nil, invalid("end_date", ErrCourseDateRangeInvalid)
	}

	semesterID, err := s.ensureActiveLocked(ctx)
	if err != nil {
		return nil, err
	}

	all, version := s.repo.Course.Snapshot(ctx)
	existing := coursesOf(all, semesterID)

	credits := s.defaultCreditHours
	if req.CreditHours != nil {
		credits = *req.CreditHours
	}

	course := model.Course{
		ID:          idgen.New(idgen.PrefixCourse),
		SemesterID:  semesterID,
		Name:        strings.TrimSpace(req.Name),
		ShortName:   strings.TrimSpace(req.ShortName),
		CreditHours: credits,
		Weekdays:    append([]int(nil), req.Weekdays...),
		StartDate:   startDate,
		EndDate:     endDate,
		Order:       len(existing),
		CreatedAt:   s.now().UTC(),
		Schedule:    toScheduleSlots(req.Schedule),
		Instructor:  req.Instructor,
		Room:        req.Room,
		Building:    req.Building,
		CourseCode:  req.CourseCode,
		Section:     req.Section,
		TimeSlot:    req.TimeSlot,
	}
	if req.InitialAbsences != nil {
		course.InitialAbsences = *req.InitialAbsences
	}
	if req.AllowedAbsences != nil {
		course.AllowedAbsences = *req.AllowedAbsences
	} else {
		course.AllowedAbsences = s.defaultAllowedAbsences(&course)
	}

	color := pickColor(existing)
	course.Color = color.Name
	course.ColorHex = color.Hex

	if err := s.repo.Course.Replace(ctx, append(all, course), version); err != nil {
		s.logger.Error("注册课程失败", zap.String("name", course.Name), zap.Error(err))
		return nil, err
	}

	s.logger.Info("课程已注册",
		zap.String("course_id", course.ID),
		zap.String("semester_id", semesterID),
		zap.Int("allowed_absences", course.AllowedAbsences),
	)
	return &course, nil
}

// normalizeDates 缺省日期取今天；只给出一端时另一端与之相同
func (s *courseService) normalizeDates(start, end string) (string, string) {
	switch {
	case start == "" && end == "":
		today := model.FormatDate(s.now())
		return today, today
	case start == "":
		return end, end
	case end == "":
		return start, start
	}
	return start, end
}

// defaultAllowedAbsences 按总节数推算缺勤额度；排课计算失败时退回学分估算
func (s *courseService) defaultAllowedAbsences(c *model.Course) int {
	total, err := TotalSessions(c)
	if err != nil {
		fallback := int(math.Floor(c.CreditHours * 16 * s.allowedPercentage))
		s.logger.Warn("排课计算失败，按学分估算缺勤额度",
			zap.String("name", c.Name),
			zap.Int("allowed_absences", fallback),
			zap.Error(err),
		)
		return fallback
	}
	return int(math.Floor(float64(total) * s.allowedPercentage))
}

// ────────────────────── Get / List ──────────────────────

func (s *courseService) Get(ctx context.Context, id string) (*dto.CourseResponse, error) {
	s.sess.mu.Lock()
	defer s.sess.mu.Unlock()

	all, _ := s.repo.Course.Snapshot(ctx)
	c := findCourse(all, s.activeIDLocked(ctx), id)
	if c == nil {
		return nil, ErrCourseNotFound
	}
	return toCourseResponse(c), nil
}

func (s *courseService) List(ctx context.Context) ([]dto.CourseResponse, error) {
	s.sess.mu.Lock()
	defer s.sess.mu.Unlock()

	all, _ := s.repo.Course.Snapshot(ctx)
	return toCourseResponses(coursesOf(all, s.activeIDLocked(ctx))), nil
}

// ────────────────────── Update ──────────────────────

func (s *courseService) Update(ctx context.Context, id string, req *dto.UpdateCourseRequest) (*dto.CourseResponse, error) {
	if err := validateCourseUpdate(req); err != nil {
		return nil, err
	}

	s.sess.mu.Lock()
	defer s.sess.mu.Unlock()

	all, version := s.repo.Course.Snapshot(ctx)
	c := findCourse(all, s.activeIDLocked(ctx), id)
	if c == nil {
		return nil, ErrCourseNotFound
	}

	merged := *c
	applyCourseUpdate(&merged, req)
	if merged.StartDate > merged.EndDate {
		return nil, invalid("end_date", ErrCourseDateRangeInvalid)
	}
	*c = merged

	if err := s.repo.Course.Replace(ctx, all, version); err != nil {
		s.logger.Error("更新课程失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	return toCourseResponse(c), nil
}

// applyCourseUpdate 浅合并；id、semesterId、createdAt 保持不变
func applyCourseUpdate(c *model.Course, req *dto.UpdateCourseRequest) {
	if req.Name != nil {
		c.Name = strings.TrimSpace(*req.Name)
	}
	if req.ShortName != nil {
		c.ShortName = strings.TrimSpace(*req.ShortName)
	}
	if req.CreditHours != nil {
		c.CreditHours = *req.CreditHours
	}
	if req.Weekdays != nil {
		c.Weekdays = append([]int(nil), (*req.Weekdays)...)
	}
	if req.StartDate != nil {
		c.StartDate = *req.StartDate
	}
	if req.EndDate != nil {
		c.EndDate = *req.EndDate
	}
	if req.InitialAbsences != nil {
		c.InitialAbsences = *req.InitialAbsences
	}
	if req.AllowedAbsences != nil {
		c.AllowedAbsences = *req.AllowedAbsences
	}
	if req.Color != nil {
		c.Color = *req.Color
		if hex, ok := paletteHex(*req.Color); ok && req.ColorHex == nil {
			c.ColorHex = hex
		}
	}
	if req.ColorHex != nil {
		c.ColorHex = *req.ColorHex
	}
	if req.Schedule != nil {
		c.Schedule = toScheduleSlots(*req.Schedule)
	}
	if req.Instructor != nil {
		c.Instructor = *req.Instructor
	}
	if req.Room != nil {
		c.Room = *req.Room
	}
	if req.Building != nil {
		c.Building = *req.Building
	}
	if req.CourseCode != nil {
		c.CourseCode = *req.CourseCode
	}
	if req.Section != nil {
		c.Section = *req.Section
	}
	if req.TimeSlot != nil {
		c.TimeSlot = *req.TimeSlot
	}
}

// ────────────────────── Delete ──────────────────────

func (s *courseService) Delete(ctx context.Context, id string) error {
	s.sess.mu.Lock()
	defer s.sess.mu.Unlock()

	all, version := s.repo.Course.Snapshot(ctx)
	if findCourse(all, s.activeIDLocked(ctx), id) == nil {
		return ErrCourseNotFound
	}

	kept := make([]model.Course, 0, len(all)-1)
	for _, c := range all {
		if c.ID != id {
			kept = append(kept, c)
		}
	}
	if err := s.repo.Course.Replace(ctx, kept, version); err != nil {
		s.logger.Error("删除课程失败", zap.String("id", id), zap.Error(err))
		return err
	}

	records, rv := s.repo.Attendance.Snapshot(ctx)
	keptRecords := make([]model.AttendanceRecord, 0, len(records))
	for _, r := range records {
		if r.CourseID != id {
			keptRecords = append(keptRecords, r)
		}
	}
	if len(keptRecords) == len(records) {
		return nil
	}
	if err := s.repo.Attendance.Replace(ctx, keptRecords, rv); err != nil {
		s.logger.Error("级联删除出勤记录失败", zap.String("course_id", id), zap.Error(err))
		return err
	}
	return nil
}

// ────────────────────── Reorder ──────────────────────

func (s *courseService) Reorder(ctx context.Context, id, direction string) ([]dto.CourseResponse, error) {
	if direction != DirectionLeft && direction != DirectionRight {
		return nil, ErrCourseDirectionInvalid
	}

	s.sess.mu.Lock()
	defer s.sess.mu.Unlock()

	semesterID := s.activeIDLocked(ctx)
	all, version := s.repo.Course.Snapshot(ctx)
	courses := coursesOf(all, semesterID)

	idx := -1
	for i := range courses {
		if courses[i].ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil, ErrCourseNotFound
	}

	target := idx - 1
	if direction == DirectionRight {
		target = idx + 1
	}
	if target < 0 || target >= len(courses) {
		return toCourseResponses(courses), nil
	}
	courses[idx], courses[target] = courses[target], courses[idx]

	// 重新写入本学期所有课程的 order
	orders := make(map[string]int, len(courses))
	for i := range courses {
		courses[i].Order = i
		orders[courses[i].ID] = i
	}
	for i := range all {
		if o, ok := orders[all[i].ID]; ok {
			all[i].Order = o
		}
	}

	if err := s.repo.Course.Replace(ctx, all, version); err != nil {
		s.logger.Error("课程排序失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	return toCourseResponses(courses), nil
}

// ────────────────────── ImportICS ──────────────────────

func (s *courseService) ImportICS(ctx context.Context, reader io.Reader) (*dto.ImportCoursesResponse, error) {
	loc := s.now().Location()
	requests, err := ParseICS(reader, loc)
	if err != nil {
		return nil, err
	}

	s.sess.mu.Lock()
	defer s.sess.mu.Unlock()

	result := &dto.ImportCoursesResponse{Courses: []dto.CourseResponse{}}
	for i := range requests {
		req := &requests[i]
		if err := validateCourseInput(req); err != nil {
			result.Skipped = append(result.Skipped, dto.SkippedCourse{Name: req.Name, Reason: err.Error()})
			continue
		}
		course, err := s.registerLocked(ctx, req)
		if err != nil {
			var vErr *ValidationError
			if !errors.As(err, &vErr) {
				return nil, fmt.Errorf("导入课程 %q 失败: %w", req.Name, err)
			}
			result.Skipped = append(result.Skipped, dto.SkippedCourse{Name: req.Name, Reason: err.Error()})
			continue
		}
		result.Courses = append(result.Courses, *toCourseResponse(course))
	}
	result.ImportedCount = len(result.Courses)

	s.logger.Info("ICS 导入完成",
		zap.Int("imported", result.ImportedCount),
		zap.Int("skipped", len(result.Skipped)),
	)
	return result, nil
}

// ── 内部辅助方法 ──

// coursesOf 返回指定学期的课程，按 order 排序
func coursesOf(all []model.Course, semesterID string) []model.Course {
	out := make([]model.Course, 0, len(all))
	if semesterID == "" {
		return out
	}
	for _, c := range all {
		if c.SemesterID == semesterID {
			out = append(out, c)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Order < out[j].Order })
	return out
}

// findCourse 在指定学期中查找课程，返回指向切片元素的指针
func findCourse(all []model.Course, semesterID, id string) *model.Course {
	if semesterID == "" {
		return nil
	}
	for i := range all {
		if all[i].ID == id && all[i].SemesterID == semesterID {
			return &all[i]
		}
	}
	return nil
}

func toScheduleSlots(in []dto.ScheduleSlotDTO) []model.ScheduleSlot {
	if len(in) == 0 {
		return nil
	}
	out := make([]model.ScheduleSlot, len(in))
	for i, s := range in {
		out[i] = model.ScheduleSlot{Day: s.Day, StartTime: s.StartTime, EndTime: s.EndTime}
	}
	return out
}

func toCourseResponse(c *model.Course) *dto.CourseResponse {
	resp := &dto.CourseResponse{
		ID:              c.ID,
		SemesterID:      c.SemesterID,
		Name:            c.Name,
		ShortName:       c.ShortName,
		CreditHours:     c.CreditHours,
		Weekdays:        c.Weekdays,
		StartDate:       c.StartDate,
		EndDate:         c.EndDate,
		InitialAbsences: c.InitialAbsences,
		AllowedAbsences: c.AllowedAbsences,
		Color:           c.Color,
		ColorHex:        c.ColorHex,
		Order:           c.Order,
		Instructor:      c.Instructor,
		Room:            c.Room,
		Building:        c.Building,
		CourseCode:      c.CourseCode,
		Section:         c.Section,
		TimeSlot:        c.TimeSlot,
		CreatedAt:       c.CreatedAt.Format(time.RFC3339),
	}
	for _, slot := range c.Schedule {
		resp.Schedule = append(resp.Schedule, dto.ScheduleSlotDTO{Day: slot.Day, StartTime: slot.StartTime, EndTime: slot.EndTime})
	}
	return resp
}

func toCourseResponses(courses []model.Course) []dto.CourseResponse {
	out := make([]dto.CourseResponse, 0, len(courses))
	for i := range courses {
		out = append(out, *toCourseResponse(&courses[i]))
	}
	return out
}
