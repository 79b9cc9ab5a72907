package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/HuzaifaAbdulRehman/fast-timetable-attendance-sub001/internal/dto"
	"github.com/HuzaifaAbdulRehman/fast-timetable-attendance-sub001/internal/model"
	"github.com/HuzaifaAbdulRehman/fast-timetable-attendance-sub001/pkg/idgen"
)

// ── 学期模块业务错误 ──

var (
	ErrSemesterNotFound     = errors.New("学期不存在")
	ErrSemesterArchived     = errors.New("学期已归档")
	ErrSemesterLastOne      = errors.New("不能删除唯一的学期")
	ErrSemesterNameRequired = errors.New("学期名称不能为空")
)

// SemesterService 学期分区管理
//
// 当前学期由会话中的指针决定，课程与出勤的所有读写都按该指针过滤。
type SemesterService interface {
	// ActiveID 返回当前学期指针，未设置时为空串
	ActiveID(ctx context.Context) string
	// EnsureActive 保证存在有效的当前学期并返回其 ID
	EnsureActive(ctx context.Context) (string, error)
	GetActive(ctx context.Context) (*dto.SemesterResponse, error)
	List(ctx context.Context) (*dto.SemesterListResponse, error)
	Create(ctx context.Context, req *dto.CreateSemesterRequest) (*dto.SemesterResponse, error)
	Rename(ctx context.Context, id, name string) (*dto.SemesterResponse, error)
	SwitchActive(ctx context.Context, id string) error
	Archive(ctx context.Context, id string) error
	Unarchive(ctx context.Context, id string) error
	// Delete 硬删除学期并级联删除其课程与出勤记录；唯一学期返回 ErrSemesterLastOne
	Delete(ctx context.Context, id string) error
}

type semesterService struct {
	*core
}

// ────────────────────── ActiveID / EnsureActive ──────────────────────

func (s *semesterService) ActiveID(ctx context.Context) string {
	s.sess.mu.Lock()
	defer s.sess.mu.Unlock()
	return s.activeIDLocked(ctx)
}

func (s *semesterService) EnsureActive(ctx context.Context) (string, error) {
	s.sess.mu.Lock()
	defer s.sess.mu.Unlock()
	return s.ensureActiveLocked(ctx)
}

// ensureActiveLocked 当前指针 → 第一个未归档学期 → 自动创建默认学期
func (c *core) ensureActiveLocked(ctx context.Context) (string, error) {
	semesters, version := c.repo.Semester.Snapshot(ctx)

	if id := c.activeIDLocked(ctx); id != "" {
		if sem := findSemester(semesters, id); sem != nil && !sem.IsArchived {
			return id, nil
		}
	}

	for _, sem := range semesters {
		if !sem.IsArchived {
			if err := c.setActiveLocked(ctx, sem.ID); err != nil {
				return "", err
			}
			return sem.ID, nil
		}
	}

	sem := c.newSemester(model.DefaultSemesterName)
	if err := c.repo.Semester.Replace(ctx, append(semesters, sem), version); err != nil {
		c.logger.Error("创建默认学期失败", zap.Error(err))
		return "", err
	}
	c.logger.Info("已自动创建默认学期", zap.String("semester_id", sem.ID))

	if err := c.setActiveLocked(ctx, sem.ID); err != nil {
		return "", err
	}
	return sem.ID, nil
}

func (c *core) newSemester(name string) model.Semester {
	return model.Semester{
		ID:        idgen.New(idgen.PrefixSemester),
		Name:      name,
		CreatedAt: c.now().UTC(),
	}
}

// ────────────────────── GetActive / List ──────────────────────

func (s *semesterService) GetActive(ctx context.Context) (*dto.SemesterResponse, error) {
	s.sess.mu.Lock()
	defer s.sess.mu.Unlock()

	id, err := s.ensureActiveLocked(ctx)
	if err != nil {
		return nil, err
	}
	semesters, _ := s.repo.Semester.Snapshot(ctx)
	sem := findSemester(semesters, id)
	if sem == nil {
		return nil, ErrSemesterNotFound
	}
	return s.toSemesterResponse(ctx, sem, id), nil
}

func (s *semesterService) List(ctx context.Context) (*dto.SemesterListResponse, error) {
	s.sess.mu.Lock()
	defer s.sess.mu.Unlock()

	activeID := s.activeIDLocked(ctx)
	semesters, _ := s.repo.Semester.Snapshot(ctx)

	result := &dto.SemesterListResponse{
		List:             make([]dto.SemesterResponse, 0, len(semesters)),
		ActiveSemesterID: activeID,
	}
	for i := range semesters {
		result.List = append(result.List, *s.toSemesterResponse(ctx, &semesters[i], activeID))
	}
	return result, nil
}

// ────────────────────── Create ──────────────────────

func (s *semesterService) Create(ctx context.Context, req *dto.CreateSemesterRequest) (*dto.SemesterResponse, error) {
	s.sess.mu.Lock()
	defer s.sess.mu.Unlock()

	semesters, version := s.repo.Semester.Snapshot(ctx)

	name := ""
	if req != nil && req.Name != nil {
		name = strings.TrimSpace(*req.Name)
	}
	if name == "" {
		name = fmt.Sprintf("Semester %d", len(semesters)+1)
	}

	sem := s.newSemester(name)
	if err := s.repo.Semester.Replace(ctx, append(semesters, sem), version); err != nil {
		s.logger.Error("创建学期失败", zap.Error(err))
		return nil, err
	}
	if err := s.setActiveLocked(ctx, sem.ID); err != nil {
		s.logger.Error("切换到新学期失败", zap.String("semester_id", sem.ID), zap.Error(err))
		return nil, err
	}

	sem.IsActive = true
	return s.toSemesterResponse(ctx, &sem, sem.ID), nil
}

// ────────────────────── Rename ──────────────────────

func (s *semesterService) Rename(ctx context.Context, id, name string) (*dto.SemesterResponse, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrSemesterNameRequired
	}

	s.sess.mu.Lock()
	defer s.sess.mu.Unlock()

	semesters, version := s.repo.Semester.Snapshot(ctx)
	sem := findSemester(semesters, id)
	if sem == nil {
		return nil, ErrSemesterNotFound
	}
	sem.Name = name

	if err := s.repo.Semester.Replace(ctx, semesters, version); err != nil {
		s.logger.Error("重命名学期失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	return s.toSemesterResponse(ctx, sem, s.activeIDLocked(ctx)), nil
}

// ────────────────────── SwitchActive ──────────────────────

func (s *semesterService) SwitchActive(ctx context.Context, id string) error {
	s.sess.mu.Lock()
	defer s.sess.mu.Unlock()

	semesters, _ := s.repo.Semester.Snapshot(ctx)
	sem := findSemester(semesters, id)
	if sem == nil {
		return ErrSemesterNotFound
	}
	if sem.IsArchived {
		return ErrSemesterArchived
	}
	return s.setActiveLocked(ctx, id)
}

// ────────────────────── Archive / Unarchive ──────────────────────

func (s *semesterService) Archive(ctx context.Context, id string) error {
	s.sess.mu.Lock()
	defer s.sess.mu.Unlock()

	semesters, version := s.repo.Semester.Snapshot(ctx)
	sem := findSemester(semesters, id)
	if sem == nil {
		return ErrSemesterNotFound
	}
	sem.IsArchived = true

	if err := s.repo.Semester.Replace(ctx, semesters, version); err != nil {
		s.logger.Error("归档学期失败", zap.String("id", id), zap.Error(err))
		return err
	}

	if s.activeIDLocked(ctx) != id {
		return nil
	}
	// 当前学期被归档：改指向其他未归档学期，没有则清空
	next := ""
	for _, other := range semesters {
		if other.ID != id && !other.IsArchived {
			next = other.ID
			break
		}
	}
	return s.setActiveLocked(ctx, next)
}

func (s *semesterService) Unarchive(ctx context.Context, id string) error {
	s.sess.mu.Lock()
	defer s.sess.mu.Unlock()

	semesters, version := s.repo.Semester.Snapshot(ctx)
	sem := findSemester(semesters, id)
	if sem == nil {
		return ErrSemesterNotFound
	}
	if !sem.IsArchived {
		return nil
	}
	sem.IsArchived = false

	if err := s.repo.Semester.Replace(ctx, semesters, version); err != nil {
		s.logger.Error("取消归档失败", zap.String("id", id), zap.Error(err))
		return err
	}

	if s.activeIDLocked(ctx) == "" {
		return s.setActiveLocked(ctx, id)
	}
	return nil
}

// ────────────────────── Delete ──────────────────────

func (s *semesterService) Delete(ctx context.Context, id string) error {
	s.sess.mu.Lock()
	defer s.sess.mu.Unlock()

	semesters, version := s.repo.Semester.Snapshot(ctx)
	if findSemester(semesters, id) == nil {
		return ErrSemesterNotFound
	}
	if len(semesters) <= 1 {
		return ErrSemesterLastOne
	}

	remaining := make([]model.Semester, 0, len(semesters)-1)
	for _, sem := range semesters {
		if sem.ID != id {
			remaining = append(remaining, sem)
		}
	}
	if err := s.repo.Semester.Replace(ctx, remaining, version); err != nil {
		s.logger.Error("删除学期失败", zap.String("id", id), zap.Error(err))
		return err
	}

	// 级联：课程与出勤记录
	courses, cv := s.repo.Course.Snapshot(ctx)
	keptCourses := courses[:0]
	for _, c := range courses {
		if c.SemesterID != id {
			keptCourses = append(keptCourses, c)
		}
	}
	if err := s.repo.Course.Replace(ctx, keptCourses, cv); err != nil {
		s.logger.Error("级联删除课程失败", zap.String("semester_id", id), zap.Error(err))
		return err
	}

	records, rv := s.repo.Attendance.Snapshot(ctx)
	keptRecords := records[:0]
	for _, r := range records {
		if r.SemesterID != id {
			keptRecords = append(keptRecords, r)
		}
	}
	if err := s.repo.Attendance.Replace(ctx, keptRecords, rv); err != nil {
		s.logger.Error("级联删除出勤记录失败", zap.String("semester_id", id), zap.Error(err))
		return err
	}

	if s.sess.undo != nil && s.sess.undo.SemesterID == id {
		s.setUndoLocked(nil)
	}

	s.logger.Info("学期已删除",
		zap.String("semester_id", id),
		zap.Int("courses_removed", len(courses)-len(keptCourses)),
		zap.Int("records_removed", len(records)-len(keptRecords)),
	)

	if s.activeIDLocked(ctx) != id {
		return nil
	}
	// 其余学期均已归档时清空指针，由 EnsureActive 重新创建
	next := ""
	for _, sem := range remaining {
		if !sem.IsArchived {
			next = sem.ID
			break
		}
	}
	return s.setActiveLocked(ctx, next)
}

// ── 内部辅助方法 ──

func findSemester(semesters []model.Semester, id string) *model.Semester {
	for i := range semesters {
		if semesters[i].ID == id {
			return &semesters[i]
		}
	}
	return nil
}

func (s *semesterService) toSemesterResponse(ctx context.Context, sem *model.Semester, activeID string) *dto.SemesterResponse {
	courses, _ := s.repo.Course.Snapshot(ctx)
	count := 0
	for _, c := range courses {
		if c.SemesterID == sem.ID {
			count++
		}
	}
	return &dto.SemesterResponse{
		ID:          sem.ID,
		Name:        sem.Name,
		IsActive:    sem.ID == activeID,
		IsArchived:  sem.IsArchived,
		CourseCount: count,
		CreatedAt:   sem.CreatedAt.Format(time.RFC3339),
	}
}
