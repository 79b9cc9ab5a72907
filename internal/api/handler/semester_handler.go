package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/HuzaifaAbdulRehman/fast-timetable-attendance-sub001/internal/dto"
	"github.com/HuzaifaAbdulRehman/fast-timetable-attendance-sub001/internal/service"
	"github.com/HuzaifaAbdulRehman/fast-timetable-attendance-sub001/pkg/response"
)

// SemesterHandler 学期模块 HTTP 处理器
type SemesterHandler struct {
	semesterSvc service.SemesterService
}

// NewSemesterHandler 创建 SemesterHandler
func NewSemesterHandler(semesterSvc service.SemesterService) *SemesterHandler {
	return &SemesterHandler{semesterSvc: semesterSvc}
}

// ListSemesters 获取学期列表
// GET /api/v1/semesters
func (h *SemesterHandler) ListSemesters(c *gin.Context) {
	result, err := h.semesterSvc.List(c.Request.Context())
	if err != nil {
		h.handleSemesterError(c, err)
		return
	}

	response.OK(c, result)
}

// GetActiveSemester 获取当前学期（不存在时自动创建）
// GET /api/v1/semesters/active
func (h *SemesterHandler) GetActiveSemester(c *gin.Context) {
	semester, err := h.semesterSvc.GetActive(c.Request.Context())
	if err != nil {
		h.handleSemesterError(c, err)
		return
	}

	response.OK(c, semester)
}

// CreateSemester 创建学期并切换为当前学期
// POST /api/v1/semesters
func (h *SemesterHandler) CreateSemester(c *gin.Context) {
	var req dto.CreateSemesterRequest
	// 允许空请求体
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			response.InvalidParam(c, err)
			return
		}
	}

	semester, err := h.semesterSvc.Create(c.Request.Context(), &req)
	if err != nil {
		h.handleSemesterError(c, err)
		return
	}

	response.Created(c, semester)
}

// RenameSemester 重命名学期
// PUT /api/v1/semesters/:id
func (h *SemesterHandler) RenameSemester(c *gin.Context) {
	var req dto.RenameSemesterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.InvalidParam(c, err)
		return
	}

	semester, err := h.semesterSvc.Rename(c.Request.Context(), c.Param("id"), req.Name)
	if err != nil {
		h.handleSemesterError(c, err)
		return
	}

	response.OK(c, semester)
}

// ActivateSemester 切换当前学期
// PUT /api/v1/semesters/:id/activate
func (h *SemesterHandler) ActivateSemester(c *gin.Context) {
	if err := h.semesterSvc.SwitchActive(c.Request.Context(), c.Param("id")); err != nil {
		h.handleSemesterError(c, err)
		return
	}

	response.OK(c, nil)
}

// ArchiveSemester 归档学期
// PUT /api/v1/semesters/:id/archive
func (h *SemesterHandler) ArchiveSemester(c *gin.Context) {
	if err := h.semesterSvc.Archive(c.Request.Context(), c.Param("id")); err != nil {
		h.handleSemesterError(c, err)
		return
	}

	response.OK(c, nil)
}

// UnarchiveSemester 取消归档
// PUT /api/v1/semesters/:id/unarchive
func (h *SemesterHandler) UnarchiveSemester(c *gin.Context) {
	if err := h.semesterSvc.Unarchive(c.Request.Context(), c.Param("id")); err != nil {
		h.handleSemesterError(c, err)
		return
	}

	response.OK(c, nil)
}

// DeleteSemester 删除学期（级联删除课程与出勤记录）
// DELETE /api/v1/semesters/:id
func (h *SemesterHandler) DeleteSemester(c *gin.Context) {
	if err := h.semesterSvc.Delete(c.Request.Context(), c.Param("id")); err != nil {
		h.handleSemesterError(c, err)
		return
	}

	response.OK(c, nil)
}

// handleSemesterError 统一处理学期模块业务错误
func (h *SemesterHandler) handleSemesterError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrSemesterNotFound):
		response.NotFound(c, 14001, "学期不存在")
	case errors.Is(err, service.ErrSemesterArchived):
		response.BadRequest(c, 14002, "学期已归档，不能设为当前学期")
	case errors.Is(err, service.ErrSemesterLastOne):
		response.Conflict(c, 14003, "不能删除唯一的学期")
	case errors.Is(err, service.ErrSemesterNameRequired):
		response.BadRequest(c, 14004, "学期名称不能为空")
	default:
		response.InternalError(c)
	}
}
