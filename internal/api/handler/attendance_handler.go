package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/HuzaifaAbdulRehman/fast-timetable-attendance-sub001/internal/dto"
	"github.com/HuzaifaAbdulRehman/fast-timetable-attendance-sub001/internal/model"
	"github.com/HuzaifaAbdulRehman/fast-timetable-attendance-sub001/internal/service"
	"github.com/HuzaifaAbdulRehman/fast-timetable-attendance-sub001/pkg/response"
)

// AttendanceHandler 出勤模块 HTTP 处理器
type AttendanceHandler struct {
	attendanceSvc service.AttendanceService
}

// NewAttendanceHandler 创建 AttendanceHandler
func NewAttendanceHandler(attendanceSvc service.AttendanceService) *AttendanceHandler {
	return &AttendanceHandler{attendanceSvc: attendanceSvc}
}

// ListRecords 出勤记录列表
// GET /api/v1/attendance?course_id=xxx
func (h *AttendanceHandler) ListRecords(c *gin.Context) {
	records, err := h.attendanceSvc.List(c.Request.Context(), c.Query("course_id"))
	if err != nil {
		h.handleAttendanceError(c, err)
		return
	}

	response.OK(c, gin.H{"list": records})
}

// ToggleSession 设置单门课程某日出勤状态
// POST /api/v1/attendance/toggle
func (h *AttendanceHandler) ToggleSession(c *gin.Context) {
	var req dto.ToggleSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.InvalidParam(c, err)
		return
	}

	var status *model.AttendanceStatus
	if req.Status != nil {
		st := model.AttendanceStatus(*req.Status)
		status = &st
	}

	records, err := h.attendanceSvc.ToggleSession(c.Request.Context(), req.CourseID, req.Date, status)
	if err != nil {
		h.handleAttendanceError(c, err)
		return
	}

	response.OK(c, gin.H{"list": records})
}

// ToggleDay 整日切换
// POST /api/v1/attendance/days/:date/toggle
func (h *AttendanceHandler) ToggleDay(c *gin.Context) {
	result, err := h.attendanceSvc.ToggleDay(c.Request.Context(), c.Param("date"))
	if err != nil {
		h.handleAttendanceError(c, err)
		return
	}

	response.OK(c, result)
}

// Undo 撤销最近一次整日切换
// POST /api/v1/attendance/undo
func (h *AttendanceHandler) Undo(c *gin.Context) {
	result, err := h.attendanceSvc.Undo(c.Request.Context())
	if err != nil {
		h.handleAttendanceError(c, err)
		return
	}

	response.OK(c, result)
}

// MarkDaysAbsent 批量标记缺勤
// POST /api/v1/attendance/mark-absent
func (h *AttendanceHandler) MarkDaysAbsent(c *gin.Context) {
	var req dto.MarkDaysAbsentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.InvalidParam(c, err)
		return
	}

	result, err := h.attendanceSvc.MarkDaysAbsent(c.Request.Context(), req.Dates)
	if err != nil {
		h.handleAttendanceError(c, err)
		return
	}

	response.OK(c, result)
}

// ClearRecords 清空当前学期出勤记录
// DELETE /api/v1/attendance
func (h *AttendanceHandler) ClearRecords(c *gin.Context) {
	removed, err := h.attendanceSvc.Clear(c.Request.Context())
	if err != nil {
		h.handleAttendanceError(c, err)
		return
	}

	response.OK(c, gin.H{"removed": removed})
}

// DayStatus 某日聚合出勤状态
// GET /api/v1/attendance/days/:date
func (h *AttendanceHandler) DayStatus(c *gin.Context) {
	result, err := h.attendanceSvc.DayStatus(c.Request.Context(), c.Param("date"))
	if err != nil {
		h.handleAttendanceError(c, err)
		return
	}

	response.OK(c, result)
}

// handleAttendanceError 统一处理出勤模块业务错误
func (h *AttendanceHandler) handleAttendanceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrAttendanceDateInvalid):
		response.BadRequest(c, 16001, "日期格式必须为 YYYY-MM-DD")
	case errors.Is(err, service.ErrAttendanceStatusInvalid):
		response.BadRequest(c, 16002, "出勤状态不合法")
	case errors.Is(err, service.ErrAttendanceNoDates):
		response.BadRequest(c, 16003, "至少需要一个日期")
	case errors.Is(err, service.ErrAttendanceNoClass):
		response.BadRequest(c, 16004, "该课程在此日期没有课")
	case errors.Is(err, service.ErrCourseNotFound):
		response.NotFound(c, 15003, "课程不存在")
	default:
		response.InternalError(c)
	}
}
