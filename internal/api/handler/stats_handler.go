package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/HuzaifaAbdulRehman/fast-timetable-attendance-sub001/internal/service"
	"github.com/HuzaifaAbdulRehman/fast-timetable-attendance-sub001/pkg/response"
)

// StatsHandler 统计模块 HTTP 处理器
type StatsHandler struct {
	statsSvc service.StatsService
}

// NewStatsHandler 创建 StatsHandler
func NewStatsHandler(statsSvc service.StatsService) *StatsHandler {
	return &StatsHandler{statsSvc: statsSvc}
}

// Dashboard 当前学期统计总览
// GET /api/v1/stats
func (h *StatsHandler) Dashboard(c *gin.Context) {
	result, err := h.statsSvc.Dashboard(c.Request.Context())
	if err != nil {
		response.InternalError(c)
		return
	}

	response.OK(c, result)
}

// CourseStats 单门课程统计
// GET /api/v1/stats/:course_id
func (h *StatsHandler) CourseStats(c *gin.Context) {
	result, err := h.statsSvc.CourseStats(c.Request.Context(), c.Param("course_id"))
	if err != nil {
		if errors.Is(err, service.ErrCourseNotFound) {
			response.NotFound(c, 15003, "课程不存在")
			return
		}
		response.InternalError(c)
		return
	}

	response.OK(c, result)
}
