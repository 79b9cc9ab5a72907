package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/HuzaifaAbdulRehman/fast-timetable-attendance-sub001/internal/dto"
	"github.com/HuzaifaAbdulRehman/fast-timetable-attendance-sub001/internal/service"
	"github.com/HuzaifaAbdulRehman/fast-timetable-attendance-sub001/pkg/response"
)

// CourseHandler 课程模块 HTTP 处理器
type CourseHandler struct {
	courseSvc service.CourseService
}

// NewCourseHandler 创建 CourseHandler
func NewCourseHandler(courseSvc service.CourseService) *CourseHandler {
	return &CourseHandler{courseSvc: courseSvc}
}

// ListCourses 当前学期课程列表
// GET /api/v1/courses
func (h *CourseHandler) ListCourses(c *gin.Context) {
	courses, err := h.courseSvc.List(c.Request.Context())
	if err != nil {
		h.handleCourseError(c, err)
		return
	}

	response.OK(c, gin.H{"list": courses})
}

// GetCourse 获取课程详情
// GET /api/v1/courses/:id
func (h *CourseHandler) GetCourse(c *gin.Context) {
	course, err := h.courseSvc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.handleCourseError(c, err)
		return
	}

	response.OK(c, course)
}

// CreateCourse 注册课程
// POST /api/v1/courses
func (h *CourseHandler) CreateCourse(c *gin.Context) {
	var req dto.CreateCourseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithDetails(c, http.StatusBadRequest, 15001, "课程参数必须是结构化对象", err.Error())
		return
	}

	course, err := h.courseSvc.Register(c.Request.Context(), &req)
	if err != nil {
		h.handleCourseError(c, err)
		return
	}

	response.Created(c, course)
}

// UpdateCourse 部分更新课程
// PUT /api/v1/courses/:id
func (h *CourseHandler) UpdateCourse(c *gin.Context) {
	var req dto.UpdateCourseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithDetails(c, http.StatusBadRequest, 15001, "课程参数必须是结构化对象", err.Error())
		return
	}

	course, err := h.courseSvc.Update(c.Request.Context(), c.Param("id"), &req)
	if err != nil {
		h.handleCourseError(c, err)
		return
	}

	response.OK(c, course)
}

// DeleteCourse 删除课程（级联删除出勤记录）
// DELETE /api/v1/courses/:id
func (h *CourseHandler) DeleteCourse(c *gin.Context) {
	if err := h.courseSvc.Delete(c.Request.Context(), c.Param("id")); err != nil {
		h.handleCourseError(c, err)
		return
	}

	response.OK(c, nil)
}

// ReorderCourse 左移/右移课程
// PUT /api/v1/courses/:id/reorder
func (h *CourseHandler) ReorderCourse(c *gin.Context) {
	var req dto.ReorderCourseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.InvalidParam(c, err)
		return
	}

	courses, err := h.courseSvc.Reorder(c.Request.Context(), c.Param("id"), req.Direction)
	if err != nil {
		h.handleCourseError(c, err)
		return
	}

	response.OK(c, gin.H{"list": courses})
}

// ImportCourses 导入 ICS 课表
// POST /api/v1/courses/import
//
// 支持两种方式：
//   - 文件上传: multipart/form-data, field="file"
//   - URL 导入: application/json, body={"url": "..."}
func (h *CourseHandler) ImportCourses(c *gin.Context) {
	file, _, err := c.Request.FormFile("file")
	if err == nil {
		defer file.Close()
		resp, err := h.courseSvc.ImportICS(c.Request.Context(), file)
		if err != nil {
			h.handleCourseError(c, err)
			return
		}
		response.Created(c, resp)
		return
	}

	var req dto.ImportICSRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		req.URL = c.PostForm("url")
		if req.URL == "" {
			response.BadRequest(c, 15005, "请上传 ICS 文件或提供 ICS URL")
			return
		}
	}

	body, err := service.FetchICSContent(req.URL)
	if err != nil {
		response.ErrorWithDetails(c, http.StatusBadRequest, 15006, "ICS URL 获取失败", err.Error())
		return
	}
	defer body.Close()

	resp, err := h.courseSvc.ImportICS(c.Request.Context(), body)
	if err != nil {
		h.handleCourseError(c, err)
		return
	}
	response.Created(c, resp)
}

// handleCourseError 统一处理课程模块业务错误
func (h *CourseHandler) handleCourseError(c *gin.Context, err error) {
	var vErr *service.ValidationError
	switch {
	case errors.As(err, &vErr):
		response.ErrorWithDetails(c, http.StatusBadRequest, 15002, vErr.Error(), vErr.Field)
	case errors.Is(err, service.ErrCourseNotFound):
		response.NotFound(c, 15003, "课程不存在")
	case errors.Is(err, service.ErrCourseDirectionInvalid):
		response.BadRequest(c, 15004, "排序方向必须为 left 或 right")
	case errors.Is(err, service.ErrSemesterNotFound):
		response.NotFound(c, 14001, "学期不存在")
	case errors.Is(err, service.ErrICSParseFailed):
		response.ErrorWithDetails(c, http.StatusBadRequest, 15007, "ICS 格式解析失败", err.Error())
	default:
		response.InternalError(c)
	}
}
