package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/HuzaifaAbdulRehman/fast-timetable-attendance-sub001/internal/service"
	"github.com/HuzaifaAbdulRehman/fast-timetable-attendance-sub001/pkg/response"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// ExportHandler 导出模块 HTTP 处理器
type ExportHandler struct {
	exportSvc service.ExportService
}

// NewExportHandler 创建 ExportHandler
func NewExportHandler(exportSvc service.ExportService) *ExportHandler {
	return &ExportHandler{exportSvc: exportSvc}
}

// ExportAttendance 导出当前学期出勤报表
// GET /api/v1/export/attendance
func (h *ExportHandler) ExportAttendance(c *gin.Context) {
	buf, filename, err := h.exportSvc.ExportAttendance(c.Request.Context())
	if err != nil {
		h.handleExportError(c, err)
		return
	}

	response.Attachment(c, filename, xlsxContentType, buf.Bytes())
}

func (h *ExportHandler) handleExportError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrExportNoCourses):
		response.NotFound(c, 18001, "当前学期暂无课程")
	default:
		response.InternalError(c)
	}
}
