package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/HuzaifaAbdulRehman/fast-timetable-attendance-sub001/internal/dto"
	"github.com/HuzaifaAbdulRehman/fast-timetable-attendance-sub001/internal/service"
	"github.com/HuzaifaAbdulRehman/fast-timetable-attendance-sub001/pkg/response"
)

// NotificationHandler 提醒设置 HTTP 处理器
type NotificationHandler struct {
	notificationSvc service.NotificationService
}

// NewNotificationHandler 创建 NotificationHandler
func NewNotificationHandler(notificationSvc service.NotificationService) *NotificationHandler {
	return &NotificationHandler{notificationSvc: notificationSvc}
}

// GetSettings 获取提醒设置
// GET /api/v1/notification-settings
func (h *NotificationHandler) GetSettings(c *gin.Context) {
	response.OK(c, h.notificationSvc.Get(c.Request.Context()))
}

// UpdateSettings 更新提醒设置
// PUT /api/v1/notification-settings
func (h *NotificationHandler) UpdateSettings(c *gin.Context) {
	var req dto.UpdateNotificationSettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.InvalidParam(c, err)
		return
	}

	result, err := h.notificationSvc.Update(c.Request.Context(), &req)
	if err != nil {
		if errors.Is(err, service.ErrNotificationTimeInvalid) {
			response.BadRequest(c, 17001, "提醒时间格式必须为 HH:MM")
			return
		}
		response.InternalError(c)
		return
	}

	response.OK(c, result)
}
