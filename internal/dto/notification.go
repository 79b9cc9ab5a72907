package dto

// ── 提醒设置 DTO ──

// UpdateNotificationSettingsRequest 更新提醒设置请求
type UpdateNotificationSettingsRequest struct {
	Enabled *bool   `json:"enabled"`
	Time    *string `json:"time" binding:"omitempty,hhmm"` // "20:00"
}

// NotificationSettingsResponse 提醒设置响应
type NotificationSettingsResponse struct {
	Enabled     bool    `json:"enabled"`
	Time        string  `json:"time"`
	LastChecked *string `json:"last_checked"`
}
