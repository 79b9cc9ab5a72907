package model

import "time"

// NotificationSettings 每日出勤提醒设置，持久化于 notification_settings 键
type NotificationSettings struct {
	Enabled     bool       `json:"enabled"`
	Time        string     `json:"time"` // HH:MM
	LastChecked *time.Time `json:"lastChecked"`
}

// DefaultNotificationSettings 未配置时的默认值
func DefaultNotificationSettings() NotificationSettings {
	return NotificationSettings{Enabled: false, Time: "20:00"}
}
