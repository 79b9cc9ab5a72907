package model

import "time"

// DefaultSemesterName 首次使用时自动创建的学期名称
const DefaultSemesterName = "Current Semester"

// Semester 学期，持久化于 semesters 键
// IsActive 仅用于展示，当前学期以会话中的 activeSemesterId 为准
type Semester struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	CreatedAt  time.Time `json:"createdAt"`
	IsActive   bool      `json:"isActive"`
	IsArchived bool      `json:"isArchived"`
}
