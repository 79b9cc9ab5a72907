package dto

// ── 学期模块 DTO ──

// CreateSemesterRequest 创建学期请求（名称可省略，自动命名为 "Semester N"）
type CreateSemesterRequest struct {
	Name *string `json:"name" binding:"omitempty,max=100"`
}

// RenameSemesterRequest 重命名学期请求
type RenameSemesterRequest struct {
	Name string `json:"name" binding:"required,max=100"`
}

// SemesterResponse 学期信息响应
type SemesterResponse struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	IsActive    bool   `json:"is_active"`
	IsArchived  bool   `json:"is_archived"`
	CourseCount int    `json:"course_count"`
	CreatedAt   string `json:"created_at"`
}

// SemesterListResponse 学期列表响应
type SemesterListResponse struct {
	List             []SemesterResponse `json:"list"`
	ActiveSemesterID string             `json:"active_semester_id"`
}
