package dto

// ── 课程模块 DTO ──
//
// 课程字段的业务校验（顺序、原因）在 Service 层完成，
// 这里不使用 binding 标签，避免绑定阶段提前拒绝导致原因不一致。

// ScheduleSlotDTO 上课时段
type ScheduleSlotDTO struct {
	Day       int    `json:"day"` // 0=周一 … 6=周日
	StartTime string `json:"start_time,omitempty"`
	EndTime   string `json:"end_time,omitempty"`
}

// CreateCourseRequest 注册课程请求
type CreateCourseRequest struct {
	Name            string            `json:"name"`
	ShortName       string            `json:"short_name"`
	CreditHours     *float64          `json:"credit_hours"`
	Weekdays        []int             `json:"weekdays"`
	StartDate       string            `json:"start_date"` // "2024-01-01"
	EndDate         string            `json:"end_date"`
	InitialAbsences *int              `json:"initial_absences"`
	AllowedAbsences *int              `json:"allowed_absences"` // 省略时按排课推算
	Schedule        []ScheduleSlotDTO `json:"schedule"`
	Instructor      string            `json:"instructor"`
	Room            string            `json:"room"`
	Building        string            `json:"building"`
	CourseCode      string            `json:"course_code"`
	Section         string            `json:"section"`
	TimeSlot        string            `json:"time_slot"`
}

// UpdateCourseRequest 课程部分更新请求（nil 表示不修改）
type UpdateCourseRequest struct {
	Name            *string            `json:"name"`
	ShortName       *string            `json:"short_name"`
	CreditHours     *float64           `json:"credit_hours"`
	Weekdays        *[]int             `json:"weekdays"`
	StartDate       *string            `json:"start_date"`
	EndDate         *string            `json:"end_date"`
	InitialAbsences *int               `json:"initial_absences"`
	AllowedAbsences *int               `json:"allowed_absences"`
	Color           *string            `json:"color"`
	ColorHex        *string            `json:"color_hex"`
	Schedule        *[]ScheduleSlotDTO `json:"schedule"`
	Instructor      *string            `json:"instructor"`
	Room            *string            `json:"room"`
	Building        *string            `json:"building"`
	CourseCode      *string            `json:"course_code"`
	Section         *string            `json:"section"`
	TimeSlot        *string            `json:"time_slot"`
}

// ReorderCourseRequest 课程排序请求
type ReorderCourseRequest struct {
	Direction string `json:"direction" binding:"required,oneof=left right"`
}

// CourseResponse 课程信息响应
type CourseResponse struct {
	ID              string            `json:"id"`
	SemesterID      string            `json:"semester_id"`
	Name            string            `json:"name"`
	ShortName       string            `json:"short_name,omitempty"`
	CreditHours     float64           `json:"credit_hours"`
	Weekdays        []int             `json:"weekdays"`
	StartDate       string            `json:"start_date"`
	EndDate         string            `json:"end_date"`
	InitialAbsences int               `json:"initial_absences"`
	AllowedAbsences int               `json:"allowed_absences"`
	Color           string            `json:"color"`
	ColorHex        string            `json:"color_hex"`
	Order           int               `json:"order"`
	Schedule        []ScheduleSlotDTO `json:"schedule,omitempty"`
	Instructor      string            `json:"instructor,omitempty"`
	Room            string            `json:"room,omitempty"`
	Building        string            `json:"building,omitempty"`
	CourseCode      string            `json:"course_code,omitempty"`
	Section         string            `json:"section,omitempty"`
	TimeSlot        string            `json:"time_slot,omitempty"`
	CreatedAt       string            `json:"created_at"`
}

// SkippedCourse 导入时被跳过的课程
type SkippedCourse struct {
	Name   string `json:"name"`
	Reason string `json:"reason"`
}

// ImportCoursesResponse ICS 导入结果
type ImportCoursesResponse struct {
	ImportedCount int              `json:"imported_count"`
	Courses       []CourseResponse `json:"courses"`
	Skipped       []SkippedCourse  `json:"skipped,omitempty"`
}

// ImportICSRequest 通过 URL 导入 ICS 课表
type ImportICSRequest struct {
	URL string `json:"url" binding:"required,url"`
}
