package dto

// ── 出勤模块 DTO ──

// ToggleSessionRequest 单节课出勤切换请求
// Status 为空表示撤销记录（恢复为默认到课）
type ToggleSessionRequest struct {
	CourseID string  `json:"course_id" binding:"required"`
	Date     string  `json:"date"      binding:"required,isodate"`
	Status   *string `json:"status"    binding:"omitempty,oneof=present absent cancelled proxy"`
}

// MarkDaysAbsentRequest 批量标记缺勤请求
type MarkDaysAbsentRequest struct {
	Dates []string `json:"dates" binding:"required,min=1,dive,isodate"`
}

// AttendanceRecordResponse 出勤记录响应
type AttendanceRecordResponse struct {
	ID         string `json:"id"`
	CourseID   string `json:"course_id"`
	SemesterID string `json:"semester_id"`
	Date       string `json:"date"`
	Status     string `json:"status"`
	IsOverride bool   `json:"is_override"`
	CreatedAt  string `json:"created_at"`
}

// ToggleDayResponse 整日切换结果
type ToggleDayResponse struct {
	Date            string `json:"date"`
	Changed         bool   `json:"changed"`
	DayStatus       string `json:"day_status"` // 切换后的聚合状态
	AffectedCourses int    `json:"affected_courses"`
	Description     string `json:"description,omitempty"`
}

// UndoResponse 撤销结果
type UndoResponse struct {
	Undone bool   `json:"undone"`
	Date   string `json:"date,omitempty"`
}

// MarkDaysAbsentResponse 批量标记结果
type MarkDaysAbsentResponse struct {
	MarkedDays     int `json:"marked_days"`
	CreatedRecords int `json:"created_records"`
}

// DayCourseStatus 某日单门课程的出勤情况
type DayCourseStatus struct {
	CourseID string                     `json:"course_id"`
	Name     string                     `json:"name"`
	Sessions int                        `json:"sessions"`
	Records  []AttendanceRecordResponse `json:"records"`
}

// DayStatusResponse 某日聚合出勤状态
type DayStatusResponse struct {
	Date    string            `json:"date"`
	Status  string            `json:"status"`
	Courses []DayCourseStatus `json:"courses"`
}
