package dto

// ── 统计模块 DTO ──

// CourseStatsResponse 单门课程出勤统计
type CourseStatsResponse struct {
	CourseID          string  `json:"course_id"`
	Name              string  `json:"name"`
	Color             string  `json:"color"`
	ColorHex          string  `json:"color_hex"`
	TotalSessions     int     `json:"total_sessions"`
	AdjustedTotal     int     `json:"adjusted_total"`
	Absences          int     `json:"absences"`
	AllowedAbsences   int     `json:"allowed_absences"`
	RemainingAbsences int     `json:"remaining_absences"`
	Percentage        float64 `json:"percentage"` // 保留 1 位小数
	Status            string  `json:"status"`     // safe | warning | danger
	IsAtRisk          bool    `json:"is_at_risk"`
}

// DashboardResponse 当前学期总览
type DashboardResponse struct {
	SemesterID  string                `json:"semester_id"`
	Today       string                `json:"today"`
	TodayStatus string                `json:"today_status"`
	AtRiskCount int                   `json:"at_risk_count"`
	Courses     []CourseStatsResponse `json:"courses"`
}
