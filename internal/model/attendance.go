package model

import "time"

// AttendanceStatus 出勤状态
type AttendanceStatus string

const (
	StatusPresent   AttendanceStatus = "present"
	StatusAbsent    AttendanceStatus = "absent"
	StatusCancelled AttendanceStatus = "cancelled"
	StatusProxy     AttendanceStatus = "proxy" // 代签，按出勤计
)

// Valid 是否为合法状态
func (s AttendanceStatus) Valid() bool {
	switch s {
	case StatusPresent, StatusAbsent, StatusCancelled, StatusProxy:
		return true
	}
	return false
}

// CountsAsPresent 该状态在日状态聚合中是否视为到课
func (s AttendanceStatus) CountsAsPresent() bool {
	return s == StatusPresent || s == StatusProxy
}

// AttendanceRecord 出勤记录，持久化于 attendance 键
// 记录表示对"默认到课"的偏离；排课日无记录即视为到课
type AttendanceRecord struct {
	ID         string           `json:"id"`
	CourseID   string           `json:"courseId"`
	SemesterID string           `json:"semesterId"`
	Date       string           `json:"date"` // YYYY-MM-DD
	Status     AttendanceStatus `json:"status"`
	IsOverride bool             `json:"isOverride"`
	CreatedAt  time.Time        `json:"createdAt"`
}

// DayStatus 某日所有课程的聚合出勤状态
type DayStatus string

const (
	DayPresent DayStatus = "present"
	DayAbsent  DayStatus = "absent"
	DayMixed   DayStatus = "mixed"
)
