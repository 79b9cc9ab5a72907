package model

import "time"

// ScheduleSlot 课程在某个星期的一个上课时段
// 同一星期出现多个时段表示连堂（同日多节）
type ScheduleSlot struct {
	Day       int    `json:"day"` // 0=周一 … 6=周日
	StartTime string `json:"startTime,omitempty"`
	EndTime   string `json:"endTime,omitempty"`
}

// Course 课程，持久化于 courses 键
type Course struct {
	ID              string         `json:"id"`
	SemesterID      string         `json:"semesterId"`
	Name            string         `json:"name"`
	ShortName       string         `json:"shortName,omitempty"`
	CreditHours     float64        `json:"creditHours"`
	Weekdays        []int          `json:"weekdays"` // 0=周一 … 6=周日
	StartDate       string         `json:"startDate"`
	EndDate         string         `json:"endDate"`
	InitialAbsences int            `json:"initialAbsences"`
	AllowedAbsences int            `json:"allowedAbsences"`
	Color           string         `json:"color"`
	ColorHex        string         `json:"colorHex"`
	Order           int            `json:"order"`
	CreatedAt       time.Time      `json:"createdAt"`
	Schedule        []ScheduleSlot `json:"schedule,omitempty"`
	Instructor      string         `json:"instructor,omitempty"`
	Room            string         `json:"room,omitempty"`
	Building        string         `json:"building,omitempty"`
	CourseCode      string         `json:"courseCode,omitempty"`
	Section         string         `json:"section,omitempty"`
	TimeSlot        string         `json:"timeSlot,omitempty"`
}

// HasWeekday 课程是否在指定星期上课
func (c *Course) HasWeekday(day int) bool {
	for _, d := range c.Weekdays {
		if d == day {
			return true
		}
	}
	return false
}
