package service

import (
	"errors"
	"math"
	"strings"

	"github.com/HuzaifaAbdulRehman/fast-timetable-attendance-sub001/internal/dto"
	"github.com/HuzaifaAbdulRehman/fast-timetable-attendance-sub001/internal/model"
)

// ── 课程校验错误 ──
//
// 每个原因对应一个哨兵错误；ValidationError 同时满足
// errors.Is(err, ErrCourseValidation) 与 errors.Is(err, 具体原因)。

var (
	ErrCourseValidation = errors.New("课程参数校验失败")

	ErrCourseInputInvalid     = errors.New("课程参数必须是结构化对象")
	ErrCourseNameRequired     = errors.New("课程名称不能为空")
	ErrCourseWeekdaysInvalid  = errors.New("上课星期必须是 0-6 之间的非空整数列表")
	ErrCourseStartDateInvalid = errors.New("开始日期格式必须为 YYYY-MM-DD")
	ErrCourseEndDateInvalid   = errors.New("结束日期格式必须为 YYYY-MM-DD")
	ErrCourseCreditsInvalid   = errors.New("学分必须是 0-10 之间的数字")
	ErrCourseDateRangeInvalid = errors.New("开始日期不能晚于结束日期")
	ErrCourseAbsencesInvalid  = errors.New("缺勤次数不能为负数")
	ErrCourseScheduleInvalid  = errors.New("时段星期必须在 0-6 之间")
)

// ValidationError 课程校验失败，Field 为出错字段
type ValidationError struct {
	Field  string
	Reason error
}

func (e *ValidationError) Error() string {
	return e.Reason.Error()
}

func (e *ValidationError) Unwrap() error {
	return e.Reason
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrCourseValidation
}

func invalid(field string, reason error) error {
	return &ValidationError{Field: field, Reason: reason}
}

// courseCheck 单项校验，按顺序执行，遇到第一个失败即返回
type courseCheck func(req *dto.CreateCourseRequest) error

var courseChecks = []courseCheck{
	checkCourseName,
	checkCourseWeekdays,
	checkCourseDates,
	checkCourseCredits,
	checkCourseAbsences,
	checkCourseSchedule,
}

// validateCourseInput 按固定顺序校验注册请求
func validateCourseInput(req *dto.CreateCourseRequest) error {
	if req == nil {
		return invalid("", ErrCourseInputInvalid)
	}
	for _, check := range courseChecks {
		if err := check(req); err != nil {
			return err
		}
	}
	return nil
}

func checkCourseName(req *dto.CreateCourseRequest) error {
	if strings.TrimSpace(req.Name) == "" {
		return invalid("name", ErrCourseNameRequired)
	}
	return nil
}

func checkCourseWeekdays(req *dto.CreateCourseRequest) error {
	if !validWeekdays(req.Weekdays) {
		return invalid("weekdays", ErrCourseWeekdaysInvalid)
	}
	return nil
}

func checkCourseDates(req *dto.CreateCourseRequest) error {
	if req.StartDate != "" && !model.IsISODate(req.StartDate) {
		return invalid("start_date", ErrCourseStartDateInvalid)
	}
	if req.EndDate != "" && !model.IsISODate(req.EndDate) {
		return invalid("end_date", ErrCourseEndDateInvalid)
	}
	return nil
}

func checkCourseCredits(req *dto.CreateCourseRequest) error {
	if req.CreditHours != nil && !validCredits(*req.CreditHours) {
		return invalid("credit_hours", ErrCourseCreditsInvalid)
	}
	return nil
}

func checkCourseAbsences(req *dto.CreateCourseRequest) error {
	if req.InitialAbsences != nil && *req.InitialAbsences < 0 {
		return invalid("initial_absences", ErrCourseAbsencesInvalid)
	}
	if req.AllowedAbsences != nil && *req.AllowedAbsences < 0 {
		return invalid("allowed_absences", ErrCourseAbsencesInvalid)
	}
	if req.Schedule != nil && !validSchedule(req.Schedule) {
		return invalid("schedule", ErrCourseScheduleInvalid)
	}
	return nil
}

func checkCourseSchedule(req *dto.CreateCourseRequest) error {
	if !validSchedule(req.Schedule) {
		return invalid("schedule", ErrCourseScheduleInvalid)
	}
	return nil
}

func validSchedule(slots []dto.ScheduleSlotDTO) bool {
	for _, slot := range slots {
		if slot.Day < 0 || slot.Day > 6 {
			return false
		}
	}
	return true
}

func validWeekdays(days []int) bool {
	if len(days) == 0 {
		return false
	}
	for _, d := range days {
		if d < 0 || d > 6 {
			return false
		}
	}
	return true
}

func validCredits(v float64) bool {
	return !math.IsNaN(v) && v >= 0 && v <= 10
}

// validateCourseUpdate 校验部分更新中提供的字段
func validateCourseUpdate(req *dto.UpdateCourseRequest) error {
	if req == nil {
		return invalid("", ErrCourseInputInvalid)
	}
	if req.Name != nil && strings.TrimSpace(*req.Name) == "" {
		return invalid("name", ErrCourseNameRequired)
	}
	if req.Weekdays != nil && !validWeekdays(*req.Weekdays) {
		return invalid("weekdays", ErrCourseWeekdaysInvalid)
	}
	if req.StartDate != nil && !model.IsISODate(*req.StartDate) {
		return invalid("start_date", ErrCourseStartDateInvalid)
	}
	if req.EndDate != nil && !model.IsISODate(*req.EndDate) {
		return invalid("end_date", ErrCourseEndDateInvalid)
	}
	if req.CreditHours != nil && !validCredits(*req.CreditHours) {
		return invalid("credit_hours", ErrCourseCreditsInvalid)
	}
	if (req.InitialAbsences != nil && *req.InitialAbsences < 0) ||
		(req.AllowedAbsences != nil && *req.AllowedAbsences < 0) {
		return invalid("allowed_absences", ErrCourseAbsencesInvalid)
	}
	return nil
}
