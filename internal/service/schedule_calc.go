package service

import (
	"fmt"

	"github.com/HuzaifaAbdulRehman/fast-timetable-attendance-sub001/internal/model"
)

// ── 排课计算 ──────────────────────────────────────────────
//
// 纯函数：由课程的起止日期、上课星期与时段推算上课次数。
// 课程注册（推算默认缺勤额度）与出勤统计（实时分母）使用同一套计算。
// ─────────────────────────────────────────────────────────────

// sessionsPerWeekday 每个星期的上课节数
// 星期在 weekdays 中时至少 1 节；schedule 在同一星期声明多个时段即为连堂
func sessionsPerWeekday(c *model.Course) ([7]int, error) {
	var perDay [7]int
	for _, d := range c.Weekdays {
		if d < 0 || d > 6 {
			return perDay, fmt.Errorf("非法的上课星期: %d", d)
		}
		perDay[d] = 1
	}

	var slots [7]int
	for _, slot := range c.Schedule {
		if slot.Day < 0 || slot.Day > 6 {
			return perDay, fmt.Errorf("非法的时段星期: %d", slot.Day)
		}
		slots[slot.Day]++
	}
	for d := range perDay {
		if perDay[d] > 0 && slots[d] > 1 {
			perDay[d] = slots[d]
		}
	}
	return perDay, nil
}

// TotalSessions 课程在起止日期（含）内的总上课节数
func TotalSessions(c *model.Course) (int, error) {
	start, err := model.ParseDate(c.StartDate)
	if err != nil {
		return 0, fmt.Errorf("开始日期无效 %q: %w", c.StartDate, err)
	}
	end, err := model.ParseDate(c.EndDate)
	if err != nil {
		return 0, fmt.Errorf("结束日期无效 %q: %w", c.EndDate, err)
	}
	if start.After(end) {
		return 0, fmt.Errorf("开始日期 %s 晚于结束日期 %s", c.StartDate, c.EndDate)
	}

	perDay, err := sessionsPerWeekday(c)
	if err != nil {
		return 0, err
	}

	total := 0
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		total += perDay[model.WeekdayIndex(d)]
	}
	return total, nil
}

// SessionCountOnDate 指定日期的上课节数；不在日期范围或当天无课时为 0
func SessionCountOnDate(c *model.Course, date string) int {
	day, err := model.ParseDate(date)
	if err != nil {
		return 0
	}
	start, err := model.ParseDate(c.StartDate)
	if err != nil {
		return 0
	}
	end, err := model.ParseDate(c.EndDate)
	if err != nil {
		return 0
	}
	if day.Before(start) || day.After(end) {
		return 0
	}

	perDay, err := sessionsPerWeekday(c)
	if err != nil {
		return 0
	}
	return perDay[model.WeekdayIndex(day)]
}

// HasClassOnDate 指定日期是否有课
func HasClassOnDate(c *model.Course, date string) bool {
	return SessionCountOnDate(c, date) > 0
}
