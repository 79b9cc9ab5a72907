package service

import (
	"github.com/HuzaifaAbdulRehman/fast-timetable-attendance-sub001/internal/model"
)

// 风险阈值
const (
	riskWarningRemaining = 2    // 剩余可缺勤次数 <= 2 为 warning
	atRiskPercentage     = 80.0 // 出勤率低于 80% 显示风险提示
)

// DayStatus 某日所有有课课程的聚合出勤状态
//
// 每门课按节计数：非到课记录（缺勤、停课）数量不超过当天节数。
// 全部节次均为非到课时为 absent，没有任何非到课记录为 present，其余为 mixed。
func DayStatus(date string, courses []model.Course, records []model.AttendanceRecord) model.DayStatus {
	nonPresent := make(map[string]int)
	for _, r := range records {
		if r.Date == date && !r.Status.CountsAsPresent() {
			nonPresent[r.CourseID]++
		}
	}

	total, marked := 0, 0
	for i := range courses {
		n := SessionCountOnDate(&courses[i], date)
		if n == 0 {
			continue
		}
		total += n
		marked += min(nonPresent[courses[i].ID], n)
	}

	switch {
	case marked == 0:
		return model.DayPresent
	case marked >= total:
		return model.DayAbsent
	default:
		return model.DayMixed
	}
}

// ComputeStats 由课程与出勤记录推算统计数据
//
// records 可包含其他课程的记录，只统计属于该课程的部分。
// 停课节次同时从分子与分母中扣除；代签按到课计。
func ComputeStats(c *model.Course, records []model.AttendanceRecord) model.Stats {
	total, err := TotalSessions(c)
	if err != nil {
		total = 0
	}

	absent, cancelled := 0, 0
	for _, r := range records {
		if r.CourseID != c.ID {
			continue
		}
		switch r.Status {
		case model.StatusAbsent:
			absent++
		case model.StatusCancelled:
			cancelled++
		}
	}

	adjusted := max(total-cancelled, 0)
	absences := c.InitialAbsences + absent

	percentage := 100.0
	if adjusted > 0 {
		percentage = float64(adjusted-absences) / float64(adjusted) * 100
		percentage = min(max(percentage, 0), 100)
	}

	remaining := c.AllowedAbsences - absences
	return model.Stats{
		Percentage:        percentage,
		Absences:          absences,
		RemainingAbsences: remaining,
		AdjustedTotal:     adjusted,
		Status:            RiskStatusFor(remaining),
		IsAtRisk:          percentage < atRiskPercentage,
	}
}

// RiskStatusFor 按剩余可缺勤次数划分风险等级
func RiskStatusFor(remaining int) model.RiskStatus {
	switch {
	case remaining <= 0:
		return model.RiskDanger
	case remaining <= riskWarningRemaining:
		return model.RiskWarning
	default:
		return model.RiskSafe
	}
}
