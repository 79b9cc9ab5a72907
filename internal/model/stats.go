package model

// RiskStatus 按剩余可缺勤次数划分的风险等级
type RiskStatus string

const (
	RiskSafe    RiskStatus = "safe"
	RiskWarning RiskStatus = "warning"
	RiskDanger  RiskStatus = "danger"
)

// Stats 课程出勤统计（供展示使用的派生数据）
type Stats struct {
	Percentage        float64    `json:"percentage"`
	Absences          int        `json:"absences"`
	RemainingAbsences int        `json:"remainingAbsences"`
	AdjustedTotal     int        `json:"adjustedTotal"`
	Status            RiskStatus `json:"status"`
	IsAtRisk          bool       `json:"isAtRisk"`
}
