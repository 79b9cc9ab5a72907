package model

import (
	"regexp"
	"time"
)

// DateLayout ISO 日期格式
const DateLayout = "2006-01-02"

var isoDatePattern = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

// IsISODate 判断字符串是否为 YYYY-MM-DD 且为真实存在的日期
func IsISODate(s string) bool {
	if !isoDatePattern.MatchString(s) {
		return false
	}
	_, err := time.Parse(DateLayout, s)
	return err == nil
}

// ParseDate 解析 YYYY-MM-DD（UTC 零点）
func ParseDate(s string) (time.Time, error) {
	return time.Parse(DateLayout, s)
}

// FormatDate 格式化为 YYYY-MM-DD
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

// WeekdayIndex 将 time.Weekday 转为 0=周一 … 6=周日
func WeekdayIndex(t time.Time) int {
	return (int(t.Weekday()) + 6) % 7
}
