package model

import (
	"testing"
	"time"
)

func TestIsISODate(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"2024-01-31", true},
		{"2024-02-29", true},
		{"2023-02-29", false},
		{"2024-1-31", false},
		{"2024-01-31T00:00:00Z", false},
		{"", false},
		{"abcd-ef-gh", false},
	}
	for _, tt := range tests {
		if got := IsISODate(tt.in); got != tt.want {
			t.Errorf("IsISODate(%q) 期望=%v，实际=%v", tt.in, tt.want, got)
		}
	}
}

func TestWeekdayIndex(t *testing.T) {
	// 2024-01-01 为周一
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 7; i++ {
		d := start.AddDate(0, 0, i)
		if got := WeekdayIndex(d); got != i {
			t.Errorf("%s 期望=%d，实际=%d", FormatDate(d), i, got)
		}
	}
}

func TestAttendanceStatus(t *testing.T) {
	if !StatusProxy.CountsAsPresent() {
		t.Error("代签应视为到课")
	}
	if StatusCancelled.CountsAsPresent() || StatusAbsent.CountsAsPresent() {
		t.Error("停课与缺勤不应视为到课")
	}
	if AttendanceStatus("late").Valid() {
		t.Error("late 不是合法状态")
	}
}
