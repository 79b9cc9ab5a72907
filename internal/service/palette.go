package service

import "github.com/HuzaifaAbdulRehman/fast-timetable-attendance-sub001/internal/model"

// PaletteColor 课程卡片配色
type PaletteColor struct {
	Name string
	Hex  string
}

// coursePalette 固定色板，按顺序优先分配
var coursePalette = []PaletteColor{
	{Name: "blue", Hex: "#3B82F6"},
	{Name: "emerald", Hex: "#10B981"},
	{Name: "violet", Hex: "#8B5CF6"},
	{Name: "amber", Hex: "#F59E0B"},
	{Name: "rose", Hex: "#F43F5E"},
	{Name: "cyan", Hex: "#06B6D4"},
	{Name: "orange", Hex: "#F97316"},
	{Name: "indigo", Hex: "#6366F1"},
	{Name: "lime", Hex: "#84CC16"},
	{Name: "pink", Hex: "#EC4899"},
}

// pickColor 返回同学期内第一个未使用的颜色；色板用尽时按课程数取模循环，可能与已用颜色重复
func pickColor(existing []model.Course) PaletteColor {
	used := make(map[string]bool, len(existing))
	for _, c := range existing {
		used[c.Color] = true
	}
	for _, p := range coursePalette {
		if !used[p.Name] {
			return p
		}
	}
	return coursePalette[len(existing)%len(coursePalette)]
}

// paletteHex 查询色板中颜色对应的十六进制值
func paletteHex(name string) (string, bool) {
	for _, p := range coursePalette {
		if p.Name == name {
			return p.Hex, true
		}
	}
	return "", false
}
