package service

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"
	"time"

	ics "github.com/arran4/golang-ical"

	"github.com/HuzaifaAbdulRehman/fast-timetable-attendance-sub001/internal/dto"
	"github.com/HuzaifaAbdulRehman/fast-timetable-attendance-sub001/internal/model"
)

// ── ICS 解析器 ──────────────────────────────────────────────
//
// 将 iCalendar (RFC 5545) 课表转换为课程注册请求：
//   - 以 SUMMARY 作为课程名，同名事件合并为一门课程
//   - DTSTART/DTEND 确定星期与时段；同一星期多个时段即连堂
//   - 日期范围取首次上课到最后一次上课（RRULE COUNT/UNTIL 推算）
//   - 无 COUNT/UNTIL 的每周重复按 icsDefaultWeeks 周计算
// ─────────────────────────────────────────────────────────────

const (
	icsMaxFileSize  = 5 * 1024 * 1024 // 5MB
	icsFetchTimeout = 30 * time.Second
	icsDefaultWeeks = 16
)

// ErrICSParseFailed ICS 内容无法解析
var ErrICSParseFailed = errors.New("ICS 格式解析失败")

// parsedCourseEvent 单个 VEVENT 的解析结果
type parsedCourseEvent struct {
	Name      string
	Location  string
	Weekday   int // 0=周一 … 6=周日
	StartTime string
	EndTime   string
	First     time.Time
	Last      time.Time
}

// FetchICSContent 从 URL 获取 ICS 内容
func FetchICSContent(rawURL string) (io.ReadCloser, error) {
	// webcal:// → https://
	u := rawURL
	if strings.HasPrefix(u, "webcal://") {
		u = "https://" + strings.TrimPrefix(u, "webcal://")
	}

	client := &http.Client{Timeout: icsFetchTimeout}
	resp, err := client.Get(u)
	if err != nil {
		return nil, fmt.Errorf("获取 ICS 失败: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("获取 ICS 失败: HTTP %d", resp.StatusCode)
	}
	return struct {
		io.Reader
		io.Closer
	}{
		Reader: io.LimitReader(resp.Body, icsMaxFileSize),
		Closer: resp.Body,
	}, nil
}

// ParseICS 解析 ICS 内容，按课程名合并为注册请求（按首次上课时间排序）
func ParseICS(reader io.Reader, loc *time.Location) ([]dto.CreateCourseRequest, error) {
	cal, err := ics.ParseCalendar(reader)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrICSParseFailed, err)
	}
	if loc == nil {
		loc = time.UTC
	}

	var events []parsedCourseEvent
	for _, comp := range cal.Events() {
		evt, ok := parseVEvent(comp, loc)
		if !ok {
			continue
		}
		events = append(events, evt)
	}
	return groupEvents(events), nil
}

// parseVEvent 解析单个 VEVENT；缺少 SUMMARY 或 DTSTART 的事件被忽略
func parseVEvent(evt *ics.VEvent, loc *time.Location) (parsedCourseEvent, bool) {
	summary := evt.GetProperty(ics.ComponentPropertySummary)
	if summary == nil || strings.TrimSpace(summary.Value) == "" {
		return parsedCourseEvent{}, false
	}

	dtStart, err := parseICSDateTime(evt, ics.ComponentPropertyDtStart, loc)
	if err != nil {
		return parsedCourseEvent{}, false
	}
	dtEnd, err := parseICSDateTime(evt, ics.ComponentPropertyDtEnd, loc)
	if err != nil {
		// 无 DTEND 时按一节课 1.5 小时处理
		dtEnd = dtStart.Add(90 * time.Minute)
	}

	parsed := parsedCourseEvent{
		Name:      strings.TrimSpace(summary.Value),
		Weekday:   model.WeekdayIndex(dtStart),
		StartTime: dtStart.Format("15:04"),
		EndTime:   dtEnd.Format("15:04"),
		First:     dtStart,
		Last:      lastOccurrence(evt, dtStart, loc),
	}
	if prop := evt.GetProperty(ics.ComponentPropertyLocation); prop != nil {
		parsed.Location = strings.TrimSpace(prop.Value)
	}
	return parsed, true
}

// lastOccurrence 根据 RRULE / EXDATE 推算最后一次上课时间
func lastOccurrence(evt *ics.VEvent, dtStart time.Time, loc *time.Location) time.Time {
	rruleProp := evt.GetProperty(ics.ComponentPropertyRrule)
	if rruleProp == nil {
		return dtStart
	}
	rule := parseRRule(rruleProp.Value)
	if rule.freq != "WEEKLY" {
		return dtStart
	}

	interval := rule.interval
	if interval < 1 {
		interval = 1
	}
	limit := dtStart.AddDate(0, 0, icsDefaultWeeks*7-1)
	if !rule.until.IsZero() {
		limit = rule.until.In(loc)
	}
	exDates := parseExDates(evt, loc)

	last := dtStart
	count := 0
	for current := dtStart; !current.After(limit); current = current.AddDate(0, 0, 7*interval) {
		if rule.count > 0 && count >= rule.count {
			break
		}
		count++
		if !exDates[current.Format("20060102")] {
			last = current
		}
	}
	return last
}

// rruleParams RRULE 解析结果
type rruleParams struct {
	freq     string
	interval int
	count    int
	until    time.Time
}

// parseRRule 解析 RRULE 字符串（如 FREQ=WEEKLY;COUNT=16;INTERVAL=1）
func parseRRule(value string) rruleParams {
	r := rruleParams{interval: 1}
	for _, part := range strings.Split(value, ";") {
		kv := strings.SplitN(part, "=", 2)
		if len(kv) != 2 {
			continue
		}
		switch strings.ToUpper(kv[0]) {
		case "FREQ":
			r.freq = strings.ToUpper(kv[1])
		case "INTERVAL":
			fmt.Sscanf(kv[1], "%d", &r.interval)
		case "COUNT":
			fmt.Sscanf(kv[1], "%d", &r.count)
		case "UNTIL":
			t, err := time.Parse("20060102T150405Z", kv[1])
			if err != nil {
				t, _ = time.Parse("20060102", kv[1])
				if !t.IsZero() {
					t = t.Add(24*time.Hour - time.Second)
				}
			}
			r.until = t
		}
	}
	return r
}

// parseExDates 解析事件中所有 EXDATE
func parseExDates(evt *ics.VEvent, loc *time.Location) map[string]bool {
	exDates := make(map[string]bool)
	for _, prop := range evt.Properties {
		if prop.IANAToken != string(ics.ComponentPropertyExdate) {
			continue
		}
		for _, v := range strings.Split(prop.Value, ",") {
			t, err := time.Parse("20060102T150405Z", v)
			if err != nil {
				t, err = time.ParseInLocation("20060102T150405", v, loc)
				if err != nil {
					t, err = time.ParseInLocation("20060102", v, loc)
				}
			}
			if err == nil {
				exDates[t.In(loc).Format("20060102")] = true
			}
		}
	}
	return exDates
}

// groupEvents 按课程名合并事件
func groupEvents(events []parsedCourseEvent) []dto.CreateCourseRequest {
	type group struct {
		name     string
		location string
		first    time.Time
		last     time.Time
		weekdays map[int]bool
		slots    []dto.ScheduleSlotDTO
	}
	groups := make(map[string]*group)
	var order []string

	for _, e := range events {
		g, ok := groups[e.Name]
		if !ok {
			g = &group{name: e.Name, first: e.First, last: e.Last, weekdays: make(map[int]bool)}
			groups[e.Name] = g
			order = append(order, e.Name)
		}
		if g.location == "" {
			g.location = e.Location
		}
		if e.First.Before(g.first) {
			g.first = e.First
		}
		if e.Last.After(g.last) {
			g.last = e.Last
		}
		g.weekdays[e.Weekday] = true

		slot := dto.ScheduleSlotDTO{Day: e.Weekday, StartTime: e.StartTime, EndTime: e.EndTime}
		dup := false
		for _, s := range g.slots {
			if s == slot {
				dup = true
				break
			}
		}
		if !dup {
			g.slots = append(g.slots, slot)
		}
	}

	sort.SliceStable(order, func(i, j int) bool {
		return groups[order[i]].first.Before(groups[order[j]].first)
	})

	result := make([]dto.CreateCourseRequest, 0, len(order))
	for _, name := range order {
		g := groups[name]

		weekdays := make([]int, 0, len(g.weekdays))
		for d := range g.weekdays {
			weekdays = append(weekdays, d)
		}
		sort.Ints(weekdays)
		sort.Slice(g.slots, func(i, j int) bool {
			if g.slots[i].Day != g.slots[j].Day {
				return g.slots[i].Day < g.slots[j].Day
			}
			return g.slots[i].StartTime < g.slots[j].StartTime
		})

		req := dto.CreateCourseRequest{
			Name:      g.name,
			Weekdays:  weekdays,
			StartDate: model.FormatDate(g.first),
			EndDate:   model.FormatDate(g.last),
			Schedule:  g.slots,
			Room:      g.location,
		}
		if len(g.slots) > 0 {
			req.TimeSlot = g.slots[0].StartTime + "-" + g.slots[0].EndTime
		}
		result = append(result, req)
	}
	return result
}

// parseICSDateTime 从 VEVENT 中解析日期时间属性
func parseICSDateTime(evt *ics.VEvent, propName ics.ComponentProperty, loc *time.Location) (time.Time, error) {
	prop := evt.GetProperty(propName)
	if prop == nil {
		return time.Time{}, fmt.Errorf("missing property %s", propName)
	}
	val := prop.Value

	formats := []string{
		"20060102T150405Z",
		"20060102T150405",
		"20060102",
	}

	tzid := ""
	for k, v := range prop.ICalParameters {
		if strings.ToUpper(k) == "TZID" && len(v) > 0 {
			tzid = v[0]
		}
	}

	for _, layout := range formats {
		t, err := time.Parse(layout, val)
		if err != nil {
			continue
		}
		if strings.HasSuffix(layout, "Z") {
			return t.In(loc), nil
		}
		if tzid != "" {
			if tzLoc, err := time.LoadLocation(tzid); err == nil {
				return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), 0, tzLoc).In(loc), nil
			}
		}
		return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), 0, loc), nil
	}

	return time.Time{}, fmt.Errorf("无法解析日期: %s", val)
}
