package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/HuzaifaAbdulRehman/fast-timetable-attendance-sub001/internal/model"
)

// ── 导出模块业务错误 ──

var (
	ErrExportNoCourses    = errors.New("当前学期暂无课程")
	ErrExportGenerateFail = errors.New("生成 Excel 文件失败")
)

// ExportService 导出业务接口
//
// 以 bytes.Buffer 返回，由 Handler 层设置 HTTP 响应头后写入 Response。
type ExportService interface {
	// ExportAttendance 导出当前学期出勤报表：统计 Sheet + 记录明细 Sheet
	ExportAttendance(ctx context.Context) (*bytes.Buffer, string, error)
}

type exportService struct {
	*core
}

const (
	exportStatsSheet   = "Summary"
	exportRecordsSheet = "Records"
)

func (s *exportService) ExportAttendance(ctx context.Context) (*bytes.Buffer, string, error) {
	s.sess.mu.Lock()
	semesterID := s.activeIDLocked(ctx)
	semesters, _ := s.repo.Semester.Snapshot(ctx)
	all, _ := s.repo.Course.Snapshot(ctx)
	records, _ := s.repo.Attendance.Snapshot(ctx)
	s.sess.mu.Unlock()

	courses := coursesOf(all, semesterID)
	if len(courses) == 0 {
		return nil, "", ErrExportNoCourses
	}
	records = recordsOf(records, semesterID)

	semesterName := semesterID
	if sem := findSemester(semesters, semesterID); sem != nil {
		semesterName = sem.Name
	}

	f := excelize.NewFile()
	defer f.Close()

	idx, _ := f.NewSheet(exportStatsSheet)
	f.SetActiveSheet(idx)
	f.DeleteSheet("Sheet1")
	f.NewSheet(exportRecordsSheet)

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})

	// ── 统计 Sheet ──
	statsHeader := []string{"Course", "Code", "Sessions", "Adjusted", "Absences", "Allowed", "Remaining", "Percentage", "Status"}
	f.SetCellValue(exportStatsSheet, "A1", fmt.Sprintf("%s - Attendance", semesterName))
	f.MergeCell(exportStatsSheet, "A1", cell(colName(len(statsHeader)-1), 1))
	f.SetCellStyle(exportStatsSheet, "A1", "A1", headerStyle)
	for i, h := range statsHeader {
		f.SetCellValue(exportStatsSheet, cell(colName(i), 2), h)
	}
	f.SetCellStyle(exportStatsSheet, "A2", cell(colName(len(statsHeader)-1), 2), headerStyle)
	f.SetColWidth(exportStatsSheet, "A", "A", 28)
	f.SetColWidth(exportStatsSheet, "B", colName(len(statsHeader)-1), 12)

	names := make(map[string]string, len(courses))
	for i := range courses {
		c := &courses[i]
		names[c.ID] = c.Name
		st := toCourseStatsResponse(c, records)

		row := 3 + i
		values := []interface{}{
			c.Name, c.CourseCode, st.TotalSessions, st.AdjustedTotal, st.Absences,
			st.AllowedAbsences, st.RemainingAbsences, st.Percentage, st.Status,
		}
		for col, v := range values {
			f.SetCellValue(exportStatsSheet, cell(colName(col), row), v)
		}
	}

	// ── 记录明细 Sheet ──
	sort.SliceStable(records, func(i, j int) bool {
		if records[i].Date != records[j].Date {
			return records[i].Date < records[j].Date
		}
		return names[records[i].CourseID] < names[records[j].CourseID]
	})
	recordHeader := []string{"Date", "Course", "Status", "Override"}
	for i, h := range recordHeader {
		f.SetCellValue(exportRecordsSheet, cell(colName(i), 1), h)
	}
	f.SetCellStyle(exportRecordsSheet, "A1", cell(colName(len(recordHeader)-1), 1), headerStyle)
	f.SetColWidth(exportRecordsSheet, "A", "A", 12)
	f.SetColWidth(exportRecordsSheet, "B", "B", 28)

	row := 2
	for _, r := range records {
		name, ok := names[r.CourseID]
		if !ok {
			continue
		}
		f.SetCellValue(exportRecordsSheet, cell("A", row), r.Date)
		f.SetCellValue(exportRecordsSheet, cell("B", row), name)
		f.SetCellValue(exportRecordsSheet, cell("C", row), string(r.Status))
		f.SetCellValue(exportRecordsSheet, cell("D", row), overrideLabel(r))
		row++
	}

	buf := new(bytes.Buffer)
	if err := f.Write(buf); err != nil {
		s.logger.Error("写入 Excel 失败", zap.Error(err))
		return nil, "", ErrExportGenerateFail
	}

	filename := fmt.Sprintf("attendance_%s.xlsx", semesterName)
	return buf, filename, nil
}

// ── 辅助函数 ──

func overrideLabel(r model.AttendanceRecord) string {
	if r.IsOverride {
		return "yes"
	}
	return ""
}

func colName(idx int) string {
	name, _ := excelize.ColumnNumberToName(idx + 1)
	return name
}

func cell(col string, row int) string {
	return fmt.Sprintf("%s%d", col, row)
}
