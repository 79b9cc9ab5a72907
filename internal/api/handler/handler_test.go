package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/HuzaifaAbdulRehman/fast-timetable-attendance-sub001/internal/dto"
	"github.com/HuzaifaAbdulRehman/fast-timetable-attendance-sub001/internal/model"
	"github.com/HuzaifaAbdulRehman/fast-timetable-attendance-sub001/internal/service"
	"github.com/HuzaifaAbdulRehman/fast-timetable-attendance-sub001/pkg/response"
)

func init() {
	gin.SetMode(gin.TestMode)
	if err := RegisterValidations(); err != nil {
		panic(err)
	}
}

// ═══════════════════════════════════════════════════════════
// Mock Services
// ═══════════════════════════════════════════════════════════

// ── Mock SemesterService ──

type mockSemesterService struct {
	listResult   *dto.SemesterListResponse
	activeResult *dto.SemesterResponse
	createResult *dto.SemesterResponse
	createReq    *dto.CreateSemesterRequest
	renameResult *dto.SemesterResponse
	err          error
}

func (m *mockSemesterService) ActiveID(_ context.Context) string { return "" }
func (m *mockSemesterService) EnsureActive(_ context.Context) (string, error) {
	return "", m.err
}
func (m *mockSemesterService) GetActive(_ context.Context) (*dto.SemesterResponse, error) {
	return m.activeResult, m.err
}
func (m *mockSemesterService) List(_ context.Context) (*dto.SemesterListResponse, error) {
	return m.listResult, m.err
}
func (m *mockSemesterService) Create(_ context.Context, req *dto.CreateSemesterRequest) (*dto.SemesterResponse, error) {
	m.createReq = req
	return m.createResult, m.err
}
func (m *mockSemesterService) Rename(_ context.Context, _, _ string) (*dto.SemesterResponse, error) {
	return m.renameResult, m.err
}
func (m *mockSemesterService) SwitchActive(_ context.Context, _ string) error { return m.err }
func (m *mockSemesterService) Archive(_ context.Context, _ string) error { return m.err }
func (m *mockSemesterService) Unarchive(_ context.Context, _ string) error { return m.err }
func (m *mockSemesterService) Delete(_ context.Context, _ string) error { return m.err }

// ── Mock CourseService ──

type mockCourseService struct {
	course       *dto.CourseResponse
	courses      []dto.CourseResponse
	importResult *dto.ImportCoursesResponse
	importBody   string
	direction    string
	err          error
}

func (m *mockCourseService) Register(_ context.Context, _ *dto.CreateCourseRequest) (*dto.CourseResponse, error) {
	return m.course, m.err
}
func (m *mockCourseService) Get(_ context.Context, _ string) (*dto.CourseResponse, error) {
	return m.course, m.err
}
func (m *mockCourseService) List(_ context.Context) ([]dto.CourseResponse, error) {
	return m.courses, m.err
}
func (m *mockCourseService) Update(_ context.Context, _ string, _ *dto.UpdateCourseRequest) (*dto.CourseResponse, error) {
	return m.course, m.err
}
func (m *mockCourseService) Delete(_ context.Context, _ string) error { return m.err }
func (m *mockCourseService) Reorder(_ context.Context, _, direction string) ([]dto.CourseResponse, error) {
	m.direction = direction
	return m.courses, m.err
}
func (m *mockCourseService) ImportICS(_ context.Context, reader io.Reader) (*dto.ImportCoursesResponse, error) {
	b, _ := io.ReadAll(reader)
	m.importBody = string(b)
	return m.importResult, m.err
}

// ── Mock AttendanceService ──

type mockAttendanceService struct {
	records      []dto.AttendanceRecordResponse
	toggleStatus *model.AttendanceStatus
	toggleCalled bool
	toggleDay    *dto.ToggleDayResponse
	undo         *dto.UndoResponse
	markResult   *dto.MarkDaysAbsentResponse
	markDates    []string
	cleared      int
	dayStatus    *dto.DayStatusResponse
	listCourseID string
	err          error
}

func (m *mockAttendanceService) List(_ context.Context, courseID string) ([]dto.AttendanceRecordResponse, error) {
	m.listCourseID = courseID
	return m.records, m.err
}
func (m *mockAttendanceService) ToggleSession(_ context.Context, _, _ string, status *model.AttendanceStatus) ([]dto.AttendanceRecordResponse, error) {
	m.toggleCalled = true
	m.toggleStatus = status
	return m.records, m.err
}
func (m *mockAttendanceService) ToggleDay(_ context.Context, _ string) (*dto.ToggleDayResponse, error) {
	return m.toggleDay, m.err
}
func (m *mockAttendanceService) Undo(_ context.Context) (*dto.UndoResponse, error) {
	return m.undo, m.err
}
func (m *mockAttendanceService) MarkDaysAbsent(_ context.Context, dates []string) (*dto.MarkDaysAbsentResponse, error) {
	m.markDates = dates
	return m.markResult, m.err
}
func (m *mockAttendanceService) Clear(_ context.Context) (int, error) { return m.cleared, m.err }
func (m *mockAttendanceService) DayStatus(_ context.Context, _ string) (*dto.DayStatusResponse, error) {
	return m.dayStatus, m.err
}

// ── Mock StatsService ──

type mockStatsService struct {
	course    *dto.CourseStatsResponse
	dashboard *dto.DashboardResponse
	err       error
}

func (m *mockStatsService) CourseStats(_ context.Context, _ string) (*dto.CourseStatsResponse, error) {
	return m.course, m.err
}
func (m *mockStatsService) Dashboard(_ context.Context) (*dto.DashboardResponse, error) {
	return m.dashboard, m.err
}

// ── Mock NotificationService ──

type mockNotificationService struct {
	settings *dto.NotificationSettingsResponse
	updated  *dto.UpdateNotificationSettingsRequest
	err      error
}

func (m *mockNotificationService) Get(_ context.Context) *dto.NotificationSettingsResponse {
	return m.settings
}
func (m *mockNotificationService) Update(_ context.Context, req *dto.UpdateNotificationSettingsRequest) (*dto.NotificationSettingsResponse, error) {
	m.updated = req
	return m.settings, m.err
}
func (m *mockNotificationService) CheckReminder(_ context.Context, _ time.Time) bool { return false }

// ── Mock ExportService ──

type mockExportService struct {
	buf      *bytes.Buffer
	filename string
	err      error
}

func (m *mockExportService) ExportAttendance(_ context.Context) (*bytes.Buffer, string, error) {
	return m.buf, m.filename, m.err
}

// ═══════════════════════════════════════════════════════════
// Test Helpers
// ═══════════════════════════════════════════════════════════

func jsonBody(v interface{}) io.Reader {
	b, _ := json.Marshal(v)
	return bytes.NewReader(b)
}

func parseResponse(w *httptest.ResponseRecorder) response.Response {
	var resp response.Response
	json.Unmarshal(w.Body.Bytes(), &resp)
	return resp
}

// serve 注册单个路由并发起请求
func serve(method, pattern, target string, body io.Reader, h gin.HandlerFunc) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, target, body)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	r := gin.New()
	r.Handle(method, pattern, h)
	r.ServeHTTP(w, req)
	return w
}

func assertStatus(t *testing.T, w *httptest.ResponseRecorder, wantStatus, wantCode int) {
	t.Helper()
	if w.Code != wantStatus {
		t.Errorf("期望 HTTP %d，实际 %d (body=%s)", wantStatus, w.Code, w.Body.String())
	}
	resp := parseResponse(w)
	if resp.Code != wantCode {
		t.Errorf("期望业务码 %d，实际 %d", wantCode, resp.Code)
	}
}

// ═══════════════════════════════════════════════════════════
// SemesterHandler Tests
// ═══════════════════════════════════════════════════════════

func TestSemesterHandler_List_Success(t *testing.T) {
	mock := &mockSemesterService{listResult: &dto.SemesterListResponse{
		List:             []dto.SemesterResponse{{ID: "sem_1", Name: "Current Semester", IsActive: true}},
		ActiveSemesterID: "sem_1",
	}}
	h := NewSemesterHandler(mock)

	w := serve("GET", "/semesters", "/semesters", nil, h.ListSemesters)
	assertStatus(t, w, http.StatusOK, 0)
}

func TestSemesterHandler_Create_EmptyBody(t *testing.T) {
	mock := &mockSemesterService{createResult: &dto.SemesterResponse{ID: "sem_2", Name: "Semester 2"}}
	h := NewSemesterHandler(mock)

	w := serve("POST", "/semesters", "/semesters", nil, h.CreateSemester)
	assertStatus(t, w, http.StatusCreated, 0)
	if mock.createReq == nil || mock.createReq.Name != nil {
		t.Error("空请求体时应以无名称请求调用 Create")
	}
}

func TestSemesterHandler_Create_WithName(t *testing.T) {
	mock := &mockSemesterService{createResult: &dto.SemesterResponse{ID: "sem_2", Name: "Fall 2024"}}
	h := NewSemesterHandler(mock)

	w := serve("POST", "/semesters", "/semesters", jsonBody(map[string]string{"name": "Fall 2024"}), h.CreateSemester)
	assertStatus(t, w, http.StatusCreated, 0)
	if mock.createReq == nil || mock.createReq.Name == nil || *mock.createReq.Name != "Fall 2024" {
		t.Error("期望名称透传到 Create")
	}
}

func TestSemesterHandler_Rename_MissingName(t *testing.T) {
	h := NewSemesterHandler(&mockSemesterService{})

	w := serve("PUT", "/semesters/:id", "/semesters/sem_1", jsonBody(map[string]string{}), h.RenameSemester)
	assertStatus(t, w, http.StatusBadRequest, response.CodeInvalidParam)
}

func TestSemesterHandler_ErrorMapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   int
	}{
		{"NotFound", service.ErrSemesterNotFound, 404, 14001},
		{"Archived", service.ErrSemesterArchived, 400, 14002},
		{"LastOne", service.ErrSemesterLastOne, 409, 14003},
		{"NameRequired", service.ErrSemesterNameRequired, 400, 14004},
		{"InternalError", errors.New("unknown"), 500, 50000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewSemesterHandler(&mockSemesterService{err: tt.err})
			w := serve("DELETE", "/semesters/:id", "/semesters/sem_1", nil, h.DeleteSemester)
			assertStatus(t, w, tt.wantStatus, tt.wantCode)
		})
	}
}

// ═══════════════════════════════════════════════════════════
// CourseHandler Tests
// ═══════════════════════════════════════════════════════════

func TestCourseHandler_Create_Success(t *testing.T) {
	mock := &mockCourseService{course: &dto.CourseResponse{ID: "course_1", Name: "Calculus"}}
	h := NewCourseHandler(mock)

	w := serve("POST", "/courses", "/courses", jsonBody(dto.CreateCourseRequest{
		Name:     "Calculus",
		Weekdays: []int{1, 3},
	}), h.CreateCourse)
	assertStatus(t, w, http.StatusCreated, 0)
}

func TestCourseHandler_Create_NotAnObject(t *testing.T) {
	h := NewCourseHandler(&mockCourseService{})

	w := serve("POST", "/courses", "/courses", strings.NewReader(`"just a string"`), h.CreateCourse)
	assertStatus(t, w, http.StatusBadRequest, 15001)
}

func TestCourseHandler_Create_ValidationError(t *testing.T) {
	h := NewCourseHandler(&mockCourseService{err: &service.ValidationError{
		Field:  "weekdays",
		Reason: service.ErrCourseWeekdaysInvalid,
	}})

	w := serve("POST", "/courses", "/courses", jsonBody(dto.CreateCourseRequest{Name: "X"}), h.CreateCourse)
	assertStatus(t, w, http.StatusBadRequest, 15002)
	if resp := parseResponse(w); resp.Details != "weekdays" {
		t.Errorf("期望 details=weekdays，实际 %q", resp.Details)
	}
}

func TestCourseHandler_Reorder_InvalidDirection(t *testing.T) {
	mock := &mockCourseService{}
	h := NewCourseHandler(mock)

	w := serve("PUT", "/courses/:id/reorder", "/courses/course_1/reorder",
		jsonBody(map[string]string{"direction": "up"}), h.ReorderCourse)
	assertStatus(t, w, http.StatusBadRequest, response.CodeInvalidParam)
	if mock.direction != "" {
		t.Error("非法方向不应调用 Reorder")
	}
}

func TestCourseHandler_Reorder_Success(t *testing.T) {
	mock := &mockCourseService{courses: []dto.CourseResponse{{ID: "b"}, {ID: "a"}}}
	h := NewCourseHandler(mock)

	w := serve("PUT", "/courses/:id/reorder", "/courses/a/reorder",
		jsonBody(map[string]string{"direction": "left"}), h.ReorderCourse)
	assertStatus(t, w, http.StatusOK, 0)
	if mock.direction != service.DirectionLeft {
		t.Errorf("期望方向 left，实际 %q", mock.direction)
	}
}

func TestCourseHandler_Import_File(t *testing.T) {
	mock := &mockCourseService{importResult: &dto.ImportCoursesResponse{ImportedCount: 1}}
	h := NewCourseHandler(mock)

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, _ := mw.CreateFormFile("file", "timetable.ics")
	part.Write([]byte("BEGIN:VCALENDAR\r\nEND:VCALENDAR\r\n"))
	mw.Close()

	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/courses/import", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())

	r := gin.New()
	r.POST("/courses/import", h.ImportCourses)
	r.ServeHTTP(w, req)

	assertStatus(t, w, http.StatusCreated, 0)
	if !strings.HasPrefix(mock.importBody, "BEGIN:VCALENDAR") {
		t.Errorf("上传的文件内容应透传给 ImportICS，实际 %q", mock.importBody)
	}
}

func TestCourseHandler_Import_NoSource(t *testing.T) {
	h := NewCourseHandler(&mockCourseService{})

	w := serve("POST", "/courses/import", "/courses/import", jsonBody(map[string]string{}), h.ImportCourses)
	assertStatus(t, w, http.StatusBadRequest, 15005)
}

func TestCourseHandler_ErrorMapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   int
	}{
		{"NotFound", service.ErrCourseNotFound, 404, 15003},
		{"Direction", service.ErrCourseDirectionInvalid, 400, 15004},
		{"ICSParse", service.ErrICSParseFailed, 400, 15007},
		{"InternalError", errors.New("unknown"), 500, 50000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewCourseHandler(&mockCourseService{err: tt.err})
			w := serve("GET", "/courses/:id", "/courses/course_1", nil, h.GetCourse)
			assertStatus(t, w, tt.wantStatus, tt.wantCode)
		})
	}
}

// ═══════════════════════════════════════════════════════════
// AttendanceHandler Tests
// ═══════════════════════════════════════════════════════════

func TestAttendanceHandler_List_FilterByCourse(t *testing.T) {
	mock := &mockAttendanceService{records: []dto.AttendanceRecordResponse{}}
	h := NewAttendanceHandler(mock)

	w := serve("GET", "/attendance", "/attendance?course_id=course_1", nil, h.ListRecords)
	assertStatus(t, w, http.StatusOK, 0)
	if mock.listCourseID != "course_1" {
		t.Errorf("期望按 course_1 过滤，实际 %q", mock.listCourseID)
	}
}

func TestAttendanceHandler_Toggle_WithStatus(t *testing.T) {
	mock := &mockAttendanceService{}
	h := NewAttendanceHandler(mock)

	w := serve("POST", "/attendance/toggle", "/attendance/toggle", jsonBody(map[string]string{
		"course_id": "course_1",
		"date":      "2024-01-16",
		"status":    "cancelled",
	}), h.ToggleSession)
	assertStatus(t, w, http.StatusOK, 0)
	if mock.toggleStatus == nil || *mock.toggleStatus != model.StatusCancelled {
		t.Errorf("期望状态 cancelled，实际 %v", mock.toggleStatus)
	}
}

func TestAttendanceHandler_Toggle_NilStatusClears(t *testing.T) {
	mock := &mockAttendanceService{}
	h := NewAttendanceHandler(mock)

	w := serve("POST", "/attendance/toggle", "/attendance/toggle", jsonBody(map[string]string{
		"course_id": "course_1",
		"date":      "2024-01-16",
	}), h.ToggleSession)
	assertStatus(t, w, http.StatusOK, 0)
	if !mock.toggleCalled || mock.toggleStatus != nil {
		t.Error("未提供 status 时应以 nil 调用 ToggleSession")
	}
}

func TestAttendanceHandler_Toggle_BadInput(t *testing.T) {
	tests := []struct {
		name string
		body map[string]string
	}{
		{"日期格式错误", map[string]string{"course_id": "c", "date": "16/01/2024"}},
		{"不存在的日期", map[string]string{"course_id": "c", "date": "2024-02-30"}},
		{"未知状态", map[string]string{"course_id": "c", "date": "2024-01-16", "status": "late"}},
		{"缺少课程", map[string]string{"date": "2024-01-16"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock := &mockAttendanceService{}
			h := NewAttendanceHandler(mock)
			w := serve("POST", "/attendance/toggle", "/attendance/toggle", jsonBody(tt.body), h.ToggleSession)
			assertStatus(t, w, http.StatusBadRequest, response.CodeInvalidParam)
			if mock.toggleCalled {
				t.Error("参数错误时不应调用 ToggleSession")
			}
		})
	}
}

func TestAttendanceHandler_MarkAbsent_Success(t *testing.T) {
	mock := &mockAttendanceService{markResult: &dto.MarkDaysAbsentResponse{MarkedDays: 2, CreatedRecords: 3}}
	h := NewAttendanceHandler(mock)

	w := serve("POST", "/attendance/mark-absent", "/attendance/mark-absent",
		jsonBody(map[string][]string{"dates": {"2024-01-16", "2024-01-18"}}), h.MarkDaysAbsent)
	assertStatus(t, w, http.StatusOK, 0)
	if len(mock.markDates) != 2 {
		t.Errorf("期望透传 2 个日期，实际 %d", len(mock.markDates))
	}
}

func TestAttendanceHandler_MarkAbsent_EmptyDates(t *testing.T) {
	h := NewAttendanceHandler(&mockAttendanceService{})

	w := serve("POST", "/attendance/mark-absent", "/attendance/mark-absent",
		jsonBody(map[string][]string{"dates": {}}), h.MarkDaysAbsent)
	assertStatus(t, w, http.StatusBadRequest, response.CodeInvalidParam)
}

func TestAttendanceHandler_Undo_Empty(t *testing.T) {
	h := NewAttendanceHandler(&mockAttendanceService{undo: &dto.UndoResponse{Undone: false}})

	w := serve("POST", "/attendance/undo", "/attendance/undo", nil, h.Undo)
	assertStatus(t, w, http.StatusOK, 0)
}

func TestAttendanceHandler_ErrorMapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   int
	}{
		{"DateInvalid", service.ErrAttendanceDateInvalid, 400, 16001},
		{"StatusInvalid", service.ErrAttendanceStatusInvalid, 400, 16002},
		{"NoDates", service.ErrAttendanceNoDates, 400, 16003},
		{"NoClass", service.ErrAttendanceNoClass, 400, 16004},
		{"CourseNotFound", service.ErrCourseNotFound, 404, 15003},
		{"InternalError", errors.New("unknown"), 500, 50000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewAttendanceHandler(&mockAttendanceService{err: tt.err})
			w := serve("POST", "/attendance/days/:date/toggle", "/attendance/days/2024-01-16/toggle", nil, h.ToggleDay)
			assertStatus(t, w, tt.wantStatus, tt.wantCode)
		})
	}
}

// ═══════════════════════════════════════════════════════════
// StatsHandler / NotificationHandler Tests
// ═══════════════════════════════════════════════════════════

func TestStatsHandler_CourseStats_NotFound(t *testing.T) {
	h := NewStatsHandler(&mockStatsService{err: service.ErrCourseNotFound})

	w := serve("GET", "/stats/:course_id", "/stats/missing", nil, h.CourseStats)
	assertStatus(t, w, http.StatusNotFound, 15003)
}

func TestStatsHandler_Dashboard_Success(t *testing.T) {
	h := NewStatsHandler(&mockStatsService{dashboard: &dto.DashboardResponse{SemesterID: "sem_1"}})

	w := serve("GET", "/stats", "/stats", nil, h.Dashboard)
	assertStatus(t, w, http.StatusOK, 0)
}

func TestNotificationHandler_Update_InvalidTime(t *testing.T) {
	mock := &mockNotificationService{}
	h := NewNotificationHandler(mock)

	w := serve("PUT", "/notification-settings", "/notification-settings",
		jsonBody(map[string]string{"time": "25:00"}), h.UpdateSettings)
	assertStatus(t, w, http.StatusBadRequest, response.CodeInvalidParam)
	if mock.updated != nil {
		t.Error("非法时间不应调用 Update")
	}
}

func TestNotificationHandler_Update_Success(t *testing.T) {
	mock := &mockNotificationService{settings: &dto.NotificationSettingsResponse{Enabled: true, Time: "21:30"}}
	h := NewNotificationHandler(mock)

	w := serve("PUT", "/notification-settings", "/notification-settings",
		jsonBody(map[string]interface{}{"enabled": true, "time": "21:30"}), h.UpdateSettings)
	assertStatus(t, w, http.StatusOK, 0)
	if mock.updated == nil || mock.updated.Time == nil || *mock.updated.Time != "21:30" {
		t.Error("期望时间透传到 Update")
	}
}

// ═══════════════════════════════════════════════════════════
// ExportHandler Tests
// ═══════════════════════════════════════════════════════════

func TestExportHandler_Success(t *testing.T) {
	mock := &mockExportService{
		buf:      bytes.NewBufferString("excel content"),
		filename: "attendance_Fall 2024.xlsx",
	}
	h := NewExportHandler(mock)

	w := serve("GET", "/export/attendance", "/export/attendance", nil, h.ExportAttendance)

	if w.Code != http.StatusOK {
		t.Errorf("期望 200，实际 %d", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); ct != xlsxContentType {
		t.Errorf("Content-Type 不正确: %s", ct)
	}
	cd := w.Header().Get("Content-Disposition")
	if !strings.Contains(cd, "attendance_Fall%202024.xlsx") {
		t.Errorf("Content-Disposition 不正确: %s", cd)
	}
	if w.Body.String() != "excel content" {
		t.Errorf("响应体不正确: %q", w.Body.String())
	}
}

func TestExportHandler_NoCourses(t *testing.T) {
	h := NewExportHandler(&mockExportService{err: service.ErrExportNoCourses})

	w := serve("GET", "/export/attendance", "/export/attendance", nil, h.ExportAttendance)
	assertStatus(t, w, http.StatusNotFound, 18001)
}
