package router

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/HuzaifaAbdulRehman/fast-timetable-attendance-sub001/config"
	"github.com/HuzaifaAbdulRehman/fast-timetable-attendance-sub001/internal/api/handler"
	"github.com/HuzaifaAbdulRehman/fast-timetable-attendance-sub001/internal/api/middleware"
)

// ICS 导入可能触发外部 URL 拉取，单独限流
const (
	importRateLimit  = 10
	importRateWindow = time.Minute
)

// Setup 初始化并返回 Gin 路由引擎
// limiter 可为 nil（非 Redis 存储后端时不限流）
func Setup(cfg *config.Config, h *handler.Handler, limiter middleware.RateLimiter, logger *zap.Logger) (*gin.Engine, error) {
	if err := handler.RegisterValidations(); err != nil {
		return nil, err
	}

	r := gin.New()

	// ── 全局中间件 ──
	r.Use(middleware.RequestID())
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.Logger(logger))
	r.Use(middleware.SecurityHeaders())
	r.Use(middleware.CORS(cfg.Server.CORS.AllowOrigins))
	r.Use(middleware.BodyLimit(cfg.Server.MaxBodyBytes))

	// ── 健康检查 ──
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// ── API v1 ──
	v1 := r.Group("/api/v1")
	{
		// 学期模块
		semesters := v1.Group("/semesters")
		{
			semesters.GET("", h.Semester.ListSemesters)
			semesters.GET("/active", h.Semester.GetActiveSemester)
			semesters.POST("", h.Semester.CreateSemester)
			semesters.PUT("/:id", h.Semester.RenameSemester)
			semesters.PUT("/:id/activate", h.Semester.ActivateSemester)
			semesters.PUT("/:id/archive", h.Semester.ArchiveSemester)
			semesters.PUT("/:id/unarchive", h.Semester.UnarchiveSemester)
			semesters.DELETE("/:id", h.Semester.DeleteSemester)
		}

		// 课程模块
		courses := v1.Group("/courses")
		{
			courses.GET("", h.Course.ListCourses)
			courses.POST("", h.Course.CreateCourse)
			courses.POST("/import",
				middleware.RateLimit(limiter, importRateLimit, importRateWindow, logger),
				h.Course.ImportCourses,
			)
			courses.GET("/:id", h.Course.GetCourse)
			courses.PUT("/:id", h.Course.UpdateCourse)
			courses.DELETE("/:id", h.Course.DeleteCourse)
			courses.PUT("/:id/reorder", h.Course.ReorderCourse)
		}

		// 出勤模块
		attendance := v1.Group("/attendance")
		{
			attendance.GET("", h.Attendance.ListRecords)
			attendance.DELETE("", h.Attendance.ClearRecords)
			attendance.POST("/toggle", h.Attendance.ToggleSession)
			attendance.POST("/undo", h.Attendance.Undo)
			attendance.POST("/mark-absent", h.Attendance.MarkDaysAbsent)
			attendance.GET("/days/:date", h.Attendance.DayStatus)
			attendance.POST("/days/:date/toggle", h.Attendance.ToggleDay)
		}

		// 统计模块
		v1.GET("/stats", h.Stats.Dashboard)
		v1.GET("/stats/:course_id", h.Stats.CourseStats)

		// 提醒设置
		v1.GET("/notification-settings", h.Notification.GetSettings)
		v1.PUT("/notification-settings", h.Notification.UpdateSettings)

		// 导出模块
		v1.GET("/export/attendance", h.Export.ExportAttendance)
	}

	return r, nil
}
