package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/HuzaifaAbdulRehman/fast-timetable-attendance-sub001/config"
	"github.com/HuzaifaAbdulRehman/fast-timetable-attendance-sub001/internal/api/handler"
	"github.com/HuzaifaAbdulRehman/fast-timetable-attendance-sub001/internal/api/middleware"
	"github.com/HuzaifaAbdulRehman/fast-timetable-attendance-sub001/internal/api/router"
	"github.com/HuzaifaAbdulRehman/fast-timetable-attendance-sub001/internal/repository"
	"github.com/HuzaifaAbdulRehman/fast-timetable-attendance-sub001/internal/scheduler"
	"github.com/HuzaifaAbdulRehman/fast-timetable-attendance-sub001/internal/service"
	"github.com/HuzaifaAbdulRehman/fast-timetable-attendance-sub001/pkg/kvstore"
	applogger "github.com/HuzaifaAbdulRehman/fast-timetable-attendance-sub001/pkg/logger"
)

func main() {
	// 1. 加载配置
	cfg, err := config.Load(os.Getenv("ATTEND_CONFIG_FILE"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "加载配置失败: %v\n", err)
		os.Exit(1)
	}

	// 2. 初始化日志
	logger, err := applogger.NewLogger(&cfg.Log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "初始化日志失败: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("应用启动中...",
		zap.Int("port", cfg.Server.Port),
		zap.String("store_backend", cfg.Store.Backend),
		zap.String("log_level", cfg.Log.Level),
	)

	// 3. 打开键值存储
	be, err := openBackend(cfg, logger)
	if err != nil {
		logger.Fatal("存储后端初始化失败", zap.Error(err))
	}
	defer be.close()
	store := kvstore.WithPrefix(cfg.Store.KeyPrefix, be.store)

	// 4. 依赖注入: Repository → Service → Handler
	repo := repository.NewRepository(store, logger)
	svc := service.NewService(cfg, repo, logger)
	h := handler.NewHandler(svc)

	// 启动时确保存在当前学期
	if _, err := svc.Semester.EnsureActive(context.Background()); err != nil {
		logger.Warn("初始化当前学期失败", zap.Error(err))
	}

	// 5. 初始化路由
	var limiter middleware.RateLimiter
	if be.rdb != nil {
		limiter = be.rdb
	}
	if cfg.Log.Level != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}
	engine, err := router.Setup(cfg, h, limiter, logger)
	if err != nil {
		logger.Fatal("路由初始化失败", zap.Error(err))
	}

	// 6. 出勤提醒任务
	jobs := scheduler.New(logger)
	if cfg.Reminder.Enabled {
		job := scheduler.NewReminderJob(svc.Notification, svc.Course, logger)
		if err := jobs.Register(job, cfg.Reminder.CheckInterval); err != nil {
			logger.Fatal("注册提醒任务失败", zap.Error(err))
		}
	}
	jobCtx, stopJobs := context.WithCancel(context.Background())
	defer stopJobs()
	if err := jobs.Start(jobCtx); err != nil {
		logger.Fatal("启动定时任务失败", zap.Error(err))
	}

	// 7. 启动 HTTP 服务器（优雅关闭）
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      engine,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("HTTP 服务器已启动", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("HTTP 服务器异常", zap.Error(err))
		}
	}()

	// 8. 监听系统信号，优雅关闭
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	logger.Info("收到关闭信号，开始优雅关闭...", zap.String("signal", sig.String()))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("服务器关闭异常", zap.Error(err))
	}
	if err := jobs.Stop(); err != nil {
		logger.Warn("停止定时任务异常", zap.Error(err))
	}

	logger.Info("服务器已关闭")
}
