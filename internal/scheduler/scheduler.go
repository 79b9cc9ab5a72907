// Package scheduler 后台定时任务：按固定间隔执行已注册的任务。
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
)

var (
	ErrNilJob                  = errors.New("scheduler: 任务不能为空")
	ErrInvalidInterval         = errors.New("scheduler: 执行间隔必须大于 0")
	ErrJobAlreadyExists        = errors.New("scheduler: 任务已存在")
	ErrJobNotFound             = errors.New("scheduler: 任务不存在")
	ErrSchedulerAlreadyRunning = errors.New("scheduler: 已在运行")
	ErrSchedulerNotRunning     = errors.New("scheduler: 未在运行")
)

// Job 定时任务
type Job interface {
	Name() string
	// Run 执行一次任务；ctx 在调度器停止时取消
	Run(ctx context.Context) error
}

type scheduledJob struct {
	job      Job
	interval time.Duration
	runCount int64
	failures int64
}

// Scheduler 间隔调度器，每个任务在独立的 goroutine 中按 ticker 执行
type Scheduler struct {
	mu     sync.Mutex
	logger *zap.Logger

	jobs    map[string]*scheduledJob
	running bool
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

// New 创建调度器
func New(logger *zap.Logger) *Scheduler {
	return &Scheduler{
		logger: logger,
		jobs:   make(map[string]*scheduledJob),
	}
}

// Register 注册任务，须在 Start 之前调用
func (s *Scheduler) Register(job Job, interval time.Duration) error {
	if job == nil {
		return ErrNilJob
	}
	if interval <= 0 {
		return ErrInvalidInterval
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	name := job.Name()
	if _, exists := s.jobs[name]; exists {
		return fmt.Errorf("%w: %s", ErrJobAlreadyExists, name)
	}
	s.jobs[name] = &scheduledJob{job: job, interval: interval}

	s.logger.Info("定时任务已注册", zap.String("job", name), zap.Duration("interval", interval))
	return nil
}

// Start 启动所有任务
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return ErrSchedulerAlreadyRunning
	}
	runCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.running = true

	for _, sj := range s.jobs {
		s.wg.Add(1)
		go s.loop(runCtx, sj)
	}

	s.logger.Info("调度器已启动", zap.Int("jobs", len(s.jobs)))
	return nil
}

// Stop 停止调度并等待正在执行的任务结束
func (s *Scheduler) Stop() error {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return ErrSchedulerNotRunning
	}
	s.running = false
	s.cancel()
	s.mu.Unlock()

	s.wg.Wait()
	s.logger.Info("调度器已停止")
	return nil
}

// RunNow 立即执行一次指定任务，不影响其调度
func (s *Scheduler) RunNow(ctx context.Context, name string) error {
	s.mu.Lock()
	sj, exists := s.jobs[name]
	s.mu.Unlock()

	if !exists {
		return fmt.Errorf("%w: %s", ErrJobNotFound, name)
	}
	return s.execute(ctx, sj)
}

// RunCount 任务累计执行次数
func (s *Scheduler) RunCount(name string) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	if sj, ok := s.jobs[name]; ok {
		return sj.runCount
	}
	return 0
}

func (s *Scheduler) loop(ctx context.Context, sj *scheduledJob) {
	defer s.wg.Done()

	ticker := time.NewTicker(sj.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			_ = s.execute(ctx, sj)
		}
	}
}

func (s *Scheduler) execute(ctx context.Context, sj *scheduledJob) error {
	name := sj.job.Name()
	started := time.Now()

	err := sj.job.Run(ctx)

	s.mu.Lock()
	sj.runCount++
	if err != nil {
		sj.failures++
	}
	s.mu.Unlock()

	if err != nil {
		s.logger.Error("定时任务执行失败",
			zap.String("job", name),
			zap.Duration("duration", time.Since(started)),
			zap.Error(err),
		)
		return err
	}
	s.logger.Debug("定时任务执行完成", zap.String("job", name), zap.Duration("duration", time.Since(started)))
	return nil
}
