package service

import (
	"context"
	"errors"
	"regexp"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/HuzaifaAbdulRehman/fast-timetable-attendance-sub001/internal/dto"
	"github.com/HuzaifaAbdulRehman/fast-timetable-attendance-sub001/internal/model"
	"github.com/HuzaifaAbdulRehman/fast-timetable-attendance-sub001/internal/repository"
)

// ── 提醒模块业务错误 ──

var ErrNotificationTimeInvalid = errors.New("提醒时间格式必须为 HH:MM")

var hhmmPattern = regexp.MustCompile(`^([01]\d|2[0-3]):[0-5]\d$`)

// IsHHMM 判断字符串是否为 24 小时制 HH:MM
func IsHHMM(s string) bool {
	return hhmmPattern.MatchString(s)
}

// NotificationService 每日出勤提醒设置
//
// 不持有会话锁：提醒检查只读写 NotificationSettings，不触碰课程与出勤数据。
type NotificationService interface {
	Get(ctx context.Context) *dto.NotificationSettingsResponse
	Update(ctx context.Context, req *dto.UpdateNotificationSettingsRequest) (*dto.NotificationSettingsResponse, error)
	// CheckReminder 到达提醒时间且今天尚未检查时返回 true，并写入 lastChecked
	CheckReminder(ctx context.Context, now time.Time) bool
}

// mu 串行化设置的读-改-写：提醒任务与 HTTP 更新可能并发
type notificationService struct {
	mu     sync.Mutex
	repo   *repository.Repository
	logger *zap.Logger
}

// NewNotificationService 创建 NotificationService 实例
func NewNotificationService(repo *repository.Repository, logger *zap.Logger) NotificationService {
	return &notificationService{repo: repo, logger: logger}
}

func (s *notificationService) Get(ctx context.Context) *dto.NotificationSettingsResponse {
	return toNotificationResponse(s.repo.Settings.GetNotificationSettings(ctx))
}

func (s *notificationService) Update(ctx context.Context, req *dto.UpdateNotificationSettingsRequest) (*dto.NotificationSettingsResponse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	settings := s.repo.Settings.GetNotificationSettings(ctx)
	if req.Time != nil {
		if !IsHHMM(*req.Time) {
			return nil, ErrNotificationTimeInvalid
		}
		settings.Time = *req.Time
	}
	if req.Enabled != nil {
		settings.Enabled = *req.Enabled
	}
	s.repo.Settings.SaveNotificationSettings(ctx, settings)
	return toNotificationResponse(settings), nil
}

func (s *notificationService) CheckReminder(ctx context.Context, now time.Time) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	settings := s.repo.Settings.GetNotificationSettings(ctx)
	if !settings.Enabled || !IsHHMM(settings.Time) {
		return false
	}

	at, _ := time.Parse("15:04", settings.Time)
	due := time.Date(now.Year(), now.Month(), now.Day(), at.Hour(), at.Minute(), 0, 0, now.Location())
	if now.Before(due) {
		return false
	}
	if settings.LastChecked != nil && model.FormatDate(settings.LastChecked.In(now.Location())) == model.FormatDate(now) {
		return false
	}

	checked := now
	settings.LastChecked = &checked
	s.repo.Settings.SaveNotificationSettings(ctx, settings)
	return true
}

func toNotificationResponse(settings model.NotificationSettings) *dto.NotificationSettingsResponse {
	resp := &dto.NotificationSettingsResponse{
		Enabled: settings.Enabled,
		Time:    settings.Time,
	}
	if settings.LastChecked != nil {
		v := settings.LastChecked.Format(time.RFC3339)
		resp.LastChecked = &v
	}
	return resp
}
