package scheduler

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/HuzaifaAbdulRehman/fast-timetable-attendance-sub001/internal/model"
	"github.com/HuzaifaAbdulRehman/fast-timetable-attendance-sub001/internal/service"
)

// ReminderJobName 出勤提醒任务名
const ReminderJobName = "attendance_reminder"

// ReminderJob 每日出勤提醒
//
// 只读写提醒设置中的 lastChecked；到点后列出今天有课的课程并记录提醒日志。
type ReminderJob struct {
	notification service.NotificationService
	courses      service.CourseService
	logger       *zap.Logger
	now          func() time.Time
}

// NewReminderJob 创建提醒任务
func NewReminderJob(notification service.NotificationService, courses service.CourseService, logger *zap.Logger) *ReminderJob {
	return &ReminderJob{
		notification: notification,
		courses:      courses,
		logger:       logger,
		now:          time.Now,
	}
}

func (j *ReminderJob) Name() string {
	return ReminderJobName
}

func (j *ReminderJob) Run(ctx context.Context) error {
	now := j.now()
	if !j.notification.CheckReminder(ctx, now) {
		return nil
	}

	courses, err := j.courses.List(ctx)
	if err != nil {
		return err
	}

	today := model.FormatDate(now)
	var names []string
	for _, c := range courses {
		course := model.Course{Weekdays: c.Weekdays, StartDate: c.StartDate, EndDate: c.EndDate}
		for _, slot := range c.Schedule {
			course.Schedule = append(course.Schedule, model.ScheduleSlot{Day: slot.Day})
		}
		if service.HasClassOnDate(&course, today) {
			names = append(names, c.Name)
		}
	}

	j.logger.Info("出勤提醒：请记录今天的出勤",
		zap.String("date", today),
		zap.Int("course_count", len(names)),
		zap.Strings("courses", names),
	)
	return nil
}
