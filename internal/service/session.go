package service

import (
	"context"
	"sync"

	"github.com/HuzaifaAbdulRehman/fast-timetable-attendance-sub001/internal/model"
)

// UndoType 可撤销操作类型；目前只有整日切换可撤销
type UndoType string

const UndoToggleDay UndoType = "toggle_day"

// UndoEntry 待执行的逆操作：保存某日切换前的完整记录集
type UndoEntry struct {
	Type          UndoType
	SemesterID    string
	Date          string
	PreviousState []model.AttendanceRecord
	Description   string
}

// Session 会话上下文
//
// 持有当前学期指针与单级撤销槽；mu 将所有读写串行化，
// 相当于单一的派发队列。撤销槽仅存在于进程生命周期内，不持久化。
type Session struct {
	mu sync.Mutex

	activeLoaded     bool
	activeSemesterID string

	undo *UndoEntry
}

// NewSession 创建空会话
func NewSession() *Session {
	return &Session{}
}

// activeIDLocked 返回当前学期指针（首次访问时从存储读取）
func (c *core) activeIDLocked(ctx context.Context) string {
	if !c.sess.activeLoaded {
		c.sess.activeSemesterID = c.repo.Settings.GetActiveSemesterID(ctx)
		c.sess.activeLoaded = true
	}
	return c.sess.activeSemesterID
}

// setActiveLocked 更新当前学期指针并同步学期上的展示用 isActive 标记
func (c *core) setActiveLocked(ctx context.Context, id string) error {
	c.sess.activeSemesterID = id
	c.sess.activeLoaded = true
	c.repo.Settings.SetActiveSemesterID(ctx, id)

	semesters, version := c.repo.Semester.Snapshot(ctx)
	changed := false
	for i := range semesters {
		want := semesters[i].ID == id
		if semesters[i].IsActive != want {
			semesters[i].IsActive = want
			changed = true
		}
	}
	if !changed {
		return nil
	}
	return c.repo.Semester.Replace(ctx, semesters, version)
}

// setUndoLocked 覆盖撤销槽，不做链式保留
func (c *core) setUndoLocked(entry *UndoEntry) {
	c.sess.undo = entry
}
