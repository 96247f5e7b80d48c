package task

import (
	"context"
	"sync"
	"time"

	"github.com/haierkeys/jot-sync-service/internal/app"

	"github.com/pkg/errors"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// backupRunner 执行一次全量备份
type backupRunner interface {
	BackupAll(ctx context.Context) (int, error)
}

// BackupTask 按 cron 表达式定时备份全部用户笔记库
// 调度器每分钟调用一次，到达下次执行时间时才真正备份
type BackupTask struct {
	runner   backupRunner
	schedule cron.Schedule
	logger   *zap.Logger
	now      func() time.Time

	mu   sync.Mutex
	next time.Time
}

// Name returns the task name
func (t *BackupTask) Name() string {
	return "BackupScheduled"
}

// LoopInterval returns the execution interval (every minute)
func (t *BackupTask) LoopInterval() time.Duration {
	return 1 * time.Minute
}

// IsStartupRun 启动时只计算下次执行时间
func (t *BackupTask) IsStartupRun() bool {
	return true
}

// NextRun 返回下次执行时间
func (t *BackupTask) NextRun() time.Time {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.next
}

// Run executes the backup when it is due
func (t *BackupTask) Run(ctx context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	now := t.now()
	if t.next.IsZero() {
		t.next = t.schedule.Next(now)
		t.logger.Info("backup scheduled", zap.Time("next", t.next))
		return nil
	}
	if now.Before(t.next) {
		return nil
	}
	t.next = t.schedule.Next(now)

	n, err := t.runner.BackupAll(ctx)
	if err != nil {
		return errors.Wrapf(err, "backup finished with %d succeeded", n)
	}
	return nil
}

// ParseBackupCron 解析五段式 cron 表达式
func ParseBackupCron(expr string) (cron.Schedule, error) {
	parser := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)
	schedule, err := parser.Parse(expr)
	if err != nil {
		return nil, errors.Wrapf(err, "parse backup cron %q", expr)
	}
	return schedule, nil
}

func newBackupTask(runner backupRunner, expr string, lg *zap.Logger) (*BackupTask, error) {
	schedule, err := ParseBackupCron(expr)
	if err != nil {
		return nil, err
	}
	return &BackupTask{
		runner:   runner,
		schedule: schedule,
		logger:   lg,
		now:      time.Now,
	}, nil
}

// NewBackupTask creates a new BackupTask instance, nil when backups are disabled
func NewBackupTask(appContainer *app.App) (Task, error) {
	if appContainer.BackupService == nil {
		return nil, nil
	}
	t, err := newBackupTask(appContainer.BackupService, appContainer.Config().Backup.Cron, appContainer.Logger())
	if err != nil {
		return nil, err
	}
	return t, nil
}

// init registers the backup task
func init() {
	RegisterWithApp(NewBackupTask)
}
