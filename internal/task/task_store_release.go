package task

import (
	"context"
	"time"

	"github.com/haierkeys/jot-sync-service/internal/app"
	"github.com/haierkeys/jot-sync-service/pkg/logger"

	"go.uber.org/zap"
)

// storeReleaser 可回收空闲连接的笔记库注册表
type storeReleaser interface {
	ReleaseIdle(maxIdle time.Duration) int
	OpenCount() int
}

// StoreReleaseTask 定期关闭长时间未使用的用户笔记库连接
type StoreReleaseTask struct {
	stores  storeReleaser
	maxIdle time.Duration
	logger  *zap.Logger
}

// Name 返回任务名称
func (t *StoreReleaseTask) Name() string {
	return "StoreRelease"
}

// LoopInterval 每分钟检查一次
func (t *StoreReleaseTask) LoopInterval() time.Duration {
	return time.Minute
}

// IsStartupRun 启动时无空闲连接，无需立即执行
func (t *StoreReleaseTask) IsStartupRun() bool {
	return false
}

// Run 执行回收
func (t *StoreReleaseTask) Run(ctx context.Context) error {
	if n := t.stores.ReleaseIdle(t.maxIdle); n > 0 {
		t.logger.Info("idle note stores released",
			zap.Int(logger.FieldCount, n),
			zap.Int("open", t.stores.OpenCount()))
	}
	return nil
}

// NewStoreReleaseTask 创建 StoreReleaseTask
func NewStoreReleaseTask(appContainer *app.App) (Task, error) {
	return &StoreReleaseTask{
		stores:  appContainer.Stores(),
		maxIdle: appContainer.Config().GetStoreIdleTime(),
		logger:  appContainer.Logger(),
	}, nil
}

func init() {
	RegisterWithApp(NewStoreReleaseTask)
}
