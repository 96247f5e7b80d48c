// Package app 提供应用容器，封装所有依赖和服务
package app

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sync/atomic"
	"time"

	"github.com/haierkeys/jot-sync-service/internal/dao"
	"github.com/haierkeys/jot-sync-service/internal/service"
	"github.com/haierkeys/jot-sync-service/internal/upgrade"
	pkgapp "github.com/haierkeys/jot-sync-service/pkg/app"
	"github.com/haierkeys/jot-sync-service/pkg/fileurl"
	"github.com/haierkeys/jot-sync-service/pkg/storage"
	"github.com/haierkeys/jot-sync-service/pkg/workerpool"
	"github.com/haierkeys/jot-sync-service/pkg/writequeue"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// App 应用容器，封装所有依赖和服务
type App struct {
	// 基础设施（注入的依赖）
	config *AppConfig
	logger *zap.Logger
	DB     *gorm.DB
	Dao    *dao.Dao

	// 并发控制组件
	workerPool    *workerpool.Pool
	writeQueueMgr *writequeue.Manager

	// Service 层
	UserService   service.UserService
	StoreService  *service.StoreService
	BackupService *service.BackupService // 未启用备份时为 nil

	// 基础设施组件
	TokenManager pkgapp.TokenManager

	// StartTime 容器创建时间
	StartTime time.Time

	closing atomic.Bool
}

// NewApp 创建应用容器实例
// cfg、logger、db 均为必需项
func NewApp(cfg *AppConfig, logger *zap.Logger, db *gorm.DB) (*App, error) {
	if cfg == nil {
		return nil, fmt.Errorf("configuration is required")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger is required")
	}
	if db == nil {
		return nil, fmt.Errorf("database is required")
	}

	a := &App{
		config:    cfg,
		logger:    logger,
		DB:        db,
		StartTime: time.Now(),
	}

	wpConfig := cfg.GetWorkerPoolConfig()
	a.workerPool = workerpool.New(wpConfig, logger)

	wqConfig := cfg.GetWriteQueueConfig()
	a.writeQueueMgr = writequeue.New(wqConfig, logger)

	dataDir := fileurl.ResolvePath(cfg.App.UserDataDir, "")
	stores := dao.NewStoreRegistry(dataDir, logger)
	a.Dao = dao.New(db, cfg.GetDatabaseConfig(), stores)

	a.TokenManager = pkgapp.NewTokenManager(pkgapp.TokenConfig{
		SecretKey: cfg.Security.AuthTokenKey,
		Expiry:    cfg.GetTokenExpiry(),
	})

	svcConfig := &service.ServiceConfig{
		User: service.UserServiceConfig{
			RegisterIsEnable: cfg.User.RegisterIsEnable,
		},
	}

	a.UserService = service.NewUserService(dao.NewUserRepository(a.Dao), a.TokenManager, logger, svcConfig)
	a.StoreService = service.NewStoreService(stores, a.writeQueueMgr)

	if cfg.Backup.Enable {
		backend, err := storage.NewClient(context.Background(), &cfg.Backup.Storage)
		if err != nil {
			return nil, fmt.Errorf("backup storage: %w", err)
		}
		a.BackupService = service.NewBackupService(a.StoreService, a.workerPool, backend, cfg.GetBackupRetention(), logger)
	}

	logger.Info("App container initialized successfully",
		zap.String("userDataDir", dataDir),
		zap.Int("workerPoolMaxWorkers", wpConfig.MaxWorkers),
		zap.Int("writeQueueCapacity", wqConfig.QueueCapacity))

	return a, nil
}

// Close 释放笔记库与共享认证库连接
func (a *App) Close() error {
	var firstErr error
	if a.Dao != nil && a.Dao.Stores != nil {
		if err := a.Dao.Stores.CloseAll(); err != nil {
			firstErr = fmt.Errorf("failed to close note stores: %w", err)
		}
	}
	if a.DB != nil {
		sqlDB, err := a.DB.DB()
		if err != nil {
			return fmt.Errorf("failed to get sql.DB: %w", err)
		}
		if err := sqlDB.Close(); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("failed to close database: %w", err)
		}
		a.logger.Info("Database connection closed")
	}
	return firstErr
}

// Config 获取应用配置
func (a *App) Config() *AppConfig {
	return a.config
}

// Logger 获取日志器
func (a *App) Logger() *zap.Logger {
	return a.logger
}

// Stores 获取用户笔记库注册表
func (a *App) Stores() *dao.StoreRegistry {
	return a.Dao.Stores
}

// Version 获取版本信息
func (a *App) Version() pkgapp.VersionInfo {
	return pkgapp.VersionInfo{
		Version:     Version,
		GitTag:      GitTag,
		BuildTime:   BuildTime,
		GoVersion:   runtime.Version(),
		StoreSchema: upgrade.LatestVersion,
	}
}

// DefaultShutdownTimeout 默认关闭超时时间
const DefaultShutdownTimeout = 30 * time.Second

// shutdownStep 关闭流程中的一步
type shutdownStep struct {
	name string
	fn   func(ctx context.Context) error
}

// Shutdown 按顺序关闭：Worker Pool -> 写队列 -> 笔记库与认证库
// 重复调用直接返回；ctx 为 nil 时使用 DefaultShutdownTimeout
func (a *App) Shutdown(ctx context.Context) error {
	if !a.closing.CompareAndSwap(false, true) {
		return nil
	}
	if ctx == nil {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(context.Background(), DefaultShutdownTimeout)
		defer cancel()
	}
	a.logger.Info("app container shutting down")

	steps := []shutdownStep{
		{name: "worker pool", fn: a.workerPool.Shutdown},
		// 写队列排空后才能关闭数据库
		{name: "write queue", fn: a.writeQueueMgr.Shutdown},
		{name: "databases", fn: func(context.Context) error { return a.Close() }},
	}

	var errs []error
	for _, step := range steps {
		if err := step.fn(ctx); err != nil {
			a.logger.Warn("shutdown step failed", zap.String("step", step.name), zap.Error(err))
			errs = append(errs, fmt.Errorf("%s: %w", step.name, err))
			continue
		}
		a.logger.Debug("shutdown step done", zap.String("step", step.name))
	}

	if err := errors.Join(errs...); err != nil {
		return err
	}
	a.logger.Info("app container stopped")
	return nil
}
