// Package app 提供应用容器，封装所有依赖和服务
package app

import (
	"os"
	"path/filepath"
	"time"

	"github.com/haierkeys/jot-sync-service/internal/dao"
	"github.com/haierkeys/jot-sync-service/internal/middleware"
	"github.com/haierkeys/jot-sync-service/pkg/convert"
	"github.com/haierkeys/jot-sync-service/pkg/logger"
	"github.com/haierkeys/jot-sync-service/pkg/storage"
	"github.com/haierkeys/jot-sync-service/pkg/util"
	"github.com/haierkeys/jot-sync-service/pkg/workerpool"
	"github.com/haierkeys/jot-sync-service/pkg/writequeue"

	"github.com/creasty/defaults"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// AppConfig 应用配置
type AppConfig struct {
	File     string                  `yaml:"-"` // 配置文件路径，不序列化
	Server   ServerConfig            `yaml:"server"`
	Log      LogConfig               `yaml:"log"`
	Database DatabaseConfig          `yaml:"database"`
	App      AppSettings             `yaml:"app"`
	User     UserConfig              `yaml:"user"`
	Security SecurityConfig          `yaml:"security"`
	Backup   BackupConfig            `yaml:"backup"`
	Tracer   middleware.TracerConfig `yaml:"tracer"`
}

// LogConfig 日志配置
type LogConfig struct {
	// Level 日志级别，参见 zapcore.ParseLevel
	Level string `yaml:"level" default:"info"`
	// File 日志文件路径，为空时只输出到控制台
	File string `yaml:"file" default:"storage/logs/log.log"`
	// Production 是否启用 JSON 输出
	Production bool `yaml:"production" default:"true"`
	// MaxSize 单个日志文件大小（MB）
	MaxSize int `yaml:"max-size" default:"100"`
	// MaxBackups 保留的旧日志文件数
	MaxBackups int `yaml:"max-backups" default:"7"`
	// MaxAge 旧日志文件保留天数
	MaxAge int `yaml:"max-age" default:"30"`
}

// ServerConfig 服务器配置
type ServerConfig struct {
	// RunMode 运行模式
	RunMode string `yaml:"run-mode" default:"release"`
	// HttpPort HTTP 端口
	HttpPort string `yaml:"http-port" default:":9000"`
	// ReadTimeout 读取超时（秒）
	ReadTimeout int `yaml:"read-timeout" default:"60"`
	// WriteTimeout 写入超时（秒）
	WriteTimeout int `yaml:"write-timeout" default:"60"`
	// PrivateHttpListen 私有 HTTP 监听地址，承载 /metrics 与 pprof，为空时不启动
	PrivateHttpListen string `yaml:"private-http-listen" default:"127.0.0.1:9001"`
	// PrivateAuthToken 私有端口的访问 Token，为空时不校验
	PrivateAuthToken string `yaml:"private-auth-token"`
}

// SecurityConfig 安全配置
type SecurityConfig struct {
	AuthTokenKey string `yaml:"auth-token-key" default:"jot-sync-Auth-Token"`
	TokenExpiry  string `yaml:"token-expiry" default:"365d"` // Token 过期时间，支持格式：7d（天）、24h（小时）、30m（分钟）
}

// DatabaseConfig 共享认证库配置
type DatabaseConfig struct {
	// Type 数据库类型：sqlite、mysql、postgres
	Type string `yaml:"type" default:"sqlite"`
	// Path SQLite 数据库文件路径
	Path string `yaml:"path" default:"storage/database/auth.sqlite3"`
	// UserName 用户名
	UserName string `yaml:"username"`
	// Password 密码
	Password string `yaml:"password"`
	// Host 主机
	Host string `yaml:"host"`
	// Name 数据库名
	Name string `yaml:"name"`
	// TablePrefix 表前缀
	TablePrefix string `yaml:"table-prefix"`
	// AutoMigrate 是否启用自动迁移
	AutoMigrate bool `yaml:"auto-migrate" default:"true"`
	// Charset 字符集
	Charset string `yaml:"charset"`
	// ParseTime 是否解析时间
	ParseTime bool `yaml:"parse-time"`
	// MaxIdleConns 最大闲置连接数
	MaxIdleConns int `yaml:"max-idle-conns" default:"10"`
	// MaxOpenConns 最大打开连接数
	MaxOpenConns int `yaml:"max-open-conns" default:"100"`
	// ConnMaxLifetime 连接最大生命周期，支持格式：30m（分钟）、1h（小时）
	ConnMaxLifetime string `yaml:"conn-max-lifetime" default:"30m"`
	// ConnMaxIdleTime 空闲连接最大生命周期
	ConnMaxIdleTime string `yaml:"conn-max-idle-time" default:"10m"`
}

// UserConfig 用户配置
type UserConfig struct {
	// RegisterIsEnable 注册是否启用
	RegisterIsEnable bool `yaml:"register-is-enable" default:"true"`
}

// AppSettings 应用设置
type AppSettings struct {
	// UserDataDir 用户笔记库目录，每个用户一个 <uid>.db
	UserDataDir string `yaml:"user-data-dir" default:"storage/notes"`
	// StoreIdleTime 笔记库连接空闲多久后关闭
	StoreIdleTime string `yaml:"store-idle-time" default:"10m"`
	// DefaultContextTimeout 默认上下文超时时间（秒）
	DefaultContextTimeout int `yaml:"default-context-timeout" default:"60"`
	// SyncRateLimit 每秒允许的同步请求数，0 表示不限制
	SyncRateLimit int64 `yaml:"sync-rate-limit" default:"50"`

	// Worker Pool 配置
	WorkerPoolMaxWorkers int `yaml:"worker-pool-max-workers" default:"8"`
	WorkerPoolQueueSize  int `yaml:"worker-pool-queue-size" default:"256"`

	// Write Queue 配置
	WriteQueueCapacity int    `yaml:"write-queue-capacity" default:"64"`
	WriteQueueTimeout  string `yaml:"write-queue-timeout" default:"30s"`
	WriteQueueIdleTime string `yaml:"write-queue-idle-time" default:"10m"`
}

// BackupConfig 笔记库备份配置
type BackupConfig struct {
	// Enable 是否启用定时备份
	Enable bool `yaml:"enable" default:"false"`
	// Cron 备份时间表达式
	Cron string `yaml:"cron" default:"0 3 * * *"`
	// Retention 备份保留时长，为空时不清理
	Retention string `yaml:"retention" default:"30d"`
	// Storage 备份存储后端
	Storage storage.Config `yaml:"storage"`
}

// LoadConfig 从文件加载配置
// 返回配置实例和配置文件的绝对路径
func LoadConfig(f string) (*AppConfig, string, error) {
	realpath, err := filepath.Abs(f)
	if err != nil {
		return nil, "", err
	}
	realpath = filepath.Clean(realpath)

	c := new(AppConfig)
	c.File = realpath

	if err := defaults.Set(c); err != nil {
		return nil, realpath, errors.Wrap(err, "set default config failed")
	}

	file, err := os.ReadFile(realpath)
	if err != nil {
		return nil, realpath, errors.Wrap(err, "read config file failed")
	}

	if err := yaml.Unmarshal(file, c); err != nil {
		return nil, realpath, errors.Wrap(err, "parse config file failed")
	}

	// 默认值在解析前设置，YAML 中显式写出的 false 不会被覆盖
	return c, realpath, nil
}

// Save 保存配置到文件
func (c *AppConfig) Save() error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return errors.Wrap(err, "marshal config failed")
	}

	if err := os.WriteFile(c.File, data, 0o644); err != nil {
		return errors.Wrap(err, "write config file failed")
	}
	return nil
}

// GetLoggerConfig 获取日志配置
func (c *AppConfig) GetLoggerConfig() logger.Config {
	return logger.Config{
		Level:      c.Log.Level,
		File:       c.Log.File,
		Production: c.Log.Production,
		MaxSize:    c.Log.MaxSize,
		MaxBackups: c.Log.MaxBackups,
		MaxAge:     c.Log.MaxAge,
	}
}

// GetDatabaseConfig 获取 DAO 层数据库配置，字段同名复制
func (c *AppConfig) GetDatabaseConfig() dao.DatabaseConfig {
	var cfg dao.DatabaseConfig
	// 两侧字段均为基础类型，复制不会失败
	_ = convert.StructAssign(&c.Database, &cfg)
	cfg.RunMode = c.Server.RunMode
	return cfg
}

// GetWorkerPoolConfig 获取 Worker Pool 配置
func (c *AppConfig) GetWorkerPoolConfig() workerpool.Config {
	cfg := workerpool.DefaultConfig()

	if c.App.WorkerPoolMaxWorkers > 0 {
		cfg.MaxWorkers = c.App.WorkerPoolMaxWorkers
	}
	if c.App.WorkerPoolQueueSize > 0 {
		cfg.QueueSize = c.App.WorkerPoolQueueSize
	}
	return cfg
}

// GetWriteQueueConfig 获取 Write Queue 配置
func (c *AppConfig) GetWriteQueueConfig() writequeue.Config {
	cfg := writequeue.DefaultConfig()

	if c.App.WriteQueueCapacity > 0 {
		cfg.QueueCapacity = c.App.WriteQueueCapacity
	}
	if timeout, err := util.ParseDuration(c.App.WriteQueueTimeout); err == nil && timeout > 0 {
		cfg.WriteTimeout = timeout
	}
	if idleTime, err := util.ParseDuration(c.App.WriteQueueIdleTime); err == nil && idleTime > 0 {
		cfg.IdleTimeout = idleTime
	}
	return cfg
}

// GetTokenExpiry 获取 Token 过期时间
func (c *AppConfig) GetTokenExpiry() time.Duration {
	if expiry, err := util.ParseDuration(c.Security.TokenExpiry); err == nil && expiry > 0 {
		return expiry
	}
	return 365 * 24 * time.Hour
}

// GetStoreIdleTime 获取笔记库连接空闲回收时间
func (c *AppConfig) GetStoreIdleTime() time.Duration {
	if d, err := util.ParseDuration(c.App.StoreIdleTime); err == nil && d > 0 {
		return d
	}
	return 10 * time.Minute
}

// GetBackupRetention 获取备份保留时长，0 表示不清理
func (c *AppConfig) GetBackupRetention() time.Duration {
	if d, err := util.ParseDuration(c.Backup.Retention); err == nil {
		return d
	}
	return 0
}

// GetContextTimeout 获取请求上下文超时时间
func (c *AppConfig) GetContextTimeout() time.Duration {
	return time.Duration(c.App.DefaultContextTimeout) * time.Second
}
