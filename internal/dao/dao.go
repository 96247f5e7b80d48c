// Package dao 实现数据访问层
package dao

import (
	"fmt"
	"net"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/haierkeys/jot-sync-service/pkg/util"

	"github.com/glebarez/sqlite"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	"gorm.io/gorm/schema"
)

// DatabaseConfig 共享认证库配置
type DatabaseConfig struct {
	Type            string
	Path            string
	UserName        string
	Password        string
	Host            string
	Name            string
	TablePrefix     string
	AutoMigrate     bool
	Charset         string
	ParseTime       bool
	MaxIdleConns    int
	MaxOpenConns    int
	ConnMaxLifetime string
	ConnMaxIdleTime string
	RunMode         string
}

// Dao 数据访问对象，持有共享认证库与用户笔记库注册表
type Dao struct {
	db     *gorm.DB
	cfg    DatabaseConfig
	Stores *StoreRegistry

	once sync.Map // key -> *sync.Once
}

// New 创建 Dao
func New(db *gorm.DB, cfg DatabaseConfig, stores *StoreRegistry) *Dao {
	return &Dao{db: db, cfg: cfg, Stores: stores}
}

// DB 返回共享认证库连接
func (d *Dao) DB() *gorm.DB {
	return d.db
}

// UseWithOnce 返回共享认证库连接，首次调用时针对 key 执行一次 fn（通常是 AutoMigrate）
func (d *Dao) UseWithOnce(key string, fn func(g *gorm.DB)) *gorm.DB {
	if d.cfg.AutoMigrate && fn != nil {
		v, _ := d.once.LoadOrStore(key, &sync.Once{})
		v.(*sync.Once).Do(func() { fn(d.db) })
	}
	return d.db
}

// NewDBEngineWithConfig 根据配置创建共享认证库连接
func NewDBEngineWithConfig(c DatabaseConfig, lg *zap.Logger) (*gorm.DB, error) {
	dialector, err := useDialector(c)
	if err != nil {
		return nil, err
	}

	logLevel := logger.Silent
	if c.RunMode == "debug" {
		logLevel = logger.Info
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(logLevel),
		NamingStrategy: schema.NamingStrategy{
			TablePrefix:   c.TablePrefix, // 表名前缀，`User` 的表名应该是 `t_user`
			SingularTable: true,          // 使用单数表名
		},
	})
	if err != nil {
		return nil, errors.Wrapf(err, "open %s database", c.Type)
	}

	// 获取通用数据库对象 sql.DB ，然后使用其提供的功能
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}

	if c.Type == "sqlite" {
		// SQLite 单写者，连接池收敛为一个连接
		sqlDB.SetMaxOpenConns(1)
	} else {
		sqlDB.SetMaxIdleConns(c.MaxIdleConns)
		sqlDB.SetMaxOpenConns(c.MaxOpenConns)
	}

	if d, err := util.ParseDuration(c.ConnMaxLifetime); err == nil {
		sqlDB.SetConnMaxLifetime(d)
	} else {
		sqlDB.SetConnMaxLifetime(30 * time.Minute)
	}
	if d, err := util.ParseDuration(c.ConnMaxIdleTime); err == nil {
		sqlDB.SetConnMaxIdleTime(d)
	}

	if lg != nil {
		lg.Info("database connected", zap.String("type", c.Type))
	}
	return db, nil
}

func useDialector(c DatabaseConfig) (gorm.Dialector, error) {
	switch c.Type {
	case "mysql":
		charset := c.Charset
		if charset == "" {
			charset = "utf8mb4"
		}
		return mysql.Open(fmt.Sprintf("%s:%s@tcp(%s)/%s?charset=%s&parseTime=%t&loc=Local",
			c.UserName,
			c.Password,
			c.Host,
			c.Name,
			charset,
			c.ParseTime,
		)), nil
	case "postgres":
		host, port := c.Host, "5432"
		if h, p, err := net.SplitHostPort(c.Host); err == nil {
			host, port = h, p
		}
		return postgres.Open(fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable TimeZone=Local",
			host,
			port,
			c.UserName,
			c.Password,
			c.Name,
		)), nil
	case "sqlite", "":
		if err := os.MkdirAll(filepath.Dir(c.Path), 0o755); err != nil {
			return nil, errors.Wrap(err, "create database dir")
		}
		return sqlite.Open(c.Path + "?_pragma=busy_timeout(5000)"), nil
	}
	return nil, errors.Errorf("unsupported database type %q", c.Type)
}
