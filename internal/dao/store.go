package dao

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/haierkeys/jot-sync-service/internal/domain"
	"github.com/haierkeys/jot-sync-service/internal/upgrade"
	"github.com/haierkeys/jot-sync-service/pkg/convert"

	"github.com/glebarez/sqlite"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// storeFileExt 用户笔记库文件扩展名
const storeFileExt = ".db"

// OpenNoteStore 打开或创建笔记库文件，并将 schema 升级到最新版本
// 每个笔记库只保留一个底层连接
func OpenNoteStore(ctx context.Context, path string) (*gorm.DB, upgrade.Result, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, upgrade.Result{}, domain.NewStorageError("create store dir", err)
	}

	db, err := gorm.Open(sqlite.Open(path+"?_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)"), &gorm.Config{
		Logger:                 logger.Discard,
		SkipDefaultTransaction: true,
	})
	if err != nil {
		return nil, upgrade.Result{}, domain.NewStorageError("open store "+path, err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, upgrade.Result{}, domain.NewStorageError("open store "+path, err)
	}
	sqlDB.SetMaxOpenConns(1)

	res, err := upgrade.NewMigrationManager(db).Run(ctx)
	if err != nil {
		_ = sqlDB.Close()
		return nil, res, err
	}
	return db, res, nil
}

// CloseNoteStore 关闭笔记库连接
func CloseNoteStore(db *gorm.DB) error {
	if db == nil {
		return nil
	}
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

type storeEntry struct {
	db       *gorm.DB
	refs     int
	lastUsed time.Time
}

// StoreRegistry 按用户管理笔记库连接
// 同一用户的并发首次打开通过 singleflight 合并
type StoreRegistry struct {
	dir    string
	logger *zap.Logger

	mu     sync.Mutex
	stores map[int64]*storeEntry
	group  singleflight.Group
}

// NewStoreRegistry 创建笔记库注册表，dir 为用户笔记库所在目录
func NewStoreRegistry(dir string, lg *zap.Logger) *StoreRegistry {
	if lg == nil {
		lg = zap.NewNop()
	}
	return &StoreRegistry{
		dir:    dir,
		logger: lg,
		stores: make(map[int64]*storeEntry),
	}
}

// Dir 返回笔记库目录
func (r *StoreRegistry) Dir() string {
	return r.dir
}

// Path 返回用户笔记库文件路径
func (r *StoreRegistry) Path(uid int64) string {
	return filepath.Join(r.dir, strconv.FormatInt(uid, 10)+storeFileExt)
}

// Acquire 获取用户笔记库连接，使用完毕后必须调用 release
func (r *StoreRegistry) Acquire(ctx context.Context, uid int64) (db *gorm.DB, release func(), err error) {
	for {
		r.mu.Lock()
		if e, ok := r.stores[uid]; ok {
			e.refs++
			e.lastUsed = time.Now()
			r.mu.Unlock()
			return e.db, r.releaseFunc(uid, e), nil
		}
		r.mu.Unlock()

		_, err, _ = r.group.Do(strconv.FormatInt(uid, 10), func() (any, error) {
			r.mu.Lock()
			_, ok := r.stores[uid]
			r.mu.Unlock()
			if ok {
				return nil, nil
			}

			g, res, err := OpenNoteStore(ctx, r.Path(uid))
			if err != nil {
				return nil, err
			}
			if res.Applied() {
				r.logger.Info("note store migrated",
					zap.Int64("uid", uid),
					zap.Int("from", res.From),
					zap.Int("to", res.To))
			}

			r.mu.Lock()
			r.stores[uid] = &storeEntry{db: g, lastUsed: time.Now()}
			r.mu.Unlock()
			return nil, nil
		})
		if err != nil {
			return nil, nil, err
		}
		// 打开后立即被回收的极端情况下重试
	}
}

func (r *StoreRegistry) releaseFunc(uid int64, e *storeEntry) func() {
	var once sync.Once
	return func() {
		once.Do(func() {
			r.mu.Lock()
			e.refs--
			e.lastUsed = time.Now()
			r.mu.Unlock()
		})
	}
}

// WithStore 获取用户笔记库并执行 fn
func (r *StoreRegistry) WithStore(ctx context.Context, uid int64, fn func(db *gorm.DB) error) error {
	db, release, err := r.Acquire(ctx, uid)
	if err != nil {
		return err
	}
	defer release()
	return fn(db)
}

// ReleaseIdle 关闭空闲超过 maxIdle 且未被占用的连接，返回关闭数量
func (r *StoreRegistry) ReleaseIdle(maxIdle time.Duration) int {
	now := time.Now()
	var idle []*gorm.DB

	r.mu.Lock()
	for uid, e := range r.stores {
		if e.refs == 0 && now.Sub(e.lastUsed) >= maxIdle {
			idle = append(idle, e.db)
			delete(r.stores, uid)
		}
	}
	r.mu.Unlock()

	for _, db := range idle {
		if err := CloseNoteStore(db); err != nil {
			r.logger.Warn("close idle note store failed", zap.Error(err))
		}
	}
	return len(idle)
}

// OpenCount 当前打开的连接数
func (r *StoreRegistry) OpenCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.stores)
}

// CloseAll 关闭全部连接
func (r *StoreRegistry) CloseAll() error {
	r.mu.Lock()
	stores := r.stores
	r.stores = make(map[int64]*storeEntry)
	r.mu.Unlock()

	var firstErr error
	for _, e := range stores {
		if err := CloseNoteStore(e.db); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// UIDs 列出目录下已存在笔记库的用户 ID，按升序返回
func (r *StoreRegistry) UIDs() ([]int64, error) {
	entries, err := os.ReadDir(r.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, errors.Wrap(err, "read store dir")
	}

	var uids []int64
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, storeFileExt) {
			continue
		}
		uid, err := convert.StrTo(strings.TrimSuffix(name, storeFileExt)).Int64()
		if err != nil {
			continue
		}
		uids = append(uids, uid)
	}
	sort.Slice(uids, func(i, j int) bool { return uids[i] < uids[j] })
	return uids, nil
}
