// Package writequeue serializes write operations per user
// Package writequeue 按用户串行化写操作，同一用户的请求按 FIFO 顺序执行，不同用户并行
package writequeue

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"
)

var (
	// ErrWriteQueueFull the user's queue is full
	// ErrWriteQueueFull 用户写队列已满
	ErrWriteQueueFull = errors.New("write queue is full")
	// ErrWriteQueueClosed the manager has been shut down
	// ErrWriteQueueClosed 写队列管理器已关闭
	ErrWriteQueueClosed = errors.New("write queue is closed")
	// ErrWriteTimeout waiting for the operation timed out
	// ErrWriteTimeout 等待写操作超时
	ErrWriteTimeout = errors.New("write operation timeout")
)

// Config write queue configuration
// Config 写队列配置
type Config struct {
	// QueueCapacity maximum pending operations per user
	// QueueCapacity 每用户最大排队数
	QueueCapacity int
	// WriteTimeout how long Execute waits for a result
	// WriteTimeout Execute 等待结果的最长时间
	WriteTimeout time.Duration
	// IdleTimeout a user lane exits after this long without work
	// IdleTimeout 用户队列空闲超过该时长后退出
	IdleTimeout time.Duration
}

// DefaultConfig returns default configuration
// DefaultConfig 返回默认配置
func DefaultConfig() Config {
	return Config{
		QueueCapacity: 64,
		WriteTimeout:  30 * time.Second,
		IdleTimeout:   10 * time.Minute,
	}
}

type op struct {
	ctx    context.Context
	fn     func(context.Context) error
	result chan error
}

// lane 单个用户的写队列，pending 受 Manager.mu 保护
type lane struct {
	uid     int64
	ops     chan op
	pending int
}

// Manager owns one lane per user
// Manager 管理所有用户的写队列
type Manager struct {
	cfg    Config
	logger *zap.Logger

	mu     sync.Mutex
	lanes  map[int64]*lane
	closed bool

	stop chan struct{}
	wg   sync.WaitGroup
}

// New creates a write queue manager
// New 创建写队列管理器，lg 为 nil 时不输出日志
func New(cfg Config, lg *zap.Logger) *Manager {
	def := DefaultConfig()
	if cfg.QueueCapacity <= 0 {
		cfg.QueueCapacity = def.QueueCapacity
	}
	if cfg.WriteTimeout <= 0 {
		cfg.WriteTimeout = def.WriteTimeout
	}
	if cfg.IdleTimeout <= 0 {
		cfg.IdleTimeout = def.IdleTimeout
	}
	if lg == nil {
		lg = zap.NewNop()
	}
	return &Manager{
		cfg:    cfg,
		logger: lg,
		lanes:  make(map[int64]*lane),
		stop:   make(chan struct{}),
	}
}

// Execute runs fn on the user's lane and waits for its result
// Execute 将 fn 投递到用户队列并等待执行结果
func (m *Manager) Execute(ctx context.Context, uid int64, fn func(context.Context) error) error {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return ErrWriteQueueClosed
	}
	l, ok := m.lanes[uid]
	if !ok {
		l = &lane{uid: uid, ops: make(chan op, m.cfg.QueueCapacity)}
		m.lanes[uid] = l
		m.wg.Add(1)
		go m.run(l)
		m.logger.Debug("write queue lane created", zap.Int64("uid", uid))
	}
	if l.pending >= m.cfg.QueueCapacity {
		m.mu.Unlock()
		return ErrWriteQueueFull
	}
	l.pending++
	m.mu.Unlock()

	result := make(chan error, 1)
	l.ops <- op{ctx: ctx, fn: fn, result: result}

	timer := time.NewTimer(m.cfg.WriteTimeout)
	defer timer.Stop()
	select {
	case err := <-result:
		return err
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return ErrWriteTimeout
	}
}

func (m *Manager) run(l *lane) {
	defer m.wg.Done()
	idle := time.NewTimer(m.cfg.IdleTimeout)
	defer idle.Stop()

	for {
		select {
		case o := <-l.ops:
			m.exec(l, o)
			idle.Reset(m.cfg.IdleTimeout)
		case <-idle.C:
			m.mu.Lock()
			if l.pending == 0 {
				delete(m.lanes, l.uid)
				m.mu.Unlock()
				m.logger.Debug("write queue lane idle, stopped", zap.Int64("uid", l.uid))
				return
			}
			m.mu.Unlock()
			idle.Reset(m.cfg.IdleTimeout)
		case <-m.stop:
			m.mu.Lock()
			n := l.pending
			m.mu.Unlock()
			for i := 0; i < n; i++ {
				m.exec(l, <-l.ops)
			}
			return
		}
	}
}

func (m *Manager) exec(l *lane, o op) {
	defer func() {
		m.mu.Lock()
		l.pending--
		m.mu.Unlock()
	}()
	if err := o.ctx.Err(); err != nil {
		o.result <- err
		return
	}
	o.result <- m.call(o)
}

func (m *Manager) call(o op) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("write queue operation panic: %v", r)
			m.logger.Error("write queue operation panic", zap.Any("panic", r))
		}
	}()
	return o.fn(o.ctx)
}

// QueueCount returns the number of live lanes
// QueueCount 返回当前存活的用户队列数
func (m *Manager) QueueCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.lanes)
}

// Shutdown stops accepting work and drains queued operations
// Shutdown 停止接收新操作，执行完已排队的操作后返回
func (m *Manager) Shutdown(ctx context.Context) error {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return nil
	}
	m.closed = true
	m.mu.Unlock()
	close(m.stop)

	done := make(chan struct{})
	go func() {
		m.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		m.logger.Debug("write queue manager shutdown completed")
		return nil
	case <-ctx.Done():
		m.logger.Warn("write queue manager shutdown timeout")
		return ctx.Err()
	}
}
