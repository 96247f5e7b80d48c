// Package workerpool 固定数量 worker 的任务池，用于限制后台任务并发
package workerpool

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/pkg/errors"
	"go.uber.org/zap"
)

var (
	// ErrWorkerPoolFull 任务队列已满
	ErrWorkerPoolFull = errors.New("worker pool queue is full")
	// ErrWorkerPoolClosed Worker Pool 已关闭
	ErrWorkerPoolClosed = errors.New("worker pool is closed")
)

// Config Worker Pool 配置
type Config struct {
	// MaxWorkers 并发 worker 数量
	MaxWorkers int
	// QueueSize 任务队列大小
	QueueSize int
}

// DefaultConfig 返回默认配置
func DefaultConfig() Config {
	return Config{
		MaxWorkers: 8,
		QueueSize:  256,
	}
}

type task struct {
	ctx  context.Context
	fn   func(context.Context) error
	done chan error
}

// Pool 固定 worker 数量的任务池
type Pool struct {
	cfg    Config
	logger *zap.Logger

	tasks  chan task
	wg     sync.WaitGroup
	active atomic.Int64

	mu     sync.RWMutex
	closed bool
}

// New 创建并启动 Worker Pool，lg 为 nil 时不输出日志
func New(cfg Config, lg *zap.Logger) *Pool {
	def := DefaultConfig()
	if cfg.MaxWorkers <= 0 {
		cfg.MaxWorkers = def.MaxWorkers
	}
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = def.QueueSize
	}
	if lg == nil {
		lg = zap.NewNop()
	}

	p := &Pool{
		cfg:    cfg,
		logger: lg,
		tasks:  make(chan task, cfg.QueueSize),
	}
	for i := 0; i < cfg.MaxWorkers; i++ {
		p.wg.Add(1)
		go p.worker()
	}
	p.logger.Debug("worker pool started",
		zap.Int("maxWorkers", cfg.MaxWorkers),
		zap.Int("queueSize", cfg.QueueSize))
	return p
}

func (p *Pool) worker() {
	defer p.wg.Done()
	for t := range p.tasks {
		err := p.run(t)
		if t.done != nil {
			t.done <- err
		} else if err != nil {
			p.logger.Warn("worker pool task failed", zap.Error(err))
		}
	}
}

func (p *Pool) run(t task) (err error) {
	p.active.Add(1)
	defer p.active.Add(-1)
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("worker pool task panic: %v", r)
		}
	}()
	if err := t.ctx.Err(); err != nil {
		return err
	}
	return t.fn(t.ctx)
}

// enqueue 投递任务，wait 为 true 时队列满则阻塞等待
func (p *Pool) enqueue(t task, wait bool) error {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return ErrWorkerPoolClosed
	}
	if !wait {
		select {
		case p.tasks <- t:
			return nil
		default:
			return ErrWorkerPoolFull
		}
	}
	select {
	case p.tasks <- t:
		return nil
	case <-t.ctx.Done():
		return t.ctx.Err()
	}
}

// Submit 提交任务并等待执行结果
func (p *Pool) Submit(ctx context.Context, fn func(context.Context) error) error {
	done := make(chan error, 1)
	if err := p.enqueue(task{ctx: ctx, fn: fn, done: done}, false); err != nil {
		return err
	}
	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// SubmitAsync 提交任务后立即返回，任务错误只记录日志
func (p *Pool) SubmitAsync(ctx context.Context, fn func(context.Context) error) error {
	return p.enqueue(task{ctx: ctx, fn: fn}, false)
}

// ActiveCount 正在执行的任务数
func (p *Pool) ActiveCount() int64 {
	return p.active.Load()
}

// QueuedCount 队列中等待的任务数
func (p *Pool) QueuedCount() int {
	return len(p.tasks)
}

// Shutdown 停止接收新任务并等待已入队任务执行完毕
func (p *Pool) Shutdown(ctx context.Context) error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil
	}
	p.closed = true
	close(p.tasks)
	p.mu.Unlock()

	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		p.logger.Debug("worker pool shutdown completed")
		return nil
	case <-ctx.Done():
		p.logger.Warn("worker pool shutdown timeout", zap.Int64("active", p.active.Load()))
		return ctx.Err()
	}
}

// Group 一组在 Pool 上并发执行的任务
type Group struct {
	pool *Pool
	ctx  context.Context

	wg   sync.WaitGroup
	mu   sync.Mutex
	errs []error
}

// NewGroup 创建任务组，队列满时 Go 会阻塞等待
func (p *Pool) NewGroup(ctx context.Context) *Group {
	return &Group{pool: p, ctx: ctx}
}

func (g *Group) record(err error) {
	if err == nil {
		return
	}
	g.mu.Lock()
	g.errs = append(g.errs, err)
	g.mu.Unlock()
}

// Go 向组内提交一个任务
func (g *Group) Go(fn func(context.Context) error) {
	g.wg.Add(1)
	done := make(chan error, 1)
	if err := g.pool.enqueue(task{ctx: g.ctx, fn: fn, done: done}, true); err != nil {
		g.record(err)
		g.wg.Done()
		return
	}
	go func() {
		defer g.wg.Done()
		g.record(<-done)
	}()
}

// Wait 等待组内全部任务结束，返回合并后的错误
func (g *Group) Wait() error {
	g.wg.Wait()
	g.mu.Lock()
	defer g.mu.Unlock()
	return joinErrors(g.errs)
}

func joinErrors(errs []error) error {
	switch len(errs) {
	case 0:
		return nil
	case 1:
		return errs[0]
	}
	msg := errs[0].Error()
	for _, err := range errs[1:] {
		msg += "; " + err.Error()
	}
	return errors.Errorf("%d tasks failed: %s", len(errs), msg)
}
