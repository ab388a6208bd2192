package worker

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/slotmail/internal/cache"
	"github.com/slotmail/internal/logger"
	"github.com/slotmail/internal/service"
)

// ErrReaperAlreadyRunning 同一个回收器重复启动
var ErrReaperAlreadyRunning = errors.New("reaper already running")

// StaleReaper 单次回收入口
type StaleReaper interface {
	ReapStale(ctx context.Context) (service.ReapSummary, error)
}

// ReaperOptions 回收器参数
type ReaperOptions struct {
	Interval time.Duration
	// Lease 非空时每轮先取得跨进程租约，拿不到则跳过本轮
	Lease *cache.Lease
}

// Reaper 超时未支付预订回收器，由进程持有并绑定启动/停止生命周期
type Reaper struct {
	target   StaleReaper
	interval time.Duration
	lease    *cache.Lease

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

// NewReaper 创建回收器
func NewReaper(target StaleReaper, opts ReaperOptions) *Reaper {
	if opts.Interval <= 0 {
		opts.Interval = time.Minute
	}
	return &Reaper{target: target, interval: opts.Interval, lease: opts.Lease}
}

// Start 立即执行一轮，之后按固定间隔执行；运行中再次启动返回 ErrReaperAlreadyRunning
func (r *Reaper) Start(ctx context.Context) error {
	if r == nil || r.target == nil {
		return errors.New("reaper not initialized")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.cancel != nil {
		return ErrReaperAlreadyRunning
	}
	runCtx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	r.cancel = cancel
	r.done = done
	go r.loop(runCtx, done)
	logger.Infow("reaper_started", "interval", r.interval.String(), "lease", r.lease != nil)
	return nil
}

// Stop 停止定时器并等待当前一轮结束；超时返回时旧循环仍持有运行标记，直到它真正退出
func (r *Reaper) Stop(ctx context.Context) error {
	if r == nil {
		return nil
	}
	r.mu.Lock()
	cancel, done := r.cancel, r.done
	r.mu.Unlock()
	if cancel == nil {
		return nil
	}
	cancel()
	select {
	case <-done:
		logger.Infow("reaper_stopped")
		return nil
	case <-ctx.Done():
		logger.Warnw("reaper_stop_timeout", "error", ctx.Err())
		return ctx.Err()
	}
}

// Running 是否运行中
func (r *Reaper) Running() bool {
	if r == nil {
		return false
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.cancel != nil
}

func (r *Reaper) loop(ctx context.Context, done chan struct{}) {
	defer close(done)
	defer r.exit(ctx, done)
	r.tick(ctx)
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.tick(ctx)
		}
	}
}

// exit 循环真正结束后才释放租约并清除运行标记
func (r *Reaper) exit(ctx context.Context, done chan struct{}) {
	if r.lease != nil {
		if err := r.lease.Release(context.WithoutCancel(ctx)); err != nil {
			logger.Warnw("reaper_lease_release_failed", "error", err)
		}
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.done == done {
		r.cancel, r.done = nil, nil
	}
}

func (r *Reaper) tick(ctx context.Context) {
	defer func() {
		if rec := recover(); rec != nil {
			logger.Errorw("reaper_tick_panic", "panic", rec)
		}
	}()
	if ctx.Err() != nil {
		return
	}
	if r.lease != nil {
		held, err := r.lease.Acquire(ctx)
		if err != nil {
			logger.Warnw("reaper_lease_acquire_failed", "error", err)
			return
		}
		if !held {
			logger.Debugw("reaper_lease_held_elsewhere", "key", r.lease.Key())
			return
		}
	}
	if _, err := r.target.ReapStale(ctx); err != nil {
		logger.Warnw("reaper_tick_failed", "error", err)
	}
}

// ReaperService 把回收器接入应用服务生命周期
type ReaperService struct {
	reaper *Reaper
}

// NewReaperService 创建回收器服务
func NewReaperService(reaper *Reaper) *ReaperService {
	return &ReaperService{reaper: reaper}
}

// Name 服务名称
func (s *ReaperService) Name() string {
	return "reaper"
}

// Start 启动回收器并阻塞到上下文结束
func (s *ReaperService) Start(ctx context.Context) error {
	if err := s.reaper.Start(ctx); err != nil {
		return err
	}
	<-ctx.Done()
	return nil
}

// Stop 停止回收器
func (s *ReaperService) Stop(ctx context.Context) error {
	return s.reaper.Stop(ctx)
}
