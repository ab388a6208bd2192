package app

import (
	"errors"

	"github.com/slotmail/internal/cache"
	"github.com/slotmail/internal/config"
	"github.com/slotmail/internal/logger"
	"github.com/slotmail/internal/provider"
	"github.com/slotmail/internal/router"
	"github.com/slotmail/internal/worker"
)

// BuildRunner 构建服务运行器
func BuildRunner(cfg *config.Config, mode string) (*Runner, error) {
	if cfg == nil {
		return nil, errors.New("config is nil")
	}

	container, err := provider.NewContainer(cfg)
	if err != nil {
		return nil, err
	}

	var services []Service

	// 初始化 HTTP 服务
	if servesHTTP(mode) {
		engine := router.SetupRouter(cfg, container)
		addr := cfg.Server.Host + ":" + cfg.Server.Port
		services = append(services, NewHTTPService(addr, engine))
	}

	// 初始化 Worker 服务：超时回收常驻，队列消费者按配置启用
	if ownsReaper(mode) {
		services = append(services, worker.NewReaperService(buildReaper(cfg, container)))
		if cfg.Queue.Enabled {
			consumer := worker.NewConsumer(container)
			workerService, err := worker.NewService(&cfg.Queue, consumer)
			if err != nil {
				container.Close()
				return nil, err
			}
			services = append(services, workerService)
		}
	}

	if len(services) == 0 {
		container.Close()
		return nil, errors.New("no services initialized (check mode and config)")
	}

	runner := NewRunner(services...)
	runner.OnShutdown(container.Close)
	return runner, nil
}

// buildReaper 多实例部署时通过 Redis 租约保证同一时刻只有一个回收者
func buildReaper(cfg *config.Config, c *provider.Container) *worker.Reaper {
	interval := cfg.Booking.ReaperInterval()
	opts := worker.ReaperOptions{Interval: interval}
	if cfg.Booking.ReaperLeaseEnabled {
		if cache.Enabled() {
			opts.Lease = cache.NewLease(cache.Client(), "reaper", 2*interval)
		} else {
			logger.Warnw("reaper_lease_disabled", "reason", "redis_not_enabled")
		}
	}
	return worker.NewReaper(c.ExpirationService, opts)
}

// Run 应用启动入口
func Run(opts Options) error {
	opts = normalizeOptions(opts)
	if opts.Config == nil {
		return errors.New("config is nil")
	}

	runner, err := BuildRunner(opts.Config, opts.Mode)
	if err != nil {
		return err
	}

	addr := opts.Config.Server.Host + ":" + opts.Config.Server.Port
	opts.Logger.Infow("app_start", "addr", addr, "mode", opts.Mode)
	return RunWithOptions(runner, opts)
}
