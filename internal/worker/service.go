package worker

import (
	"context"
	"errors"

	"github.com/slotmail/internal/config"
	"github.com/slotmail/internal/logger"
	"github.com/slotmail/internal/queue"

	"github.com/hibiken/asynq"
)

// Service 预订异步任务消费服务（超时检查、文件清理）
type Service struct {
	server *asynq.Server
	mux    *asynq.ServeMux
	queues map[string]int
}

// NewService 创建消费服务；队列未启用时返回错误
func NewService(cfg *config.QueueConfig, consumer *Consumer) (*Service, error) {
	if cfg == nil || !cfg.Enabled {
		return nil, errors.New("queue disabled")
	}
	if consumer == nil {
		return nil, errors.New("consumer is nil")
	}
	opt, serverCfg := queue.BuildServerConfig(cfg)
	mux := asynq.NewServeMux()
	consumer.Register(mux)
	return &Service{
		server: asynq.NewServer(opt, serverCfg),
		mux:    mux,
		queues: serverCfg.Queues,
	}, nil
}

// Name 服务名称
func (s *Service) Name() string {
	return "queue_worker"
}

// Start 启动消费者并阻塞到 ctx 结束；信号由应用运行器统一处理
func (s *Service) Start(ctx context.Context) error {
	if s == nil || s.server == nil || s.mux == nil {
		return errors.New("queue worker not initialized")
	}
	if err := s.server.Start(s.mux); err != nil {
		return err
	}
	logger.Infow("queue_worker_started", "queues", s.queues)
	<-ctx.Done()
	return nil
}

// Stop 等待在途任务完成后关闭
func (s *Service) Stop(ctx context.Context) error {
	if s == nil || s.server == nil {
		return nil
	}
	s.server.Shutdown()
	logger.Infow("queue_worker_stopped")
	return nil
}
