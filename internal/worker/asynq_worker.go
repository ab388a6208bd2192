package worker

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/slotmail/internal/logger"
	"github.com/slotmail/internal/provider"
	"github.com/slotmail/internal/queue"
	"github.com/slotmail/internal/service"

	"github.com/hibiken/asynq"
)

// Consumer 异步任务消费者
type Consumer struct {
	*provider.Container
}

// NewConsumer 创建消费者
func NewConsumer(c *provider.Container) *Consumer {
	return &Consumer{
		Container: c,
	}
}

// Register 注册消费者
func (c *Consumer) Register(mux *asynq.ServeMux) {
	if c == nil || mux == nil {
		logger.Debugw("worker_register_skip_nil", "consumer_nil", c == nil, "mux_nil", mux == nil)
		return
	}
	mux.HandleFunc(queue.TaskBookingExpireCheck, c.handleBookingExpireCheck)
	mux.HandleFunc(queue.TaskBookingFilesCleanup, c.handleBookingFilesCleanup)
}

func (c *Consumer) handleBookingExpireCheck(ctx context.Context, task *asynq.Task) error {
	if c == nil || c.Container == nil || task == nil {
		logger.Debugw("worker_booking_expire_check_skip_nil", "consumer_nil", c == nil, "task_nil", task == nil)
		return nil
	}
	var payload queue.BookingExpireCheckPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		logger.Warnw("worker_booking_expire_check_unmarshal_failed", "error", err)
		return err
	}
	if payload.BookingID == 0 {
		logger.Debugw("worker_booking_expire_check_skip_invalid_payload", "booking_id", payload.BookingID)
		return nil
	}
	if c.ExpirationService == nil {
		logger.Warnw("worker_booking_expire_check_skip_service_nil", "booking_id", payload.BookingID)
		return nil
	}
	outcome, err := c.ExpirationService.ReapBooking(ctx, payload.BookingID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrBookingNotFound):
			logger.Debugw("worker_booking_expire_check_skip_not_found", "booking_id", payload.BookingID)
			return nil
		case errors.Is(err, service.ErrUpstreamFailure):
			logger.Warnw("worker_booking_expire_check_upstream_failed", "booking_id", payload.BookingID, "error", err)
			return err
		default:
			logger.Warnw("worker_booking_expire_check_failed", "booking_id", payload.BookingID, "error", err)
			return nil
		}
	}
	if outcome.Reaped {
		logger.Infow("worker_booking_expired", "booking_id", payload.BookingID, "files_deleted", outcome.FilesDeleted)
	}
	return nil
}

func (c *Consumer) handleBookingFilesCleanup(ctx context.Context, task *asynq.Task) error {
	if c == nil || c.Container == nil || task == nil {
		logger.Debugw("worker_booking_files_cleanup_skip_nil", "consumer_nil", c == nil, "task_nil", task == nil)
		return nil
	}
	var payload queue.BookingFilesCleanupPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		logger.Warnw("worker_booking_files_cleanup_unmarshal_failed", "error", err)
		return err
	}
	if payload.BookingID == 0 || len(payload.Paths) == 0 {
		logger.Debugw("worker_booking_files_cleanup_skip_invalid_payload", "booking_id", payload.BookingID, "paths", len(payload.Paths))
		return nil
	}
	if c.BookingService == nil {
		logger.Warnw("worker_booking_files_cleanup_skip_service_nil", "booking_id", payload.BookingID)
		return nil
	}
	deleted, err := c.BookingService.CleanupFiles(ctx, payload.BookingID, payload.Paths, false)
	if err != nil {
		logger.Warnw("worker_booking_files_cleanup_failed", "booking_id", payload.BookingID, "error", err)
		if errors.Is(err, service.ErrUpstreamFailure) {
			return err
		}
		return nil
	}
	logger.Debugw("worker_booking_files_cleanup_done", "booking_id", payload.BookingID, "deleted", deleted)
	return nil
}
