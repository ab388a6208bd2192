package queue

import (
	"encoding/json"

	"github.com/slotmail/internal/constants"

	"github.com/hibiken/asynq"
)

const (
	// TaskBookingExpireCheck 预订超时检查任务
	TaskBookingExpireCheck = constants.TaskBookingExpireCheck
	// TaskBookingFilesCleanup 预订文件清理任务
	TaskBookingFilesCleanup = constants.TaskBookingFilesCleanup
)

// BookingExpireCheckPayload 超时检查任务载荷
type BookingExpireCheckPayload struct {
	BookingID uint `json:"booking_id"`
}

// BookingFilesCleanupPayload 文件清理任务载荷；Paths 为取消时捕获的文件路径
type BookingFilesCleanupPayload struct {
	BookingID uint     `json:"booking_id"`
	Paths     []string `json:"paths"`
}

// NewBookingExpireCheckTask 创建超时检查任务
func NewBookingExpireCheckTask(payload BookingExpireCheckPayload) (*asynq.Task, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskBookingExpireCheck, body), nil
}

// NewBookingFilesCleanupTask 创建文件清理任务
func NewBookingFilesCleanupTask(payload BookingFilesCleanupPayload) (*asynq.Task, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskBookingFilesCleanup, body), nil
}
