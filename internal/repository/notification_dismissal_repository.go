package repository

import (
	"context"
	"strconv"

	"github.com/slotmail/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// NotificationDismissalRepository 通知忽略记录数据访问接口
type NotificationDismissalRepository interface {
	Create(dismissal *models.NotificationDismissal) error
	ListKeys(bookingIDs []uint) (map[string]struct{}, error)
	WithContext(ctx context.Context) *GormNotificationDismissalRepository
}

// GormNotificationDismissalRepository GORM 实现
type GormNotificationDismissalRepository struct {
	db *gorm.DB
}

// NewNotificationDismissalRepository 创建通知忽略仓库
func NewNotificationDismissalRepository(db *gorm.DB) *GormNotificationDismissalRepository {
	return &GormNotificationDismissalRepository{db: db}
}

// WithContext 绑定请求上下文
func (r *GormNotificationDismissalRepository) WithContext(ctx context.Context) *GormNotificationDismissalRepository {
	if ctx == nil {
		return r
	}
	return &GormNotificationDismissalRepository{db: r.db.WithContext(ctx)}
}

// Create 记录忽略，重复忽略视为成功
func (r *GormNotificationDismissalRepository) Create(dismissal *models.NotificationDismissal) error {
	return r.db.Clauses(clause.OnConflict{DoNothing: true}).Create(dismissal).Error
}

// ListKeys 返回已忽略条目的键集合，键格式为 DismissalKey(kind, bookingID)
func (r *GormNotificationDismissalRepository) ListKeys(bookingIDs []uint) (map[string]struct{}, error) {
	keys := make(map[string]struct{})
	if len(bookingIDs) == 0 {
		return keys, nil
	}
	var rows []models.NotificationDismissal
	if err := r.db.Where("booking_id IN ?", bookingIDs).Find(&rows).Error; err != nil {
		return nil, err
	}
	for _, row := range rows {
		keys[DismissalKey(row.Kind, row.BookingID)] = struct{}{}
	}
	return keys, nil
}

// DismissalKey 通知条目的唯一键
func DismissalKey(kind string, bookingID uint) string {
	return kind + ":" + strconv.FormatUint(uint64(bookingID), 10)
}
