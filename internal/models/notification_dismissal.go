package models

import "time"

// NotificationDismissal 管理端已忽略的通知
type NotificationDismissal struct {
	ID          uint      `gorm:"primarykey" json:"id"`                                                            // 主键
	Kind        string    `gorm:"type:varchar(60);uniqueIndex:idx_dismissal_item,priority:1;not null" json:"kind"` // 通知类型
	BookingID   uint      `gorm:"uniqueIndex:idx_dismissal_item,priority:2;not null" json:"booking_id"`            // 预订ID
	DismissedBy uint      `gorm:"not null;default:0" json:"dismissed_by"`                                          // 操作人
	CreatedAt   time.Time `json:"created_at"`                                                                      // 忽略时间
}

// TableName 指定表名
func (NotificationDismissal) TableName() string {
	return "notification_dismissals"
}
