package models

import (
	"time"

	"gorm.io/gorm"
)

// User 客户/管理员账号；令牌由外部身份服务签发，这里只保存业务属性
type User struct {
	ID                        uint           `gorm:"primarykey" json:"id"`                                  // 主键
	Email                     string         `gorm:"uniqueIndex;not null" json:"email"`                     // 邮箱
	DisplayName               string         `gorm:"default:''" json:"display_name"`                        // 昵称
	BusinessName              string         `gorm:"default:''" json:"business_name"`                       // 商家名称
	IsAdmin                   bool           `gorm:"not null;default:false" json:"is_admin"`                // 是否管理员
	Status                    string         `gorm:"default:'active'" json:"status"`                        // 账号状态
	LoyaltySlotsEarned        int            `gorm:"not null;default:0" json:"loyalty_slots_earned"`        // 本年度累计槽位
	LoyaltyDiscountsAvailable int            `gorm:"not null;default:0" json:"loyalty_discounts_available"` // 可用忠诚度折扣
	LoyaltyResetYear          int            `gorm:"not null;default:0" json:"loyalty_reset_year"`          // 计数所属年度
	CreatedAt                 time.Time      `gorm:"index" json:"created_at"`                               // 创建时间
	UpdatedAt                 time.Time      `json:"updated_at"`                                            // 更新时间
	DeletedAt                 gorm.DeletedAt `gorm:"index" json:"-"`                                        // 软删除时间
}

// TableName 指定表名
func (User) TableName() string {
	return "users"
}
