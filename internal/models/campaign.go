package models

import (
	"time"

	"gorm.io/gorm"
)

// Campaign 投放期（一期邮寄广告）
type Campaign struct {
	ID                  uint           `gorm:"primarykey" json:"id"`                                      // 主键
	Name                string         `gorm:"type:varchar(200);not null" json:"name"`                    // 名称
	MailDate            time.Time      `gorm:"index;not null" json:"mail_date"`                           // 寄送日期
	PrintDeadline       time.Time      `gorm:"not null" json:"print_deadline"`                            // 印刷截止日期（早于寄送日期）
	Status              string         `gorm:"index;not null;default:'planning'" json:"status"`           // 状态
	TotalSlots          int            `gorm:"not null;default:0" json:"total_slots"`                     // 总槽位数 = 路线数 × 行业数
	BookedSlots         int            `gorm:"not null;default:0" json:"booked_slots"`                    // 已售槽位数
	Revenue             Money          `gorm:"type:decimal(20,2);not null;default:0" json:"revenue"`      // 累计收入
	BaseSlotPrice       *Money         `gorm:"type:decimal(20,2)" json:"base_slot_price,omitempty"`       // 首个槽位价格覆盖
	AdditionalSlotPrice *Money         `gorm:"type:decimal(20,2)" json:"additional_slot_price,omitempty"` // 追加槽位价格覆盖
	Notes               string         `gorm:"type:text" json:"notes,omitempty"`                          // 备注
	CreatedAt           time.Time      `gorm:"index" json:"created_at"`                                   // 创建时间
	UpdatedAt           time.Time      `json:"updated_at"`                                                // 更新时间
	DeletedAt           gorm.DeletedAt `gorm:"index" json:"-"`                                            // 软删除时间

	Routes     []Route    `gorm:"many2many:campaign_routes;" json:"routes,omitempty"`         // 覆盖路线
	Industries []Industry `gorm:"many2many:campaign_industries;" json:"industries,omitempty"` // 开放行业
}

// TableName 指定表名
func (Campaign) TableName() string {
	return "campaigns"
}

// HasRoute 判断投放期是否包含路线
func (c *Campaign) HasRoute(routeID uint) bool {
	if c == nil {
		return false
	}
	for _, route := range c.Routes {
		if route.ID == routeID {
			return true
		}
	}
	return false
}

// FindIndustry 查找投放期已开放的行业
func (c *Campaign) FindIndustry(industryID uint) *Industry {
	if c == nil {
		return nil
	}
	for i := range c.Industries {
		if c.Industries[i].ID == industryID {
			return &c.Industries[i]
		}
	}
	return nil
}
