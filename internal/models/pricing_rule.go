package models

import "time"

// PricingRule 定价规则
type PricingRule struct {
	ID          uint      `gorm:"primarykey" json:"id"`                               // 主键
	Name        string    `gorm:"type:varchar(120);not null" json:"name"`             // 名称
	Scope       string    `gorm:"type:varchar(20);index;not null" json:"scope"`       // 作用域 global/campaign/user
	CampaignID  *uint     `gorm:"index" json:"campaign_id,omitempty"`                 // 作用投放期
	UserID      *uint     `gorm:"index" json:"user_id,omitempty"`                     // 作用用户
	Type        string    `gorm:"type:varchar(30);not null" json:"type"`              // 类型
	Value       Money     `gorm:"type:decimal(20,2);not null;default:0" json:"value"` // 金额或百分比
	Priority    int       `gorm:"not null;default:0" json:"priority"`                 // 优先级（越大越优先）
	UsageLimit  *int      `json:"usage_limit,omitempty"`                              // 使用上限
	UsageCount  int       `gorm:"not null;default:0" json:"usage_count"`              // 已使用次数
	Status      string    `gorm:"type:varchar(20);index;not null" json:"status"`      // 状态
	Description string    `gorm:"type:varchar(500)" json:"description,omitempty"`     // 说明
	CreatedAt   time.Time `json:"created_at"`                                         // 创建时间
	UpdatedAt   time.Time `json:"updated_at"`                                         // 更新时间
}

// TableName 指定表名
func (PricingRule) TableName() string {
	return "pricing_rules"
}

// PricingRuleApplication 定价规则使用记录
type PricingRuleApplication struct {
	ID             uint      `gorm:"primarykey" json:"id"`                                                        // 主键
	PricingRuleID  uint      `gorm:"uniqueIndex:idx_rule_application,priority:1;not null" json:"pricing_rule_id"` // 规则ID
	BookingID      uint      `gorm:"uniqueIndex:idx_rule_application,priority:2;not null" json:"booking_id"`      // 预订ID
	UserID         uint      `gorm:"index;not null" json:"user_id"`                                               // 用户ID
	DiscountAmount Money     `gorm:"type:decimal(20,2);not null;default:0" json:"discount_amount"`                // 优惠金额
	CreatedAt      time.Time `json:"created_at"`                                                                  // 创建时间
}

// TableName 指定表名
func (PricingRuleApplication) TableName() string {
	return "pricing_rule_applications"
}
