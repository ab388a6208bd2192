package models

import "time"

// Industry 广告行业；Unlimited 的行业（如“其他”）不受同格唯一限制
type Industry struct {
	ID        uint      `gorm:"primarykey" json:"id"`                               // 主键
	Name      string    `gorm:"type:varchar(120);uniqueIndex;not null" json:"name"` // 行业名称
	Unlimited bool      `gorm:"not null;default:false" json:"unlimited"`            // 是否允许同格多单
	IsActive  bool      `gorm:"not null;default:true" json:"is_active"`             // 是否启用
	SortOrder int       `gorm:"not null;default:0" json:"sort_order"`               // 排序
	CreatedAt time.Time `json:"created_at"`                                         // 创建时间
	UpdatedAt time.Time `json:"updated_at"`                                         // 更新时间
}

// TableName 指定表名
func (Industry) TableName() string {
	return "industries"
}
