package models

import "time"

// Route 邮寄路线
type Route struct {
	ID         uint      `gorm:"primarykey" json:"id"`                               // 主键
	ZipCode    string    `gorm:"type:varchar(16);index;not null" json:"zip_code"`    // 邮编
	Name       string    `gorm:"type:varchar(120);uniqueIndex;not null" json:"name"` // 路线名称
	Households int       `gorm:"not null;default:0" json:"households"`               // 覆盖户数
	IsActive   bool      `gorm:"not null;default:true" json:"is_active"`             // 是否启用
	CreatedAt  time.Time `json:"created_at"`                                         // 创建时间
	UpdatedAt  time.Time `json:"updated_at"`                                         // 更新时间
}

// TableName 指定表名
func (Route) TableName() string {
	return "routes"
}
