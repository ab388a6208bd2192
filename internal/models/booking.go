package models

import (
	"time"

	"github.com/slotmail/internal/constants"

	"gorm.io/gorm"
)

// Booking 广告槽位预订
type Booking struct {
	ID                     uint           `gorm:"primarykey" json:"id"`                                           // 主键
	BookingNo              string         `gorm:"type:varchar(40);uniqueIndex;not null" json:"booking_no"`        // 预订编号
	UserID                 uint           `gorm:"index;not null" json:"user_id"`                                  // 客户ID
	CampaignID             uint           `gorm:"index:idx_bookings_cell,priority:1;not null" json:"campaign_id"` // 投放期ID
	RouteID                uint           `gorm:"index:idx_bookings_cell,priority:2;not null" json:"route_id"`    // 路线ID
	IndustryID             uint           `gorm:"index:idx_bookings_cell,priority:3;not null" json:"industry_id"` // 行业ID
	IndustrySubcategory    string         `gorm:"type:varchar(120)" json:"industry_subcategory,omitempty"`        // 行业细分/标签
	SlotExclusive          bool           `gorm:"not null;default:true" json:"slot_exclusive"`                    // 是否独占槽位（非“其他”行业）
	Quantity               int            `gorm:"not null;default:1" json:"quantity"`                             // 槽位数量 1-4
	Amount                 Money          `gorm:"type:decimal(20,2);not null;default:0" json:"amount"`            // 应付/实付金额
	PriceSource            string         `gorm:"type:varchar(40);not null" json:"price_source"`                  // 报价来源
	Status                 string         `gorm:"index;not null" json:"status"`                                   // 主状态 confirmed/cancelled
	PaymentStatus          string         `gorm:"index;not null" json:"payment_status"`                           // 支付状态
	ApprovalStatus         string         `gorm:"index;not null" json:"approval_status"`                          // 审核状态
	ArtworkStatus          string         `gorm:"index;not null" json:"artwork_status"`                           // 设计稿状态
	PendingSince           *time.Time     `gorm:"index" json:"pending_since,omitempty"`                           // 进入待支付的时间
	PaidAt                 *time.Time     `json:"paid_at,omitempty"`                                              // 支付时间
	PaymentRef             string         `gorm:"type:varchar(120);index" json:"payment_ref,omitempty"`           // 网关流水号
	CancelledAt            *time.Time     `gorm:"index" json:"cancelled_at,omitempty"`                            // 取消时间
	CancelReason           string         `gorm:"type:varchar(40)" json:"cancel_reason,omitempty"`                // 取消原因
	RefundAmount           Money          `gorm:"type:decimal(20,2);not null;default:0" json:"refund_amount"`     // 退款金额
	RefundStatus           string         `gorm:"type:varchar(20);index" json:"refund_status,omitempty"`          // 退款状态
	RefundRef              string         `gorm:"type:varchar(120)" json:"refund_ref,omitempty"`                  // 退款流水号
	RefundedAt             *time.Time     `json:"refunded_at,omitempty"`                                          // 退款完成时间
	PriceOverride          *Money         `gorm:"type:decimal(20,2)" json:"price_override,omitempty"`             // 管理员改价
	PriceOverrideNote      string         `gorm:"type:varchar(500)" json:"price_override_note,omitempty"`         // 改价备注
	LoyaltyDiscountApplied bool           `gorm:"not null;default:false" json:"loyalty_discount_applied"`         // 是否占用了忠诚度折扣
	ApprovedAt             *time.Time     `json:"approved_at,omitempty"`                                          // 审核通过时间
	RejectionNote          string         `gorm:"type:varchar(500)" json:"rejection_note,omitempty"`              // 驳回说明
	RejectedAt             *time.Time     `json:"rejected_at,omitempty"`                                          // 驳回时间
	ArtworkRejectionReason string         `gorm:"type:varchar(500)" json:"artwork_rejection_reason,omitempty"`    // 设计稿驳回原因
	ArtworkReviewedAt      *time.Time     `json:"artwork_reviewed_at,omitempty"`                                  // 设计稿审核时间
	ArtworkPath            *string        `gorm:"type:varchar(500)" json:"artwork_path,omitempty"`                // 设计稿文件
	LogoPath               *string        `gorm:"type:varchar(500)" json:"logo_path,omitempty"`                   // Logo 文件
	ImagePath              *string        `gorm:"type:varchar(500)" json:"image_path,omitempty"`                  // 配图文件
	CreatedAt              time.Time      `gorm:"index" json:"created_at"`                                        // 创建时间
	UpdatedAt              time.Time      `gorm:"index" json:"updated_at"`                                        // 更新时间
	DeletedAt              gorm.DeletedAt `gorm:"index" json:"-"`                                                 // 软删除时间

	Campaign *Campaign `gorm:"foreignKey:CampaignID" json:"campaign,omitempty"` // 投放期
	Route    *Route    `gorm:"foreignKey:RouteID" json:"route,omitempty"`       // 路线
	Industry *Industry `gorm:"foreignKey:IndustryID" json:"industry,omitempty"` // 行业
}

// TableName 指定表名
func (Booking) TableName() string {
	return "bookings"
}

// IsCancelled 是否已取消
func (b *Booking) IsCancelled() bool {
	return b != nil && b.Status == constants.BookingStatusCancelled
}

// IsPaid 是否已支付
func (b *Booking) IsPaid() bool {
	return b != nil && b.PaymentStatus == constants.PaymentStatusPaid
}

// EffectiveAmount 改价优先于报价
func (b *Booking) EffectiveAmount() Money {
	if b == nil {
		return Money{}
	}
	if b.PriceOverride != nil {
		return *b.PriceOverride
	}
	return b.Amount
}

// FilePaths 返回已上传的文件路径
func (b *Booking) FilePaths() []string {
	if b == nil {
		return nil
	}
	paths := make([]string, 0, 3)
	for _, p := range []*string{b.ArtworkPath, b.LogoPath, b.ImagePath} {
		if p != nil && *p != "" {
			paths = append(paths, *p)
		}
	}
	return paths
}

// HasFiles 是否仍持有文件引用
func (b *Booking) HasFiles() bool {
	return len(b.FilePaths()) > 0
}
