package repository

import "time"

// CampaignListFilter 查询投放期列表的过滤条件
type CampaignListFilter struct {
	Page     int
	PageSize int
	Statuses []string
	MailFrom *time.Time
}

// BookingListFilter 查询预订列表的过滤条件
type BookingListFilter struct {
	Page           int
	PageSize       int
	UserID         uint
	CampaignID     uint
	BookingNo      string
	Status         string
	PaymentStatus  string
	ApprovalStatus string
	ArtworkStatus  string
	RefundStatus   string
	CancelReason   string
	UpdatedFrom    *time.Time
	CancelledFrom  *time.Time
	WithRelations  bool
}

// PricingRuleListFilter 查询定价规则列表的过滤条件
type PricingRuleListFilter struct {
	Page       int
	PageSize   int
	Scope      string
	CampaignID uint
	UserID     uint
	Status     string
}

// BookingGuard 条件更新的前置状态约束，零值字段不参与过滤
type BookingGuard struct {
	NotCancelled     bool
	PaymentStatuses  []string
	ApprovalStatuses []string
	ArtworkStatuses  []string
	RefundStatuses   []string
	Cancelled        bool
}
