package constants

// 投放期（Campaign）状态常量，只能按顺序向前推进
const (
	CampaignStatusPlanning      = "planning"
	CampaignStatusBookingOpen   = "booking_open"
	CampaignStatusBookingClosed = "booking_closed"
	CampaignStatusPrinting      = "printing"
	CampaignStatusMailed        = "mailed"
	CampaignStatusCompleted     = "completed"
)

// CampaignStatusOrder 投放期状态顺序
var CampaignStatusOrder = []string{
	CampaignStatusPlanning,
	CampaignStatusBookingOpen,
	CampaignStatusBookingClosed,
	CampaignStatusPrinting,
	CampaignStatusMailed,
	CampaignStatusCompleted,
}

// 预订主状态
const (
	BookingStatusConfirmed = "confirmed"
	BookingStatusCancelled = "cancelled"
)

// 预订支付状态
const (
	PaymentStatusPending = "pending"
	PaymentStatusPaid    = "paid"
	PaymentStatusFailed  = "failed"
)

// 预订审核状态
const (
	ApprovalStatusPending  = "pending"
	ApprovalStatusApproved = "approved"
	ApprovalStatusRejected = "rejected"
)

// 设计稿状态
const (
	ArtworkStatusPendingUpload = "pending_upload"
	ArtworkStatusUnderReview   = "under_review"
	ArtworkStatusApproved      = "approved"
	ArtworkStatusRejected      = "rejected"
)

// 退款状态
const (
	RefundStatusNoRefund = "no_refund"
	RefundStatusPending  = "pending"
	RefundStatusRefunded = "refunded"
)

// 取消原因
const (
	CancelReasonCustomer = "customer"
	CancelReasonAdmin    = "admin"
	CancelReasonExpired  = "expired"
)

// 定价规则作用域
const (
	PricingRuleScopeGlobal   = "global"
	PricingRuleScopeCampaign = "campaign"
	PricingRuleScopeUser     = "user"
)

// 定价规则类型
const (
	PricingRuleTypeFixedPrice      = "fixed_price"
	PricingRuleTypeDiscountAmount  = "discount_amount"
	PricingRuleTypeDiscountPercent = "discount_percent"
)

// 定价规则状态
const (
	PricingRuleStatusActive   = "active"
	PricingRuleStatusInactive = "inactive"
)

// 报价来源
const (
	PriceSourceUserFixedPrice  = "user_fixed_price"
	PriceSourceLoyaltyDiscount = "loyalty_discount"
	PriceSourceUserRule        = "user_rule"
	PriceSourceCampaignRule    = "campaign_rule"
	PriceSourceGlobalRule      = "global_rule"
	PriceSourceDefault         = "default"
)

// 预订文件类型
const (
	BookingFileArtwork = "artwork"
	BookingFileLogo    = "logo"
	BookingFileImage   = "image"
)

// 槽位占用状态
const (
	SlotStateAvailable = "available"
	SlotStateBooked    = "booked"
	SlotStatePending   = "pending"
)

// 管理端通知类型
const (
	NotificationBookingAwaitingApproval = "booking_awaiting_approval"
	NotificationArtworkAwaitingReview   = "artwork_awaiting_review"
	NotificationRefundPending           = "refund_pending"
	NotificationPaymentFailed           = "payment_failed"
	NotificationBookingExpired          = "booking_expired"
)

// 用户状态
const (
	UserStatusActive   = "active"
	UserStatusDisabled = "disabled"
)

// 支付回调事件
const (
	PaymentEventPaid     = "payment.paid"
	PaymentEventFailed   = "payment.failed"
	PaymentEventRefunded = "refund.completed"
)

// 文件存储驱动
const (
	StorageDriverLocal = "local"
	StorageDriverMinio = "minio"
)

// 队列与任务
const (
	QueueDefault  = "default"
	QueueCritical = "critical"

	TaskBookingExpireCheck  = "booking:expire_check"
	TaskBookingFilesCleanup = "booking:files_cleanup"
)
