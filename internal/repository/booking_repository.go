package repository

import (
	"context"
	"errors"
	"time"

	"github.com/slotmail/internal/constants"
	"github.com/slotmail/internal/models"

	"gorm.io/gorm"
)

// BookingRepository 预订数据访问接口
type BookingRepository interface {
	Create(booking *models.Booking) error
	GetByID(id uint) (*models.Booking, error)
	GetByIDForUpdate(id uint) (*models.Booking, error)
	GetByIDAndUser(id uint, userID uint) (*models.Booking, error)
	List(filter BookingListFilter) ([]models.Booking, int64, error)
	ListActiveByCampaign(campaignID uint) ([]models.Booking, error)
	FindActivePaidInCell(campaignID, routeID, industryID, excludeID uint) (*models.Booking, error)
	ListStalePending(before time.Time, limit int) ([]models.Booking, error)
	UpdateGuarded(id uint, guard BookingGuard, updates map[string]interface{}) (bool, error)
	Delete(id uint) error
	WithTx(tx *gorm.DB) *GormBookingRepository
	WithContext(ctx context.Context) *GormBookingRepository
}

// GormBookingRepository GORM 实现
type GormBookingRepository struct {
	db *gorm.DB
}

// NewBookingRepository 创建预订仓库
func NewBookingRepository(db *gorm.DB) *GormBookingRepository {
	return &GormBookingRepository{db: db}
}

// WithTx 绑定事务
func (r *GormBookingRepository) WithTx(tx *gorm.DB) *GormBookingRepository {
	if tx == nil {
		return r
	}
	return &GormBookingRepository{db: tx}
}

// WithContext 绑定请求上下文（超时/取消）
func (r *GormBookingRepository) WithContext(ctx context.Context) *GormBookingRepository {
	if ctx == nil {
		return r
	}
	return &GormBookingRepository{db: r.db.WithContext(ctx)}
}

// Create 创建预订
func (r *GormBookingRepository) Create(booking *models.Booking) error {
	return r.db.Create(booking).Error
}

// GetByID 根据 ID 获取预订（含投放期、路线、行业）
func (r *GormBookingRepository) GetByID(id uint) (*models.Booking, error) {
	var booking models.Booking
	if err := r.db.Preload("Campaign").Preload("Route").Preload("Industry").First(&booking, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &booking, nil
}

// GetByIDForUpdate 事务内加锁读取预订
func (r *GormBookingRepository) GetByIDForUpdate(id uint) (*models.Booking, error) {
	var booking models.Booking
	if err := forUpdate(r.db).First(&booking, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &booking, nil
}

// GetByIDAndUser 获取用户自己的预订
func (r *GormBookingRepository) GetByIDAndUser(id uint, userID uint) (*models.Booking, error) {
	var booking models.Booking
	err := r.db.Preload("Campaign").Preload("Route").Preload("Industry").
		Where("id = ? AND user_id = ?", id, userID).
		First(&booking).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &booking, nil
}

// List 按条件分页查询预订
func (r *GormBookingRepository) List(filter BookingListFilter) ([]models.Booking, int64, error) {
	query := r.db.Model(&models.Booking{})
	if filter.UserID != 0 {
		query = query.Where("user_id = ?", filter.UserID)
	}
	if filter.CampaignID != 0 {
		query = query.Where("campaign_id = ?", filter.CampaignID)
	}
	if filter.BookingNo != "" {
		query = query.Where("booking_no = ?", filter.BookingNo)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.PaymentStatus != "" {
		query = query.Where("payment_status = ?", filter.PaymentStatus)
	}
	if filter.ApprovalStatus != "" {
		query = query.Where("approval_status = ?", filter.ApprovalStatus)
	}
	if filter.ArtworkStatus != "" {
		query = query.Where("artwork_status = ?", filter.ArtworkStatus)
	}
	if filter.RefundStatus != "" {
		query = query.Where("refund_status = ?", filter.RefundStatus)
	}
	if filter.CancelReason != "" {
		query = query.Where("cancel_reason = ?", filter.CancelReason)
	}
	if filter.UpdatedFrom != nil {
		query = query.Where("updated_at >= ?", *filter.UpdatedFrom)
	}
	if filter.CancelledFrom != nil {
		query = query.Where("cancelled_at >= ?", *filter.CancelledFrom)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	query = applyPagination(query, filter.Page, filter.PageSize)
	if filter.WithRelations {
		query = query.Preload("Campaign").Preload("Route").Preload("Industry")
	}
	var bookings []models.Booking
	if err := query.Order("id desc").Find(&bookings).Error; err != nil {
		return nil, 0, err
	}
	return bookings, total, nil
}

// ListActiveByCampaign 获取投放期内全部未取消预订
func (r *GormBookingRepository) ListActiveByCampaign(campaignID uint) ([]models.Booking, error) {
	var bookings []models.Booking
	if err := r.db.Where("campaign_id = ? AND status <> ?", campaignID, constants.BookingStatusCancelled).
		Order("id asc").
		Find(&bookings).Error; err != nil {
		return nil, err
	}
	return bookings, nil
}

// FindActivePaidInCell 查找占用格子的有效已支付预订
func (r *GormBookingRepository) FindActivePaidInCell(campaignID, routeID, industryID, excludeID uint) (*models.Booking, error) {
	query := r.db.Where(
		"campaign_id = ? AND route_id = ? AND industry_id = ? AND status <> ? AND payment_status = ?",
		campaignID, routeID, industryID, constants.BookingStatusCancelled, constants.PaymentStatusPaid,
	)
	if excludeID != 0 {
		query = query.Where("id <> ?", excludeID)
	}
	var booking models.Booking
	if err := query.Order("id asc").First(&booking).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &booking, nil
}

// ListStalePending 列出待支付时间早于 before 的未取消预订
func (r *GormBookingRepository) ListStalePending(before time.Time, limit int) ([]models.Booking, error) {
	query := r.db.Where(
		"status <> ? AND payment_status = ? AND pending_since IS NOT NULL AND pending_since < ?",
		constants.BookingStatusCancelled, constants.PaymentStatusPending, before,
	).Order("pending_since asc")
	if limit > 0 {
		query = query.Limit(limit)
	}
	var bookings []models.Booking
	if err := query.Find(&bookings).Error; err != nil {
		return nil, err
	}
	return bookings, nil
}

// UpdateGuarded 带前置状态约束的更新，返回是否命中
func (r *GormBookingRepository) UpdateGuarded(id uint, guard BookingGuard, updates map[string]interface{}) (bool, error) {
	query := r.db.Model(&models.Booking{}).Where("id = ?", id)
	if guard.NotCancelled {
		query = query.Where("status <> ?", constants.BookingStatusCancelled)
	}
	if guard.Cancelled {
		query = query.Where("status = ?", constants.BookingStatusCancelled)
	}
	if len(guard.PaymentStatuses) > 0 {
		query = query.Where("payment_status IN ?", guard.PaymentStatuses)
	}
	if len(guard.ApprovalStatuses) > 0 {
		query = query.Where("approval_status IN ?", guard.ApprovalStatuses)
	}
	if len(guard.ArtworkStatuses) > 0 {
		query = query.Where("artwork_status IN ?", guard.ArtworkStatuses)
	}
	if len(guard.RefundStatuses) > 0 {
		query = query.Where("refund_status IN ?", guard.RefundStatuses)
	}
	result := query.Updates(updates)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// Delete 软删除预订
func (r *GormBookingRepository) Delete(id uint) error {
	return r.db.Delete(&models.Booking{}, id).Error
}
