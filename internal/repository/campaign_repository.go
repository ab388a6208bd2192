package repository

import (
	"context"
	"errors"

	"github.com/slotmail/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// CampaignRepository 投放期数据访问接口
type CampaignRepository interface {
	Create(campaign *models.Campaign) error
	Update(campaign *models.Campaign) error
	GetByID(id uint) (*models.Campaign, error)
	List(filter CampaignListFilter) ([]models.Campaign, int64, error)
	UpdateStatus(id uint, from, to string) (bool, error)
	ReplaceRoutes(campaign *models.Campaign, routes []models.Route) error
	ReplaceIndustries(campaign *models.Campaign, industries []models.Industry) error
	UpdateTotalSlots(id uint, total int) error
	IncrementBooked(id uint, quantity int, amount models.Money) error
	DecrementBooked(id uint, quantity int, amount models.Money) error
	WithTx(tx *gorm.DB) *GormCampaignRepository
	WithContext(ctx context.Context) *GormCampaignRepository
}

// GormCampaignRepository GORM 实现
type GormCampaignRepository struct {
	db *gorm.DB
}

// NewCampaignRepository 创建投放期仓库
func NewCampaignRepository(db *gorm.DB) *GormCampaignRepository {
	return &GormCampaignRepository{db: db}
}

// WithTx 绑定事务
func (r *GormCampaignRepository) WithTx(tx *gorm.DB) *GormCampaignRepository {
	if tx == nil {
		return r
	}
	return &GormCampaignRepository{db: tx}
}

// WithContext 绑定请求上下文
func (r *GormCampaignRepository) WithContext(ctx context.Context) *GormCampaignRepository {
	if ctx == nil {
		return r
	}
	return &GormCampaignRepository{db: r.db.WithContext(ctx)}
}

// Create 创建投放期
func (r *GormCampaignRepository) Create(campaign *models.Campaign) error {
	return r.db.Omit(clause.Associations).Create(campaign).Error
}

// Update 更新投放期基础字段，关联与计数器不经此处修改
func (r *GormCampaignRepository) Update(campaign *models.Campaign) error {
	return r.db.Model(&models.Campaign{}).Where("id = ?", campaign.ID).Updates(map[string]interface{}{
		"name":                  campaign.Name,
		"mail_date":             campaign.MailDate,
		"print_deadline":        campaign.PrintDeadline,
		"base_slot_price":       campaign.BaseSlotPrice,
		"additional_slot_price": campaign.AdditionalSlotPrice,
		"notes":                 campaign.Notes,
	}).Error
}

// GetByID 获取投放期（含路线与行业）
func (r *GormCampaignRepository) GetByID(id uint) (*models.Campaign, error) {
	var campaign models.Campaign
	err := r.db.
		Preload("Routes", func(db *gorm.DB) *gorm.DB { return db.Order("routes.id asc") }).
		Preload("Industries", func(db *gorm.DB) *gorm.DB {
			return db.Order("industries.sort_order asc, industries.id asc")
		}).
		First(&campaign, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &campaign, nil
}

// List 分页查询投放期
func (r *GormCampaignRepository) List(filter CampaignListFilter) ([]models.Campaign, int64, error) {
	query := r.db.Model(&models.Campaign{})
	if len(filter.Statuses) > 0 {
		query = query.Where("status IN ?", filter.Statuses)
	}
	if filter.MailFrom != nil {
		query = query.Where("mail_date >= ?", *filter.MailFrom)
	}
	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	query = applyPagination(query, filter.Page, filter.PageSize)
	var campaigns []models.Campaign
	if err := query.Order("mail_date asc, id asc").Find(&campaigns).Error; err != nil {
		return nil, 0, err
	}
	return campaigns, total, nil
}

// UpdateStatus 仅当当前状态为 from 时切换到 to
func (r *GormCampaignRepository) UpdateStatus(id uint, from, to string) (bool, error) {
	result := r.db.Model(&models.Campaign{}).
		Where("id = ? AND status = ?", id, from).
		Update("status", to)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// ReplaceRoutes 替换投放期覆盖的路线
func (r *GormCampaignRepository) ReplaceRoutes(campaign *models.Campaign, routes []models.Route) error {
	return r.db.Model(campaign).Association("Routes").Replace(routes)
}

// ReplaceIndustries 替换投放期开放的行业
func (r *GormCampaignRepository) ReplaceIndustries(campaign *models.Campaign, industries []models.Industry) error {
	return r.db.Model(campaign).Association("Industries").Replace(industries)
}

// UpdateTotalSlots 写入总槽位数
func (r *GormCampaignRepository) UpdateTotalSlots(id uint, total int) error {
	return r.db.Model(&models.Campaign{}).Where("id = ?", id).Update("total_slots", total).Error
}

// IncrementBooked 原子增加已售槽位与收入
func (r *GormCampaignRepository) IncrementBooked(id uint, quantity int, amount models.Money) error {
	return r.db.Model(&models.Campaign{}).Where("id = ?", id).Updates(map[string]interface{}{
		"booked_slots": gorm.Expr("booked_slots + ?", quantity),
		"revenue":      gorm.Expr("revenue + ?", amount.Decimal.StringFixed(2)),
	}).Error
}

// DecrementBooked 原子扣减已售槽位与收入，不低于 0
func (r *GormCampaignRepository) DecrementBooked(id uint, quantity int, amount models.Money) error {
	return r.db.Model(&models.Campaign{}).Where("id = ?", id).Updates(map[string]interface{}{
		"booked_slots": flooredDecrementExpr("booked_slots", quantity),
		"revenue":      flooredDecrementExpr("revenue", amount.Decimal.StringFixed(2)),
	}).Error
}
