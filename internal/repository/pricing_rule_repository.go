package repository

import (
	"context"
	"errors"

	"github.com/slotmail/internal/constants"
	"github.com/slotmail/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// PricingRuleRepository 定价规则数据访问接口
type PricingRuleRepository interface {
	Create(rule *models.PricingRule) error
	Update(rule *models.PricingRule) error
	GetByID(id uint) (*models.PricingRule, error)
	List(filter PricingRuleListFilter) ([]models.PricingRule, int64, error)
	ListActiveForQuote(campaignID, userID uint) ([]models.PricingRule, error)
	CountUserApplications(ruleIDs []uint, userID uint) (map[uint]int, error)
	CreateApplication(application *models.PricingRuleApplication) (bool, error)
	IncrementUsage(id uint) (bool, error)
	WithTx(tx *gorm.DB) *GormPricingRuleRepository
	WithContext(ctx context.Context) *GormPricingRuleRepository
}

// GormPricingRuleRepository GORM 实现
type GormPricingRuleRepository struct {
	db *gorm.DB
}

// NewPricingRuleRepository 创建定价规则仓库
func NewPricingRuleRepository(db *gorm.DB) *GormPricingRuleRepository {
	return &GormPricingRuleRepository{db: db}
}

// WithTx 绑定事务
func (r *GormPricingRuleRepository) WithTx(tx *gorm.DB) *GormPricingRuleRepository {
	if tx == nil {
		return r
	}
	return &GormPricingRuleRepository{db: tx}
}

// WithContext 绑定请求上下文
func (r *GormPricingRuleRepository) WithContext(ctx context.Context) *GormPricingRuleRepository {
	if ctx == nil {
		return r
	}
	return &GormPricingRuleRepository{db: r.db.WithContext(ctx)}
}

// Create 创建规则
func (r *GormPricingRuleRepository) Create(rule *models.PricingRule) error {
	return r.db.Create(rule).Error
}

// Update 更新规则
func (r *GormPricingRuleRepository) Update(rule *models.PricingRule) error {
	return r.db.Save(rule).Error
}

// GetByID 根据 ID 获取规则
func (r *GormPricingRuleRepository) GetByID(id uint) (*models.PricingRule, error) {
	var rule models.PricingRule
	if err := r.db.First(&rule, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &rule, nil
}

// List 分页查询规则
func (r *GormPricingRuleRepository) List(filter PricingRuleListFilter) ([]models.PricingRule, int64, error) {
	query := r.db.Model(&models.PricingRule{})
	if filter.Scope != "" {
		query = query.Where("scope = ?", filter.Scope)
	}
	if filter.CampaignID != 0 {
		query = query.Where("campaign_id = ?", filter.CampaignID)
	}
	if filter.UserID != 0 {
		query = query.Where("user_id = ?", filter.UserID)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	query = applyPagination(query, filter.Page, filter.PageSize)
	var rules []models.PricingRule
	if err := query.Order("priority desc, id asc").Find(&rules).Error; err != nil {
		return nil, 0, err
	}
	return rules, total, nil
}

// ListActiveForQuote 获取对某投放期、某用户可能生效的全部启用规则
func (r *GormPricingRuleRepository) ListActiveForQuote(campaignID, userID uint) ([]models.PricingRule, error) {
	var rules []models.PricingRule
	err := r.db.Where("status = ?", constants.PricingRuleStatusActive).
		Where(r.db.Where("scope = ?", constants.PricingRuleScopeGlobal).
			Or("scope = ? AND campaign_id = ?", constants.PricingRuleScopeCampaign, campaignID).
			Or("scope = ? AND user_id = ?", constants.PricingRuleScopeUser, userID)).
		Order("priority desc, id asc").
		Find(&rules).Error
	if err != nil {
		return nil, err
	}
	return rules, nil
}

// CountUserApplications 统计用户对各规则的使用次数
func (r *GormPricingRuleRepository) CountUserApplications(ruleIDs []uint, userID uint) (map[uint]int, error) {
	counts := make(map[uint]int, len(ruleIDs))
	if len(ruleIDs) == 0 {
		return counts, nil
	}
	type row struct {
		PricingRuleID uint
		Total         int
	}
	var rows []row
	err := r.db.Model(&models.PricingRuleApplication{}).
		Select("pricing_rule_id, COUNT(*) AS total").
		Where("pricing_rule_id IN ? AND user_id = ?", ruleIDs, userID).
		Group("pricing_rule_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	for _, item := range rows {
		counts[item.PricingRuleID] = item.Total
	}
	return counts, nil
}

// CreateApplication 写入使用记录，(规则, 预订) 已存在时返回 false
func (r *GormPricingRuleRepository) CreateApplication(application *models.PricingRuleApplication) (bool, error) {
	result := r.db.Clauses(clause.OnConflict{DoNothing: true}).Create(application)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// IncrementUsage 在未超过上限时原子递增使用次数
func (r *GormPricingRuleRepository) IncrementUsage(id uint) (bool, error) {
	result := r.db.Model(&models.PricingRule{}).
		Where("id = ? AND (usage_limit IS NULL OR usage_count < usage_limit)", id).
		UpdateColumn("usage_count", gorm.Expr("usage_count + ?", 1))
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}
