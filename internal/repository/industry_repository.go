package repository

import (
	"errors"

	"github.com/slotmail/internal/models"

	"gorm.io/gorm"
)

// IndustryRepository 行业数据访问接口
type IndustryRepository interface {
	Create(industry *models.Industry) error
	GetByID(id uint) (*models.Industry, error)
	ListByIDs(ids []uint) ([]models.Industry, error)
	List(activeOnly bool) ([]models.Industry, error)
}

// GormIndustryRepository GORM 实现
type GormIndustryRepository struct {
	db *gorm.DB
}

// NewIndustryRepository 创建行业仓库
func NewIndustryRepository(db *gorm.DB) *GormIndustryRepository {
	return &GormIndustryRepository{db: db}
}

// Create 创建行业
func (r *GormIndustryRepository) Create(industry *models.Industry) error {
	return r.db.Create(industry).Error
}

// GetByID 根据 ID 获取行业
func (r *GormIndustryRepository) GetByID(id uint) (*models.Industry, error) {
	var industry models.Industry
	if err := r.db.First(&industry, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &industry, nil
}

// ListByIDs 批量获取行业
func (r *GormIndustryRepository) ListByIDs(ids []uint) ([]models.Industry, error) {
	if len(ids) == 0 {
		return []models.Industry{}, nil
	}
	var industries []models.Industry
	if err := r.db.Where("id IN ?", ids).Order("sort_order asc, id asc").Find(&industries).Error; err != nil {
		return nil, err
	}
	return industries, nil
}

// List 获取全部行业
func (r *GormIndustryRepository) List(activeOnly bool) ([]models.Industry, error) {
	query := r.db.Model(&models.Industry{})
	if activeOnly {
		query = query.Where("is_active = ?", true)
	}
	var industries []models.Industry
	if err := query.Order("sort_order asc, id asc").Find(&industries).Error; err != nil {
		return nil, err
	}
	return industries, nil
}
