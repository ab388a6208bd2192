package repository

import (
	"errors"

	"github.com/slotmail/internal/models"

	"gorm.io/gorm"
)

// RouteRepository 路线数据访问接口
type RouteRepository interface {
	Create(route *models.Route) error
	GetByID(id uint) (*models.Route, error)
	ListByIDs(ids []uint) ([]models.Route, error)
	List(activeOnly bool) ([]models.Route, error)
}

// GormRouteRepository GORM 实现
type GormRouteRepository struct {
	db *gorm.DB
}

// NewRouteRepository 创建路线仓库
func NewRouteRepository(db *gorm.DB) *GormRouteRepository {
	return &GormRouteRepository{db: db}
}

// Create 创建路线
func (r *GormRouteRepository) Create(route *models.Route) error {
	return r.db.Create(route).Error
}

// GetByID 根据 ID 获取路线
func (r *GormRouteRepository) GetByID(id uint) (*models.Route, error) {
	var route models.Route
	if err := r.db.First(&route, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &route, nil
}

// ListByIDs 批量获取路线
func (r *GormRouteRepository) ListByIDs(ids []uint) ([]models.Route, error) {
	if len(ids) == 0 {
		return []models.Route{}, nil
	}
	var routes []models.Route
	if err := r.db.Where("id IN ?", ids).Order("id asc").Find(&routes).Error; err != nil {
		return nil, err
	}
	return routes, nil
}

// List 获取全部路线
func (r *GormRouteRepository) List(activeOnly bool) ([]models.Route, error) {
	query := r.db.Model(&models.Route{})
	if activeOnly {
		query = query.Where("is_active = ?", true)
	}
	var routes []models.Route
	if err := query.Order("zip_code asc, id asc").Find(&routes).Error; err != nil {
		return nil, err
	}
	return routes, nil
}
