package repository

import (
	"context"
	"errors"
	"strings"

	"github.com/slotmail/internal/models"

	"gorm.io/gorm"
)

// UserRepository 用户数据访问接口
type UserRepository interface {
	GetByID(id uint) (*models.User, error)
	GetByIDForUpdate(id uint) (*models.User, error)
	GetByEmail(email string) (*models.User, error)
	ListByIDs(ids []uint) ([]models.User, error)
	Create(user *models.User) error
	ReserveLoyaltyDiscount(id uint) (bool, error)
	ReleaseLoyaltyDiscount(id uint) error
	UpdateLoyalty(id uint, earned, available, year int) error
	WithTx(tx *gorm.DB) *GormUserRepository
	WithContext(ctx context.Context) *GormUserRepository
}

// GormUserRepository GORM 实现
type GormUserRepository struct {
	db *gorm.DB
}

// NewUserRepository 创建用户仓库
func NewUserRepository(db *gorm.DB) *GormUserRepository {
	return &GormUserRepository{db: db}
}

// WithTx 绑定事务
func (r *GormUserRepository) WithTx(tx *gorm.DB) *GormUserRepository {
	if tx == nil {
		return r
	}
	return &GormUserRepository{db: tx}
}

// WithContext 绑定请求上下文
func (r *GormUserRepository) WithContext(ctx context.Context) *GormUserRepository {
	if ctx == nil {
		return r
	}
	return &GormUserRepository{db: r.db.WithContext(ctx)}
}

// GetByID 根据 ID 获取用户
func (r *GormUserRepository) GetByID(id uint) (*models.User, error) {
	var user models.User
	if err := r.db.First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &user, nil
}

// GetByIDForUpdate 事务内加锁读取用户
func (r *GormUserRepository) GetByIDForUpdate(id uint) (*models.User, error) {
	var user models.User
	if err := forUpdate(r.db).First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &user, nil
}

// GetByEmail 根据邮箱获取用户
func (r *GormUserRepository) GetByEmail(email string) (*models.User, error) {
	var user models.User
	if err := r.db.Where("email = ?", strings.ToLower(strings.TrimSpace(email))).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &user, nil
}

// ListByIDs 批量获取用户
func (r *GormUserRepository) ListByIDs(ids []uint) ([]models.User, error) {
	if len(ids) == 0 {
		return []models.User{}, nil
	}
	var users []models.User
	if err := r.db.Where("id IN ?", ids).Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

// Create 创建用户
func (r *GormUserRepository) Create(user *models.User) error {
	return r.db.Create(user).Error
}

// ReserveLoyaltyDiscount 占用一次忠诚度折扣，余额不足时返回 false
func (r *GormUserRepository) ReserveLoyaltyDiscount(id uint) (bool, error) {
	result := r.db.Model(&models.User{}).
		Where("id = ? AND loyalty_discounts_available > 0", id).
		UpdateColumn("loyalty_discounts_available", gorm.Expr("loyalty_discounts_available - ?", 1))
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// ReleaseLoyaltyDiscount 归还一次忠诚度折扣
func (r *GormUserRepository) ReleaseLoyaltyDiscount(id uint) error {
	return r.db.Model(&models.User{}).
		Where("id = ?", id).
		UpdateColumn("loyalty_discounts_available", gorm.Expr("loyalty_discounts_available + ?", 1)).Error
}

// UpdateLoyalty 写入忠诚度进度
func (r *GormUserRepository) UpdateLoyalty(id uint, earned, available, year int) error {
	return r.db.Model(&models.User{}).Where("id = ?", id).UpdateColumns(map[string]interface{}{
		"loyalty_slots_earned":        earned,
		"loyalty_discounts_available": available,
		"loyalty_reset_year":          year,
	}).Error
}
