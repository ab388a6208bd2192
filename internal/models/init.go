package models

import (
	"errors"
	"strings"

	"github.com/slotmail/internal/constants"
	"github.com/slotmail/internal/logger"

	"gorm.io/gorm"
)

// EnsureAdminUser 确保指定邮箱的账号存在且为管理员；邮箱为空时跳过
func EnsureAdminUser(db *gorm.DB, email string) (*User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return nil, nil
	}
	if db == nil {
		return nil, errors.New("db is nil")
	}
	var user User
	err := db.Where("email = ?", email).First(&user).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		user = User{Email: email, IsAdmin: true, Status: constants.UserStatusActive}
		if err := db.Create(&user).Error; err != nil {
			return nil, err
		}
		logger.Warnw("default_admin_created", "email", email)
		return &user, nil
	case err != nil:
		return nil, err
	}
	if !user.IsAdmin || user.Status != constants.UserStatusActive {
		if err := db.Model(&user).Updates(map[string]interface{}{
			"is_admin": true,
			"status":   constants.UserStatusActive,
		}).Error; err != nil {
			return nil, err
		}
		user.IsAdmin = true
		user.Status = constants.UserStatusActive
		logger.Warnw("default_admin_promoted", "email", email, "user_id", user.ID)
	}
	return &user, nil
}
