package service

import (
	"context"
	"errors"
	"time"

	"github.com/slotmail/internal/config"
	"github.com/slotmail/internal/constants"
	"github.com/slotmail/internal/models"
	"github.com/slotmail/internal/repository"

	"github.com/golang-jwt/jwt/v5"
)

// ErrTokenInvalid 令牌无效
var ErrTokenInvalid = errors.New("invalid token")

// UserJWTClaims 用户 JWT 声明
type UserJWTClaims struct {
	UserID  uint   `json:"user_id"`
	Email   string `json:"email"`
	IsAdmin bool   `json:"is_admin"`
	jwt.RegisteredClaims
}

// TokenService 用户令牌签发与校验；账号体系在外部，这里只认 HS256 令牌
type TokenService struct {
	cfg      config.JWTConfig
	userRepo repository.UserRepository
	clock    Clock
}

// NewTokenService 创建令牌服务
func NewTokenService(cfg config.JWTConfig, userRepo repository.UserRepository, clock Clock) *TokenService {
	return &TokenService{cfg: cfg, userRepo: userRepo, clock: clock}
}

func (s *TokenService) expireHours() int {
	if s.cfg.ExpireHours <= 0 {
		return 24
	}
	return s.cfg.ExpireHours
}

// IssueUserToken 签发用户令牌
func (s *TokenService) IssueUserToken(user *models.User) (string, time.Time, error) {
	now := s.clock.now()
	expiresAt := now.Add(time.Duration(s.expireHours()) * time.Hour)
	claims := UserJWTClaims{
		UserID:  user.ID,
		Email:   user.Email,
		IsAdmin: user.IsAdmin,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString([]byte(s.cfg.SecretKey))
	if err != nil {
		return "", time.Time{}, err
	}
	return tokenString, expiresAt, nil
}

// ParseUserToken 解析用户令牌
func (s *TokenService) ParseUserToken(tokenString string) (*UserJWTClaims, error) {
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(s.clock.now),
	)
	claims := &UserJWTClaims{}
	token, err := parser.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return []byte(s.cfg.SecretKey), nil
	})
	if err != nil {
		return nil, errors.Join(ErrTokenInvalid, err)
	}
	if !token.Valid || claims.UserID == 0 {
		return nil, ErrTokenInvalid
	}
	return claims, nil
}

// Authenticate 解析令牌并加载账号，管理员身份以数据库为准
func (s *TokenService) Authenticate(ctx context.Context, tokenString string) (*models.User, error) {
	claims, err := s.ParseUserToken(tokenString)
	if err != nil {
		return nil, err
	}
	user, err := s.userRepo.WithContext(ctx).GetByID(claims.UserID)
	if err != nil {
		return nil, upstream(ErrUpstreamFailure, err)
	}
	if user == nil {
		return nil, ErrTokenInvalid
	}
	if user.Status == constants.UserStatusDisabled {
		return nil, ErrUserDisabled
	}
	return user, nil
}
