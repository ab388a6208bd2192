package service

import (
	"context"
	"strings"

	"github.com/slotmail/internal/models"
	"github.com/slotmail/internal/repository"
)

// DimensionService 路线与行业管理
type DimensionService struct {
	routeRepo    repository.RouteRepository
	industryRepo repository.IndustryRepository
}

// NewDimensionService 创建维度服务
func NewDimensionService(routeRepo repository.RouteRepository, industryRepo repository.IndustryRepository) *DimensionService {
	return &DimensionService{routeRepo: routeRepo, industryRepo: industryRepo}
}

// RouteInput 创建路线输入
type RouteInput struct {
	ZipCode    string
	Name       string
	Households int
}

// CreateRoute 创建路线
func (s *DimensionService) CreateRoute(ctx context.Context, input RouteInput) (*models.Route, error) {
	name := strings.TrimSpace(input.Name)
	zip := strings.TrimSpace(input.ZipCode)
	if name == "" || zip == "" {
		return nil, ErrDimensionNameRequired
	}
	if input.Households < 0 {
		return nil, ErrInvalidArgument
	}
	route := &models.Route{ZipCode: zip, Name: name, Households: input.Households, IsActive: true}
	if err := s.routeRepo.Create(route); err != nil {
		if repository.IsUniqueViolation(err) {
			return nil, ErrInvalidArgument
		}
		return nil, upstream(ErrUpstreamFailure, err)
	}
	return route, nil
}

// ListRoutes 获取路线
func (s *DimensionService) ListRoutes(ctx context.Context, activeOnly bool) ([]models.Route, error) {
	routes, err := s.routeRepo.List(activeOnly)
	if err != nil {
		return nil, upstream(ErrUpstreamFailure, err)
	}
	return routes, nil
}

// IndustryInput 创建行业输入
type IndustryInput struct {
	Name      string
	Unlimited bool
	SortOrder int
}

// CreateIndustry 创建行业
func (s *DimensionService) CreateIndustry(ctx context.Context, input IndustryInput) (*models.Industry, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, ErrDimensionNameRequired
	}
	industry := &models.Industry{Name: name, Unlimited: input.Unlimited, SortOrder: input.SortOrder, IsActive: true}
	if err := s.industryRepo.Create(industry); err != nil {
		if repository.IsUniqueViolation(err) {
			return nil, ErrInvalidArgument
		}
		return nil, upstream(ErrUpstreamFailure, err)
	}
	return industry, nil
}

// ListIndustries 获取行业
func (s *DimensionService) ListIndustries(ctx context.Context, activeOnly bool) ([]models.Industry, error) {
	industries, err := s.industryRepo.List(activeOnly)
	if err != nil {
		return nil, upstream(ErrUpstreamFailure, err)
	}
	return industries, nil
}
