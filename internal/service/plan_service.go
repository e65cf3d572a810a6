package service

import (
	"fmt"
	"strings"
	"time"

	"picture-wall/internal/model"
	"picture-wall/internal/repository"
	"picture-wall/pkg/config"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"gorm.io/gorm"
)

// DefaultPlanLimits 在用户没有有效订阅或订阅引用的计划不存在时生效
var DefaultPlanLimits = model.PlanLimits{
	DesignsPerMonth:       1,
	ImageUploadsPerDesign: 3,
}

// ResolveLimits 计算用户在 now 时刻适用的限额
func ResolveLimits(sub *model.Subscription, plan *model.Plan, now time.Time) model.PlanLimits {
	if sub == nil || plan == nil || !sub.IsCurrent(now) {
		return DefaultPlanLimits
	}
	return plan.Limits
}

// withinLimit 判断 current 是否仍低于 limit，-1 表示不限
func withinLimit(current int64, limit int) bool {
	return limit == model.Unlimited || current < int64(limit)
}

// PlanService 管理计划目录，按名称缓存计划
type PlanService struct {
	planRepo *repository.PlanRepository
	cache    *expirable.LRU[string, *model.Plan]
}

func NewPlanService(planRepo *repository.PlanRepository) *PlanService {
	size := config.GlobalConfig.Plans.CacheSize
	if size <= 0 {
		size = 64
	}
	return &PlanService{
		planRepo: planRepo,
		cache:    expirable.NewLRU[string, *model.Plan](size, nil, config.GlobalConfig.Plans.CacheTTL),
	}
}

// Lookup 按名称查找计划，不存在时返回 nil, nil
func (s *PlanService) Lookup(name string) (*model.Plan, error) {
	return s.lookup(s.planRepo, name)
}

func (s *PlanService) lookup(repo *repository.PlanRepository, name string) (*model.Plan, error) {
	if plan, ok := s.cache.Get(name); ok {
		planCacheLookups.WithLabelValues("hit").Inc()
		return plan, nil
	}
	planCacheLookups.WithLabelValues("miss").Inc()

	plan, err := repo.FindByName(name)
	if err != nil {
		return nil, err
	}
	if plan != nil {
		s.cache.Add(name, plan)
	}
	return plan, nil
}

// LimitsFor 返回订阅当前适用的限额
func (s *PlanService) LimitsFor(sub *model.Subscription) (model.PlanLimits, error) {
	return s.limitsFor(s.planRepo, sub)
}

// LimitsForTx 与 LimitsFor 相同，但在事务 tx 中查询
func (s *PlanService) LimitsForTx(tx *gorm.DB, sub *model.Subscription) (model.PlanLimits, error) {
	return s.limitsFor(s.planRepo.WithTx(tx), sub)
}

func (s *PlanService) limitsFor(repo *repository.PlanRepository, sub *model.Subscription) (model.PlanLimits, error) {
	if sub == nil {
		return DefaultPlanLimits, nil
	}
	plan, err := s.lookup(repo, sub.Plan)
	if err != nil {
		return model.PlanLimits{}, err
	}
	return ResolveLimits(sub, plan, time.Now()), nil
}

// ListActive 返回公开的计划列表
func (s *PlanService) ListActive() ([]model.Plan, error) {
	return s.planRepo.List(true)
}

func (s *PlanService) ListAll() ([]model.Plan, error) {
	return s.planRepo.List(false)
}

type PlanRequest struct {
	Name         string            `json:"name"`
	Description  string            `json:"description"`
	Price        *float64          `json:"price"`
	Currency     string            `json:"currency"`
	BillingCycle string            `json:"billingCycle"`
	Features     []string          `json:"features"`
	Limits       *model.PlanLimits `json:"limits"`
	IsActive     *bool             `json:"isActive"`
}

func validateLimit(name string, v int) error {
	if v < model.Unlimited {
		return validationError("%s must be -1 (unlimited) or a non-negative number", name)
	}
	return nil
}

func (req *PlanRequest) apply(plan *model.Plan) error {
	if req.Name != "" {
		plan.Name = strings.TrimSpace(req.Name)
	}
	if req.Description != "" {
		plan.Description = req.Description
	}
	if req.Price != nil {
		if *req.Price < 0 {
			return validationError("price cannot be negative")
		}
		plan.Price = *req.Price
	}
	if req.Currency != "" {
		plan.Currency = strings.ToUpper(req.Currency)
	}
	if req.BillingCycle != "" {
		plan.BillingCycle = req.BillingCycle
	}
	if req.Features != nil {
		plan.Features = req.Features
	}
	if req.Limits != nil {
		if err := validateLimit("designsPerMonth", req.Limits.DesignsPerMonth); err != nil {
			return err
		}
		if err := validateLimit("imageUploadsPerDesign", req.Limits.ImageUploadsPerDesign); err != nil {
			return err
		}
		plan.Limits = *req.Limits
	}
	if req.IsActive != nil {
		plan.IsActive = *req.IsActive
	}
	return nil
}

// Create 新建计划，名称唯一
func (s *PlanService) Create(req PlanRequest) (*model.Plan, error) {
	if strings.TrimSpace(req.Name) == "" {
		return nil, validationError("plan name is required")
	}
	existing, err := s.planRepo.FindByName(strings.TrimSpace(req.Name))
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, fmt.Errorf("plan %q %w", req.Name, ErrConflict)
	}

	plan := &model.Plan{
		Currency:     "USD",
		BillingCycle: "monthly",
		Limits:       DefaultPlanLimits,
		IsActive:     true,
	}
	if err := req.apply(plan); err != nil {
		return nil, err
	}
	if err := s.planRepo.Create(plan); err != nil {
		return nil, err
	}
	return plan, nil
}

// Update 修改计划，改名时同样检查唯一性
func (s *PlanService) Update(id uint, req PlanRequest) (*model.Plan, error) {
	plan, err := s.planRepo.FindByID(id)
	if err != nil {
		return nil, err
	}
	if plan == nil {
		return nil, fmt.Errorf("plan %w", ErrNotFound)
	}
	oldName := plan.Name

	if name := strings.TrimSpace(req.Name); name != "" && name != oldName {
		existing, err := s.planRepo.FindByName(name)
		if err != nil {
			return nil, err
		}
		if existing != nil {
			return nil, fmt.Errorf("plan %q %w", name, ErrConflict)
		}
	}
	if err := req.apply(plan); err != nil {
		return nil, err
	}
	if err := s.planRepo.Save(plan); err != nil {
		return nil, err
	}
	s.cache.Remove(oldName)
	s.cache.Remove(plan.Name)
	return plan, nil
}

func (s *PlanService) Delete(id uint) error {
	plan, err := s.planRepo.FindByID(id)
	if err != nil {
		return err
	}
	if plan == nil {
		return fmt.Errorf("plan %w", ErrNotFound)
	}
	if err := s.planRepo.Delete(id); err != nil {
		return err
	}
	s.cache.Remove(plan.Name)
	return nil
}

// SeedDefaults 创建缺失的内置计划，返回新建数量
func (s *PlanService) SeedDefaults() (int, error) {
	defaults := []model.Plan{
		{
			Name: "free", Description: "Try the designer with a single wall",
			Currency: "USD", BillingCycle: "monthly",
			Features: []string{"1 design", "3 images per design", "Share links"},
			Limits:   DefaultPlanLimits, IsActive: true,
		},
		{
			Name: "pro", Description: "For home owners planning several rooms", Price: 9.99,
			Currency: "USD", BillingCycle: "monthly",
			Features: []string{"20 designs", "20 images per design", "Share with other users"},
			Limits:   model.PlanLimits{DesignsPerMonth: 20, ImageUploadsPerDesign: 20}, IsActive: true,
		},
		{
			Name: "premium", Description: "Unlimited designs for professionals", Price: 29.99,
			Currency: "USD", BillingCycle: "monthly",
			Features: []string{"Unlimited designs", "Unlimited images", "Priority support"},
			Limits:   model.PlanLimits{DesignsPerMonth: model.Unlimited, ImageUploadsPerDesign: model.Unlimited}, IsActive: true,
		},
	}

	created := 0
	for i := range defaults {
		existing, err := s.planRepo.FindByName(defaults[i].Name)
		if err != nil {
			return created, err
		}
		if existing != nil {
			continue
		}
		if err := s.planRepo.Create(&defaults[i]); err != nil {
			return created, err
		}
		created++
	}
	return created, nil
}
