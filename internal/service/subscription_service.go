package service

import (
	"fmt"
	"strings"
	"time"

	"picture-wall/internal/model"
	"picture-wall/internal/repository"
	"picture-wall/pkg/logger"

	"go.uber.org/zap"
)

// SubscriptionService 处理用户的计划选择、用量查询和升级申请
type SubscriptionService struct {
	subRepo     *repository.SubscriptionRepository
	draftRepo   *repository.DraftRepository
	requestRepo *repository.UpgradeRequestRepository
	planService *PlanService
}

func NewSubscriptionService(subRepo *repository.SubscriptionRepository, draftRepo *repository.DraftRepository,
	requestRepo *repository.UpgradeRequestRepository, planService *PlanService) *SubscriptionService {
	return &SubscriptionService{
		subRepo:     subRepo,
		draftRepo:   draftRepo,
		requestRepo: requestRepo,
		planService: planService,
	}
}

type ChoosePlanRequest struct {
	Plan string `json:"plan" binding:"required"`
}

type UpgradeRequestInput struct {
	RequestedPlan string `json:"requestedPlan" binding:"required"`
	Message       string `json:"message" binding:"max=1000"`
}

// Usage 是用户当前的计划、限额和用量
type Usage struct {
	Plan            string                  `json:"plan"`
	Status          string                  `json:"status"`
	EndDate         *time.Time              `json:"endDate,omitempty"`
	Limits          model.PlanLimits        `json:"limits"`
	DraftCount      int64                   `json:"draftCount"`
	DraftsRemaining int64                   `json:"draftsRemaining"`
	Counters        model.SubscriptionUsage `json:"counters"`
}

func (s *SubscriptionService) activePlan(name string) (*model.Plan, error) {
	plan, err := s.planService.Lookup(strings.TrimSpace(name))
	if err != nil {
		return nil, err
	}
	if plan == nil || !plan.IsActive {
		return nil, fmt.Errorf("plan %q %w", name, ErrNotFound)
	}
	return plan, nil
}

// ChoosePlan 直接为用户切换到一个启用的计划
func (s *SubscriptionService) ChoosePlan(userID uint, planName string) (*model.Subscription, error) {
	plan, err := s.activePlan(planName)
	if err != nil {
		return nil, err
	}
	sub, err := s.subRepo.AssignPlan(userID, plan.Name, time.Now())
	if err != nil {
		return nil, err
	}
	logger.L.Info("Plan chosen", zap.Uint("userID", userID), zap.String("plan", plan.Name))
	return sub, nil
}

// Usage 汇总用户的限额和当前用量
func (s *SubscriptionService) Usage(userID uint) (*Usage, error) {
	sub, err := s.subRepo.FindByUserID(userID)
	if err != nil {
		return nil, err
	}
	limits, err := s.planService.LimitsFor(sub)
	if err != nil {
		return nil, err
	}
	count, err := s.draftRepo.CountByOwner(userID)
	if err != nil {
		return nil, err
	}

	usage := &Usage{
		Limits:          limits,
		DraftCount:      count,
		DraftsRemaining: model.Unlimited,
	}
	if sub != nil {
		usage.Plan = sub.Plan
		usage.Status = sub.Status
		usage.EndDate = sub.EndDate
		usage.Counters = sub.Usage
	}
	if limits.DesignsPerMonth != model.Unlimited {
		usage.DraftsRemaining = int64(limits.DesignsPerMonth) - count
		if usage.DraftsRemaining < 0 {
			usage.DraftsRemaining = 0
		}
	}
	return usage, nil
}

// RequestUpgrade 提交计划升级申请，每个用户同时只能有一个待处理申请
func (s *SubscriptionService) RequestUpgrade(userID uint, input UpgradeRequestInput) (*model.UpgradeRequest, error) {
	plan, err := s.activePlan(input.RequestedPlan)
	if err != nil {
		return nil, err
	}
	sub, err := s.subRepo.FindByUserID(userID)
	if err != nil {
		return nil, err
	}
	current := ""
	if sub != nil {
		current = sub.Plan
		if sub.Plan == plan.Name && sub.IsCurrent(time.Now()) {
			return nil, validationError("you are already on the %s plan", plan.Name)
		}
	}

	pending, err := s.requestRepo.FindPendingByUser(userID)
	if err != nil {
		return nil, err
	}
	if pending != nil {
		return nil, fmt.Errorf("pending upgrade request %w", ErrConflict)
	}

	req := &model.UpgradeRequest{
		UserID:        userID,
		CurrentPlan:   current,
		RequestedPlan: plan.Name,
		Message:       strings.TrimSpace(input.Message),
		Status:        model.RequestPending,
	}
	if err := s.requestRepo.Create(req); err != nil {
		return nil, err
	}
	logger.L.Info("Upgrade requested", zap.Uint("userID", userID), zap.String("plan", plan.Name))
	return req, nil
}

func (s *SubscriptionService) MyUpgradeRequests(userID uint) ([]model.UpgradeRequest, error) {
	return s.requestRepo.ListByUser(userID)
}
