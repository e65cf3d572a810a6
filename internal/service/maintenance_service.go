package service

import (
	"time"

	"picture-wall/internal/repository"
	"picture-wall/pkg/logger"

	"go.uber.org/zap"
)

// MaintenanceService 执行定期清理任务
type MaintenanceService struct {
	pendingRepo *repository.PendingRegistrationRepository
	subRepo     *repository.SubscriptionRepository
	admin       *AdminService
	plans       *PlanService
}

func NewMaintenanceService(pendingRepo *repository.PendingRegistrationRepository, subRepo *repository.SubscriptionRepository,
	admin *AdminService, plans *PlanService) *MaintenanceService {
	return &MaintenanceService{pendingRepo: pendingRepo, subRepo: subRepo, admin: admin, plans: plans}
}

// CleanupShares 删除失效超过 olderThan 的分享记录
func (s *MaintenanceService) CleanupShares(olderThan time.Duration) (int64, error) {
	return s.admin.CleanupShares(olderThan)
}

// PurgePending 删除验证码已过期的待验证注册
func (s *MaintenanceService) PurgePending() (int64, error) {
	n, err := s.pendingRepo.DeleteExpired(time.Now())
	if err != nil {
		return 0, err
	}
	logger.L.Info("Expired pending registrations purged", zap.Int64("deleted", n))
	return n, nil
}

// ExpireSubscriptions 将已过结束日期的订阅标记为过期
func (s *MaintenanceService) ExpireSubscriptions() (int64, error) {
	n, err := s.subRepo.ExpireEnded(time.Now())
	if err != nil {
		return 0, err
	}
	logger.L.Info("Subscriptions expired", zap.Int64("count", n))
	return n, nil
}

func (s *MaintenanceService) SeedPlans() (int, error) {
	n, err := s.plans.SeedDefaults()
	if err != nil {
		return n, err
	}
	logger.L.Info("Default plans seeded", zap.Int("created", n))
	return n, nil
}
