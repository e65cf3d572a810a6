package main

import (
	"flag"
	"log"

	"picture-wall/internal/repository"
	"picture-wall/internal/service"
	"picture-wall/pkg/config"
	"picture-wall/pkg/db"
	"picture-wall/pkg/logger"

	"go.uber.org/zap"
)

// 单次执行的维护任务，供 cron 调用
func main() {
	task := flag.String("task", "", "cleanup-shares | purge-pending | expire-subscriptions | seed-plans")
	flag.Parse()

	if err := config.Init(); err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	cfg := config.GlobalConfig
	if err := logger.InitLogger(cfg.Log.Level, cfg.Log.ProductionMode); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	if err := db.InitDB(cfg.Database); err != nil {
		logger.L.Fatal("Failed to initialize database", zap.Error(err))
	}
	defer db.Close()

	userRepo := repository.NewUserRepository()
	draftRepo := repository.NewDraftRepository()
	shareRepo := repository.NewSharedDraftRepository()
	subRepo := repository.NewSubscriptionRepository()
	plans := service.NewPlanService(repository.NewPlanRepository())
	admin := service.NewAdminService(userRepo, draftRepo, shareRepo, subRepo,
		repository.NewUpgradeRequestRepository(), repository.NewFlaggedContentRepository(), plans)
	maintenance := service.NewMaintenanceService(repository.NewPendingRegistrationRepository(), subRepo, admin, plans)

	var err error
	switch *task {
	case "cleanup-shares":
		_, err = maintenance.CleanupShares(cfg.Sharing.CleanupAfter)
	case "purge-pending":
		_, err = maintenance.PurgePending()
	case "expire-subscriptions":
		_, err = maintenance.ExpireSubscriptions()
	case "seed-plans":
		_, err = maintenance.SeedPlans()
	default:
		flag.Usage()
		logger.L.Fatal("Unknown maintenance task", zap.String("task", *task))
	}
	if err != nil {
		logger.L.Fatal("Maintenance task failed", zap.String("task", *task), zap.Error(err))
	}
	logger.L.Info("Maintenance task finished", zap.String("task", *task))
}
