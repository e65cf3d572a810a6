package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"picture-wall/internal/api"
	"picture-wall/internal/repository"
	"picture-wall/internal/service"
	"picture-wall/pkg/config"
	"picture-wall/pkg/db"
	"picture-wall/pkg/logger"
	"picture-wall/pkg/mailer"
	"picture-wall/pkg/storage"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func main() {
	// 初始化配置
	if err := config.Init(); err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	cfg := config.GlobalConfig

	if err := logger.InitLogger(cfg.Log.Level, cfg.Log.ProductionMode); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	// 初始化数据库连接，失败时直接退出
	if err := db.InitDB(cfg.Database); err != nil {
		logger.L.Fatal("Failed to initialize database", zap.Error(err))
	}
	defer db.Close()

	m, err := mailer.New(cfg.Mail)
	if err != nil {
		logger.L.Fatal("Failed to initialize mailer", zap.Error(err))
	}
	store, err := storage.New(context.Background(), cfg.Upload)
	if err != nil {
		logger.L.Fatal("Failed to initialize storage", zap.Error(err))
	}

	userRepo := repository.NewUserRepository()
	pendingRepo := repository.NewPendingRegistrationRepository()
	draftRepo := repository.NewDraftRepository()
	shareRepo := repository.NewSharedDraftRepository()
	subRepo := repository.NewSubscriptionRepository()
	requestRepo := repository.NewUpgradeRequestRepository()
	flagRepo := repository.NewFlaggedContentRepository()
	plans := service.NewPlanService(repository.NewPlanRepository())

	if n, err := plans.SeedDefaults(); err != nil {
		logger.L.Warn("Failed to seed default plans", zap.Error(err))
	} else if n > 0 {
		logger.L.Info("Seeded default plans", zap.Int("created", n))
	}

	if cfg.Server.IsDevelopment() {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	router := api.NewRouter(cfg, api.Services{
		Auth:       service.NewAuthService(userRepo, pendingRepo, subRepo, m),
		Plans:      plans,
		Drafts:     service.NewDraftService(draftRepo, shareRepo, subRepo, plans),
		Shares:     service.NewShareService(draftRepo, shareRepo, userRepo, subRepo),
		Subs:       service.NewSubscriptionService(subRepo, draftRepo, requestRepo, plans),
		Moderation: service.NewModerationService(flagRepo, draftRepo, userRepo, shareRepo),
		Admin:      service.NewAdminService(userRepo, draftRepo, shareRepo, subRepo, requestRepo, flagRepo, plans),
		Catalog:    service.NewCatalogService(repository.NewCategoryRepository(), repository.NewDecorRepository()),
		Uploads:    service.NewUploadService(store, draftRepo, subRepo, plans),
		Store:      store,
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.L.Info("Server starting", zap.String("addr", srv.Addr), zap.String("environment", cfg.Server.Environment))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.L.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.L.Info("Shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.L.Error("Server forced to shutdown", zap.Error(err))
	}
}
