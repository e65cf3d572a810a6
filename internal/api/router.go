package api

import (
	"net/http"

	"picture-wall/internal/middleware"
	"picture-wall/internal/service"
	"picture-wall/pkg/config"
	"picture-wall/pkg/storage"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Services 汇总路由需要的服务
type Services struct {
	Auth       *service.AuthService
	Plans      *service.PlanService
	Drafts     *service.DraftService
	Shares     *service.ShareService
	Subs       *service.SubscriptionService
	Moderation *service.ModerationService
	Admin      *service.AdminService
	Catalog    *service.CatalogService
	Uploads    *service.UploadService
	Store      storage.Storage
}

// NewRouter 注册全部路由
func NewRouter(cfg config.Config, svc Services) *gin.Engine {
	r := gin.New()
	r.Use(
		middleware.RequestID(),
		middleware.GinZapLogger(),
		middleware.Metrics(),
		middleware.Recovery(cfg.Server.IsDevelopment()),
	)
	r.MaxMultipartMemory = 8 << 20

	health := NewHealthHandler(cfg.Server.Environment)
	r.GET("/health", health.Health)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// 本地存储时由服务直接提供上传的文件
	if local, ok := svc.Store.(*storage.LocalStorage); ok {
		r.Static(cfg.Upload.PublicURL, local.BasePath())
	}

	authHandler := NewAuthHandler(svc.Auth)
	draftHandler := NewDraftHandler(svc.Drafts, svc.Shares)
	planHandler := NewPlanHandler(svc.Plans, svc.Subs)
	catalogHandler := NewCatalogHandler(svc.Catalog)
	uploadHandler := NewUploadHandler(svc.Uploads)
	moderationHandler := NewModerationHandler(svc.Moderation)
	adminHandler := NewAdminHandler(svc.Admin, svc.Plans)

	apiGroup := r.Group("/api")

	// 公开路由
	apiGroup.POST("/register", authHandler.Register)
	apiGroup.POST("/verify-otp", authHandler.VerifyOTP)
	apiGroup.POST("/resend-otp", authHandler.ResendOTP)
	apiGroup.POST("/login", authHandler.Login)
	apiGroup.POST("/forgot-password", authHandler.ForgotPassword)
	apiGroup.POST("/reset-password", authHandler.ResetPassword)
	apiGroup.GET("/plans", planHandler.ListPlans)
	apiGroup.GET("/categories", catalogHandler.ListCategories)
	apiGroup.GET("/decors", catalogHandler.ListDecors)
	apiGroup.GET("/drafts/shared/:id", middleware.OptionalAuth(), draftHandler.GetShared)

	// 受保护的路由
	protected := apiGroup.Group("")
	protected.Use(middleware.AuthMiddleware())
	{
		protected.GET("/user/profile", authHandler.Profile)
		protected.POST("/user/choose-plan", planHandler.ChoosePlan)
		protected.GET("/user/usage", planHandler.Usage)
		protected.POST("/user/upgrade-request", planHandler.RequestUpgrade)
		protected.GET("/user/upgrade-requests", planHandler.MyUpgradeRequests)

		protected.POST("/drafts", draftHandler.Create)
		protected.GET("/drafts", draftHandler.List)
		protected.GET("/drafts/single/:id", draftHandler.Get)
		protected.PUT("/drafts/:id", draftHandler.Update)
		protected.DELETE("/drafts/:id", draftHandler.Delete)

		protected.POST("/drafts/:id/share", draftHandler.Share)
		protected.PUT("/drafts/:id/public", draftHandler.SetPublic)
		protected.PUT("/drafts/:id/revoke-share", draftHandler.RevokeShare)
		protected.GET("/drafts/shared", draftHandler.SharedWithMe)
		protected.GET("/drafts/shared-by-me", draftHandler.SharedByMe)
		protected.DELETE("/drafts/shared/:id/remove", draftHandler.RemoveRecipient)

		protected.POST("/flags", moderationHandler.Flag)
		protected.POST("/upload", uploadHandler.Upload)
	}

	admin := apiGroup.Group("/admin")
	admin.Use(middleware.AuthMiddleware(), middleware.AdminOnly())
	{
		admin.GET("/dashboard", adminHandler.Dashboard)

		admin.GET("/users", adminHandler.ListUsers)
		admin.PUT("/users/:id", adminHandler.UpdateUser)
		admin.DELETE("/users/:id", adminHandler.DeleteUser)
		admin.POST("/users/bulk", adminHandler.BulkUsers)

		admin.GET("/drafts", adminHandler.ListDrafts)
		admin.DELETE("/drafts/:id", adminHandler.DeleteDraft)

		admin.GET("/shared-drafts", adminHandler.ListSharedDrafts)
		admin.PUT("/shared-drafts/:id/revoke", adminHandler.RevokeShare)
		admin.PUT("/shared-drafts/:id/reactivate", adminHandler.ReactivateShare)
		admin.DELETE("/shared-drafts/:id", adminHandler.DeleteShare)
		admin.POST("/shared-drafts/cleanup", adminHandler.CleanupShares)

		admin.GET("/flagged", moderationHandler.List)
		admin.PUT("/flagged/:id", moderationHandler.Review)

		admin.GET("/upgrade-requests", adminHandler.ListUpgradeRequests)
		admin.PUT("/upgrade-requests/:id", adminHandler.ReviewUpgrade)

		admin.GET("/plans", adminHandler.ListPlans)
		admin.POST("/plans", adminHandler.CreatePlan)
		admin.PUT("/plans/:id", adminHandler.UpdatePlan)
		admin.DELETE("/plans/:id", adminHandler.DeletePlan)

		admin.GET("/categories", catalogHandler.AdminListCategories)
		admin.POST("/categories", catalogHandler.CreateCategory)
		admin.PUT("/categories/:id", catalogHandler.UpdateCategory)
		admin.DELETE("/categories/:id", catalogHandler.DeleteCategory)
		admin.GET("/decors", catalogHandler.AdminListDecors)
		admin.POST("/decors", catalogHandler.CreateDecor)
		admin.PUT("/decors/:id", catalogHandler.UpdateDecor)
		admin.DELETE("/decors/:id", catalogHandler.DeleteDecor)
	}

	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{
			"error":  "Route not found",
			"path":   c.Request.URL.Path,
			"method": c.Request.Method,
		})
	})
	return r
}
