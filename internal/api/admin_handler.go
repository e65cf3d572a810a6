package api

import (
	"net/http"
	"time"

	"picture-wall/internal/repository"
	"picture-wall/internal/service"
	"picture-wall/pkg/config"

	"github.com/gin-gonic/gin"
)

// AdminHandler 处理管理后台接口，路由需经过 AdminOnly
type AdminHandler struct {
	admin *service.AdminService
	plans *service.PlanService
}

func NewAdminHandler(admin *service.AdminService, plans *service.PlanService) *AdminHandler {
	return &AdminHandler{admin: admin, plans: plans}
}

func (h *AdminHandler) Dashboard(c *gin.Context) {
	stats, err := h.admin.Dashboard()
	if err != nil {
		respondError(c, err, "load dashboard")
		return
	}
	c.JSON(http.StatusOK, stats)
}

// ---- 用户 ----

func (h *AdminHandler) ListUsers(c *gin.Context) {
	page := getPageParams(c)
	users, total, err := h.admin.ListUsers(repository.UserFilter{
		Search: c.Query("search"),
		Role:   c.Query("role"),
		Page:   page,
	})
	if err != nil {
		respondError(c, err, "list users")
		return
	}
	c.JSON(http.StatusOK, paginated(users, total, page))
}

func (h *AdminHandler) UpdateUser(c *gin.Context) {
	id, ok := getIDParam(c, "id")
	if !ok {
		return
	}
	var req service.AdminUserUpdate
	if !bindJSON(c, &req) {
		return
	}
	user, err := h.admin.UpdateUser(id, req)
	if err != nil {
		respondError(c, err, "update user")
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": user})
}

func (h *AdminHandler) DeleteUser(c *gin.Context) {
	adminID, ok := getUserIDFromContext(c)
	if !ok {
		return
	}
	id, ok := getIDParam(c, "id")
	if !ok {
		return
	}
	if err := h.admin.DeleteUser(id, adminID); err != nil {
		respondError(c, err, "delete user")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "User deleted"})
}

func (h *AdminHandler) BulkUsers(c *gin.Context) {
	adminID, ok := getUserIDFromContext(c)
	if !ok {
		return
	}
	var req service.BulkUserRequest
	if !bindJSON(c, &req) {
		return
	}
	affected, err := h.admin.BulkUsers(adminID, req)
	if err != nil {
		respondError(c, err, "update users")
		return
	}
	c.JSON(http.StatusOK, gin.H{"action": req.Action, "affected": affected})
}

// ---- 草稿 ----

func (h *AdminHandler) ListDrafts(c *gin.Context) {
	page := getPageParams(c)
	filter := repository.DraftFilter{
		Search:   c.Query("search"),
		IsPublic: boolQuery(c, "isPublic"),
		Page:     page,
	}
	if raw := c.Query("ownerId"); raw != "" {
		id, err := parseUint(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid ownerId parameter"})
			return
		}
		filter.OwnerID = id
	}
	drafts, total, err := h.admin.ListDrafts(filter)
	if err != nil {
		respondError(c, err, "list drafts")
		return
	}
	c.JSON(http.StatusOK, paginated(drafts, total, page))
}

func (h *AdminHandler) DeleteDraft(c *gin.Context) {
	id, ok := getIDParam(c, "id")
	if !ok {
		return
	}
	if err := h.admin.DeleteDraft(id); err != nil {
		respondError(c, err, "delete draft")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Draft deleted"})
}

// ---- 分享记录 ----

func (h *AdminHandler) ListSharedDrafts(c *gin.Context) {
	page := getPageParams(c)
	filter := repository.SharedDraftFilter{Active: boolQuery(c, "active"), Page: page}
	for name, dst := range map[string]*uint{
		"draftId":    &filter.DraftID,
		"sharedBy":   &filter.SharedBy,
		"sharedWith": &filter.SharedWith,
	} {
		if raw := c.Query(name); raw != "" {
			id, err := parseUint(raw)
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid " + name + " parameter"})
				return
			}
			*dst = id
		}
	}
	shares, total, err := h.admin.ListSharedDrafts(filter)
	if err != nil {
		respondError(c, err, "list shared drafts")
		return
	}
	c.JSON(http.StatusOK, paginated(shares, total, page))
}

func (h *AdminHandler) RevokeShare(c *gin.Context) {
	id, ok := getIDParam(c, "id")
	if !ok {
		return
	}
	share, err := h.admin.RevokeShare(id)
	if err != nil {
		respondError(c, err, "revoke share")
		return
	}
	c.JSON(http.StatusOK, gin.H{"share": share})
}

func (h *AdminHandler) ReactivateShare(c *gin.Context) {
	id, ok := getIDParam(c, "id")
	if !ok {
		return
	}
	share, err := h.admin.ReactivateShare(id)
	if err != nil {
		respondError(c, err, "reactivate share")
		return
	}
	c.JSON(http.StatusOK, gin.H{"share": share})
}

func (h *AdminHandler) DeleteShare(c *gin.Context) {
	id, ok := getIDParam(c, "id")
	if !ok {
		return
	}
	if err := h.admin.DeleteShare(id); err != nil {
		respondError(c, err, "delete share")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Share deleted"})
}

// CleanupShares 删除失效超过 olderThanDays 天的记录，默认使用配置的清理周期
func (h *AdminHandler) CleanupShares(c *gin.Context) {
	olderThan := config.GlobalConfig.Sharing.CleanupAfter
	if raw := c.Query("olderThanDays"); raw != "" {
		days, err := parseUint(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid olderThanDays parameter"})
			return
		}
		olderThan = time.Duration(days) * 24 * time.Hour
	}
	deleted, err := h.admin.CleanupShares(olderThan)
	if err != nil {
		respondError(c, err, "clean up shares")
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": deleted})
}

// ---- 升级申请 ----

func (h *AdminHandler) ListUpgradeRequests(c *gin.Context) {
	page := getPageParams(c)
	requests, total, err := h.admin.ListUpgradeRequests(repository.UpgradeRequestFilter{
		Status: c.Query("status"),
		Page:   page,
	})
	if err != nil {
		respondError(c, err, "list upgrade requests")
		return
	}
	c.JSON(http.StatusOK, paginated(requests, total, page))
}

func (h *AdminHandler) ReviewUpgrade(c *gin.Context) {
	adminID, ok := getUserIDFromContext(c)
	if !ok {
		return
	}
	id, ok := getIDParam(c, "id")
	if !ok {
		return
	}
	var req service.ReviewUpgradeRequest
	if !bindJSON(c, &req) {
		return
	}
	upgrade, err := h.admin.ReviewUpgrade(id, adminID, req)
	if err != nil {
		respondError(c, err, "review upgrade request")
		return
	}
	c.JSON(http.StatusOK, gin.H{"request": upgrade})
}

// ---- 计划 ----

func (h *AdminHandler) ListPlans(c *gin.Context) {
	plans, err := h.plans.ListAll()
	if err != nil {
		respondError(c, err, "list plans")
		return
	}
	c.JSON(http.StatusOK, gin.H{"plans": plans})
}

func (h *AdminHandler) CreatePlan(c *gin.Context) {
	var req service.PlanRequest
	if !bindJSON(c, &req) {
		return
	}
	plan, err := h.plans.Create(req)
	if err != nil {
		respondError(c, err, "create plan")
		return
	}
	c.JSON(http.StatusCreated, gin.H{"plan": plan})
}

func (h *AdminHandler) UpdatePlan(c *gin.Context) {
	id, ok := getIDParam(c, "id")
	if !ok {
		return
	}
	var req service.PlanRequest
	if !bindJSON(c, &req) {
		return
	}
	plan, err := h.plans.Update(id, req)
	if err != nil {
		respondError(c, err, "update plan")
		return
	}
	c.JSON(http.StatusOK, gin.H{"plan": plan})
}

func (h *AdminHandler) DeletePlan(c *gin.Context) {
	id, ok := getIDParam(c, "id")
	if !ok {
		return
	}
	if err := h.plans.Delete(id); err != nil {
		respondError(c, err, "delete plan")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Plan deleted"})
}
