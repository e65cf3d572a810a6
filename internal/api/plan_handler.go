package api

import (
	"net/http"

	"picture-wall/internal/service"

	"github.com/gin-gonic/gin"
)

// PlanHandler 处理计划列表、计划选择、用量和升级申请
type PlanHandler struct {
	plans *service.PlanService
	subs  *service.SubscriptionService
}

func NewPlanHandler(plans *service.PlanService, subs *service.SubscriptionService) *PlanHandler {
	return &PlanHandler{plans: plans, subs: subs}
}

func (h *PlanHandler) ListPlans(c *gin.Context) {
	plans, err := h.plans.ListActive()
	if err != nil {
		respondError(c, err, "list plans")
		return
	}
	c.JSON(http.StatusOK, gin.H{"plans": plans})
}

func (h *PlanHandler) ChoosePlan(c *gin.Context) {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		return
	}
	var req service.ChoosePlanRequest
	if !bindJSON(c, &req) {
		return
	}
	sub, err := h.subs.ChoosePlan(userID, req.Plan)
	if err != nil {
		respondError(c, err, "choose plan")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Plan updated", "subscription": sub})
}

func (h *PlanHandler) Usage(c *gin.Context) {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		return
	}
	usage, err := h.subs.Usage(userID)
	if err != nil {
		respondError(c, err, "load usage")
		return
	}
	c.JSON(http.StatusOK, usage)
}

func (h *PlanHandler) RequestUpgrade(c *gin.Context) {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		return
	}
	var req service.UpgradeRequestInput
	if !bindJSON(c, &req) {
		return
	}
	upgrade, err := h.subs.RequestUpgrade(userID, req)
	if err != nil {
		respondError(c, err, "request upgrade")
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Upgrade request submitted", "request": upgrade})
}

func (h *PlanHandler) MyUpgradeRequests(c *gin.Context) {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		return
	}
	requests, err := h.subs.MyUpgradeRequests(userID)
	if err != nil {
		respondError(c, err, "list upgrade requests")
		return
	}
	c.JSON(http.StatusOK, gin.H{"requests": requests})
}
