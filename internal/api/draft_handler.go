package api

import (
	"net/http"

	"picture-wall/internal/middleware"
	"picture-wall/internal/service"

	"github.com/gin-gonic/gin"
)

// DraftHandler 处理草稿的增删改查与分享
type DraftHandler struct {
	drafts *service.DraftService
	shares *service.ShareService
}

func NewDraftHandler(drafts *service.DraftService, shares *service.ShareService) *DraftHandler {
	return &DraftHandler{drafts: drafts, shares: shares}
}

func (h *DraftHandler) Create(c *gin.Context) {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		return
	}
	var req service.CreateDraftRequest
	if !bindJSON(c, &req) {
		return
	}
	draft, err := h.drafts.Create(userID, req)
	if err != nil {
		respondError(c, err, "create draft")
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Draft created", "draft": draft})
}

func (h *DraftHandler) List(c *gin.Context) {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		return
	}
	drafts, err := h.drafts.List(userID)
	if err != nil {
		respondError(c, err, "list drafts")
		return
	}
	c.JSON(http.StatusOK, gin.H{"drafts": drafts})
}

func (h *DraftHandler) Get(c *gin.Context) {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		return
	}
	draftID, ok := getIDParam(c, "id")
	if !ok {
		return
	}
	view, err := h.drafts.ResolveDraftAccess(draftID, userID)
	if err != nil {
		respondError(c, err, "load draft")
		return
	}
	c.JSON(http.StatusOK, gin.H{"draft": view})
}

// GetShared 按 ID 或分享令牌读取草稿，匿名用户只能读取公开草稿
func (h *DraftHandler) GetShared(c *gin.Context) {
	view, err := h.drafts.GetShared(c.Param("id"), middleware.CurrentUserID(c))
	if err != nil {
		respondError(c, err, "load draft")
		return
	}
	c.JSON(http.StatusOK, gin.H{"draft": view})
}

func (h *DraftHandler) Update(c *gin.Context) {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		return
	}
	draftID, ok := getIDParam(c, "id")
	if !ok {
		return
	}
	var req service.UpdateDraftRequest
	if !bindJSON(c, &req) {
		return
	}
	draft, err := h.drafts.Update(draftID, userID, req)
	if err != nil {
		respondError(c, err, "update draft")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Draft updated", "draft": draft})
}

func (h *DraftHandler) Delete(c *gin.Context) {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		return
	}
	draftID, ok := getIDParam(c, "id")
	if !ok {
		return
	}
	if err := h.drafts.Delete(draftID, userID); err != nil {
		respondError(c, err, "delete draft")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Draft deleted"})
}

func (h *DraftHandler) Share(c *gin.Context) {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		return
	}
	draftID, ok := getIDParam(c, "id")
	if !ok {
		return
	}
	var req service.ShareDraftRequest
	if !bindJSON(c, &req) {
		return
	}
	result, err := h.shares.Share(draftID, userID, req.UserIDs)
	if err != nil {
		respondError(c, err, "share draft")
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *DraftHandler) SetPublic(c *gin.Context) {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		return
	}
	draftID, ok := getIDParam(c, "id")
	if !ok {
		return
	}
	link, err := h.shares.SetPublic(draftID, userID)
	if err != nil {
		respondError(c, err, "make draft public")
		return
	}
	c.JSON(http.StatusOK, link)
}

func (h *DraftHandler) RevokeShare(c *gin.Context) {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		return
	}
	draftID, ok := getIDParam(c, "id")
	if !ok {
		return
	}
	if err := h.shares.Revoke(draftID, userID); err != nil {
		respondError(c, err, "revoke sharing")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Sharing revoked"})
}

func (h *DraftHandler) SharedWithMe(c *gin.Context) {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		return
	}
	drafts, err := h.shares.SharedWithMe(userID)
	if err != nil {
		respondError(c, err, "list shared drafts")
		return
	}
	c.JSON(http.StatusOK, gin.H{"drafts": drafts})
}

func (h *DraftHandler) SharedByMe(c *gin.Context) {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		return
	}
	drafts, err := h.shares.SharedByMe(userID)
	if err != nil {
		respondError(c, err, "list shared drafts")
		return
	}
	c.JSON(http.StatusOK, gin.H{"drafts": drafts})
}

// RemoveRecipient 默认移除调用者自己，所有者可通过 userId 查询参数移除其他接收者
func (h *DraftHandler) RemoveRecipient(c *gin.Context) {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		return
	}
	draftID, ok := getIDParam(c, "id")
	if !ok {
		return
	}
	var recipientID uint
	if c.Query("userId") != "" {
		id, err := parseUint(c.Query("userId"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid userId parameter"})
			return
		}
		recipientID = id
	}
	if err := h.shares.RemoveRecipient(draftID, userID, recipientID); err != nil {
		respondError(c, err, "remove recipient")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Removed from shared draft"})
}
