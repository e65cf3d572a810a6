package api

import (
	"net/http"

	"picture-wall/internal/model"
	"picture-wall/internal/repository"
	"picture-wall/internal/service"

	"github.com/gin-gonic/gin"
)

// ModerationHandler 处理内容举报及管理员审核
type ModerationHandler struct {
	moderation *service.ModerationService
}

func NewModerationHandler(moderation *service.ModerationService) *ModerationHandler {
	return &ModerationHandler{moderation: moderation}
}

func (h *ModerationHandler) Flag(c *gin.Context) {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		return
	}
	var req service.CreateFlagRequest
	if !bindJSON(c, &req) {
		return
	}
	flag, err := h.moderation.Flag(userID, req)
	if err != nil {
		respondError(c, err, "flag content")
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Report submitted", "flag": flag})
}

func (h *ModerationHandler) List(c *gin.Context) {
	page := getPageParams(c)
	filter := repository.FlagFilter{
		Status:      model.FlagStatus(c.Query("status")),
		ContentType: model.ContentType(c.Query("contentType")),
		Page:        page,
	}
	flags, total, err := h.moderation.List(filter)
	if err != nil {
		respondError(c, err, "list flagged content")
		return
	}
	c.JSON(http.StatusOK, paginated(flags, total, page))
}

// Review 更新举报，处理动作的结果放在 action 字段中返回
func (h *ModerationHandler) Review(c *gin.Context) {
	adminID, ok := getUserIDFromContext(c)
	if !ok {
		return
	}
	flagID, ok := getIDParam(c, "id")
	if !ok {
		return
	}
	var req service.ReviewFlagRequest
	if !bindJSON(c, &req) {
		return
	}
	flag, result, err := h.moderation.Review(flagID, adminID, req)
	if err != nil {
		respondError(c, err, "review flagged content")
		return
	}
	body := gin.H{"flag": flag}
	if result != nil {
		body["action"] = result
	}
	c.JSON(http.StatusOK, body)
}
