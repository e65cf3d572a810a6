package api

import (
	"errors"
	"net/http"
	"strconv"

	"picture-wall/internal/middleware"
	"picture-wall/internal/repository"
	"picture-wall/internal/service"
	"picture-wall/pkg/config"
	"picture-wall/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// respondError 把服务层错误转换为 HTTP 状态码和 {error, details} 响应
func respondError(c *gin.Context, err error, action string) {
	var limitErr *service.LimitExceededError
	switch {
	case errors.As(err, &limitErr):
		c.JSON(http.StatusForbidden, gin.H{
			"error": limitErr.Error(),
			"details": gin.H{
				"resource":     limitErr.Resource,
				"currentCount": limitErr.CurrentCount,
				"limit":        limitErr.Limit,
			},
		})
	case errors.Is(err, service.ErrValidation):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrUnauthorized):
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrConflict):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		logger.L.Error("Failed to "+action,
			zap.Error(err),
			zap.String("path", c.Request.URL.Path),
			zap.Uint("userID", middleware.CurrentUserID(c)))
		body := gin.H{"error": "Failed to " + action}
		if config.GlobalConfig.Server.IsDevelopment() {
			body["details"] = err.Error()
		}
		c.JSON(http.StatusInternalServerError, body)
	}
}

// bindJSON 解析请求体，失败时直接返回 400
func bindJSON(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return false
	}
	return true
}

func getUserIDFromContext(c *gin.Context) (uint, bool) {
	userID := middleware.CurrentUserID(c)
	if userID == 0 {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return 0, false
	}
	return userID, true
}

// getIDParam 读取路径中的数字 ID
func getIDParam(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 32)
	if err != nil || id == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid " + name + " parameter"})
		return 0, false
	}
	return uint(id), true
}

func parseUint(raw string) (uint, error) {
	v, err := strconv.ParseUint(raw, 10, 32)
	return uint(v), err
}

func getPageParams(c *gin.Context) repository.Page {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	return repository.Page{Page: page, Limit: limit}.Normalize()
}

// boolQuery 解析可选的布尔查询参数，未提供或无法解析时返回 nil
func boolQuery(c *gin.Context, name string) *bool {
	raw, ok := c.GetQuery(name)
	if !ok {
		return nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return nil
	}
	return &v
}

func paginated(items interface{}, total int64, page repository.Page) gin.H {
	return gin.H{"items": items, "total": total, "page": page.Page, "limit": page.Limit}
}
