package middleware

import (
	"net/http"
	"strings"

	"picture-wall/internal/model"
	"picture-wall/internal/repository"
	"picture-wall/pkg/logger"
	"picture-wall/pkg/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// 上下文中保存当前用户的键
const (
	ContextUserID = "userID"
	ContextUser   = "user"
)

// bearerToken 从 Authorization 头中取出令牌，格式为 "Bearer token"
func bearerToken(c *gin.Context) (string, bool) {
	parts := strings.SplitN(c.GetHeader("Authorization"), " ", 2)
	if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
		return "", false
	}
	return parts[1], true
}

// authenticate 解析令牌并读取用户，失败时返回对应的状态码和错误信息
func authenticate(token string) (*model.User, int, string) {
	claims, err := utils.ParseToken(token)
	if err != nil {
		return nil, http.StatusUnauthorized, "invalid or expired token"
	}

	user, err := repository.NewUserRepository().FindByID(claims.UserID)
	if err != nil {
		logger.L.Error("Failed to load user for token", zap.Uint("userID", claims.UserID), zap.Error(err))
		return nil, http.StatusInternalServerError, "internal server error"
	}
	if user == nil {
		return nil, http.StatusUnauthorized, "user not found"
	}
	if user.IsBanned {
		return nil, http.StatusForbidden, "account has been banned"
	}
	return user, http.StatusOK, ""
}

// 验证JWT中间件
func AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetHeader("Authorization") == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authorization header is required"})
			return
		}
		token, ok := bearerToken(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid authorization format"})
			return
		}

		user, status, msg := authenticate(token)
		if user == nil {
			c.AbortWithStatusJSON(status, gin.H{"error": msg})
			return
		}

		c.Set(ContextUserID, user.ID)
		c.Set(ContextUser, user)
		c.Next()
	}
}

// OptionalAuth 在携带有效令牌时设置当前用户，否则按匿名访问继续
func OptionalAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if token, ok := bearerToken(c); ok {
			if user, _, _ := authenticate(token); user != nil {
				c.Set(ContextUserID, user.ID)
				c.Set(ContextUser, user)
			}
		}
		c.Next()
	}
}

// AdminOnly 必须放在 AuthMiddleware 之后
func AdminOnly() gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := CurrentUser(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
			return
		}
		if !user.IsAdmin() {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "admin access required"})
			return
		}
		c.Next()
	}
}

// CurrentUser 返回认证中间件设置的用户
func CurrentUser(c *gin.Context) (*model.User, bool) {
	v, exists := c.Get(ContextUser)
	if !exists {
		return nil, false
	}
	user, ok := v.(*model.User)
	return user, ok && user != nil
}

// CurrentUserID 返回当前用户 ID，匿名访问时为 0
func CurrentUserID(c *gin.Context) uint {
	if id, ok := c.Get(ContextUserID); ok {
		if v, ok := id.(uint); ok {
			return v
		}
	}
	return 0
}
