package api

import (
	"net/http"

	"picture-wall/internal/service"

	"github.com/gin-gonic/gin"
)

// 处理认证相关的HTTP请求
type AuthHandler struct {
	authService *service.AuthService
}

func NewAuthHandler(authService *service.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// 处理用户注册请求，账号在验证码通过后才创建
func (h *AuthHandler) Register(c *gin.Context) {
	var req service.RegisterRequest
	if !bindJSON(c, &req) {
		return
	}
	if err := h.authService.Register(req); err != nil {
		respondError(c, err, "register")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "OTP sent to your email. Please verify to complete registration."})
}

func (h *AuthHandler) VerifyOTP(c *gin.Context) {
	var req service.VerifyOTPRequest
	if !bindJSON(c, &req) {
		return
	}
	token, user, err := h.authService.VerifyOTP(req)
	if err != nil {
		respondError(c, err, "verify OTP")
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"message": "Registration complete",
		"token":   token,
		"user":    user,
	})
}

func (h *AuthHandler) ResendOTP(c *gin.Context) {
	var req service.EmailRequest
	if !bindJSON(c, &req) {
		return
	}
	if err := h.authService.ResendOTP(req.Email); err != nil {
		respondError(c, err, "resend OTP")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "A new OTP has been sent"})
}

// 处理用户登陆请求
func (h *AuthHandler) Login(c *gin.Context) {
	var req service.LoginRequest
	if !bindJSON(c, &req) {
		return
	}
	token, user, err := h.authService.Login(req)
	if err != nil {
		respondError(c, err, "log in")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"token": token,
		"user":  user,
	})
}

// ForgotPassword 对未注册的邮箱同样返回成功
func (h *AuthHandler) ForgotPassword(c *gin.Context) {
	var req service.EmailRequest
	if !bindJSON(c, &req) {
		return
	}
	if err := h.authService.ForgotPassword(req.Email); err != nil {
		respondError(c, err, "start password reset")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "If the email is registered, a reset code has been sent"})
}

func (h *AuthHandler) ResetPassword(c *gin.Context) {
	var req service.ResetPasswordRequest
	if !bindJSON(c, &req) {
		return
	}
	if err := h.authService.ResetPassword(req); err != nil {
		respondError(c, err, "reset password")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Password updated"})
}

func (h *AuthHandler) Profile(c *gin.Context) {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		return
	}
	profile, err := h.authService.Profile(userID)
	if err != nil {
		respondError(c, err, "load profile")
		return
	}
	c.JSON(http.StatusOK, profile)
}
