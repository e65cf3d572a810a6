package service

import (
	"fmt"
	"strings"
	"time"

	"picture-wall/internal/model"
	"picture-wall/internal/repository"
	"picture-wall/pkg/config"
	"picture-wall/pkg/logger"
	"picture-wall/pkg/mailer"
	"picture-wall/pkg/utils"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// 处理认证相关业务逻辑
type AuthService struct {
	userRepo    *repository.UserRepository
	pendingRepo *repository.PendingRegistrationRepository
	subRepo     *repository.SubscriptionRepository
	mailer      mailer.Mailer
}

// 创建一个新的认证服务实例
func NewAuthService(userRepo *repository.UserRepository, pendingRepo *repository.PendingRegistrationRepository,
	subRepo *repository.SubscriptionRepository, m mailer.Mailer) *AuthService {
	return &AuthService{
		userRepo:    userRepo,
		pendingRepo: pendingRepo,
		subRepo:     subRepo,
		mailer:      m,
	}
}

// 用户注册请求
type RegisterRequest struct {
	Name     string `json:"name" binding:"required,max=100"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
}

type VerifyOTPRequest struct {
	Email string `json:"email" binding:"required,email"`
	OTP   string `json:"otp" binding:"required,len=6,numeric"`
}

type EmailRequest struct {
	Email string `json:"email" binding:"required,email"`
}

// 用户登陆请求
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type ResetPasswordRequest struct {
	Email       string `json:"email" binding:"required,email"`
	OTP         string `json:"otp" binding:"required,len=6,numeric"`
	NewPassword string `json:"newPassword" binding:"required,min=6"`
}

// Profile 是用户资料及其订阅
type Profile struct {
	User         *model.User         `json:"user"`
	Subscription *model.Subscription `json:"subscription"`
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func otpTTL() time.Duration {
	if ttl := config.GlobalConfig.OTP.TTL; ttl > 0 {
		return ttl
	}
	return time.Minute
}

func (s *AuthService) sendOTP(to, purpose, otp string) error {
	subject, html := mailer.OTPEmail(purpose, otp, otpTTL())
	if err := s.mailer.Send(to, subject, html); err != nil {
		logger.L.Error("Failed to send OTP email", zap.String("email", to), zap.String("purpose", purpose), zap.Error(err))
		return fmt.Errorf("failed to send verification email: %w", err)
	}
	return nil
}

// Register 保存待验证注册并发送验证码，用户记录在验证成功后才创建
func (s *AuthService) Register(req RegisterRequest) error {
	email := normalizeEmail(req.Email)
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return validationError("name is required")
	}

	// 检查邮箱是否已存在
	existing, err := s.userRepo.FindByEmail(email)
	if err != nil {
		return err
	}
	if existing != nil {
		return fmt.Errorf("email %w", ErrConflict)
	}

	// 加密密码
	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	otp, err := utils.GenerateOTP()
	if err != nil {
		return err
	}

	pending := &model.PendingRegistration{
		Name:         name,
		Email:        email,
		Password:     string(hashed),
		OTP:          otp,
		OTPExpiresAt: time.Now().Add(otpTTL()),
	}
	if err := s.pendingRepo.Upsert(pending); err != nil {
		return err
	}

	logger.L.Info("Registration pending verification", zap.String("email", email))
	return s.sendOTP(email, "verify", otp)
}

// VerifyOTP 校验验证码，创建用户和默认订阅，并返回登录令牌
func (s *AuthService) VerifyOTP(req VerifyOTPRequest) (string, *model.User, error) {
	email := normalizeEmail(req.Email)
	pending, err := s.pendingRepo.FindByEmail(email)
	if err != nil {
		return "", nil, err
	}
	if pending == nil {
		return "", nil, fmt.Errorf("pending registration %w", ErrNotFound)
	}
	now := time.Now()
	if pending.Expired(now) {
		return "", nil, validationError("otp has expired, request a new one")
	}
	if pending.OTP != strings.TrimSpace(req.OTP) {
		return "", nil, validationError("invalid otp")
	}

	user := &model.User{
		Name:       pending.Name,
		Email:      pending.Email,
		Password:   pending.Password,
		Role:       model.RoleUser,
		IsVerified: true,
	}
	err = repository.Transaction(func(tx *gorm.DB) error {
		users := s.userRepo.WithTx(tx)
		existing, err := users.FindByEmail(email)
		if err != nil {
			return err
		}
		if existing != nil {
			return fmt.Errorf("email %w", ErrConflict)
		}
		if err := users.Create(user); err != nil {
			return err
		}
		if _, err := s.subRepo.WithTx(tx).AssignPlan(user.ID, config.GlobalConfig.Plans.DefaultPlan, now); err != nil {
			return err
		}
		return s.pendingRepo.WithTx(tx).DeleteByEmail(email)
	})
	if err != nil {
		return "", nil, err
	}

	token, err := utils.GenerateToken(user.ID)
	if err != nil {
		return "", nil, err
	}
	logger.L.Info("User verified", zap.Uint("userID", user.ID), zap.String("email", email))
	return token, user, nil
}

// ResendOTP 生成新的验证码，旧验证码随即失效
func (s *AuthService) ResendOTP(email string) error {
	email = normalizeEmail(email)
	pending, err := s.pendingRepo.FindByEmail(email)
	if err != nil {
		return err
	}
	if pending == nil {
		user, err := s.userRepo.FindByEmail(email)
		if err != nil {
			return err
		}
		if user != nil {
			return fmt.Errorf("email already verified: %w", ErrConflict)
		}
		return fmt.Errorf("pending registration %w", ErrNotFound)
	}

	otp, err := utils.GenerateOTP()
	if err != nil {
		return err
	}
	if err := s.pendingRepo.UpdateOTP(pending.ID, otp, time.Now().Add(otpTTL())); err != nil {
		return err
	}
	return s.sendOTP(email, "verify", otp)
}

// 用户登陆
func (s *AuthService) Login(req LoginRequest) (string, *model.User, error) {
	// 查找用户
	user, err := s.userRepo.FindByEmail(normalizeEmail(req.Email))
	if err != nil {
		return "", nil, err
	}
	if user == nil {
		return "", nil, fmt.Errorf("%w: invalid email or password", ErrUnauthorized)
	}

	// 验证密码
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		return "", nil, fmt.Errorf("%w: invalid email or password", ErrUnauthorized)
	}

	now := time.Now()
	if user.IsBanned {
		return "", nil, fmt.Errorf("%w: account is banned", ErrForbidden)
	}
	if user.IsSuspended(now) {
		return "", nil, fmt.Errorf("%w: account is suspended until %s", ErrForbidden, user.SuspendedUntil.Format(time.RFC3339))
	}
	if user.SuspendedUntil != nil {
		// 暂停期已过，恢复账户
		if err := s.userRepo.UpdateFields(user.ID, map[string]interface{}{
			"suspended_until": nil,
			"is_verified":     true,
		}); err != nil {
			return "", nil, err
		}
		user.SuspendedUntil = nil
		user.IsVerified = true
	}
	if !user.IsVerified {
		return "", nil, fmt.Errorf("%w: email is not verified", ErrForbidden)
	}

	if err := s.userRepo.RecordLogin(user.ID, now); err != nil {
		return "", nil, err
	}
	user.LastLoginAt = &now
	if err := s.subRepo.IncrementUsage(user.ID, repository.UsageLogins, 1); err != nil {
		logger.L.Warn("Failed to record login usage", zap.Uint("userID", user.ID), zap.Error(err))
	}

	// 生成JWT令牌
	token, err := utils.GenerateToken(user.ID)
	if err != nil {
		return "", nil, err
	}
	return token, user, nil
}

// ForgotPassword 发送重置密码验证码，邮箱不存在时同样返回成功
func (s *AuthService) ForgotPassword(email string) error {
	email = normalizeEmail(email)
	user, err := s.userRepo.FindByEmail(email)
	if err != nil {
		return err
	}
	if user == nil {
		logger.L.Info("Password reset requested for unknown email", zap.String("email", email))
		return nil
	}

	otp, err := utils.GenerateOTP()
	if err != nil {
		return err
	}
	expires := time.Now().Add(otpTTL())
	if err := s.userRepo.UpdateFields(user.ID, map[string]interface{}{
		"reset_otp":        otp,
		"reset_otp_expiry": expires,
	}); err != nil {
		return err
	}
	return s.sendOTP(email, "reset", otp)
}

func (s *AuthService) ResetPassword(req ResetPasswordRequest) error {
	user, err := s.userRepo.FindByEmail(normalizeEmail(req.Email))
	if err != nil {
		return err
	}
	if user == nil || user.ResetOTP == "" || user.ResetOTP != strings.TrimSpace(req.OTP) {
		return validationError("invalid or expired otp")
	}
	if user.ResetOTPExpiry == nil || !time.Now().Before(*user.ResetOTPExpiry) {
		return validationError("invalid or expired otp")
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	return s.userRepo.UpdateFields(user.ID, map[string]interface{}{
		"password":         string(hashed),
		"reset_otp":        "",
		"reset_otp_expiry": nil,
	})
}

// Profile 返回用户资料
func (s *AuthService) Profile(userID uint) (*Profile, error) {
	user, err := s.userRepo.FindByID(userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, fmt.Errorf("user %w", ErrNotFound)
	}
	sub, err := s.subRepo.FindByUserID(userID)
	if err != nil {
		return nil, err
	}
	return &Profile{User: user, Subscription: sub}, nil
}
