package service

import (
	"errors"
	"testing"
	"time"

	"picture-wall/internal/model"
	"picture-wall/internal/repository"
	"picture-wall/pkg/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pendingOTP(t *testing.T, email string) *model.PendingRegistration {
	t.Helper()
	pending, err := repository.NewPendingRegistrationRepository().FindByEmail(email)
	require.NoError(t, err)
	require.NotNil(t, pending, "pending registration for %s", email)
	return pending
}

func TestAuthService_RegisterAndVerify(t *testing.T) {
	svc := setupServices(t)

	err := svc.auth.Register(RegisterRequest{Name: "Alice", Email: " Alice@Example.com ", Password: "password123"})
	require.NoError(t, err)

	pending := pendingOTP(t, "alice@example.com")
	assert.Len(t, pending.OTP, 6)
	assert.WithinDuration(t, time.Now().Add(time.Minute), pending.OTPExpiresAt, 5*time.Second)
	assert.Equal(t, "alice@example.com", svc.mailer.last().To)
	assert.Contains(t, svc.mailer.last().HTML, pending.OTP)

	// 验证前用户记录不存在
	user, err := repository.NewUserRepository().FindByEmail("alice@example.com")
	require.NoError(t, err)
	assert.Nil(t, user)

	_, _, err = svc.auth.VerifyOTP(VerifyOTPRequest{Email: "alice@example.com", OTP: "000000x"})
	assert.True(t, errors.Is(err, ErrValidation))

	token, user, err := svc.auth.VerifyOTP(VerifyOTPRequest{Email: "alice@example.com", OTP: pending.OTP})
	require.NoError(t, err)
	require.NotNil(t, user)
	assert.True(t, user.IsVerified)
	assert.Equal(t, model.RoleUser, user.Role)

	claims, err := utils.ParseToken(token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.UserID)

	sub, err := repository.NewSubscriptionRepository().FindByUserID(user.ID)
	require.NoError(t, err)
	require.NotNil(t, sub)
	assert.Equal(t, "free", sub.Plan)

	// 注册信息已被删除
	gone, err := repository.NewPendingRegistrationRepository().FindByEmail("alice@example.com")
	require.NoError(t, err)
	assert.Nil(t, gone)

	err = svc.auth.Register(RegisterRequest{Name: "Alice", Email: "alice@example.com", Password: "password123"})
	assert.True(t, errors.Is(err, ErrConflict))
}

func TestAuthService_OTPExpiresAfterTTL(t *testing.T) {
	svc := setupServices(t)
	require.NoError(t, svc.auth.Register(RegisterRequest{Name: "Bob", Email: "bob@example.com", Password: "password123"}))
	pending := pendingOTP(t, "bob@example.com")

	// 模拟 1 分钟后
	require.NoError(t, repository.NewPendingRegistrationRepository().UpdateOTP(pending.ID, pending.OTP, time.Now().Add(-time.Second)))

	_, _, err := svc.auth.VerifyOTP(VerifyOTPRequest{Email: "bob@example.com", OTP: pending.OTP})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrValidation))
	assert.Contains(t, err.Error(), "expired")
}

func TestAuthService_ResendRotatesOTP(t *testing.T) {
	svc := setupServices(t)
	require.NoError(t, svc.auth.Register(RegisterRequest{Name: "Carol", Email: "carol@example.com", Password: "password123"}))
	first := pendingOTP(t, "carol@example.com")

	// 直到生成不同的验证码为止
	var second *model.PendingRegistration
	for i := 0; i < 5; i++ {
		require.NoError(t, svc.auth.ResendOTP("carol@example.com"))
		second = pendingOTP(t, "carol@example.com")
		if second.OTP != first.OTP {
			break
		}
	}
	require.NotEqual(t, first.OTP, second.OTP)

	_, _, err := svc.auth.VerifyOTP(VerifyOTPRequest{Email: "carol@example.com", OTP: first.OTP})
	assert.True(t, errors.Is(err, ErrValidation))
	_, _, err = svc.auth.VerifyOTP(VerifyOTPRequest{Email: "carol@example.com", OTP: second.OTP})
	assert.NoError(t, err)

	err = svc.auth.ResendOTP("carol@example.com")
	assert.True(t, errors.Is(err, ErrConflict), "verified users cannot resend")
	err = svc.auth.ResendOTP("nobody@example.com")
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestAuthService_Login(t *testing.T) {
	svc := setupServices(t)
	seedPlan(t, "free", 1, 3)
	user := createUser(t, "dave", "free")
	userRepo := repository.NewUserRepository()

	tests := []struct {
		name    string
		req     LoginRequest
		wantErr error
	}{
		{name: "Valid login", req: LoginRequest{Email: "dave@example.com", Password: "password123"}},
		{name: "Email is case insensitive", req: LoginRequest{Email: "DAVE@example.com", Password: "password123"}},
		{name: "Wrong password", req: LoginRequest{Email: "dave@example.com", Password: "wrong"}, wantErr: ErrUnauthorized},
		{name: "Unknown user", req: LoginRequest{Email: "nobody@example.com", Password: "password123"}, wantErr: ErrUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			token, got, err := svc.auth.Login(tt.req)
			if tt.wantErr != nil {
				assert.True(t, errors.Is(err, tt.wantErr), "got %v", err)
				return
			}
			require.NoError(t, err)
			assert.NotEmpty(t, token)
			assert.Equal(t, user.ID, got.ID)
			assert.NotNil(t, got.LastLoginAt)
		})
	}

	sub, err := repository.NewSubscriptionRepository().FindByUserID(user.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, sub.Usage.Logins)

	// 被封禁的用户不能登录
	require.NoError(t, userRepo.UpdateFields(user.ID, map[string]interface{}{"is_banned": true}))
	_, _, err = svc.auth.Login(LoginRequest{Email: "dave@example.com", Password: "password123"})
	assert.True(t, errors.Is(err, ErrForbidden))
}

func TestAuthService_LoginAfterSuspension(t *testing.T) {
	svc := setupServices(t)
	user := createUser(t, "erin", "")
	userRepo := repository.NewUserRepository()

	require.NoError(t, userRepo.UpdateFields(user.ID, map[string]interface{}{
		"suspended_until": time.Now().Add(time.Hour),
		"is_verified":     false,
	}))
	_, _, err := svc.auth.Login(LoginRequest{Email: "erin@example.com", Password: "password123"})
	require.True(t, errors.Is(err, ErrForbidden))
	assert.Contains(t, err.Error(), "suspended")

	// 暂停期结束后恢复
	require.NoError(t, userRepo.UpdateFields(user.ID, map[string]interface{}{"suspended_until": time.Now().Add(-time.Minute)}))
	_, got, err := svc.auth.Login(LoginRequest{Email: "erin@example.com", Password: "password123"})
	require.NoError(t, err)
	assert.True(t, got.IsVerified)
	assert.Nil(t, got.SuspendedUntil)
}

func TestAuthService_PasswordReset(t *testing.T) {
	svc := setupServices(t)
	user := createUser(t, "frank", "")

	// 未知邮箱不泄露信息
	require.NoError(t, svc.auth.ForgotPassword("ghost@example.com"))
	assert.Empty(t, svc.mailer.sent)

	require.NoError(t, svc.auth.ForgotPassword("frank@example.com"))
	stored, err := repository.NewUserRepository().FindByID(user.ID)
	require.NoError(t, err)
	require.Len(t, stored.ResetOTP, 6)
	assert.Contains(t, svc.mailer.last().Subject, "reset")

	err = svc.auth.ResetPassword(ResetPasswordRequest{Email: "frank@example.com", OTP: "999999x", NewPassword: "newpass1"})
	assert.True(t, errors.Is(err, ErrValidation))

	require.NoError(t, svc.auth.ResetPassword(ResetPasswordRequest{Email: "frank@example.com", OTP: stored.ResetOTP, NewPassword: "newpass1"}))
	_, _, err = svc.auth.Login(LoginRequest{Email: "frank@example.com", Password: "newpass1"})
	assert.NoError(t, err)

	// 验证码只能使用一次
	err = svc.auth.ResetPassword(ResetPasswordRequest{Email: "frank@example.com", OTP: stored.ResetOTP, NewPassword: "another1"})
	assert.True(t, errors.Is(err, ErrValidation))
}

func TestAuthService_Profile(t *testing.T) {
	svc := setupServices(t)
	user := createUser(t, "gina", "free")

	profile, err := svc.auth.Profile(user.ID)
	require.NoError(t, err)
	assert.Equal(t, "gina@example.com", profile.User.Email)
	require.NotNil(t, profile.Subscription)
	assert.Equal(t, "free", profile.Subscription.Plan)

	_, err = svc.auth.Profile(user.ID + 100)
	assert.True(t, errors.Is(err, ErrNotFound))
}
