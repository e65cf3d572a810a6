package service

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"picture-wall/internal/model"
	"picture-wall/internal/repository"
	"picture-wall/internal/testutil"
	"picture-wall/pkg/storage"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

// recordingMailer 记录发出的邮件
type recordingMailer struct {
	mu   sync.Mutex
	sent []sentMail
	err  error
}

type sentMail struct {
	To, Subject, HTML string
}

func (m *recordingMailer) Send(to, subject, html string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, sentMail{To: to, Subject: subject, HTML: html})
	return nil
}

func (m *recordingMailer) last() sentMail {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.sent) == 0 {
		return sentMail{}
	}
	return m.sent[len(m.sent)-1]
}

type testServices struct {
	mailer      *recordingMailer
	store       *storage.LocalStorage
	plans       *PlanService
	auth        *AuthService
	drafts      *DraftService
	shares      *ShareService
	subs        *SubscriptionService
	moderation  *ModerationService
	admin       *AdminService
	catalog     *CatalogService
	uploads     *UploadService
	maintenance *MaintenanceService
}

func setupServices(t *testing.T) *testServices {
	t.Helper()
	testutil.SetupDB(t)

	store, err := storage.NewLocalStorage(t.TempDir(), "/uploads")
	require.NoError(t, err)

	userRepo := repository.NewUserRepository()
	pendingRepo := repository.NewPendingRegistrationRepository()
	draftRepo := repository.NewDraftRepository()
	shareRepo := repository.NewSharedDraftRepository()
	subRepo := repository.NewSubscriptionRepository()
	requestRepo := repository.NewUpgradeRequestRepository()
	flagRepo := repository.NewFlaggedContentRepository()

	m := &recordingMailer{}
	plans := NewPlanService(repository.NewPlanRepository())
	admin := NewAdminService(userRepo, draftRepo, shareRepo, subRepo, requestRepo, flagRepo, plans)
	return &testServices{
		mailer:      m,
		store:       store,
		plans:       plans,
		auth:        NewAuthService(userRepo, pendingRepo, subRepo, m),
		drafts:      NewDraftService(draftRepo, shareRepo, subRepo, plans),
		shares:      NewShareService(draftRepo, shareRepo, userRepo, subRepo),
		subs:        NewSubscriptionService(subRepo, draftRepo, requestRepo, plans),
		moderation:  NewModerationService(flagRepo, draftRepo, userRepo, shareRepo),
		admin:       admin,
		catalog:     NewCatalogService(repository.NewCategoryRepository(), repository.NewDecorRepository()),
		uploads:     NewUploadService(store, draftRepo, subRepo, plans),
		maintenance: NewMaintenanceService(pendingRepo, subRepo, admin, plans),
	}
}

// seedPlan 创建一个启用的计划
func seedPlan(t *testing.T, name string, designs, images int) *model.Plan {
	t.Helper()
	plan := &model.Plan{
		Name:     name,
		IsActive: true,
		Limits:   model.PlanLimits{DesignsPerMonth: designs, ImageUploadsPerDesign: images},
	}
	require.NoError(t, repository.NewPlanRepository().Create(plan))
	return plan
}

// createUser 直接创建已验证的用户，plan 非空时同时创建订阅
func createUser(t *testing.T, name, plan string) *model.User {
	t.Helper()
	hashed, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	require.NoError(t, err)
	user := &model.User{
		Name:       name,
		Email:      fmt.Sprintf("%s@example.com", name),
		Password:   string(hashed),
		Role:       model.RoleUser,
		IsVerified: true,
	}
	require.NoError(t, repository.NewUserRepository().Create(user))
	if plan != "" {
		_, err := repository.NewSubscriptionRepository().AssignPlan(user.ID, plan, time.Now())
		require.NoError(t, err)
	}
	return user
}

func createDraft(t *testing.T, svc *testServices, owner *model.User, name string) *model.Draft {
	t.Helper()
	draft, err := svc.drafts.Create(owner.ID, CreateDraftRequest{Name: name, WallData: []byte(`{"frames":[]}`)})
	require.NoError(t, err)
	return draft
}
