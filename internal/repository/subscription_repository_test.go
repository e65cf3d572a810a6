package repository

import (
	"picture-wall/internal/model"
	"picture-wall/internal/testutil"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestSubscriptionRepository_AssignPlan(t *testing.T) {
	testutil.SetupDB(t)
	repo := NewSubscriptionRepository()
	user := createTestUser(t, "sub")

	sub, err := repo.AssignPlan(user.ID, "free", time.Now())
	require.NoError(t, err)
	require.NotNil(t, sub)
	assert.Equal(t, "free", sub.Plan)
	assert.Equal(t, model.SubscriptionActive, sub.Status)

	end := time.Now().Add(-time.Hour)
	require.NoError(t, NewSubscriptionRepository().db.Model(sub).Update("end_date", end).Error)

	sub, err = repo.AssignPlan(user.ID, "pro", time.Now())
	require.NoError(t, err)
	assert.Equal(t, "pro", sub.Plan)
	assert.Nil(t, sub.EndDate, "reassigning clears the end date")

	counts, err := repo.CountByPlan()
	require.NoError(t, err)
	assert.Equal(t, []PlanCount{{Plan: "pro", Count: 1}}, counts)
}

func TestSubscriptionRepository_IncrementUsage(t *testing.T) {
	testutil.SetupDB(t)
	repo := NewSubscriptionRepository()
	user := createTestUser(t, "usage")
	_, err := repo.AssignPlan(user.ID, "free", time.Now())
	require.NoError(t, err)

	require.NoError(t, repo.IncrementUsage(user.ID, UsageDraftsCreated, 1))
	require.NoError(t, repo.IncrementUsage(user.ID, UsageSharesMade, 3))
	require.NoError(t, repo.IncrementUsage(user.ID, UsageLogins, 1))
	// 没有订阅的用户不报错
	require.NoError(t, repo.IncrementUsage(user.ID+1, UsageLogins, 1))

	sub, err := repo.FindByUserID(user.ID)
	require.NoError(t, err)
	assert.Equal(t, model.SubscriptionUsage{DraftsCreated: 1, SharesMade: 3, Logins: 1}, sub.Usage)
}

func TestSubscriptionRepository_ExpireEnded(t *testing.T) {
	testutil.SetupDB(t)
	repo := NewSubscriptionRepository()
	now := time.Now()
	past := now.Add(-time.Hour)
	future := now.Add(time.Hour)

	for i, end := range []*time.Time{&past, &future, nil} {
		user := createTestUser(t, []string{"u1", "u2", "u3"}[i])
		require.NoError(t, repo.Create(&model.Subscription{
			UserID: user.ID, Plan: "pro", Status: model.SubscriptionActive, StartDate: now, EndDate: end,
		}))
	}

	n, err := repo.ExpireEnded(now)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)
}

func TestSubscriptionRepository_ForUpdate(t *testing.T) {
	testutil.SetupDB(t)
	user := createTestUser(t, "locked")
	_, err := NewSubscriptionRepository().AssignPlan(user.ID, "free", time.Now())
	require.NoError(t, err)

	err = Transaction(func(tx *gorm.DB) error {
		sub, err := NewSubscriptionRepository().WithTx(tx).FindByUserIDForUpdate(user.ID)
		require.NotNil(t, sub)
		return err
	})
	require.NoError(t, err)
}

func TestUserRepository_ForUpdate(t *testing.T) {
	testutil.SetupDB(t)
	user := createTestUser(t, "locked")

	err := Transaction(func(tx *gorm.DB) error {
		repo := NewUserRepository().WithTx(tx)
		locked, err := repo.FindByIDForUpdate(user.ID)
		require.NoError(t, err)
		require.NotNil(t, locked)
		assert.Equal(t, user.Email, locked.Email)

		missing, err := repo.FindByIDForUpdate(user.ID + 1000)
		assert.Nil(t, missing)
		return err
	})
	require.NoError(t, err)
}

func TestPlanRepository_CRUD(t *testing.T) {
	testutil.SetupDB(t)
	repo := NewPlanRepository()

	free := &model.Plan{Name: "free", Price: 0, IsActive: true, Features: []string{"1 design"},
		Limits: model.PlanLimits{DesignsPerMonth: 1, ImageUploadsPerDesign: 3}}
	pro := &model.Plan{Name: "pro", Price: 9.99, IsActive: false,
		Limits: model.PlanLimits{DesignsPerMonth: model.Unlimited, ImageUploadsPerDesign: 20}}
	require.NoError(t, repo.Create(free))
	require.NoError(t, repo.Create(pro))

	active, err := repo.List(true)
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, "free", active[0].Name)
	assert.Equal(t, []string{"1 design"}, active[0].Features)

	found, err := repo.FindByName("pro")
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, model.Unlimited, found.Limits.DesignsPerMonth)

	found.IsActive = true
	require.NoError(t, repo.Save(found))
	all, err := repo.List(true)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	require.NoError(t, repo.Delete(free.ID))
	gone, err := repo.FindByID(free.ID)
	require.NoError(t, err)
	assert.Nil(t, gone)
}
