package service

import (
	"errors"
	"testing"
	"time"

	"picture-wall/internal/model"
	"picture-wall/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAdminService_ShareLifecycle(t *testing.T) {
	svc := setupServices(t)
	owner := createUser(t, "owner", "")
	friend := createUser(t, "friend", "")
	draft := createDraft(t, svc, owner, "Hall")
	_, err := svc.shares.Share(draft.ID, owner.ID, []uint{friend.ID})
	require.NoError(t, err)

	rows, _, err := svc.admin.ListSharedDrafts(repository.SharedDraftFilter{DraftID: draft.ID})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	share := rows[0]

	revoked, err := svc.admin.RevokeShare(share.ID)
	require.NoError(t, err)
	assert.False(t, revoked.IsActive)
	assert.NotNil(t, revoked.UnsharedAt)
	stored, err := repository.NewDraftRepository().FindByID(draft.ID)
	require.NoError(t, err)
	assert.False(t, stored.IsSharedWith(friend.ID))

	restored, err := svc.admin.ReactivateShare(share.ID)
	require.NoError(t, err)
	assert.True(t, restored.IsActive)
	assert.Nil(t, restored.UnsharedAt)
	stored, err = repository.NewDraftRepository().FindByID(draft.ID)
	require.NoError(t, err)
	assert.True(t, stored.IsSharedWith(friend.ID))

	// 所有者重新分享后旧记录不能再启用
	_, err = svc.admin.RevokeShare(share.ID)
	require.NoError(t, err)
	_, err = svc.shares.Share(draft.ID, owner.ID, []uint{friend.ID})
	require.NoError(t, err)
	_, err = svc.admin.ReactivateShare(share.ID)
	assert.True(t, errors.Is(err, ErrConflict))

	// 草稿删除后只能删除记录
	require.NoError(t, svc.drafts.Delete(draft.ID, owner.ID))
	_, err = svc.admin.ReactivateShare(share.ID)
	assert.True(t, errors.Is(err, ErrConflict))
	require.NoError(t, svc.admin.DeleteShare(share.ID))
	_, err = svc.admin.RevokeShare(share.ID)
	assert.True(t, errors.Is(err, ErrNotFound))
}

// staleAndLiveShares 分享、移除再分享，返回失效的旧记录和有效的新记录
func staleAndLiveShares(t *testing.T, svc *testServices, draft *model.Draft, owner, friend *model.User) (model.SharedDraft, model.SharedDraft) {
	t.Helper()
	_, err := svc.shares.Share(draft.ID, owner.ID, []uint{friend.ID})
	require.NoError(t, err)
	require.NoError(t, svc.shares.RemoveRecipient(draft.ID, friend.ID, 0))
	_, err = svc.shares.Share(draft.ID, owner.ID, []uint{friend.ID})
	require.NoError(t, err)

	inactive, active := false, true
	stale, _, err := svc.admin.ListSharedDrafts(repository.SharedDraftFilter{DraftID: draft.ID, Active: &inactive})
	require.NoError(t, err)
	require.Len(t, stale, 1)
	live, _, err := svc.admin.ListSharedDrafts(repository.SharedDraftFilter{DraftID: draft.ID, Active: &active})
	require.NoError(t, err)
	require.Len(t, live, 1)
	require.NotNil(t, stale[0].UnsharedAt)
	return stale[0], live[0]
}

func TestAdminService_RevokeInactiveShareKeepsRecipient(t *testing.T) {
	svc := setupServices(t)
	owner := createUser(t, "owner", "")
	friend := createUser(t, "friend", "")
	draft := createDraft(t, svc, owner, "Hall")
	stale, live := staleAndLiveShares(t, svc, draft, owner, friend)

	revoked, err := svc.admin.RevokeShare(stale.ID)
	require.NoError(t, err)
	assert.False(t, revoked.IsActive)
	require.NotNil(t, revoked.UnsharedAt)
	assert.True(t, stale.UnsharedAt.Equal(*revoked.UnsharedAt))

	current, err := repository.NewSharedDraftRepository().FindByID(live.ID)
	require.NoError(t, err)
	assert.True(t, current.IsActive)
	stored, err := repository.NewDraftRepository().FindByID(draft.ID)
	require.NoError(t, err)
	assert.True(t, stored.IsSharedWith(friend.ID))

	view, err := svc.drafts.ResolveDraftAccess(draft.ID, friend.ID)
	require.NoError(t, err)
	assert.Equal(t, LevelRead, view.Access)
}

func TestAdminService_CleanupShares(t *testing.T) {
	svc := setupServices(t)
	owner := createUser(t, "owner", "")
	friend := createUser(t, "friend", "")
	draft := createDraft(t, svc, owner, "Hall")
	_, err := svc.shares.Share(draft.ID, owner.ID, []uint{friend.ID})
	require.NoError(t, err)
	require.NoError(t, svc.shares.Revoke(draft.ID, owner.ID))

	n, err := svc.admin.CleanupShares(24 * time.Hour)
	require.NoError(t, err)
	assert.Zero(t, n)

	n, err = svc.maintenance.CleanupShares(0)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)
}

func TestAdminService_DeleteUser(t *testing.T) {
	svc := setupServices(t)
	seedPlan(t, "free", 5, 3)
	admin := createUser(t, "admin", "")
	victim := createUser(t, "victim", "free")
	other := createUser(t, "other", "free")

	victimDraft := createDraft(t, svc, victim, "Victim wall")
	otherDraft := createDraft(t, svc, other, "Other wall")
	_, err := svc.shares.Share(victimDraft.ID, victim.ID, []uint{other.ID})
	require.NoError(t, err)
	_, err = svc.shares.Share(otherDraft.ID, other.ID, []uint{victim.ID})
	require.NoError(t, err)

	assert.True(t, errors.Is(svc.admin.DeleteUser(admin.ID, admin.ID), ErrValidation))
	assert.True(t, errors.Is(svc.admin.DeleteUser(9999, admin.ID), ErrNotFound))
	require.NoError(t, svc.admin.DeleteUser(victim.ID, admin.ID))

	gone, err := repository.NewUserRepository().FindByID(victim.ID)
	require.NoError(t, err)
	assert.Nil(t, gone)
	d, err := repository.NewDraftRepository().FindByID(victimDraft.ID)
	require.NoError(t, err)
	assert.Nil(t, d)
	sub, err := repository.NewSubscriptionRepository().FindByUserID(victim.ID)
	require.NoError(t, err)
	assert.Nil(t, sub)

	remaining, err := repository.NewDraftRepository().FindByID(otherDraft.ID)
	require.NoError(t, err)
	assert.False(t, remaining.IsSharedWith(victim.ID))
	active, err := repository.NewSharedDraftRepository().CountActive()
	require.NoError(t, err)
	assert.Zero(t, active)
}

func TestAdminService_UpdateUser(t *testing.T) {
	svc := setupServices(t)
	seedPlan(t, "pro", 20, 20)
	user := createUser(t, "ivy", "")

	role := "superuser"
	_, err := svc.admin.UpdateUser(user.ID, AdminUserUpdate{Role: &role})
	assert.True(t, errors.Is(err, ErrValidation))

	days := 3
	plan := "pro"
	updated, err := svc.admin.UpdateUser(user.ID, AdminUserUpdate{SuspendDays: &days, Plan: &plan})
	require.NoError(t, err)
	assert.True(t, updated.IsSuspended(time.Now()))
	sub, err := repository.NewSubscriptionRepository().FindByUserID(user.ID)
	require.NoError(t, err)
	assert.Equal(t, "pro", sub.Plan)

	zero := 0
	updated, err = svc.admin.UpdateUser(user.ID, AdminUserUpdate{SuspendDays: &zero})
	require.NoError(t, err)
	assert.Nil(t, updated.SuspendedUntil)

	missing := "platinum"
	_, err = svc.admin.UpdateUser(user.ID, AdminUserUpdate{Plan: &missing})
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestAdminService_BulkUsers(t *testing.T) {
	svc := setupServices(t)
	admin := createUser(t, "admin", "")
	a := createUser(t, "a", "")
	b := createUser(t, "b", "")
	users := repository.NewUserRepository()

	n, err := svc.admin.BulkUsers(admin.ID, BulkUserRequest{UserIDs: []uint{a.ID, b.ID, admin.ID}, Action: BulkBan})
	require.NoError(t, err)
	assert.EqualValues(t, 2, n)
	got, err := users.FindByID(admin.ID)
	require.NoError(t, err)
	assert.False(t, got.IsBanned)

	_, err = svc.admin.BulkUsers(admin.ID, BulkUserRequest{UserIDs: []uint{admin.ID}, Action: BulkBan})
	assert.True(t, errors.Is(err, ErrValidation))
	_, err = svc.admin.BulkUsers(admin.ID, BulkUserRequest{UserIDs: []uint{a.ID}, Action: "promote"})
	assert.True(t, errors.Is(err, ErrValidation))

	n, err = svc.admin.BulkUsers(admin.ID, BulkUserRequest{UserIDs: []uint{a.ID, b.ID, 4242}, Action: BulkDelete})
	require.NoError(t, err)
	assert.EqualValues(t, 2, n)
	count, err := users.Count()
	require.NoError(t, err)
	assert.EqualValues(t, 1, count)
}

func TestAdminService_Dashboard(t *testing.T) {
	svc := setupServices(t)
	seedPlan(t, "free", 5, 3)
	owner := createUser(t, "owner", "free")
	friend := createUser(t, "friend", "free")
	draft := createDraft(t, svc, owner, "Public")
	_, err := svc.shares.SetPublic(draft.ID, owner.ID)
	require.NoError(t, err)
	createDraft(t, svc, owner, "Private")
	_, err = svc.shares.Share(draft.ID, owner.ID, []uint{friend.ID})
	require.NoError(t, err)
	_, err = svc.moderation.Flag(friend.ID, CreateFlagRequest{ContentType: model.ContentDraft, ContentID: draft.ID, Reason: model.ReasonOther})
	require.NoError(t, err)

	d, err := svc.admin.Dashboard()
	require.NoError(t, err)
	assert.EqualValues(t, 2, d.TotalUsers)
	assert.EqualValues(t, 2, d.TotalDrafts)
	assert.EqualValues(t, 1, d.PublicDrafts)
	assert.EqualValues(t, 1, d.ActiveShares)
	assert.EqualValues(t, 1, d.PendingFlags)
	require.Len(t, d.SubscriptionsByPlan, 1)
	assert.EqualValues(t, 2, d.SubscriptionsByPlan[0].Count)

	drafts, total, err := svc.admin.ListDrafts(repository.DraftFilter{})
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	require.NoError(t, svc.admin.DeleteDraft(drafts[0].ID))
	assert.True(t, errors.Is(svc.admin.DeleteDraft(drafts[0].ID), ErrNotFound))
}
