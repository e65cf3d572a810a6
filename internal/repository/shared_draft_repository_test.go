package repository

import (
	"picture-wall/internal/model"
	"picture-wall/internal/testutil"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createShare(t *testing.T, draft *model.Draft, to *model.User, at time.Time) *model.SharedDraft {
	t.Helper()
	share := &model.SharedDraft{
		DraftID:    draft.ID,
		DraftName:  draft.Name,
		SharedBy:   draft.OwnerID,
		SharedWith: to.ID,
		SharedAt:   at,
		IsActive:   true,
		CanView:    true,
	}
	require.NoError(t, NewSharedDraftRepository().Create(share))
	return share
}

func TestSharedDraftRepository_Deactivate(t *testing.T) {
	testutil.SetupDB(t)
	repo := NewSharedDraftRepository()
	owner := createTestUser(t, "owner")
	bob := createTestUser(t, "bob")
	carol := createTestUser(t, "carol")
	draft := createTestDraft(t, owner, "Gallery")
	now := time.Now()
	createShare(t, draft, bob, now)
	createShare(t, draft, carol, now)

	active, err := repo.FindActive(draft.ID, bob.ID)
	require.NoError(t, err)
	require.NotNil(t, active)

	n, err := repo.Deactivate(draft.ID, bob.ID, now)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	active, err = repo.FindActive(draft.ID, bob.ID)
	require.NoError(t, err)
	assert.Nil(t, active)

	n, err = repo.DeactivateForDraft(draft.ID, now)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n, "only carol's row was still active")

	count, err := repo.CountActive()
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestSharedDraftRepository_ReactivateAndAccess(t *testing.T) {
	testutil.SetupDB(t)
	repo := NewSharedDraftRepository()
	owner := createTestUser(t, "owner")
	bob := createTestUser(t, "bob")
	draft := createTestDraft(t, owner, "Gallery")
	share := createShare(t, draft, bob, time.Now())

	require.NoError(t, repo.DeactivateByID(share.ID, time.Now()))
	found, err := repo.FindByID(share.ID)
	require.NoError(t, err)
	assert.False(t, found.IsActive)
	assert.NotNil(t, found.UnsharedAt)

	require.NoError(t, repo.ReactivateByID(share.ID, time.Now()))
	require.NoError(t, repo.RecordAccess(share.ID, time.Now()))
	require.NoError(t, repo.RecordAccess(share.ID, time.Now()))

	found, err = repo.FindByID(share.ID)
	require.NoError(t, err)
	assert.True(t, found.IsActive)
	assert.Nil(t, found.UnsharedAt)
	assert.Equal(t, 2, found.AccessCount)
	assert.NotNil(t, found.LastAccessedAt)
}

func TestSharedDraftRepository_ListAndCleanup(t *testing.T) {
	testutil.SetupDB(t)
	repo := NewSharedDraftRepository()
	owner := createTestUser(t, "owner")
	bob := createTestUser(t, "bob")
	carol := createTestUser(t, "carol")
	draft := createTestDraft(t, owner, "Gallery")
	now := time.Now()
	old := createShare(t, draft, bob, now.Add(-60*24*time.Hour))
	recent := createShare(t, draft, carol, now)

	require.NoError(t, repo.DeactivateByID(old.ID, now.Add(-40*24*time.Hour)))
	require.NoError(t, repo.DeactivateByID(recent.ID, now))

	inactive := false
	shares, total, err := repo.List(SharedDraftFilter{Active: &inactive})
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	assert.Len(t, shares, 2)

	deleted, err := repo.DeleteInactiveBefore(now.Add(-30 * 24 * time.Hour))
	require.NoError(t, err)
	assert.EqualValues(t, 1, deleted)

	gone, err := repo.FindByID(old.ID)
	require.NoError(t, err)
	assert.Nil(t, gone)

	_, total, err = repo.List(SharedDraftFilter{SharedWith: carol.ID})
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
}
