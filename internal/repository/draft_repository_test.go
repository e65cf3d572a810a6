package repository

import (
	"picture-wall/internal/model"
	"picture-wall/internal/testutil"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

func createTestDraft(t *testing.T, owner *model.User, name string) *model.Draft {
	t.Helper()
	draft := &model.Draft{
		OwnerID:  owner.ID,
		Name:     name,
		WallData: datatypes.JSON(`{"width":300,"frames":[]}`),
		Images:   []string{},
	}
	require.NoError(t, NewDraftRepository().Create(draft))
	require.NotZero(t, draft.ID)
	return draft
}

func TestDraftRepository_CreateAndFind(t *testing.T) {
	testutil.SetupDB(t)
	repo := NewDraftRepository()
	owner := createTestUser(t, "owner")

	draft := createTestDraft(t, owner, "Living room")

	found, err := repo.FindByID(draft.ID)
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, "Living room", found.Name)
	assert.JSONEq(t, `{"width":300,"frames":[]}`, string(found.WallData))
	assert.False(t, found.IsPublic)
	assert.Nil(t, found.ShareToken)
	assert.Empty(t, found.SharedWith)

	missing, err := repo.FindByID(draft.ID + 100)
	require.NoError(t, err)
	assert.Nil(t, missing)

	count, err := repo.CountByOwner(owner.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 1, count)
}

func TestDraftRepository_Images(t *testing.T) {
	testutil.SetupDB(t)
	repo := NewDraftRepository()
	draft := createTestDraft(t, createTestUser(t, "owner"), "Hall")

	require.NoError(t, repo.SetImages(draft.ID, []string{"/uploads/a.png", "/uploads/b.jpg"}))

	found, err := repo.FindByID(draft.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"/uploads/a.png", "/uploads/b.jpg"}, found.Images)
}

func TestDraftRepository_Sharing(t *testing.T) {
	testutil.SetupDB(t)
	repo := NewDraftRepository()
	owner := createTestUser(t, "owner")
	draft := createTestDraft(t, owner, "Stairs")

	token := "abc123"
	expires := time.Now().Add(time.Hour)
	require.NoError(t, repo.SetSharing(draft.ID, true, &token, &expires))

	found, err := repo.FindByShareToken(token)
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, draft.ID, found.ID)
	assert.True(t, found.IsPublic)

	require.NoError(t, repo.SetSharing(draft.ID, false, nil, nil))
	found, err = repo.FindByShareToken(token)
	require.NoError(t, err)
	assert.Nil(t, found)

	public, err := repo.CountPublic()
	require.NoError(t, err)
	assert.Zero(t, public)
}

func TestDraftRepository_Recipients(t *testing.T) {
	testutil.SetupDB(t)
	repo := NewDraftRepository()
	owner := createTestUser(t, "owner")
	bob := createTestUser(t, "bob")
	carol := createTestUser(t, "carol")
	draft := createTestDraft(t, owner, "Office")
	createTestDraft(t, owner, "Unshared")

	now := time.Now()
	require.NoError(t, repo.AddRecipient(draft.ID, bob.ID, now))
	require.NoError(t, repo.AddRecipient(draft.ID, carol.ID, now.Add(time.Second)))

	found, err := repo.FindByID(draft.ID)
	require.NoError(t, err)
	require.Len(t, found.SharedWith, 2)
	assert.Equal(t, bob.ID, found.SharedWith[0].UserID)
	assert.True(t, found.IsSharedWith(carol.ID))
	assert.False(t, found.IsSharedWith(owner.ID))

	shared, err := repo.ListSharedWithUser(bob.ID)
	require.NoError(t, err)
	require.Len(t, shared, 1)
	assert.Equal(t, draft.ID, shared[0].ID)

	byMe, err := repo.ListSharedByOwner(owner.ID)
	require.NoError(t, err)
	require.Len(t, byMe, 1)
	assert.Len(t, byMe[0].SharedWith, 2)

	removed, err := repo.RemoveRecipient(draft.ID, bob.ID)
	require.NoError(t, err)
	assert.True(t, removed)
	removed, err = repo.RemoveRecipient(draft.ID, bob.ID)
	require.NoError(t, err)
	assert.False(t, removed)

	require.NoError(t, repo.ClearRecipients(draft.ID))
	found, err = repo.FindByID(draft.ID)
	require.NoError(t, err)
	assert.Empty(t, found.SharedWith)
}

func TestDraftRepository_DeleteByOwner(t *testing.T) {
	testutil.SetupDB(t)
	repo := NewDraftRepository()
	owner := createTestUser(t, "owner")
	other := createTestUser(t, "other")
	d1 := createTestDraft(t, owner, "One")
	d2 := createTestDraft(t, owner, "Two")
	kept := createTestDraft(t, other, "Kept")
	require.NoError(t, repo.AddRecipient(d1.ID, other.ID, time.Now()))

	ids, err := repo.DeleteByOwner(owner.ID)
	require.NoError(t, err)
	assert.ElementsMatch(t, []uint{d1.ID, d2.ID}, ids)

	shared, err := repo.ListSharedWithUser(other.ID)
	require.NoError(t, err)
	assert.Empty(t, shared)

	found, err := repo.FindByID(kept.ID)
	require.NoError(t, err)
	assert.NotNil(t, found)
}

func TestDraftRepository_LockInTransaction(t *testing.T) {
	testutil.SetupDB(t)
	draft := createTestDraft(t, createTestUser(t, "owner"), "Locked")

	err := Transaction(func(tx *gorm.DB) error {
		repo := NewDraftRepository().WithTx(tx)
		locked, err := repo.FindByIDForUpdate(draft.ID)
		if err != nil {
			return err
		}
		require.NotNil(t, locked)
		return repo.SetImages(locked.ID, append(locked.Images, "/uploads/x.png"))
	})
	require.NoError(t, err)

	found, err := NewDraftRepository().FindByID(draft.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"/uploads/x.png"}, found.Images)
}
