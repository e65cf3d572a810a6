package repository

import (
	"picture-wall/internal/model"
	"picture-wall/internal/testutil"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFlaggedContentRepository(t *testing.T) {
	testutil.SetupDB(t)
	repo := NewFlaggedContentRepository()
	reporter := createTestUser(t, "reporter")

	flag := &model.FlaggedContent{
		ContentType: model.ContentDraft,
		ContentID:   7,
		ReportedBy:  reporter.ID,
		Reason:      model.ReasonSpam,
		Status:      model.FlagPending,
	}
	require.NoError(t, repo.Create(flag))

	pending, err := repo.FindPendingByReporter(model.ContentDraft, 7, reporter.ID)
	require.NoError(t, err)
	require.NotNil(t, pending)
	assert.Equal(t, flag.ID, pending.ID)

	require.NoError(t, repo.UpdateFields(flag.ID, map[string]interface{}{"status": model.FlagResolved}))
	pending, err = repo.FindPendingByReporter(model.ContentDraft, 7, reporter.ID)
	require.NoError(t, err)
	assert.Nil(t, pending)

	resolved, err := repo.CountByStatus(model.FlagResolved)
	require.NoError(t, err)
	assert.EqualValues(t, 1, resolved)

	flags, total, err := repo.List(FlagFilter{ContentType: model.ContentUser})
	require.NoError(t, err)
	assert.Zero(t, total)
	assert.Empty(t, flags)
}

func TestUpgradeRequestRepository(t *testing.T) {
	testutil.SetupDB(t)
	repo := NewUpgradeRequestRepository()
	user := createTestUser(t, "upgrader")

	req := &model.UpgradeRequest{UserID: user.ID, CurrentPlan: "free", RequestedPlan: "pro", Status: model.RequestPending}
	require.NoError(t, repo.Create(req))

	pending, err := repo.FindPendingByUser(user.ID)
	require.NoError(t, err)
	require.NotNil(t, pending)

	count, err := repo.CountPending()
	require.NoError(t, err)
	assert.EqualValues(t, 1, count)

	require.NoError(t, repo.UpdateFields(req.ID, map[string]interface{}{"status": model.RequestApproved}))
	reqs, total, err := repo.List(UpgradeRequestFilter{Status: model.RequestApproved})
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	assert.Equal(t, "pro", reqs[0].RequestedPlan)

	mine, err := repo.ListByUser(user.ID)
	require.NoError(t, err)
	assert.Len(t, mine, 1)
}

func TestCatalogRepositories(t *testing.T) {
	testutil.SetupDB(t)
	categories := NewCategoryRepository()
	decors := NewDecorRepository()

	frames := &model.Category{Name: "Frames", IsActive: true}
	hidden := &model.Category{Name: "Hidden", IsActive: false}
	require.NoError(t, categories.Create(frames))
	require.NoError(t, categories.Create(hidden))

	active, err := categories.List(true)
	require.NoError(t, err)
	require.Len(t, active, 1)

	require.NoError(t, decors.Create(&model.Decor{Name: "Oak", CategoryID: frames.ID, ImageURL: "/uploads/oak.png", IsActive: true}))
	require.NoError(t, decors.Create(&model.Decor{Name: "Pine", CategoryID: frames.ID, ImageURL: "/uploads/pine.png", IsActive: false}))

	list, err := decors.List(DecorFilter{CategoryID: frames.ID, ActiveOnly: true})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "Oak", list[0].Name)
	assert.Equal(t, "Frames", list[0].Category.Name)

	n, err := categories.CountDecors(frames.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 2, n)
}
