package repository

import (
	"context"
	"testing"

	"github.com/alexanderramin/canteiro/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStageRepo_ListByProject_CanonicalOrder(t *testing.T) {
	repos := setupRepos(t)
	ctx := context.Background()
	p := testutil.NewTestProject("P")
	require.NoError(t, repos.Projects.Create(ctx, p))

	for _, s := range []struct {
		name  string
		order int
	}{{"Pintura", 2}, {"Elétrica", 1}, {"Alvenaria", 1}} {
		require.NoError(t, repos.Stages.Create(ctx, testutil.NewTestStage(p.ID, s.name, testutil.WithStageOrder(s.order))))
	}

	stages, err := repos.Stages.ListByProject(ctx, p.ID, true)
	require.NoError(t, err)
	require.Len(t, stages, 3)
	assert.Equal(t, "Alvenaria", stages[0].Name)
	assert.Equal(t, "Elétrica", stages[1].Name)
	assert.Equal(t, "Pintura", stages[2].Name)
}

func TestStageRepo_ListByProject_ExcludesArchived(t *testing.T) {
	repos := setupRepos(t)
	ctx := context.Background()
	p := testutil.NewTestProject("P")
	require.NoError(t, repos.Projects.Create(ctx, p))

	active := testutil.NewTestStage(p.ID, "Ativa", testutil.WithStageOrder(1))
	archived := testutil.NewTestStage(p.ID, "Arquivada", testutil.WithStageOrder(2), testutil.WithArchived())
	require.NoError(t, repos.Stages.Create(ctx, active))
	require.NoError(t, repos.Stages.Create(ctx, archived))

	onlyActive, err := repos.Stages.ListByProject(ctx, p.ID, false)
	require.NoError(t, err)
	require.Len(t, onlyActive, 1)
	assert.Equal(t, active.ID, onlyActive[0].ID)

	all, err := repos.Stages.ListByProject(ctx, p.ID, true)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestStageRepo_MaxOrderIndex(t *testing.T) {
	repos := setupRepos(t)
	ctx := context.Background()
	p := testutil.NewTestProject("P")
	require.NoError(t, repos.Projects.Create(ctx, p))

	max, err := repos.Stages.MaxOrderIndex(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, max)

	require.NoError(t, repos.Stages.Create(ctx, testutil.NewTestStage(p.ID, "A", testutil.WithStageOrder(4))))
	require.NoError(t, repos.Stages.Create(ctx, testutil.NewTestStage(p.ID, "B", testutil.WithStageOrder(7), testutil.WithArchived())))

	max, err = repos.Stages.MaxOrderIndex(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 7, max, "archived stages still count")
}

func TestStageRepo_ListByIDs(t *testing.T) {
	repos := setupRepos(t)
	ctx := context.Background()
	p := testutil.NewTestProject("P")
	require.NoError(t, repos.Projects.Create(ctx, p))
	a := testutil.NewTestStage(p.ID, "A", testutil.WithStageOrder(1))
	b := testutil.NewTestStage(p.ID, "B", testutil.WithStageOrder(2))
	require.NoError(t, repos.Stages.Create(ctx, a))
	require.NoError(t, repos.Stages.Create(ctx, b))

	got, err := repos.Stages.ListByIDs(ctx, []string{b.ID, "missing"})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, b.ID, got[0].ID)

	none, err := repos.Stages.ListByIDs(ctx, nil)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestStageRepo_Update(t *testing.T) {
	repos := setupRepos(t)
	ctx := context.Background()
	p := testutil.NewTestProject("P")
	require.NoError(t, repos.Projects.Create(ctx, p))
	s := testutil.NewTestStage(p.ID, "Reboco")
	require.NoError(t, repos.Stages.Create(ctx, s))

	s.Name = "Reboco interno"
	s.IsActive = false
	s.OrderIndex = 9
	require.NoError(t, repos.Stages.Update(ctx, s))

	got, err := repos.Stages.GetByID(ctx, s.ID)
	require.NoError(t, err)
	assert.Equal(t, "Reboco interno", got.Name)
	assert.False(t, got.IsActive)
	assert.Equal(t, 9, got.OrderIndex)
}
