package service

import (
	"testing"

	"github.com/alexanderramin/canteiro/internal/apperr"
	"github.com/alexanderramin/canteiro/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func stageNames(stages []*domain.Stage) []string {
	names := make([]string, len(stages))
	for i, st := range stages {
		names[i] = st.Name
	}
	return names
}

func TestStageService_BulkCreateAppendsAfterMax(t *testing.T) {
	env := setupEnv(t)
	ctx := env.ctx()
	p := env.createProject(t, "Residencial Aurora")

	first := env.createStages(t, p.ID, "Fundação", "Alvenaria")
	assert.Equal(t, 1, first[0].OrderIndex)
	assert.Equal(t, 2, first[1].OrderIndex)

	more, err := env.stages.BulkCreate(ctx, p.ID, []string{"  Reboco ", "Pintura"})
	require.NoError(t, err)
	assert.Equal(t, "Reboco", more[0].Name)
	assert.Equal(t, 3, more[0].OrderIndex)
	assert.Equal(t, 4, more[1].OrderIndex)
	for _, st := range more {
		assert.True(t, st.IsActive)
	}
}

func TestStageService_BulkCreateRejectsBlankBeforeWriting(t *testing.T) {
	env := setupEnv(t)
	p := env.createProject(t, "Obra")

	_, err := env.stages.BulkCreate(env.ctx(), p.ID, []string{"Fundação", "  "})
	require.Error(t, err)
	assert.True(t, apperr.IsValidation(err))
	assert.Equal(t, 0, env.countRows(t, "stages", "project_id = ?", p.ID))

	_, err = env.stages.BulkCreate(env.ctx(), p.ID, nil)
	assert.True(t, apperr.IsValidation(err))
}

func TestStageService_CreateUnknownProject(t *testing.T) {
	env := setupEnv(t)
	_, err := env.stages.Create(env.ctx(), "missing", "Fundação")
	assert.True(t, apperr.IsNotFound(err))
}

func TestStageService_Move(t *testing.T) {
	env := setupEnv(t)
	ctx := env.ctx()
	p := env.createProject(t, "Obra")
	stages := env.createStages(t, p.ID, "A", "B", "C")

	moved, err := env.stages.Move(ctx, stages[2].ID, domain.DirectionUp)
	require.NoError(t, err)
	assert.Equal(t, 2, moved.OrderIndex)

	list, err := env.stages.List(ctx, p.ID, true)
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "C", "B"}, stageNames(list))

	// The first stage cannot move further up.
	moved, err = env.stages.Move(ctx, stages[0].ID, domain.DirectionUp)
	require.NoError(t, err)
	assert.Equal(t, 1, moved.OrderIndex)

	moved, err = env.stages.Move(ctx, stages[1].ID, domain.DirectionDown)
	require.NoError(t, err)
	assert.Equal(t, 3, moved.OrderIndex)

	list, err = env.stages.List(ctx, p.ID, true)
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "C", "B"}, stageNames(list))
}

func TestStageService_MoveIncludesArchivedNeighbours(t *testing.T) {
	env := setupEnv(t)
	ctx := env.ctx()
	p := env.createProject(t, "Obra")
	stages := env.createStages(t, p.ID, "A", "B", "C")

	_, err := env.stages.Archive(ctx, stages[1].ID)
	require.NoError(t, err)

	_, err = env.stages.Move(ctx, stages[2].ID, domain.DirectionUp)
	require.NoError(t, err)

	all, err := env.stages.List(ctx, p.ID, true)
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "C", "B"}, stageNames(all))

	active, err := env.stages.ListActive(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "C"}, stageNames(active))
}

func TestStageService_MoveWithTiedIndicesSwapsOnlyNeighbour(t *testing.T) {
	env := setupEnv(t)
	ctx := env.ctx()
	p := env.createProject(t, "Obra")
	stages := env.createStages(t, p.ID, "Zeta", "Beta", "Gama")

	stages[2].OrderIndex = 2
	require.NoError(t, env.repos.Stages.Update(ctx, stages[2]))

	before, err := env.stages.List(ctx, p.ID, true)
	require.NoError(t, err)
	require.Equal(t, []string{"Zeta", "Beta", "Gama"}, stageNames(before))

	moved, err := env.stages.Move(ctx, stages[2].ID, domain.DirectionUp)
	require.NoError(t, err)
	assert.Equal(t, 2, moved.OrderIndex)

	list, err := env.stages.List(ctx, p.ID, true)
	require.NoError(t, err)
	assert.Equal(t, []string{"Zeta", "Gama", "Beta"}, stageNames(list))
	for i, st := range list {
		assert.Equal(t, i+1, st.OrderIndex, st.Name)
	}
}

func TestStageService_MoveFirstWithZeroIndexStaysPositive(t *testing.T) {
	env := setupEnv(t)
	ctx := env.ctx()
	p := env.createProject(t, "Obra")
	stages := env.createStages(t, p.ID, "A", "B")

	stages[1].OrderIndex = 1
	require.NoError(t, env.repos.Stages.Update(ctx, stages[1]))

	moved, err := env.stages.Move(ctx, stages[1].ID, domain.DirectionUp)
	require.NoError(t, err)
	assert.Equal(t, 1, moved.OrderIndex)

	list, err := env.stages.List(ctx, p.ID, true)
	require.NoError(t, err)
	assert.Equal(t, []string{"B", "A"}, stageNames(list))
	assert.Equal(t, []int{1, 2}, []int{list[0].OrderIndex, list[1].OrderIndex})
}

func TestStageService_MoveInvalidDirection(t *testing.T) {
	env := setupEnv(t)
	p := env.createProject(t, "Obra")
	stages := env.createStages(t, p.ID, "A")

	_, err := env.stages.Move(env.ctx(), stages[0].ID, domain.Direction("sideways"))
	assert.True(t, apperr.IsValidation(err))
}

func TestStageService_RenameArchiveReactivate(t *testing.T) {
	env := setupEnv(t)
	ctx := env.ctx()
	p := env.createProject(t, "Obra")
	st := env.createStages(t, p.ID, "Fundacao")[0]

	renamed, err := env.stages.Rename(ctx, st.ID, "Fundação")
	require.NoError(t, err)
	assert.Equal(t, "Fundação", renamed.Name)

	_, err = env.stages.Rename(ctx, st.ID, " ")
	assert.True(t, apperr.IsValidation(err))

	archived, err := env.stages.Archive(ctx, st.ID)
	require.NoError(t, err)
	assert.False(t, archived.IsActive)

	active, err := env.stages.ListActive(ctx, p.ID)
	require.NoError(t, err)
	assert.Empty(t, active)

	back, err := env.stages.Reactivate(ctx, st.ID)
	require.NoError(t, err)
	assert.True(t, back.IsActive)

	_, err = env.stages.Archive(ctx, "missing")
	assert.True(t, apperr.IsNotFound(err))
}
