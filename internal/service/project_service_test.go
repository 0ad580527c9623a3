package service

import (
	"strings"
	"testing"

	"github.com/alexanderramin/canteiro/internal/apperr"
	"github.com/alexanderramin/canteiro/internal/domain"
	"github.com/alexanderramin/canteiro/internal/listing"
	"github.com/alexanderramin/canteiro/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProjectService_CreateAndUpdate(t *testing.T) {
	env := setupEnv(t)
	ctx := env.ctx()

	p := &domain.Project{Name: "  Residencial Aurora ", City: "Curitiba"}
	require.NoError(t, env.projects.Create(ctx, p))
	assert.NotEmpty(t, p.ID)
	assert.Equal(t, "Residencial Aurora", p.Name)

	got, err := env.projects.Get(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "Curitiba", got.City)

	got.ClientName = "Construtora Horizonte"
	require.NoError(t, env.projects.Update(ctx, got))
	again, err := env.projects.Get(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "Construtora Horizonte", again.ClientName)

	assert.True(t, apperr.IsValidation(env.projects.Create(ctx, &domain.Project{Name: " "})))
	got.Name = ""
	assert.True(t, apperr.IsValidation(env.projects.Update(ctx, got)))

	_, err = env.projects.Get(ctx, "missing")
	assert.True(t, apperr.IsNotFound(err))
	assert.True(t, apperr.IsNotFound(env.projects.Update(ctx, &domain.Project{ID: "missing", Name: "x"})))
}

func TestProjectService_ListSearchesAndSortsByProgress(t *testing.T) {
	env := setupEnv(t)
	ctx := env.ctx()

	slow := env.createProject(t, "Edifício Jacarandá")
	fast := testutil.NewTestProject("Casa Ipê", testutil.WithCity("São José"))
	require.NoError(t, env.projects.Create(ctx, fast))

	require.NoError(t, env.repos.Units.Create(ctx, testutil.NewTestUnit(slow.ID, "101", testutil.WithProgress(10),
		testutil.WithUnitStatus(domain.StatusInProgress))))
	require.NoError(t, env.repos.Units.Create(ctx, testutil.NewTestUnit(fast.ID, "1", testutil.WithProgress(90),
		testutil.WithUnitStatus(domain.StatusInProgress))))
	require.NoError(t, env.repos.Units.Create(ctx, testutil.NewTestUnit(fast.ID, "2", testutil.WithProgress(100),
		testutil.WithUnitStatus(domain.StatusDone))))

	all, err := env.projects.List(ctx, "", listing.SortProgressDesc)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, fast.ID, all[0].Project.ID)
	assert.Equal(t, 2, all[0].Summary.TotalUnits)
	assert.Equal(t, 95.0, all[0].Summary.AvgProgress)
	assert.Equal(t, 1, all[1].Summary.TotalUnits)

	// Accent-insensitive search over name and city.
	found, err := env.projects.List(ctx, "jacaranda", listing.SortProgressDesc)
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, slow.ID, found[0].Project.ID)

	found, err = env.projects.List(ctx, "sao jose", listing.SortProgressDesc)
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, fast.ID, found[0].Project.ID)
}

func TestProjectService_SummaryWithoutUnits(t *testing.T) {
	env := setupEnv(t)
	p := env.createProject(t, "Obra")

	sum, err := env.projects.Summary(env.ctx(), p.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, sum.TotalUnits)
	assert.Equal(t, 0.0, sum.AvgProgress)
	assert.Len(t, sum.Counts, 3)

	_, err = env.projects.Summary(env.ctx(), "missing")
	assert.True(t, apperr.IsNotFound(err))
}

func TestProjectService_Overview(t *testing.T) {
	env := setupEnv(t)
	ctx := env.ctx()
	p := env.createProject(t, "Obra")
	stages := env.createStages(t, p.ID, "A", "B")
	u1 := env.createUnit(t, p.ID, "101")
	env.createUnit(t, p.ID, "102")

	us, err := env.propagation.AddStageToUnit(ctx, u1.ID, stages[0].ID)
	require.NoError(t, err)
	_, err = env.unitStages.SetStatus(ctx, us.ID, domain.StatusDone)
	require.NoError(t, err)
	_, err = env.stages.Archive(ctx, stages[1].ID)
	require.NoError(t, err)

	view, err := env.projects.Overview(ctx, p.ID, listing.UnitFilter{Status: domain.StatusDone}, listing.SortIdentifierAsc)
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "B"}, stageNames(view.Stages))
	assert.Equal(t, []string{"101"}, identifiers(view.Units))
	assert.Equal(t, 100, view.Units[0].Progress)
	assert.Equal(t, 2, view.Summary.TotalUnits)
	assert.Equal(t, 50.0, view.Summary.AvgProgress)
	assert.Equal(t, 1, view.Summary.Count(domain.StatusDone))
	assert.Equal(t, 1, view.Summary.Count(domain.StatusPending))
	assert.Equal(t, 1, view.MissingStages)
}

func TestProjectService_DeleteRemovesEverything(t *testing.T) {
	env := setupEnv(t)
	ctx := env.ctx()
	p := env.createProject(t, "Obra")
	other := env.createProject(t, "Vizinha")
	env.createStages(t, p.ID, "A", "B")
	env.createStages(t, other.ID, "X")
	u := env.createUnit(t, p.ID, "101")
	env.createUnit(t, p.ID, "102")
	otherUnit := env.createUnit(t, other.ID, "1")
	_, err := env.propagation.ApplyTemplate(ctx, p.ID)
	require.NoError(t, err)
	_, err = env.propagation.ApplyTemplate(ctx, other.ID)
	require.NoError(t, err)

	instances, err := env.repos.UnitStages.ListByUnit(ctx, u.ID)
	require.NoError(t, err)
	_, err = env.unitStages.AddPhoto(ctx, instances[0].ID, PhotoUpload{Filename: "a.png", Body: strings.NewReader("png")})
	require.NoError(t, err)
	_, err = env.unitStages.SetStatus(ctx, instances[1].ID, domain.StatusDone)
	require.NoError(t, err)

	require.NoError(t, env.projects.Delete(ctx, p.ID))

	assert.Equal(t, 0, env.countRows(t, "projects", "id = ?", p.ID))
	assert.Equal(t, 0, env.countRows(t, "stages", "project_id = ?", p.ID))
	assert.Equal(t, 0, env.countRows(t, "units", "project_id = ?", p.ID))
	assert.Equal(t, 0, env.countRows(t, "unit_stage_photos", ""))
	assert.Equal(t, 0, env.countRows(t, "unit_stage_logs", ""))
	assert.Equal(t, 1, env.countRows(t, "unit_stages", ""))
	assert.Equal(t, 1, env.countRows(t, "unit_stages", "unit_id = ?", otherUnit.ID))

	assert.True(t, apperr.IsNotFound(env.projects.Delete(ctx, p.ID)))
}

func TestProjectService_SummaryMatchesOverviewAfterTemplateFill(t *testing.T) {
	env := setupEnv(t)
	ctx := env.ctx()
	p := env.createProject(t, "Obra")
	old := env.createStages(t, p.ID, "X")[0]
	u := env.createUnit(t, p.ID, "101")

	us, err := env.propagation.AddStageToUnit(ctx, u.ID, old.ID)
	require.NoError(t, err)
	_, err = env.unitStages.SetStatus(ctx, us.ID, domain.StatusDone)
	require.NoError(t, err)
	_, err = env.stages.Archive(ctx, old.ID)
	require.NoError(t, err)
	env.createStages(t, p.ID, "A", "B")

	res, err := env.propagation.ApplyTemplate(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, res.Created)

	stored, err := env.repos.Units.GetByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, 33, stored.Progress)
	assert.Equal(t, domain.StatusInProgress, stored.Status)

	sum, err := env.projects.Summary(ctx, p.ID)
	require.NoError(t, err)
	view, err := env.projects.Overview(ctx, p.ID, listing.UnitFilter{}, listing.SortIdentifierAsc)
	require.NoError(t, err)
	assert.Equal(t, view.Summary, sum)
	assert.Equal(t, 33.0, sum.AvgProgress)
	assert.Equal(t, 1, sum.Count(domain.StatusInProgress))
	assert.Equal(t, 0, sum.Count(domain.StatusDone))

	units, err := env.units.List(ctx, p.ID, listing.UnitFilter{}, listing.SortIdentifierAsc)
	require.NoError(t, err)
	require.Len(t, units, 1)
	assert.Equal(t, 33, units[0].Progress)
	assert.Equal(t, domain.StatusInProgress, units[0].Status)
}

func TestProjectService_ReadsIgnoreStaleStoredProgress(t *testing.T) {
	env := setupEnv(t)
	ctx := env.ctx()
	p := env.createProject(t, "Obra")
	stages := env.createStages(t, p.ID, "A", "B")

	u := testutil.NewTestUnit(p.ID, "101", testutil.WithProgress(100), testutil.WithUnitStatus(domain.StatusDone))
	require.NoError(t, env.repos.Units.Create(ctx, u))
	for _, st := range stages {
		require.NoError(t, env.repos.UnitStages.Create(ctx, testutil.NewTestUnitStage(u.ID, st.ID,
			testutil.WithInstanceOrder(st.OrderIndex))))
	}

	sum, err := env.projects.Summary(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 0.0, sum.AvgProgress)
	assert.Equal(t, 1, sum.Count(domain.StatusPending))

	all, err := env.projects.List(ctx, "", listing.SortProgressDesc)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, sum, all[0].Summary)

	done, err := env.units.List(ctx, p.ID, listing.UnitFilter{Status: domain.StatusDone}, listing.SortIdentifierAsc)
	require.NoError(t, err)
	assert.Empty(t, done)
}
