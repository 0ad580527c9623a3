package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/alexanderramin/canteiro/internal/apperr"
	"github.com/alexanderramin/canteiro/internal/db"
	"github.com/alexanderramin/canteiro/internal/domain"
	"github.com/alexanderramin/canteiro/internal/listing"
	"github.com/alexanderramin/canteiro/internal/repository"
	"github.com/alexanderramin/canteiro/internal/rollup"
	"github.com/alexanderramin/canteiro/internal/storage"
)

type projectService struct {
	repos    repository.Repos
	uow      db.UnitOfWork
	store    storage.ObjectStore
	bucket   string
	observer UseCaseObserver
}

func NewProjectService(
	repos repository.Repos,
	uow db.UnitOfWork,
	store storage.ObjectStore,
	bucket string,
	observers ...UseCaseObserver,
) ProjectService {
	return &projectService{
		repos:    repos,
		uow:      uow,
		store:    store,
		bucket:   bucket,
		observer: useCaseObserverOrNoop(observers),
	}
}

func (s *projectService) Create(ctx context.Context, p *domain.Project) (err error) {
	startedAt := time.Now()
	fields := map[string]any{FieldEntity: "project"}
	defer func() { observeUseCase(ctx, s.observer, "project-create", startedAt, fields, err) }()

	name, err := requireName("name", p.Name)
	if err != nil {
		return err
	}
	p.Name = name
	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	now := nowUTC()
	p.CreatedAt = now
	p.UpdatedAt = now
	if err = s.repos.Projects.Create(ctx, p); err != nil {
		return apperr.External("creating project", err)
	}
	fields["project_id"] = p.ID
	fields[FieldRowsWritten] = 1
	return nil
}

func (s *projectService) Get(ctx context.Context, id string) (*domain.Project, error) {
	p, err := s.repos.Projects.GetByID(ctx, id)
	if err != nil {
		return nil, lookupErr("project", id, err)
	}
	return p, nil
}

// List returns the projects matching query, each with its unit summary.
func (s *projectService) List(ctx context.Context, query string, sort listing.SortKey) ([]ProjectOverview, error) {
	projects, err := s.repos.Projects.List(ctx)
	if err != nil {
		return nil, apperr.External("listing projects", err)
	}
	projects = listing.FilterProjects(projects, query)

	ids := make([]string, len(projects))
	for i, p := range projects {
		ids[i] = p.ID
	}
	units, err := s.repos.Units.ListByProjects(ctx, ids)
	if err != nil {
		return nil, apperr.External("listing units", err)
	}
	if units, _, err = computedUnits(ctx, s.repos, units); err != nil {
		return nil, err
	}
	byProject := make(map[string][]*domain.Unit, len(projects))
	for _, u := range units {
		byProject[u.ProjectID] = append(byProject[u.ProjectID], u)
	}

	summaries := make(map[string]rollup.Summary, len(projects))
	progress := make(map[string]float64, len(projects))
	for _, p := range projects {
		sum := rollup.ProjectSummary(byProject[p.ID])
		summaries[p.ID] = sum
		progress[p.ID] = sum.AvgProgress
	}

	sorted := listing.SortProjects(projects, sort, progress)
	out := make([]ProjectOverview, len(sorted))
	for i, p := range sorted {
		out[i] = ProjectOverview{Project: p, Summary: summaries[p.ID]}
	}
	return out, nil
}

func (s *projectService) Update(ctx context.Context, p *domain.Project) error {
	name, err := requireName("name", p.Name)
	if err != nil {
		return err
	}
	p.Name = name
	p.UpdatedAt = nowUTC()
	if err := s.repos.Projects.Update(ctx, p); err != nil {
		return lookupErr("project", p.ID, err)
	}
	return nil
}

// Delete removes the project with its template, units and every unit
// stage, then deletes their stored photos.
func (s *projectService) Delete(ctx context.Context, id string) (err error) {
	startedAt := time.Now()
	fields := map[string]any{"project_id": id, FieldEntity: "project"}
	defer func() { observeUseCase(ctx, s.observer, "project-delete", startedAt, fields, err) }()

	if _, err = s.Get(ctx, id); err != nil {
		return err
	}
	var keys []string
	err = s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		txRepos := repository.NewSQLiteRepos(tx)
		units, err := txRepos.Units.ListByProject(ctx, id)
		if err != nil {
			return err
		}
		unitIDs := make([]string, len(units))
		for i, u := range units {
			unitIDs[i] = u.ID
		}
		instances, err := txRepos.UnitStages.ListByUnits(ctx, unitIDs)
		if err != nil {
			return err
		}
		instanceIDs := make([]string, len(instances))
		for i, us := range instances {
			instanceIDs[i] = us.ID
		}
		fields["units"] = len(unitIDs)
		fields["unit_stages"] = len(instanceIDs)
		if keys, err = purgeInstances(ctx, txRepos, instanceIDs); err != nil {
			return err
		}
		return txRepos.Projects.Delete(ctx, id)
	})
	if err != nil {
		return apperr.External("deleting project", err)
	}
	return removeObjects(ctx, s.store, s.bucket, keys)
}

func (s *projectService) Summary(ctx context.Context, id string) (rollup.Summary, error) {
	if _, err := s.Get(ctx, id); err != nil {
		return rollup.Summary{}, err
	}
	units, err := s.repos.Units.ListByProject(ctx, id)
	if err != nil {
		return rollup.Summary{}, apperr.External("listing units", err)
	}
	computed, _, err := computedUnits(ctx, s.repos, units)
	if err != nil {
		return rollup.Summary{}, err
	}
	return rollup.ProjectSummary(computed), nil
}

// Overview loads the project page. The summary always covers every unit;
// filter and sort only shape the unit list. MissingStages counts the units
// ApplyTemplate would fill.
func (s *projectService) Overview(ctx context.Context, id string, filter listing.UnitFilter, sort listing.SortKey) (*ProjectView, error) {
	p, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	stages, err := s.repos.Stages.ListByProject(ctx, id, true)
	if err != nil {
		return nil, apperr.External("listing stages", err)
	}
	units, err := s.repos.Units.ListByProject(ctx, id)
	if err != nil {
		return nil, apperr.External("listing units", err)
	}
	computed, byUnit, err := computedUnits(ctx, s.repos, units)
	if err != nil {
		return nil, err
	}

	active := make(map[string]bool, len(stages))
	for _, st := range stages {
		if st.IsActive {
			active[st.ID] = true
		}
	}
	missing := 0
	for _, u := range units {
		if len(active) > 0 && !holdsAny(byUnit[u.ID], active) {
			missing++
		}
	}
	domain.SortStages(stages)
	return &ProjectView{
		Project:       p,
		Stages:        stages,
		Units:         listing.SortUnits(listing.FilterUnits(computed, filter), sort),
		Summary:       rollup.ProjectSummary(computed),
		MissingStages: missing,
	}, nil
}

func holdsAny(instances []*domain.UnitStage, stageIDs map[string]bool) bool {
	for _, us := range instances {
		if stageIDs[us.StageID] {
			return true
		}
	}
	return false
}
