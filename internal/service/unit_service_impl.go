package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/alexanderramin/canteiro/internal/apperr"
	"github.com/alexanderramin/canteiro/internal/bulk"
	"github.com/alexanderramin/canteiro/internal/db"
	"github.com/alexanderramin/canteiro/internal/domain"
	"github.com/alexanderramin/canteiro/internal/listing"
	"github.com/alexanderramin/canteiro/internal/repository"
	"github.com/alexanderramin/canteiro/internal/rollup"
	"github.com/alexanderramin/canteiro/internal/storage"
)

type unitService struct {
	repos       repository.Repos
	uow         db.UnitOfWork
	propagation PropagationService
	store       storage.ObjectStore
	bucket      string
	limits      BulkLimits
	observer    UseCaseObserver
}

func NewUnitService(
	repos repository.Repos,
	uow db.UnitOfWork,
	propagation PropagationService,
	store storage.ObjectStore,
	bucket string,
	limits BulkLimits,
	observers ...UseCaseObserver,
) UnitService {
	return &unitService{
		repos:       repos,
		uow:         uow,
		propagation: propagation,
		store:       store,
		bucket:      bucket,
		limits:      limits.withDefaults(),
		observer:    useCaseObserverOrNoop(observers),
	}
}

func (s *unitService) Create(ctx context.Context, projectID, identifier string) (*domain.Unit, error) {
	units, err := s.CreateBatch(ctx, projectID, []string{identifier})
	if err != nil {
		if be, ok := apperr.AsBatch(err); ok {
			return nil, be.Err
		}
		return nil, err
	}
	return units[0], nil
}

// CreateBatch inserts one pending unit per identifier in chunks of
// UnitBatchSize, each its own transaction. On failure the units of earlier
// chunks are returned together with a BatchError.
func (s *unitService) CreateBatch(ctx context.Context, projectID string, identifiers []string) (created []*domain.Unit, err error) {
	startedAt := time.Now()
	fields := map[string]any{"project_id": projectID, "requested": len(identifiers), FieldEntity: "unit"}
	defer func() {
		fields[FieldRowsWritten] = len(created)
		observeUseCase(ctx, s.observer, "unit-create-batch", startedAt, fields, err)
	}()

	if len(identifiers) == 0 {
		return nil, apperr.Validation("identifiers", "at least one identifier is required")
	}
	clean := make([]string, len(identifiers))
	for i, id := range identifiers {
		if clean[i], err = requireName("identifier", id); err != nil {
			return nil, err
		}
	}
	if _, err = s.repos.Projects.GetByID(ctx, projectID); err != nil {
		return nil, lookupErr("project", projectID, err)
	}

	now := nowUTC()
	rows := make([]*domain.Unit, len(clean))
	for i, identifier := range clean {
		rows[i] = &domain.Unit{
			ID:         uuid.New().String(),
			ProjectID:  projectID,
			Identifier: identifier,
			Status:     domain.StatusPending,
			CreatedAt:  now,
			UpdatedAt:  now,
		}
	}

	for _, w := range bulk.Chunk(len(rows), s.limits.UnitBatchSize) {
		chunk := rows[w.Start:w.End]
		err = s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
			txUnits := repository.NewSQLiteUnitRepo(tx)
			for _, u := range chunk {
				if err := txUnits.Create(ctx, u); err != nil {
					return err
				}
			}
			return nil
		})
		if err != nil {
			return created, &apperr.BatchError{
				Step:  "create units",
				Done:  len(created),
				Total: len(rows),
				Err:   apperr.External("inserting units", err),
			}
		}
		created = append(created, chunk...)
	}
	return created, nil
}

// GenerateByFloor creates the units of a floor plan that the project does
// not have yet and, when withStages is set, instantiates the active template
// on them. A failing step is reported through the returned error while the
// result keeps what earlier steps produced.
func (s *unitService) GenerateByFloor(ctx context.Context, projectID string, plan bulk.FloorPlan, withStages bool) (result *GenerationResult, err error) {
	startedAt := time.Now()
	result = &GenerationResult{}
	fields := map[string]any{
		"project_id":      projectID,
		"floor_start":     plan.FloorStart,
		"floor_end":       plan.FloorEnd,
		"units_per_floor": plan.UnitsPerFloor,
		"with_stages":     withStages,
	}
	defer func() {
		fields["candidates"] = len(result.Candidates)
		fields["skipped"] = len(result.Skipped)
		fields["created"] = len(result.Created)
		observeUseCase(ctx, s.observer, "unit-generate", startedAt, fields, err)
	}()

	if plan.MaxUnitsPerFloor <= 0 {
		plan.MaxUnitsPerFloor = s.limits.MaxUnitsPerFloor
	}
	candidates, err := bulk.GenerateIdentifiers(plan)
	if err != nil {
		return result, err
	}
	result.Candidates = candidates

	if _, err = s.repos.Projects.GetByID(ctx, projectID); err != nil {
		return result, lookupErr("project", projectID, err)
	}
	existing, err := s.repos.Units.ListByProject(ctx, projectID)
	if err != nil {
		return result, apperr.External("listing units", err)
	}
	existingIDs := make([]string, len(existing))
	for i, u := range existing {
		existingIDs[i] = u.Identifier
	}
	fresh := bulk.DedupAgainstExisting(candidates, existingIDs)
	result.Skipped = skipped(candidates, fresh)
	if len(fresh) == 0 {
		return result, nil
	}

	result.Created, err = s.CreateBatch(ctx, projectID, fresh)
	if err != nil || !withStages {
		return result, err
	}

	stages, err := s.repos.Stages.ListByProject(ctx, projectID, false)
	if err != nil {
		return result, &apperr.BatchError{
			Step: "create unit stages", Total: len(result.Created),
			Err: apperr.External("listing stages", err),
		}
	}
	if len(stages) == 0 {
		result.Propagation = &PropagationResult{}
		return result, nil
	}
	unitIDs := make([]string, len(result.Created))
	for i, u := range result.Created {
		unitIDs[i] = u.ID
	}
	stageIDs := make([]string, len(stages))
	for i, st := range stages {
		stageIDs[i] = st.ID
	}
	result.Propagation, err = s.propagation.InstantiateStagesForUnits(ctx, unitIDs, stageIDs)
	return result, err
}

// skipped lists candidates that did not survive de-duplication, in order.
func skipped(candidates, kept []string) []string {
	keep := make(map[string]int, len(kept))
	for _, k := range kept {
		keep[k]++
	}
	var out []string
	for _, c := range candidates {
		if keep[c] > 0 {
			keep[c]--
			continue
		}
		out = append(out, c)
	}
	return out
}

func (s *unitService) List(ctx context.Context, projectID string, filter listing.UnitFilter, sort listing.SortKey) ([]*domain.Unit, error) {
	if _, err := s.repos.Projects.GetByID(ctx, projectID); err != nil {
		return nil, lookupErr("project", projectID, err)
	}
	units, err := s.repos.Units.ListByProject(ctx, projectID)
	if err != nil {
		return nil, apperr.External("listing units", err)
	}
	computed, _, err := computedUnits(ctx, s.repos, units)
	if err != nil {
		return nil, err
	}
	return listing.SortUnits(listing.FilterUnits(computed, filter), sort), nil
}

func (s *unitService) Get(ctx context.Context, id string) (*domain.Unit, error) {
	u, err := s.repos.Units.GetByID(ctx, id)
	if err != nil {
		return nil, lookupErr("unit", id, err)
	}
	return u, nil
}

// Delete removes the unit after purging each of its instances, then
// deletes their stored photos.
func (s *unitService) Delete(ctx context.Context, id string) (err error) {
	startedAt := time.Now()
	fields := map[string]any{"unit_id": id}
	defer func() { observeUseCase(ctx, s.observer, "unit-delete", startedAt, fields, err) }()

	if _, err = s.repos.Units.GetByID(ctx, id); err != nil {
		return lookupErr("unit", id, err)
	}
	var keys []string
	err = s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		txRepos := repository.NewSQLiteRepos(tx)
		instances, err := txRepos.UnitStages.ListByUnit(ctx, id)
		if err != nil {
			return err
		}
		ids := make([]string, len(instances))
		for i, us := range instances {
			ids[i] = us.ID
		}
		fields["unit_stages"] = len(ids)
		if keys, err = purgeInstances(ctx, txRepos, ids); err != nil {
			return err
		}
		return txRepos.Units.Delete(ctx, id)
	})
	if err != nil {
		return apperr.External("deleting unit", err)
	}
	return removeObjects(ctx, s.store, s.bucket, keys)
}

// Detail loads the unit page: the unit, its project and its instances in
// display order with progress computed from them.
func (s *unitService) Detail(ctx context.Context, id string) (*UnitDetail, error) {
	u, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	project, err := s.repos.Projects.GetByID(ctx, u.ProjectID)
	if err != nil {
		return nil, lookupErr("project", u.ProjectID, err)
	}
	instances, err := s.repos.UnitStages.ListByUnit(ctx, id)
	if err != nil {
		return nil, apperr.External("loading unit stages", err)
	}
	stageIDs := make([]string, len(instances))
	for i, us := range instances {
		stageIDs[i] = us.StageID
	}
	stages, err := s.repos.Stages.ListByIDs(ctx, dedupIDs(stageIDs))
	if err != nil {
		return nil, apperr.External("loading stages", err)
	}
	byID := make(map[string]*domain.Stage, len(stages))
	names := make(map[string]string, len(stages))
	for _, st := range stages {
		byID[st.ID] = st
		names[st.ID] = st.Name
	}

	detail := &UnitDetail{
		Unit:     u,
		Project:  project,
		Progress: rollup.UnitProgress(instances),
		Status:   rollup.UnitStatus(instances),
	}
	for _, us := range sortedInstances(instances, names) {
		detail.Stages = append(detail.Stages, StageView{
			Instance: us,
			Stage:    byID[us.StageID],
			Name:     us.DisplayName(names[us.StageID]),
		})
	}
	return detail, nil
}

// SyncProgress recomputes and stores the unit's progress and status.
func (s *unitService) SyncProgress(ctx context.Context, id string) (synced *domain.Unit, err error) {
	if _, err = s.Get(ctx, id); err != nil {
		return nil, err
	}
	err = s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		var err error
		synced, err = syncUnit(ctx, repository.NewSQLiteRepos(tx), id, nowUTC())
		return err
	})
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperr.NotFound("unit", id)
		}
		return nil, apperr.External("syncing unit progress", err)
	}
	return synced, nil
}
