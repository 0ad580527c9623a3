package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/alexanderramin/canteiro/internal/apperr"
	"github.com/alexanderramin/canteiro/internal/bulk"
	"github.com/alexanderramin/canteiro/internal/db"
	"github.com/alexanderramin/canteiro/internal/domain"
	"github.com/alexanderramin/canteiro/internal/repository"
	"github.com/alexanderramin/canteiro/internal/storage"
)

type propagationService struct {
	repos    repository.Repos
	uow      db.UnitOfWork
	stages   StageService
	store    storage.ObjectStore
	bucket   string
	limits   BulkLimits
	observer UseCaseObserver
}

func NewPropagationService(
	repos repository.Repos,
	uow db.UnitOfWork,
	stages StageService,
	store storage.ObjectStore,
	bucket string,
	limits BulkLimits,
	observers ...UseCaseObserver,
) PropagationService {
	return &propagationService{
		repos:    repos,
		uow:      uow,
		stages:   stages,
		store:    store,
		bucket:   bucket,
		limits:   limits.withDefaults(),
		observer: useCaseObserverOrNoop(observers),
	}
}

// InstantiateStagesForUnits gives every unit that holds no instance of the
// active stages among stageIDs one pending instance per such stage. Units
// holding any of them are skipped whole; AddStageToUnit completes partial
// sets. Every unit and stage must exist, and all stages must belong to the
// units' project. Inserts run in chunks, one transaction each, and each
// chunk resyncs the rollup of the units it touched. A failed chunk stops
// the call with a BatchError and earlier chunks stay committed.
func (s *propagationService) InstantiateStagesForUnits(ctx context.Context, unitIDs, stageIDs []string) (result *PropagationResult, err error) {
	startedAt := time.Now()
	result = &PropagationResult{}
	fields := map[string]any{"units": len(unitIDs), "stages": len(stageIDs), FieldEntity: "unit_stage"}
	defer func() {
		fields[FieldRowsWritten] = result.Created
		fields["affected_units"] = result.AffectedUnits
		observeUseCase(ctx, s.observer, "instantiate-stages", startedAt, fields, err)
	}()

	unitIDs, stageIDs = dedupIDs(unitIDs), dedupIDs(stageIDs)
	if len(unitIDs) == 0 || len(stageIDs) == 0 {
		return result, nil
	}

	units := make(map[string]*domain.Unit, len(unitIDs))
	for _, id := range unitIDs {
		u, err := s.repos.Units.GetByID(ctx, id)
		if err != nil {
			return result, lookupErr("unit", id, err)
		}
		units[id] = u
	}
	stages, err := s.repos.Stages.ListByIDs(ctx, stageIDs)
	if err != nil {
		return result, apperr.External("loading stages", err)
	}
	active := make([]*domain.Stage, 0, len(stages))
	activeIDs := make([]string, 0, len(stages))
	for _, st := range stages {
		for _, u := range units {
			if st.ProjectID != u.ProjectID {
				return result, apperr.Validation("stage_ids", "stage %q does not belong to the project of unit %s", st.Name, u.Label())
			}
		}
		if st.IsActive {
			active = append(active, st)
			activeIDs = append(activeIDs, st.ID)
		}
	}
	if len(active) == 0 {
		return result, nil
	}
	domain.SortStages(active)

	holding, err := s.repos.UnitStages.UnitsWithAnyStage(ctx, unitIDs, activeIDs)
	if err != nil {
		return result, apperr.External("checking existing unit stages", err)
	}

	now := nowUTC()
	var rows []*domain.UnitStage
	for _, unitID := range unitIDs {
		if holding[unitID] {
			continue
		}
		for _, st := range active {
			rows = append(rows, &domain.UnitStage{
				ID:         uuid.New().String(),
				UnitID:     unitID,
				StageID:    st.ID,
				Status:     domain.StatusPending,
				OrderIndex: st.OrderIndex,
				CreatedAt:  now,
				UpdatedAt:  now,
			})
		}
	}
	fields["planned"] = len(rows)

	affected := make(map[string]struct{})
	for _, w := range bulk.Chunk(len(rows), s.limits.StageBatchSize) {
		chunk := rows[w.Start:w.End]
		err = s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
			txRepos := repository.NewSQLiteRepos(tx)
			var touched []string
			for _, us := range chunk {
				if err := txRepos.UnitStages.Create(ctx, us); err != nil {
					return err
				}
				if len(touched) == 0 || touched[len(touched)-1] != us.UnitID {
					touched = append(touched, us.UnitID)
				}
			}
			for _, unitID := range touched {
				if _, err := syncUnit(ctx, txRepos, unitID, now); err != nil {
					return err
				}
			}
			return nil
		})
		if err != nil {
			return result, &apperr.BatchError{
				Step:  "create unit stages",
				Done:  result.Created,
				Total: len(rows),
				Err:   apperr.External("inserting unit stages", err),
			}
		}
		result.Created += len(chunk)
		for _, us := range chunk {
			affected[us.UnitID] = struct{}{}
		}
		result.AffectedUnits = len(affected)
	}
	return result, nil
}

// ApplyTemplate fills every unit of the project that lacks instances with
// the active template.
func (s *propagationService) ApplyTemplate(ctx context.Context, projectID string) (*PropagationResult, error) {
	if _, err := s.repos.Projects.GetByID(ctx, projectID); err != nil {
		return nil, lookupErr("project", projectID, err)
	}
	units, err := s.repos.Units.ListByProject(ctx, projectID)
	if err != nil {
		return nil, apperr.External("listing units", err)
	}
	stages, err := s.stages.ListActive(ctx, projectID)
	if err != nil {
		return nil, err
	}
	unitIDs := make([]string, len(units))
	for i, u := range units {
		unitIDs[i] = u.ID
	}
	stageIDs := make([]string, len(stages))
	for i, st := range stages {
		stageIDs[i] = st.ID
	}
	return s.InstantiateStagesForUnits(ctx, unitIDs, stageIDs)
}

// UnitsMissingStages lists the project's units that ApplyTemplate would
// fill: those holding no instance of any active stage.
func (s *propagationService) UnitsMissingStages(ctx context.Context, projectID string) ([]*domain.Unit, error) {
	if _, err := s.repos.Projects.GetByID(ctx, projectID); err != nil {
		return nil, lookupErr("project", projectID, err)
	}
	units, err := s.repos.Units.ListByProject(ctx, projectID)
	if err != nil {
		return nil, apperr.External("listing units", err)
	}
	stages, err := s.stages.ListActive(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if len(stages) == 0 {
		return nil, nil
	}
	return s.withoutActiveInstances(ctx, units, stages)
}

func (s *propagationService) withoutActiveInstances(ctx context.Context, units []*domain.Unit, stages []*domain.Stage) ([]*domain.Unit, error) {
	unitIDs := make([]string, len(units))
	for i, u := range units {
		unitIDs[i] = u.ID
	}
	stageIDs := make([]string, len(stages))
	for i, st := range stages {
		stageIDs[i] = st.ID
	}
	holding, err := s.repos.UnitStages.UnitsWithAnyStage(ctx, unitIDs, stageIDs)
	if err != nil {
		return nil, apperr.External("checking existing unit stages", err)
	}
	var missing []*domain.Unit
	for _, u := range units {
		if !holding[u.ID] {
			missing = append(missing, u)
		}
	}
	return missing, nil
}

// AddStageToUnit attaches one template stage to one unit after its last
// instance. The pair must not exist yet.
func (s *propagationService) AddStageToUnit(ctx context.Context, unitID, stageID string) (created *domain.UnitStage, err error) {
	startedAt := time.Now()
	fields := map[string]any{"unit_id": unitID, "stage_id": stageID, FieldEntity: "unit_stage"}
	defer func() { observeUseCase(ctx, s.observer, "add-stage-to-unit", startedAt, fields, err) }()

	unit, err := s.repos.Units.GetByID(ctx, unitID)
	if err != nil {
		return nil, lookupErr("unit", unitID, err)
	}
	stage, err := s.repos.Stages.GetByID(ctx, stageID)
	if err != nil {
		return nil, lookupErr("stage", stageID, err)
	}
	if stage.ProjectID != unit.ProjectID {
		return nil, apperr.Validation("stage_id", "stage %s belongs to another project", stageID)
	}
	if !stage.IsActive {
		return nil, apperr.Validation("stage_id", "stage %q is archived", stage.Name)
	}

	err = s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		txRepos := repository.NewSQLiteRepos(tx)
		exists, err := txRepos.UnitStages.ExistsPair(ctx, unitID, stageID)
		if err != nil {
			return err
		}
		if exists {
			return apperr.Duplicate("unit stage", fmt.Sprintf("%s/%s", unit.Label(), stage.Name))
		}
		max, err := txRepos.UnitStages.MaxOrderIndex(ctx, unitID)
		if err != nil {
			return err
		}
		now := nowUTC()
		created = &domain.UnitStage{
			ID:         uuid.New().String(),
			UnitID:     unitID,
			StageID:    stageID,
			Status:     domain.StatusPending,
			OrderIndex: max + 1,
			CreatedAt:  now,
			UpdatedAt:  now,
		}
		if err := txRepos.UnitStages.Create(ctx, created); err != nil {
			return err
		}
		_, err = syncUnit(ctx, txRepos, unitID, now)
		return err
	})
	if err != nil {
		return nil, apperr.External("adding stage to unit", err)
	}
	fields[FieldRowsWritten] = 1
	return created, nil
}

// CreateStageForUnit adds a new stage to the project template and attaches
// it to one unit. The two steps are not atomic: when the second fails the
// stage is returned alongside a BatchError naming the step.
func (s *propagationService) CreateStageForUnit(ctx context.Context, projectID, unitID, name string) (*domain.Stage, *domain.UnitStage, error) {
	if _, err := requireName("name", name); err != nil {
		return nil, nil, err
	}
	unit, err := s.repos.Units.GetByID(ctx, unitID)
	if err != nil {
		return nil, nil, lookupErr("unit", unitID, err)
	}
	if unit.ProjectID != projectID {
		return nil, nil, apperr.Validation("unit_id", "unit %s belongs to another project", unit.Label())
	}

	stage, err := s.stages.Create(ctx, projectID, name)
	if err != nil {
		return nil, nil, &apperr.BatchError{Step: "create stage", Done: 0, Total: 2, Err: err}
	}
	instance, err := s.AddStageToUnit(ctx, unitID, stage.ID)
	if err != nil {
		return stage, nil, &apperr.BatchError{Step: "add stage to unit", Done: 1, Total: 2, Err: err}
	}
	return stage, instance, nil
}

// RenameInstance sets the unit-local name. A blank name clears it.
func (s *propagationService) RenameInstance(ctx context.Context, id, customName string) (*domain.UnitStage, error) {
	us, err := s.repos.UnitStages.GetByID(ctx, id)
	if err != nil {
		return nil, lookupErr("unit stage", id, err)
	}
	name := strings.TrimSpace(customName)
	us.CustomName = domain.StringPtrOrNil(name)
	us.UpdatedAt = nowUTC()
	if err := s.repos.UnitStages.Update(ctx, us); err != nil {
		return nil, apperr.External("renaming unit stage", err)
	}
	return us, nil
}

// MoveInstance swaps an instance with its neighbour among the unit's
// instances. A move past either end is a no-op.
func (s *propagationService) MoveInstance(ctx context.Context, id string, dir domain.Direction) (moved *domain.UnitStage, err error) {
	if dir != domain.DirectionUp && dir != domain.DirectionDown {
		return nil, apperr.Validation("direction", "must be up or down, got %q", dir)
	}
	current, err := s.repos.UnitStages.GetByID(ctx, id)
	if err != nil {
		return nil, lookupErr("unit stage", id, err)
	}
	names, err := s.displayNames(ctx, current.UnitID)
	if err != nil {
		return nil, err
	}

	err = s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		txUnitStages := repository.NewSQLiteUnitStageRepo(tx)
		siblings, err := txUnitStages.ListByUnit(ctx, current.UnitID)
		if err != nil {
			return err
		}
		ordered := sortedInstances(siblings, names)
		pos := -1
		order := make([]int, len(ordered))
		for i, us := range ordered {
			order[i] = us.OrderIndex
			if us.ID == id {
				pos = i
			}
		}
		moved = ordered[pos]
		next, ok := reorder(order, pos, dir)
		if !ok {
			return nil
		}
		now := nowUTC()
		for i, us := range ordered {
			if us.OrderIndex == next[i] {
				continue
			}
			us.OrderIndex, us.UpdatedAt = next[i], now
			if err := txUnitStages.Update(ctx, us); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, apperr.External("moving unit stage", err)
	}
	return moved, nil
}

// displayNames maps each of the unit's stage IDs to the template name.
func (s *propagationService) displayNames(ctx context.Context, unitID string) (map[string]string, error) {
	instances, err := s.repos.UnitStages.ListByUnit(ctx, unitID)
	if err != nil {
		return nil, apperr.External("loading unit stages", err)
	}
	ids := make([]string, len(instances))
	for i, us := range instances {
		ids[i] = us.StageID
	}
	stages, err := s.repos.Stages.ListByIDs(ctx, dedupIDs(ids))
	if err != nil {
		return nil, apperr.External("loading stages", err)
	}
	names := make(map[string]string, len(stages))
	for _, st := range stages {
		names[st.ID] = st.Name
	}
	return names, nil
}

// DeleteInstance removes an instance with its photos and logs in one
// transaction, then deletes the stored photo objects.
func (s *propagationService) DeleteInstance(ctx context.Context, id string) (err error) {
	startedAt := time.Now()
	fields := map[string]any{"unit_stage_id": id}
	defer func() { observeUseCase(ctx, s.observer, "delete-unit-stage", startedAt, fields, err) }()

	us, err := s.repos.UnitStages.GetByID(ctx, id)
	if err != nil {
		return lookupErr("unit stage", id, err)
	}

	var keys []string
	err = s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		txRepos := repository.NewSQLiteRepos(tx)
		var err error
		if keys, err = purgeInstances(ctx, txRepos, []string{id}); err != nil {
			return err
		}
		_, err = syncUnit(ctx, txRepos, us.UnitID, nowUTC())
		return err
	})
	if err != nil {
		return apperr.External("deleting unit stage", err)
	}
	fields["photos"] = len(keys)
	return removeObjects(ctx, s.store, s.bucket, keys)
}
