package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/alexanderramin/canteiro/internal/apperr"
	"github.com/alexanderramin/canteiro/internal/db"
	"github.com/alexanderramin/canteiro/internal/domain"
	"github.com/alexanderramin/canteiro/internal/repository"
)

type stageService struct {
	repos    repository.Repos
	uow      db.UnitOfWork
	observer UseCaseObserver
}

func NewStageService(repos repository.Repos, uow db.UnitOfWork, observers ...UseCaseObserver) StageService {
	return &stageService{
		repos:    repos,
		uow:      uow,
		observer: useCaseObserverOrNoop(observers),
	}
}

func (s *stageService) Create(ctx context.Context, projectID, name string) (stage *domain.Stage, err error) {
	startedAt := time.Now()
	fields := map[string]any{"project_id": projectID, FieldEntity: "stage"}
	defer func() { observeUseCase(ctx, s.observer, "stage-create", startedAt, fields, err) }()

	stages, err := s.createStages(ctx, projectID, []string{name})
	if err != nil {
		return nil, err
	}
	fields[FieldRowsWritten] = 1
	return stages[0], nil
}

func (s *stageService) BulkCreate(ctx context.Context, projectID string, names []string) (created []*domain.Stage, err error) {
	startedAt := time.Now()
	fields := map[string]any{"project_id": projectID, "requested": len(names), FieldEntity: "stage"}
	defer func() { observeUseCase(ctx, s.observer, "stage-bulk-create", startedAt, fields, err) }()

	created, err = s.createStages(ctx, projectID, names)
	if err != nil {
		return nil, err
	}
	fields[FieldRowsWritten] = len(created)
	return created, nil
}

// createStages validates every name before writing, then appends the
// stages after the current maximum order in input order, in one transaction.
func (s *stageService) createStages(ctx context.Context, projectID string, names []string) (created []*domain.Stage, err error) {
	if len(names) == 0 {
		return nil, apperr.Validation("names", "at least one stage name is required")
	}
	clean := make([]string, len(names))
	for i, n := range names {
		if clean[i], err = requireName("name", n); err != nil {
			return nil, err
		}
	}
	if _, err = s.repos.Projects.GetByID(ctx, projectID); err != nil {
		return nil, lookupErr("project", projectID, err)
	}

	now := nowUTC()
	err = s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		txStages := repository.NewSQLiteStageRepo(tx)
		max, err := txStages.MaxOrderIndex(ctx, projectID)
		if err != nil {
			return err
		}
		created = make([]*domain.Stage, 0, len(clean))
		for i, name := range clean {
			st := &domain.Stage{
				ID:         uuid.New().String(),
				ProjectID:  projectID,
				Name:       name,
				OrderIndex: max + i + 1,
				IsActive:   true,
				CreatedAt:  now,
				UpdatedAt:  now,
			}
			if err := txStages.Create(ctx, st); err != nil {
				return err
			}
			created = append(created, st)
		}
		return nil
	})
	if err != nil {
		return nil, apperr.External("creating stages", err)
	}
	return created, nil
}

func (s *stageService) Rename(ctx context.Context, id, name string) (*domain.Stage, error) {
	name, err := requireName("name", name)
	if err != nil {
		return nil, err
	}
	return s.update(ctx, "stage-rename", id, func(st *domain.Stage) bool {
		if st.Name == name {
			return false
		}
		st.Name = name
		return true
	})
}

func (s *stageService) Archive(ctx context.Context, id string) (*domain.Stage, error) {
	return s.setActive(ctx, "stage-archive", id, false)
}

func (s *stageService) Reactivate(ctx context.Context, id string) (*domain.Stage, error) {
	return s.setActive(ctx, "stage-reactivate", id, true)
}

// setActive toggles visibility to propagation. Instances are never touched.
func (s *stageService) setActive(ctx context.Context, name, id string, active bool) (*domain.Stage, error) {
	return s.update(ctx, name, id, func(st *domain.Stage) bool {
		if st.IsActive == active {
			return false
		}
		st.IsActive = active
		return true
	})
}

func (s *stageService) update(ctx context.Context, useCase, id string, mutate func(*domain.Stage) bool) (st *domain.Stage, err error) {
	startedAt := time.Now()
	fields := map[string]any{"stage_id": id}
	defer func() { observeUseCase(ctx, s.observer, useCase, startedAt, fields, err) }()

	st, err = s.repos.Stages.GetByID(ctx, id)
	if err != nil {
		return nil, lookupErr("stage", id, err)
	}
	if !mutate(st) {
		fields["changed"] = false
		return st, nil
	}
	st.UpdatedAt = nowUTC()
	if err = s.repos.Stages.Update(ctx, st); err != nil {
		return nil, apperr.External("updating stage", err)
	}
	fields["changed"] = true
	return st, nil
}

// Move swaps the stage with its canonical neighbour among all of the
// project's stages, archived included. A move past either end is a no-op.
func (s *stageService) Move(ctx context.Context, id string, dir domain.Direction) (moved *domain.Stage, err error) {
	startedAt := time.Now()
	fields := map[string]any{"stage_id": id, "direction": string(dir)}
	defer func() { observeUseCase(ctx, s.observer, "stage-move", startedAt, fields, err) }()

	if dir != domain.DirectionUp && dir != domain.DirectionDown {
		return nil, apperr.Validation("direction", "must be up or down, got %q", dir)
	}
	if _, err = s.repos.Stages.GetByID(ctx, id); err != nil {
		return nil, lookupErr("stage", id, err)
	}

	err = s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		txStages := repository.NewSQLiteStageRepo(tx)
		current, err := txStages.GetByID(ctx, id)
		if err != nil {
			return err
		}
		siblings, err := txStages.ListByProject(ctx, current.ProjectID, true)
		if err != nil {
			return err
		}
		domain.SortStages(siblings)

		pos := -1
		order := make([]int, len(siblings))
		for i, st := range siblings {
			order[i] = st.OrderIndex
			if st.ID == id {
				pos = i
			}
		}
		moved = siblings[pos]
		next, ok := reorder(order, pos, dir)
		if !ok {
			fields["changed"] = false
			return nil
		}
		now := nowUTC()
		for i, st := range siblings {
			if st.OrderIndex == next[i] {
				continue
			}
			st.OrderIndex, st.UpdatedAt = next[i], now
			if err := txStages.Update(ctx, st); err != nil {
				return err
			}
		}
		fields["changed"] = true
		return nil
	})
	if err != nil {
		return nil, apperr.External("moving stage", err)
	}
	return moved, nil
}

func (s *stageService) List(ctx context.Context, projectID string, includeArchived bool) ([]*domain.Stage, error) {
	if _, err := s.repos.Projects.GetByID(ctx, projectID); err != nil {
		return nil, lookupErr("project", projectID, err)
	}
	stages, err := s.repos.Stages.ListByProject(ctx, projectID, includeArchived)
	if err != nil {
		return nil, apperr.External("listing stages", err)
	}
	domain.SortStages(stages)
	return stages, nil
}

// ListActive returns the stages propagation instantiates.
func (s *stageService) ListActive(ctx context.Context, projectID string) ([]*domain.Stage, error) {
	return s.List(ctx, projectID, false)
}
