package repository

import (
	"context"
	"errors"

	"github.com/alexanderramin/canteiro/internal/domain"
)

// ErrNotFound is wrapped by every Get* method when no row matches.
var ErrNotFound = errors.New("not found")

type ProjectRepo interface {
	Create(ctx context.Context, p *domain.Project) error
	GetByID(ctx context.Context, id string) (*domain.Project, error)
	List(ctx context.Context) ([]*domain.Project, error)
	Update(ctx context.Context, p *domain.Project) error
	Delete(ctx context.Context, id string) error
}

type StageRepo interface {
	Create(ctx context.Context, s *domain.Stage) error
	GetByID(ctx context.Context, id string) (*domain.Stage, error)
	ListByProject(ctx context.Context, projectID string, includeArchived bool) ([]*domain.Stage, error)
	ListByIDs(ctx context.Context, ids []string) ([]*domain.Stage, error)
	MaxOrderIndex(ctx context.Context, projectID string) (int, error)
	Update(ctx context.Context, s *domain.Stage) error
}

type UnitRepo interface {
	Create(ctx context.Context, u *domain.Unit) error
	GetByID(ctx context.Context, id string) (*domain.Unit, error)
	ListByProject(ctx context.Context, projectID string) ([]*domain.Unit, error)
	ListByProjects(ctx context.Context, projectIDs []string) ([]*domain.Unit, error)
	Update(ctx context.Context, u *domain.Unit) error
	Delete(ctx context.Context, id string) error
}

type UnitStageRepo interface {
	Create(ctx context.Context, us *domain.UnitStage) error
	GetByID(ctx context.Context, id string) (*domain.UnitStage, error)
	ListByUnit(ctx context.Context, unitID string) ([]*domain.UnitStage, error)
	ListByUnits(ctx context.Context, unitIDs []string) ([]*domain.UnitStage, error)
	// UnitsWithAnyStage returns the subset of unitIDs holding at least one
	// instance of any of stageIDs, in a single query.
	UnitsWithAnyStage(ctx context.Context, unitIDs, stageIDs []string) (map[string]bool, error)
	ExistsPair(ctx context.Context, unitID, stageID string) (bool, error)
	MaxOrderIndex(ctx context.Context, unitID string) (int, error)
	Update(ctx context.Context, us *domain.UnitStage) error
	Delete(ctx context.Context, id string) error
}

type PhotoRepo interface {
	Create(ctx context.Context, p *domain.Photo) error
	GetByID(ctx context.Context, id string) (*domain.Photo, error)
	ListByUnitStage(ctx context.Context, unitStageID string) ([]*domain.Photo, error)
	Delete(ctx context.Context, id string) error
	DeleteByUnitStage(ctx context.Context, unitStageID string) (int, error)
}

type StageLogRepo interface {
	Create(ctx context.Context, l *domain.StageLog) error
	ListByUnitStage(ctx context.Context, unitStageID string) ([]*domain.StageLog, error)
	DeleteByUnitStage(ctx context.Context, unitStageID string) (int, error)
}

type UserRepo interface {
	Create(ctx context.Context, u *domain.User) error
	GetByID(ctx context.Context, id string) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
}

// Repos bundles one repository per entity over the same DBTX, so services can
// build transaction-scoped sets inside a UnitOfWork.
type Repos struct {
	Projects   ProjectRepo
	Stages     StageRepo
	Units      UnitRepo
	UnitStages UnitStageRepo
	Photos     PhotoRepo
	Logs       StageLogRepo
	Users      UserRepo
}
