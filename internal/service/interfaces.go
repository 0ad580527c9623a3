package service

import (
	"context"
	"io"

	"github.com/alexanderramin/canteiro/internal/bulk"
	"github.com/alexanderramin/canteiro/internal/domain"
	"github.com/alexanderramin/canteiro/internal/listing"
	"github.com/alexanderramin/canteiro/internal/rollup"
)

type ProjectService interface {
	Create(ctx context.Context, p *domain.Project) error
	Get(ctx context.Context, id string) (*domain.Project, error)
	List(ctx context.Context, query string, sort listing.SortKey) ([]ProjectOverview, error)
	Update(ctx context.Context, p *domain.Project) error
	Delete(ctx context.Context, id string) error
	Summary(ctx context.Context, id string) (rollup.Summary, error)
	Overview(ctx context.Context, id string, filter listing.UnitFilter, sort listing.SortKey) (*ProjectView, error)
}

type StageService interface {
	Create(ctx context.Context, projectID, name string) (*domain.Stage, error)
	BulkCreate(ctx context.Context, projectID string, names []string) ([]*domain.Stage, error)
	Rename(ctx context.Context, id, name string) (*domain.Stage, error)
	Move(ctx context.Context, id string, dir domain.Direction) (*domain.Stage, error)
	Archive(ctx context.Context, id string) (*domain.Stage, error)
	Reactivate(ctx context.Context, id string) (*domain.Stage, error)
	List(ctx context.Context, projectID string, includeArchived bool) ([]*domain.Stage, error)
	ListActive(ctx context.Context, projectID string) ([]*domain.Stage, error)
}

type UnitService interface {
	Create(ctx context.Context, projectID, identifier string) (*domain.Unit, error)
	CreateBatch(ctx context.Context, projectID string, identifiers []string) ([]*domain.Unit, error)
	GenerateByFloor(ctx context.Context, projectID string, plan bulk.FloorPlan, withStages bool) (*GenerationResult, error)
	List(ctx context.Context, projectID string, filter listing.UnitFilter, sort listing.SortKey) ([]*domain.Unit, error)
	Get(ctx context.Context, id string) (*domain.Unit, error)
	Delete(ctx context.Context, id string) error
	Detail(ctx context.Context, id string) (*UnitDetail, error)
	SyncProgress(ctx context.Context, id string) (*domain.Unit, error)
}

type PropagationService interface {
	InstantiateStagesForUnits(ctx context.Context, unitIDs, stageIDs []string) (*PropagationResult, error)
	ApplyTemplate(ctx context.Context, projectID string) (*PropagationResult, error)
	UnitsMissingStages(ctx context.Context, projectID string) ([]*domain.Unit, error)
	AddStageToUnit(ctx context.Context, unitID, stageID string) (*domain.UnitStage, error)
	CreateStageForUnit(ctx context.Context, projectID, unitID, name string) (*domain.Stage, *domain.UnitStage, error)
	RenameInstance(ctx context.Context, id, customName string) (*domain.UnitStage, error)
	MoveInstance(ctx context.Context, id string, dir domain.Direction) (*domain.UnitStage, error)
	DeleteInstance(ctx context.Context, id string) error
}

type UnitStageService interface {
	Get(ctx context.Context, id string) (*domain.UnitStage, error)
	SetStatus(ctx context.Context, id string, status domain.Status) (*domain.UnitStage, error)
	SetNotes(ctx context.Context, id, notes string) (*domain.UnitStage, error)
	AddPhoto(ctx context.Context, id string, upload PhotoUpload) (*domain.Photo, error)
	DeletePhoto(ctx context.Context, photoID string) error
	ListPhotos(ctx context.Context, id string) ([]PhotoView, error)
	ListLogs(ctx context.Context, id string) ([]*domain.StageLog, error)
}

// ProjectOverview is a project with its unit roll-up, as listed.
type ProjectOverview struct {
	Project *domain.Project
	Summary rollup.Summary
}

// ProjectView backs the project page: the template, the filtered and
// sorted units, and a summary over all units.
type ProjectView struct {
	Project       *domain.Project
	Stages        []*domain.Stage
	Units         []*domain.Unit
	Summary       rollup.Summary
	MissingStages int
}

// StageView is one instance as shown on the unit page.
type StageView struct {
	Instance *domain.UnitStage
	Stage    *domain.Stage // nil when the template entry no longer exists
	Name     string
}

// Archived reports whether the template entry behind the instance is archived.
func (v StageView) Archived() bool {
	return v.Stage != nil && !v.Stage.IsActive
}

// UnitDetail backs the unit page.
type UnitDetail struct {
	Unit     *domain.Unit
	Project  *domain.Project
	Stages   []StageView
	Progress int
	Status   domain.Status
}

// GenerationResult reports each step of a bulk floor generation.
type GenerationResult struct {
	Candidates  []string
	Skipped     []string
	Created     []*domain.Unit
	Propagation *PropagationResult
}

// PropagationResult counts the instances a propagation call created.
type PropagationResult struct {
	Created       int
	AffectedUnits int
}

// PhotoUpload is a photo about to be attached to a unit stage.
type PhotoUpload struct {
	Filename    string
	ContentType string
	Caption     string
	Kind        string
	Body        io.Reader
}

// PhotoView is a photo with a temporary URL for display.
type PhotoView struct {
	Photo *domain.Photo
	URL   string
}

// BulkLimits bounds bulk writes.
type BulkLimits struct {
	UnitBatchSize    int
	StageBatchSize   int
	MaxUnitsPerFloor int
}

// DefaultBulkLimits returns the batch sizes used when none are configured.
func DefaultBulkLimits() BulkLimits {
	return BulkLimits{UnitBatchSize: 200, StageBatchSize: 500, MaxUnitsPerFloor: bulk.DefaultMaxUnitsPerFloor}
}

func (l BulkLimits) withDefaults() BulkLimits {
	d := DefaultBulkLimits()
	if l.UnitBatchSize <= 0 {
		l.UnitBatchSize = d.UnitBatchSize
	}
	if l.StageBatchSize <= 0 {
		l.StageBatchSize = d.StageBatchSize
	}
	if l.MaxUnitsPerFloor <= 0 {
		l.MaxUnitsPerFloor = d.MaxUnitsPerFloor
	}
	return l
}
