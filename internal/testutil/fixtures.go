package testutil

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/alexanderramin/canteiro/internal/domain"
	"github.com/google/uuid"
)

var testUnitCounter atomic.Int64

// Project options
type ProjectOption func(*domain.Project)

func WithClient(name string) ProjectOption {
	return func(p *domain.Project) {
		p.ClientName = name
	}
}

func WithCity(city string) ProjectOption {
	return func(p *domain.Project) {
		p.City = city
	}
}

func WithProjectCreatedAt(t time.Time) ProjectOption {
	return func(p *domain.Project) {
		p.CreatedAt = t
		p.UpdatedAt = t
	}
}

func NewTestProject(name string, opts ...ProjectOption) *domain.Project {
	now := time.Now().UTC().Truncate(time.Second)
	p := &domain.Project{
		ID:        uuid.New().String(),
		Name:      name,
		CreatedAt: now,
		UpdatedAt: now,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Stage options
type StageOption func(*domain.Stage)

func WithStageOrder(i int) StageOption {
	return func(s *domain.Stage) {
		s.OrderIndex = i
	}
}

func WithArchived() StageOption {
	return func(s *domain.Stage) {
		s.IsActive = false
	}
}

func NewTestStage(projectID, name string, opts ...StageOption) *domain.Stage {
	now := time.Now().UTC().Truncate(time.Second)
	s := &domain.Stage{
		ID:         uuid.New().String(),
		ProjectID:  projectID,
		Name:       name,
		OrderIndex: 1,
		IsActive:   true,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Unit options
type UnitOption func(*domain.Unit)

func WithUnitStatus(st domain.Status) UnitOption {
	return func(u *domain.Unit) {
		u.Status = st
	}
}

func WithProgress(p int) UnitOption {
	return func(u *domain.Unit) {
		u.Progress = p
	}
}

func WithUnitCreatedAt(t time.Time) UnitOption {
	return func(u *domain.Unit) {
		u.CreatedAt = t
		u.UpdatedAt = t
	}
}

// NewTestUnit builds a pending unit. An empty identifier gets a unique one.
func NewTestUnit(projectID, identifier string, opts ...UnitOption) *domain.Unit {
	if identifier == "" {
		identifier = fmt.Sprintf("U%03d", testUnitCounter.Add(1))
	}
	now := time.Now().UTC().Truncate(time.Second)
	u := &domain.Unit{
		ID:         uuid.New().String(),
		ProjectID:  projectID,
		Identifier: identifier,
		Status:     domain.StatusPending,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	for _, opt := range opts {
		opt(u)
	}
	return u
}

// UnitStage options
type UnitStageOption func(*domain.UnitStage)

func WithInstanceStatus(st domain.Status) UnitStageOption {
	return func(us *domain.UnitStage) {
		us.Status = st
	}
}

func WithInstanceOrder(i int) UnitStageOption {
	return func(us *domain.UnitStage) {
		us.OrderIndex = i
	}
}

func WithCustomName(name string) UnitStageOption {
	return func(us *domain.UnitStage) {
		us.CustomName = &name
	}
}

func NewTestUnitStage(unitID, stageID string, opts ...UnitStageOption) *domain.UnitStage {
	now := time.Now().UTC().Truncate(time.Second)
	us := &domain.UnitStage{
		ID:         uuid.New().String(),
		UnitID:     unitID,
		StageID:    stageID,
		Status:     domain.StatusPending,
		OrderIndex: 1,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	for _, opt := range opts {
		opt(us)
	}
	return us
}

func NewTestUser(email string) *domain.User {
	return &domain.User{
		ID:        uuid.New().String(),
		Email:     email,
		CreatedAt: time.Now().UTC().Truncate(time.Second),
	}
}
