package service

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/alexanderramin/canteiro/internal/auth"
	"github.com/alexanderramin/canteiro/internal/db"
	"github.com/alexanderramin/canteiro/internal/domain"
	"github.com/alexanderramin/canteiro/internal/repository"
	"github.com/alexanderramin/canteiro/internal/storage"
	"github.com/alexanderramin/canteiro/internal/testutil"
	"github.com/stretchr/testify/require"
)

const testBucket = "unit-stage-photos"

type testEnv struct {
	db    *sql.DB
	repos repository.Repos
	store *storage.FSStore
	user  *domain.User

	projects    ProjectService
	stages      StageService
	units       UnitService
	propagation PropagationService
	unitStages  UnitStageService
}

func setupEnv(t *testing.T, observers ...UseCaseObserver) *testEnv {
	t.Helper()
	database := testutil.NewTestDB(t)
	return setupEnvWith(t, database, testutil.NewTestUoW(database), DefaultBulkLimits(), observers...)
}

// setupEnvWith wires every service over database, writing through uow.
func setupEnvWith(t *testing.T, database *sql.DB, uow db.UnitOfWork, limits BulkLimits, observers ...UseCaseObserver) *testEnv {
	t.Helper()
	store, err := storage.NewFSStore(t.TempDir(), "http://localhost:8080/objects", "test-secret")
	require.NoError(t, err)

	repos := repository.NewSQLiteRepos(database)
	user := testutil.NewTestUser("mestre@obra.com.br")
	require.NoError(t, repos.Users.Create(context.Background(), user))

	stages := NewStageService(repos, uow, observers...)
	propagation := NewPropagationService(repos, uow, stages, store, testBucket, limits, observers...)
	return &testEnv{
		db:          database,
		repos:       repos,
		store:       store,
		user:        user,
		projects:    NewProjectService(repos, uow, store, testBucket, observers...),
		stages:      stages,
		units:       NewUnitService(repos, uow, propagation, store, testBucket, limits, observers...),
		propagation: propagation,
		unitStages:  NewUnitStageService(repos, uow, store, testBucket, time.Hour, observers...),
	}
}

// ctx returns a context carrying the env's signed-in user.
func (e *testEnv) ctx() context.Context {
	return auth.WithUser(context.Background(), e.user)
}

func (e *testEnv) createProject(t *testing.T, name string) *domain.Project {
	t.Helper()
	p := testutil.NewTestProject(name)
	require.NoError(t, e.projects.Create(e.ctx(), p))
	return p
}

func (e *testEnv) createStages(t *testing.T, projectID string, names ...string) []*domain.Stage {
	t.Helper()
	stages, err := e.stages.BulkCreate(e.ctx(), projectID, names)
	require.NoError(t, err)
	return stages
}

func (e *testEnv) createUnit(t *testing.T, projectID, identifier string) *domain.Unit {
	t.Helper()
	u, err := e.units.Create(e.ctx(), projectID, identifier)
	require.NoError(t, err)
	return u
}

// countRows counts rows of table matching where.
func (e *testEnv) countRows(t *testing.T, table, where string, args ...any) int {
	t.Helper()
	var n int
	q := "SELECT COUNT(*) FROM " + table
	if where != "" {
		q += " WHERE " + where
	}
	require.NoError(t, e.db.QueryRow(q, args...).Scan(&n))
	return n
}

// recordingObserver keeps every event it receives.
type recordingObserver struct {
	events []UseCaseEvent
}

func (r *recordingObserver) ObserveUseCase(_ context.Context, event UseCaseEvent) {
	r.events = append(r.events, event)
}

func (r *recordingObserver) named(name string) []UseCaseEvent {
	var out []UseCaseEvent
	for _, ev := range r.events {
		if ev.Name == name {
			out = append(out, ev)
		}
	}
	return out
}

// uowFailingOnFirstExec returns a unit of work over the env database whose
// first write fails.
func (e *testEnv) uowFailingOnFirstExec(t *testing.T) db.UnitOfWork {
	t.Helper()
	return &testutil.FailOnNthExecUoW{DB: e.db, FailOn: 1, Err: errors.New("write refused")}
}
