package repository

import (
	"context"
	"testing"

	"github.com/alexanderramin/canteiro/internal/domain"
	"github.com/alexanderramin/canteiro/internal/testutil"
	"github.com/stretchr/testify/require"
)

func setupRepos(t *testing.T) Repos {
	t.Helper()
	return NewSQLiteRepos(testutil.NewTestDB(t))
}

// seedUnit creates a project and one unit inside it.
func seedUnit(t *testing.T, repos Repos, identifier string) (*domain.Project, *domain.Unit) {
	t.Helper()
	ctx := context.Background()
	p := testutil.NewTestProject("Residencial Aurora")
	require.NoError(t, repos.Projects.Create(ctx, p))
	u := testutil.NewTestUnit(p.ID, identifier)
	require.NoError(t, repos.Units.Create(ctx, u))
	return p, u
}
