package repository

import (
	"context"
	"testing"
	"time"

	"github.com/alexanderramin/canteiro/internal/domain"
	"github.com/alexanderramin/canteiro/internal/testutil"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStageLogRepo_NewestFirst(t *testing.T) {
	repos := setupRepos(t)
	ctx := context.Background()
	_, u := seedUnit(t, repos, "101")
	us := testutil.NewTestUnitStage(u.ID, "s1")
	require.NoError(t, repos.UnitStages.Create(ctx, us))

	base := time.Date(2025, 6, 1, 8, 0, 0, 0, time.UTC)
	for i, action := range []domain.LogAction{domain.ActionStatusChanged, domain.ActionNotesUpdated} {
		require.NoError(t, repos.Logs.Create(ctx, &domain.StageLog{
			ID:          uuid.New().String(),
			UnitStageID: us.ID,
			UserID:      "user-1",
			Action:      action,
			NewValue:    `{"status":"done"}`,
			CreatedAt:   base.Add(time.Duration(i) * time.Minute),
		}))
	}

	logs, err := repos.Logs.ListByUnitStage(ctx, us.ID)
	require.NoError(t, err)
	require.Len(t, logs, 2)
	assert.Equal(t, domain.ActionNotesUpdated, logs[0].Action)
	assert.Equal(t, domain.ActionStatusChanged, logs[1].Action)

	n, err := repos.Logs.DeleteByUnitStage(ctx, us.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestStageLogRepo_RejectsUnknownAction(t *testing.T) {
	repos := setupRepos(t)
	ctx := context.Background()
	_, u := seedUnit(t, repos, "101")
	us := testutil.NewTestUnitStage(u.ID, "s1")
	require.NoError(t, repos.UnitStages.Create(ctx, us))

	err := repos.Logs.Create(ctx, &domain.StageLog{
		ID: uuid.New().String(), UnitStageID: us.ID, UserID: "u", Action: "exploded",
		CreatedAt: time.Now().UTC(),
	})
	assert.Error(t, err)
}

func TestUserRepo_GetByEmail_CaseInsensitive(t *testing.T) {
	repos := setupRepos(t)
	ctx := context.Background()

	u := testutil.NewTestUser("Mestre@Obra.com")
	require.NoError(t, repos.Users.Create(ctx, u))

	got, err := repos.Users.GetByEmail(ctx, "  mestre@obra.COM ")
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)
	assert.Equal(t, "mestre@obra.com", got.Email)

	_, err = repos.Users.GetByID(ctx, "nobody")
	assert.ErrorIs(t, err, ErrNotFound)
}
