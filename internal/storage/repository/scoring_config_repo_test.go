package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ramonehamilton/rugby-stats/internal/storage/models"
)

func TestScoringConfigRepository_Activate(t *testing.T) {
	db := setupTestDB(t)
	repo := NewScoringConfigRepository(db)
	ctx := context.Background()

	active, err := repo.GetActive(ctx)
	require.NoError(t, err)
	assert.Nil(t, active)

	a := &models.ScoringConfiguration{Name: "a"}
	b := &models.ScoringConfiguration{Name: "b"}
	require.NoError(t, repo.Create(ctx, a))
	require.NoError(t, repo.Create(ctx, b))

	ok, err := repo.Activate(ctx, a.ID)
	require.NoError(t, err)
	assert.True(t, ok)
	ok, err = repo.Activate(ctx, b.ID)
	require.NoError(t, err)
	assert.True(t, ok)

	active, err = repo.GetActive(ctx)
	require.NoError(t, err)
	require.NotNil(t, active)
	assert.Equal(t, b.ID, active.ID)

	configs, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, configs, 2)
	assert.False(t, configs[0].IsActive)
	assert.True(t, configs[1].IsActive)

	ok, err = repo.Activate(ctx, 999)
	require.NoError(t, err)
	assert.False(t, ok)
	active, err = repo.GetActive(ctx)
	require.NoError(t, err)
	assert.Equal(t, b.ID, active.ID)
}

func TestScoringConfigRepository_WeightsUpsert(t *testing.T) {
	db := setupTestDB(t)
	repo := NewScoringConfigRepository(db)
	ctx := context.Background()

	config := &models.ScoringConfiguration{Name: "custom"}
	require.NoError(t, repo.Create(ctx, config))

	first := []*models.ScoringWeight{
		{ActionName: "try", Position: 11, Weight: 10},
		{ActionName: "pases", Position: 9, Weight: 2},
	}
	require.NoError(t, repo.AddWeights(ctx, config.ID, first))
	assert.NotZero(t, first[0].ID)

	replaced := []*models.ScoringWeight{{ActionName: "try", Position: 11, Weight: 12}}
	require.NoError(t, repo.AddWeights(ctx, config.ID, replaced))
	assert.Equal(t, first[0].ID, replaced[0].ID)

	weights, err := repo.GetWeights(ctx, config.ID)
	require.NoError(t, err)
	require.Len(t, weights, 2)

	w, err := repo.GetWeight(ctx, first[0].ID)
	require.NoError(t, err)
	assert.Equal(t, 12.0, w.Weight)

	ok, err := repo.UpdateWeight(ctx, w.ID, -1.5)
	require.NoError(t, err)
	assert.True(t, ok)
	ok, err = repo.UpdateWeight(ctx, 999, 1)
	require.NoError(t, err)
	assert.False(t, ok)

	bad := []*models.ScoringWeight{{ActionName: "try", Position: 0, Weight: 1}}
	assert.Error(t, repo.AddWeights(ctx, config.ID, bad))
}

func TestScoringConfigRepository_DeleteCascadesWeights(t *testing.T) {
	db := setupTestDB(t)
	repo := NewScoringConfigRepository(db)
	ctx := context.Background()

	config := &models.ScoringConfiguration{Name: "gone"}
	require.NoError(t, repo.Create(ctx, config))
	require.NoError(t, repo.AddWeights(ctx, config.ID, []*models.ScoringWeight{{ActionName: "try", Position: 1, Weight: 8}}))

	require.NoError(t, repo.ClearStatReferences(ctx, config.ID))
	require.NoError(t, repo.Delete(ctx, config.ID))

	weights, err := repo.GetWeights(ctx, config.ID)
	require.NoError(t, err)
	assert.Empty(t, weights)

	got, err := repo.GetByName(ctx, "gone")
	require.NoError(t, err)
	assert.Nil(t, got)
}
