package importer

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ramonehamilton/rugby-stats/internal/storage"
)

func writeSheet(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "fecha-3.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestImportFile(t *testing.T) {
	svc := storage.NewTestService(t)
	ctx := context.Background()
	_, err := svc.SeedDefaultWeights(ctx, false)
	require.NoError(t, err)

	imp := New(svc, nil)
	result, err := imp.ImportFile(ctx, writeSheet(t, singleSheet), Options{Recalculate: true})
	require.NoError(t, err)

	assert.NotEmpty(t, result.BatchID)
	require.Len(t, result.Matches, 1)
	assert.Equal(t, 2, result.Players)
	assert.Equal(t, 2, result.Stats)
	assert.Equal(t, 2, result.Recalculated)
	assert.Equal(t, result.BatchID, result.Matches[0].ImportBatchID)

	match, err := svc.GetMatch(ctx, result.Matches[0].MatchID)
	require.NoError(t, err)
	assert.Equal(t, "fecha-3.json", match.Source)
	require.NotNil(t, match.ImportBatchID)
	assert.Equal(t, result.BatchID, *match.ImportBatchID)

	bruno, err := svc.FindPlayer(ctx, "Bruno")
	require.NoError(t, err)
	summary, err := svc.PlayerSummary(ctx, bruno.ID)
	require.NoError(t, err)
	require.Len(t, summary.Matches, 1)
	assert.Equal(t, DefaultMinutes, *summary.Matches[0].MinutesPlayed)
	assert.NotNil(t, summary.Matches[0].FinalScore)
}

func TestImport_ReusesPlayersAcrossSheets(t *testing.T) {
	svc := storage.NewTestService(t)
	ctx := context.Background()

	sheets := []Sheet{
		{Match: MatchInfo{Opponent: "A", Team: "Primera"}, Players: []PlayerRow{{Name: "Ana", Position: 1}}},
		{Match: MatchInfo{Opponent: "B", Team: "Primera"}, Players: []PlayerRow{{Name: "Ana", Position: 3}, {Name: "Bruno", Position: 2}}},
	}
	result, err := New(svc, nil).Import(ctx, sheets, Options{Source: "api"})
	require.NoError(t, err)

	assert.Len(t, result.Matches, 2)
	assert.Equal(t, 2, result.Players)
	assert.Equal(t, 3, result.Stats)
	assert.Zero(t, result.Recalculated)
}

func TestImport_ValidatesBeforeWriting(t *testing.T) {
	svc := storage.NewTestService(t)
	ctx := context.Background()

	sheets := []Sheet{
		{Match: MatchInfo{Opponent: "A", Team: "Primera"}, Players: []PlayerRow{{Name: "Ana", Position: 1}}},
		{Match: MatchInfo{Opponent: "B", Team: "Primera"}, Players: []PlayerRow{{Name: "Bruno", Position: 99}}},
	}
	_, err := New(svc, nil).Import(ctx, sheets, Options{})
	require.ErrorIs(t, err, ErrInvalidSheet)

	matches, err := svc.ListMatches(ctx, storage.MatchFilter{})
	require.NoError(t, err)
	assert.Empty(t, matches)
}

type failingStore struct {
	stored int
}

func (f *failingStore) StoreMatchSheet(_ context.Context, match *storage.Match, entries []storage.SheetEntry) (*storage.ImportResult, error) {
	f.stored++
	return &storage.ImportResult{MatchID: f.stored, ImportBatchID: *match.ImportBatchID, StatsCreated: len(entries)}, nil
}

func (f *failingStore) RecalculateAll(context.Context, *int) (int, error) {
	return 0, errors.New("no active configuration")
}

func TestImport_RecalculationFailureKeepsResult(t *testing.T) {
	store := &failingStore{}
	sheets := []Sheet{{Match: MatchInfo{Opponent: "A", Team: "Primera"}, Players: []PlayerRow{{Name: "Ana", Position: 1}}}}

	result, err := New(store, nil).Import(context.Background(), sheets, Options{Recalculate: true})
	require.Error(t, err)
	require.NotNil(t, result)
	assert.Equal(t, 1, store.stored)
	assert.Equal(t, 1, result.Stats)
}
