package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ramonehamilton/rugby-stats/internal/rugby"
	"github.com/ramonehamilton/rugby-stats/internal/scoring"
	"github.com/ramonehamilton/rugby-stats/internal/storage/models"
)

type statsFixture struct {
	players PlayerRepository
	matches MatchRepository
	stats   PlayerStatsRepository
}

func newStatsFixture(t *testing.T) statsFixture {
	db := setupTestDB(t)
	return statsFixture{
		players: NewPlayerRepository(db),
		matches: NewMatchRepository(db),
		stats:   NewPlayerStatsRepository(db),
	}
}

func (f statsFixture) add(t *testing.T, player string, match *models.Match, position int, tackles int) *models.PlayerMatchStat {
	t.Helper()
	p, _, err := f.players.GetOrCreate(context.Background(), player)
	require.NoError(t, err)

	minutes := 80.0
	stat := &models.PlayerMatchStat{PlayerID: p.ID, MatchID: match.ID, Position: position, MinutesPlayed: &minutes}
	stat.Stats.Set(rugby.TacklesCompleted, tackles)
	require.NoError(t, f.stats.Create(context.Background(), stat))
	return stat
}

func TestPlayerStatsRepository_RoundTrip(t *testing.T) {
	f := newStatsFixture(t)
	ctx := context.Background()
	m := createMatch(t, f.matches, "Hindú", "Primera", nil)

	p, _, err := f.players.GetOrCreate(ctx, "Ana")
	require.NoError(t, err)
	stat := &models.PlayerMatchStat{PlayerID: p.ID, MatchID: m.ID, Position: 7}
	for i, s := range rugby.Statistics() {
		stat.Stats.Set(s, i+1)
	}
	require.NoError(t, f.stats.Create(ctx, stat))

	got, err := f.stats.GetByID(ctx, stat.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, stat.Stats, got.Stats)
	assert.Equal(t, 7, got.Position)
	assert.Nil(t, got.MinutesPlayed)
	assert.Nil(t, got.FinalScore)

	missing, err := f.stats.GetByID(ctx, 999)
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestPlayerStatsRepository_RejectsDuplicateAndInvalid(t *testing.T) {
	f := newStatsFixture(t)
	ctx := context.Background()
	m := createMatch(t, f.matches, "Hindú", "Primera", nil)
	f.add(t, "Ana", m, 1, 3)

	p, err := f.players.GetByName(ctx, "Ana")
	require.NoError(t, err)
	assert.Error(t, f.stats.Create(ctx, &models.PlayerMatchStat{PlayerID: p.ID, MatchID: m.ID, Position: 2}))

	other := createMatch(t, f.matches, "CASI", "Primera", nil)
	assert.Error(t, f.stats.Create(ctx, &models.PlayerMatchStat{PlayerID: p.ID, MatchID: other.ID, Position: 16}))
}

func TestPlayerStatsRepository_ListByPlayerChronological(t *testing.T) {
	f := newStatsFixture(t)
	ctx := context.Background()

	undated := createMatch(t, f.matches, "A", "Primera", nil)
	late := createMatch(t, f.matches, "B", "Primera", date(2024, time.June, 1))
	early := createMatch(t, f.matches, "C", "Primera", date(2024, time.April, 1))

	f.add(t, "Ana", undated, 6, 1)
	f.add(t, "Ana", late, 6, 2)
	f.add(t, "Ana", early, 6, 3)
	f.add(t, "Bruno", early, 7, 9)

	p, err := f.players.GetByName(ctx, "Ana")
	require.NoError(t, err)
	records, err := f.stats.ListByPlayer(ctx, p.ID)
	require.NoError(t, err)
	require.Len(t, records, 3)

	var opponents []string
	for _, r := range records {
		opponents = append(opponents, r.Opponent)
		assert.Equal(t, "Ana", r.PlayerName)
	}
	assert.Equal(t, []string{"C", "B", "A"}, opponents)
	assert.Equal(t, 3, records[0].Stats.Get(rugby.TacklesCompleted))
}

func TestPlayerStatsRepository_ListByPositions(t *testing.T) {
	f := newStatsFixture(t)
	ctx := context.Background()
	m := createMatch(t, f.matches, "A", "Primera", nil)

	f.add(t, "Ana", m, 1, 1)
	f.add(t, "Bruno", m, 3, 1)
	f.add(t, "Carla", m, 9, 1)

	props, err := f.stats.ListByPositions(ctx, []int{1, 3})
	require.NoError(t, err)
	assert.Len(t, props, 2)

	none, err := f.stats.ListByPositions(ctx, nil)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestPlayerStatsRepository_UpdateScoresAndScoredOnly(t *testing.T) {
	db := setupTestDB(t)
	f := statsFixture{
		players: NewPlayerRepository(db),
		matches: NewMatchRepository(db),
		stats:   NewPlayerStatsRepository(db),
	}
	configs := NewScoringConfigRepository(db)
	ctx := context.Background()

	config := &models.ScoringConfiguration{Name: "default"}
	require.NoError(t, configs.Create(ctx, config))

	m1 := createMatch(t, f.matches, "A", "Primera", nil)
	m2 := createMatch(t, f.matches, "B", "Primera", nil)
	scored := f.add(t, "Ana", m1, 1, 1)
	f.add(t, "Ana", m2, 1, 1)

	err := f.stats.UpdateScores(ctx, []scoring.ScoreUpdate{
		{StatID: scored.ID, AbsoluteScore: 12.5, FinalScore: 10.9375, ConfigID: config.ID},
	})
	require.NoError(t, err)

	records, err := f.stats.ListRecords(ctx, RecordFilter{ScoredOnly: true})
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, scored.ID, records[0].ID)
	assert.Equal(t, 10.9375, *records[0].FinalScore)
	assert.Equal(t, config.ID, *records[0].ScoringConfigID)

	matchID := m2.ID
	byMatch, err := f.stats.ListRecords(ctx, RecordFilter{MatchID: &matchID})
	require.NoError(t, err)
	require.Len(t, byMatch, 1)
	assert.Equal(t, "B", byMatch[0].Opponent)
}

func TestPlayerStatsRepository_CascadeOnMatchDelete(t *testing.T) {
	f := newStatsFixture(t)
	ctx := context.Background()
	m := createMatch(t, f.matches, "A", "Primera", nil)
	f.add(t, "Ana", m, 1, 1)

	_, err := f.matches.Delete(ctx, m.ID)
	require.NoError(t, err)

	all, err := f.stats.ListAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestPlayerStatsRepository_ListFilteredAndPaged(t *testing.T) {
	f := newStatsFixture(t)
	ctx := context.Background()
	m1 := createMatch(t, f.matches, "A", "Primera", nil)
	m2 := createMatch(t, f.matches, "B", "Primera", nil)

	first := f.add(t, "Ana", m1, 1, 1)
	f.add(t, "Bruno", m1, 2, 2)
	third := f.add(t, "Ana", m2, 1, 3)

	all, err := f.stats.List(ctx, StatFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 3)

	playerID := first.PlayerID
	ana, err := f.stats.List(ctx, StatFilter{PlayerID: &playerID})
	require.NoError(t, err)
	require.Len(t, ana, 2)
	assert.Equal(t, []int{first.ID, third.ID}, []int{ana[0].ID, ana[1].ID})

	matchID := m1.ID
	n, err := f.stats.Count(ctx, StatFilter{PlayerID: &playerID, MatchID: &matchID})
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	page, err := f.stats.List(ctx, StatFilter{Offset: 1, Limit: 1})
	require.NoError(t, err)
	require.Len(t, page, 1)
	assert.Equal(t, 2, page[0].Stats.Get(rugby.TacklesCompleted))

	n, err = f.stats.Count(ctx, StatFilter{Offset: 1, Limit: 1})
	require.NoError(t, err)
	assert.Equal(t, 3, n)
}
