package scoring

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ramonehamilton/rugby-stats/internal/rugby"
)

func line(counts map[rugby.Statistic]int) rugby.StatLine {
	var l rugby.StatLine
	for s, v := range counts {
		l.Set(s, v)
	}
	return l
}

func TestCompute_PropScenario(t *testing.T) {
	e := NewEngine(DefaultParams(), nil)
	in := Input{
		Position:      1,
		MinutesPlayed: 80,
		Stats:         line(map[rugby.Statistic]int{rugby.TacklesCompleted: 5, rugby.TacklesMade: 10, rugby.Tries: 1}),
	}

	absolute, final, err := e.Compute(in, DefaultWeightTable(1))
	require.NoError(t, err)
	assert.Equal(t, 50.5, absolute)
	assert.InDelta(t, 44.1875, final, 1e-9)
}

func TestCompute_FlyHalfScenario(t *testing.T) {
	e := NewEngine(DefaultParams(), nil)
	in := Input{
		Position:      10,
		MinutesPlayed: 80,
		Stats:         line(map[rugby.Statistic]int{rugby.PassesCompleted: 20, rugby.CleanBreaks: 2, rugby.Tries: 1}),
	}

	absolute, final, err := e.Compute(in, DefaultWeightTable(1))
	require.NoError(t, err)
	assert.InDelta(t, 58.5, absolute, 1e-9)
	assert.InDelta(t, 51.1875, final, 1e-9)
}

func TestCompute_MissingWeightsCountAsZero(t *testing.T) {
	table, err := NewWeightTable(3, "partial", []WeightRow{
		{Action: "tackles", Position: 6, Weight: 2},
	})
	require.NoError(t, err)

	e := NewEngine(DefaultParams(), nil)
	in := Input{
		Position:      6,
		MinutesPlayed: 70,
		Stats:         line(map[rugby.Statistic]int{rugby.TacklesMade: 7, rugby.Tries: 3, rugby.PenaltiesConceded: 2}),
	}

	absolute, final, err := e.Compute(in, table)
	require.NoError(t, err)
	assert.Equal(t, 14.0, absolute)
	assert.InDelta(t, 14.0, final, 1e-9)
}

func TestCompute_NegativeWeights(t *testing.T) {
	e := NewEngine(DefaultParams(), nil)
	in := Input{
		Position:      9,
		MinutesPlayed: 70,
		Stats:         line(map[rugby.Statistic]int{rugby.PassesFailed: 2, rugby.PenaltiesConceded: 1}),
	}

	absolute, _, err := e.Compute(in, DefaultWeightTable(1))
	require.NoError(t, err)
	assert.Equal(t, -14.0, absolute)
}

func TestCompute_NilTable(t *testing.T) {
	e := NewEngine(DefaultParams(), nil)
	_, _, err := e.Compute(Input{Position: 1}, nil)
	assert.ErrorIs(t, err, ErrConfigurationMissing)
}

func TestNormalize(t *testing.T) {
	e := NewEngine(DefaultParams(), nil)

	tests := []struct {
		name     string
		absolute float64
		minutes  float64
		want     float64
	}{
		{"full match", 80, 80, 70},
		{"standard length", 35, 70, 35},
		{"floor applies to cameo", 20, 10, 35},
		{"floor applies at exactly forty", 20, 40, 35},
		{"unrecorded minutes use standard duration", 35, 0, 35},
		{"negative total", -40, 80, -35},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, e.Normalize(tt.absolute, tt.minutes), 1e-9)
		})
	}
}

func TestNormalize_FloorInvariant(t *testing.T) {
	e := NewEngine(Params{StandardMatchDuration: 70, MinMinutesFloor: 40}, nil)
	for _, minutes := range []float64{0.5, 1, 12.5, 25, 39.9, 40} {
		assert.Equal(t, (30.0/40.0)*70.0, e.Normalize(30, minutes), "minutes %v", minutes)
	}
}

func TestNewWeightTable_Rejects(t *testing.T) {
	_, err := NewWeightTable(1, "bad", []WeightRow{{Action: "scrums", Position: 1, Weight: 1}})
	assert.Error(t, err)

	_, err = NewWeightTable(1, "bad", []WeightRow{{Action: "tackles", Position: 16, Weight: 1}})
	assert.ErrorIs(t, err, ErrInvalidPosition)
}

func TestDefaultWeightTable_Rows(t *testing.T) {
	table := DefaultWeightTable(7)
	rows := table.Rows()
	assert.Len(t, rows, 240)
	assert.Equal(t, 240, table.Len())

	rebuilt, err := NewWeightTable(7, "copy", rows)
	require.NoError(t, err)
	for _, s := range rugby.Statistics() {
		for p := 1; p <= 15; p++ {
			assert.Equal(t, table.Weight(s, p), rebuilt.Weight(s, p))
		}
	}
}

type memoryStore struct {
	inputs  []Input
	scores  map[int]ScoreUpdate
	calls   int
	failErr error
}

func (m *memoryStore) ListScoringInputs(ctx context.Context) ([]Input, error) {
	return m.inputs, nil
}

func (m *memoryStore) UpdateScores(ctx context.Context, updates []ScoreUpdate) error {
	if m.failErr != nil {
		return m.failErr
	}
	m.calls++
	if m.scores == nil {
		m.scores = make(map[int]ScoreUpdate)
	}
	for _, u := range updates {
		m.scores[u.StatID] = u
	}
	return nil
}

func TestRecalculateAll_Idempotent(t *testing.T) {
	store := &memoryStore{inputs: []Input{
		{StatID: 1, Position: 1, MinutesPlayed: 80, Stats: line(map[rugby.Statistic]int{rugby.TacklesCompleted: 5, rugby.TacklesMade: 10, rugby.Tries: 1})},
		{StatID: 2, Position: 10, MinutesPlayed: 23.5, Stats: line(map[rugby.Statistic]int{rugby.PassesCompleted: 13, rugby.KicksInPlay: 4, rugby.PassesFailed: 1})},
		{StatID: 3, Position: 14, Stats: line(map[rugby.Statistic]int{rugby.CleanBreaks: 3})},
	}}
	e := NewEngine(DefaultParams(), nil)
	table := DefaultWeightTable(5)

	n, err := e.RecalculateAll(context.Background(), store, table)
	require.NoError(t, err)
	assert.Equal(t, 3, n)
	first := make(map[int]ScoreUpdate, len(store.scores))
	for k, v := range store.scores {
		first[k] = v
	}

	n, err = e.RecalculateAll(context.Background(), store, table)
	require.NoError(t, err)
	assert.Equal(t, 3, n)
	assert.Equal(t, first, store.scores)
	assert.Equal(t, 2, store.calls)
	assert.Equal(t, 5, store.scores[2].ConfigID)
}

func TestRecalculateAll_Errors(t *testing.T) {
	e := NewEngine(DefaultParams(), nil)

	_, err := e.RecalculateAll(context.Background(), &memoryStore{}, nil)
	assert.ErrorIs(t, err, ErrConfigurationMissing)

	boom := errors.New("disk full")
	store := &memoryStore{inputs: []Input{{StatID: 1, Position: 1}}, failErr: boom}
	_, err = e.RecalculateAll(context.Background(), store, DefaultWeightTable(1))
	assert.ErrorIs(t, err, boom)

	n, err := e.RecalculateAll(context.Background(), &memoryStore{}, DefaultWeightTable(1))
	require.NoError(t, err)
	assert.Zero(t, n)
}
