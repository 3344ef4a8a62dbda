package importer

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ramonehamilton/rugby-stats/internal/rugby"
)

const singleSheet = `{
  "match": {"opponent": " Los Tilos ", "team": "Primera", "date": "06/04/2024", "score": "24 - 10", "location": "Local"},
  "players": [
    {"name": "Ana ", "position": 1, "minutes": 62.5, "stats": {"tackles": 9, "try": 1}},
    {"name": "Bruno", "position": 10, "stats": {"pases": 17}}
  ]
}`

func TestParseSheets_SingleAndArray(t *testing.T) {
	sheets, err := ParseSheets(strings.NewReader(singleSheet))
	require.NoError(t, err)
	require.Len(t, sheets, 1)
	assert.Len(t, sheets[0].Players, 2)

	sheets, err = ParseSheets(strings.NewReader("[" + singleSheet + "," + singleSheet + "]"))
	require.NoError(t, err)
	assert.Len(t, sheets, 2)

	_, err = ParseSheets(strings.NewReader("   "))
	assert.ErrorIs(t, err, ErrInvalidSheet)

	_, err = ParseSheets(strings.NewReader("{not json"))
	assert.Error(t, err)
}

func TestSheetBuild(t *testing.T) {
	sheets, err := ParseSheets(strings.NewReader(singleSheet))
	require.NoError(t, err)

	match, entries, err := sheets[0].Build()
	require.NoError(t, err)

	assert.Equal(t, "Los Tilos", match.OpponentName)
	assert.Equal(t, "Primera", match.Team)
	require.NotNil(t, match.MatchDate)
	assert.Equal(t, time.Date(2024, time.April, 6, 0, 0, 0, 0, time.UTC), *match.MatchDate)
	assert.Equal(t, 24, *match.OurScore)
	assert.Equal(t, 10, *match.OpponentScore)
	assert.Equal(t, "Local", *match.Location)
	assert.Nil(t, match.Result)

	require.Len(t, entries, 2)
	assert.Equal(t, "Ana", entries[0].PlayerName)
	assert.Equal(t, 62.5, *entries[0].MinutesPlayed)
	assert.Equal(t, 9, entries[0].Stats.Get(rugby.TacklesMade))
	assert.Equal(t, 1, entries[0].Stats.Get(rugby.Tries))
	assert.Equal(t, DefaultMinutes, *entries[1].MinutesPlayed)
	assert.Equal(t, 17, entries[1].Stats.Get(rugby.PassesCompleted))
}

func TestSheetBuild_Rejects(t *testing.T) {
	ok := func() Sheet {
		return Sheet{
			Match:   MatchInfo{Opponent: "Hindú", Team: "Primera"},
			Players: []PlayerRow{{Name: "Ana", Position: 1}},
		}
	}
	negative := -5.0

	tests := []struct {
		name   string
		mutate func(*Sheet)
	}{
		{"no opponent", func(s *Sheet) { s.Match.Opponent = " " }},
		{"no team", func(s *Sheet) { s.Match.Team = "" }},
		{"no players", func(s *Sheet) { s.Players = nil }},
		{"bad date", func(s *Sheet) { s.Match.Date = "yesterday" }},
		{"bad score", func(s *Sheet) { s.Match.Score = "a lot" }},
		{"blank name", func(s *Sheet) { s.Players[0].Name = "" }},
		{"position zero", func(s *Sheet) { s.Players[0].Position = 0 }},
		{"position sixteen", func(s *Sheet) { s.Players[0].Position = 16 }},
		{"negative minutes", func(s *Sheet) { s.Players[0].Minutes = &negative }},
		{"unknown statistic", func(s *Sheet) { s.Players[0].Stats = map[string]int{"scrums": 2} }},
		{"negative count", func(s *Sheet) { s.Players[0].Stats = map[string]int{"try": -1} }},
		{"duplicate player", func(s *Sheet) { s.Players = append(s.Players, PlayerRow{Name: "Ana", Position: 2}) }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := ok()
			tt.mutate(&s)
			_, _, err := s.Build()
			assert.ErrorIs(t, err, ErrInvalidSheet)
		})
	}

	s := ok()
	_, _, err := s.Build()
	assert.NoError(t, err)
}

func TestParseDate(t *testing.T) {
	want := time.Date(2024, time.March, 9, 0, 0, 0, 0, time.UTC)
	for _, in := range []string{"09/03/2024", "2024-03-09", "09-03-2024", " 2024-03-09 "} {
		got, err := ParseDate(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := ParseDate("March 9")
	assert.Error(t, err)
}

func TestParseScore(t *testing.T) {
	tests := []struct {
		in           string
		ours, theirs int
		ok           bool
	}{
		{"24 - 10", 24, 10, true},
		{"7-31", 7, 31, true},
		{" 0 - 0 ", 0, 0, true},
		{"24", 0, 0, false},
		{"a - b", 0, 0, false},
		{"1-2-3", 0, 0, false},
	}
	for _, tt := range tests {
		ours, theirs, ok := ParseScore(tt.in)
		assert.Equal(t, tt.ok, ok, tt.in)
		assert.Equal(t, tt.ours, ours, tt.in)
		assert.Equal(t, tt.theirs, theirs, tt.in)
	}
}
