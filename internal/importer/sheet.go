package importer

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/ramonehamilton/rugby-stats/internal/rugby"
	"github.com/ramonehamilton/rugby-stats/internal/storage"
)

// DefaultMinutes is recorded for players whose sheet line has no minutes.
const DefaultMinutes = 80.0

// ErrInvalidSheet wraps every validation failure of a match sheet.
var ErrInvalidSheet = errors.New("invalid match sheet")

// dateLayouts are the accepted match date formats, tried in order.
var dateLayouts = []string{"02/01/2006", "2006-01-02", "02-01-2006"}

// Sheet is one match with its player lines.
type Sheet struct {
	Match   MatchInfo   `json:"match"`
	Players []PlayerRow `json:"players"`
}

// MatchInfo describes the fixture of a sheet.
type MatchInfo struct {
	Opponent      string `json:"opponent"`
	Team          string `json:"team"`
	Date          string `json:"date,omitempty"`
	Location      string `json:"location,omitempty"`
	Result        string `json:"result,omitempty"`
	Score         string `json:"score,omitempty"` // "24 - 10", ours first
	OurScore      *int   `json:"our_score,omitempty"`
	OpponentScore *int   `json:"opponent_score,omitempty"`
}

// PlayerRow is one player's line. Stats are keyed by statistic key.
type PlayerRow struct {
	Name     string         `json:"name"`
	Position int            `json:"position"`
	Minutes  *float64       `json:"minutes,omitempty"`
	Stats    map[string]int `json:"stats"`
}

// ParseSheets decodes a document holding either a single sheet object or
// an array of sheets.
func ParseSheets(r io.Reader) ([]Sheet, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet: %w", err)
	}
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty document", ErrInvalidSheet)
	}

	if data[0] == '[' {
		var sheets []Sheet
		if err := json.Unmarshal(data, &sheets); err != nil {
			return nil, fmt.Errorf("failed to parse JSON: %w", err)
		}
		return sheets, nil
	}

	var sheet Sheet
	if err := json.Unmarshal(data, &sheet); err != nil {
		return nil, fmt.Errorf("failed to parse JSON: %w", err)
	}
	return []Sheet{sheet}, nil
}

// Build validates the sheet and converts it into a storage match and its
// entries. Names are trimmed; a missing minutes value becomes DefaultMinutes.
func (s *Sheet) Build() (*storage.Match, []storage.SheetEntry, error) {
	opponent := strings.TrimSpace(s.Match.Opponent)
	if opponent == "" {
		return nil, nil, fmt.Errorf("%w: opponent is required", ErrInvalidSheet)
	}
	team := strings.TrimSpace(s.Match.Team)
	if team == "" {
		return nil, nil, fmt.Errorf("%w: match against %s has no team", ErrInvalidSheet, opponent)
	}
	if len(s.Players) == 0 {
		return nil, nil, fmt.Errorf("%w: match against %s has no players", ErrInvalidSheet, opponent)
	}

	match := &storage.Match{OpponentName: opponent, Team: team}
	if s.Match.Date != "" {
		d, err := ParseDate(s.Match.Date)
		if err != nil {
			return nil, nil, fmt.Errorf("%w: %v", ErrInvalidSheet, err)
		}
		match.MatchDate = &d
	}
	match.Location = optional(s.Match.Location)
	match.Result = optional(s.Match.Result)
	match.OurScore, match.OpponentScore = s.Match.OurScore, s.Match.OpponentScore
	if s.Match.Score != "" && match.OurScore == nil && match.OpponentScore == nil {
		ours, theirs, ok := ParseScore(s.Match.Score)
		if !ok {
			return nil, nil, fmt.Errorf("%w: unreadable score %q", ErrInvalidSheet, s.Match.Score)
		}
		match.OurScore, match.OpponentScore = &ours, &theirs
	}

	seen := make(map[string]bool, len(s.Players))
	entries := make([]storage.SheetEntry, 0, len(s.Players))
	for i, row := range s.Players {
		name := strings.TrimSpace(row.Name)
		if name == "" {
			return nil, nil, fmt.Errorf("%w: player %d has no name", ErrInvalidSheet, i+1)
		}
		if seen[name] {
			return nil, nil, fmt.Errorf("%w: %s appears twice", ErrInvalidSheet, name)
		}
		seen[name] = true

		if !rugby.ValidPosition(row.Position) {
			return nil, nil, fmt.Errorf("%w: %s has position %d", ErrInvalidSheet, name, row.Position)
		}

		minutes := DefaultMinutes
		if row.Minutes != nil {
			if *row.Minutes < 0 {
				return nil, nil, fmt.Errorf("%w: %s has negative minutes", ErrInvalidSheet, name)
			}
			minutes = *row.Minutes
		}

		line, err := rugby.StatLineFromMap(row.Stats)
		if err != nil {
			return nil, nil, fmt.Errorf("%w: %s: %v", ErrInvalidSheet, name, err)
		}

		entries = append(entries, storage.SheetEntry{
			PlayerName:    name,
			Position:      row.Position,
			MinutesPlayed: &minutes,
			Stats:         line,
		})
	}

	return match, entries, nil
}

// ParseDate reads a match date in day-first or ISO format.
func ParseDate(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date %q", value)
}

// ParseScore reads "X - Y" or "X-Y".
func ParseScore(value string) (ours, theirs int, ok bool) {
	parts := strings.Split(strings.TrimSpace(value), "-")
	if len(parts) != 2 {
		return 0, 0, false
	}
	ours, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil {
		return 0, 0, false
	}
	theirs, err = strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil {
		return 0, 0, false
	}
	return ours, theirs, true
}

func optional(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}
