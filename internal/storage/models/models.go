package models

import (
	"time"

	"github.com/ramonehamilton/rugby-stats/internal/rugby"
)

// Player is a squad member.
type Player struct {
	ID        int       `json:"id"`
	Name      string    `json:"name"`
	WeightKg  *float64  `json:"weight_kg"` // Nullable
	HeightCm  *float64  `json:"height_cm"` // Nullable
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Match is a single fixture. Deleting a match deletes its stat records.
type Match struct {
	ID            int        `json:"id"`
	OpponentName  string     `json:"opponent_name"`
	Team          string     `json:"team"`
	MatchDate     *time.Time `json:"match_date"` // Nullable
	Location      *string    `json:"location"`   // Nullable: "home" or "away" style free text
	Result        *string    `json:"result"`     // Nullable
	OurScore      *int       `json:"our_score"`
	OpponentScore *int       `json:"opponent_score"`
	Source        string     `json:"source"`
	ImportBatchID *string    `json:"import_batch_id"`
	CreatedAt     time.Time  `json:"created_at"`
}

// PlayerMatchStat holds one player's counts for one match, plus the scores
// computed from them.
type PlayerMatchStat struct {
	ID              int            `json:"id"`
	PlayerID        int            `json:"player_id"`
	MatchID         int            `json:"match_id"`
	Position        int            `json:"position"`
	MinutesPlayed   *float64       `json:"minutes_played"`
	Stats           rugby.StatLine `json:"-"`
	AbsoluteScore   *float64       `json:"absolute_score"`
	FinalScore      *float64       `json:"final_score"`
	ScoringConfigID *int           `json:"scoring_config_id"`
	CreatedAt       time.Time      `json:"created_at"`
}

// Minutes returns the minutes played, or 0 when not recorded.
func (s *PlayerMatchStat) Minutes() float64 {
	if s.MinutesPlayed == nil {
		return 0
	}
	return *s.MinutesPlayed
}

// StatRecord is a stat row joined with its player and match.
type StatRecord struct {
	PlayerMatchStat
	PlayerName string     `json:"player_name"`
	Opponent   string     `json:"opponent"`
	Team       string     `json:"team"`
	MatchDate  *time.Time `json:"match_date"`
}

// ScoringConfiguration is a named set of weights. At most one is active.
type ScoringConfiguration struct {
	ID          int       `json:"id"`
	Name        string    `json:"name"`
	Description *string   `json:"description"`
	IsActive    bool      `json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// ScoringWeight is one coefficient of a configuration.
type ScoringWeight struct {
	ID         int     `json:"id"`
	ConfigID   int     `json:"config_id"`
	ActionName string  `json:"action_name"`
	Position   int     `json:"position"`
	Weight     float64 `json:"weight"`
}

// MatchFilter narrows match listings. Empty fields do not filter.
type MatchFilter struct {
	Opponent string
	Team     string
}
