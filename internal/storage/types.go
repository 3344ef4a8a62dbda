package storage

import (
	"time"

	"github.com/ramonehamilton/rugby-stats/internal/comparison"
	"github.com/ramonehamilton/rugby-stats/internal/rugby"
	"github.com/ramonehamilton/rugby-stats/internal/scoring"
	"github.com/ramonehamilton/rugby-stats/internal/storage/models"
	"github.com/ramonehamilton/rugby-stats/internal/storage/repository"
)

// Re-export model types so callers only import storage.
type (
	Player               = models.Player
	Match                = models.Match
	PlayerMatchStat      = models.PlayerMatchStat
	StatRecord           = models.StatRecord
	ScoringConfiguration = models.ScoringConfiguration
	ScoringWeight        = models.ScoringWeight
	MatchFilter          = models.MatchFilter
	StatFilter           = repository.StatFilter
)

// PlayerUpdate is a partial player update. Nil fields keep their value.
type PlayerUpdate struct {
	Name     *string  `json:"name"`
	WeightKg *float64 `json:"weight_kg"`
	HeightCm *float64 `json:"height_cm"`
}

// StatDetail is a stat row with its counts keyed by statistic.
type StatDetail struct {
	*models.PlayerMatchStat
	Counts map[string]int `json:"stats"`
}

// ConfigurationDetail is a configuration with its weights.
type ConfigurationDetail struct {
	*models.ScoringConfiguration
	Weights []*models.ScoringWeight `json:"weights"`
}

// WeightSet is a named set of weights to create or update, e.g. loaded
// from a weight file.
type WeightSet struct {
	Name        string
	Description string
	Activate    bool
	Weights     []scoring.WeightRow
}

// PositionComparison is a player's comparison against a peer group.
type PositionComparison struct {
	PlayerID      int               `json:"player_id"`
	PlayerName    string            `json:"player_name"`
	Position      int               `json:"position"`
	PositionLabel string            `json:"position_label"`
	Scope         comparison.Scope  `json:"scope"`
	PeerLabel     string            `json:"peer_label"`
	PeerPositions []int             `json:"peer_positions"`
	PeerRecords   int               `json:"peer_records"`
	Stats         comparison.Result `json:"stats"`
}

// MatchLine is one match in a player summary, with all counts by key.
type MatchLine struct {
	StatID        int            `json:"stat_id"`
	MatchID       int            `json:"match_id"`
	Opponent      string         `json:"opponent"`
	Team          string         `json:"team"`
	MatchDate     *time.Time     `json:"match_date"`
	Position      int            `json:"position"`
	MinutesPlayed *float64       `json:"minutes_played"`
	AbsoluteScore *float64       `json:"absolute_score"`
	FinalScore    *float64       `json:"final_score"`
	Stats         map[string]int `json:"stats"`
}

// PlayerSummary is a player's record across all matches.
type PlayerSummary struct {
	PlayerID      int         `json:"player_id"`
	PlayerName    string      `json:"player_name"`
	WeightKg      *float64    `json:"weight_kg"`
	HeightCm      *float64    `json:"height_cm"`
	MatchesPlayed int         `json:"matches_played"`
	TotalMinutes  float64     `json:"total_minutes"`
	AvgFinalScore float64     `json:"avg_final_score"`
	Matches       []MatchLine `json:"matches"`
}

// PlayerOverview is a player listing row with aggregate scores.
type PlayerOverview struct {
	ID              int       `json:"id"`
	Name            string    `json:"name"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
	MatchesPlayed   int       `json:"matches_played"`
	AvgScore        float64   `json:"avg_score"`
	TotalScore      float64   `json:"total_score"`
	PrimaryPosition *int      `json:"primary_position"`
}

// SheetEntry is one player's line in an imported match sheet.
type SheetEntry struct {
	PlayerName    string
	Position      int
	MinutesPlayed *float64
	Stats         rugby.StatLine
}

// ImportResult reports what a match sheet import stored.
type ImportResult struct {
	MatchID        int    `json:"match_id"`
	ImportBatchID  string `json:"import_batch_id"`
	PlayersCreated int    `json:"players_created"`
	StatsCreated   int    `json:"stats_created"`
	Recalculated   int    `json:"recalculated"`
}
