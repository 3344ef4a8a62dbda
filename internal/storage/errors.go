package storage

import "errors"

// Lookup and precondition errors returned by Service. Missing or inactive
// configurations are reported with scoring.ErrConfigurationMissing.
var (
	ErrPlayerNotFound = errors.New("player not found")
	ErrMatchNotFound  = errors.New("match not found")
	ErrStatNotFound   = errors.New("player stats not found")
	ErrConfigNotFound = errors.New("scoring configuration not found")
	ErrWeightNotFound = errors.New("scoring weight not found")
	ErrConfigExists   = errors.New("scoring configuration already exists")
	ErrPlayerExists   = errors.New("player already exists")

	// ErrNoStats is returned when a comparison is requested for a player
	// without any recorded match.
	ErrNoStats = errors.New("no stats found for player")
)
