package competition

import "context"

// Repository exposes competition read operations.
type Repository interface {
	ListActive(ctx context.Context) ([]Competition, error)
	GetByID(ctx context.Context, competitionID string) (Competition, bool, error)
}

// MappingRepository resolves external league mappings. A missing mapping is
// reported through the bool, not an error.
type MappingRepository interface {
	GetActiveByCompetition(ctx context.Context, competitionID string) (LeagueMapping, bool, error)
}
