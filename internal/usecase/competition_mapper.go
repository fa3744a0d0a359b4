package usecase

import (
	"context"

	"github.com/cockroachdb/errors"

	"github.com/matchtv/tvsync/internal/domain/competition"
	"github.com/matchtv/tvsync/internal/platform/logging"
)

// CompetitionMapper resolves local competitions to their external league
// identity. An unmapped competition is a normal outcome, not an error: the
// caller decides whether to skip or fail.
type CompetitionMapper struct {
	competitions competition.Repository
	mappings     competition.MappingRepository
	logger       *logging.Logger
}

func NewCompetitionMapper(competitions competition.Repository, mappings competition.MappingRepository, logger *logging.Logger) *CompetitionMapper {
	if logger == nil {
		logger = logging.Default()
	}
	return &CompetitionMapper{competitions: competitions, mappings: mappings, logger: logger}
}

// ResolveExternalLeague returns the active mapping for competitionID. The
// boolean reports whether a mapping exists; a missing competition is
// ErrNotFound.
func (m *CompetitionMapper) ResolveExternalLeague(ctx context.Context, competitionID string) (competition.LeagueMapping, bool, error) {
	ctx, span := startUsecaseSpan(ctx, "CompetitionMapper.ResolveExternalLeague")
	defer span.End()

	if competitionID == "" {
		return competition.LeagueMapping{}, false, errors.Wrap(ErrInvalidInput, "competition id is required")
	}

	comp, found, err := m.competitions.GetByID(ctx, competitionID)
	if err != nil {
		return competition.LeagueMapping{}, false, errors.Wrap(err, "get competition")
	}
	if !found {
		return competition.LeagueMapping{}, false, errors.Wrapf(ErrNotFound, "competition %s", competitionID)
	}
	if !comp.IsActive {
		m.logger.DebugContext(ctx, "competition inactive, treating as unmapped", "competitionID", competitionID)
		return competition.LeagueMapping{}, false, nil
	}

	mapping, found, err := m.mappings.GetActiveByCompetition(ctx, competitionID)
	if err != nil {
		return competition.LeagueMapping{}, false, errors.Wrap(err, "get league mapping")
	}
	if !found {
		return competition.LeagueMapping{}, false, nil
	}
	return mapping, true, nil
}
