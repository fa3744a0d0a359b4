package usecase

import (
	"context"
	"testing"

	"github.com/cockroachdb/errors"

	"github.com/matchtv/tvsync/internal/domain/competition"
	"github.com/matchtv/tvsync/internal/infrastructure/repository/memory"
	"github.com/matchtv/tvsync/internal/platform/logging"
)

func newTestMapper(comps []competition.Competition, mappings []competition.LeagueMapping) *CompetitionMapper {
	return NewCompetitionMapper(
		memory.NewCompetitionRepository(comps),
		memory.NewMappingRepository(mappings),
		logging.NewNop(),
	)
}

func TestCompetitionMapper_ResolveExternalLeague(t *testing.T) {
	t.Parallel()

	mapper := newTestMapper(
		[]competition.Competition{
			{ID: "premier-league", Name: "Premier League", Slug: "premier-league", IsActive: true},
			{ID: "championship", Name: "Championship", Slug: "championship", IsActive: true},
		},
		[]competition.LeagueMapping{
			{CompetitionID: "premier-league", ExternalLeagueID: 8, ExternalLeagueName: "Premier League", IsActive: true},
			{CompetitionID: "championship", ExternalLeagueID: 9, IsActive: false},
		},
	)

	mapping, found, err := mapper.ResolveExternalLeague(context.Background(), "premier-league")
	if err != nil {
		t.Fatalf("ResolveExternalLeague error: %v", err)
	}
	if !found {
		t.Fatalf("expected mapping for premier-league")
	}
	if mapping.ExternalLeagueID != 8 {
		t.Fatalf("expected external league 8, got=%d", mapping.ExternalLeagueID)
	}
}

func TestCompetitionMapper_UnmappedIsNotAnError(t *testing.T) {
	t.Parallel()

	mapper := newTestMapper(
		[]competition.Competition{
			{ID: "championship", Name: "Championship", Slug: "championship", IsActive: true},
		},
		nil,
	)

	_, found, err := mapper.ResolveExternalLeague(context.Background(), "championship")
	if err != nil {
		t.Fatalf("ResolveExternalLeague error: %v", err)
	}
	if found {
		t.Fatalf("expected no mapping for championship")
	}
}

func TestCompetitionMapper_InactiveMappingIgnored(t *testing.T) {
	t.Parallel()

	mapper := newTestMapper(
		[]competition.Competition{
			{ID: "championship", Name: "Championship", Slug: "championship", IsActive: true},
		},
		[]competition.LeagueMapping{
			{CompetitionID: "championship", ExternalLeagueID: 9, IsActive: false},
		},
	)

	_, found, err := mapper.ResolveExternalLeague(context.Background(), "championship")
	if err != nil {
		t.Fatalf("ResolveExternalLeague error: %v", err)
	}
	if found {
		t.Fatalf("inactive mapping should not resolve")
	}
}

func TestCompetitionMapper_MissingCompetition(t *testing.T) {
	t.Parallel()

	mapper := newTestMapper(nil, nil)

	_, _, err := mapper.ResolveExternalLeague(context.Background(), "nope")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got=%v", err)
	}
}
