package usecase

import (
	"context"
	"testing"

	"github.com/matchtv/tvsync/internal/domain/team"
	"github.com/matchtv/tvsync/internal/infrastructure/repository/memory"
	"github.com/matchtv/tvsync/internal/platform/logging"
)

func TestTeamResolver_ExternalIDHit(t *testing.T) {
	t.Parallel()

	repo := memory.NewTeamRepository([]team.Team{
		{ID: "arsenal", Name: "Arsenal", Slug: "arsenal", ExternalTeamID: 19},
	})
	resolver := NewTeamResolver(repo, logging.NewNop())

	teamID, err := resolver.ResolveTeam(context.Background(), 19, "Arsenal FC")
	if err != nil {
		t.Fatalf("ResolveTeam error: %v", err)
	}
	if teamID != "arsenal" {
		t.Fatalf("expected arsenal, got=%s", teamID)
	}
}

func TestTeamResolver_ExactNameBackfillsExternalID(t *testing.T) {
	t.Parallel()

	repo := memory.NewTeamRepository([]team.Team{
		{ID: "chelsea", Name: "Chelsea", Slug: "chelsea"},
	})
	resolver := NewTeamResolver(repo, logging.NewNop())

	teamID, err := resolver.ResolveTeam(context.Background(), 18, "chelsea")
	if err != nil {
		t.Fatalf("ResolveTeam error: %v", err)
	}
	if teamID != "chelsea" {
		t.Fatalf("expected chelsea, got=%s", teamID)
	}

	stored, found, err := repo.GetByExternalID(context.Background(), 18)
	if err != nil || !found {
		t.Fatalf("expected external id backfilled, found=%v err=%v", found, err)
	}
	if stored.ID != "chelsea" {
		t.Fatalf("backfill landed on wrong team: %s", stored.ID)
	}
}

func TestTeamResolver_FuzzyMatch(t *testing.T) {
	t.Parallel()

	repo := memory.NewTeamRepository([]team.Team{
		{ID: "wolves", Name: "Wolverhampton Wanderers", Slug: "wolverhampton-wanderers"},
	})
	resolver := NewTeamResolver(repo, logging.NewNop())

	teamID, err := resolver.ResolveTeam(context.Background(), 29, "Wolverhampton")
	if err != nil {
		t.Fatalf("ResolveTeam error: %v", err)
	}
	if teamID != "wolves" {
		t.Fatalf("expected wolves via substring match, got=%s", teamID)
	}

	if _, found, _ := repo.GetByExternalID(context.Background(), 29); !found {
		t.Fatalf("fuzzy match should backfill the external id")
	}
}

func TestTeamResolver_ShortNameSkipsFuzzy(t *testing.T) {
	t.Parallel()

	repo := memory.NewTeamRepository([]team.Team{
		{ID: "hull", Name: "Hull City AFC", Slug: "hull-city-afc"},
	})
	resolver := NewTeamResolver(repo, logging.NewNop())

	// Three characters: too short for the substring pass, so a new team is
	// created instead of matching "Hull City AFC".
	teamID, err := resolver.ResolveTeam(context.Background(), 31, "AFC")
	if err != nil {
		t.Fatalf("ResolveTeam error: %v", err)
	}
	if teamID == "hull" {
		t.Fatalf("short name must not fuzzy-match")
	}
}

func TestTeamResolver_SlugMatch(t *testing.T) {
	t.Parallel()

	repo := memory.NewTeamRepository([]team.Team{
		{ID: "spurs", Name: "Spurs", Slug: "tottenham-hotspur"},
	})
	resolver := NewTeamResolver(repo, logging.NewNop())

	teamID, err := resolver.ResolveTeam(context.Background(), 6, "Tottenham Hotspur!")
	if err != nil {
		t.Fatalf("ResolveTeam error: %v", err)
	}
	if teamID != "spurs" {
		t.Fatalf("expected spurs via slug, got=%s", teamID)
	}
}

func TestTeamResolver_CreatesUnknownTeam(t *testing.T) {
	t.Parallel()

	repo := memory.NewTeamRepository(nil)
	resolver := NewTeamResolver(repo, logging.NewNop())

	teamID, err := resolver.ResolveTeam(context.Background(), 51, "Luton Town")
	if err != nil {
		t.Fatalf("ResolveTeam error: %v", err)
	}
	if teamID == "" {
		t.Fatalf("expected created team id")
	}

	created, found, err := repo.GetByExternalID(context.Background(), 51)
	if err != nil || !found {
		t.Fatalf("expected created team, found=%v err=%v", found, err)
	}
	if created.Slug != "luton-town" {
		t.Fatalf("expected slug luton-town, got=%s", created.Slug)
	}
}

func TestTeamResolver_SecondRunIsStable(t *testing.T) {
	t.Parallel()

	repo := memory.NewTeamRepository(nil)
	resolver := NewTeamResolver(repo, logging.NewNop())

	first, err := resolver.ResolveTeam(context.Background(), 51, "Luton Town")
	if err != nil {
		t.Fatalf("first ResolveTeam error: %v", err)
	}
	second, err := resolver.ResolveTeam(context.Background(), 51, "Luton Town FC")
	if err != nil {
		t.Fatalf("second ResolveTeam error: %v", err)
	}
	if first != second {
		t.Fatalf("same external id must resolve to the same team: %s vs %s", first, second)
	}

	all, err := repo.List(context.Background())
	if err != nil {
		t.Fatalf("List error: %v", err)
	}
	if len(all) != 1 {
		t.Fatalf("expected a single team after rerun, got=%d", len(all))
	}
}
