package postgres

import (
	"database/sql"
	"testing"
	"time"

	"github.com/matchtv/tvsync/internal/domain/fixture"
)

func TestMapFixtureRow_RoundRoundTrip(t *testing.T) {
	t.Parallel()

	item := fixture.Fixture{
		ID:                "fix_abc",
		ExternalFixtureID: 9001,
		CompetitionID:     "premier-league",
		HomeTeamID:        "team_home",
		AwayTeamID:        "team_away",
		KickoffAt:         time.Date(2026, 1, 10, 15, 0, 0, 0, time.UTC),
		Round:             fixture.Round{ID: 339273, Name: "Matchweek 21"},
		Status:            fixture.StatusScheduled,
	}
	insertModel, err := buildFixtureInsertModel(item)
	if err != nil {
		t.Fatalf("buildFixtureInsertModel error: %v", err)
	}

	row := fixtureTableModel{
		PublicID:            insertModel.PublicID,
		ExternalFixtureID:   insertModel.ExternalFixtureID,
		CompetitionPublicID: insertModel.CompetitionPublicID,
		HomeTeamPublicID:    insertModel.HomeTeamPublicID,
		AwayTeamPublicID:    insertModel.AwayTeamPublicID,
		KickoffAt:           insertModel.KickoffAt,
		Round:               insertModel.Round,
		Status:              insertModel.Status,
	}
	got, err := mapFixtureRow(row)
	if err != nil {
		t.Fatalf("mapFixtureRow error: %v", err)
	}
	if got.Round != item.Round {
		t.Fatalf("round did not survive the trip: %+v vs %+v", got.Round, item.Round)
	}
	if got.ID != item.ID || got.ExternalFixtureID != item.ExternalFixtureID {
		t.Fatalf("unexpected mapped fixture: %+v", got)
	}
}

func TestMapFixtureRow_NullScores(t *testing.T) {
	t.Parallel()

	got, err := mapFixtureRow(fixtureTableModel{
		PublicID: "fix_abc",
		Status:   fixture.StatusScheduled,
	})
	if err != nil {
		t.Fatalf("mapFixtureRow error: %v", err)
	}
	if got.HomeScore != nil || got.AwayScore != nil {
		t.Fatalf("null scores must map to nil: %+v", got)
	}
}

func TestNullableHelpers(t *testing.T) {
	t.Parallel()

	if nullableString("") != nil {
		t.Fatalf("empty string must map to nil")
	}
	if v := nullableString("x"); v == nil || *v != "x" {
		t.Fatalf("unexpected nullableString: %v", v)
	}
	if nullableInt64(0) != nil {
		t.Fatalf("zero must map to nil")
	}
	if nullInt64ToInt64(sql.NullInt64{Valid: true, Int64: 7}) != 7 {
		t.Fatalf("unexpected nullInt64ToInt64")
	}
	if nullInt64ToInt64(sql.NullInt64{}) != 0 {
		t.Fatalf("invalid null must map to 0")
	}
	if nullableTime(time.Time{}) != nil {
		t.Fatalf("zero time must map to nil")
	}
}
