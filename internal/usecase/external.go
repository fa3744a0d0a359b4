package usecase

import (
	"context"
	"time"

	"github.com/matchtv/tvsync/internal/domain/broadcast"
	"github.com/matchtv/tvsync/internal/domain/rawdata"
)

// FixtureFeedProvider is the upstream sports-data contract the sync engine
// walks: league -> current season -> rounds -> fixtures with embedded
// participants, TV stations, scores and match state.
type FixtureFeedProvider interface {
	FetchCurrentSeason(ctx context.Context, externalLeagueID int64) (ExternalSeason, []rawdata.Payload, error)
	FetchSeasonRounds(ctx context.Context, externalSeasonID int64) ([]ExternalRound, []rawdata.Payload, error)
	FetchRoundFixtures(ctx context.Context, externalRoundID int64) ([]ExternalFixture, []rawdata.Payload, error)
	APICalls() int
}

type ExternalSeason struct {
	ExternalID       int64
	ExternalLeagueID int64
	Name             string
	IsCurrent        bool
}

type ExternalRound struct {
	ExternalID int64
	Name       string
}

type ExternalFixture struct {
	ExternalID         int64
	Round              ExternalRound
	KickoffAt          time.Time
	HomeTeamExternalID int64
	HomeTeamName       string
	AwayTeamExternalID int64
	AwayTeamName       string
	Status             string
	HomeScore          *int
	AwayScore          *int
	// HasTVStations distinguishes "provider sent no tvstations block" from
	// "provider sent an empty one"; only the latter may wipe stored rows.
	HasTVStations bool
	TVStations    []broadcast.Station
}
