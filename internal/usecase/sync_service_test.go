package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/cockroachdb/errors"

	"github.com/matchtv/tvsync/internal/domain/broadcast"
	"github.com/matchtv/tvsync/internal/domain/competition"
	"github.com/matchtv/tvsync/internal/domain/rawdata"
	"github.com/matchtv/tvsync/internal/infrastructure/repository/memory"
	"github.com/matchtv/tvsync/internal/platform/logging"
)

type stubFeed struct {
	season   ExternalSeason
	rounds   []ExternalRound
	fixtures map[int64][]ExternalFixture
	payloads []rawdata.Payload

	seasonErr error
	roundErrs map[int64]error

	calls int
}

func (s *stubFeed) FetchCurrentSeason(_ context.Context, leagueID int64) (ExternalSeason, []rawdata.Payload, error) {
	s.calls++
	if s.seasonErr != nil {
		return ExternalSeason{}, nil, s.seasonErr
	}
	season := s.season
	season.ExternalLeagueID = leagueID
	return season, s.payloads, nil
}

func (s *stubFeed) FetchSeasonRounds(_ context.Context, _ int64) ([]ExternalRound, []rawdata.Payload, error) {
	s.calls++
	return s.rounds, nil, nil
}

func (s *stubFeed) FetchRoundFixtures(_ context.Context, roundID int64) ([]ExternalFixture, []rawdata.Payload, error) {
	s.calls++
	if err := s.roundErrs[roundID]; err != nil {
		return nil, nil, err
	}
	return s.fixtures[roundID], nil, nil
}

func (s *stubFeed) APICalls() int { return s.calls }

type syncHarness struct {
	svc        *SyncService
	fixtures   *memory.FixtureRepository
	broadcasts *memory.BroadcastRepository
	teams      *memory.TeamRepository
	runs       *memory.SyncRunRepository
	rawData    *memory.RawDataRepository
}

func newSyncHarness(feed *stubFeed) *syncHarness {
	comps := memory.NewCompetitionRepository([]competition.Competition{
		{ID: "premier-league", Name: "Premier League", Slug: "premier-league", IsActive: true},
		{ID: "friendlies", Name: "Club Friendlies", Slug: "friendlies", IsActive: true},
	})
	mappings := memory.NewMappingRepository([]competition.LeagueMapping{
		{CompetitionID: "premier-league", ExternalLeagueID: 8, IsActive: true},
	})
	fixtures := memory.NewFixtureRepository(nil)
	broadcasts := memory.NewBroadcastRepository()
	teams := memory.NewTeamRepository(nil)
	runs := memory.NewSyncRunRepository()
	rawData := memory.NewRawDataRepository()
	logger := logging.NewNop()

	svc := NewSyncService(
		comps,
		NewCompetitionMapper(comps, mappings, logger),
		NewTeamResolver(teams, logger),
		fixtures,
		NewBroadcastService(broadcasts, memory.NewExclusionRepository(nil), fixtures, BroadcastConfig{}, logger),
		runs,
		rawData,
		feed,
		logger,
	)
	// Tests never wait out the inter-request pause.
	svc.sleep = func(_ context.Context, _ time.Duration) error { return nil }
	return &syncHarness{svc: svc, fixtures: fixtures, broadcasts: broadcasts, teams: teams, runs: runs, rawData: rawData}
}

func kickoff(day int) time.Time {
	return time.Date(2026, time.January, day, 15, 0, 0, 0, time.UTC)
}

func intPtr(v int) *int { return &v }

func testFixture(id int64, round ExternalRound) ExternalFixture {
	return ExternalFixture{
		ExternalID:         id,
		Round:              round,
		KickoffAt:          kickoff(10),
		HomeTeamExternalID: 1,
		HomeTeamName:       "Arsenal",
		AwayTeamExternalID: 2,
		AwayTeamName:       "Chelsea",
		Status:             "NS",
	}
}

func TestSyncService_SyncAll_CreatesThenUpdates(t *testing.T) {
	t.Parallel()

	round := ExternalRound{ExternalID: 339273, Name: "Matchweek 21"}
	feed := &stubFeed{
		season: ExternalSeason{ExternalID: 25583, Name: "2025/2026", IsCurrent: true},
		rounds: []ExternalRound{round},
		fixtures: map[int64][]ExternalFixture{
			339273: {testFixture(9001, round)},
		},
	}
	h := newSyncHarness(feed)

	stats, err := h.svc.SyncAll(context.Background(), SyncOptions{CompetitionID: "premier-league"})
	if err != nil {
		t.Fatalf("SyncAll error: %v", err)
	}
	if stats.Created != 1 || stats.Updated != 0 || stats.Errors != 0 {
		t.Fatalf("unexpected first-run stats: %+v", stats)
	}

	// Rerun: the same external fixture must update in place, never duplicate.
	stats, err = h.svc.SyncAll(context.Background(), SyncOptions{CompetitionID: "premier-league"})
	if err != nil {
		t.Fatalf("second SyncAll error: %v", err)
	}
	if stats.Created != 0 || stats.Updated != 1 {
		t.Fatalf("unexpected second-run stats: %+v", stats)
	}
	if h.fixtures.Count() != 1 {
		t.Fatalf("expected 1 fixture after rerun, got=%d", h.fixtures.Count())
	}
}

func TestSyncService_RoundStoredVerbatim(t *testing.T) {
	t.Parallel()

	// Upstream renumbered rounds midseason; the stored round must echo the
	// feed, not a locally derived counter.
	round := ExternalRound{ExternalID: 339280, Name: "Matchweek 28"}
	feed := &stubFeed{
		season: ExternalSeason{ExternalID: 25583, IsCurrent: true},
		rounds: []ExternalRound{round},
		fixtures: map[int64][]ExternalFixture{
			339280: {testFixture(9002, round)},
		},
	}
	h := newSyncHarness(feed)

	if _, err := h.svc.SyncAll(context.Background(), SyncOptions{CompetitionID: "premier-league"}); err != nil {
		t.Fatalf("SyncAll error: %v", err)
	}

	stored, found, err := h.fixtures.GetByExternalID(context.Background(), 9002)
	if err != nil || !found {
		t.Fatalf("expected stored fixture, found=%v err=%v", found, err)
	}
	if stored.Round.ID != 339280 || stored.Round.Name != "Matchweek 28" {
		t.Fatalf("round not stored verbatim: %+v", stored.Round)
	}
}

func TestSyncService_ScoreGating(t *testing.T) {
	t.Parallel()

	round := ExternalRound{ExternalID: 1, Name: "Matchweek 1"}
	scheduled := testFixture(9003, round)
	scheduled.HomeScore = intPtr(0) // provider placeholder
	scheduled.AwayScore = intPtr(0)

	live := testFixture(9004, round)
	live.Status = "LIVE"
	live.HomeScore = intPtr(2)
	live.AwayScore = intPtr(1)

	feed := &stubFeed{
		season:   ExternalSeason{ExternalID: 25583, IsCurrent: true},
		rounds:   []ExternalRound{round},
		fixtures: map[int64][]ExternalFixture{1: {scheduled, live}},
	}
	h := newSyncHarness(feed)

	if _, err := h.svc.SyncAll(context.Background(), SyncOptions{CompetitionID: "premier-league"}); err != nil {
		t.Fatalf("SyncAll error: %v", err)
	}

	notStarted, _, _ := h.fixtures.GetByExternalID(context.Background(), 9003)
	if notStarted.HomeScore != nil || notStarted.AwayScore != nil {
		t.Fatalf("scores must stay nil before kickoff: %+v", notStarted)
	}
	inPlay, _, _ := h.fixtures.GetByExternalID(context.Background(), 9004)
	if inPlay.HomeScore == nil || *inPlay.HomeScore != 2 || inPlay.AwayScore == nil || *inPlay.AwayScore != 1 {
		t.Fatalf("live scores must persist: %+v", inPlay)
	}
}

func TestSyncService_UnmappedCompetitionSkipped(t *testing.T) {
	t.Parallel()

	round := ExternalRound{ExternalID: 1, Name: "Matchweek 1"}
	feed := &stubFeed{
		season:   ExternalSeason{ExternalID: 25583, IsCurrent: true},
		rounds:   []ExternalRound{round},
		fixtures: map[int64][]ExternalFixture{1: {testFixture(9005, round)}},
	}
	h := newSyncHarness(feed)

	// "friendlies" has no mapping: the all-competitions run skips it without
	// counting an error.
	stats, err := h.svc.SyncAll(context.Background(), SyncOptions{})
	if err != nil {
		t.Fatalf("SyncAll error: %v", err)
	}
	if stats.CompetitionsSynced != 1 || stats.CompetitionsSkipped != 1 {
		t.Fatalf("unexpected stats: %+v", stats)
	}
	if stats.Errors != 0 {
		t.Fatalf("unmapped competition must not count as an error: %+v", stats)
	}
}

func TestSyncService_PerFixtureErrorIsolation(t *testing.T) {
	t.Parallel()

	round := ExternalRound{ExternalID: 1, Name: "Matchweek 1"}
	bad := testFixture(0, round) // invalid external id
	good := testFixture(9006, round)
	feed := &stubFeed{
		season:   ExternalSeason{ExternalID: 25583, IsCurrent: true},
		rounds:   []ExternalRound{round},
		fixtures: map[int64][]ExternalFixture{1: {bad, good}},
	}
	h := newSyncHarness(feed)

	stats, err := h.svc.SyncAll(context.Background(), SyncOptions{CompetitionID: "premier-league"})
	if err != nil {
		t.Fatalf("SyncAll error: %v", err)
	}
	if stats.Errors != 1 || stats.Created != 1 {
		t.Fatalf("one bad fixture must not sink the round: %+v", stats)
	}
	if _, found, _ := h.fixtures.GetByExternalID(context.Background(), 9006); !found {
		t.Fatalf("good fixture should be stored despite the bad one")
	}
}

func TestSyncService_RoundFetchErrorContinues(t *testing.T) {
	t.Parallel()

	roundA := ExternalRound{ExternalID: 1, Name: "Matchweek 1"}
	roundB := ExternalRound{ExternalID: 2, Name: "Matchweek 2"}
	feed := &stubFeed{
		season:    ExternalSeason{ExternalID: 25583, IsCurrent: true},
		rounds:    []ExternalRound{roundA, roundB},
		roundErrs: map[int64]error{1: errors.New("upstream 502")},
		fixtures:  map[int64][]ExternalFixture{2: {testFixture(9007, roundB)}},
	}
	h := newSyncHarness(feed)

	stats, err := h.svc.SyncAll(context.Background(), SyncOptions{CompetitionID: "premier-league"})
	if err != nil {
		t.Fatalf("SyncAll error: %v", err)
	}
	if stats.Errors != 1 || stats.Created != 1 {
		t.Fatalf("round failure must not abort the walk: %+v", stats)
	}
}

func TestSyncService_TVStationsSynced(t *testing.T) {
	t.Parallel()

	round := ExternalRound{ExternalID: 1, Name: "Matchweek 1"}
	withTV := testFixture(9008, round)
	withTV.HasTVStations = true
	withTV.TVStations = []broadcast.Station{
		{ExternalID: 11, CountryID: 462, Name: "Sky Sports Main Event"},
		{ExternalID: 12, CountryID: 17, Name: "beIN Sports 1"},
	}
	feed := &stubFeed{
		season:   ExternalSeason{ExternalID: 25583, IsCurrent: true},
		rounds:   []ExternalRound{round},
		fixtures: map[int64][]ExternalFixture{1: {withTV}},
	}
	h := newSyncHarness(feed)

	stats, err := h.svc.SyncAll(context.Background(), SyncOptions{CompetitionID: "premier-league", TVSyncEnabled: true})
	if err != nil {
		t.Fatalf("SyncAll error: %v", err)
	}
	if stats.BroadcastsStored != 1 {
		t.Fatalf("expected 1 broadcast row, got=%d", stats.BroadcastsStored)
	}

	stored, _, _ := h.fixtures.GetByExternalID(context.Background(), 9008)
	rows, _ := h.broadcasts.ListByFixture(context.Background(), stored.ID)
	if len(rows) != 1 || rows[0].ProviderID != broadcast.ProviderSkySports {
		t.Fatalf("unexpected broadcast rows: %+v", rows)
	}
}

func TestSyncService_MissingTVBlockDoesNotWipe(t *testing.T) {
	t.Parallel()

	round := ExternalRound{ExternalID: 1, Name: "Matchweek 1"}
	withTV := testFixture(9009, round)
	withTV.HasTVStations = true
	withTV.TVStations = []broadcast.Station{{ExternalID: 11, CountryID: 462, Name: "BBC One"}}
	feed := &stubFeed{
		season:   ExternalSeason{ExternalID: 25583, IsCurrent: true},
		rounds:   []ExternalRound{round},
		fixtures: map[int64][]ExternalFixture{1: {withTV}},
	}
	h := newSyncHarness(feed)

	if _, err := h.svc.SyncAll(context.Background(), SyncOptions{CompetitionID: "premier-league", TVSyncEnabled: true}); err != nil {
		t.Fatalf("first SyncAll error: %v", err)
	}

	// Second pass: provider omits the tvstations block entirely. Stored rows
	// must survive.
	withoutTV := testFixture(9009, round)
	feed.fixtures[1] = []ExternalFixture{withoutTV}
	if _, err := h.svc.SyncAll(context.Background(), SyncOptions{CompetitionID: "premier-league", TVSyncEnabled: true}); err != nil {
		t.Fatalf("second SyncAll error: %v", err)
	}

	stored, _, _ := h.fixtures.GetByExternalID(context.Background(), 9009)
	rows, _ := h.broadcasts.ListByFixture(context.Background(), stored.ID)
	if len(rows) != 1 {
		t.Fatalf("missing tv block must not wipe stored rows, got=%d", len(rows))
	}
}

func TestSyncService_DateWindow(t *testing.T) {
	t.Parallel()

	round := ExternalRound{ExternalID: 1, Name: "Matchweek 1"}
	inside := testFixture(9010, round)
	inside.KickoffAt = kickoff(10)
	outside := testFixture(9011, round)
	outside.KickoffAt = kickoff(25)
	feed := &stubFeed{
		season:   ExternalSeason{ExternalID: 25583, IsCurrent: true},
		rounds:   []ExternalRound{round},
		fixtures: map[int64][]ExternalFixture{1: {inside, outside}},
	}
	h := newSyncHarness(feed)

	stats, err := h.svc.SyncAll(context.Background(), SyncOptions{
		CompetitionID: "premier-league",
		DateFrom:      kickoff(1),
		DateTo:        kickoff(15),
	})
	if err != nil {
		t.Fatalf("SyncAll error: %v", err)
	}
	if stats.Processed != 1 || stats.Created != 1 {
		t.Fatalf("expected only the in-window fixture: %+v", stats)
	}
	if _, found, _ := h.fixtures.GetByExternalID(context.Background(), 9011); found {
		t.Fatalf("out-of-window fixture must not be stored")
	}
}

func TestSyncService_DryRunPersistsNothing(t *testing.T) {
	t.Parallel()

	round := ExternalRound{ExternalID: 1, Name: "Matchweek 1"}
	feed := &stubFeed{
		season:   ExternalSeason{ExternalID: 25583, IsCurrent: true},
		rounds:   []ExternalRound{round},
		fixtures: map[int64][]ExternalFixture{1: {testFixture(9012, round)}},
	}
	h := newSyncHarness(feed)

	stats, err := h.svc.SyncAll(context.Background(), SyncOptions{CompetitionID: "premier-league", DryRun: true})
	if err != nil {
		t.Fatalf("SyncAll error: %v", err)
	}
	if stats.Processed != 1 {
		t.Fatalf("dry run still walks fixtures: %+v", stats)
	}
	if h.fixtures.Count() != 0 {
		t.Fatalf("dry run must not persist fixtures, got=%d", h.fixtures.Count())
	}
	if len(h.runs.List()) != 0 {
		t.Fatalf("dry run must not write a run log")
	}
}

func TestSyncService_RunLogCounts(t *testing.T) {
	t.Parallel()

	round := ExternalRound{ExternalID: 1, Name: "Matchweek 1"}
	feed := &stubFeed{
		season:   ExternalSeason{ExternalID: 25583, IsCurrent: true},
		rounds:   []ExternalRound{round},
		fixtures: map[int64][]ExternalFixture{1: {testFixture(9013, round)}},
		payloads: []rawdata.Payload{{Source: "sportmonks", EntityType: "season", EntityKey: "8", PayloadJSON: "{}", PayloadHash: "abc"}},
	}
	h := newSyncHarness(feed)

	stats, err := h.svc.SyncAll(context.Background(), SyncOptions{CompetitionID: "premier-league"})
	if err != nil {
		t.Fatalf("SyncAll error: %v", err)
	}

	logs := h.runs.List()
	if len(logs) != 1 {
		t.Fatalf("expected 1 run log, got=%d", len(logs))
	}
	run := logs[0]
	if run.Status != "completed" {
		t.Fatalf("expected completed run, got=%s", run.Status)
	}
	if run.FinishedAt == nil {
		t.Fatalf("expected finished timestamp")
	}
	if run.Processed != stats.Processed || run.Created != stats.Created || run.Errors != stats.Errors {
		t.Fatalf("run log counts diverge from stats: %+v vs %+v", run, stats)
	}
	if run.APICalls != 3 {
		t.Fatalf("expected 3 api calls (season, rounds, fixtures), got=%d", run.APICalls)
	}
	if h.rawData.Len() != 1 {
		t.Fatalf("expected archived payload, got=%d", h.rawData.Len())
	}
}

func TestSyncService_SeasonFetchFailureFailsRun(t *testing.T) {
	t.Parallel()

	feed := &stubFeed{seasonErr: errors.New("upstream down")}
	h := newSyncHarness(feed)

	stats, err := h.svc.SyncAll(context.Background(), SyncOptions{CompetitionID: "premier-league"})
	if err != nil {
		t.Fatalf("SyncAll should swallow per-competition errors: %v", err)
	}
	if stats.Errors != 1 || stats.CompetitionsSynced != 0 {
		t.Fatalf("unexpected stats: %+v", stats)
	}

	logs := h.runs.List()
	if len(logs) != 1 || logs[0].Status != "failed" {
		t.Fatalf("run with no synced competitions and errors must be failed: %+v", logs)
	}
}

func TestSyncService_UnknownCompetitionIsFatal(t *testing.T) {
	t.Parallel()

	h := newSyncHarness(&stubFeed{})
	_, err := h.svc.SyncAll(context.Background(), SyncOptions{CompetitionID: "nope"})
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got=%v", err)
	}
}

func TestSyncService_EmptyRoundsFailsCompetition(t *testing.T) {
	t.Parallel()

	feed := &stubFeed{season: ExternalSeason{ExternalID: 25583, IsCurrent: true}}
	h := newSyncHarness(feed)

	stats, err := h.svc.SyncAll(context.Background(), SyncOptions{CompetitionID: "premier-league"})
	if err != nil {
		t.Fatalf("SyncAll should swallow per-competition errors: %v", err)
	}
	if stats.Errors != 1 || stats.CompetitionsSynced != 0 || stats.CompetitionsSkipped != 1 {
		t.Fatalf("a season with no rounds must count as a failed competition: %+v", stats)
	}

	logs := h.runs.List()
	if len(logs) != 1 || logs[0].Status != "failed" {
		t.Fatalf("run with no synced competitions and errors must be failed: %+v", logs)
	}
}

func TestSyncService_DryRunStillClassifiesBroadcasts(t *testing.T) {
	t.Parallel()

	round := ExternalRound{ExternalID: 1, Name: "Matchweek 1"}
	withTV := testFixture(9014, round)
	withTV.HasTVStations = true
	withTV.TVStations = []broadcast.Station{
		{ExternalID: 11, CountryID: 462, Name: "Sky Sports Main Event"},
		{ExternalID: 12, CountryID: 17, Name: "beIN Sports 1"},
	}
	feed := &stubFeed{
		season:   ExternalSeason{ExternalID: 25583, IsCurrent: true},
		rounds:   []ExternalRound{round},
		fixtures: map[int64][]ExternalFixture{1: {withTV}},
	}
	h := newSyncHarness(feed)

	// The fixture does not exist yet: a dry run must still report the
	// broadcast rows it would write.
	stats, err := h.svc.SyncAll(context.Background(), SyncOptions{
		CompetitionID: "premier-league",
		TVSyncEnabled: true,
		DryRun:        true,
	})
	if err != nil {
		t.Fatalf("SyncAll error: %v", err)
	}
	if stats.BroadcastsStored != 1 {
		t.Fatalf("expected 1 intended broadcast row, got=%d", stats.BroadcastsStored)
	}
	if h.fixtures.Count() != 0 {
		t.Fatalf("dry run must not persist fixtures, got=%d", h.fixtures.Count())
	}
	ids, _ := h.broadcasts.ListFixtureIDs(context.Background())
	if len(ids) != 0 {
		t.Fatalf("dry run must not persist broadcasts, got=%v", ids)
	}
}
