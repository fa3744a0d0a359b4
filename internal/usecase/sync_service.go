package usecase

import (
	"context"
	"time"

	"github.com/cockroachdb/errors"

	"github.com/matchtv/tvsync/internal/domain/competition"
	"github.com/matchtv/tvsync/internal/domain/fixture"
	"github.com/matchtv/tvsync/internal/domain/rawdata"
	"github.com/matchtv/tvsync/internal/domain/syncrun"
	"github.com/matchtv/tvsync/internal/platform/logging"
)

const defaultRequestDelay = time.Second

// dryRunFixtureID stands in for the id a dry run never assigns; it is only
// ever handed to other dry-run code paths, never written.
const dryRunFixtureID = "fix_dryrun"

// SyncOptions selects what a pipeline run covers.
type SyncOptions struct {
	// CompetitionID limits the run to one competition. Empty runs all active.
	CompetitionID string
	// DateFrom/DateTo bound fixtures by kickoff time. Zero means unbounded.
	DateFrom time.Time
	DateTo   time.Time
	DryRun   bool
	// TVSyncEnabled gates the broadcast stage; fixture sync always runs.
	TVSyncEnabled bool
	// RequestDelay is the pause between upstream calls. Zero uses the default.
	RequestDelay time.Duration
	// BroadcastRetention bounds how long replaced broadcast rows are kept
	// after a run. Zero keeps them forever.
	BroadcastRetention time.Duration
}

// RunStats aggregates one run's outcome. Mirrors the persisted run log plus
// per-competition breakdown counters.
type RunStats struct {
	Processed           int
	Created             int
	Updated             int
	Errors              int
	APICalls            int
	CompetitionsSynced  int
	CompetitionsSkipped int
	BroadcastsStored    int
}

// SyncService drives the season -> rounds -> fixtures walk and hands TV
// station data to the broadcast classifier.
type SyncService struct {
	competitions competition.Repository
	mapper       *CompetitionMapper
	teams        *TeamResolver
	fixtures     fixture.Repository
	broadcasts   *BroadcastService
	runLogs      syncrun.Repository
	rawData      rawdata.Repository
	feed         FixtureFeedProvider
	logger       *logging.Logger
	now          func() time.Time
	sleep        func(ctx context.Context, d time.Duration) error
}

func NewSyncService(
	competitions competition.Repository,
	mapper *CompetitionMapper,
	teams *TeamResolver,
	fixtures fixture.Repository,
	broadcasts *BroadcastService,
	runLogs syncrun.Repository,
	rawData rawdata.Repository,
	feed FixtureFeedProvider,
	logger *logging.Logger,
) *SyncService {
	if logger == nil {
		logger = logging.Default()
	}
	return &SyncService{
		competitions: competitions,
		mapper:       mapper,
		teams:        teams,
		fixtures:     fixtures,
		broadcasts:   broadcasts,
		runLogs:      runLogs,
		rawData:      rawData,
		feed:         feed,
		logger:       logger,
		now:          time.Now,
		sleep:        sleepContext,
	}
}

// SyncAll runs the pipeline for one or all active competitions, recording a
// run log row. A competition that fails is counted and skipped; the run only
// errors on fatal setup problems.
func (s *SyncService) SyncAll(ctx context.Context, opts SyncOptions) (RunStats, error) {
	ctx, span := startUsecaseSpan(ctx, "SyncService.SyncAll")
	defer span.End()

	targets, err := s.resolveTargets(ctx, opts.CompetitionID)
	if err != nil {
		return RunStats{}, err
	}

	run := syncrun.RunLog{
		CompetitionID: opts.CompetitionID,
		StartedAt:     s.now(),
		Status:        syncrun.StatusRunning,
	}
	if !opts.DryRun {
		stored, err := s.runLogs.Create(ctx, run)
		if err != nil {
			return RunStats{}, errors.Wrap(err, "create run log")
		}
		run = stored
	}

	var stats RunStats
	apiCallsBefore := s.feed.APICalls()
	for _, comp := range targets {
		compStats, err := s.SyncCompetition(ctx, comp, opts)
		stats.Processed += compStats.Processed
		stats.Created += compStats.Created
		stats.Updated += compStats.Updated
		stats.Errors += compStats.Errors
		stats.BroadcastsStored += compStats.BroadcastsStored
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				stats.Errors++
				break
			}
			if errors.Is(err, ErrNotMapped) {
				stats.CompetitionsSkipped++
				s.logger.InfoContext(ctx, "competition has no active mapping, skipping",
					"competitionID", comp.ID)
				continue
			}
			stats.Errors++
			stats.CompetitionsSkipped++
			s.logger.ErrorContext(ctx, "competition sync failed",
				"error", err, "competitionID", comp.ID)
			continue
		}
		stats.CompetitionsSynced++
	}
	stats.APICalls = s.feed.APICalls() - apiCallsBefore

	if !opts.DryRun && opts.BroadcastRetention > 0 {
		if _, err := s.broadcasts.PurgeTombstones(ctx, opts.BroadcastRetention); err != nil {
			stats.Errors++
			s.logger.ErrorContext(ctx, "broadcast tombstone purge failed", "error", err)
		}
	}

	if !opts.DryRun {
		finished := s.now()
		run.FinishedAt = &finished
		run.Status = syncrun.StatusCompleted
		if stats.CompetitionsSynced == 0 && stats.Errors > 0 {
			run.Status = syncrun.StatusFailed
		}
		run.Processed = stats.Processed
		run.Created = stats.Created
		run.Updated = stats.Updated
		run.Errors = stats.Errors
		run.APICalls = stats.APICalls
		if err := s.runLogs.Finish(ctx, run); err != nil {
			return stats, errors.Wrap(err, "finish run log")
		}
	}
	return stats, nil
}

func (s *SyncService) resolveTargets(ctx context.Context, competitionID string) ([]competition.Competition, error) {
	if competitionID != "" {
		comp, found, err := s.competitions.GetByID(ctx, competitionID)
		if err != nil {
			return nil, errors.Wrap(err, "get competition")
		}
		if !found {
			return nil, errors.Wrapf(ErrNotFound, "competition %s", competitionID)
		}
		return []competition.Competition{comp}, nil
	}
	targets, err := s.competitions.ListActive(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "list active competitions")
	}
	return targets, nil
}

// SyncCompetition walks one competition: current season, its rounds, each
// round's fixtures. Per-fixture failures are logged and counted; the walk
// continues.
func (s *SyncService) SyncCompetition(ctx context.Context, comp competition.Competition, opts SyncOptions) (RunStats, error) {
	ctx, span := startUsecaseSpan(ctx, "SyncService.SyncCompetition")
	defer span.End()

	mapping, mapped, err := s.mapper.ResolveExternalLeague(ctx, comp.ID)
	if err != nil {
		return RunStats{}, err
	}
	if !mapped {
		return RunStats{}, errors.Wrapf(ErrNotMapped, "competition %s", comp.ID)
	}

	season, payloads, err := s.feed.FetchCurrentSeason(ctx, mapping.ExternalLeagueID)
	s.archivePayloads(ctx, payloads, opts.DryRun)
	if err != nil {
		return RunStats{}, errors.Wrap(err, "fetch current season")
	}
	if err := s.pause(ctx, opts); err != nil {
		return RunStats{}, err
	}

	rounds, payloads, err := s.feed.FetchSeasonRounds(ctx, season.ExternalID)
	s.archivePayloads(ctx, payloads, opts.DryRun)
	if err != nil {
		return RunStats{}, errors.Wrap(err, "fetch season rounds")
	}
	if len(rounds) == 0 {
		return RunStats{}, errors.Newf("season %d returned no rounds", season.ExternalID)
	}

	var stats RunStats
	for _, round := range rounds {
		if err := s.pause(ctx, opts); err != nil {
			return stats, err
		}
		fixtures, payloads, err := s.feed.FetchRoundFixtures(ctx, round.ExternalID)
		s.archivePayloads(ctx, payloads, opts.DryRun)
		if err != nil {
			stats.Errors++
			s.logger.ErrorContext(ctx, "fetch round fixtures failed",
				"error", err, "competitionID", comp.ID, "externalRoundID", round.ExternalID)
			continue
		}
		for _, ext := range fixtures {
			if !s.inDateWindow(ext.KickoffAt, opts) {
				continue
			}
			stats.Processed++
			created, broadcasts, err := s.syncFixture(ctx, comp.ID, ext, opts)
			if err != nil {
				stats.Errors++
				s.logger.ErrorContext(ctx, "fixture sync failed",
					"error", err, "competitionID", comp.ID, "externalFixtureID", ext.ExternalID)
				continue
			}
			if created {
				stats.Created++
			} else {
				stats.Updated++
			}
			stats.BroadcastsStored += broadcasts
		}
	}
	return stats, nil
}

// syncFixture upserts one fixture keyed by its external id and, when the
// provider sent TV data, replaces its broadcast rows. Reports whether the
// fixture was created and how many broadcast rows were stored.
func (s *SyncService) syncFixture(ctx context.Context, competitionID string, ext ExternalFixture, opts SyncOptions) (bool, int, error) {
	if ext.ExternalID <= 0 {
		return false, 0, errors.Wrap(ErrInvalidInput, "external fixture id is required")
	}

	homeID, err := s.teams.ResolveTeam(ctx, ext.HomeTeamExternalID, ext.HomeTeamName)
	if err != nil {
		return false, 0, errors.Wrap(err, "resolve home team")
	}
	awayID, err := s.teams.ResolveTeam(ctx, ext.AwayTeamExternalID, ext.AwayTeamName)
	if err != nil {
		return false, 0, errors.Wrap(err, "resolve away team")
	}

	status := fixture.NormalizeStatus(ext.Status)
	item := fixture.Fixture{
		ExternalFixtureID: ext.ExternalID,
		CompetitionID:     competitionID,
		HomeTeamID:        homeID,
		AwayTeamID:        awayID,
		KickoffAt:         ext.KickoffAt,
		Round:             fixture.Round{ID: ext.Round.ExternalID, Name: ext.Round.Name},
		Status:            status,
		SyncSource:        "sportmonks",
		LastSyncedAt:      s.now(),
		SyncStatus:        fixture.SyncStatusSynced,
	}
	// Scores only exist once a match has started; anything earlier is a
	// provider placeholder and must not be stored.
	if fixture.HasStarted(status) {
		item.HomeScore = ext.HomeScore
		item.AwayScore = ext.AwayScore
	}

	existing, found, err := s.fixtures.GetByExternalID(ctx, ext.ExternalID)
	if err != nil {
		return false, 0, errors.Wrap(err, "get fixture by external id")
	}

	created := !found
	if found {
		item.ID = existing.ID
		item.TVBlackout = existing.TVBlackout
		if !opts.DryRun {
			if err := s.fixtures.Update(ctx, item); err != nil {
				return false, 0, errors.Wrap(err, "update fixture")
			}
		}
	} else if opts.DryRun {
		// Nothing is persisted, but downstream classification still runs
		// so the intended broadcast writes get logged and counted.
		item.ID = dryRunFixtureID
	} else {
		if err := s.fixtures.Create(ctx, item); err != nil {
			return false, 0, errors.Wrap(err, "create fixture")
		}
		stored, ok, err := s.fixtures.GetByExternalID(ctx, ext.ExternalID)
		if err != nil || !ok {
			return false, 0, errors.Wrap(err, "reload created fixture")
		}
		item.ID = stored.ID
	}

	if !opts.TVSyncEnabled || !ext.HasTVStations || item.ID == "" {
		return created, 0, nil
	}
	stored, err := s.broadcasts.SyncBroadcasts(ctx, item.ID, competitionID, ext.TVStations, opts.DryRun)
	if err != nil {
		return created, 0, errors.Wrap(err, "sync broadcasts")
	}
	return created, stored, nil
}

func (s *SyncService) inDateWindow(kickoff time.Time, opts SyncOptions) bool {
	if !opts.DateFrom.IsZero() && kickoff.Before(opts.DateFrom) {
		return false
	}
	if !opts.DateTo.IsZero() && kickoff.After(opts.DateTo) {
		return false
	}
	return true
}

func (s *SyncService) pause(ctx context.Context, opts SyncOptions) error {
	delay := opts.RequestDelay
	if delay <= 0 {
		delay = defaultRequestDelay
	}
	return s.sleep(ctx, delay)
}

// archivePayloads stores raw provider responses best-effort; archival
// failures never block the sync.
func (s *SyncService) archivePayloads(ctx context.Context, payloads []rawdata.Payload, dryRun bool) {
	if dryRun || len(payloads) == 0 || s.rawData == nil {
		return
	}
	if err := s.rawData.UpsertMany(ctx, payloads); err != nil {
		s.logger.WarnContext(ctx, "raw payload archive failed", "error", err, "count", len(payloads))
	}
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
