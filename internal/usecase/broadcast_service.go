package usecase

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/panjf2000/ants/v2"

	"github.com/matchtv/tvsync/internal/domain/broadcast"
	"github.com/matchtv/tvsync/internal/domain/fixture"
	"github.com/matchtv/tvsync/internal/platform/logging"
)

const defaultReclassifyWorkers = 8

// BroadcastConfig carries the market filter and brand classification tables.
// Zero fields fall back to the built-in defaults.
type BroadcastConfig struct {
	// HomeMarketCountryIDs are the provider country ids accepted by the
	// market filter. The provider has shipped more than one id for the same
	// home market over time, so this is a set.
	HomeMarketCountryIDs []int64
	// ExclusionKeywords drops stations whose name contains any of these
	// tokens, case-insensitively. Catches highlight shows and radio feeds.
	ExclusionKeywords []string
	KeywordProviders  map[string]broadcast.ProviderID
	Providers         []broadcast.Provider
}

func (c BroadcastConfig) normalize() BroadcastConfig {
	if len(c.HomeMarketCountryIDs) == 0 {
		c.HomeMarketCountryIDs = []int64{462, 556} // GB ids seen in the feed
	}
	if len(c.ExclusionKeywords) == 0 {
		c.ExclusionKeywords = []string{"highlights", "radio", "news"}
	}
	if len(c.KeywordProviders) == 0 {
		c.KeywordProviders = broadcast.DefaultKeywordProviders()
	}
	if len(c.Providers) == 0 {
		c.Providers = broadcast.DefaultProviders()
	}
	return c
}

// BroadcastService classifies raw provider TV stations into broadcast rows
// and answers "who is showing this match".
type BroadcastService struct {
	broadcasts broadcast.Repository
	exclusions broadcast.ExclusionRepository
	fixtures   fixture.Repository
	cfg        BroadcastConfig
	providers  map[broadcast.ProviderID]broadcast.Provider
	logger     *logging.Logger
	now        func() time.Time
}

func NewBroadcastService(
	broadcasts broadcast.Repository,
	exclusions broadcast.ExclusionRepository,
	fixtures fixture.Repository,
	cfg BroadcastConfig,
	logger *logging.Logger,
) *BroadcastService {
	if logger == nil {
		logger = logging.Default()
	}
	cfg = cfg.normalize()
	byID := make(map[broadcast.ProviderID]broadcast.Provider, len(cfg.Providers))
	for _, p := range cfg.Providers {
		byID[p.ID] = p
	}
	return &BroadcastService{
		broadcasts: broadcasts,
		exclusions: exclusions,
		fixtures:   fixtures,
		cfg:        cfg,
		providers:  byID,
		logger:     logger,
		now:        time.Now,
	}
}

// SyncBroadcasts replaces the stored broadcast rows for a fixture with the
// classified subset of the given stations. Returns the number of rows that
// would be (or were) stored.
func (s *BroadcastService) SyncBroadcasts(ctx context.Context, fixtureID, competitionID string, stations []broadcast.Station, dryRun bool) (int, error) {
	ctx, span := startUsecaseSpan(ctx, "BroadcastService.SyncBroadcasts")
	defer span.End()

	if fixtureID == "" {
		return 0, errors.Wrap(ErrInvalidInput, "fixture id is required")
	}

	excluded, err := s.exclusions.ListActiveProviderIDs(ctx, competitionID)
	if err != nil {
		return 0, errors.Wrap(err, "list competition exclusions")
	}

	items := classifyStations(stations, s.cfg, excluded)
	now := s.now()
	for i := range items {
		items[i].FixtureID = fixtureID
		items[i].SyncSource = "sportmonks"
		items[i].LastSyncedAt = now
	}

	if dryRun {
		s.logger.InfoContext(ctx, "dry run: skipping broadcast replacement",
			"fixtureID", fixtureID, "rows", len(items))
		return len(items), nil
	}
	if err := s.broadcasts.ReplaceByFixture(ctx, fixtureID, items); err != nil {
		return 0, errors.Wrap(err, "replace broadcasts")
	}
	return len(items), nil
}

// PurgeTombstones hard-deletes broadcast rows replaced longer ago than the
// retention window. A non-positive retention keeps everything.
func (s *BroadcastService) PurgeTombstones(ctx context.Context, retention time.Duration) (int, error) {
	ctx, span := startUsecaseSpan(ctx, "BroadcastService.PurgeTombstones")
	defer span.End()

	if retention <= 0 {
		return 0, nil
	}
	cutoff := s.now().Add(-retention)
	purged, err := s.broadcasts.PurgeTombstones(ctx, cutoff)
	if err != nil {
		return 0, errors.Wrap(err, "purge broadcast tombstones")
	}
	if purged > 0 {
		s.logger.InfoContext(ctx, "purged replaced broadcast rows",
			"rows", purged, "cutoff", cutoff)
	}
	return purged, nil
}

// SelectPrimaryBroadcaster decides the display answer for a fixture:
// blackout if the operator flagged one, the highest-priority mapped provider
// otherwise, TBD when nothing qualifies.
func (s *BroadcastService) SelectPrimaryBroadcaster(ctx context.Context, fixtureID string) (broadcast.Selection, error) {
	ctx, span := startUsecaseSpan(ctx, "BroadcastService.SelectPrimaryBroadcaster")
	defer span.End()

	if fixtureID == "" {
		return broadcast.Selection{}, errors.Wrap(ErrInvalidInput, "fixture id is required")
	}

	fx, found, err := s.fixtures.GetByID(ctx, fixtureID)
	if err != nil {
		return broadcast.Selection{}, errors.Wrap(err, "get fixture")
	}
	if !found {
		return broadcast.Selection{}, errors.Wrapf(ErrNotFound, "fixture %s", fixtureID)
	}
	if fx.TVBlackout {
		return broadcast.Selection{Kind: broadcast.SelectionBlackout}, nil
	}

	rows, err := s.broadcasts.ListByFixture(ctx, fixtureID)
	if err != nil {
		return broadcast.Selection{}, errors.Wrap(err, "list broadcasts")
	}
	return selectPrimary(rows, s.providers), nil
}

// ReclassifyAllInput controls the bulk reclassification pass.
type ReclassifyAllInput struct {
	Workers int
	DryRun  bool
}

// ReclassifyAllResult counts the outcome of a reclassification pass.
type ReclassifyAllResult struct {
	Fixtures int
	Updated  int
	Errors   int
}

// ReclassifyAll re-runs keyword mapping over every stored broadcast row.
// Useful after a keyword table change: no upstream refetch is needed because
// unmapped rows were retained with their original channel names.
func (s *BroadcastService) ReclassifyAll(ctx context.Context, in ReclassifyAllInput) (ReclassifyAllResult, error) {
	ctx, span := startUsecaseSpan(ctx, "BroadcastService.ReclassifyAll")
	defer span.End()

	fixtureIDs, err := s.broadcasts.ListFixtureIDs(ctx)
	if err != nil {
		return ReclassifyAllResult{}, errors.Wrap(err, "list fixture ids")
	}

	workers := in.Workers
	if workers <= 0 {
		workers = defaultReclassifyWorkers
	}
	pool, err := ants.NewPool(workers)
	if err != nil {
		return ReclassifyAllResult{}, errors.Wrap(err, "create worker pool")
	}
	defer pool.Release()

	var (
		mu     sync.Mutex
		wg     sync.WaitGroup
		result = ReclassifyAllResult{Fixtures: len(fixtureIDs)}
	)
	for _, fixtureID := range fixtureIDs {
		fixtureID := fixtureID
		wg.Add(1)
		submitErr := pool.Submit(func() {
			defer wg.Done()
			changed, err := s.reclassifyFixture(ctx, fixtureID, in.DryRun)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				result.Errors++
				s.logger.ErrorContext(ctx, "reclassify fixture failed", "error", err, "fixtureID", fixtureID)
				return
			}
			if changed {
				result.Updated++
			}
		})
		if submitErr != nil {
			wg.Done()
			mu.Lock()
			result.Errors++
			mu.Unlock()
		}
	}
	wg.Wait()
	return result, nil
}

func (s *BroadcastService) reclassifyFixture(ctx context.Context, fixtureID string, dryRun bool) (bool, error) {
	rows, err := s.broadcasts.ListByFixture(ctx, fixtureID)
	if err != nil {
		return false, errors.Wrap(err, "list broadcasts")
	}

	changed := false
	for i := range rows {
		mapped := broadcast.MatchKeyword(s.cfg.KeywordProviders, rows[i].ChannelName)
		if mapped != rows[i].ProviderID {
			rows[i].ProviderID = mapped
			changed = true
		}
	}
	if !changed || dryRun {
		return changed, nil
	}
	if err := s.broadcasts.ReplaceByFixture(ctx, fixtureID, rows); err != nil {
		return false, errors.Wrap(err, "replace broadcasts")
	}
	return true, nil
}

// classifyStations filters and maps raw stations: home-market countries only,
// then name-keyword exclusions, then competition rights exclusions, then
// keyword brand mapping. Unmapped survivors are kept with an empty provider.
func classifyStations(stations []broadcast.Station, cfg BroadcastConfig, excludedProviders []broadcast.ProviderID) []broadcast.Broadcast {
	homeMarket := make(map[int64]struct{}, len(cfg.HomeMarketCountryIDs))
	for _, id := range cfg.HomeMarketCountryIDs {
		homeMarket[id] = struct{}{}
	}
	excluded := make(map[broadcast.ProviderID]struct{}, len(excludedProviders))
	for _, id := range excludedProviders {
		excluded[id] = struct{}{}
	}

	out := make([]broadcast.Broadcast, 0, len(stations))
	for _, st := range stations {
		if _, ok := homeMarket[st.CountryID]; !ok {
			continue
		}
		if hasExcludedKeyword(st.Name, cfg.ExclusionKeywords) {
			continue
		}
		providerID := broadcast.MatchKeyword(cfg.KeywordProviders, st.Name)
		if providerID != "" {
			if _, ok := excluded[providerID]; ok {
				continue
			}
		}
		out = append(out, broadcast.Broadcast{
			ChannelName:       st.Name,
			ProviderID:        providerID,
			CountryID:         st.CountryID,
			ExternalStationID: st.ExternalID,
		})
	}
	return out
}

func hasExcludedKeyword(name string, keywords []string) bool {
	lower := strings.ToLower(name)
	for _, kw := range keywords {
		kw = strings.ToLower(strings.TrimSpace(kw))
		if kw != "" && strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

// selectPrimary picks the best-ranked mapped provider among the rows. Rows
// arrive in insertion order, so equal ranks resolve to the first stored row.
func selectPrimary(rows []broadcast.Broadcast, providers map[broadcast.ProviderID]broadcast.Provider) broadcast.Selection {
	var (
		best      broadcast.Provider
		bestFound bool
	)
	for _, row := range rows {
		if !row.IsMapped() {
			continue
		}
		p, ok := providers[row.ProviderID]
		if !ok {
			continue
		}
		if !bestFound || p.Rank < best.Rank {
			best = p
			bestFound = true
		}
	}
	if !bestFound {
		return broadcast.Selection{Kind: broadcast.SelectionTBD}
	}
	return broadcast.Selection{Kind: broadcast.SelectionProvider, Provider: best}
}
