package app

import (
	"fmt"
	"net/http"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/uptrace/opentelemetry-go-extra/otelsql"
	"github.com/uptrace/opentelemetry-go-extra/otelsqlx"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	semconv "go.opentelemetry.io/otel/semconv/v1.4.0"

	"github.com/matchtv/tvsync/external/sportmonks"
	"github.com/matchtv/tvsync/internal/config"
	"github.com/matchtv/tvsync/internal/infrastructure/repository/postgres"
	"github.com/matchtv/tvsync/internal/platform/logging"
	"github.com/matchtv/tvsync/internal/platform/resilience"
	"github.com/matchtv/tvsync/internal/usecase"
)

// SyncApp bundles the wired pipeline services and the resources they own.
type SyncApp struct {
	Sync       *usecase.SyncService
	Broadcasts *usecase.BroadcastService
	DB         *sqlx.DB
}

func (a *SyncApp) Close() error {
	if a.DB == nil {
		return nil
	}
	return a.DB.Close()
}

// NewSyncApp opens the database and wires repositories, the provider client
// and the pipeline services.
func NewSyncApp(cfg config.Config, logger *logging.Logger) (*SyncApp, error) {
	if logger == nil {
		logger = logging.Default()
	}

	dbURL := normalizeDBURL(cfg.DBURL, cfg.DBDisablePreparedBinary)
	db, err := otelsqlx.Connect("postgres", dbURL,
		otelsql.WithAttributes(semconv.DBSystemPostgreSQL),
		otelsql.WithDBName(cfg.ServiceName),
	)
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}

	competitionRepo := postgres.NewCompetitionRepository(db)
	mappingRepo := postgres.NewLeagueMappingRepository(db)
	teamRepo := postgres.NewTeamRepository(db)
	fixtureRepo := postgres.NewFixtureRepository(db)
	broadcastRepo := postgres.NewBroadcastRepository(db)
	exclusionRepo := postgres.NewExclusionRepository(db)
	runLogRepo := postgres.NewSyncRunRepository(db)
	rawDataRepo := postgres.NewRawDataRepository(db)

	feed := sportmonks.NewClient(sportmonks.ClientConfig{
		HTTPClient: &http.Client{
			Timeout:   cfg.SportMonksTimeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		BaseURL:    cfg.SportMonksBaseURL,
		Token:      cfg.SportMonksToken,
		Timeout:    cfg.SportMonksTimeout,
		MaxRetries: cfg.SportMonksMaxRetries,
		Logger:     logger,
		CircuitBreaker: resilience.CircuitBreakerConfig{
			Enabled:          cfg.SportMonksCircuitEnabled,
			FailureThreshold: cfg.SportMonksCircuitFailureCount,
			OpenTimeout:      cfg.SportMonksCircuitOpenTimeout,
			HalfOpenMaxReq:   cfg.SportMonksCircuitHalfOpenMaxReq,
		},
	})

	broadcastSvc := usecase.NewBroadcastService(
		broadcastRepo,
		exclusionRepo,
		fixtureRepo,
		usecase.BroadcastConfig{
			HomeMarketCountryIDs: cfg.HomeMarketCountryIDs,
			ExclusionKeywords:    cfg.ExclusionKeywords,
		},
		logger,
	)

	syncSvc := usecase.NewSyncService(
		competitionRepo,
		usecase.NewCompetitionMapper(competitionRepo, mappingRepo, logger),
		usecase.NewTeamResolver(teamRepo, logger),
		fixtureRepo,
		broadcastSvc,
		runLogRepo,
		rawDataRepo,
		feed,
		logger,
	)

	return &SyncApp{
		Sync:       syncSvc,
		Broadcasts: broadcastSvc,
		DB:         db,
	}, nil
}
