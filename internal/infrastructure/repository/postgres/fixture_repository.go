package postgres

import (
	"context"
	"fmt"
	"time"

	sonic "github.com/bytedance/sonic"
	"github.com/jmoiron/sqlx"
	"github.com/matchtv/tvsync/internal/domain/fixture"
	"github.com/matchtv/tvsync/internal/platform/id"
	qb "github.com/matchtv/tvsync/internal/platform/querybuilder"
)

type FixtureRepository struct {
	db *sqlx.DB
}

func NewFixtureRepository(db *sqlx.DB) *FixtureRepository {
	return &FixtureRepository{db: db}
}

func (r *FixtureRepository) GetByID(ctx context.Context, fixtureID string) (fixture.Fixture, bool, error) {
	return r.getOne(ctx, qb.Eq("public_id", fixtureID))
}

func (r *FixtureRepository) GetByExternalID(ctx context.Context, externalFixtureID int64) (fixture.Fixture, bool, error) {
	return r.getOne(ctx, qb.Eq("external_fixture_id", externalFixtureID))
}

func (r *FixtureRepository) getOne(ctx context.Context, condition qb.Condition) (fixture.Fixture, bool, error) {
	query, args, err := qb.Select("*").From("fixtures").
		Where(condition, qb.IsNull("deleted_at")).
		Limit(1).
		ToSQL()
	if err != nil {
		return fixture.Fixture{}, false, fmt.Errorf("build select fixture query: %w", err)
	}

	var row fixtureTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return fixture.Fixture{}, false, nil
		}
		return fixture.Fixture{}, false, fmt.Errorf("select fixture: %w", err)
	}
	item, err := mapFixtureRow(row)
	if err != nil {
		return fixture.Fixture{}, false, err
	}
	return item, true, nil
}

func (r *FixtureRepository) Create(ctx context.Context, item fixture.Fixture) error {
	if item.ID == "" {
		publicID, err := id.New("fix")
		if err != nil {
			return fmt.Errorf("generate fixture id: %w", err)
		}
		item.ID = publicID
	}

	insertModel, err := buildFixtureInsertModel(item)
	if err != nil {
		return err
	}
	query, args, err := qb.InsertModel("fixtures", insertModel, "")
	if err != nil {
		return fmt.Errorf("build insert fixture query: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("insert fixture external_id=%d: %w", item.ExternalFixtureID, err)
	}
	return nil
}

func (r *FixtureRepository) Update(ctx context.Context, item fixture.Fixture) error {
	roundJSON, err := sonic.Marshal(item.Round)
	if err != nil {
		return fmt.Errorf("encode fixture round: %w", err)
	}

	builder := qb.Update("fixtures").
		Set("competition_public_id", item.CompetitionID).
		Set("home_team_public_id", item.HomeTeamID).
		Set("away_team_public_id", item.AwayTeamID).
		Set("kickoff_at", item.KickoffAt).
		Set("round", roundJSON).
		Set("status", item.Status).
		Set("home_score", intPtrToInt64Ptr(item.HomeScore)).
		Set("away_score", intPtrToInt64Ptr(item.AwayScore)).
		Set("tv_blackout", item.TVBlackout).
		Set("sync_source", nullableString(item.SyncSource)).
		Set("last_synced_at", nullableTime(item.LastSyncedAt)).
		Set("sync_status", nullableString(item.SyncStatus)).
		SetExpr("updated_at", "NOW()").
		Where(
			qb.Eq("public_id", item.ID),
			qb.IsNull("deleted_at"),
		)
	query, args, err := builder.ToSQL()
	if err != nil {
		return fmt.Errorf("build update fixture query: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("update fixture id=%s: %w", item.ID, err)
	}
	return nil
}

func buildFixtureInsertModel(item fixture.Fixture) (fixtureInsertModel, error) {
	roundJSON, err := sonic.Marshal(item.Round)
	if err != nil {
		return fixtureInsertModel{}, fmt.Errorf("encode fixture round: %w", err)
	}
	return fixtureInsertModel{
		PublicID:            item.ID,
		ExternalFixtureID:   item.ExternalFixtureID,
		CompetitionPublicID: item.CompetitionID,
		HomeTeamPublicID:    item.HomeTeamID,
		AwayTeamPublicID:    item.AwayTeamID,
		KickoffAt:           item.KickoffAt,
		Round:               roundJSON,
		Status:              item.Status,
		HomeScore:           intPtrToInt64Ptr(item.HomeScore),
		AwayScore:           intPtrToInt64Ptr(item.AwayScore),
		TVBlackout:          item.TVBlackout,
		SyncSource:          nullableString(item.SyncSource),
		LastSyncedAt:        nullableTime(item.LastSyncedAt),
		SyncStatus:          nullableString(item.SyncStatus),
	}, nil
}

func mapFixtureRow(row fixtureTableModel) (fixture.Fixture, error) {
	var round fixture.Round
	if len(row.Round) > 0 {
		if err := sonic.Unmarshal(row.Round, &round); err != nil {
			return fixture.Fixture{}, fmt.Errorf("decode fixture round fixture=%s: %w", row.PublicID, err)
		}
	}

	item := fixture.Fixture{
		ID:                row.PublicID,
		ExternalFixtureID: row.ExternalFixtureID,
		CompetitionID:     row.CompetitionPublicID,
		HomeTeamID:        row.HomeTeamPublicID,
		AwayTeamID:        row.AwayTeamPublicID,
		KickoffAt:         row.KickoffAt,
		Round:             round,
		Status:            row.Status,
		TVBlackout:        row.TVBlackout,
		SyncSource:        row.SyncSource.String,
		SyncStatus:        row.SyncStatus.String,
	}
	if row.HomeScore.Valid {
		v := int(row.HomeScore.Int64)
		item.HomeScore = &v
	}
	if row.AwayScore.Valid {
		v := int(row.AwayScore.Int64)
		item.AwayScore = &v
	}
	if row.LastSyncedAt.Valid {
		item.LastSyncedAt = row.LastSyncedAt.Time
	}
	return item, nil
}

func intPtrToInt64Ptr(value *int) *int64 {
	if value == nil {
		return nil
	}
	v := int64(*value)
	return &v
}

func nullableTime(value time.Time) *time.Time {
	if value.IsZero() {
		return nil
	}
	return &value
}
