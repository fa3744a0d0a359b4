package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/matchtv/tvsync/internal/domain/broadcast"
	qb "github.com/matchtv/tvsync/internal/platform/querybuilder"
)

type BroadcastRepository struct {
	db *sqlx.DB
}

func NewBroadcastRepository(db *sqlx.DB) *BroadcastRepository {
	return &BroadcastRepository{db: db}
}

func (r *BroadcastRepository) ListByFixture(ctx context.Context, fixtureID string) ([]broadcast.Broadcast, error) {
	query, args, err := qb.Select("*").From("broadcasts").
		Where(
			qb.Eq("fixture_public_id", fixtureID),
			qb.IsNull("deleted_at"),
		).
		OrderBy("id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build select broadcasts query: %w", err)
	}

	var rows []broadcastTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("select broadcasts: %w", err)
	}

	out := make([]broadcast.Broadcast, 0, len(rows))
	for _, row := range rows {
		item := broadcast.Broadcast{
			ID:                row.ID,
			FixtureID:         row.FixturePublicID,
			ChannelName:       row.ChannelName,
			ProviderID:        broadcast.ProviderID(row.ProviderID.String),
			CountryID:         row.CountryID,
			ExternalStationID: row.ExternalStationID,
			SyncSource:        row.SyncSource.String,
		}
		if row.LastSyncedAt.Valid {
			item.LastSyncedAt = row.LastSyncedAt.Time
		}
		out = append(out, item)
	}
	return out, nil
}

func (r *BroadcastRepository) ListFixtureIDs(ctx context.Context) ([]string, error) {
	query, args, err := qb.Select("DISTINCT fixture_public_id").From("broadcasts").
		Where(qb.IsNull("deleted_at")).
		OrderBy("fixture_public_id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build select broadcast fixture ids query: %w", err)
	}

	var out []string
	if err := r.db.SelectContext(ctx, &out, query, args...); err != nil {
		return nil, fmt.Errorf("select broadcast fixture ids: %w", err)
	}
	return out, nil
}

// ReplaceByFixture swaps a fixture's broadcast set in one transaction. Old
// rows are tombstoned rather than deleted so past listings stay queryable.
func (r *BroadcastRepository) ReplaceByFixture(ctx context.Context, fixtureID string, items []broadcast.Broadcast) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx replace broadcasts: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	clearQuery, clearArgs, err := qb.Update("broadcasts").
		SetExpr("deleted_at", "NOW()").
		Where(
			qb.Eq("fixture_public_id", fixtureID),
			qb.IsNull("deleted_at"),
		).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build clear broadcasts query: %w", err)
	}
	if _, err := tx.ExecContext(ctx, clearQuery, clearArgs...); err != nil {
		return fmt.Errorf("clear broadcasts: %w", err)
	}

	for _, item := range items {
		insertModel := broadcastInsertModel{
			FixturePublicID:   fixtureID,
			ChannelName:       item.ChannelName,
			ProviderID:        nullableString(string(item.ProviderID)),
			CountryID:         item.CountryID,
			ExternalStationID: item.ExternalStationID,
			SyncSource:        nullableString(item.SyncSource),
			LastSyncedAt:      nullableTime(item.LastSyncedAt),
		}
		query, args, err := qb.InsertModel("broadcasts", insertModel, "")
		if err != nil {
			return fmt.Errorf("build insert broadcast query: %w", err)
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("insert broadcast station=%d: %w", item.ExternalStationID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit replace broadcasts tx: %w", err)
	}
	return nil
}

// PurgeTombstones removes rows tombstoned before the cutoff. Tombstones keep
// recent replacement history queryable but are not kept forever.
func (r *BroadcastRepository) PurgeTombstones(ctx context.Context, before time.Time) (int, error) {
	query, args, err := qb.DeleteFrom("broadcasts").
		Where(qb.Expr("deleted_at IS NOT NULL AND deleted_at < ?", before)).
		ToSQL()
	if err != nil {
		return 0, fmt.Errorf("build purge broadcasts query: %w", err)
	}

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("purge broadcasts: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("purge broadcasts rows affected: %w", err)
	}
	return int(affected), nil
}

type ExclusionRepository struct {
	db *sqlx.DB
}

func NewExclusionRepository(db *sqlx.DB) *ExclusionRepository {
	return &ExclusionRepository{db: db}
}

func (r *ExclusionRepository) ListActiveProviderIDs(ctx context.Context, competitionID string) ([]broadcast.ProviderID, error) {
	query, args, err := qb.Select("provider_id").From("competition_broadcast_exclusions").
		Where(
			qb.Eq("competition_public_id", competitionID),
			qb.Eq("is_active", true),
			qb.IsNull("deleted_at"),
		).
		OrderBy("id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build select exclusions query: %w", err)
	}

	var ids []string
	if err := r.db.SelectContext(ctx, &ids, query, args...); err != nil {
		return nil, fmt.Errorf("select exclusions: %w", err)
	}

	out := make([]broadcast.ProviderID, 0, len(ids))
	for _, value := range ids {
		out = append(out, broadcast.ProviderID(value))
	}
	return out, nil
}
