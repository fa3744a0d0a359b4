package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/matchtv/tvsync/internal/domain/syncrun"
	"github.com/matchtv/tvsync/internal/platform/id"
	qb "github.com/matchtv/tvsync/internal/platform/querybuilder"
)

type SyncRunRepository struct {
	db *sqlx.DB
}

func NewSyncRunRepository(db *sqlx.DB) *SyncRunRepository {
	return &SyncRunRepository{db: db}
}

func (r *SyncRunRepository) Create(ctx context.Context, item syncrun.RunLog) (syncrun.RunLog, error) {
	if item.ID == "" {
		publicID, err := id.New("run")
		if err != nil {
			return syncrun.RunLog{}, fmt.Errorf("generate run log id: %w", err)
		}
		item.ID = publicID
	}

	insertModel := syncRunInsertModel{
		PublicID:            item.ID,
		CompetitionPublicID: nullableString(item.CompetitionID),
		StartedAt:           item.StartedAt,
		Status:              string(item.Status),
	}
	query, args, err := qb.InsertModel("sync_run_logs", insertModel, "")
	if err != nil {
		return syncrun.RunLog{}, fmt.Errorf("build insert run log query: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return syncrun.RunLog{}, fmt.Errorf("insert run log: %w", err)
	}
	return item, nil
}

func (r *SyncRunRepository) Finish(ctx context.Context, item syncrun.RunLog) error {
	query, args, err := qb.Update("sync_run_logs").
		Set("finished_at", item.FinishedAt).
		Set("status", string(item.Status)).
		Set("processed", item.Processed).
		Set("created", item.Created).
		Set("updated", item.Updated).
		Set("errors", item.Errors).
		Set("api_calls", item.APICalls).
		Where(qb.Eq("public_id", item.ID)).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build finish run log query: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("finish run log id=%s: %w", item.ID, err)
	}
	return nil
}

type syncRunInsertModel struct {
	PublicID            string    `db:"public_id"`
	CompetitionPublicID *string   `db:"competition_public_id"`
	StartedAt           time.Time `db:"started_at"`
	Status              string    `db:"status"`
}
