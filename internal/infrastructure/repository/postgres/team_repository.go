package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/matchtv/tvsync/internal/domain/team"
	"github.com/matchtv/tvsync/internal/platform/id"
	qb "github.com/matchtv/tvsync/internal/platform/querybuilder"
)

type TeamRepository struct {
	db *sqlx.DB
}

func NewTeamRepository(db *sqlx.DB) *TeamRepository {
	return &TeamRepository{db: db}
}

func (r *TeamRepository) GetByExternalID(ctx context.Context, externalTeamID int64) (team.Team, bool, error) {
	return r.getOne(ctx, qb.Eq("external_team_id", externalTeamID))
}

func (r *TeamRepository) GetByName(ctx context.Context, name string) (team.Team, bool, error) {
	return r.getOne(ctx, qb.Expr("LOWER(name) = LOWER(?)", name))
}

func (r *TeamRepository) GetBySlug(ctx context.Context, slug string) (team.Team, bool, error) {
	return r.getOne(ctx, qb.Eq("slug", slug))
}

func (r *TeamRepository) getOne(ctx context.Context, condition qb.Condition) (team.Team, bool, error) {
	query, args, err := qb.Select("*").From("teams").
		Where(condition, qb.IsNull("deleted_at")).
		OrderBy("id").
		Limit(1).
		ToSQL()
	if err != nil {
		return team.Team{}, false, fmt.Errorf("build select team query: %w", err)
	}

	var row teamTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return team.Team{}, false, nil
		}
		return team.Team{}, false, fmt.Errorf("select team: %w", err)
	}
	return mapTeamRow(row), true, nil
}

func (r *TeamRepository) List(ctx context.Context) ([]team.Team, error) {
	query, args, err := qb.Select("*").From("teams").
		Where(qb.IsNull("deleted_at")).
		OrderBy("id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build select teams query: %w", err)
	}

	var rows []teamTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("select teams: %w", err)
	}

	out := make([]team.Team, 0, len(rows))
	for _, row := range rows {
		out = append(out, mapTeamRow(row))
	}
	return out, nil
}

func (r *TeamRepository) Create(ctx context.Context, item team.Team) (team.Team, error) {
	if item.ID == "" {
		publicID, err := id.New("team")
		if err != nil {
			return team.Team{}, fmt.Errorf("generate team id: %w", err)
		}
		item.ID = publicID
	}

	insertModel := teamInsertModel{
		PublicID:       item.ID,
		Name:           item.Name,
		Slug:           item.Slug,
		ExternalTeamID: nullableInt64(item.ExternalTeamID),
	}
	query, args, err := qb.InsertModel("teams", insertModel, "")
	if err != nil {
		return team.Team{}, fmt.Errorf("build insert team query: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return team.Team{}, fmt.Errorf("insert team name=%s: %w", item.Name, err)
	}
	return item, nil
}

func (r *TeamRepository) SetExternalID(ctx context.Context, teamID string, externalTeamID int64) error {
	query, args, err := qb.Update("teams").
		Set("external_team_id", externalTeamID).
		SetExpr("updated_at", "NOW()").
		Where(
			qb.Eq("public_id", teamID),
			qb.IsNull("deleted_at"),
		).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build update team external id query: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("update team external id team=%s: %w", teamID, err)
	}
	return nil
}

func mapTeamRow(row teamTableModel) team.Team {
	return team.Team{
		ID:             row.PublicID,
		Name:           row.Name,
		Slug:           row.Slug,
		ExternalTeamID: nullInt64ToInt64(row.ExternalTeamID),
	}
}
