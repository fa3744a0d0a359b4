package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/matchtv/tvsync/internal/domain/competition"
	qb "github.com/matchtv/tvsync/internal/platform/querybuilder"
)

type CompetitionRepository struct {
	db *sqlx.DB
}

func NewCompetitionRepository(db *sqlx.DB) *CompetitionRepository {
	return &CompetitionRepository{db: db}
}

func (r *CompetitionRepository) ListActive(ctx context.Context) ([]competition.Competition, error) {
	query, args, err := qb.Select("*").From("competitions").
		Where(
			qb.Eq("is_active", true),
			qb.IsNull("deleted_at"),
		).
		OrderBy("id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build select active competitions query: %w", err)
	}

	var rows []competitionTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("select active competitions: %w", err)
	}

	out := make([]competition.Competition, 0, len(rows))
	for _, row := range rows {
		out = append(out, mapCompetitionRow(row))
	}
	return out, nil
}

func (r *CompetitionRepository) GetByID(ctx context.Context, competitionID string) (competition.Competition, bool, error) {
	query, args, err := qb.Select("*").From("competitions").
		Where(
			qb.Eq("public_id", competitionID),
			qb.IsNull("deleted_at"),
		).
		Limit(1).
		ToSQL()
	if err != nil {
		return competition.Competition{}, false, fmt.Errorf("build select competition query: %w", err)
	}

	var row competitionTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return competition.Competition{}, false, nil
		}
		return competition.Competition{}, false, fmt.Errorf("select competition: %w", err)
	}
	return mapCompetitionRow(row), true, nil
}

func mapCompetitionRow(row competitionTableModel) competition.Competition {
	return competition.Competition{
		ID:       row.PublicID,
		Name:     row.Name,
		Slug:     row.Slug,
		IsActive: row.IsActive,
	}
}

type LeagueMappingRepository struct {
	db *sqlx.DB
}

func NewLeagueMappingRepository(db *sqlx.DB) *LeagueMappingRepository {
	return &LeagueMappingRepository{db: db}
}

func (r *LeagueMappingRepository) GetActiveByCompetition(ctx context.Context, competitionID string) (competition.LeagueMapping, bool, error) {
	query, args, err := qb.Select("*").From("external_competition_mappings").
		Where(
			qb.Eq("competition_public_id", competitionID),
			qb.Eq("is_active", true),
			qb.IsNull("deleted_at"),
		).
		Limit(1).
		ToSQL()
	if err != nil {
		return competition.LeagueMapping{}, false, fmt.Errorf("build select league mapping query: %w", err)
	}

	var row leagueMappingTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return competition.LeagueMapping{}, false, nil
		}
		return competition.LeagueMapping{}, false, fmt.Errorf("select league mapping: %w", err)
	}
	return competition.LeagueMapping{
		CompetitionID:      row.CompetitionPublicID,
		ExternalLeagueID:   row.ExternalLeagueID,
		ExternalLeagueName: row.ExternalLeagueName,
		IsActive:           row.IsActive,
	}, true, nil
}
