package postgres

import "time"

type competitionTableModel struct {
	ID        int64      `db:"id"`
	PublicID  string     `db:"public_id"`
	Name      string     `db:"name"`
	Slug      string     `db:"slug"`
	IsActive  bool       `db:"is_active"`
	CreatedAt time.Time  `db:"created_at"`
	UpdatedAt time.Time  `db:"updated_at"`
	DeletedAt *time.Time `db:"deleted_at"`
}

type leagueMappingTableModel struct {
	ID                  int64      `db:"id"`
	CompetitionPublicID string     `db:"competition_public_id"`
	ExternalLeagueID    int64      `db:"external_league_id"`
	ExternalLeagueName  string     `db:"external_league_name"`
	IsActive            bool       `db:"is_active"`
	CreatedAt           time.Time  `db:"created_at"`
	UpdatedAt           time.Time  `db:"updated_at"`
	DeletedAt           *time.Time `db:"deleted_at"`
}
