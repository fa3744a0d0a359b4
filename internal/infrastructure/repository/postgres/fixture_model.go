package postgres

import (
	"database/sql"
	"time"
)

type fixtureTableModel struct {
	ID                  int64          `db:"id"`
	PublicID            string         `db:"public_id"`
	ExternalFixtureID   int64          `db:"external_fixture_id"`
	CompetitionPublicID string         `db:"competition_public_id"`
	HomeTeamPublicID    string         `db:"home_team_public_id"`
	AwayTeamPublicID    string         `db:"away_team_public_id"`
	KickoffAt           time.Time      `db:"kickoff_at"`
	Round               []byte         `db:"round"`
	Status              string         `db:"status"`
	HomeScore           sql.NullInt64  `db:"home_score"`
	AwayScore           sql.NullInt64  `db:"away_score"`
	TVBlackout          bool           `db:"tv_blackout"`
	SyncSource          sql.NullString `db:"sync_source"`
	LastSyncedAt        sql.NullTime   `db:"last_synced_at"`
	SyncStatus          sql.NullString `db:"sync_status"`
	CreatedAt           time.Time      `db:"created_at"`
	UpdatedAt           time.Time      `db:"updated_at"`
	DeletedAt           *time.Time     `db:"deleted_at"`
}

type fixtureInsertModel struct {
	PublicID            string     `db:"public_id"`
	ExternalFixtureID   int64      `db:"external_fixture_id"`
	CompetitionPublicID string     `db:"competition_public_id"`
	HomeTeamPublicID    string     `db:"home_team_public_id"`
	AwayTeamPublicID    string     `db:"away_team_public_id"`
	KickoffAt           time.Time  `db:"kickoff_at"`
	Round               []byte     `db:"round"`
	Status              string     `db:"status"`
	HomeScore           *int64     `db:"home_score"`
	AwayScore           *int64     `db:"away_score"`
	TVBlackout          bool       `db:"tv_blackout"`
	SyncSource          *string    `db:"sync_source"`
	LastSyncedAt        *time.Time `db:"last_synced_at"`
	SyncStatus          *string    `db:"sync_status"`
}
