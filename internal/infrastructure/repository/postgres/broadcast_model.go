package postgres

import (
	"database/sql"
	"time"
)

type broadcastTableModel struct {
	ID                int64          `db:"id"`
	FixturePublicID   string         `db:"fixture_public_id"`
	ChannelName       string         `db:"channel_name"`
	ProviderID        sql.NullString `db:"provider_id"`
	CountryID         int64          `db:"country_id"`
	ExternalStationID int64          `db:"external_station_id"`
	SyncSource        sql.NullString `db:"sync_source"`
	LastSyncedAt      sql.NullTime   `db:"last_synced_at"`
	CreatedAt         time.Time      `db:"created_at"`
	UpdatedAt         time.Time      `db:"updated_at"`
	DeletedAt         *time.Time     `db:"deleted_at"`
}

type broadcastInsertModel struct {
	FixturePublicID   string     `db:"fixture_public_id"`
	ChannelName       string     `db:"channel_name"`
	ProviderID        *string    `db:"provider_id"`
	CountryID         int64      `db:"country_id"`
	ExternalStationID int64      `db:"external_station_id"`
	SyncSource        *string    `db:"sync_source"`
	LastSyncedAt      *time.Time `db:"last_synced_at"`
}
