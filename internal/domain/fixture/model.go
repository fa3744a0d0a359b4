package fixture

import (
	"strings"
	"time"
)

const (
	StatusScheduled = "SCHEDULED"
	StatusLive      = "LIVE"
	StatusFinished  = "FINISHED"
	StatusCancelled = "CANCELLED"
	StatusPostponed = "POSTPONED"
)

const (
	SyncStatusSynced = "synced"
)

// Round is the provider's grouping label, stored verbatim. Deriving a
// matchweek number locally breaks when rounds are renumbered upstream.
type Round struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

func (r Round) IsZero() bool {
	return r.ID == 0 && strings.TrimSpace(r.Name) == ""
}

// Fixture represents one scheduled match. Exactly one row exists per
// external fixture id; resync updates mutable fields in place.
type Fixture struct {
	ID                string
	ExternalFixtureID int64
	CompetitionID     string
	HomeTeamID        string
	AwayTeamID        string
	KickoffAt         time.Time
	Round             Round
	Status            string
	HomeScore         *int
	AwayScore         *int
	TVBlackout        bool
	SyncSource        string
	LastSyncedAt      time.Time
	SyncStatus        string
}

func NormalizeStatus(value string) string {
	status := strings.ToUpper(strings.TrimSpace(value))
	if status == "" {
		return StatusScheduled
	}
	return status
}

func IsLiveStatus(status string) bool {
	switch NormalizeStatus(status) {
	case StatusLive, "IN_PLAY", "HT", "1H", "2H", "ET":
		return true
	default:
		return false
	}
}

func IsFinishedStatus(status string) bool {
	switch NormalizeStatus(status) {
	case StatusFinished, "FT", "AET", "PEN":
		return true
	default:
		return false
	}
}

// HasStarted reports whether score fields may be populated for this status.
// Placeholder zero-scores for matches that have not kicked off must never
// reach the store.
func HasStarted(status string) bool {
	return IsLiveStatus(status) || IsFinishedStatus(status)
}
