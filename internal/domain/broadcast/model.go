package broadcast

import (
	"fmt"
	"time"
)

// Broadcast is one raw station record attached to a fixture. Uniqueness is
// keyed on (fixture id, external station id): distinct feed variants of the
// same provider brand are legitimate and must all be retained.
type Broadcast struct {
	ID                int64
	FixtureID         string
	ChannelName       string
	ProviderID        ProviderID
	CountryID         int64
	ExternalStationID int64
	SyncSource        string
	LastSyncedAt      time.Time
}

// IsMapped reports whether the channel name matched a known provider brand.
// Unmapped rows stay persisted so a later keyword update can reclassify them
// without refetching from upstream.
func (b Broadcast) IsMapped() bool {
	return b.ProviderID != ""
}

func (b Broadcast) Validate() error {
	if b.FixtureID == "" {
		return fmt.Errorf("broadcast fixture id is required")
	}
	if b.ExternalStationID <= 0 {
		return fmt.Errorf("broadcast external station id is required")
	}
	if b.ChannelName == "" {
		return fmt.Errorf("broadcast channel name is required")
	}
	return nil
}

// Station is one raw per-country TV station entry as delivered by the
// provider, before any filtering or classification.
type Station struct {
	ExternalID int64
	CountryID  int64
	Name       string
	Type       string
}

// SelectionKind is the outcome of primary-broadcaster selection.
type SelectionKind string

const (
	SelectionProvider SelectionKind = "provider"
	SelectionTBD      SelectionKind = "tbd"
	SelectionBlackout SelectionKind = "blackout"
)

// Selection is the answer to "who is showing this match".
type Selection struct {
	Kind     SelectionKind
	Provider Provider
}
