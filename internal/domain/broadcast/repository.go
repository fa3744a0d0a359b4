package broadcast

import (
	"context"
	"time"
)

// Repository persists broadcast rows. ListByFixture returns rows in
// insertion order; selection tie-breaks depend on it.
type Repository interface {
	ListByFixture(ctx context.Context, fixtureID string) ([]Broadcast, error)
	ListFixtureIDs(ctx context.Context) ([]string, error)
	ReplaceByFixture(ctx context.Context, fixtureID string, items []Broadcast) error
	// PurgeTombstones hard-deletes rows replaced before the cutoff and
	// reports how many were removed.
	PurgeTombstones(ctx context.Context, before time.Time) (int, error)
}

// ExclusionRepository reports providers holding no broadcast rights for a
// competition in the current period. Rights change season to season, so the
// exclusion set is data, not code.
type ExclusionRepository interface {
	ListActiveProviderIDs(ctx context.Context, competitionID string) ([]ProviderID, error)
}
