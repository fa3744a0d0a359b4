package fixture

import "context"

// Repository exposes fixture persistence keyed by the external fixture id.
type Repository interface {
	GetByID(ctx context.Context, fixtureID string) (Fixture, bool, error)
	GetByExternalID(ctx context.Context, externalFixtureID int64) (Fixture, bool, error)
	Create(ctx context.Context, item Fixture) error
	Update(ctx context.Context, item Fixture) error
}
