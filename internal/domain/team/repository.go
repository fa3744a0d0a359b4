package team

import "context"

// Repository describes team persistence needs from the resolver.
type Repository interface {
	GetByExternalID(ctx context.Context, externalTeamID int64) (Team, bool, error)
	GetByName(ctx context.Context, name string) (Team, bool, error)
	GetBySlug(ctx context.Context, slug string) (Team, bool, error)
	List(ctx context.Context) ([]Team, error)
	Create(ctx context.Context, item Team) (Team, error)
	SetExternalID(ctx context.Context, teamID string, externalTeamID int64) error
}
