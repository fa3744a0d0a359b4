package usecase

import (
	"context"
	"strings"

	"github.com/cockroachdb/errors"

	"github.com/matchtv/tvsync/internal/domain/team"
	"github.com/matchtv/tvsync/internal/platform/logging"
)

// minFuzzyNameLength guards the substring pass against short names like
// "City" matching half the table.
const minFuzzyNameLength = 4

// TeamResolver maps an external team reference to a local team ID, creating
// the team when nothing matches. Name and slug matches backfill the external
// ID so later runs hit the cheap path.
type TeamResolver struct {
	teams  team.Repository
	logger *logging.Logger
}

func NewTeamResolver(teams team.Repository, logger *logging.Logger) *TeamResolver {
	if logger == nil {
		logger = logging.Default()
	}
	return &TeamResolver{teams: teams, logger: logger}
}

// ResolveTeam returns the local team ID for the given external reference.
// Resolution order: external ID, exact name, substring match, slug, create.
func (r *TeamResolver) ResolveTeam(ctx context.Context, externalID int64, name string) (string, error) {
	ctx, span := startUsecaseSpan(ctx, "TeamResolver.ResolveTeam")
	defer span.End()

	name = strings.TrimSpace(name)
	if externalID <= 0 || name == "" {
		return "", errors.Wrap(ErrInvalidInput, "external team id and name are required")
	}

	existing, found, err := r.teams.GetByExternalID(ctx, externalID)
	if err != nil {
		return "", errors.Wrap(err, "get team by external id")
	}
	if found {
		return existing.ID, nil
	}

	existing, found, err = r.teams.GetByName(ctx, name)
	if err != nil {
		return "", errors.Wrap(err, "get team by name")
	}
	if found {
		if err := r.backfillExternalID(ctx, existing, externalID); err != nil {
			return "", err
		}
		return existing.ID, nil
	}

	matched, found, err := r.fuzzyMatch(ctx, name)
	if err != nil {
		return "", err
	}
	if found {
		r.logger.WarnContext(ctx, "team resolved by fuzzy name match",
			"externalTeamID", externalID,
			"externalName", name,
			"matchedTeamID", matched.ID,
			"matchedName", matched.Name,
		)
		if err := r.backfillExternalID(ctx, matched, externalID); err != nil {
			return "", err
		}
		return matched.ID, nil
	}

	slug := team.Slugify(name)
	existing, found, err = r.teams.GetBySlug(ctx, slug)
	if err != nil {
		return "", errors.Wrap(err, "get team by slug")
	}
	if found {
		if err := r.backfillExternalID(ctx, existing, externalID); err != nil {
			return "", err
		}
		return existing.ID, nil
	}

	created, err := r.teams.Create(ctx, team.Team{
		Name:           name,
		Slug:           slug,
		ExternalTeamID: externalID,
	})
	if err != nil {
		return "", errors.Wrap(err, "create team")
	}
	r.logger.InfoContext(ctx, "created team from external feed",
		"teamID", created.ID,
		"externalTeamID", externalID,
		"name", name,
	)
	return created.ID, nil
}

// fuzzyMatch looks for a stored team whose name contains the external name or
// vice versa, case-insensitively. First match in listing order wins.
func (r *TeamResolver) fuzzyMatch(ctx context.Context, name string) (team.Team, bool, error) {
	if len(name) < minFuzzyNameLength {
		return team.Team{}, false, nil
	}
	all, err := r.teams.List(ctx)
	if err != nil {
		return team.Team{}, false, errors.Wrap(err, "list teams")
	}
	needle := strings.ToLower(name)
	for _, t := range all {
		stored := strings.ToLower(t.Name)
		if len(stored) < minFuzzyNameLength {
			continue
		}
		if strings.Contains(stored, needle) || strings.Contains(needle, stored) {
			return t, true, nil
		}
	}
	return team.Team{}, false, nil
}

func (r *TeamResolver) backfillExternalID(ctx context.Context, t team.Team, externalID int64) error {
	if t.ExternalTeamID == externalID {
		return nil
	}
	if err := r.teams.SetExternalID(ctx, t.ID, externalID); err != nil {
		return errors.Wrap(err, "backfill external team id")
	}
	return nil
}
