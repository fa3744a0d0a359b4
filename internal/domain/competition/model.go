package competition

import "fmt"

// Competition is a locally owned football competition (league or cup).
// Rows are seeded by operators and rarely change.
type Competition struct {
	ID       string
	Name     string
	Slug     string
	IsActive bool
}

func (c Competition) Validate() error {
	if c.ID == "" {
		return fmt.Errorf("competition id is required")
	}
	if c.Name == "" {
		return fmt.Errorf("competition name is required")
	}
	return nil
}

// LeagueMapping links a local competition to the external provider's league.
// At most one active mapping may exist per competition.
type LeagueMapping struct {
	CompetitionID      string
	ExternalLeagueID   int64
	ExternalLeagueName string
	IsActive           bool
}
