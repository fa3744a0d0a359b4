package memory

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/matchtv/tvsync/internal/domain/team"
)

type TeamRepository struct {
	mu     sync.RWMutex
	items  []team.Team
	nextID int
}

func NewTeamRepository(items []team.Team) *TeamRepository {
	out := make([]team.Team, len(items))
	copy(out, items)
	return &TeamRepository{items: out, nextID: len(items) + 1}
}

func (r *TeamRepository) GetByExternalID(_ context.Context, externalTeamID int64) (team.Team, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, item := range r.items {
		if item.ExternalTeamID == externalTeamID && externalTeamID > 0 {
			return item, true, nil
		}
	}
	return team.Team{}, false, nil
}

func (r *TeamRepository) GetByName(_ context.Context, name string) (team.Team, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, item := range r.items {
		if strings.EqualFold(item.Name, name) {
			return item, true, nil
		}
	}
	return team.Team{}, false, nil
}

func (r *TeamRepository) GetBySlug(_ context.Context, slug string) (team.Team, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, item := range r.items {
		if item.Slug == slug {
			return item, true, nil
		}
	}
	return team.Team{}, false, nil
}

func (r *TeamRepository) List(_ context.Context) ([]team.Team, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]team.Team, len(r.items))
	copy(out, r.items)
	return out, nil
}

func (r *TeamRepository) Create(_ context.Context, item team.Team) (team.Team, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if item.ID == "" {
		item.ID = fmt.Sprintf("team-%d", r.nextID)
		r.nextID++
	}
	r.items = append(r.items, item)
	return item, nil
}

func (r *TeamRepository) SetExternalID(_ context.Context, teamID string, externalTeamID int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i := range r.items {
		if r.items[i].ID == teamID {
			r.items[i].ExternalTeamID = externalTeamID
			return nil
		}
	}
	return fmt.Errorf("team %s not found", teamID)
}
