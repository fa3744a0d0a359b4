package memory

import (
	"context"
	"sync"

	"github.com/matchtv/tvsync/internal/domain/competition"
)

type CompetitionRepository struct {
	mu    sync.RWMutex
	items []competition.Competition
}

func NewCompetitionRepository(items []competition.Competition) *CompetitionRepository {
	out := make([]competition.Competition, len(items))
	copy(out, items)
	return &CompetitionRepository{items: out}
}

func (r *CompetitionRepository) ListActive(_ context.Context) ([]competition.Competition, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]competition.Competition, 0, len(r.items))
	for _, item := range r.items {
		if item.IsActive {
			out = append(out, item)
		}
	}
	return out, nil
}

func (r *CompetitionRepository) GetByID(_ context.Context, competitionID string) (competition.Competition, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, item := range r.items {
		if item.ID == competitionID {
			return item, true, nil
		}
	}
	return competition.Competition{}, false, nil
}

type MappingRepository struct {
	mu    sync.RWMutex
	items []competition.LeagueMapping
}

func NewMappingRepository(items []competition.LeagueMapping) *MappingRepository {
	out := make([]competition.LeagueMapping, len(items))
	copy(out, items)
	return &MappingRepository{items: out}
}

func (r *MappingRepository) GetActiveByCompetition(_ context.Context, competitionID string) (competition.LeagueMapping, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, item := range r.items {
		if item.CompetitionID == competitionID && item.IsActive {
			return item, true, nil
		}
	}
	return competition.LeagueMapping{}, false, nil
}
