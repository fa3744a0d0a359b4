package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/matchtv/tvsync/internal/domain/broadcast"
)

type tombstonedBroadcast struct {
	row       broadcast.Broadcast
	deletedAt time.Time
}

type BroadcastRepository struct {
	mu         sync.RWMutex
	byFixture  map[string][]broadcast.Broadcast
	tombstones []tombstonedBroadcast
	nextID     int64
}

func NewBroadcastRepository() *BroadcastRepository {
	return &BroadcastRepository{byFixture: make(map[string][]broadcast.Broadcast), nextID: 1}
}

func (r *BroadcastRepository) ListByFixture(_ context.Context, fixtureID string) ([]broadcast.Broadcast, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rows := r.byFixture[fixtureID]
	out := make([]broadcast.Broadcast, len(rows))
	copy(out, rows)
	return out, nil
}

func (r *BroadcastRepository) ListFixtureIDs(_ context.Context) ([]string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]string, 0, len(r.byFixture))
	for fixtureID := range r.byFixture {
		out = append(out, fixtureID)
	}
	sort.Strings(out)
	return out, nil
}

func (r *BroadcastRepository) ReplaceByFixture(_ context.Context, fixtureID string, items []broadcast.Broadcast) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	deletedAt := time.Now()
	for _, old := range r.byFixture[fixtureID] {
		r.tombstones = append(r.tombstones, tombstonedBroadcast{row: old, deletedAt: deletedAt})
	}

	rows := make([]broadcast.Broadcast, len(items))
	copy(rows, items)
	for i := range rows {
		rows[i].ID = r.nextID
		r.nextID++
	}
	r.byFixture[fixtureID] = rows
	return nil
}

func (r *BroadcastRepository) PurgeTombstones(_ context.Context, before time.Time) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	kept := r.tombstones[:0]
	purged := 0
	for _, t := range r.tombstones {
		if t.deletedAt.Before(before) {
			purged++
			continue
		}
		kept = append(kept, t)
	}
	r.tombstones = kept
	return purged, nil
}

// TombstoneCount reports retained replaced rows. Test helper.
func (r *BroadcastRepository) TombstoneCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.tombstones)
}

type ExclusionRepository struct {
	mu            sync.RWMutex
	byCompetition map[string][]broadcast.ProviderID
}

func NewExclusionRepository(byCompetition map[string][]broadcast.ProviderID) *ExclusionRepository {
	out := make(map[string][]broadcast.ProviderID, len(byCompetition))
	for competitionID, ids := range byCompetition {
		out[competitionID] = append([]broadcast.ProviderID(nil), ids...)
	}
	return &ExclusionRepository{byCompetition: out}
}

func (r *ExclusionRepository) ListActiveProviderIDs(_ context.Context, competitionID string) ([]broadcast.ProviderID, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := r.byCompetition[competitionID]
	out := make([]broadcast.ProviderID, len(ids))
	copy(out, ids)
	return out, nil
}
