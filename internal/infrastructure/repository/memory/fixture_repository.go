package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/matchtv/tvsync/internal/domain/fixture"
)

type FixtureRepository struct {
	mu     sync.RWMutex
	items  []fixture.Fixture
	nextID int
}

func NewFixtureRepository(items []fixture.Fixture) *FixtureRepository {
	out := make([]fixture.Fixture, len(items))
	copy(out, items)
	return &FixtureRepository{items: out, nextID: len(items) + 1}
}

func (r *FixtureRepository) GetByID(_ context.Context, fixtureID string) (fixture.Fixture, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, item := range r.items {
		if item.ID == fixtureID {
			return item, true, nil
		}
	}
	return fixture.Fixture{}, false, nil
}

func (r *FixtureRepository) GetByExternalID(_ context.Context, externalFixtureID int64) (fixture.Fixture, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, item := range r.items {
		if item.ExternalFixtureID == externalFixtureID {
			return item, true, nil
		}
	}
	return fixture.Fixture{}, false, nil
}

func (r *FixtureRepository) Create(_ context.Context, item fixture.Fixture) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.items {
		if existing.ExternalFixtureID == item.ExternalFixtureID {
			return fmt.Errorf("fixture with external id %d already exists", item.ExternalFixtureID)
		}
	}
	if item.ID == "" {
		item.ID = fmt.Sprintf("fixture-%d", r.nextID)
		r.nextID++
	}
	r.items = append(r.items, item)
	return nil
}

func (r *FixtureRepository) Update(_ context.Context, item fixture.Fixture) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i := range r.items {
		if r.items[i].ID == item.ID {
			r.items[i] = item
			return nil
		}
	}
	return fmt.Errorf("fixture %s not found", item.ID)
}

// Count reports the number of stored fixtures. Test helper.
func (r *FixtureRepository) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.items)
}
