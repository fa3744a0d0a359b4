package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/matchtv/tvsync/internal/domain/syncrun"
)

type SyncRunRepository struct {
	mu     sync.RWMutex
	items  []syncrun.RunLog
	nextID int
}

func NewSyncRunRepository() *SyncRunRepository {
	return &SyncRunRepository{nextID: 1}
}

func (r *SyncRunRepository) Create(_ context.Context, item syncrun.RunLog) (syncrun.RunLog, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if item.ID == "" {
		item.ID = fmt.Sprintf("run-%d", r.nextID)
		r.nextID++
	}
	r.items = append(r.items, item)
	return item, nil
}

func (r *SyncRunRepository) Finish(_ context.Context, item syncrun.RunLog) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i := range r.items {
		if r.items[i].ID == item.ID {
			r.items[i] = item
			return nil
		}
	}
	return fmt.Errorf("run log %s not found", item.ID)
}

// List returns all run logs in creation order. Test helper.
func (r *SyncRunRepository) List() []syncrun.RunLog {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]syncrun.RunLog, len(r.items))
	copy(out, r.items)
	return out
}
