package repo

import (
	"context"
	"slices"
	"sync"

	"github.com/rogerio-castellano/inventory-changelog/internal/models"
)

type memoryState struct {
	items      []models.Item
	logs       []models.ChangeLog
	users      []models.User
	nextItemID int64
	nextLogID  int64
	nextUserID int64
}

func (s memoryState) clone() memoryState {
	c := s
	c.items = slices.Clone(s.items)
	c.logs = slices.Clone(s.logs)
	c.users = slices.Clone(s.users)
	return c
}

// InMemoryStore is an in-memory implementation of Store. All repositories
// share one state guarded by a single mutex.
type InMemoryStore struct {
	mu    sync.Mutex
	state memoryState
}

// NewInMemoryStore creates an empty store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{state: memoryState{nextItemID: 1, nextLogID: 1, nextUserID: 1}}
}

func (s *InMemoryStore) Items() ItemRepository           { return &InMemoryItemRepository{store: s} }
func (s *InMemoryStore) ChangeLogs() ChangeLogRepository { return &InMemoryChangeLogRepository{store: s} }
func (s *InMemoryStore) Users() UserRepository           { return &InMemoryUserRepository{store: s} }
func (s *InMemoryStore) Metrics() MetricsRepository      { return &InMemoryMetricsRepository{store: s} }

// Transact holds the store lock for the whole callback and restores the
// previous state when fn fails.
func (s *InMemoryStore) Transact(ctx context.Context, fn func(tx Tx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot := s.state.clone()
	tx := inMemoryTx{store: s}
	if err := fn(tx); err != nil {
		s.state = snapshot
		return err
	}
	if err := ctx.Err(); err != nil {
		s.state = snapshot
		return err
	}
	return nil
}

type inMemoryTx struct {
	store *InMemoryStore
}

func (t inMemoryTx) Items() ItemRepository {
	return &InMemoryItemRepository{store: t.store, inTx: true}
}

func (t inMemoryTx) ChangeLogs() ChangeLogRepository {
	return &InMemoryChangeLogRepository{store: t.store, inTx: true}
}

// lock acquires the store mutex unless the caller already holds it through Transact.
func lock(s *InMemoryStore, inTx bool) func() {
	if inTx {
		return func() {}
	}
	s.mu.Lock()
	return s.mu.Unlock
}

func (s memoryState) username(id int64) string {
	for _, u := range s.users {
		if u.ID == id {
			return u.Username
		}
	}
	return ""
}

// page applies offset/limit to n results and returns the bounds.
func page(n int, offset, limit *int) (int, int) {
	start := 0
	if offset != nil {
		start = clamp(*offset, 0, n)
	}
	end := n
	if limit != nil && *limit > 0 {
		end = clamp(start+*limit, start, n)
	}
	return start, end
}

func clamp(v, lo, hi int) int {
	return max(lo, min(v, hi))
}
