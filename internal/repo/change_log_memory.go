package repo

import (
	"cmp"
	"context"
	"slices"

	"github.com/rogerio-castellano/inventory-changelog/internal/models"
)

type InMemoryChangeLogRepository struct {
	store *InMemoryStore
	inTx  bool
}

// Append records a new change log entry.
func (r *InMemoryChangeLogRepository) Append(ctx context.Context, entry models.ChangeLog) (models.ChangeLog, error) {
	defer lock(r.store, r.inTx)()
	st := &r.store.state

	entry.ID = st.nextLogID
	st.nextLogID++
	st.logs = append(st.logs, entry)
	return withChangedByName(*st, entry), nil
}

func withChangedByName(st memoryState, entry models.ChangeLog) models.ChangeLog {
	if entry.ChangedBy != nil {
		entry.ChangedByUsername = st.username(*entry.ChangedBy)
	}
	return entry
}

func (r *InMemoryChangeLogRepository) GetByID(ctx context.Context, id int64) (models.ChangeLog, error) {
	defer lock(r.store, r.inTx)()
	st := &r.store.state

	for _, l := range st.logs {
		if l.ID == id {
			return withChangedByName(*st, l), nil
		}
	}
	return models.ChangeLog{}, ErrChangeNotFound
}

func matchesChangeLogFilter(l models.ChangeLog, f ChangeLogFilter) bool {
	if f.OwnerID != nil && l.OwnerID != *f.OwnerID {
		return false
	}
	if f.ItemID != nil && l.ItemID != *f.ItemID {
		return false
	}
	if f.ChangeType != "" && l.ChangeType != f.ChangeType {
		return false
	}
	if f.Since != nil && l.ChangeDate.Before(*f.Since) {
		return false
	}
	if f.Until != nil && l.ChangeDate.After(*f.Until) {
		return false
	}
	return true
}

// Filter returns matching entries, newest first, capped like the Postgres repository.
func (r *InMemoryChangeLogRepository) Filter(ctx context.Context, f ChangeLogFilter) ([]models.ChangeLog, int, error) {
	defer lock(r.store, r.inTx)()
	st := &r.store.state

	filtered := []models.ChangeLog{}
	for _, l := range st.logs {
		if matchesChangeLogFilter(l, f) {
			filtered = append(filtered, withChangedByName(*st, l))
		}
	}
	slices.SortStableFunc(filtered, func(a, b models.ChangeLog) int {
		if c := b.ChangeDate.Compare(a.ChangeDate); c != 0 {
			return c
		}
		return cmp.Compare(b.ID, a.ID)
	})

	limit := defaultLimit
	if f.Limit != nil {
		limit = *f.Limit
	}
	start, end := page(len(filtered), f.Offset, &limit)
	return filtered[start:end], len(filtered), nil
}

// AddChangeLog inserts an entry as-is, keeping its ChangeDate, to seed history
// with fixed dates.
func (s *InMemoryStore) AddChangeLog(entry models.ChangeLog) models.ChangeLog {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry.ID = s.state.nextLogID
	s.state.nextLogID++
	s.state.logs = append(s.state.logs, entry)
	return entry
}
