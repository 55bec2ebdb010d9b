package repo

import (
	"context"
)

type InMemoryMetricsRepository struct {
	store *InMemoryStore
}

// DashboardMetrics implements MetricsRepository.
func (r *InMemoryMetricsRepository) DashboardMetrics(ctx context.Context, ownerID int64, lowStockThreshold int) (Metrics, error) {
	defer lock(r.store, false)()
	st := &r.store.state

	m := newMetrics()
	names := map[int64]string{}
	for _, it := range st.items {
		if it.OwnerID != ownerID {
			continue
		}
		m.TotalItems++
		m.TotalQuantity += it.Quantity
		if it.Quantity <= lowStockThreshold {
			m.LowStockCount++
		}
		names[it.ID] = it.Name
	}

	perItem := map[int64]int{}
	for _, l := range st.logs {
		if l.OwnerID != ownerID {
			continue
		}
		m.TotalChanges++
		m.ChangesByType[l.ChangeType]++
		if _, live := names[l.ItemID]; live {
			perItem[l.ItemID]++
		}
	}

	for id, count := range perItem {
		best := m.MostChangedItem
		if best == nil || count > best.ChangeCount || (count == best.ChangeCount && id < best.ItemID) {
			m.MostChangedItem = &MostChangedItem{ItemID: id, Name: names[id], ChangeCount: count}
		}
	}
	return m, nil
}
