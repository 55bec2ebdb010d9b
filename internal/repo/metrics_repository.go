package repo

import (
	"context"

	"github.com/rogerio-castellano/inventory-changelog/internal/models"
)

type MostChangedItem struct {
	ItemID      int64  `json:"item_id"`
	Name        string `json:"name"`
	ChangeCount int    `json:"change_count"`
}

type Metrics struct {
	TotalItems      int                       `json:"total_items"`
	TotalQuantity   int                       `json:"total_quantity"`
	TotalChanges    int                       `json:"total_changes"`
	LowStockCount   int                       `json:"low_stock_count"`
	ChangesByType   map[models.ChangeType]int `json:"changes_by_type"`
	MostChangedItem *MostChangedItem          `json:"most_changed_item,omitempty"`
}

// MetricsRepository aggregates dashboard figures for one owner.
type MetricsRepository interface {
	DashboardMetrics(ctx context.Context, ownerID int64, lowStockThreshold int) (Metrics, error)
}

func newMetrics() Metrics {
	m := Metrics{ChangesByType: make(map[models.ChangeType]int, len(models.ChangeTypes))}
	for _, ct := range models.ChangeTypes {
		m.ChangesByType[ct] = 0
	}
	return m
}
