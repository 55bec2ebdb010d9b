package repo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/rogerio-castellano/inventory-changelog/internal/models"
)

type PostgresMetricsRepository struct {
	db *sql.DB
}

func NewPostgresMetricsRepository(db *sql.DB) *PostgresMetricsRepository {
	return &PostgresMetricsRepository{db: db}
}

func (r *PostgresMetricsRepository) DashboardMetrics(ctx context.Context, ownerID int64, lowStockThreshold int) (Metrics, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	m := newMetrics()

	err := r.db.QueryRowContext(ctx, `
		SELECT COUNT(*), COALESCE(SUM(quantity), 0), COUNT(*) FILTER (WHERE quantity <= $2)
		FROM inventory_items WHERE owner_id = $1`, ownerID, lowStockThreshold).
		Scan(&m.TotalItems, &m.TotalQuantity, &m.LowStockCount)
	if err != nil {
		return m, fmt.Errorf("failed to aggregate items: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT change_type, COUNT(*) FROM inventory_change_logs
		WHERE owner_id = $1 GROUP BY change_type`, ownerID)
	if err != nil {
		return m, fmt.Errorf("failed to aggregate changes: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var (
			ct    models.ChangeType
			count int
		)
		if err := rows.Scan(&ct, &count); err != nil {
			return m, err
		}
		m.ChangesByType[ct] = count
		m.TotalChanges += count
	}
	if err := rows.Err(); err != nil {
		return m, err
	}

	var most MostChangedItem
	err = r.db.QueryRowContext(ctx, `
		SELECT i.id, i.name, COUNT(*) AS cnt
		FROM inventory_change_logs c
		JOIN inventory_items i ON c.item_id = i.id
		WHERE c.owner_id = $1
		GROUP BY i.id, i.name
		ORDER BY cnt DESC, i.id
		LIMIT 1`, ownerID).Scan(&most.ItemID, &most.Name, &most.ChangeCount)
	switch {
	case errors.Is(err, sql.ErrNoRows):
	case err != nil:
		return m, fmt.Errorf("failed to find most changed item: %w", err)
	default:
		m.MostChangedItem = &most
	}

	return m, nil
}
