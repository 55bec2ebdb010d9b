package repo

import (
	"context"

	"github.com/rogerio-castellano/inventory-changelog/internal/models"
)

// ChangeLogRepository is append-only: entries are never updated or removed.
type ChangeLogRepository interface {
	Append(ctx context.Context, entry models.ChangeLog) (models.ChangeLog, error)
	GetByID(ctx context.Context, id int64) (models.ChangeLog, error)
	Filter(ctx context.Context, f ChangeLogFilter) ([]models.ChangeLog, int, error)
}
