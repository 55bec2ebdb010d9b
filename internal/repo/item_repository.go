package repo

import (
	"context"

	"github.com/rogerio-castellano/inventory-changelog/internal/models"
)

// ItemRepository defines the interface for inventory item data operations.
type ItemRepository interface {
	Create(ctx context.Context, item models.Item) (models.Item, error)
	GetByID(ctx context.Context, id int64) (models.Item, error)
	GetByName(ctx context.Context, ownerID int64, name string) (models.Item, error)
	Update(ctx context.Context, item models.Item) (models.Item, error)
	Delete(ctx context.Context, id int64) error
	Filter(ctx context.Context, f ItemFilter) ([]models.Item, int, error)
}
