package repo

import (
	"context"

	"github.com/rogerio-castellano/inventory-changelog/internal/models"
)

type UserRepository interface {
	Create(ctx context.Context, u models.User) (models.User, error)
	GetByID(ctx context.Context, id int64) (models.User, error)
	GetByUsername(ctx context.Context, username string) (models.User, error)
	List(ctx context.Context) ([]models.User, error)
	Update(ctx context.Context, u models.User) (models.User, error)
	// Delete removes the user together with the items they own.
	Delete(ctx context.Context, id int64) error
}
