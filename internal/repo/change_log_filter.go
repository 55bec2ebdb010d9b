package repo

import (
	"time"

	"github.com/rogerio-castellano/inventory-changelog/internal/models"
)

type ChangeLogFilter struct {
	OwnerID    *int64
	ItemID     *int64
	ChangeType models.ChangeType
	Since      *time.Time
	Until      *time.Time
	Offset     *int
	Limit      *int
}
