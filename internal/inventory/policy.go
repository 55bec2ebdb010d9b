package inventory

import "github.com/rogerio-castellano/inventory-changelog/internal/models"

// CanAccessItem reports whether actor may read, update or delete item.
func CanAccessItem(actor models.Actor, item models.Item) bool {
	return actor.IsStaff || actor.ID == item.OwnerID
}

// CanAccessChange applies the item rule to a change log entry through the
// owner recorded on the entry.
func CanAccessChange(actor models.Actor, entry models.ChangeLog) bool {
	return actor.IsStaff || actor.ID == entry.OwnerID
}
