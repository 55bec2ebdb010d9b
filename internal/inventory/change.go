package inventory

import "github.com/rogerio-castellano/inventory-changelog/internal/models"

// ClassifyChange derives the change type of a write from the quantity before
// and after it.
func ClassifyChange(oldQty, newQty int) models.ChangeType {
	switch {
	case newQty > oldQty:
		return models.ChangeRestock
	case newQty < oldQty:
		return models.ChangeSale
	default:
		return models.ChangeAdjustment
	}
}
