package models

import "time"

type ChangeType string

const (
	ChangeRestock    ChangeType = "restock"
	ChangeSale       ChangeType = "sale"
	ChangeAdjustment ChangeType = "adjustment"
)

// ChangeTypes lists every change type in a stable order.
var ChangeTypes = []ChangeType{ChangeRestock, ChangeSale, ChangeAdjustment}

func (c ChangeType) Valid() bool {
	switch c {
	case ChangeRestock, ChangeSale, ChangeAdjustment:
		return true
	}
	return false
}

// ChangeLog is an append-only record of a quantity snapshot taken on every item write.
// ItemID is a weak reference: the row outlives the item it describes.
type ChangeLog struct {
	ID                int64      `json:"id"`
	ItemID            int64      `json:"item"`
	OwnerID           int64      `json:"owner_id"`
	ChangedBy         *int64     `json:"changed_by_id"`
	ChangedByUsername string     `json:"changed_by"`
	OldQuantity       int        `json:"old_quantity"`
	NewQuantity       int        `json:"new_quantity"`
	ChangeType        ChangeType `json:"change_type"`
	ChangeDate        time.Time  `json:"change_date"`
}
