package models

import (
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type TableStatus string

const (
	TableAvailable   TableStatus = "AVAILABLE"
	TableOccupied    TableStatus = "OCCUPIED"
	TableReserved    TableStatus = "RESERVED"
	TableUnavailable TableStatus = "UNAVAILABLE"
)

// Table is a seating unit. A table is either normal, a composite created by a
// merge (IsMerged, MergedTableIDs >= 2) or a hidden component of a composite
// (IsHidden, ParentTableID set).
type Table struct {
	Base
	Name           string                      `gorm:"type:varchar(100);not null;uniqueIndex:idx_tables_restaurant_name,priority:2" json:"name"`
	Capacity       int                         `gorm:"not null" json:"capacity"`
	X              float64                     `gorm:"not null;default:0" json:"x"`
	Y              float64                     `gorm:"not null;default:0" json:"y"`
	Status         TableStatus                 `gorm:"type:varchar(20);not null;default:'AVAILABLE'" json:"status"`
	Color          *string                     `gorm:"type:varchar(20)" json:"color"`
	RestaurantID   string                      `gorm:"type:varchar(36);not null;index;uniqueIndex:idx_tables_restaurant_name,priority:1" json:"restaurantId"`
	FloorID        *string                     `gorm:"type:varchar(36);index" json:"floorId"`
	IsMerged       bool                        `gorm:"not null;default:false" json:"isMerged"`
	MergedTableIDs datatypes.JSONSlice[string] `gorm:"type:json" json:"mergedTableIds"`
	ParentTableID  *string                     `gorm:"type:varchar(36);index" json:"parentTableId"`
	IsHidden       bool                        `gorm:"not null;default:false" json:"isHidden"`
}

// InMerge reports whether the table already takes part in a merge, either as
// composite or as component.
func (t *Table) InMerge() bool {
	return t.ParentTableID != nil || len(t.MergedTableIDs) > 0
}

func (t *Table) BeforeCreate(tx *gorm.DB) error {
	if t.MergedTableIDs == nil {
		t.MergedTableIDs = datatypes.JSONSlice[string]{}
	}
	return t.Base.BeforeCreate(tx)
}
