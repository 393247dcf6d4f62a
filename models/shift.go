package models

import "gorm.io/datatypes"

// Shift is a named service period (e.g. "Dinner") reservations are booked
// into. StartTime and EndTime are wall-clock HH:MM in the restaurant's zone.
type Shift struct {
	Base
	RestaurantID string                      `gorm:"type:varchar(36);not null;index" json:"restaurantId"`
	Name         string                      `gorm:"type:varchar(100);not null" json:"name"`
	StartTime    string                      `gorm:"type:varchar(5);not null" json:"startTime"`
	EndTime      string                      `gorm:"type:varchar(5);not null" json:"endTime"`
	Days         datatypes.JSONSlice[string] `gorm:"type:json" json:"days"`
	Color        string                      `gorm:"type:varchar(20);not null;default:'#75CAA6'" json:"color"`
	Active       bool                        `gorm:"not null;default:true" json:"active"`
}
