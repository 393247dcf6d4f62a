package models

import "time"

type Guest struct {
	Base
	RestaurantID string     `gorm:"type:varchar(36);not null;index" json:"restaurantId"`
	Name         string     `gorm:"type:varchar(255);not null" json:"name"`
	Phone        string     `gorm:"type:varchar(50);index" json:"phone"`
	Email        string     `gorm:"type:varchar(255)" json:"email,omitempty"`
	Notes        string     `gorm:"type:text" json:"notes,omitempty"`
	VisitCount   int        `gorm:"not null;default:0" json:"visitCount"`
	LastVisit    *time.Time `json:"lastVisit,omitempty"`
}

type ReservationStatus string

const (
	ReservationPending   ReservationStatus = "PENDING"
	ReservationConfirmed ReservationStatus = "CONFIRMED"
	ReservationSeated    ReservationStatus = "SEATED"
	ReservationCompleted ReservationStatus = "COMPLETED"
	ReservationCancelled ReservationStatus = "CANCELLED"
	ReservationNoShow    ReservationStatus = "NO_SHOW"
)

type ReservationSource string

const (
	SourcePhone  ReservationSource = "PHONE"
	SourceWalkIn ReservationSource = "WALK_IN"
	SourceOnline ReservationSource = "ONLINE"
	SourceOther  ReservationSource = "OTHER"
)

type Reservation struct {
	Base
	RestaurantID   string            `gorm:"type:varchar(36);not null;index" json:"restaurantId"`
	GuestID        string            `gorm:"type:varchar(36);not null;index" json:"guestId"`
	Guest          *Guest            `gorm:"foreignKey:GuestID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT" json:"guest,omitempty"`
	TableID        *string           `gorm:"type:varchar(36);index" json:"tableId"`
	Table          *Table            `gorm:"foreignKey:TableID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:SET NULL" json:"table,omitempty"`
	ShiftID        *string           `gorm:"type:varchar(36);index" json:"shiftId"`
	Shift          *Shift            `gorm:"foreignKey:ShiftID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:SET NULL" json:"shift,omitempty"`
	StartTime      time.Time         `gorm:"not null;index" json:"startTime"`
	EndTime        time.Time         `gorm:"not null" json:"endTime"`
	NumberOfGuests int               `gorm:"not null" json:"numberOfGuests"`
	Status         ReservationStatus `gorm:"type:varchar(20);not null;default:'PENDING'" json:"status"`
	Source         ReservationSource `gorm:"type:varchar(20);not null;default:'PHONE'" json:"source"`
	Note           string            `gorm:"type:text" json:"note,omitempty"`
}
