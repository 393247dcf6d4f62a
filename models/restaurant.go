package models

import "time"

type Restaurant struct {
	Base
	Name     string `gorm:"type:varchar(255);not null" json:"name"`
	Address  string `gorm:"type:varchar(255)" json:"address,omitempty"`
	Phone    string `gorm:"type:varchar(50)" json:"phone,omitempty"`
	Timezone string `gorm:"type:varchar(64);not null;default:'UTC'" json:"timezone"`
	OwnerID  string `gorm:"type:varchar(36);not null;index" json:"ownerId"`
	Owner    *User  `gorm:"foreignKey:OwnerID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT" json:"-"`

	SMSEnabled             bool       `gorm:"not null;default:false" json:"smsEnabled"`
	SMSUsername            string     `gorm:"type:varchar(100)" json:"smsUsername,omitempty"`
	SMSPassword            string     `gorm:"type:varchar(255)" json:"-"`
	SMSSenderID            string     `gorm:"type:varchar(20)" json:"smsSenderId,omitempty"`
	SMSConfirmationEnabled bool       `gorm:"not null;default:true" json:"smsConfirmationEnabled"`
	SMSCancellationEnabled bool       `gorm:"not null;default:true" json:"smsCancellationEnabled"`
	SMSCredits             float64    `gorm:"not null;default:0" json:"smsCredits"`
	SMSLastUpdated         *time.Time `json:"smsLastUpdated,omitempty"`
}

// SMSConfigured reports whether gateway credentials are complete.
func (r *Restaurant) SMSConfigured() bool {
	return r.SMSUsername != "" && r.SMSPassword != "" && r.SMSSenderID != ""
}

type FloorType string

const (
	FloorIndoor  FloorType = "INDOOR"
	FloorOutdoor FloorType = "OUTDOOR"
	FloorTerrace FloorType = "TERRACE"
	FloorPrivate FloorType = "PRIVATE"
)

type Floor struct {
	Base
	Name         string    `gorm:"type:varchar(100);not null" json:"name"`
	Type         FloorType `gorm:"type:varchar(20);not null;default:'INDOOR'" json:"type"`
	Color        string    `gorm:"type:varchar(20);not null;default:'#000000'" json:"color"`
	RestaurantID string    `gorm:"type:varchar(36);not null;index" json:"restaurantId"`
}
